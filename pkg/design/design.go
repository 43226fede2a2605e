// Package design defines the serialized construction history replayed by
// the importer: sketch and extrude entities keyed by id, plus the timeline
// that orders them. Records are plain data; they are decoded once and never
// mutated by the replay.
package design

// Entity type tags.
const (
	TypeSketch  = "Sketch"
	TypeExtrude = "ExtrudeFeature"
)

// Curve type tags.
const (
	CurveLine   = "SketchLine"
	CurveArc    = "SketchArc"
	CurveCircle = "SketchCircle"
)

// Operation tags.
const (
	OperationJoin         = "JoinFeatureOperation"
	OperationCut          = "CutFeatureOperation"
	OperationIntersect    = "IntersectFeatureOperation"
	OperationNewBody      = "NewBodyFeatureOperation"
	OperationNewComponent = "NewComponentFeatureOperation"
)

// Extent type tags.
const (
	ExtentOneSide   = "OneSideFeatureExtentType"
	ExtentTwoSides  = "TwoSidesFeatureExtentType"
	ExtentSymmetric = "SymmetricFeatureExtentType"
)

// Start extent type tags.
const (
	StartProfilePlane = "ProfilePlaneStartDefinition"
	StartOffset       = "OffsetStartDefinition"
)

// Design is a complete serialized construction history.
type Design struct {
	Entities map[string]*Entity `json:"entities" validate:"required,dive"`
	Timeline []TimelineEntry    `json:"timeline" validate:"dive"`
}

// TimelineEntry places one entity in replay order.
type TimelineEntry struct {
	Entity string `json:"entity" validate:"required"`
	Index  int    `json:"index"`
}

// Point3D is a point in sketch space.
type Point3D struct {
	Type string  `json:"type,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// Vector3D is a direction in model space.
type Vector3D struct {
	Type string  `json:"type,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// IsZero reports whether all components are zero.
func (v Vector3D) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Transform places a sketch plane in model space, either as a coordinate
// system or as a flat row-major 4x4 matrix.
type Transform struct {
	Type   string    `json:"type,omitempty"`
	Origin Point3D   `json:"origin"`
	XAxis  Vector3D  `json:"x_axis"`
	YAxis  Vector3D  `json:"y_axis"`
	ZAxis  Vector3D  `json:"z_axis"`
	Matrix []float64 `json:"matrix,omitempty" validate:"omitempty,len=16"`
}

// Curve is a sketch curve record. Which point fields are set depends on
// Type.
type Curve struct {
	Type             string  `json:"type" validate:"required"`
	ConstructionGeom bool    `json:"construction_geom"`
	StartPoint       string  `json:"start_point,omitempty"`
	EndPoint         string  `json:"end_point,omitempty"`
	CenterPoint      string  `json:"center_point,omitempty"`
	StartAngle       float64 `json:"start_angle,omitempty"`
	EndAngle         float64 `json:"end_angle,omitempty"`
	Radius           float64 `json:"radius,omitempty"`
}

// PointIDs returns the point ids the curve refers to.
func (c Curve) PointIDs() []string {
	switch c.Type {
	case CurveLine:
		return []string{c.StartPoint, c.EndPoint}
	case CurveArc:
		return []string{c.CenterPoint, c.StartPoint}
	case CurveCircle:
		return []string{c.CenterPoint}
	default:
		return nil
	}
}

// Sweep is the signed sweep angle of an arc in radians.
func (c Curve) Sweep() float64 {
	return c.EndAngle - c.StartAngle
}

// ProfileCurve references one curve bounding a loop.
type ProfileCurve struct {
	Type  string `json:"type,omitempty"`
	Curve string `json:"curve" validate:"required"`
}

// Loop is one closed boundary of a recorded profile.
type Loop struct {
	IsOuter       bool           `json:"is_outer"`
	ProfileCurves []ProfileCurve `json:"profile_curves" validate:"dive"`
}

// ProfileProperties are the invariants captured on the original model.
type ProfileProperties struct {
	Area      float64 `json:"area"`
	Perimeter float64 `json:"perimeter"`
	Centroid  Point3D `json:"centroid"`
}

// Profile is a recorded closed region of a sketch.
type Profile struct {
	Loops      []Loop            `json:"loops" validate:"required,min=1,dive"`
	Properties ProfileProperties `json:"properties"`
}

// CurveIDs returns the curve ids of every loop in record order.
func (p Profile) CurveIDs() []string {
	var ids []string
	for _, l := range p.Loops {
		for _, pc := range l.ProfileCurves {
			ids = append(ids, pc.Curve)
		}
	}
	return ids
}

// Sketch is a recorded sketch. A nil Curves map marks a reference sketch
// that carries no geometry.
type Sketch struct {
	Type      string              `json:"type"`
	Name      string              `json:"name" validate:"required"`
	Transform *Transform          `json:"transform,omitempty"`
	Points    map[string]Point3D  `json:"points,omitempty"`
	Curves    map[string]Curve    `json:"curves" validate:"dive"`
	Profiles  map[string]*Profile `json:"profiles" validate:"dive"`
}

// Parameter is a recorded model parameter.
type Parameter struct {
	Type  string  `json:"type,omitempty"`
	Name  string  `json:"name,omitempty"`
	Role  string  `json:"role,omitempty"`
	Value float64 `json:"value"`
}

// Extent is a distance extent for one side of an extrude.
type Extent struct {
	Type         string     `json:"type,omitempty"`
	Distance     Parameter  `json:"distance"`
	TaperAngle   *Parameter `json:"taper_angle,omitempty"`
	IsFullLength bool       `json:"is_full_length,omitempty"`
}

// Taper returns the taper angle, or 0 when none was recorded.
func (e Extent) Taper() float64 {
	if e.TaperAngle == nil {
		return 0
	}
	return e.TaperAngle.Value
}

// StartExtent defines where an extrude begins.
type StartExtent struct {
	Type   string     `json:"type"`
	Offset *Parameter `json:"offset,omitempty"`
}

// ProfileRef names a profile consumed by an extrude.
type ProfileRef struct {
	Profile string `json:"profile" validate:"required"`
	Sketch  string `json:"sketch,omitempty"`
}

// Extrude is a recorded extrude feature.
type Extrude struct {
	Type        string       `json:"type"`
	Name        string       `json:"name" validate:"required"`
	Profiles    []ProfileRef `json:"profiles" validate:"required,min=1,dive"`
	Operation   string       `json:"operation" validate:"required,oneof=JoinFeatureOperation CutFeatureOperation IntersectFeatureOperation NewBodyFeatureOperation NewComponentFeatureOperation"`
	ExtentType  string       `json:"extent_type" validate:"required,oneof=OneSideFeatureExtentType TwoSidesFeatureExtentType SymmetricFeatureExtentType"`
	ExtentOne   *Extent      `json:"extent_one" validate:"required"`
	ExtentTwo   *Extent      `json:"extent_two,omitempty" validate:"required_if=ExtentType TwoSidesFeatureExtentType"`
	StartExtent StartExtent  `json:"start_extent"`
}
