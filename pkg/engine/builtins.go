package engine

import (
	"fmt"
	"math"

	"github.com/chazu/lignin-replay/pkg/design"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builder accumulates the design produced by one evaluation. Entities are
// appended to the timeline in definition order.
type builder struct {
	design   *design.Design
	profiles map[string]string // profile id -> owning sketch id
}

func newBuilder() *builder {
	return &builder{
		design: &design.Design{
			Entities: make(map[string]*design.Entity),
			Timeline: []design.TimelineEntry{},
		},
		profiles: make(map[string]string),
	}
}

// add registers an entity and places it at the end of the timeline.
func (b *builder) add(id string, e *design.Entity) error {
	if id == "" {
		return fmt.Errorf("entity id must not be empty")
	}
	if _, dup := b.design.Entities[id]; dup {
		return fmt.Errorf("duplicate entity id %q", id)
	}
	b.design.Entities[id] = e
	b.design.Timeline = append(b.design.Timeline, design.TimelineEntry{
		Entity: id,
		Index:  len(b.design.Timeline),
	})
	return nil
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a design.Vector3D.
type sexpVec3 struct {
	vec design.Vector3D
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpFrame wraps a sketch placement built by `frame`.
type sexpFrame struct {
	t design.Transform
}

func (f *sexpFrame) SexpString(ps *zygo.PrintState) string {
	o := f.t.Origin
	return fmt.Sprintf("(frame :origin (vec3 %g %g %g))", o.X, o.Y, o.Z)
}
func (f *sexpFrame) Type() *zygo.RegisteredType { return nil }

// sexpPoint is a named sketch point waiting for its sketch.
type sexpPoint struct {
	id string
	p  design.Point3D
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point %q %g %g %g)", p.id, p.p.X, p.p.Y, p.p.Z)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpCurve is a named sketch curve waiting for its sketch. Arc angles
// are derived from the points when the sketch is assembled unless they
// were given explicitly.
type sexpCurve struct {
	id        string
	c         design.Curve
	anglesSet bool
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(curve %q %s)", c.id, c.c.Type)
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpLoop is one boundary of a profile.
type sexpLoop struct {
	loop design.Loop
}

func (l *sexpLoop) SexpString(ps *zygo.PrintState) string {
	kind := "inner"
	if l.loop.IsOuter {
		kind = "outer"
	}
	return fmt.Sprintf("(%s %d curves)", kind, len(l.loop.ProfileCurves))
}
func (l *sexpLoop) Type() *zygo.RegisteredType { return nil }

// sexpProfile is a named profile waiting for its sketch.
type sexpProfile struct {
	id string
	p  *design.Profile
}

func (p *sexpProfile) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(profile %q)", p.id)
}
func (p *sexpProfile) Type() *zygo.RegisteredType { return nil }

// sexpEntityRef is returned by the timeline builtins.
type sexpEntityRef struct {
	id   string
	kind string
}

func (r *sexpEntityRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", r.kind, r.id)
}
func (r *sexpEntityRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func toVec3(s zygo.Sexp) (design.Vector3D, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return design.Vector3D{}, fmt.Errorf("expected vec3, got %T", s)
}

func toFrame(s zygo.Sexp) (design.Transform, error) {
	if f, ok := s.(*sexpFrame); ok {
		return f.t, nil
	}
	return design.Transform{}, fmt.Errorf("expected frame, got %T", s)
}

// toCurveID accepts a curve value or a curve id string.
func toCurveID(s zygo.Sexp) (string, error) {
	if c, ok := s.(*sexpCurve); ok {
		return c.id, nil
	}
	return toString(s)
}

// toProfileID accepts a profile value or a profile id string.
func toProfileID(s zygo.Sexp) (string, error) {
	if p, ok := s.(*sexpProfile); ok {
		return p.id, nil
	}
	return toString(s)
}

// planeFrame returns the placement of a named origin plane.
func planeFrame(name string) (design.Transform, error) {
	t := design.Transform{Type: "Matrix3D"}
	switch name {
	case "xy":
		t.XAxis = design.Vector3D{X: 1}
		t.YAxis = design.Vector3D{Y: 1}
		t.ZAxis = design.Vector3D{Z: 1}
	case "xz":
		t.XAxis = design.Vector3D{X: 1}
		t.YAxis = design.Vector3D{Z: 1}
		t.ZAxis = design.Vector3D{Y: -1}
	case "yz":
		t.XAxis = design.Vector3D{Y: 1}
		t.YAxis = design.Vector3D{Z: 1}
		t.ZAxis = design.Vector3D{X: 1}
	default:
		return t, fmt.Errorf("unknown plane %q (want xy, xz or yz)", name)
	}
	return t, nil
}

var operations = map[string]string{
	"new-body":      design.OperationNewBody,
	"join":          design.OperationJoin,
	"cut":           design.OperationCut,
	"intersect":     design.OperationIntersect,
	"new-component": design.OperationNewComponent,
}

func parameter(name, role string, v float64) design.Parameter {
	return design.Parameter{Type: "ModelParameter", Name: name, Role: role, Value: v}
}

func taperParameter(name string, v float64) *design.Parameter {
	p := parameter(name, "TaperAngle", v)
	return &p
}

// flatten expands nested lists so sketch items may be grouped.
func flatten(args []zygo.Sexp) []zygo.Sexp {
	var out []zygo.Sexp
	for _, a := range args {
		if _, ok := a.(*zygo.SexpPair); ok {
			items, err := sexpListToSlice(a)
			if err == nil {
				out = append(out, flatten(items)...)
				continue
			}
		}
		if arr, ok := a.(*zygo.SexpArray); ok {
			out = append(out, flatten(arr.Val)...)
			continue
		}
		out = append(out, a)
	}
	return out
}

// ---------------------------------------------------------------------------
// Sketch assembly
// ---------------------------------------------------------------------------

// assembleSketch gathers points, curves and profiles into a sketch record
// and checks every reference inside it.
func assembleSketch(name string, items []zygo.Sexp) (*design.Sketch, error) {
	s := &design.Sketch{
		Name:     name,
		Points:   make(map[string]design.Point3D),
		Curves:   make(map[string]design.Curve),
		Profiles: make(map[string]*design.Profile),
	}
	var curves []*sexpCurve
	for _, item := range flatten(items) {
		switch v := item.(type) {
		case *sexpPoint:
			if _, dup := s.Points[v.id]; dup {
				return nil, fmt.Errorf("duplicate point %q", v.id)
			}
			s.Points[v.id] = v.p
		case *sexpCurve:
			if _, dup := s.Curves[v.id]; dup {
				return nil, fmt.Errorf("duplicate curve %q", v.id)
			}
			s.Curves[v.id] = v.c
			curves = append(curves, v)
		case *sexpProfile:
			if _, dup := s.Profiles[v.id]; dup {
				return nil, fmt.Errorf("duplicate profile %q", v.id)
			}
			s.Profiles[v.id] = v.p
		default:
			return nil, fmt.Errorf("unexpected sketch item %s", item.SexpString(nil))
		}
	}

	for _, c := range curves {
		for _, pid := range c.c.PointIDs() {
			if _, ok := s.Points[pid]; !ok {
				return nil, fmt.Errorf("curve %q references unknown point %q", c.id, pid)
			}
		}
		if c.c.Type == design.CurveArc {
			s.Curves[c.id] = arcGeometry(s, c)
		}
	}
	for pid, p := range s.Profiles {
		for _, cid := range p.CurveIDs() {
			if _, ok := s.Curves[cid]; !ok {
				return nil, fmt.Errorf("profile %q references unknown curve %q", pid, cid)
			}
		}
	}
	return s, nil
}

// arcGeometry fills the radius and angles of an arc from its points. The
// end angle is taken counterclockwise from the start.
func arcGeometry(s *design.Sketch, c *sexpCurve) design.Curve {
	out := c.c
	center := s.Points[out.CenterPoint]
	start := s.Points[out.StartPoint]
	out.Radius = math.Hypot(start.X-center.X, start.Y-center.Y)
	if c.anglesSet {
		return out
	}
	out.StartAngle = math.Atan2(start.Y-center.Y, start.X-center.X)
	if end, ok := s.Points[out.EndPoint]; ok {
		out.EndAngle = math.Atan2(end.Y-center.Y, end.X-center.X)
		if out.EndAngle <= out.StartAngle {
			out.EndAngle += 2 * math.Pi
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the design builtins into a zygomys environment.
// Sketch and extrude calls append entities to the builder's timeline in
// the order they are evaluated.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			v, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = v
		}
		return &sexpVec3{vec: design.Vector3D{Type: "Vector3D", X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (frame :origin (vec3 0 0 5) :x (vec3 1 0 0) :y (vec3 0 1 0) :z (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("frame", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, _ := planeFrame("xy")
		for _, k := range []string{"origin", "x", "y", "z"} {
			v, ok := pa.kw[k]
			if !ok {
				continue
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("frame: %s: %w", k, err)
			}
			switch k {
			case "origin":
				t.Origin = design.Point3D{Type: "Point3D", X: vec.X, Y: vec.Y, Z: vec.Z}
			case "x":
				t.XAxis = vec
			case "y":
				t.YAxis = vec
			case "z":
				t.ZAxis = vec
			}
		}
		return &sexpFrame{t: t}, nil
	})

	// -----------------------------------------------------------------------
	// (point "p0" 0 0) or (point "p0" 0 0 0)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 && len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("point requires an id and 2 or 3 coordinates")
		}
		id, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: id: %w", err)
		}
		var xyz [3]float64
		for i, a := range args[1:] {
			if xyz[i], err = toFloat64(a); err != nil {
				return zygo.SexpNull, fmt.Errorf("point %q: %c: %w", id, "xyz"[i], err)
			}
		}
		return &sexpPoint{id: id, p: design.Point3D{Type: "Point3D", X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (line "l1" "p0" "p1")
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := stringArgs("line", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpCurve{id: ids[0], c: design.Curve{
			Type:       design.CurveLine,
			StartPoint: ids[1],
			EndPoint:   ids[2],
		}}, nil
	})

	// -----------------------------------------------------------------------
	// (arc "a1" "center" "start" "end") or with :start-angle / :end-angle
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		ids, err := stringArgs("arc", pa.positional, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		c := &sexpCurve{id: ids[0], c: design.Curve{
			Type:        design.CurveArc,
			CenterPoint: ids[1],
			StartPoint:  ids[2],
			EndPoint:    ids[3],
		}}
		sa, hasStart := pa.kw["start-angle"]
		ea, hasEnd := pa.kw["end-angle"]
		if hasStart != hasEnd {
			return zygo.SexpNull, fmt.Errorf("arc %q: :start-angle and :end-angle go together", c.id)
		}
		if hasStart {
			if c.c.StartAngle, err = toFloat64(sa); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc %q: start-angle: %w", c.id, err)
			}
			if c.c.EndAngle, err = toFloat64(ea); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc %q: end-angle: %w", c.id, err)
			}
			c.anglesSet = true
		}
		return c, nil
	})

	// -----------------------------------------------------------------------
	// (circle "c1" "center" 2.5)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("circle requires an id, a center point and a radius")
		}
		ids, err := stringArgs("circle", args[:2], 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		r, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle %q: radius: %w", ids[0], err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("circle %q: radius must be positive", ids[0])
		}
		return &sexpCurve{id: ids[0], c: design.Curve{
			Type:        design.CurveCircle,
			CenterPoint: ids[1],
			Radius:      r,
		}}, nil
	})

	// -----------------------------------------------------------------------
	// (construction (line ...))
	// -----------------------------------------------------------------------
	env.AddFunction("construction", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("construction requires exactly one curve")
		}
		c, ok := args[0].(*sexpCurve)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("construction: expected curve, got %T", args[0])
		}
		marked := *c
		marked.c.ConstructionGeom = true
		return &marked, nil
	})

	// -----------------------------------------------------------------------
	// (outer "l1" "l2" ...) and (inner "c1")
	// -----------------------------------------------------------------------
	for _, kind := range []string{"outer", "inner"} {
		isOuter := kind == "outer"
		env.AddFunction(kind, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) == 0 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least one curve", name)
			}
			l := design.Loop{IsOuter: isOuter}
			for i, a := range flatten(args) {
				id, err := toCurveID(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: curve %d: %w", name, i, err)
				}
				l.ProfileCurves = append(l.ProfileCurves, design.ProfileCurve{Curve: id})
			}
			return &sexpLoop{loop: l}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (profile "prof" (outer ...) (inner ...) :area 12 :perimeter 16 :centroid (vec3 2 2 0))
	// -----------------------------------------------------------------------
	env.AddFunction("profile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("profile requires an id and at least one loop")
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("profile: id: %w", err)
		}
		p := &design.Profile{}
		outers := 0
		for _, a := range pa.positional[1:] {
			l, ok := a.(*sexpLoop)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("profile %q: expected loop, got %T", id, a)
			}
			if l.loop.IsOuter {
				outers++
			}
			p.Loops = append(p.Loops, l.loop)
		}
		if outers != 1 {
			return zygo.SexpNull, fmt.Errorf("profile %q: needs exactly one outer loop, got %d", id, outers)
		}

		if v, ok := pa.kw["area"]; ok {
			if p.Properties.Area, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("profile %q: area: %w", id, err)
			}
		}
		if v, ok := pa.kw["perimeter"]; ok {
			if p.Properties.Perimeter, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("profile %q: perimeter: %w", id, err)
			}
		}
		if v, ok := pa.kw["centroid"]; ok {
			c, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("profile %q: centroid: %w", id, err)
			}
			p.Properties.Centroid = design.Point3D{Type: "Point3D", X: c.X, Y: c.Y, Z: c.Z}
		}
		return &sexpProfile{id: id, p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (sketch "sketch-1" :name "Sketch1" :plane :xz (point ...) (line ...) (profile ...))
	// -----------------------------------------------------------------------
	env.AddFunction("sketch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("sketch requires an id")
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sketch: id: %w", err)
		}
		display := id
		if v, ok := pa.kw["name"]; ok {
			if display, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch %q: name: %w", id, err)
			}
		}

		reference := false
		if v, ok := pa.kw["reference"]; ok {
			if reference, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch %q: reference: %w", id, err)
			}
		}

		var s *design.Sketch
		if reference {
			if len(pa.positional) > 1 {
				return zygo.SexpNull, fmt.Errorf("sketch %q: a reference sketch carries no geometry", id)
			}
			s = &design.Sketch{Name: display}
		} else {
			if s, err = assembleSketch(display, pa.positional[1:]); err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch %q: %w", id, err)
			}
		}

		_, hasFrame := pa.kw["transform"]
		_, hasPlane := pa.kw["plane"]
		switch {
		case hasFrame && hasPlane:
			return zygo.SexpNull, fmt.Errorf("sketch %q: :transform and :plane are exclusive", id)
		case hasFrame:
			t, err := toFrame(pa.kw["transform"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch %q: transform: %w", id, err)
			}
			s.Transform = &t
		case hasPlane:
			plane, err := toKeywordString(pa.kw["plane"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch %q: plane: %w", id, err)
			}
			t, err := planeFrame(plane)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch %q: %w", id, err)
			}
			s.Transform = &t
		}

		for pid := range s.Profiles {
			if owner, taken := b.profiles[pid]; taken {
				return zygo.SexpNull, fmt.Errorf("sketch %q: profile %q already defined by sketch %q", id, pid, owner)
			}
		}
		if err := b.add(id, design.NewSketchEntity(s)); err != nil {
			return zygo.SexpNull, fmt.Errorf("sketch: %w", err)
		}
		for pid := range s.Profiles {
			b.profiles[pid] = id
		}
		return &sexpEntityRef{id: id, kind: "sketch"}, nil
	})

	// -----------------------------------------------------------------------
	// (extrude "extrude-1" :profiles (list "prof") :operation :join :distance 3)
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires exactly one id")
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: id: %w", err)
		}
		x, err := b.extrude(id, pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude %q: %w", id, err)
		}
		if err := b.add(id, design.NewExtrudeEntity(x)); err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		return &sexpEntityRef{id: id, kind: "extrude"}, nil
	})
}

// stringArgs checks that args holds exactly n ids. Curve and point values
// are accepted in place of their ids.
func stringArgs(fn string, args []zygo.Sexp, n int) ([]string, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d ids, got %d arguments", fn, n, len(args))
	}
	out := make([]string, n)
	for i, a := range args {
		var err error
		switch v := a.(type) {
		case *sexpPoint:
			out[i] = v.id
		case *sexpCurve:
			out[i] = v.id
		default:
			out[i], err = toString(a)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i, err)
		}
	}
	return out, nil
}

// extrude builds an extrude record from keyword arguments. Exactly one of
// :distance, :two-sides and :symmetric selects the extent.
func (b *builder) extrude(id string, pa kwArgs) (*design.Extrude, error) {
	x := &design.Extrude{
		Name:        id,
		Operation:   design.OperationNewBody,
		StartExtent: design.StartExtent{Type: design.StartProfilePlane},
	}

	if v, ok := pa.kw["name"]; ok {
		n, err := toString(v)
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		x.Name = n
	}

	v, ok := pa.kw["profiles"]
	if !ok {
		return nil, fmt.Errorf(":profiles is required")
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("profiles must not be empty")
	}
	for i, item := range items {
		pid, err := toProfileID(item)
		if err != nil {
			return nil, fmt.Errorf("profiles: item %d: %w", i, err)
		}
		sketch, ok := b.profiles[pid]
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", pid)
		}
		x.Profiles = append(x.Profiles, design.ProfileRef{Profile: pid, Sketch: sketch})
	}

	if v, ok := pa.kw["operation"]; ok {
		op, err := toKeywordString(v)
		if err != nil {
			return nil, fmt.Errorf("operation: %w", err)
		}
		tag, known := operations[op]
		if !known {
			return nil, fmt.Errorf("unknown operation %q", op)
		}
		x.Operation = tag
	}

	if err := extent(x, pa); err != nil {
		return nil, err
	}

	if v, ok := pa.kw["offset"]; ok {
		o, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		p := parameter("offset", "StartOffset", o)
		x.StartExtent = design.StartExtent{Type: design.StartOffset, Offset: &p}
	}
	return x, nil
}

func extent(x *design.Extrude, pa kwArgs) error {
	selected := 0
	for _, k := range []string{"distance", "two-sides", "symmetric"} {
		if _, ok := pa.kw[k]; ok {
			selected++
		}
	}
	if selected != 1 {
		return fmt.Errorf("exactly one of :distance, :two-sides or :symmetric is required")
	}

	taper := func(key string) (*design.Parameter, error) {
		v, ok := pa.kw[key]
		if !ok {
			return nil, nil
		}
		t, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return taperParameter(key, t), nil
	}

	switch {
	case pa.kw["distance"] != nil:
		d, err := toFloat64(pa.kw["distance"])
		if err != nil {
			return fmt.Errorf("distance: %w", err)
		}
		t, err := taper("taper")
		if err != nil {
			return err
		}
		x.ExtentType = design.ExtentOneSide
		x.ExtentOne = &design.Extent{Type: "DistanceExtentDefinition", Distance: parameter("d1", "AlongDistance", d), TaperAngle: t}

	case pa.kw["two-sides"] != nil:
		ds, err := toFloats(pa.kw["two-sides"])
		if err != nil {
			return fmt.Errorf("two-sides: %w", err)
		}
		if len(ds) != 2 {
			return fmt.Errorf("two-sides needs 2 distances, got %d", len(ds))
		}
		tapers := []float64{0, 0}
		if v, ok := pa.kw["tapers"]; ok {
			if tapers, err = toFloats(v); err != nil {
				return fmt.Errorf("tapers: %w", err)
			}
			if len(tapers) != 2 {
				return fmt.Errorf("tapers needs 2 angles, got %d", len(tapers))
			}
		}
		x.ExtentType = design.ExtentTwoSides
		x.ExtentOne = &design.Extent{Type: "DistanceExtentDefinition", Distance: parameter("d1", "AlongDistance", ds[0]), TaperAngle: taperParameter("t1", tapers[0])}
		x.ExtentTwo = &design.Extent{Type: "DistanceExtentDefinition", Distance: parameter("d2", "AgainstDistance", ds[1]), TaperAngle: taperParameter("t2", tapers[1])}

	default:
		d, err := toFloat64(pa.kw["symmetric"])
		if err != nil {
			return fmt.Errorf("symmetric: %w", err)
		}
		t, err := taper("taper")
		if err != nil {
			return err
		}
		full := false
		if v, ok := pa.kw["full-length"]; ok {
			if full, err = toBool(v); err != nil {
				return fmt.Errorf("full-length: %w", err)
			}
		}
		x.ExtentType = design.ExtentSymmetric
		x.ExtentOne = &design.Extent{Type: "SymmetricExtentDefinition", Distance: parameter("d1", "AlongDistance", d), TaperAngle: t, IsFullLength: full}
	}
	return nil
}
