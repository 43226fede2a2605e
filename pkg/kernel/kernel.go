// Package kernel defines the abstract CAD document interface the importer
// replays against. Implementations (sdfx) own sketch geometry, derive
// profiles from committed curves and build extrude features. The
// abstraction lets the replay logic run unchanged against a real host
// kernel or an in-memory one.
package kernel

import "errors"

// ErrTransformNotPermitted is returned by Sketch.SetTransform when the
// document is not in a mode that permits post-hoc sketch transforms.
var ErrTransformNotPermitted = errors.New("kernel: document does not permit sketch transforms")

// Handle is a stable identifier for an object created in a document.
// Handles are unique within one document and carry no meaning across
// documents.
type Handle string

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Body is a named solid owned by a document.
type Body interface {
	Solid
	Handle() Handle
	Name() string
}

// Curve is a sketch curve created in a document.
type Curve interface {
	Handle() Handle
}

// Loop is one closed boundary of a profile.
type Loop interface {
	// IsOuter reports whether the loop is the outer boundary.
	IsOuter() bool
	// Curves returns the curves bounding the loop in traversal order.
	Curves() []Curve
}

// Profile is a closed planar region derived by the kernel from the curves
// of a sketch.
type Profile interface {
	Handle() Handle
	Loops() []Loop
	AreaProperties(acc Accuracy) (AreaProperties, error)
}

// Sketch is a planar sketch in a document.
type Sketch interface {
	Handle() Handle

	// SetTransform repositions the sketch plane in model space.
	SetTransform(m Matrix3D) error

	// DeferCompute suspends (true) or resumes (false) profile derivation.
	// Resuming derives the profiles of all curves added while deferred.
	DeferCompute(deferred bool)

	// Curve creation. Points are in sketch space.
	AddLine(start, end Point3D) (Curve, error)
	AddArc(center, start Point3D, sweep float64) (Curve, error)
	AddCircle(center Point3D, radius float64) (Curve, error)

	// Profiles returns the profiles derived by the last recompute.
	Profiles() []Profile
}

// ExtrudeInput collects the definition of an extrude feature before it is
// committed with Document.AddExtrude.
type ExtrudeInput interface {
	SetOneSideExtent(distance float64, dir Direction, taper float64)
	SetTwoSidesExtent(distanceOne, distanceTwo, taperOne, taperTwo float64)
	// SetStartOffset moves the start of the extrusion off the profile plane.
	SetStartOffset(offset float64)
}

// Feature is a committed modeling feature.
type Feature interface {
	Handle() Handle
	Operation() Operation
}

// Document is a live CAD document.
type Document interface {
	// CreateSketch creates a sketch on the XY base plane.
	CreateSketch() (Sketch, error)
	NewExtrudeInput(profiles []Profile, op Operation) (ExtrudeInput, error)
	AddExtrude(in ExtrudeInput) (Feature, error)
}

// Mesher converts solids to triangle meshes.
type Mesher interface {
	ToMesh(s Solid) (*Mesh, error)
}
