package importer

import "errors"

var (
	// ErrProfileNotFound is returned by the matcher when no kernel profile
	// has the recorded curve set and geometric invariants. Sketch
	// reconstruction treats it as non-fatal and records a nil entry.
	ErrProfileNotFound = errors.New("importer: profile not found")

	// ErrProfileUnresolved is returned when an extrude references a profile
	// that is absent from the lookup table or was not matched.
	ErrProfileUnresolved = errors.New("importer: profile unresolved")

	// ErrEntityNotFound is returned when a timeline entry names an entity
	// that is not in the entity map.
	ErrEntityNotFound = errors.New("importer: entity not found")

	// ErrUnsupportedExtent is returned for extent types other than
	// one-sided, two-sided and symmetric, and for incomplete extents.
	ErrUnsupportedExtent = errors.New("importer: unsupported extent")

	// ErrUnsupportedOperation is returned for unknown feature operations.
	ErrUnsupportedOperation = errors.New("importer: unsupported operation")
)
