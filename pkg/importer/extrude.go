package importer

import (
	"context"
	"fmt"

	"github.com/chazu/lignin-replay/pkg/design"
	"github.com/chazu/lignin-replay/pkg/kernel"
	"go.uber.org/zap"
)

var operations = map[string]kernel.Operation{
	design.OperationJoin:         kernel.OpJoin,
	design.OperationCut:          kernel.OpCut,
	design.OperationIntersect:    kernel.OpIntersect,
	design.OperationNewBody:      kernel.OpNewBody,
	design.OperationNewComponent: kernel.OpNewComponent,
}

// ReconstructExtrude commits rec as an extrude feature. Every profile it
// references must resolve in table; otherwise no feature is created.
func (im *Importer) ReconstructExtrude(ctx context.Context, rec *design.Extrude, table ProfileTable) (kernel.Feature, error) {
	profiles := make([]kernel.Profile, 0, len(rec.Profiles))
	for _, ref := range rec.Profiles {
		p, err := table.Resolve(ref.Profile)
		if err != nil {
			return nil, fmt.Errorf("extrude %q: %w", rec.Name, err)
		}
		profiles = append(profiles, p)
	}

	op, ok := operations[rec.Operation]
	if !ok {
		return nil, fmt.Errorf("extrude %q: %w: %q", rec.Name, ErrUnsupportedOperation, rec.Operation)
	}
	configure, err := extent(rec)
	if err != nil {
		return nil, fmt.Errorf("extrude %q: %w", rec.Name, err)
	}

	in, err := im.doc.NewExtrudeInput(profiles, op)
	if err != nil {
		return nil, fmt.Errorf("extrude %q: %w", rec.Name, err)
	}
	configure(in)

	// The start is assigned after the extents, which would otherwise reset
	// it.
	switch rec.StartExtent.Type {
	case "", design.StartProfilePlane:
	case design.StartOffset:
		if rec.StartExtent.Offset == nil {
			im.log.Warn("offset start extent without an offset, using the profile plane",
				zap.String("extrude", rec.Name))
			break
		}
		in.SetStartOffset(rec.StartExtent.Offset.Value)
	default:
		im.log.Warn("unsupported start extent, using the profile plane",
			zap.String("extrude", rec.Name), zap.String("type", rec.StartExtent.Type))
	}

	f, err := im.doc.AddExtrude(in)
	if err != nil {
		return nil, fmt.Errorf("extrude %q: %w", rec.Name, err)
	}
	return f, nil
}

// extent returns the function that configures the side extents of rec.
// Symmetric extrudes are expressed as two equal sides so that a taper
// applies to both; a full-length distance spans both sides.
func extent(rec *design.Extrude) (func(kernel.ExtrudeInput), error) {
	one := rec.ExtentOne
	if one == nil {
		return nil, fmt.Errorf("%w: %s without extent_one", ErrUnsupportedExtent, rec.ExtentType)
	}

	switch rec.ExtentType {
	case design.ExtentOneSide:
		return func(in kernel.ExtrudeInput) {
			in.SetOneSideExtent(one.Distance.Value, kernel.PositiveDirection, one.Taper())
		}, nil
	case design.ExtentTwoSides:
		two := rec.ExtentTwo
		if two == nil {
			return nil, fmt.Errorf("%w: %s without extent_two", ErrUnsupportedExtent, rec.ExtentType)
		}
		return func(in kernel.ExtrudeInput) {
			in.SetTwoSidesExtent(one.Distance.Value, two.Distance.Value, one.Taper(), two.Taper())
		}, nil
	case design.ExtentSymmetric:
		d := one.Distance.Value
		if one.IsFullLength {
			d /= 2
		}
		taper := one.Taper()
		return func(in kernel.ExtrudeInput) {
			in.SetTwoSidesExtent(d, d, taper, taper)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtent, rec.ExtentType)
	}
}
