package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/chazu/lignin-replay/pkg/design"
	"github.com/chazu/lignin-replay/pkg/kernel"
	"go.uber.org/zap"
)

// ReconstructSketch rebuilds rec in a new sketch and matches each recorded
// profile against the profiles the kernel derives. It returns nil, nil for
// a reference sketch that carries no curve data. Profiles that cannot be
// matched are logged and recorded with a nil entry.
func (im *Importer) ReconstructSketch(ctx context.Context, rec *design.Sketch) (ProfileTable, error) {
	if rec.Curves == nil {
		im.log.Info("skipping reference sketch", zap.String("name", rec.Name))
		return nil, nil
	}
	im.log.Info("sketch geometry",
		zap.String("name", rec.Name),
		zap.Int("points", len(rec.Points)),
		zap.Int("curves", len(rec.Curves)))

	sk, err := im.BuildSketch(rec)
	if err != nil {
		return nil, err
	}

	candidates := sk.Profiles()
	table := make(ProfileTable, len(rec.Profiles))
	for _, id := range sortedKeys(rec.Profiles) {
		p, err := im.matcher.Match(candidates, id, rec.Profiles[id])
		if err != nil && !errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		table[id] = p
	}
	return table, nil
}

// BuildSketch creates a sketch for rec, places it and adds its curves with
// profile computation deferred until every curve is in. It does not match
// profiles.
func (im *Importer) BuildSketch(rec *design.Sketch) (kernel.Sketch, error) {
	sk, err := im.doc.CreateSketch()
	if err != nil {
		return nil, fmt.Errorf("create sketch %q: %w", rec.Name, err)
	}
	if rec.Transform != nil {
		if err := sk.SetTransform(transformMatrix(rec.Transform)); err != nil {
			return nil, fmt.Errorf("sketch %q transform: %w", rec.Name, err)
		}
	}

	sk.DeferCompute(true)
	err = im.addCurves(sk, rec)
	sk.DeferCompute(false)
	if err != nil {
		return nil, fmt.Errorf("sketch %q: %w", rec.Name, err)
	}
	return sk, nil
}

// addCurves materializes the non-construction curves of rec in id order
// and tags each with its id. Unsupported curve types and curves with
// missing points are skipped.
func (im *Importer) addCurves(sk kernel.Sketch, rec *design.Sketch) error {
	for _, id := range sortedKeys(rec.Curves) {
		c := rec.Curves[id]
		if c.ConstructionGeom {
			continue
		}

		pts, ok := im.curvePoints(rec, id, c)
		if !ok {
			continue
		}

		var (
			kc  kernel.Curve
			err error
		)
		switch c.Type {
		case design.CurveLine:
			kc, err = sk.AddLine(pts[0], pts[1])
		case design.CurveArc:
			kc, err = sk.AddArc(pts[0], pts[1], c.Sweep())
		case design.CurveCircle:
			kc, err = sk.AddCircle(pts[0], c.Radius)
		}
		if err != nil {
			return fmt.Errorf("curve %s: %w", id, err)
		}
		im.tags.Tag(kc, id)
	}
	return nil
}

// curvePoints looks up the points a curve refers to. It reports false for
// curve types other than line, arc and circle.
func (im *Importer) curvePoints(rec *design.Sketch, id string, c design.Curve) ([]kernel.Point3D, bool) {
	ids := c.PointIDs()
	if ids == nil {
		im.log.Warn("unsupported curve type",
			zap.String("sketch", rec.Name), zap.String("curve", id), zap.String("type", c.Type))
		return nil, false
	}
	pts := make([]kernel.Point3D, len(ids))
	for i, pid := range ids {
		p, ok := rec.Points[pid]
		if !ok {
			im.log.Warn("curve references missing point",
				zap.String("sketch", rec.Name), zap.String("curve", id), zap.String("point", pid))
			return nil, false
		}
		pts[i] = kernel.Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return pts, true
}

// transformMatrix converts a recorded transform. A flat matrix takes
// precedence over the coordinate-system form.
func transformMatrix(t *design.Transform) kernel.Matrix3D {
	if len(t.Matrix) == 16 {
		var m kernel.Matrix3D
		copy(m[:], t.Matrix)
		return m
	}
	vec := func(v design.Vector3D) kernel.Point3D { return kernel.Point3D{X: v.X, Y: v.Y, Z: v.Z} }
	return kernel.CoordinateSystem(
		kernel.Point3D{X: t.Origin.X, Y: t.Origin.Y, Z: t.Origin.Z},
		vec(t.XAxis), vec(t.YAxis), vec(t.ZAxis),
	)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
