package importer

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/chazu/lignin-replay/pkg/design"
	"github.com/chazu/lignin-replay/pkg/identity"
	"github.com/chazu/lignin-replay/pkg/kernel"
	"go.uber.org/zap"
)

// DefaultTolerance is the absolute tolerance applied to area, perimeter
// and each centroid coordinate.
const DefaultTolerance = 1e-9

// Matcher re-associates a recorded profile with one of the profiles the
// kernel derived. A candidate matches when the sorted multiset of curve
// tags on its loops equals the recorded curve ids and its area, perimeter
// and centroid agree with the recorded properties within Tolerance. The
// first matching candidate in kernel enumeration order wins.
type Matcher struct {
	Tags      identity.Tagger
	Tolerance float64
	Logger    *zap.Logger
}

// Match returns the first candidate matching rec, or ErrProfileNotFound.
func (m *Matcher) Match(candidates []kernel.Profile, id string, rec *design.Profile) (kernel.Profile, error) {
	expected := rec.CurveIDs()
	sort.Strings(expected)

	for _, c := range candidates {
		if !slices.Equal(m.curveIDs(c), expected) {
			continue
		}
		props, err := c.AreaProperties(kernel.HighAccuracy)
		if err != nil {
			m.logger().Debug("area properties failed",
				zap.String("profile", id), zap.String("candidate", string(c.Handle())), zap.Error(err))
			continue
		}
		if m.sameProperties(props, rec.Properties) {
			return c, nil
		}
	}

	m.logger().Warn("profile not found",
		zap.String("profile", id),
		zap.Strings("curves", expected),
		zap.Int("candidates", len(candidates)))
	return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, id)
}

// curveIDs returns the sorted tags of every curve on every loop of p.
// Untagged curves are left out.
func (m *Matcher) curveIDs(p kernel.Profile) []string {
	var ids []string
	for _, l := range p.Loops() {
		for _, c := range l.Curves() {
			if id, ok := m.Tags.ID(c); ok {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func (m *Matcher) sameProperties(got kernel.AreaProperties, want design.ProfileProperties) bool {
	tol := m.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	within := func(a, b float64) bool { return math.Abs(a-b) <= tol }
	return within(got.Area, want.Area) &&
		within(got.Perimeter, want.Perimeter) &&
		within(got.Centroid.X, want.Centroid.X) &&
		within(got.Centroid.Y, want.Centroid.Y) &&
		within(got.Centroid.Z, want.Centroid.Z)
}

func (m *Matcher) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}
