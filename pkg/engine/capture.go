package engine

import (
	"fmt"
	"slices"
	"sort"

	"github.com/chazu/lignin-replay/pkg/design"
	"github.com/chazu/lignin-replay/pkg/identity"
	"github.com/chazu/lignin-replay/pkg/importer"
	"github.com/chazu/lignin-replay/pkg/kernel"
	"github.com/chazu/lignin-replay/pkg/kernel/sdfx"
)

// Capture fills in the area properties of every authored profile that was
// written without them. Each such sketch is rebuilt on a scratch document
// and the properties are read from the first derived profile bounded by
// exactly the recorded curves, which is how a replay will find it again.
// Profiles that already carry properties are left untouched.
func Capture(d *design.Design) error {
	ids := make([]string, 0, len(d.Entities))
	for id := range d.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s := d.Entities[id].Sketch
		if s == nil || s.Curves == nil || !needsCapture(s) {
			continue
		}
		if err := captureSketch(s); err != nil {
			return fmt.Errorf("capture sketch %q: %w", id, err)
		}
	}
	return nil
}

func needsCapture(s *design.Sketch) bool {
	for _, p := range s.Profiles {
		if p.Properties == (design.ProfileProperties{}) {
			return true
		}
	}
	return false
}

func captureSketch(s *design.Sketch) error {
	tags := identity.NewStore()
	im := importer.New(sdfx.New(), importer.Options{Tagger: tags})
	sk, err := im.BuildSketch(s)
	if err != nil {
		return err
	}
	candidates := sk.Profiles()

	for pid, p := range s.Profiles {
		if p.Properties != (design.ProfileProperties{}) {
			continue
		}
		want := p.CurveIDs()
		sort.Strings(want)

		var found kernel.Profile
		for _, c := range candidates {
			if slices.Equal(tagsOf(tags, c), want) {
				found = c
				break
			}
		}
		if found == nil {
			return fmt.Errorf("profile %q: no region is bounded by curves %v", pid, want)
		}
		props, err := found.AreaProperties(kernel.HighAccuracy)
		if err != nil {
			return fmt.Errorf("profile %q: %w", pid, err)
		}
		p.Properties = design.ProfileProperties{
			Area:      props.Area,
			Perimeter: props.Perimeter,
			Centroid: design.Point3D{
				Type: "Point3D",
				X:    props.Centroid.X,
				Y:    props.Centroid.Y,
				Z:    props.Centroid.Z,
			},
		}
	}
	return nil
}

func tagsOf(tags identity.Tagger, p kernel.Profile) []string {
	var ids []string
	for _, l := range p.Loops() {
		for _, c := range l.Curves() {
			if id, ok := tags.ID(c); ok {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}
