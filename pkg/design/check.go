package design

import (
	"fmt"
	"sort"
)

// Severity indicates whether a finding makes the design unreplayable or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // replay will fail or produce wrong geometry
	SeverityWarning                 // replay degrades but continues
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single cross-record problem.
type Finding struct {
	Entity   string // entity id, empty for design-level findings
	Message  string
	Severity Severity
}

func (f Finding) String() string {
	if f.Entity == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] entity %s: %s", f.Severity, f.Entity, f.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Check runs the cross-record checks on d and returns the findings sorted
// by entity. It is read-only and never mutates the design. Replay does not
// depend on Check; it enforces the same rules as it goes.
func Check(d *Design) []Finding {
	var out []Finding
	out = append(out, checkTimeline(d)...)
	out = append(out, checkSketchReferences(d)...)
	out = append(out, checkSchemaValues(d)...)
	out = append(out, checkExtrudeOrder(d)...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Entity < out[j].Entity
	})
	return out
}

// sortedIDs returns entity ids in a stable order.
func sortedIDs(d *Design) []string {
	ids := make([]string, 0, len(d.Entities))
	for id := range d.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// checkTimeline checks that every timeline entry names an existing entity
// and that no entity is listed twice.
func checkTimeline(d *Design) []Finding {
	var out []Finding
	seen := make(map[string]int)
	for pos, entry := range d.Timeline {
		if _, ok := d.Entities[entry.Entity]; !ok {
			out = append(out, Finding{
				Entity:   entry.Entity,
				Message:  fmt.Sprintf("timeline position %d references a missing entity", pos),
				Severity: SeverityError,
			})
			continue
		}
		if prev, dup := seen[entry.Entity]; dup {
			out = append(out, Finding{
				Entity:   entry.Entity,
				Message:  fmt.Sprintf("listed at timeline positions %d and %d", prev, pos),
				Severity: SeverityWarning,
			})
		}
		seen[entry.Entity] = pos
	}
	return out
}

// checkSketchReferences checks that curves reference existing points and
// profile loops reference existing curves.
func checkSketchReferences(d *Design) []Finding {
	var out []Finding
	for _, id := range sortedIDs(d) {
		s := d.Entities[id].Sketch
		if s == nil {
			continue
		}

		curveIDs := make([]string, 0, len(s.Curves))
		for cid := range s.Curves {
			curveIDs = append(curveIDs, cid)
		}
		sort.Strings(curveIDs)
		for _, cid := range curveIDs {
			c := s.Curves[cid]
			if c.ConstructionGeom {
				continue
			}
			for _, pid := range c.PointIDs() {
				if _, ok := s.Points[pid]; !ok {
					out = append(out, Finding{
						Entity:   id,
						Message:  fmt.Sprintf("curve %s references missing point %q", cid, pid),
						Severity: SeverityError,
					})
				}
			}
		}

		profileIDs := make([]string, 0, len(s.Profiles))
		for pid := range s.Profiles {
			profileIDs = append(profileIDs, pid)
		}
		sort.Strings(profileIDs)
		for _, pid := range profileIDs {
			for _, cid := range s.Profiles[pid].CurveIDs() {
				if _, ok := s.Curves[cid]; !ok {
					out = append(out, Finding{
						Entity:   id,
						Message:  fmt.Sprintf("profile %s references missing curve %q", pid, cid),
						Severity: SeverityError,
					})
				}
			}
		}
	}
	return out
}

// checkSchemaValues warns about values the replay skips.
func checkSchemaValues(d *Design) []Finding {
	var out []Finding
	for _, id := range sortedIDs(d) {
		e := d.Entities[id]
		switch {
		case e.Sketch != nil:
			for cid, c := range e.Sketch.Curves {
				switch c.Type {
				case CurveLine, CurveArc, CurveCircle:
				default:
					out = append(out, Finding{
						Entity:   id,
						Message:  fmt.Sprintf("curve %s has unsupported type %q and will be skipped", cid, c.Type),
						Severity: SeverityWarning,
					})
				}
			}
		case e.Extrude != nil:
			switch e.Extrude.StartExtent.Type {
			case "", StartProfilePlane, StartOffset:
			default:
				out = append(out, Finding{
					Entity:   id,
					Message:  fmt.Sprintf("unsupported start extent %q, the profile plane is used", e.Extrude.StartExtent.Type),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return out
}

// checkExtrudeOrder checks that every profile an extrude consumes is
// defined by a sketch that appears earlier in the timeline.
func checkExtrudeOrder(d *Design) []Finding {
	var out []Finding
	available := make(map[string]bool)
	for _, entry := range d.Timeline {
		e, ok := d.Entities[entry.Entity]
		if !ok {
			continue
		}
		switch {
		case e.Sketch != nil:
			for pid := range e.Sketch.Profiles {
				available[pid] = true
			}
		case e.Extrude != nil:
			for _, ref := range e.Extrude.Profiles {
				if available[ref.Profile] {
					continue
				}
				msg := fmt.Sprintf("profile %q is not defined by an earlier sketch", ref.Profile)
				if len(d.Sketches(ref.Profile)) == 0 {
					msg = fmt.Sprintf("profile %q is not defined by any sketch", ref.Profile)
				}
				out = append(out, Finding{
					Entity:   entry.Entity,
					Message:  msg,
					Severity: SeverityError,
				})
			}
		}
	}
	return out
}
