package design

import (
	"encoding/json"
	"fmt"
)

// Entity is one record of the entity map, discriminated by Type. Exactly
// one of Sketch and Extrude is set for the known types; other types keep
// their raw payload and are ignored by the replay.
type Entity struct {
	Type    string
	Name    string
	Sketch  *Sketch
	Extrude *Extrude

	raw json.RawMessage
}

// NewSketchEntity wraps a sketch record.
func NewSketchEntity(s *Sketch) *Entity {
	s.Type = TypeSketch
	return &Entity{Type: TypeSketch, Name: s.Name, Sketch: s}
}

// NewExtrudeEntity wraps an extrude record.
func NewExtrudeEntity(e *Extrude) *Entity {
	e.Type = TypeExtrude
	return &Entity{Type: TypeExtrude, Name: e.Name, Extrude: e}
}

type entityHeader struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// UnmarshalJSON decodes the entity body selected by its type tag.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var h entityHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	*e = Entity{Type: h.Type, Name: h.Name}

	switch h.Type {
	case TypeSketch:
		var s Sketch
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("sketch %q: %w", h.Name, err)
		}
		e.Sketch = &s
	case TypeExtrude:
		var x Extrude
		if err := json.Unmarshal(data, &x); err != nil {
			return fmt.Errorf("extrude %q: %w", h.Name, err)
		}
		e.Extrude = &x
	default:
		e.raw = append(json.RawMessage(nil), data...)
	}
	return nil
}

// MarshalJSON encodes the entity body.
func (e *Entity) MarshalJSON() ([]byte, error) {
	switch {
	case e.Sketch != nil:
		return json.Marshal(e.Sketch)
	case e.Extrude != nil:
		return json.Marshal(e.Extrude)
	case e.raw != nil:
		return e.raw, nil
	default:
		return json.Marshal(entityHeader{Type: e.Type, Name: e.Name})
	}
}
