package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads a JSON design.
func Decode(r io.Reader) (*Design, error) {
	var d Design
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode design: %w", err)
	}
	return &d, nil
}

// DecodeYAML reads a YAML design. The document is converted to JSON first
// so both formats share the same field names.
func DecodeYAML(r io.Reader) (*Design, error) {
	var tree any
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode yaml design: %w", err)
	}
	data, err := json.Marshal(normalizeYAML(tree))
	if err != nil {
		return nil, fmt.Errorf("convert yaml design: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Load reads a design file, choosing the format by extension.
func Load(path string) (*Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return Decode(f)
	}
}

// Encode writes d as indented JSON.
func Encode(w io.Writer, d *Design) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// normalizeYAML rewrites mappings with non-string keys so the tree can be
// marshalled as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeYAML(child)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return m
	case []any:
		for i, child := range t {
			t[i] = normalizeYAML(child)
		}
		return t
	default:
		return v
	}
}

// Sketches returns the ids of all sketch entities that define profileID.
func (d *Design) Sketches(profileID string) []string {
	var ids []string
	for id, e := range d.Entities {
		if e.Sketch == nil {
			continue
		}
		if _, ok := e.Sketch.Profiles[profileID]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
