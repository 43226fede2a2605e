package importer

import (
	"fmt"
	"sort"

	"github.com/chazu/lignin-replay/pkg/kernel"
)

// ProfileTable maps recorded profile ids to the live kernel profiles they
// were matched to. A nil value marks a profile that was recorded but not
// found.
type ProfileTable map[string]kernel.Profile

// Merge copies every entry of other into t. Profile ids are globally
// unique, so a collision overwrites.
func (t ProfileTable) Merge(other ProfileTable) {
	for id, p := range other {
		t[id] = p
	}
}

// Resolve returns the live profile for id.
func (t ProfileTable) Resolve(id string) (kernel.Profile, error) {
	p, ok := t[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not in the lookup table", ErrProfileUnresolved, id)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %q was not matched", ErrProfileUnresolved, id)
	}
	return p, nil
}

// Unmatched returns the sorted ids of entries that were not found.
func (t ProfileTable) Unmatched() []string {
	var ids []string
	for id, p := range t {
		if p == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
