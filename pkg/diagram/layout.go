package diagram

import (
	"encoding/json"
	"maps"
	"slices"
)

// LayoutRecord maps persistable node identities to user-chosen positions.
// One record exists per diagram file; it carries no version field.
type LayoutRecord map[string]Position

// Clone returns a copy of the record. A nil record clones to an empty one.
func (r LayoutRecord) Clone() LayoutRecord {
	out := make(LayoutRecord, len(r))
	maps.Copy(out, r)
	return out
}

// Lookup returns the saved position for id.
func (r LayoutRecord) Lookup(id string) (Position, bool) {
	p, ok := r[id]
	return p, ok
}

// Keys returns the identities in the record, sorted.
func (r LayoutRecord) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Equal reports whether both records hold the same identities at the same positions.
func (r LayoutRecord) Equal(o LayoutRecord) bool {
	return maps.Equal(r, o)
}

// MarshalJSON encodes the record as a plain object. A nil record encodes as {}.
func (r LayoutRecord) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Position(r))
}

// Valid reports whether every identity is persistable and every position finite.
func (r LayoutRecord) Valid() bool {
	for id, p := range r {
		if !Persistable(id) || !p.Finite() {
			return false
		}
	}
	return true
}
