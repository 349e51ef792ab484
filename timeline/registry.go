package timeline

import (
	"fmt"

	"json2video/types"
)

// Anchor holds the resolved timing fields of one script segment. A field that was
// never set reads as absent, which is what the legacy fallback keys off.
type Anchor struct {
	values  [4]float64
	present [4]bool
}

func slot(field types.TimeField) (int, bool) {
	switch field {
	case types.FieldStart:
		return 0, true
	case types.FieldEnd:
		return 1, true
	case types.FieldVoiceStart:
		return 2, true
	case types.FieldVoiceEnd:
		return 3, true
	}
	return 0, false
}

// With returns a copy of the anchor with field set to v. Unknown fields are ignored.
func (a Anchor) With(field types.TimeField, v float64) Anchor {
	if i, ok := slot(field); ok {
		a.values[i] = v
		a.present[i] = true
	}
	return a
}

// Get returns the field value and whether it was set
func (a Anchor) Get(field types.TimeField) (float64, bool) {
	i, ok := slot(field)
	if !ok || !a.present[i] {
		return 0, false
	}
	return a.values[i], true
}

// Registry is the append-only map of script segment id to resolved timing.
// It is written once per segment during the script build and only read afterwards.
type Registry struct {
	anchors map[string]Anchor
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{anchors: make(map[string]Anchor)}
}

// Register adds an anchor. Ids are write-once.
func (r *Registry) Register(id string, a Anchor) error {
	if _, exists := r.anchors[id]; exists {
		return fmt.Errorf("segment %q is already registered", id)
	}
	r.anchors[id] = a
	r.order = append(r.order, id)
	return nil
}

// Lookup finds an anchor by exact id
func (r *Registry) Lookup(id string) (Anchor, bool) {
	a, ok := r.anchors[id]
	return a, ok
}

// IDs returns registered ids in registration order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.order) }
