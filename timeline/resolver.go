package timeline

import (
	"strings"

	"json2video/types"
)

// Resolver turns document time values into absolute seconds against a Registry.
// Only script segments can be referenced symbolically.
type Resolver struct {
	registry       *Registry
	legacyFallback bool
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithLegacyFallback makes a reference to start_time/end_time fall back to the
// segment's voice_start_time/voice_end_time when the former is absent.
func WithLegacyFallback(enabled bool) ResolverOption {
	return func(r *Resolver) { r.legacyFallback = enabled }
}

func NewResolver(registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the absolute value of one timing field of entity
func (r *Resolver) Resolve(entity types.Timed, field types.TimeField) (float64, error) {
	v := entity.TimeValue(field)
	if !v.IsSet() {
		return 0, &types.ResolutionError{Field: field, Reason: entity.Label() + " has no " + string(field)}
	}
	return r.ResolveValue(field, v)
}

// ResolveValue resolves a single value; field only labels errors.
// Absolute values must be >= 0.
func (r *Resolver) ResolveValue(field types.TimeField, v types.TimeValue) (float64, error) {
	if !v.IsSet() {
		return 0, &types.ResolutionError{Field: field, Reason: "value is missing"}
	}
	if secs, ok := v.Absolute(); ok {
		if secs < 0 {
			return 0, &types.ResolutionError{Field: field, Raw: v.Raw(), Reason: "absolute seconds must not be negative"}
		}
		return secs, nil
	}
	return r.resolveRef(field, v.Raw())
}

func (r *Resolver) resolveRef(field types.TimeField, raw string) (float64, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, &types.ResolutionError{Field: field, Raw: raw, Reason: `expected "<id>.<field>"`}
	}
	id, name := parts[0], parts[1]

	target, ok := types.ParseTimeField(name)
	if !ok {
		return 0, &types.ResolutionError{Field: field, Raw: raw, Reason: "unrecognized field " + name}
	}
	anchor, ok := r.registry.Lookup(id)
	if !ok {
		return 0, &types.ResolutionError{Field: field, Raw: raw, Reason: "no script segment with id " + id}
	}
	if secs, ok := anchor.Get(target); ok {
		return secs, nil
	}

	if r.legacyFallback {
		if fallback, ok := legacyFallbackField(target); ok {
			if secs, ok := anchor.Get(fallback); ok {
				return secs, nil
			}
		}
	}
	return 0, &types.ResolutionError{Field: field, Raw: raw, Reason: "segment " + id + " has no " + name}
}

func legacyFallbackField(field types.TimeField) (types.TimeField, bool) {
	switch field {
	case types.FieldEnd:
		return types.FieldVoiceEnd, true
	case types.FieldStart:
		return types.FieldVoiceStart, true
	case types.FieldVoiceStart, types.FieldVoiceEnd:
		return "", false
	}
	return "", false
}

// Window resolves both ends of a timed entity. It does not check the ordering.
func (r *Resolver) Window(entity types.Timed) (Window, error) {
	start, err := r.Resolve(entity, types.FieldStart)
	if err != nil {
		return Window{}, err
	}
	end, err := r.Resolve(entity, types.FieldEnd)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}
