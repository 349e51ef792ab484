package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// TimeField names one of the timing fields a reference may point at
type TimeField string

const (
	FieldStart      TimeField = "start_time"
	FieldEnd        TimeField = "end_time"
	FieldVoiceStart TimeField = "voice_start_time"
	FieldVoiceEnd   TimeField = "voice_end_time"
)

// ParseTimeField accepts exactly the four recognized field names
func ParseTimeField(s string) (TimeField, bool) {
	switch TimeField(s) {
	case FieldStart:
		return FieldStart, true
	case FieldEnd:
		return FieldEnd, true
	case FieldVoiceStart:
		return FieldVoiceStart, true
	case FieldVoiceEnd:
		return FieldVoiceEnd, true
	}
	return "", false
}

// TimeValue is either absolute seconds or a symbolic reference of the form "<id>.<field>".
// The zero value means the field was absent from the document.
type TimeValue struct {
	set     bool
	ref     bool
	seconds float64
	raw     string
}

// Seconds builds an absolute time value
func Seconds(v float64) TimeValue {
	return TimeValue{set: true, seconds: v, raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Ref builds a symbolic time value. The string is validated on resolution, not here.
func Ref(raw string) TimeValue {
	return TimeValue{set: true, ref: true, raw: raw}
}

// IsSet reports whether the document carried the field at all
func (t TimeValue) IsSet() bool { return t.set }

// IsRef reports whether the value is a symbolic reference
func (t TimeValue) IsRef() bool { return t.ref }

// Absolute returns the literal seconds when the value is not a reference
func (t TimeValue) Absolute() (float64, bool) {
	if !t.set || t.ref {
		return 0, false
	}
	return t.seconds, true
}

// Raw returns the value as written in the document
func (t TimeValue) Raw() string { return t.raw }

func (t TimeValue) String() string {
	if !t.set {
		return "<unset>"
	}
	return t.raw
}

func (t TimeValue) MarshalJSON() ([]byte, error) {
	switch {
	case !t.set:
		return []byte("null"), nil
	case t.ref:
		return json.Marshal(t.raw)
	default:
		return json.Marshal(t.seconds)
	}
}

func (t *TimeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = TimeValue{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Ref(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("time value must be a number or \"<id>.<field>\" string, got %s", data)
	}
	*t = Seconds(f)
	return nil
}

func (t TimeValue) MarshalYAML() (interface{}, error) {
	switch {
	case !t.set:
		return nil, nil
	case t.ref:
		return t.raw, nil
	default:
		return t.seconds, nil
	}
}

func (t *TimeValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: time value must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*t = TimeValue{}
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*t = Seconds(f)
	case "!!str":
		*t = Ref(node.Value)
	default:
		return fmt.Errorf("line %d: time value must be a number or \"<id>.<field>\" string", node.Line)
	}
	return nil
}

// Timed is implemented by every descriptor that carries timing fields
type Timed interface {
	TimeValue(field TimeField) TimeValue
	Label() string
}
