package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Position is a percentage coordinate on the canvas. A malformed value is kept
// (not rejected) so the layout step can warn and fall back to the center.
type Position struct {
	X, Y  float64
	set   bool
	valid bool
	raw   string
}

// At builds a well-formed position
func At(x, y float64) Position {
	return Position{X: x, Y: y, set: true, valid: true}
}

// IsSet reports whether the document carried a position
func (p Position) IsSet() bool { return p.set }

// Valid reports whether the position was a two-element numeric pair
func (p Position) Valid() bool { return !p.set || p.valid }

func (p Position) String() string {
	if !p.set {
		return "<unset>"
	}
	if !p.valid {
		return p.raw
	}
	return fmt.Sprintf("[%g,%g]", p.X, p.Y)
}

func (p Position) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	if !p.valid {
		if json.Valid([]byte(p.raw)) {
			return []byte(p.raw), nil
		}
		return json.Marshal(p.raw)
	}
	return json.Marshal([]float64{p.X, p.Y})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Position{}
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		*p = Position{set: true, raw: string(data)}
		return nil
	}
	*p = At(pair[0], pair[1])
	return nil
}

func (p *Position) UnmarshalYAML(node *yaml.Node) error {
	var pair []float64
	if err := node.Decode(&pair); err != nil || len(pair) != 2 {
		*p = Position{set: true, raw: node.Value}
		return nil
	}
	*p = At(pair[0], pair[1])
	return nil
}

// FullExtent is the sizing sentinel meaning "the whole canvas on this axis"
const FullExtent = "full"

// Extent is a max_width/max_height value: pixels or the "full" sentinel
type Extent struct {
	Pixels int
	Full   bool
	set    bool
}

// PixelExtent builds a bounded extent
func PixelExtent(px int) Extent { return Extent{Pixels: px, set: true} }

// Whole builds the "full" extent
func Whole() Extent { return Extent{Full: true, set: true} }

// IsSet reports whether the document carried the field
func (e Extent) IsSet() bool { return e.set }

func (e Extent) MarshalJSON() ([]byte, error) {
	switch {
	case !e.set:
		return []byte("null"), nil
	case e.Full:
		return json.Marshal(FullExtent)
	default:
		return json.Marshal(e.Pixels)
	}
}

func (e *Extent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = Extent{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return e.parse(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("size must be a number or %q, got %s", FullExtent, data)
	}
	return e.fromFloat(f)
}

func (e *Extent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*e = Extent{}
		return nil
	}
	return e.parse(node.Value)
}

func (e *Extent) parse(s string) error {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, FullExtent) {
		*e = Whole()
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("size must be a number or %q, got %q", FullExtent, s)
	}
	return e.fromFloat(f)
}

func (e *Extent) fromFloat(f float64) error {
	if f <= 0 {
		return fmt.Errorf("size must be positive, got %g", f)
	}
	*e = PixelExtent(int(f))
	return nil
}
