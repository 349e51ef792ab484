package timeline

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"json2video/types"
)

func TestFitPreservesAspect(t *testing.T) {
	cases := []struct {
		natural    Size
		boxW, boxH int
		want       Size
	}{
		{Size{800, 600}, 400, 400, Size{400, 300}},
		{Size{600, 800}, 400, 400, Size{300, 400}},
		{Size{100, 50}, 1920, 1080, Size{1920, 960}},
		{Size{1920, 1080}, 1920, 1080, Size{1920, 1080}},
		{Size{0, 50}, 100, 100, Size{}},
	}
	for _, c := range cases {
		got := Fit(c.natural, c.boxW, c.boxH)
		if got != c.want {
			t.Fatalf("Fit(%v, %d, %d) = %v; want %v", c.natural, c.boxW, c.boxH, got, c.want)
		}
		if got.Width > c.boxW || got.Height > c.boxH {
			t.Fatalf("Fit(%v) = %v exceeds box %dx%d", c.natural, got, c.boxW, c.boxH)
		}
	}
}

func TestTargetBoxClampsToCanvas(t *testing.T) {
	canvas := Canvas{Width: 1080, Height: 1920}
	w, h := TargetBox(canvas, types.PixelExtent(4000), types.Whole())
	if w != 1080 || h != 1920 {
		t.Fatalf("TargetBox = %dx%d; want 1080x1920", w, h)
	}
	w, h = TargetBox(canvas, types.PixelExtent(400), types.Extent{})
	if w != 400 || h != 1920 {
		t.Fatalf("TargetBox = %dx%d; want 400x1920", w, h)
	}
}

func TestPlaceCentersElement(t *testing.T) {
	canvas := Canvas{Width: 1920, Height: 1080}

	got := Place(canvas, types.At(50, 50), Size{400, 300}, "image")
	if got != (Point{X: 760, Y: 390}) {
		t.Fatalf("Place at [50,50] = %+v; want (760,390)", got)
	}

	got = Place(canvas, types.At(0, 100), Size{200, 100}, "image")
	if got != (Point{X: -100, Y: 1030}) {
		t.Fatalf("Place at [0,100] = %+v; want (-100,1030)", got)
	}

	got = Place(canvas, types.Position{}, Size{400, 300}, "image")
	if got != (Point{X: 760, Y: 390}) {
		t.Fatalf("Place with no position = %+v; want canvas center", got)
	}
}

func TestRotatedBounds(t *testing.T) {
	s := Size{400, 200}
	if got := RotatedBounds(s, 0); got != s {
		t.Fatalf("0deg = %v", got)
	}
	if got := RotatedBounds(s, 90); got != (Size{200, 400}) {
		t.Fatalf("90deg = %v; want 200x400", got)
	}
	if got := RotatedBounds(s, 45); got.Width <= 400 || got.Height <= 200 {
		t.Fatalf("45deg = %v; want a larger footprint", got)
	}
}

func TestPaintOrderByZIndexThenInput(t *testing.T) {
	tl := &Timeline{Visuals: []VisualLayer{
		{Label: "a", ZIndex: 3, Seq: 0},
		{Label: "b", ZIndex: 1, Seq: 1},
		{Label: "c", ZIndex: 2, Seq: 2},
		{Label: "d", ZIndex: 1, Seq: 3},
	}}
	var got []string
	for _, l := range tl.PaintOrder() {
		got = append(got, l.Label)
	}
	want := []string{"b", "d", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PaintOrder = %v; want %v", got, want)
		}
	}
	if tl.Visuals[0].Label != "a" {
		t.Fatalf("PaintOrder reordered the timeline in place")
	}
}

func TestPlaceFallsBackToCenterForMalformedPosition(t *testing.T) {
	canvas := Canvas{Width: 1920, Height: 1080}

	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	for _, raw := range []string{`[10]`, `"left"`, `[1, 2, 3]`, `{"x": 10}`} {
		var pos types.Position
		if err := json.Unmarshal([]byte(raw), &pos); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !pos.IsSet() || pos.Valid() {
			t.Fatalf("position %s should be set but malformed", raw)
		}

		buf.Reset()
		got := Place(canvas, pos, Size{400, 300}, "image logo")
		if got != (Point{X: 760, Y: 390}) {
			t.Errorf("Place with %s = %+v; want canvas center", raw, got)
		}
		if !strings.Contains(buf.String(), "Invalid position for image logo") {
			t.Errorf("expected a warning for %s, got %q", raw, buf.String())
		}
	}
}
