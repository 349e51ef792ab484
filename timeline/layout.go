package timeline

import (
	"log"
	"math"

	"json2video/config"
	"json2video/types"
)

// Canvas is the output resolution every percentage position and "full" size resolves against
type Canvas struct {
	Width  int
	Height int
}

// CanvasFor returns the document canvas, defaulting to 1920x1080
func CanvasFor(doc *types.Document) Canvas {
	if r := doc.ExtraArgs.Resolution; r != nil && r.Width > 0 && r.Height > 0 {
		return Canvas{Width: r.Width, Height: r.Height}
	}
	return Canvas{Width: config.DefaultWidth, Height: config.DefaultHeight}
}

// Size is a pixel size
type Size struct {
	Width  int
	Height int
}

func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Point is a canvas coordinate in pixels
type Point struct {
	X float64
	Y float64
}

// floor with a small epsilon so 0.1+0.2 style drift does not cost a pixel
func floorPx(v float64) int {
	return int(math.Floor(v + 1e-9))
}

// Fit scales natural uniformly so it fits inside the target box, preserving aspect ratio.
// The scale factor is min(boxW/naturalW, boxH/naturalH); the result never exceeds the box.
func Fit(natural Size, boxW, boxH int) Size {
	if natural.Empty() || boxW <= 0 || boxH <= 0 {
		return Size{}
	}
	scale := math.Min(float64(boxW)/float64(natural.Width), float64(boxH)/float64(natural.Height))
	return Size{
		Width:  max(1, min(boxW, floorPx(float64(natural.Width)*scale))),
		Height: max(1, min(boxH, floorPx(float64(natural.Height)*scale))),
	}
}

// TargetBox resolves max_width/max_height: "full" or absent means the canvas axis,
// explicit values are clamped to the canvas.
func TargetBox(canvas Canvas, maxW, maxH types.Extent) (int, int) {
	return axisTarget(canvas.Width, maxW), axisTarget(canvas.Height, maxH)
}

func axisTarget(canvasPx int, e types.Extent) int {
	if !e.IsSet() || e.Full {
		return canvasPx
	}
	return min(e.Pixels, canvasPx)
}

// Center converts a percentage position to canvas pixels. A malformed position logs
// a warning and falls back to the canvas center.
func Center(canvas Canvas, pos types.Position, label string) Point {
	x, y := config.DefaultPosition, config.DefaultPosition
	switch {
	case !pos.IsSet():
	case !pos.Valid():
		log.Printf("Invalid position for %s: %s, using center", label, pos)
	default:
		x, y = pos.X, pos.Y
	}
	return Point{
		X: x / 100 * float64(canvas.Width),
		Y: y / 100 * float64(canvas.Height),
	}
}

// Place returns the top-left corner that puts the center of an element of the
// given rendered size at the percentage position.
func Place(canvas Canvas, pos types.Position, rendered Size, label string) Point {
	c := Center(canvas, pos, label)
	return Point{
		X: c.X - float64(rendered.Width)/2,
		Y: c.Y - float64(rendered.Height)/2,
	}
}

// RotatedBounds is the axis-aligned footprint of s rotated by degrees
func RotatedBounds(s Size, degrees float64) Size {
	if math.Mod(degrees, 360) == 0 {
		return s
	}
	rad := degrees * math.Pi / 180
	cos, sin := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	w := float64(s.Width)*cos + float64(s.Height)*sin
	h := float64(s.Width)*sin + float64(s.Height)*cos
	return Size{Width: int(math.Ceil(w - 1e-9)), Height: int(math.Ceil(h - 1e-9))}
}

func validOpacity(v float64) bool { return v >= 0 && v <= 1 }

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
