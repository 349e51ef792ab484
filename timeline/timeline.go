package timeline

import (
	"fmt"
	"sort"
)

// Window is a resolved [Start, End) interval in seconds on the global timeline
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (w Window) Duration() float64 { return w.End - w.Start }

// Positive reports whether the window has a strictly positive duration
func (w Window) Positive() bool { return w.End > w.Start }

func (w Window) String() string { return fmt.Sprintf("%.3f-%.3f", w.Start, w.End) }

// VisualKind is the closed set of visual layer kinds
type VisualKind int

const (
	KindVideo VisualKind = iota
	KindImage
	KindText
)

func (k VisualKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("VisualKind(%d)", int(k))
}

// TextStyle is passed verbatim to the text renderer
type TextStyle struct {
	Content  string
	Font     string
	FontSize int
	Color    string
}

// VisualLayer is one positioned, timed element of the video composite
type VisualLayer struct {
	Kind   VisualKind
	Label  string
	Source string
	Window Window

	// SourceOffset seeks into the source before the layer starts playing
	SourceOffset float64

	// ScaleTo is the size the source is scaled to. For video, CropTo is the
	// centered crop applied afterwards; Size is the final rendered size.
	ScaleTo Size
	CropTo  Size
	Size    Size

	// Bounds is the on-canvas footprint (Size grown by rotation)
	Bounds Size

	// Origin is the top-left corner for video and image, the center for text
	Origin Point

	Opacity  float64
	ZIndex   int
	Seq      int
	Volume   float64
	HasAudio bool
	Rotation float64
	Text     *TextStyle
}

// AudioLayer is one clip of the audio composite
type AudioLayer struct {
	Label  string
	Source string
	Window Window
	Volume float64
}

// Skip records a decorative layer that was dropped and why
type Skip struct {
	Kind   VisualKind
	Label  string
	Reason string
}

// Timeline is the fully resolved set of layers for one conversion job
type Timeline struct {
	Canvas        Canvas
	Background    string
	Segments      []Segment
	Visuals       []VisualLayer
	Audio         []AudioLayer
	Skipped       []Skip
	TotalDuration float64
}

// PaintOrder returns the visual layers in ascending z_index; ties keep input order
func (t *Timeline) PaintOrder() []VisualLayer {
	layers := append([]VisualLayer(nil), t.Visuals...)
	sort.SliceStable(layers, func(i, j int) bool {
		if layers[i].ZIndex != layers[j].ZIndex {
			return layers[i].ZIndex < layers[j].ZIndex
		}
		return layers[i].Seq < layers[j].Seq
	})
	return layers
}

// computeDuration is the max resolved end across every segment and layer
func (t *Timeline) computeDuration() float64 {
	var total float64
	for _, s := range t.Segments {
		total = max(total, s.EndTime)
	}
	for _, v := range t.Visuals {
		total = max(total, v.Window.End)
	}
	for _, a := range t.Audio {
		total = max(total, a.Window.End)
	}
	return total
}
