package timeline

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"json2video/config"
	"json2video/types"
)

// parseTexts isolates failures per text overlay
func (t *tracks) parseTexts(specs []types.TextSpec) ([]VisualLayer, []Skip) {
	results := make([]layerResult, len(specs))
	labels := make([]string, len(specs))
	for i, spec := range specs {
		labels[i] = spec.Label()
		layer, err := t.parseText(spec)
		results[i] = layerResult{layer: layer, err: err}
	}

	layers, skipped := collect(KindText, labels, results)
	for _, l := range layers {
		log.Printf("Text %q added to video clips, start time: %.3f, end time: %.3f", l.Text.Content, l.Window.Start, l.Window.End)
	}
	return layers, skipped
}

func (t *tracks) parseText(spec types.TextSpec) (VisualLayer, error) {
	body := spec.Body()
	if strings.TrimSpace(body) == "" {
		return VisualLayer{}, errors.New("text has no content")
	}
	if spec.FontSize < 0 {
		return VisualLayer{}, fmt.Errorf("font_size %d is negative", spec.FontSize)
	}

	window, err := t.resolver.Window(spec)
	if err != nil {
		return VisualLayer{}, err
	}
	if !window.Positive() {
		return VisualLayer{}, fmt.Errorf("%s %s: %w", spec.Label(), window, types.ErrNonPositiveDuration)
	}

	style := &TextStyle{
		Content:  body,
		Font:     spec.Font,
		FontSize: spec.FontSize,
		Color:    spec.Color,
	}
	if style.Font == "" {
		style.Font = config.DefaultFont
	}
	if style.FontSize == 0 {
		style.FontSize = config.DefaultFontSize
	}
	if style.Color == "" {
		style.Color = config.DefaultTextColor
	}

	// The rendered text size is only known to the renderer, so the layer keeps the
	// center point and the composer offsets by half the drawn width and height.
	return VisualLayer{
		Kind:    KindText,
		Label:   spec.Label(),
		Window:  window,
		Origin:  Center(t.canvas, spec.Position, spec.Label()),
		Opacity: 1,
		ZIndex:  spec.ZIndex,
		Text:    style,
	}, nil
}
