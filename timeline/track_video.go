package timeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"json2video/config"
	"json2video/types"
)

// tracks holds what every asset track parser needs for one job
type tracks struct {
	canvas      Canvas
	resolver    *Resolver
	prober      Prober
	searcher    ImageSearcher
	downloader  Downloader
	concurrency int
}

// parseVideos is all-or-nothing: the first bad video fails the job.
// Videos are laid out in ascending "order", ties keeping document order.
func (t *tracks) parseVideos(ctx context.Context, specs []types.VideoSpec) ([]VisualLayer, error) {
	ordered := append([]types.VideoSpec(nil), specs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	layers := make([]VisualLayer, 0, len(ordered))
	for _, spec := range ordered {
		layer, err := t.parseVideo(ctx, spec)
		if err != nil {
			log.Printf("Error processing video %s: %v", spec.VideoPath, err)
			return nil, err
		}
		layers = append(layers, layer)
		log.Printf("Video %s added to video clips, start time: %.3f, end time: %.3f", spec.VideoPath, layer.Window.Start, layer.Window.End)
	}
	return layers, nil
}

func (t *tracks) parseVideo(ctx context.Context, spec types.VideoSpec) (VisualLayer, error) {
	if !strings.EqualFold(filepath.Ext(spec.VideoPath), config.SupportedVideoContainer) {
		return VisualLayer{}, &types.UnsupportedFormatError{Path: spec.VideoPath, Want: config.SupportedVideoContainer}
	}

	window, err := t.resolver.Window(spec)
	if err != nil {
		return VisualLayer{}, err
	}
	if !window.Positive() {
		return VisualLayer{}, &types.InputError{Reason: spec.Label() + " " + window.String(), Err: types.ErrNonPositiveDuration}
	}

	opacity := valueOr(spec.Opacity, 1)
	if !validOpacity(opacity) {
		return VisualLayer{}, &types.InputError{Reason: fmt.Sprintf("%s opacity %g outside [0,1]", spec.Label(), opacity)}
	}
	volume := valueOr(spec.Volume, 1)
	if volume < 0 {
		return VisualLayer{}, &types.InputError{Reason: fmt.Sprintf("%s volume %g is negative", spec.Label(), volume)}
	}

	info, err := t.prober.Probe(ctx, spec.VideoPath)
	if err != nil {
		return VisualLayer{}, fmt.Errorf("probe %s: %w", spec.VideoPath, err)
	}
	natural := info.Size()
	if natural.Empty() {
		return VisualLayer{}, fmt.Errorf("probe %s: no video stream", spec.VideoPath)
	}
	if info.Duration > 0 && window.End > info.Duration {
		log.Printf("Warning: %s ends at %.3f but the source is only %.3fs long", spec.Label(), window.End, info.Duration)
	}

	// Resize to canvas height keeping the aspect ratio, then center-crop anything wider than the canvas.
	scaleTo := Size{
		Width:  max(1, floorPx(float64(natural.Width)*float64(t.canvas.Height)/float64(natural.Height))),
		Height: t.canvas.Height,
	}
	cropTo := Size{Width: min(scaleTo.Width, t.canvas.Width), Height: scaleTo.Height}
	size := cropTo
	if boundedExtent(spec.MaxWidth) || boundedExtent(spec.MaxHeight) {
		boxW, boxH := TargetBox(t.canvas, spec.MaxWidth, spec.MaxHeight)
		size = Fit(cropTo, boxW, boxH)
	}

	return VisualLayer{
		Kind:         KindVideo,
		Label:        spec.Label(),
		Source:       spec.VideoPath,
		Window:       window,
		SourceOffset: window.Start,
		ScaleTo:      scaleTo,
		CropTo:       cropTo,
		Size:         size,
		Bounds:       size,
		Origin:       Place(t.canvas, spec.Position, size, spec.Label()),
		Opacity:      opacity,
		ZIndex:       spec.ZIndex,
		Volume:       volume,
		HasAudio:     info.HasAudio,
	}, nil
}

func boundedExtent(e types.Extent) bool { return e.IsSet() && !e.Full }
