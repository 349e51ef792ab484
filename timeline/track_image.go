package timeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"json2video/types"
)

// layerResult is one decorative element: either a layer or the reason it was skipped
type layerResult struct {
	layer VisualLayer
	err   error
}

// collect keeps successful layers in input order and turns failures into skips
func collect(kind VisualKind, labels []string, results []layerResult) ([]VisualLayer, []Skip) {
	var layers []VisualLayer
	var skipped []Skip
	for i, r := range results {
		if r.err != nil {
			log.Printf("Error processing %s: %v, skipping", labels[i], r.err)
			skipped = append(skipped, Skip{Kind: kind, Label: labels[i], Reason: r.err.Error()})
			continue
		}
		layers = append(layers, r.layer)
	}
	return layers, skipped
}

// parseImages isolates failures per image. Images share no ordering dependency,
// so they are materialized concurrently; output keeps document order.
func (t *tracks) parseImages(ctx context.Context, specs []types.ImageSpec) ([]VisualLayer, []Skip, error) {
	results := make([]layerResult, len(specs))
	labels := make([]string, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, t.concurrency))
	for i, spec := range specs {
		labels[i] = spec.Label()
		g.Go(func() error {
			layer, err := t.parseImage(gctx, spec)
			results[i] = layerResult{layer: layer, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	layers, skipped := collect(KindImage, labels, results)
	for _, l := range layers {
		log.Printf("Image %s added to video clips, start time: %.3f, end time: %.3f", l.Source, l.Window.Start, l.Window.End)
	}
	return layers, skipped, nil
}

func (t *tracks) parseImage(ctx context.Context, spec types.ImageSpec) (VisualLayer, error) {
	window, err := t.resolver.Window(spec)
	if err != nil {
		return VisualLayer{}, err
	}
	if !window.Positive() {
		return VisualLayer{}, fmt.Errorf("%s %s: %w", spec.Label(), window, types.ErrNonPositiveDuration)
	}
	opacity := valueOr(spec.Opacity, 1)
	if !validOpacity(opacity) {
		return VisualLayer{}, fmt.Errorf("%s opacity %g outside [0,1]", spec.Label(), opacity)
	}

	if t.prober == nil {
		return VisualLayer{}, errors.New("no media prober configured")
	}
	path, err := t.materialize(ctx, spec)
	if err != nil {
		return VisualLayer{}, err
	}

	info, err := t.prober.Probe(ctx, path)
	if err != nil {
		return VisualLayer{}, &types.AssetFetchError{Source: path, Err: err}
	}
	if info.Size().Empty() {
		return VisualLayer{}, &types.AssetFetchError{Source: path, Err: errors.New("not a decodable image")}
	}

	boxW, boxH := TargetBox(t.canvas, spec.MaxWidth, spec.MaxHeight)
	size := Fit(info.Size(), boxW, boxH)
	rotation := valueOr(spec.Rotation, 0)
	bounds := RotatedBounds(size, rotation)

	return VisualLayer{
		Kind:     KindImage,
		Label:    spec.Label(),
		Source:   path,
		Window:   window,
		ScaleTo:  size,
		CropTo:   size,
		Size:     size,
		Bounds:   bounds,
		Origin:   Place(t.canvas, spec.Position, bounds, spec.Label()),
		Opacity:  opacity,
		ZIndex:   spec.ZIndex,
		Rotation: rotation,
	}, nil
}

// materialize turns the image source into a local file path
func (t *tracks) materialize(ctx context.Context, spec types.ImageSpec) (string, error) {
	content := strings.TrimSpace(spec.SourceContent)
	if content == "" {
		return "", &types.AssetFetchError{Source: spec.Label(), Err: errors.New("source_content is empty")}
	}

	switch spec.Source() {
	case types.SourcePath:
		return content, nil

	case types.SourceURL:
		return t.download(ctx, content)

	case types.SourcePrompt:
		if t.searcher == nil {
			return "", &types.AssetFetchError{Source: content, Err: errors.New("no image search configured")}
		}
		url, err := t.searcher.Search(ctx, content)
		if err != nil {
			return "", &types.AssetFetchError{Source: content, Err: err}
		}
		if url == "" {
			return "", &types.AssetFetchError{Source: content, Err: errors.New("no image found for prompt")}
		}
		log.Printf("Image URL: %s", url)
		return t.download(ctx, url)
	}
	return "", &types.AssetFetchError{Source: content, Err: fmt.Errorf("unhandled source type %s", spec.Source())}
}

func (t *tracks) download(ctx context.Context, url string) (string, error) {
	if t.downloader == nil {
		return "", &types.AssetFetchError{Source: url, Err: errors.New("no downloader configured")}
	}
	path, err := t.downloader.Download(ctx, url)
	if err != nil {
		return "", &types.AssetFetchError{Source: url, Err: err}
	}
	return path, nil
}
