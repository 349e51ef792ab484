package video

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"json2video/config"
	"json2video/timeline"
	"json2video/types"
)

// Composer renders a resolved timeline into a single encoded file
type Composer struct {
	runner Runner
}

func NewComposer(runner Runner) *Composer {
	if runner == nil {
		runner = FFmpegRunner{}
	}
	return &Composer{runner: runner}
}

// Compose paints every visual layer onto a background canvas in paint order,
// mixes every audio layer at its start time and encodes the result.
func (c *Composer) Compose(ctx context.Context, tl *timeline.Timeline, outputPath string) (string, error) {
	out, err := Graph(tl, outputPath)
	if err != nil {
		return "", &types.RenderError{OutputPath: outputPath, Err: err}
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &types.RenderError{OutputPath: outputPath, Err: err}
		}
	}

	log.Printf("Rendering %s (%dx%d, %.2fs, %d visual layers, %d audio clips)",
		outputPath, tl.Canvas.Width, tl.Canvas.Height, tl.TotalDuration, len(tl.Visuals), len(tl.Audio))

	if err := c.runner.Run(ctx, out.GetArgs()); err != nil {
		log.Printf("Error creating final clip: %v", err)
		return "", &types.RenderError{OutputPath: outputPath, Err: err}
	}

	log.Printf("Video rendered: %s", outputPath)
	return outputPath, nil
}

// Graph builds the ffmpeg stream graph for a timeline without running it
func Graph(tl *timeline.Timeline, outputPath string) (*ffmpeg.Stream, error) {
	if tl == nil {
		return nil, errors.New("no timeline to render")
	}
	if tl.TotalDuration <= 0 {
		return nil, fmt.Errorf("timeline has no duration (%.3fs)", tl.TotalDuration)
	}
	if tl.Canvas.Width <= 0 || tl.Canvas.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", tl.Canvas.Width, tl.Canvas.Height)
	}

	background := tl.Background
	if background == "" {
		background = config.DefaultBackgroundColor
	}
	base := ffmpeg.Input(
		fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s", background, tl.Canvas.Width, tl.Canvas.Height, config.FPS, seconds(tl.TotalDuration)),
		ffmpeg.KwArgs{"f": "lavfi"},
	)

	var audio []*ffmpeg.Stream
	for _, layer := range tl.PaintOrder() {
		switch layer.Kind {
		case timeline.KindVideo:
			in := ffmpeg.Input(layer.Source, ffmpeg.KwArgs{
				"ss": seconds(layer.SourceOffset),
				"t":  seconds(layer.Window.Duration()),
			})
			base = overlay(base, videoLayer(in.Video(), layer), layer)
			if layer.HasAudio && layer.Volume > 0 {
				audio = append(audio, placeAudio(in.Audio(), layer.Window, layer.Volume))
			}

		case timeline.KindImage:
			in := ffmpeg.Input(layer.Source, ffmpeg.KwArgs{
				"loop":      1,
				"framerate": config.FPS,
				"t":         seconds(layer.Window.Duration()),
			})
			base = overlay(base, imageLayer(in.Video(), layer), layer)

		case timeline.KindText:
			base = drawText(base, layer)

		default:
			return nil, fmt.Errorf("unknown layer kind %s", layer.Kind)
		}
	}

	for _, a := range tl.Audio {
		if a.Volume <= 0 {
			continue
		}
		in := ffmpeg.Input(a.Source).Audio().
			Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": seconds(a.Window.Duration())})
		audio = append(audio, placeAudio(in, a.Window, a.Volume))
	}

	streams := []*ffmpeg.Stream{base.Filter("format", ffmpeg.Args{config.PixelFormat})}
	if mixed := mixAudio(audio); mixed != nil {
		streams = append(streams, mixed)
	}

	return ffmpeg.Output(streams, outputPath, ffmpeg.KwArgs{
		"c:v":     config.VideoCodec,
		"preset":  config.VideoPreset,
		"pix_fmt": config.PixelFormat,
		"r":       config.FPS,
		"c:a":     config.AudioCodec,
		"b:a":     config.AudioBitrate,
		"t":       seconds(tl.TotalDuration),
	}).OverWriteOutput(), nil
}

func videoLayer(s *ffmpeg.Stream, layer timeline.VisualLayer) *ffmpeg.Stream {
	s = s.Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{"w": layer.ScaleTo.Width, "h": layer.ScaleTo.Height})
	if layer.CropTo != layer.ScaleTo {
		s = s.Filter("crop", ffmpeg.Args{}, ffmpeg.KwArgs{"w": layer.CropTo.Width, "h": layer.CropTo.Height})
	}
	if layer.Size != layer.CropTo {
		s = s.Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{"w": layer.Size.Width, "h": layer.Size.Height})
	}
	s = s.Filter("fps", ffmpeg.Args{}, ffmpeg.KwArgs{"fps": config.FPS})
	return finishVisual(s, layer)
}

func imageLayer(s *ffmpeg.Stream, layer timeline.VisualLayer) *ffmpeg.Stream {
	s = s.Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{"w": layer.Size.Width, "h": layer.Size.Height})
	if math.Mod(layer.Rotation, 360) != 0 {
		rad := fmt.Sprintf("%.6f", layer.Rotation*math.Pi/180)
		s = s.Filter("format", ffmpeg.Args{"rgba"}).
			Filter("rotate", ffmpeg.Args{}, ffmpeg.KwArgs{
				"a":  rad,
				"ow": layer.Bounds.Width,
				"oh": layer.Bounds.Height,
				"c":  "none",
			})
	}
	return finishVisual(s, layer)
}

// finishVisual applies opacity and shifts the layer onto the global timeline
func finishVisual(s *ffmpeg.Stream, layer timeline.VisualLayer) *ffmpeg.Stream {
	if layer.Opacity < 1 {
		s = s.Filter("format", ffmpeg.Args{"rgba"}).
			Filter("colorchannelmixer", ffmpeg.Args{}, ffmpeg.KwArgs{"aa": fmt.Sprintf("%.3f", layer.Opacity)})
	}
	return s.Filter("setpts", ffmpeg.Args{fmt.Sprintf("PTS-STARTPTS+%s/TB", seconds(layer.Window.Start))})
}

func overlay(base, top *ffmpeg.Stream, layer timeline.VisualLayer) *ffmpeg.Stream {
	return ffmpeg.Filter([]*ffmpeg.Stream{base, top}, "overlay", ffmpeg.Args{}, ffmpeg.KwArgs{
		"x":          pixels(layer.Origin.X),
		"y":          pixels(layer.Origin.Y),
		"eof_action": "pass",
		"enable":     enable(layer.Window),
	})
}

// drawText centers the rendered text on the layer origin
func drawText(base *ffmpeg.Stream, layer timeline.VisualLayer) *ffmpeg.Stream {
	style := layer.Text
	if style == nil {
		return base
	}
	kw := ffmpeg.KwArgs{
		"text":      style.Content,
		"expansion": "none",
		"font":      style.Font,
		"fontsize":  style.FontSize,
		"fontcolor": style.Color,
		"x":         fmt.Sprintf("%s-text_w/2", pixels(layer.Origin.X)),
		"y":         fmt.Sprintf("%s-text_h/2", pixels(layer.Origin.Y)),
		"enable":    enable(layer.Window),
	}
	return base.Filter("drawtext", ffmpeg.Args{}, kw)
}

func placeAudio(s *ffmpeg.Stream, window timeline.Window, volume float64) *ffmpeg.Stream {
	s = s.Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})
	if volume != 1 {
		s = s.Filter("volume", ffmpeg.Args{fmt.Sprintf("%.3f", volume)})
	}
	if delay := int64(math.Round(window.Start * 1000)); delay > 0 {
		s = s.Filter("adelay", ffmpeg.Args{}, ffmpeg.KwArgs{"delays": delay, "all": 1})
	}
	return s
}

func mixAudio(streams []*ffmpeg.Stream) *ffmpeg.Stream {
	switch len(streams) {
	case 0:
		return nil
	case 1:
		return streams[0]
	}
	return ffmpeg.Filter(streams, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
		"inputs":    len(streams),
		"duration":  "longest",
		"normalize": 0,
	})
}

func enable(w timeline.Window) string {
	return fmt.Sprintf("between(t,%s,%s)", seconds(w.Start), seconds(w.End))
}

func seconds(v float64) string { return fmt.Sprintf("%.3f", v) }

func pixels(v float64) string { return fmt.Sprintf("%d", int(math.Round(v))) }
