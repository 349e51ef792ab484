package video

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"json2video/timeline"
	"json2video/types"
)

type recordingRunner struct {
	args []string
	err  error
}

func (r *recordingRunner) Run(_ context.Context, args []string) error {
	r.args = args
	return r.err
}

func sampleTimeline() *timeline.Timeline {
	return &timeline.Timeline{
		Canvas:     timeline.Canvas{Width: 1080, Height: 1920},
		Background: "black",
		Visuals: []timeline.VisualLayer{
			{
				Kind: timeline.KindVideo, Label: "video bg.mp4", Source: "bg.mp4",
				Window:  timeline.Window{Start: 0, End: 6},
				ScaleTo: timeline.Size{Width: 3413, Height: 1920}, CropTo: timeline.Size{Width: 1080, Height: 1920},
				Size: timeline.Size{Width: 1080, Height: 1920}, Opacity: 1, Volume: 0.5, HasAudio: true, Seq: 0,
			},
			{
				Kind: timeline.KindImage, Label: "image logo", Source: "logo.png",
				Window: timeline.Window{Start: 1, End: 3},
				Size:   timeline.Size{Width: 400, Height: 300}, Bounds: timeline.Size{Width: 400, Height: 300},
				Origin: timeline.Point{X: 340, Y: 810}, Opacity: 0.5, ZIndex: 2, Seq: 1,
			},
			{
				Kind: timeline.KindText, Label: "text title", Window: timeline.Window{Start: 0, End: 2},
				Origin: timeline.Point{X: 540, Y: 960}, Opacity: 1, ZIndex: 3, Seq: 2,
				Text: &timeline.TextStyle{Content: "Hello", Font: "Arial", FontSize: 48, Color: "white"},
			},
		},
		Audio: []timeline.AudioLayer{
			{Label: "script intro", Source: "narration/intro.mp3", Window: timeline.Window{Start: 0.5, End: 2.5}, Volume: 1},
			{Label: "audio music.mp3", Source: "music.mp3", Window: timeline.Window{Start: 0, End: 6}, Volume: 0.2},
		},
		TotalDuration: 6,
	}
}

func TestComposeBuildsFilterGraph(t *testing.T) {
	runner := &recordingRunner{}
	out := filepath.Join(t.TempDir(), "out", "final.mp4")

	got, err := NewComposer(runner).Compose(context.Background(), sampleTimeline(), out)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got != out {
		t.Fatalf("Compose returned %q; want %q", got, out)
	}

	joined := strings.Join(runner.args, " ")
	for _, want := range []string{
		"color=c=black:s=1080x1920:r=30:d=6.000",
		"lavfi",
		"bg.mp4",
		"logo.png",
		"narration/intro.mp3",
		"music.mp3",
		"-filter_complex",
		"overlay",
		"eof_action=pass",
		"drawtext",
		"colorchannelmixer",
		"adelay",
		"amix",
		"libx264",
		"veryfast",
		"aac",
		"192k",
		out,
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("ffmpeg args missing %q:\n%s", want, joined)
		}
	}
	if !slices.Contains(runner.args, "-y") {
		t.Fatalf("expected output to be overwritten: %s", joined)
	}
}

func TestComposeWrapsEncoderFailure(t *testing.T) {
	runner := &recordingRunner{err: errors.New("exit status 1")}
	out := filepath.Join(t.TempDir(), "final.mp4")

	_, err := NewComposer(runner).Compose(context.Background(), sampleTimeline(), out)
	var renderErr *types.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("got %v; want RenderError", err)
	}
	if renderErr.OutputPath != out {
		t.Fatalf("RenderError.OutputPath = %q; want %q", renderErr.OutputPath, out)
	}
}

func TestComposeRejectsEmptyTimeline(t *testing.T) {
	runner := &recordingRunner{}
	_, err := NewComposer(runner).Compose(context.Background(), &timeline.Timeline{Canvas: timeline.Canvas{Width: 10, Height: 10}}, "x.mp4")
	var renderErr *types.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("got %v; want RenderError", err)
	}
	if runner.args != nil {
		t.Fatalf("encoder ran for an empty timeline")
	}
}

func TestSilentTimelineHasNoAudioMix(t *testing.T) {
	tl := &timeline.Timeline{
		Canvas: timeline.Canvas{Width: 640, Height: 360},
		Visuals: []timeline.VisualLayer{{
			Kind: timeline.KindText, Window: timeline.Window{Start: 0, End: 1},
			Text: &timeline.TextStyle{Content: "quiet", Font: "Arial", FontSize: 20, Color: "white"},
		}},
		TotalDuration: 1,
	}
	stream, err := Graph(tl, "quiet.mp4")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	joined := strings.Join(stream.GetArgs(), " ")
	if strings.Contains(joined, "amix") || strings.Contains(joined, "adelay") {
		t.Fatalf("unexpected audio filters: %s", joined)
	}
	if !strings.Contains(joined, "drawtext") {
		t.Fatalf("missing drawtext: %s", joined)
	}
}

func TestParseProbe(t *testing.T) {
	out := `{
	  "streams": [
	    {"codec_type": "video", "width": 1920, "height": 1080, "duration": "12.5", "tags": {"rotate": "90"}},
	    {"codec_type": "audio", "duration": "12.4"}
	  ],
	  "format": {"duration": "12.52"}
	}`
	info, err := parseProbe(out)
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	want := timeline.MediaInfo{Width: 1080, Height: 1920, Duration: 12.52, HasAudio: true}
	if info != want {
		t.Fatalf("parseProbe = %+v; want %+v", info, want)
	}

	still, err := parseProbe(`{"streams":[{"codec_type":"video","width":800,"height":600}],"format":{}}`)
	if err != nil {
		t.Fatalf("parseProbe image: %v", err)
	}
	if still.Size() != (timeline.Size{Width: 800, Height: 600}) || still.HasAudio {
		t.Fatalf("image probe = %+v", still)
	}

	if _, err := parseProbe("not json"); err == nil {
		t.Fatalf("expected error for invalid ffprobe output")
	}
}

func TestDrawTextDisablesExpansion(t *testing.T) {
	tl := &timeline.Timeline{
		Canvas: timeline.Canvas{Width: 640, Height: 360},
		Visuals: []timeline.VisualLayer{{
			Kind: timeline.KindText, Window: timeline.Window{Start: 0, End: 1},
			Text: &timeline.TextStyle{Content: "100% real", Font: "Arial", FontSize: 20, Color: "white"},
		}},
		TotalDuration: 1,
	}
	stream, err := Graph(tl, "percent.mp4")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	joined := strings.Join(stream.GetArgs(), " ")
	for _, want := range []string{"expansion=none", "100% real"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("drawtext args missing %q: %s", want, joined)
		}
	}
}
