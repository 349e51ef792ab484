package timeline

import (
	"context"
	"errors"
	"testing"

	"json2video/types"
)

const sampleDocument = `{
  "script": [
    {"_id": "intro", "text": "Welcome", "post_pause_duration": 0.5},
    {"_id": "body", "text": "Main point"}
  ],
  "videos": [
    {"video_path": "bg.mp4", "start_time": 0, "end_time": "body.end_time", "z_index": 0}
  ],
  "images": [
    {"image_id": "one", "source_type": "path", "source_content": "logo.png", "start_time": 0, "end_time": "intro.end_time", "max_width": 400, "max_height": 400, "position": [50, 50], "z_index": 2},
    {"image_id": "two", "source_type": "url", "source_content": "https://cdn.example.com/missing.jpg", "start_time": 1, "end_time": 2, "z_index": 2},
    {"image_id": "three", "source_type": "prompt", "source_content": "mountain lake", "start_time": "body.start_time", "end_time": "body.voice_end_time", "max_width": "full", "z_index": 1}
  ],
  "audio": [
    {"_id": "music", "audio_path": "music.mp3", "start_time": 0, "end_time": "body.end_time", "volume": 0.2}
  ],
  "text": [
    {"_id": "title", "content": "Hello", "start_time": "intro.voice_start_time", "end_time": "intro.voice_end_time", "z_index": 5}
  ],
  "extra_args": {"voice_id": "nova"}
}`

func newTestAssembler() (*Assembler, *fakeSynth, *fakeDownloader) {
	synth := newFakeSynth(map[string]float64{"Welcome": 2, "Main point": 3})
	dl := &fakeDownloader{files: map[string]string{
		"https://images.example.com/lake.jpg": "assets/images/lake.jpg",
	}}
	return &Assembler{
		Synth:      synth,
		Searcher:   &fakeSearcher{results: map[string]string{"mountain lake": "https://images.example.com/lake.jpg"}},
		Downloader: dl,
		Prober: &fakeProber{media: map[string]MediaInfo{
			"bg.mp4":                 {Width: 1280, Height: 720, Duration: 30, HasAudio: true},
			"logo.png":               {Width: 800, Height: 600},
			"assets/images/lake.jpg": {Width: 4000, Height: 3000},
		}},
		FetchConcurrency: 2,
	}, synth, dl
}

func parseSample(t *testing.T, raw string) *types.Document {
	t.Helper()
	doc, err := types.ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestAssembleResolvesEveryTrack(t *testing.T) {
	a, synth, dl := newTestAssembler()
	tl, err := a.Assemble(context.Background(), parseSample(t, sampleDocument))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if synth.voice != "nova" {
		t.Fatalf("voice = %q; want nova", synth.voice)
	}
	if tl.Canvas != (Canvas{Width: 1920, Height: 1080}) {
		t.Fatalf("canvas = %+v", tl.Canvas)
	}
	if tl.Background != "black" {
		t.Fatalf("background = %q", tl.Background)
	}

	// intro: 0 -> 2 voice, ends 2.5; body: 2.5 -> 5.5
	if tl.TotalDuration != 5.5 {
		t.Fatalf("total duration = %v; want 5.5", tl.TotalDuration)
	}

	if len(tl.Visuals) != 4 {
		t.Fatalf("got %d visual layers; want 4 (video, two images, text)", len(tl.Visuals))
	}
	video := tl.Visuals[0]
	if video.Kind != KindVideo || video.Window != (Window{0, 5.5}) || video.Size != (Size{1920, 1080}) {
		t.Fatalf("video layer = %+v", video)
	}
	if !video.HasAudio || video.Volume != 1 {
		t.Fatalf("video audio = %v volume %v", video.HasAudio, video.Volume)
	}

	logo := tl.Visuals[1]
	if logo.Size != (Size{400, 300}) || logo.Origin != (Point{760, 390}) || logo.Window != (Window{0, 2.5}) {
		t.Fatalf("logo layer = %+v", logo)
	}
	lake := tl.Visuals[2]
	if lake.Source != "assets/images/lake.jpg" || lake.Window != (Window{2.5, 5.5}) || lake.Size != (Size{1440, 1080}) {
		t.Fatalf("lake layer = %+v", lake)
	}

	title := tl.Visuals[3]
	if title.Kind != KindText || title.Window != (Window{0, 2}) || title.Origin != (Point{960, 540}) {
		t.Fatalf("title layer = %+v", title)
	}
	if title.Text.Font != "Arial" || title.Text.FontSize != 48 || title.Text.Color != "white" {
		t.Fatalf("title style = %+v", title.Text)
	}

	for i, v := range tl.Visuals {
		if v.Seq != i {
			t.Fatalf("layer %d has Seq %d", i, v.Seq)
		}
	}

	if len(tl.Skipped) != 1 || tl.Skipped[0].Label != "image two" {
		t.Fatalf("skipped = %+v; want only image two", tl.Skipped)
	}
	if len(dl.called) != 2 {
		t.Fatalf("downloader called %d times; want 2", len(dl.called))
	}

	if len(tl.Audio) != 3 {
		t.Fatalf("got %d audio layers; want 2 narration + music", len(tl.Audio))
	}
	music := tl.Audio[2]
	if music.Window != (Window{0, 5.5}) || music.Volume != 0.2 {
		t.Fatalf("music layer = %+v", music)
	}
}

func TestAssembleVideoScalesAndCrops(t *testing.T) {
	a, _, _ := newTestAssembler()
	a.Prober = &fakeProber{media: map[string]MediaInfo{
		"wide.mp4":     {Width: 3840, Height: 1080},
		"portrait.mp4": {Width: 1080, Height: 1920},
	}}
	doc := &types.Document{Videos: []types.VideoSpec{
		{VideoPath: "wide.mp4", StartTime: types.Seconds(0), EndTime: types.Seconds(4), MaxWidth: types.PixelExtent(960)},
		{VideoPath: "portrait.mp4", StartTime: types.Seconds(1), EndTime: types.Seconds(3)},
	}}

	tl, err := a.Assemble(context.Background(), doc)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	wide := tl.Visuals[0]
	if wide.ScaleTo != (Size{3840, 1080}) || wide.CropTo != (Size{1920, 1080}) || wide.Size != (Size{960, 540}) {
		t.Fatalf("wide = scale %v crop %v size %v", wide.ScaleTo, wide.CropTo, wide.Size)
	}
	portrait := tl.Visuals[1]
	if portrait.Size != (Size{607, 1080}) || portrait.SourceOffset != 1 {
		t.Fatalf("portrait = size %v offset %v", portrait.Size, portrait.SourceOffset)
	}
	if portrait.Origin.X != 960-303.5 {
		t.Fatalf("portrait origin = %+v", portrait.Origin)
	}
}

func TestNonPositiveDurationIsFatalForStructuralTracks(t *testing.T) {
	cases := []struct {
		name string
		doc  *types.Document
	}{
		{"video", &types.Document{Videos: []types.VideoSpec{{VideoPath: "bg.mp4", StartTime: types.Seconds(3), EndTime: types.Seconds(3)}}}},
		{"audio", &types.Document{Audio: []types.AudioSpec{{AudioPath: "music.mp3", StartTime: types.Seconds(5), EndTime: types.Seconds(2)}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, _, _ := newTestAssembler()
			_, err := a.Assemble(context.Background(), c.doc)
			if !errors.Is(err, types.ErrNonPositiveDuration) {
				t.Fatalf("got %v; want ErrNonPositiveDuration", err)
			}
		})
	}
}

func TestNonPositiveDurationIsSkippedForDecorativeTracks(t *testing.T) {
	a, _, _ := newTestAssembler()
	doc := &types.Document{
		Images: []types.ImageSpec{
			{ImageID: "late", SourceType: "path", SourceContent: "logo.png", StartTime: types.Seconds(4), EndTime: types.Seconds(1)},
			{ImageID: "fine", SourceType: "path", SourceContent: "logo.png", StartTime: types.Seconds(0), EndTime: types.Seconds(1)},
		},
		Text: []types.TextSpec{
			{ID: "zero", Content: "gone", StartTime: types.Seconds(2), EndTime: types.Seconds(2)},
		},
	}

	tl, err := a.Assemble(context.Background(), doc)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(tl.Visuals) != 1 || tl.Visuals[0].Label != "image fine" {
		t.Fatalf("visuals = %+v; want only image fine", tl.Visuals)
	}
	if len(tl.Skipped) != 2 {
		t.Fatalf("skipped = %+v; want 2", tl.Skipped)
	}
}

func TestUnresolvableReferenceOnImageIsSkipped(t *testing.T) {
	a, _, _ := newTestAssembler()
	doc := &types.Document{
		Images: []types.ImageSpec{
			{ImageID: "ghost", SourceType: "path", SourceContent: "logo.png", StartTime: types.Ref("nope.start_time"), EndTime: types.Seconds(2)},
		},
		Text: []types.TextSpec{
			{Content: "still here", StartTime: types.Seconds(0), EndTime: types.Seconds(2)},
		},
	}
	tl, err := a.Assemble(context.Background(), doc)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(tl.Visuals) != 1 || tl.Visuals[0].Kind != KindText {
		t.Fatalf("visuals = %+v", tl.Visuals)
	}
}

func TestUnresolvableReferenceOnVideoFailsJob(t *testing.T) {
	a, _, _ := newTestAssembler()
	doc := &types.Document{Videos: []types.VideoSpec{
		{VideoPath: "bg.mp4", StartTime: types.Seconds(0), EndTime: types.Ref("outro.end_time")},
	}}
	_, err := a.Assemble(context.Background(), doc)
	var resErr *types.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("got %v; want ResolutionError", err)
	}
}

func TestNegativeAbsoluteStartFailsStructuralTracks(t *testing.T) {
	cases := []struct {
		name string
		doc  *types.Document
	}{
		{"video", &types.Document{Videos: []types.VideoSpec{{VideoPath: "bg.mp4", StartTime: types.Seconds(-2), EndTime: types.Seconds(3)}}}},
		{"audio", &types.Document{Audio: []types.AudioSpec{{AudioPath: "music.mp3", StartTime: types.Seconds(-5), EndTime: types.Seconds(1)}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, _, _ := newTestAssembler()
			_, err := a.Assemble(context.Background(), c.doc)
			var resErr *types.ResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("got %v; want ResolutionError", err)
			}
		})
	}
}

func TestUnsupportedVideoContainer(t *testing.T) {
	a, _, _ := newTestAssembler()
	doc := &types.Document{Videos: []types.VideoSpec{
		{VideoPath: "clip.mov", StartTime: types.Seconds(0), EndTime: types.Seconds(2)},
	}}
	_, err := a.Assemble(context.Background(), doc)
	var formatErr *types.UnsupportedFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("got %v; want UnsupportedFormatError", err)
	}
}

func TestAssembleRejectsEmptyDocument(t *testing.T) {
	a, _, _ := newTestAssembler()
	_, err := a.Assemble(context.Background(), &types.Document{})
	var inputErr *types.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("got %v; want InputError", err)
	}
}
