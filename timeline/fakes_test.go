package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeSynth struct {
	durations map[string]float64
	voice     string
	calls     []string
	fail      string
}

func newFakeSynth(durations map[string]float64) *fakeSynth {
	return &fakeSynth{durations: durations}
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) (Speech, error) {
	f.calls = append(f.calls, text)
	if text == f.fail {
		return Speech{}, errors.New("tts backend unavailable")
	}
	d, ok := f.durations[text]
	if !ok {
		d = 1
	}
	return Speech{Path: fmt.Sprintf("narration/%d.mp3", len(f.calls)), Duration: d}, nil
}

func (f *fakeSynth) WithVoice(voice string) Synthesizer {
	f.voice = voice
	return f
}

type fakeProber struct {
	media map[string]MediaInfo
}

func (f *fakeProber) Probe(_ context.Context, path string) (MediaInfo, error) {
	info, ok := f.media[path]
	if !ok {
		return MediaInfo{}, fmt.Errorf("%s: no such file", path)
	}
	return info, nil
}

type fakeSearcher struct {
	results map[string]string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (string, error) {
	return f.results[query], nil
}

type fakeDownloader struct {
	mu     sync.Mutex
	files  map[string]string
	called []string
}

func (f *fakeDownloader) Download(_ context.Context, locator string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, locator)
	path, ok := f.files[locator]
	if !ok {
		return "", fmt.Errorf("GET %s: 404 Not Found", locator)
	}
	return path, nil
}

func ptr(v float64) *float64 { return &v }
