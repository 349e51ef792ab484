package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"json2video/publish"
	"json2video/timeline"
)

// fileSynth writes a real narration file per call so cleanup can be observed
type fileSynth struct {
	dir string
	mu  sync.Mutex
	n   int
}

func (s *fileSynth) Synthesize(_ context.Context, text string) (timeline.Speech, error) {
	s.mu.Lock()
	s.n++
	path := filepath.Join(s.dir, fmt.Sprintf("narration-%d.mp3", s.n))
	s.mu.Unlock()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return timeline.Speech{}, err
	}
	return timeline.Speech{Path: path, Duration: 2}, nil
}

type fakeComposer struct {
	mu      sync.Mutex
	err     error
	partial bool
	calls   []*timeline.Timeline
}

func (c *fakeComposer) Compose(_ context.Context, tl *timeline.Timeline, outputPath string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, tl)
	failWith, partial := c.err, c.partial
	c.mu.Unlock()
	if failWith != nil && !partial {
		return "", failWith
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, []byte("mp4"), 0o644); err != nil {
		return "", err
	}
	if failWith != nil {
		return "", failWith
	}
	return outputPath, nil
}

func (c *fakeComposer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fakeUploader struct {
	bucket, key, path string
	err               error
}

func (u *fakeUploader) UploadFile(_ context.Context, bucket, key, path string) error {
	u.bucket, u.key, u.path = bucket, key, path
	return u.err
}

type fakePublisher struct {
	meta publish.Metadata
}

func (p *fakePublisher) Upload(_ context.Context, _ string, meta publish.Metadata) (string, error) {
	p.meta = meta
	return "yt-123", nil
}

type fakeMedia struct {
	files map[string]string
}

func (m *fakeMedia) Download(_ context.Context, locator string) (string, error) {
	path, ok := m.files[locator]
	if !ok {
		return "", errors.New("404 Not Found")
	}
	return path, nil
}

type fakeKafka struct {
	keys []string
	msgs []any
}

func (k *fakeKafka) Publish(key string, v any) error {
	k.keys = append(k.keys, key)
	k.msgs = append(k.msgs, v)
	return nil
}

type mapKV struct {
	mu   sync.Mutex
	data map[string]string
	ttl  time.Duration
}

func (m *mapKV) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mapKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

type fixture struct {
	processor *Processor
	composer  *fakeComposer
	narration string
	output    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		composer:  &fakeComposer{},
		narration: filepath.Join(root, "narration"),
		output:    filepath.Join(root, "output"),
	}
	if err := os.MkdirAll(f.narration, 0o755); err != nil {
		t.Fatal(err)
	}
	f.processor = NewProcessor(Deps{
		Assembler: &timeline.Assembler{Synth: &fileSynth{dir: f.narration}},
		Composer:  f.composer,
		OutputDir: f.output,
	})
	return f
}

func (f *fixture) narrationFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.narration)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

const scriptDocument = `{
  "script": [
    {"_id": "s1", "text": "Hello there"},
    {"_id": "s2", "text": "Second line"}
  ],
  "text": [
    {"_id": "title", "content": "Hi", "start_time": "s1.start_time", "end_time": "s2.end_time"},
    {"_id": "blank", "content": "", "start_time": 0, "end_time": 1}
  ]
}`
