package timeline

import "context"

// Speech is a synthesized narration artifact
type Speech struct {
	Path     string
	Duration float64
}

// Synthesizer turns narration text into an audio file
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Speech, error)
}

// VoiceSelector is implemented by synthesizers that can switch voice per job
type VoiceSelector interface {
	WithVoice(voice string) Synthesizer
}

// ImageSearcher finds an image URL for a text query. An empty URL means nothing matched.
type ImageSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Downloader materializes a remote locator into a local file path
type Downloader interface {
	Download(ctx context.Context, locator string) (string, error)
}

// MediaInfo is what the layout needs to know about a source file
type MediaInfo struct {
	Width    int
	Height   int
	Duration float64
	HasAudio bool
}

func (m MediaInfo) Size() Size { return Size{Width: m.Width, Height: m.Height} }

// Prober reads media metadata
type Prober interface {
	Probe(ctx context.Context, path string) (MediaInfo, error)
}
