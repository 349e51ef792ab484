package timeline

import (
	"context"
	"log"
	"strings"

	"json2video/config"
	"json2video/types"
)

// Assembler turns a document into a resolved Timeline. The collaborators are
// injected so tests can run the whole pipeline without network or ffmpeg.
type Assembler struct {
	Synth      Synthesizer
	Searcher   ImageSearcher
	Downloader Downloader
	Prober     Prober

	// LegacyTimeFallback lets start/end references to script segments fall
	// back to voice_start/voice_end when the primary field is missing.
	LegacyTimeFallback bool

	// FetchConcurrency bounds how many images are materialized at once
	FetchConcurrency int
}

// Assemble runs the build in dependency order: the script first, since every
// other track may reference its timings, then videos, images, audio and text.
func (a *Assembler) Assemble(ctx context.Context, doc *types.Document) (*Timeline, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	canvas := CanvasFor(doc)
	registry := NewRegistry()

	synth := a.Synth
	if voice := strings.TrimSpace(doc.ExtraArgs.VoiceID); voice != "" {
		if vs, ok := synth.(VoiceSelector); ok {
			synth = vs.WithVoice(voice)
		} else {
			log.Printf("Warning: narration backend cannot select voice %q, using default", voice)
		}
	}

	segments, narration, err := NewScriptBuilder(synth, registry).Build(ctx, doc.Script)
	if err != nil {
		return nil, err
	}

	t := &tracks{
		canvas:      canvas,
		resolver:    NewResolver(registry, WithLegacyFallback(a.LegacyTimeFallback)),
		prober:      a.Prober,
		searcher:    a.Searcher,
		downloader:  a.Downloader,
		concurrency: a.FetchConcurrency,
	}
	if t.concurrency <= 0 {
		t.concurrency = config.FetchConcurrency
	}

	tl := &Timeline{
		Canvas:     canvas,
		Background: doc.ExtraArgs.BackgroundColor,
		Segments:   segments,
	}
	if tl.Background == "" {
		tl.Background = config.DefaultBackgroundColor
	}

	if len(doc.Videos) > 0 {
		if t.prober == nil {
			return nil, &types.InputError{Reason: "videos require a media prober"}
		}
		videos, err := t.parseVideos(ctx, doc.Videos)
		if err != nil {
			return nil, err
		}
		tl.Visuals = append(tl.Visuals, videos...)
	}

	if len(doc.Images) > 0 {
		images, skipped, err := t.parseImages(ctx, doc.Images)
		if err != nil {
			return nil, err
		}
		tl.Visuals = append(tl.Visuals, images...)
		tl.Skipped = append(tl.Skipped, skipped...)
	}

	music, err := t.parseAudio(doc.Audio)
	if err != nil {
		return nil, err
	}
	tl.Audio = append(narration, music...)

	texts, skipped := t.parseTexts(doc.Text)
	tl.Visuals = append(tl.Visuals, texts...)
	tl.Skipped = append(tl.Skipped, skipped...)

	for i := range tl.Visuals {
		tl.Visuals[i].Seq = i
	}
	tl.TotalDuration = tl.computeDuration()

	log.Printf("Timeline assembled: %d segments, %d visual layers, %d audio clips, %d skipped, %.3fs",
		len(tl.Segments), len(tl.Visuals), len(tl.Audio), len(tl.Skipped), tl.TotalDuration)
	return tl, nil
}
