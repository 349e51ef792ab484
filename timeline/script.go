package timeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"json2video/types"
)

// Segment is a script segment after its timings have been derived
type Segment struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	StartTime      float64 `json:"start_time"`
	VoiceStartTime float64 `json:"voice_start_time"`
	VoiceEndTime   float64 `json:"voice_end_time"`
	EndTime        float64 `json:"end_time"`
	AudioPath      string  `json:"audio_path"`
}

// Anchor returns the registry entry for the segment
func (s Segment) Anchor() Anchor {
	return Anchor{}.
		With(types.FieldStart, s.StartTime).
		With(types.FieldVoiceStart, s.VoiceStartTime).
		With(types.FieldVoiceEnd, s.VoiceEndTime).
		With(types.FieldEnd, s.EndTime)
}

// ScriptBuilder derives segment timings in document order, synthesizing narration
// for each one and registering it before moving to the next.
type ScriptBuilder struct {
	synth    Synthesizer
	registry *Registry
}

func NewScriptBuilder(synth Synthesizer, registry *Registry) *ScriptBuilder {
	return &ScriptBuilder{synth: synth, registry: registry}
}

// Build processes segments strictly in order: segment i starts where segment i-1 ended.
// Any synthesis failure aborts the whole build.
func (b *ScriptBuilder) Build(ctx context.Context, specs []types.ScriptSpec) ([]Segment, []AudioLayer, error) {
	if len(specs) == 0 {
		return nil, nil, nil
	}
	if b.synth == nil {
		return nil, nil, &types.SynthesisError{SegmentID: specs[0].ID, Err: errors.New("no narration synthesizer configured")}
	}

	segments := make([]Segment, 0, len(specs))
	narration := make([]AudioLayer, 0, len(specs))
	start := 0.0

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, nil, &types.SynthesisError{SegmentID: spec.ID, Err: err}
		}

		speech, err := b.synth.Synthesize(ctx, spec.Text)
		if err != nil {
			log.Printf("Error processing script %s: %v", spec.ID, err)
			return nil, nil, &types.SynthesisError{SegmentID: spec.ID, Err: err}
		}
		if speech.Duration <= 0 {
			return nil, nil, &types.SynthesisError{
				SegmentID: spec.ID,
				Err:       fmt.Errorf("narration %s has non-positive duration %.3f", speech.Path, speech.Duration),
			}
		}

		voiceStart := start + valueOr(spec.VoiceStartTime, 0)
		voiceEnd := voiceStart + speech.Duration
		seg := Segment{
			ID:             spec.ID,
			Text:           spec.Text,
			StartTime:      start,
			VoiceStartTime: voiceStart,
			VoiceEndTime:   voiceEnd,
			EndTime:        voiceEnd + valueOr(spec.PostPauseDuration, 0),
			AudioPath:      speech.Path,
		}

		if err := b.registry.Register(seg.ID, seg.Anchor()); err != nil {
			return nil, nil, &types.InputError{Reason: "script", Err: err}
		}

		segments = append(segments, seg)
		narration = append(narration, AudioLayer{
			Label:  "script " + seg.ID,
			Source: speech.Path,
			Window: Window{Start: seg.VoiceStartTime, End: seg.VoiceEndTime},
			Volume: 1,
		})
		log.Printf("Audio %s added to audio clips, start time: %.3f, end time: %.3f", speech.Path, seg.StartTime, seg.EndTime)

		start = seg.EndTime
	}
	return segments, narration, nil
}
