package timeline

import (
	"fmt"
	"log"

	"json2video/types"
)

// parseAudio is all-or-nothing. Each clip plays from the start of its source,
// windowed to its resolved duration, the same way narration clips are.
func (t *tracks) parseAudio(specs []types.AudioSpec) ([]AudioLayer, error) {
	layers := make([]AudioLayer, 0, len(specs))
	for _, spec := range specs {
		layer, err := t.parseAudioClip(spec)
		if err != nil {
			log.Printf("Error processing audio %s: %v", spec.AudioPath, err)
			return nil, err
		}
		layers = append(layers, layer)
		log.Printf("Audio %s added to audio clips, start time: %.3f, end time: %.3f", spec.AudioPath, layer.Window.Start, layer.Window.End)
	}
	return layers, nil
}

func (t *tracks) parseAudioClip(spec types.AudioSpec) (AudioLayer, error) {
	window, err := t.resolver.Window(spec)
	if err != nil {
		return AudioLayer{}, err
	}
	if !window.Positive() {
		return AudioLayer{}, &types.InputError{Reason: spec.Label() + " " + window.String(), Err: types.ErrNonPositiveDuration}
	}
	volume := valueOr(spec.Volume, 1)
	if volume < 0 {
		return AudioLayer{}, &types.InputError{Reason: fmt.Sprintf("%s volume %g is negative", spec.Label(), volume)}
	}
	return AudioLayer{
		Label:  spec.Label(),
		Source: spec.AudioPath,
		Window: window,
		Volume: volume,
	}, nil
}
