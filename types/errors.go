package types

import (
	"errors"
	"fmt"
)

// ErrNonPositiveDuration marks a timed entity whose resolved end is not after its start.
var ErrNonPositiveDuration = errors.New("end_time must be greater than start_time")

// InputError reports a malformed input document. Nothing is processed when it is returned.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return "invalid input: " + e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

// ResolutionError reports a time value that could not be turned into seconds.
// Raw carries the offending value exactly as it appeared in the document.
type ResolutionError struct {
	Field  TimeField
	Raw    string
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("unable to resolve %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("unable to resolve %s %q: %s", e.Field, e.Raw, e.Reason)
}

// UnsupportedFormatError reports a video source in a container we do not decode.
type UnsupportedFormatError struct {
	Path string
	Want string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("invalid video format, only %s files are supported: %s", e.Want, e.Path)
}

// SynthesisError reports a narration synthesis failure for one script segment.
type SynthesisError struct {
	SegmentID string
	Err       error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("narration synthesis failed for segment %q: %v", e.SegmentID, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// AssetFetchError reports a decorative asset that could not be materialized.
type AssetFetchError struct {
	Source string
	Err    error
}

func (e *AssetFetchError) Error() string {
	return fmt.Sprintf("asset unavailable %q: %v", e.Source, e.Err)
}

func (e *AssetFetchError) Unwrap() error { return e.Err }

// RenderError reports a failed final encode.
type RenderError struct {
	OutputPath string
	Err        error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.OutputPath, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
