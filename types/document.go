package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the declarative description of one short video
type Document struct {
	Videos    []VideoSpec  `json:"videos,omitempty" yaml:"videos,omitempty"`
	Images    []ImageSpec  `json:"images,omitempty" yaml:"images,omitempty"`
	Audio     []AudioSpec  `json:"audio,omitempty" yaml:"audio,omitempty"`
	Script    []ScriptSpec `json:"script,omitempty" yaml:"script,omitempty"`
	Text      []TextSpec   `json:"text,omitempty" yaml:"text,omitempty"`
	ExtraArgs ExtraArgs    `json:"extra_args" yaml:"extra_args"`
}

// VideoSpec describes a background or inset video clip
type VideoSpec struct {
	VideoPath string    `json:"video_path" yaml:"video_path"`
	StartTime TimeValue `json:"start_time" yaml:"start_time"`
	EndTime   TimeValue `json:"end_time" yaml:"end_time"`
	MaxWidth  Extent    `json:"max_width" yaml:"max_width"`
	MaxHeight Extent    `json:"max_height" yaml:"max_height"`
	ZIndex    int       `json:"z_index" yaml:"z_index"`
	Position  Position  `json:"position" yaml:"position"`
	Opacity   *float64  `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Volume    *float64  `json:"volume,omitempty" yaml:"volume,omitempty"`
	Order     int       `json:"order" yaml:"order"`
}

func (v VideoSpec) TimeValue(field TimeField) TimeValue { return assetTime(field, v.StartTime, v.EndTime) }
func (v VideoSpec) Label() string                        { return "video " + v.VideoPath }

// ImageSpec describes a still overlay whose pixels come from a path, a URL or a search prompt
type ImageSpec struct {
	ImageID       string    `json:"image_id" yaml:"image_id"`
	SourceType    string    `json:"source_type" yaml:"source_type"`
	SourceContent string    `json:"source_content" yaml:"source_content"`
	StartTime     TimeValue `json:"start_time" yaml:"start_time"`
	EndTime       TimeValue `json:"end_time" yaml:"end_time"`
	MaxWidth      Extent    `json:"max_width" yaml:"max_width"`
	MaxHeight     Extent    `json:"max_height" yaml:"max_height"`
	ZIndex        int       `json:"z_index" yaml:"z_index"`
	Position      Position  `json:"position" yaml:"position"`
	Opacity       *float64  `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Rotation      *float64  `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

func (i ImageSpec) TimeValue(field TimeField) TimeValue { return assetTime(field, i.StartTime, i.EndTime) }

func (i ImageSpec) Label() string {
	if i.ImageID != "" {
		return "image " + i.ImageID
	}
	return "image " + i.SourceContent
}

// Source classifies how SourceContent is materialized into a local file
func (i ImageSpec) Source() SourceType { return ParseSourceType(i.SourceType) }

// SourceType is the closed set of image source kinds
type SourceType int

const (
	SourcePrompt SourceType = iota
	SourcePath
	SourceURL
)

// ParseSourceType maps the document tag; anything unrecognized is treated as a prompt
func ParseSourceType(s string) SourceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "path":
		return SourcePath
	case "url":
		return SourceURL
	default:
		return SourcePrompt
	}
}

func (s SourceType) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceURL:
		return "url"
	case SourcePrompt:
		return "prompt"
	}
	return fmt.Sprintf("SourceType(%d)", int(s))
}

// AudioSpec describes a discrete audio clip such as background music
type AudioSpec struct {
	ID        string    `json:"_id" yaml:"_id"`
	AudioPath string    `json:"audio_path" yaml:"audio_path"`
	StartTime TimeValue `json:"start_time" yaml:"start_time"`
	EndTime   TimeValue `json:"end_time" yaml:"end_time"`
	Volume    *float64  `json:"volume,omitempty" yaml:"volume,omitempty"`
}

func (a AudioSpec) TimeValue(field TimeField) TimeValue { return assetTime(field, a.StartTime, a.EndTime) }
func (a AudioSpec) Label() string                        { return "audio " + a.AudioPath }

// ScriptSpec is one narration segment. Its start/end/voice_end times are outputs of the
// script timeline build; VoiceStartTime here is an offset from the segment start.
type ScriptSpec struct {
	ID                string   `json:"_id" yaml:"_id"`
	Text              string   `json:"text" yaml:"text"`
	VoiceStartTime    *float64 `json:"voice_start_time,omitempty" yaml:"voice_start_time,omitempty"`
	PostPauseDuration *float64 `json:"post_pause_duration,omitempty" yaml:"post_pause_duration,omitempty"`
}

// TextSpec is a rendered text overlay
type TextSpec struct {
	ID        string    `json:"_id" yaml:"_id"`
	Content   string    `json:"content" yaml:"content"`
	Text      string    `json:"text,omitempty" yaml:"text,omitempty"`
	StartTime TimeValue `json:"start_time" yaml:"start_time"`
	EndTime   TimeValue `json:"end_time" yaml:"end_time"`
	Font      string    `json:"font" yaml:"font"`
	FontSize  int       `json:"font_size" yaml:"font_size"`
	Color     string    `json:"color" yaml:"color"`
	Position  Position  `json:"position" yaml:"position"`
	ZIndex    int       `json:"z_index" yaml:"z_index"`
}

func (t TextSpec) TimeValue(field TimeField) TimeValue { return assetTime(field, t.StartTime, t.EndTime) }

func (t TextSpec) Label() string {
	if t.ID != "" {
		return "text " + t.ID
	}
	return "text " + t.Body()
}

// Body returns the text to draw; older documents used "text" instead of "content"
func (t TextSpec) Body() string {
	if t.Content != "" {
		return t.Content
	}
	return t.Text
}

func assetTime(field TimeField, start, end TimeValue) TimeValue {
	switch field {
	case FieldStart:
		return start
	case FieldEnd:
		return end
	case FieldVoiceStart, FieldVoiceEnd:
		return TimeValue{}
	}
	return TimeValue{}
}

// Resolution is the output canvas size in pixels
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ExtraArgs carries job-wide settings. Captions are passed through untouched.
type ExtraArgs struct {
	Resolution      *Resolution    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Captions        map[string]any `json:"captions,omitempty" yaml:"captions,omitempty"`
	AudioLanguage   string         `json:"audio_language,omitempty" yaml:"audio_language,omitempty"`
	VoiceID         string         `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
	BackgroundColor string         `json:"background_color,omitempty" yaml:"background_color,omitempty"`
	OutputFormat    string         `json:"output_format,omitempty" yaml:"output_format,omitempty"`
}

// HasAssets reports whether the document describes anything to render
func (d *Document) HasAssets() bool {
	return len(d.Videos)+len(d.Images)+len(d.Audio)+len(d.Script)+len(d.Text) > 0
}

// Validate checks the structural requirements that must hold before any processing starts
func (d *Document) Validate() error {
	if d == nil {
		return &InputError{Reason: "document is empty"}
	}
	if !d.HasAssets() {
		return &InputError{Reason: "document has no videos, images, audio, script or text"}
	}
	if r := d.ExtraArgs.Resolution; r != nil && (r.Width <= 0 || r.Height <= 0) {
		return &InputError{Reason: fmt.Sprintf("resolution must be positive, got %dx%d", r.Width, r.Height)}
	}

	seen := make(map[string]struct{}, len(d.Script))
	for i, s := range d.Script {
		if strings.TrimSpace(s.ID) == "" {
			return &InputError{Reason: fmt.Sprintf("script[%d] is missing _id", i)}
		}
		if strings.Contains(s.ID, ".") {
			return &InputError{Reason: fmt.Sprintf("script[%d] _id %q must not contain '.'", i, s.ID)}
		}
		if _, dup := seen[s.ID]; dup {
			return &InputError{Reason: fmt.Sprintf("duplicate script _id %q", s.ID)}
		}
		seen[s.ID] = struct{}{}
		if strings.TrimSpace(s.Text) == "" {
			return &InputError{Reason: fmt.Sprintf("script %q has no text", s.ID)}
		}
		if s.VoiceStartTime != nil && *s.VoiceStartTime < 0 {
			return &InputError{Reason: fmt.Sprintf("script %q voice_start_time must not be negative", s.ID)}
		}
		if s.PostPauseDuration != nil && *s.PostPauseDuration < 0 {
			return &InputError{Reason: fmt.Sprintf("script %q post_pause_duration must not be negative", s.ID)}
		}
	}

	for i, v := range d.Videos {
		if strings.TrimSpace(v.VideoPath) == "" {
			return &InputError{Reason: fmt.Sprintf("videos[%d] is missing video_path", i)}
		}
	}
	for i, a := range d.Audio {
		if strings.TrimSpace(a.AudioPath) == "" {
			return &InputError{Reason: fmt.Sprintf("audio[%d] is missing audio_path", i)}
		}
	}
	return nil
}

// ParseDocument decodes a JSON document
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &InputError{Reason: "document is not a valid JSON object", Err: err}
	}
	return &doc, nil
}

// ParseYAMLDocument decodes a YAML document
func ParseYAMLDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InputError{Reason: "document is not a valid YAML mapping", Err: err}
	}
	return &doc, nil
}

// LoadDocument reads a document file; .yaml and .yml are decoded as YAML, everything else as JSON
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Reason: "unable to read document " + path, Err: err}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAMLDocument(data)
	default:
		return ParseDocument(data)
	}
}
