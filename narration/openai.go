package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"json2video/config"
	"json2video/timeline"
)

// OpenAITTS synthesizes narration with the OpenAI speech endpoint.
// Endpoint: POST {base}/audio/speech
// Request: {"model": "tts-1", "input": "...", "voice": "alloy", "response_format": "mp3"}
// Response: the encoded audio bytes
type OpenAITTS struct {
	apiKey     string
	baseURL    string
	model      string
	voice      string
	outDir     string
	httpClient *http.Client
	prober     timeline.Prober
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// NewOpenAITTS writes narration files under <assetsDir>/narration and measures
// their duration with prober
func NewOpenAITTS(cfg config.OpenAI, assetsDir string, prober timeline.Prober) (*OpenAITTS, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for narration")
	}
	if prober == nil {
		return nil, errors.New("narration requires a media prober")
	}
	t := &OpenAITTS{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		voice:      cfg.Voice,
		outDir:     filepath.Join(assetsDir, "narration"),
		httpClient: &http.Client{Timeout: config.HTTPTimeout},
		prober:     prober,
	}
	if t.baseURL == "" {
		t.baseURL = config.OpenAIBaseURL
	}
	if t.model == "" {
		t.model = config.DefaultTTSModel
	}
	if t.voice == "" {
		t.voice = config.DefaultVoice
	}
	return t, nil
}

// WithVoice returns a copy that speaks with a different voice
func (o *OpenAITTS) WithVoice(voice string) timeline.Synthesizer {
	c := *o
	c.voice = voice
	return &c
}

func (o *OpenAITTS) Synthesize(ctx context.Context, text string) (timeline.Speech, error) {
	body, err := json.Marshal(speechRequest{Model: o.model, Input: text, Voice: o.voice, ResponseFormat: "mp3"})
	if err != nil {
		return timeline.Speech{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return timeline.Speech{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return timeline.Speech{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return timeline.Speech{}, fmt.Errorf("speech API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return timeline.Speech{}, fmt.Errorf("failed to create narration dir: %w", err)
	}
	path := filepath.Join(o.outDir, uuid.NewString()+".mp3")
	out, err := os.Create(path)
	if err != nil {
		return timeline.Speech{}, fmt.Errorf("failed to create narration file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return timeline.Speech{}, fmt.Errorf("failed to write narration: %w", err)
	}
	if err := out.Close(); err != nil {
		return timeline.Speech{}, fmt.Errorf("failed to write narration: %w", err)
	}

	info, err := o.prober.Probe(ctx, path)
	if err != nil {
		return timeline.Speech{}, fmt.Errorf("failed to measure narration: %w", err)
	}
	log.Printf("Narration %s: %.2fs (voice %s)", filepath.Base(path), info.Duration, o.voice)
	return timeline.Speech{Path: path, Duration: info.Duration}, nil
}
