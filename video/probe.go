package video

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"json2video/timeline"
)

const defaultProbeTimeout = 30 * time.Second

// FFProbe reads media metadata with ffprobe
type FFProbe struct {
	Timeout time.Duration
}

type probeStream struct {
	CodecType string            `json:"codec_type"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Duration  string            `json:"duration"`
	Tags      map[string]string `json:"tags"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p FFProbe) Probe(ctx context.Context, path string) (timeline.MediaInfo, error) {
	if err := ctx.Err(); err != nil {
		return timeline.MediaInfo{}, err
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return timeline.MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(out string) (timeline.MediaInfo, error) {
	var data probeOutput
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return timeline.MediaInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var info timeline.MediaInfo
	for _, s := range data.Streams {
		switch s.CodecType {
		case "video":
			if info.Width > 0 {
				continue
			}
			info.Width, info.Height = s.Width, s.Height
			// phone footage stores portrait as landscape plus a rotate tag
			if rot := s.Tags["rotate"]; rot == "90" || rot == "270" || rot == "-90" {
				info.Width, info.Height = info.Height, info.Width
			}
			if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
				info.Duration = d
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if d, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil && d > 0 {
		info.Duration = d
	}
	return info, nil
}
