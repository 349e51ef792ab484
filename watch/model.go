package watch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"json2video/jobs"
)

const maxLogs = 8

// Model follows one render job until it reaches a terminal state
type Model struct {
	client   *Client
	jobID    string
	interval time.Duration

	Status    *jobs.Status
	Logs      []string
	Err       error
	Connected bool
	Done      bool
}

func NewModel(apiURL, jobID string, interval time.Duration) Model {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return Model{
		client:   NewClient(apiURL),
		jobID:    jobID,
		interval: interval,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(pollStatus(m.client, m.jobID), tickCmd(m.interval))
}

// AddLog appends a timestamped line, keeping the most recent few
func (m Model) AddLog(msg string) Model {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg)
	m.Logs = append(m.Logs, line)
	if len(m.Logs) > maxLogs {
		m.Logs = m.Logs[len(m.Logs)-maxLogs:]
	}
	return m
}

func (m Model) stateText() string {
	if errors.Is(m.Err, ErrJobNotFound) {
		return InfoStyle.Render(fmt.Sprintf("⏳ Waiting for job %s to appear...", m.jobID))
	}
	if !m.Connected {
		return ErrorStyle.Render("❌ Not connected to the API")
	}
	if m.Status == nil {
		return InfoStyle.Render("⏳ Fetching status...")
	}

	switch m.Status.State {
	case jobs.StateQueued:
		return StatusStyle.Render("📥 Queued")
	case jobs.StateRunning:
		return StatusStyle.Render("🎬 Rendering...")
	case jobs.StateSucceeded:
		return HighlightStyle.Render("✅ COMPLETE")
	case jobs.StateFailed:
		return ErrorStyle.Render("❌ Failed: " + m.Status.Result.Message)
	}
	return string(m.Status.State)
}

func (m Model) resultBox() string {
	s := m.Status
	var b strings.Builder

	b.WriteString(HighlightStyle.Render("Render Result"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Status: %s\n", StatusStyle.Render(s.Result.Status))
	if s.Result.OutputPath != "" {
		fmt.Fprintf(&b, "Output: %s\n", s.Result.OutputPath)
	}
	if s.OutputURL != "" {
		fmt.Fprintf(&b, "Uploaded: %s\n", s.OutputURL)
	}
	if s.VideoID != "" {
		fmt.Fprintf(&b, "YouTube: https://youtu.be/%s\n", s.VideoID)
	}
	if len(s.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped layers: %d\n", len(s.Skipped))
		for _, skip := range s.Skipped {
			b.WriteString(InfoStyle.Render("  " + skip))
			b.WriteString("\n")
		}
	}
	return b.String()
}
