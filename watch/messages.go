package watch

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"json2video/jobs"
)

// StatusUpdateMsg carries one poll result
type StatusUpdateMsg struct {
	Status *jobs.Status
	Err    error
}

// TickMsg triggers the next poll
type TickMsg struct {
	Time time.Time
}

func pollStatus(client *Client, jobID string) tea.Cmd {
	return func() tea.Msg {
		status, err := client.JobStatus(jobID)
		return StatusUpdateMsg{Status: status, Err: err}
	}
}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
