package watch

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"json2video/jobs"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case TickMsg:
		if m.Done {
			return m, nil
		}
		return m, tea.Batch(pollStatus(m.client, m.jobID), tickCmd(m.interval))
	case StatusUpdateMsg:
		return m.handleStatus(msg)
	}
	return m, nil
}

func (m Model) handleStatus(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if !errors.Is(m.Err, msg.Err) {
			m = m.AddLog(msg.Err.Error())
		}
		m.Err = msg.Err
		m.Connected = errors.Is(msg.Err, ErrJobNotFound)
		return m, nil
	}

	m.Connected = true
	m.Err = nil
	if m.Status == nil || m.Status.State != msg.Status.State {
		m = m.AddLog(fmt.Sprintf("Job is %s", msg.Status.State))
	}
	m.Status = msg.Status

	if m.Status.State == jobs.StateSucceeded || m.Status.State == jobs.StateFailed {
		m.Done = true
	}
	return m, nil
}
