package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/console-cowboy/icingactl/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case StepStartMsg:
		if step, ok := m.steps[msg.ID]; ok {
			step.status = statusRunning
		}
		return m, nil
	case StepCompleteMsg:
		step, ok := m.steps[msg.ID]
		if !ok || msg.Result == nil {
			return m, nil
		}
		if step.status != statusPending && step.status != statusRunning {
			return m, nil
		}
		step.status = string(msg.Result.Status)
		step.message = msg.Result.Message
		m.completed++
		if msg.Result.Status == model.StatusFailed {
			m.failed++
		}
		if m.completed >= m.total {
			m.finished = true
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
