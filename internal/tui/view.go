package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/console-cowboy/icingactl/internal/model"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("icingactl • %s", m.title()))
	if m.dryRun {
		title = fmt.Sprintf("%s %s", title, pendingStyle.Render("(dry-run)"))
	}
	sections = append(sections, title)

	sections = append(sections, sectionStyle.Render("States"))
	sections = append(sections, m.renderSteps())

	if summary := m.renderSummary(); summary != "" {
		sections = append(sections, summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderSteps() string {
	var lines []string
	for _, id := range m.order {
		step := m.steps[id]
		line := fmt.Sprintf(" %s %s", m.statusIcon(step.status), step.id)
		if strings.TrimSpace(step.message) != "" {
			line = fmt.Sprintf("%s — %s", line, step.message)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSummary() string {
	if m.cancelled {
		return failureStyle.Render("Cancelled.")
	}
	if !m.finished {
		return fmt.Sprintf("%d/%d states applied", m.completed, m.total)
	}
	if m.failed > 0 {
		return failureStyle.Render(fmt.Sprintf("%d of %d states failed", m.failed, m.total))
	}
	if m.dryRun {
		return fmt.Sprintf("Dry-run complete: %d states inspected", m.total)
	}
	return successStyle.Render(fmt.Sprintf("All %d states applied", m.total))
}

func (m Model) statusIcon(status string) string {
	switch status {
	case string(model.StatusSuccess):
		return successStyle.Render("✓")
	case string(model.StatusFailed):
		return failureStyle.Render("✗")
	case string(model.StatusWouldChange):
		return pendingStyle.Render("✱")
	case statusRunning:
		return runningStyle.Render(m.spinner.View())
	default:
		return pendingStyle.Render("…")
	}
}

func (m Model) title() string {
	if strings.TrimSpace(m.name) != "" {
		return m.name
	}
	return "Execution"
}
