package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/console-cowboy/icingactl/internal/config"
	"github.com/console-cowboy/icingactl/internal/model"
)

// StepStartMsg indicates a step has started executing.
type StepStartMsg struct {
	ID string
}

// StepCompleteMsg reports that a step has finished with its state result.
type StepCompleteMsg struct {
	ID     string
	Result *model.StateResult
}

const (
	statusPending = "pending"
	statusRunning = "running"
)

type stepView struct {
	id      string
	status  string
	message string
}

// Model contains the Bubbletea state for the apply progress view.
type Model struct {
	name      string
	dryRun    bool
	order     []string
	steps     map[string]*stepView
	spinner   spinner.Model
	total     int
	completed int
	failed    int
	finished  bool
	cancelled bool
}

// NewModel constructs a progress model for the given state document.
func NewModel(cfg *config.Config, dryRun bool) Model {
	m := Model{
		name:    cfg.Name,
		dryRun:  dryRun,
		steps:   make(map[string]*stepView),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	for _, step := range cfg.Steps {
		if _, exists := m.steps[step.ID]; exists {
			continue
		}
		m.steps[step.ID] = &stepView{id: step.ID, status: statusPending}
		m.order = append(m.order, step.ID)
		m.total++
	}

	return m
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Finished reports whether all steps completed or the run was cancelled.
func (m Model) Finished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// FailedSteps returns the number of steps that failed.
func (m Model) FailedSteps() int {
	return m.failed
}
