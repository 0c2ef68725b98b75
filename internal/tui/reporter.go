package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"claudebuild/internal/builder"
)

// StageReporter adapts builder stage transitions to bubbletea messages.
type StageReporter struct {
	send func(tea.Msg)
}

// NewStageReporter constructs a reporter that forwards stage updates
// through the given send function.
func NewStageReporter(send func(tea.Msg)) *StageReporter {
	return &StageReporter{send: send}
}

// StageStarted implements builder.StageReporter.
func (r *StageReporter) StageStarted(s builder.Stage) {
	r.send(StageUpdateMsg{Key: s.String(), Status: "running"})
}

// StageFinished implements builder.StageReporter.
func (r *StageReporter) StageFinished(s builder.Stage, err error) {
	if err != nil {
		r.send(StageUpdateMsg{Key: s.String(), Status: "failed", Detail: err.Error()})
		return
	}
	r.send(StageUpdateMsg{Key: s.String(), Status: "done"})
}

var _ builder.StageReporter = (*StageReporter)(nil)
