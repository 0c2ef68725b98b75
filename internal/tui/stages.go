// Package tui renders build progress: a spinner status line for setup
// phases and a bubbletea stage table for the pipeline itself.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives the spinner animation.
type tickMsg time.Time

type stageRow struct {
	key    string
	label  string
	status string
	detail string
}

// StageModel is a bubbletea model that renders the pipeline stages as a
// table with a live status column.
type StageModel struct {
	title    string
	rows     []stageRow
	rowIndex map[string]int
	done     bool
	err      error
	tick     int
}

// NewStageModel creates a model with one pending row per stage label.
// Keys and labels are parallel; the key addresses the row in updates.
func NewStageModel(title string, keys, labels []string) StageModel {
	m := StageModel{
		title:    title,
		rowIndex: make(map[string]int, len(keys)),
	}
	for i, key := range keys {
		m.rowIndex[key] = len(m.rows)
		m.rows = append(m.rows, stageRow{key: key, label: labels[i], status: "pending"})
	}
	return m
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m StageModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m StageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case StageUpdateMsg:
		if idx, ok := m.rowIndex[msg.Key]; ok {
			m.rows[idx].status = msg.Status
			m.rows[idx].detail = msg.Detail
		}
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m StageModel) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(HeaderStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	labelWidth := len("STAGE")
	statusWidth := len("STATUS")
	for _, row := range m.rows {
		if len(row.label) > labelWidth {
			labelWidth = len(row.label)
		}
		if len(row.status) > statusWidth {
			statusWidth = len(row.status)
		}
	}

	b.WriteString(HeaderStyle.Render(pad("STAGE", labelWidth)))
	b.WriteString("  ")
	b.WriteString(HeaderStyle.Render(pad("STATUS", statusWidth)))
	b.WriteString("  ")
	b.WriteString(HeaderStyle.Render("DETAIL"))
	b.WriteByte('\n')

	for _, row := range m.rows {
		b.WriteString(pad(row.label, labelWidth))
		b.WriteString("  ")
		b.WriteString(StatusStyle(row.status).Render(pad(row.status, statusWidth)))
		b.WriteString("  ")
		b.WriteString(row.detail)
		b.WriteByte('\n')
	}

	if !m.done {
		finished := 0
		for _, row := range m.rows {
			if row.status != "pending" && row.status != "running" {
				finished++
			}
		}
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s %d/%d stages complete\n", spinner, finished, len(m.rows))
	}

	if m.done && m.err != nil {
		fmt.Fprintf(&b, "\nError: %v\n", m.err)
	}

	return b.String()
}

// Done returns whether the model has finished (work done or error).
func (m StageModel) Done() bool { return m.done }

// Err returns any fatal error that occurred.
func (m StageModel) Err() error { return m.err }

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
