package tui

import tea "github.com/charmbracelet/bubbletea"

// RowReporter is handed to the work function of RunTable; it turns
// detection events into table messages.
type RowReporter struct {
	send func(tea.Msg)
}

// NewRowReporter wraps a program's send function.
func NewRowReporter(send func(tea.Msg)) *RowReporter {
	return &RowReporter{send: send}
}

// Start marks the row as being checked.
func (r *RowReporter) Start(key string) {
	r.send(RowStartedMsg{Key: key})
}

// Finish records the row's final status and fix text.
func (r *RowReporter) Finish(key, status, detail string) {
	r.send(RowFinishedMsg{Key: key, Status: status, Detail: detail})
}
