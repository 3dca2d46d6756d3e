package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// startupDelay gives the program time to draw the all-pending table before
// the first row changes.
const startupDelay = 50 * time.Millisecond

// RunTable shows table on out while work runs in its own goroutine, and
// returns once work has finished and the final frame is drawn. Rows are
// reported in order through the RowReporter; the program only renders.
func RunTable(out io.Writer, table CheckTable, work func(rows *RowReporter)) error {
	p := tea.NewProgram(table, tea.WithOutput(out), tea.WithInput(nil))

	go func() {
		time.Sleep(startupDelay)
		work(NewRowReporter(p.Send))
		p.Send(WorkDoneMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if t, ok := final.(CheckTable); ok && t.Err() != nil {
		return t.Err()
	}
	return nil
}
