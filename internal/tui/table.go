package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Row statuses before a detection result is known.
const (
	StatusPending  = "pending"
	StatusChecking = "checking"
)

const (
	tickInterval = 150 * time.Millisecond
	marqueeGap   = "   "
	statusWidth  = 9
	timeWidth    = 6
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

type tableRow struct {
	label   string
	status  string
	detail  string
	started time.Time
	elapsed time.Duration
}

// CheckTable is a bubbletea model with one row per dependency. Rows move
// from pending to checking to a final status, and each row shows how long
// its detection took.
type CheckTable struct {
	title       string
	rows        []tableRow
	index       map[string]int
	labelWidth  int
	detailWidth int
	now         func() time.Time

	tick int
	done bool
	err  error
}

// NewCheckTable returns an empty table. detailWidth caps the FIX column;
// longer text scrolls while work runs and is truncated afterwards.
func NewCheckTable(title string, detailWidth int) CheckTable {
	return CheckTable{
		title:       title,
		index:       make(map[string]int),
		labelWidth:  len("DEPENDENCY"),
		detailWidth: detailWidth,
		now:         time.Now,
	}
}

// Add appends a pending row. Call it before the program starts.
func (t *CheckTable) Add(key, label string) {
	t.index[key] = len(t.rows)
	t.rows = append(t.rows, tableRow{label: label, status: StatusPending})
	if w := ansi.StringWidth(label); w > t.labelWidth {
		t.labelWidth = w
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (t CheckTable) Init() tea.Cmd {
	return scheduleTick()
}

func (t CheckTable) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		t.tick++
		if t.done {
			return t, nil
		}
		return t, scheduleTick()

	case RowStartedMsg:
		if row := t.row(msg.Key); row != nil {
			row.status = StatusChecking
			row.started = t.now()
		}
		return t, nil

	case RowFinishedMsg:
		if row := t.row(msg.Key); row != nil {
			row.status = msg.Status
			row.detail = msg.Detail
			if !row.started.IsZero() {
				row.elapsed = t.now().Sub(row.started)
			}
		}
		return t, nil

	case WorkDoneMsg:
		t.done = true
		return t, tea.Quit

	case ErrorMsg:
		t.err = msg.Err
		t.done = true
		return t, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			t.done = true
			return t, tea.Quit
		}
	}
	return t, nil
}

// row returns a pointer into t.rows; Update works on a copy of the model
// but the backing array is shared, so writes go through the slice.
func (t CheckTable) row(key string) *tableRow {
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	return &t.rows[i]
}

func (t CheckTable) View() string {
	if t.done && t.err != nil {
		return fmt.Sprintf("Error: %v\n", t.err)
	}

	var b strings.Builder
	if t.title != "" {
		b.WriteString(TitleStyle.Render(t.title))
		b.WriteString("\n\n")
	}

	header := []string{
		pad("DEPENDENCY", t.labelWidth),
		pad("STATUS", statusWidth),
		pad("TIME", timeWidth),
		"FIX",
	}
	b.WriteString(HeaderStyle.Render(strings.Join(header, "  ")))
	b.WriteByte('\n')

	for _, row := range t.rows {
		detail := row.detail
		if !t.done && ansi.StringWidth(detail) > t.detailWidth {
			detail = marqueeText(detail, t.detailWidth, t.tick)
		} else {
			detail = TruncateWithEllipsis(detail, t.detailWidth)
		}
		cells := []string{
			pad(row.label, t.labelWidth),
			StatusStyle(row.status).Render(pad(row.status, statusWidth)),
			FaintStyle.Render(pad(t.elapsedText(row), timeWidth)),
		}
		b.WriteString(strings.Join(cells, "  "))
		if detail != "" {
			b.WriteString("  " + detail)
		}
		b.WriteByte('\n')
	}

	checked, total := t.Progress()
	if !t.done {
		frame := spinnerFrames[t.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Checking %d/%d...\n", frame, checked, total)
	}
	return b.String()
}

func (t CheckTable) elapsedText(row tableRow) string {
	switch {
	case row.status == StatusChecking && !row.started.IsZero():
		return FormatElapsed(t.now().Sub(row.started))
	case row.elapsed > 0:
		return FormatElapsed(row.elapsed)
	default:
		return "-"
	}
}

// Progress returns how many rows have a final status, and the row count.
func (t CheckTable) Progress() (checked, total int) {
	for _, row := range t.rows {
		if row.status != StatusPending && row.status != StatusChecking {
			checked++
		}
	}
	return checked, len(t.rows)
}

// Done reports whether the program has stopped.
func (t CheckTable) Done() bool {
	return t.done
}

// Err returns the error that aborted the table, if any.
func (t CheckTable) Err() error {
	return t.err
}

func pad(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// marqueeText renders a scrolling window of width runes over text that is
// wider than width.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(text) <= width {
		return text
	}
	cycle := []rune(text + marqueeGap)
	offset := tick % len(cycle)
	window := make([]rune, width)
	for i := range window {
		window[i] = cycle[(offset+i)%len(cycle)]
	}
	return string(window)
}

// NonEmptyOrDash returns "-" for blank strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis shortens value to max terminal cells, ending in "..."
// when there is room for it. Multi-byte runes are never split.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if ansi.StringWidth(value) <= max {
		return value
	}
	if max <= 3 {
		return ansi.Truncate(value, max, "")
	}
	return ansi.Truncate(value, max, "...")
}
