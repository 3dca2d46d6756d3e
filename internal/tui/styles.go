package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles section titles such as the sequence banner.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	// FaintStyle styles secondary text such as hints.
	FaintStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		// Satisfied
		"found": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"fixed": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"ok":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"done":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Active
		"checking": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"fixing":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Skipped / warning
		"skipped":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"declined": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"missing":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Error
		"failed": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"error":  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		// Pending
		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
