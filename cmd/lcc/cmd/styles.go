package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	ColorPrimary = lipgloss.Color("#8B5CF6") // Violet
	ColorAccent  = lipgloss.Color("#06B6D4") // Cyan
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
)

var (
	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
		Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)
)

// renderTable writes a bordered table. Styles degrade to plain text when w
// is not a terminal.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return HeaderStyle
		}
		return CellStyle
		})
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}
