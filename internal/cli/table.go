package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderTable lays out rows under headers. Every column is as wide as its
// widest cell; short rows are padded with empty cells.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	cells := func(values []string, style lipgloss.Style) string {
		rendered := make([]string, len(widths))
		for i, w := range widths {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			rendered[i] = TableCellStyle.Width(w + TableCellStyle.GetPaddingRight()).Render(v)
		}
		return style.Render(strings.Join(rendered, ""))
	}

	lines := []string{cells(headers, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, cells(row, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
