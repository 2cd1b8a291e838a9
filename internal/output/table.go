package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/rodaine/table"
)

// RenderTable renders an aligned table to w. Headers are styled when color is
// true.
func RenderTable(w io.Writer, columns []Column, rows []map[string]string, color bool) {
	headers := make([]any, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}

	tbl := table.New(headers...).WithWriter(w)
	if color {
		headerStyle := lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("33"))
		tbl = tbl.WithHeaderFormatter(func(format string, vals ...any) string {
			return headerStyle.Render(fmt.Sprintf(format, vals...))
		})
	}

	for _, row := range rows {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = row[col.Key]
		}
		tbl.AddRow(values...)
	}
	tbl.Print()
}

// TruncateString truncates a string to maxLen runes and adds "..." if needed
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
