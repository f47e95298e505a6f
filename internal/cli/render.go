package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	columnGap = "  "
	barWidth  = 30
	barGlyph  = "█"
)

// printTable writes rows as left-aligned columns under a bold header line.
// Widths are measured in terminal cells so CJK text lines up.
func printTable(o *IO, headers []string, rows [][]string) {
	widths := make([]int, len(headers))

	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	bold := o.Style().NewStyle().Bold(true)

	o.Println(bold.Render(joinPadded(headers, widths)))

	for _, row := range rows {
		o.Println(joinPadded(row, widths))
	}
}

func joinPadded(cells []string, widths []int) string {
	var b strings.Builder

	for i, cell := range cells {
		if i > 0 {
			b.WriteString(columnGap)
		}

		b.WriteString(padRight(cell, widths[i]))
	}

	return strings.TrimRight(b.String(), " ")
}

func padRight(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}

	return s + strings.Repeat(" ", gap)
}

// bar renders n relative to maxN as a horizontal bar of at most barWidth
// cells. Non-zero values always get at least one cell.
func bar(o *IO, n, maxN int) string {
	if n <= 0 || maxN <= 0 {
		return ""
	}

	cells := max(n*barWidth/maxN, 1)

	return o.Style().NewStyle().Foreground(lipgloss.Color("6")).Render(strings.Repeat(barGlyph, cells))
}

func heading(o *IO, title string) {
	o.Println(o.Style().NewStyle().Bold(true).Underline(true).Render(title))
}
