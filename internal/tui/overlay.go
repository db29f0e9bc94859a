package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Overlay constants.
const (
	overlayNone = 0
	overlayHelp = 1
)

// ansiReset keeps the dimmed background from bleeding into the box.
const ansiReset = "\033[0m"

// renderOverlay draws box centered over a dimmed copy of base.
func renderOverlay(base, box string, width, height int) string {
	rows := strings.Split(base, "\n")
	for i, row := range rows {
		rows[i] = overlayDimStyle.Render(row)
	}

	boxLines := strings.Split(box, "\n")
	top := max((height-len(boxLines))/2, 1)
	left := max((width-widest(boxLines))/2, 1)

	for i, line := range boxLines {
		row := top + i
		if row >= len(rows) {
			break
		}
		bg := rows[row]
		bgWidth := lipgloss.Width(bg)

		before := ansi.Truncate(bg, left, "")
		after := ""
		if end := left + lipgloss.Width(line); end < bgWidth {
			after = ansi.Cut(bg, end, bgWidth)
		}
		rows[row] = before + ansiReset + line + ansiReset + after
	}

	return strings.Join(rows, "\n")
}

func widest(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return w
}
