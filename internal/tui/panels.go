package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/lumen-io/lumen/internal/aistate"
)

// Minimum terminal size the layout supports.
const (
	minWidth  = 60
	minHeight = 16
)

// panelLayout holds computed dimensions for the avatar + chat layout.
type panelLayout struct {
	leftWidth     int
	rightWidth    int
	contentHeight int
	dividerCol    int // x position of the divider for mouse hit testing
}

// inner returns the content size of a panel of the given outer width.
func (l panelLayout) inner(outerWidth int) (width, height int) {
	return max(outerWidth-2, 1), max(l.contentHeight-2, 1)
}

// micRow is the screen row of the mic button: the last line inside the
// avatar panel, below the header and the top border.
func (l panelLayout) micRow() int {
	_, h := l.inner(l.leftWidth)
	return 1 + h
}

func computeLayout(width, height int, splitRatio float64) panelLayout {
	// Reserve 1 line header and 1 line status bar.
	contentHeight := max(height-2, 1)

	usable := width - 1 // 1 for divider
	leftWidth := max(int(float64(usable)*splitRatio), 18)
	rightWidth := max(usable-leftWidth, 20)

	return panelLayout{
		leftWidth:     leftWidth,
		rightWidth:    rightWidth,
		contentHeight: contentHeight,
		dividerCol:    leftWidth,
	}
}

// renderPanels draws the avatar panel, framed in the state's color, next to
// the chat panel.
func renderPanels(leftContent, rightContent string, layout panelLayout, state aistate.State) string {
	leftInner, innerHeight := layout.inner(layout.leftWidth)
	rightInner, _ := layout.inner(layout.rightWidth)

	left := unfocusedBorderStyle.
		BorderForeground(StateColor(state)).
		Width(leftInner).
		Height(innerHeight).
		Render(truncateContent(leftContent, leftInner, innerHeight))

	right := focusedBorderStyle.
		Width(rightInner).
		Height(innerHeight).
		Render(truncateContent(rightContent, rightInner, innerHeight))

	divider := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(strings.TrimSuffix(strings.Repeat("│\n", lipgloss.Height(left)), "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, divider, right)
}

// truncateContent ensures content fits within the given dimensions.
func truncateContent(content string, width, height int) string {
	lines := strings.Split(content, "\n")

	if len(lines) > height {
		lines = lines[:height]
	}

	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}

	return strings.Join(lines, "\n")
}
