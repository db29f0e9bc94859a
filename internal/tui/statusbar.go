package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// confirmMode values.
const (
	confirmNone = 0
	confirmQuit = 1
)

func renderStatusBar(m *Model, width int) string {
	if m.confirmMode == confirmQuit {
		return renderConfirmBar(
			"Reply in progress. Quit? (y/n)",
			width,
		)
	}

	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	if m.notice != "" {
		return renderNoticeBar(m.notice, width)
	}

	left := " " + getKeyHints(m)
	right := renderStateBadge(m.state, m.spinner.View()) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	if m.activeOverlay != overlayNone {
		return keyHint("Esc", "close")
	}

	hints := keyHint("Ctrl+q", "quit") + "  " + keyHint("Ctrl+h", "help") + "  " +
		keyHint("Enter", "send")
	if busy(m.state) {
		hints += "  " + keyHint("Esc", "interrupt")
	}
	return hints + "  " + keyHint("Ctrl+t", "mic") + "  " + keyHint("Ctrl+o", "character") + "  " +
		keyHint("Ctrl+n", "new chat")
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}

func renderNoticeBar(msg string, width int) string {
	return statusBarStyle.
		Width(width).
		Render(" " + lipgloss.NewStyle().Foreground(colorGreen).Render(msg))
}
