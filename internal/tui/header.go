package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/models"
)

func renderHeader(character *models.Character, state aistate.State, spin string, width int) string {
	name := "Lumen"
	color := ""
	if character != nil {
		name = character.Title()
		color = character.Color
	}

	dot := characterStyle(color).Render("●")
	title := lipgloss.NewStyle().Bold(true).Render(name)

	left := fmt.Sprintf(" %s %s", dot, title)
	right := renderStateBadge(state, spin) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderStateBadge shows the activity state. Busy states use the spinner
// frame in place of the dot.
func renderStateBadge(state aistate.State, spin string) string {
	glyph := "●"
	if busy(state) && spin != "" {
		glyph = strings.TrimSpace(spin)
	}
	return lipgloss.NewStyle().
		Foreground(StateColor(state)).
		Bold(state != aistate.Idle).
		Render(glyph + " " + stateLabel(state))
}

func stateLabel(s aistate.State) string {
	switch s {
	case aistate.Idle:
		return "Idle"
	case aistate.ThinkingSpeaking:
		return "Speaking"
	case aistate.Interrupted:
		return "Interrupted"
	case aistate.Loading:
		return "Loading"
	case aistate.Listening:
		return "Listening"
	case aistate.Waiting:
		return "Waiting"
	default:
		return s.String()
	}
}

// busy reports whether the state animates the spinner.
func busy(s aistate.State) bool {
	return s == aistate.ThinkingSpeaking || s == aistate.Loading
}
