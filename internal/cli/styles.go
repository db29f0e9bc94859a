package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/tui"
)

// Adaptive colors matching the TUI palette.
var (
	colorWhite = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim   = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// styleState colors a state name with the accent the TUI gives it. Transient
// states are italic since they fall back to idle on their own.
func styleState(s aistate.State) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(tui.StateColor(s)).
		Bold(s == aistate.ThinkingSpeaking).
		Italic(s.Transient())
}

// renderState pads a state name to width before coloring it, so columns
// line up whether or not escape codes are emitted.
func renderState(s aistate.State, width int) string {
	return styleState(s).Render(fmt.Sprintf("%-*s", width, s))
}
