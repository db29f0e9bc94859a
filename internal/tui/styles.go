package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-io/lumen/internal/aistate"
)

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite   = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim     = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed     = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow  = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange  = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan    = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
	colorMagenta = lipgloss.AdaptiveColor{Light: "127", Dark: "177"}
)

// stateColors gives every activity state its own accent.
var stateColors = map[aistate.State]lipgloss.AdaptiveColor{
	aistate.Idle:             colorDim,
	aistate.ThinkingSpeaking: colorGreen,
	aistate.Interrupted:      colorRed,
	aistate.Loading:          colorYellow,
	aistate.Listening:        colorMagenta,
	aistate.Waiting:          colorCyan,
}

// StateColor returns the accent used for s wherever a state is shown.
func StateColor(s aistate.State) lipgloss.AdaptiveColor {
	if c, ok := stateColors[s]; ok {
		return c
	}
	return colorWhite
}

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorWhite)

	unfocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)
)

// Chat styles.
var (
	userNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	chatTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	chatTextStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	inputSepStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Mic button styles.
var (
	micOnStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true)

	micOffStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)

	overlayDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// characterStyle colors text with the character's own hex color.
func characterStyle(hex string) lipgloss.Style {
	if hex == "" {
		return lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(hex))
}

// applyTheme forces the light or dark palette, or restores the detected one.
func applyTheme(theme string, systemDark bool) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		lipgloss.SetHasDarkBackground(systemDark)
	}
}
