package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/mic"
	"github.com/lumen-io/lumen/internal/models"
)

// fallbackFrames are used when a character defines no frames for a state.
var fallbackFrames = map[aistate.State][]string{
	aistate.Idle:             {"(•‿•)"},
	aistate.ThinkingSpeaking: {"(•o•)", "(•O•)"},
	aistate.Interrupted:      {"(•_•)!"},
	aistate.Loading:          {"(  ...  )", "( .  .. )", "( .. .  )"},
	aistate.Listening:        {"(•ᴗ•)♪"},
	aistate.Waiting:          {"(•‿•)…"},
}

// avatarFrame picks the animation frame for state at tick n.
func avatarFrame(c *models.Character, state aistate.State, n int) string {
	frames := c.Frames(state.String())
	if len(frames) == 0 {
		frames = fallbackFrames[state]
	}
	if len(frames) == 0 {
		return ""
	}
	return frames[n%len(frames)]
}

// renderAvatar fills the avatar panel: the animated face centered, the
// state caption below it and the mic button on the last line.
func renderAvatar(c *models.Character, state aistate.State, frame int, bridge *mic.Bridge, width, height int) string {
	color := ""
	if c != nil {
		color = c.Color
	}

	face := characterStyle(color).Render(avatarFrame(c, state, frame))
	caption := lipgloss.NewStyle().Foreground(StateColor(state)).Render(stateLabel(state))
	body := lipgloss.JoinVertical(lipgloss.Center, face, "", caption)

	button := renderMicButton(bridge)
	bodyHeight := max(height-1, 1)

	top := lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	bottom := lipgloss.PlaceHorizontal(width, lipgloss.Center, button)
	return strings.Join([]string{top, bottom}, "\n")
}

func renderMicButton(b *mic.Bridge) string {
	style := micOffStyle
	if b.On() {
		style = micOnStyle
	}
	return style.Render("[ " + b.Icon() + " " + b.Label() + " ]")
}
