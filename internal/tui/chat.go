package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/companion"
	"github.com/lumen-io/lumen/internal/models"
)

// renderTranscript lays out the conversation for a viewport of the given
// width. An empty assistant turn is the reply being produced.
func renderTranscript(turns []companion.Turn, c *models.Character, state aistate.State, width int) string {
	if len(turns) == 0 {
		return hintStyle.Render("Say hello…")
	}

	name := "Lumen"
	color := ""
	if c != nil {
		name = c.Title()
		color = c.Color
	}
	body := chatTextStyle.Width(max(width-2, 1))

	blocks := make([]string, 0, len(turns))
	for i, t := range turns {
		label := userNameStyle.Render("You")
		if t.Role == companion.RoleAssistant {
			label = characterStyle(color).Render(name)
		}
		stamp := chatTimeStyle.Render(t.At.Format("15:04"))

		text := t.Text
		if text == "" && i == len(turns)-1 && state == aistate.ThinkingSpeaking {
			text = "…"
		}

		blocks = append(blocks, label+" "+stamp+"\n"+body.Render(indent(text)))
	}
	return strings.Join(blocks, "\n\n")
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}

// renderChat stacks the transcript viewport over the input line.
func renderChat(transcript, input string, width int) string {
	sep := inputSepStyle.Render(strings.Repeat("─", max(width, 1)))
	return lipgloss.JoinVertical(lipgloss.Left, transcript, sep, input)
}
