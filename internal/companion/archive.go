package companion

import (
	"fmt"

	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/models"
)

// Archive writes the current conversation to the character's transcripts
// directory. It returns nil when the user has not said anything yet.
func (s *Session) Archive() (*models.TranscriptEntry, error) {
	s.mu.Lock()
	character := s.character
	turns := append([]Turn(nil), s.turns...)
	s.mu.Unlock()

	if character == nil || !hasUserTurn(turns) {
		return nil, nil
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "You"
		if t.Role == RoleAssistant {
			speaker = character.Title()
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", t.At.Format("15:04:05"), speaker, t.Text))
	}

	entry, err := config.WriteTranscript(character.Name, s.id, turns[0].At, lines)
	if err != nil {
		return nil, fmt.Errorf("failed to archive transcript: %w", err)
	}
	return entry, nil
}

func hasUserTurn(turns []Turn) bool {
	for _, t := range turns {
		if t.Role == RoleUser {
			return true
		}
	}
	return false
}
