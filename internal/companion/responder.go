package companion

import (
	"context"
	"strings"
	"time"

	"github.com/lumen-io/lumen/internal/models"
)

// Responder produces the assistant's reply as a stream of text chunks. The
// channel is closed when the reply is complete or ctx is cancelled.
type Responder interface {
	Respond(ctx context.Context, character *models.Character, history []Turn, input string) (<-chan string, error)
}

// EchoResponder is the offline responder: it answers from the character's
// reply templates, one word at a time.
type EchoResponder struct {
	WordDelay time.Duration
}

// Respond implements Responder.
func (r EchoResponder) Respond(ctx context.Context, character *models.Character, history []Turn, input string) (<-chan string, error) {
	reply := r.reply(character, history, input)
	words := strings.Fields(reply)

	out := make(chan string)
	go func() {
		defer close(out)
		for i, word := range words {
			if i > 0 {
				word = " " + word
			}
			if r.WordDelay > 0 {
				t := time.NewTimer(r.WordDelay)
				select {
				case <-ctx.Done():
					t.Stop()
					return
				case <-t.C:
				}
			}
			select {
			case <-ctx.Done():
				return
			case out <- word:
			}
		}
	}()
	return out, nil
}

func (r EchoResponder) reply(character *models.Character, history []Turn, input string) string {
	templates := []string{"{input}"}
	if character != nil && len(character.Replies) > 0 {
		templates = character.Replies
	}

	userTurns := 0
	for _, turn := range history {
		if turn.Role == RoleUser {
			userTurns++
		}
	}
	// history already holds the current message
	if userTurns > 0 {
		userTurns--
	}
	return strings.ReplaceAll(templates[userTurns%len(templates)], "{input}", input)
}

// staticReply streams a fixed text as a single chunk.
func staticReply(text string) <-chan string {
	out := make(chan string, 1)
	out <- text
	close(out)
	return out
}
