// Package companion drives a chat session with a character and keeps the
// shared activity store in step with it.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/mic"
	"github.com/lumen-io/lumen/internal/models"
)

var (
	// ErrEmptyMessage is returned when submitting blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned when input arrives while a character is loading.
	ErrBusy = errors.New("character is still loading")
	// ErrNoCharacter is returned before Start has loaded a character.
	ErrNoCharacter = errors.New("no character loaded")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session is closed")
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one chat message.
type Turn struct {
	Role Role
	Text string
	At   time.Time
}

// CharacterLoader loads a character by name.
type CharacterLoader interface {
	LoadCharacter(ctx context.Context, name string) (*models.Character, error)
}

// CharacterLoaderFunc adapts a function to CharacterLoader.
type CharacterLoaderFunc func(ctx context.Context, name string) (*models.Character, error)

// LoadCharacter implements CharacterLoader.
func (f CharacterLoaderFunc) LoadCharacter(ctx context.Context, name string) (*models.Character, error) {
	return f(ctx, name)
}

// ConfigLoader loads characters from ~/.lumen/characters.
var ConfigLoader = CharacterLoaderFunc(func(_ context.Context, name string) (*models.Character, error) {
	return config.LoadCharacter(name)
})

// Session is one chat with one character at a time.
type Session struct {
	id        string
	store     *aistate.Store
	mic       *mic.Switch
	loader    CharacterLoader
	responder Responder

	mu             sync.Mutex
	character      *models.Character
	turns          []Turn
	responseID     uint64
	cancelResponse context.CancelFunc
	onTranscript   []func([]Turn)

	// life is held for reading by every operation that touches the store,
	// and for writing by Close.
	life   sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

// NewSession wires a session to the shared store and mic switch.
func NewSession(store *aistate.Store, micSwitch *mic.Switch, loader CharacterLoader, responder Responder) *Session {
	if micSwitch == nil {
		micSwitch = mic.NewSwitch(false)
	}
	if loader == nil {
		loader = ConfigLoader
	}
	if responder == nil {
		responder = EchoResponder{}
	}
	s := &Session{
		id:        uuid.New().String(),
		store:     store,
		mic:       micSwitch,
		loader:    loader,
		responder: responder,
	}
	micSwitch.OnChange(s.micChanged)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Store returns the activity store the session drives.
func (s *Session) Store() *aistate.Store {
	return s.store
}

// Mic returns the microphone switch.
func (s *Session) Mic() *mic.Switch {
	return s.mic
}

// Character returns the loaded character, or nil before Start.
func (s *Session) Character() *models.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.character
}

// Start loads the named character and greets the user. On error the store
// stays in Loading.
func (s *Session) Start(ctx context.Context, name string) error {
	if !s.enter() {
		return ErrClosed
	}
	defer s.leave()

	s.store.Set(aistate.Loading)

	c, err := s.loader.LoadCharacter(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load character %s: %w", name, err)
	}

	s.mu.Lock()
	s.character = c
	s.turns = s.turns[:0]
	if c.Greeting != "" {
		s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: c.Greeting, At: time.Now()})
	}
	s.mu.Unlock()
	s.notifyTranscript()

	s.settle()
	log.Printf("[companion] session %s started with %s", s.id, c.Name)
	return nil
}

// SubmitMessage sends user input and starts streaming the reply. It returns
// once the reply has started; the store returns to Idle when it completes.
func (s *Session) SubmitMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if !s.enter() {
		return ErrClosed
	}
	defer s.leave()

	if s.store.IsLoading() {
		return ErrBusy
	}

	s.mu.Lock()
	if s.character == nil {
		s.mu.Unlock()
		return ErrNoCharacter
	}
	s.stopResponseLocked()
	now := time.Now()
	s.turns = append(s.turns,
		Turn{Role: RoleUser, Text: text, At: now},
	)
	history := append([]Turn(nil), s.turns...)
	character := s.character
	id, respCtx := s.beginResponseLocked(ctx)
	s.mu.Unlock()
	s.notifyTranscript()

	s.store.Set(aistate.ThinkingSpeaking)

	chunks, err := s.responder.Respond(respCtx, character, history, text)
	if err != nil {
		s.finishResponse(id)
		return fmt.Errorf("failed to start response: %w", err)
	}
	s.stream(id, chunks)
	return nil
}

// SpeakProactively lets the assistant start talking on its own. It only
// happens from Idle and reports whether it did.
func (s *Session) SpeakProactively(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if !s.enter() {
		return false
	}
	defer s.leave()

	s.mu.Lock()
	ready := s.character != nil && s.cancelResponse == nil
	s.mu.Unlock()
	if !ready {
		return false
	}
	if !s.store.SetIf(aistate.ThinkingSpeaking, func(current aistate.State) bool { return current == aistate.Idle }) {
		return false
	}

	s.mu.Lock()
	if s.cancelResponse != nil {
		// A user message won the race; its reply owns ThinkingSpeaking.
		s.mu.Unlock()
		return false
	}
	id, _ := s.beginResponseLocked(ctx)
	s.mu.Unlock()
	s.notifyTranscript()

	s.stream(id, staticReply(text))
	return true
}

// CanSpeakProactively reports whether the assistant may start talking unprompted.
func (s *Session) CanSpeakProactively() bool {
	if !s.enter() {
		return false
	}
	defer s.leave()
	return s.store.IsIdle()
}

// Interrupt cuts off the reply being delivered. It reports whether there
// was one.
func (s *Session) Interrupt() bool {
	if !s.enter() {
		return false
	}
	defer s.leave()

	s.mu.Lock()
	if s.cancelResponse == nil {
		s.mu.Unlock()
		return false
	}
	s.stopResponseLocked()
	s.mu.Unlock()

	s.store.Set(aistate.Interrupted)
	return true
}

// UserTyping marks typing activity. It never overrides a reply in progress,
// a load, or an open microphone.
func (s *Session) UserTyping() bool {
	if !s.enter() {
		return false
	}
	defer s.leave()
	return s.store.SetIf(aistate.Waiting, func(current aistate.State) bool {
		switch current {
		case aistate.ThinkingSpeaking, aistate.Loading, aistate.Listening:
			return false
		}
		return true
	})
}

// ToggleMic flips the microphone and returns its new position.
func (s *Session) ToggleMic() bool {
	return s.mic.Toggle()
}

// NewChat clears the transcript and returns to rest.
func (s *Session) NewChat() {
	if !s.enter() {
		return
	}
	defer s.leave()

	s.mu.Lock()
	s.stopResponseLocked()
	s.turns = nil
	if s.character != nil && s.character.Greeting != "" {
		s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: s.character.Greeting, At: time.Now()})
	}
	s.mu.Unlock()
	s.notifyTranscript()

	s.store.Reset()
}

// SwitchCharacter loads another character. The transcript is kept. If
// loading fails the previous character stays active.
func (s *Session) SwitchCharacter(ctx context.Context, name string) error {
	if !s.enter() {
		return ErrClosed
	}
	defer s.leave()
	return s.switchCharacter(ctx, name)
}

func (s *Session) switchCharacter(ctx context.Context, name string) error {
	s.mu.Lock()
	s.stopResponseLocked()
	s.mu.Unlock()

	s.store.Set(aistate.Loading)
	c, err := s.loader.LoadCharacter(ctx, name)
	if err != nil {
		s.settle()
		return fmt.Errorf("failed to load character %s: %w", name, err)
	}

	s.mu.Lock()
	s.character = c
	s.mu.Unlock()

	s.settle()
	log.Printf("[companion] session %s switched to %s", s.id, c.Name)
	return nil
}

// ReloadCharacter reloads name if it is the active character.
func (s *Session) ReloadCharacter(ctx context.Context, name string) error {
	if !s.enter() {
		return ErrClosed
	}
	defer s.leave()

	current := s.Character()
	if current == nil || current.Name != name {
		return nil
	}
	return s.switchCharacter(ctx, name)
}

// Transcript returns a copy of the chat so far.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// OnTranscript registers fn to receive the transcript after every change.
// fn runs on the goroutine that made the change.
func (s *Session) OnTranscript(fn func([]Turn)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTranscript = append(s.onTranscript, fn)
}

// Wait blocks until no reply is streaming.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels any reply and waits for running operations to stop. Later
// operations do nothing and return ErrClosed where they return an error.
// The store is not closed; it belongs to the caller.
func (s *Session) Close() {
	s.life.Lock()
	s.closed = true
	s.mu.Lock()
	s.stopResponseLocked()
	s.mu.Unlock()
	s.life.Unlock()

	s.wg.Wait()
}

// enter reports whether the session is open and, if so, holds it open
// until leave.
func (s *Session) enter() bool {
	s.life.RLock()
	if s.closed {
		s.life.RUnlock()
		return false
	}
	return true
}

func (s *Session) leave() {
	s.life.RUnlock()
}

func (s *Session) micChanged(enabled bool) {
	if !s.enter() {
		return
	}
	defer s.leave()

	if enabled {
		s.mu.Lock()
		s.stopResponseLocked()
		s.mu.Unlock()
		s.store.Set(aistate.Listening)
		return
	}
	s.store.SetIf(aistate.Idle, func(current aistate.State) bool { return current == aistate.Listening })
}

// settle moves to the resting state: Listening when the mic is on, Idle otherwise.
func (s *Session) settle() {
	if s.mic.Enabled() {
		s.store.Set(aistate.Listening)
		return
	}
	s.store.Reset()
}

func (s *Session) beginResponseLocked(ctx context.Context) (uint64, context.Context) {
	respCtx, cancel := context.WithCancel(ctx)
	s.responseID++
	s.cancelResponse = cancel
	s.turns = append(s.turns, Turn{Role: RoleAssistant, At: time.Now()})
	return s.responseID, respCtx
}

func (s *Session) stopResponseLocked() {
	if s.cancelResponse == nil {
		return
	}
	s.cancelResponse()
	s.cancelResponse = nil
	s.responseID++
}

func (s *Session) stream(id uint64, chunks <-chan string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for chunk := range chunks {
			s.mu.Lock()
			if id != s.responseID || len(s.turns) == 0 {
				s.mu.Unlock()
				continue
			}
			s.turns[len(s.turns)-1].Text += chunk
			s.mu.Unlock()
			s.notifyTranscript()
		}
		if s.enter() {
			s.finishResponse(id)
			s.leave()
		}
	}()
}

// finishResponse settles the store if id is still the live response.
func (s *Session) finishResponse(id uint64) {
	s.mu.Lock()
	if id != s.responseID || s.cancelResponse == nil {
		s.mu.Unlock()
		return
	}
	s.cancelResponse()
	s.cancelResponse = nil
	s.responseID++
	s.mu.Unlock()

	s.settle()
}

func (s *Session) notifyTranscript() {
	s.mu.Lock()
	turns := append([]Turn(nil), s.turns...)
	handlers := slices.Clone(s.onTranscript)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(turns)
	}
}
