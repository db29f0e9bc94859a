package companion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/debounce/debouncetest"
	"github.com/lumen-io/lumen/internal/mic"
	"github.com/lumen-io/lumen/internal/models"
)

var errMissing = errors.New("missing")

func testLoader(characters ...*models.Character) CharacterLoader {
	byName := map[string]*models.Character{}
	for _, c := range characters {
		byName[c.Name] = c
	}
	return CharacterLoaderFunc(func(_ context.Context, name string) (*models.Character, error) {
		c, ok := byName[name]
		if !ok {
			return nil, errMissing
		}
		return c, nil
	})
}

var (
	lumi = &models.Character{Name: "lumi", Greeting: "hello", Replies: []string{"echo {input}"}}
	bolt = &models.Character{Name: "bolt", Greeting: "beep"}
)

// blockingResponder sends one chunk, then holds the reply open until cancelled.
type blockingResponder struct {
	started chan struct{}
}

func (r *blockingResponder) Respond(ctx context.Context, _ *models.Character, _ []Turn, _ string) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		select {
		case out <- "partial":
		case <-ctx.Done():
			return
		}
		close(r.started)
		<-ctx.Done()
	}()
	return out, nil
}

type failingResponder struct{}

func (failingResponder) Respond(context.Context, *models.Character, []Turn, string) (<-chan string, error) {
	return nil, errors.New("model offline")
}

func newTestSession(t *testing.T, responder Responder) (*Session, *aistate.Store, *debouncetest.Clock) {
	t.Helper()
	clock := debouncetest.NewClock()
	store := aistate.New(aistate.WithClock(clock))
	s := NewSession(store, mic.NewSwitch(false), testLoader(lumi, bolt), responder)
	t.Cleanup(func() {
		s.Close()
		store.Close()
	})
	return s, store, clock
}

func TestStartLoadsCharacter(t *testing.T) {
	s, store, _ := newTestSession(t, nil)
	if got := store.Get(); got != aistate.Loading {
		t.Fatalf("initial state = %v, want loading", got)
	}

	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := store.Get(); got != aistate.Idle {
		t.Errorf("state after Start = %v, want idle", got)
	}
	turns := s.Transcript()
	if len(turns) != 1 || turns[0].Text != "hello" || turns[0].Role != RoleAssistant {
		t.Errorf("transcript = %+v, want greeting", turns)
	}
	if !s.CanSpeakProactively() {
		t.Error("idle session should allow proactive speech")
	}
}

func TestStartFailureStaysLoading(t *testing.T) {
	s, store, _ := newTestSession(t, nil)
	err := s.Start(context.Background(), "ghost")
	if !errors.Is(err, errMissing) {
		t.Fatalf("Start error = %v, want errMissing", err)
	}
	if got := store.Get(); got != aistate.Loading {
		t.Errorf("state = %v, want loading", got)
	}
	if err := s.SubmitMessage(context.Background(), "hi"); !errors.Is(err, ErrBusy) {
		t.Errorf("SubmitMessage while loading = %v, want ErrBusy", err)
	}
}

func TestSubmitMessageStreamsReply(t *testing.T) {
	s, store, _ := newTestSession(t, EchoResponder{})
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}

	var seen []aistate.State
	var mu sync.Mutex
	store.Subscribe(func(state aistate.State) {
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
	})

	if err := s.SubmitMessage(context.Background(), "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("blank message error = %v", err)
	}
	if err := s.SubmitMessage(context.Background(), "good morning"); err != nil {
		t.Fatalf("SubmitMessage: %v", err)
	}
	s.Wait()

	turns := s.Transcript()
	last := turns[len(turns)-1]
	if last.Role != RoleAssistant || last.Text != "echo good morning" {
		t.Errorf("last turn = %+v", last)
	}
	if got := store.Get(); got != aistate.Idle {
		t.Errorf("state after reply = %v, want idle", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []aistate.State{aistate.Idle, aistate.ThinkingSpeaking, aistate.Idle}
	if len(seen) != len(want) {
		t.Fatalf("states = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("states = %v, want %v", seen, want)
		}
	}
}

func TestInterruptExpiresToIdle(t *testing.T) {
	responder := &blockingResponder{started: make(chan struct{})}
	s, store, clock := newTestSession(t, responder)
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}

	if s.Interrupt() {
		t.Fatal("Interrupt with no reply reported true")
	}

	if err := s.SubmitMessage(context.Background(), "tell me a story"); err != nil {
		t.Fatal(err)
	}
	<-responder.started
	if got := store.Get(); got != aistate.ThinkingSpeaking {
		t.Fatalf("state while replying = %v", got)
	}

	if !s.Interrupt() {
		t.Fatal("Interrupt reported no reply")
	}
	s.Wait()
	if got := store.Get(); got != aistate.Interrupted {
		t.Fatalf("state after interrupt = %v, want interrupted", got)
	}

	clock.Advance(aistate.DefaultExpiry)
	if got := store.Get(); got != aistate.Idle {
		t.Errorf("state after expiry = %v, want idle", got)
	}
}

func TestResponderErrorSettles(t *testing.T) {
	s, store, _ := newTestSession(t, failingResponder{})
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitMessage(context.Background(), "hi"); err == nil {
		t.Fatal("expected responder error")
	}
	if got := store.Get(); got != aistate.Idle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestUserTyping(t *testing.T) {
	responder := &blockingResponder{started: make(chan struct{})}
	s, store, clock := newTestSession(t, responder)
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}

	if !s.UserTyping() {
		t.Fatal("typing from idle should enter waiting")
	}
	clock.Advance(aistate.DefaultExpiry / 2)
	s.UserTyping()
	clock.Advance(aistate.DefaultExpiry / 2)
	if got := store.Get(); got != aistate.Waiting {
		t.Fatalf("state = %v, want waiting (window restarted)", got)
	}

	if err := s.SubmitMessage(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	<-responder.started
	if s.UserTyping() {
		t.Error("typing overrode a reply in progress")
	}
	if got := store.Get(); got != aistate.ThinkingSpeaking {
		t.Errorf("state = %v, want thinking-speaking", got)
	}
}

func TestToggleMic(t *testing.T) {
	s, store, _ := newTestSession(t, nil)
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}

	if !s.ToggleMic() {
		t.Fatal("ToggleMic should turn the mic on")
	}
	if got := store.Get(); got != aistate.Listening {
		t.Fatalf("state = %v, want listening", got)
	}
	if s.ToggleMic() {
		t.Fatal("ToggleMic should turn the mic off")
	}
	if got := store.Get(); got != aistate.Idle {
		t.Fatalf("state = %v, want idle", got)
	}
}

func TestStartWithMicOnListens(t *testing.T) {
	clock := debouncetest.NewClock()
	store := aistate.New(aistate.WithClock(clock))
	defer store.Close()
	s := NewSession(store, mic.NewSwitch(true), testLoader(lumi), nil)
	defer s.Close()

	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}
	if got := store.Get(); got != aistate.Listening {
		t.Errorf("state = %v, want listening", got)
	}
}

func TestTypingKeepsMicListening(t *testing.T) {
	clock := debouncetest.NewClock()
	store := aistate.New(aistate.WithClock(clock))
	defer store.Close()
	s := NewSession(store, mic.NewSwitch(true), testLoader(lumi), nil)
	defer s.Close()

	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}
	if s.UserTyping() {
		t.Error("UserTyping() replaced listening")
	}

	clock.Advance(2 * aistate.DefaultExpiry)
	if got := store.Get(); got != aistate.Listening {
		t.Fatalf("state with mic on after typing = %v, want listening", got)
	}
	if s.SpeakProactively(context.Background(), "psst") {
		t.Error("spoke proactively while the mic was capturing")
	}

	s.ToggleMic()
	if !s.UserTyping() {
		t.Error("UserTyping() ignored once the mic is off")
	}
}

func TestOnTranscriptSeesEveryChange(t *testing.T) {
	s, _, _ := newTestSession(t, EchoResponder{})

	var mu sync.Mutex
	var sizes []int
	s.OnTranscript(func(turns []Turn) {
		mu.Lock()
		sizes = append(sizes, len(turns))
		mu.Unlock()
	})

	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitMessage(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(sizes) < 3 || sizes[0] != 1 || sizes[len(sizes)-1] != 3 {
		t.Errorf("transcript sizes seen = %v, want 1 first and 3 last", sizes)
	}
}

func TestNewChatResets(t *testing.T) {
	s, store, _ := newTestSession(t, EchoResponder{})
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitMessage(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	s.Wait()
	s.UserTyping()

	s.NewChat()
	if got := store.Get(); got != aistate.Idle {
		t.Errorf("state = %v, want idle", got)
	}
	if store.ExpiryPending() {
		t.Error("NewChat left the waiting expiry armed")
	}
	if turns := s.Transcript(); len(turns) != 1 || turns[0].Text != "hello" {
		t.Errorf("transcript after NewChat = %+v", turns)
	}
}

func TestSwitchCharacter(t *testing.T) {
	s, store, _ := newTestSession(t, nil)
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}

	var states []aistate.State
	store.Subscribe(func(state aistate.State) { states = append(states, state) })

	if err := s.SwitchCharacter(context.Background(), "bolt"); err != nil {
		t.Fatal(err)
	}
	if s.Character().Name != "bolt" {
		t.Errorf("character = %s, want bolt", s.Character().Name)
	}
	want := []aistate.State{aistate.Idle, aistate.Loading, aistate.Idle}
	if len(states) != len(want) || states[1] != aistate.Loading || states[2] != aistate.Idle {
		t.Errorf("states = %v, want %v", states, want)
	}

	if err := s.SwitchCharacter(context.Background(), "ghost"); err == nil {
		t.Fatal("expected error for unknown character")
	}
	if s.Character().Name != "bolt" {
		t.Errorf("failed switch replaced the character")
	}
	if got := store.Get(); got != aistate.Idle {
		t.Errorf("state after failed switch = %v, want idle", got)
	}

	if err := s.ReloadCharacter(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}
	if s.Character().Name != "bolt" {
		t.Error("reloading an inactive character switched to it")
	}
}

func TestSpeakProactively(t *testing.T) {
	s, store, _ := newTestSession(t, nil)
	if s.SpeakProactively(context.Background(), "hello?") {
		t.Fatal("spoke before a character was loaded")
	}
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}

	store.Set(aistate.Listening)
	if s.SpeakProactively(context.Background(), "anyone there?") {
		t.Fatal("spoke while listening")
	}

	store.Reset()
	if !s.SpeakProactively(context.Background(), "anyone there?") {
		t.Fatal("did not speak from idle")
	}
	s.Wait()

	turns := s.Transcript()
	if last := turns[len(turns)-1]; last.Text != "anyone there?" {
		t.Errorf("last turn = %+v", last)
	}
	if got := store.Get(); got != aistate.Idle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestEchoResponderCyclesReplies(t *testing.T) {
	c := &models.Character{Replies: []string{"one {input}", "two {input}"}}
	r := EchoResponder{}

	history := []Turn{{Role: RoleUser, Text: "a"}}
	if got := r.reply(c, history, "a"); got != "one a" {
		t.Errorf("first reply = %q", got)
	}
	history = append(history, Turn{Role: RoleAssistant}, Turn{Role: RoleUser, Text: "b"})
	if got := r.reply(c, history, "b"); got != "two b" {
		t.Errorf("second reply = %q", got)
	}
	if got := r.reply(nil, nil, "plain"); got != "plain" {
		t.Errorf("reply without character = %q", got)
	}
}

func TestClosedSessionLeavesStoreAlone(t *testing.T) {
	s, store, _ := newTestSession(t, &blockingResponder{started: make(chan struct{})})
	if err := s.Start(context.Background(), "lumi"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitMessage(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}

	s.Close()
	s.Close()
	if got := store.Get(); got != aistate.ThinkingSpeaking {
		t.Fatalf("Close changed state to %v", got)
	}

	if err := s.SubmitMessage(context.Background(), "again"); !errors.Is(err, ErrClosed) {
		t.Errorf("SubmitMessage after Close = %v, want ErrClosed", err)
	}
	if err := s.Start(context.Background(), "bolt"); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
	if err := s.SwitchCharacter(context.Background(), "bolt"); !errors.Is(err, ErrClosed) {
		t.Errorf("SwitchCharacter after Close = %v, want ErrClosed", err)
	}
	if s.Interrupt() || s.UserTyping() || s.SpeakProactively(context.Background(), "hey") {
		t.Error("operation succeeded after Close")
	}
	s.NewChat()
	s.ToggleMic()

	if got := store.Get(); got != aistate.ThinkingSpeaking {
		t.Errorf("state after closed operations = %v, want unchanged", got)
	}
}
