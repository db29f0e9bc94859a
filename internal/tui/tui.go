// Package tui implements the interactive terminal companion.
package tui

import (
	"fmt"
	"log"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/companion"
	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/models"
	"github.com/lumen-io/lumen/internal/watcher"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// pump forwards messages to the program in order from its own goroutine.
// Store subscribers run inside Update whenever a key press changes the
// state, and tea.Program.Send blocks until Update returns, so they must
// never send directly.
type pump struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newPump() *pump {
	return &pump{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues msg without blocking.
func (p *pump) Post(msg tea.Msg) {
	p.mu.Lock()
	p.queue = append(p.queue, msg)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *pump) run(ref *programRef) {
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}
		for {
			p.mu.Lock()
			if len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			msg := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()

			ref.Send(msg)
		}
	}
}

// Stop ends the forwarding goroutine; queued messages are dropped.
func (p *pump) Stop() {
	p.once.Do(func() { close(p.done) })
}

// connect subscribes the model's message pump to everything that changes
// outside Update: the store, the transcript and the mic switch.
func connect(session *companion.Session, out *pump) (unsubscribe func()) {
	session.OnTranscript(func(turns []companion.Turn) {
		out.Post(TranscriptMsg{Turns: turns})
	})
	session.Mic().OnChange(func(on bool) {
		out.Post(MicChangedMsg{On: on})
	})
	return session.Store().Subscribe(func(s aistate.State) {
		out.Post(StateChangedMsg{State: s})
	})
}

// startWatcher starts config hot reload. Nothing is left open on failure.
func startWatcher(opts ...watcher.Option) (*watcher.Watcher, error) {
	w, err := watcher.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}

// Run launches the TUI for session and blocks until the user quits.
// The session must not be started yet; Run loads the character named in
// settings. The session's store is closed on exit.
func Run(session *companion.Session, settings *models.Settings) error {
	logFile, err := config.GlobalLogFile()
	if err != nil {
		return err
	}
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create lumen directory: %w", err)
	}
	f, err := tea.LogToFile(logFile, "[lumen] ")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	var events <-chan watcher.Event
	if w, err := startWatcher(); err != nil {
		log.Printf("Warning: config hot reload disabled: %v", err)
	} else {
		defer w.Stop()
		events = w.Events()
	}

	ref := &programRef{}
	out := newPump()
	defer out.Stop()

	model := NewModel(session, settings, events, ref)
	model.unsubscribe = connect(session, out)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Store program reference for goroutine sends
	ref.Set(p)
	go out.run(ref)

	_, err = p.Run()
	ref.Clear()
	return err
}
