// Package watcher reloads configuration when files under ~/.lumen change.
package watcher

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/debounce"
)

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota
	EventCharacterChanged
	EventCharacterRemoved
)

func (t EventType) String() string {
	switch t {
	case EventSettingsChanged:
		return "settings-changed"
	case EventCharacterChanged:
		return "character-changed"
	case EventCharacterRemoved:
		return "character-removed"
	default:
		return "unknown"
	}
}

// DefaultDebounce is how long a path must be quiet before its event is emitted.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a configuration change.
type Event struct {
	Type      EventType
	Character string // set for character events
	Path      string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithClock drives the debounce timers from clock.
func WithClock(clock debounce.Clock) Option {
	return func(w *Watcher) {
		w.clock = clock
	}
}

// Watcher watches the settings file and the characters directory.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	clock      debounce.Clock
	delay      time.Duration
	debounce   *debounce.Keyed

	settingsFile  string
	charactersDir string
}

// New creates a new watcher. Call Start to begin watching.
func New(opts ...Option) (*Watcher, error) {
	settingsFile, err := config.GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	charactersDir, err := config.CharactersDir()
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		eventsChan:    make(chan Event, 100),
		done:          make(chan struct{}),
		clock:         debounce.RealClock,
		delay:         DefaultDebounce,
		settingsFile:  settingsFile,
		charactersDir: charactersDir,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debounce = debounce.NewKeyed(w.clock)
	return w, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts the watcher. If it fails the watcher is stopped and cannot
// be restarted.
func (w *Watcher) Start() error {
	if err := config.EnsureGlobalDir(); err != nil {
		w.Stop()
		return err
	}
	if err := w.fsWatcher.Add(filepath.Dir(w.settingsFile)); err != nil {
		w.Stop()
		return err
	}
	if err := w.fsWatcher.Add(w.charactersDir); err != nil {
		log.Printf("Warning: failed to watch characters dir: %v", err)
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.debounce.Stop()
		_ = w.fsWatcher.Close()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// handleEvent filters and debounces a raw fsnotify event. Rename matters:
// config.SaveYAML writes a temp file and renames it over the target.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	path := event.Name
	w.debounce.Trigger(path, w.delay, func() {
		w.processFileChange(path)
	})
}

// processFileChange classifies a debounced change and emits an event.
func (w *Watcher) processFileChange(path string) {
	ev, ok := w.classify(path)
	if !ok {
		return
	}
	log.Printf("[watcher] %s: %s", ev.Type, path)

	select {
	case w.eventsChan <- ev:
	case <-w.done:
	}
}

func (w *Watcher) classify(path string) (Event, bool) {
	if path == w.settingsFile {
		return Event{Type: EventSettingsChanged, Path: path}, true
	}

	if filepath.Dir(path) != w.charactersDir || filepath.Ext(path) != ".yaml" {
		return Event{}, false
	}
	name := strings.TrimSuffix(filepath.Base(path), ".yaml")
	if !config.ValidCharacterName(name) {
		return Event{}, false
	}

	eventType := EventCharacterChanged
	if !config.FileExists(path) {
		eventType = EventCharacterRemoved
	}
	return Event{Type: eventType, Character: name, Path: path}, true
}
