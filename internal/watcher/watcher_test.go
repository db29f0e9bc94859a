package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/models"
)

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, home
}

func waitEvent(t *testing.T, w *Watcher, want EventType) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestClassify(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	chars := filepath.Join(home, config.CharactersDirName)
	tests := []struct {
		name      string
		path      string
		wantOK    bool
		wantType  EventType
		character string
	}{
		{"settings", filepath.Join(home, config.SettingsFileName), true, EventSettingsChanged, ""},
		{"removed character", filepath.Join(chars, "lumi.yaml"), true, EventCharacterRemoved, "lumi"},
		{"non yaml", filepath.Join(chars, "notes.txt"), false, 0, ""},
		{"invalid name", filepath.Join(chars, "Bad Name.yaml"), false, 0, ""},
		{"other dir", filepath.Join(home, "lumi.yaml"), false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := w.classify(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("classify(%s) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Type != tt.wantType || ev.Character != tt.character {
				t.Errorf("classify(%s) = %+v", tt.path, ev)
			}
		})
	}
}

func TestCharacterChangeEvent(t *testing.T) {
	w, _ := newTestWatcher(t)

	c := models.DefaultCharacters()[0]
	if err := config.SaveCharacter(c); err != nil {
		t.Fatal(err)
	}
	ev := waitEvent(t, w, EventCharacterChanged)
	if ev.Character != c.Name {
		t.Errorf("Character = %q, want %q", ev.Character, c.Name)
	}
}

func TestSettingsChangeEvent(t *testing.T) {
	w, home := newTestWatcher(t)

	path := filepath.Join(home, config.SettingsFileName)
	if err := os.WriteFile(path, []byte("character: bolt\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, EventSettingsChanged)
}

func TestFailedStartClosesWatcher(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.HomeEnvVar, filepath.Join(blocker, "home"))

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err == nil {
		t.Fatal("Start succeeded with an unusable home directory")
	}

	if err := w.fsWatcher.Add(t.TempDir()); !errors.Is(err, fsnotify.ErrClosed) {
		t.Errorf("fsnotify watcher still open after failed Start: Add() = %v", err)
	}
	select {
	case <-w.done:
	default:
		t.Error("done not closed after failed Start")
	}
	w.Stop() // still safe
}
