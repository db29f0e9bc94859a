package tui

import (
	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/companion"
	"github.com/lumen-io/lumen/internal/models"
	"github.com/lumen-io/lumen/internal/watcher"
)

// StateChangedMsg carries a new AI activity state from the store.
type StateChangedMsg struct {
	State aistate.State
}

// TranscriptMsg carries the chat transcript after a change.
type TranscriptMsg struct {
	Turns []companion.Turn
}

// MicChangedMsg signals the microphone was switched.
type MicChangedMsg struct {
	On bool
}

// CharacterLoadedMsg signals the active character finished loading.
type CharacterLoadedMsg struct {
	Character *models.Character
}

// SettingsLoadedMsg carries settings re-read from disk.
type SettingsLoadedMsg struct {
	Settings *models.Settings
}

// ConfigChangedMsg carries a file change from the config watcher.
type ConfigChangedMsg struct {
	Event watcher.Event
}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// NoticeMsg carries a short confirmation to display.
type NoticeMsg struct {
	Text string
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// ClearNoticeMsg clears the notice display.
type ClearNoticeMsg struct{}

// frameTickMsg advances the avatar animation.
type frameTickMsg struct{}
