package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumen-io/lumen/internal/companion"
	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/watcher"
)

// ── Session commands ─────────────────────────────────────────────

func startSessionCmd(ctx context.Context, session *companion.Session, name string) tea.Cmd {
	return func() tea.Msg {
		if err := session.Start(ctx, name); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load %s: %w", name, err)}
		}
		return CharacterLoadedMsg{Character: session.Character()}
	}
}

// switchCharacterCmd moves to the next character and remembers the choice
// in settings.yaml.
func switchCharacterCmd(ctx context.Context, session *companion.Session, current string) tea.Cmd {
	return func() tea.Msg {
		next, err := config.NextCharacterName(current)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		if next == current {
			return NoticeMsg{Text: "No other characters installed"}
		}

		if err := session.SwitchCharacter(ctx, next); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to switch to %s: %w", next, err)}
		}

		settings, err := config.LoadSettings()
		if err == nil {
			settings.Character = next
			err = config.SaveSettings(settings)
		}
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save character choice: %w", err)}
		}
		return CharacterLoadedMsg{Character: session.Character()}
	}
}

func reloadCharacterCmd(ctx context.Context, session *companion.Session, name string) tea.Cmd {
	return func() tea.Msg {
		if err := session.ReloadCharacter(ctx, name); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to reload %s: %w", name, err)}
		}
		return CharacterLoadedMsg{Character: session.Character()}
	}
}

// ── Config commands ──────────────────────────────────────────────

func loadSettingsCmd() tea.Cmd {
	return func() tea.Msg {
		settings, err := config.LoadSettings()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return SettingsLoadedMsg{Settings: settings}
	}
}

// watchConfigCmd waits for the next watcher event. It is re-issued after
// each ConfigChangedMsg.
func watchConfigCmd(events <-chan watcher.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ConfigChangedMsg{Event: ev}
	}
}

// ── Ticks ────────────────────────────────────────────────────────

func frameTick() tea.Cmd {
	return tea.Tick(400*time.Millisecond, func(_ time.Time) tea.Msg {
		return frameTickMsg{}
	})
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}
