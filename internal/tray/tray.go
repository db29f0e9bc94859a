package tray

import (
	"fmt"
	"log"

	"github.com/getlantern/systray"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/mic"
)

var (
	companion   Companion
	onStart     func()
	onExit      func()
	requestQuit func()

	stateItem   *systray.MenuItem
	micItem     *systray.MenuItem
	newChatItem *systray.MenuItem
	quitItem    *systray.MenuItem

	unsubscribe func()
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called once the menu exists; onExitFn when the tray exits.
// quitFn is called when the user picks Quit and should end in Quit().
func Run(c Companion, onStartFn, onExitFn, quitFn func()) {
	companion = c
	onStart = onStartFn
	onExit = onExitFn
	requestQuit = quitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTitle(formatTitle(aistate.Loading))
	systray.SetTooltip(formatTooltip("", aistate.Loading, false))

	header := systray.AddMenuItem("Lumen", "")
	header.Disable()

	stateItem = systray.AddMenuItem(formatStatus(aistate.Loading), "")
	stateItem.Disable()

	systray.AddSeparator()

	micItem = systray.AddMenuItem(micTitle(nil), "Toggle microphone")
	newChatItem = systray.AddMenuItem("New chat", "Start a new conversation")

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Quit", "Quit Lumen")

	if onStart != nil {
		onStart()
	}

	if companion != nil {
		bridge := companion.Mic().Bridge()
		companion.Mic().OnChange(func(bool) {
			micItem.SetTitle(micTitle(bridge))
		})
		micItem.SetTitle(micTitle(bridge))

		unsubscribe = companion.Store().Subscribe(func(s aistate.State) {
			update(s, bridge.On())
		})
	}

	go handleClicks()
}

func onQuit() {
	if unsubscribe != nil {
		unsubscribe()
	}
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-micItem.ClickedCh:
			if companion != nil {
				on := companion.ToggleMic()
				log.Printf("[tray] microphone toggled: %v", on)
			}

		case <-newChatItem.ClickedCh:
			if companion != nil {
				companion.NewChat()
			}

		case <-quitItem.ClickedCh:
			if requestQuit != nil {
				requestQuit()
			} else {
				Quit()
			}
			return
		}
	}
}

// update refreshes the title, tooltip and status item for state s.
func update(s aistate.State, micOn bool) {
	name := ""
	if c := companion.Character(); c != nil {
		name = c.Title()
	}
	systray.SetTitle(formatTitle(s))
	systray.SetTooltip(formatTooltip(name, s, micOn))
	stateItem.SetTitle(formatStatus(s))
}

// stateGlyphs are short markers shown next to the tray icon.
var stateGlyphs = map[aistate.State]string{
	aistate.Idle:             "○",
	aistate.ThinkingSpeaking: "●",
	aistate.Interrupted:      "✕",
	aistate.Loading:          "…",
	aistate.Listening:        "◉",
	aistate.Waiting:          "◌",
}

func formatTitle(s aistate.State) string {
	if g, ok := stateGlyphs[s]; ok {
		return g
	}
	return "?"
}

func formatStatus(s aistate.State) string {
	return fmt.Sprintf("%s %s", formatTitle(s), stateLabel(s))
}

func formatTooltip(character string, s aistate.State, micOn bool) string {
	if character == "" {
		character = "Lumen"
	}
	tip := fmt.Sprintf("%s: %s", character, stateLabel(s))
	if micOn {
		tip += " (mic on)"
	}
	return tip
}

func micTitle(b *mic.Bridge) string {
	return fmt.Sprintf("%s %s", b.Icon(), b.Label())
}

func stateLabel(s aistate.State) string {
	switch s {
	case aistate.Idle:
		return "Idle"
	case aistate.ThinkingSpeaking:
		return "Thinking / speaking"
	case aistate.Interrupted:
		return "Interrupted"
	case aistate.Loading:
		return "Loading"
	case aistate.Listening:
		return "Listening"
	case aistate.Waiting:
		return "Waiting for you"
	default:
		return s.String()
	}
}
