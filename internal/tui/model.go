package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/companion"
	"github.com/lumen-io/lumen/internal/mic"
	"github.com/lumen-io/lumen/internal/models"
	"github.com/lumen-io/lumen/internal/watcher"
)

// nudges are what the character says when asked to speak up.
var nudges = []string{
	"Still there? I'm happy to keep chatting.",
	"Anything else on your mind?",
	"I'm here whenever you want to talk.",
}

// Model is the root Bubbletea model for the TUI.
type Model struct {
	session     *companion.Session
	settings    *models.Settings
	events      <-chan watcher.Event
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc

	// Mirrors of state owned elsewhere, updated by messages. View never
	// reads the store: it is closed on quit while a last frame may render.
	state     aistate.State
	micOn     bool
	character *models.Character
	turns     []companion.Turn

	// UI state
	activeOverlay int     // overlayNone, overlayHelp
	confirmMode   int     // confirmNone, confirmQuit
	splitRatio    float64 // Default 0.35
	width         int
	height        int
	frame         int
	nudgeCount    int
	systemDark    bool
	dragging      bool
	quitting      bool

	// Status display
	err    error
	notice string

	// Child components
	chat           viewport.Model
	input          textinput.Model
	spinner        spinner.Model
	spinnerRunning bool

	// Program reference for goroutine Send()
	program *programRef
}

// NewModel creates the initial TUI model for a session that has not been
// started yet.
func NewModel(session *companion.Session, settings *models.Settings, events <-chan watcher.Event, program *programRef) Model {
	if settings == nil {
		settings = models.NewSettings()
	}
	ctx, cancel := context.WithCancel(context.Background())

	input := textinput.New()
	input.Placeholder = "Say something…"
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	state := session.Store().Get()
	m := Model{
		session:        session,
		settings:       settings,
		events:         events,
		ctx:            ctx,
		cancel:         cancel,
		state:          state,
		micOn:          session.Mic().Enabled(),
		splitRatio:     0.35,
		systemDark:     lipgloss.HasDarkBackground(),
		chat:           viewport.New(0, 0),
		input:          input,
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		spinnerRunning: busy(state),
		program:        program,
	}
	applyTheme(settings.Appearance.Theme, m.systemDark)
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		startSessionCmd(m.ctx, m.session, m.settings.Character),
		textinput.Blink,
		frameTick(),
		watchConfigCmd(m.events),
	}
	if m.spinnerRunning {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	// ── Window resize ──────────────────────────────────────────────
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	// ── Key events ─────────────────────────────────────────────────
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	// ── Mouse events ───────────────────────────────────────────────
	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	// ── Store and session ──────────────────────────────────────────
	case StateChangedMsg:
		m.state = msg.State
		if m.confirmMode == confirmQuit && m.state != aistate.ThinkingSpeaking {
			m.confirmMode = confirmNone
		}
		m.refreshTranscript()
		if busy(m.state) && !m.spinnerRunning {
			m.spinnerRunning = true
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case TranscriptMsg:
		m.turns = msg.Turns
		m.refreshTranscript()
		return m, nil

	case MicChangedMsg:
		m.micOn = msg.On
		return m, nil

	case CharacterLoadedMsg:
		m.character = msg.Character
		m.refreshTranscript()
		return m, nil

	// ── Config hot reload ──────────────────────────────────────────
	case ConfigChangedMsg:
		cmds = append(cmds, m.handleConfigChange(msg.Event), watchConfigCmd(m.events))
		return m, tea.Batch(cmds...)

	case SettingsLoadedMsg:
		m.settings = msg.Settings
		applyTheme(m.settings.Appearance.Theme, m.systemDark)
		m.refreshTranscript()
		return m, m.showNotice("Settings reloaded")

	// ── Animation ──────────────────────────────────────────────────
	case frameTickMsg:
		m.frame++
		return m, frameTick()

	case spinner.TickMsg:
		if !busy(m.state) {
			m.spinnerRunning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// ── Status display ─────────────────────────────────────────────
	case ErrorMsg:
		return m, m.showError(msg.Err)

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case NoticeMsg:
		return m, m.showNotice(msg.Text)

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	// Cursor blink and anything else the input understands.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes key events.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Confirm mode captures everything
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}

	// Overlay captures everything
	if m.activeOverlay != overlayNone {
		if key.Matches(msg, overlayKeys.Cancel) || key.Matches(msg, globalKeys.Help) {
			m.activeOverlay = overlayNone
		}
		return nil
	}

	switch {
	case key.Matches(msg, globalKeys.Quit):
		if m.state == aistate.ThinkingSpeaking {
			m.confirmMode = confirmQuit
			return nil
		}
		return m.doQuit()

	case key.Matches(msg, globalKeys.Help):
		m.activeOverlay = overlayHelp
		return nil

	case key.Matches(msg, chatKeys.Send):
		return m.send()

	case key.Matches(msg, chatKeys.Interrupt):
		m.session.Interrupt()
		return nil

	case key.Matches(msg, chatKeys.NewChat):
		return m.newChat()

	case key.Matches(msg, chatKeys.SwitchCharacter):
		if m.character == nil {
			return nil
		}
		return switchCharacterCmd(m.ctx, m.session, m.character.Name)

	case key.Matches(msg, chatKeys.Mic):
		m.session.ToggleMic()
		return nil

	case key.Matches(msg, chatKeys.Nudge):
		return m.nudge()

	case key.Matches(msg, chatKeys.ScrollUp):
		m.chat.HalfPageUp()
		return nil

	case key.Matches(msg, chatKeys.ScrollDown):
		m.chat.HalfPageDown()
		return nil
	}

	return m.typeKey(msg)
}

// typeKey forwards a key to the input line and reports typing activity
// when the draft changed and is not empty.
func (m *Model) typeKey(msg tea.KeyMsg) tea.Cmd {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before && strings.TrimSpace(after) != "" {
		m.session.UserTyping()
	}
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		m.confirmMode = confirmNone
		return m.doQuit()
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
	}
	return nil
}

// ── Chat actions ─────────────────────────────────────────────────

func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if err := m.session.SubmitMessage(m.ctx, text); err != nil {
		if errors.Is(err, companion.ErrBusy) {
			return m.showError(fmt.Errorf("%s is still loading", m.characterTitle()))
		}
		return m.showError(err)
	}
	m.input.Reset()
	return nil
}

// newChat archives the conversation, then starts over.
func (m *Model) newChat() tea.Cmd {
	entry, err := m.session.Archive()
	m.session.NewChat()
	m.input.Reset()
	switch {
	case err != nil:
		return m.showError(err)
	case entry != nil:
		return m.showNotice("Saved transcript " + entry.TranscriptID)
	}
	return nil
}

func (m *Model) nudge() tea.Cmd {
	line := nudges[m.nudgeCount%len(nudges)]
	if !m.session.SpeakProactively(m.ctx, line) {
		return m.showNotice(m.characterTitle() + " will speak up when idle")
	}
	m.nudgeCount++
	return nil
}

func (m *Model) handleConfigChange(ev watcher.Event) tea.Cmd {
	switch ev.Type {
	case watcher.EventSettingsChanged:
		return loadSettingsCmd()
	case watcher.EventCharacterChanged:
		if m.character != nil && ev.Character == m.character.Name {
			return reloadCharacterCmd(m.ctx, m.session, ev.Character)
		}
	case watcher.EventCharacterRemoved:
		if m.character != nil && ev.Character == m.character.Name {
			return m.showError(fmt.Errorf("%s was removed; it stays loaded until you switch", ev.Character))
		}
	}
	return nil
}

// doQuit performs clean shutdown: archive the chat, stop the session,
// close the store, clear the program ref and quit.
func (m *Model) doQuit() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	m.quitting = true

	if _, err := m.session.Archive(); err != nil {
		log.Printf("Warning: %v", err)
	}
	m.cancel()
	m.session.Close()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.session.Store().Close()
	m.program.Clear()
	return tea.Quit
}

func (m *Model) showError(err error) tea.Cmd {
	m.err = err
	return clearErrorAfter(5 * time.Second)
}

func (m *Model) showNotice(text string) tea.Cmd {
	m.notice = text
	return clearNoticeAfter(3 * time.Second)
}

func (m *Model) characterTitle() string {
	if m.character == nil {
		return "Lumen"
	}
	return m.character.Title()
}

// ── Mouse handling ───────────────────────────────────────────────

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	layout := computeLayout(m.width, m.height, m.splitRatio)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.chat.ScrollUp(3)
			return nil
		case tea.MouseButtonWheelDown:
			m.chat.ScrollDown(3)
			return nil
		case tea.MouseButtonLeft:
			if msg.X >= layout.dividerCol-1 && msg.X <= layout.dividerCol+1 {
				m.dragging = true
				return nil
			}
			if msg.X < layout.dividerCol && msg.Y == layout.micRow() {
				m.session.Mic().Bridge().Press()
			}
		}

	case tea.MouseActionRelease:
		m.dragging = false

	case tea.MouseActionMotion:
		if m.dragging && m.width > 0 {
			ratio := float64(msg.X) / float64(m.width)
			m.splitRatio = min(max(ratio, 0.2), 0.6)
			m.updateDimensions()
		}
	}
	return nil
}

// ── Dimension helpers ────────────────────────────────────────────

func (m *Model) updateDimensions() {
	layout := computeLayout(m.width, m.height, m.splitRatio)
	width, height := layout.inner(layout.rightWidth)

	// The input line and its separator sit below the transcript.
	m.chat.Width = width
	m.chat.Height = max(height-2, 1)
	m.input.Width = max(width-lipgloss.Width(m.input.Prompt)-1, 1)
	m.refreshTranscript()
}

// refreshTranscript re-renders the conversation, following the bottom
// unless the user scrolled up.
func (m *Model) refreshTranscript() {
	follow := m.chat.AtBottom() || m.chat.TotalLineCount() == 0
	m.chat.SetContent(renderTranscript(m.turns, m.character, m.state, m.chat.Width))
	if follow {
		m.chat.GotoBottom()
	}
}

// ── View ─────────────────────────────────────────────────────────

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Minimum size check
	if m.width < minWidth || m.height < minHeight {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					fmt.Sprintf("Need %dx%d, have ", minWidth, minHeight)+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	layout := computeLayout(m.width, m.height, m.splitRatio)

	header := renderHeader(m.character, m.state, m.spinner.View(), m.width)

	leftWidth, innerHeight := layout.inner(layout.leftWidth)
	bridge := m.micBridge()
	avatar := renderAvatar(m.character, m.state, m.frame, bridge, leftWidth, innerHeight)

	rightWidth, _ := layout.inner(layout.rightWidth)
	chat := renderChat(m.chat.View(), m.input.View(), rightWidth)

	panels := renderPanels(avatar, chat, layout, m.state)
	statusBar := renderStatusBar(&m, m.width)

	view := lipgloss.JoinVertical(lipgloss.Left, header, panels, statusBar)

	if m.activeOverlay == overlayHelp {
		view = renderOverlay(view, renderHelp(m.width), m.width, m.height)
	}

	return view
}

// micBridge renders from the mirrored mic position so View stays free of
// locks held by other goroutines.
func (m Model) micBridge() *mic.Bridge {
	on := m.micOn
	return mic.NewBridge(func() bool { return on }, nil)
}
