package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/analytics"
	"github.com/lumen-io/lumen/internal/companion"
	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/mic"
	"github.com/lumen-io/lumen/internal/models"
)

// app owns the store and everything wired to it for one process.
type app struct {
	store     *aistate.Store
	session   *companion.Session
	analytics *analytics.Client
	telemetry *telemetry
}

// newApp creates the store, mic switch, session and analytics client. The
// session is not started.
func newApp(settings *models.Settings) (*app, error) {
	if err := config.EnsureGlobalDir(); err != nil {
		return nil, fmt.Errorf("failed to create lumen directory: %w", err)
	}
	if err := config.EnsureDefaultCharacters(); err != nil {
		return nil, fmt.Errorf("failed to install default characters: %w", err)
	}

	var storeOpts []aistate.Option
	tel, err := newTelemetry()
	if err != nil {
		log.Printf("Warning: telemetry disabled: %v", err)
	} else {
		storeOpts = append(storeOpts,
			aistate.WithMeterProvider(tel.meters),
			aistate.WithLoggerProvider(tel.logs),
		)
	}

	store := aistate.New(storeOpts...)
	micSwitch := mic.NewSwitch(settings.Microphone.EnabledOnStart)
	session := companion.NewSession(store, micSwitch, companion.ConfigLoader, companion.EchoResponder{
		WordDelay: settings.Response.WordDelay,
	})

	client, err := analytics.New(settings)
	if err != nil {
		log.Printf("Warning: %v", err)
		client = &analytics.Client{}
	}
	client.TrackStates(store)

	return &app{store: store, session: session, analytics: client, telemetry: tel}, nil
}

// Close stops the session, flushes analytics and telemetry, and closes the
// store. It is safe after the TUI already closed the store.
func (a *app) Close() {
	a.session.Close()
	if err := a.analytics.Close(); err != nil {
		log.Printf("Warning: failed to flush analytics: %v", err)
	}
	a.store.Close()
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.telemetry.Shutdown(ctx); err != nil {
			log.Printf("Warning: failed to flush telemetry: %v", err)
		}
	}
}

// startupSettings loads settings and applies command line overrides. The
// overrides are not saved.
func startupSettings(cmd *cobra.Command, character string, micOn bool) (*models.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// Analytics need a stable install ID, which SaveSettings assigns.
	if settings.Analytics.Enabled && settings.InstallID == "" {
		if err := config.SaveSettings(settings); err != nil {
			return nil, fmt.Errorf("failed to save settings: %w", err)
		}
	}

	if cmd.Flags().Changed("character") {
		if !config.ValidCharacterName(character) {
			return nil, fmt.Errorf("invalid character name: %s", character)
		}
		settings.Character = character
	}
	if cmd.Flags().Changed("mic") {
		settings.Microphone.EnabledOnStart = micOn
	}

	return settings, nil
}
