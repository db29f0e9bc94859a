// Package analytics reports anonymous usage events to PostHog when enabled.
package analytics

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"

	"github.com/posthog/posthog-go"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/buildinfo"
	"github.com/lumen-io/lumen/internal/models"
)

// Event names.
const (
	EventAppStarted     = "app_started"
	EventAIStateChanged = "ai_state_changed"
)

// sender is the subset of posthog.Client used here.
type sender interface {
	io.Closer
	Enqueue(posthog.Message) error
}

// Client sends events for one install. A disabled Client drops everything.
type Client struct {
	sender     sender
	distinctID string

	mu           sync.Mutex
	unsubscribes []func()
	closed       bool
}

// New returns a Client for settings. Analytics stay off unless the user
// enabled them and configured an API key.
func New(settings *models.Settings) (*Client, error) {
	if settings == nil || !settings.Analytics.Enabled || settings.Analytics.APIKey == "" {
		return &Client{}, nil
	}

	ph, err := posthog.NewWithConfig(settings.Analytics.APIKey, posthog.Config{
		Endpoint: settings.Analytics.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics client: %w", err)
	}
	return newClient(ph, settings.InstallID), nil
}

func newClient(s sender, distinctID string) *Client {
	return &Client{sender: s, distinctID: distinctID}
}

// Enabled reports whether events are actually sent.
func (c *Client) Enabled() bool {
	return c != nil && c.sender != nil
}

// Track enqueues one event. Failures are logged, never returned.
func (c *Client) Track(event string, props posthog.Properties) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	if props == nil {
		props = posthog.NewProperties()
	}
	props.Set("version", buildinfo.Version).Set("os", runtime.GOOS)

	err := c.sender.Enqueue(posthog.Capture{
		DistinctId: c.distinctID,
		Event:      event,
		Properties: props,
	})
	if err != nil {
		log.Printf("[analytics] failed to enqueue %s: %v", event, err)
	}
}

// TrackStates reports every AI state change of store until Close. The value
// delivered on subscription is not reported, nor are repeats of the same state.
func (c *Client) TrackStates(store *aistate.Store) {
	if !c.Enabled() {
		return
	}

	var (
		primed bool
		prev   aistate.State
	)
	unsubscribe := store.Subscribe(func(s aistate.State) {
		if !primed {
			primed, prev = true, s
			return
		}
		if s == prev {
			return
		}
		c.Track(EventAIStateChanged, posthog.NewProperties().
			Set("state", s.String()).
			Set("from", prev.String()))
		prev = s
	})

	c.mu.Lock()
	c.unsubscribes = append(c.unsubscribes, unsubscribe)
	c.mu.Unlock()
}

// Close stops state tracking and flushes pending events.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	unsubscribes := c.unsubscribes
	c.unsubscribes = nil
	c.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	return c.sender.Close()
}
