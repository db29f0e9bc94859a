// Package models contains shared data structures used across the application.
package models

import "time"

// MicrophoneConfig holds microphone defaults.
type MicrophoneConfig struct {
	EnabledOnStart bool `yaml:"enabled_on_start"`
}

// AppearanceConfig holds appearance settings.
type AppearanceConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark"
}

// AnalyticsConfig holds opt-in usage analytics settings.
type AnalyticsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// ResponseConfig tunes the built-in offline responder.
type ResponseConfig struct {
	WordDelay time.Duration `yaml:"word_delay"`
}

// Settings represents global application settings.
// This corresponds to ~/.lumen/settings.yaml.
type Settings struct {
	Version    int              `yaml:"version"`
	InstallID  string           `yaml:"install_id,omitempty"`
	Character  string           `yaml:"character"`
	Microphone MicrophoneConfig `yaml:"microphone"`
	Appearance AppearanceConfig `yaml:"appearance"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	Response   ResponseConfig   `yaml:"response"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:   1,
		Character: DefaultCharacterName,
		Microphone: MicrophoneConfig{
			EnabledOnStart: false,
		},
		Appearance: AppearanceConfig{
			Theme: "system",
		},
		Analytics: AnalyticsConfig{
			Enabled:  false,
			Endpoint: "https://us.i.posthog.com",
		},
		Response: ResponseConfig{
			WordDelay: 80 * time.Millisecond,
		},
	}
}
