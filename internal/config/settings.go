package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-io/lumen/internal/models"
)

// LoadSettings loads the global settings from ~/.lumen/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSettings)
}

// SaveSettings saves the global settings to ~/.lumen/settings.yaml.
// An install ID is assigned on first save.
func SaveSettings(settings *models.Settings) error {
	if settings.InstallID == "" {
		settings.InstallID = uuid.New().String()
	}
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// settingSetters maps dotted setting keys to parsers.
var settingSetters = map[string]func(s *models.Settings, value string) error{
	"character": func(s *models.Settings, value string) error {
		if !ValidCharacterName(value) {
			return fmt.Errorf("invalid character name: %s", value)
		}
		s.Character = value
		return nil
	},
	"microphone.enabled_on_start": func(s *models.Settings, value string) error {
		return parseBool(value, &s.Microphone.EnabledOnStart)
	},
	"appearance.theme": func(s *models.Settings, value string) error {
		switch value {
		case "system", "light", "dark":
			s.Appearance.Theme = value
			return nil
		}
		return fmt.Errorf("invalid theme: %s (expected system, light or dark)", value)
	},
	"analytics.enabled": func(s *models.Settings, value string) error {
		return parseBool(value, &s.Analytics.Enabled)
	},
	"analytics.api_key": func(s *models.Settings, value string) error {
		s.Analytics.APIKey = value
		return nil
	},
	"analytics.endpoint": func(s *models.Settings, value string) error {
		s.Analytics.Endpoint = value
		return nil
	},
	"response.word_delay": func(s *models.Settings, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		if d < 0 {
			return fmt.Errorf("word delay must not be negative")
		}
		s.Response.WordDelay = d
		return nil
	},
}

// SettingKeys returns the keys accepted by SetSettingValue, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetSettingValue parses value and stores it under the dotted key.
func SetSettingValue(settings *models.Settings, key, value string) error {
	setter, ok := settingSetters[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown setting: %s", key)
	}
	return setter(settings, strings.TrimSpace(value))
}

func parseBool(value string, dst *bool) error {
	switch strings.ToLower(value) {
	case "y", "yes", "on":
		*dst = true
		return nil
	case "n", "no", "off":
		*dst = false
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean: %s", value)
	}
	*dst = b
	return nil
}
