// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global Lumen directory.
	GlobalDirName = ".lumen"

	// HomeEnvVar overrides the global directory location.
	HomeEnvVar = "LUMEN_HOME"

	// CharactersDirName is the name of the characters directory.
	CharactersDirName = "characters"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// TranscriptsDirName is the name of the archived transcripts directory.
	TranscriptsDirName = "transcripts"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	LogFileName      = "lumen.log"
	TrayFileName     = "tray.yaml"
)

// GlobalDir returns the path to the global Lumen directory (~/.lumen/),
// or $LUMEN_HOME when set.
func GlobalDir() (string, error) {
	if dir := os.Getenv(HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// CharactersDir returns the path to the characters directory.
func CharactersDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CharactersDirName), nil
}

// CharacterFile returns the path to a character's YAML file.
func CharacterFile(name string) (string, error) {
	dir, err := CharactersDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".yaml"), nil
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// GlobalLogFile returns the path to the application log file.
func GlobalLogFile() (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// GlobalTrayFile returns the path to the tray.yaml file.
func GlobalTrayFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TrayFileName), nil
}

// TranscriptsDir returns the directory holding a character's archived transcripts.
func TranscriptsDir(character string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TranscriptsDirName, character), nil
}

// EnsureGlobalDir creates the global Lumen directory and its subdirectories.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	for _, sub := range []string{"", CharactersDirName, LogsDirName, TranscriptsDirName} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return err
		}
	}
	return nil
}
