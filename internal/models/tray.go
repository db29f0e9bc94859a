package models

import "time"

// TrayInfo records the running tray process.
// This corresponds to ~/.lumen/tray.yaml.
type TrayInfo struct {
	Version   int       `yaml:"version"`
	PID       int       `yaml:"pid"`
	Character string    `yaml:"character"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewTrayInfo creates tray info for the current process.
func NewTrayInfo(pid int, character string) *TrayInfo {
	return &TrayInfo{
		Version:   1,
		PID:       pid,
		Character: character,
		StartedAt: time.Now().UTC(),
	}
}
