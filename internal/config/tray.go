package config

import (
	"os"
	"syscall"

	"github.com/lumen-io/lumen/internal/models"
)

// LoadTrayInfo loads ~/.lumen/tray.yaml. Returns nil if the file doesn't exist.
func LoadTrayInfo() (*models.TrayInfo, error) {
	path, err := GlobalTrayFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.TrayInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveTrayInfo writes ~/.lumen/tray.yaml.
func SaveTrayInfo(info *models.TrayInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalTrayFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveTrayInfo removes the tray.yaml file.
func RemoveTrayInfo() error {
	path, err := GlobalTrayFile()
	if err != nil {
		return err
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// IsTrayRunning reports whether tray.yaml exists and its PID is alive.
// A stale file is removed.
func IsTrayRunning() (bool, *models.TrayInfo, error) {
	info, err := LoadTrayInfo()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return false, info, nil
	}

	// Signal 0 probes for existence without delivering anything.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemoveTrayInfo()
		return false, info, nil
	}

	return true, info, nil
}
