// Package tray implements the system tray icon and menu.
package tray

import (
	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/mic"
	"github.com/lumen-io/lumen/internal/models"
)

// Companion is the part of the chat session the tray drives.
type Companion interface {
	Store() *aistate.Store
	Mic() *mic.Switch
	Character() *models.Character
	ToggleMic() bool
	NewChat()
}
