package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "bazaar"

// ConfigDir returns the XDG-compliant config directory
// Typically ~/.config/bazaar/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// DataDir returns the XDG-compliant data directory holding credential stores
// Typically ~/.local/share/bazaar/ on Linux
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}
