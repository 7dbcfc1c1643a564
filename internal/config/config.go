package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default mode for directories
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.reqchain)
	ConfigDir string

	// DatabasePath is the SQLite database file for request history
	DatabasePath string

	// ProfilesFile is the profiles configuration file
	ProfilesFile string
)

// Initialize sets up the configuration directory and default files,
// creating ~/.reqchain/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".reqchain")
	DatabasePath = filepath.Join(ConfigDir, "reqchain.db")
	ProfilesFile = filepath.Join(ConfigDir, "profiles.json")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(ProfilesFile); os.IsNotExist(err) {
		defaultProfiles := []byte("[\n  // {\"name\": \"dev\", \"variables\": {\"baseUrl\": \"http://localhost:3000\"}}\n]\n")
		if err := os.WriteFile(ProfilesFile, defaultProfiles, FilePermissions); err != nil {
			return fmt.Errorf("failed to create profiles file: %w", err)
		}
	}

	return nil
}
