// Package config manages the indicator settings and their string-keyed
// change delivery.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// AppName is the application identifier used for XDG paths.
	AppName = "nettraffic"
	// SettingsFileName is the name of the settings file.
	SettingsFileName = "settings.json"
)

// Settings represents the persisted indicator settings.
type Settings struct {
	// Enabled turns the indicator on.
	Enabled bool `json:"enabled"`
	// AutoHide hides the indicator while both rates stay below the
	// auto-hide threshold.
	AutoHide bool `json:"auto_hide"`
	// UnitType selects the rate unit: 0 = bytes, 1 = bits.
	UnitType int `json:"unit_type"`
}

// Unit type values for Settings.UnitType.
const (
	UnitTypeBytes = 0
	UnitTypeBits  = 1
)

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Enabled:  false,
		AutoHide: false,
		UnitType: UnitTypeBytes,
	}
}

// Paths holds the resolved configuration locations.
type Paths struct {
	ConfigDir    string
	SettingsFile string
}

// GetPaths returns the configuration paths following the XDG Base
// Directory spec.
func GetPaths() (*Paths, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	configDir := filepath.Join(configHome, AppName)
	return &Paths{
		ConfigDir:    configDir,
		SettingsFile: filepath.Join(configDir, SettingsFileName),
	}, nil
}

// EnsurePaths creates the configuration directory.
func (p *Paths) EnsurePaths() error {
	if err := os.MkdirAll(p.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// Load reads the settings from disk. A missing file yields defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return settings, nil
}

// Save writes the settings to disk using atomic write (write to temp,
// then rename).
func Save(path string, settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Clean up temp file on failure
		return fmt.Errorf("failed to finalize settings file: %w", err)
	}

	return nil
}

// Manager provides high-level settings management.
// It is safe for concurrent use from multiple goroutines.
type Manager struct {
	paths    *Paths       // Immutable after construction
	settings Settings     // Protected by mu
	mu       sync.RWMutex // Protects settings only
}

// NewManager creates a settings manager. It ensures the configuration
// directory exists and loads the current settings.
func NewManager() (*Manager, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsurePaths(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	settings, err := Load(paths.SettingsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// Materialize the file on first run so it can be watched.
	if _, err := os.Stat(paths.SettingsFile); os.IsNotExist(err) {
		if err := Save(paths.SettingsFile, settings); err != nil {
			return nil, err
		}
	}

	return &Manager{
		paths:    paths,
		settings: settings,
	}, nil
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// SettingsFile returns the path of the settings file.
func (m *Manager) SettingsFile() string {
	return m.paths.SettingsFile
}

// Update atomically mutates the settings and saves them to disk.
func (m *Manager) Update(mutator func(s *Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := m.settings
	mutator(&updated)
	if err := Save(m.paths.SettingsFile, updated); err != nil {
		return err
	}
	m.settings = updated
	return nil
}
