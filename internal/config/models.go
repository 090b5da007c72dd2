package config

import (
	"path/filepath"
	"time"
)

const (
	settingsVersion = 1
	maxRecent       = 10

	DefaultHost = "127.0.0.1"
	DefaultPort = 8765
)

// Settings represents the user settings file.
// Nothing in it describes a kiosk; project files hold configurations.
type Settings struct {
	Version int           `yaml:"version"`
	Log     *LogPrefs     `yaml:"log,omitempty"`
	Presets *PresetPrefs  `yaml:"presets,omitempty"`
	Output  *OutputPrefs  `yaml:"output,omitempty"`
	Server  *ServerPrefs  `yaml:"server,omitempty"`
	Editor  *EditorPrefs  `yaml:"editor,omitempty"`
	Recent  []RecentEntry `yaml:"recent,omitempty"` // Most recently used first
}

// LogPrefs sets the default log level. Empty keeps logging silent.
type LogPrefs struct {
	Level string `yaml:"level,omitempty"`
}

// PresetPrefs says where preset tables are read from.
// Dir wins over BaseURL; with neither the built-in tables are used.
type PresetPrefs struct {
	Dir     string `yaml:"dir,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// OutputPrefs controls export bundles.
type OutputPrefs struct {
	Dir         string `yaml:"dir,omitempty"`
	Shortcuts   bool   `yaml:"shortcuts"`    // Also write CreateShortcuts_*.ps1
	StartLayout bool   `yaml:"start_layout"` // Also write StartLayout_*.xml
}

// ServerPrefs configures `kioskcfg serve`.
type ServerPrefs struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Advertise bool   `yaml:"advertise"` // Announce the editor over mDNS
}

// EditorPrefs are applied to configurations created with `kioskcfg new`.
type EditorPrefs struct {
	AutoPin bool `yaml:"auto_pin"`
}

// RecentEntry records a project file that was opened or saved.
type RecentEntry struct {
	Path     string    `yaml:"path"`
	Name     string    `yaml:"name,omitempty"`
	LastUsed time.Time `yaml:"last_used"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	s := &Settings{Version: settingsVersion}
	s.fillDefaults()
	return s
}

func (s *Settings) fillDefaults() {
	if s.Log == nil {
		s.Log = &LogPrefs{}
	}
	if s.Presets == nil {
		s.Presets = &PresetPrefs{}
	}
	if s.Output == nil {
		s.Output = &OutputPrefs{Dir: ".", Shortcuts: true}
	}
	if s.Server == nil {
		s.Server = &ServerPrefs{}
	}
	if s.Server.Host == "" {
		s.Server.Host = DefaultHost
	}
	if s.Server.Port == 0 {
		s.Server.Port = DefaultPort
	}
	if s.Editor == nil {
		s.Editor = &EditorPrefs{}
	}
}

// TouchRecent moves path to the front of the recent list, adding it if new,
// and trims the list to its maximum length.
func (s *Settings) TouchRecent(path, name string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	entry := RecentEntry{Path: path, Name: name, LastUsed: time.Now()}
	recent := []RecentEntry{entry}
	for _, r := range s.Recent {
		if r.Path != path {
			recent = append(recent, r)
		}
	}
	if len(recent) > maxRecent {
		recent = recent[:maxRecent]
	}
	s.Recent = recent
}

// GetRecent returns the recent entry for path, or nil.
func (s *Settings) GetRecent(path string) *RecentEntry {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	for i := range s.Recent {
		if s.Recent[i].Path == path {
			return &s.Recent[i]
		}
	}
	return nil
}
