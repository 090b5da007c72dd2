package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// useTempConfigDir points the config directory at a temporary directory.
func useTempConfigDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("config directory override uses XDG_CONFIG_HOME")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, appName)
}

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "kioskcfg") {
		t.Errorf("GetConfigDir() = %v, should contain 'kioskcfg'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	expected := useTempConfigDir(t)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}

	path, err := GetSettingsPath()
	if err != nil {
		t.Fatalf("GetSettingsPath() error = %v", err)
	}
	if filepath.Base(path) != "settings.yaml" {
		t.Errorf("GetSettingsPath() should end with 'settings.yaml', got: %v", path)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Version != 1 {
		t.Errorf("Version = %v, want 1", s.Version)
	}
	if s.Server.Host != DefaultHost || s.Server.Port != DefaultPort {
		t.Errorf("Expected %s:%d, got %s:%d", DefaultHost, DefaultPort, s.Server.Host, s.Server.Port)
	}
	if s.Server.Advertise {
		t.Error("Expected mDNS advertisement off by default")
	}
	if s.Output.Dir != "." || !s.Output.Shortcuts || s.Output.StartLayout {
		t.Errorf("Unexpected output defaults: %+v", s.Output)
	}
	if s.Log.Level != "" {
		t.Errorf("Expected silent logging by default, got %q", s.Log.Level)
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	useTempConfigDir(t)

	s, err := ReloadSettings()
	if err != nil {
		t.Fatalf("ReloadSettings() error = %v", err)
	}
	if s.Server.Port != DefaultPort {
		t.Errorf("Expected default settings, got %+v", s.Server)
	}
}

func TestSettings_SaveAndReload(t *testing.T) {
	dir := useTempConfigDir(t)

	s := NewSettings()
	s.Log.Level = "debug"
	s.Presets.BaseURL = "https://presets.example.com/v1"
	s.Server.Port = 9000
	s.Server.Advertise = true
	s.Editor.AutoPin = true
	s.TouchRecent(filepath.Join(dir, "lobby.yaml"), "Lobby")

	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(dir, settingsFile)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should be renamed away")
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# kioskcfg settings") {
		t.Errorf("Expected header comment, got:\n%s", data)
	}

	loaded, err := ReloadSettings()
	if err != nil {
		t.Fatalf("ReloadSettings() error = %v", err)
	}
	if loaded.Log.Level != "debug" || loaded.Presets.BaseURL != s.Presets.BaseURL {
		t.Errorf("Log/presets not preserved: %+v %+v", loaded.Log, loaded.Presets)
	}
	if loaded.Server.Port != 9000 || !loaded.Server.Advertise || loaded.Server.Host != DefaultHost {
		t.Errorf("Server not preserved: %+v", loaded.Server)
	}
	if !loaded.Editor.AutoPin {
		t.Error("Editor auto-pin not preserved")
	}
	if len(loaded.Recent) != 1 || loaded.Recent[0].Name != "Lobby" {
		t.Errorf("Recent not preserved: %+v", loaded.Recent)
	}

	again, _ := LoadSettings()
	if again != loaded {
		t.Error("LoadSettings() should return the cached instance")
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "version: [", "failed to parse"},
		{"wrong version", "version: 7\n", "unsupported settings version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := useTempConfigDir(t)
			if err := os.MkdirAll(dir, 0700); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, settingsFile), []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := ReloadSettings()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadSettings_PartialFileGetsDefaults(t *testing.T) {
	dir := useTempConfigDir(t)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	content := "version: 1\nserver:\n  advertise: true\n"
	if err := os.WriteFile(filepath.Join(dir, settingsFile), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := ReloadSettings()
	if err != nil {
		t.Fatalf("ReloadSettings() error = %v", err)
	}
	if !s.Server.Advertise || s.Server.Port != DefaultPort || s.Server.Host != DefaultHost {
		t.Errorf("Expected defaults filled in, got %+v", s.Server)
	}
	if s.Output == nil || s.Presets == nil || s.Editor == nil || s.Log == nil {
		t.Error("Expected every section to be present")
	}
}

func TestTouchRecent(t *testing.T) {
	s := NewSettings()
	dir := t.TempDir()

	for i := 0; i < maxRecent+3; i++ {
		s.TouchRecent(filepath.Join(dir, string(rune('a'+i))+".yaml"), "")
	}
	if len(s.Recent) != maxRecent {
		t.Fatalf("Expected %d entries, got %d", maxRecent, len(s.Recent))
	}

	first := filepath.Join(dir, "f.yaml")
	s.TouchRecent(first, "Front")
	if s.Recent[0].Path != first || s.Recent[0].Name != "Front" {
		t.Errorf("Expected %s first, got %+v", first, s.Recent[0])
	}
	if len(s.Recent) != maxRecent {
		t.Errorf("Touching an existing entry should not grow the list, got %d", len(s.Recent))
	}

	if entry := s.GetRecent(first); entry == nil || entry.Name != "Front" {
		t.Errorf("GetRecent() = %+v", entry)
	}
	if s.GetRecent(filepath.Join(dir, "zzz.yaml")) != nil {
		t.Error("Expected nil for an unknown path")
	}
}
