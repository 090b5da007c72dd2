package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/version"
	"gopkg.in/yaml.v3"
)

const (
	projectVersion = 1

	// DefaultProjectFile is used when no --project flag is given.
	DefaultProjectFile = "kiosk.yaml"
)

// projectFile is the on-disk shape of a project.
type projectFile struct {
	Version       int                  `yaml:"version"`
	Generator     string               `yaml:"generator,omitempty"`
	Configuration *kiosk.Configuration `yaml:"configuration"`
}

// LoadProject reads a project file. The bool result is false when the file
// does not exist, in which case a new configuration is returned.
func LoadProject(path string) (*kiosk.Configuration, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kiosk.NewConfiguration(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read project file: %w", err)
	}

	cfg, err := ParseProject(data)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, true, nil
}

// ParseProject decodes project file contents.
func ParseProject(data []byte) (*kiosk.Configuration, error) {
	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, kiosk.NewParseError("Invalid project file", err)
	}
	if pf.Version != projectVersion {
		return nil, fmt.Errorf("unsupported project version: %d (expected %d)", pf.Version, projectVersion)
	}
	if pf.Configuration == nil {
		return nil, kiosk.NewParseError("Project file has no configuration", nil)
	}

	cfg := pf.Configuration
	if cfg.Mode == "" {
		cfg.Mode = kiosk.ModeSingle
	}
	if cfg.Account.Kind == "" {
		cfg.Account = kiosk.AutoLogon("")
	}
	if cfg.SingleApp.Kind == "" {
		cfg.SingleApp.Kind = kiosk.AppEdge
	}
	if cfg.SingleApp.Edge.Source == "" {
		cfg.SingleApp.Edge = kiosk.DefaultEdgeSettings()
	}
	if cfg.AutoLaunchEdge.Source == "" {
		cfg.AutoLaunchEdge = kiosk.DefaultEdgeSettings()
	}
	if cfg.FileExplorerAccess == "" {
		cfg.FileExplorerAccess = kiosk.ExplorerNone
	}
	return cfg, nil
}

// SaveProject writes cfg to path atomically, creating parent directories.
func SaveProject(path string, cfg *kiosk.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("no configuration to save")
	}

	fileMutex.Lock()
	defer fileMutex.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	data, err := yaml.Marshal(projectFile{
		Version:       projectVersion,
		Generator:     "kioskcfg " + version.Version,
		Configuration: cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	header := []byte("# kioskcfg project\n# Edit with `kioskcfg edit` or export with `kioskcfg export`.\n\n")
	return writeAtomic(path, append(header, data...), 0644)
}
