// Package config manages kioskcfg's settings file and project files.
//
// The settings file holds defaults for the command line, editor and server
// (log level, preset source, export directory, listen address). It is stored
// in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/kioskcfg/settings.yaml or $HOME/.config/kioskcfg/settings.yaml
//   - macOS: $HOME/.config/kioskcfg/settings.yaml
//   - Windows: %LOCALAPPDATA%\kioskcfg\settings.yaml
//
// Project files are YAML documents holding one kiosk configuration. They
// live wherever the user puts them (kiosk.yaml in the working directory by
// default) and are what every CLI command reads and writes.
//
// # Usage Example
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, _, err := config.LoadProject("lobby.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Name = "Lobby"
//	if err := config.SaveProject("lobby.yaml", cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	settings.TouchRecent("lobby.yaml", cfg.Name)
//	_ = settings.Save()
//
// # Thread Safety
//
// The global settings use sync.Once for safe initialization across goroutines.
// File writes are serialized by a mutex and replace files atomically.
package config
