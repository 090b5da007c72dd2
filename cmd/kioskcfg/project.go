package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/kioskcfg/internal/config"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/presets"
	"github.com/muurk/kioskcfg/internal/ui"
)

// project is the open project file and what the commands editing it share.
type project struct {
	path     string
	exists   bool
	store    *kiosk.Store
	settings *config.Settings
	printer  *ui.Printer
	catalog  *presets.Catalog
}

// openProject loads the --project file into a store. A missing file starts
// a new configuration that is created on the first save.
func openProject(cmd *cobra.Command) (*project, error) {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	p := &project{
		path:     projectPath,
		settings: loadSettings(),
		printer:  ui.NewPrinter(cmd.OutOrStdout()),
	}

	cfg, exists, err := config.LoadProject(p.path)
	if err != nil {
		p.printer.PrintError("Cannot open project", err, "Check the file or pass another one with --project")
		return nil, err
	}
	p.exists = exists
	p.store = kiosk.NewStore(cfg)

	logging.Debug("Opened project",
		zap.String("path", p.path),
		zap.Bool("exists", exists),
	)
	return p, nil
}

// loadSettings returns the user settings, or the defaults when the file
// cannot be read.
func loadSettings() *config.Settings {
	s, err := config.LoadSettings()
	if err != nil {
		logging.Warn("Ignoring settings file", zap.Error(err))
		return config.NewSettings()
	}
	return s
}

// Catalog loads the preset tables on first use. Tables that fail to load
// are logged and left out; the commands that need them report it.
func (p *project) Catalog(ctx context.Context) *presets.Catalog {
	if p.catalog != nil {
		return p.catalog
	}
	src := presets.Source{
		Dir:     p.settings.Presets.Dir,
		BaseURL: p.settings.Presets.BaseURL,
	}
	catalog, err := presets.Load(ctx, src)
	if err != nil {
		logging.Warn("Some preset tables could not be loaded",
			zap.String("source", src.String()),
			zap.Error(err),
		)
	}
	p.catalog = catalog
	return catalog
}

// Config returns a copy of the current configuration.
func (p *project) Config() *kiosk.Configuration {
	return p.store.Snapshot()
}

// Apply dispatches cmds in order and saves the project if all of them
// succeed. Nothing is written when one fails.
func (p *project) Apply(title string, cmds ...kiosk.Command) error {
	for _, c := range cmds {
		if err := p.store.Dispatch(c); err != nil {
			return p.Fail(title+" failed", err)
		}
	}
	if err := p.Save(); err != nil {
		return p.Fail("Cannot save project", err)
	}

	cfg := p.Config()
	details := []ui.Param{
		{Key: "Project", Value: p.path},
		{Key: "Configuration", Value: cfg.Summary()},
	}
	if problems := kiosk.Validate(cfg); len(problems) > 0 {
		details = append(details, ui.Param{
			Key:   "Problems",
			Value: fmt.Sprintf("%d (run 'kioskcfg validate')", len(problems)),
		})
	}
	p.printer.PrintSuccess(title, details...)
	return nil
}

// Save writes the project file and records it in the recent list.
func (p *project) Save() error {
	return p.SaveConfig(p.Config())
}

// SaveConfig writes cfg to the project file.
func (p *project) SaveConfig(cfg *kiosk.Configuration) error {
	if err := config.SaveProject(p.path, cfg); err != nil {
		return err
	}
	p.exists = true

	p.settings.TouchRecent(p.path, cfg.Name)
	if err := p.settings.Save(); err != nil {
		logging.Warn("Failed to update recent projects", zap.Error(err))
	}
	return nil
}

// Fail prints a failure box and returns err for the exit status.
func (p *project) Fail(title string, err error, hints ...string) error {
	p.printer.PrintError(title, err, hints...)
	return err
}

// resolveIndex turns a 1-based position or a name into an index. lookup
// finds names; n is the list length.
func resolveIndex(ref string, n int, lookup func(string) int) (int, error) {
	ref = strings.TrimSpace(ref)
	if pos, err := strconv.Atoi(ref); err == nil {
		if n == 0 {
			return -1, kiosk.NewNotFoundError("the list is empty")
		}
		if pos < 1 || pos > n {
			return -1, kiosk.NewNotFoundError(fmt.Sprintf("position %d is out of range (1-%d)", pos, n))
		}
		return pos - 1, nil
	}
	if i := lookup(ref); i >= 0 {
		return i, nil
	}
	return -1, kiosk.NewNotFoundError(fmt.Sprintf("%q not found", ref))
}

// parseOnOff reads the on/off argument of the toggle commands.
func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, kiosk.NewInputError("value", fmt.Sprintf("expected on or off, got %q", arg))
}
