package presets

import (
	"fmt"
	"slices"
	"strings"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
)

// Browser pin keys that accept a BrowserMode.
var browserKeys = []string{"edge", "chrome", "firefox"}

// BrowserMode changes how a browser pin launches.
type BrowserMode string

const (
	BrowserNormal          BrowserMode = ""
	BrowserPrivate         BrowserMode = "private"
	BrowserKioskFullscreen BrowserMode = "kioskFullscreen"
	BrowserKioskPublic     BrowserMode = "kioskPublic"
)

// edgeDependencyKeys are added with Edge; everything but the first is a
// helper that is never pinned or auto-launched.
var edgeDependencyKeys = []string{"edge", "edgeProxy", "edgeAppId"}

func unavailable(table string) error {
	return kiosk.NewPresetError(fmt.Sprintf("%s presets are not available", table))
}

// AddApp adds an app to the allow list like kiosk.AddApp. When the app is
// Microsoft Edge its helper executables and packaged id are added too.
type AddApp struct {
	kiosk.AddApp
	catalog *Catalog
}

// NewAddApp returns an AddApp bound to catalog.
func NewAddApp(app kiosk.AllowedApp, catalog *Catalog) AddApp {
	return AddApp{AddApp: kiosk.AddApp{App: app}, catalog: catalog}
}

func (c AddApp) CommandName() string { return "addApp" }

func (c AddApp) Apply(cfg *kiosk.Configuration) error {
	if err := c.AddApp.Apply(cfg); err != nil {
		return err
	}
	if kiosk.IsEdgeApp(c.App.Value) {
		ensureEdgeDependencies(cfg, c.catalog)
	}
	return nil
}

func ensureEdgeDependencies(cfg *kiosk.Configuration, catalog *Catalog) {
	if catalog == nil || catalog.Apps == nil {
		return
	}
	for i, key := range edgeDependencyKeys {
		preset, ok := catalog.Apps.Apps[key]
		if !ok {
			continue
		}
		dependency := i > 0
		cfg.AddAllowedApp(preset.App(), kiosk.AddOptions{SkipAutoPin: dependency, SkipAutoLaunch: dependency})
	}
}

// AddCommonApp adds an app preset, or every member of a preset group.
// Apps that are already allowed are skipped.
type AddCommonApp struct {
	Key     string `json:"key"`
	catalog *Catalog
}

// With binds the command to a catalog.
func (c AddCommonApp) With(catalog *Catalog) AddCommonApp {
	c.catalog = catalog
	return c
}

func (c AddCommonApp) Apply(cfg *kiosk.Configuration) error {
	if c.catalog == nil || c.catalog.Apps == nil {
		return unavailable("App")
	}
	table := c.catalog.Apps

	keys, ok := table.Groups[c.Key]
	if !ok {
		if _, found := table.Apps[c.Key]; !found {
			return kiosk.NewNotFoundError(fmt.Sprintf("unknown app preset %q", c.Key))
		}
		keys = []string{c.Key}
	}

	for _, key := range keys {
		preset, ok := table.Apps[key]
		if !ok {
			continue
		}
		app := preset.App()
		cfg.AddAllowedApp(app, kiosk.AddOptions{})
		if kiosk.IsEdgeApp(app.Value) {
			ensureEdgeDependencies(cfg, c.catalog)
		}
	}
	return nil
}

// AddCommonPin adds a pin preset. Browser pins can be switched to a
// private window or a kiosk window for Source/URL/FilePath. A pin that
// launches through explorer.exe also allows explorer.exe.
type AddCommonPin struct {
	Key      string           `json:"key"`
	Mode     BrowserMode      `json:"mode,omitempty"`
	Source   kiosk.SourceKind `json:"source,omitempty"`
	URL      string           `json:"url,omitempty"`
	FilePath string           `json:"filePath,omitempty"`
	catalog  *Catalog
}

// With binds the command to a catalog.
func (c AddCommonPin) With(catalog *Catalog) AddCommonPin {
	c.catalog = catalog
	return c
}

func (c AddCommonPin) Apply(cfg *kiosk.Configuration) error {
	if c.catalog == nil || c.catalog.Pins == nil {
		return unavailable("Pin")
	}
	preset, ok := c.catalog.Pins.Pins[c.Key]
	if !ok {
		return kiosk.NewNotFoundError(fmt.Sprintf("unknown pin preset %q", c.Key))
	}
	pin := preset.Pin()

	if slices.Contains(browserKeys, c.Key) {
		switch c.Mode {
		case BrowserNormal:
		case BrowserPrivate:
			pin.Args = codec.PrivateBrowsingArgs(c.Key)
			pin.Kind = kiosk.PinDesktopAppLink
			pin.SystemShortcut = ""
		case BrowserKioskFullscreen, BrowserKioskPublic:
			launchURL := codec.BuildLaunchURL(c.Source, c.URL, c.FilePath, "")
			if launchURL == "" {
				return kiosk.NewInputError("url", "kiosk browser pins require a URL or local file path")
			}
			if c.Key == "edge" {
				kioskType := kiosk.KioskFullscreen
				if c.Mode == BrowserKioskPublic {
					kioskType = kiosk.KioskPublicBrowsing
				}
				pin.Args = codec.EdgeKioskArgs(launchURL, kioskType, 0)
			} else {
				pin.Args = codec.BrowserKioskArgs(c.Key, launchURL)
			}
			pin.Kind = kiosk.PinDesktopAppLink
			pin.SystemShortcut = ""
		default:
			return kiosk.NewInputError("mode", fmt.Sprintf("unknown browser mode %q", c.Mode))
		}
	}

	if err := cfg.AddStartPin(pin); err != nil {
		return err
	}

	if strings.Contains(strings.ToLower(pin.Target), "explorer.exe") {
		cfg.AddAllowedApp(kiosk.AllowedApp{Kind: kiosk.AppKindPath, Value: kiosk.ExplorerPath}, kiosk.AddOptions{SkipAutoPin: true})
	}
	return nil
}

// AddEdgeSecondaryTile pins a website as an Edge secondary tile.
type AddEdgeSecondaryTile struct {
	Name     string           `json:"name"`
	Source   kiosk.SourceKind `json:"source,omitempty"`
	URL      string           `json:"url,omitempty"`
	FilePath string           `json:"filePath,omitempty"`
	TileID   string           `json:"tileId,omitempty"`
}

func (c AddEdgeSecondaryTile) Apply(cfg *kiosk.Configuration) error {
	launchURL := codec.BuildLaunchURL(c.Source, c.URL, c.FilePath, "")
	if strings.TrimSpace(c.Name) == "" || launchURL == "" {
		return kiosk.NewInputError("name", "Edge tile name and URL or file path are required")
	}
	return cfg.AddStartPin(kiosk.Pin{
		Name:          c.Name,
		Kind:          kiosk.PinSecondaryTile,
		PackagedAppID: kiosk.EdgeAUMID,
		Args:          launchURL,
		TileID:        c.TileID,
	})
}

// ApplySingleAppPreset fills the single-app definition from a preset.
// The breakout sequence is kept.
type ApplySingleAppPreset struct {
	Key     string `json:"key"`
	catalog *Catalog
}

// With binds the command to a catalog.
func (c ApplySingleAppPreset) With(catalog *Catalog) ApplySingleAppPreset {
	c.catalog = catalog
	return c
}

func (c ApplySingleAppPreset) Apply(cfg *kiosk.Configuration) error {
	if c.catalog == nil || c.catalog.SingleApps == nil {
		return unavailable("Single-app")
	}
	preset, ok := c.catalog.SingleApps.Presets[c.Key]
	if !ok {
		return kiosk.NewNotFoundError(fmt.Sprintf("unknown single-app preset %q", c.Key))
	}

	app := cfg.SingleApp
	app.Kind = preset.AppType
	switch preset.AppType {
	case kiosk.AppEdge:
		app.Edge.Source = preset.SourceType
		if app.Edge.Source == "" {
			app.Edge.Source = kiosk.SourceURL
		}
		switch {
		case preset.URL != "":
			app.Edge.URL = preset.URL
		case app.Edge.URL == "":
			app.Edge.URL = kiosk.DefaultEdgeURL
		}
		app.Edge.KioskType = preset.KioskType
		if app.Edge.KioskType == "" {
			app.Edge.KioskType = kiosk.KioskFullscreen
		}
	case kiosk.AppUWP:
		app.AUMID = preset.AUMID
	default:
		app.Kind = kiosk.AppWin32
		app.Path = preset.Path
		app.Args = preset.Args
	}
	return kiosk.SetSingleApp{App: app}.Apply(cfg)
}

// RegisterCommands adds the preset commands to reg, bound to catalog. The
// plain addApp command is replaced by the Edge-aware AddApp.
func RegisterCommands(reg *kiosk.Registry, catalog *Catalog) {
	reg.Register("addApp", func() kiosk.Command { return &AddApp{catalog: catalog} })
	reg.Register("addCommonApp", func() kiosk.Command { return &AddCommonApp{catalog: catalog} })
	reg.Register("addCommonPin", func() kiosk.Command { return &AddCommonPin{catalog: catalog} })
	reg.Register("addEdgeSecondaryTile", func() kiosk.Command { return &AddEdgeSecondaryTile{} })
	reg.Register("applySingleAppPreset", func() kiosk.Command { return &ApplySingleAppPreset{catalog: catalog} })
	reg.Register("loadScenario", func() kiosk.Command { return &LoadScenario{catalog: catalog} })
}
