package presets

import (
	"fmt"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

// Scenario names a starting point for a new configuration.
type Scenario string

const (
	ScenarioBlank          Scenario = "blank"
	ScenarioEdgeFullscreen Scenario = "edgeFullscreen"
	ScenarioEdgePublic     Scenario = "edgePublic"
	ScenarioMultiApp       Scenario = "multiApp"
)

// Scenarios lists every scenario in menu order.
var Scenarios = []Scenario{ScenarioBlank, ScenarioEdgeFullscreen, ScenarioEdgePublic, ScenarioMultiApp}

// Description is a short menu label.
func (s Scenario) Description() string {
	switch s {
	case ScenarioBlank:
		return "Single-app Edge, nothing filled in"
	case ScenarioEdgeFullscreen:
		return "Edge fullscreen digital signage"
	case ScenarioEdgePublic:
		return "Edge public browsing"
	case ScenarioMultiApp:
		return "Multi-app with Edge, On-Screen Keyboard and Calculator"
	}
	return string(s)
}

// LoadScenario resets the configuration to a scenario. Lists, the
// auto-launch selection and the name are cleared and a new profile GUID
// is generated. Auto-pin and the exclusion list survive.
type LoadScenario struct {
	Name    Scenario `json:"name"`
	catalog *Catalog
}

// With binds the command to a catalog.
func (c LoadScenario) With(catalog *Catalog) LoadScenario {
	c.catalog = catalog
	return c
}

func (c LoadScenario) Apply(cfg *kiosk.Configuration) error {
	cfg.Name = ""
	cfg.AllowedApps = nil
	cfg.StartPins = nil
	cfg.TaskbarPins = nil
	cfg.AutoLaunch = nil
	cfg.AutoLaunchEdge = kiosk.DefaultEdgeSettings()
	cfg.AutoLaunchArgs = ""
	cfg.ProfileID = kiosk.NewProfileID()

	edge := func(displayName, url string, kioskType kiosk.KioskType) {
		cfg.Account = kiosk.AutoLogon(displayName)
		cfg.Mode = kiosk.ModeSingle
		cfg.SingleApp = kiosk.SingleApp{
			Kind: kiosk.AppEdge,
			Edge: kiosk.EdgeSettings{Source: kiosk.SourceURL, URL: url, KioskType: kioskType},
		}
	}

	switch c.Name {
	case ScenarioBlank:
		edge("", "", kiosk.KioskFullscreen)
	case ScenarioEdgeFullscreen:
		edge("Kiosk", kiosk.DefaultEdgeURL, kiosk.KioskFullscreen)
	case ScenarioEdgePublic:
		edge("Public Browsing", "https://www.bing.com", kiosk.KioskPublicBrowsing)
	case ScenarioMultiApp:
		cfg.Account = kiosk.AutoLogon("Multi-App Kiosk")
		cfg.Mode = kiosk.ModeMulti
		for _, key := range []string{"edge", "osk", "calculator"} {
			if err := (AddCommonApp{Key: key, catalog: c.catalog}).Apply(cfg); err != nil {
				return err
			}
		}
		cfg.ShowTaskbar = true
		cfg.FileExplorerAccess = kiosk.ExplorerDownloads
		if cfg.AutoPinAllowed {
			cfg.SyncAutoPins()
		}
	default:
		return kiosk.NewNotFoundError(fmt.Sprintf("unknown scenario %q", c.Name))
	}
	return nil
}
