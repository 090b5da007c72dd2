package codec

import (
	"strings"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

const xmlHeader = `<?xml version="1.0" encoding="utf-8"?>`

// Encode renders cfg as an Assigned Access configuration document.
// Output is deterministic: the same configuration always yields the same
// bytes. Encode never fails; incomplete fields fall back to placeholders.
func Encode(cfg *kiosk.Configuration) string {
	w := &xmlWriter{}
	w.line(xmlHeader)
	w.line("<" + RootElement)
	w.line(indentUnit + `xmlns="` + NSDefault + `"`)
	w.line(indentUnit + `xmlns:` + PrefixRS5 + `="` + NSRS5 + `"`)
	w.line(indentUnit + `xmlns:` + PrefixV3 + `="` + NSV3 + `"`)
	w.line(indentUnit + `xmlns:` + PrefixV4 + `="` + NSV4 + `"`)
	w.line(indentUnit + `xmlns:` + PrefixV5 + `="` + NSV5 + `">`)
	w.depth++

	profileID := profileIDOrZero(cfg.ProfileID)

	w.open("Profiles")
	w.open("Profile", attr{"Id", profileID})
	if cfg.Mode == kiosk.ModeSingle {
		encodeSingleApp(w, cfg.SingleApp)
	} else {
		encodeMultiApp(w, cfg)
	}
	w.close("Profile")
	w.close("Profiles")

	w.open("Configs")
	encodeAccount(w, cfg.Account, profileID)
	w.close("Configs")

	w.close(RootElement)
	return w.String()
}

func profileIDOrZero(id string) string {
	if strings.TrimSpace(id) == "" {
		return kiosk.ZeroProfileID
	}
	return id
}

func encodeSingleApp(w *xmlWriter, app kiosk.SingleApp) {
	switch app.Kind {
	case kiosk.AppEdge:
		w.empty("KioskModeApp",
			attr{PrefixV4 + ":ClassicAppPath", kiosk.EdgePath},
			attr{PrefixV4 + ":ClassicAppArguments", EdgeSettingsArgs(app.Edge)},
		)
	case kiosk.AppUWP:
		w.empty("KioskModeApp", attr{"AppUserModelId", app.AUMID})
	default:
		attrs := []attr{{PrefixV4 + ":ClassicAppPath", app.Path}}
		if app.Args != "" {
			attrs = append(attrs, attr{PrefixV4 + ":ClassicAppArguments", app.Args})
		}
		w.empty("KioskModeApp", attrs...)
	}

	if app.Breakout != nil {
		w.empty(PrefixV4+":BreakoutSequence", attr{"Key", app.Breakout.String()})
	}
}

func encodeMultiApp(w *xmlWriter, cfg *kiosk.Configuration) {
	w.open("AllAppsList")
	if len(cfg.AllowedApps) == 0 {
		w.empty("AllowedApps")
	} else {
		w.open("AllowedApps")
		for i, app := range cfg.AllowedApps {
			w.empty("App", appAttrs(cfg, i, app)...)
		}
		w.close("AllowedApps")
	}
	w.close("AllAppsList")

	encodeFileExplorer(w, cfg.FileExplorerAccess)

	if len(cfg.StartPins) > 0 {
		w.cdata(PrefixV5+":StartPins", PinsJSON(cfg.StartPins))
	}

	w.empty("Taskbar", attr{"ShowTaskbar", boolAttr(cfg.ShowTaskbar)})

	if taskbar := cfg.EffectiveTaskbarPins(); cfg.ShowTaskbar && len(taskbar) > 0 {
		w.cdataBlock(PrefixV5+":TaskbarLayout", TaskbarLayoutXML(taskbar))
	}
}

func appAttrs(cfg *kiosk.Configuration, index int, app kiosk.AllowedApp) []attr {
	var attrs []attr
	if app.Kind == kiosk.AppKindAUMID {
		attrs = append(attrs, attr{"AppUserModelId", app.Value})
	} else {
		attrs = append(attrs, attr{"DesktopAppPath", app.Value})
	}

	if cfg.AutoLaunch == nil || *cfg.AutoLaunch != index {
		return attrs
	}
	attrs = append(attrs, attr{PrefixRS5 + ":AutoLaunch", "true"})
	if args := autoLaunchArgs(cfg, app); args != "" {
		attrs = append(attrs, attr{PrefixRS5 + ":AutoLaunchArguments", args})
	}
	return attrs
}

func autoLaunchArgs(cfg *kiosk.Configuration, app kiosk.AllowedApp) string {
	if kiosk.IsEdgeApp(app.Value) {
		return EdgeSettingsArgs(cfg.AutoLaunchEdge)
	}
	if app.Kind == kiosk.AppKindPath {
		return strings.TrimSpace(cfg.AutoLaunchArgs)
	}
	return ""
}

func encodeFileExplorer(w *xmlWriter, access kiosk.FileExplorerAccess) {
	var downloads, removable, all bool
	switch access {
	case kiosk.ExplorerDownloads:
		downloads = true
	case kiosk.ExplorerRemovable:
		removable = true
	case kiosk.ExplorerDownloadsRemovable:
		downloads, removable = true, true
	case kiosk.ExplorerAll:
		all = true
	default:
		return
	}

	name := PrefixRS5 + ":FileExplorerNamespaceRestrictions"
	w.open(name)
	if downloads {
		w.empty(PrefixRS5+":AllowedNamespace", attr{"Name", "Downloads"})
	}
	if removable {
		w.empty(PrefixV3 + ":AllowRemovableDrives")
	}
	if all {
		w.empty(PrefixV3 + ":NoRestriction")
	}
	w.close(name)
}

func encodeAccount(w *xmlWriter, a kiosk.AccountBinding, profileID string) {
	if a.Kind == kiosk.AccountGlobal {
		w.empty(PrefixV3+":GlobalProfile", attr{"Id", profileID})
		return
	}

	w.open("Config")
	switch a.Kind {
	case kiosk.AccountExisting:
		w.text("Account", a.AccountName)
	case kiosk.AccountGroup:
		typ := a.GroupType
		if typ == "" {
			typ = kiosk.GroupLocal
		}
		w.empty("UserGroup", attr{"Type", string(typ)}, attr{"Name", a.GroupName})
	default:
		name := strings.TrimSpace(a.DisplayName)
		if name == "" {
			name = DefaultDisplayName
		}
		w.empty("AutoLogonAccount", attr{PrefixRS5 + ":DisplayName", name})
	}
	w.empty("DefaultProfile", attr{"Id", profileID})
	w.close("Config")
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
