package codec

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
)

// Result is the outcome of decoding a configuration document.
type Result struct {
	Config *kiosk.Configuration
	// Warnings lists parts of the document that could not be fully
	// recovered, such as shortcut pins whose target path is unknown.
	Warnings []string
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Decode parses an Assigned Access configuration document. Multi-app
// documents decode to ModeMulti.
func Decode(text string) (*Result, error) {
	return DecodeAs(text, "")
}

// DecodeAs is Decode with the mode to use for multi-app documents. An
// empty or single mode is ignored.
func DecodeAs(text string, assume kiosk.Mode) (*Result, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, kiosk.NewParseError("Invalid XML document", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != RootElement {
		return nil, kiosk.NewParseError("Only AssignedAccess configuration XML files are supported.", nil)
	}

	res := &Result{Config: kiosk.NewConfiguration()}
	cfg := res.Config

	profile := firstDescendant(root, "Profile")
	var profileID string
	if profile != nil {
		profileID = strings.TrimSpace(profile.SelectAttrValue("Id", ""))
	}

	multi := false
	if profile == nil {
		res.warn("document has no profile")
	} else if allApps := child(profile, "AllAppsList"); allApps != nil {
		multi = true
		decodeMultiApp(res, profile, allApps)
	} else {
		cfg.Mode = kiosk.ModeSingle
		decodeSingleApp(res, profile)
	}

	if configs := child(root, "Configs"); configs != nil {
		if id := decodeAccount(res, configs); profileID == "" {
			profileID = id
		}
	} else {
		res.warn("document has no account configuration")
	}

	// Multi-app and restricted documents look the same, so the mode is
	// whatever the caller assumed. Accounts are kept as written; Validate
	// reports one that the mode cannot use.
	if multi {
		cfg.Mode = kiosk.ModeMulti
		if assume.IsMultiApp() {
			cfg.Mode = assume
		}
	}
	if cfg.Account.RestrictedOnly() && cfg.Mode != kiosk.ModeRestricted {
		res.warn("%s requires restricted mode", cfg.AccountLabel())
	}

	if profileID != "" {
		cfg.ProfileID = profileID
	} else {
		res.warn("profile Id missing; a new one was generated")
	}

	return res, nil
}

func decodeSingleApp(res *Result, profile *etree.Element) {
	cfg := res.Config
	app := child(profile, "KioskModeApp")
	if app == nil {
		res.warn("profile has neither KioskModeApp nor AllAppsList")
		return
	}

	aumid, _ := lookupAttr(app, "", "", "AppUserModelId")
	classicPath, _ := lookupAttr(app, NSV4, PrefixV4, "ClassicAppPath")
	args, _ := lookupAttr(app, NSV4, PrefixV4, "ClassicAppArguments")

	switch {
	case isEdgeKiosk(aumid, classicPath, args):
		settings, ok := ParseEdgeArgs(args)
		if !ok {
			res.warn("Edge kiosk has no --kiosk URL")
		}
		cfg.SingleApp = kiosk.SingleApp{Kind: kiosk.AppEdge, Edge: settings}
	case aumid != "":
		cfg.SingleApp = kiosk.SingleApp{Kind: kiosk.AppUWP, Edge: kiosk.DefaultEdgeSettings(), AUMID: aumid}
	default:
		cfg.SingleApp = kiosk.SingleApp{
			Kind: kiosk.AppWin32,
			Edge: kiosk.DefaultEdgeSettings(),
			Path: classicPath,
			Args: args,
		}
	}

	if el := child(profile, "BreakoutSequence"); el != nil {
		cfg.SingleApp.Breakout = ParseBreakout(el.SelectAttrValue("Key", ""))
	}
}

// isEdgeKiosk matches the Edge sentinel, any AUMID mentioning Edge, and
// the Edge executable when it is started with --kiosk.
func isEdgeKiosk(aumid, classicPath, args string) bool {
	if aumid != "" {
		return aumid == kiosk.EdgeSentinel || strings.Contains(aumid, "Edge")
	}
	return kiosk.IsEdgeApp(classicPath) && kioskURLPattern.MatchString(args)
}

// ParseBreakout reads a key combination such as "Ctrl+Alt+K". The last
// token is the key; modifiers are detected anywhere before it, in any order.
func ParseBreakout(key string) *kiosk.BreakoutSequence {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	tokens := strings.Split(key, "+")
	mods := strings.ToLower(strings.Join(tokens[:len(tokens)-1], "+"))
	return &kiosk.BreakoutSequence{
		Ctrl:  strings.Contains(mods, "ctrl"),
		Alt:   strings.Contains(mods, "alt"),
		Shift: strings.Contains(mods, "shift"),
		Key:   strings.ToUpper(strings.TrimSpace(tokens[len(tokens)-1])),
	}
}

func decodeMultiApp(res *Result, profile, allApps *etree.Element) {
	cfg := res.Config

	if list := child(allApps, "AllowedApps"); list != nil {
		for _, el := range children(list, "App") {
			app := kiosk.AllowedApp{Kind: kiosk.AppKindPath}
			if v, ok := lookupAttr(el, "", "", "AppUserModelId"); ok && v != "" {
				app = kiosk.AllowedApp{Kind: kiosk.AppKindAUMID, Value: v}
			} else {
				app.Value, _ = lookupAttr(el, "", "", "DesktopAppPath")
			}
			app.Value = strings.TrimSpace(app.Value)
			if app.Value == "" {
				res.warn("skipped an allowed app without AppUserModelId or DesktopAppPath")
				continue
			}
			if cfg.IndexOfApp(app.Value) >= 0 {
				res.warn("skipped duplicate allowed app %s", app.Value)
				continue
			}
			cfg.AllowedApps = append(cfg.AllowedApps, app)

			auto, _ := lookupAttr(el, NSRS5, PrefixRS5, "AutoLaunch")
			if !strings.EqualFold(strings.TrimSpace(auto), "true") {
				continue
			}
			// The last marked app wins.
			if cfg.AutoLaunch != nil {
				res.warn("%s is no longer auto-launched; %s is marked later", cfg.AllowedApps[*cfg.AutoLaunch].Value, app.Value)
				cfg.AutoLaunchEdge = kiosk.DefaultEdgeSettings()
				cfg.AutoLaunchArgs = ""
			}
			cfg.AutoLaunch = kiosk.IntPtr(len(cfg.AllowedApps) - 1)
			args, _ := lookupAttr(el, NSRS5, PrefixRS5, "AutoLaunchArguments")
			if kiosk.IsEdgeApp(app.Value) {
				if settings, ok := ParseEdgeArgs(args); ok {
					cfg.AutoLaunchEdge = settings
				}
			} else {
				cfg.AutoLaunchArgs = args
			}
		}
	}

	cfg.FileExplorerAccess = decodeFileExplorer(child(profile, "FileExplorerNamespaceRestrictions"))

	if el := child(profile, "StartPins"); el != nil {
		pins, warnings, err := ParsePinsJSON(charData(el))
		if err != nil {
			logging.Warn("Failed to parse start pins", zap.Error(err))
			res.warn("start pins could not be read: %v", err)
		} else {
			cfg.StartPins = pins
			res.Warnings = append(res.Warnings, warnings...)
		}
	}

	if el := child(profile, "Taskbar"); el != nil {
		cfg.ShowTaskbar = strings.EqualFold(el.SelectAttrValue("ShowTaskbar", ""), "true")
	}

	if el := child(profile, "TaskbarLayout"); el != nil {
		pins, err := ParseTaskbarLayout(charData(el))
		if err != nil {
			logging.Warn("Failed to parse taskbar layout", zap.Error(err))
			res.warn("taskbar layout could not be read: %v", err)
			return
		}
		if len(pins) > 0 && sameTaskbarPins(pins, cfg.StartPins) {
			cfg.TaskbarSyncStartPins = true
			pins = nil
		}
		cfg.TaskbarPins = pins
	}
}

// sameTaskbarPins reports whether the taskbar holds exactly the Start pins
// that sync would mirror.
func sameTaskbarPins(taskbar, start []kiosk.Pin) bool {
	mirror := (&kiosk.Configuration{StartPins: start, TaskbarSyncStartPins: true}).EffectiveTaskbarPins()
	if len(mirror) != len(taskbar) {
		return false
	}
	for i := range mirror {
		if pinKey(mirror[i]) != pinKey(taskbar[i]) {
			return false
		}
	}
	return true
}

func pinKey(p kiosk.Pin) string {
	if p.Kind == kiosk.PinPackagedAppID {
		return "uwa:" + strings.ToLower(p.PackagedAppID)
	}
	return "lnk:" + strings.ToLower(ShortcutPath(p))
}

func decodeFileExplorer(el *etree.Element) kiosk.FileExplorerAccess {
	if el == nil {
		return kiosk.ExplorerNone
	}
	var downloads bool
	for _, ns := range children(el, "AllowedNamespace") {
		if strings.EqualFold(ns.SelectAttrValue("Name", ""), "Downloads") {
			downloads = true
		}
	}
	removable := child(el, "AllowRemovableDrives") != nil

	switch {
	case child(el, "NoRestriction") != nil:
		return kiosk.ExplorerAll
	case downloads && removable:
		return kiosk.ExplorerDownloadsRemovable
	case downloads:
		return kiosk.ExplorerDownloads
	case removable:
		return kiosk.ExplorerRemovable
	}
	return kiosk.ExplorerNone
}

// decodeAccount sets the account binding and returns the profile id the
// account refers to.
func decodeAccount(res *Result, configs *etree.Element) string {
	cfg := res.Config

	if global := child(configs, "GlobalProfile"); global != nil {
		cfg.Account = kiosk.GlobalProfile()
		return strings.TrimSpace(global.SelectAttrValue("Id", ""))
	}

	config := child(configs, "Config")
	if config == nil {
		res.warn("document has no account configuration")
		return ""
	}

	switch {
	case child(config, "AutoLogonAccount") != nil:
		name, _ := lookupAttr(child(config, "AutoLogonAccount"), NSRS5, PrefixRS5, "DisplayName")
		cfg.Account = kiosk.AutoLogon(strings.TrimSpace(name))
	case child(config, "Account") != nil:
		cfg.Account = kiosk.ExistingAccount(strings.TrimSpace(child(config, "Account").Text()))
	case child(config, "UserGroup") != nil:
		group := child(config, "UserGroup")
		cfg.Account = kiosk.UserGroup(
			kiosk.GroupType(strings.TrimSpace(group.SelectAttrValue("Type", ""))),
			strings.TrimSpace(group.SelectAttrValue("Name", "")),
		)
	default:
		res.warn("account configuration has no account; using auto logon")
	}

	if def := child(config, "DefaultProfile"); def != nil {
		return strings.TrimSpace(def.SelectAttrValue("Id", ""))
	}
	return ""
}

// lookupAttr finds a schema-versioned attribute. It tries, in order, an
// attribute whose prefix is bound to nsURI, an attribute with the literal
// conventional prefix, and finally the unqualified name.
func lookupAttr(el *etree.Element, nsURI, prefix, local string) (string, bool) {
	if el == nil {
		return "", false
	}
	if nsURI != "" {
		for _, a := range el.Attr {
			if a.Space != "" && a.Space != "xmlns" && a.Key == local && resolvePrefix(el, a.Space) == nsURI {
				return a.Value, true
			}
		}
	}
	if prefix != "" {
		for _, a := range el.Attr {
			if a.Space == prefix && a.Key == local {
				return a.Value, true
			}
		}
	}
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == local {
			return a.Value, true
		}
	}
	return "", false
}

// resolvePrefix returns the namespace URI bound to prefix in scope at el.
func resolvePrefix(el *etree.Element, prefix string) string {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

// child returns the first child element of el with the given local name,
// whatever its prefix.
func child(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			return c
		}
	}
	return nil
}

func children(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == local {
			out = append(out, c)
		}
	}
	return out
}

func firstDescendant(el *etree.Element, local string) *etree.Element {
	if all := findAll(el, local); len(all) > 0 {
		return all[0]
	}
	return nil
}

// charData joins the text and CDATA content directly inside el.
func charData(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}
