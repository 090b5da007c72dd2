package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/presets"
)

// FieldKind identifies a row of the editor's field list.
type FieldKind int

const (
	FieldName FieldKind = iota
	FieldMode
	FieldAccountKind
	FieldAccountValue
	FieldProfile

	// Single-app mode
	FieldAppKind
	FieldAppTarget
	FieldKioskType
	FieldBreakout

	// Multi-app and restricted modes
	FieldAllowedApp
	FieldAddApp
	FieldAutoLaunch
	FieldStartPin
	FieldAddPin
	FieldAutoPin
	FieldShowTaskbar
	FieldTaskbarSync
	FieldExplorer
)

// Field is one row of the field list.
type Field struct {
	Kind    FieldKind
	Section string
	Label   string
	Value   string
	Index   int // position in AllowedApps or StartPins
}

// Editable reports whether enter opens a text input for the field.
func (f Field) Editable() bool {
	switch f.Kind {
	case FieldName, FieldAccountValue, FieldProfile, FieldAppTarget, FieldAddApp, FieldAddPin:
		return true
	}
	return false
}

// BuildFields lists the rows shown for cfg. The rows depend on the mode.
func BuildFields(cfg *kiosk.Configuration) []Field {
	fields := []Field{
		{Kind: FieldName, Section: "General", Label: "Name", Value: orPlaceholder(cfg.Name, "(unnamed)")},
		{Kind: FieldMode, Section: "General", Label: "Kiosk type", Value: cfg.ModeLabel()},
		{Kind: FieldAccountKind, Section: "General", Label: "Account", Value: accountKindLabel(cfg.Account.Kind)},
	}
	if label, value, ok := accountValue(cfg.Account); ok {
		fields = append(fields, Field{Kind: FieldAccountValue, Section: "General", Label: label, Value: orPlaceholder(value, "(not set)")})
	}
	fields = append(fields, Field{Kind: FieldProfile, Section: "General", Label: "Profile GUID", Value: cfg.ProfileID})

	if cfg.Mode == kiosk.ModeSingle {
		return append(fields, singleAppFields(cfg.SingleApp)...)
	}
	return append(fields, multiAppFields(cfg)...)
}

func singleAppFields(app kiosk.SingleApp) []Field {
	const section = "Single app"
	fields := []Field{{Kind: FieldAppKind, Section: section, Label: "App type", Value: appKindLabel(app.Kind)}}

	switch app.Kind {
	case kiosk.AppEdge:
		label, target := "URL", app.Edge.URL
		if app.Edge.Source == kiosk.SourceFile {
			label, target = "File", app.Edge.FilePath
		}
		fields = append(fields,
			Field{Kind: FieldAppTarget, Section: section, Label: label, Value: orPlaceholder(target, "(not set)")},
			Field{Kind: FieldKioskType, Section: section, Label: "Edge kiosk type", Value: string(app.Edge.KioskType)},
		)
	case kiosk.AppUWP:
		fields = append(fields, Field{Kind: FieldAppTarget, Section: section, Label: "AUMID", Value: orPlaceholder(app.AUMID, "(not set)")})
	default:
		fields = append(fields, Field{Kind: FieldAppTarget, Section: section, Label: "Path", Value: orPlaceholder(app.Path, "(not set)")})
	}

	breakout := "Disabled"
	if app.Breakout != nil {
		breakout = app.Breakout.String()
	}
	return append(fields, Field{Kind: FieldBreakout, Section: section, Label: "Breakout", Value: breakout})
}

func multiAppFields(cfg *kiosk.Configuration) []Field {
	var fields []Field

	for i, app := range cfg.AllowedApps {
		value := kiosk.AppLabel(app.Value)
		if cfg.AutoLaunch != nil && *cfg.AutoLaunch == i {
			value += " (auto-launch)"
		}
		fields = append(fields, Field{Kind: FieldAllowedApp, Section: "Allowed apps", Label: fmt.Sprintf("%d.", i+1), Value: value, Index: i})
	}
	fields = append(fields,
		Field{Kind: FieldAddApp, Section: "Allowed apps", Label: "+", Value: "Add app or preset..."},
		Field{Kind: FieldAutoLaunch, Section: "Allowed apps", Label: "Auto-launch", Value: autoLaunchLabel(cfg)},
	)

	for i, pin := range cfg.StartPins {
		value := pin.Name
		if pin.AutoPinned {
			value += " (auto)"
		}
		fields = append(fields, Field{Kind: FieldStartPin, Section: "Start pins", Label: fmt.Sprintf("%d.", i+1), Value: value, Index: i})
	}
	fields = append(fields,
		Field{Kind: FieldAddPin, Section: "Start pins", Label: "+", Value: "Add pin preset..."},
		Field{Kind: FieldAutoPin, Section: "Start pins", Label: "Pin on add", Value: onOff(cfg.AutoPinAllowed)},
		Field{Kind: FieldShowTaskbar, Section: "Taskbar", Label: "Show taskbar", Value: onOff(cfg.ShowTaskbar)},
		Field{Kind: FieldTaskbarSync, Section: "Taskbar", Label: "Mirror Start pins", Value: onOff(cfg.TaskbarSyncStartPins)},
		Field{Kind: FieldExplorer, Section: "Taskbar", Label: "File Explorer", Value: string(cfg.FileExplorerAccess)},
	)
	return fields
}

// CycleCommand returns the command that advances a choice or toggles a
// switch, or nil when enter has no such meaning for the field.
func CycleCommand(f Field, cfg *kiosk.Configuration) kiosk.Command {
	switch f.Kind {
	case FieldMode:
		return kiosk.SetMode{Mode: next([]kiosk.Mode{kiosk.ModeSingle, kiosk.ModeMulti, kiosk.ModeRestricted}, cfg.Mode)}

	case FieldAccountKind:
		kinds := []kiosk.AccountKind{kiosk.AccountAuto, kiosk.AccountExisting}
		if cfg.Mode == kiosk.ModeRestricted {
			kinds = append(kinds, kiosk.AccountGroup, kiosk.AccountGlobal)
		}
		return kiosk.SetAccount{Account: kiosk.AccountBinding{Kind: next(kinds, cfg.Account.Kind)}}

	case FieldAppKind:
		app := cfg.SingleApp
		app.Kind = next([]kiosk.AppKind{kiosk.AppEdge, kiosk.AppUWP, kiosk.AppWin32}, app.Kind)
		return kiosk.SetSingleApp{App: app}

	case FieldKioskType:
		app := cfg.SingleApp
		app.Edge.KioskType = next([]kiosk.KioskType{kiosk.KioskFullscreen, kiosk.KioskPublicBrowsing}, app.Edge.KioskType)
		return kiosk.SetSingleApp{App: app}

	case FieldBreakout:
		if cfg.SingleApp.Breakout != nil {
			return kiosk.SetBreakout{}
		}
		return kiosk.SetBreakout{Sequence: &kiosk.BreakoutSequence{Ctrl: true, Alt: true, Key: "K"}}

	case FieldAllowedApp:
		if cfg.AutoLaunch != nil && *cfg.AutoLaunch == f.Index {
			return kiosk.SetAutoLaunch{}
		}
		return kiosk.SetAutoLaunch{Index: kiosk.IntPtr(f.Index)}

	case FieldAutoLaunch:
		candidates := []*int{nil}
		for i, app := range cfg.AllowedApps {
			if !kiosk.ShouldSkipAutoLaunch(app) {
				candidates = append(candidates, kiosk.IntPtr(i))
			}
		}
		current := slices.IndexFunc(candidates, func(c *int) bool {
			return (c == nil && cfg.AutoLaunch == nil) || (c != nil && cfg.AutoLaunch != nil && *c == *cfg.AutoLaunch)
		})
		return kiosk.SetAutoLaunch{Index: candidates[(current+1)%len(candidates)]}

	case FieldAutoPin:
		return kiosk.SetAutoPin{Enabled: !cfg.AutoPinAllowed}
	case FieldShowTaskbar:
		return kiosk.SetShowTaskbar{Show: !cfg.ShowTaskbar}
	case FieldTaskbarSync:
		return kiosk.SetTaskbarSync{Enabled: !cfg.TaskbarSyncStartPins}

	case FieldExplorer:
		return kiosk.SetFileExplorerAccess{Access: next([]kiosk.FileExplorerAccess{
			kiosk.ExplorerNone, kiosk.ExplorerDownloads, kiosk.ExplorerRemovable,
			kiosk.ExplorerDownloadsRemovable, kiosk.ExplorerAll,
		}, cfg.FileExplorerAccess)}
	}
	return nil
}

// TextCommand returns the command that stores text typed into an editable
// field. App and pin values matching a preset key use the preset.
func TextCommand(f Field, cfg *kiosk.Configuration, catalog *presets.Catalog, text string) (kiosk.Command, error) {
	text = strings.TrimSpace(text)

	switch f.Kind {
	case FieldName:
		return kiosk.SetName{Name: text}, nil

	case FieldAccountValue:
		a := cfg.Account
		switch a.Kind {
		case kiosk.AccountExisting:
			a.AccountName = text
		case kiosk.AccountGroup:
			a.GroupName = text
		default:
			a.DisplayName = text
		}
		return kiosk.SetAccount{Account: a}, nil

	case FieldProfile:
		return kiosk.SetProfileID{ID: text}, nil

	case FieldAppTarget:
		app := cfg.SingleApp
		switch app.Kind {
		case kiosk.AppEdge:
			if app.Edge.Source == kiosk.SourceFile {
				app.Edge.FilePath = text
			} else {
				app.Edge.URL = text
			}
		case kiosk.AppUWP:
			app.AUMID = text
		default:
			app.Path = text
		}
		return kiosk.SetSingleApp{App: app}, nil

	case FieldAddApp:
		if text == "" {
			return nil, kiosk.NewInputError("value", "app value is required")
		}
		if slices.Contains(catalog.AppKeys(), text) {
			return presets.AddCommonApp{Key: text}.With(catalog), nil
		}
		return presets.NewAddApp(kiosk.AllowedApp{Kind: kiosk.GuessAppKind(text), Value: text}, catalog), nil

	case FieldAddPin:
		return presets.AddCommonPin{Key: text}.With(catalog), nil
	}
	return nil, kiosk.NewInputError("field", fmt.Sprintf("%s cannot be edited as text", f.Label))
}

// InitialText is the text input's starting value for an editable field.
func InitialText(f Field, cfg *kiosk.Configuration) string {
	switch f.Kind {
	case FieldName:
		return cfg.Name
	case FieldProfile:
		return cfg.ProfileID
	case FieldAccountValue:
		_, value, _ := accountValue(cfg.Account)
		return value
	case FieldAppTarget:
		app := cfg.SingleApp
		switch app.Kind {
		case kiosk.AppEdge:
			if app.Edge.Source == kiosk.SourceFile {
				return app.Edge.FilePath
			}
			return app.Edge.URL
		case kiosk.AppUWP:
			return app.AUMID
		}
		return app.Path
	}
	return ""
}

// Suggestions lists completions offered while typing into f.
func Suggestions(f Field, catalog *presets.Catalog) []string {
	switch f.Kind {
	case FieldAddApp:
		return catalog.AppKeys()
	case FieldAddPin:
		return catalog.PinKeys()
	}
	return nil
}

// next returns the element after current, wrapping around. An unknown
// current value yields the first element.
func next[T comparable](values []T, current T) T {
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

func accountValue(a kiosk.AccountBinding) (label, value string, ok bool) {
	switch a.Kind {
	case kiosk.AccountAuto:
		return "Display name", a.DisplayName, true
	case kiosk.AccountExisting:
		return "Account name", a.AccountName, true
	case kiosk.AccountGroup:
		return "Group name", a.GroupName, true
	}
	return "", "", false
}

func accountKindLabel(k kiosk.AccountKind) string {
	switch k {
	case kiosk.AccountExisting:
		return "Existing account"
	case kiosk.AccountGroup:
		return "User group"
	case kiosk.AccountGlobal:
		return "All non-admin users"
	}
	return "Auto logon"
}

func appKindLabel(k kiosk.AppKind) string {
	switch k {
	case kiosk.AppUWP:
		return "UWP app"
	case kiosk.AppWin32:
		return "Win32 app"
	}
	return "Microsoft Edge"
}

func autoLaunchLabel(cfg *kiosk.Configuration) string {
	if app, ok := cfg.AutoLaunchApp(); ok {
		return kiosk.AppLabel(app.Value)
	}
	return "None (show Start menu)"
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
