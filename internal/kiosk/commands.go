package kiosk

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AddApp adds an app to the allow list. Adding a value that is already
// allowed is rejected with a duplicate error and changes nothing.
type AddApp struct {
	App            AllowedApp `json:"app"`
	SkipAutoPin    bool       `json:"skipAutoPin,omitempty"`
	SkipAutoLaunch bool       `json:"skipAutoLaunch,omitempty"`
}

func (c AddApp) Apply(cfg *Configuration) error {
	if strings.TrimSpace(c.App.Value) == "" {
		return NewInputError("value", "app value is required")
	}
	if !cfg.AddAllowedApp(c.App, AddOptions{SkipAutoPin: c.SkipAutoPin, SkipAutoLaunch: c.SkipAutoLaunch}) {
		return NewDuplicateError(fmt.Sprintf("%s is already allowed", c.App.Value))
	}
	return nil
}

// RemoveApp removes the allowed app at Index.
type RemoveApp struct {
	Index int `json:"index"`
}

func (c RemoveApp) Apply(cfg *Configuration) error { return cfg.RemoveAllowedApp(c.Index) }

// SetAutoLaunch selects the allowed app that starts automatically. A nil
// Index shows the Start menu instead.
type SetAutoLaunch struct {
	Index *int `json:"index"`
}

func (c SetAutoLaunch) Apply(cfg *Configuration) error { return cfg.SetAutoLaunch(c.Index) }

// SetAutoLaunchEdge sets the URL Edge opens when it is the auto-launch app.
type SetAutoLaunchEdge struct {
	Settings EdgeSettings `json:"settings"`
}

func (c SetAutoLaunchEdge) Apply(cfg *Configuration) error {
	s, err := cleanEdgeSettings(c.Settings)
	if err != nil {
		return err
	}
	cfg.AutoLaunchEdge = s
	return nil
}

// SetAutoLaunchArgs sets the arguments of a non-Edge auto-launch app.
type SetAutoLaunchArgs struct {
	Args string `json:"args"`
}

func (c SetAutoLaunchArgs) Apply(cfg *Configuration) error {
	cfg.AutoLaunchArgs = strings.TrimSpace(c.Args)
	return nil
}

// AddPin adds a user-authored Start pin.
type AddPin struct {
	Pin Pin `json:"pin"`
}

func (c AddPin) Apply(cfg *Configuration) error { return cfg.AddStartPin(c.Pin) }

// EditPin replaces the fields of the Start pin at Index.
type EditPin struct {
	Index int `json:"index"`
	Pin   Pin `json:"pin"`
}

func (c EditPin) Apply(cfg *Configuration) error { return cfg.EditStartPin(c.Index, c.Pin) }

// RemovePin removes the Start pin at Index.
type RemovePin struct {
	Index int `json:"index"`
}

func (c RemovePin) Apply(cfg *Configuration) error { return cfg.RemoveStartPin(c.Index) }

// MovePin moves the Start pin at Index by Delta.
type MovePin struct {
	Index int `json:"index"`
	Delta int `json:"delta"`
}

func (c MovePin) Apply(cfg *Configuration) error { return cfg.MoveStartPin(c.Index, c.Delta) }

// SyncAutoPins recomputes the pins derived from the allow list.
type SyncAutoPins struct{}

func (SyncAutoPins) Apply(cfg *Configuration) error {
	cfg.SyncAutoPins()
	return nil
}

// SetAutoPin turns pin-on-add on or off and resynchronises.
type SetAutoPin struct {
	Enabled bool `json:"enabled"`
}

func (c SetAutoPin) Apply(cfg *Configuration) error {
	cfg.AutoPinAllowed = c.Enabled
	cfg.SyncAutoPins()
	return nil
}

// SetTaskbarSync turns taskbar mirroring of Start pins on or off.
type SetTaskbarSync struct {
	Enabled bool `json:"enabled"`
}

func (c SetTaskbarSync) Apply(cfg *Configuration) error {
	cfg.SetTaskbarSync(c.Enabled)
	return nil
}

// AddTaskbarPin adds an independent taskbar pin.
type AddTaskbarPin struct {
	Pin Pin `json:"pin"`
}

func (c AddTaskbarPin) Apply(cfg *Configuration) error { return cfg.AddTaskbarPin(c.Pin) }

// EditTaskbarPin replaces the taskbar pin at Index.
type EditTaskbarPin struct {
	Index int `json:"index"`
	Pin   Pin `json:"pin"`
}

func (c EditTaskbarPin) Apply(cfg *Configuration) error { return cfg.EditTaskbarPin(c.Index, c.Pin) }

// RemoveTaskbarPin removes the taskbar pin at Index.
type RemoveTaskbarPin struct {
	Index int `json:"index"`
}

func (c RemoveTaskbarPin) Apply(cfg *Configuration) error { return cfg.RemoveTaskbarPin(c.Index) }

// MoveTaskbarPin moves the taskbar pin at Index by Delta.
type MoveTaskbarPin struct {
	Index int `json:"index"`
	Delta int `json:"delta"`
}

func (c MoveTaskbarPin) Apply(cfg *Configuration) error {
	return cfg.MoveTaskbarPin(c.Index, c.Delta)
}

// SetMode switches between single, multi and restricted.
type SetMode struct {
	Mode Mode `json:"mode"`
}

func (c SetMode) Apply(cfg *Configuration) error { return cfg.SetMode(c.Mode) }

// SetAccount replaces the account binding.
type SetAccount struct {
	Account AccountBinding `json:"account"`
}

func (c SetAccount) Apply(cfg *Configuration) error {
	a := c.Account
	a.DisplayName = strings.TrimSpace(a.DisplayName)
	a.AccountName = strings.TrimSpace(a.AccountName)
	a.GroupName = strings.TrimSpace(a.GroupName)

	switch a.Kind {
	case AccountAuto:
		a = AutoLogon(a.DisplayName)
	case AccountExisting:
		a = ExistingAccount(a.AccountName)
	case AccountGroup:
		if a.GroupType != "" && !a.GroupType.Valid() {
			return NewInputError("groupType", fmt.Sprintf("unknown group type %q", a.GroupType))
		}
		a = UserGroup(a.GroupType, a.GroupName)
	case AccountGlobal:
		a = GlobalProfile()
	default:
		return NewInputError("kind", fmt.Sprintf("unknown account type %q", a.Kind))
	}

	if a.RestrictedOnly() && cfg.Mode != ModeRestricted {
		return NewInputError("kind", "group and global accounts require restricted mode")
	}
	cfg.Account = a
	return nil
}

// SetProfileID sets the profile GUID. Bare GUIDs get braces added.
type SetProfileID struct {
	ID string `json:"id"`
}

func (c SetProfileID) Apply(cfg *Configuration) error {
	cfg.ProfileID = NormalizeProfileID(c.ID)
	return nil
}

// RegenerateProfileID assigns a fresh random profile GUID.
type RegenerateProfileID struct{}

func (RegenerateProfileID) Apply(cfg *Configuration) error {
	cfg.ProfileID = NewProfileID()
	return nil
}

// SetName sets the configuration name used for export file names.
type SetName struct {
	Name string `json:"name"`
}

func (c SetName) Apply(cfg *Configuration) error {
	cfg.Name = strings.TrimSpace(c.Name)
	return nil
}

// SetSingleApp replaces the single-app definition. The breakout sequence
// is kept unless ReplaceBreakout is set.
type SetSingleApp struct {
	App             SingleApp `json:"app"`
	ReplaceBreakout bool      `json:"replaceBreakout,omitempty"`
}

func (c SetSingleApp) Apply(cfg *Configuration) error {
	app := c.App
	switch app.Kind {
	case AppEdge, AppUWP, AppWin32:
	default:
		return NewInputError("kind", fmt.Sprintf("unknown app type %q", app.Kind))
	}
	edge, err := cleanEdgeSettings(app.Edge)
	if err != nil {
		return err
	}
	app.Edge = edge
	app.AUMID = strings.TrimSpace(app.AUMID)
	app.Path = strings.TrimSpace(app.Path)
	app.Args = strings.TrimSpace(app.Args)
	if !c.ReplaceBreakout {
		app.Breakout = cfg.SingleApp.Breakout
	}
	cfg.SingleApp = app
	return nil
}

// SetBreakout enables the breakout sequence, or disables it when Sequence is nil.
type SetBreakout struct {
	Sequence *BreakoutSequence `json:"sequence"`
}

func (c SetBreakout) Apply(cfg *Configuration) error {
	if c.Sequence == nil {
		cfg.SingleApp.Breakout = nil
		return nil
	}
	seq := *c.Sequence
	seq.Key = strings.ToUpper(strings.TrimSpace(seq.Key))
	if seq.Key == "" {
		return NewInputError("key", "breakout key is required")
	}
	cfg.SingleApp.Breakout = &seq
	return nil
}

// SetFileExplorerAccess sets which namespaces File Explorer may open.
type SetFileExplorerAccess struct {
	Access FileExplorerAccess `json:"access"`
}

func (c SetFileExplorerAccess) Apply(cfg *Configuration) error {
	if !c.Access.Valid() {
		return NewInputError("fileExplorerAccess", fmt.Sprintf("unknown access level %q", c.Access))
	}
	cfg.FileExplorerAccess = c.Access
	return nil
}

// SetShowTaskbar shows or hides the taskbar.
type SetShowTaskbar struct {
	Show bool `json:"show"`
}

func (c SetShowTaskbar) Apply(cfg *Configuration) error {
	cfg.ShowTaskbar = c.Show
	return nil
}

// Replace swaps in a whole configuration (imports and preset scenarios).
type Replace struct {
	Config *Configuration `json:"config"`
}

func (c Replace) Apply(cfg *Configuration) error {
	if c.Config == nil {
		return NewInputError("config", "configuration is required")
	}
	*cfg = *c.Config.Clone()
	return nil
}

func cleanEdgeSettings(s EdgeSettings) (EdgeSettings, error) {
	if s.Source == "" {
		s.Source = SourceURL
	}
	if s.KioskType == "" {
		s.KioskType = KioskFullscreen
	}
	if s.Source != SourceURL && s.Source != SourceFile {
		return s, NewInputError("source", fmt.Sprintf("unknown Edge source %q", s.Source))
	}
	if s.KioskType != KioskFullscreen && s.KioskType != KioskPublicBrowsing {
		return s, NewInputError("kioskType", fmt.Sprintf("unknown kiosk type %q", s.KioskType))
	}
	if s.IdleTimeoutMinutes < 0 {
		return s, NewInputError("idleTimeoutMinutes", "idle timeout cannot be negative")
	}
	s.URL = strings.TrimSpace(s.URL)
	s.FilePath = strings.TrimSpace(s.FilePath)
	return s, nil
}

// Named is implemented by commands that report their own name.
type Named interface {
	CommandName() string
}

// CommandName returns the name used for cmd in logs and JSON envelopes.
func CommandName(cmd Command) string {
	if n, ok := cmd.(Named); ok {
		return n.CommandName()
	}
	name := fmt.Sprintf("%T", cmd)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "command"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// Factory returns a pointer to a zero command that a JSON payload is
// decoded into.
type Factory func() Command

// Registry maps command names to factories for decoding JSON envelopes.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding every command of this package.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	for _, f := range []Factory{
		func() Command { return &AddApp{} },
		func() Command { return &RemoveApp{} },
		func() Command { return &SetAutoLaunch{} },
		func() Command { return &SetAutoLaunchEdge{} },
		func() Command { return &SetAutoLaunchArgs{} },
		func() Command { return &AddPin{} },
		func() Command { return &EditPin{} },
		func() Command { return &RemovePin{} },
		func() Command { return &MovePin{} },
		func() Command { return &SyncAutoPins{} },
		func() Command { return &SetAutoPin{} },
		func() Command { return &SetTaskbarSync{} },
		func() Command { return &AddTaskbarPin{} },
		func() Command { return &EditTaskbarPin{} },
		func() Command { return &RemoveTaskbarPin{} },
		func() Command { return &MoveTaskbarPin{} },
		func() Command { return &SetMode{} },
		func() Command { return &SetAccount{} },
		func() Command { return &SetProfileID{} },
		func() Command { return &RegenerateProfileID{} },
		func() Command { return &SetName{} },
		func() Command { return &SetSingleApp{} },
		func() Command { return &SetBreakout{} },
		func() Command { return &SetFileExplorerAccess{} },
		func() Command { return &SetShowTaskbar{} },
		func() Command { return &Replace{} },
	} {
		r.Register(CommandName(f()), f)
	}
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode builds the command called name from its JSON payload.
func (r *Registry) Decode(name string, payload json.RawMessage) (Command, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, NewNotFoundError(fmt.Sprintf("unknown command %q", name))
	}
	cmd := f()
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, cmd); err != nil {
			return nil, NewParseError(fmt.Sprintf("invalid payload for %s", name), err)
		}
	}
	return cmd, nil
}
