package kiosk

import "strings"

// Mode selects which profile shape is written to the configuration document.
type Mode string

const (
	// ModeSingle locks the device to one app (KioskModeApp).
	ModeSingle Mode = "single"
	// ModeMulti shows a restricted Start menu with a list of allowed apps.
	ModeMulti Mode = "multi"
	// ModeRestricted is multi-app for user groups or all non-admin users.
	ModeRestricted Mode = "restricted"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeSingle, ModeMulti, ModeRestricted:
		return true
	}
	return false
}

// IsMultiApp reports whether the mode uses an allowed-apps list.
func (m Mode) IsMultiApp() bool {
	return m == ModeMulti || m == ModeRestricted
}

// AccountKind is the discriminator of AccountBinding.
type AccountKind string

const (
	AccountAuto     AccountKind = "auto"
	AccountExisting AccountKind = "existing"
	AccountGroup    AccountKind = "group"
	AccountGlobal   AccountKind = "global"
)

// GroupType is the Type attribute of a UserGroup account.
type GroupType string

const (
	GroupLocal       GroupType = "LocalGroup"
	GroupAD          GroupType = "ActiveDirectoryGroup"
	GroupAzureAD     GroupType = "AzureActiveDirectoryGroup"
	defaultGroupType           = GroupLocal
)

// Valid reports whether t is a group type the schema accepts.
func (t GroupType) Valid() bool {
	switch t {
	case GroupLocal, GroupAD, GroupAzureAD:
		return true
	}
	return false
}

// AccountBinding associates a Windows account with the profile.
// Only the fields of the active Kind are meaningful.
type AccountBinding struct {
	Kind        AccountKind `yaml:"kind" json:"kind"`
	DisplayName string      `yaml:"displayName,omitempty" json:"displayName,omitempty"` // auto
	AccountName string      `yaml:"accountName,omitempty" json:"accountName,omitempty"` // existing
	GroupType   GroupType   `yaml:"groupType,omitempty" json:"groupType,omitempty"`     // group
	GroupName   string      `yaml:"groupName,omitempty" json:"groupName,omitempty"`     // group
}

// AutoLogon returns an auto-logon binding with the given display name.
func AutoLogon(displayName string) AccountBinding {
	return AccountBinding{Kind: AccountAuto, DisplayName: displayName}
}

// ExistingAccount returns a binding to a pre-existing account.
func ExistingAccount(name string) AccountBinding {
	return AccountBinding{Kind: AccountExisting, AccountName: name}
}

// UserGroup returns a binding to a user group.
func UserGroup(typ GroupType, name string) AccountBinding {
	if typ == "" {
		typ = defaultGroupType
	}
	return AccountBinding{Kind: AccountGroup, GroupType: typ, GroupName: name}
}

// GlobalProfile returns a binding that applies the profile to every non-admin user.
func GlobalProfile() AccountBinding {
	return AccountBinding{Kind: AccountGlobal}
}

// RestrictedOnly reports whether the binding is only valid in restricted mode.
func (a AccountBinding) RestrictedOnly() bool {
	return a.Kind == AccountGroup || a.Kind == AccountGlobal
}

// AppKind selects the single-app variant.
type AppKind string

const (
	AppEdge  AppKind = "edge"
	AppUWP   AppKind = "uwp"
	AppWin32 AppKind = "win32"
)

// SourceKind says whether Edge opens a remote URL or a local file.
type SourceKind string

const (
	SourceURL  SourceKind = "url"
	SourceFile SourceKind = "file"
)

// KioskType is the value of Edge's --edge-kiosk-type switch.
type KioskType string

const (
	KioskFullscreen     KioskType = "fullscreen"
	KioskPublicBrowsing KioskType = "public-browsing"
)

// EdgeSettings describes how Microsoft Edge is launched in kiosk mode.
type EdgeSettings struct {
	Source             SourceKind `yaml:"source" json:"source"`
	URL                string     `yaml:"url,omitempty" json:"url,omitempty"`
	FilePath           string     `yaml:"filePath,omitempty" json:"filePath,omitempty"`
	KioskType          KioskType  `yaml:"kioskType" json:"kioskType"`
	IdleTimeoutMinutes int        `yaml:"idleTimeoutMinutes,omitempty" json:"idleTimeoutMinutes,omitempty"`
}

// DefaultEdgeSettings returns URL-sourced fullscreen settings with no URL.
func DefaultEdgeSettings() EdgeSettings {
	return EdgeSettings{Source: SourceURL, KioskType: KioskFullscreen}
}

// BreakoutSequence is the administrator key combination that exits kiosk mode.
type BreakoutSequence struct {
	Ctrl  bool   `yaml:"ctrl" json:"ctrl"`
	Alt   bool   `yaml:"alt" json:"alt"`
	Shift bool   `yaml:"shift" json:"shift"`
	Key   string `yaml:"key" json:"key"`
}

// String joins the active modifiers (always Ctrl, Alt, Shift in that order)
// and the final key with "+".
func (b BreakoutSequence) String() string {
	parts := make([]string, 0, 4)
	if b.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if b.Alt {
		parts = append(parts, "Alt")
	}
	if b.Shift {
		parts = append(parts, "Shift")
	}
	parts = append(parts, b.Key)
	return strings.Join(parts, "+")
}

// SingleApp is the app a single-app kiosk runs.
type SingleApp struct {
	Kind     AppKind           `yaml:"kind" json:"kind"`
	Edge     EdgeSettings      `yaml:"edge" json:"edge"`
	AUMID    string            `yaml:"aumid,omitempty" json:"aumid,omitempty"`
	Path     string            `yaml:"path,omitempty" json:"path,omitempty"`
	Args     string            `yaml:"args,omitempty" json:"args,omitempty"`
	Breakout *BreakoutSequence `yaml:"breakout,omitempty" json:"breakout,omitempty"`
}

// AllowedAppKind says how an allowed app is identified.
type AllowedAppKind string

const (
	AppKindAUMID AllowedAppKind = "aumid"
	AppKindPath  AllowedAppKind = "path"
)

// AllowedApp is one entry of a multi-app allow list.
type AllowedApp struct {
	Kind           AllowedAppKind `yaml:"kind" json:"kind"`
	Value          string         `yaml:"value" json:"value"`
	SkipAutoPin    bool           `yaml:"skipAutoPin,omitempty" json:"skipAutoPin,omitempty"`
	SkipAutoLaunch bool           `yaml:"skipAutoLaunch,omitempty" json:"skipAutoLaunch,omitempty"`
}

// PinKind is the discriminator of Pin.
type PinKind string

const (
	PinDesktopAppLink PinKind = "desktopAppLink"
	PinPackagedAppID  PinKind = "packagedAppId"
	PinSecondaryTile  PinKind = "secondaryTile"
)

// Pin is a Start menu or taskbar entry.
//
//   - desktopAppLink uses Target, Args, WorkingDir, IconPath and SystemShortcut
//   - packagedAppId uses PackagedAppID
//   - secondaryTile uses PackagedAppID, TileID and Args (the launch URL)
type Pin struct {
	Name           string  `yaml:"name" json:"name"`
	Kind           PinKind `yaml:"kind" json:"kind"`
	Target         string  `yaml:"target,omitempty" json:"target,omitempty"`
	Args           string  `yaml:"args,omitempty" json:"args,omitempty"`
	WorkingDir     string  `yaml:"workingDir,omitempty" json:"workingDir,omitempty"`
	IconPath       string  `yaml:"iconPath,omitempty" json:"iconPath,omitempty"`
	SystemShortcut string  `yaml:"systemShortcut,omitempty" json:"systemShortcut,omitempty"`
	PackagedAppID  string  `yaml:"packagedAppId,omitempty" json:"packagedAppId,omitempty"`
	TileID         string  `yaml:"tileId,omitempty" json:"tileId,omitempty"`
	AutoPinned     bool    `yaml:"autoPinned,omitempty" json:"autoPinned,omitempty"`
	AutoPinSource  string  `yaml:"autoPinSource,omitempty" json:"autoPinSource,omitempty"`
}

// NeedsTarget reports whether the pin is a shortcut with nothing to point at.
func (p Pin) NeedsTarget() bool {
	return p.Kind == PinDesktopAppLink && strings.TrimSpace(p.Target) == "" && strings.TrimSpace(p.SystemShortcut) == ""
}

// FileExplorerAccess controls which namespaces File Explorer may open.
type FileExplorerAccess string

const (
	ExplorerNone               FileExplorerAccess = "none"
	ExplorerDownloads          FileExplorerAccess = "downloads"
	ExplorerRemovable          FileExplorerAccess = "removable"
	ExplorerDownloadsRemovable FileExplorerAccess = "downloads-removable"
	ExplorerAll                FileExplorerAccess = "all"
)

// Valid reports whether a is one of the five access levels.
func (a FileExplorerAccess) Valid() bool {
	switch a {
	case ExplorerNone, ExplorerDownloads, ExplorerRemovable, ExplorerDownloadsRemovable, ExplorerAll:
		return true
	}
	return false
}

// Configuration is the kiosk configuration being edited.
type Configuration struct {
	Name      string         `yaml:"name,omitempty" json:"name,omitempty"`
	Mode      Mode           `yaml:"mode" json:"mode"`
	Account   AccountBinding `yaml:"account" json:"account"`
	ProfileID string         `yaml:"profileId" json:"profileId"`

	// Single-app mode
	SingleApp SingleApp `yaml:"singleApp" json:"singleApp"`

	// Multi-app and restricted modes
	AllowedApps    []AllowedApp `yaml:"allowedApps,omitempty" json:"allowedApps"`
	AutoLaunch     *int         `yaml:"autoLaunch,omitempty" json:"autoLaunch"`
	AutoLaunchEdge EdgeSettings `yaml:"autoLaunchEdge" json:"autoLaunchEdge"`
	AutoLaunchArgs string       `yaml:"autoLaunchArgs,omitempty" json:"autoLaunchArgs,omitempty"`

	StartPins         []Pin    `yaml:"startPins,omitempty" json:"startPins"`
	AutoPinAllowed    bool     `yaml:"autoPinAllowed,omitempty" json:"autoPinAllowed"`
	AutoPinExclusions []string `yaml:"autoPinExclusions,omitempty" json:"autoPinExclusions"`

	TaskbarPins          []Pin `yaml:"taskbarPins,omitempty" json:"taskbarPins"`
	TaskbarSyncStartPins bool  `yaml:"taskbarSyncStartPins,omitempty" json:"taskbarSyncStartPins"`

	FileExplorerAccess FileExplorerAccess `yaml:"fileExplorerAccess" json:"fileExplorerAccess"`
	ShowTaskbar        bool               `yaml:"showTaskbar" json:"showTaskbar"`
}

// NewConfiguration returns the configuration a fresh session starts with:
// single-app Edge, auto-logon account and a new profile GUID.
func NewConfiguration() *Configuration {
	return &Configuration{
		Mode:      ModeSingle,
		Account:   AutoLogon(""),
		ProfileID: NewProfileID(),
		SingleApp: SingleApp{
			Kind: AppEdge,
			Edge: DefaultEdgeSettings(),
		},
		AutoLaunchEdge:     DefaultEdgeSettings(),
		FileExplorerAccess: ExplorerNone,
	}
}

// Clone returns a deep copy of c.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	if c.SingleApp.Breakout != nil {
		b := *c.SingleApp.Breakout
		out.SingleApp.Breakout = &b
	}
	if c.AutoLaunch != nil {
		i := *c.AutoLaunch
		out.AutoLaunch = &i
	}
	out.AllowedApps = append([]AllowedApp(nil), c.AllowedApps...)
	out.StartPins = append([]Pin(nil), c.StartPins...)
	out.TaskbarPins = append([]Pin(nil), c.TaskbarPins...)
	out.AutoPinExclusions = append([]string(nil), c.AutoPinExclusions...)
	return &out
}

// AutoLaunchApp returns the allowed app marked for auto-launch, if any.
func (c *Configuration) AutoLaunchApp() (AllowedApp, bool) {
	if c.AutoLaunch == nil || *c.AutoLaunch < 0 || *c.AutoLaunch >= len(c.AllowedApps) {
		return AllowedApp{}, false
	}
	return c.AllowedApps[*c.AutoLaunch], true
}

// IndexOfApp returns the index of the allowed app whose value matches
// (case-insensitively), or -1.
func (c *Configuration) IndexOfApp(value string) int {
	for i, app := range c.AllowedApps {
		if strings.EqualFold(app.Value, value) {
			return i
		}
	}
	return -1
}

// IndexOfPin returns the index of the start pin with the given name
// (case-insensitively), or -1.
func (c *Configuration) IndexOfPin(name string) int {
	return indexOfPin(c.StartPins, name)
}

func indexOfPin(pins []Pin, name string) int {
	for i, p := range pins {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// IntPtr returns a pointer to i. Used for AutoLaunch.
func IntPtr(i int) *int {
	return &i
}
