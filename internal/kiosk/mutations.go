package kiosk

import (
	"fmt"
	"slices"
	"strings"
)

// AddOptions are applied to an app as it is added to the allow list.
type AddOptions struct {
	SkipAutoPin    bool
	SkipAutoLaunch bool
}

// AddAllowedApp appends app unless an app with the same value (compared
// case-insensitively) is already allowed. It reports whether the app was
// added. When auto-pin is on and the app is not flagged SkipAutoPin a
// matching Start pin is synthesised.
func (c *Configuration) AddAllowedApp(app AllowedApp, opts AddOptions) bool {
	app.Value = strings.TrimSpace(app.Value)
	if app.Value == "" || c.IndexOfApp(app.Value) >= 0 {
		return false
	}
	if app.Kind == "" {
		app.Kind = AppKindPath
	}
	app.SkipAutoPin = app.SkipAutoPin || opts.SkipAutoPin
	app.SkipAutoLaunch = app.SkipAutoLaunch || opts.SkipAutoLaunch

	c.AllowedApps = append(c.AllowedApps, app)

	if c.AutoPinAllowed && !app.SkipAutoPin {
		c.EnsurePinForApp(app)
	}
	return true
}

// RemoveAllowedApp removes the app at index and renumbers AutoLaunch.
func (c *Configuration) RemoveAllowedApp(index int) error {
	if index < 0 || index >= len(c.AllowedApps) {
		return NewNotFoundError(fmt.Sprintf("no allowed app at position %d", index+1))
	}

	if c.AutoLaunch != nil {
		switch {
		case *c.AutoLaunch == index:
			c.AutoLaunch = nil
		case *c.AutoLaunch > index:
			c.AutoLaunch = IntPtr(*c.AutoLaunch - 1)
		}
	}

	c.AllowedApps = slices.Delete(c.AllowedApps, index, index+1)
	return nil
}

// SetAutoLaunch marks the app at index for auto-launch. A nil index clears it.
func (c *Configuration) SetAutoLaunch(index *int) error {
	if index == nil {
		c.AutoLaunch = nil
		return nil
	}
	if *index < 0 || *index >= len(c.AllowedApps) {
		return NewNotFoundError(fmt.Sprintf("no allowed app at position %d", *index+1))
	}
	app := c.AllowedApps[*index]
	if ShouldSkipAutoLaunch(app) {
		return NewInputError("autoLaunch", fmt.Sprintf("%s cannot be auto-launched", app.Value))
	}
	c.AutoLaunch = IntPtr(*index)
	return nil
}

// EnsurePinForApp adds an auto-generated Start pin for app unless the app
// is excluded or a pin already points at it.
func (c *Configuration) EnsurePinForApp(app AllowedApp) {
	if app.Value == "" {
		return
	}
	if slices.Contains(c.AutoPinExclusions, NormalizeAutoPinKey(app.Value)) {
		return
	}

	for _, pin := range c.StartPins {
		if pin.Kind == PinPackagedAppID {
			if pin.PackagedAppID != "" && strings.EqualFold(pin.PackagedAppID, app.Value) {
				return
			}
			continue
		}
		if pin.Target != "" && strings.EqualFold(pin.Target, app.Value) {
			return
		}
	}

	var pin Pin
	if app.Kind == AppKindAUMID {
		pin = Pin{
			Name:          app.Value,
			Kind:          PinPackagedAppID,
			PackagedAppID: app.Value,
		}
	} else {
		pin = Pin{
			Name:   ShortcutName(app.Value),
			Kind:   PinDesktopAppLink,
			Target: app.Value,
		}
	}
	pin.AutoPinned = true
	pin.AutoPinSource = app.Value

	// Pin names stay unique.
	if c.IndexOfPin(pin.Name) >= 0 {
		return
	}
	c.StartPins = append(c.StartPins, pin)
}

// SyncAutoPins recomputes derived pins. With auto-pin on, every allowed
// app that is neither excluded nor flagged SkipAutoPin gets a pin. With
// auto-pin off, every auto-generated pin is removed and the exclusion
// list is cleared.
func (c *Configuration) SyncAutoPins() {
	if !c.AutoPinAllowed {
		c.StartPins = slices.DeleteFunc(c.StartPins, func(p Pin) bool { return p.AutoPinned })
		c.AutoPinExclusions = nil
		return
	}
	for _, app := range c.AllowedApps {
		if app.SkipAutoPin {
			continue
		}
		c.EnsurePinForApp(app)
	}
}

// AddStartPin appends a user-authored pin.
func (c *Configuration) AddStartPin(pin Pin) error {
	pin = trimPin(pin)
	if pin.Kind == "" {
		pin.Kind = PinDesktopAppLink
	}
	if pin.Kind == PinSecondaryTile && pin.PackagedAppID == "" {
		pin.PackagedAppID = EdgeAUMID
	}
	if err := checkPin(pin); err != nil {
		return err
	}
	if c.IndexOfPin(pin.Name) >= 0 {
		return NewDuplicateError(fmt.Sprintf("a pin named %q already exists", pin.Name))
	}
	c.StartPins = append(c.StartPins, pin)
	return nil
}

// EditStartPin replaces the fields of the pin at index that belong to its
// kind. The kind itself cannot change.
func (c *Configuration) EditStartPin(index int, patch Pin) error {
	if index < 0 || index >= len(c.StartPins) {
		return NewNotFoundError(fmt.Sprintf("no start pin at position %d", index+1))
	}
	patch = trimPin(patch)
	if patch.Name == "" {
		return NewInputError("name", "pin name is required")
	}
	if other := c.IndexOfPin(patch.Name); other >= 0 && other != index {
		return NewDuplicateError(fmt.Sprintf("a pin named %q already exists", patch.Name))
	}

	pin := c.StartPins[index]
	pin.Name = patch.Name
	switch pin.Kind {
	case PinDesktopAppLink:
		pin.Target = patch.Target
		pin.Args = patch.Args
		pin.WorkingDir = patch.WorkingDir
		pin.IconPath = patch.IconPath
		pin.SystemShortcut = patch.SystemShortcut
	case PinPackagedAppID:
		pin.PackagedAppID = patch.PackagedAppID
	case PinSecondaryTile:
		if patch.Args == "" {
			return NewInputError("args", "tile URL or file path is required")
		}
		pin.TileID = patch.TileID
		pin.Args = patch.Args
		pin.PackagedAppID = patch.PackagedAppID
		if pin.PackagedAppID == "" {
			pin.PackagedAppID = EdgeAUMID
		}
	}
	c.StartPins[index] = pin
	return nil
}

// RemoveStartPin removes the pin at index. Removing an auto-generated pin
// records its source app in AutoPinExclusions so a later sync does not
// bring it back.
func (c *Configuration) RemoveStartPin(index int) error {
	if index < 0 || index >= len(c.StartPins) {
		return NewNotFoundError(fmt.Sprintf("no start pin at position %d", index+1))
	}
	removed := c.StartPins[index]
	if removed.AutoPinned && removed.AutoPinSource != "" {
		key := NormalizeAutoPinKey(removed.AutoPinSource)
		if key != "" && !slices.Contains(c.AutoPinExclusions, key) {
			c.AutoPinExclusions = append(c.AutoPinExclusions, key)
		}
	}
	c.StartPins = slices.Delete(c.StartPins, index, index+1)
	return nil
}

// MoveStartPin moves the pin at index by delta positions. Moves past either
// end of the list are ignored.
func (c *Configuration) MoveStartPin(index, delta int) error {
	moved, err := movePin(c.StartPins, index, delta)
	if err != nil {
		return err
	}
	c.StartPins = moved
	return nil
}

// SetTaskbarSync turns taskbar mirroring on or off. Turning it on copies
// the Start pins immediately.
func (c *Configuration) SetTaskbarSync(enabled bool) {
	c.TaskbarSyncStartPins = enabled
	if enabled {
		c.mirrorTaskbar()
	}
}

// AddTaskbarPin appends an independent taskbar pin.
func (c *Configuration) AddTaskbarPin(pin Pin) error {
	if c.TaskbarSyncStartPins {
		return NewLockedError("disable auto-sync to add custom taskbar pins")
	}
	pin, err := taskbarPin(pin)
	if err != nil {
		return err
	}
	c.TaskbarPins = append(c.TaskbarPins, pin)
	return nil
}

// EditTaskbarPin replaces the taskbar pin at index.
func (c *Configuration) EditTaskbarPin(index int, pin Pin) error {
	if c.TaskbarSyncStartPins {
		return NewLockedError("disable auto-sync to edit taskbar pins")
	}
	if index < 0 || index >= len(c.TaskbarPins) {
		return NewNotFoundError(fmt.Sprintf("no taskbar pin at position %d", index+1))
	}
	pin, err := taskbarPin(pin)
	if err != nil {
		return err
	}
	c.TaskbarPins[index] = pin
	return nil
}

// RemoveTaskbarPin removes the taskbar pin at index.
func (c *Configuration) RemoveTaskbarPin(index int) error {
	if c.TaskbarSyncStartPins {
		return NewLockedError("disable auto-sync to remove taskbar pins")
	}
	if index < 0 || index >= len(c.TaskbarPins) {
		return NewNotFoundError(fmt.Sprintf("no taskbar pin at position %d", index+1))
	}
	c.TaskbarPins = slices.Delete(c.TaskbarPins, index, index+1)
	return nil
}

// MoveTaskbarPin moves the taskbar pin at index by delta positions.
func (c *Configuration) MoveTaskbarPin(index, delta int) error {
	if c.TaskbarSyncStartPins {
		return NewLockedError("disable auto-sync to reorder taskbar pins")
	}
	moved, err := movePin(c.TaskbarPins, index, delta)
	if err != nil {
		return err
	}
	c.TaskbarPins = moved
	return nil
}

// EffectiveTaskbarPins returns the taskbar pins that will be written:
// the mirrored Start pins when sync is on, otherwise TaskbarPins.
func (c *Configuration) EffectiveTaskbarPins() []Pin {
	if c.TaskbarSyncStartPins {
		return taskbarMirror(c.StartPins)
	}
	return c.TaskbarPins
}

// SetMode assigns the mode. Fields that only apply to other modes are
// kept as they are, except that group and global accounts fall back to
// auto-logon when leaving restricted mode.
func (c *Configuration) SetMode(mode Mode) error {
	if !mode.Valid() {
		return NewInputError("mode", fmt.Sprintf("unknown mode %q", mode))
	}
	c.Mode = mode
	if mode != ModeRestricted && c.Account.RestrictedOnly() {
		c.Account = AutoLogon(c.Account.DisplayName)
	}
	return nil
}

// normalize restores the invariants every dispatch guarantees.
func (c *Configuration) normalize() {
	if c.AutoLaunch != nil {
		i := *c.AutoLaunch
		if i < 0 || i >= len(c.AllowedApps) || ShouldSkipAutoLaunch(c.AllowedApps[i]) {
			c.AutoLaunch = nil
		}
	}
	if c.TaskbarSyncStartPins {
		c.mirrorTaskbar()
	}
}

func (c *Configuration) mirrorTaskbar() {
	c.TaskbarPins = taskbarMirror(c.StartPins)
}

func taskbarMirror(pins []Pin) []Pin {
	out := make([]Pin, 0, len(pins))
	for _, p := range pins {
		if p.Kind != PinDesktopAppLink && p.Kind != PinPackagedAppID {
			continue
		}
		out = append(out, Pin{
			Name:           p.Name,
			Kind:           p.Kind,
			Target:         p.Target,
			PackagedAppID:  p.PackagedAppID,
			SystemShortcut: p.SystemShortcut,
		})
	}
	return out
}

func taskbarPin(pin Pin) (Pin, error) {
	pin = trimPin(pin)
	if pin.Kind == "" {
		pin.Kind = PinDesktopAppLink
	}
	if pin.Kind != PinDesktopAppLink && pin.Kind != PinPackagedAppID {
		return Pin{}, NewInputError("kind", "taskbar pins must be desktopAppLink or packagedAppId")
	}
	if pin.Name == "" {
		return Pin{}, NewInputError("name", "taskbar pin name is required")
	}
	if pin.Kind == PinPackagedAppID && pin.PackagedAppID == "" {
		return Pin{}, NewInputError("packagedAppId", "taskbar pin app id is required")
	}
	if pin.Kind == PinDesktopAppLink && pin.SystemShortcut == "" && pin.Target == "" {
		return Pin{}, NewInputError("systemShortcut", "taskbar pin shortcut path is required")
	}
	return pin, nil
}

func checkPin(pin Pin) error {
	if pin.Name == "" {
		return NewInputError("name", "pin name is required")
	}
	switch pin.Kind {
	case PinDesktopAppLink:
		if pin.Target == "" && pin.SystemShortcut == "" {
			return NewInputError("target", "shortcut target path is required")
		}
	case PinPackagedAppID:
		if pin.PackagedAppID == "" {
			return NewInputError("packagedAppId", "packaged app id is required")
		}
	case PinSecondaryTile:
		if pin.Args == "" {
			return NewInputError("args", "tile URL or file path is required")
		}
	default:
		return NewInputError("kind", fmt.Sprintf("unknown pin kind %q", pin.Kind))
	}
	return nil
}

func trimPin(p Pin) Pin {
	p.Name = strings.TrimSpace(p.Name)
	p.Target = strings.TrimSpace(p.Target)
	p.Args = strings.TrimSpace(p.Args)
	p.WorkingDir = strings.TrimSpace(p.WorkingDir)
	p.IconPath = strings.TrimSpace(p.IconPath)
	p.SystemShortcut = strings.TrimSpace(p.SystemShortcut)
	p.PackagedAppID = strings.TrimSpace(p.PackagedAppID)
	p.TileID = strings.TrimSpace(p.TileID)
	return p
}

func movePin(pins []Pin, index, delta int) ([]Pin, error) {
	if index < 0 || index >= len(pins) {
		return pins, NewNotFoundError(fmt.Sprintf("no pin at position %d", index+1))
	}
	to := index + delta
	if delta == 0 || to < 0 || to >= len(pins) {
		return pins, nil
	}
	pin := pins[index]
	pins = slices.Delete(pins, index, index+1)
	return slices.Insert(pins, to, pin), nil
}
