package kiosk

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the configuration
func (c *Configuration) Summary() string {
	name := c.Name
	if name == "" {
		name = "Unnamed"
	}
	return fmt.Sprintf("%s: %s, %s (%s)", name, c.ModeLabel(), c.AccountLabel(), c.ProfileID)
}

// ModeLabel describes the kiosk type, e.g. "Single-App (Edge - Fullscreen)".
func (c *Configuration) ModeLabel() string {
	switch c.Mode {
	case ModeSingle:
		switch c.SingleApp.Kind {
		case AppEdge:
			if c.SingleApp.Edge.KioskType == KioskPublicBrowsing {
				return "Single-App (Edge - Public Browsing)"
			}
			return "Single-App (Edge - Fullscreen)"
		case AppUWP:
			return "Single-App (UWP)"
		default:
			return "Single-App (Win32)"
		}
	case ModeRestricted:
		return "Restricted User"
	default:
		return "Multi-App"
	}
}

// AccountLabel describes the account binding.
func (c *Configuration) AccountLabel() string {
	a := c.Account
	switch a.Kind {
	case AccountExisting:
		if a.AccountName != "" {
			return fmt.Sprintf("Existing Account (%s)", a.AccountName)
		}
		return "Existing Account"
	case AccountGroup:
		if a.GroupName != "" {
			if a.GroupType != "" {
				return fmt.Sprintf("User Group (%s, %s)", a.GroupName, a.GroupType)
			}
			return fmt.Sprintf("User Group (%s)", a.GroupName)
		}
		return "User Group"
	case AccountGlobal:
		return "Global Profile (All non-admin users)"
	default:
		if a.DisplayName != "" {
			return fmt.Sprintf("Auto Logon (%s)", a.DisplayName)
		}
		return "Auto Logon (Managed)"
	}
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func (c *Configuration) FormatCompact() string {
	var b strings.Builder

	name := c.Name
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString(fmt.Sprintf("Name:     %s\n", name))
	b.WriteString(fmt.Sprintf("Mode:     %s\n", c.ModeLabel()))
	b.WriteString(fmt.Sprintf("Account:  %s\n", c.AccountLabel()))
	b.WriteString(fmt.Sprintf("Profile:  %s\n", c.ProfileID))

	if c.Mode == ModeSingle {
		b.WriteString(c.formatSingleApp())
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Apps (%d):\n", len(c.AllowedApps)))
	for i, app := range c.AllowedApps {
		marker := " "
		if c.AutoLaunch != nil && *c.AutoLaunch == i {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("  %s%2d. [%s] %s\n", marker, i+1, app.Kind, app.Value))
	}

	b.WriteString(fmt.Sprintf("Start pins (%d):\n", len(c.StartPins)))
	for i, pin := range c.StartPins {
		b.WriteString(fmt.Sprintf("   %2d. %s\n", i+1, FormatPin(pin)))
	}

	taskbar := c.EffectiveTaskbarPins()
	sync := ""
	if c.TaskbarSyncStartPins {
		sync = ", synced"
	}
	b.WriteString(fmt.Sprintf("Taskbar:  %s (%d pins%s)\n", visibility(c.ShowTaskbar), len(taskbar), sync))
	b.WriteString(fmt.Sprintf("Explorer: %s\n", c.FileExplorerAccess))

	return b.String()
}

func (c *Configuration) formatSingleApp() string {
	app := c.SingleApp
	var b strings.Builder
	switch app.Kind {
	case AppEdge:
		target := app.Edge.URL
		if app.Edge.Source == SourceFile {
			target = app.Edge.FilePath
		}
		if target == "" {
			target = "(not set)"
		}
		b.WriteString(fmt.Sprintf("App:      Microsoft Edge (%s) %s\n", app.Edge.KioskType, target))
		if app.Edge.IdleTimeoutMinutes > 0 {
			b.WriteString(fmt.Sprintf("Idle:     %d min\n", app.Edge.IdleTimeoutMinutes))
		}
	case AppUWP:
		b.WriteString(fmt.Sprintf("App:      %s\n", orNotSet(app.AUMID)))
	default:
		b.WriteString(fmt.Sprintf("App:      %s %s\n", orNotSet(app.Path), app.Args))
	}
	if app.Breakout != nil {
		b.WriteString(fmt.Sprintf("Breakout: %s\n", app.Breakout))
	}
	return b.String()
}

// FormatPin returns a one-line description of a pin.
func FormatPin(p Pin) string {
	var target string
	switch p.Kind {
	case PinPackagedAppID:
		target = p.PackagedAppID
	case PinSecondaryTile:
		target = "tile " + p.Args
	default:
		switch {
		case p.Target != "":
			target = p.Target
		case p.SystemShortcut != "":
			target = p.SystemShortcut
		default:
			target = "(no target)"
		}
	}
	line := fmt.Sprintf("%s -> %s", pinLabel(p), target)
	if p.Kind == PinDesktopAppLink && p.Args != "" {
		line += fmt.Sprintf(" (%s)", p.Args)
	}
	if p.AutoPinned {
		line += " [auto]"
	}
	return line
}

func visibility(show bool) string {
	if show {
		return "Visible"
	}
	return "Hidden"
}

func orNotSet(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not set)"
	}
	return s
}
