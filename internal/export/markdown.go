package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
)

// TimestampLayout is how Markdown prints the generation time.
const TimestampLayout = "2006-01-02 3:04 PM"

// Markdown renders a README-style summary of the configuration. It is
// informational only and is never imported back.
func Markdown(cfg *kiosk.Configuration, now time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("# Kiosk Configuration Summary\n")
	if name := strings.TrimSpace(cfg.Name); name != "" {
		line("**Configuration:** %s\n", name)
	}
	line("Generated: %s\n", now.Format(TimestampLayout))

	line("## Kiosk Mode\n")
	line("**Type:** %s\n", modeType(cfg.Mode))

	line("## Account\n")
	writeAccount(&b, cfg.Account)

	if cfg.Mode == kiosk.ModeSingle {
		writeSingleApp(&b, cfg.SingleApp)
	} else {
		writeMultiApp(&b, cfg)
	}

	line("## Profile\n")
	line("**Profile GUID:** %s\n", orNotSet(cfg.ProfileID))

	line("---\n")
	line("## Deployment\n")
	line("Run the PowerShell script as SYSTEM:")
	line("```\npsexec.exe -i -s powershell.exe -ExecutionPolicy Bypass -File %q\n```\n", FileName(cfg, "ps1"))
	line("A reboot is required after applying the configuration.")
	return b.String()
}

func modeType(m kiosk.Mode) string {
	switch m {
	case kiosk.ModeSingle:
		return "Single-App"
	case kiosk.ModeRestricted:
		return "Restricted User"
	default:
		return "Multi-App"
	}
}

func writeAccount(b *strings.Builder, a kiosk.AccountBinding) {
	switch a.Kind {
	case kiosk.AccountExisting:
		fmt.Fprintf(b, "**Type:** Existing Account\n**Account:** %s\n\n", orNotSet(a.AccountName))
	case kiosk.AccountGroup:
		fmt.Fprintf(b, "**Type:** User Group\n**Group:** %s\n**Group Type:** %s\n\n", orNotSet(a.GroupName), a.GroupType)
	case kiosk.AccountGlobal:
		b.WriteString("**Type:** Global Profile (all non-admin users)\n\n")
	default:
		name := strings.TrimSpace(a.DisplayName)
		if name == "" {
			name = "Kiosk User"
		}
		fmt.Fprintf(b, "**Type:** Auto Logon (Managed)\n**Display Name:** %s\n\n", name)
	}
}

func writeSingleApp(b *strings.Builder, app kiosk.SingleApp) {
	b.WriteString("## Application\n\n")
	switch app.Kind {
	case kiosk.AppEdge:
		b.WriteString("**App:** Microsoft Edge (Kiosk Mode)\n")
		fmt.Fprintf(b, "**URL:** %s\n", orNotSet(edgeTarget(app.Edge)))
		fmt.Fprintf(b, "**Kiosk Type:** %s\n", kioskTypeLabel(app.Edge.KioskType, true))
		if app.Edge.IdleTimeoutMinutes > 0 {
			fmt.Fprintf(b, "**Idle Timeout:** %d minutes\n", app.Edge.IdleTimeoutMinutes)
		}
		b.WriteString("**InPrivate Mode:** Always enabled (automatic in kiosk mode)\n\n")
	case kiosk.AppUWP:
		fmt.Fprintf(b, "**App:** UWP/Store App\n**AUMID:** %s\n\n", orNotSet(app.AUMID))
	default:
		fmt.Fprintf(b, "**App:** Win32 Desktop App\n**Path:** %s\n", orNotSet(app.Path))
		if app.Args != "" {
			fmt.Fprintf(b, "**Arguments:** %s\n", app.Args)
		}
		b.WriteString("\n")
	}

	if app.Breakout != nil {
		fmt.Fprintf(b, "## Breakout Sequence\n\n**Enabled:** Yes\n**Key Combination:** %s\n\n", app.Breakout)
	}
}

func writeMultiApp(b *strings.Builder, cfg *kiosk.Configuration) {
	b.WriteString("## Whitelisted Applications\n\n")
	if len(cfg.AllowedApps) == 0 {
		b.WriteString("(No applications added)\n\n")
	} else {
		for i, app := range cfg.AllowedApps {
			tag := ""
			if cfg.AutoLaunch != nil && *cfg.AutoLaunch == i {
				tag = " **(Auto-Launch)**"
			}
			fmt.Fprintf(b, "%d. %s%s\n", i+1, app.Value, tag)
		}
		b.WriteString("\n")
	}

	if app, ok := cfg.AutoLaunchApp(); ok {
		switch {
		case kiosk.IsEdgeApp(app.Value):
			b.WriteString("## Edge Auto-Launch Settings\n\n")
			fmt.Fprintf(b, "**URL:** %s\n", orNotSet(edgeTarget(cfg.AutoLaunchEdge)))
			fmt.Fprintf(b, "**Kiosk Type:** %s\n", kioskTypeLabel(cfg.AutoLaunchEdge.KioskType, false))
			b.WriteString("**InPrivate Mode:** Always enabled (automatic in kiosk mode)\n\n")
		case cfg.AutoLaunchArgs != "":
			fmt.Fprintf(b, "## Auto-Launch Arguments\n\n`%s`\n\n", cfg.AutoLaunchArgs)
		}
	}

	b.WriteString("## Start Menu Pins\n\n")
	if len(cfg.StartPins) == 0 {
		b.WriteString("(No pins configured)\n\n")
	} else {
		for i, pin := range cfg.StartPins {
			writePin(b, i, pin)
		}
		b.WriteString("\n")
	}

	if cfg.ShowTaskbar {
		if pins := cfg.EffectiveTaskbarPins(); len(pins) > 0 {
			b.WriteString("## Taskbar Pins\n\n")
			if cfg.TaskbarSyncStartPins {
				b.WriteString("Mirrors the Start menu pins.\n\n")
			}
			for i, pin := range pins {
				fmt.Fprintf(b, "%d. %s\n", i+1, orUnnamed(pin.Name))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## System Restrictions\n\n")
	fmt.Fprintf(b, "**Taskbar:** %s\n", visibility(cfg.ShowTaskbar))
	fmt.Fprintf(b, "**File Explorer Access:** %s\n\n", explorerLabel(cfg.FileExplorerAccess))
}

func writePin(b *strings.Builder, i int, pin kiosk.Pin) {
	fmt.Fprintf(b, "%d. **%s**\n", i+1, orUnnamed(pin.Name))
	switch pin.Kind {
	case kiosk.PinPackagedAppID:
		fmt.Fprintf(b, "   - App ID: %s\n", orNotSet(pin.PackagedAppID))
	case kiosk.PinSecondaryTile:
		fmt.Fprintf(b, "   - Tile URL: %s\n", orNotSet(pin.Args))
	default:
		fmt.Fprintf(b, "   - Target: %s\n", orNotSet(pin.Target))
		if pin.Args != "" {
			fmt.Fprintf(b, "   - Arguments: %s\n", pin.Args)
		}
		if pin.SystemShortcut != "" {
			b.WriteString("   - Uses system shortcut\n")
		}
	}
}

func edgeTarget(s kiosk.EdgeSettings) string {
	if s.Source == kiosk.SourceFile {
		if strings.TrimSpace(s.FilePath) == "" {
			return ""
		}
		return codec.FileURL(s.FilePath)
	}
	return strings.TrimSpace(s.URL)
}

func kioskTypeLabel(t kiosk.KioskType, long bool) string {
	if t == kiosk.KioskPublicBrowsing {
		return "Public Browsing"
	}
	if long {
		return "Fullscreen (Digital Signage)"
	}
	return "Fullscreen"
}

func explorerLabel(a kiosk.FileExplorerAccess) string {
	switch a {
	case kiosk.ExplorerNone, "":
		return "Disabled"
	case kiosk.ExplorerDownloads:
		return "Downloads folder only"
	case kiosk.ExplorerRemovable:
		return "Removable drives only"
	case kiosk.ExplorerDownloadsRemovable:
		return "Downloads + Removable drives"
	case kiosk.ExplorerAll:
		return "Full access"
	}
	return string(a)
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

func orUnnamed(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unnamed)"
	}
	return s
}
