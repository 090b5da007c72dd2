package export

import (
	"regexp"
	"strings"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

var (
	whitespace       = regexp.MustCompile(`\s+`)
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// SanitizeName turns a configuration name into a file name fragment:
// whitespace runs become "-" and characters Windows forbids are removed.
func SanitizeName(name string) string {
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), "-")
	return invalidFileChars.ReplaceAllString(name, "")
}

// FileName returns AssignedAccess-<name>.<ext>, or AssignedAccessConfig.<ext>
// when the configuration is unnamed.
func FileName(cfg *kiosk.Configuration, ext string) string {
	if strings.TrimSpace(cfg.Name) == "" {
		return "AssignedAccessConfig." + ext
	}
	return "AssignedAccess-" + SanitizeName(cfg.Name) + "." + ext
}

// ShortcutsFileName is the name of the standalone shortcut script.
func ShortcutsFileName(cfg *kiosk.Configuration) string {
	return "CreateShortcuts_" + suffix(cfg) + ".ps1"
}

// StartLayoutFileName is the name of the Start layout export.
func StartLayoutFileName(cfg *kiosk.Configuration) string {
	return "StartLayout_" + suffix(cfg) + ".xml"
}

func suffix(cfg *kiosk.Configuration) string {
	if strings.TrimSpace(cfg.Name) == "" {
		return "Config"
	}
	return SanitizeName(cfg.Name)
}
