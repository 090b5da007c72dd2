package kiosk

import "strings"

// Well-known Edge identifiers.
const (
	// EdgePath is the classic (win32) path of Microsoft Edge.
	EdgePath = `%ProgramFiles(x86)%\Microsoft\Edge\Application\msedge.exe`
	// EdgeAUMID is the packaged app id of Microsoft Edge.
	EdgeAUMID = "Microsoft.MicrosoftEdge.Stable_8wekyb3d8bbwe!App"
	// EdgeSentinel is the legacy AppUserModelId some tools write for Edge kiosks.
	EdgeSentinel = "MSEdge"
	// DefaultEdgeURL is used when an Edge kiosk has no URL configured.
	DefaultEdgeURL = "https://www.microsoft.com"
)

// ExplorerPath is added to the allow list when a pin launches through explorer.exe.
const ExplorerPath = `C:\Windows\explorer.exe`

// IsEdgeApp reports whether value refers to Microsoft Edge, either by its
// executable path or its packaged app id.
func IsEdgeApp(value string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	return lower == strings.ToLower(EdgeSentinel) ||
		strings.Contains(lower, "msedge.exe") ||
		strings.Contains(lower, "microsoftedge")
}

// IsHelperExecutable reports whether value is a helper binary (proxies,
// updaters, crash handlers) that must never be auto-launched.
func IsHelperExecutable(value string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	return strings.Contains(lower, "_proxy.exe") ||
		strings.Contains(lower, "edgeupdate") ||
		strings.Contains(lower, "update.exe") ||
		strings.Contains(lower, "crashhandler")
}

// ShouldSkipAutoLaunch reports whether app may not be selected for auto-launch.
func ShouldSkipAutoLaunch(app AllowedApp) bool {
	if app.Value == "" || app.SkipAutoLaunch {
		return true
	}
	return IsHelperExecutable(app.Value)
}

// NormalizeAutoPinKey is the form allowed-app values take in AutoPinExclusions.
func NormalizeAutoPinKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// AppLabel returns a short human label for an allowed app value.
func AppLabel(value string) string {
	if IsEdgeApp(value) {
		return "Microsoft Edge"
	}
	return value
}

// ShortcutName derives a pin name from a path: the last backslash segment.
func ShortcutName(value string) string {
	if i := strings.LastIndex(value, `\`); i >= 0 && i < len(value)-1 {
		return value[i+1:]
	}
	return value
}

// GuessAppKind infers how an allowed app value identifies the app: values
// shaped like Package_PublisherId!App are AUMIDs, everything else a path.
func GuessAppKind(value string) AllowedAppKind {
	value = strings.TrimSpace(value)
	if strings.Contains(value, "!") && !strings.ContainsAny(value, `\/`) {
		return AppKindAUMID
	}
	return AppKindPath
}
