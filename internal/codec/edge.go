package codec

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

const fileScheme = "file:///"

var (
	kioskURLPattern    = regexp.MustCompile(`--kiosk\s+(\S+)`)
	idleTimeoutPattern = regexp.MustCompile(`--kiosk-idle-timeout-minutes=(\d+)`)
	driveSegment       = regexp.MustCompile(`^[A-Za-z]:$`)
	drivePath          = regexp.MustCompile(`^[A-Za-z]:/`)
)

// BuildLaunchURL returns the URL a browser opens for the given source.
// A blank URL or file path yields fallback.
func BuildLaunchURL(source kiosk.SourceKind, rawURL, filePath, fallback string) string {
	if source == kiosk.SourceFile {
		if strings.TrimSpace(filePath) == "" {
			return fallback
		}
		return FileURL(filePath)
	}
	if u := strings.TrimSpace(rawURL); u != "" {
		return u
	}
	return fallback
}

// EdgeLaunchURL returns the URL for Edge settings, falling back to
// DefaultEdgeURL.
func EdgeLaunchURL(s kiosk.EdgeSettings) string {
	return BuildLaunchURL(s.Source, s.URL, s.FilePath, kiosk.DefaultEdgeURL)
}

// FileURL converts a local Windows path to a file:/// URL. Separators
// become "/", every segment is percent-encoded except a leading drive
// letter, and the scheme is added if missing.
func FileURL(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(strings.ToLower(path), fileScheme) {
		return path
	}

	segments := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/")
	for i, seg := range segments {
		if i == 0 && driveSegment.MatchString(seg) {
			continue
		}
		segments[i] = encodeURIComponent(seg)
	}
	return fileScheme + strings.TrimLeft(strings.Join(segments, "/"), "/")
}

// FilePathFromURL reverses FileURL. Drive-letter paths get their
// backslashes back.
func FilePathFromURL(u string) string {
	path := u
	if strings.HasPrefix(strings.ToLower(u), fileScheme) {
		path = u[len(fileScheme):]
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	if drivePath.MatchString(path) {
		path = strings.ReplaceAll(path, "/", `\`)
	}
	return path
}

// EdgeKioskArgs builds the Edge command line for kiosk mode.
func EdgeKioskArgs(launchURL string, kioskType kiosk.KioskType, idleTimeoutMinutes int) string {
	if kioskType == "" {
		kioskType = kiosk.KioskFullscreen
	}
	args := fmt.Sprintf("--kiosk %s --edge-kiosk-type=%s --no-first-run", launchURL, kioskType)
	if idleTimeoutMinutes > 0 {
		args += fmt.Sprintf(" --kiosk-idle-timeout-minutes=%d", idleTimeoutMinutes)
	}
	return args
}

// EdgeSettingsArgs builds the Edge command line for s.
func EdgeSettingsArgs(s kiosk.EdgeSettings) string {
	return EdgeKioskArgs(EdgeLaunchURL(s), s.KioskType, s.IdleTimeoutMinutes)
}

// BrowserKioskArgs builds a kiosk command line for Chrome or Firefox pins.
// Edge uses EdgeKioskArgs instead.
func BrowserKioskArgs(browser, launchURL string) string {
	if browser == "chrome" {
		return fmt.Sprintf("--kiosk %s --no-first-run", launchURL)
	}
	return fmt.Sprintf("--kiosk %s", launchURL)
}

// PrivateBrowsingArgs returns the private-window switch of a browser.
func PrivateBrowsingArgs(browser string) string {
	switch browser {
	case "edge":
		return "--inprivate"
	case "chrome":
		return "--incognito"
	case "firefox":
		return "-private-window"
	}
	return ""
}

// ParseEdgeArgs recovers Edge settings from a kiosk command line. The
// boolean result is false when no --kiosk URL is present; the kiosk type
// and idle timeout are still recovered in that case.
func ParseEdgeArgs(args string) (kiosk.EdgeSettings, bool) {
	s := kiosk.DefaultEdgeSettings()
	if strings.Contains(args, "public-browsing") {
		s.KioskType = kiosk.KioskPublicBrowsing
	}
	if m := idleTimeoutPattern.FindStringSubmatch(args); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			s.IdleTimeoutMinutes = n
		}
	}

	m := kioskURLPattern.FindStringSubmatch(args)
	if m == nil {
		return s, false
	}
	launch := m[1]
	if strings.HasPrefix(strings.ToLower(launch), fileScheme) {
		s.Source = kiosk.SourceFile
		s.FilePath = FilePathFromURL(launch)
	} else {
		s.Source = kiosk.SourceURL
		s.URL = launch
	}
	return s, true
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( )
func encodeURIComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
