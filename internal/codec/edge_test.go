package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

func TestFileURL(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"drive path", `C:\Kiosk\index.html`, "file:///C:/Kiosk/index.html"},
		{"spaces are encoded", `C:\Kiosk\My Page.html`, "file:///C:/Kiosk/My%20Page.html"},
		{"reserved characters", `D:\a#b\c&d.html`, "file:///D:/a%23b/c%26d.html"},
		{"forward slashes", "C:/Kiosk/index.html", "file:///C:/Kiosk/index.html"},
		{"already a file URL", "file:///C:/Kiosk/index.html", "file:///C:/Kiosk/index.html"},
		{"UNC path", `\\server\share\page.html`, "file:///server/share/page.html"},
		{"surrounding whitespace", "  C:\\x.html  ", "file:///C:/x.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileURL(tt.path); got != tt.expected {
				t.Errorf("FileURL(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestFilePathFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"file:///C:/Kiosk/index.html", `C:\Kiosk\index.html`},
		{"file:///C:/Kiosk/My%20Page.html", `C:\Kiosk\My Page.html`},
		{"FILE:///d:/a%23b/c%26d.html", `d:\a#b\c&d.html`},
		{"file:///server/share/page.html", "server/share/page.html"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := FilePathFromURL(tt.url); got != tt.expected {
				t.Errorf("FilePathFromURL(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestBuildLaunchURL(t *testing.T) {
	tests := []struct {
		name     string
		source   kiosk.SourceKind
		url      string
		file     string
		expected string
	}{
		{"url", kiosk.SourceURL, " https://example.com ", "", "https://example.com"},
		{"blank url", kiosk.SourceURL, "", `C:\ignored.html`, "fallback"},
		{"file", kiosk.SourceFile, "https://ignored", `C:\a.html`, "file:///C:/a.html"},
		{"blank file", kiosk.SourceFile, "https://ignored", " ", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildLaunchURL(tt.source, tt.url, tt.file, "fallback"); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseEdgeArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		expected kiosk.EdgeSettings
		ok       bool
	}{
		{
			name:     "fullscreen URL",
			args:     "--kiosk https://example.com --edge-kiosk-type=fullscreen --no-first-run",
			expected: kiosk.EdgeSettings{Source: kiosk.SourceURL, URL: "https://example.com", KioskType: kiosk.KioskFullscreen},
			ok:       true,
		},
		{
			name:     "public browsing file with idle timeout",
			args:     "--kiosk file:///C:/Kiosk/index.html --edge-kiosk-type=public-browsing --no-first-run --kiosk-idle-timeout-minutes=5",
			expected: kiosk.EdgeSettings{Source: kiosk.SourceFile, FilePath: `C:\Kiosk\index.html`, KioskType: kiosk.KioskPublicBrowsing, IdleTimeoutMinutes: 5},
			ok:       true,
		},
		{
			name:     "no kiosk switch",
			args:     "--inprivate",
			expected: kiosk.DefaultEdgeSettings(),
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEdgeArgs(tt.args)
			if ok != tt.ok {
				t.Errorf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("ParseEdgeArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBrowserArgs(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"chrome kiosk", BrowserKioskArgs("chrome", "https://x"), "--kiosk https://x --no-first-run"},
		{"firefox kiosk", BrowserKioskArgs("firefox", "https://x"), "--kiosk https://x"},
		{"edge private", PrivateBrowsingArgs("edge"), "--inprivate"},
		{"chrome private", PrivateBrowsingArgs("chrome"), "--incognito"},
		{"firefox private", PrivateBrowsingArgs("firefox"), "-private-window"},
		{"unknown private", PrivateBrowsingArgs("opera"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestParsePinsJSON_ShortcutNames(t *testing.T) {
	data := `{"pinnedList":[
		{"desktopAppLink":"%ALLUSERSPROFILE%\\Microsoft\\Windows\\Start Menu\\Programs\\Notepad.lnk"},
		{"desktopAppLink":"C:/Links/Paint.LNK"},
		{"desktopAppLink":"%ALLUSERSPROFILE%\\Microsoft\\Windows\\Start Menu\\Programs\\notepad.lnk"},
		{}
	]}`

	pins, warnings, err := ParsePinsJSON(data)
	if err != nil {
		t.Fatalf("ParsePinsJSON() error = %v", err)
	}
	expected := []kiosk.Pin{
		{Name: "Notepad", Kind: kiosk.PinDesktopAppLink},
		{Name: "Paint", Kind: kiosk.PinDesktopAppLink, SystemShortcut: "C:/Links/Paint.LNK"},
		{Name: "notepad (2)", Kind: kiosk.PinDesktopAppLink},
	}
	if diff := cmp.Diff(expected, pins); diff != "" {
		t.Errorf("pins mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %v", warnings)
	}

	t.Run("suffix never collides with an existing name", func(t *testing.T) {
		data := `{"pinnedList":[
			{"desktopAppLink":"C:/Links/A.lnk"},
			{"desktopAppLink":"C:/Other/A.lnk"},
			{"desktopAppLink":"C:/Links/A (2).lnk"},
			{"desktopAppLink":"C:/Links/a (2) (2).lnk"}
		]}`
		pins, _, err := ParsePinsJSON(data)
		if err != nil {
			t.Fatalf("ParsePinsJSON() error = %v", err)
		}
		expected := []string{"A", "A (2)", "A (2) (2)", "a (2) (2) (2)"}
		if diff := cmp.Diff(expected, names(pins)); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("taskbar layout names", func(t *testing.T) {
		layout := TaskbarLayoutXML([]kiosk.Pin{
			{Name: "A", Kind: kiosk.PinDesktopAppLink, SystemShortcut: `C:\Links\A.lnk`},
			{Name: "A2", Kind: kiosk.PinDesktopAppLink, SystemShortcut: `C:\Other\A.lnk`},
			{Name: "A3", Kind: kiosk.PinDesktopAppLink, SystemShortcut: `C:\Links\A (2).lnk`},
		})
		pins, err := ParseTaskbarLayout(layout)
		if err != nil {
			t.Fatalf("ParseTaskbarLayout() error = %v", err)
		}
		expected := []string{"A", "A (2)", "A (2) (2)"}
		if diff := cmp.Diff(expected, names(pins)); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})
}

func names(pins []kiosk.Pin) []string {
	out := make([]string, len(pins))
	for i, p := range pins {
		out[i] = p.Name
	}
	return out
}
