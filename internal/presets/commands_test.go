package presets

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

func multiConfig() *kiosk.Configuration {
	cfg := kiosk.NewConfiguration()
	cfg.Mode = kiosk.ModeMulti
	return cfg
}

func appValues(cfg *kiosk.Configuration) []string {
	var values []string
	for _, app := range cfg.AllowedApps {
		values = append(values, app.Value)
	}
	return values
}

func TestAddCommonApp(t *testing.T) {
	catalog := Builtin()

	t.Run("edge group", func(t *testing.T) {
		cfg := multiConfig()
		if err := (AddCommonApp{Key: "edge"}.With(catalog)).Apply(cfg); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		expected := []kiosk.AllowedApp{
			{Kind: kiosk.AppKindPath, Value: kiosk.EdgePath},
			{Kind: kiosk.AppKindPath, Value: `%ProgramFiles(x86)%\Microsoft\Edge\Application\msedge_proxy.exe`, SkipAutoPin: true, SkipAutoLaunch: true},
			{Kind: kiosk.AppKindAUMID, Value: kiosk.EdgeAUMID, SkipAutoPin: true, SkipAutoLaunch: true},
		}
		if diff := cmp.Diff(expected, cfg.AllowedApps); diff != "" {
			t.Errorf("AllowedApps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("single app twice", func(t *testing.T) {
		cfg := multiConfig()
		for i := 0; i < 2; i++ {
			if err := (AddCommonApp{Key: "osk"}.With(catalog)).Apply(cfg); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
		}
		if diff := cmp.Diff([]string{`C:\Windows\System32\osk.exe`}, appValues(cfg)); diff != "" {
			t.Errorf("AllowedApps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if err := (AddCommonApp{Key: "solitaire"}.With(catalog)).Apply(multiConfig()); !kiosk.IsNotFoundError(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})

	t.Run("table unavailable", func(t *testing.T) {
		err := (AddCommonApp{Key: "osk"}.With(&Catalog{})).Apply(multiConfig())
		if !kiosk.IsPresetError(err) {
			t.Errorf("Expected preset error, got %v", err)
		}
	})
}

func TestAddApp_EdgeDependencies(t *testing.T) {
	cfg := multiConfig()
	cfg.AutoPinAllowed = true

	if err := NewAddApp(kiosk.AllowedApp{Kind: kiosk.AppKindPath, Value: kiosk.EdgePath}, Builtin()).Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(cfg.AllowedApps) != 3 {
		t.Fatalf("Expected Edge and two dependencies, got %v", appValues(cfg))
	}
	if len(cfg.StartPins) != 1 || cfg.StartPins[0].Name != "msedge.exe" {
		t.Errorf("Expected only Edge itself to be pinned, got %+v", cfg.StartPins)
	}

	plain := multiConfig()
	if err := NewAddApp(kiosk.AllowedApp{Kind: kiosk.AppKindPath, Value: kiosk.EdgePath}, &Catalog{}).Apply(plain); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(plain.AllowedApps) != 1 {
		t.Errorf("Expected no dependencies without an app table, got %v", appValues(plain))
	}
}

func TestAddCommonPin(t *testing.T) {
	catalog := Builtin()

	tests := []struct {
		name     string
		cmd      AddCommonPin
		expected kiosk.Pin
	}{
		{
			name:     "packaged app",
			cmd:      AddCommonPin{Key: "calculator"},
			expected: kiosk.Pin{Name: "Calculator", Kind: kiosk.PinPackagedAppID, PackagedAppID: "Microsoft.WindowsCalculator_8wekyb3d8bbwe!App"},
		},
		{
			name: "browser unchanged",
			cmd:  AddCommonPin{Key: "chrome"},
			expected: kiosk.Pin{
				Name: "Google Chrome", Kind: kiosk.PinDesktopAppLink,
				Target:         `%ProgramFiles%\Google\Chrome\Application\chrome.exe`,
				SystemShortcut: `%ALLUSERSPROFILE%\Microsoft\Windows\Start Menu\Programs\Google Chrome.lnk`,
			},
		},
		{
			name: "private firefox",
			cmd:  AddCommonPin{Key: "firefox", Mode: BrowserPrivate},
			expected: kiosk.Pin{
				Name: "Firefox", Kind: kiosk.PinDesktopAppLink,
				Target: `%ProgramFiles%\Mozilla Firefox\firefox.exe`, Args: "-private-window",
			},
		},
		{
			name: "edge public kiosk",
			cmd:  AddCommonPin{Key: "edge", Mode: BrowserKioskPublic, URL: "https://example.com"},
			expected: kiosk.Pin{
				Name: "Microsoft Edge", Kind: kiosk.PinDesktopAppLink, Target: kiosk.EdgePath,
				Args: "--kiosk https://example.com --edge-kiosk-type=public-browsing --no-first-run",
			},
		},
		{
			name: "chrome kiosk from file",
			cmd:  AddCommonPin{Key: "chrome", Mode: BrowserKioskFullscreen, Source: kiosk.SourceFile, FilePath: `C:\Kiosk\menu.html`},
			expected: kiosk.Pin{
				Name: "Google Chrome", Kind: kiosk.PinDesktopAppLink,
				Target: `%ProgramFiles%\Google\Chrome\Application\chrome.exe`,
				Args:   "--kiosk file:///C:/Kiosk/menu.html --no-first-run",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := multiConfig()
			if err := tt.cmd.With(catalog).Apply(cfg); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if diff := cmp.Diff([]kiosk.Pin{tt.expected}, cfg.StartPins); diff != "" {
				t.Errorf("StartPins mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddCommonPin_Errors(t *testing.T) {
	catalog := Builtin()

	cfg := multiConfig()
	if err := (AddCommonPin{Key: "edge", Mode: BrowserKioskFullscreen}.With(catalog)).Apply(cfg); err == nil {
		t.Error("Expected kiosk pin without URL to be rejected")
	}
	if err := (AddCommonPin{Key: "edge", Mode: "fullscreen"}.With(catalog)).Apply(cfg); err == nil {
		t.Error("Expected unknown mode to be rejected")
	}
	if err := (AddCommonPin{Key: "notepad"}.With(catalog)).Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := (AddCommonPin{Key: "notepad"}.With(catalog)).Apply(cfg); !kiosk.IsDuplicateError(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
	if err := (AddCommonPin{Key: "clock"}.With(catalog)).Apply(cfg); !kiosk.IsNotFoundError(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
	if err := (AddCommonPin{Key: "notepad"}).Apply(cfg); !kiosk.IsPresetError(err) {
		t.Errorf("Expected preset error, got %v", err)
	}
}

func TestAddCommonPin_AllowsExplorer(t *testing.T) {
	cfg := multiConfig()
	catalog := Builtin()

	for _, key := range []string{"wifiSettings", "soundSettings"} {
		if err := (AddCommonPin{Key: key}.With(catalog)).Apply(cfg); err != nil {
			t.Fatalf("Apply(%s) error = %v", key, err)
		}
	}
	expected := []kiosk.AllowedApp{{Kind: kiosk.AppKindPath, Value: kiosk.ExplorerPath, SkipAutoPin: true}}
	if diff := cmp.Diff(expected, cfg.AllowedApps); diff != "" {
		t.Errorf("AllowedApps mismatch (-want +got):\n%s", diff)
	}
}

func TestAddEdgeSecondaryTile(t *testing.T) {
	cfg := multiConfig()
	cmd := AddEdgeSecondaryTile{Name: "Portal", URL: " https://portal.example.com "}
	if err := cmd.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	expected := kiosk.Pin{Name: "Portal", Kind: kiosk.PinSecondaryTile, PackagedAppID: kiosk.EdgeAUMID, Args: "https://portal.example.com"}
	if diff := cmp.Diff([]kiosk.Pin{expected}, cfg.StartPins); diff != "" {
		t.Errorf("StartPins mismatch (-want +got):\n%s", diff)
	}

	if err := (AddEdgeSecondaryTile{Name: "Empty"}).Apply(cfg); err == nil {
		t.Error("Expected a tile without URL to be rejected")
	}
}

func TestApplySingleAppPreset(t *testing.T) {
	catalog := Builtin()

	cfg := kiosk.NewConfiguration()
	cfg.SingleApp.Breakout = &kiosk.BreakoutSequence{Ctrl: true, Key: "K"}

	if err := (ApplySingleAppPreset{Key: "edgePublic"}.With(catalog)).Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.SingleApp.Edge.URL != "https://www.bing.com" || cfg.SingleApp.Edge.KioskType != kiosk.KioskPublicBrowsing {
		t.Errorf("Unexpected Edge settings %+v", cfg.SingleApp.Edge)
	}
	if cfg.SingleApp.Breakout == nil {
		t.Error("Expected the breakout sequence to be kept")
	}

	if err := (ApplySingleAppPreset{Key: "edgeLocalFile"}.With(catalog)).Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.SingleApp.Edge.Source != kiosk.SourceFile || cfg.SingleApp.Edge.URL != "https://www.bing.com" {
		t.Errorf("Expected file source with the previous URL kept, got %+v", cfg.SingleApp.Edge)
	}

	if err := (ApplySingleAppPreset{Key: "chromeKiosk"}.With(catalog)).Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.SingleApp.Kind != kiosk.AppWin32 || cfg.SingleApp.Args != "--kiosk https://www.google.com --no-first-run" {
		t.Errorf("Unexpected win32 app %+v", cfg.SingleApp)
	}

	if err := (ApplySingleAppPreset{Key: "calculator"}.With(catalog)).Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.SingleApp.Kind != kiosk.AppUWP || cfg.SingleApp.AUMID != "Microsoft.WindowsCalculator_8wekyb3d8bbwe!App" {
		t.Errorf("Unexpected UWP app %+v", cfg.SingleApp)
	}

	if err := (ApplySingleAppPreset{Key: "edgePublic"}).Apply(cfg); !kiosk.IsPresetError(err) {
		t.Errorf("Expected preset error, got %v", err)
	}
}

func TestRegisterCommands(t *testing.T) {
	reg := kiosk.NewRegistry()
	RegisterCommands(reg, Builtin())
	store := kiosk.NewStore(multiConfig())

	envelopes := []struct {
		name    string
		payload string
	}{
		{"addApp", `{"app":{"kind":"path","value":"%ProgramFiles(x86)%\\Microsoft\\Edge\\Application\\msedge.exe"}}`},
		{"addCommonApp", `{"key":"calculator"}`},
		{"addCommonPin", `{"key":"notepad"}`},
		{"addEdgeSecondaryTile", `{"name":"Portal","url":"https://portal.example.com"}`},
	}
	for _, env := range envelopes {
		cmd, err := reg.Decode(env.name, json.RawMessage(env.payload))
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", env.name, err)
		}
		if err := store.Dispatch(cmd); err != nil {
			t.Fatalf("Dispatch(%s) error = %v", env.name, err)
		}
	}

	cfg := store.Snapshot()
	if len(cfg.AllowedApps) != 4 {
		t.Errorf("Expected Edge, its two dependencies and Calculator, got %v", appValues(cfg))
	}
	if len(cfg.StartPins) != 2 {
		t.Errorf("Expected two pins, got %+v", cfg.StartPins)
	}
}
