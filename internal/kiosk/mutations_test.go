package kiosk

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newMulti() *Configuration {
	cfg := NewConfiguration()
	cfg.Mode = ModeMulti
	return cfg
}

func TestAddAllowedApp(t *testing.T) {
	tests := []struct {
		name     string
		existing []AllowedApp
		app      AllowedApp
		added    bool
		expected []AllowedApp
	}{
		{
			name:     "adds new app",
			app:      AllowedApp{Kind: AppKindPath, Value: `C:\Windows\System32\osk.exe`},
			added:    true,
			expected: []AllowedApp{{Kind: AppKindPath, Value: `C:\Windows\System32\osk.exe`}},
		},
		{
			name:     "defaults to path and trims",
			app:      AllowedApp{Value: `  C:\Apps\pos.exe `},
			added:    true,
			expected: []AllowedApp{{Kind: AppKindPath, Value: `C:\Apps\pos.exe`}},
		},
		{
			name:     "rejects case-insensitive duplicate",
			existing: []AllowedApp{{Kind: AppKindPath, Value: `C:\Windows\System32\osk.exe`}},
			app:      AllowedApp{Kind: AppKindPath, Value: `c:\windows\system32\OSK.EXE`},
			added:    false,
			expected: []AllowedApp{{Kind: AppKindPath, Value: `C:\Windows\System32\osk.exe`}},
		},
		{
			name:  "rejects blank value",
			app:   AllowedApp{Kind: AppKindPath, Value: "  "},
			added: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newMulti()
			cfg.AllowedApps = tt.existing
			if got := cfg.AddAllowedApp(tt.app, AddOptions{}); got != tt.added {
				t.Errorf("Expected added=%v, got %v", tt.added, got)
			}
			if diff := cmp.Diff(tt.expected, cfg.AllowedApps); diff != "" {
				t.Errorf("AllowedApps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddAllowedApp_Options(t *testing.T) {
	cfg := newMulti()
	cfg.AddAllowedApp(AllowedApp{Kind: AppKindPath, Value: `C:\x\msedge_proxy.exe`}, AddOptions{SkipAutoPin: true, SkipAutoLaunch: true})
	app := cfg.AllowedApps[0]
	if !app.SkipAutoPin || !app.SkipAutoLaunch {
		t.Errorf("Expected skip flags to be applied, got %+v", app)
	}
}

func TestRemoveAllowedApp_AutoLaunch(t *testing.T) {
	tests := []struct {
		name       string
		autoLaunch *int
		remove     int
		expected   *int
	}{
		{"removing the auto-launch app clears it", IntPtr(1), 1, nil},
		{"removing before shifts it down", IntPtr(2), 0, IntPtr(1)},
		{"removing after keeps it", IntPtr(0), 2, IntPtr(0)},
		{"no auto-launch stays none", nil, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newMulti()
			for _, v := range []string{`C:\a.exe`, `C:\b.exe`, `C:\c.exe`} {
				cfg.AddAllowedApp(AllowedApp{Kind: AppKindPath, Value: v}, AddOptions{})
			}
			cfg.AutoLaunch = tt.autoLaunch
			if err := cfg.RemoveAllowedApp(tt.remove); err != nil {
				t.Fatalf("RemoveAllowedApp() error = %v", err)
			}
			if diff := cmp.Diff(tt.expected, cfg.AutoLaunch); diff != "" {
				t.Errorf("AutoLaunch mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("out of range", func(t *testing.T) {
		cfg := newMulti()
		if err := cfg.RemoveAllowedApp(0); !IsNotFoundError(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})
}

// Random add/remove sequences never leave an invalid auto-launch index or
// duplicate values behind.
func TestAllowedAppInvariants(t *testing.T) {
	values := []string{`C:\a.exe`, `C:\A.EXE`, `C:\b.exe`, `C:\c.exe`, `c:\B.exe`, `C:\d.exe`}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		store := NewStore(newMulti())
		for step := 0; step < 40; step++ {
			snap := store.Snapshot()
			switch rng.Intn(3) {
			case 0:
				_ = store.Dispatch(AddApp{App: AllowedApp{Kind: AppKindPath, Value: values[rng.Intn(len(values))]}})
			case 1:
				if len(snap.AllowedApps) > 0 {
					_ = store.Dispatch(RemoveApp{Index: rng.Intn(len(snap.AllowedApps))})
				}
			case 2:
				if len(snap.AllowedApps) > 0 {
					_ = store.Dispatch(SetAutoLaunch{Index: IntPtr(rng.Intn(len(snap.AllowedApps)))})
				}
			}

			cfg := store.Snapshot()
			if cfg.AutoLaunch != nil && (*cfg.AutoLaunch < 0 || *cfg.AutoLaunch >= len(cfg.AllowedApps)) {
				t.Fatalf("round %d step %d: auto-launch %d out of range for %d apps", round, step, *cfg.AutoLaunch, len(cfg.AllowedApps))
			}
			seen := make(map[string]bool)
			for _, app := range cfg.AllowedApps {
				key := NormalizeAutoPinKey(app.Value)
				if seen[key] {
					t.Fatalf("round %d step %d: duplicate app %s", round, step, app.Value)
				}
				seen[key] = true
			}
		}
	}
}

func TestSetAutoLaunch(t *testing.T) {
	cfg := newMulti()
	cfg.AddAllowedApp(AllowedApp{Kind: AppKindPath, Value: EdgePath}, AddOptions{})
	cfg.AddAllowedApp(AllowedApp{Kind: AppKindPath, Value: `C:\x\msedge_proxy.exe`}, AddOptions{})
	cfg.AddAllowedApp(AllowedApp{Kind: AppKindPath, Value: `C:\y.exe`}, AddOptions{SkipAutoLaunch: true})

	if err := cfg.SetAutoLaunch(IntPtr(0)); err != nil {
		t.Fatalf("SetAutoLaunch(0) error = %v", err)
	}
	for _, index := range []int{1, 2} {
		if err := cfg.SetAutoLaunch(IntPtr(index)); err == nil {
			t.Errorf("Expected SetAutoLaunch(%d) to be rejected", index)
		}
	}
	if err := cfg.SetAutoLaunch(IntPtr(7)); !IsNotFoundError(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
	if *cfg.AutoLaunch != 0 {
		t.Errorf("Expected auto-launch to stay 0, got %d", *cfg.AutoLaunch)
	}
	if err := cfg.SetAutoLaunch(nil); err != nil || cfg.AutoLaunch != nil {
		t.Errorf("Expected auto-launch cleared, got %v (%v)", cfg.AutoLaunch, err)
	}
}

func TestAutoPins(t *testing.T) {
	calc := AllowedApp{Kind: AppKindAUMID, Value: "Microsoft.WindowsCalculator_8wekyb3d8bbwe!App"}
	notepad := AllowedApp{Kind: AppKindPath, Value: `C:\Windows\notepad.exe`}

	t.Run("pins on add", func(t *testing.T) {
		cfg := newMulti()
		cfg.AutoPinAllowed = true
		cfg.AddAllowedApp(calc, AddOptions{})
		cfg.AddAllowedApp(notepad, AddOptions{})
		cfg.AddAllowedApp(AllowedApp{Kind: AppKindPath, Value: `C:\helper.exe`}, AddOptions{SkipAutoPin: true})

		expected := []Pin{
			{Name: calc.Value, Kind: PinPackagedAppID, PackagedAppID: calc.Value, AutoPinned: true, AutoPinSource: calc.Value},
			{Name: "notepad.exe", Kind: PinDesktopAppLink, Target: notepad.Value, AutoPinned: true, AutoPinSource: notepad.Value},
		}
		if diff := cmp.Diff(expected, cfg.StartPins); diff != "" {
			t.Errorf("StartPins mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("existing pin is matched case-insensitively", func(t *testing.T) {
		cfg := newMulti()
		cfg.AutoPinAllowed = true
		cfg.StartPins = []Pin{{Name: "Notes", Kind: PinDesktopAppLink, Target: `c:\windows\NOTEPAD.exe`}}
		cfg.AddAllowedApp(notepad, AddOptions{})
		if len(cfg.StartPins) != 1 {
			t.Errorf("Expected no new pin, got %d pins", len(cfg.StartPins))
		}
	})

	t.Run("removed auto pin is not resurrected", func(t *testing.T) {
		cfg := newMulti()
		cfg.AutoPinAllowed = true
		cfg.AddAllowedApp(notepad, AddOptions{})
		if err := cfg.RemoveStartPin(0); err != nil {
			t.Fatalf("RemoveStartPin() error = %v", err)
		}
		if diff := cmp.Diff([]string{`c:\windows\notepad.exe`}, cfg.AutoPinExclusions); diff != "" {
			t.Errorf("AutoPinExclusions mismatch (-want +got):\n%s", diff)
		}
		cfg.SyncAutoPins()
		if len(cfg.StartPins) != 0 {
			t.Errorf("Expected excluded app to stay unpinned, got %d pins", len(cfg.StartPins))
		}
	})

	t.Run("turning auto pin off strips derived pins", func(t *testing.T) {
		cfg := newMulti()
		cfg.AutoPinAllowed = true
		cfg.AddAllowedApp(calc, AddOptions{})
		cfg.AddAllowedApp(notepad, AddOptions{})
		if err := cfg.AddStartPin(Pin{Name: "Manual", Kind: PinDesktopAppLink, Target: `C:\manual.exe`}); err != nil {
			t.Fatalf("AddStartPin() error = %v", err)
		}
		_ = cfg.RemoveStartPin(0)

		cfg.AutoPinAllowed = false
		cfg.SyncAutoPins()
		if len(cfg.StartPins) != 1 || cfg.StartPins[0].Name != "Manual" {
			t.Errorf("Expected only the manual pin, got %+v", cfg.StartPins)
		}
		if cfg.AutoPinExclusions != nil {
			t.Errorf("Expected exclusions cleared, got %v", cfg.AutoPinExclusions)
		}
	})

	t.Run("sync does not duplicate", func(t *testing.T) {
		cfg := newMulti()
		cfg.AllowedApps = []AllowedApp{calc, notepad}
		cfg.AutoPinAllowed = true
		cfg.SyncAutoPins()
		cfg.SyncAutoPins()
		if len(cfg.StartPins) != 2 {
			t.Errorf("Expected 2 pins, got %d", len(cfg.StartPins))
		}
	})
}

func TestAddStartPin(t *testing.T) {
	tests := []struct {
		name    string
		pin     Pin
		wantErr func(error) bool
	}{
		{"desktop link", Pin{Name: "Notepad", Target: `C:\Windows\notepad.exe`}, nil},
		{"packaged app", Pin{Name: "Calc", Kind: PinPackagedAppID, PackagedAppID: "Calc!App"}, nil},
		{"secondary tile", Pin{Name: "Portal", Kind: PinSecondaryTile, Args: "https://portal"}, nil},
		{"duplicate name", Pin{Name: "existing", Target: `C:\x.exe`}, IsDuplicateError},
		{"missing name", Pin{Target: `C:\x.exe`}, isInputError},
		{"missing target", Pin{Name: "Empty"}, isInputError},
		{"missing packaged id", Pin{Name: "Calc", Kind: PinPackagedAppID}, isInputError},
		{"tile without URL", Pin{Name: "Tile", Kind: PinSecondaryTile}, isInputError},
		{"unknown kind", Pin{Name: "X", Kind: "shortcut"}, isInputError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newMulti()
			cfg.StartPins = []Pin{{Name: "Existing", Target: `C:\e.exe`, Kind: PinDesktopAppLink}}
			err := cfg.AddStartPin(tt.pin)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("AddStartPin() error = %v", err)
				}
				if len(cfg.StartPins) != 2 {
					t.Errorf("Expected 2 pins, got %d", len(cfg.StartPins))
				}
				return
			}
			if !tt.wantErr(err) {
				t.Errorf("Unexpected error: %v", err)
			}
			if len(cfg.StartPins) != 1 {
				t.Errorf("Expected pins unchanged, got %d", len(cfg.StartPins))
			}
		})
	}

	t.Run("tile defaults to Edge", func(t *testing.T) {
		cfg := newMulti()
		_ = cfg.AddStartPin(Pin{Name: "Portal", Kind: PinSecondaryTile, Args: "https://portal"})
		if cfg.StartPins[0].PackagedAppID != EdgeAUMID {
			t.Errorf("Expected Edge app id, got %q", cfg.StartPins[0].PackagedAppID)
		}
	})
}

func isInputError(err error) bool { return isType(err, ErrTypeInvalidInput) }

func TestEditStartPin(t *testing.T) {
	cfg := newMulti()
	cfg.StartPins = []Pin{
		{Name: "Notepad", Kind: PinDesktopAppLink, Target: `C:\Windows\notepad.exe`},
		{Name: "Calc", Kind: PinPackagedAppID, PackagedAppID: "Calc!App"},
		{Name: "Portal", Kind: PinSecondaryTile, Args: "https://portal", PackagedAppID: EdgeAUMID},
	}

	if err := cfg.EditStartPin(1, Pin{Name: "Calculator", PackagedAppID: "Calc2!App", Target: `C:\ignored.exe`}); err != nil {
		t.Fatalf("EditStartPin() error = %v", err)
	}
	expected := Pin{Name: "Calculator", Kind: PinPackagedAppID, PackagedAppID: "Calc2!App"}
	if diff := cmp.Diff(expected, cfg.StartPins[1]); diff != "" {
		t.Errorf("pin mismatch (-want +got):\n%s", diff)
	}

	if err := cfg.EditStartPin(0, Pin{Name: "portal"}); !IsDuplicateError(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
	if err := cfg.EditStartPin(2, Pin{Name: "Portal"}); err == nil {
		t.Error("Expected tile edit without URL to fail")
	}
	if err := cfg.EditStartPin(5, Pin{Name: "X"}); !IsNotFoundError(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
	if err := cfg.EditStartPin(0, Pin{Name: "notepad", Target: `C:\Windows\notepad.exe`, Args: "/A"}); err != nil {
		t.Errorf("Renaming a pin to a different case of its own name should work, got %v", err)
	}
}

func TestMoveStartPin(t *testing.T) {
	names := func(pins []Pin) []string {
		var out []string
		for _, p := range pins {
			out = append(out, p.Name)
		}
		return out
	}

	tests := []struct {
		index, delta int
		expected     []string
	}{
		{0, 1, []string{"b", "a", "c"}},
		{2, -2, []string{"c", "a", "b"}},
		{0, -1, []string{"a", "b", "c"}},
		{2, 1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d by %d", tt.index, tt.delta), func(t *testing.T) {
			cfg := newMulti()
			for _, n := range []string{"a", "b", "c"} {
				_ = cfg.AddStartPin(Pin{Name: n, Target: `C:\` + n + ".exe"})
			}
			if err := cfg.MoveStartPin(tt.index, tt.delta); err != nil {
				t.Fatalf("MoveStartPin() error = %v", err)
			}
			if diff := cmp.Diff(tt.expected, names(cfg.StartPins)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTaskbarPins(t *testing.T) {
	cfg := newMulti()
	_ = cfg.AddStartPin(Pin{Name: "Notepad", Target: `C:\Windows\notepad.exe`})
	_ = cfg.AddStartPin(Pin{Name: "Portal", Kind: PinSecondaryTile, Args: "https://portal"})

	t.Run("sync mirrors supported kinds", func(t *testing.T) {
		c := cfg.Clone()
		c.SetTaskbarSync(true)
		expected := []Pin{{Name: "Notepad", Kind: PinDesktopAppLink, Target: `C:\Windows\notepad.exe`}}
		if diff := cmp.Diff(expected, c.TaskbarPins); diff != "" {
			t.Errorf("TaskbarPins mismatch (-want +got):\n%s", diff)
		}
		if err := c.AddTaskbarPin(Pin{Name: "X", Target: `C:\x.exe`}); !isType(err, ErrTypeLocked) {
			t.Errorf("Expected locked error, got %v", err)
		}
		if err := c.RemoveTaskbarPin(0); !isType(err, ErrTypeLocked) {
			t.Errorf("Expected locked error, got %v", err)
		}
	})

	t.Run("independent list", func(t *testing.T) {
		c := cfg.Clone()
		if err := c.AddTaskbarPin(Pin{Name: "Calc", Kind: PinPackagedAppID, PackagedAppID: "Calc!App"}); err != nil {
			t.Fatalf("AddTaskbarPin() error = %v", err)
		}
		if err := c.AddTaskbarPin(Pin{Name: "Tile", Kind: PinSecondaryTile, Args: "https://x"}); err == nil {
			t.Error("Expected secondary tiles to be refused on the taskbar")
		}
		if err := c.EditTaskbarPin(0, Pin{Name: "Calculator", Kind: PinPackagedAppID, PackagedAppID: "Calc!App"}); err != nil {
			t.Fatalf("EditTaskbarPin() error = %v", err)
		}
		if c.EffectiveTaskbarPins()[0].Name != "Calculator" {
			t.Errorf("Expected edited pin, got %+v", c.EffectiveTaskbarPins())
		}
		if err := c.RemoveTaskbarPin(0); err != nil || len(c.TaskbarPins) != 0 {
			t.Errorf("Expected pin removed, got %v (%v)", c.TaskbarPins, err)
		}
	})
}

func TestSetMode(t *testing.T) {
	tests := []struct {
		name     string
		account  AccountBinding
		mode     Mode
		expected AccountBinding
	}{
		{"group falls back when leaving restricted", UserGroup(GroupLocal, "Kiosks"), ModeMulti, AutoLogon("")},
		{"global falls back to single", GlobalProfile(), ModeSingle, AutoLogon("")},
		{"group stays in restricted", UserGroup(GroupLocal, "Kiosks"), ModeRestricted, UserGroup(GroupLocal, "Kiosks")},
		{"existing account kept", ExistingAccount("kiosk"), ModeSingle, ExistingAccount("kiosk")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newMulti()
			cfg.Mode = ModeRestricted
			cfg.Account = tt.account
			if err := cfg.SetMode(tt.mode); err != nil {
				t.Fatalf("SetMode() error = %v", err)
			}
			if cfg.Account != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, cfg.Account)
			}
		})
	}

	t.Run("lists survive switching to single", func(t *testing.T) {
		cfg := newMulti()
		cfg.AddAllowedApp(AllowedApp{Kind: AppKindPath, Value: `C:\a.exe`}, AddOptions{})
		_ = cfg.SetMode(ModeSingle)
		if len(cfg.AllowedApps) != 1 {
			t.Error("Expected allowed apps to be kept")
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		if err := newMulti().SetMode("kiosk"); err == nil {
			t.Error("Expected an error")
		}
	})
}
