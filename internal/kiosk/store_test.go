package kiosk

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_DispatchNotifiesListeners(t *testing.T) {
	store := NewStore(nil)

	var got []string
	unsubscribe := store.Subscribe(func(cfg Configuration) {
		got = append(got, cfg.Name)
	})

	if err := store.Dispatch(SetName{Name: "Lobby"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if err := store.Dispatch(SetMode{Mode: "bogus"}); err == nil {
		t.Fatal("Expected invalid mode to be rejected")
	}
	unsubscribe()
	if err := store.Dispatch(SetName{Name: "After"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if diff := cmp.Diff([]string{"Lobby"}, got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_FailedCommandLeavesStateUnchanged(t *testing.T) {
	store := NewStore(nil)
	_ = store.Dispatch(SetMode{Mode: ModeMulti})
	_ = store.Dispatch(AddApp{App: AllowedApp{Kind: AppKindPath, Value: `C:\a.exe`}})
	before := store.Snapshot()

	// A command that changes the configuration and then fails.
	failing := CommandFunc(func(cfg *Configuration) error {
		cfg.Name = "changed"
		cfg.AllowedApps = append(cfg.AllowedApps, AllowedApp{Kind: AppKindPath, Value: `C:\b.exe`})
		return errors.New("boom")
	})
	if err := store.Dispatch(failing); err == nil {
		t.Fatal("Expected the error to be returned")
	}
	if diff := cmp.Diff(before, store.Snapshot()); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}

	if err := store.Dispatch(AddApp{App: AllowedApp{Kind: AppKindPath, Value: `C:\A.EXE`}}); !IsDuplicateError(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore(nil)
	_ = store.Dispatch(SetMode{Mode: ModeMulti})
	_ = store.Dispatch(AddApp{App: AllowedApp{Kind: AppKindPath, Value: `C:\a.exe`}})

	snap := store.Snapshot()
	snap.AllowedApps[0].Value = "mutated"
	snap.Name = "mutated"

	again := store.Snapshot()
	if again.AllowedApps[0].Value != `C:\a.exe` || again.Name != "" {
		t.Errorf("Snapshot shares state with the store: %+v", again)
	}
}

func TestStore_NormalizesAfterDispatch(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Mode = ModeMulti
	cfg.AllowedApps = []AllowedApp{{Kind: AppKindPath, Value: `C:\a.exe`}}
	cfg.AutoLaunch = IntPtr(5)
	store := NewStore(cfg)

	if store.Snapshot().AutoLaunch != nil {
		t.Error("Expected an out-of-range auto-launch to be cleared")
	}

	_ = store.Dispatch(SetTaskbarSync{Enabled: true})
	_ = store.Dispatch(AddPin{Pin: Pin{Name: "A", Target: `C:\a.exe`}})
	if got := store.Snapshot().TaskbarPins; len(got) != 1 || got[0].Name != "A" {
		t.Errorf("Expected the taskbar to mirror the new pin, got %+v", got)
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := NewStore(nil)
	_ = store.Dispatch(SetMode{Mode: ModeMulti})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Dispatch(AddApp{App: AllowedApp{Kind: AppKindPath, Value: `C:\app` + string(rune('a'+i)) + ".exe"}})
		}(i)
	}
	wg.Wait()

	if got := len(store.Snapshot().AllowedApps); got != 20 {
		t.Errorf("Expected 20 apps, got %d", got)
	}
}
