// Package kiosk holds the in-memory model of a Windows Assigned Access
// (kiosk mode) configuration and the operations that edit it.
//
// A Configuration describes one kiosk profile: which mode it runs in
// (single-app, multi-app or restricted user), which account it binds to,
// which apps are allowed, which Start and taskbar pins are shown and a few
// shell restrictions. It is a plain value that can be built directly in
// tests or read from a project file.
//
// # Editing
//
// Interactive surfaces (the CLI, the terminal editor and the preview
// server) never touch a Configuration directly. They own a Store and send
// it Commands:
//
//	store := kiosk.NewStore(kiosk.NewConfiguration())
//	store.Subscribe(func(cfg kiosk.Configuration) {
//	    fmt.Println(cfg.Mode)
//	})
//
//	err := store.Dispatch(kiosk.SetMode{Mode: kiosk.ModeMulti})
//	err = store.Dispatch(kiosk.AddApp{App: kiosk.AllowedApp{
//	    Kind:  kiosk.AppKindPath,
//	    Value: `C:\Windows\System32\osk.exe`,
//	}})
//
// Dispatch applies a command to a private copy of the configuration and
// only publishes the copy when the command succeeds, so a failed command
// never leaves a half-edited configuration behind.
//
// # Invariants
//
// After every successful dispatch:
//   - AutoLaunch is nil or a valid index into AllowedApps
//   - no two AllowedApps share a value (compared case-insensitively)
//   - no two StartPins share a name (compared case-insensitively)
//   - TaskbarPins mirror StartPins when TaskbarSyncStartPins is set
//
// # Validation
//
// Validate reports everything that would make the exported document
// unusable on a device. Validation never blocks encoding; exporters ask
// for confirmation instead.
package kiosk
