// Package tui implements the full-screen terminal editor for kiosk configurations.
//
// Built on Bubble Tea, it follows the Elm architecture: models hold all
// state, Update returns a new model plus commands, and View is a pure
// function of the model. Every edit goes through kiosk.Store.Dispatch, so
// the terminal editor and the web editor apply exactly the same commands.
//
// # Screens
//
//   - Editor: the field list for the current mode next to a live preview of
//     the generated AssignedAccess document and its validation problems
//   - Discovery: lists editors advertised over mDNS ('kioskcfg serve
//     --advertise') or entered by address, and pulls the chosen editor's
//     configuration into the local store
//
// When a configuration was pulled from a remote editor, saving pushes it
// back with server.Client.Push instead of writing a project file.
//
// All screens use RenderApplicationContainer for the header, content and
// context-sensitive footer.
//
// # Framework Components
//
//   - bubbles/list: discovered editors, with filtering
//   - bubbles/textinput: text fields, with preset key suggestions
//   - bubbles/viewport: the scrolling XML preview
//   - bubbles/spinner and bubbles/progress: scanning and saving
//   - bubbles/help and bubbles/key: key maps and the help line
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	store := kiosk.NewStore(cfg)
//	err := tui.Run(tui.Options{
//	    Store:  store,
//	    Source: "kiosk.yaml",
//	    Save:   func(cfg *kiosk.Configuration) error { return config.SaveProject("kiosk.yaml", cfg) },
//	})
//
// # Key Bindings
//
//   - Editor: ↑/↓ move, tab next section, enter edit or toggle, d remove,
//     K/J move a pin, g new profile GUID, l load scenario, s save, ? help, q quit
//   - Editing a field: tab complete, enter confirm, esc cancel
//   - Discovery: ↑/↓ move, enter open, r rescan, m enter address, q quit
package tui
