// Package server implements the browser form and its live preview service.
//
// One kiosk.Store is shared by every request and connection. Commands arrive
// as JSON envelopes, either posted to /api/commands or sent over the /ws
// WebSocket, are decoded through a kiosk.Registry and dispatched to the
// store. After every successful dispatch the store notifies the server,
// which pushes a fresh preview (document, validation messages and summary)
// to every connected client.
//
// # Endpoints
//
//	GET  /                      embedded form page
//	GET  /api/state             current configuration
//	GET  /api/preview           document, validation messages and summary
//	POST /api/commands          apply {"command": name, "payload": {...}}
//	GET  /api/commands          registered command names
//	GET  /api/presets           preset keys accepted by the preset commands
//	POST /api/import            replace the configuration with an uploaded document (?mode= to force a mode)
//	GET  /api/export/{kind}     download xml, ps1, md, shortcuts or layout
//	GET  /ws                    live preview push; clients send envelopes
//
// Errors are returned as {"error": ..., "hint": ...}. Over the socket,
// failed commands are answered with {"type": "error"} to the sender only;
// successful ones produce a {"type": "preview"} message for every client.
//
// # Usage Example
//
//	store := kiosk.NewStore(cfg)
//	srv := server.New(&server.Config{Host: "127.0.0.1", Port: 8765, Catalog: catalog}, store)
//
//	// Start blocks until ctx is cancelled or a shutdown signal arrives
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles SIGINT and SIGTERM:
//  1. Stop accepting new requests
//  2. Close WebSocket connections
//  3. Wait for their goroutines to finish, up to a timeout
package server
