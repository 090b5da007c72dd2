// Package logging provides structured logging for kioskcfg.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the tool: applied state commands, imports,
// exports and the preview server's HTTP and WebSocket traffic.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (every applied command, WebSocket payloads)
//   - Info: Normal operations (imports, exports, HTTP requests)
//   - Warn: Non-fatal issues (preset tables that failed to load, unparsable pins)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Presets loaded",
//	    zap.String("source", "embedded"),
//	    zap.Int("apps", 12),
//	)
//
// # Configuration
//
// Logging is silent unless a level is given, either by the --log-level flag
// or the KIOSKCFG_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Output Format
//
// Logs are written to stderr in console format (human-readable), so they
// never mix with a document written to stdout:
//
//	2026-03-02T10:30:45.123-0800  INFO  Export written
//	  kind=xml
//	  path=AssignedAccess-Lobby.xml
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
