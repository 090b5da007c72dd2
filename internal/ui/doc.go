// Package ui provides terminal output components for the kioskcfg CLI.
//
// The components render once and return a string; they are not
// interactive, apart from the survey prompts in prompts.go and confirm.go.
// The interactive editor lives in internal/wizard/tui.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Progress: progress bar with a step list, one step per exported file
//   - Result: success, failure and warning boxes
//   - RenderValidationReport: the problems that block an export
//   - RenderSummary: the summary grid of a configuration
//
// Printer ties them to an io.Writer and the detected terminal width:
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Export", "kioskcfg export --all",
//	    ui.Param{Key: "Project", Value: path})
//	if ok, err := ui.ConfirmExport(p, kiosk.Validate(cfg)); err != nil || !ok {
//	    return err
//	}
//
// # Logging Integration
//
// Logging is controlled via the KIOSKCFG_LOG_LEVEL environment variable or
// --log-level. When unset, zap logging is silent so the styled output is
// displayed cleanly.
package ui
