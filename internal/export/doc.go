// Package export renders the artifacts an administrator deploys alongside
// the configuration document: the PowerShell apply script, a standalone
// shortcut script, the Start layout, and human-readable summaries.
//
// Every function here is a pure function of a kiosk.Configuration except
// Bundle, which writes the artifacts into a directory. Validation never
// blocks an export; callers confirm with the user first when
// kiosk.Validate reports problems.
//
// File names follow one convention:
//
//	AssignedAccess-<name>.xml    configuration document
//	AssignedAccess-<name>.ps1    deployment script
//	AssignedAccess-<name>.md     summary
//	CreateShortcuts_<name>.ps1   shortcut script
//	StartLayout_<name>.xml       Start layout
//
// An unnamed configuration uses AssignedAccessConfig.<ext> and the
// "Config" suffix.
package export
