// Package urls holds the documentation links kioskcfg prints in hints,
// generated summaries and the preview page.
//
// Usage:
//
//	fmt.Printf("Schema reference: %s\n", urls.AssignedAccessXML)
package urls
