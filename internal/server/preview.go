package server

import (
	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/export"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/presets"
)

// Preview is everything the form page shows for one configuration.
type Preview struct {
	XML         string               `json:"xml"`
	Errors      []string             `json:"errors"`
	Summary     []export.Row         `json:"summary"`
	SummaryHTML string               `json:"summaryHtml"`
	Config      *kiosk.Configuration `json:"config"`
}

// BuildPreview encodes and validates cfg. Validation problems are reported,
// never fatal.
func BuildPreview(cfg *kiosk.Configuration) Preview {
	errs := kiosk.Validate(cfg)
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, kiosk.GetShortErrorMessage(err))
	}
	return Preview{
		XML:         codec.Encode(cfg),
		Errors:      messages,
		Summary:     export.SummaryRows(cfg),
		SummaryHTML: export.SummaryHTML(cfg),
		Config:      cfg,
	}
}

// CommandRegistry returns a registry with the state, import and preset
// commands, the preset ones bound to catalog.
func CommandRegistry(catalog *presets.Catalog) *kiosk.Registry {
	reg := kiosk.NewRegistry()
	codec.RegisterCommands(reg)
	presets.RegisterCommands(reg, catalog)
	return reg
}
