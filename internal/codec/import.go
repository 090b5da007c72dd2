package codec

import (
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
)

// ImportDocument replaces the configuration with a decoded document. The
// configuration name and the auto-pin preference are editor settings and
// survive the import. A document that fails to decode changes nothing.
//
// Source names where the text came from in the import log entry.
// Warnings is filled in by Apply.
type ImportDocument struct {
	Text       string     `json:"text"`
	AssumeMode kiosk.Mode `json:"assumeMode,omitempty"`

	Source   string   `json:"-"`
	Warnings []string `json:"-"`
}

func (c *ImportDocument) Apply(cfg *kiosk.Configuration) error {
	res, err := DecodeAs(c.Text, c.AssumeMode)
	if err != nil {
		return err
	}
	next := res.Config
	next.Name = cfg.Name
	next.AutoPinAllowed = cfg.AutoPinAllowed
	*cfg = *next
	c.Warnings = res.Warnings

	source := c.Source
	if source == "" {
		source = "command"
	}
	logging.LogImport(source, string(cfg.Mode), len(c.Warnings))
	return nil
}

func (c *ImportDocument) CommandName() string { return "importDocument" }

// RegisterCommands adds the codec commands to reg.
func RegisterCommands(reg *kiosk.Registry) {
	reg.Register("importDocument", func() kiosk.Command { return &ImportDocument{} })
}
