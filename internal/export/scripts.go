package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/version"
)

//go:embed templates/*.tpl
var templateFS embed.FS

const (
	deployTemplate    = "deploy.ps1.tpl"
	shortcutsTemplate = "shortcuts.ps1.tpl"
)

var (
	templatesOnce sync.Once
	templateSet   *pongo2.TemplateSet
	templates     map[string]*pongo2.Template
	templatesErr  error
)

// Shortcut is one .lnk file the scripts create under the Start menu.
// Field names are the PowerShell property names the scripts read.
type Shortcut struct {
	Name             string `json:"Name"`
	TargetPath       string `json:"TargetPath"`
	Arguments        string `json:"Arguments"`
	WorkingDirectory string `json:"WorkingDirectory"`
	IconLocation     string `json:"IconLocation"`
}

// Shortcuts returns the shortcuts the Start pins need. Packaged apps and
// secondary tiles have no .lnk file, and pins that point at an existing
// system shortcut do not need one created. Single-app configurations
// have no pins.
func Shortcuts(cfg *kiosk.Configuration) []Shortcut {
	out := make([]Shortcut, 0, len(cfg.StartPins))
	if !cfg.Mode.IsMultiApp() {
		return out
	}
	for _, p := range cfg.StartPins {
		if p.Kind != kiosk.PinDesktopAppLink || p.SystemShortcut != "" {
			continue
		}
		out = append(out, Shortcut{
			Name:             p.Name,
			TargetPath:       p.Target,
			Arguments:        p.Args,
			WorkingDirectory: p.WorkingDir,
			IconLocation:     p.IconPath,
		})
	}
	return out
}

// ShortcutsJSON renders Shortcuts as a JSON array indented with four spaces.
func ShortcutsJSON(cfg *kiosk.Configuration) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	_ = enc.Encode(Shortcuts(cfg))
	return strings.TrimRight(buf.String(), "\n")
}

// DeployScript renders the PowerShell script that applies the
// configuration through the MDM_AssignedAccess WMI bridge and creates the
// pinned shortcuts first.
func DeployScript(cfg *kiosk.Configuration) (string, error) {
	return render(deployTemplate, pongo2.Context{
		"xml":         strings.TrimRight(codec.Encode(cfg), "\n"),
		"shortcuts":   ShortcutsJSON(cfg),
		"script_name": FileName(cfg, "ps1"),
		"name":        SanitizeName(cfg.Name),
		"version":     version.Version,
	})
}

// ShortcutsScript renders a script that only creates the shortcuts, for
// deployments that push the XML through Intune or OMA-URI.
func ShortcutsScript(cfg *kiosk.Configuration) (string, error) {
	return render(shortcutsTemplate, pongo2.Context{
		"shortcuts": ShortcutsJSON(cfg),
		"name":      SanitizeName(cfg.Name),
		"version":   version.Version,
	})
}

// StartLayout renders the Start layout XML for the configuration's pins.
// Single-app configurations get an empty Kiosk group.
func StartLayout(cfg *kiosk.Configuration) string {
	if !cfg.Mode.IsMultiApp() {
		return codec.StartLayoutXML(nil)
	}
	return codec.StartLayoutXML(cfg.StartPins)
}

func render(name string, ctx pongo2.Context) (string, error) {
	templatesOnce.Do(loadTemplates)
	if templatesErr != nil {
		return "", templatesErr
	}
	out, err := templates[name].Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return out, nil
}

func loadTemplates() {
	root, err := fs.Sub(templateFS, "templates")
	if err != nil {
		templatesErr = err
		return
	}
	templateSet = pongo2.NewSet("kioskcfg", pongo2.NewFSLoader(root))
	templates = make(map[string]*pongo2.Template)
	for _, name := range []string{deployTemplate, shortcutsTemplate} {
		tpl, err := templateSet.FromFile(name)
		if err != nil {
			templatesErr = fmt.Errorf("load template %s: %w", name, err)
			return
		}
		templates[name] = tpl
	}
}
