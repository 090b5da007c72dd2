package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
)

// Artifact is one generated file.
type Artifact struct {
	Kind    string
	Name    string
	Content string
}

// Artifact kinds, also used as the export endpoint names.
const (
	KindXML         = "xml"
	KindDeploy      = "ps1"
	KindMarkdown    = "md"
	KindShortcuts   = "shortcuts"
	KindStartLayout = "layout"
)

// Kinds lists every artifact kind in bundle order.
var Kinds = []string{KindXML, KindDeploy, KindMarkdown, KindShortcuts, KindStartLayout}

// BundleOptions selects the optional artifacts of a bundle.
type BundleOptions struct {
	Shortcuts   bool
	StartLayout bool
	Now         time.Time
}

// Render produces a single artifact by kind.
func Render(cfg *kiosk.Configuration, kind string, now time.Time) (Artifact, error) {
	switch kind {
	case KindXML:
		return Artifact{Kind: kind, Name: FileName(cfg, "xml"), Content: codec.Encode(cfg)}, nil
	case KindDeploy:
		script, err := DeployScript(cfg)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Kind: kind, Name: FileName(cfg, "ps1"), Content: script}, nil
	case KindMarkdown:
		return Artifact{Kind: kind, Name: FileName(cfg, "md"), Content: Markdown(cfg, now)}, nil
	case KindShortcuts:
		script, err := ShortcutsScript(cfg)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Kind: kind, Name: ShortcutsFileName(cfg), Content: script}, nil
	case KindStartLayout:
		return Artifact{Kind: kind, Name: StartLayoutFileName(cfg), Content: StartLayout(cfg)}, nil
	}
	return Artifact{}, kiosk.NewNotFoundError(fmt.Sprintf("unknown export kind %q", kind))
}

// Bundle writes the configuration document, the deployment script and the
// Markdown summary into dir, plus the optional artifacts, and returns the
// written paths.
func Bundle(cfg *kiosk.Configuration, dir string, opts BundleOptions) ([]string, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	kinds := []string{KindXML, KindDeploy, KindMarkdown}
	if opts.Shortcuts {
		kinds = append(kinds, KindShortcuts)
	}
	if opts.StartLayout {
		kinds = append(kinds, KindStartLayout)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, kind := range kinds {
		art, err := Render(cfg, kind, opts.Now)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, art.Name)
		if err := WriteFile(path, art.Content); err != nil {
			return paths, err
		}
		logging.LogExport(kind, path, len(art.Content))
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteFile writes content through a temporary file and a rename so a
// failed export never leaves a truncated artifact behind.
func WriteFile(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
