package presets

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
)

//go:embed data/*.json
var builtin embed.FS

// Table file names, shared by every source.
const (
	AppsFile       = "app-presets.json"
	PinsFile       = "pin-presets.json"
	SingleAppsFile = "single-app-presets.json"
)

// AppPreset is an allow-list entry.
type AppPreset struct {
	Type           kiosk.AllowedAppKind `json:"type"`
	Value          string               `json:"value"`
	SkipAutoPin    bool                 `json:"skipAutoPin,omitempty"`
	SkipAutoLaunch bool                 `json:"skipAutoLaunch,omitempty"`
}

// App converts the preset to an allowed app.
func (p AppPreset) App() kiosk.AllowedApp {
	kind := p.Type
	if kind == "" {
		kind = kiosk.AppKindPath
	}
	return kiosk.AllowedApp{Kind: kind, Value: p.Value, SkipAutoPin: p.SkipAutoPin, SkipAutoLaunch: p.SkipAutoLaunch}
}

// AppTable holds app presets and named groups of app keys.
type AppTable struct {
	Apps   map[string]AppPreset `json:"apps"`
	Groups map[string][]string  `json:"groups"`
}

// PinPreset is a Start pin template.
type PinPreset struct {
	Name           string        `json:"name"`
	PinType        kiosk.PinKind `json:"pinType"`
	Target         string        `json:"target,omitempty"`
	Args           string        `json:"args,omitempty"`
	WorkingDir     string        `json:"workingDir,omitempty"`
	IconPath       string        `json:"iconPath,omitempty"`
	SystemShortcut string        `json:"systemShortcut,omitempty"`
	PackagedAppID  string        `json:"packagedAppId,omitempty"`
}

// Pin converts the preset to a pin.
func (p PinPreset) Pin() kiosk.Pin {
	kind := p.PinType
	if kind == "" {
		kind = kiosk.PinDesktopAppLink
	}
	return kiosk.Pin{
		Name:           p.Name,
		Kind:           kind,
		Target:         p.Target,
		Args:           p.Args,
		WorkingDir:     p.WorkingDir,
		IconPath:       p.IconPath,
		SystemShortcut: p.SystemShortcut,
		PackagedAppID:  p.PackagedAppID,
	}
}

// PinTable holds pin presets.
type PinTable struct {
	Pins map[string]PinPreset `json:"pins"`
}

// SingleAppPreset describes a ready-made single-app kiosk.
type SingleAppPreset struct {
	Label      string           `json:"label,omitempty"`
	AppType    kiosk.AppKind    `json:"appType"`
	SourceType kiosk.SourceKind `json:"sourceType,omitempty"`
	URL        string           `json:"url,omitempty"`
	KioskType  kiosk.KioskType  `json:"kioskType,omitempty"`
	AUMID      string           `json:"aumid,omitempty"`
	Path       string           `json:"path,omitempty"`
	Args       string           `json:"args,omitempty"`
}

// SingleAppTable holds single-app presets.
type SingleAppTable struct {
	Presets map[string]SingleAppPreset `json:"presets"`
}

// Catalog is the set of loaded tables. A nil table failed to load.
type Catalog struct {
	Apps       *AppTable
	Pins       *PinTable
	SingleApps *SingleAppTable
}

// Source says where Load reads the tables from. Dir wins over BaseURL;
// with neither set the embedded tables are used.
type Source struct {
	Dir     string
	BaseURL string
	Client  *http.Client
}

func (s Source) String() string {
	switch {
	case s.Dir != "":
		return s.Dir
	case s.BaseURL != "":
		return s.BaseURL
	}
	return "built-in"
}

// Builtin returns the catalog embedded in the binary.
func Builtin() *Catalog {
	c, _ := Load(context.Background(), Source{})
	return c
}

// Load fetches the three tables concurrently and waits for all of them.
// The returned catalog is never nil; the error joins every table that
// failed.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	c := &Catalog{}
	errs := make([]error, 3)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		c.Apps, errs[0] = loadTable(ctx, src, AppsFile, func(t *AppTable) error {
			if t.Apps == nil {
				return errors.New("missing \"apps\"")
			}
			if t.Groups == nil {
				t.Groups = map[string][]string{}
			}
			return nil
		})
	}()
	go func() {
		defer wg.Done()
		c.Pins, errs[1] = loadTable(ctx, src, PinsFile, func(t *PinTable) error {
			if t.Pins == nil {
				return errors.New("missing \"pins\"")
			}
			return nil
		})
	}()
	go func() {
		defer wg.Done()
		c.SingleApps, errs[2] = loadTable(ctx, src, SingleAppsFile, func(t *SingleAppTable) error {
			if t.Presets == nil {
				return errors.New("missing \"presets\"")
			}
			return nil
		})
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			logging.Warn("Preset table unavailable", zap.String("source", src.String()), zap.Error(err))
		}
	}
	return c, errors.Join(errs...)
}

func loadTable[T any](ctx context.Context, src Source, name string, check func(*T) error) (*T, error) {
	data, err := fetch(ctx, src, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var t T
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := check(&t); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logging.Debug("Loaded preset table", zap.String("table", name), zap.String("source", src.String()))
	return &t, nil
}

func fetch(ctx context.Context, src Source, name string) ([]byte, error) {
	switch {
	case src.Dir != "":
		return os.ReadFile(filepath.Join(src.Dir, name))
	case src.BaseURL != "":
		return fetchHTTP(ctx, src, name)
	}
	return builtin.ReadFile("data/" + name)
}

func fetchHTTP(ctx context.Context, src Source, name string) ([]byte, error) {
	client := src.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	url := strings.TrimRight(src.BaseURL, "/") + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// AppKeys returns the app and group keys in sorted order.
func (c *Catalog) AppKeys() []string {
	if c == nil || c.Apps == nil {
		return nil
	}
	seen := make(map[string]bool)
	for k := range c.Apps.Apps {
		seen[k] = true
	}
	for k := range c.Apps.Groups {
		seen[k] = true
	}
	return sortedKeys(seen)
}

// PinKeys returns the pin preset keys in sorted order.
func (c *Catalog) PinKeys() []string {
	if c == nil || c.Pins == nil {
		return nil
	}
	return sortedKeys(c.Pins.Pins)
}

// SingleAppKeys returns the single-app preset keys in sorted order.
func (c *Catalog) SingleAppKeys() []string {
	if c == nil || c.SingleApps == nil {
		return nil
	}
	return sortedKeys(c.SingleApps.Presets)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
