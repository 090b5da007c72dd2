package presets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

func TestLoad_Builtin(t *testing.T) {
	c, err := Load(context.Background(), Source{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Apps == nil || c.Pins == nil || c.SingleApps == nil {
		t.Fatalf("Expected every table, got %+v", c)
	}

	edge, ok := c.Apps.Apps["edge"]
	if !ok || edge.Value != kiosk.EdgePath {
		t.Errorf("Expected the edge preset to use %s, got %+v", kiosk.EdgePath, edge)
	}
	if got := c.Apps.Apps["edgeAppId"].Value; got != kiosk.EdgeAUMID {
		t.Errorf("Expected edgeAppId %s, got %s", kiosk.EdgeAUMID, got)
	}
	for key, preset := range c.Pins.Pins {
		if preset.Name == "" {
			t.Errorf("Pin preset %q has no name", key)
		}
	}
	if keys := c.AppKeys(); len(keys) == 0 || keys[0] > keys[len(keys)-1] {
		t.Errorf("Expected sorted app keys, got %v", keys)
	}
}

func TestLoad_DirectoryWithBrokenTable(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{AppsFile, SingleAppsFile} {
		data, err := builtin.ReadFile("data/" + name)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, PinsFile), []byte(`{"pins": [`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(context.Background(), Source{Dir: dir})
	if err == nil || !strings.Contains(err.Error(), PinsFile) {
		t.Errorf("Expected an error naming %s, got %v", PinsFile, err)
	}
	if c.Pins != nil {
		t.Error("Expected the broken table to stay nil")
	}
	if c.Apps == nil || c.SingleApps == nil {
		t.Error("Expected the other tables to load")
	}
}

func TestLoad_MissingKey(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, AppsFile), []byte(`{"groups": {}}`), 0644)

	c, err := Load(context.Background(), Source{Dir: dir})
	if err == nil || !strings.Contains(err.Error(), `missing "apps"`) {
		t.Errorf("Expected missing apps error, got %v", err)
	}
	if c == nil || c.Apps != nil {
		t.Errorf("Expected a catalog without apps, got %+v", c)
	}
}

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/presets/")
		if name == SingleAppsFile {
			http.NotFound(w, r)
			return
		}
		data, err := builtin.ReadFile("data/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	c, err := Load(context.Background(), Source{BaseURL: srv.URL + "/presets/", Client: srv.Client()})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected a 404 error, got %v", err)
	}
	if c.Apps == nil || c.Pins == nil {
		t.Error("Expected apps and pins to load over HTTP")
	}
	if c.SingleApps != nil {
		t.Error("Expected single-app presets to be missing")
	}
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := Load(ctx, Source{BaseURL: "http://127.0.0.1:1"})
	if err == nil {
		t.Fatal("Expected an error from a cancelled context")
	}
	if c.Apps != nil || c.Pins != nil || c.SingleApps != nil {
		t.Errorf("Expected no tables, got %+v", c)
	}
}

func TestCatalog_NilSafeKeys(t *testing.T) {
	var c *Catalog
	if c.AppKeys() != nil || c.PinKeys() != nil || c.SingleAppKeys() != nil {
		t.Error("Expected nil keys from a nil catalog")
	}
}
