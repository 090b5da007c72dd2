package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/presets"
)

func newTestServer(t *testing.T, catalog *presets.Catalog) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(&Config{Catalog: catalog}, kiosk.NewStore(nil))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
	})
	return srv, ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestIndexPage(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "<title>kioskcfg</title>") {
		t.Errorf("Expected the form page, got:\n%s", body)
	}
}

func TestPreview(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/preview")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	p := decode[Preview](t, resp)

	if !strings.Contains(p.XML, "<AssignedAccessConfiguration") {
		t.Errorf("Expected a configuration document, got:\n%s", p.XML)
	}
	if len(p.Errors) != 1 || p.Errors[0] != "Edge URL is required" {
		t.Errorf("Expected the missing URL to be reported, got %v", p.Errors)
	}
	if len(p.Summary) != 8 || !strings.Contains(p.SummaryHTML, "summary-item") {
		t.Errorf("Expected a summary, got %d rows", len(p.Summary))
	}
	if p.Config == nil || p.Config.Mode != kiosk.ModeSingle {
		t.Errorf("Expected the current configuration, got %+v", p.Config)
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"set name", `{"command":"setName","payload":{"name":"Lobby"}}`, http.StatusOK, ""},
		{"unknown command", `{"command":"launchRockets"}`, http.StatusNotFound, `unknown command "launchRockets"`},
		{"missing command", `{"payload":{}}`, http.StatusBadRequest, "command name is required"},
		{"bad envelope", `{"command":`, http.StatusBadRequest, "Invalid command envelope"},
		{"bad payload", `{"command":"setMode","payload":{"mode":7}}`, http.StatusBadRequest, "invalid payload for setMode"},
		{"rejected", `{"command":"setMode","payload":{"mode":"bogus"}}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t, nil)
			resp := postJSON(t, ts.URL+"/api/commands", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status == http.StatusOK {
				p := decode[Preview](t, resp)
				if p.Config.Name != "Lobby" {
					t.Errorf("Expected name Lobby, got %q", p.Config.Name)
				}
				return
			}
			e := decode[ErrorResponse](t, resp)
			if tt.errMsg != "" && !strings.Contains(e.Error, tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, e.Error)
			}
			if e.Hint == "" {
				t.Error("Expected a hint")
			}
		})
	}
}

func TestCommands_PresetsAndDuplicates(t *testing.T) {
	srv, ts := newTestServer(t, presets.Builtin())

	for _, body := range []string{
		`{"command":"setMode","payload":{"mode":"multi"}}`,
		`{"command":"addCommonApp","payload":{"key":"osk"}}`,
	} {
		if resp := postJSON(t, ts.URL+"/api/commands", body); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", body, resp.StatusCode)
		}
	}

	resp := postJSON(t, ts.URL+"/api/commands", `{"command":"addApp","payload":{"app":{"kind":"path","value":"C:\\Windows\\System32\\osk.exe"}}}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 for a duplicate app, got %d", resp.StatusCode)
	}

	if got := srv.store.Snapshot().AllowedApps; len(got) != 1 {
		t.Errorf("Expected one allowed app, got %+v", got)
	}
}

func TestCommands_NoCatalog(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/commands", `{"command":"addCommonApp","payload":{"key":"osk"}}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without preset tables, got %d", resp.StatusCode)
	}
}

func TestCommandNamesAndPresets(t *testing.T) {
	_, ts := newTestServer(t, presets.Builtin())

	resp, err := http.Get(ts.URL + "/api/commands")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	names := decode[[]string](t, resp)
	for _, want := range []string{"addApp", "importDocument", "addCommonPin", "loadScenario", "setName"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %q in %v", want, names)
		}
	}

	resp2, err := http.Get(ts.URL + "/api/presets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	keys := decode[PresetKeys](t, resp2)
	if len(keys.Apps) == 0 || len(keys.Pins) == 0 || len(keys.SingleApps) == 0 {
		t.Errorf("Expected preset keys, got %+v", keys)
	}
	if len(keys.Scenarios) != len(presets.Scenarios) {
		t.Errorf("Expected %d scenarios, got %v", len(presets.Scenarios), keys.Scenarios)
	}
}

func TestImport(t *testing.T) {
	doc := kiosk.NewConfiguration()
	doc.Mode = kiosk.ModeMulti
	doc.Account = kiosk.ExistingAccount("kioskuser")
	doc.AllowedApps = []kiosk.AllowedApp{{Kind: kiosk.AppKindPath, Value: `C:\Windows\System32\osk.exe`}}
	xml := codec.Encode(doc)

	t.Run("valid document", func(t *testing.T) {
		srv, ts := newTestServer(t, nil)
		_ = srv.store.Dispatch(kiosk.SetName{Name: "Kept"})

		resp, err := http.Post(ts.URL+"/api/import", "application/xml", strings.NewReader(xml))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		body := decode[ImportResponse](t, resp)
		cfg := body.Preview.Config
		if cfg.Mode != kiosk.ModeMulti || cfg.Account.AccountName != "kioskuser" || len(cfg.AllowedApps) != 1 {
			t.Errorf("Unexpected imported configuration: %+v", cfg)
		}
		if cfg.Name != "Kept" {
			t.Errorf("Expected the name to survive the import, got %q", cfg.Name)
		}
		if body.Warnings == nil {
			t.Error("Expected an empty warnings list, got null")
		}
	})

	t.Run("restricted mode", func(t *testing.T) {
		_, ts := newTestServer(t, nil)
		resp, err := http.Post(ts.URL+"/api/import?mode=restricted", "application/xml", strings.NewReader(xml))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body := decode[ImportResponse](t, resp)
		if body.Preview.Config.Mode != kiosk.ModeRestricted {
			t.Errorf("Expected restricted mode, got %s", body.Preview.Config.Mode)
		}
	})

	t.Run("rejected documents leave state alone", func(t *testing.T) {
		srv, ts := newTestServer(t, nil)
		before := srv.store.Snapshot()

		for _, bad := range []string{"<Something/>", "not a document"} {
			resp, err := http.Post(ts.URL+"/api/import", "application/xml", strings.NewReader(bad))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%q: expected 400, got %d", bad, resp.StatusCode)
			}
		}
		if after := srv.store.Snapshot(); after.ProfileID != before.ProfileID || after.Mode != before.Mode {
			t.Error("Expected the configuration to be unchanged")
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, ts := newTestServer(t, nil)
		resp, err := http.Post(ts.URL+"/api/import?mode=tablet", "application/xml", strings.NewReader(xml))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestExport(t *testing.T) {
	tests := []struct {
		kind        string
		status      int
		filename    string
		contentType string
		contains    string
	}{
		{"xml", http.StatusOK, "AssignedAccess-Lobby.xml", "application/xml", "<AssignedAccessConfiguration"},
		{"ps1", http.StatusOK, "AssignedAccess-Lobby.ps1", "text/plain", "$xml = @'"},
		{"md", http.StatusOK, "AssignedAccess-Lobby.md", "text/markdown", "# "},
		{"shortcuts", http.StatusOK, "CreateShortcuts_Lobby.ps1", "text/plain", "$shortcutsJson"},
		{"layout", http.StatusOK, "StartLayout_Lobby.xml", "application/xml", "LayoutModificationTemplate"},
		{"zip", http.StatusNotFound, "", "application/json", "unknown export kind"},
	}

	srv, ts := newTestServer(t, nil)
	_ = srv.store.Dispatch(kiosk.SetName{Name: "Lobby"})

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/export/" + tt.kind)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType) {
				t.Errorf("Expected content type %s, got %s", tt.contentType, resp.Header.Get("Content-Type"))
			}
			if tt.filename != "" && !strings.Contains(resp.Header.Get("Content-Disposition"), `filename="`+tt.filename+`"`) {
				t.Errorf("Expected filename %s, got %s", tt.filename, resp.Header.Get("Content-Disposition"))
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("Expected body to contain %q, got:\n%s", tt.contains, body)
			}
		})
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestWebSocket(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dialWS(t, ts)

	msg := readMessage(t, conn)
	if msg.Type != MessagePreview || msg.Preview == nil {
		t.Fatalf("Expected an initial preview, got %+v", msg)
	}

	if err := conn.WriteJSON(Envelope{Command: "setName", Payload: json.RawMessage(`{"name":"Socket"}`)}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessagePreview || msg.Preview.Config.Name != "Socket" {
		t.Errorf("Expected a preview named Socket, got %+v", msg)
	}

	if err := conn.WriteJSON(Envelope{Command: "launchRockets"}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessageError || msg.Error == nil || !strings.Contains(msg.Error.Error, "launchRockets") {
		t.Errorf("Expected an error message, got %+v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessageError {
		t.Errorf("Expected an error for a malformed envelope, got %+v", msg)
	}

	// Commands from other sources are pushed too
	if err := srv.store.Dispatch(kiosk.SetName{Name: "Direct"}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessagePreview || msg.Preview.Config.Name != "Direct" {
		t.Errorf("Expected a preview named Direct, got %+v", msg)
	}
}

func TestWebSocket_BroadcastsToEveryClient(t *testing.T) {
	_, ts := newTestServer(t, nil)
	a := dialWS(t, ts)
	b := dialWS(t, ts)
	readMessage(t, a)
	readMessage(t, b)

	postJSON(t, ts.URL+"/api/commands", `{"command":"setMode","payload":{"mode":"multi"}}`)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Preview == nil || msg.Preview.Config.Mode != kiosk.ModeMulti {
			t.Errorf("Expected a multi-app preview, got %+v", msg)
		}
	}
}

func TestShutdownClosesClients(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dialWS(t, ts)
	readMessage(t, conn)

	if got := srv.GetActiveConnections(); got != 1 {
		t.Fatalf("Expected 1 active connection, got %d", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if got := srv.GetActiveConnections(); got != 0 {
		t.Errorf("Expected no active connections, got %d", got)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed")
	}
}

func TestStartAndCancel(t *testing.T) {
	srv := New(&Config{Host: "127.0.0.1", Port: 0}, kiosk.NewStore(nil))
	addr, err := srv.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr.String() + "/api/state")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{kiosk.NewNotFoundError("x"), http.StatusNotFound},
		{kiosk.NewDuplicateError("x"), http.StatusConflict},
		{kiosk.NewLockedError("x"), http.StatusConflict},
		{kiosk.NewPresetError("x"), http.StatusServiceUnavailable},
		{kiosk.NewInputError("f", "x"), http.StatusBadRequest},
		{kiosk.NewParseError("x", nil), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.status {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}

func TestImportIsLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	_, ts := newTestServer(t, nil)
	doc := codec.Encode(kiosk.NewConfiguration())

	resp, err := http.Post(ts.URL+"/api/import", "application/xml", strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	envelope, err := json.Marshal(map[string]any{
		"command": "importDocument",
		"payload": map[string]string{"text": doc},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp := postJSON(t, ts.URL+"/api/commands", string(envelope)); resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	entries := logs.FilterMessage("Configuration imported").All()
	var sources []string
	for _, e := range entries {
		sources = append(sources, e.ContextMap()["source"].(string))
	}
	if len(sources) != 2 || sources[0] != "http" || sources[1] != "command" {
		t.Errorf("Expected one entry per import [http command], got %v", sources)
	}
}
