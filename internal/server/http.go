package server

import (
	"bufio"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/export"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/presets"
	"go.uber.org/zap"
)

const maxBodySize = 4 << 20

//go:embed static
var staticFS embed.FS

// Envelope is a command as sent by the form page, over HTTP or WebSocket.
type Envelope struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// ImportResponse is returned by POST /api/import.
type ImportResponse struct {
	Warnings []string `json:"warnings"`
	Preview  Preview  `json:"preview"`
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /{$}", http.FileServerFS(static))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/commands", s.handleCommand)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/export/{kind}", s.handleExport)
	mux.HandleFunc("GET /api/commands", s.handleCommandNames)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return logRequests(mux)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BuildPreview(s.store.Snapshot()))
}

func (s *Server) handleCommandNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Names())
}

// PresetKeys lists what the preset commands accept.
type PresetKeys struct {
	Apps       []string `json:"apps"`
	Pins       []string `json:"pins"`
	SingleApps []string `json:"singleApps"`
	Scenarios  []string `json:"scenarios"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	keys := PresetKeys{
		Apps:       s.config.Catalog.AppKeys(),
		Pins:       s.config.Catalog.PinKeys(),
		SingleApps: s.config.Catalog.SingleAppKeys(),
	}
	for _, sc := range presets.Scenarios {
		keys.Scenarios = append(keys.Scenarios, string(sc))
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var env Envelope
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(&env); err != nil {
		writeError(w, kiosk.NewParseError("Invalid command envelope", err))
		return
	}
	if err := s.apply(env); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BuildPreview(s.store.Snapshot()))
}

// apply decodes and dispatches one envelope.
func (s *Server) apply(env Envelope) error {
	if strings.TrimSpace(env.Command) == "" {
		return kiosk.NewInputError("command", "command name is required")
	}
	cmd, err := s.registry.Decode(env.Command, env.Payload)
	if err != nil {
		return err
	}
	return s.store.Dispatch(cmd)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	cmd := &codec.ImportDocument{
		Text:       string(body),
		AssumeMode: kiosk.Mode(r.URL.Query().Get("mode")),
		Source:     "http",
	}
	if cmd.AssumeMode != "" && !cmd.AssumeMode.Valid() {
		writeError(w, kiosk.NewInputError("mode", fmt.Sprintf("unknown mode %q", cmd.AssumeMode)))
		return
	}
	if err := s.store.Dispatch(cmd); err != nil {
		writeError(w, err)
		return
	}

	cfg := s.store.Snapshot()

	warnings := cmd.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, ImportResponse{Warnings: warnings, Preview: BuildPreview(cfg)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	art, err := export.Render(s.store.Snapshot(), r.PathValue("kind"), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(art.Name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, art.Content)
	logging.LogExport(art.Kind, r.URL.Path, len(art.Content))
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".xml"):
		return "application/xml; charset=utf-8"
	case strings.HasSuffix(name, ".md"):
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{
		Error: kiosk.GetShortErrorMessage(err),
		Hint:  kiosk.GetUserFriendlyHint(err),
	})
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var kerr *kiosk.Error
	if !errors.As(err, &kerr) {
		return http.StatusInternalServerError
	}
	switch kerr.Type {
	case kiosk.ErrTypeNotFound:
		return http.StatusNotFound
	case kiosk.ErrTypeDuplicate, kiosk.ErrTypeLocked:
		return http.StatusConflict
	case kiosk.ErrTypePreset:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
