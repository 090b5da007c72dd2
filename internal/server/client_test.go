package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

func TestClient_StateAndDispatch(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	client := NewClient(ts.URL + "/")
	ctx := context.Background()

	p, err := client.Dispatch(ctx, "setName", kiosk.SetName{Name: "Front Desk"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if p.Config.Name != "Front Desk" {
		t.Errorf("Expected preview of the new name, got %q", p.Config.Name)
	}

	cfg, err := client.State(ctx)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if cfg.Name != "Front Desk" || cfg.ProfileID != srv.store.Snapshot().ProfileID {
		t.Errorf("State() = %q %s, want the server's configuration", cfg.Name, cfg.ProfileID)
	}

	preview, err := client.Preview(ctx)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(preview.Summary) != 8 {
		t.Errorf("Expected 8 summary rows, got %d", len(preview.Summary))
	}
}

func TestClient_Push(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	client := NewClient(ts.URL)

	cfg := kiosk.NewConfiguration()
	cfg.Name = "Pushed"
	cfg.Mode = kiosk.ModeMulti
	if _, err := client.Push(context.Background(), cfg); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	got := srv.store.Snapshot()
	if got.Name != "Pushed" || got.Mode != kiosk.ModeMulti {
		t.Errorf("Expected the pushed configuration, got %q in %s mode", got.Name, got.Mode)
	}
}

func TestClient_RemoteErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	client := NewClient(ts.URL)
	client.RetryDelay = time.Millisecond

	_, err := client.Dispatch(context.Background(), "noSuchCommand", struct{}{})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Expected a RemoteError, got %v", err)
	}
	if remote.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", remote.StatusCode)
	}
	if remote.Message != `unknown command "noSuchCommand"` {
		t.Errorf("Unexpected message %q", remote.Message)
	}
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected int32
	}{
		{"gateway errors are retried", http.StatusBadGateway, 3},
		{"bad requests are not", http.StatusBadRequest, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			client := NewClient(ts.URL)
			client.RetryDelay = time.Millisecond

			if _, err := client.State(context.Background()); err == nil {
				t.Fatal("Expected an error")
			}
			if got := calls.Load(); got != tt.expected {
				t.Errorf("Expected %d requests, got %d", tt.expected, got)
			}
		})
	}
}
