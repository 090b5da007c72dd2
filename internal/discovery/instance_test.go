package discovery

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

func TestInstance_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		inst     *Instance
		expected string
	}{
		{"ipv4", &Instance{IP: "192.168.4.16", Port: 8765}, "http://192.168.4.16:8765"},
		{"ipv6", &Instance{IP: "fe80::1", Port: 8765}, "http://[fe80::1]:8765"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inst.BaseURL(); got != tt.expected {
				t.Errorf("BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInstance_String(t *testing.T) {
	inst := &Instance{Name: "kioskcfg on lab", IP: "10.0.0.5", Port: 8765}
	if got := inst.String(); got != "kioskcfg on lab at http://10.0.0.5:8765" {
		t.Errorf("String() = %q", got)
	}

	inst.Metadata = map[string]string{TxtName: "Lobby", TxtVersion: "1.0.0", TxtProfile: "{x}"}
	if got := inst.String(); got != `kioskcfg on lab at http://10.0.0.5:8765 editing "Lobby"` {
		t.Errorf("String() = %q", got)
	}
	if inst.Version() != "1.0.0" || inst.ProfileID() != "{x}" || inst.ConfigName() != "Lobby" {
		t.Errorf("Unexpected metadata accessors: %s %s %s", inst.Version(), inst.ProfileID(), inst.ConfigName())
	}

	var empty Instance
	if empty.GetMetadata("anything") != "" {
		t.Error("Expected empty metadata for nil map")
	}
}

func TestTxtRecords(t *testing.T) {
	cfg := kiosk.NewConfiguration()
	cfg.ProfileID = "{11111111-2222-3333-4444-555555555555}"

	expected := []string{"version=1.2.0", "profile={11111111-2222-3333-4444-555555555555}"}
	if diff := cmp.Diff(expected, TxtRecords("1.2.0", cfg)); diff != "" {
		t.Errorf("TxtRecords() mismatch (-want +got):\n%s", diff)
	}

	cfg.Name = "  " + strings.Repeat("x", 300) + " "
	txt := TxtRecords("1.2.0", cfg)
	if len(txt) != 3 || len(txt[2]) != len("name=")+maxTxtValue {
		t.Errorf("Expected a truncated name record, got %d records", len(txt))
	}

	if diff := cmp.Diff([]string{"version=dev"}, TxtRecords("dev", nil)); diff != "" {
		t.Errorf("TxtRecords(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvertiser_UpdateWithoutServer(t *testing.T) {
	a := &Advertiser{version: "dev"}
	a.Update(*kiosk.NewConfiguration())
	a.Shutdown()
	if a.txt != nil {
		t.Errorf("Expected no TXT record without a server, got %v", a.txt)
	}
}

func TestInstanceName(t *testing.T) {
	name := InstanceName()
	if !strings.HasPrefix(name, "kioskcfg") {
		t.Errorf("InstanceName() = %q, want kioskcfg prefix", name)
	}
	if strings.Contains(strings.TrimPrefix(name, "kioskcfg on "), ".") {
		t.Errorf("InstanceName() should use the short host name, got %q", name)
	}
}
