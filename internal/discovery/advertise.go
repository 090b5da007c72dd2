package discovery

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"go.uber.org/zap"
)

// maxTxtValue keeps TXT strings inside the 255-byte DNS limit.
const maxTxtValue = 200

// Advertiser announces a running editor over mDNS and keeps its TXT record
// in step with the configuration being edited.
type Advertiser struct {
	mu      sync.Mutex
	server  *zeroconf.Server
	version string
	txt     []string
}

// InstanceName returns the default instance name for this host.
func InstanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "kioskcfg"
	}
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	return "kioskcfg on " + host
}

// Advertise registers the editor listening on port under instance name.
func Advertise(name string, port int, version string, cfg *kiosk.Configuration) (*Advertiser, error) {
	a := &Advertiser{version: version}
	a.txt = a.records(cfg)

	server, err := zeroconf.Register(name, ServiceType, ServiceDomain, port, a.txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	a.server = server

	logging.Info("Advertising editor over mDNS",
		zap.String("instance", name),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return a, nil
}

// Update republishes the TXT record when the profile GUID or name changed.
// It matches kiosk.Listener so it can subscribe to a store.
func (a *Advertiser) Update(cfg kiosk.Configuration) {
	txt := a.records(&cfg)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server == nil || slices.Equal(a.txt, txt) {
		return
	}
	a.txt = txt
	a.server.SetText(txt)
	logging.Debug("Updated mDNS TXT record", zap.Strings("txt", txt))
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// records builds the TXT record for cfg.
func (a *Advertiser) records(cfg *kiosk.Configuration) []string {
	return TxtRecords(a.version, cfg)
}

// TxtRecords returns the TXT strings advertised for cfg.
func TxtRecords(version string, cfg *kiosk.Configuration) []string {
	txt := []string{TxtVersion + "=" + version}
	if cfg == nil {
		return txt
	}
	if cfg.ProfileID != "" {
		txt = append(txt, TxtProfile+"="+cfg.ProfileID)
	}
	if name := strings.TrimSpace(cfg.Name); name != "" {
		if len(name) > maxTxtValue {
			name = name[:maxTxtValue]
		}
		txt = append(txt, TxtName+"="+name)
	}
	return txt
}
