package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// TXT record keys published by an editor.
const (
	TxtVersion = "version"
	TxtProfile = "profile"
	TxtName    = "name"
)

// Instance represents a running kioskcfg editor found on the network
type Instance struct {
	// Name is the mDNS instance name (e.g., "kioskcfg on build-pc")
	Name string

	// Hostname is the mDNS hostname (e.g., "build-pc.local.")
	Hostname string

	// IP is the address to connect to, IPv4 when one is advertised
	IP string

	// Port is the HTTP port of the editor
	Port int

	// Metadata contains the TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the instance was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the instance
func (i *Instance) String() string {
	s := fmt.Sprintf("%s at %s", i.Name, i.BaseURL())
	if name := i.ConfigName(); name != "" {
		s += fmt.Sprintf(" editing %q", name)
	}
	return s
}

// BaseURL returns the HTTP base URL of the editor
func (i *Instance) BaseURL() string {
	return "http://" + net.JoinHostPort(i.IP, strconv.Itoa(i.Port))
}

// Version is the kioskcfg version the editor runs.
func (i *Instance) Version() string { return i.GetMetadata(TxtVersion) }

// ProfileID is the profile GUID of the configuration being edited.
func (i *Instance) ProfileID() string { return i.GetMetadata(TxtProfile) }

// ConfigName is the name of the configuration being edited, if any.
func (i *Instance) ConfigName() string { return i.GetMetadata(TxtName) }

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
