package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

type pinnedList struct {
	PinnedList []pinEntry `json:"pinnedList"`
}

// pinEntry holds exactly one of its fields.
type pinEntry struct {
	PackagedAppID  string         `json:"packagedAppId,omitempty"`
	SecondaryTile  *secondaryTile `json:"secondaryTile,omitempty"`
	DesktopAppLink string         `json:"desktopAppLink,omitempty"`
}

type secondaryTile struct {
	TileID        string `json:"tileId"`
	Arguments     string `json:"arguments"`
	DisplayName   string `json:"displayName"`
	PackagedAppID string `json:"packagedAppId"`
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)
	lnkName         = regexp.MustCompile(`(?i)([^\\/]+)\.lnk$`)
)

// ShortcutPath returns the .lnk path a desktopAppLink pin refers to: its
// system shortcut, or the file the deployment script creates for it.
func ShortcutPath(p kiosk.Pin) string {
	if p.SystemShortcut != "" {
		return p.SystemShortcut
	}
	return DefaultShortcutPath(p.Name)
}

// DefaultShortcutPath is the path the deployment script uses for a pin name.
func DefaultShortcutPath(name string) string {
	return DefaultShortcutDir + `\` + name + ".lnk"
}

// TileID returns the tile id of a secondary tile, derived from its name
// when not set explicitly.
func TileID(p kiosk.Pin) string {
	if p.TileID != "" {
		return p.TileID
	}
	id := nonAlphanumeric.ReplaceAllString(p.Name, "")
	if id == "" {
		return "Tile"
	}
	return id
}

// PinsJSON renders the StartPins payload {"pinnedList":[...]}.
func PinsJSON(pins []kiosk.Pin) string {
	list := pinnedList{PinnedList: make([]pinEntry, 0, len(pins))}
	for _, p := range pins {
		list.PinnedList = append(list.PinnedList, pinToEntry(p))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding plain strings cannot fail.
	_ = enc.Encode(list)
	return strings.TrimRight(buf.String(), "\n")
}

func pinToEntry(p kiosk.Pin) pinEntry {
	switch p.Kind {
	case kiosk.PinPackagedAppID:
		return pinEntry{PackagedAppID: p.PackagedAppID}
	case kiosk.PinSecondaryTile:
		appID := p.PackagedAppID
		if appID == "" {
			appID = kiosk.EdgeAUMID
		}
		return pinEntry{SecondaryTile: &secondaryTile{
			TileID:        TileID(p),
			Arguments:     p.Args,
			DisplayName:   p.Name,
			PackagedAppID: appID,
		}}
	default:
		return pinEntry{DesktopAppLink: ShortcutPath(p)}
	}
}

// ParsePinsJSON decodes a StartPins payload. Shortcut pins come back with
// an empty target, since only the .lnk path is stored in the document;
// each one is reported in the returned warnings.
func ParsePinsJSON(data string) ([]kiosk.Pin, []string, error) {
	var list pinnedList
	if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &list); err != nil {
		return nil, nil, fmt.Errorf("invalid StartPins JSON: %w", err)
	}

	var pins []kiosk.Pin
	var warnings []string
	for _, e := range list.PinnedList {
		switch {
		case e.DesktopAppLink != "":
			pin := shortcutPin(e.DesktopAppLink)
			if pin.NeedsTarget() {
				warnings = append(warnings, fmt.Sprintf("pin %q needs a target path", pin.Name))
			}
			pins = append(pins, pin)
		case e.PackagedAppID != "":
			pins = append(pins, kiosk.Pin{
				Name:          e.PackagedAppID,
				Kind:          kiosk.PinPackagedAppID,
				PackagedAppID: e.PackagedAppID,
			})
		case e.SecondaryTile != nil:
			t := e.SecondaryTile
			name := t.DisplayName
			if name == "" {
				name = t.TileID
			}
			pins = append(pins, kiosk.Pin{
				Name:          name,
				Kind:          kiosk.PinSecondaryTile,
				TileID:        t.TileID,
				Args:          t.Arguments,
				PackagedAppID: t.PackagedAppID,
			})
		}
	}
	return dedupePinNames(pins), warnings, nil
}

// shortcutPin rebuilds a desktopAppLink pin from a .lnk path. A path in
// the deployment script's shortcut folder was created from a target we
// no longer know, so it is left without a system shortcut; any other
// path is an existing shortcut and is kept.
func shortcutPin(path string) kiosk.Pin {
	name := path
	if m := lnkName.FindStringSubmatch(path); m != nil {
		name = m[1]
	}
	pin := kiosk.Pin{Name: name, Kind: kiosk.PinDesktopAppLink}
	if !strings.EqualFold(path, DefaultShortcutPath(name)) {
		pin.SystemShortcut = path
	}
	return pin
}

func dedupePinNames(pins []kiosk.Pin) []kiosk.Pin {
	seen := make(map[string]bool, len(pins))
	for i := range pins {
		base := pins[i].Name
		name := base
		for n := 2; seen[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s (%d)", base, n)
		}
		pins[i].Name = name
		seen[strings.ToLower(name)] = true
	}
	return pins
}
