package codec

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

// TaskbarLayoutXML renders the LayoutModificationTemplate embedded in
// v5:TaskbarLayout. Secondary tiles cannot be pinned to the taskbar and
// are skipped.
func TaskbarLayoutXML(pins []kiosk.Pin) string {
	w := &xmlWriter{}
	writeLayoutRoot(w)
	w.open("CustomTaskbarLayoutCollection", attr{"PinListPlacement", "Replace"})
	w.open("defaultlayout:TaskbarLayout")
	w.open("taskbar:TaskbarPinList")
	for _, p := range pins {
		switch p.Kind {
		case kiosk.PinPackagedAppID:
			w.empty("taskbar:UWA", attr{"AppUserModelID", p.PackagedAppID})
		case kiosk.PinDesktopAppLink:
			w.empty("taskbar:DesktopApp", attr{"DesktopApplicationLinkPath", ShortcutPath(p)})
		}
	}
	w.close("taskbar:TaskbarPinList")
	w.close("defaultlayout:TaskbarLayout")
	w.close("CustomTaskbarLayoutCollection")
	w.close("LayoutModificationTemplate")
	return w.String()
}

// StartLayoutXML renders a Start layout with every pin in one "Kiosk"
// group. Without pins the group is empty.
func StartLayoutXML(pins []kiosk.Pin) string {
	w := &xmlWriter{}
	writeLayoutRoot(w)
	w.empty("LayoutOptions", attr{"StartTileGroupCellWidth", "6"})
	w.open("DefaultLayoutOverride")
	w.open("StartLayoutCollection")
	w.open("defaultlayout:StartLayout", attr{"GroupCellWidth", "6"})
	if len(pins) == 0 {
		w.empty("start:Group", attr{"Name", "Kiosk"})
	} else {
		w.open("start:Group", attr{"Name", "Kiosk"})
		for i, p := range pins {
			row, col := (i/3)*2, (i%3)*2
			pos := []attr{{"Size", "2x2"}, {"Row", fmt.Sprint(row)}, {"Column", fmt.Sprint(col)}}
			switch p.Kind {
			case kiosk.PinPackagedAppID:
				w.empty("start:Tile", append(pos, attr{"AppUserModelID", p.PackagedAppID})...)
			case kiosk.PinSecondaryTile:
				appID := p.PackagedAppID
				if appID == "" {
					appID = kiosk.EdgeAUMID
				}
				w.empty("start:SecondaryTile", append(pos,
					attr{"AppUserModelID", appID},
					attr{"TileID", TileID(p)},
					attr{"Arguments", p.Args},
					attr{"DisplayName", p.Name},
				)...)
			default:
				w.empty("start:DesktopApplicationTile", append(pos, attr{"DesktopApplicationLinkPath", ShortcutPath(p)})...)
			}
		}
		w.close("start:Group")
	}
	w.close("defaultlayout:StartLayout")
	w.close("StartLayoutCollection")
	w.close("DefaultLayoutOverride")
	w.close("LayoutModificationTemplate")
	return w.String()
}

func writeLayoutRoot(w *xmlWriter) {
	w.line("<LayoutModificationTemplate")
	w.line(indentUnit + `xmlns="` + NSLayoutModification + `"`)
	w.line(indentUnit + `xmlns:defaultlayout="` + NSFullDefaultLayout + `"`)
	w.line(indentUnit + `xmlns:start="` + NSStartLayout + `"`)
	w.line(indentUnit + `xmlns:taskbar="` + NSTaskbarLayout + `"`)
	w.line(indentUnit + `Version="1">`)
	w.depth++
}

// ParseTaskbarLayout recovers taskbar pins from a LayoutModificationTemplate.
func ParseTaskbarLayout(data string) ([]kiosk.Pin, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(strings.TrimSpace(data)); err != nil {
		return nil, fmt.Errorf("invalid taskbar layout: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("invalid taskbar layout: no root element")
	}

	var pins []kiosk.Pin
	for _, list := range findAll(root, "TaskbarPinList") {
		for _, el := range list.ChildElements() {
			switch el.Tag {
			case "UWA":
				id := el.SelectAttrValue("AppUserModelID", "")
				if id == "" {
					continue
				}
				pins = append(pins, kiosk.Pin{Name: id, Kind: kiosk.PinPackagedAppID, PackagedAppID: id})
			case "DesktopApp":
				path := el.SelectAttrValue("DesktopApplicationLinkPath", "")
				if path == "" {
					continue
				}
				pins = append(pins, shortcutPin(path))
			}
		}
	}
	return dedupePinNames(pins), nil
}

// findAll returns every descendant of el (including el) with the given
// local name, in document order.
func findAll(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	if el.Tag == local {
		out = append(out, el)
	}
	for _, child := range el.ChildElements() {
		out = append(out, findAll(child, local)...)
	}
	return out
}
