package export

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
)

// Row is one entry of the summary grid. Items, when set, is rendered as a
// list instead of Value.
type Row struct {
	Label string   `json:"label"`
	Value string   `json:"value"`
	Items []string `json:"items,omitempty"`
}

const notApplicableSingle = "N/A (single-app mode)"

var (
	summaryPolicyOnce sync.Once
	summaryPolicy     *bluemonday.Policy
)

// SummaryRows returns the label/value pairs of the summary grid.
func SummaryRows(cfg *kiosk.Configuration) []Row {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "Unnamed"
	}
	autoLogon := cfg.Account.Kind == kiosk.AccountAuto

	rows := []Row{
		{Label: "Name", Value: name},
		{Label: "Kiosk Type", Value: cfg.ModeLabel()},
		{Label: "Account", Value: cfg.AccountLabel()},
		listRow("Allowed Apps", cfg, allowedAppItems(cfg)),
		listRow("Start Menu Pins", cfg, pinItems(cfg)),
		{Label: "Auto Logon", Value: yesNo(autoLogon)},
		{Label: "Auto Logon Username", Value: "N/A"},
		{Label: "Auto-Launch App", Value: autoLaunchSummary(cfg)},
	}
	if autoLogon {
		username := strings.TrimSpace(cfg.Account.DisplayName)
		if username == "" {
			username = "Managed kiosk account"
		}
		rows[6].Value = username
	}
	return rows
}

func listRow(label string, cfg *kiosk.Configuration, items []string) Row {
	switch {
	case cfg.Mode == kiosk.ModeSingle:
		return Row{Label: label, Value: notApplicableSingle}
	case len(items) == 0:
		return Row{Label: label, Value: "None"}
	}
	return Row{Label: label, Items: items}
}

func allowedAppItems(cfg *kiosk.Configuration) []string {
	var items []string
	for i, app := range cfg.AllowedApps {
		item := kiosk.AppLabel(app.Value)
		if cfg.AutoLaunch != nil && *cfg.AutoLaunch == i {
			item += " (auto-launch)"
		}
		items = append(items, item)
	}
	return items
}

func pinItems(cfg *kiosk.Configuration) []string {
	var items []string
	for _, pin := range cfg.StartPins {
		item := pin.Name
		if item == "" {
			item = "Unnamed pin"
		}
		if pin.Args != "" {
			item += fmt.Sprintf(" (args: %s)", pin.Args)
		}
		items = append(items, item)
	}
	return items
}

func autoLaunchSummary(cfg *kiosk.Configuration) string {
	if cfg.Mode == kiosk.ModeSingle {
		app := cfg.SingleApp
		switch app.Kind {
		case kiosk.AppEdge:
			return fmt.Sprintf("Microsoft Edge (args: %s)", codec.EdgeSettingsArgs(app.Edge))
		case kiosk.AppUWP:
			if aumid := strings.TrimSpace(app.AUMID); aumid != "" {
				return fmt.Sprintf("UWP App (%s)", aumid)
			}
			return "UWP App"
		default:
			path := strings.TrimSpace(app.Path)
			if path == "" {
				return "Win32 App"
			}
			return withArgs(path, strings.TrimSpace(app.Args))
		}
	}

	app, ok := cfg.AutoLaunchApp()
	if !ok {
		return "None"
	}
	var args string
	if kiosk.IsEdgeApp(app.Value) {
		edge := cfg.AutoLaunchEdge
		edge.IdleTimeoutMinutes = 0
		args = codec.EdgeSettingsArgs(edge)
	} else if app.Kind == kiosk.AppKindPath {
		args = strings.TrimSpace(cfg.AutoLaunchArgs)
	}
	return withArgs(kiosk.AppLabel(app.Value), args)
}

func withArgs(label, args string) string {
	if args == "" {
		return label
	}
	return fmt.Sprintf("%s (args: %s)", label, args)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// SummaryHTML renders SummaryRows as the summary-item grid used by the
// preview page. Values are escaped and the result passes through a
// sanitizer that only allows the grid's own markup.
func SummaryHTML(cfg *kiosk.Configuration) string {
	var b strings.Builder
	for _, row := range SummaryRows(cfg) {
		b.WriteString(`<div class="summary-item">`)
		fmt.Fprintf(&b, `<div class="summary-label">%s</div>`, html.EscapeString(row.Label))
		b.WriteString(`<div class="summary-value">`)
		if len(row.Items) > 0 {
			b.WriteString("<ul>")
			for _, item := range row.Items {
				fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(item))
			}
			b.WriteString("</ul>")
		} else {
			b.WriteString(html.EscapeString(row.Value))
		}
		b.WriteString("</div></div>\n")
	}
	return summarySanitizer().Sanitize(b.String())
}

func summarySanitizer() *bluemonday.Policy {
	summaryPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("div", "ul", "li")
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("div")
		summaryPolicy = policy
	})
	return summaryPolicy
}
