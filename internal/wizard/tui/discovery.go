package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kioskcfg/internal/config"
	"github.com/muurk/kioskcfg/internal/discovery"
	"github.com/muurk/kioskcfg/internal/kiosk"
)

// ScanTimeout is how long the discovery screen listens for editors
const ScanTimeout = 5 * time.Second

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	instances []*discovery.Instance
	err       error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Confirm, m.Cancel}}
}

// instanceItem wraps an Instance for use with bubbles/list
type instanceItem struct {
	instance *discovery.Instance
}

// FilterValue implements list.Item
func (i instanceItem) FilterValue() string {
	return i.instance.Name + " " + i.instance.IP + " " + i.instance.ConfigName()
}

// Title returns the instance name for list display
func (i instanceItem) Title() string {
	return i.instance.Name
}

// Description returns instance details for list display
func (i instanceItem) Description() string {
	return fmt.Sprintf("%s • %s", i.instance.BaseURL(), orPlaceholder(i.instance.ConfigName(), "unnamed"))
}

// instanceDelegate renders discovered editors as cards
type instanceDelegate struct {
	width int
}

func (d instanceDelegate) Height() int { return 7 }

func (d instanceDelegate) Spacing() int { return 1 }

func (d instanceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d instanceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(instanceItem)
	if !ok {
		return
	}
	inst := it.instance
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + inst.Name))
	} else {
		content.WriteString("  " + inst.Name)
	}
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("  Address:  %s\n", inst.BaseURL()))
	content.WriteString(fmt.Sprintf("  Editing:  %s\n", orPlaceholder(inst.ConfigName(), "(unnamed)")))
	content.WriteString(fmt.Sprintf("  Version:  %s", orPlaceholder(inst.Version(), "unknown")))

	cardWidth := min(max(d.width-6, MinTerminalWidth-6), MaxContentWidth-6)
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2).
		Width(cardWidth)
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel lists kioskcfg editors found on the network
type DiscoveryModel struct {
	// Discovery state
	Scanning     bool
	InstanceList list.Model
	Selected     bool
	Err          error
	PullErr      error // set when fetching from the chosen editor failed

	// Manual address entry state
	ManualMode   bool
	AddressInput textinput.Model
	ManualErr    string

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel() DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	addressInput := textinput.New()
	addressInput.Placeholder = fmt.Sprintf("192.168.1.20:%d", config.DefaultPort)
	addressInput.CharLimit = 262 // hostname plus port
	addressInput.Width = 40

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	instanceList := list.New([]list.Item{}, instanceDelegate{width: MinTerminalWidth}, 0, 0)
	instanceList.Title = "Running Editors"
	instanceList.SetShowStatusBar(false)
	instanceList.SetFilteringEnabled(true)
	instanceList.Styles.Title = TitleStyle

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "open"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter address"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	return DiscoveryModel{
		InstanceList: instanceList,
		AddressInput: addressInput,
		Spinner:      s,
		ProgressBar:  progressBar,
		Help:         help.New(),
		Keys:         keys,
		ManualKeys:   manualKeys,
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return m.startScan()
}

func (m DiscoveryModel) startScan() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanInstances,
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		if !m.Scanning {
			return m.updateNormalMode(msg)
		}
		if key.Matches(msg, m.Keys.Manual) {
			return m.enterManualMode()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.InstanceList.SetDelegate(instanceDelegate{width: msg.Width})
		m.InstanceList.SetWidth(msg.Width - 4)
		m.InstanceList.SetHeight(msg.Height - 10)

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.instances))
		for i, inst := range msg.instances {
			items[i] = instanceItem{instance: inst}
		}
		m.InstanceList.SetItems(items)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateNormalMode handles keyboard input in the instance list
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.InstanceList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.InstanceList, cmd = m.InstanceList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Enter):
		if m.InstanceList.SelectedItem() != nil {
			m.Selected = true
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		m.InstanceList.SetItems([]list.Item{})
		m.Err = nil
		return m, m.startScan()

	case key.Matches(msg, m.Keys.Manual):
		return m.enterManualMode()
	}

	var cmd tea.Cmd
	m.InstanceList, cmd = m.InstanceList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) enterManualMode() (tea.Model, tea.Cmd) {
	m.ManualMode = true
	m.ManualErr = ""
	m.AddressInput.SetValue("")
	return m, m.AddressInput.Focus()
}

// updateManualMode handles keyboard input in manual address entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.AddressInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		inst, err := ParseAddress(m.AddressInput.Value())
		if err != nil {
			m.ManualErr = kiosk.GetShortErrorMessage(err)
			return m, nil
		}
		items := append([]list.Item{instanceItem{instance: inst}}, m.InstanceList.Items()...)
		m.InstanceList.SetItems(items)
		m.InstanceList.Select(0)
		m.ManualMode = false
		m.AddressInput.Blur()
		return m, nil
	}

	m.AddressInput, cmd = m.AddressInput.Update(msg)
	return m, cmd
}

// ParseAddress turns "host" or "host:port" into an Instance. The port
// defaults to the editor's default port.
func ParseAddress(address string) (*discovery.Instance, error) {
	address = strings.TrimSpace(address)
	address = strings.TrimPrefix(address, "http://")
	address = strings.TrimSuffix(address, "/")
	if address == "" {
		return nil, kiosk.NewInputError("address", "address is required")
	}

	host, port := address, config.DefaultPort
	if h, p, err := net.SplitHostPort(address); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, kiosk.NewInputError("address", fmt.Sprintf("invalid port %q", p))
		}
		host, port = h, n
	}
	if host == "" {
		return nil, kiosk.NewInputError("address", "host is required")
	}

	return &discovery.Instance{
		Name:         "Manual: " + host,
		Hostname:     host,
		IP:           host,
		Port:         port,
		DiscoveredAt: time.Now(),
	}, nil
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, "", m.Width, m.Height)
}

// renderScanning renders a centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	percent := min(elapsed.Seconds()/ScanTimeout.Seconds(), 1)

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		RenderTitle(fmt.Sprintf("%s SEARCHING FOR EDITORS", m.Spinner.View())),
		"",
		RenderSubtitle("Listening for kioskcfg serve --advertise on the local network..."),
		"",
		m.ProgressBar.ViewAs(percent),
		"",
		RenderSubtitle(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
		"",
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults renders the instance list or "no editors found" message
func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	troubleshooting := func() {
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Start an editor with 'kioskcfg serve --advertise'\n")
		b.WriteString("    • Make sure both machines are on the same network segment\n")
		b.WriteString("    • Firewalls must allow mDNS (UDP 5353)\n")
		b.WriteString("    • Press 'm' to enter an address directly\n")
	}

	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		troubleshooting()

	case len(m.InstanceList.Items()) == 0:
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString("  ")
		b.WriteString(warningStyle.Render("⚠ No editors found on your network"))
		b.WriteString("\n\n")
		troubleshooting()

	default:
		if m.PullErr != nil {
			b.WriteString(RenderError("Could not open editor: " + kiosk.GetShortErrorMessage(m.PullErr)))
			b.WriteString("\n\n")
		}
		b.WriteString(m.InstanceList.View())
	}

	return b.String()
}

// renderManualEntry renders the manual address dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter the editor address"))
	b.WriteString("\n\n")
	b.WriteString("  Address: ")
	b.WriteString(m.AddressInput.View())
	b.WriteString("\n\n")
	if m.ManualErr != "" {
		b.WriteString("  ")
		b.WriteString(StatusErrorStyle.Render("✗ " + m.ManualErr))
		b.WriteString("\n")
	}

	return b.String()
}

// SelectedInstance returns the chosen editor, if any
func (m DiscoveryModel) SelectedInstance() *discovery.Instance {
	if !m.Selected {
		return nil
	}
	if item, ok := m.InstanceList.SelectedItem().(instanceItem); ok {
		return item.instance
	}
	return nil
}

// scanInstances performs discovery
func scanInstances() tea.Msg {
	instances, err := discovery.Scan(context.Background(), ScanTimeout)
	return scanCompleteMsg{instances: instances, err: err}
}
