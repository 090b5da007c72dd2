package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/presets"
)

// Message types for async operations
type saveCompleteMsg struct {
	err      error
	duration time.Duration
}

// EditorOptions configures an EditorModel.
type EditorOptions struct {
	Store   *kiosk.Store
	Catalog *presets.Catalog

	// Source is shown in the header, e.g. the project file or editor URL
	Source string

	// Save persists the configuration. It runs off the UI goroutine.
	// Nil disables saving.
	Save func(cfg *kiosk.Configuration) error
}

// editorKeyMap defines key bindings for the editor screen
type editorKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Tab        key.Binding
	Enter      key.Binding
	Delete     key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Regenerate key.Binding
	Scenario   key.Binding
	Scroll     key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Delete, k.Scenario, k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tab, k.Enter},
		{k.Delete, k.MoveUp, k.MoveDown, k.Regenerate},
		{k.Scenario, k.Scroll, k.Save, k.Quit},
	}
}

// inputKeyMap defines key bindings while a text field is being edited
type inputKeyMap struct {
	Complete key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Complete, k.Confirm, k.Cancel}}
}

// EditorModel edits a configuration held in a kiosk.Store, with the
// generated document and its validation problems previewed alongside.
type EditorModel struct {
	store   *kiosk.Store
	catalog *presets.Catalog
	save    func(cfg *kiosk.Configuration) error
	Source  string

	// Configuration state
	Config *kiosk.Configuration
	Fields []Field
	Errors []error

	// Navigation
	Cursor int

	// Text entry state
	Editing         bool
	EditingScenario bool
	Input           textinput.Model

	// Status line
	Status    string
	StatusErr bool

	// Change tracking
	Dirty       bool
	ConfirmQuit bool
	Saving      bool
	LastSaved   time.Time

	// UI state
	Width       int
	Height      int
	ShowingHelp bool
	Preview     viewport.Model
	Spinner     spinner.Model
	Help        help.Model
	Keys        editorKeyMap
	InputKeys   inputKeyMap
}

// NewEditorModel creates an editor over opts.Store.
func NewEditorModel(opts EditorOptions) EditorModel {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = presets.Builtin()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.CharLimit = 512
	input.Width = 50
	input.ShowSuggestions = true
	input.PromptStyle = FocusedInputStyle

	keys := editorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next section"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "edit/toggle"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("K", "move pin up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("J", "move pin down"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "new profile GUID"),
		),
		Scenario: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "load scenario"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("pgup/pgdn", "scroll preview"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	inputKeys := inputKeyMap{
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	m := EditorModel{
		store:     opts.Store,
		catalog:   catalog,
		save:      opts.Save,
		Source:    opts.Source,
		Input:     input,
		Preview:   viewport.New(0, 0),
		Spinner:   s,
		Help:      help.New(),
		Keys:      keys,
		InputKeys: inputKeys,
	}
	m.refresh()
	return m
}

// Init initializes the editor model
func (m EditorModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resizePreview()
		return m, nil

	case saveCompleteMsg:
		m.Saving = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.Dirty = false
		m.LastSaved = time.Now()
		m.setStatus(fmt.Sprintf("✓ Saved in %s", msg.duration.Round(time.Millisecond)))
		return m, nil

	case spinner.TickMsg:
		if !m.Saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if m.ShowingHelp {
		return m.updateHelpModal(msg)
	}
	if m.Editing {
		return m.updateInput(msg)
	}
	return m.updateNormalMode(msg)
}

// updateNormalMode handles input while navigating the field list
func (m EditorModel) updateNormalMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if !key.Matches(keyMsg, m.Keys.Quit) {
		m.ConfirmQuit = false
	}

	switch {
	case key.Matches(keyMsg, m.Keys.Quit):
		if m.Dirty && !m.ConfirmQuit && m.save != nil {
			m.ConfirmQuit = true
			m.setStatus("Unsaved changes. Press q again to quit without saving.")
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(keyMsg, m.Keys.Up):
		m.Cursor--
		if m.Cursor < 0 {
			m.Cursor = len(m.Fields) - 1
		}

	case key.Matches(keyMsg, m.Keys.Down):
		m.Cursor++
		if m.Cursor >= len(m.Fields) {
			m.Cursor = 0
		}

	case key.Matches(keyMsg, m.Keys.Tab):
		m.Cursor = nextSection(m.Fields, m.Cursor)

	case key.Matches(keyMsg, m.Keys.Enter):
		return m.startEditing()

	case key.Matches(keyMsg, m.Keys.Delete):
		f := m.current()
		switch f.Kind {
		case FieldAllowedApp:
			m.dispatch(kiosk.RemoveApp{Index: f.Index})
		case FieldStartPin:
			m.dispatch(kiosk.RemovePin{Index: f.Index})
		}

	case key.Matches(keyMsg, m.Keys.MoveUp), key.Matches(keyMsg, m.Keys.MoveDown):
		f := m.current()
		if f.Kind != FieldStartPin {
			return m, nil
		}
		delta := 1
		if key.Matches(keyMsg, m.Keys.MoveUp) {
			delta = -1
		}
		if m.dispatch(kiosk.MovePin{Index: f.Index, Delta: delta}) {
			m.Cursor = m.fieldIndex(FieldStartPin, f.Index+delta)
		}

	case key.Matches(keyMsg, m.Keys.Regenerate):
		m.dispatch(kiosk.RegenerateProfileID{})

	case key.Matches(keyMsg, m.Keys.Scenario):
		names := make([]string, len(presets.Scenarios))
		for i, s := range presets.Scenarios {
			names[i] = string(s)
		}
		m.EditingScenario = true
		return m.openInput("", "scenario: "+strings.Join(names, ", "), names)

	case key.Matches(keyMsg, m.Keys.Save):
		return m.startSave()

	case key.Matches(keyMsg, m.Keys.Help):
		m.ShowingHelp = true

	case keyMsg.String() == "pgup":
		m.Preview.HalfViewUp()
	case keyMsg.String() == "pgdown":
		m.Preview.HalfViewDown()
	}

	return m, nil
}

// startEditing opens a text input for editable fields and applies the
// cycle or toggle command for the rest
func (m EditorModel) startEditing() (tea.Model, tea.Cmd) {
	f := m.current()
	if f.Editable() {
		return m.openInput(InitialText(f, m.Config), f.Label, Suggestions(f, m.catalog))
	}
	if cmd := CycleCommand(f, m.Config); cmd != nil {
		m.dispatch(cmd)
	}
	return m, nil
}

func (m EditorModel) openInput(value, placeholder string, suggestions []string) (tea.Model, tea.Cmd) {
	m.Editing = true
	m.Input.SetValue(value)
	m.Input.Placeholder = placeholder
	m.Input.SetSuggestions(suggestions)
	m.Input.CursorEnd()
	return m, m.Input.Focus()
}

func (m *EditorModel) closeInput() {
	m.Editing = false
	m.EditingScenario = false
	m.Input.Blur()
	m.Input.SetValue("")
	m.Input.SetSuggestions(nil)
}

// updateInput handles input while a text field is being edited
func (m EditorModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.InputKeys.Cancel):
			m.closeInput()
			return m, nil

		case key.Matches(keyMsg, m.InputKeys.Confirm):
			value := m.Input.Value()
			scenario := m.EditingScenario
			m.closeInput()
			if scenario {
				m.loadScenario(value)
				return m, nil
			}
			f := m.current()
			cmd, err := TextCommand(f, m.Config, m.catalog, value)
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.dispatch(cmd)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m *EditorModel) loadScenario(name string) {
	s := presets.Scenario(strings.TrimSpace(name))
	if !slices.Contains(presets.Scenarios, s) {
		m.setError(kiosk.NewPresetError(fmt.Sprintf("unknown scenario %q", name)))
		return
	}
	if m.dispatch(presets.LoadScenario{Name: s}.With(m.catalog)) {
		m.Cursor = 0
		m.setStatus("Loaded scenario: " + s.Description())
	}
}

// startSave persists the current snapshot asynchronously
func (m EditorModel) startSave() (tea.Model, tea.Cmd) {
	if m.save == nil {
		m.setStatus("Saving is not available in this session")
		return m, nil
	}
	if m.Saving {
		return m, nil
	}
	m.Saving = true
	m.setStatus("Saving...")
	return m, tea.Batch(saveCmd(m.save, m.store.Snapshot()), m.Spinner.Tick)
}

func saveCmd(save func(*kiosk.Configuration) error, cfg *kiosk.Configuration) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := save(cfg)
		return saveCompleteMsg{err: err, duration: time.Since(start)}
	}
}

// updateHelpModal handles input when help modal is visible
func (m EditorModel) updateHelpModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		// Any key closes the help modal
		m.ShowingHelp = false
	}
	return m, nil
}

// dispatch applies cmd to the store and reports whether it succeeded
func (m *EditorModel) dispatch(cmd kiosk.Command) bool {
	if err := m.store.Dispatch(cmd); err != nil {
		logging.Debug("Editor command rejected",
			zap.String("command", kiosk.CommandName(cmd)),
			zap.Error(err),
		)
		m.setError(err)
		return false
	}
	m.Dirty = true
	m.setStatus("")
	m.refresh()
	return true
}

// refresh rebuilds the field list and preview from the store
func (m *EditorModel) refresh() {
	m.Config = m.store.Snapshot()
	m.Fields = BuildFields(m.Config)
	m.Errors = kiosk.Validate(m.Config)
	m.Cursor = min(m.Cursor, len(m.Fields)-1)
	m.Preview.SetContent(codec.Encode(m.Config))
}

func (m *EditorModel) setStatus(s string) {
	m.Status = s
	m.StatusErr = false
}

func (m *EditorModel) setError(err error) {
	m.Status = "✗ " + kiosk.GetShortErrorMessage(err)
	m.StatusErr = true
}

func (m EditorModel) current() Field {
	if m.Cursor < 0 || m.Cursor >= len(m.Fields) {
		return Field{Kind: -1}
	}
	return m.Fields[m.Cursor]
}

// fieldIndex finds the row for the index-th entry of a list field
func (m EditorModel) fieldIndex(kind FieldKind, index int) int {
	for i, f := range m.Fields {
		if f.Kind == kind && f.Index == index {
			return i
		}
	}
	return m.Cursor
}

// nextSection returns the first row of the section after the one at cursor
func nextSection(fields []Field, cursor int) int {
	if len(fields) == 0 {
		return 0
	}
	section := fields[cursor].Section
	for i := cursor + 1; i < len(fields); i++ {
		if fields[i].Section != section {
			return i
		}
	}
	return 0
}

// Layout helpers
const (
	fieldColumnWidth = 58
	chromeHeight     = 8 // container border, header and footer
)

func (m *EditorModel) resizePreview() {
	width := max(m.Width, MinTerminalWidth)
	m.Preview.Width = max(width-fieldColumnWidth-10, 30)
	m.Preview.Height = max(m.Height-chromeHeight-4, 5)
}

// View renders the editor
func (m EditorModel) View() string {
	if m.ShowingHelp {
		return RenderModal(m.renderHelpModalContent(), m.Width, m.Height)
	}

	helpText := m.Help.View(m.Keys)
	if m.Editing {
		helpText = m.Help.View(m.InputKeys)
	}
	return RenderApplicationContainer(m.renderContent(), helpText, m.Source, m.Width, m.Height)
}

// renderContent renders the field list next to the preview
func (m EditorModel) renderContent() string {
	fields := lipgloss.NewStyle().Width(fieldColumnWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.renderTitleLine(),
			m.renderFieldList(),
			"",
			m.renderStatusLine(),
		),
	)

	preview := lipgloss.JoinVertical(lipgloss.Left,
		m.renderProblems(),
		PreviewStyle.Render(m.Preview.View()),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, fields, "  ", preview)
}

func (m EditorModel) renderTitleLine() string {
	title := lipgloss.NewStyle().Foreground(TextColor).Bold(true).
		Render(orPlaceholder(m.Config.Name, "Unnamed configuration"))
	if m.Dirty {
		title += "  " + lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render("⚠ MODIFIED")
	}
	return title
}

// renderFieldList renders the rows in a window that keeps the cursor visible
func (m EditorModel) renderFieldList() string {
	var lines []string
	cursorLine := 0
	section := ""

	for i, f := range m.Fields {
		if f.Section != section {
			section = f.Section
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, SectionStyle.UnsetMarginTop().Render(section))
		}
		if i == m.Cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderField(f, i == m.Cursor))
	}

	visible := max(m.Height-chromeHeight-6, 8)
	if len(lines) <= visible {
		return strings.Join(lines, "\n")
	}
	start := min(max(cursorLine-visible/2, 0), len(lines)-visible)
	return strings.Join(lines[start:start+visible], "\n")
}

// renderField renders one row
// Format: "→ Label             Value" when selected
func (m EditorModel) renderField(f Field, selected bool) string {
	if selected && m.Editing && !m.EditingScenario {
		return lipgloss.JoinHorizontal(lipgloss.Left,
			"→ ",
			FieldLabelStyle.Render(f.Label),
			m.Input.View(),
		)
	}

	labelStyle := FieldLabelStyle
	valueStyle := FieldValueStyle
	arrow := "  "
	if selected {
		labelStyle = labelStyle.Foreground(HighlightColor).Bold(true)
		valueStyle = SelectedFieldStyle
		arrow = "→ "
	}

	return lipgloss.JoinHorizontal(lipgloss.Left,
		arrow,
		labelStyle.Render(f.Label),
		valueStyle.Render(f.Value),
	)
}

func (m EditorModel) renderStatusLine() string {
	switch {
	case m.EditingScenario:
		return "Scenario: " + m.Input.View()
	case m.Saving:
		return m.Spinner.View() + " " + m.Status
	case m.StatusErr:
		return StatusErrorStyle.Render(m.Status)
	case m.Status != "":
		return StatusOKStyle.Render(m.Status)
	case !m.LastSaved.IsZero():
		return SubtitleStyle.Render("Last saved " + m.LastSaved.Format("15:04:05"))
	}
	return ""
}

func (m EditorModel) renderProblems() string {
	if len(m.Errors) == 0 {
		return StatusOKStyle.Render("✓ Configuration is valid")
	}
	lines := []string{StatusErrorStyle.Render(fmt.Sprintf("✗ %d problem(s)", len(m.Errors)))}
	for _, err := range m.Errors {
		lines = append(lines, ProblemStyle.Render("  • "+kiosk.GetShortErrorMessage(err)))
	}
	return strings.Join(lines, "\n")
}

// renderHelpModalContent renders the key reference
func (m EditorModel) renderHelpModalContent() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)
	title := titleStyle.Render("EDITOR HELP")

	subtitleStyle := lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	fields := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Fields:"),
		"  enter on a choice cycles it, on a switch toggles it",
		"  enter on an allowed app makes it the auto-launch app",
		"  + rows accept a preset key (tab completes) or a path/AUMID",
		"  d removes the app or pin under the cursor",
		"  K/J move a Start pin up or down",
		"  g generates a new profile GUID",
	)

	scenarios := []string{subtitleStyle.Render("Scenarios (l):")}
	for _, s := range presets.Scenarios {
		scenarios = append(scenarios, fmt.Sprintf("  %-16s %s", s, s.Description()))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		fields,
		"",
		lipgloss.JoinVertical(lipgloss.Left, scenarios...),
		"",
		m.Help.FullHelpView(m.Keys.FullHelp()),
		"",
		"Press any key to close this help screen",
	)

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2).
		Width(SafeModalWidth(76, m.Width))

	return modalStyle.Render(content)
}
