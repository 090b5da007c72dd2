package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/kioskcfg/internal/discovery"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/presets"
	"github.com/muurk/kioskcfg/internal/server"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenEditor    Screen = "editor"
)

// pullCompleteMsg carries the configuration fetched from a remote editor
type pullCompleteMsg struct {
	instance *discovery.Instance
	config   *kiosk.Configuration
	err      error
}

// Options configures the application.
type Options struct {
	Store   *kiosk.Store
	Catalog *presets.Catalog

	// Source names where the configuration came from, e.g. a project file
	Source string

	// Save persists the configuration. When the configuration is pulled
	// from a remote editor, saving pushes it back there instead.
	Save func(cfg *kiosk.Configuration) error

	// Discover starts on the discovery screen
	Discover bool
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	opts Options

	// Current screen state
	CurrentScreen Screen

	// Screen models
	DiscoveryModel DiscoveryModel
	EditorModel    EditorModel

	// Shared application state
	SelectedInstance *discovery.Instance
	Pulling          bool
	LastError        error

	// UI state
	Width  int
	Height int
}

// NewAppModel creates the application model
func NewAppModel(opts Options) AppModel {
	if opts.Catalog == nil {
		opts.Catalog = presets.Builtin()
	}
	if opts.Store == nil {
		opts.Store = kiosk.NewStore(nil)
	}

	m := AppModel{opts: opts, CurrentScreen: ScreenEditor}
	if opts.Discover {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel()
	} else {
		m.EditorModel = NewEditorModel(m.editorOptions(opts.Source, opts.Save))
	}
	return m
}

// Run starts the application in the alternate screen and blocks until it exits
func Run(opts Options) error {
	_, err := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen()).Run()
	return err
}

func (m AppModel) editorOptions(source string, save func(*kiosk.Configuration) error) EditorOptions {
	return EditorOptions{
		Store:   m.opts.Store,
		Catalog: m.opts.Catalog,
		Source:  source,
		Save:    save,
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenEditor:
		return m.EditorModel.Init()
	}
	return nil
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case pullCompleteMsg:
		return m.openPulled(msg)
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.DiscoveryModel.ManualMode && !m.Pulling &&
			m.DiscoveryModel.InstanceList.FilterState() != list.Filtering {
			if keyMsg.String() == "q" || keyMsg.String() == "esc" {
				return m, tea.Quit
			}
		}

		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		if inst := m.DiscoveryModel.SelectedInstance(); inst != nil && !m.Pulling {
			m.DiscoveryModel.Selected = false
			m.SelectedInstance = inst
			m.Pulling = true
			m.LastError = nil
			m.DiscoveryModel.PullErr = nil
			return m, tea.Batch(cmd, pullCmd(inst))
		}

	case ScreenEditor:
		updated, c := m.EditorModel.Update(msg)
		m.EditorModel = updated.(EditorModel)
		cmd = c
	}

	return m, cmd
}

// pullCmd fetches the configuration of a remote editor
func pullCmd(inst *discovery.Instance) tea.Cmd {
	return func() tea.Msg {
		cfg, err := server.NewClient(inst.BaseURL()).State(context.Background())
		return pullCompleteMsg{instance: inst, config: cfg, err: err}
	}
}

// openPulled loads a pulled configuration and switches to the editor
func (m AppModel) openPulled(msg pullCompleteMsg) (tea.Model, tea.Cmd) {
	m.Pulling = false
	if msg.err == nil {
		msg.err = m.opts.Store.Dispatch(kiosk.Replace{Config: msg.config})
	}
	if msg.err != nil {
		logging.Warn("Failed to pull configuration",
			zap.String("editor", msg.instance.BaseURL()),
			zap.Error(msg.err),
		)
		m.LastError = msg.err
		m.DiscoveryModel.PullErr = msg.err
		return m, nil
	}

	logging.Info("Pulled configuration from editor",
		zap.String("editor", msg.instance.BaseURL()),
		zap.String("name", msg.config.Name),
	)

	client := server.NewClient(msg.instance.BaseURL())
	push := func(cfg *kiosk.Configuration) error {
		_, err := client.Push(context.Background(), cfg)
		return err
	}

	m.EditorModel = NewEditorModel(m.editorOptions(msg.instance.BaseURL(), push))
	m.CurrentScreen = ScreenEditor
	updated, _ := m.EditorModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
	m.EditorModel = updated.(EditorModel)
	return m, m.EditorModel.Init()
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		if m.Pulling {
			content := fmt.Sprintf("\n  Fetching configuration from %s...", m.SelectedInstance.BaseURL())
			return RenderApplicationContainer(content, "ctrl+c quit", "", m.Width, m.Height)
		}
		return m.DiscoveryModel.View()
	case ScreenEditor:
		return m.EditorModel.View()
	}
	return "Unknown screen"
}
