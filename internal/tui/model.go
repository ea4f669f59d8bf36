// Package tui renders the selection and connection views with Bubble Tea.
// It only renders: state lives in the session, and every action goes back
// through the router.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"btclassic/internal/device"
	"btclassic/internal/router"
	"btclassic/internal/session"
	"btclassic/pkg/logging"
)

// ScanFunc runs one discovery pass.
type ScanFunc func(ctx context.Context) ([]device.Device, error)

// Deps are the collaborators the model renders and calls into.
type Deps struct {
	Router  *router.Router
	Session *session.State
	Scan    ScanFunc
	Logs    <-chan logging.LogEntry
}

type snapshotMsg session.Snapshot

type scanDoneMsg struct {
	devices []device.Device
	err     error
}

type logMsg logging.LogEntry

// Model is the root Bubble Tea model.
type Model struct {
	deps Deps

	snapshots   chan session.Snapshot
	unsubscribe func()

	snap session.Snapshot
	view router.View

	devices  []device.Device
	cursor   int
	scanning bool
	scanErr  error

	lastLog *logging.LogEntry

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	width   int
}

// New creates the model and subscribes it to session changes. Call Close
// once the program exits.
func New(deps Deps) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := &Model{
		deps:      deps,
		snapshots: make(chan session.Snapshot, 8),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   s,
	}
	m.snap = deps.Session.Snapshot()
	m.view = deps.Router.ViewFor(m.snap)
	m.unsubscribe = deps.Session.Subscribe(m.publish)
	return m
}

// publish runs on the event queue and must not block; the newest snapshot
// replaces an undelivered older one.
func (m *Model) publish(snap session.Snapshot) {
	for {
		select {
		case m.snapshots <- snap:
			return
		default:
		}
		select {
		case <-m.snapshots:
		default:
		}
	}
}

// Close removes the session observer.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.scanning = true
	return tea.Batch(
		m.waitForSnapshot(),
		m.waitForLog(),
		m.scan(),
		m.spinner.Tick,
	)
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-m.snapshots)
	}
}

func (m *Model) waitForLog() tea.Cmd {
	if m.deps.Logs == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-m.deps.Logs
		if !ok {
			return nil
		}
		return logMsg(entry)
	}
}

func (m *Model) scan() tea.Cmd {
	if m.deps.Scan == nil {
		return nil
	}
	return func() tea.Msg {
		devs, err := m.deps.Scan(context.Background())
		return scanDoneMsg{devices: devs, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		m.view = m.deps.Router.ViewFor(m.snap)
		return m, m.waitForSnapshot()

	case scanDoneMsg:
		m.scanning = false
		m.scanErr = msg.err
		if msg.err == nil {
			m.devices = msg.devices
		}
		if m.cursor >= len(m.devices) {
			m.cursor = 0
		}
		return m, nil

	case logMsg:
		entry := logging.LogEntry(msg)
		m.lastLog = &entry
		return m, m.waitForLog()

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.view.Kind {
	case router.ConnectionView:
		if key.Matches(msg, m.keys.Back) {
			m.view.Connection.OnBack()
		}

	case router.SelectionView:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.devices)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Rescan):
			if !m.scanning {
				m.scanning = true
				return m, tea.Batch(m.scan(), m.spinner.Tick)
			}
		case key.Matches(msg, m.keys.Select):
			props := m.view.Selection
			if props.AdapterEnabled && m.cursor < len(m.devices) {
				props.OnSelect(&m.devices[m.cursor])
			}
		}
	}
	return m, nil
}
