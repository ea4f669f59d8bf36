package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btclassic/internal/adapter"
	"btclassic/internal/device"
	"btclassic/internal/dispatch"
	"btclassic/internal/router"
	"btclassic/internal/session"
	"btclassic/pkg/logging"
)

var testDevices = []device.Device{
	{ID: "/org/bluez/hci0/dev_98_D3_31_F5_1A_2B", Address: "98:D3:31:F5:1A:2B", Name: "HC-05"},
	{ID: "/org/bluez/hci0/dev_00_21_13_00_3F_9C", Address: "00:21:13:00:3F:9C", Alias: "Printer"},
}

func newTestModel(t *testing.T, enabled bool) (*Model, *session.State) {
	t.Helper()
	s := session.New(adapter.NewState(enabled))
	m := New(Deps{
		Router:  router.New(s, dispatch.Inline{}),
		Session: s,
		Scan: func(context.Context) ([]device.Device, error) {
			return testDevices, nil
		},
	})
	t.Cleanup(m.Close)
	return m, s
}

// drain feeds pending session snapshots into the model.
func drain(m *Model) {
	for {
		select {
		case snap := <-m.snapshots:
			m.Update(snapshotMsg(snap))
		default:
			return
		}
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSelectAndBack(t *testing.T) {
	m, s := newTestModel(t, true)
	m.Update(scanDoneMsg{devices: testDevices})
	assert.Equal(t, router.SelectionView, m.view.Kind)
	assert.Contains(t, m.View(), "HC-05")
	assert.Contains(t, m.View(), "Printer")

	m.Update(keyRune('j'))
	assert.Equal(t, 1, m.cursor)
	m.Update(keyRune('j'))
	assert.Equal(t, 1, m.cursor, "cursor stops at the last device")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, s.Device())
	assert.Equal(t, testDevices[1].ID, s.Device().ID)

	drain(m)
	assert.Equal(t, router.ConnectionView, m.view.Kind)
	assert.Contains(t, m.View(), "00:21:13:00:3F:9C")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, s.Device())
	drain(m)
	assert.Equal(t, router.SelectionView, m.view.Kind)
}

func TestSelectRefusedWhileDisabled(t *testing.T) {
	m, s := newTestModel(t, false)
	m.Update(scanDoneMsg{devices: testDevices})

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, s.Device())
	assert.Contains(t, m.View(), "Bluetooth is turned off")
}

func TestAdapterDisableReturnsToSelection(t *testing.T) {
	m, s := newTestModel(t, true)
	m.Update(scanDoneMsg{devices: testDevices})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(m)
	require.Equal(t, router.ConnectionView, m.view.Kind)

	s.OnAdapterStateChanged(false)
	drain(m)
	assert.Equal(t, router.SelectionView, m.view.Kind)
	assert.False(t, m.view.Selection.AdapterEnabled)
}

func TestPublishKeepsNewestSnapshot(t *testing.T) {
	m, _ := newTestModel(t, true)
	for i := 0; i < cap(m.snapshots)+5; i++ {
		m.publish(session.Snapshot{Enabled: i%2 == 0})
	}
	last := session.Snapshot{Enabled: false, Device: &testDevices[0]}
	m.publish(last)

	var got session.Snapshot
	for len(m.snapshots) > 0 {
		got = <-m.snapshots
	}
	assert.Equal(t, last, got)
}

func TestScanResults(t *testing.T) {
	m, _ := newTestModel(t, true)
	m.Init()
	assert.True(t, m.scanning)
	assert.Contains(t, m.View(), "Scanning")

	m.cursor = 5
	m.Update(scanDoneMsg{err: errors.New("adapter busy")})
	assert.False(t, m.scanning)
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "Scan failed: adapter busy")

	m.Update(scanDoneMsg{})
	assert.Contains(t, m.View(), "No SPP devices found")

	_, cmd := m.Update(keyRune('r'))
	assert.NotNil(t, cmd)
	assert.True(t, m.scanning)
}

func TestQuitAndLog(t *testing.T) {
	m, _ := newTestModel(t, true)

	m.Update(logMsg{Level: logging.LevelWarn, Subsystem: "adapter", Message: "probe failed", Err: errors.New("no adapter")})
	assert.Contains(t, m.View(), "adapter: probe failed: no adapter")

	_, cmd := m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
