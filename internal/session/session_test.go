package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btclassic/internal/adapter"
	"btclassic/internal/device"
)

var hc05 = &device.Device{ID: "/org/bluez/hci0/dev_98_D3_31_F5_1A_2B", Address: "98:D3:31:F5:1A:2B", Name: "HC-05"}

func newEnabled() *State {
	return New(adapter.NewState(true))
}

func TestSetDevice(t *testing.T) {
	s := newEnabled()
	s.SetDevice(hc05)
	assert.Same(t, hc05, s.Device())
	assert.True(t, s.Snapshot().Active())

	s.SetDevice(nil)
	assert.Nil(t, s.Device())
	assert.False(t, s.Snapshot().Active())
}

func TestDisableClearsDevice(t *testing.T) {
	s := newEnabled()
	s.SetDevice(hc05)
	s.OnAdapterStateChanged(false)

	assert.Nil(t, s.Device())
	assert.False(t, s.Enabled())
}

func TestEnableDoesNotRestoreDevice(t *testing.T) {
	s := newEnabled()
	s.SetDevice(hc05)
	s.OnAdapterStateChanged(false)
	s.OnAdapterStateChanged(true)

	assert.Nil(t, s.Device())
	assert.True(t, s.Enabled())
}

func TestEnableKeepsSelection(t *testing.T) {
	s := newEnabled()
	s.SetDevice(hc05)
	s.OnAdapterStateChanged(true)
	assert.Same(t, hc05, s.Device())
}

func TestSetDeviceWhileDisabledIsRefused(t *testing.T) {
	s := New(adapter.NewState(false))
	var snaps []Snapshot
	s.Subscribe(func(snap Snapshot) { snaps = append(snaps, snap) })

	s.SetDevice(hc05)
	assert.Nil(t, s.Device())
	assert.Empty(t, snaps, "nothing changed, nothing published")
}

func TestObserversSeeEveryChange(t *testing.T) {
	s := newEnabled()
	var snaps []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) { snaps = append(snaps, snap) })

	s.SetDevice(hc05)
	s.SetDevice(hc05) // no change
	s.OnAdapterStateChanged(false)
	s.OnAdapterStateChanged(false) // no change
	s.OnAdapterStateChanged(true)

	require.Len(t, snaps, 3)
	assert.Equal(t, Snapshot{Enabled: true, Device: hc05}, snaps[0])
	assert.Equal(t, Snapshot{Enabled: false}, snaps[1])
	assert.Equal(t, Snapshot{Enabled: true}, snaps[2])

	cancel()
	s.SetDevice(hc05)
	assert.Len(t, snaps, 3)
}

func TestInvariantHoldsForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	devices := []*device.Device{nil, hc05, {ID: "/org/bluez/hci0/dev_00_11_22_33_44_55"}}

	for run := 0; run < 200; run++ {
		s := New(adapter.NewState(rng.Intn(2) == 0))
		s.Subscribe(func(snap Snapshot) {
			if !snap.Enabled {
				assert.Nil(t, snap.Device, "observer saw a device while disabled")
			}
		})
		for step := 0; step < 30; step++ {
			switch rng.Intn(3) {
			case 0:
				s.OnAdapterStateChanged(rng.Intn(2) == 0)
			case 1:
				s.SetDevice(devices[rng.Intn(len(devices))])
			case 2:
				s.SetDevice(nil)
			}
			snap := s.Snapshot()
			if !snap.Enabled {
				require.Nil(t, snap.Device, "run %d step %d", run, step)
			}
		}
	}
}
