// Package session holds the single selected device and keeps it consistent
// with the adapter state: while the adapter is disabled no device is
// selected.
//
// Mutations are expected to run on the serialized dispatch context; readers
// may call Snapshot from any goroutine.
package session

import (
	"sync"

	"btclassic/internal/adapter"
	"btclassic/internal/device"
	"btclassic/pkg/logging"
)

const subsystem = "session"

// Snapshot is an immutable view of the session published to observers.
type Snapshot struct {
	Enabled bool
	Device  *device.Device
}

// Active reports whether a device is selected.
func (s Snapshot) Active() bool {
	return s.Device != nil
}

// State is the session state. The zero value is not usable; use New.
type State struct {
	adapter *adapter.State

	mu        sync.Mutex
	device    *device.Device
	observers map[int]func(Snapshot)
	nextID    int
}

// New creates a session backed by the shared adapter state.
func New(as *adapter.State) *State {
	return &State{
		adapter:   as,
		observers: make(map[int]func(Snapshot)),
	}
}

// SetDevice selects d, or clears the selection when d is nil. Selecting a
// device while the adapter is disabled is refused and leaves the selection
// empty.
func (s *State) SetDevice(d *device.Device) {
	s.mu.Lock()
	if d != nil && !s.adapter.Enabled() {
		cleared := s.device != nil
		s.device = nil
		s.mu.Unlock()
		logging.Warn(subsystem, "Refusing to select %s while the adapter is disabled", d)
		if cleared {
			s.publish()
		}
		return
	}
	if s.device == d {
		s.mu.Unlock()
		return
	}
	s.device = d
	s.mu.Unlock()

	if d == nil {
		logging.Info(subsystem, "Device released")
	} else {
		logging.Info(subsystem, "Device selected: %s", d)
	}
	s.publish()
}

// OnAdapterStateChanged records the new adapter state. Disabling clears any
// selected device; enabling leaves the selection as it is.
func (s *State) OnAdapterStateChanged(enabled bool) {
	s.mu.Lock()
	changed := s.adapter.Set(enabled)
	var dropped *device.Device
	if !enabled && s.device != nil {
		dropped = s.device
		s.device = nil
	}
	s.mu.Unlock()

	if dropped != nil {
		logging.Info(subsystem, "Adapter disabled, dropping device %s", dropped)
	}
	if changed || dropped != nil {
		s.publish()
	}
}

// Device returns the selected device or nil.
func (s *State) Device() *device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Enabled returns the adapter state as seen by the session.
func (s *State) Enabled() bool {
	return s.adapter.Enabled()
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{Enabled: s.adapter.Enabled(), Device: s.device}
}

// Subscribe registers fn to be called with a fresh snapshot after every
// change. The returned func removes the observer.
func (s *State) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *State) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
