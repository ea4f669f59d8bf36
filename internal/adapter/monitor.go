package adapter

import (
	"context"
	"sync/atomic"

	"btclassic/internal/dispatch"
	"btclassic/pkg/logging"
)

const subsystem = "adapter"

// Subscriptions is the handle returned by Monitor.Start. It owns the two
// provider registrations and the in-flight status probe.
type Subscriptions struct {
	enabled   Subscription
	disabled  Subscription
	cancel    context.CancelFunc
	stopped   atomic.Bool
	probeDone chan struct{}
}

// ProbeDone is closed once the initial status probe has finished and its
// result was handed to the dispatcher (or dropped after Stop).
func (s *Subscriptions) ProbeDone() <-chan struct{} {
	return s.probeDone
}

// Live reports how many provider registrations the handle still holds.
func (s *Subscriptions) Live() int {
	if s.stopped.Load() {
		return 0
	}
	n := 0
	if s.enabled != nil {
		n++
	}
	if s.disabled != nil {
		n++
	}
	return n
}

// Monitor subscribes to adapter state changes and forwards them to a sink.
type Monitor struct {
	provider   Provider
	sink       StateSink
	dispatcher dispatch.Dispatcher
}

// NewMonitor creates a monitor. All sink calls go through d.
func NewMonitor(p Provider, sink StateSink, d dispatch.Dispatcher) *Monitor {
	return &Monitor{provider: p, sink: sink, dispatcher: d}
}

// Start registers the enabled and disabled handlers and launches the initial
// status probe. It never fails: a missing capability degrades to a disabled
// adapter and is only logged.
func (m *Monitor) Start(ctx context.Context) *Subscriptions {
	probeCtx, cancel := context.WithCancel(ctx)
	subs := &Subscriptions{
		cancel:    cancel,
		probeDone: make(chan struct{}),
	}

	var err error
	subs.enabled, err = m.provider.OnEnabled(func(ev Event) {
		m.deliver(subs, ev.Enabled, "enabled event")
	})
	if err != nil {
		logging.WarnErr(subsystem, err, "Could not register enabled handler")
	}
	subs.disabled, err = m.provider.OnDisabled(func(ev Event) {
		m.deliver(subs, ev.Enabled, "disabled event")
	})
	if err != nil {
		logging.WarnErr(subsystem, err, "Could not register disabled handler")
	}
	logging.Debug(subsystem, "Registered %d adapter handlers", subs.Live())

	go m.probe(probeCtx, subs)
	return subs
}

// Stop releases both registrations and cancels the probe. Results that
// arrive afterwards are dropped. Do not call Stop twice for the same handle.
func (m *Monitor) Stop(subs *Subscriptions) {
	subs.stopped.Store(true)
	subs.cancel()
	if subs.enabled != nil {
		subs.enabled.Release()
	}
	if subs.disabled != nil {
		subs.disabled.Release()
	}
	logging.Debug(subsystem, "Released adapter handlers")
}

func (m *Monitor) probe(ctx context.Context, subs *Subscriptions) {
	defer close(subs.probeDone)

	logging.Debug(subsystem, "Checking adapter status")
	enabled, err := m.provider.IsEnabled(ctx)
	if err != nil {
		if subs.stopped.Load() {
			return
		}
		// Unknown is treated as disabled.
		logging.WarnErr(subsystem, err, "Adapter status probe failed, treating adapter as disabled")
		enabled = false
	} else {
		logging.Info(subsystem, "Adapter status: enabled=%v", enabled)
	}
	m.deliver(subs, enabled, "probe")
}

func (m *Monitor) deliver(subs *Subscriptions, enabled bool, source string) {
	if subs.stopped.Load() {
		logging.Debug(subsystem, "Dropping %s after stop", source)
		return
	}
	m.dispatcher.Dispatch(func() {
		if subs.stopped.Load() {
			return
		}
		logging.Debug(subsystem, "Applying %s: enabled=%v", source, enabled)
		m.sink.OnAdapterStateChanged(enabled)
	})
}
