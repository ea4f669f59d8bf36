// Package lifecycle owns the adapter subscriptions for the lifetime of the
// application: one acquire at startup and one release at teardown.
package lifecycle

import (
	"context"
	"errors"
	"sync"

	"btclassic/internal/adapter"
	"btclassic/pkg/logging"
)

const subsystem = "lifecycle"

var (
	// ErrAlreadyStarted is returned by Start on a coordinator that was
	// started before. Coordinators are single use.
	ErrAlreadyStarted = errors.New("lifecycle: already started")
	// ErrNotRunning is returned by Stop when the coordinator is not running.
	ErrNotRunning = errors.New("lifecycle: not running")
)

// Phase is the coordinator state.
type Phase int

const (
	Stopped Phase = iota
	Starting
	Running
	Stopping
)

func (p Phase) String() string {
	switch p {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Monitor is implemented by *adapter.Monitor.
type Monitor interface {
	Start(ctx context.Context) *adapter.Subscriptions
	Stop(subs *adapter.Subscriptions)
}

// Coordinator drives Stopped → Starting → Running → Stopping → Stopped
// exactly once. It is the only holder of the subscriptions handle.
type Coordinator struct {
	monitor Monitor

	mu      sync.Mutex
	phase   Phase
	used    bool
	subs    *adapter.Subscriptions
	onPhase func(Phase)
}

// New creates a stopped coordinator.
func New(m Monitor) *Coordinator {
	return &Coordinator{monitor: m}
}

// OnPhase sets a hook called after every transition. Must be set before Start.
func (c *Coordinator) OnPhase(fn func(Phase)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPhase = fn
}

// Phase returns the current phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Subscriptions returns the live handle, or nil when not running.
func (c *Coordinator) Subscriptions() *adapter.Subscriptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs
}

// Start registers the adapter handlers and launches the status probe.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.used {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.used = true
	c.mu.Unlock()

	c.transition(Starting)
	subs := c.monitor.Start(ctx)

	c.mu.Lock()
	c.subs = subs
	c.mu.Unlock()
	c.transition(Running)
	return nil
}

// Stop releases the adapter handlers and discards the handle.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if c.phase != Running {
		c.mu.Unlock()
		return ErrNotRunning
	}
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	c.transition(Stopping)
	c.monitor.Stop(subs)
	c.transition(Stopped)
	return nil
}

func (c *Coordinator) transition(to Phase) {
	c.mu.Lock()
	from := c.phase
	c.phase = to
	hook := c.onPhase
	c.mu.Unlock()

	logging.Debug(subsystem, "%s -> %s", from, to)
	if hook != nil {
		hook(to)
	}
}
