// Package adaptertest provides an in-memory adapter.Provider for tests.
package adaptertest

import (
	"context"
	"sync"

	"btclassic/internal/adapter"
)

type handler struct {
	enabled bool
	fn      func(adapter.Event)
}

type probeResult struct {
	enabled bool
	err     error
}

// Provider is a controllable adapter.Provider. It counts registrations and
// releases so tests can check that subscriptions are released symmetrically.
type Provider struct {
	mu         sync.Mutex
	handlers   map[int]handler
	nextID     int
	registered int
	released   int

	enabled     bool
	probeErr    error
	registerErr error
	probe       chan probeResult
}

// New returns a provider whose probe answers enabled immediately.
func New(enabled bool) *Provider {
	return &Provider{handlers: make(map[int]handler), enabled: enabled}
}

// FailProbe makes IsEnabled return err.
func (p *Provider) FailProbe(err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probeErr = err
	return p
}

// FailRegister makes OnEnabled and OnDisabled return err.
func (p *Provider) FailRegister(err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registerErr = err
	return p
}

// Blocking makes IsEnabled wait until Resolve is called or its context ends.
func (p *Provider) Blocking() *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probe = make(chan probeResult, 1)
	return p
}

// Resolve completes a blocked probe.
func (p *Provider) Resolve(enabled bool, err error) {
	p.mu.Lock()
	ch := p.probe
	p.mu.Unlock()
	ch <- probeResult{enabled: enabled, err: err}
}

// IsEnabled implements adapter.Provider.
func (p *Provider) IsEnabled(ctx context.Context) (bool, error) {
	p.mu.Lock()
	ch, enabled, err := p.probe, p.enabled, p.probeErr
	p.mu.Unlock()
	if ch == nil {
		return enabled, err
	}
	select {
	case res := <-ch:
		return res.enabled, res.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// OnEnabled implements adapter.Provider.
func (p *Provider) OnEnabled(h func(adapter.Event)) (adapter.Subscription, error) {
	return p.register(true, h)
}

// OnDisabled implements adapter.Provider.
func (p *Provider) OnDisabled(h func(adapter.Event)) (adapter.Subscription, error) {
	return p.register(false, h)
}

func (p *Provider) register(enabled bool, fn func(adapter.Event)) (adapter.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registerErr != nil {
		return nil, p.registerErr
	}
	p.nextID++
	id := p.nextID
	p.handlers[id] = handler{enabled: enabled, fn: fn}
	p.registered++
	return &subscription{p: p, id: id}, nil
}

// Fire delivers an event to every live handler of the matching kind, on the
// caller's goroutine.
func (p *Provider) Fire(enabled bool) {
	p.mu.Lock()
	var fns []func(adapter.Event)
	for _, h := range p.handlers {
		if h.enabled == enabled {
			fns = append(fns, h.fn)
		}
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(adapter.Event{Enabled: enabled})
	}
}

// Counts returns how many registrations and releases were made.
func (p *Provider) Counts() (registered, released int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registered, p.released
}

// Live returns the number of registrations not yet released.
func (p *Provider) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handlers)
}

type subscription struct {
	p  *Provider
	id int
}

// Release counts every call so double releases show up in Counts.
func (s *subscription) Release() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	delete(s.p.handlers, s.id)
	s.p.released++
}
