//go:build linux

package bluez

import (
	"context"
	"sync"

	dbus "github.com/godbus/dbus/v5"

	"btclassic/internal/adapter"
	"btclassic/pkg/logging"
)

const subsystem = "bluez"

var _ adapter.Provider = (*Provider)(nil)

type handler struct {
	enabled bool
	fn      func(adapter.Event)
}

// Provider talks to BlueZ on the system bus.
type Provider struct {
	opts Options

	mu     sync.Mutex
	closed bool

	bus         *dbus.Conn
	adapterPath dbus.ObjectPath

	handlers  map[uint64]handler
	nextID    uint64
	stopWatch func() // non-nil while the Powered watch is active

	// cleanup functions to release resources in Close (executed once, in reverse order).
	cleanup []func()
}

// New creates a provider. The bus is connected lazily on first use.
func New(opts Options) *Provider {
	return &Provider{
		opts:     opts,
		handlers: make(map[uint64]handler),
	}
}

// ensureBusLocked connects to the system bus if not yet connected.
func (p *Provider) ensureBusLocked() error {
	if p.bus != nil {
		return nil
	}
	c, err := dbus.SystemBus()
	if err != nil {
		return unavailable("connect system bus", err)
	}
	p.bus = c
	// SystemBus is shared process-wide; it is not closed here.
	return nil
}

// ensureAdapterLocked resolves the adapter object path once.
func (p *Provider) ensureAdapterLocked(ctx context.Context) error {
	if p.adapterPath != "" {
		return nil
	}
	if p.opts.Adapter != "" {
		p.adapterPath = adapterPathFor(p.opts.Adapter)
		return nil
	}
	objs, err := managedObjects(ctx, p.bus)
	if err != nil {
		return err
	}
	path, ok := firstAdapter(objs)
	if !ok {
		return unavailable("find adapter", nil)
	}
	p.adapterPath = path
	logging.Debug(subsystem, "Using adapter %s", path)
	return nil
}

// prepare returns the bus and adapter path, connecting as needed.
func (p *Provider) prepare(ctx context.Context) (*dbus.Conn, dbus.ObjectPath, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, "", errClosed
	}
	if err := p.ensureBusLocked(); err != nil {
		return nil, "", err
	}
	if err := p.ensureAdapterLocked(ctx); err != nil {
		return nil, "", err
	}
	return p.bus, p.adapterPath, nil
}

// IsEnabled reads Adapter1.Powered.
func (p *Provider) IsEnabled(ctx context.Context) (bool, error) {
	bus, path, err := p.prepare(ctx)
	if err != nil {
		return false, err
	}
	var v dbus.Variant
	call := bus.Object(bluezService, path).CallWithContext(ctx, propsIface+".Get", 0, adapterIface, poweredProperty)
	if call.Err != nil {
		return false, classify("get Powered", call.Err)
	}
	if err := call.Store(&v); err != nil {
		return false, classify("decode Powered", err)
	}
	powered, ok := v.Value().(bool)
	if !ok {
		return false, classify("decode Powered", dbus.Error{
			Name: "org.freedesktop.DBus.Error.InvalidSignature",
			Body: []interface{}{"Powered is not a bool"},
		})
	}
	return powered, nil
}

// OnEnabled registers h for Powered=true changes.
func (p *Provider) OnEnabled(h func(adapter.Event)) (adapter.Subscription, error) {
	return p.subscribe(true, h)
}

// OnDisabled registers h for Powered=false changes.
func (p *Provider) OnDisabled(h func(adapter.Event)) (adapter.Subscription, error) {
	return p.subscribe(false, h)
}

func (p *Provider) subscribe(enabled bool, fn func(adapter.Event)) (adapter.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errClosed
	}
	if err := p.ensureBusLocked(); err != nil {
		return nil, err
	}
	if err := p.ensureAdapterLocked(context.Background()); err != nil {
		return nil, err
	}
	if p.stopWatch == nil {
		if err := p.startWatchLocked(); err != nil {
			return nil, err
		}
	}
	p.nextID++
	id := p.nextID
	p.handlers[id] = handler{enabled: enabled, fn: fn}
	return &subscription{p: p, id: id}, nil
}

// startWatchLocked adds the PropertiesChanged match rule for the adapter and
// starts the signal pump.
func (p *Provider) startWatchLocked() error {
	bus, path := p.bus, p.adapterPath
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(propsIface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
	if err := bus.AddMatchSignal(match...); err != nil {
		return classify("AddMatchSignal", err)
	}
	sigCh := make(chan *dbus.Signal, 16)
	bus.Signal(sigCh)
	done := make(chan struct{})

	p.stopWatch = func() {
		bus.RemoveSignal(sigCh)
		_ = bus.RemoveMatchSignal(match...)
		close(done)
	}
	go p.pump(path, sigCh, done)
	logging.Debug(subsystem, "Watching %s.Powered on %s", adapterIface, path)
	return nil
}

func (p *Provider) pump(path dbus.ObjectPath, sigCh <-chan *dbus.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			powered, ok := poweredFromSignal(path, sig)
			if !ok {
				continue
			}
			logging.Debug(subsystem, "Powered changed: %v", powered)
			p.notify(powered)
		}
	}
}

func (p *Provider) notify(powered bool) {
	p.mu.Lock()
	var fns []func(adapter.Event)
	for _, h := range p.handlers {
		if h.enabled == powered {
			fns = append(fns, h.fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(adapter.Event{Enabled: powered})
	}
}

func (p *Provider) release(id uint64) {
	p.mu.Lock()
	if _, ok := p.handlers[id]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.handlers, id)
	var stop func()
	if len(p.handlers) == 0 {
		stop = p.stopWatch
		p.stopWatch = nil
	}
	p.mu.Unlock()

	if stop != nil {
		stop()
		logging.Debug(subsystem, "Stopped watching adapter")
	}
}

// Close is safe for concurrent and redundant calls (idempotent).
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.handlers = make(map[uint64]handler)
	if p.stopWatch != nil {
		p.cleanup = append(p.cleanup, p.stopWatch)
		p.stopWatch = nil
	}
	cleanup := p.cleanup
	// Clear to allow GC of captured resources.
	p.cleanup = nil
	p.mu.Unlock()

	// Run cleanup outside the lock in reverse order of registration.
	for i := len(cleanup) - 1; i >= 0; i-- {
		if cleanup[i] != nil {
			cleanup[i]()
		}
	}
	return nil
}

type subscription struct {
	p    *Provider
	id   uint64
	once sync.Once
}

func (s *subscription) Release() {
	s.once.Do(func() { s.p.release(s.id) })
}

func managedObjects(ctx context.Context, bus *dbus.Conn) (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, error) {
	obj := bus.Object(bluezService, dbus.ObjectPath("/"))
	var objs map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if call := obj.CallWithContext(ctx, objManagerIface+".GetManagedObjects", 0); call.Err != nil {
		return nil, classify("GetManagedObjects", call.Err)
	} else if err := call.Store(&objs); err != nil {
		return nil, classify("decode GetManagedObjects", err)
	}
	return objs, nil
}
