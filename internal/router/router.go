// Package router derives which of the two screens is active from the
// session. It keeps no state of its own.
package router

import (
	"btclassic/internal/device"
	"btclassic/internal/dispatch"
	"btclassic/internal/session"
)

// Kind identifies one of the two mutually exclusive views.
type Kind int

const (
	// SelectionView lists devices and lets the user pick one.
	SelectionView Kind = iota
	// ConnectionView shows the selected device.
	ConnectionView
)

func (k Kind) String() string {
	switch k {
	case SelectionView:
		return "selection"
	case ConnectionView:
		return "connection"
	default:
		return "unknown"
	}
}

// ActiveView returns ConnectionView iff a device is selected.
func ActiveView(snap session.Snapshot) Kind {
	if snap.Device != nil {
		return ConnectionView
	}
	return SelectionView
}

// SelectionProps are handed to the selection view.
type SelectionProps struct {
	AdapterEnabled bool
	OnSelect       func(d *device.Device)
}

// ConnectionProps are handed to the connection view.
type ConnectionProps struct {
	Device *device.Device
	OnBack func()
}

// View is the active view with its props. Exactly one of Selection and
// Connection is set, matching Kind.
type View struct {
	Kind       Kind
	Selection  *SelectionProps
	Connection *ConnectionProps
}

// Session is the part of session.State the router needs.
type Session interface {
	Snapshot() session.Snapshot
	SetDevice(d *device.Device)
}

// Router turns session snapshots into views and routes UI actions back onto
// the serialized context.
type Router struct {
	session    Session
	dispatcher dispatch.Dispatcher
}

// New creates a router.
func New(s Session, d dispatch.Dispatcher) *Router {
	return &Router{session: s, dispatcher: d}
}

// Current builds the view for the current session snapshot.
func (r *Router) Current() View {
	return r.ViewFor(r.session.Snapshot())
}

// ViewFor builds the view for snap.
func (r *Router) ViewFor(snap session.Snapshot) View {
	if ActiveView(snap) == ConnectionView {
		return View{
			Kind: ConnectionView,
			Connection: &ConnectionProps{
				Device: snap.Device,
				OnBack: r.OnBack,
			},
		}
	}
	return View{
		Kind: SelectionView,
		Selection: &SelectionProps{
			AdapterEnabled: snap.Enabled,
			OnSelect:       r.OnSelect,
		},
	}
}

// OnSelect hands a chosen device to the session.
func (r *Router) OnSelect(d *device.Device) {
	r.dispatcher.Dispatch(func() { r.session.SetDevice(d) })
}

// OnBack releases the selected device, returning to the selection view.
func (r *Router) OnBack() {
	r.dispatcher.Dispatch(func() { r.session.SetDevice(nil) })
}
