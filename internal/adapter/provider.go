// Package adapter tracks whether the local Bluetooth radio is enabled.
//
// The radio itself is reached through a Provider, an opaque capability
// implemented by a platform driver (see package bluez). The Monitor registers
// exactly two handlers on the provider (enabled and disabled) and runs one
// asynchronous status probe; every result is forwarded to a StateSink on the
// serialized dispatch context.
//
// Thread-safety: State is safe for concurrent use. Monitor.Start and
// Monitor.Stop must be called once each per Subscriptions handle.
package adapter

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the host has no usable Bluetooth capability
// (no driver, no adapter, or no access to the system bus).
var ErrUnavailable = errors.New("adapter: bluetooth capability unavailable")

// Event is delivered by the provider when the radio changes state.
type Event struct {
	Enabled bool
}

// Subscription is a live registration with the provider's event source.
// Release must be called exactly once.
type Subscription interface {
	Release()
}

// Provider is the capability interface of the native Bluetooth driver.
type Provider interface {
	// IsEnabled queries the current radio status. It may block; callers run
	// it off the serialized context.
	IsEnabled(ctx context.Context) (bool, error)

	// OnEnabled registers h for "adapter enabled" events. Events carry
	// Enabled=true. h may be invoked from any goroutine.
	OnEnabled(h func(Event)) (Subscription, error)

	// OnDisabled registers h for "adapter disabled" events. Events carry
	// Enabled=false. h may be invoked from any goroutine.
	OnDisabled(h func(Event)) (Subscription, error)
}

// StateSink receives every adapter state write. It is implemented by the
// session, which enforces the device-clearing invariant.
type StateSink interface {
	OnAdapterStateChanged(enabled bool)
}
