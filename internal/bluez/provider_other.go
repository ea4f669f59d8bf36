//go:build !linux

package bluez

import (
	"context"

	"btclassic/internal/adapter"
	"btclassic/internal/device"
)

var _ adapter.Provider = (*Provider)(nil)

// Provider reports the capability as unavailable on platforms without BlueZ.
type Provider struct{}

// New creates a provider.
func New(Options) *Provider { return &Provider{} }

func (p *Provider) IsEnabled(context.Context) (bool, error) {
	return false, unavailable("IsEnabled", nil)
}

func (p *Provider) OnEnabled(func(adapter.Event)) (adapter.Subscription, error) {
	return nil, unavailable("OnEnabled", nil)
}

func (p *Provider) OnDisabled(func(adapter.Event)) (adapter.Subscription, error) {
	return nil, unavailable("OnDisabled", nil)
}

func (p *Provider) Scan(context.Context) ([]device.Device, error) {
	return nil, unavailable("Scan", nil)
}

func (p *Provider) Close() error { return nil }
