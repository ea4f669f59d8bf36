//go:build linux

package bluez

import (
	"context"

	dbus "github.com/godbus/dbus/v5"

	"btclassic/internal/device"
	"btclassic/pkg/logging"
)

// Scan discovers nearby devices advertising SPP and returns a snapshot list
// sorted by ID. Known devices are reported immediately; new ones are
// collected until ctx is done, so callers bound the scan with
// context.WithTimeout.
func (p *Provider) Scan(ctx context.Context) ([]device.Device, error) {
	bus, adapterPath, err := p.prepare(ctx)
	if err != nil {
		return nil, err
	}

	// Subscribe before starting discovery so no InterfacesAdded is missed.
	match := []dbus.MatchOption{
		dbus.WithMatchInterface(objManagerIface),
		dbus.WithMatchMember("InterfacesAdded"),
	}
	sigCh := make(chan *dbus.Signal, 16)
	bus.Signal(sigCh)
	defer bus.RemoveSignal(sigCh)
	if err := bus.AddMatchSignal(match...); err != nil {
		return nil, classify("AddMatchSignal", err)
	}
	defer func() { _ = bus.RemoveMatchSignal(match...) }()

	// Discovery is best-effort: a powered-off adapter still lists cached devices.
	adapterObj := bus.Object(bluezService, adapterPath)
	if err := adapterObj.Call(adapterIface+".StartDiscovery", 0).Err; err != nil {
		logging.Debug(subsystem, "StartDiscovery on %s: %v", adapterPath, err)
	} else {
		defer func() { _ = adapterObj.Call(adapterIface+".StopDiscovery", 0).Err }()
	}

	// Prime from current managed objects.
	objs, err := managedObjects(ctx, bus)
	if err != nil {
		return nil, err
	}
	devMap := make(map[string]device.Device)
	for path, ifaces := range objs {
		if !underAdapter(path, adapterPath) {
			continue
		}
		if dev, ok := deviceFromIfaces(path, ifaces); ok {
			devMap[dev.ID] = dev
		}
	}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case sig := <-sigCh:
			if sig == nil || sig.Name != objManagerIface+".InterfacesAdded" || len(sig.Body) < 2 {
				continue
			}
			path, _ := sig.Body[0].(dbus.ObjectPath)
			ifaces, _ := sig.Body[1].(map[string]map[string]dbus.Variant)
			if ifaces == nil || !underAdapter(path, adapterPath) {
				continue
			}
			if dev, ok := deviceFromIfaces(path, ifaces); ok {
				logging.Debug(subsystem, "Discovered %s", &dev)
				devMap[dev.ID] = dev
			}
		}
	}

	return sortedDevices(devMap), nil
}
