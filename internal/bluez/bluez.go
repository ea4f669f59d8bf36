// Package bluez implements adapter.Provider and SPP device discovery on top
// of BlueZ over the system D-Bus.
//
// The adapter's enabled state is org.bluez.Adapter1.Powered. It is read with
// org.freedesktop.DBus.Properties.Get and watched through PropertiesChanged
// signals; the match rule exists only while at least one handler is
// registered.
//
// Thread-safety: all methods are safe for concurrent use. Close is
// idempotent; after Close every other method returns an error.
package bluez

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	dbus "github.com/godbus/dbus/v5"

	"btclassic/internal/adapter"
	"btclassic/internal/device"
)

const (
	// SPPUUID is the Serial Port Profile UUID used for RFCOMM connections.
	SPPUUID = "00001101-0000-1000-8000-00805f9b34fb"

	bluezService        = "org.bluez"
	bluezRoot           = "/org/bluez"
	deviceIface         = "org.bluez.Device1"
	adapterIface        = "org.bluez.Adapter1"
	objManagerIface     = "org.freedesktop.DBus.ObjectManager"
	propsIface          = "org.freedesktop.DBus.Properties"
	propertiesChanged   = propsIface + ".PropertiesChanged"
	poweredProperty     = "Powered"
	errServiceUnknown   = "org.freedesktop.DBus.Error.ServiceUnknown"
	errUnknownObject    = "org.freedesktop.DBus.Error.UnknownObject"
	errNameHasNoOwner   = "org.freedesktop.DBus.Error.NameHasNoOwner"
	errUnknownInterface = "org.freedesktop.DBus.Error.UnknownInterface"
)

// Options configures a Provider.
type Options struct {
	// Adapter is the adapter name (e.g. "hci0"). Empty selects the first
	// adapter in object-path order.
	Adapter string
}

var errClosed = errors.New("bluez: closed")

// unavailable marks errors that mean "no Bluetooth here" so callers can
// match adapter.ErrUnavailable.
func unavailable(op string, err error) error {
	if err == nil {
		return fmt.Errorf("bluez: %s: %w", op, adapter.ErrUnavailable)
	}
	return fmt.Errorf("bluez: %s: %w: %w", op, adapter.ErrUnavailable, err)
}

// classify wraps D-Bus errors, tagging the ones that mean BlueZ or the
// adapter is missing.
func classify(op string, err error) error {
	switch dbusErrorName(err) {
	case errServiceUnknown, errUnknownObject, errNameHasNoOwner, errUnknownInterface:
		return unavailable(op, err)
	}
	return fmt.Errorf("bluez: %s: %w", op, err)
}

// dbusErrorName returns the D-Bus error name; godbus reports errors both by
// value and by pointer.
func dbusErrorName(err error) string {
	var byValue dbus.Error
	if errors.As(err, &byValue) {
		return byValue.Name
	}
	var byPtr *dbus.Error
	if errors.As(err, &byPtr) && byPtr != nil {
		return byPtr.Name
	}
	return ""
}

func adapterPathFor(name string) dbus.ObjectPath {
	return dbus.ObjectPath(bluezRoot + "/" + name)
}

// firstAdapter returns the lowest adapter path among managed objects.
func firstAdapter(objs map[dbus.ObjectPath]map[string]map[string]dbus.Variant) (dbus.ObjectPath, bool) {
	var paths []string
	for path, ifaces := range objs {
		if _, ok := ifaces[adapterIface]; ok {
			paths = append(paths, string(path))
		}
	}
	if len(paths) == 0 {
		return "", false
	}
	sort.Strings(paths)
	return dbus.ObjectPath(paths[0]), true
}

// poweredFromSignal extracts Adapter1.Powered from a PropertiesChanged signal
// emitted for path.
func poweredFromSignal(path dbus.ObjectPath, sig *dbus.Signal) (bool, bool) {
	if sig == nil || sig.Path != path || sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return false, false
	}
	iface, _ := sig.Body[0].(string)
	if iface != adapterIface {
		return false, false
	}
	changed, _ := sig.Body[1].(map[string]dbus.Variant)
	v, ok := changed[poweredProperty]
	if !ok {
		return false, false
	}
	powered, ok := v.Value().(bool)
	return powered, ok
}

// deviceFromIfaces builds a Device for objects that expose Device1 with the
// SPP UUID.
func deviceFromIfaces(path dbus.ObjectPath, ifaces map[string]map[string]dbus.Variant) (device.Device, bool) {
	props, ok := ifaces[deviceIface]
	if !ok {
		return device.Device{}, false
	}
	vUUIDs, ok := props["UUIDs"]
	if !ok {
		return device.Device{}, false
	}
	uu, _ := vUUIDs.Value().([]string)
	if !containsUUID(uu, SPPUUID) {
		return device.Device{}, false
	}
	var addr, name, alias string
	if v, ok := props["Address"]; ok {
		addr, _ = v.Value().(string)
	}
	if v, ok := props["Name"]; ok {
		name, _ = v.Value().(string)
	}
	if v, ok := props["Alias"]; ok {
		alias, _ = v.Value().(string)
	}
	if addr == "" {
		addr = macFromPath(string(path))
	}
	return device.Device{
		ID:      string(path),
		Address: addr,
		Name:    name,
		Alias:   alias,
	}, true
}

// underAdapter reports whether a device object belongs to the adapter.
func underAdapter(devPath, adapterPath dbus.ObjectPath) bool {
	if adapterPath == "" {
		return true
	}
	return strings.HasPrefix(string(devPath), string(adapterPath)+"/")
}

func containsUUID(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}

// macFromPath expects .../dev_XX_XX_XX_XX_XX_XX.
func macFromPath(p string) string {
	idx := strings.LastIndex(p, "/dev_")
	if idx < 0 {
		return ""
	}
	return strings.ReplaceAll(p[idx+5:], "_", ":")
}

func sortedDevices(m map[string]device.Device) []device.Device {
	out := make([]device.Device, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
