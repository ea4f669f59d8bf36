package bluez

import (
	"errors"
	"fmt"
	"testing"

	dbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btclassic/internal/adapter"
	"btclassic/internal/device"
)

const hci0 = dbus.ObjectPath("/org/bluez/hci0")

func poweredSignal(path dbus.ObjectPath, iface string, changed map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Path: path,
		Name: propertiesChanged,
		Body: []interface{}{iface, changed, []string{}},
	}
}

func TestPoweredFromSignal(t *testing.T) {
	tests := []struct {
		name        string
		sig         *dbus.Signal
		wantPowered bool
		wantOK      bool
	}{
		{name: "nil", sig: nil},
		{
			name:        "powered on",
			sig:         poweredSignal(hci0, adapterIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)}),
			wantPowered: true,
			wantOK:      true,
		},
		{
			name:   "powered off",
			sig:    poweredSignal(hci0, adapterIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant(false)}),
			wantOK: true,
		},
		{
			name: "other adapter",
			sig:  poweredSignal("/org/bluez/hci1", adapterIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)}),
		},
		{
			name: "other interface",
			sig:  poweredSignal(hci0, deviceIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)}),
		},
		{
			name: "other property",
			sig:  poweredSignal(hci0, adapterIface, map[string]dbus.Variant{"Discovering": dbus.MakeVariant(true)}),
		},
		{
			name: "wrong type",
			sig:  poweredSignal(hci0, adapterIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant("yes")}),
		},
		{
			name: "short body",
			sig:  &dbus.Signal{Path: hci0, Name: propertiesChanged, Body: []interface{}{adapterIface}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			powered, ok := poweredFromSignal(hci0, tt.sig)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPowered, powered)
		})
	}
}

func TestDeviceFromIfaces(t *testing.T) {
	path := dbus.ObjectPath("/org/bluez/hci0/dev_98_D3_31_F5_1A_2B")

	dev, ok := deviceFromIfaces(path, map[string]map[string]dbus.Variant{
		deviceIface: {
			"UUIDs": dbus.MakeVariant([]string{"00001101-0000-1000-8000-00805F9B34FB"}),
			"Name":  dbus.MakeVariant("HC-05"),
			"Alias": dbus.MakeVariant("Robot"),
		},
	})
	require.True(t, ok)
	assert.Equal(t, device.Device{
		ID:      string(path),
		Address: "98:D3:31:F5:1A:2B",
		Name:    "HC-05",
		Alias:   "Robot",
	}, dev)

	_, ok = deviceFromIfaces(path, map[string]map[string]dbus.Variant{
		deviceIface: {"UUIDs": dbus.MakeVariant([]string{"0000110b-0000-1000-8000-00805f9b34fb"})},
	})
	assert.False(t, ok, "non-SPP device")

	_, ok = deviceFromIfaces(path, map[string]map[string]dbus.Variant{
		deviceIface: {"Name": dbus.MakeVariant("no uuids")},
	})
	assert.False(t, ok)

	_, ok = deviceFromIfaces(hci0, map[string]map[string]dbus.Variant{adapterIface: {}})
	assert.False(t, ok, "adapter object")
}

func TestFirstAdapter(t *testing.T) {
	objs := map[dbus.ObjectPath]map[string]map[string]dbus.Variant{
		"/org/bluez/hci1":                   {adapterIface: {}},
		"/org/bluez/hci0":                   {adapterIface: {}},
		"/org/bluez/hci0/dev_00_11_22_33_44": {deviceIface: {}},
	}
	path, ok := firstAdapter(objs)
	require.True(t, ok)
	assert.Equal(t, hci0, path)

	_, ok = firstAdapter(map[dbus.ObjectPath]map[string]map[string]dbus.Variant{})
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	missing := classify("get Powered", dbus.Error{Name: errServiceUnknown})
	assert.ErrorIs(t, missing, adapter.ErrUnavailable)

	missingPtr := classify("get Powered", dbus.NewError(errUnknownObject, nil))
	assert.ErrorIs(t, missingPtr, adapter.ErrUnavailable)

	denied := classify("get Powered", dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"})
	assert.NotErrorIs(t, denied, adapter.ErrUnavailable)
	assert.Contains(t, denied.Error(), "bluez: get Powered")

	plain := classify("x", fmt.Errorf("wrapped: %w", errors.New("io")))
	assert.NotErrorIs(t, plain, adapter.ErrUnavailable)

	assert.ErrorIs(t, unavailable("find adapter", nil), adapter.ErrUnavailable)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", macFromPath("/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF"))
	assert.Equal(t, "", macFromPath("/org/bluez/hci0"))
	assert.True(t, underAdapter("/org/bluez/hci0/dev_AA", hci0))
	assert.False(t, underAdapter("/org/bluez/hci10/dev_AA", hci0))
	assert.True(t, underAdapter("/org/bluez/hci1/dev_AA", ""))
	assert.Equal(t, hci0, adapterPathFor("hci0"))

	devs := sortedDevices(map[string]device.Device{"/b": {ID: "/b"}, "/a": {ID: "/a"}})
	require.Len(t, devs, 2)
	assert.Equal(t, "/a", devs[0].ID)
}
