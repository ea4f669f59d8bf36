// Package device defines the remote endpoint handed from discovery to the
// session. Devices are owned by the discovery side; everyone else holds a
// *Device reference and never mutates it.
package device

// Device represents the minimum information needed to display and select a
// remote Bluetooth Classic endpoint.
//
// ID is required (for BlueZ, the Device1 object path as string). Other fields
// are optional and may be empty depending on discovery results.
type Device struct {
	ID          string // required: opaque identifier (e.g. /org/bluez/hci0/dev_XX_XX_XX_XX_XX_XX)
	Address     string // optional: Bluetooth device address
	Name        string // optional: Device1.Name
	Alias       string // optional: Device1.Alias
	ServiceName string // optional: SDP ServiceName (0x0100) if available
}

// DisplayName returns the best human readable label for the device.
func (d *Device) DisplayName() string {
	if d == nil {
		return ""
	}
	switch {
	case d.Alias != "":
		return d.Alias
	case d.Name != "":
		return d.Name
	case d.Address != "":
		return d.Address
	default:
		return d.ID
	}
}

// String makes Device satisfy fmt.Stringer for logging.
func (d *Device) String() string {
	if d == nil {
		return "<none>"
	}
	if d.Address != "" {
		return d.DisplayName() + " (" + d.Address + ")"
	}
	return d.DisplayName()
}
