// Command btclassic tracks the local Bluetooth adapter and manages a single
// selected Bluetooth Classic (SPP) device.
//
// Linux with BlueZ (bluetoothd) running and system D-Bus access is required
// for real hardware; elsewhere the adapter is reported as unavailable and
// treated as disabled.
//
// Examples:
//
//	btclassic                 # interactive device selection
//	btclassic status          # print whether the adapter is enabled
//	btclassic scan --timeout 15s
//	btclassic watch --log-level debug
package main

var version = "dev"

func main() {
	SetVersion(version)
	Execute()
}
