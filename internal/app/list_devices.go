// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	"github.com/relabs-tech/lighthouse_osc/internal/logging"
	"github.com/relabs-tech/lighthouse_osc/internal/tracking"
)

// deviceLabel is the bracketed kind shown in the device list.
func deviceLabel(class tracking.DeviceClass, role tracking.Role) string {
	if class != tracking.ClassController {
		return class.String()
	}
	switch role {
	case tracking.RoleLeftHand:
		return "Controller - Left"
	case tracking.RoleRightHand:
		return "Controller - Right"
	case tracking.RoleTreadmill:
		return "Treadmill"
	default:
		return "Invalid Controller"
	}
}

// ListDevices writes one line per connected device: label, manufacturer,
// model, serial and class number. Properties are read only when src
// implements tracking.PropertyReader; read errors are logged and the field
// left blank.
func ListDevices(w io.Writer, src tracking.PoseSource) {
	props, _ := src.(tracking.PropertyReader)

	fmt.Fprintf(w, "\nDevice list:\n---------------------------\n")
	snap := tracking.TakeSnapshot(src, nil)
	for _, d := range snap.ConnectedDevices() {
		var manufacturer, model, serial string
		if props != nil {
			manufacturer = readProperty(props, d.Index, tracking.PropManufacturer)
			model = readProperty(props, d.Index, tracking.PropModelNumber)
			serial = readProperty(props, d.Index, tracking.PropSerialNumber)
		}
		fmt.Fprintf(w, "Device %d: [%s] %s - %s [%s] class(%d)\n",
			d.Index, deviceLabel(d.Class, d.Role), manufacturer, model, serial, int(d.Class))
	}
	fmt.Fprintf(w, "---------------------------\n\n")
}

func readProperty(r tracking.PropertyReader, index uint32, p tracking.Property) string {
	v, err := r.StringProperty(index, p)
	if err != nil {
		logging.Logf("devices: device %d: %s: %v", index, p, err)
		return ""
	}
	return v
}
