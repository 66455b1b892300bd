// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracking

import (
	"errors"
	"fmt"
)

// ErrRuntimeInit is returned when the tracking runtime cannot be started.
// Callers treat it as fatal.
var ErrRuntimeInit = errors.New("tracking runtime init failed")

// PoseSource is the tracking runtime as seen by the sender.
//
// ClassOf is the class the runtime currently reports, which it may reassign
// when a device's role changes. IntegerClassPropertyOf reads the same
// information from the device's integer class property, which stays stable
// across role swaps.
type PoseSource interface {
	IsConnected(index uint32) bool
	ClassOf(index uint32) DeviceClass
	IntegerClassPropertyOf(index uint32) DeviceClass
	RoleOf(index uint32) Role
	CurrentPose(index uint32) RawPose
	// PollNextEvent returns the next pending event without blocking.
	// ok is false when no event is pending.
	PollNextEvent() (ev Event, ok bool)
}

// ControllerStateReader is implemented by sources that expose controller
// axes. Trigger returns the trigger axis value in [0, 1].
type ControllerStateReader interface {
	Trigger(index uint32) (value float32, ok bool)
}

// Property names a string device property.
type Property int

const (
	PropManufacturer Property = iota
	PropModelNumber
	PropSerialNumber
)

func (p Property) String() string {
	switch p {
	case PropManufacturer:
		return "ManufacturerName"
	case PropModelNumber:
		return "ModelNumber"
	case PropSerialNumber:
		return "SerialNumber"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

// PropertyReader is implemented by sources that expose string properties.
type PropertyReader interface {
	StringProperty(index uint32, prop Property) (string, error)
}

// Shutdowner is implemented by sources that hold runtime resources.
type Shutdowner interface {
	Shutdown() error
}

// Open starts the named tracking runtime. "simulated" (or "") selects the
// built-in simulated runtime. Any other name fails with ErrRuntimeInit.
func Open(kind string) (PoseSource, error) {
	switch kind {
	case "", "simulated":
		return NewSimulatedSource(DefaultRig()), nil
	default:
		return nil, fmt.Errorf("%w: unknown runtime %q", ErrRuntimeInit, kind)
	}
}
