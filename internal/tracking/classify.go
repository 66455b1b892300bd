// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracking

// OSC addresses for routed device classes.
const (
	AddressController = "/controller"
	AddressTracker    = "/tracker"
)

// ClassificationInput holds the two class signals the runtime reports for a
// device, plus its controller role.
type ClassificationInput struct {
	Reported DeviceClass // may be reassigned by the runtime on a role change
	Property DeviceClass // integer class property, stable across role swaps
	Role     Role
}

// Classification is the resolved class and role of a device for one cycle.
type Classification struct {
	Class     DeviceClass
	Role      Role
	Address   string // empty when the class is not routed
	ClassCode byte
	RoleCode  byte
}

// Routed reports whether devices of this classification get a message.
func (c Classification) Routed() bool {
	return c.Address != ""
}

// Resolve picks the effective class. When the two signals disagree and the
// property class is not Invalid, the property class wins; otherwise the
// reported class is used.
func Resolve(in ClassificationInput) DeviceClass {
	if in.Reported != in.Property && in.Property != ClassInvalid {
		return in.Property
	}
	return in.Reported
}

// Classify resolves the effective class and derives the routing address and
// the one-character class and role codes used in status lines.
func Classify(in ClassificationInput) Classification {
	class := Resolve(in)
	c := Classification{
		Class:     class,
		Role:      RoleInvalid,
		ClassCode: ClassCode(class),
		RoleCode:  'I',
	}
	if class == ClassController {
		c.Role = in.Role
		c.RoleCode = RoleCode(in.Role)
	}

	switch class {
	case ClassController:
		c.Address = AddressController
	case ClassGenericTracker:
		c.Address = AddressTracker
	}
	return c
}

// ClassifyDevice reads both class signals and the role of index from src
// and classifies the device.
func ClassifyDevice(src PoseSource, index uint32) Classification {
	return Classify(ClassificationInput{
		Reported: src.ClassOf(index),
		Property: src.IntegerClassPropertyOf(index),
		Role:     src.RoleOf(index),
	})
}

// ClassCode returns the one-character code of a device class.
func ClassCode(c DeviceClass) byte {
	switch c {
	case ClassController:
		return 'C'
	case ClassGenericTracker:
		return 'T'
	case ClassHMD:
		return 'H'
	case ClassTrackingReference:
		return 'B'
	case ClassDisplayRedirect:
		return 'D'
	default:
		return 'I'
	}
}

// RoleCode returns the one-character code of a controller role. Anything
// other than a hand is reported as 'I'.
func RoleCode(r Role) byte {
	switch r {
	case RoleLeftHand:
		return 'L'
	case RoleRightHand:
		return 'R'
	default:
		return 'I'
	}
}
