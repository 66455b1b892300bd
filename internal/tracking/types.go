// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package tracking describes the tracking runtime that supplies device poses
// and lifecycle events, and the per-cycle view of the devices it reports.
package tracking

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/lighthouse_osc/internal/orientation"
)

// MaxDevices is the number of device slots the runtime exposes.
// Indices run from 0 (always the HMD when present) to MaxDevices-1.
const MaxDevices = 64

// NoDevice is the device index carried by events that are not tied to a device.
const NoDevice uint32 = 0xFFFFFFFF

// DeviceClass is the category of a tracked device.
type DeviceClass int

const (
	ClassInvalid           DeviceClass = 0
	ClassHMD               DeviceClass = 1
	ClassController        DeviceClass = 2
	ClassGenericTracker    DeviceClass = 3
	ClassTrackingReference DeviceClass = 4
	ClassDisplayRedirect   DeviceClass = 5
)

func (c DeviceClass) String() string {
	switch c {
	case ClassInvalid:
		return "Invalid"
	case ClassHMD:
		return "HMD"
	case ClassController:
		return "Controller"
	case ClassGenericTracker:
		return "GenericTracker"
	case ClassTrackingReference:
		return "TrackingReference"
	case ClassDisplayRedirect:
		return "DisplayRedirect"
	default:
		return fmt.Sprintf("DeviceClass(%d)", int(c))
	}
}

// Role is the hand (or treadmill) a controller is currently bound to.
type Role int

const (
	RoleInvalid   Role = 0
	RoleLeftHand  Role = 1
	RoleRightHand Role = 2
	RoleTreadmill Role = 4
)

func (r Role) String() string {
	switch r {
	case RoleInvalid:
		return "Invalid"
	case RoleLeftHand:
		return "LeftHand"
	case RoleRightHand:
		return "RightHand"
	case RoleTreadmill:
		return "Treadmill"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// TrackingResult is the runtime's confidence in a device's current pose.
type TrackingResult int

const (
	ResultUninitialized         TrackingResult = 1
	ResultCalibratingInProgress TrackingResult = 100
	ResultCalibratingOutOfRange TrackingResult = 101
	ResultRunningOK             TrackingResult = 200
	ResultRunningOutOfRange     TrackingResult = 201
)

func (r TrackingResult) String() string {
	switch r {
	case ResultUninitialized:
		return "Uninitialized"
	case ResultCalibratingInProgress:
		return "CalibratingInProgress"
	case ResultCalibratingOutOfRange:
		return "CalibratingOutOfRange"
	case ResultRunningOK:
		return "RunningOK"
	case ResultRunningOutOfRange:
		return "RunningOutOfRange"
	default:
		return fmt.Sprintf("TrackingResult(%d)", int(r))
	}
}

// Device is the per-cycle snapshot of one device slot.
type Device struct {
	Index     uint32
	Class     DeviceClass
	Role      Role
	Connected bool
}

// RawPose is what the runtime reports for a device at a sampling instant.
type RawPose struct {
	Transform       orientation.Matrix34
	Velocity        r3.Vec
	AngularVelocity r3.Vec
	Result          TrackingResult
	Valid           bool
}

// Pose is a device pose derived from a RawPose. It is built once per device
// per cycle and never mutated.
type Pose struct {
	Position        r3.Vec                 `json:"position"`
	Orientation     orientation.Quaternion `json:"orientation"`
	Velocity        r3.Vec                 `json:"velocity"`
	AngularVelocity r3.Vec                 `json:"angular_velocity"`
	Valid           bool                   `json:"valid"`
	Result          TrackingResult         `json:"tracking_result"`
}

// Usable reports whether the pose may be published: it must be flagged
// valid and tracked with a RunningOK result.
func (r RawPose) Usable() bool {
	return r.Valid && r.Result == ResultRunningOK
}

// DerivePose converts the raw transform into position and orientation.
func DerivePose(raw RawPose) Pose {
	return Pose{
		Position:        orientation.PositionOf(raw.Transform),
		Orientation:     orientation.OrientationOf(raw.Transform),
		Velocity:        raw.Velocity,
		AngularVelocity: raw.AngularVelocity,
		Valid:           raw.Valid,
		Result:          raw.Result,
	}
}
