// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracking

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/lighthouse_osc/internal/orientation"
)

// SimDevice describes one device of a simulated rig.
type SimDevice struct {
	Index         uint32
	Class         DeviceClass // reported class
	PropertyClass DeviceClass // integer class property; ClassInvalid if unset
	Role          Role
	Manufacturer  string
	Model         string
	Serial        string

	// Motion: the device circles Center with Radius at Speed rad/s while
	// yawing at the same rate. A zero Radius keeps it still.
	Center r3.Vec
	Radius float64
	Speed  float64
	Phase  float64
}

// DefaultRig is a headset, two hand controllers, one tracker and two base
// stations.
func DefaultRig() []SimDevice {
	return []SimDevice{
		{Index: 0, Class: ClassHMD, PropertyClass: ClassHMD, Manufacturer: "HTC", Model: "Vive MV", Serial: "LHR-SIM00000",
			Center: r3.Vec{Y: 1.7}, Radius: 0.05, Speed: 0.5},
		{Index: 1, Class: ClassTrackingReference, PropertyClass: ClassTrackingReference, Manufacturer: "HTC", Model: "HTC V2-XD/XE", Serial: "LHB-SIM00001",
			Center: r3.Vec{X: -2, Y: 2.2, Z: -2}},
		{Index: 2, Class: ClassTrackingReference, PropertyClass: ClassTrackingReference, Manufacturer: "HTC", Model: "HTC V2-XD/XE", Serial: "LHB-SIM00002",
			Center: r3.Vec{X: 2, Y: 2.2, Z: 2}},
		{Index: 3, Class: ClassController, PropertyClass: ClassController, Role: RoleLeftHand, Manufacturer: "HTC", Model: "Vive Controller MV", Serial: "LHR-SIM00003",
			Center: r3.Vec{X: -0.3, Y: 1.1, Z: -0.3}, Radius: 0.2, Speed: 1.2},
		{Index: 4, Class: ClassController, PropertyClass: ClassController, Role: RoleRightHand, Manufacturer: "HTC", Model: "Vive Controller MV", Serial: "LHR-SIM00004",
			Center: r3.Vec{X: 0.3, Y: 1.1, Z: -0.3}, Radius: 0.2, Speed: 1.2, Phase: math.Pi},
		{Index: 5, Class: ClassGenericTracker, PropertyClass: ClassGenericTracker, Manufacturer: "HTC", Model: "VIVE Tracker Pro MV", Serial: "LHR-SIM00005",
			Center: r3.Vec{Y: 0.9}, Radius: 0.4, Speed: 0.8},
	}
}

// SimulatedSource is an in-process PoseSource that generates smooth motion
// for a fixed rig. It is safe for concurrent use.
type SimulatedSource struct {
	mu      sync.Mutex
	now     func() time.Time
	start   time.Time
	devices map[uint32]*simState
	events  []Event
}

type simState struct {
	SimDevice
	connected bool
	result    TrackingResult
}

// NewSimulatedSource creates a simulated runtime with all rig devices
// connected and tracking. An attach event is queued for each device.
func NewSimulatedSource(rig []SimDevice) *SimulatedSource {
	return newSimulatedSource(rig, time.Now)
}

func newSimulatedSource(rig []SimDevice, now func() time.Time) *SimulatedSource {
	s := &SimulatedSource{
		now:     now,
		start:   now(),
		devices: make(map[uint32]*simState, len(rig)),
	}
	for _, d := range rig {
		if d.Index >= MaxDevices {
			continue
		}
		s.devices[d.Index] = &simState{SimDevice: d, connected: true, result: ResultRunningOK}
		s.events = append(s.events, Event{Type: EventTrackedDeviceActivated, DeviceIndex: d.Index})
	}
	return s
}

func (s *SimulatedSource) device(index uint32) (*simState, bool) {
	d, ok := s.devices[index]
	return d, ok
}

// IsConnected implements PoseSource.
func (s *SimulatedSource) IsConnected(index uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.device(index)
	return ok && d.connected
}

// ClassOf implements PoseSource.
func (s *SimulatedSource) ClassOf(index uint32) DeviceClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.device(index); ok {
		return d.Class
	}
	return ClassInvalid
}

// IntegerClassPropertyOf implements PoseSource.
func (s *SimulatedSource) IntegerClassPropertyOf(index uint32) DeviceClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.device(index); ok {
		return d.PropertyClass
	}
	return ClassInvalid
}

// RoleOf implements PoseSource.
func (s *SimulatedSource) RoleOf(index uint32) Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.device(index); ok {
		return d.Role
	}
	return RoleInvalid
}

// CurrentPose implements PoseSource.
func (s *SimulatedSource) CurrentPose(index uint32) RawPose {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.device(index)
	if !ok || !d.connected {
		return RawPose{Result: ResultUninitialized}
	}

	elapsed := s.now().Sub(s.start).Seconds()
	angle := d.Phase + d.Speed*elapsed
	sin, cos := math.Sincos(angle)

	pos := r3.Vec{
		X: d.Center.X + d.Radius*cos,
		Y: d.Center.Y,
		Z: d.Center.Z + d.Radius*sin,
	}
	vel := r3.Vec{X: -d.Radius * d.Speed * sin, Z: d.Radius * d.Speed * cos}

	// Yaw about +y by angle.
	m := orientation.Matrix34{
		{cos, 0, sin, pos.X},
		{0, 1, 0, pos.Y},
		{-sin, 0, cos, pos.Z},
	}

	return RawPose{
		Transform:       m,
		Velocity:        vel,
		AngularVelocity: r3.Vec{Y: d.Speed},
		Result:          d.result,
		Valid:           d.result == ResultRunningOK || d.result == ResultRunningOutOfRange,
	}
}

// PollNextEvent implements PoseSource.
func (s *SimulatedSource) PollNextEvent() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}

// Trigger implements ControllerStateReader with a slow squeeze cycle.
func (s *SimulatedSource) Trigger(index uint32) (float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.device(index)
	if !ok || !d.connected || d.Class != ClassController {
		return 0, false
	}
	elapsed := s.now().Sub(s.start).Seconds()
	return float32(0.5 + 0.5*math.Sin(elapsed+d.Phase)), true
}

// StringProperty implements PropertyReader.
func (s *SimulatedSource) StringProperty(index uint32, prop Property) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.device(index)
	if !ok {
		return "", fmt.Errorf("device %d: unknown device", index)
	}
	switch prop {
	case PropManufacturer:
		return d.Manufacturer, nil
	case PropModelNumber:
		return d.Model, nil
	case PropSerialNumber:
		return d.Serial, nil
	default:
		return "", fmt.Errorf("device %d: unknown property %s", index, prop)
	}
}

// Shutdown implements Shutdowner. Pending events are discarded.
func (s *SimulatedSource) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return nil
}

// Push queues an event for the next PollNextEvent calls.
func (s *SimulatedSource) Push(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// SetConnected attaches or detaches a rig device and queues the matching
// event. Unknown indices are ignored.
func (s *SimulatedSource) SetConnected(index uint32, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.device(index)
	if !ok || d.connected == connected {
		return
	}
	d.connected = connected
	typ := EventTrackedDeviceDeactivated
	if connected {
		typ = EventTrackedDeviceActivated
	}
	s.events = append(s.events, Event{Type: typ, DeviceIndex: index})
}

// SetTrackingResult overrides the tracking result reported for a device.
func (s *SimulatedSource) SetTrackingResult(index uint32, r TrackingResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.device(index); ok {
		d.result = r
	}
}

// SwapRoles exchanges the roles of two controllers and queues a role change
// event for each, the way the runtime does when hands are swapped.
func (s *SimulatedSource) SwapRoles(a, b uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	da, okA := s.device(a)
	db, okB := s.device(b)
	if !okA || !okB {
		return
	}
	da.Role, db.Role = db.Role, da.Role
	s.events = append(s.events,
		Event{Type: EventTrackedDeviceRoleChanged, DeviceIndex: a},
		Event{Type: EventTrackedDeviceRoleChanged, DeviceIndex: b},
	)
}

var (
	_ PoseSource            = (*SimulatedSource)(nil)
	_ ControllerStateReader = (*SimulatedSource)(nil)
	_ PropertyReader        = (*SimulatedSource)(nil)
	_ Shutdowner            = (*SimulatedSource)(nil)
)
