// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracking

import "fmt"

// EventType identifies a runtime event.
type EventType int

const (
	EventNone EventType = iota
	EventTrackedDeviceActivated
	EventTrackedDeviceDeactivated
	EventTrackedDeviceUpdated
	EventTrackedDeviceUserInteractionStarted
	EventTrackedDeviceUserInteractionEnded
	EventTrackedDeviceRoleChanged
	EventPropertyChanged
	EventButtonPress
	EventButtonUnpress
	EventButtonTouch
	EventButtonUntouch
	EventEnterStandbyMode
	EventLeaveStandbyMode
	EventStatusUpdate
	EventDashboardActivated
	EventDashboardDeactivated
	EventChaperoneDataHasChanged
	EventChaperoneSettingsHaveChanged
	EventChaperoneUniverseHasChanged
	EventChaperoneFlushCache
	EventApplicationTransitionStarted
	EventApplicationTransitionNewAppStarted
	EventSceneApplicationChanged
	EventSceneFocusChanged
	EventProcessConnected
	EventProcessDisconnected
	EventInputHapticVibration
	EventInputBindingLoadFailed
	EventInputBindingLoadSuccessful
	EventInputActionManifestReloaded
	EventInputActionManifestLoadFailed
	EventInputProgressUpdate
	EventInputTrackerActivated
	EventInputBindingsUpdated
	EventActionBindingReloaded
	EventQuit
	EventProcessQuit
	EventQuitAbortedUserPrompt
	EventQuitAcknowledged
)

// State is the device status carried by EventStatusUpdate.
type State int

const (
	StateUndefined State = iota
	StateOff
	StateSearching
	StateSearchingAlert
	StateReady
	StateReadyAlert
	StateNotReady
	StateStandby
	StateReadyAlertLow
)

var stateNames = map[State]string{
	StateUndefined:      "undefined",
	StateOff:            "off",
	StateSearching:      "searching",
	StateSearchingAlert: "searching alert",
	StateReady:          "ready",
	StateReadyAlert:     "ready alert",
	StateNotReady:       "not ready",
	StateStandby:        "standby",
	StateReadyAlertLow:  "ready alert low",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Event is one pending runtime notification.
type Event struct {
	Type        EventType
	DeviceIndex uint32 // NoDevice when the event is not tied to a device
	Property    int32  // EventPropertyChanged only
	Status      State  // EventStatusUpdate only
}

// HasDevice reports whether the event refers to a device slot.
func (e Event) HasDevice() bool {
	return e.DeviceIndex != NoDevice
}

// Disposition is what an event means to the sender loop.
type Disposition int

const (
	// Ignorable events are informational only.
	Ignorable Disposition = iota
	// Stop events end the sender loop.
	Stop
)

func (d Disposition) String() string {
	if d == Stop {
		return "stop"
	}
	return "ignorable"
}

// Classified is an event together with its disposition and a one-line
// human readable description.
type Classified struct {
	Event       Event
	Disposition Disposition
	Detail      string
}

type eventInfo struct {
	text      string
	perDevice bool
	stop      bool
}

var eventTable = map[EventType]eventInfo{
	EventTrackedDeviceActivated:              {text: "device attached", perDevice: true},
	EventTrackedDeviceDeactivated:            {text: "device detached", perDevice: true},
	EventTrackedDeviceUpdated:                {text: "device updated", perDevice: true},
	EventTrackedDeviceUserInteractionStarted: {text: "user interaction started", perDevice: true},
	EventTrackedDeviceUserInteractionEnded:   {text: "user interaction ended", perDevice: true},
	EventTrackedDeviceRoleChanged:            {text: "role changed", perDevice: true},
	EventButtonPress:                         {text: "button press", perDevice: true},
	EventButtonUnpress:                       {text: "button release", perDevice: true},
	EventButtonTouch:                         {text: "button touch", perDevice: true},
	EventButtonUntouch:                       {text: "button untouch", perDevice: true},
	EventEnterStandbyMode:                    {text: "enter standby mode", perDevice: true},
	EventLeaveStandbyMode:                    {text: "leave standby mode", perDevice: true},
	EventDashboardActivated:                  {text: "dashboard activated"},
	EventDashboardDeactivated:                {text: "dashboard deactivated"},
	EventChaperoneDataHasChanged:             {text: "chaperone data has changed"},
	EventChaperoneSettingsHaveChanged:        {text: "chaperone settings have changed"},
	EventChaperoneUniverseHasChanged:         {text: "chaperone universe has changed"},
	EventChaperoneFlushCache:                 {text: "chaperone flush cache"},
	EventApplicationTransitionStarted:        {text: "application transition started"},
	EventApplicationTransitionNewAppStarted:  {text: "application transition: new app started"},
	EventSceneApplicationChanged:             {text: "scene application changed"},
	EventSceneFocusChanged:                   {text: "scene focus changed"},
	EventProcessConnected:                    {text: "a process was connected"},
	EventProcessDisconnected:                 {text: "a process was disconnected"},
	EventInputHapticVibration:                {text: "input: haptic vibration"},
	EventInputBindingLoadFailed:              {text: "input: binding load failed"},
	EventInputBindingLoadSuccessful:          {text: "input: binding load successful"},
	EventInputActionManifestReloaded:         {text: "input: action manifest reloaded"},
	EventInputActionManifestLoadFailed:       {text: "input: action manifest load failed"},
	EventInputProgressUpdate:                 {text: "input: progress update"},
	EventInputTrackerActivated:               {text: "input: tracker activated"},
	EventInputBindingsUpdated:                {text: "input: bindings updated"},
	EventActionBindingReloaded:               {text: "action binding reloaded"},
	EventQuit:                                {text: "runtime quit", stop: true},
	EventProcessQuit:                         {text: "runtime quit process", stop: true},
	EventQuitAbortedUserPrompt:               {text: "runtime quit aborted by user prompt", stop: true},
	EventQuitAcknowledged:                    {text: "runtime quit acknowledged", stop: true},
}

// ClassifyEvent maps an event to Ignorable or Stop and renders its detail text.
// Unknown event types are Ignorable.
func ClassifyEvent(ev Event) Classified {
	c := Classified{Event: ev, Disposition: Ignorable}

	switch ev.Type {
	case EventPropertyChanged:
		c.Detail = fmt.Sprintf("device %d: property changed (%d)", ev.DeviceIndex, ev.Property)
		return c
	case EventStatusUpdate:
		c.Detail = fmt.Sprintf("device %d status: %s", ev.DeviceIndex, ev.Status)
		return c
	}

	info, ok := eventTable[ev.Type]
	if !ok {
		c.Detail = fmt.Sprintf("unmanaged event %d", int(ev.Type))
		if ev.HasDevice() {
			c.Detail += fmt.Sprintf(" (device %d)", ev.DeviceIndex)
		}
		return c
	}
	if info.stop {
		c.Disposition = Stop
	}
	if info.perDevice {
		c.Detail = fmt.Sprintf("device %d: %s", ev.DeviceIndex, info.text)
	} else {
		c.Detail = info.text
	}
	return c
}
