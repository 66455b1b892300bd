// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracking

// Snapshot is the set of device slots as seen at the start of one cycle.
// Slots are keyed by device index; each carries its own connected bit.
type Snapshot struct {
	slots [MaxDevices]slot
}

type slot struct {
	device     Device
	class      Classification
	classified bool
}

// TakeSnapshot reads the connected bit of every slot from src. Connected
// slots accepted by want are classified; want == nil accepts every slot.
// Other slots are left zero apart from their index and connected bit.
func TakeSnapshot(src PoseSource, want func(index uint32) bool) *Snapshot {
	s := &Snapshot{}
	for i := uint32(0); i < MaxDevices; i++ {
		sl := slot{device: Device{Index: i, Connected: src.IsConnected(i)}}
		if sl.device.Connected && (want == nil || want(i)) {
			sl.classified = true
			sl.class = ClassifyDevice(src, i)
			sl.device.Class = sl.class.Class
			sl.device.Role = sl.class.Role
		}
		s.slots[i] = sl
	}
	return s
}

// Connected reports whether slot index holds a connected device.
// Out-of-range indices are never connected.
func (s *Snapshot) Connected(index uint32) bool {
	if index >= MaxDevices {
		return false
	}
	return s.slots[index].device.Connected
}

// Device returns the slot at index.
func (s *Snapshot) Device(index uint32) (Device, bool) {
	if index >= MaxDevices {
		return Device{}, false
	}
	return s.slots[index].device, true
}

// Classification returns the classification of a connected slot. ok is
// false for slots that are disconnected or were not classified.
func (s *Snapshot) Classification(index uint32) (Classification, bool) {
	if !s.Connected(index) || !s.slots[index].classified {
		return Classification{}, false
	}
	return s.slots[index].class, true
}

// ConnectedDevices returns connected slots in ascending index order.
func (s *Snapshot) ConnectedDevices() []Device {
	var out []Device
	for _, sl := range s.slots {
		if sl.device.Connected {
			out = append(out, sl.device)
		}
	}
	return out
}
