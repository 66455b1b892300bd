// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/lighthouse_osc/internal/logging"
	"github.com/relabs-tech/lighthouse_osc/internal/orientation"
	"github.com/relabs-tech/lighthouse_osc/internal/osc"
	"github.com/relabs-tech/lighthouse_osc/internal/tracking"
	"github.com/relabs-tech/lighthouse_osc/internal/transport"
)

// LaunchNotice is the text of the /notice message sent at startup.
const LaunchNotice = "vive-osc-sender launched"

// Options configures an Orchestrator. Start from DefaultOptions: the zero
// DeviceFilter selects device 0 only.
type Options struct {
	DeviceFilter     int // -1 = all devices
	MaxPacketSize    int // 0 = osc.DefaultMaxSize
	IndexedAddresses bool

	// OnFrame receives every completed report.
	OnFrame func(FrameReport)
	// OnEvent receives ignorable runtime events; nil logs them.
	OnEvent func(tracking.Classified)

	Now func() time.Time
}

// DefaultOptions returns options that send every routed device on bare
// addresses.
func DefaultOptions() Options {
	return Options{DeviceFilter: -1, MaxPacketSize: osc.DefaultMaxSize}
}

// Sample is one pose that was sent during a frame.
type Sample struct {
	Device         tracking.Device
	Classification tracking.Classification
	Address        string
	Pose           tracking.Pose
	Trigger        *float32 // controllers with a readable trigger only
}

// Fragment is the status text of one sent device.
type Fragment struct {
	ClassCode   byte
	RoleCode    byte
	Position    r3.Vec
	Orientation orientation.Quaternion
}

func (f Fragment) String() string {
	q := f.Orientation
	return fmt.Sprintf("%c%c(% .2f, % .2f, % .2f) q(% .2f, % .2f, % .2f, % .2f)",
		f.ClassCode, f.RoleCode, f.Position.X, f.Position.Y, f.Position.Z, q.W, q.X, q.Y, q.Z)
}

// SkipCounts counts connected devices that were not sent, by reason.
type SkipCounts struct {
	Filtered     int
	Unrouted     int
	NotTracking  int
	EncodeFailed int
}

// FrameReport describes one sweep.
type FrameReport struct {
	Sequence  uint64
	Time      time.Time
	Samples   []Sample
	Fragments []Fragment
	Skipped   SkipCounts
	Stopped   bool
}

// Line joins the fragments into the overwritable status line.
func (r FrameReport) Line() string {
	parts := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		parts[i] = f.String()
	}
	return strings.Join(parts, " - ")
}

type handPosition struct {
	pos  r3.Vec
	seen bool
}

// Orchestrator runs one device sweep per Frame call. It owns no goroutines
// and is not safe for concurrent use.
type Orchestrator struct {
	src    tracking.PoseSource
	sender transport.Sender
	events *EventProcessor
	opts   Options

	seq         uint64
	left, right handPosition
}

// NewOrchestrator wires a pose source to a sender.
func NewOrchestrator(src tracking.PoseSource, sender transport.Sender, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		src:    src,
		sender: sender,
		events: NewEventProcessor(opts.DeviceFilter, opts.OnEvent),
		opts:   opts,
	}
}

// SendNotice sends text on /notice inside an immediate bundle.
func (o *Orchestrator) SendNotice(text string) error {
	packet, err := osc.EncodeNotice(o.opts.MaxPacketSize, text)
	if err != nil {
		return fmt.Errorf("notice: %w", err)
	}
	o.sender.Send(packet)
	return nil
}

// Frame drains pending events and, unless one of them asks to stop, sweeps
// every device slot in ascending index order. It returns false when the
// loop should stop.
func (o *Orchestrator) Frame() (FrameReport, bool) {
	o.seq++
	rep := FrameReport{Sequence: o.seq, Time: o.opts.Now()}

	if !o.events.Drain(o.src) {
		rep.Stopped = true
		return rep, false
	}

	snap := tracking.TakeSnapshot(o.src, o.wants)
	perAddress := make(map[string]int)

	for i := uint32(0); i < tracking.MaxDevices; i++ {
		if !snap.Connected(i) {
			continue
		}
		if !o.wants(i) {
			rep.Skipped.Filtered++
			continue
		}
		cls, _ := snap.Classification(i)
		if !cls.Routed() {
			rep.Skipped.Unrouted++
			logging.Debugf("frame: device %d: class %s not routed", i, cls.Class)
			continue
		}

		address := cls.Address
		perAddress[address]++
		if o.opts.IndexedAddresses {
			address = fmt.Sprintf("%s/%d", address, perAddress[address])
		}

		raw := o.src.CurrentPose(i)
		if !raw.Usable() {
			rep.Skipped.NotTracking++
			continue
		}
		pose := tracking.DerivePose(raw)

		var trigger *float32
		if cls.Class == tracking.ClassController {
			if r, ok := o.src.(tracking.ControllerStateReader); ok {
				if v, ok := r.Trigger(i); ok {
					trigger = &v
				}
			}
		}

		packet, err := encodePose(o.opts.MaxPacketSize, address, pose, trigger)
		if err != nil {
			rep.Skipped.EncodeFailed++
			logging.Logf("frame: device %d: %v", i, err)
			continue
		}
		o.sender.Send(packet)

		o.storeHand(cls, pose.Position)
		dev, _ := snap.Device(i)
		rep.Samples = append(rep.Samples, Sample{
			Device:         dev,
			Classification: cls,
			Address:        address,
			Pose:           pose,
			Trigger:        trigger,
		})
		rep.Fragments = append(rep.Fragments, Fragment{
			ClassCode:   cls.ClassCode,
			RoleCode:    cls.RoleCode,
			Position:    pose.Position,
			Orientation: pose.Orientation,
		})
	}

	if o.opts.OnFrame != nil {
		o.opts.OnFrame(rep)
	}
	return rep, true
}

// HandDelta returns the last sent left and right controller positions and
// left minus right. ok is false until both hands have been sent.
func (o *Orchestrator) HandDelta() (left, right, delta r3.Vec, ok bool) {
	if !o.left.seen || !o.right.seen {
		return o.left.pos, o.right.pos, r3.Vec{}, false
	}
	return o.left.pos, o.right.pos, r3.Sub(o.left.pos, o.right.pos), true
}

func (o *Orchestrator) wants(index uint32) bool {
	return o.opts.DeviceFilter < 0 || index == uint32(o.opts.DeviceFilter)
}

func (o *Orchestrator) storeHand(cls tracking.Classification, pos r3.Vec) {
	if cls.Class != tracking.ClassController {
		return
	}
	switch cls.Role {
	case tracking.RoleLeftHand:
		o.left = handPosition{pos: pos, seen: true}
	case tracking.RoleRightHand:
		o.right = handPosition{pos: pos, seen: true}
	}
}

// encodePose builds the position + orientation message, with the trigger as
// an eighth float when present.
func encodePose(maxSize int, address string, p tracking.Pose, trigger *float32) ([]byte, error) {
	q := p.Orientation
	e := osc.NewEncoder(maxSize).
		BeginMessage(address).
		Float32(float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z)).
		Float32(float32(q.W), float32(q.X), float32(q.Y), float32(q.Z))
	if trigger != nil {
		e.Float32(*trigger)
	}
	return e.EndMessage().Bytes()
}
