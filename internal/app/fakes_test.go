package app

import (
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/lighthouse_osc/internal/logging"
	"github.com/relabs-tech/lighthouse_osc/internal/orientation"
	"github.com/relabs-tech/lighthouse_osc/internal/tracking"
)

// fakeDevice is one slot of fakeSource.
type fakeDevice struct {
	reported  tracking.DeviceClass
	property  tracking.DeviceClass
	role      tracking.Role
	connected bool
	pose      tracking.RawPose
}

// fakeSource implements only tracking.PoseSource.
type fakeSource struct {
	devices   map[uint32]*fakeDevice
	events    []tracking.Event
	poseReads map[uint32]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{devices: map[uint32]*fakeDevice{}, poseReads: map[uint32]int{}}
}

func (f *fakeSource) add(index uint32, d fakeDevice) *fakeSource {
	f.devices[index] = &d
	return f
}

func (f *fakeSource) IsConnected(i uint32) bool {
	d, ok := f.devices[i]
	return ok && d.connected
}

func (f *fakeSource) ClassOf(i uint32) tracking.DeviceClass {
	if d, ok := f.devices[i]; ok {
		return d.reported
	}
	return tracking.ClassInvalid
}

func (f *fakeSource) IntegerClassPropertyOf(i uint32) tracking.DeviceClass {
	if d, ok := f.devices[i]; ok {
		return d.property
	}
	return tracking.ClassInvalid
}

func (f *fakeSource) RoleOf(i uint32) tracking.Role {
	if d, ok := f.devices[i]; ok {
		return d.role
	}
	return tracking.RoleInvalid
}

func (f *fakeSource) CurrentPose(i uint32) tracking.RawPose {
	f.poseReads[i]++
	if d, ok := f.devices[i]; ok {
		return d.pose
	}
	return tracking.RawPose{Result: tracking.ResultUninitialized}
}

func (f *fakeSource) PollNextEvent() (tracking.Event, bool) {
	if len(f.events) == 0 {
		return tracking.Event{}, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}

// triggerSource adds a controller trigger to fakeSource.
type triggerSource struct {
	*fakeSource
	value float32
}

func (t *triggerSource) Trigger(i uint32) (float32, bool) {
	return t.value, t.IsConnected(i)
}

func identityPose() tracking.RawPose {
	return tracking.RawPose{
		Transform: orientation.Identity34,
		Result:    tracking.ResultRunningOK,
		Valid:     true,
	}
}

func posePosition(x, y, z float64) tracking.RawPose {
	p := identityPose()
	p.Transform[0][3], p.Transform[1][3], p.Transform[2][3] = x, y, z
	return p
}

func controller(role tracking.Role, pose tracking.RawPose) fakeDevice {
	return fakeDevice{
		reported:  tracking.ClassController,
		property:  tracking.ClassController,
		role:      role,
		connected: true,
		pose:      pose,
	}
}

func tracker(pose tracking.RawPose) fakeDevice {
	return fakeDevice{
		reported:  tracking.ClassGenericTracker,
		property:  tracking.ClassGenericTracker,
		connected: true,
		pose:      pose,
	}
}

// recordingSender keeps a copy of every packet.
type recordingSender struct {
	mu      sync.Mutex
	packets [][]byte
}

func (r *recordingSender) Send(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packets = append(r.packets, append([]byte(nil), p...))
}

func (r *recordingSender) sent() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.packets...)
}

// captureLogs redirects the package logger for the duration of the test.
func captureLogs(t *testing.T) *[]string {
	t.Helper()
	var mu sync.Mutex
	var lines []string
	prev := logging.SetLogger(func(format string, v ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, format)
	})
	t.Cleanup(func() { logging.SetLogger(prev) })
	return &lines
}

// fakeToken is an already completed mqtt.Token.
type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakePublisher records publishes and completes them with err.
type fakePublisher struct {
	err  error
	msgs []published
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b, _ := payload.([]byte)
	p.msgs = append(p.msgs, published{topic: topic, qos: qos, retained: retained, payload: b})
	return newFakeToken(p.err)
}

// fakeMessage implements mqtt.Message for handler tests.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}
