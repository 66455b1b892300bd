package app

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/lighthouse_osc/internal/config"
	"github.com/relabs-tech/lighthouse_osc/internal/osc"
	"github.com/relabs-tech/lighthouse_osc/internal/tracking"
)

func TestRunLoop_StopsOnStopEvent(t *testing.T) {
	captureLogs(t)
	src := tracking.NewSimulatedSource(tracking.DefaultRig())
	sender := &recordingSender{}
	orch := NewOrchestrator(src, sender, DefaultOptions())

	var after int
	n := RunLoop(context.Background(), orch, 0, func() {
		after++
		if after == 3 {
			src.Push(tracking.Event{Type: tracking.EventQuit, DeviceIndex: tracking.NoDevice})
		}
	})

	assert.Equal(t, 4, n)
	assert.Equal(t, 3, after)
	// Two controllers and one tracker per frame; the HMD and base stations
	// are never sent. The fourth frame stops before sampling.
	assert.Len(t, sender.sent(), 3*3)
}

func TestRunLoop_ContextCancel(t *testing.T) {
	captureLogs(t)
	src := tracking.NewSimulatedSource(tracking.DefaultRig())
	orch := NewOrchestrator(src, &recordingSender{}, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, RunLoop(ctx, orch, time.Millisecond, nil))

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	n := RunLoop(ctx, orch, 5*time.Millisecond, nil)
	assert.Greater(t, n, 0)
}

func TestFormatHandDelta(t *testing.T) {
	got := FormatHandDelta([3]float64{1, 2, 3}, [3]float64{0.5, 2, 1}, [3]float64{0.5, 0, 2})
	assert.Equal(t, "(lx, ly, lz) = (1.000, 2.000, 3.000) | (rx, ry, rz) = (0.500, 2.000, 1.000) | (dX, dY, dZ) = (0.500, 0.000, 2.000)", got)
}

func TestRunPoseSender_SendsNoticeThenPoses(t *testing.T) {
	logs := captureLogs(t)
	server, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer server.Close()

	cfg := config.Default()
	cfg.OSCPort = server.LocalAddr().(*net.UDPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- runPoseSender(ctx, cfg, true, &out) }()

	require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 4096)

	n, _, err := server.ReadFromUDP(buf)
	require.NoError(t, err)
	msgs, err := osc.Messages(buf[:n])
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/notice", msgs[0].Address)

	n, _, err = server.ReadFromUDP(buf)
	require.NoError(t, err)
	msgs, err = osc.Messages(buf[:n])
	require.NoError(t, err)
	assert.Contains(t, []string{"/controller", "/tracker"}, msgs[0].Address)

	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "Device list:")
	assert.Contains(t, out.String(), "(lx, ly, lz)")
	// Start and stop lines go through the package logger.
	assert.Contains(t, *logs, "pose_sender: sending OSC to %s every %d ms")
	assert.Contains(t, *logs, "pose_sender: stopped after %d frames, %d datagrams sent, %d failed")
}

func TestRunPoseSender_UnknownRuntime(t *testing.T) {
	cfg := config.Default()
	cfg.Runtime = "openvr"
	err := runPoseSender(context.Background(), cfg, false, &bytes.Buffer{})
	assert.ErrorIs(t, err, tracking.ErrRuntimeInit)
}
