package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/lighthouse_osc/internal/config"
	"github.com/relabs-tech/lighthouse_osc/internal/logging"
	"github.com/relabs-tech/lighthouse_osc/internal/tracking"
	"github.com/relabs-tech/lighthouse_osc/internal/transport"
)

// RunLoop calls Frame until it asks to stop or ctx is cancelled, pausing
// interval between frames. after runs once per completed frame. It returns
// the number of Frame calls.
func RunLoop(ctx context.Context, orch *Orchestrator, interval time.Duration, after func()) int {
	n := 0
	for {
		if ctx.Err() != nil {
			return n
		}
		_, ok := orch.Frame()
		n++
		if !ok {
			return n
		}
		if after != nil {
			after()
		}
		if interval <= 0 {
			continue
		}
		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return n
		case <-t.C:
		}
	}
}

// FormatHandDelta renders the left and right controller positions and
// their difference.
func FormatHandDelta(left, right, delta [3]float64) string {
	return fmt.Sprintf("(lx, ly, lz) = (%.3f, %.3f, %.3f) | (rx, ry, rz) = (%.3f, %.3f, %.3f) | (dX, dY, dZ) = (%.3f, %.3f, %.3f)",
		left[0], left[1], left[2], right[0], right[1], right[2], delta[0], delta[1], delta[2])
}

// shutdownSource releases src when it holds runtime resources. Errors are
// logged only.
func shutdownSource(src tracking.PoseSource) {
	s, ok := src.(tracking.Shutdowner)
	if !ok {
		return
	}
	if err := s.Shutdown(); err != nil {
		logging.Logf("pose_sender: runtime shutdown error: %v", err)
	}
}

// RunListDevices opens the named runtime, writes its device list to w and
// shuts the runtime down again.
func RunListDevices(w io.Writer, runtime string) error {
	src, err := tracking.Open(runtime)
	if err != nil {
		return err
	}
	listAndShutdown(w, src)
	return nil
}

func listAndShutdown(w io.Writer, src tracking.PoseSource) {
	defer shutdownSource(src)
	ListDevices(w, src)
}

// RunPoseSender opens the configured tracking runtime and streams poses to
// cfg.OSCIP:cfg.OSCPort until a stop event arrives or ctx is cancelled.
// Runtime or socket setup failures are returned; everything after that is
// logged and survived.
func RunPoseSender(ctx context.Context, cfg *config.Config, showDelta bool) error {
	return runPoseSender(ctx, cfg, showDelta, os.Stdout)
}

func runPoseSender(ctx context.Context, cfg *config.Config, showDelta bool, out io.Writer) error {
	logging.SetDebug(cfg.LogDebug)

	src, err := tracking.Open(cfg.Runtime)
	if err != nil {
		return err
	}
	defer shutdownSource(src)

	sender, err := transport.NewUDPSender(cfg.OSCIP, cfg.OSCPort)
	if err != nil {
		return err
	}
	defer sender.Close()

	var mirror *MQTTMirror
	if cfg.MirrorEnabled() {
		mirror, err = ConnectMQTTMirror(cfg)
		if err != nil {
			logging.Logf("pose_sender: MQTT mirror disabled: %v", err)
			mirror = nil
		} else {
			defer mirror.Close()
		}
	}

	opts := DefaultOptions()
	opts.DeviceFilter = cfg.DeviceFilter
	opts.MaxPacketSize = cfg.OSCMaxPacketSize
	opts.IndexedAddresses = cfg.OSCIndexedAddresses
	opts.OnFrame = func(rep FrameReport) {
		fmt.Fprintf(out, "\r%s", rep.Line())
		if mirror != nil {
			mirror.Publish(rep)
		}
	}
	orch := NewOrchestrator(src, sender, opts)

	logging.Logf("pose_sender: showing data for device: %d", cfg.DeviceFilter)
	ListDevices(out, src)

	if err := orch.SendNotice(LaunchNotice); err != nil {
		logging.Logf("pose_sender: %v", err)
	}
	logging.Logf("pose_sender: sending OSC to %s every %d ms", sender.Address(), cfg.CycleIntervalMS)

	var after func()
	if showDelta {
		after = func() {
			l, r, d, ok := orch.HandDelta()
			if !ok {
				return
			}
			fmt.Fprintln(out, FormatHandDelta([3]float64{l.X, l.Y, l.Z}, [3]float64{r.X, r.Y, r.Z}, [3]float64{d.X, d.Y, d.Z}))
		}
	}

	frames := RunLoop(ctx, orch, time.Duration(cfg.CycleIntervalMS)*time.Millisecond, after)

	st := sender.Stats()
	fmt.Fprintln(out)
	logging.Logf("pose_sender: stopped after %d frames, %d datagrams sent, %d failed", frames, st.Sent, st.Failed)
	return nil
}
