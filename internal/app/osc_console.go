// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/relabs-tech/lighthouse_osc/internal/logging"
	"github.com/relabs-tech/lighthouse_osc/internal/osc"
)

// PrintDispatcher writes every received OSC message to Out, one line each.
// Bundles are flattened.
type PrintDispatcher struct {
	mu  sync.Mutex
	Out io.Writer
}

// Dispatch implements the go-osc Dispatcher interface.
func (d *PrintDispatcher) Dispatch(packet goosc.Packet) {
	switch p := packet.(type) {
	case *goosc.Message:
		d.print(p)
	case *goosc.Bundle:
		for _, m := range p.Messages {
			d.print(m)
		}
		for _, b := range p.Bundles {
			d.Dispatch(b)
		}
	}
}

func (d *PrintDispatcher) print(msg *goosc.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.Out, FormatOSCMessage(msg))
}

// FormatOSCMessage renders address and arguments. Floats use two decimals.
func FormatOSCMessage(msg *goosc.Message) string {
	var b strings.Builder
	b.WriteString(msg.Address)
	for _, a := range msg.Arguments {
		switch v := a.(type) {
		case float32:
			fmt.Fprintf(&b, " % .2f", v)
		case string:
			fmt.Fprintf(&b, " %q", v)
		default:
			fmt.Fprintf(&b, " %v", v)
		}
	}
	return b.String()
}

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

// ServeOSC reads datagrams from pc and dispatches each decoded packet in
// arrival order. Datagrams that do not decode are logged and skipped. It
// returns nil once pc is closed.
func ServeOSC(pc net.PacketConn, d goosc.Dispatcher) error {
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := pc.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		p, err := osc.Decode(buf[:n])
		if err != nil {
			logging.Logf("osc_console: %s: %v", from, err)
			continue
		}
		d.Dispatch(p)
	}
}

// RunOSCConsole listens for OSC datagrams on addr and prints them.
func RunOSCConsole(addr string) error {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	defer pc.Close()

	logging.Logf("osc_console: listening for OSC on %s", pc.LocalAddr())
	return ServeOSC(pc, &PrintDispatcher{Out: os.Stdout})
}
