// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package transport delivers encoded packets as UDP datagrams.
package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/relabs-tech/lighthouse_osc/internal/logging"
)

// Sender transmits one datagram per call. Send never reports failure to the
// caller: delivery is best effort.
type Sender interface {
	Send(packet []byte)
}

// Conn is the part of a connected UDP socket the sender uses.
type Conn interface {
	Write(b []byte) (int, error)
	Close() error
}

// Stats counts datagrams handled by a UDPSender.
type Stats struct {
	Sent      uint64
	Failed    uint64
	BytesSent uint64
	LastError error
}

// failureLogInterval bounds how often send failures are logged.
const failureLogInterval = 2 * time.Second

// UDPSender sends datagrams to one destination fixed at construction.
type UDPSender struct {
	conn    Conn
	address string

	mu         sync.Mutex
	stats      Stats
	unlogged   uint64
	lastLogged time.Time
	now        func() time.Time
}

// NewUDPSender resolves ip:port once and opens a connected UDP socket to it.
func NewUDPSender(ip string, port int) (*UDPSender, error) {
	address := net.JoinHostPort(ip, fmt.Sprint(port))
	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination %s: %w", address, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to open udp socket to %s: %w", address, err)
	}
	return NewSenderWithConn(conn, address), nil
}

// NewSenderWithConn wraps an already connected socket.
func NewSenderWithConn(conn Conn, address string) *UDPSender {
	return &UDPSender{conn: conn, address: address, now: time.Now}
}

// Address returns the destination as host:port.
func (s *UDPSender) Address() string {
	return s.address
}

// Send writes packet as a single datagram. Errors are counted and logged at
// most once per failureLogInterval, then dropped.
func (s *UDPSender) Send(packet []byte) {
	n, err := s.conn.Write(packet)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.Failed++
		s.stats.LastError = err
		s.unlogged++
		now := s.now()
		if now.Sub(s.lastLogged) >= failureLogInterval {
			logging.Logf("transport: dropped %d datagram(s) to %s (latest: %v)", s.unlogged, s.address, err)
			s.unlogged = 0
			s.lastLogged = now
		}
		return
	}
	s.stats.Sent++
	s.stats.BytesSent += uint64(n)
}

// Stats returns a copy of the counters.
func (s *UDPSender) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close closes the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}

var _ Sender = (*UDPSender)(nil)
