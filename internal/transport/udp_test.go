package transport

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/lighthouse_osc/internal/logging"
)

type mockConn struct {
	writes [][]byte
	err    error
	closed bool
}

func (m *mockConn) Write(b []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	m.writes = append(m.writes, cp)
	return len(b), nil
}

func (m *mockConn) Close() error {
	m.closed = true
	return nil
}

func captureLogs(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	prev := logging.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, format)
	})
	t.Cleanup(func() { logging.SetLogger(prev) })
	return &lines
}

func TestUDPSender_Loopback(t *testing.T) {
	server, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer server.Close()
	port := server.LocalAddr().(*net.UDPAddr).Port

	s, err := NewUDPSender("127.0.0.1", port)
	require.NoError(t, err)
	defer s.Close()

	s.Send([]byte("/controller\x00"))

	require.NoError(t, server.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, 2048)
	n, _, err := server.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "/controller\x00", string(buf[:n]))

	st := s.Stats()
	assert.Equal(t, uint64(1), st.Sent)
	assert.Equal(t, uint64(12), st.BytesSent)
	assert.Zero(t, st.Failed)
}

func TestNewUDPSender_InvalidAddress(t *testing.T) {
	_, err := NewUDPSender("invalid-address-12345.invalid", 9999)
	assert.Error(t, err)
}

func TestUDPSender_Address(t *testing.T) {
	s := NewSenderWithConn(&mockConn{}, "127.0.0.1:9999")
	assert.Equal(t, "127.0.0.1:9999", s.Address())
}

func TestUDPSender_FailuresAreSwallowed(t *testing.T) {
	logs := captureLogs(t)
	conn := &mockConn{err: errors.New("connection refused")}
	s := NewSenderWithConn(conn, "127.0.0.1:9")

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Send([]byte("a"))
	s.Send([]byte("b"))
	s.Send([]byte("c"))

	st := s.Stats()
	assert.Equal(t, uint64(3), st.Failed)
	assert.Zero(t, st.Sent)
	assert.EqualError(t, st.LastError, "connection refused")
	assert.Len(t, *logs, 1, "failures inside one interval are logged once")

	clock = clock.Add(failureLogInterval)
	s.Send([]byte("d"))
	assert.Len(t, *logs, 2)

	conn.err = nil
	s.Send([]byte("e"))
	assert.Equal(t, uint64(1), s.Stats().Sent)
	assert.Equal(t, [][]byte{[]byte("e")}, conn.writes)
}

func TestUDPSender_Close(t *testing.T) {
	conn := &mockConn{}
	s := NewSenderWithConn(conn, "x")
	require.NoError(t, s.Close())
	assert.True(t, conn.closed)
}
