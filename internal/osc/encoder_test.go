package osc

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage_Controller(t *testing.T) {
	data, err := NewEncoder(0).
		BeginMessage("/controller").
		Float32(0.1, 1.2, -0.3).
		Float32(1, 0, 0, 0).
		EndMessage().
		Bytes()
	require.NoError(t, err)

	// address(12) + tags ",fffffff"(12) + 7 floats(28)
	assert.Len(t, data, 52)
	assert.Equal(t, "/controller\x00", string(data[:12]))
	assert.Equal(t, ",fffffff\x00\x00\x00\x00", string(data[12:24]))

	msgs, err := Messages(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/controller", msgs[0].Address)
	assert.Equal(t, []float32{0.1, 1.2, -0.3, 1, 0, 0, 0}, Floats(msgs[0]))
}

func TestEncodeBundle_Layout(t *testing.T) {
	data, err := NewEncoder(DefaultMaxSize).
		BeginBundle().
		BeginMessage("/controller").
		Float32(0, 0, 0, 1, 0, 0, 0).
		EndMessage().
		EndBundle().
		Bytes()
	require.NoError(t, err)

	require.Len(t, data, 8+8+4+52)
	assert.Equal(t, "#bundle\x00", string(data[:8]))
	assert.Equal(t, uint64(1), binary.BigEndian.Uint64(data[8:16]), "immediate time tag")
	assert.Equal(t, uint32(52), binary.BigEndian.Uint32(data[16:20]))
	assert.Equal(t, "/controller\x00", string(data[20:32]))

	msgs, err := Messages(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0}, Floats(msgs[0]))
}

func TestEncodeBundle_MultipleMessages(t *testing.T) {
	data, err := NewEncoder(0).
		BeginBundle().
		BeginMessage("/controller").Float32(1, 2, 3).EndMessage().
		BeginMessage("/tracker").Float32(4, 5, 6).EndMessage().
		EndBundle().
		Bytes()
	require.NoError(t, err)

	msgs, err := Messages(data)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "/controller", msgs[0].Address)
	assert.Equal(t, "/tracker", msgs[1].Address)
}

func TestEncoder_TooLarge(t *testing.T) {
	t.Run("message over limit", func(t *testing.T) {
		data, err := NewEncoder(48).
			BeginMessage("/controller").
			Float32(0, 0, 0, 1, 0, 0, 0).
			EndMessage().
			Bytes()
		assert.ErrorIs(t, err, ErrMessageTooLarge)
		assert.Nil(t, data)
	})

	t.Run("bundle over limit", func(t *testing.T) {
		e := NewEncoder(64)
		data, err := e.BeginBundle().
			BeginMessage("/controller").
			Float32(0, 0, 0, 1, 0, 0, 0).
			EndMessage().
			EndBundle().
			Bytes()
		assert.ErrorIs(t, err, ErrMessageTooLarge)
		assert.Nil(t, data)
		assert.ErrorIs(t, e.Err(), ErrMessageTooLarge)
	})

	t.Run("exact fit", func(t *testing.T) {
		data, err := NewEncoder(52).
			BeginMessage("/controller").
			Float32(0, 0, 0, 1, 0, 0, 0).
			EndMessage().
			Bytes()
		require.NoError(t, err)
		assert.Len(t, data, 52)
	})

	t.Run("address alone over limit", func(t *testing.T) {
		e := NewEncoder(16).BeginMessage("/" + strings.Repeat("a", 40))
		assert.ErrorIs(t, e.Err(), ErrMessageTooLarge)
		_, err := e.Float32(1).EndMessage().Bytes()
		assert.ErrorIs(t, err, ErrMessageTooLarge)
	})
}

func TestEncoder_State(t *testing.T) {
	tests := []struct {
		name  string
		build func(e *Encoder) *Encoder
	}{
		{"argument without message", func(e *Encoder) *Encoder { return e.Float32(1) }},
		{"string without message", func(e *Encoder) *Encoder { return e.String("x") }},
		{"end without begin", func(e *Encoder) *Encoder { return e.EndMessage() }},
		{"end bundle without begin", func(e *Encoder) *Encoder { return e.EndBundle() }},
		{"nested message", func(e *Encoder) *Encoder { return e.BeginMessage("/a").BeginMessage("/b") }},
		{"nested bundle", func(e *Encoder) *Encoder { return e.BeginBundle().BeginBundle() }},
		{"bundle closed with open message", func(e *Encoder) *Encoder {
			return e.BeginBundle().BeginMessage("/a").EndBundle()
		}},
		{"second message outside bundle", func(e *Encoder) *Encoder {
			return e.BeginMessage("/a").EndMessage().BeginMessage("/b")
		}},
		{"bad address", func(e *Encoder) *Encoder { return e.BeginMessage("controller") }},
		{"not finished", func(e *Encoder) *Encoder { return e.BeginMessage("/a").Float32(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.build(NewEncoder(0)).Bytes()
			assert.ErrorIs(t, err, ErrEncoderState)
			assert.Nil(t, data)
		})
	}
}

func TestEncoder_StickyError(t *testing.T) {
	e := NewEncoder(0).Float32(1)
	first := e.Err()
	require.Error(t, first)

	e.BeginMessage("/ok").Float32(2).EndMessage()
	_, err := e.Bytes()
	assert.Equal(t, first, err)
}

func TestEncodeMessage_Helper(t *testing.T) {
	data, err := EncodeMessage(0, "/tracker", float32(1), float32(2), "T")
	require.NoError(t, err)

	msgs, err := Messages(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, []interface{}{float32(1), float32(2), "T"}, msgs[0].Arguments)

	_, err = EncodeMessage(0, "/tracker", 3.5)
	assert.ErrorIs(t, err, ErrEncoderState)
}

func TestEncodeNotice(t *testing.T) {
	data, err := EncodeNotice(0, "vive-osc-sender launched")
	require.NoError(t, err)
	assert.Equal(t, "#bundle\x00", string(data[:8]))

	msgs, err := Messages(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/notice", msgs[0].Address)
	assert.Equal(t, []interface{}{"vive-osc-sender launched"}, msgs[0].Arguments)
}

func TestDecode_Garbage(t *testing.T) {
	p, err := Decode([]byte("nope"))
	assert.ErrorIs(t, err, ErrNotPacket)
	assert.Nil(t, p)

	msgs, err := Messages([]byte("nope"))
	assert.ErrorIs(t, err, ErrNotPacket)
	assert.Empty(t, msgs)

	_, err = Decode(nil)
	assert.Error(t, err)
}

func TestDecode_Truncated(t *testing.T) {
	// Type tag announces a float that is not there.
	_, err := Decode([]byte("/x\x00\x00,f\x00\x00"))
	assert.Error(t, err)

	full, err := EncodeMessage(0, "/controller", float32(1), float32(2))
	require.NoError(t, err)
	_, err = Decode(full[:len(full)-2])
	assert.Error(t, err)
}
