// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package osc builds size-bounded OSC packets.
//
// Serialization is done by go-osc. This package adds the streaming
// begin/append/end API, an immediate-dispatch bundle wrapper and a hard size
// limit: a packet that would not fit is rejected, never truncated.
package osc

import (
	"errors"
	"fmt"

	goosc "github.com/hypebeast/go-osc/osc"
)

// DefaultMaxSize is the size limit of one encoded packet in bytes.
const DefaultMaxSize = 2048

// immediateTimetag is the OSC time tag meaning "dispatch on receipt".
const immediateTimetag uint64 = 1

var (
	// ErrMessageTooLarge is returned when an encoded packet would exceed the
	// encoder's size limit.
	ErrMessageTooLarge = errors.New("osc: message too large")
	// ErrEncoderState is returned when encoder calls are made out of order.
	ErrEncoderState = errors.New("osc: invalid encoder state")
)

// Encoder assembles one OSC packet: either a single message or a bundle of
// messages. The first error is sticky; later calls are no-ops and Bytes
// returns it.
//
// An Encoder is not safe for concurrent use. Build a new one per packet.
type Encoder struct {
	maxSize int
	bundle  *goosc.Bundle
	msg     *goosc.Message
	packet  goosc.Packet
	done    bool
	err     error
}

// NewEncoder returns an encoder limited to maxSize bytes. maxSize <= 0
// selects DefaultMaxSize.
func NewEncoder(maxSize int) *Encoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Encoder{maxSize: maxSize}
}

// MaxSize returns the encoder's size limit.
func (e *Encoder) MaxSize() int {
	return e.maxSize
}

// Err returns the first error recorded by the encoder.
func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) stateErr(format string, args ...interface{}) {
	e.fail(fmt.Errorf("%w: %s", ErrEncoderState, fmt.Sprintf(format, args...)))
}

// BeginBundle opens a bundle with an immediate time tag. Messages completed
// before EndBundle are placed in it.
func (e *Encoder) BeginBundle() *Encoder {
	if e.err != nil {
		return e
	}
	if e.bundle != nil || e.msg != nil || e.done {
		e.stateErr("bundle must be the outermost element")
		return e
	}
	b := &goosc.Bundle{Timetag: *goosc.NewTimetagFromTimetag(immediateTimetag)}
	e.bundle = b
	return e
}

// BeginMessage opens a message with the given address.
func (e *Encoder) BeginMessage(address string) *Encoder {
	if e.err != nil {
		return e
	}
	if e.msg != nil {
		e.stateErr("message %q is still open", e.msg.Address)
		return e
	}
	if e.done {
		e.stateErr("packet already complete")
		return e
	}
	if len(address) == 0 || address[0] != '/' {
		e.stateErr("address %q must start with '/'", address)
		return e
	}
	// The address alone needs len+1 bytes plus padding.
	if n := padded(len(address) + 1); n > e.maxSize {
		e.fail(fmt.Errorf("%w: address needs %d bytes, limit %d", ErrMessageTooLarge, n, e.maxSize))
		return e
	}
	e.msg = goosc.NewMessage(address)
	return e
}

// Float32 appends float arguments to the open message.
func (e *Encoder) Float32(values ...float32) *Encoder {
	if e.err != nil {
		return e
	}
	if e.msg == nil {
		e.stateErr("float argument without an open message")
		return e
	}
	for _, v := range values {
		e.msg.Append(v)
	}
	return e
}

// String appends a string argument to the open message.
func (e *Encoder) String(s string) *Encoder {
	if e.err != nil {
		return e
	}
	if e.msg == nil {
		e.stateErr("string argument without an open message")
		return e
	}
	e.msg.Append(s)
	return e
}

// EndMessage closes the open message. Inside a bundle the message is added
// to it; otherwise the message becomes the packet.
func (e *Encoder) EndMessage() *Encoder {
	if e.err != nil {
		return e
	}
	if e.msg == nil {
		e.stateErr("no open message")
		return e
	}
	msg := e.msg
	e.msg = nil

	if e.bundle != nil {
		if err := e.bundle.Append(msg); err != nil {
			e.fail(fmt.Errorf("osc: bundle append: %w", err))
		}
		return e
	}
	e.packet = msg
	e.done = true
	return e
}

// EndBundle closes the open bundle, which becomes the packet.
func (e *Encoder) EndBundle() *Encoder {
	if e.err != nil {
		return e
	}
	if e.bundle == nil {
		e.stateErr("no open bundle")
		return e
	}
	if e.msg != nil {
		e.stateErr("message %q is still open", e.msg.Address)
		return e
	}
	e.packet = e.bundle
	e.bundle = nil
	e.done = true
	return e
}

// Bytes serializes the completed packet. It fails with ErrMessageTooLarge,
// returning no bytes, when the result exceeds the size limit.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if !e.done {
		e.stateErr("packet is not complete")
		return nil, e.err
	}
	data, err := e.packet.MarshalBinary()
	if err != nil {
		e.fail(fmt.Errorf("osc: marshal: %w", err))
		return nil, e.err
	}
	if len(data) > e.maxSize {
		e.fail(fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(data), e.maxSize))
		return nil, e.err
	}
	return data, nil
}

// EncodeMessage encodes a single message with float32 and string arguments.
func EncodeMessage(maxSize int, address string, args ...interface{}) ([]byte, error) {
	e := NewEncoder(maxSize).BeginMessage(address)
	for _, a := range args {
		switch v := a.(type) {
		case float32:
			e.Float32(v)
		case string:
			e.String(v)
		default:
			e.stateErr("unsupported argument type %T", a)
		}
	}
	return e.EndMessage().Bytes()
}

// EncodeNotice encodes a /notice message carrying text, wrapped in an
// immediate bundle.
func EncodeNotice(maxSize int, text string) ([]byte, error) {
	return NewEncoder(maxSize).
		BeginBundle().
		BeginMessage("/notice").
		String(text).
		EndMessage().
		EndBundle().
		Bytes()
}

func padded(n int) int {
	return (n + 3) &^ 3
}
