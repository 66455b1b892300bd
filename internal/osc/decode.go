// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package osc

import (
	"errors"
	"fmt"

	goosc "github.com/hypebeast/go-osc/osc"
)

// ErrNotPacket is returned for data that starts with neither an address
// nor a bundle tag.
var ErrNotPacket = errors.New("not an OSC packet")

// Decode parses one OSC packet.
func Decode(data []byte) (goosc.Packet, error) {
	p, err := goosc.ParsePacket(string(data))
	if err != nil {
		return nil, fmt.Errorf("osc: decode: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("osc: decode: %w", ErrNotPacket)
	}
	return p, nil
}

// Messages parses one OSC packet and returns its messages in order, with
// nested bundles flattened.
func Messages(data []byte) ([]*goosc.Message, error) {
	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	var out []*goosc.Message
	collect(p, &out)
	return out, nil
}

func collect(p goosc.Packet, out *[]*goosc.Message) {
	switch v := p.(type) {
	case *goosc.Message:
		*out = append(*out, v)
	case *goosc.Bundle:
		*out = append(*out, v.Messages...)
		for _, b := range v.Bundles {
			collect(b, out)
		}
	}
}

// Floats returns the leading float32 arguments of a message.
func Floats(msg *goosc.Message) []float32 {
	var out []float32
	for _, a := range msg.Arguments {
		f, ok := a.(float32)
		if !ok {
			break
		}
		out = append(out, f)
	}
	return out
}
