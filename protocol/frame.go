// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package protocol implements the frames of the block programming protocol.
//
// Every frame has the layout
//
//	Command         : 1 byte
//	Bank            : 1 byte
//	Address         : 4 bytes, big endian
//	Length          : 2 bytes, big endian
//	Payload         : 0 up to 1024 bytes
//	CRC             : 2 bytes, low byte first
//
// Length is the payload size, except in read requests where it is the number
// of bytes requested and the payload is empty.
package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/dforsi/qdmr/protocol/crc"
)

// Frame is a request or response of the programming protocol.
type Frame struct {
	Command byte
	Bank    byte
	Address uint32
	Length  uint16
	Payload []byte
}

// DeviceError is the failure reported by an error response.
type DeviceError struct {
	Command byte
	Message string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device rejected %s: %s", CommandName(e.Command), e.Message)
}

// NewRequest builds a request carrying data.
func NewRequest(cmd, bank byte, addr uint32, data []byte) *Frame {
	return &Frame{Command: cmd, Bank: bank, Address: addr, Length: uint16(len(data)), Payload: data}
}

// NewReadRequest builds a request for n bytes at addr.
func NewReadRequest(bank byte, addr uint32, n int) *Frame {
	return &Frame{Command: CmdRead, Bank: bank, Address: addr, Length: uint16(n)}
}

// Reply builds the successful response to the request.
func (f *Frame) Reply(data []byte) *Frame {
	return &Frame{Command: f.Command, Bank: f.Bank, Address: f.Address, Length: uint16(len(data)), Payload: data}
}

// Fail builds the error response to the request.
func (f *Frame) Fail(err error) *Frame {
	msg := []byte(err.Error())
	if len(msg) > MaxPayload {
		msg = msg[:MaxPayload]
	}
	return &Frame{Command: f.Command | FlagError, Bank: f.Bank, Address: f.Address, Length: uint16(len(msg)), Payload: msg}
}

// IsError reports whether the frame is an error response.
func (f *Frame) IsError() bool {
	return f.Command&FlagError != 0
}

// Encode encodes the frame in wire format.
func (f *Frame) Encode() ([]byte, error) {
	if len(f.Payload) > MaxPayload {
		return nil, fmt.Errorf("protocol: payload of %d bytes exceeds %d", len(f.Payload), MaxPayload)
	}
	if len(f.Payload) != 0 && len(f.Payload) != int(f.Length) {
		return nil, fmt.Errorf("protocol: length %d does not match payload of %d bytes", f.Length, len(f.Payload))
	}
	length := MinSize + len(f.Payload)
	raw := make([]byte, length)
	raw[0] = f.Command
	raw[1] = f.Bank
	binary.BigEndian.PutUint32(raw[2:], f.Address)
	binary.BigEndian.PutUint16(raw[6:], f.Length)
	copy(raw[HeaderSize:], f.Payload)

	binary.LittleEndian.PutUint16(raw[length-CRCSize:], crc.Checksum(raw[:length-CRCSize]))
	return raw, nil
}

// Decode parses a complete frame and checks its CRC.
func Decode(raw []byte) (*Frame, error) {
	length := len(raw)
	if length < MinSize {
		return nil, fmt.Errorf("protocol: frame length '%v' does not meet minimum '%v'", length, MinSize)
	}
	checksum := binary.LittleEndian.Uint16(raw[length-CRCSize:])
	if expected := crc.Checksum(raw[:length-CRCSize]); checksum != expected {
		return nil, fmt.Errorf("protocol: crc '%04x' does not match expected '%04x'", checksum, expected)
	}
	f := &Frame{
		Command: raw[0],
		Bank:    raw[1],
		Address: binary.BigEndian.Uint32(raw[2:]),
		Length:  binary.BigEndian.Uint16(raw[6:]),
	}
	if payload := raw[HeaderSize : length-CRCSize]; len(payload) > 0 {
		if len(payload) != int(f.Length) {
			return nil, fmt.Errorf("protocol: length %d does not match payload of %d bytes", f.Length, len(payload))
		}
		f.Payload = payload
	}
	return f, nil
}

// Verify checks that resp answers the request f. Error responses are
// returned as *DeviceError.
func (f *Frame) Verify(resp *Frame) error {
	if resp.Command&^FlagError != f.Command {
		return fmt.Errorf("protocol: response command 0x%02x does not match request 0x%02x", resp.Command, f.Command)
	}
	if resp.IsError() {
		return &DeviceError{Command: f.Command, Message: string(resp.Payload)}
	}
	if resp.Bank != f.Bank || resp.Address != f.Address {
		return fmt.Errorf("protocol: response for %d:0x%x does not match request %d:0x%x", resp.Bank, resp.Address, f.Bank, f.Address)
	}
	if f.Command == CmdRead && len(resp.Payload) != int(f.Length) {
		return fmt.Errorf("protocol: got %d bytes, requested %d", len(resp.Payload), f.Length)
	}
	return nil
}
