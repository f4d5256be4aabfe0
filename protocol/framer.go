// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrRequestTimedOut = errors.New("protocol: request timed out")

const (
	stateCommand = 1 << iota
	stateHeader
	statePayload
	stateCRC
)

type InvalidLengthError struct {
	Length uint16
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid length received: %d", e.Length)
}

// PayloadLength returns the payload size of a frame from its command and
// length field.
func PayloadLength(cmd byte, length uint16, request bool) (int, error) {
	if request && cmd == CmdRead {
		if length == 0 || length > MaxPayload {
			return 0, &InvalidLengthError{Length: length}
		}
		return 0, nil
	}
	if length > MaxPayload {
		return 0, &InvalidLengthError{Length: length}
	}
	return int(length), nil
}

// ReadResponse reads the response to a request with the given command.
// Bytes preceding the response are discarded. A zero deadline disables the
// timeout.
func ReadResponse(cmd byte, r io.Reader, deadline time.Time) ([]byte, error) {
	match := func(b byte) bool { return b == cmd || b == cmd|FlagError }
	return readFrame(r, deadline, match, false)
}

// ReadRequest reads the next request. Bytes that cannot start a request are
// discarded.
func ReadRequest(r io.Reader) ([]byte, error) {
	return readFrame(r, time.Time{}, Known, true)
}

func readFrame(r io.Reader, deadline time.Time, match func(byte) bool, request bool) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("reader is nil")
	}

	data := make([]byte, MaxSize)
	state := stateCommand
	var n, toRead int

	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, ErrRequestTimedOut
		}

		switch state {
		case stateCommand:
			if _, err := io.ReadFull(r, data[:1]); err != nil {
				return nil, err
			}
			if match(data[0]) {
				n = 1
				state = stateHeader
			}
		case stateHeader:
			if _, err := io.ReadFull(r, data[n:HeaderSize]); err != nil {
				return nil, err
			}
			n = HeaderSize
			length := binary.BigEndian.Uint16(data[6:])
			size, err := PayloadLength(data[0], length, request)
			if err != nil {
				return nil, err
			}
			toRead = size
			state = statePayload
		case statePayload:
			if _, err := io.ReadFull(r, data[n:n+toRead]); err != nil {
				return nil, err
			}
			n += toRead
			state = stateCRC
		case stateCRC:
			if _, err := io.ReadFull(r, data[n:n+CRCSize]); err != nil {
				return nil, err
			}
			n += CRCSize
			return data[:n], nil
		}
	}
}
