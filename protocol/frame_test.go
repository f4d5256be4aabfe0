// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_EncodeDecode(t *testing.T) {
	req := NewRequest(CmdWrite, 2, 0x7b020, []byte{0xde, 0xad, 0xbe, 0xef})
	raw, err := req.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x21, 0x02, 0x00, 0x07, 0xb0, 0x20, 0x00, 0x04, 0xde, 0xad, 0xbe, 0xef}, raw[:12])
	assert.Len(t, raw, MinSize+4)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestDecode_Errors(t *testing.T) {
	raw, err := NewReadRequest(1, 0x40, 32).Encode()
	require.NoError(t, err)

	_, err = Decode(raw[:5])
	assert.ErrorContains(t, err, "does not meet minimum")

	corrupt := append([]byte(nil), raw...)
	corrupt[3] ^= 0x01
	_, err = Decode(corrupt)
	assert.ErrorContains(t, err, "crc")
}

func TestFrame_Encode_TooLarge(t *testing.T) {
	_, err := NewRequest(CmdWrite, 0, 0, make([]byte, MaxPayload+1)).Encode()
	assert.Error(t, err)
}

func TestFrame_Verify(t *testing.T) {
	req := NewReadRequest(1, 0x40, 4)

	assert.NoError(t, req.Verify(req.Reply([]byte{1, 2, 3, 4})))
	assert.ErrorContains(t, req.Verify(req.Reply([]byte{1, 2})), "requested 4")

	var de *DeviceError
	err := req.Verify(req.Fail(errors.New("address out of range")))
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "device rejected read: address out of range", err.Error())

	other := NewRequest(CmdWrite, 1, 0x40, []byte{0})
	assert.Error(t, req.Verify(other.Reply(nil)))
}

func TestPayloadLength(t *testing.T) {
	tests := []struct {
		name    string
		cmd     byte
		length  uint16
		request bool
		want    int
		wantErr bool
	}{
		{"ReadRequest", CmdRead, 32, true, 0, false},
		{"ReadRequest_Zero", CmdRead, 0, true, 0, true},
		{"ReadResponse", CmdRead, 32, false, 32, false},
		{"WriteRequest", CmdWrite, 1024, true, 1024, false},
		{"TooLong", CmdWrite, 1025, true, 0, true},
		{"Ack", CmdWriteStart, 0, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PayloadLength(tt.cmd, tt.length, tt.request)
			if (err != nil) != tt.wantErr {
				t.Errorf("PayloadLength() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("PayloadLength() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadResponse_SkipsNoise(t *testing.T) {
	req := NewReadRequest(2, 0x100, 3)
	raw, err := req.Reply([]byte{7, 8, 9}).Encode()
	require.NoError(t, err)

	stream := append([]byte{0x00, 0x55, 0xff}, raw...)
	got, err := ReadResponse(CmdRead, bytes.NewReader(stream), time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestReadResponse_Error(t *testing.T) {
	raw, err := NewRequest(CmdWriteStart, 1, 0, nil).Fail(errors.New("busy")).Encode()
	require.NoError(t, err)

	got, err := ReadResponse(CmdWriteStart, bytes.NewReader(raw), time.Time{})
	require.NoError(t, err)
	f, err := Decode(got)
	require.NoError(t, err)
	assert.True(t, f.IsError())
	assert.Equal(t, "busy", string(f.Payload))
}

func TestReadResponse_TimedOut(t *testing.T) {
	_, err := ReadResponse(CmdRead, bytes.NewReader(nil), time.Now().Add(-time.Second))
	assert.ErrorIs(t, err, ErrRequestTimedOut)
}

func TestReadRequest(t *testing.T) {
	read, _ := NewReadRequest(1, 0x20, 32).Encode()
	write, _ := NewRequest(CmdWrite, 1, 0x20, []byte{1, 2}).Encode()
	stream := bytes.NewReader(append(append([]byte{0x99}, read...), write...))

	got, err := ReadRequest(stream)
	require.NoError(t, err)
	assert.Equal(t, read, got)

	got, err = ReadRequest(stream)
	require.NoError(t, err)
	assert.Equal(t, write, got)
}

func TestReadRequest_InvalidLength(t *testing.T) {
	raw := []byte{CmdWrite, 0, 0, 0, 0, 0, 0x08, 0x00}
	var le *InvalidLengthError
	_, err := ReadRequest(bytes.NewReader(raw))
	require.ErrorAs(t, err, &le)
	assert.Equal(t, uint16(0x800), le.Length)
}
