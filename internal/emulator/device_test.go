// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package emulator

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dforsi/qdmr/internal/config"
	"github.com/dforsi/qdmr/internal/store"
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/protocol"
	"github.com/dforsi/qdmr/transport/tcp"
)

func newDevice(t *testing.T, storage store.Storage) *Device {
	img := memory.New()
	img.MustAddElement(memory.BankEEPROM, 0x40, 0x40, 0xff)
	d, err := NewDevice("Test GD-77", img, 16, storage)
	require.NoError(t, err)
	return d
}

func TestDevice_Modes(t *testing.T) {
	d := newDevice(t, nil)

	_, err := d.Read(memory.BankEEPROM, 0x40, 16)
	assert.ErrorIs(t, err, ErrNotReading)
	assert.ErrorIs(t, d.ReadFinish(), ErrNotReading)
	assert.Error(t, d.ReadStart(memory.BankFlash, 0))

	require.NoError(t, d.ReadStart(memory.BankEEPROM, 0x40))
	assert.ErrorIs(t, d.WriteStart(memory.BankEEPROM, 0x40), ErrBusy)
	assert.ErrorIs(t, d.Write(memory.BankEEPROM, 0x40, make([]byte, 16)), ErrNotWriting)

	data, err := d.Read(memory.BankEEPROM, 0x50, 16)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 16), data)
	require.NoError(t, d.ReadFinish())

	require.NoError(t, d.ReadStart(memory.BankEEPROM, 0x40))
	require.NoError(t, d.Reboot())
	assert.ErrorIs(t, d.ReadFinish(), ErrNotReading, "reboot leaves read mode")
	assert.Equal(t, 1, d.Reboots())
}

func TestDevice_Blocks(t *testing.T) {
	d := newDevice(t, nil)
	require.NoError(t, d.ReadStart(memory.BankEEPROM, 0x40))

	var be *BlockError
	_, err := d.Read(memory.BankEEPROM, 0x48, 16)
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "eeprom 0x48+16 is not an aligned block of 16 bytes", be.Error())

	_, err = d.Read(memory.BankEEPROM, 0x40, 32)
	assert.ErrorAs(t, err, &be)

	_, err = d.Read(memory.BankEEPROM, 0x100, 16)
	var re *memory.RangeError
	assert.ErrorAs(t, err, &re)
}

func TestDevice_WritePersists(t *testing.T) {
	storage := store.NewMemoryStorage()
	d := newDevice(t, storage)

	block := bytes.Repeat([]byte{0x5a}, 16)
	require.NoError(t, d.WriteStart(memory.BankEEPROM, 0x60))
	require.NoError(t, d.Write(memory.BankEEPROM, 0x60, block))
	require.NoError(t, d.WriteFinish())

	reloaded := newDevice(t, storage)
	got, err := reloaded.Image().Read(memory.BankEEPROM, 0x60, 16)
	require.NoError(t, err)
	assert.Equal(t, block, got)
}

func TestDevice_Handle(t *testing.T) {
	d := newDevice(t, nil)
	ctx := context.Background()

	resp := d.Handle(ctx, protocol.NewRequest(protocol.CmdIdentify, 0, 0, nil))
	assert.Equal(t, "Test GD-77", string(resp.Payload))

	req := protocol.NewRequest(protocol.CmdReadStart, byte(memory.BankEEPROM), 0x40, nil)
	assert.NoError(t, req.Verify(d.Handle(ctx, req)))

	req = protocol.NewReadRequest(byte(memory.BankEEPROM), 0x40, 16)
	resp = d.Handle(ctx, req)
	require.NoError(t, req.Verify(resp))
	assert.Len(t, resp.Payload, 16)

	req = protocol.NewReadRequest(byte(memory.BankEEPROM), 0x44, 16)
	var de *protocol.DeviceError
	require.ErrorAs(t, req.Verify(d.Handle(ctx, req)), &de)
	assert.Contains(t, de.Message, "not an aligned block")

	resp = d.Handle(ctx, &protocol.Frame{Command: 0x7f})
	assert.True(t, resp.IsError())
	assert.Equal(t, "illegal command 0x7f", string(resp.Payload))
}

func TestNewListener(t *testing.T) {
	l, err := NewListener(config.ListenerConfig{Type: "tcp", Tcp: config.TcpConfig{Address: "127.0.0.1:0"}})
	require.NoError(t, err)
	assert.IsType(t, &tcp.Server{}, l)

	_, err = NewListener(config.ListenerConfig{Type: "usb"})
	assert.ErrorContains(t, err, `unknown listener type "usb"`)
}

func TestEmulator_Start(t *testing.T) {
	assert.Error(t, New(newDevice(t, nil)).Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(newDevice(t, nil), tcp.NewServer("127.0.0.1:0")).Start(ctx)
	}()
	cancel()
	assert.NoError(t, <-done)
}
