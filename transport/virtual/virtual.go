// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package virtual programs an emulated radio in-process, e.g. an image file
// on disk that stands in for the real device.
package virtual

import (
	"context"
	"errors"
	"sync"

	"github.com/dforsi/qdmr/internal/emulator"
	"github.com/dforsi/qdmr/memory"
)

var errNotOpen = errors.New("virtual: transport is not open")

// Transport implements transport.Transport for an emulated device.
type Transport struct {
	device *emulator.Device

	mu   sync.Mutex
	open bool
}

// New creates a transport talking to device. The caller keeps ownership of
// the device and closes it when done.
func New(device *emulator.Device) *Transport {
	return &Transport{device: device}
}

func (t *Transport) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = true
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	return nil
}

func (t *Transport) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return errNotOpen
	}
	return nil
}

func (t *Transport) BlockSize() int { return t.device.BlockSize() }

func (t *Transport) Identify(ctx context.Context) (string, error) {
	if err := t.ready(ctx); err != nil {
		return "", err
	}
	return t.device.Name(), nil
}

func (t *Transport) ReadStart(ctx context.Context, bank memory.Bank, addr uint32) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	return t.device.ReadStart(bank, addr)
}

func (t *Transport) Read(ctx context.Context, bank memory.Bank, addr uint32, n int) ([]byte, error) {
	if err := t.ready(ctx); err != nil {
		return nil, err
	}
	return t.device.Read(bank, addr, n)
}

func (t *Transport) ReadFinish(ctx context.Context) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	return t.device.ReadFinish()
}

func (t *Transport) WriteStart(ctx context.Context, bank memory.Bank, addr uint32) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	return t.device.WriteStart(bank, addr)
}

func (t *Transport) Write(ctx context.Context, bank memory.Bank, addr uint32, data []byte) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	return t.device.Write(bank, addr, data)
}

func (t *Transport) WriteFinish(ctx context.Context) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	return t.device.WriteFinish()
}

func (t *Transport) Reboot(ctx context.Context) error {
	if err := t.ready(ctx); err != nil {
		return err
	}
	return t.device.Reboot()
}
