// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package emulator imitates the programming interface of a radio on top of a
// persisted memory image.
package emulator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dforsi/qdmr/internal/store"
	"github.com/dforsi/qdmr/memory"
)

var (
	ErrNotReading = errors.New("not in read mode")
	ErrNotWriting = errors.New("not in write mode")
	ErrBusy       = errors.New("transfer in progress")
)

// BlockError reports an access that is not exactly one aligned block.
type BlockError struct {
	Bank      memory.Bank
	Address   uint32
	Length    int
	BlockSize int
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s 0x%x+%d is not an aligned block of %d bytes", e.Bank, e.Address, e.Length, e.BlockSize)
}

type mode uint8

const (
	modeIdle mode = iota
	modeReading
	modeWriting
)

// Device is an emulated radio.
type Device struct {
	name      string
	blockSize int
	img       *memory.Image
	storage   store.Storage

	mu      sync.Mutex
	mode    mode
	bank    memory.Bank
	reboots int
}

// NewDevice loads the memory of the device from storage. img defines the
// memory map, e.g. a freshly erased codeplug image of the model.
func NewDevice(name string, img *memory.Image, blockSize int, storage store.Storage) (*Device, error) {
	if storage == nil {
		storage = store.NewMemoryStorage()
	}
	if err := storage.Load(img); err != nil {
		return nil, fmt.Errorf("failed to load image of %s: %w", name, err)
	}
	return &Device{name: name, blockSize: blockSize, img: img, storage: storage}, nil
}

func (d *Device) Name() string         { return d.name }
func (d *Device) BlockSize() int       { return d.blockSize }
func (d *Device) Image() *memory.Image { return d.img }

// Reboots returns how often the device was rebooted.
func (d *Device) Reboots() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reboots
}

func (d *Device) ReadStart(bank memory.Bank, addr uint32) error {
	return d.start(modeReading, bank)
}

func (d *Device) Read(bank memory.Bank, addr uint32, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.check(modeReading, bank, addr, n); err != nil {
		return nil, err
	}
	return d.img.Read(bank, addr, n)
}

func (d *Device) ReadFinish() error {
	return d.finish(modeReading)
}

func (d *Device) WriteStart(bank memory.Bank, addr uint32) error {
	return d.start(modeWriting, bank)
}

func (d *Device) Write(bank memory.Bank, addr uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.check(modeWriting, bank, addr, len(data)); err != nil {
		return err
	}
	if err := d.img.Write(bank, addr, data); err != nil {
		return err
	}
	d.storage.OnWrite(bank, addr, len(data))
	return nil
}

// WriteFinish leaves write mode and saves the image.
func (d *Device) WriteFinish() error {
	if err := d.finish(modeWriting); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.storage.Save(d.img); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Reboot aborts any transfer and returns to normal operation.
func (d *Device) Reboot() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mode != modeIdle {
		slog.Warn("Reboot during transfer", "device", d.name)
	}
	d.mode = modeIdle
	d.reboots++
	return nil
}

// Close releases the storage.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.storage.Close()
}

func (d *Device) start(m mode, bank memory.Bank) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mode != modeIdle {
		return ErrBusy
	}
	if len(d.img.Elements(bank)) == 0 {
		return fmt.Errorf("no memory bank %s", bank)
	}
	d.mode = m
	d.bank = bank
	return nil
}

func (d *Device) finish(m mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mode != m {
		return d.modeError(m)
	}
	d.mode = modeIdle
	return nil
}

// check validates a block access. Caller must hold the mutex.
func (d *Device) check(m mode, bank memory.Bank, addr uint32, n int) error {
	if d.mode != m || bank != d.bank {
		return d.modeError(m)
	}
	if n != d.blockSize || addr%uint32(d.blockSize) != 0 {
		return &BlockError{Bank: bank, Address: addr, Length: n, BlockSize: d.blockSize}
	}
	return nil
}

func (d *Device) modeError(m mode) error {
	if m == modeReading {
		return ErrNotReading
	}
	return ErrNotWriting
}
