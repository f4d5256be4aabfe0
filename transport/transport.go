// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package transport defines the block access to the memory of a radio.
package transport

import (
	"context"

	"github.com/dforsi/qdmr/memory"
)

// Transport gives block-wise access to the memory banks of a device.
//
// Read and Write move exactly one block of BlockSize bytes per call. Addresses
// are absolute within the bank and must be multiples of the block size.
// A failed call affects at most the block it was issued for.
type Transport interface {
	// Open connects to the device.
	Open(ctx context.Context) error
	// Close releases the device. It is safe to call Close more than once.
	Close() error
	// BlockSize returns the transfer block size in bytes.
	BlockSize() int

	ReadStart(ctx context.Context, bank memory.Bank, addr uint32) error
	Read(ctx context.Context, bank memory.Bank, addr uint32, n int) ([]byte, error)
	ReadFinish(ctx context.Context) error

	WriteStart(ctx context.Context, bank memory.Bank, addr uint32) error
	Write(ctx context.Context, bank memory.Bank, addr uint32, data []byte) error
	WriteFinish(ctx context.Context) error

	// Reboot leaves the programming mode and restarts the device.
	Reboot(ctx context.Context) error
}

// Identifier is implemented by transports that can query the model name
// reported by the device.
type Identifier interface {
	Identify(ctx context.Context) (string, error)
}
