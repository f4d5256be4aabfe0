// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package radio

import (
	"errors"
	"fmt"

	"github.com/dforsi/qdmr/memory"
)

// ErrBusy is returned when a transfer is requested while another one is running
// or the session is in the error state.
var ErrBusy = errors.New("radio is busy")

// AlignmentError is returned when an image element cannot be transferred in whole blocks.
type AlignmentError struct {
	Bank      memory.Bank
	Address   uint32
	Size      int
	BlockSize int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("element %s 0x%06x+%d is not aligned to %d byte blocks",
		e.Bank, e.Address, e.Size, e.BlockSize)
}

// IoError wraps a failed transport call.
type IoError struct {
	Op      string // open, read, write, reboot, ...
	Bank    memory.Bank
	Block   int // -1 if the operation is not block related
	Address uint32
	Err     error
}

func (e *IoError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s block %d (0x%x): %v", e.Op, e.Bank, e.Block, e.Address, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

func ioError(op string, err error) error {
	return &IoError{Op: op, Block: -1, Err: err}
}
