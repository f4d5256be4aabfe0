// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package radio

import (
	"context"
	"errors"

	"github.com/dforsi/qdmr/memory"
)

var errReplayReadOnly = errors.New("downloaded image is read-only")

// replay serves reads from a downloaded image, so a driver can classify the
// unit without another transfer.
type replay struct {
	img       *memory.Image
	blockSize int
}

func (r *replay) Open(context.Context) error { return nil }
func (r *replay) Close() error               { return nil }
func (r *replay) BlockSize() int             { return r.blockSize }

func (r *replay) ReadStart(context.Context, memory.Bank, uint32) error { return nil }

func (r *replay) Read(_ context.Context, bank memory.Bank, addr uint32, n int) ([]byte, error) {
	return r.img.Read(bank, addr, n)
}

func (r *replay) ReadFinish(context.Context) error { return nil }

func (r *replay) WriteStart(context.Context, memory.Bank, uint32) error { return errReplayReadOnly }

func (r *replay) Write(context.Context, memory.Bank, uint32, []byte) error { return errReplayReadOnly }

func (r *replay) WriteFinish(context.Context) error { return errReplayReadOnly }

func (r *replay) Reboot(context.Context) error { return nil }
