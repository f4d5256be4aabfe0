// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/dforsi/qdmr/memory"
)

// MmapStorage implements persistence using memory-mapped files. The loaded
// image is backed by the mapping itself, so writes reach the page cache
// without copying.
type MmapStorage struct {
	path string
	file *os.File
	data mmap.MMap
	img  *memory.Image
}

// NewMmapStorage creates a new MmapStorage.
func NewMmapStorage(path string) *MmapStorage {
	return &MmapStorage{
		path: path,
	}
}

// Load maps the file and binds img to the mapping.
func (ms *MmapStorage) Load(img *memory.Image) error {
	// Open file, creating if necessary
	f, err := os.OpenFile(ms.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open mmap file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	size := int64(img.Size())
	fresh := fi.Size() == 0
	if fresh {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return fmt.Errorf("failed to resize mmap file: %w", err)
		}
	} else if fi.Size() != size {
		f.Close()
		return fmt.Errorf("image file %s has %d bytes, expected %d", ms.path, fi.Size(), size)
	}

	// Mmap the file
	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return fmt.Errorf("mmap failed: %w", err)
	}
	if fresh {
		copy(data, dump(img))
	}
	if err := img.Bind(data); err != nil {
		data.Unmap()
		f.Close()
		return err
	}

	ms.file = f
	ms.data = data
	ms.img = img
	return nil
}

// Save flushes the mmap to disk. img must be the loaded image.
func (ms *MmapStorage) Save(img *memory.Image) error {
	if ms.data == nil {
		return fmt.Errorf("mmap data is nil")
	}
	if img != ms.img {
		copy(ms.data, dump(img))
	}
	return ms.data.Flush()
}

// OnWrite triggers a flush for persistence.
func (ms *MmapStorage) OnWrite(bank memory.Bank, addr uint32, n int) {
	if ms.data == nil {
		return
	}
	if err := ms.data.Flush(); err != nil {
		slog.Error("Failed to flush mmap", "err", err)
	}
}

// Close detaches the image from the mapping, then unmaps and closes the file.
func (ms *MmapStorage) Close() error {
	var err error
	if ms.data != nil {
		if ms.img != nil {
			ms.img.Bind(append([]byte(nil), ms.data...))
			ms.img = nil
		}
		if e := ms.data.Unmap(); e != nil {
			err = e
		}
		ms.data = nil
	}
	if ms.file != nil {
		if e := ms.file.Close(); e != nil {
			err = e
		}
		ms.file = nil
	}
	return err
}
