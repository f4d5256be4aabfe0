// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dforsi/qdmr/memory"
)

// FileStorage implements persistence using file operations. The file holds
// the raw image in the layout described in layout.go.
type FileStorage struct {
	path string
	file *os.File
	img  *memory.Image
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load reads the image from the file, creating the file from img if necessary.
func (fs *FileStorage) Load(img *memory.Image) error {
	// Open file, creating if necessary
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	switch fi.Size() {
	case 0:
		if _, err := f.WriteAt(dump(img), 0); err != nil {
			f.Close()
			return fmt.Errorf("failed to initialize file: %w", err)
		}
	case int64(img.Size()):
		data, err := io.ReadAll(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to read file: %w", err)
		}
		restore(img, data)
	default:
		f.Close()
		return fmt.Errorf("image file %s has %d bytes, expected %d", fs.path, fi.Size(), img.Size())
	}

	fs.file = f
	fs.img = img
	return nil
}

// Save writes the whole image and flushes it to disk.
func (fs *FileStorage) Save(img *memory.Image) error {
	if fs.file == nil {
		return fmt.Errorf("file storage %s is not loaded", fs.path)
	}
	if _, err := fs.file.WriteAt(dump(img), 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return fs.sync()
}

// OnWrite writes the modified range through to the file.
func (fs *FileStorage) OnWrite(bank memory.Bank, addr uint32, n int) {
	if fs.file == nil || fs.img == nil {
		return
	}
	off, ok := offsetOf(fs.img, bank, addr)
	if !ok {
		return
	}
	data, err := fs.img.Slice(bank, addr, n)
	if err != nil {
		slog.Error("Failed to persist write", "bank", bank, "addr", addr, "err", err)
		return
	}
	if _, err := fs.file.WriteAt(data, off); err != nil {
		slog.Error("Failed to write file", "err", err)
		return
	}
	if err := fs.sync(); err != nil {
		slog.Error("Failed to sync file", "err", err)
	}
}

func (fs *FileStorage) sync() error {
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close the file.
func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	fs.img = nil
	return err
}
