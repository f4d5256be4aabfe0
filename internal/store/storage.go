// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package store persists the memory image of an emulated or virtual radio.
package store

import (
	"fmt"
	"log/slog"

	// registers the sqlite3 driver of the "sqlite" storage type
	_ "github.com/mattn/go-sqlite3"

	"github.com/dforsi/qdmr/internal/config"
	"github.com/dforsi/qdmr/memory"
)

// Storage defines the interface for persisting a memory image.
type Storage interface {
	// Load fills img from storage. If no data exists yet, img keeps its
	// content and becomes the initial data.
	Load(img *memory.Image) error

	// Save saves the current image to storage.
	Save(img *memory.Image) error

	// OnWrite is a hook called whenever a range of the loaded image is modified.
	// It allows the storage to perform real-time persistence.
	OnWrite(bank memory.Bank, addr uint32, n int)

	// Close releases the storage. The image must not be used with it afterwards.
	Close() error
}

// New creates the storage described by cfg.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "file":
		slog.Info("Using file storage", "path", cfg.Path)
		return NewFileStorage(cfg.Path), nil
	case "mmap":
		slog.Info("Using mmap storage", "path", cfg.Path)
		return NewMmapStorage(cfg.Path), nil
	case "snapshot":
		slog.Info("Using snapshot storage", "path", cfg.Path)
		return NewSnapshotStorage(cfg.Path, ""), nil
	case "sqlite":
		slog.Info("Using sqlite storage", "path", cfg.Path)
		return NewSQLStorage("sqlite3", cfg.Path), nil
	case "", "memory":
		slog.Info("Using memory storage (non-persistent)")
		return NewMemoryStorage(), nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}
