// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import (
	"sync"

	"github.com/dforsi/qdmr/memory"
)

// MemoryStorage keeps the last saved image in memory only.
type MemoryStorage struct {
	mu    sync.Mutex
	saved []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load(img *memory.Image) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.saved) == img.Size() {
		restore(img, ms.saved)
	}
	return nil
}

func (ms *MemoryStorage) Save(img *memory.Image) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.saved = dump(img)
	return nil
}

func (ms *MemoryStorage) OnWrite(bank memory.Bank, addr uint32, n int) {}

func (ms *MemoryStorage) Close() error { return nil }
