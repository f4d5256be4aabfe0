// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import (
	"path/filepath"
	"testing"

	"github.com/dforsi/qdmr/memory"
)

// benchBlock is the block written per iteration, the block size of the MD-380.
const benchBlock = 1024

func benchImage() *memory.Image {
	img := memory.New()
	img.MustAddElement(memory.BankMain, 0, 256*benchBlock, 0xff)
	return img
}

// benchOnWrite writes one block per iteration and reports it to the storage,
// as the emulator does for every programming request.
func benchOnWrite(b *testing.B, s Storage) {
	img := benchImage()
	if err := s.Load(img); err != nil {
		b.Fatalf("Failed to load storage: %v", err)
	}
	defer s.Close()

	block := make([]byte, benchBlock)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		addr := uint32(i%256) * benchBlock
		block[0] = byte(i)
		if err := img.Write(memory.BankMain, addr, block); err != nil {
			b.Fatal(err)
		}
		s.OnWrite(memory.BankMain, addr, benchBlock)
	}
}

func BenchmarkMemoryStorage_OnWrite(b *testing.B) {
	benchOnWrite(b, NewMemoryStorage())
}

func BenchmarkFileStorage_OnWrite(b *testing.B) {
	benchOnWrite(b, NewFileStorage(filepath.Join(b.TempDir(), "bench.bin")))
}

// BenchmarkMmapStorage_OnWrite measures the msync per block.
func BenchmarkMmapStorage_OnWrite(b *testing.B) {
	benchOnWrite(b, NewMmapStorage(filepath.Join(b.TempDir(), "bench.mmap")))
}

func BenchmarkSQLStorage_OnWrite(b *testing.B) {
	benchOnWrite(b, NewSQLStorage("sqlite3", filepath.Join(b.TempDir(), "bench.db")))
}

func benchLoad(b *testing.B, open func() Storage) {
	// the first Load creates the backing data
	s := open()
	if err := s.Load(benchImage()); err != nil {
		b.Fatalf("Load failed: %v", err)
	}
	s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := open()
		if err := s.Load(benchImage()); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
		s.Close()
	}
}

func BenchmarkFileStorage_Load(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_load.bin")
	benchLoad(b, func() Storage { return NewFileStorage(path) })
}

// BenchmarkMmapStorage_Load involves file open, fstat and mmap system calls.
func BenchmarkMmapStorage_Load(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_load.mmap")
	benchLoad(b, func() Storage { return NewMmapStorage(path) })
}

func BenchmarkSnapshotStorage_Load(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench_load.cbor")
	if err := WriteSnapshot(path, TakeSnapshot("md380", benchImage())); err != nil {
		b.Fatal(err)
	}
	benchLoad(b, func() Storage { return NewSnapshotStorage(path, "md380") })
}

// BenchmarkImage_Write is the in-memory baseline.
func BenchmarkImage_Write(b *testing.B) {
	img := benchImage()
	block := make([]byte, benchBlock)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := img.Write(memory.BankMain, uint32(i%256)*benchBlock, block); err != nil {
			b.Fatal(err)
		}
	}
}
