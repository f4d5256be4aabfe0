// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package memory

// Element is a contiguous, address-tagged byte range. It owns its buffer.
type Element struct {
	addr uint32
	data []byte
}

// NewElement allocates an element of size bytes at addr, filled with fill.
func NewElement(addr uint32, size int, fill byte) *Element {
	data := make([]byte, size)
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return &Element{addr: addr, data: data}
}

// Address returns the start address of the element.
func (e *Element) Address() uint32 { return e.addr }

// Size returns the length of the element in bytes.
func (e *Element) Size() int { return len(e.data) }

// End returns the first address after the element.
func (e *Element) End() uint32 { return e.addr + uint32(len(e.data)) }

// Data returns the element buffer.
func (e *Element) Data() []byte { return e.data }

// IsAligned reports whether both address and size are multiples of blockSize.
func (e *Element) IsAligned(blockSize int) bool {
	if blockSize <= 0 {
		return false
	}
	return e.addr%uint32(blockSize) == 0 && len(e.data)%blockSize == 0
}

// Contains reports whether [addr, addr+n) lies within the element.
func (e *Element) Contains(addr uint32, n int) bool {
	if n < 0 || addr < e.addr {
		return false
	}
	return uint64(addr)+uint64(n) <= uint64(e.End())
}

// Overlaps reports whether [addr, addr+n) intersects the element.
func (e *Element) Overlaps(addr uint32, n int) bool {
	return e.overlaps(addr, n)
}

func (e *Element) overlaps(addr uint32, n int) bool {
	end := uint64(addr) + uint64(n)
	return uint64(addr) < uint64(e.End()) && end > uint64(e.addr)
}

// AlignAddr rounds addr down to a multiple of blockSize.
func AlignAddr(addr uint32, blockSize int) uint32 {
	return addr - addr%uint32(blockSize)
}

// AlignSize rounds size up to a multiple of blockSize.
func AlignSize(size int, blockSize int) int {
	if r := size % blockSize; r != 0 {
		return size + blockSize - r
	}
	return size
}
