// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package memory

import (
	"fmt"
	"sort"
)

// Bank identifies an independently addressed memory region of a radio.
type Bank uint8

const (
	// BankMain is the only bank of single-bank radios (TyT/Retevis family).
	BankMain Bank = iota
	// BankEEPROM is the EEPROM of dual-bank radios.
	BankEEPROM
	// BankFlash is the external flash of dual-bank radios.
	BankFlash
)

func (b Bank) String() string {
	switch b {
	case BankMain:
		return "main"
	case BankEEPROM:
		return "eeprom"
	case BankFlash:
		return "flash"
	default:
		return fmt.Sprintf("bank(%d)", uint8(b))
	}
}

// ParseBank parses the name returned by Bank.String.
func ParseBank(name string) (Bank, error) {
	switch name {
	case "main":
		return BankMain, nil
	case "eeprom":
		return BankEEPROM, nil
	case "flash":
		return BankFlash, nil
	}
	return 0, fmt.Errorf("unknown memory bank %q", name)
}

// RangeError is returned when an access is not fully covered by a single element.
type RangeError struct {
	Bank    Bank
	Address uint32
	Length  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("memory range %s 0x%06x+%d is not covered by the image", e.Bank, e.Address, e.Length)
}

// OverlapError is returned by AddElement when the new element intersects an existing one.
type OverlapError struct {
	Bank     Bank
	Address  uint32
	Existing uint32
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("element %s 0x%06x overlaps element at 0x%06x", e.Bank, e.Address, e.Existing)
}

type bankImage struct {
	bank     Bank
	elements []*Element
}

// Image is a (partial) copy of the device memory: an ordered list of banks, each
// holding non-overlapping elements sorted by address.
type Image struct {
	banks []*bankImage
}

// New creates an empty image.
func New() *Image {
	return &Image{}
}

func (img *Image) bankImage(bank Bank, create bool) *bankImage {
	for _, b := range img.banks {
		if b.bank == bank {
			return b
		}
	}
	if !create {
		return nil
	}
	b := &bankImage{bank: bank}
	img.banks = append(img.banks, b)
	return b
}

// AddElement allocates a new element of size bytes at addr, filled with fill.
func (img *Image) AddElement(bank Bank, addr uint32, size int, fill byte) (*Element, error) {
	if size <= 0 {
		return nil, fmt.Errorf("element %s 0x%06x: size must be greater than 0", bank, addr)
	}
	b := img.bankImage(bank, true)
	e := NewElement(addr, size, fill)
	for _, other := range b.elements {
		if e.overlaps(other.addr, other.Size()) {
			return nil, &OverlapError{Bank: bank, Address: addr, Existing: other.addr}
		}
	}
	b.elements = append(b.elements, e)
	sort.Slice(b.elements, func(i, j int) bool { return b.elements[i].addr < b.elements[j].addr })
	return e, nil
}

// MustAddElement is AddElement for static layouts, which must not overlap.
func (img *Image) MustAddElement(bank Bank, addr uint32, size int, fill byte) *Element {
	e, err := img.AddElement(bank, addr, size, fill)
	if err != nil {
		panic(err)
	}
	return e
}

// Banks returns the banks in the order they were first used.
func (img *Image) Banks() []Bank {
	banks := make([]Bank, len(img.banks))
	for i, b := range img.banks {
		banks[i] = b.bank
	}
	return banks
}

// Elements returns the elements of bank sorted by address.
func (img *Image) Elements(bank Bank) []*Element {
	b := img.bankImage(bank, false)
	if b == nil {
		return nil
	}
	return b.elements
}

// Element returns the element of bank containing addr.
func (img *Image) Element(bank Bank, addr uint32) (*Element, bool) {
	b := img.bankImage(bank, false)
	if b == nil {
		return nil, false
	}
	for _, e := range b.elements {
		if e.Contains(addr, 1) {
			return e, true
		}
	}
	return nil, false
}

// Slice returns the bytes [addr, addr+n) of bank. The returned slice aliases the
// element buffer; the range must lie within a single element.
func (img *Image) Slice(bank Bank, addr uint32, n int) ([]byte, error) {
	e, ok := img.Element(bank, addr)
	if !ok || !e.Contains(addr, n) {
		return nil, &RangeError{Bank: bank, Address: addr, Length: n}
	}
	off := addr - e.addr
	return e.data[off : off+uint32(n)], nil
}

// Read copies n bytes at addr out of the image.
func (img *Image) Read(bank Bank, addr uint32, n int) ([]byte, error) {
	s, err := img.Slice(bank, addr, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s)
	return out, nil
}

// Write copies data into the image at addr.
func (img *Image) Write(bank Bank, addr uint32, data []byte) error {
	s, err := img.Slice(bank, addr, len(data))
	if err != nil {
		return err
	}
	copy(s, data)
	return nil
}

// Fill overwrites n bytes at addr with pattern.
func (img *Image) Fill(bank Bank, addr uint32, n int, pattern byte) error {
	s, err := img.Slice(bank, addr, n)
	if err != nil {
		return err
	}
	for i := range s {
		s[i] = pattern
	}
	return nil
}

// Size returns the total number of bytes held by the image.
func (img *Image) Size() int {
	total := 0
	for _, b := range img.banks {
		for _, e := range b.elements {
			total += e.Size()
		}
	}
	return total
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	c := New()
	for _, b := range img.banks {
		cb := c.bankImage(b.bank, true)
		for _, e := range b.elements {
			data := make([]byte, len(e.data))
			copy(data, e.data)
			cb.elements = append(cb.elements, &Element{addr: e.addr, data: data})
		}
	}
	return c
}

// Bind backs the elements by consecutive slices of buf, bank by bank in
// creation order and by address within a bank. The content of buf becomes
// the content of the image; nothing is copied.
func (img *Image) Bind(buf []byte) error {
	if len(buf) != img.Size() {
		return fmt.Errorf("buffer of %d bytes does not match image of %d bytes", len(buf), img.Size())
	}
	off := 0
	for _, b := range img.banks {
		for _, e := range b.elements {
			n := len(e.data)
			e.data = buf[off : off+n : off+n]
			off += n
		}
	}
	return nil
}
