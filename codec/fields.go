// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf16"
)

// BitField addresses Width bits starting at bit Shift of the byte at Offset.
// A zero Width marks a field the layout does not have.
type BitField struct {
	Offset int
	Shift  uint
	Width  uint
}

// Present reports whether the layout has the field.
func (f BitField) Present() bool { return f.Width > 0 }

func (f BitField) mask() byte { return byte((1<<f.Width)-1) << f.Shift }

// Get reads the field from rec.
func (f BitField) Get(rec []byte) uint8 {
	if !f.Present() {
		return 0
	}
	return (rec[f.Offset] & f.mask()) >> f.Shift
}

// Set writes v into rec. It fails when v does not fit into the field.
func (f BitField) Set(rec []byte, v uint8) error {
	if !f.Present() {
		return nil
	}
	if uint(v) >= 1<<f.Width {
		return fmt.Errorf("value %d does not fit into %d bits", v, f.Width)
	}
	rec[f.Offset] = rec[f.Offset]&^f.mask() | v<<f.Shift
	return nil
}

// Flag reads a single-bit field.
func (f BitField) Flag(rec []byte) bool { return f.Get(rec) != 0 }

// SetFlag writes a single-bit field.
func (f BitField) SetFlag(rec []byte, v bool) {
	var b uint8
	if v {
		b = 1
	}
	_ = f.Set(rec, b)
}

func getUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// IndexField stores a 1-based record index, 0 meaning "none".
type IndexField struct {
	Offset int
	Size   int // 1 or 2 bytes, little endian; 0 marks a missing field
}

// Present reports whether the layout has the field.
func (f IndexField) Present() bool { return f.Size > 0 }

// Get reads the index from rec.
func (f IndexField) Get(rec []byte) int {
	switch f.Size {
	case 1:
		return int(rec[f.Offset])
	case 2:
		return int(binary.LittleEndian.Uint16(rec[f.Offset:]))
	}
	return 0
}

// Set writes idx into rec.
func (f IndexField) Set(rec []byte, idx int) error {
	switch f.Size {
	case 0:
		if idx != 0 {
			return fmt.Errorf("reference is not supported by the layout")
		}
	case 1:
		if idx > 0xff {
			return fmt.Errorf("index %d exceeds 8 bits", idx)
		}
		rec[f.Offset] = byte(idx)
	case 2:
		if idx > 0xffff {
			return fmt.Errorf("index %d exceeds 16 bits", idx)
		}
		binary.LittleEndian.PutUint16(rec[f.Offset:], uint16(idx))
	}
	return nil
}

// IndexList is a fixed-size array of IndexField entries.
type IndexList struct {
	Offset int
	Count  int
	Size   int
}

func (l IndexList) field(i int) IndexField {
	return IndexField{Offset: l.Offset + i*l.Size, Size: l.Size}
}

// Get returns the non-zero entries in order.
func (l IndexList) Get(rec []byte) []int {
	var out []int
	for i := 0; i < l.Count; i++ {
		if idx := l.field(i).Get(rec); idx != 0 {
			out = append(out, idx)
		}
	}
	return out
}

// Set writes idx compactly, clearing the unused slots.
func (l IndexList) Set(rec []byte, idx []int) error {
	if len(idx) > l.Count {
		return fmt.Errorf("%d entries exceed the maximum of %d", len(idx), l.Count)
	}
	for i := 0; i < l.Count; i++ {
		v := 0
		if i < len(idx) {
			v = idx[i]
		}
		if err := l.field(i).Set(rec, v); err != nil {
			return err
		}
	}
	return nil
}

// Frequencies are stored as 8 BCD digits in units of 10 Hz, least significant
// byte first (e.g. 145.500 MHz = 00 00 55 14).
const frequencyUnit = 10

// GetFrequency decodes the BCD frequency at off. ok is false for non-BCD content.
func GetFrequency(rec []byte, off int) (hz uint64, ok bool) {
	v, ok := decodeBCD(rec[off : off+4])
	return v * frequencyUnit, ok
}

// PutFrequency encodes hz as BCD frequency at off.
func PutFrequency(rec []byte, off int, hz uint64) error {
	if hz%frequencyUnit != 0 {
		return fmt.Errorf("frequency %d Hz is not a multiple of %d Hz", hz, frequencyUnit)
	}
	if hz/frequencyUnit > 99999999 {
		return fmt.Errorf("frequency %d Hz exceeds 8 BCD digits", hz)
	}
	encodeBCD(rec[off:off+4], hz/frequencyUnit)
	return nil
}

// GetTone decodes a CTCSS tone (0.1 Hz, 4 BCD digits). An erased field reads as 0 (off).
func GetTone(rec []byte, off int) uint16 {
	if rec[off] == 0xff && rec[off+1] == 0xff {
		return 0
	}
	v, ok := decodeBCD(rec[off : off+2])
	if !ok {
		return 0
	}
	return uint16(v)
}

// PutTone encodes a CTCSS tone, 0 writes the "off" pattern.
func PutTone(rec []byte, off int, tone uint16) error {
	if tone == 0 {
		rec[off], rec[off+1] = 0xff, 0xff
		return nil
	}
	if tone > 9999 {
		return fmt.Errorf("tone %d exceeds 4 BCD digits", tone)
	}
	encodeBCD(rec[off:off+2], uint64(tone))
	return nil
}

func decodeBCD(b []byte) (uint64, bool) {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		hi, lo := b[i]>>4, b[i]&0x0f
		if hi > 9 || lo > 9 {
			return 0, false
		}
		v = v*100 + uint64(hi)*10 + uint64(lo)
	}
	return v, true
}

func encodeBCD(b []byte, v uint64) {
	for i := range b {
		d := v % 100
		b[i] = byte(d/10)<<4 | byte(d%10)
		v /= 100
	}
}

// TextEncoding selects how names are stored.
type TextEncoding uint8

const (
	// ASCII stores one byte per character.
	ASCII TextEncoding = iota
	// UTF16 stores little-endian UTF-16 code units.
	UTF16
)

// TextField is a fixed-length, padded string.
type TextField struct {
	Offset   int
	Length   int // characters
	Encoding TextEncoding
	Pad      byte
}

// Present reports whether the layout has the field.
func (f TextField) Present() bool { return f.Length > 0 }

// Size returns the number of bytes occupied by the field.
func (f TextField) Size() int {
	if f.Encoding == UTF16 {
		return 2 * f.Length
	}
	return f.Length
}

// Get decodes the string, stopping at the first padding or NUL character.
func (f TextField) Get(rec []byte) string {
	if !f.Present() {
		return ""
	}
	b := rec[f.Offset : f.Offset+f.Size()]
	if f.Encoding == UTF16 {
		units := make([]uint16, 0, f.Length)
		for i := 0; i < f.Length; i++ {
			u := binary.LittleEndian.Uint16(b[2*i:])
			if u == 0 || u == uint16(f.Pad)|uint16(f.Pad)<<8 {
				break
			}
			units = append(units, u)
		}
		return string(utf16.Decode(units))
	}
	var sb strings.Builder
	for _, c := range b {
		if c == 0 || c == f.Pad {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Set encodes s, padding the remainder of the field.
func (f TextField) Set(rec []byte, s string) error {
	if !f.Present() {
		if s != "" {
			return fmt.Errorf("names are not supported by the layout")
		}
		return nil
	}
	b := rec[f.Offset : f.Offset+f.Size()]
	for i := range b {
		b[i] = f.Pad
	}
	if f.Encoding == UTF16 {
		units := utf16.Encode([]rune(s))
		if len(units) > f.Length {
			return fmt.Errorf("name %q exceeds %d characters", s, f.Length)
		}
		for i, u := range units {
			binary.LittleEndian.PutUint16(b[2*i:], u)
		}
		return nil
	}
	if len(s) > f.Length {
		return fmt.Errorf("name %q exceeds %d characters", s, f.Length)
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] == f.Pad || s[i] == 0 {
			return fmt.Errorf("name %q contains a character not representable in ASCII", s)
		}
		b[i] = s[i]
	}
	return nil
}

// isErased reports whether every byte of rec equals pattern.
func isErased(rec []byte, pattern byte) bool {
	for _, b := range rec {
		if b != pattern {
			return false
		}
	}
	return true
}

func fill(b []byte, pattern byte) {
	for i := range b {
		b[i] = pattern
	}
}
