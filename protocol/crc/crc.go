// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package crc computes the CRC-16 (polynomial 0xA001, reflected) that protects programming frames.
package crc

var table [256]uint16

func init() {
	for i := range table {
		v := uint16(i)
		for j := 0; j < 8; j++ {
			if v&1 != 0 {
				v = v>>1 ^ 0xa001
			} else {
				v >>= 1
			}
		}
		table[i] = v
	}
}

// CRC is a running checksum. The zero value must be Reset before use.
type CRC struct {
	value uint16
}

func (c *CRC) Reset() *CRC {
	c.value = 0xffff
	return c
}

func (c *CRC) PushBytes(bs []byte) *CRC {
	for _, b := range bs {
		c.value = c.value>>8 ^ table[byte(c.value)^b]
	}
	return c
}

// Value returns the checksum. On the wire it is sent low byte first.
func (c *CRC) Value() uint16 {
	return c.value
}

// Checksum returns the CRC of data.
func Checksum(data []byte) uint16 {
	var c CRC
	return c.Reset().PushBytes(data).Value()
}
