// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package crc

import (
	"testing"
)

func TestCRC(t *testing.T) {
	var crc CRC
	crc.Reset()
	crc.PushBytes([]byte{0x02, 0x07})

	if crc.Value() != 0x1241 {
		t.Fatalf("crc expected %v, actual %v", 0x1241, crc.Value())
	}
}

func TestCRC_Incremental(t *testing.T) {
	data := []byte("123456789")
	var crc CRC
	crc.Reset().PushBytes(data[:4]).PushBytes(data[4:])

	if crc.Value() != Checksum(data) {
		t.Fatalf("incremental crc %04x differs from one-shot %04x", crc.Value(), Checksum(data))
	}
	// CRC-16/MODBUS check value
	if Checksum(data) != 0x4b37 {
		t.Fatalf("crc expected %04x, actual %04x", 0x4b37, Checksum(data))
	}
}
