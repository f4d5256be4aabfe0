// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import "github.com/dforsi/qdmr/memory"

// The on-disk layout of an image is the concatenation of its elements, bank
// by bank in creation order and by address within a bank. This is the order
// memory.Image.Bind uses.

// offsetOf returns the file offset of addr in bank.
func offsetOf(img *memory.Image, bank memory.Bank, addr uint32) (int64, bool) {
	var off int64
	for _, b := range img.Banks() {
		for _, e := range img.Elements(b) {
			if b == bank && e.Contains(addr, 1) {
				return off + int64(addr-e.Address()), true
			}
			off += int64(e.Size())
		}
	}
	return 0, false
}

// dump returns the content of img in file layout.
func dump(img *memory.Image) []byte {
	buf := make([]byte, 0, img.Size())
	for _, b := range img.Banks() {
		for _, e := range img.Elements(b) {
			buf = append(buf, e.Data()...)
		}
	}
	return buf
}

// restore copies buf in file layout into img.
func restore(img *memory.Image, buf []byte) {
	off := 0
	for _, b := range img.Banks() {
		for _, e := range img.Elements(b) {
			off += copy(e.Data(), buf[off:])
		}
	}
}
