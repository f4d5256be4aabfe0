// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"

	"github.com/dforsi/qdmr/memory"
)

// Absent marks a byte offset of a field the layout does not have.
const Absent = -1

// Region is a contiguous range of one memory bank.
type Region struct {
	Bank    memory.Bank
	Address uint32
	Size    int
}

func (r Region) String() string {
	return fmt.Sprintf("%s 0x%06x+%d", r.Bank, r.Address, r.Size)
}

// Table describes an array of fixed-size records.
type Table struct {
	Bank       memory.Bank
	Address    uint32
	RecordSize int
	Count      int
	Erased     byte // byte pattern of an unused record
}

// Size returns the size of the table in bytes.
func (t Table) Size() int { return t.RecordSize * t.Count }

// Region returns the memory occupied by the table.
func (t Table) Region() Region {
	return Region{Bank: t.Bank, Address: t.Address, Size: t.Size()}
}

func (t Table) record(buf []byte, i int) []byte {
	return buf[i*t.RecordSize : (i+1)*t.RecordSize]
}

// NumberEncoding selects how DMR IDs are stored.
type NumberEncoding uint8

const (
	// Uint24LE stores the ID as 24 bit little endian integer.
	Uint24LE NumberEncoding = iota
	// BCD32BE stores the ID as 8 BCD digits, most significant first.
	BCD32BE
)

// NumberField is a DMR ID.
type NumberField struct {
	Offset   int
	Encoding NumberEncoding
}

// Get reads the number. ok is false for malformed BCD.
func (f NumberField) Get(rec []byte) (uint32, bool) {
	if f.Encoding == BCD32BE {
		b := rec[f.Offset : f.Offset+4]
		le := []byte{b[3], b[2], b[1], b[0]}
		v, ok := decodeBCD(le)
		return uint32(v), ok
	}
	return getUint24(rec[f.Offset:]), true
}

// Set writes the number.
func (f NumberField) Set(rec []byte, v uint32) error {
	if v > 0xffffff {
		return fmt.Errorf("number %d exceeds 24 bits", v)
	}
	if f.Encoding == BCD32BE {
		var le [4]byte
		encodeBCD(le[:], uint64(v))
		copy(rec[f.Offset:], []byte{le[3], le[2], le[1], le[0]})
		return nil
	}
	putUint24(rec[f.Offset:], v)
	return nil
}

// ScaledField is a byte counting in units, e.g. a timeout in 15 s steps.
type ScaledField struct {
	Offset int // Absent if not supported
	Unit   uint
}

// Get returns the value in base units.
func (f ScaledField) Get(rec []byte) uint {
	if f.Offset == Absent {
		return 0
	}
	return uint(rec[f.Offset]) * f.Unit
}

// Set stores v, which must be a multiple of the unit.
func (f ScaledField) Set(rec []byte, v uint) error {
	if f.Offset == Absent {
		if v != 0 {
			return fmt.Errorf("value %d is not supported by the layout", v)
		}
		return nil
	}
	if v%f.Unit != 0 {
		return fmt.Errorf("value %d is not a multiple of %d", v, f.Unit)
	}
	if v/f.Unit > 0xff {
		return fmt.Errorf("value %d exceeds %d", v, 0xff*f.Unit)
	}
	rec[f.Offset] = byte(v / f.Unit)
	return nil
}

// ChannelLayout describes a channel record.
type ChannelLayout struct {
	Table
	Name TextField

	RxFrequency int // 4 byte BCD
	TxFrequency int

	Mode         BitField
	ModeAnalog   uint8
	ModeDigital  uint8
	Power        BitField
	PowerLevels  [3]uint8 // stored values for low, mid, high
	Bandwidth    BitField // set for wide
	RxOnly       BitField
	ColorCode    BitField
	TimeSlot     BitField
	TimeSlotBase uint8 // stored value of time slot 1
	Timeout      ScaledField
	RxTone       int // 2 byte BCD, Absent if not supported
	TxTone       int

	Contact     IndexField
	GroupList   IndexField
	ScanList    IndexField
	Positioning IndexField
}

// ContactLayout describes a contact record.
type ContactLayout struct {
	Table
	Name     TextField
	Number   NumberField
	CallType BitField
	// CallTypes holds the stored values for group, private and all calls.
	CallTypes [3]uint8
	Ring      BitField
}

// ZoneLayout describes a zone record. B.Count is 0 on models without A/B zones.
type ZoneLayout struct {
	Table
	Name TextField
	A    IndexList
	B    IndexList
}

// ScanListLayout describes a scan list record.
type ScanListLayout struct {
	Table
	Name     TextField
	Priority IndexField
	Members  IndexList
}

// GroupListLayout describes a group list record.
type GroupListLayout struct {
	Table
	Name     TextField
	Contacts IndexList
}

// PositioningLayout describes a positioning system record.
type PositioningLayout struct {
	Table
	Name        TextField
	Destination IndexField
	Revert      IndexField
	Period      ScaledField
}

// SettingsLayout describes the general settings block.
type SettingsLayout struct {
	Region
	Erased     byte
	Name       TextField
	RadioID    NumberField
	IntroLine1 TextField
	IntroLine2 TextField
	MicLevel   BitField
	Squelch    BitField
	VOXLevel   BitField
	GPSEnabled BitField
	// Checksum is the offset of a byte making the block sum to zero, or Absent.
	Checksum int
}

// BootLayout describes the boot settings block.
type BootLayout struct {
	Region
	Erased   byte
	ShowText BitField
	Password int // 3 byte BCD, Absent if not supported
	// PasswordSet is the flag enabling the password.
	PasswordSet BitField
}

// TimestampLayout describes where the time of the last programming is kept.
// The date is stored as 7 BCD bytes: century, year, month, day, hour, minute, second.
type TimestampLayout struct {
	Region
	Erased byte
	Offset int
}

// checksum returns the byte that makes the sum of b zero.
func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return 1 + (0xff ^ sum)
}
