// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package md380

import (
	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/memory"
)

const (
	BlockSize = 1024

	imageAddr = 0x002000
	imageSize = 0x03e000

	addrTimestamp  = 0x002000
	addrSettings   = 0x002040
	addrBoot       = 0x0020d0
	addrContacts   = 0x005f80
	addrGroupLists = 0x00ec20
	addrZones      = 0x0149e0
	addrScanLists  = 0x018860
	addrChannels   = 0x01ee00

	numChannels   = 1000
	numContacts   = 1000
	numGroupLists = 250
	numZones      = 250
	numScanLists  = 250

	channelSize = 0x40
)

func name16(off int) codec.TextField {
	return codec.TextField{Offset: off, Length: 16, Encoding: codec.UTF16, Pad: 0x00}
}

var channelLayout = codec.ChannelLayout{
	Table:        codec.Table{Bank: memory.BankMain, Address: addrChannels, RecordSize: channelSize, Count: numChannels, Erased: 0xff},
	Name:         name16(0x20),
	RxFrequency:  0x10,
	TxFrequency:  0x14,
	Mode:         codec.BitField{Offset: 0x00, Shift: 0, Width: 2},
	ModeAnalog:   1,
	ModeDigital:  2,
	Bandwidth:    codec.BitField{Offset: 0x00, Shift: 3, Width: 1},
	RxOnly:       codec.BitField{Offset: 0x01, Shift: 1, Width: 1},
	TimeSlot:     codec.BitField{Offset: 0x01, Shift: 2, Width: 2},
	TimeSlotBase: 1,
	ColorCode:    codec.BitField{Offset: 0x01, Shift: 4, Width: 4},
	Power:        codec.BitField{Offset: 0x04, Shift: 5, Width: 1},
	PowerLevels:  [3]uint8{0, 1, 1},
	Contact:      codec.IndexField{Offset: 0x06, Size: 2},
	Timeout:      codec.ScaledField{Offset: 0x08, Unit: 15},
	ScanList:     codec.IndexField{Offset: 0x0a, Size: 1},
	GroupList:    codec.IndexField{Offset: 0x0b, Size: 1},
	RxTone:       0x18,
	TxTone:       0x1a,
}

var contactLayout = codec.ContactLayout{
	Table:     codec.Table{Bank: memory.BankMain, Address: addrContacts, RecordSize: 0x24, Count: numContacts, Erased: 0xff},
	Number:    codec.NumberField{Offset: 0x00, Encoding: codec.Uint24LE},
	CallType:  codec.BitField{Offset: 0x03, Shift: 0, Width: 2},
	CallTypes: [3]uint8{1, 2, 3},
	Ring:      codec.BitField{Offset: 0x03, Shift: 5, Width: 1},
	Name:      name16(0x04),
}

var groupListLayout = codec.GroupListLayout{
	Table:    codec.Table{Bank: memory.BankMain, Address: addrGroupLists, RecordSize: 0x60, Count: numGroupLists, Erased: 0x00},
	Name:     name16(0x00),
	Contacts: codec.IndexList{Offset: 0x20, Count: 32, Size: 2},
}

var zoneLayout = codec.ZoneLayout{
	Table: codec.Table{Bank: memory.BankMain, Address: addrZones, RecordSize: 0x40, Count: numZones, Erased: 0x00},
	Name:  name16(0x00),
	A:     codec.IndexList{Offset: 0x20, Count: 16, Size: 2},
}

var scanListLayout = codec.ScanListLayout{
	Table:    codec.Table{Bank: memory.BankMain, Address: addrScanLists, RecordSize: 0x68, Count: numScanLists, Erased: 0x00},
	Name:     name16(0x00),
	Priority: codec.IndexField{Offset: 0x20, Size: 2},
	Members:  codec.IndexList{Offset: 0x28, Count: 31, Size: 2},
}

var settingsLayout = codec.SettingsLayout{
	Region:     codec.Region{Bank: memory.BankMain, Address: addrSettings, Size: 0x90},
	Erased:     0xff,
	IntroLine1: codec.TextField{Offset: 0x00, Length: 10, Encoding: codec.UTF16, Pad: 0x00},
	IntroLine2: codec.TextField{Offset: 0x14, Length: 10, Encoding: codec.UTF16, Pad: 0x00},
	RadioID:    codec.NumberField{Offset: 0x44, Encoding: codec.Uint24LE},
	MicLevel:   codec.BitField{Offset: 0x48, Shift: 0, Width: 4},
	VOXLevel:   codec.BitField{Offset: 0x49, Shift: 0, Width: 4},
	Squelch:    codec.BitField{Offset: 0x4a, Shift: 0, Width: 4},
	Name:       name16(0x50),
	Checksum:   0x8f,
}

var bootLayout = codec.BootLayout{
	Region:      codec.Region{Bank: memory.BankMain, Address: addrBoot, Size: 0x10},
	Erased:      0xff,
	ShowText:    codec.BitField{Offset: 0x00, Shift: 0, Width: 1},
	PasswordSet: codec.BitField{Offset: 0x00, Shift: 1, Width: 1},
	Password:    0x01,
}

var timestampLayout = codec.TimestampLayout{
	Region: codec.Region{Bank: memory.BankMain, Address: addrTimestamp, Size: 0x10},
	Erased: 0xff,
	Offset: 0x01,
}

func newImage() *memory.Image {
	img := memory.New()
	img.MustAddElement(memory.BankMain, imageAddr, imageSize, 0xff)
	return img
}

// NewCodeplug returns the codeplug of the MD-380 family.
func NewCodeplug() *codec.Codeplug {
	return codec.NewCodeplug(newImage,
		codec.Timestamp(timestampLayout),
		codec.GeneralSettings(settingsLayout),
		codec.BootSettings(bootLayout),
		codec.Contacts(contactLayout, Features.MaxContacts),
		codec.Channels(channelLayout, Features.MaxChannels),
		codec.Zones(zoneLayout, Features.MaxZones),
		codec.ScanLists(scanListLayout, Features.MaxScanLists),
		codec.GroupLists(groupListLayout, Features.MaxGroupLists),
	)
}
