// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package opengd77

import (
	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/memory"
)

const (
	BlockSize = 32

	eepromAddr = 0x0000e0
	eepromSize = 0x005f20
	flashAddr  = 0x07b000
	flashSize  = 0x00f800

	addrSettings   = 0x0000e0
	addrBoot       = 0x000120
	addrScanLists  = 0x001790
	addrGroupLists = 0x002da0
	addrZones      = 0x0039a0
	addrChannels   = 0x07b000
	addrContacts   = 0x089000

	numChannels   = 1024
	numContacts   = 256
	numZones      = 32
	numScanLists  = 64
	numGroupLists = 64
)

func name(off, length int) codec.TextField {
	return codec.TextField{Offset: off, Length: length, Encoding: codec.ASCII, Pad: 0xff}
}

var channelLayout = codec.ChannelLayout{
	Table:       codec.Table{Bank: memory.BankFlash, Address: addrChannels, RecordSize: 0x38, Count: numChannels, Erased: 0xff},
	Name:        name(0x00, 16),
	RxFrequency: 0x10,
	TxFrequency: 0x14,
	Mode:        codec.BitField{Offset: 0x18, Shift: 0, Width: 1},
	ModeAnalog:  0,
	ModeDigital: 1,
	RxTone:      0x1a,
	TxTone:      0x1c,
	ColorCode:   codec.BitField{Offset: 0x1e, Shift: 0, Width: 4},
	TimeSlot:    codec.BitField{Offset: 0x1f, Shift: 6, Width: 1},
	Power:       codec.BitField{Offset: 0x20, Shift: 0, Width: 4},
	PowerLevels: [3]uint8{1, 5, 9},
	Bandwidth:   codec.BitField{Offset: 0x21, Shift: 1, Width: 1},
	RxOnly:      codec.BitField{Offset: 0x21, Shift: 2, Width: 1},
	Contact:     codec.IndexField{Offset: 0x22, Size: 2},
	GroupList:   codec.IndexField{Offset: 0x24, Size: 1},
	ScanList:    codec.IndexField{Offset: 0x25, Size: 1},
	Timeout:     codec.ScaledField{Offset: 0x26, Unit: 15},
}

var contactLayout = codec.ContactLayout{
	Table:     codec.Table{Bank: memory.BankFlash, Address: addrContacts, RecordSize: 0x18, Count: numContacts, Erased: 0xff},
	Name:      name(0x00, 16),
	Number:    codec.NumberField{Offset: 0x10, Encoding: codec.BCD32BE},
	CallType:  codec.BitField{Offset: 0x14, Shift: 0, Width: 2},
	CallTypes: [3]uint8{0, 1, 2},
	Ring:      codec.BitField{Offset: 0x15, Shift: 0, Width: 1},
}

var zoneLayout = codec.ZoneLayout{
	Table: codec.Table{Bank: memory.BankEEPROM, Address: addrZones, RecordSize: 0x50, Count: numZones, Erased: 0xff},
	Name:  name(0x00, 16),
	A:     codec.IndexList{Offset: 0x10, Count: 32, Size: 2},
}

var scanListLayout = codec.ScanListLayout{
	Table:    codec.Table{Bank: memory.BankEEPROM, Address: addrScanLists, RecordSize: 0x58, Count: numScanLists, Erased: 0xff},
	Name:     name(0x00, 16),
	Priority: codec.IndexField{Offset: 0x12, Size: 2},
	Members:  codec.IndexList{Offset: 0x18, Count: 32, Size: 2},
}

var groupListLayout = codec.GroupListLayout{
	Table:    codec.Table{Bank: memory.BankEEPROM, Address: addrGroupLists, RecordSize: 0x30, Count: numGroupLists, Erased: 0xff},
	Name:     name(0x00, 16),
	Contacts: codec.IndexList{Offset: 0x10, Count: 16, Size: 2},
}

var settingsLayout = codec.SettingsLayout{
	Region:     codec.Region{Bank: memory.BankEEPROM, Address: addrSettings, Size: 0x40},
	Erased:     0xff,
	Name:       name(0x00, 8),
	RadioID:    codec.NumberField{Offset: 0x08, Encoding: codec.BCD32BE},
	IntroLine1: name(0x10, 16),
	IntroLine2: name(0x20, 16),
	MicLevel:   codec.BitField{Offset: 0x30, Shift: 0, Width: 4},
	Squelch:    codec.BitField{Offset: 0x31, Shift: 0, Width: 4},
	VOXLevel:   codec.BitField{Offset: 0x32, Shift: 0, Width: 4},
	Checksum:   codec.Absent,
}

var bootLayout = codec.BootLayout{
	Region:      codec.Region{Bank: memory.BankEEPROM, Address: addrBoot, Size: 0x20},
	Erased:      0xff,
	ShowText:    codec.BitField{Offset: 0x00, Shift: 0, Width: 1},
	PasswordSet: codec.BitField{Offset: 0x00, Shift: 1, Width: 1},
	Password:    0x01,
}

func newImage() *memory.Image {
	img := memory.New()
	img.MustAddElement(memory.BankEEPROM, eepromAddr, eepromSize, 0xff)
	img.MustAddElement(memory.BankFlash, flashAddr, flashSize, 0xff)
	return img
}

// NewCodeplug returns the codeplug of the OpenGD77 firmware.
func NewCodeplug() *codec.Codeplug {
	return codec.NewCodeplug(newImage,
		codec.GeneralSettings(settingsLayout),
		codec.BootSettings(bootLayout),
		codec.Contacts(contactLayout, Features.MaxContacts),
		codec.Channels(channelLayout, Features.MaxChannels),
		codec.Zones(zoneLayout, Features.MaxZones),
		codec.ScanLists(scanListLayout, Features.MaxScanLists),
		codec.GroupLists(groupListLayout, Features.MaxGroupLists),
	)
}
