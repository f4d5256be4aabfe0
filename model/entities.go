// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import "fmt"

// ChannelMode selects analog FM or DMR operation.
type ChannelMode uint8

const (
	ModeAnalog ChannelMode = iota
	ModeDigital
)

func (m ChannelMode) String() string {
	if m == ModeDigital {
		return "digital"
	}
	return "analog"
}

// Power is the transmit power level.
type Power uint8

const (
	PowerLow Power = iota
	PowerMid
	PowerHigh
)

func (p Power) String() string {
	switch p {
	case PowerLow:
		return "low"
	case PowerMid:
		return "mid"
	default:
		return "high"
	}
}

// Bandwidth of an analog channel.
type Bandwidth uint8

const (
	BandwidthNarrow Bandwidth = iota // 12.5 kHz
	BandwidthWide                    // 25 kHz
)

func (b Bandwidth) String() string {
	if b == BandwidthWide {
		return "wide"
	}
	return "narrow"
}

// CallType of a DMR contact.
type CallType uint8

const (
	CallGroup CallType = iota + 1
	CallPrivate
	CallAll
)

func (c CallType) String() string {
	switch c {
	case CallGroup:
		return "group"
	case CallPrivate:
		return "private"
	case CallAll:
		return "all"
	default:
		return fmt.Sprintf("calltype(%d)", uint8(c))
	}
}

// Channel is a single receive/transmit memory.
type Channel struct {
	ID          string
	Name        string
	RxFrequency uint64 // Hz
	TxFrequency uint64 // Hz
	Mode        ChannelMode
	Power       Power
	Bandwidth   Bandwidth
	RxOnly      bool
	ColorCode   uint8  // 0-15, digital only
	TimeSlot    uint8  // 1 or 2, digital only
	Timeout     uint   // seconds, multiple of 15, 0 = infinite
	RxTone      uint16 // CTCSS in 0.1 Hz, 0 = off
	TxTone      uint16

	Contact     *Contact
	GroupList   *GroupList
	ScanList    *ScanList
	Positioning *PositioningSystem
}

// NewChannel creates a channel with a fresh identity.
func NewChannel(name string) *Channel {
	return &Channel{ID: newID(), Name: name, TimeSlot: 1}
}

func (ch *Channel) String() string {
	return fmt.Sprintf("channel %q", ch.Name)
}

// Contact is a DMR call destination.
type Contact struct {
	ID       string
	Name     string
	Number   uint32 // 24-bit DMR ID
	CallType CallType
	Ring     bool
}

// NewContact creates a contact with a fresh identity.
func NewContact(name string, number uint32, callType CallType) *Contact {
	return &Contact{ID: newID(), Name: name, Number: number, CallType: callType}
}

func (c *Contact) String() string {
	return fmt.Sprintf("contact %q", c.Name)
}

// Zone is a named selection of channels, optionally split into an A and B list.
type Zone struct {
	ID   string
	Name string
	A    []*Channel
	B    []*Channel
}

// NewZone creates a zone with a fresh identity.
func NewZone(name string) *Zone {
	return &Zone{ID: newID(), Name: name}
}

func (z *Zone) String() string {
	return fmt.Sprintf("zone %q", z.Name)
}

// ScanList is a list of channels scanned together, with an optional priority channel.
type ScanList struct {
	ID       string
	Name     string
	Priority *Channel
	Members  []*Channel
}

// NewScanList creates a scan list with a fresh identity.
func NewScanList(name string) *ScanList {
	return &ScanList{ID: newID(), Name: name}
}

func (s *ScanList) String() string {
	return fmt.Sprintf("scan list %q", s.Name)
}

// GroupList is the set of talk groups received on a channel.
type GroupList struct {
	ID       string
	Name     string
	Contacts []*Contact
}

// NewGroupList creates a group list with a fresh identity.
func NewGroupList(name string) *GroupList {
	return &GroupList{ID: newID(), Name: name}
}

func (g *GroupList) String() string {
	return fmt.Sprintf("group list %q", g.Name)
}

// PositioningSystem describes how position reports are sent.
type PositioningSystem struct {
	ID          string
	Name        string
	Destination *Contact
	Revert      *Channel // nil sends on the selected channel
	Period      uint     // seconds between reports, 0 disables periodic reports
}

// NewPositioningSystem creates a positioning system with a fresh identity.
func NewPositioningSystem(name string) *PositioningSystem {
	return &PositioningSystem{ID: newID(), Name: name}
}

func (p *PositioningSystem) String() string {
	return fmt.Sprintf("positioning system %q", p.Name)
}
