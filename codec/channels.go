// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

// Category names, as reported by Name and in errors.
const (
	CategoryChannels    = "channels"
	CategoryContacts    = "contacts"
	CategoryZones       = "zones"
	CategoryScanLists   = "scan lists"
	CategoryGroupLists  = "group lists"
	CategoryPositioning = "positioning systems"
	CategorySettings    = "general settings"
	CategoryBoot        = "boot settings"
	CategoryTimestamp   = "timestamp"
)

type channels struct {
	l   ChannelLayout
	max int
}

// Channels returns the channel category. max limits the usable records, 0 uses the whole table.
func Channels(l ChannelLayout, max int) Category {
	return &channels{l: l, max: capacity(l.Count, max)}
}

func (c *channels) Name() string { return CategoryChannels }

func (c *channels) Mask() RegionMask { return RegionChannels }

func (c *channels) Regions() []Region { return []Region{c.l.Region()} }

func (c *channels) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region(), c.l.Erased)
}

func (c *channels) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	contacts := indexOf(cfg.Contacts)
	groupLists := indexOf(cfg.GroupLists)
	scanLists := indexOf(cfg.ScanLists)
	systems := indexOf(cfg.PositioningSystems)
	return encodeTable(CategoryChannels, c.l.Table, c.max, img, flags, cfg.Channels, func(rec []byte, ch *model.Channel) error {
		if err := c.encodeFields(rec, ch); err != nil {
			return err
		}
		idx, err := refIndex(contacts, ch.Contact)
		if err == nil {
			err = c.l.Contact.Set(rec, idx)
		}
		if err != nil {
			return err
		}
		if idx, err = refIndex(groupLists, ch.GroupList); err == nil {
			err = c.l.GroupList.Set(rec, idx)
		}
		if err != nil {
			return err
		}
		if idx, err = refIndex(scanLists, ch.ScanList); err == nil {
			err = c.l.ScanList.Set(rec, idx)
		}
		if err != nil {
			return err
		}
		if idx, err = refIndex(systems, ch.Positioning); err == nil {
			err = c.l.Positioning.Set(rec, idx)
		}
		return err
	})
}

func (c *channels) encodeFields(rec []byte, ch *model.Channel) error {
	l := c.l
	if err := l.Name.Set(rec, ch.Name); err != nil {
		return err
	}
	if err := PutFrequency(rec, l.RxFrequency, ch.RxFrequency); err != nil {
		return fmt.Errorf("rx %w", err)
	}
	if err := PutFrequency(rec, l.TxFrequency, ch.TxFrequency); err != nil {
		return fmt.Errorf("tx %w", err)
	}

	mode := l.ModeAnalog
	if ch.Mode == model.ModeDigital {
		mode = l.ModeDigital
	}
	if err := l.Mode.Set(rec, mode); err != nil {
		return err
	}
	if ch.Power > model.PowerHigh {
		return fmt.Errorf("invalid power level %d", ch.Power)
	}
	if err := l.Power.Set(rec, l.PowerLevels[ch.Power]); err != nil {
		return err
	}
	l.Bandwidth.SetFlag(rec, ch.Bandwidth == model.BandwidthWide)
	l.RxOnly.SetFlag(rec, ch.RxOnly)
	if err := l.ColorCode.Set(rec, ch.ColorCode); err != nil {
		return fmt.Errorf("color code: %w", err)
	}

	ts := ch.TimeSlot
	if ts == 0 {
		ts = 1
	}
	if ts > 2 {
		return fmt.Errorf("invalid time slot %d", ch.TimeSlot)
	}
	if err := l.TimeSlot.Set(rec, ts-1+l.TimeSlotBase); err != nil {
		return err
	}
	if err := l.Timeout.Set(rec, ch.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	if err := putOptionalTone(rec, l.RxTone, ch.RxTone); err != nil {
		return fmt.Errorf("rx tone: %w", err)
	}
	if err := putOptionalTone(rec, l.TxTone, ch.TxTone); err != nil {
		return fmt.Errorf("tx tone: %w", err)
	}
	return nil
}

func putOptionalTone(rec []byte, off int, tone uint16) error {
	if off == Absent {
		if tone != 0 {
			return fmt.Errorf("CTCSS is not supported")
		}
		return nil
	}
	return PutTone(rec, off, tone)
}

func (c *channels) valid(rec []byte) bool {
	_, ok := GetFrequency(rec, c.l.RxFrequency)
	return ok
}

func (c *channels) Create(img *memory.Image, ctx *Context) error {
	l := c.l
	err := forEachRecord(l.Table, img, c.valid, func(idx int, rec []byte) error {
		ch := model.NewChannel(l.Name.Get(rec))
		ch.RxFrequency, _ = GetFrequency(rec, l.RxFrequency)
		tx, ok := GetFrequency(rec, l.TxFrequency)
		if !ok {
			return &DecodeError{Category: CategoryChannels, Index: idx, Reason: "invalid tx frequency"}
		}
		ch.TxFrequency = tx
		if l.Mode.Get(rec) == l.ModeDigital {
			ch.Mode = model.ModeDigital
		}
		ch.Power = model.PowerLow
		for p := model.PowerHigh; p > model.PowerLow; p-- {
			if l.Power.Get(rec) == l.PowerLevels[p] {
				ch.Power = p
				break
			}
		}
		if l.Bandwidth.Flag(rec) {
			ch.Bandwidth = model.BandwidthWide
		}
		ch.RxOnly = l.RxOnly.Flag(rec)
		ch.ColorCode = l.ColorCode.Get(rec)
		if l.TimeSlot.Get(rec) == l.TimeSlotBase+1 {
			ch.TimeSlot = 2
		}
		ch.Timeout = l.Timeout.Get(rec)
		if l.RxTone != Absent {
			ch.RxTone = GetTone(rec, l.RxTone)
		}
		if l.TxTone != Absent {
			ch.TxTone = GetTone(rec, l.TxTone)
		}
		ctx.Config.Channels = append(ctx.Config.Channels, ch)
		ctx.AddChannel(idx, ch)
		return nil
	})
	if err != nil {
		return err
	}
	ctx.markCreated(CategoryChannels)
	return nil
}

func (c *channels) Link(img *memory.Image, ctx *Context) error {
	if err := ctx.requireCreated(CategoryChannels, CategoryContacts, CategoryGroupLists, CategoryScanLists, CategoryPositioning); err != nil {
		return err
	}
	l := c.l
	return linkRecords(l.Table, img, ctx.channels, func(idx int, rec []byte, ch *model.Channel) error {
		if n := l.Contact.Get(rec); n != 0 {
			ct, ok := ctx.Contact(n)
			if !ok {
				return &LinkError{Category: CategoryChannels, Index: idx, Target: CategoryContacts, Ref: n}
			}
			ch.Contact = ct
		}
		if n := l.GroupList.Get(rec); n != 0 {
			gl, ok := ctx.GroupList(n)
			if !ok {
				return &LinkError{Category: CategoryChannels, Index: idx, Target: CategoryGroupLists, Ref: n}
			}
			ch.GroupList = gl
		}
		if n := l.ScanList.Get(rec); n != 0 {
			sl, ok := ctx.ScanList(n)
			if !ok {
				return &LinkError{Category: CategoryChannels, Index: idx, Target: CategoryScanLists, Ref: n}
			}
			ch.ScanList = sl
		}
		if n := l.Positioning.Get(rec); n != 0 {
			ps, ok := ctx.Positioning(n)
			if !ok {
				return &LinkError{Category: CategoryChannels, Index: idx, Target: CategoryPositioning, Ref: n}
			}
			ch.Positioning = ps
		}
		return nil
	})
}
