// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

type positioning struct {
	l   PositioningLayout
	max int
}

// PositioningSystems returns the GPS system category.
func PositioningSystems(l PositioningLayout, max int) Category {
	return &positioning{l: l, max: capacity(l.Count, max)}
}

func (c *positioning) Name() string { return CategoryPositioning }

func (c *positioning) Mask() RegionMask { return RegionPositioning }

func (c *positioning) Regions() []Region { return []Region{c.l.Region()} }

func (c *positioning) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region(), c.l.Erased)
}

func (c *positioning) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	l := c.l
	contacts := indexOf(cfg.Contacts)
	channels := indexOf(cfg.Channels)
	return encodeTable(CategoryPositioning, l.Table, c.max, img, flags, cfg.PositioningSystems,
		func(rec []byte, ps *model.PositioningSystem) error {
			if err := l.Name.Set(rec, ps.Name); err != nil {
				return err
			}
			dest, err := refIndex(contacts, ps.Destination)
			if err != nil {
				return err
			}
			if err := l.Destination.Set(rec, dest); err != nil {
				return err
			}
			revert, err := refIndex(channels, ps.Revert)
			if err != nil {
				return err
			}
			if err := l.Revert.Set(rec, revert); err != nil {
				return err
			}
			if err := l.Period.Set(rec, ps.Period); err != nil {
				return fmt.Errorf("period: %w", err)
			}
			return nil
		})
}

func (c *positioning) Create(img *memory.Image, ctx *Context) error {
	err := forEachRecord(c.l.Table, img, nil, func(idx int, rec []byte) error {
		ps := model.NewPositioningSystem(c.l.Name.Get(rec))
		ps.Period = c.l.Period.Get(rec)
		ctx.Config.PositioningSystems = append(ctx.Config.PositioningSystems, ps)
		ctx.AddPositioning(idx, ps)
		return nil
	})
	if err != nil {
		return err
	}
	ctx.markCreated(CategoryPositioning)
	return nil
}

func (c *positioning) Link(img *memory.Image, ctx *Context) error {
	if err := ctx.requireCreated(CategoryPositioning, CategoryContacts, CategoryChannels); err != nil {
		return err
	}
	return linkRecords(c.l.Table, img, ctx.positioning, func(idx int, rec []byte, ps *model.PositioningSystem) error {
		if n := c.l.Destination.Get(rec); n != 0 {
			ct, ok := ctx.Contact(n)
			if !ok {
				return &LinkError{Category: CategoryPositioning, Index: idx, Target: CategoryContacts, Ref: n}
			}
			ps.Destination = ct
		}
		if n := c.l.Revert.Get(rec); n != 0 {
			ch, ok := ctx.Channel(n)
			if !ok {
				return &LinkError{Category: CategoryPositioning, Index: idx, Target: CategoryChannels, Ref: n}
			}
			ps.Revert = ch
		}
		return nil
	})
}
