// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

func channelIndices(indices map[*model.Channel]int, list []*model.Channel) ([]int, error) {
	out := make([]int, 0, len(list))
	for _, ch := range list {
		idx, err := refIndex(indices, ch)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

func resolveChannels(ctx *Context, category string, idx int, refs []int) ([]*model.Channel, error) {
	var out []*model.Channel
	for _, n := range refs {
		ch, ok := ctx.Channel(n)
		if !ok {
			return nil, &LinkError{Category: category, Index: idx, Target: CategoryChannels, Ref: n}
		}
		out = append(out, ch)
	}
	return out, nil
}

type zones struct {
	l   ZoneLayout
	max int
}

// Zones returns the zone category.
func Zones(l ZoneLayout, max int) Category {
	return &zones{l: l, max: capacity(l.Count, max)}
}

func (c *zones) Name() string { return CategoryZones }

func (c *zones) Mask() RegionMask { return RegionZones }

func (c *zones) Regions() []Region { return []Region{c.l.Region()} }

func (c *zones) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region(), c.l.Erased)
}

func (c *zones) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	l := c.l
	channels := indexOf(cfg.Channels)
	return encodeTable(CategoryZones, l.Table, c.max, img, flags, cfg.Zones, func(rec []byte, z *model.Zone) error {
		if err := l.Name.Set(rec, z.Name); err != nil {
			return err
		}
		a, err := channelIndices(channels, z.A)
		if err != nil {
			return err
		}
		if err := l.A.Set(rec, a); err != nil {
			return err
		}
		b, err := channelIndices(channels, z.B)
		if err != nil {
			return err
		}
		return l.B.Set(rec, b)
	})
}

func (c *zones) Create(img *memory.Image, ctx *Context) error {
	err := forEachRecord(c.l.Table, img, nil, func(idx int, rec []byte) error {
		z := model.NewZone(c.l.Name.Get(rec))
		ctx.Config.Zones = append(ctx.Config.Zones, z)
		ctx.AddZone(idx, z)
		return nil
	})
	if err != nil {
		return err
	}
	ctx.markCreated(CategoryZones)
	return nil
}

func (c *zones) Link(img *memory.Image, ctx *Context) error {
	if err := ctx.requireCreated(CategoryZones, CategoryChannels); err != nil {
		return err
	}
	return linkRecords(c.l.Table, img, ctx.zones, func(idx int, rec []byte, z *model.Zone) error {
		var err error
		if z.A, err = resolveChannels(ctx, CategoryZones, idx, c.l.A.Get(rec)); err != nil {
			return err
		}
		z.B, err = resolveChannels(ctx, CategoryZones, idx, c.l.B.Get(rec))
		return err
	})
}

type scanLists struct {
	l   ScanListLayout
	max int
}

// ScanLists returns the scan list category.
func ScanLists(l ScanListLayout, max int) Category {
	return &scanLists{l: l, max: capacity(l.Count, max)}
}

func (c *scanLists) Name() string { return CategoryScanLists }

func (c *scanLists) Mask() RegionMask { return RegionScanLists }

func (c *scanLists) Regions() []Region { return []Region{c.l.Region()} }

func (c *scanLists) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region(), c.l.Erased)
}

func (c *scanLists) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	l := c.l
	channels := indexOf(cfg.Channels)
	return encodeTable(CategoryScanLists, l.Table, c.max, img, flags, cfg.ScanLists, func(rec []byte, s *model.ScanList) error {
		if err := l.Name.Set(rec, s.Name); err != nil {
			return err
		}
		prio, err := refIndex(channels, s.Priority)
		if err != nil {
			return err
		}
		if err := l.Priority.Set(rec, prio); err != nil {
			return err
		}
		members, err := channelIndices(channels, s.Members)
		if err != nil {
			return err
		}
		return l.Members.Set(rec, members)
	})
}

func (c *scanLists) Create(img *memory.Image, ctx *Context) error {
	err := forEachRecord(c.l.Table, img, nil, func(idx int, rec []byte) error {
		s := model.NewScanList(c.l.Name.Get(rec))
		ctx.Config.ScanLists = append(ctx.Config.ScanLists, s)
		ctx.AddScanList(idx, s)
		return nil
	})
	if err != nil {
		return err
	}
	ctx.markCreated(CategoryScanLists)
	return nil
}

func (c *scanLists) Link(img *memory.Image, ctx *Context) error {
	if err := ctx.requireCreated(CategoryScanLists, CategoryChannels); err != nil {
		return err
	}
	return linkRecords(c.l.Table, img, ctx.scanLists, func(idx int, rec []byte, s *model.ScanList) error {
		if n := c.l.Priority.Get(rec); n != 0 {
			ch, ok := ctx.Channel(n)
			if !ok {
				return &LinkError{Category: CategoryScanLists, Index: idx, Target: CategoryChannels, Ref: n}
			}
			s.Priority = ch
		}
		var err error
		s.Members, err = resolveChannels(ctx, CategoryScanLists, idx, c.l.Members.Get(rec))
		return err
	})
}

type groupLists struct {
	l   GroupListLayout
	max int
}

// GroupLists returns the group list category.
func GroupLists(l GroupListLayout, max int) Category {
	return &groupLists{l: l, max: capacity(l.Count, max)}
}

func (c *groupLists) Name() string { return CategoryGroupLists }

func (c *groupLists) Mask() RegionMask { return RegionGroupLists }

func (c *groupLists) Regions() []Region { return []Region{c.l.Region()} }

func (c *groupLists) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region(), c.l.Erased)
}

func (c *groupLists) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	l := c.l
	contacts := indexOf(cfg.Contacts)
	return encodeTable(CategoryGroupLists, l.Table, c.max, img, flags, cfg.GroupLists, func(rec []byte, g *model.GroupList) error {
		if err := l.Name.Set(rec, g.Name); err != nil {
			return err
		}
		members := make([]int, 0, len(g.Contacts))
		for _, ct := range g.Contacts {
			idx, err := refIndex(contacts, ct)
			if err != nil {
				return err
			}
			members = append(members, idx)
		}
		return l.Contacts.Set(rec, members)
	})
}

func (c *groupLists) Create(img *memory.Image, ctx *Context) error {
	err := forEachRecord(c.l.Table, img, nil, func(idx int, rec []byte) error {
		g := model.NewGroupList(c.l.Name.Get(rec))
		ctx.Config.GroupLists = append(ctx.Config.GroupLists, g)
		ctx.AddGroupList(idx, g)
		return nil
	})
	if err != nil {
		return err
	}
	ctx.markCreated(CategoryGroupLists)
	return nil
}

func (c *groupLists) Link(img *memory.Image, ctx *Context) error {
	if err := ctx.requireCreated(CategoryGroupLists, CategoryContacts); err != nil {
		return err
	}
	return linkRecords(c.l.Table, img, ctx.groupLists, func(idx int, rec []byte, g *model.GroupList) error {
		for _, n := range c.l.Contacts.Get(rec) {
			ct, ok := ctx.Contact(n)
			if !ok {
				return &LinkError{Category: CategoryGroupLists, Index: idx, Target: CategoryContacts, Ref: n}
			}
			g.Contacts = append(g.Contacts, ct)
		}
		return nil
	})
}
