// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

type contacts struct {
	l   ContactLayout
	max int
}

// Contacts returns the contact category.
func Contacts(l ContactLayout, max int) Category {
	return &contacts{l: l, max: capacity(l.Count, max)}
}

func (c *contacts) Name() string { return CategoryContacts }

func (c *contacts) Mask() RegionMask { return RegionContacts }

func (c *contacts) Regions() []Region { return []Region{c.l.Region()} }

func (c *contacts) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region(), c.l.Erased)
}

func (c *contacts) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	l := c.l
	return encodeTable(CategoryContacts, l.Table, c.max, img, flags, cfg.Contacts, func(rec []byte, ct *model.Contact) error {
		if err := l.Name.Set(rec, ct.Name); err != nil {
			return err
		}
		if err := l.Number.Set(rec, ct.Number); err != nil {
			return err
		}
		if ct.CallType < model.CallGroup || ct.CallType > model.CallAll {
			return fmt.Errorf("invalid call type %v", ct.CallType)
		}
		if err := l.CallType.Set(rec, l.CallTypes[ct.CallType-model.CallGroup]); err != nil {
			return err
		}
		l.Ring.SetFlag(rec, ct.Ring)
		return nil
	})
}

func (c *contacts) callType(rec []byte) (model.CallType, bool) {
	v := c.l.CallType.Get(rec)
	for i, stored := range c.l.CallTypes {
		if v == stored {
			return model.CallGroup + model.CallType(i), true
		}
	}
	return 0, false
}

func (c *contacts) valid(rec []byte) bool {
	_, ok := c.callType(rec)
	return ok
}

func (c *contacts) Create(img *memory.Image, ctx *Context) error {
	l := c.l
	err := forEachRecord(l.Table, img, c.valid, func(idx int, rec []byte) error {
		number, ok := l.Number.Get(rec)
		if !ok {
			return &DecodeError{Category: CategoryContacts, Index: idx, Reason: "invalid number"}
		}
		callType, _ := c.callType(rec)
		ct := model.NewContact(l.Name.Get(rec), number, callType)
		ct.Ring = l.Ring.Flag(rec)
		ctx.Config.Contacts = append(ctx.Config.Contacts, ct)
		ctx.AddContact(idx, ct)
		return nil
	})
	if err != nil {
		return err
	}
	ctx.markCreated(CategoryContacts)
	return nil
}

// Link is a no-op, contacts reference nothing.
func (c *contacts) Link(*memory.Image, *Context) error { return nil }
