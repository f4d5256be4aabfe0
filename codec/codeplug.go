// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

// Codeplug is the ordered set of categories of one radio model together with
// the memory map they live in.
type Codeplug struct {
	newImage   func() *memory.Image
	categories []Category
}

// NewCodeplug creates a codeplug. Categories are encoded, created and linked in
// the given order.
func NewCodeplug(newImage func() *memory.Image, categories ...Category) *Codeplug {
	return &Codeplug{newImage: newImage, categories: categories}
}

// NewImage returns an erased memory image of the model.
func (c *Codeplug) NewImage() *memory.Image {
	img := c.newImage()
	_ = c.Clear(img)
	return img
}

// Categories returns the categories in encode order.
func (c *Codeplug) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Regions returns the memory regions of the categories selected by mask.
func (c *Codeplug) Regions(mask RegionMask) []Region {
	var out []Region
	for _, cat := range c.categories {
		if mask.Includes(cat.Mask()) {
			out = append(out, cat.Regions()...)
		}
	}
	return out
}

// Clear erases every category.
func (c *Codeplug) Clear(img *memory.Image) error {
	for _, cat := range c.categories {
		if err := cat.Clear(img); err != nil {
			return fmt.Errorf("clear %s: %w", cat.Name(), err)
		}
	}
	return nil
}

// Encode writes the categories selected by flags.Regions. The image is only
// modified if all of them succeed.
func (c *Codeplug) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	scratch := img.Clone()
	var regions []Region
	for _, cat := range c.categories {
		if !flags.Regions.Includes(cat.Mask()) {
			continue
		}
		if err := cat.Encode(cfg, flags, scratch); err != nil {
			return fmt.Errorf("encode %s: %w", cat.Name(), err)
		}
		regions = append(regions, cat.Regions()...)
	}
	for _, r := range regions {
		data, err := scratch.Read(r.Bank, r.Address, r.Size)
		if err != nil {
			return err
		}
		if err := img.Write(r.Bank, r.Address, data); err != nil {
			return err
		}
	}
	return nil
}

// Validate encodes cfg into a scratch image without touching any device memory.
func (c *Codeplug) Validate(cfg *model.Config, flags Flags) error {
	return c.Encode(cfg, flags, c.NewImage())
}

// Decode builds a configuration from img. All categories are created before any
// of them is linked.
func (c *Codeplug) Decode(img *memory.Image) (*model.Config, error) {
	cfg := model.NewConfig()
	ctx := NewContext(cfg)
	for _, cat := range c.categories {
		ctx.register(cat.Name())
	}
	for _, cat := range c.categories {
		if err := cat.Create(img, ctx); err != nil {
			return nil, fmt.Errorf("decode %s: %w", cat.Name(), err)
		}
	}
	for _, cat := range c.categories {
		if err := cat.Link(img, ctx); err != nil {
			return nil, fmt.Errorf("link %s: %w", cat.Name(), err)
		}
	}
	return cfg, nil
}
