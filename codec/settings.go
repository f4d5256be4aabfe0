// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"
	"time"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

type settings struct {
	l SettingsLayout
}

// GeneralSettings returns the general settings category.
func GeneralSettings(l SettingsLayout) Category {
	return &settings{l: l}
}

func (c *settings) Name() string { return CategorySettings }

func (c *settings) Mask() RegionMask { return RegionSettings }

func (c *settings) Regions() []Region { return []Region{c.l.Region} }

func (c *settings) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region, c.l.Erased)
}

func (c *settings) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	l := c.l
	buf, err := img.Read(l.Bank, l.Address, l.Size)
	if err != nil {
		return err
	}
	if !flags.UpdateOnly {
		fill(buf, l.Erased)
	}
	s := cfg.Settings
	fail := func(err error) error {
		return &EncodeError{Category: CategorySettings, Reason: err.Error()}
	}
	if err := l.Name.Set(buf, s.Name); err != nil {
		return fail(err)
	}
	if err := l.RadioID.Set(buf, s.RadioID); err != nil {
		return fail(err)
	}
	if err := l.IntroLine1.Set(buf, s.IntroLine1); err != nil {
		return fail(err)
	}
	if err := l.IntroLine2.Set(buf, s.IntroLine2); err != nil {
		return fail(err)
	}
	if err := l.MicLevel.Set(buf, s.MicLevel); err != nil {
		return fail(fmt.Errorf("mic level: %w", err))
	}
	if err := l.Squelch.Set(buf, s.Squelch); err != nil {
		return fail(fmt.Errorf("squelch: %w", err))
	}
	if err := l.VOXLevel.Set(buf, s.VOXLevel); err != nil {
		return fail(fmt.Errorf("vox level: %w", err))
	}
	l.GPSEnabled.SetFlag(buf, s.GPSEnabled || (flags.AutoEnableGPS && cfg.HasPositioning()))
	if l.Checksum != Absent {
		buf[l.Checksum] = 0
		buf[l.Checksum] = checksum(buf)
	}
	return img.Write(l.Bank, l.Address, buf)
}

func (c *settings) Create(img *memory.Image, ctx *Context) error {
	l := c.l
	buf, err := img.Slice(l.Bank, l.Address, l.Size)
	if err != nil {
		return err
	}
	defer ctx.markCreated(CategorySettings)
	if isErased(buf, l.Erased) {
		return nil
	}
	if l.Checksum != Absent && checksum(buf) != 0 {
		return &DecodeError{Category: CategorySettings, Index: 0, Reason: "checksum mismatch"}
	}
	id, ok := l.RadioID.Get(buf)
	if !ok {
		return &DecodeError{Category: CategorySettings, Index: 0, Reason: "invalid radio id"}
	}
	ctx.Config.Settings = model.Settings{
		Name:       l.Name.Get(buf),
		RadioID:    id,
		IntroLine1: l.IntroLine1.Get(buf),
		IntroLine2: l.IntroLine2.Get(buf),
		MicLevel:   l.MicLevel.Get(buf),
		Squelch:    l.Squelch.Get(buf),
		VOXLevel:   l.VOXLevel.Get(buf),
		GPSEnabled: l.GPSEnabled.Flag(buf),
	}
	return nil
}

func (c *settings) Link(*memory.Image, *Context) error { return nil }

type boot struct {
	l BootLayout
}

// BootSettings returns the boot settings category.
func BootSettings(l BootLayout) Category {
	return &boot{l: l}
}

func (c *boot) Name() string { return CategoryBoot }

func (c *boot) Mask() RegionMask { return RegionBoot }

func (c *boot) Regions() []Region { return []Region{c.l.Region} }

func (c *boot) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region, c.l.Erased)
}

func (c *boot) Encode(cfg *model.Config, flags Flags, img *memory.Image) error {
	l := c.l
	buf, err := img.Read(l.Bank, l.Address, l.Size)
	if err != nil {
		return err
	}
	if !flags.UpdateOnly {
		fill(buf, l.Erased)
	}
	b := cfg.Boot
	l.ShowText.SetFlag(buf, b.ShowText)
	if b.Password != "" {
		if l.Password == Absent {
			return &EncodeError{Category: CategoryBoot, Reason: "boot password is not supported"}
		}
		if err := putPassword(buf[l.Password:l.Password+3], b.Password); err != nil {
			return &EncodeError{Category: CategoryBoot, Reason: err.Error()}
		}
	}
	l.PasswordSet.SetFlag(buf, b.Password != "")
	return img.Write(l.Bank, l.Address, buf)
}

func putPassword(b []byte, pw string) error {
	if len(pw) != 6 {
		return fmt.Errorf("password must have 6 digits")
	}
	for i := 0; i < 3; i++ {
		hi, lo := pw[2*i], pw[2*i+1]
		if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
			return fmt.Errorf("password must have 6 digits")
		}
		b[i] = (hi-'0')<<4 | (lo - '0')
	}
	return nil
}

func (c *boot) Create(img *memory.Image, ctx *Context) error {
	l := c.l
	buf, err := img.Slice(l.Bank, l.Address, l.Size)
	if err != nil {
		return err
	}
	defer ctx.markCreated(CategoryBoot)
	if isErased(buf, l.Erased) {
		return nil
	}
	ctx.Config.Boot.ShowText = l.ShowText.Flag(buf)
	if l.Password != Absent && l.PasswordSet.Flag(buf) {
		pw := make([]byte, 0, 6)
		for _, v := range buf[l.Password : l.Password+3] {
			if v>>4 > 9 || v&0x0f > 9 {
				return &DecodeError{Category: CategoryBoot, Reason: "invalid password"}
			}
			pw = append(pw, '0'+v>>4, '0'+v&0x0f)
		}
		ctx.Config.Boot.Password = string(pw)
	}
	return nil
}

func (c *boot) Link(*memory.Image, *Context) error { return nil }

type timestamp struct {
	l TimestampLayout
}

// Timestamp returns the category recording the time of the last programming.
// It is write-only.
func Timestamp(l TimestampLayout) Category {
	return &timestamp{l: l}
}

func (c *timestamp) Name() string { return CategoryTimestamp }

func (c *timestamp) Mask() RegionMask { return RegionTimestamp }

func (c *timestamp) Regions() []Region { return []Region{c.l.Region} }

func (c *timestamp) Clear(img *memory.Image) error {
	return clearRegion(img, c.l.Region, c.l.Erased)
}

func (c *timestamp) Encode(_ *model.Config, flags Flags, img *memory.Image) error {
	t := flags.Timestamp
	if t.IsZero() {
		t = time.Now()
	}
	buf, err := img.Read(c.l.Bank, c.l.Address, c.l.Size)
	if err != nil {
		return err
	}
	if !flags.UpdateOnly {
		fill(buf, c.l.Erased)
	}
	for i, v := range []int{t.Year() / 100, t.Year() % 100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()} {
		buf[c.l.Offset+i] = byte(v/10)<<4 | byte(v%10)
	}
	return img.Write(c.l.Bank, c.l.Address, buf)
}

// ReadTimestamp decodes the time of the last programming. ok is false if the
// image does not hold a valid date.
func ReadTimestamp(img *memory.Image, l TimestampLayout) (t time.Time, ok bool) {
	buf, err := img.Slice(l.Bank, l.Address+uint32(l.Offset), 7)
	if err != nil {
		return time.Time{}, false
	}
	var v [7]int
	for i, b := range buf {
		if b>>4 > 9 || b&0x0f > 9 {
			return time.Time{}, false
		}
		v[i] = int(b>>4)*10 + int(b&0x0f)
	}
	if v[2] < 1 || v[2] > 12 || v[3] < 1 || v[3] > 31 {
		return time.Time{}, false
	}
	return time.Date(v[0]*100+v[1], time.Month(v[2]), v[3], v[4], v[5], v[6], 0, time.Local), true
}

func (c *timestamp) Create(*memory.Image, *Context) error { return nil }

func (c *timestamp) Link(*memory.Image, *Context) error { return nil }
