// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package limits describes what a radio model can store and infers the
// frequency-band variant of a unit from its channel table.
package limits

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/model"
	"go.uber.org/multierr"
)

// Features is the static capability table of a radio model.
type Features struct {
	HasDigital         bool
	HasAnalog          bool
	HasGPS             bool
	MaxNameLength      int
	MaxIntroLineLength int

	MaxChannels          int
	MaxChannelNameLength int

	MaxZones          int
	MaxZoneNameLength int
	MaxChannelsInZone int
	HasABZone         bool

	MaxScanLists          int
	MaxScanListNameLength int
	MaxChannelsInScanList int
	ScanListNeedsPriority bool

	MaxContacts          int
	MaxContactNameLength int

	MaxGroupLists          int
	MaxGroupListNameLength int
	MaxContactsInGroupList int

	MaxPositioningSystems          int
	MaxPositioningSystemNameLength int
}

// FrequencyRange is an inclusive range in MHz.
type FrequencyRange struct {
	Min float64
	Max float64
}

// EmptyRange returns a range that contains nothing and grows with Extend.
func EmptyRange() FrequencyRange {
	return FrequencyRange{Min: math.Inf(1), Max: math.Inf(-1)}
}

// IsEmpty reports whether nothing has been added to the range.
func (r FrequencyRange) IsEmpty() bool {
	return r.Min > r.Max
}

// Extend grows the range to include mhz.
func (r *FrequencyRange) Extend(mhz float64) {
	r.Min = math.Min(r.Min, mhz)
	r.Max = math.Max(r.Max, mhz)
}

// Contains reports whether mhz lies within the range.
func (r FrequencyRange) Contains(mhz float64) bool {
	return r.Min <= mhz && mhz <= r.Max
}

// ContainsRange reports whether o lies completely within the range.
func (r FrequencyRange) ContainsRange(o FrequencyRange) bool {
	return !o.IsEmpty() && r.Min <= o.Min && o.Max <= r.Max
}

func (r FrequencyRange) String() string {
	if r.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%g-%gMHz", r.Min, r.Max)
}

// Profile is the immutable capability profile of one radio session.
type Profile struct {
	name     string
	features Features
	ranges   []FrequencyRange
}

// New creates a profile. Without frequency ranges no frequency checks are performed.
func New(name string, features Features, ranges ...FrequencyRange) Profile {
	return Profile{
		name:     name,
		features: features,
		ranges:   append([]FrequencyRange(nil), ranges...),
	}
}

// Name returns the variant name, e.g. "TyT MD-380V".
func (p Profile) Name() string { return p.name }

// Features returns a copy of the capability table.
func (p Profile) Features() Features { return p.features }

// FrequencyRanges returns a copy of the supported transmit/receive ranges.
func (p Profile) FrequencyRanges() []FrequencyRange {
	return append([]FrequencyRange(nil), p.ranges...)
}

// ChecksFrequencies reports whether the profile knows the frequency ranges of the unit.
func (p Profile) ChecksFrequencies() bool { return len(p.ranges) > 0 }

func (p Profile) MaxChannels() int           { return p.features.MaxChannels }
func (p Profile) MaxContacts() int           { return p.features.MaxContacts }
func (p Profile) MaxZones() int              { return p.features.MaxZones }
func (p Profile) MaxScanLists() int          { return p.features.MaxScanLists }
func (p Profile) MaxGroupLists() int         { return p.features.MaxGroupLists }
func (p Profile) MaxPositioningSystems() int { return p.features.MaxPositioningSystems }
func (p Profile) HasABZone() bool            { return p.features.HasABZone }
func (p Profile) HasGPS() bool               { return p.features.HasGPS }

// SupportsFrequency reports whether hz is within one of the profile ranges. Profiles
// without ranges accept every frequency.
func (p Profile) SupportsFrequency(hz uint64) bool {
	if len(p.ranges) == 0 {
		return true
	}
	mhz := float64(hz) / 1e6
	for _, r := range p.ranges {
		if r.Contains(mhz) {
			return true
		}
	}
	return false
}

// Validate checks cfg against the profile before anything is encoded. Every
// violation is an *codec.EncodeError; all of them are returned, combined with
// multierr.
func (p Profile) Validate(cfg *model.Config) error {
	f := p.features
	var err error
	add := func(category string, entity fmt.Stringer, format string, args ...any) {
		e := &codec.EncodeError{Category: category, Reason: fmt.Sprintf(format, args...)}
		if entity != nil {
			e.Entity = entity.String()
		}
		err = multierr.Append(err, e)
	}
	count := func(category string, entity fmt.Stringer, what string, n, max int) {
		if n > max {
			add(category, entity, "%d %s exceed the maximum of %d", n, what, max)
		}
	}
	name := func(category string, entity fmt.Stringer, value string, max int) {
		if max > 0 && utf8.RuneCountInString(value) > max {
			add(category, entity, "name %q exceeds %d characters", value, max)
		}
	}

	name(codec.CategorySettings, nil, cfg.Settings.Name, f.MaxNameLength)
	if f.MaxIntroLineLength > 0 {
		if utf8.RuneCountInString(cfg.Settings.IntroLine1) > f.MaxIntroLineLength ||
			utf8.RuneCountInString(cfg.Settings.IntroLine2) > f.MaxIntroLineLength {
			add(codec.CategorySettings, nil, "intro lines exceed %d characters", f.MaxIntroLineLength)
		}
	}

	count(codec.CategoryChannels, nil, "channels", len(cfg.Channels), f.MaxChannels)
	for _, ch := range cfg.Channels {
		name(codec.CategoryChannels, ch, ch.Name, f.MaxChannelNameLength)
		if ch.Mode == model.ModeDigital && !f.HasDigital {
			add(codec.CategoryChannels, ch, "digital channels are not supported")
		}
		if ch.Mode == model.ModeAnalog && !f.HasAnalog {
			add(codec.CategoryChannels, ch, "analog channels are not supported")
		}
		if !p.SupportsFrequency(ch.RxFrequency) {
			add(codec.CategoryChannels, ch, "rx frequency %.5fMHz outside of %v", float64(ch.RxFrequency)/1e6, p.ranges)
		}
		if !ch.RxOnly && !p.SupportsFrequency(ch.TxFrequency) {
			add(codec.CategoryChannels, ch, "tx frequency %.5fMHz outside of %v", float64(ch.TxFrequency)/1e6, p.ranges)
		}
		if ch.Positioning != nil && !f.HasGPS {
			add(codec.CategoryChannels, ch, "positioning is not supported")
		}
	}

	count(codec.CategoryContacts, nil, "contacts", len(cfg.Contacts), f.MaxContacts)
	for _, c := range cfg.Contacts {
		name(codec.CategoryContacts, c, c.Name, f.MaxContactNameLength)
	}

	count(codec.CategoryZones, nil, "zones", len(cfg.Zones), f.MaxZones)
	for _, z := range cfg.Zones {
		name(codec.CategoryZones, z, z.Name, f.MaxZoneNameLength)
		count(codec.CategoryZones, z, "channels", len(z.A), f.MaxChannelsInZone)
		if len(z.B) > 0 && !f.HasABZone {
			add(codec.CategoryZones, z, "A/B zones are not supported")
		}
		count(codec.CategoryZones, z, "B channels", len(z.B), f.MaxChannelsInZone)
	}

	count(codec.CategoryScanLists, nil, "scan lists", len(cfg.ScanLists), f.MaxScanLists)
	for _, s := range cfg.ScanLists {
		name(codec.CategoryScanLists, s, s.Name, f.MaxScanListNameLength)
		count(codec.CategoryScanLists, s, "channels", len(s.Members), f.MaxChannelsInScanList)
		if f.ScanListNeedsPriority && s.Priority == nil {
			add(codec.CategoryScanLists, s, "a priority channel is required")
		}
	}

	count(codec.CategoryGroupLists, nil, "group lists", len(cfg.GroupLists), f.MaxGroupLists)
	for _, g := range cfg.GroupLists {
		name(codec.CategoryGroupLists, g, g.Name, f.MaxGroupListNameLength)
		count(codec.CategoryGroupLists, g, "contacts", len(g.Contacts), f.MaxContactsInGroupList)
	}

	if len(cfg.PositioningSystems) > 0 && !f.HasGPS {
		add(codec.CategoryPositioning, nil, "positioning systems are not supported")
	}
	count(codec.CategoryPositioning, nil, "positioning systems", len(cfg.PositioningSystems), f.MaxPositioningSystems)
	for _, ps := range cfg.PositioningSystems {
		name(codec.CategoryPositioning, ps, ps.Name, f.MaxPositioningSystemNameLength)
	}
	return err
}
