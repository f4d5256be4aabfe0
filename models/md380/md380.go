// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package md380 implements the TyT MD-380 and its rebrands.
package md380

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/limits"
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
	"github.com/dforsi/qdmr/radio"
	"github.com/dforsi/qdmr/transport"
)

// Features of the MD-380 family.
var Features = limits.Features{
	HasDigital:         true,
	HasAnalog:          true,
	HasGPS:             false,
	MaxNameLength:      16,
	MaxIntroLineLength: 10,

	MaxChannels:          numChannels,
	MaxChannelNameLength: 16,

	MaxZones:          numZones,
	MaxZoneNameLength: 16,
	MaxChannelsInZone: 16,
	HasABZone:         false,

	MaxScanLists:          numScanLists,
	MaxScanListNameLength: 16,
	MaxChannelsInScanList: 31,
	ScanListNeedsPriority: false,

	MaxContacts:          numContacts,
	MaxContactNameLength: 16,

	MaxGroupLists:          numGroupLists,
	MaxGroupListNameLength: 16,
	MaxContactsInGroupList: 32,
}

// Bands lists the frequency variants in detection order.
var Bands = []limits.Band{
	{Name: "VHF", Suffix: "V", Detect: limits.FrequencyRange{Min: 137, Max: 174}, Ranges: []limits.FrequencyRange{{Min: 136, Max: 174}}},
	{Name: "UHF 350", Suffix: "U", Detect: limits.FrequencyRange{Min: 350, Max: 400}, Ranges: []limits.FrequencyRange{{Min: 350, Max: 400}}},
	{Name: "UHF 400", Suffix: "U", Detect: limits.FrequencyRange{Min: 400, Max: 450}, Ranges: []limits.FrequencyRange{{Min: 400, Max: 480}}},
	{Name: "UHF 450", Suffix: "U", Detect: limits.FrequencyRange{Min: 450, Max: 520}, Ranges: []limits.FrequencyRange{{Min: 450, Max: 520}}},
}

var (
	infoMD380 = radio.Info{Key: "md380", Name: "MD-380", Manufacturer: "TyT"}
	infoRT3   = radio.Info{Key: "rt3", Name: "RT3", Manufacturer: "Retevis"}
)

// DefaultInfo returns the model information including the rebranded aliases.
func DefaultInfo() radio.Info {
	info := infoMD380
	info.Aliases = []radio.Info{infoRT3}
	return info
}

// Driver drives one member of the MD-380 family.
type Driver struct {
	info radio.Info
}

// New returns the driver of the TyT MD-380.
func New() *Driver {
	return &Driver{info: DefaultInfo()}
}

// NewRT3 returns the driver of the Retevis RT3.
func NewRT3() *Driver {
	return &Driver{info: infoRT3}
}

func (d *Driver) Info() radio.Info { return d.info }

func (d *Driver) BlockSize() int { return BlockSize }

func (d *Driver) Codeplug() *codec.Codeplug { return NewCodeplug() }

func (d *Driver) DefaultProfile() limits.Profile {
	return limits.New(d.info.String(), Features)
}

// Identify reads the channel table and derives the band variant from the
// frequencies in use. An unknown band is logged and yields the default profile.
func (d *Driver) Identify(ctx context.Context, t transport.Transport, logger *slog.Logger) (limits.Profile, error) {
	start := memory.AlignAddr(addrChannels, BlockSize)
	size := memory.AlignSize(int(addrChannels-start)+numChannels*channelSize, BlockSize)

	img := memory.New()
	if _, err := img.AddElement(memory.BankMain, start, size, 0xff); err != nil {
		return limits.Profile{}, err
	}
	if err := t.ReadStart(ctx, memory.BankMain, start); err != nil {
		return limits.Profile{}, fmt.Errorf("cannot read channels, cannot determine variant: %w", err)
	}
	for addr := start; addr < start+uint32(size); addr += BlockSize {
		data, err := t.Read(ctx, memory.BankMain, addr, BlockSize)
		if err != nil {
			return limits.Profile{}, fmt.Errorf("cannot read channels, cannot determine variant: %w", err)
		}
		if err := img.Write(memory.BankMain, addr, data); err != nil {
			return limits.Profile{}, err
		}
	}
	if err := t.ReadFinish(ctx); err != nil {
		return limits.Profile{}, err
	}

	observed, count, err := channelRange(img)
	if err != nil {
		return limits.Profile{}, err
	}
	logger.Debug("got frequency range", "range", observed, "channels", count)

	band, err := limits.Classify(observed, count, Bands)
	var ambiguous *limits.ClassificationAmbiguousError
	if errors.As(err, &ambiguous) {
		logger.Warn(ambiguous.Error())
		return d.DefaultProfile(), nil
	} else if err != nil {
		return limits.Profile{}, err
	}
	return limits.New(d.info.String()+band.Suffix, Features, band.Ranges...), nil
}

// channelRange decodes the valid channels of img and returns the range covered
// by their non-zero frequencies.
func channelRange(img *memory.Image) (limits.FrequencyRange, int, error) {
	cfg := model.NewConfig()
	if err := codec.Channels(channelLayout, 0).Create(img, codec.NewContext(cfg)); err != nil {
		return limits.FrequencyRange{}, 0, err
	}
	r := limits.EmptyRange()
	for _, ch := range cfg.Channels {
		if ch.RxFrequency != 0 {
			r.Extend(float64(ch.RxFrequency) / 1e6)
		}
		if ch.TxFrequency != 0 {
			r.Extend(float64(ch.TxFrequency) / 1e6)
		}
	}
	return r, len(cfg.Channels), nil
}
