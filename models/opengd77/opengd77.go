// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package opengd77 implements radios running the OpenGD77 firmware.
package opengd77

import (
	"context"
	"log/slog"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/limits"
	"github.com/dforsi/qdmr/radio"
	"github.com/dforsi/qdmr/transport"
)

// Features of the OpenGD77 firmware.
var Features = limits.Features{
	HasDigital:         true,
	HasAnalog:          true,
	HasGPS:             false,
	MaxNameLength:      8,
	MaxIntroLineLength: 16,

	MaxChannels:          numChannels,
	MaxChannelNameLength: 16,

	MaxZones:          numZones,
	MaxZoneNameLength: 16,
	MaxChannelsInZone: 32,
	HasABZone:         false,

	MaxScanLists:          numScanLists,
	MaxScanListNameLength: 16,
	MaxChannelsInScanList: 32,
	ScanListNeedsPriority: true,

	MaxContacts:          numContacts,
	MaxContactNameLength: 16,

	MaxGroupLists:          numGroupLists,
	MaxGroupListNameLength: 16,
	MaxContactsInGroupList: 16,
}

// Ranges covers both bands of the supported hardware.
var Ranges = []limits.FrequencyRange{{Min: 136, Max: 174}, {Min: 400, Max: 470}}

// Driver drives radios with the OpenGD77 firmware.
type Driver struct{}

// New returns the OpenGD77 driver.
func New() *Driver { return &Driver{} }

func (d *Driver) Info() radio.Info {
	return radio.Info{Key: "opengd77", Name: "Open GD-77"}
}

func (d *Driver) BlockSize() int { return BlockSize }

func (d *Driver) Codeplug() *codec.Codeplug { return NewCodeplug() }

func (d *Driver) DefaultProfile() limits.Profile {
	return limits.New(d.Info().String(), Features)
}

// Identify returns the dual-band profile. The firmware runs on a single
// hardware variant, so no memory is read. Transports able to report the
// device name are asked for it.
func (d *Driver) Identify(ctx context.Context, t transport.Transport, logger *slog.Logger) (limits.Profile, error) {
	if id, ok := t.(transport.Identifier); ok {
		name, err := id.Identify(ctx)
		if err != nil {
			return limits.Profile{}, err
		}
		logger.Debug("device reports model", "name", name)
	}
	return limits.New(d.Info().String(), Features, Ranges...), nil
}
