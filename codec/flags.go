// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"
	"strings"
	"time"
)

// RegionMask selects codeplug categories. The zero mask selects everything.
type RegionMask uint16

const (
	RegionSettings RegionMask = 1 << iota
	RegionBoot
	RegionTimestamp
	RegionChannels
	RegionContacts
	RegionZones
	RegionScanLists
	RegionGroupLists
	RegionPositioning

	RegionAll = RegionSettings | RegionBoot | RegionTimestamp | RegionChannels | RegionContacts |
		RegionZones | RegionScanLists | RegionGroupLists | RegionPositioning
)

var regionNames = []struct {
	name string
	mask RegionMask
}{
	{"settings", RegionSettings},
	{"boot", RegionBoot},
	{"timestamp", RegionTimestamp},
	{"channels", RegionChannels},
	{"contacts", RegionContacts},
	{"zones", RegionZones},
	{"scanlists", RegionScanLists},
	{"grouplists", RegionGroupLists},
	{"positioning", RegionPositioning},
}

// Includes reports whether the mask selects every category of m.
func (r RegionMask) Includes(m RegionMask) bool {
	if r == 0 {
		return true
	}
	return r&m == m
}

// Partial reports whether the mask restricts the selection.
func (r RegionMask) Partial() bool {
	return r != 0 && r&RegionAll != RegionAll
}

func (r RegionMask) String() string {
	if !r.Partial() {
		return "all"
	}
	var names []string
	for _, n := range regionNames {
		if r&n.mask != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseRegionMask parses a comma separated list of category names (e.g. "channels,zones").
// "all" and the empty string select everything.
func ParseRegionMask(input string) (RegionMask, error) {
	var mask RegionMask
	for _, part := range strings.Split(input, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		switch part {
		case "":
			continue
		case "all":
			mask |= RegionAll
			continue
		}
		found := false
		for _, n := range regionNames {
			if n.name == part {
				mask |= n.mask
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown codeplug region: %s", part)
		}
	}
	return mask, nil
}

// Flags control an encode run.
type Flags struct {
	// UpdateOnly keeps the bytes of records the model does not describe,
	// instead of rendering records onto an erased region.
	UpdateOnly bool
	// AutoEnableGPS turns on the GPS when any channel uses a positioning system.
	AutoEnableGPS bool
	// Regions restricts the encode to a set of categories.
	Regions RegionMask
	// Timestamp is written as time of the last programming. Zero uses the current time.
	Timestamp time.Time
}
