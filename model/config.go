// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package model holds the radio-independent configuration graph.
//
// Entities reference each other by pointer. Binary codeplugs reference records by
// index; translating between both is the job of the codec package.
package model

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Config is the complete configuration of a radio.
type Config struct {
	Settings Settings
	Boot     BootSettings

	Channels           []*Channel
	Contacts           []*Contact
	Zones              []*Zone
	ScanLists          []*ScanList
	GroupLists         []*GroupList
	PositioningSystems []*PositioningSystem
}

// NewConfig creates an empty configuration with default settings.
func NewConfig() *Config {
	return &Config{Settings: DefaultSettings()}
}

// Reset drops all entities and restores the default settings.
func (c *Config) Reset() {
	*c = Config{Settings: DefaultSettings()}
}

// Settings are the general device options.
type Settings struct {
	Name       string
	RadioID    uint32
	IntroLine1 string
	IntroLine2 string
	MicLevel   uint8 // 1-10
	Squelch    uint8 // 0-9
	VOXLevel   uint8 // 0-10, 0 disables VOX
	GPSEnabled bool
}

// DefaultSettings returns the settings of a freshly reset radio.
func DefaultSettings() Settings {
	return Settings{MicLevel: 5, Squelch: 3}
}

// BootSettings control the power-on behaviour.
type BootSettings struct {
	ShowText bool
	Password string // up to 6 digits, empty disables the password
}

func newID() string {
	return uuid.New().String()
}

// Validate checks that every reference of the graph points to an entity of the
// same graph. All problems are reported.
func (c *Config) Validate() error {
	contacts := make(map[*Contact]bool, len(c.Contacts))
	for _, ct := range c.Contacts {
		contacts[ct] = true
	}
	channels := make(map[*Channel]bool, len(c.Channels))
	for _, ch := range c.Channels {
		channels[ch] = true
	}
	groupLists := make(map[*GroupList]bool, len(c.GroupLists))
	for _, gl := range c.GroupLists {
		groupLists[gl] = true
	}
	scanLists := make(map[*ScanList]bool, len(c.ScanLists))
	for _, sl := range c.ScanLists {
		scanLists[sl] = true
	}
	systems := make(map[*PositioningSystem]bool, len(c.PositioningSystems))
	for _, ps := range c.PositioningSystems {
		systems[ps] = true
	}

	var err error
	dangling := func(owner, ref string) {
		err = multierr.Append(err, fmt.Errorf("%s references %s outside of the configuration", owner, ref))
	}
	for _, ch := range c.Channels {
		if ch.Contact != nil && !contacts[ch.Contact] {
			dangling(ch.String(), ch.Contact.String())
		}
		if ch.GroupList != nil && !groupLists[ch.GroupList] {
			dangling(ch.String(), ch.GroupList.String())
		}
		if ch.ScanList != nil && !scanLists[ch.ScanList] {
			dangling(ch.String(), ch.ScanList.String())
		}
		if ch.Positioning != nil && !systems[ch.Positioning] {
			dangling(ch.String(), ch.Positioning.String())
		}
	}
	for _, z := range c.Zones {
		for _, ch := range append(append([]*Channel{}, z.A...), z.B...) {
			if !channels[ch] {
				dangling(z.String(), ch.String())
			}
		}
	}
	for _, sl := range c.ScanLists {
		if sl.Priority != nil && !channels[sl.Priority] {
			dangling(sl.String(), sl.Priority.String())
		}
		for _, ch := range sl.Members {
			if !channels[ch] {
				dangling(sl.String(), ch.String())
			}
		}
	}
	for _, gl := range c.GroupLists {
		for _, ct := range gl.Contacts {
			if !contacts[ct] {
				dangling(gl.String(), ct.String())
			}
		}
	}
	for _, ps := range c.PositioningSystems {
		if ps.Destination != nil && !contacts[ps.Destination] {
			dangling(ps.String(), ps.Destination.String())
		}
		if ps.Revert != nil && !channels[ps.Revert] {
			dangling(ps.String(), ps.Revert.String())
		}
	}
	return err
}

// HasPositioning reports whether any channel uses a positioning system.
func (c *Config) HasPositioning() bool {
	for _, ch := range c.Channels {
		if ch.Positioning != nil {
			return true
		}
	}
	return false
}
