// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package document

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/dforsi/qdmr/model"
)

// FromConfig converts the configuration into its document form.
func FromConfig(cfg *model.Config) *Document {
	doc := &Document{
		Settings: Settings(cfg.Settings),
		Boot:     Boot(cfg.Boot),
	}
	for _, c := range cfg.Contacts {
		doc.Contacts = append(doc.Contacts, Contact{
			ID: c.ID, Name: c.Name, Number: c.Number, CallType: c.CallType.String(), Ring: c.Ring,
		})
	}
	for _, gl := range cfg.GroupLists {
		doc.GroupLists = append(doc.GroupLists, GroupList{ID: gl.ID, Name: gl.Name, Contacts: contactNames(gl.Contacts)})
	}
	for _, ch := range cfg.Channels {
		c := Channel{
			ID:          ch.ID,
			Name:        ch.Name,
			RxFrequency: toMHz(ch.RxFrequency),
			TxFrequency: toMHz(ch.TxFrequency),
			Mode:        ch.Mode.String(),
			Power:       ch.Power.String(),
			Bandwidth:   ch.Bandwidth.String(),
			RxOnly:      ch.RxOnly,
			Timeout:     ch.Timeout,
			RxTone:      float64(ch.RxTone) / 10,
			TxTone:      float64(ch.TxTone) / 10,
		}
		if ch.Mode == model.ModeDigital {
			c.ColorCode = ch.ColorCode
			c.TimeSlot = ch.TimeSlot
		}
		if ch.Contact != nil {
			c.Contact = ch.Contact.Name
		}
		if ch.GroupList != nil {
			c.GroupList = ch.GroupList.Name
		}
		if ch.ScanList != nil {
			c.ScanList = ch.ScanList.Name
		}
		if ch.Positioning != nil {
			c.Positioning = ch.Positioning.Name
		}
		doc.Channels = append(doc.Channels, c)
	}
	for _, z := range cfg.Zones {
		doc.Zones = append(doc.Zones, Zone{ID: z.ID, Name: z.Name, A: channelNames(z.A), B: channelNames(z.B)})
	}
	for _, sl := range cfg.ScanLists {
		s := ScanList{ID: sl.ID, Name: sl.Name, Members: channelNames(sl.Members)}
		if sl.Priority != nil {
			s.Priority = sl.Priority.Name
		}
		doc.ScanLists = append(doc.ScanLists, s)
	}
	for _, ps := range cfg.PositioningSystems {
		p := Positioning{ID: ps.ID, Name: ps.Name, Period: ps.Period}
		if ps.Destination != nil {
			p.Destination = ps.Destination.Name
		}
		if ps.Revert != nil {
			p.Revert = ps.Revert.Name
		}
		doc.Positioning = append(doc.Positioning, p)
	}
	return doc
}

// Config builds the configuration graph, resolving references by name. All
// problems found are reported together.
func (doc *Document) Config() (*model.Config, error) {
	cfg := model.NewConfig()
	cfg.Settings = model.Settings(doc.Settings)
	cfg.Boot = model.BootSettings(doc.Boot)

	var err error
	fail := func(format string, args ...interface{}) {
		err = multierr.Append(err, fmt.Errorf(format, args...))
	}

	contacts := make(map[string]*model.Contact)
	for _, c := range doc.Contacts {
		ct, e := parseCallType(c.CallType)
		if e != nil {
			fail("contact %q: %v", c.Name, e)
		}
		contact := model.NewContact(c.Name, c.Number, ct)
		contact.Ring = c.Ring
		setID(&contact.ID, c.ID)
		if contacts[c.Name] != nil {
			fail("duplicate contact %q", c.Name)
		}
		contacts[c.Name] = contact
		cfg.Contacts = append(cfg.Contacts, contact)
	}

	groupLists := make(map[string]*model.GroupList)
	for _, g := range doc.GroupLists {
		gl := model.NewGroupList(g.Name)
		setID(&gl.ID, g.ID)
		for _, name := range g.Contacts {
			if c := contacts[name]; c != nil {
				gl.Contacts = append(gl.Contacts, c)
			} else {
				fail("group list %q: unknown contact %q", g.Name, name)
			}
		}
		if groupLists[g.Name] != nil {
			fail("duplicate group list %q", g.Name)
		}
		groupLists[g.Name] = gl
		cfg.GroupLists = append(cfg.GroupLists, gl)
	}

	// Channels and the entities they reference are created before linking,
	// as scan lists and positioning systems refer back to channels.
	channels := make(map[string]*model.Channel)
	for _, c := range doc.Channels {
		ch := model.NewChannel(c.Name)
		setID(&ch.ID, c.ID)
		ch.RxFrequency = fromMHz(c.RxFrequency)
		ch.TxFrequency = fromMHz(c.TxFrequency)
		ch.RxOnly = c.RxOnly
		ch.ColorCode = c.ColorCode
		if c.TimeSlot != 0 {
			ch.TimeSlot = c.TimeSlot
		}
		ch.Timeout = c.Timeout
		ch.RxTone = uint16(math.Round(c.RxTone * 10))
		ch.TxTone = uint16(math.Round(c.TxTone * 10))
		var e error
		if ch.Mode, e = parseMode(c.Mode); e != nil {
			fail("channel %q: %v", c.Name, e)
		}
		if ch.Power, e = parsePower(c.Power); e != nil {
			fail("channel %q: %v", c.Name, e)
		}
		if ch.Bandwidth, e = parseBandwidth(c.Bandwidth); e != nil {
			fail("channel %q: %v", c.Name, e)
		}
		if channels[c.Name] != nil {
			fail("duplicate channel %q", c.Name)
		}
		channels[c.Name] = ch
		cfg.Channels = append(cfg.Channels, ch)
	}
	resolve := func(owner string, refs []string) []*model.Channel {
		var out []*model.Channel
		for _, name := range refs {
			if ch := channels[name]; ch != nil {
				out = append(out, ch)
			} else {
				fail("%s: unknown channel %q", owner, name)
			}
		}
		return out
	}

	for _, z := range doc.Zones {
		zone := model.NewZone(z.Name)
		setID(&zone.ID, z.ID)
		zone.A = resolve(fmt.Sprintf("zone %q", z.Name), z.A)
		zone.B = resolve(fmt.Sprintf("zone %q", z.Name), z.B)
		cfg.Zones = append(cfg.Zones, zone)
	}

	scanLists := make(map[string]*model.ScanList)
	for _, s := range doc.ScanLists {
		sl := model.NewScanList(s.Name)
		setID(&sl.ID, s.ID)
		sl.Members = resolve(fmt.Sprintf("scan list %q", s.Name), s.Members)
		if s.Priority != "" {
			if p := resolve(fmt.Sprintf("scan list %q", s.Name), []string{s.Priority}); len(p) == 1 {
				sl.Priority = p[0]
			}
		}
		if scanLists[s.Name] != nil {
			fail("duplicate scan list %q", s.Name)
		}
		scanLists[s.Name] = sl
		cfg.ScanLists = append(cfg.ScanLists, sl)
	}

	systems := make(map[string]*model.PositioningSystem)
	for _, p := range doc.Positioning {
		ps := model.NewPositioningSystem(p.Name)
		setID(&ps.ID, p.ID)
		ps.Period = p.Period
		if p.Destination != "" {
			if ps.Destination = contacts[p.Destination]; ps.Destination == nil {
				fail("positioning system %q: unknown contact %q", p.Name, p.Destination)
			}
		}
		if p.Revert != "" {
			if r := resolve(fmt.Sprintf("positioning system %q", p.Name), []string{p.Revert}); len(r) == 1 {
				ps.Revert = r[0]
			}
		}
		if systems[p.Name] != nil {
			fail("duplicate positioning system %q", p.Name)
		}
		systems[p.Name] = ps
		cfg.PositioningSystems = append(cfg.PositioningSystems, ps)
	}

	for i, c := range doc.Channels {
		ch := cfg.Channels[i]
		if c.Contact != "" {
			if ch.Contact = contacts[c.Contact]; ch.Contact == nil {
				fail("channel %q: unknown contact %q", c.Name, c.Contact)
			}
		}
		if c.GroupList != "" {
			if ch.GroupList = groupLists[c.GroupList]; ch.GroupList == nil {
				fail("channel %q: unknown group list %q", c.Name, c.GroupList)
			}
		}
		if c.ScanList != "" {
			if ch.ScanList = scanLists[c.ScanList]; ch.ScanList == nil {
				fail("channel %q: unknown scan list %q", c.Name, c.ScanList)
			}
		}
		if c.Positioning != "" {
			if ch.Positioning = systems[c.Positioning]; ch.Positioning == nil {
				fail("channel %q: unknown positioning system %q", c.Name, c.Positioning)
			}
		}
	}

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func channelNames(channels []*model.Channel) []string {
	var out []string
	for _, ch := range channels {
		out = append(out, ch.Name)
	}
	return out
}

func contactNames(contacts []*model.Contact) []string {
	var out []string
	for _, c := range contacts {
		out = append(out, c.Name)
	}
	return out
}

func setID(dst *string, id string) {
	if id != "" {
		*dst = id
	}
}

func toMHz(hz uint64) float64 {
	return float64(hz) / 1e6
}

func fromMHz(mhz float64) uint64 {
	return uint64(math.Round(mhz * 1e6))
}

func parseMode(s string) (model.ChannelMode, error) {
	switch s {
	case "", "analog":
		return model.ModeAnalog, nil
	case "digital":
		return model.ModeDigital, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func parsePower(s string) (model.Power, error) {
	switch s {
	case "low":
		return model.PowerLow, nil
	case "mid":
		return model.PowerMid, nil
	case "", "high":
		return model.PowerHigh, nil
	}
	return 0, fmt.Errorf("unknown power %q", s)
}

func parseBandwidth(s string) (model.Bandwidth, error) {
	switch s {
	case "", "narrow":
		return model.BandwidthNarrow, nil
	case "wide":
		return model.BandwidthWide, nil
	}
	return 0, fmt.Errorf("unknown bandwidth %q", s)
}

func parseCallType(s string) (model.CallType, error) {
	switch s {
	case "", "group":
		return model.CallGroup, nil
	case "private":
		return model.CallPrivate, nil
	case "all":
		return model.CallAll, nil
	}
	return 0, fmt.Errorf("unknown call type %q", s)
}
