// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"fmt"
	"sort"

	"github.com/dforsi/qdmr/model"
)

// Context maps the record indices of one decode run to the created entities.
// It lives for a single Decode and is not safe for concurrent use.
type Context struct {
	Config *model.Config

	channels    map[int]*model.Channel
	contacts    map[int]*model.Contact
	zones       map[int]*model.Zone
	scanLists   map[int]*model.ScanList
	groupLists  map[int]*model.GroupList
	positioning map[int]*model.PositioningSystem

	registered map[string]bool
	created    map[string]bool
}

// NewContext creates a context building into cfg.
func NewContext(cfg *model.Config) *Context {
	return &Context{
		Config:      cfg,
		channels:    make(map[int]*model.Channel),
		contacts:    make(map[int]*model.Contact),
		zones:       make(map[int]*model.Zone),
		scanLists:   make(map[int]*model.ScanList),
		groupLists:  make(map[int]*model.GroupList),
		positioning: make(map[int]*model.PositioningSystem),
		registered:  make(map[string]bool),
		created:     make(map[string]bool),
	}
}

func (c *Context) AddChannel(idx int, ch *model.Channel)              { c.channels[idx] = ch }
func (c *Context) AddContact(idx int, ct *model.Contact)              { c.contacts[idx] = ct }
func (c *Context) AddZone(idx int, z *model.Zone)                     { c.zones[idx] = z }
func (c *Context) AddScanList(idx int, s *model.ScanList)             { c.scanLists[idx] = s }
func (c *Context) AddGroupList(idx int, g *model.GroupList)           { c.groupLists[idx] = g }
func (c *Context) AddPositioning(idx int, p *model.PositioningSystem) { c.positioning[idx] = p }

func (c *Context) Channel(idx int) (*model.Channel, bool) {
	ch, ok := c.channels[idx]
	return ch, ok
}

func (c *Context) Contact(idx int) (*model.Contact, bool) {
	ct, ok := c.contacts[idx]
	return ct, ok
}

func (c *Context) ScanList(idx int) (*model.ScanList, bool) {
	s, ok := c.scanLists[idx]
	return s, ok
}

func (c *Context) GroupList(idx int) (*model.GroupList, bool) {
	g, ok := c.groupLists[idx]
	return g, ok
}

func (c *Context) Positioning(idx int) (*model.PositioningSystem, bool) {
	p, ok := c.positioning[idx]
	return p, ok
}

// register announces a category taking part in the decode run.
func (c *Context) register(category string) { c.registered[category] = true }

// markCreated records that category finished its create pass.
func (c *Context) markCreated(category string) { c.created[category] = true }

// requireCreated fails unless every registered dependency has been created.
func (c *Context) requireCreated(category string, deps ...string) error {
	for _, d := range deps {
		if c.registered[d] && !c.created[d] {
			return fmt.Errorf("link %s: %s have not been created", category, d)
		}
	}
	return nil
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// indexOf maps each entity of list to its 1-based record index.
func indexOf[T comparable](list []T) map[T]int {
	m := make(map[T]int, len(list))
	for i, v := range list {
		m[v] = i + 1
	}
	return m
}
