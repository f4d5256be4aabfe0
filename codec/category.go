// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package codec translates between the configuration graph and the binary
// codeplug of a radio. A model is described as data (record layouts, table
// addresses, capacities); the categories in this package do the work.
package codec

import (
	"errors"
	"fmt"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

// Category encodes and decodes one kind of codeplug content.
//
// Decoding is split into two passes. Create instantiates the entities of all
// valid records and registers them in the Context by index. Link runs after
// every category has been created and resolves the index references.
type Category interface {
	Name() string
	Mask() RegionMask
	Regions() []Region
	// Clear resets the category to the erased state of the layout.
	Clear(img *memory.Image) error
	// Encode writes the entities of cfg. Nothing is written if any entity fails.
	Encode(cfg *model.Config, flags Flags, img *memory.Image) error
	Create(img *memory.Image, ctx *Context) error
	Link(img *memory.Image, ctx *Context) error
}

// capacity returns the number of usable records of a table.
func capacity(count, max int) int {
	if max <= 0 || max > count {
		return count
	}
	return max
}

func clearRegion(img *memory.Image, r Region, erased byte) error {
	return img.Fill(r.Bank, r.Address, r.Size, erased)
}

// errLooksErased rejects records that decoding would skip as unused.
var errLooksErased = errors.New("record is indistinguishable from an erased record")

// encodeTable renders list into a copy of the table region. The copy is written
// back only if every record could be encoded.
func encodeTable[T fmt.Stringer](category string, t Table, max int, img *memory.Image, flags Flags,
	list []T, encode func(rec []byte, v T) error) error {
	if len(list) > max {
		return &EncodeError{
			Category: category,
			Reason:   fmt.Sprintf("%d records exceed the capacity of %d", len(list), max),
		}
	}
	buf, err := img.Read(t.Bank, t.Address, t.Size())
	if err != nil {
		return err
	}
	for i := 0; i < t.Count; i++ {
		rec := t.record(buf, i)
		if i >= len(list) || !flags.UpdateOnly || isErased(rec, t.Erased) {
			fill(rec, t.Erased)
		}
		if i >= len(list) {
			continue
		}
		if err := encode(rec, list[i]); err != nil {
			return entityError(category, list[i], err)
		}
		if isErased(rec, t.Erased) {
			return entityError(category, list[i], errLooksErased)
		}
	}
	return img.Write(t.Bank, t.Address, buf)
}

// forEachRecord calls fn with the 1-based index of every record that is not
// erased and passes valid.
func forEachRecord(t Table, img *memory.Image, valid func(rec []byte) bool, fn func(idx int, rec []byte) error) error {
	buf, err := img.Slice(t.Bank, t.Address, t.Size())
	if err != nil {
		return err
	}
	for i := 0; i < t.Count; i++ {
		rec := t.record(buf, i)
		if isErased(rec, t.Erased) || (valid != nil && !valid(rec)) {
			continue
		}
		if err := fn(i+1, rec); err != nil {
			return err
		}
	}
	return nil
}

// linkRecords calls fn for every created entity of a table in index order.
func linkRecords[T any](t Table, img *memory.Image, created map[int]T, fn func(idx int, rec []byte, v T) error) error {
	buf, err := img.Slice(t.Bank, t.Address, t.Size())
	if err != nil {
		return err
	}
	for _, idx := range sortedKeys(created) {
		if err := fn(idx, t.record(buf, idx-1), created[idx]); err != nil {
			return err
		}
	}
	return nil
}

// refIndex returns the record index of v, 0 for nil.
func refIndex[T interface {
	comparable
	fmt.Stringer
}](indices map[T]int, v T) (int, error) {
	var zero T
	if v == zero {
		return 0, nil
	}
	idx, ok := indices[v]
	if !ok {
		return 0, fmt.Errorf("references %v outside of the configuration", v)
	}
	return idx, nil
}
