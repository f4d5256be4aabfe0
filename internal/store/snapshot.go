// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/dforsi/qdmr/memory"
)

var (
	snapshotEncMode cbor.EncMode
	snapshotDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339,
	}
	snapshotEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	snapshotDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// Snapshot is a self-describing copy of a memory image.
type Snapshot struct {
	Model    string            `cbor:"1,keyasint"`
	Saved    time.Time         `cbor:"2,keyasint"`
	Elements []SnapshotElement `cbor:"3,keyasint"`
}

// SnapshotElement is one contiguous element of a snapshot.
type SnapshotElement struct {
	Bank    memory.Bank `cbor:"1,keyasint"`
	Address uint32      `cbor:"2,keyasint"`
	Data    []byte      `cbor:"3,keyasint"`
}

// TakeSnapshot copies img into a Snapshot.
func TakeSnapshot(model string, img *memory.Image) *Snapshot {
	s := &Snapshot{Model: model, Saved: time.Now().UTC().Truncate(time.Second)}
	for _, b := range img.Banks() {
		for _, e := range img.Elements(b) {
			data := make([]byte, e.Size())
			copy(data, e.Data())
			s.Elements = append(s.Elements, SnapshotElement{Bank: b, Address: e.Address(), Data: data})
		}
	}
	return s
}

// Restore writes the snapshot into img. Every element must fit the memory
// map of img.
func (s *Snapshot) Restore(img *memory.Image) error {
	for _, e := range s.Elements {
		if err := img.Write(e.Bank, e.Address, e.Data); err != nil {
			return fmt.Errorf("restore snapshot of %s: %w", s.Model, err)
		}
	}
	return nil
}

// MarshalSnapshot encodes the snapshot as CBOR.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return snapshotEncMode.Marshal(s)
}

// UnmarshalSnapshot decodes a CBOR snapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := snapshotDecMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// ReadSnapshot reads a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalSnapshot(data)
}

// WriteSnapshot writes a snapshot file.
func WriteSnapshot(path string, s *Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SnapshotStorage keeps the image in a CBOR snapshot file. Writes are
// persisted on Save only.
type SnapshotStorage struct {
	path  string
	model string
}

// NewSnapshotStorage creates a SnapshotStorage. A non-empty model is
// recorded on Save and checked on Load.
func NewSnapshotStorage(path, model string) *SnapshotStorage {
	return &SnapshotStorage{path: path, model: model}
}

func (ss *SnapshotStorage) Load(img *memory.Image) error {
	s, err := ReadSnapshot(ss.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if ss.model != "" && s.Model != "" && s.Model != ss.model {
		return fmt.Errorf("snapshot %s holds a %s image, not %s", ss.path, s.Model, ss.model)
	}
	return s.Restore(img)
}

func (ss *SnapshotStorage) Save(img *memory.Image) error {
	return WriteSnapshot(ss.path, TakeSnapshot(ss.model, img))
}

func (ss *SnapshotStorage) OnWrite(bank memory.Bank, addr uint32, n int) {}

func (ss *SnapshotStorage) Close() error { return nil }
