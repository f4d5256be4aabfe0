// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import "fmt"

// EncodeError is returned when an entity cannot be represented by the model layout.
type EncodeError struct {
	Category string
	Entity   string // identity of the offending entity, empty for category-wide problems
	Reason   string
}

func (e *EncodeError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("cannot encode %s: %s", e.Category, e.Reason)
	}
	return fmt.Sprintf("cannot encode %s: %s: %s", e.Category, e.Entity, e.Reason)
}

// DecodeError is returned for records violating a hard validity contract of the model.
type DecodeError struct {
	Category string
	Index    int
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s record %d: %s", e.Category, e.Index, e.Reason)
}

// LinkError is returned when a record references an index without a valid entity.
type LinkError struct {
	Category string // category of the referencing record
	Index    int    // index of the referencing record
	Target   string // referenced category
	Ref      int    // referenced index
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s %d references unknown %s %d", e.Category, e.Index, e.Target, e.Ref)
}

// entityError wraps field errors with the entity they belong to.
func entityError(category string, entity fmt.Stringer, err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EncodeError); ok {
		if ee.Category == "" {
			ee.Category = category
		}
		if ee.Entity == "" {
			ee.Entity = entity.String()
		}
		return ee
	}
	return &EncodeError{Category: category, Entity: entity.String(), Reason: err.Error()}
}
