// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package models maps model keys to radio drivers.
package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dforsi/qdmr/models/md380"
	"github.com/dforsi/qdmr/models/opengd77"
	"github.com/dforsi/qdmr/radio"
)

var drivers = map[string]func() radio.Driver{
	"md380":    func() radio.Driver { return md380.New() },
	"rt3":      func() radio.Driver { return md380.NewRT3() },
	"opengd77": func() radio.Driver { return opengd77.New() },
}

// Lookup returns a new driver for the model key, e.g. "md380". Keys are case insensitive.
func Lookup(key string) (radio.Driver, error) {
	newDriver, ok := drivers[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, fmt.Errorf("unknown radio model %q, known models: %s", key, strings.Join(Keys(), ", "))
	}
	return newDriver(), nil
}

// Keys returns the known model keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(drivers))
	for k := range drivers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
