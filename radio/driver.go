// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package radio transfers codeplugs between a radio and the configuration graph.
package radio

import (
	"context"
	"log/slog"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/limits"
	"github.com/dforsi/qdmr/transport"
)

// Info identifies a radio model.
type Info struct {
	Key          string // e.g. "md380"
	Name         string // e.g. "MD-380"
	Manufacturer string // e.g. "TyT"
	Aliases      []Info // rebranded variants sharing the codeplug
}

func (i Info) String() string {
	if i.Manufacturer == "" {
		return i.Name
	}
	return i.Manufacturer + " " + i.Name
}

// Driver bundles everything model specific.
type Driver interface {
	Info() Info
	// BlockSize is the transfer block size of the model.
	BlockSize() int
	// Codeplug returns the memory map and categories of the model.
	Codeplug() *codec.Codeplug
	// DefaultProfile returns the capabilities without frequency ranges.
	DefaultProfile() limits.Profile
	// Identify determines the variant of a connected unit. The transport must be open.
	// Units that cannot be classified yield the default profile; the reason is
	// logged to logger.
	Identify(ctx context.Context, t transport.Transport, logger *slog.Logger) (limits.Profile, error)
}
