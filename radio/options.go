// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package radio

import (
	"log/slog"

	"github.com/dforsi/qdmr/limits"
)

// Mode selects how a transfer is run.
type Mode int

const (
	// Blocking runs the transfer on the calling goroutine.
	Blocking Mode = iota
	// Concurrent runs the transfer on a worker goroutine, see Session.Wait.
	Concurrent
)

type options struct {
	logger  *slog.Logger
	profile *limits.Profile
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger of the session. The default logger is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProfile sets the capability profile used to validate uploads, e.g. the
// result of an earlier identification. The session then does not classify the
// radio on its first download.
func WithProfile(p limits.Profile) Option {
	return func(o *options) {
		o.profile = &p
	}
}
