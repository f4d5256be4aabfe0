// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package emulator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dforsi/qdmr/internal/config"
	"github.com/dforsi/qdmr/transport/link"
	"github.com/dforsi/qdmr/transport/serial"
	"github.com/dforsi/qdmr/transport/tcp"
)

// Listener serves requests to a handler until ctx is done.
type Listener interface {
	Start(ctx context.Context, handler link.Handler) error
}

// NewListener creates the listener described by cfg.
func NewListener(cfg config.ListenerConfig) (Listener, error) {
	switch cfg.Type {
	case "tcp":
		return tcp.NewServer(cfg.Tcp.Address), nil
	case "serial":
		return serial.NewServer(cfg.Serial), nil
	}
	return nil, fmt.Errorf("unknown listener type %q", cfg.Type)
}

// Emulator exposes a Device on a set of listeners.
type Emulator struct {
	Device    *Device
	Listeners []Listener
}

// New creates a new Emulator instance.
func New(device *Device, listeners ...Listener) *Emulator {
	return &Emulator{Device: device, Listeners: listeners}
}

// Start starts all listeners and blocks until ctx is done. The device is
// closed on return.
func (e *Emulator) Start(ctx context.Context) error {
	if len(e.Listeners) == 0 {
		return fmt.Errorf("emulator of %s has no listeners", e.Device.Name())
	}

	var wg sync.WaitGroup
	for i, l := range e.Listeners {
		wg.Add(1)
		go func(l Listener, idx int) {
			defer wg.Done()
			slog.Info("Starting listener", "device", e.Device.Name(), "index", idx)
			if err := l.Start(ctx, e.Device.Handle); err != nil {
				slog.Error("Listener stopped with error", "device", e.Device.Name(), "index", idx, "err", err)
			}
		}(l, i)
	}

	<-ctx.Done()
	wg.Wait()
	return e.Device.Close()
}
