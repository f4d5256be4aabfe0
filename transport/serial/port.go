// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package serial reaches radios attached to a serial line, usually a USB CDC
// programming cable.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/grid-x/serial"

	"github.com/dforsi/qdmr/internal/config"
	"github.com/dforsi/qdmr/transport/link"
)

var errPortClosed = errors.New("serial: port is closed")

var openPort = func(c *serial.Config) (io.ReadWriteCloser, error) {
	return serial.Open(c)
}

// port has configuration and I/O controller.
type port struct {
	// Serial port configuration.
	serial.Config

	IdleTimeout time.Duration

	mu sync.Mutex
	// rwc is platform-dependent data structure for serial port.
	rwc          io.ReadWriteCloser
	lastActivity time.Time
	closeTimer   *time.Timer
}

func newPort(cfg config.SerialConfig) *port {
	p := &port{IdleTimeout: cfg.IdleTimeout}
	p.Config.Address = cfg.Device
	p.Config.BaudRate = cfg.BaudRate
	p.Config.DataBits = cfg.DataBits
	p.Config.StopBits = cfg.StopBits
	p.Config.Parity = cfg.Parity
	p.Config.Timeout = cfg.Timeout
	return p
}

func (p *port) open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if p.rwc == nil {
		rwc, err := openPort(&p.Config)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", p.Config.Address, err)
		}
		p.rwc = rwc
	}
	p.touch()
	return nil
}

func (p *port) Read(b []byte) (int, error) {
	rwc, err := p.active()
	if err != nil {
		return 0, err
	}
	return rwc.Read(b)
}

func (p *port) Write(b []byte) (int, error) {
	rwc, err := p.active()
	if err != nil {
		return 0, err
	}
	return rwc.Write(b)
}

func (p *port) active() (io.ReadWriteCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rwc == nil {
		return nil, errPortClosed
	}
	p.touch()
	return p.rwc, nil
}

func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closeTimer != nil {
		p.closeTimer.Stop()
	}
	return p.close()
}

// close closes the serial port if it is connected. Caller must hold the mutex.
func (p *port) close() (err error) {
	if p.rwc != nil {
		err = p.rwc.Close()
		p.rwc = nil
	}
	return
}

// touch records activity and rearms the idle timer. Caller must hold the mutex.
func (p *port) touch() {
	p.lastActivity = time.Now()
	if p.IdleTimeout <= 0 {
		return
	}
	if p.closeTimer == nil {
		p.closeTimer = time.AfterFunc(p.IdleTimeout, p.closeIdle)
	} else {
		p.closeTimer.Reset(p.IdleTimeout)
	}
}

// closeIdle closes the connection if last activity is passed behind IdleTimeout.
func (p *port) closeIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.IdleTimeout <= 0 {
		return
	}

	if idle := time.Since(p.lastActivity); idle >= p.IdleTimeout {
		slog.Debug("serial: closing port due to idle timeout", "device", p.Config.Address, "idle", idle)
		p.close()
	}
}

// NewTransport returns a transport programming the radio on the serial line.
func NewTransport(cfg config.SerialConfig, blockSize int, timeout time.Duration) *link.Client {
	client := link.NewClient(func(ctx context.Context) (io.ReadWriteCloser, error) {
		p := newPort(cfg)
		if err := p.open(ctx); err != nil {
			return nil, err
		}
		return p, nil
	}, blockSize)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}
