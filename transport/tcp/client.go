// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package tcp reaches radios behind a network programming bridge.
package tcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/dforsi/qdmr/transport/link"
)

const (
	tcpTimeout = 10 * time.Second
)

// NewClient returns a transport dialing address on Open.
func NewClient(address string, blockSize int, timeout time.Duration) *link.Client {
	client := link.NewClient(func(ctx context.Context) (io.ReadWriteCloser, error) {
		d := net.Dialer{Timeout: tcpTimeout}
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
		}
		slog.Debug("Connected to programming bridge", "addr", conn.RemoteAddr())
		return conn, nil
	}, blockSize)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}
