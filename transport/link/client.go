// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package link speaks the block programming protocol over a byte stream.
package link

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/protocol"
)

const defaultTimeout = 2 * time.Second

// Dialer opens the byte stream to the device.
type Dialer func(ctx context.Context) (io.ReadWriteCloser, error)

// Client implements transport.Transport over a Dialer.
type Client struct {
	Timeout time.Duration

	dial      Dialer
	blockSize int

	mu   sync.Mutex
	conn io.ReadWriteCloser
}

// NewClient allocates a Client moving blocks of blockSize bytes.
func NewClient(dial Dialer, blockSize int) *Client {
	return &Client{
		Timeout:   defaultTimeout,
		dial:      dial,
		blockSize: blockSize,
	}
}

func (c *Client) BlockSize() int { return c.blockSize }

// Open dials the device. Opening an open client is a no-op.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) Close() (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return
}

func (c *Client) Identify(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, protocol.NewRequest(protocol.CmdIdentify, 0, 0, nil))
	if err != nil {
		return "", err
	}
	return string(resp.Payload), nil
}

func (c *Client) ReadStart(ctx context.Context, bank memory.Bank, addr uint32) error {
	_, err := c.send(ctx, protocol.NewRequest(protocol.CmdReadStart, byte(bank), addr, nil))
	return err
}

func (c *Client) Read(ctx context.Context, bank memory.Bank, addr uint32, n int) ([]byte, error) {
	resp, err := c.send(ctx, protocol.NewReadRequest(byte(bank), addr, n))
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(resp.Payload))
	copy(data, resp.Payload)
	return data, nil
}

func (c *Client) ReadFinish(ctx context.Context) error {
	_, err := c.send(ctx, protocol.NewRequest(protocol.CmdReadFinish, 0, 0, nil))
	return err
}

func (c *Client) WriteStart(ctx context.Context, bank memory.Bank, addr uint32) error {
	_, err := c.send(ctx, protocol.NewRequest(protocol.CmdWriteStart, byte(bank), addr, nil))
	return err
}

func (c *Client) Write(ctx context.Context, bank memory.Bank, addr uint32, data []byte) error {
	_, err := c.send(ctx, protocol.NewRequest(protocol.CmdWrite, byte(bank), addr, data))
	return err
}

func (c *Client) WriteFinish(ctx context.Context) error {
	_, err := c.send(ctx, protocol.NewRequest(protocol.CmdWriteFinish, 0, 0, nil))
	return err
}

func (c *Client) Reboot(ctx context.Context) error {
	_, err := c.send(ctx, protocol.NewRequest(protocol.CmdReboot, 0, 0, nil))
	return err
}

// send performs one request/response exchange.
func (c *Client) send(ctx context.Context, req *protocol.Frame) (*protocol.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.conn == nil {
		return nil, fmt.Errorf("%s: connection is not open", protocol.CommandName(req.Command))
	}

	raw, err := req.Encode()
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(c.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if dc, ok := c.conn.(interface{ SetDeadline(time.Time) error }); ok {
		if err := dc.SetDeadline(deadline); err != nil {
			return nil, err
		}
	}

	slog.Debug("send to radio", "request", hex.EncodeToString(raw[:protocol.HeaderSize]))
	if _, err := c.conn.Write(raw); err != nil {
		return nil, err
	}
	data, err := protocol.ReadResponse(req.Command, c.conn, deadline)
	if err != nil {
		return nil, err
	}
	slog.Debug("recv from radio", "response", hex.EncodeToString(data[:protocol.HeaderSize]))

	resp, err := protocol.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := req.Verify(resp); err != nil {
		return nil, err
	}
	return resp, nil
}
