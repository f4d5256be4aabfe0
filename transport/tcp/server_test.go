// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.
package tcp

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/protocol"
)

func startServer(t *testing.T, handler func(ctx context.Context, req *protocol.Frame) *protocol.Frame) string {
	s := NewServer("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start(ctx, handler)
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errChan)
	})

	require.Eventually(t, func() bool { return s.Addr() != nil }, time.Second, 5*time.Millisecond)
	return s.Addr().String()
}

func TestServer_RoundTrip(t *testing.T) {
	var (
		mu      sync.Mutex
		written []byte
	)
	handler := func(ctx context.Context, req *protocol.Frame) *protocol.Frame {
		switch req.Command {
		case protocol.CmdIdentify:
			return req.Reply([]byte("MD-380"))
		case protocol.CmdRead:
			if req.Bank != byte(memory.BankFlash) {
				return req.Fail(errors.New("no such bank"))
			}
			return req.Reply(bytes.Repeat([]byte{0xa5}, int(req.Length)))
		case protocol.CmdWrite:
			mu.Lock()
			written = append(written, req.Payload...)
			mu.Unlock()
		}
		return req.Reply(nil)
	}
	addr := startServer(t, handler)

	client := NewClient(addr, 16, time.Second)
	ctx := context.Background()
	require.NoError(t, client.Open(ctx))
	defer client.Close()

	name, err := client.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MD-380", name)

	require.NoError(t, client.ReadStart(ctx, memory.BankFlash, 0))
	data, err := client.Read(ctx, memory.BankFlash, 0x7b000, 16)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xa5}, 16), data)

	_, err = client.Read(ctx, memory.BankEEPROM, 0, 16)
	var de *protocol.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "no such bank", de.Message)

	require.NoError(t, client.Write(ctx, memory.BankEEPROM, 0x20, []byte{1, 2, 3}))
	require.NoError(t, client.WriteFinish(ctx))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []byte{1, 2, 3}, written)
}

func TestClient_DialError(t *testing.T) {
	client := NewClient("127.0.0.1:1", 16, 0)
	err := client.Open(context.Background())
	assert.ErrorContains(t, err, "failed to connect to 127.0.0.1:1")
}

func TestClient_NotOpen(t *testing.T) {
	client := NewClient("127.0.0.1:1", 16, 0)
	_, err := client.Read(context.Background(), memory.BankMain, 0, 16)
	assert.ErrorContains(t, err, "connection is not open")
}
