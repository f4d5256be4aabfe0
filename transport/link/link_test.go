// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/internal/emulator"
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
	"github.com/dforsi/qdmr/models/md380"
	"github.com/dforsi/qdmr/protocol"
	"github.com/dforsi/qdmr/radio"
	"github.com/dforsi/qdmr/transport/link"
)

// pipeDialer connects every Open to a fresh server goroutine running handler.
func pipeDialer(t *testing.T, handler link.Handler) link.Dialer {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		client, server := net.Pipe()
		go func() {
			defer server.Close()
			assert.NoError(t, link.Serve(context.Background(), server, handler))
		}()
		return client, nil
	}
}

func TestClient_Session(t *testing.T) {
	d := md380.New()
	dev, err := emulator.NewDevice(d.Info().String(), d.Codeplug().NewImage(), d.BlockSize(), nil)
	require.NoError(t, err)
	client := link.NewClient(pipeDialer(t, dev.Handle), d.BlockSize())
	ctx := context.Background()

	cfg := model.NewConfig()
	cfg.Settings.Name = "DL1ABC"
	s20 := model.NewChannel("S20")
	s20.RxFrequency, s20.TxFrequency = 145_500_000, 145_500_000
	s20.Bandwidth = model.BandwidthWide
	db0 := model.NewChannel("DB0ABC")
	db0.RxFrequency, db0.TxFrequency = 145_662_500, 145_062_500
	cfg.Channels = []*model.Channel{s20, db0}

	s := radio.NewSession(d, client)
	require.NoError(t, s.Upload(ctx, radio.Blocking, cfg, codec.Flags{}, nil))
	assert.Equal(t, 1, dev.Reboots())

	p, err := s.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TyT MD-380V", p.Name())

	var got *model.Config
	require.NoError(t, s.Download(ctx, radio.Blocking, radio.ObserverFunc(func(e radio.Event) {
		if c, ok := e.(radio.Complete); ok {
			got = c.Config
		}
	})))
	require.NotNil(t, got)
	opts := cmp.Options{
		cmpopts.IgnoreFields(model.Channel{}, "ID"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(cfg, got, opts); diff != "" {
		t.Errorf("downloaded configuration differs (-want +got):\n%s", diff)
	}
}

func TestClient_Identify(t *testing.T) {
	client := link.NewClient(pipeDialer(t, func(ctx context.Context, req *protocol.Frame) *protocol.Frame {
		return req.Reply([]byte("MD-380"))
	}), 1024)
	ctx := context.Background()
	require.NoError(t, client.Open(ctx))
	defer client.Close()

	name, err := client.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MD-380", name)
}

func TestClient_DeviceError(t *testing.T) {
	client := link.NewClient(pipeDialer(t, func(ctx context.Context, req *protocol.Frame) *protocol.Frame {
		return req.Fail(emulator.ErrNotReading)
	}), 32)
	ctx := context.Background()
	require.NoError(t, client.Open(ctx))
	defer client.Close()

	_, err := client.Read(ctx, memory.BankEEPROM, 0x20, 32)
	var de *protocol.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "not in read mode", de.Message)
}

func TestClient_Timeout(t *testing.T) {
	client := link.NewClient(func(ctx context.Context) (io.ReadWriteCloser, error) {
		c, server := net.Pipe()
		go io.Copy(io.Discard, server)
		return c, nil
	}, 32)
	client.Timeout = 20 * time.Millisecond
	ctx := context.Background()
	require.NoError(t, client.Open(ctx))
	defer client.Close()

	start := time.Now()
	assert.Error(t, client.ReadStart(ctx, memory.BankEEPROM, 0))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_Canceled(t *testing.T) {
	client := link.NewClient(pipeDialer(t, nil), 32)
	require.NoError(t, client.Open(context.Background()))
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, client.Reboot(ctx), context.Canceled)
}
