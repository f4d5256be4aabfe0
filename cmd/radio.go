// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dforsi/qdmr/internal/config"
	"github.com/dforsi/qdmr/internal/emulator"
	"github.com/dforsi/qdmr/internal/store"
	"github.com/dforsi/qdmr/models"
	"github.com/dforsi/qdmr/radio"
	"github.com/dforsi/qdmr/transport"
	"github.com/dforsi/qdmr/transport/serial"
	"github.com/dforsi/qdmr/transport/tcp"
	"github.com/dforsi/qdmr/transport/virtual"
)

// connection is a session with the radio described by the configuration.
type connection struct {
	driver  radio.Driver
	session *radio.Session
	close   func() error
}

func (a *app) connect() (*connection, error) {
	rc := a.cfg.Radio
	if rc.Model == "" {
		return nil, errors.New("no radio model given, use --model")
	}
	driver, err := models.Lookup(rc.Model)
	if err != nil {
		return nil, err
	}
	t, closeFn, err := newTransport(rc, driver)
	if err != nil {
		return nil, err
	}
	return &connection{
		driver:  driver,
		session: radio.NewSession(driver, t),
		close:   closeFn,
	}, nil
}

func newTransport(rc config.RadioConfig, d radio.Driver) (transport.Transport, func() error, error) {
	nop := func() error { return nil }
	switch rc.Transport {
	case "serial":
		slog.Debug("Programming over serial line", "device", rc.Serial.Device, "baud", rc.Serial.BaudRate)
		return serial.NewTransport(rc.Serial, d.BlockSize(), rc.Timeout), nop, nil
	case "tcp":
		if rc.Tcp.Address == "" {
			return nil, nil, errors.New("tcp transport needs an address, use --address")
		}
		slog.Debug("Programming over tcp", "address", rc.Tcp.Address)
		return tcp.NewClient(rc.Tcp.Address, d.BlockSize(), rc.Timeout), nop, nil
	case "virtual":
		dev, err := newDevice(d, rc.Virtual)
		if err != nil {
			return nil, nil, err
		}
		return virtual.New(dev), dev.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", rc.Transport)
}

// newDevice creates an emulated radio of the driver's model whose memory is
// kept in the storage described by sc.
func newDevice(d radio.Driver, sc config.StorageConfig) (*emulator.Device, error) {
	if sc.Type != "" && sc.Type != "memory" && sc.Path == "" {
		return nil, fmt.Errorf("%s storage needs a path", sc.Type)
	}
	var storage store.Storage
	if sc.Type == "snapshot" {
		storage = store.NewSnapshotStorage(sc.Path, d.Info().Key)
	} else {
		var err error
		if storage, err = store.New(sc); err != nil {
			return nil, err
		}
	}
	return emulator.NewDevice(d.Info().String(), d.Codeplug().NewImage(), d.BlockSize(), storage)
}

// transferObserver logs the progress of a transfer in steps of ten percent
// and keeps the result.
type transferObserver struct {
	next   float64
	result *radio.Complete
}

func (o *transferObserver) Notify(e radio.Event) {
	switch e := e.(type) {
	case radio.Progress:
		if e.Fraction >= o.next {
			slog.Info("Progress", "percent", int(e.Fraction*100), "blocks", e.Done, "total", e.Total)
			o.next = e.Fraction + 0.1
		}
	case radio.Complete:
		o.result = &e
	case radio.Failed:
		slog.Debug("Transfer failed", "err", e.Err)
	}
}
