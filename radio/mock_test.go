// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package radio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/limits"
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/transport"
)

const testBlockSize = 32

var (
	testChannels = codec.ChannelLayout{
		Table:        codec.Table{Bank: memory.BankEEPROM, Address: 0x000, RecordSize: 32, Count: 8, Erased: 0xff},
		Name:         codec.TextField{Offset: 0, Length: 8, Encoding: codec.ASCII, Pad: 0xff},
		RxFrequency:  8,
		TxFrequency:  12,
		Mode:         codec.BitField{Offset: 16, Shift: 0, Width: 1},
		ModeAnalog:   0,
		ModeDigital:  1,
		Power:        codec.BitField{Offset: 16, Shift: 1, Width: 2},
		PowerLevels:  [3]uint8{0, 1, 2},
		ColorCode:    codec.BitField{Offset: 17, Shift: 0, Width: 4},
		TimeSlot:     codec.BitField{Offset: 17, Shift: 4, Width: 1},
		Timeout:      codec.ScaledField{Offset: codec.Absent},
		RxTone:       codec.Absent,
		TxTone:       codec.Absent,
		Contact:      codec.IndexField{Offset: 18, Size: 2},
	}
	testContacts = codec.ContactLayout{
		Table:     codec.Table{Bank: memory.BankFlash, Address: 0x000, RecordSize: 16, Count: 16, Erased: 0xff},
		Name:      codec.TextField{Offset: 0, Length: 8, Encoding: codec.ASCII, Pad: 0xff},
		Number:    codec.NumberField{Offset: 8, Encoding: codec.BCD32BE},
		CallType:  codec.BitField{Offset: 12, Shift: 0, Width: 2},
		CallTypes: [3]uint8{0, 1, 2},
	}
)

// testDriver is a two bank radio with 256 bytes of EEPROM and flash.
type testDriver struct {
	eepromSize int
}

func (d *testDriver) Info() Info { return Info{Key: "test", Name: "Test", Manufacturer: "ACME"} }

func (d *testDriver) BlockSize() int { return testBlockSize }

func (d *testDriver) newImage() *memory.Image {
	img := memory.New()
	img.MustAddElement(memory.BankEEPROM, 0, d.eepromSize, 0xff)
	img.MustAddElement(memory.BankFlash, 0, 0x100, 0xff)
	return img
}

func (d *testDriver) Codeplug() *codec.Codeplug {
	return codec.NewCodeplug(d.newImage,
		codec.Contacts(testContacts, 0),
		codec.Channels(testChannels, 0),
	)
}

func (d *testDriver) DefaultProfile() limits.Profile {
	return limits.New("ACME Test", limits.Features{
		HasDigital: true, HasAnalog: true,
		MaxChannels: 8, MaxChannelNameLength: 8,
		MaxContacts: 16, MaxContactNameLength: 8,
	})
}

// Identify classifies every unit as dual band and logs a diagnostic.
func (d *testDriver) Identify(_ context.Context, _ transport.Transport, logger *slog.Logger) (limits.Profile, error) {
	logger.Warn("assuming dual band")
	return limits.New("ACME Test D", d.DefaultProfile().Features(),
		limits.FrequencyRange{Min: 136, Max: 174}, limits.FrequencyRange{Min: 400, Max: 480}), nil
}

var errInjected = errors.New("injected failure")

// mockTransport keeps the device memory in byte slices and records every call.
type mockTransport struct {
	mu     sync.Mutex
	memory map[memory.Bank][]byte
	calls  []string
	closed int

	failOp   string
	failAddr uint32
	// gate blocks Read until closed, if set
	gate chan struct{}
}

func newMockTransport() *mockTransport {
	mem := map[memory.Bank][]byte{
		memory.BankEEPROM: make([]byte, 0x100),
		memory.BankFlash:  make([]byte, 0x100),
	}
	for _, b := range mem {
		for i := range b {
			b[i] = 0xff
		}
	}
	return &mockTransport{memory: mem}
}

func (m *mockTransport) record(op string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := op
	if len(args) > 0 {
		call = fmt.Sprintf("%s %v 0x%03x", op, args[0], args[1])
	}
	m.calls = append(m.calls, call)
	if m.failOp == op && (len(args) == 0 || args[1] == m.failAddr) {
		return errInjected
	}
	return nil
}

func (m *mockTransport) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockTransport) Open(context.Context) error { return m.record("open") }

func (m *mockTransport) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
	return m.record("close")
}

func (m *mockTransport) BlockSize() int { return testBlockSize }

func (m *mockTransport) ReadStart(_ context.Context, bank memory.Bank, addr uint32) error {
	return m.record("read start", bank, addr)
}

func (m *mockTransport) Read(_ context.Context, bank memory.Bank, addr uint32, n int) ([]byte, error) {
	if m.gate != nil {
		<-m.gate
	}
	if err := m.record("read", bank, addr); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, n)
	copy(out, m.memory[bank][addr:])
	return out, nil
}

func (m *mockTransport) ReadFinish(context.Context) error { return m.record("read finish") }

func (m *mockTransport) WriteStart(_ context.Context, bank memory.Bank, addr uint32) error {
	return m.record("write start", bank, addr)
}

func (m *mockTransport) Write(_ context.Context, bank memory.Bank, addr uint32, data []byte) error {
	if err := m.record("write", bank, addr); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.memory[bank][addr:], data)
	return nil
}

func (m *mockTransport) WriteFinish(context.Context) error { return m.record("write finish") }

func (m *mockTransport) Reboot(context.Context) error { return m.record("reboot") }

// recorder collects the events of a transfer.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
