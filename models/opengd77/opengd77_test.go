// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package opengd77

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *model.Config {
	cfg := model.NewConfig()
	cfg.Settings = model.Settings{Name: "DL1ABC", RadioID: 2621001, IntroLine1: "OpenGD77", MicLevel: 5, Squelch: 3}

	tg := model.NewContact("TG 9", 9, model.CallGroup)
	all := model.NewContact("All", 16777215, model.CallAll)
	gl := model.NewGroupList("Local")
	gl.Contacts = []*model.Contact{tg, all}

	dmr := model.NewChannel("DB0ABC TS2")
	dmr.RxFrequency, dmr.TxFrequency = 439_400_000, 431_800_000
	dmr.Mode = model.ModeDigital
	dmr.Power = model.PowerMid
	dmr.ColorCode = 7
	dmr.TimeSlot = 2
	dmr.Contact = tg
	dmr.GroupList = gl

	fm := model.NewChannel("Calling")
	fm.RxFrequency, fm.TxFrequency = 145_500_000, 145_500_000
	fm.Bandwidth = model.BandwidthWide
	fm.RxOnly = true

	sl := model.NewScanList("Scan")
	sl.Priority = dmr
	sl.Members = []*model.Channel{dmr, fm}
	dmr.ScanList = sl

	z := model.NewZone("Home")
	z.A = []*model.Channel{fm, dmr}

	cfg.Contacts = []*model.Contact{tg, all}
	cfg.GroupLists = []*model.GroupList{gl}
	cfg.Channels = []*model.Channel{dmr, fm}
	cfg.ScanLists = []*model.ScanList{sl}
	cfg.Zones = []*model.Zone{z}
	return cfg
}

func TestCodeplug_RoundTrip(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, New().DefaultProfile().Validate(cfg))

	cp := New().Codeplug()
	img := cp.NewImage()
	require.NoError(t, cp.Encode(cfg, codec.Flags{}, img))

	got, err := cp.Decode(img)
	require.NoError(t, err)
	opts := cmp.Options{
		cmpopts.IgnoreFields(model.Channel{}, "ID"),
		cmpopts.IgnoreFields(model.Contact{}, "ID"),
		cmpopts.IgnoreFields(model.Zone{}, "ID"),
		cmpopts.IgnoreFields(model.ScanList{}, "ID"),
		cmpopts.IgnoreFields(model.GroupList{}, "ID"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(cfg, got, opts); diff != "" {
		t.Errorf("decoded configuration differs (-want +got):\n%s", diff)
	}
}

func TestCodeplug_Banks(t *testing.T) {
	img := NewCodeplug().NewImage()
	assert.Equal(t, []memory.Bank{memory.BankEEPROM, memory.BankFlash}, img.Banks())
	for _, bank := range img.Banks() {
		for _, e := range img.Elements(bank) {
			assert.True(t, e.IsAligned(BlockSize), "%s element 0x%06x", bank, e.Address())
		}
	}

	// channels live in flash, zones in EEPROM
	cp := NewCodeplug()
	require.NoError(t, cp.Encode(testConfig(), codec.Flags{}, img))
	raw, err := img.Read(memory.BankFlash, addrChannels, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("DB0A"), raw)
	raw, err = img.Read(memory.BankEEPROM, addrZones, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("Home"), raw)
}

func TestProfile_RequiresPriority(t *testing.T) {
	cfg := testConfig()
	cfg.ScanLists[0].Priority = nil
	err := New().DefaultProfile().Validate(cfg)
	assert.ErrorContains(t, err, "priority channel is required")
}

func TestCodeplug_Capacity(t *testing.T) {
	cfg := testConfig()
	for i := 0; i < numZones; i++ {
		cfg.Zones = append(cfg.Zones, model.NewZone("extra"))
	}
	err := NewCodeplug().Validate(cfg, codec.Flags{})
	var encErr *codec.EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "zones", encErr.Category)
}

func TestIdentify(t *testing.T) {
	p, err := New().Identify(context.Background(), nil, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "Open GD-77", p.Name())
	assert.True(t, p.SupportsFrequency(145_500_000))
	assert.True(t, p.SupportsFrequency(439_000_000))
	assert.False(t, p.SupportsFrequency(520_000_000))
	assert.False(t, New().DefaultProfile().ChecksFrequencies())
}
