// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package md380

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/limits"
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// imageTransport serves reads from a memory image.
type imageTransport struct {
	img   *memory.Image
	reads []uint32
}

func (t *imageTransport) Open(context.Context) error { return nil }
func (t *imageTransport) Close() error               { return nil }
func (t *imageTransport) BlockSize() int             { return BlockSize }
func (t *imageTransport) ReadStart(context.Context, memory.Bank, uint32) error {
	return nil
}
func (t *imageTransport) Read(_ context.Context, bank memory.Bank, addr uint32, n int) ([]byte, error) {
	t.reads = append(t.reads, addr)
	return t.img.Read(bank, addr, n)
}
func (t *imageTransport) ReadFinish(context.Context) error { return nil }
func (t *imageTransport) WriteStart(context.Context, memory.Bank, uint32) error {
	return nil
}
func (t *imageTransport) Write(context.Context, memory.Bank, uint32, []byte) error { return nil }
func (t *imageTransport) WriteFinish(context.Context) error                         { return nil }
func (t *imageTransport) Reboot(context.Context) error                              { return nil }

func channels(freqs ...uint64) *model.Config {
	cfg := model.NewConfig()
	for _, f := range freqs {
		ch := model.NewChannel("ch")
		ch.RxFrequency, ch.TxFrequency = f, f
		cfg.Channels = append(cfg.Channels, ch)
	}
	return cfg
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *model.Config
		want   string
		ranges []limits.FrequencyRange
	}{
		{"VHF", channels(145_500_000, 144_800_000), "TyT MD-380V", []limits.FrequencyRange{{Min: 136, Max: 174}}},
		{"UHF 400", channels(439_100_000, 431_500_000), "TyT MD-380U", []limits.FrequencyRange{{Min: 400, Max: 480}}},
		{"UHF 450", channels(460_000_000), "TyT MD-380U", []limits.FrequencyRange{{Min: 450, Max: 520}}},
		{"mixed", channels(145_500_000, 439_100_000), "TyT MD-380", nil},
		{"empty", channels(), "TyT MD-380", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := NewCodeplug()
			img := cp.NewImage()
			require.NoError(t, cp.Encode(tt.cfg, codec.Flags{}, img))
			tr := &imageTransport{img: img}

			var log bytes.Buffer
			p, err := New().Identify(context.Background(), tr, slog.New(slog.NewTextHandler(&log, nil)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
			if tt.ranges == nil {
				assert.Contains(t, log.String(), "will not check frequency ranges")
			} else {
				assert.Empty(t, log.String())
			}
			assert.Equal(t, tt.ranges, p.FrequencyRanges())
			assert.Equal(t, tt.ranges != nil, p.ChecksFrequencies())

			require.Len(t, tr.reads, 63)
			assert.Equal(t, uint32(0x01ec00), tr.reads[0])
			for _, addr := range tr.reads {
				assert.Zero(t, addr%BlockSize)
			}
		})
	}
}

func TestIdentify_RT3(t *testing.T) {
	cp := NewCodeplug()
	img := cp.NewImage()
	require.NoError(t, cp.Encode(channels(145_500_000), codec.Flags{}, img))
	p, err := NewRT3().Identify(context.Background(), &imageTransport{img: img}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "Retevis RT3V", p.Name())
}

func TestCodeplug_RoundTrip(t *testing.T) {
	cfg := model.NewConfig()
	cfg.Settings = model.Settings{
		Name: "DL1ABC Ä", RadioID: 2621001, IntroLine1: "Hallo", IntroLine2: "Welt",
		MicLevel: 3, Squelch: 1, VOXLevel: 2,
	}
	cfg.Boot = model.BootSettings{ShowText: true, Password: "000042"}

	tg := model.NewContact("Bayern", 2621, model.CallGroup)
	gl := model.NewGroupList("Regional")
	gl.Contacts = []*model.Contact{tg}

	rep := model.NewChannel("DB0MUC Slot 1")
	rep.RxFrequency, rep.TxFrequency = 439_087_500, 431_487_500
	rep.Mode = model.ModeDigital
	rep.Power = model.PowerHigh
	rep.ColorCode = 1
	rep.Contact = tg
	rep.GroupList = gl
	rep.Timeout = 180

	fm := model.NewChannel("S20")
	fm.RxFrequency, fm.TxFrequency = 145_500_000, 145_500_000
	fm.Bandwidth = model.BandwidthWide
	fm.RxTone, fm.TxTone = 1230, 1230

	sl := model.NewScanList("All")
	sl.Members = []*model.Channel{rep, fm}
	fm.ScanList = sl

	z := model.NewZone("Home")
	z.A = []*model.Channel{rep, fm}

	cfg.Contacts = []*model.Contact{tg}
	cfg.GroupLists = []*model.GroupList{gl}
	cfg.Channels = []*model.Channel{rep, fm}
	cfg.ScanLists = []*model.ScanList{sl}
	cfg.Zones = []*model.Zone{z}

	require.NoError(t, New().DefaultProfile().Validate(cfg))
	cp := New().Codeplug()
	img := cp.NewImage()
	require.NoError(t, cp.Encode(cfg, codec.Flags{}, img))

	raw, err := img.Read(memory.BankMain, addrChannels+0x10, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x50, 0x87, 0x90, 0x43}, raw, "rx frequency of the first channel")

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

func TestCodeplug_ListsLookingErased(t *testing.T) {
	base := func() (*model.Config, *model.Channel) {
		cfg := model.NewConfig()
		tg := model.NewContact("TG", 9, model.CallGroup)
		ch := model.NewChannel("DB0MUC")
		ch.RxFrequency, ch.TxFrequency = 439_087_500, 431_487_500
		ch.Mode = model.ModeDigital
		ch.Contact = tg
		cfg.Contacts = []*model.Contact{tg}
		cfg.Channels = []*model.Channel{ch}
		return cfg, ch
	}

	t.Run("rejected", func(t *testing.T) {
		for name, add := range map[string]func(*model.Config, *model.Channel){
			"group list": func(cfg *model.Config, ch *model.Channel) {
				ch.GroupList = model.NewGroupList("")
				cfg.GroupLists = []*model.GroupList{ch.GroupList}
			},
			"scan list": func(cfg *model.Config, ch *model.Channel) {
				ch.ScanList = model.NewScanList("")
				cfg.ScanLists = []*model.ScanList{ch.ScanList}
			},
			"zone": func(cfg *model.Config, ch *model.Channel) {
				cfg.Zones = []*model.Zone{model.NewZone("")}
			},
		} {
			t.Run(name, func(t *testing.T) {
				cfg, ch := base()
				add(cfg, ch)
				require.NoError(t, New().DefaultProfile().Validate(cfg))

				cp := New().Codeplug()
				img := cp.NewImage()
				want := img.Clone()
				err := cp.Encode(cfg, codec.Flags{}, img)
				var encErr *codec.EncodeError
				require.ErrorAs(t, err, &encErr)
				assert.Contains(t, encErr.Reason, "indistinguishable from an erased record")
				assert.Equal(t, dumpImage(t, want), dumpImage(t, img), "failed encode must not touch the image")
			})
		}
	})

	t.Run("unnamed with members", func(t *testing.T) {
		cfg, ch := base()
		gl := model.NewGroupList("")
		gl.Contacts = []*model.Contact{ch.Contact}
		ch.GroupList = gl
		z := model.NewZone("")
		z.A = []*model.Channel{ch}
		cfg.GroupLists = []*model.GroupList{gl}
		cfg.Zones = []*model.Zone{z}

		cp := New().Codeplug()
		img := cp.NewImage()
		require.NoError(t, cp.Encode(cfg, codec.Flags{}, img))
		got, err := cp.Decode(img)
		require.NoError(t, err)
		require.Len(t, got.Zones, 1)
		require.Len(t, got.GroupLists, 1)
		assert.Same(t, got.GroupLists[0], got.Channels[0].GroupList)
		assert.Same(t, got.Channels[0], got.Zones[0].A[0])
	})
}

func dumpImage(t *testing.T, img *memory.Image) []byte {
	t.Helper()
	var out []byte
	for _, bank := range img.Banks() {
		for _, e := range img.Elements(bank) {
			b, err := img.Read(bank, e.Address(), e.Size())
			require.NoError(t, err)
			out = append(out, b...)
		}
	}
	return out
}

func TestCodeplug_Aligned(t *testing.T) {
	img := NewCodeplug().NewImage()
	for _, bank := range img.Banks() {
		for _, e := range img.Elements(bank) {
			assert.True(t, e.IsAligned(BlockSize), "element 0x%06x", e.Address())
		}
	}
}

func TestInfo(t *testing.T) {
	info := New().Info()
	assert.Equal(t, "md380", info.Key)
	assert.Equal(t, "TyT MD-380", info.String())
	require.Len(t, info.Aliases, 1)
	assert.Equal(t, "rt3", info.Aliases[0].Key)
}
