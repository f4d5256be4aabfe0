// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		name string
		hz   uint64
		want []byte
	}{
		{"2m", 145_500_000, []byte{0x00, 0x00, 0x55, 0x14}},
		{"70cm", 439_162_500, []byte{0x50, 0x62, 0x91, 0x43}},
		{"zero", 0, []byte{0x00, 0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := make([]byte, 4)
			require.NoError(t, PutFrequency(rec, 0, tt.hz))
			assert.Equal(t, tt.want, rec)
			hz, ok := GetFrequency(rec, 0)
			assert.True(t, ok)
			assert.Equal(t, tt.hz, hz)
		})
	}

	rec := make([]byte, 4)
	assert.Error(t, PutFrequency(rec, 0, 145_500_005), "not a multiple of 10 Hz")
	assert.Error(t, PutFrequency(rec, 0, 1_000_000_000), "more than 8 digits")

	_, ok := GetFrequency([]byte{0xff, 0xff, 0xff, 0xff}, 0)
	assert.False(t, ok)
}

func TestTone(t *testing.T) {
	rec := make([]byte, 2)
	require.NoError(t, PutTone(rec, 0, 885))
	assert.Equal(t, []byte{0x85, 0x08}, rec)
	assert.Equal(t, uint16(885), GetTone(rec, 0))

	require.NoError(t, PutTone(rec, 0, 0))
	assert.Equal(t, []byte{0xff, 0xff}, rec)
	assert.Equal(t, uint16(0), GetTone(rec, 0))
}

func TestBitField(t *testing.T) {
	f := BitField{Offset: 1, Shift: 4, Width: 2}
	rec := []byte{0xff, 0x00}
	require.NoError(t, f.Set(rec, 2))
	assert.Equal(t, []byte{0xff, 0x20}, rec)
	assert.Equal(t, uint8(2), f.Get(rec))
	assert.Error(t, f.Set(rec, 4))

	rec[1] = 0xff
	require.NoError(t, f.Set(rec, 1))
	assert.Equal(t, byte(0xdf), rec[1], "other bits must be preserved")

	var missing BitField
	assert.False(t, missing.Present())
	assert.Equal(t, uint8(0), missing.Get(rec))
	assert.NoError(t, missing.Set(rec, 3))
}

func TestIndexList(t *testing.T) {
	l := IndexList{Offset: 0, Count: 4, Size: 2}
	rec := make([]byte, 8)
	require.NoError(t, l.Set(rec, []int{3, 300}))
	assert.Equal(t, []byte{3, 0, 0x2c, 0x01, 0, 0, 0, 0}, rec)
	assert.Equal(t, []int{3, 300}, l.Get(rec))
	assert.Error(t, l.Set(rec, []int{1, 2, 3, 4, 5}))

	narrow := IndexList{Offset: 0, Count: 2, Size: 1}
	assert.Error(t, narrow.Set(rec, []int{256}))
}

func TestTextField(t *testing.T) {
	ascii := TextField{Offset: 1, Length: 4, Encoding: ASCII, Pad: 0xff}
	rec := make([]byte, 6)
	require.NoError(t, ascii.Set(rec, "ab"))
	assert.Equal(t, []byte{0, 'a', 'b', 0xff, 0xff, 0}, rec)
	assert.Equal(t, "ab", ascii.Get(rec))
	assert.Error(t, ascii.Set(rec, "abcde"))
	assert.Error(t, ascii.Set(rec, "äb"))

	wide := TextField{Offset: 0, Length: 3, Encoding: UTF16, Pad: 0x00}
	rec = make([]byte, 6)
	require.NoError(t, wide.Set(rec, "Aé"))
	assert.Equal(t, []byte{'A', 0, 0xe9, 0, 0, 0}, rec)
	assert.Equal(t, "Aé", wide.Get(rec))
	assert.Equal(t, 6, wide.Size())
}

func TestNumberField(t *testing.T) {
	rec := make([]byte, 4)
	le := NumberField{Offset: 0, Encoding: Uint24LE}
	require.NoError(t, le.Set(rec, 2621001))
	assert.Equal(t, []byte{0x49, 0xfe, 0x27, 0}, rec)

	bcd := NumberField{Offset: 0, Encoding: BCD32BE}
	require.NoError(t, bcd.Set(rec, 2621001))
	assert.Equal(t, []byte{0x02, 0x62, 0x10, 0x01}, rec)
	n, ok := bcd.Get(rec)
	assert.True(t, ok)
	assert.Equal(t, uint32(2621001), n)

	assert.Error(t, le.Set(rec, 1<<24))
}

func TestScaledField(t *testing.T) {
	f := ScaledField{Offset: 0, Unit: 15}
	rec := make([]byte, 1)
	require.NoError(t, f.Set(rec, 60))
	assert.Equal(t, byte(4), rec[0])
	assert.Equal(t, uint(60), f.Get(rec))
	assert.Error(t, f.Set(rec, 20))
	assert.Error(t, f.Set(rec, 15*256))

	absent := ScaledField{Offset: Absent}
	assert.NoError(t, absent.Set(rec, 0))
	assert.Error(t, absent.Set(rec, 15))
}

func TestParseRegionMask(t *testing.T) {
	m, err := ParseRegionMask("channels, zones")
	require.NoError(t, err)
	assert.Equal(t, RegionChannels|RegionZones, m)
	assert.True(t, m.Partial())
	assert.True(t, m.Includes(RegionZones))
	assert.False(t, m.Includes(RegionContacts))
	assert.Equal(t, "channels,zones", m.String())

	m, err = ParseRegionMask("")
	require.NoError(t, err)
	assert.False(t, m.Partial())
	assert.True(t, m.Includes(RegionContacts))

	m, err = ParseRegionMask("all")
	require.NoError(t, err)
	assert.Equal(t, "all", m.String())

	_, err = ParseRegionMask("channels,bogus")
	assert.EqualError(t, err, "unknown codeplug region: bogus")
}
