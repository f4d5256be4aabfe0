// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		key       string
		name      string
		blockSize int
	}{
		{"md380", "TyT MD-380", 1024},
		{"RT3", "Retevis RT3", 1024},
		{" opengd77 ", "Open GD-77", 32},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, err := Lookup(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Info().String())
			assert.Equal(t, tt.blockSize, d.BlockSize())
		})
	}

	_, err := Lookup("uv380")
	assert.ErrorContains(t, err, "known models: md380, opengd77, rt3")
}
