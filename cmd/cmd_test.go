// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dforsi/qdmr/internal/document"
	"github.com/dforsi/qdmr/internal/store"
	"github.com/dforsi/qdmr/model"
)

const sampleDocument = `
settings:
  name: DL1ABC
  radio_id: 0
  mic_level: 5
  squelch: 3
channels:
  - name: S20
    rx: 145.5
    tx: 145.5
    mode: analog
    bandwidth: wide
  - name: DB0ABC
    rx: 145.6625
    tx: 145.0625
    mode: analog
`

func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "qdmr.yaml")
	content := fmt.Sprintf(`
log:
  level: error
radio:
  model: md380
  transport: virtual
  virtual:
    type: snapshot
    path: %s
`, filepath.Join(dir, "radio.cbor"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUploadDownload(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir)

	_, err := run(t, strings.NewReader(sampleDocument), "upload", "--config", config)
	require.NoError(t, err)

	out, err := run(t, nil, "identify", "--config", config)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "TyT MD-380V\n"), out)

	output := filepath.Join(dir, "out.yaml")
	image := filepath.Join(dir, "image.cbor")
	_, err = run(t, nil, "download", "--config", config, "-o", output, "--save-image", image)
	require.NoError(t, err)

	want, err := document.Parse([]byte(sampleDocument))
	require.NoError(t, err)
	got, err := document.Load(output)
	require.NoError(t, err)
	opts := cmp.Options{
		cmpopts.IgnoreFields(model.Channel{}, "ID"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("downloaded configuration differs (-want +got):\n%s", diff)
	}

	snap, err := store.ReadSnapshot(image)
	require.NoError(t, err)
	assert.Equal(t, "md380", snap.Model)
}

func TestUpload_Errors(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir)

	_, err := run(t, strings.NewReader(sampleDocument), "upload", "--config", config, "--regions", "bogus")
	assert.Error(t, err)

	_, err = run(t, strings.NewReader("channels: [{name: A, contact: nobody}]"), "upload", "--config", config)
	assert.ErrorContains(t, err, `unknown contact "nobody"`)

	_, err = run(t, strings.NewReader(sampleDocument), "upload", "--config", config, "--model", "uv380")
	assert.ErrorContains(t, err, "unknown radio model")

	_, err = run(t, strings.NewReader(sampleDocument), "upload", "--config", config, "--transport", "carrier-pigeon")
	assert.ErrorContains(t, err, `unknown transport "carrier-pigeon"`)
}

func TestInfo(t *testing.T) {
	out, err := run(t, nil, "info")
	require.NoError(t, err)
	for _, name := range []string{"md380", "rt3", "opengd77", "TyT MD-380", "Open GD-77"} {
		assert.Contains(t, out, name)
	}

	out, err = run(t, nil, "info", "rt3")
	require.NoError(t, err)
	assert.NotContains(t, out, "opengd77")
	assert.Contains(t, out, "Retevis RT3")
}

func TestEmulate_NoListeners(t *testing.T) {
	config := writeConfig(t, t.TempDir())
	_, err := run(t, nil, "emulate", "--config", config)
	assert.ErrorContains(t, err, "no listeners configured")
}
