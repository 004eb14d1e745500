package dump

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/movegen/internal/testutil"
)

func TestWriteRead(t *testing.T) {
	want := testutil.AppPackage().Model()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, want))
	got, err := Read(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("package mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_RejectsOtherFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(document{Format: formatVersion + 1}))
	_, err := Read(&buf)
	require.ErrorContains(t, err, "is not supported")

	buf.Reset()
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(document{Format: formatVersion}))
	_, err = Read(&buf)
	require.ErrorContains(t, err, "holds no package")

	_, err = Read(bytes.NewReader([]byte{0xc1}))
	require.ErrorContains(t, err, "decode dump")
}

func TestSummary(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	Summary(&buf, testutil.AppPackage().Model())
	out := buf.String()

	assert.Contains(t, out, "package 0xa2 (version 2, 3 modules)\n")
	assert.Contains(t, out, "  math: 0 structs, 0 enums, 0 functions\n")
	assert.Contains(t, out, "    struct Pool has store, key [7 fields, defined at 0xa1]\n")
	assert.Contains(t, out, "    struct Swapped has copy, drop [3 fields, defined at 0xa2]\n")
	assert.Contains(t, out, "    enum Action has copy, drop, store [3 variants, defined at 0xa1]\n")
	assert.Contains(t, out, "    fun touch [private entry, 2 params, 0 returns]\n")
}
