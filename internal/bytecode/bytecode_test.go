package bytecode_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/movegen/internal/bytecode"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/testutil"
	"github.com/vk/movegen/pkg/movetypes"
)

var (
	pkgAddr = movetypes.MustParseAddress("0xc0ffee")
	fw      = movetypes.FrameworkAddress
)

func poolModule() *model.Module {
	txCtx := model.Datatype(fw, "tx_context", "TxContext")
	pool := model.Datatype(pkgAddr, "pool", "Pool", model.TypeParam(0))
	return &model.Module{
		Address: pkgAddr,
		Name:    "pool",
		Structs: []*model.Struct{
			{
				Name:      "Pool",
				Abilities: model.NewAbilitySet(model.AbilityKey),
				TypeParameters: []model.TypeParameter{
					{Constraints: model.NewAbilitySet(model.AbilityStore), IsPhantom: true},
				},
				Fields: []model.Field{
					{Name: "id", Type: model.Datatype(fw, "object", "UID")},
					{Name: "reserves", Type: model.Vector(model.Primitive(model.KindU64))},
					{Name: "fee", Type: model.Primitive(model.KindU256)},
				},
			},
		},
		Enums: []*model.Enum{
			{
				Name:      "Side",
				Abilities: model.NewAbilitySet(model.AbilityCopy, model.AbilityDrop),
				Variants: []model.Variant{
					{Name: "Bid"},
					{Name: "Ask", Fields: []model.Field{{Name: "pos0", Type: model.Primitive(model.KindU8)}}},
				},
			},
		},
		Functions: []*model.Function{
			{
				Name:           "deposit",
				Visibility:     model.VisibilityPublic,
				TypeParameters: []model.AbilitySet{model.NewAbilitySet(model.AbilityKey, model.AbilityStore)},
				Parameters: []model.Type{
					model.MutableReference(pool),
					model.Datatype(fw, "coin", "Coin", model.TypeParam(0)),
					model.MutableReference(txCtx),
				},
				Return: []model.Type{model.Primitive(model.KindU64), model.Primitive(model.KindBool)},
			},
			{
				Name:       "sweep",
				Visibility: model.VisibilityFriend,
				IsEntry:    true,
				Parameters: []model.Type{model.Reference(txCtx)},
			},
		},
	}
}

func TestDecode_RoundTripsFixture(t *testing.T) {
	want := poolModule()
	hidden := []*model.Function{
		{Name: "internal_helper", Visibility: model.VisibilityPrivate},
		{Name: "friend_only", Visibility: model.VisibilityFriend},
	}
	data := testutil.EncodeModule(want, hidden...)

	got, err := bytecode.Decode(data)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decoded module mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_SortsDeclarations(t *testing.T) {
	m := &model.Module{
		Address: pkgAddr,
		Name:    "m",
		Functions: []*model.Function{
			{Name: "zeta", Visibility: model.VisibilityPublic},
			{Name: "alpha", Visibility: model.VisibilityPublic},
		},
	}
	got, err := bytecode.Decode(testutil.EncodeModule(m))
	require.NoError(t, err)
	require.Len(t, got.Functions, 2)
	assert.Equal(t, "alpha", got.Functions[0].Name)
	assert.Equal(t, "zeta", got.Functions[1].Name)
}

func TestDecode_OlderVersionsWithoutJumpTables(t *testing.T) {
	m := poolModule()
	m.Enums = nil
	for _, v := range []uint32{5, 6} {
		data, err := testutil.ModuleFixture{Module: m, Version: v}.Encode()
		require.NoError(t, err)
		got, err := bytecode.Decode(data)
		require.NoError(t, err, "version %d", v)
		assert.Len(t, got.Functions, 2)
	}
}

func TestParse_Errors(t *testing.T) {
	valid := testutil.EncodeModule(poolModule())

	mutate := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), valid...))
	}

	cases := []struct {
		name   string
		data   []byte
		reason string
	}{
		{"empty", nil, "shorter than its magic"},
		{"bad magic", mutate(func(b []byte) []byte { b[0] = 0; return b }), "bad magic"},
		{"unsupported version", mutate(func(b []byte) []byte { b[4] = 9; return b }), "unsupported binary version 9"},
		{"unknown flavor", mutate(func(b []byte) []byte { b[7] = 0x7f; return b }), "unsupported binary flavor"},
		{"truncated", valid[:len(valid)-10], ""},
		{"trailing bytes", append(append([]byte(nil), valid...), 0), "trailing"},
		{"unknown table kind", mutate(func(b []byte) []byte { b[9] = 0x09; return b }), "unknown table kind 0x09"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bytecode.Parse(tc.data)
			require.Error(t, err)
			var de *bytecode.DecodeError
			require.True(t, errors.As(err, &de), "want *DecodeError, got %T", err)
			assert.GreaterOrEqual(t, de.Offset, 0)
			if tc.reason != "" {
				assert.Contains(t, de.Reason, tc.reason)
			}
		})
	}
}

func TestParse_DuplicateTable(t *testing.T) {
	// Header with two identifier tables of length zero, no content.
	data := append(bytecode.Magic[:], 7, 0, 0, 5)
	data = append(data, 2, byte(bytecode.TableIdentifiers), 0, 0, byte(bytecode.TableIdentifiers), 0, 0, 0)
	_, err := bytecode.Parse(data)
	assert.ErrorContains(t, err, "duplicate table kind")
}

func TestParse_TableGap(t *testing.T) {
	data := append(bytecode.Magic[:], 7, 0, 0, 5)
	data = append(data, 1, byte(bytecode.TableIdentifiers), 2, 1, 0)
	_, err := bytecode.Parse(data)
	assert.ErrorContains(t, err, "expected 0")
}

func TestParse_UnknownOpcode(t *testing.T) {
	m := &model.Module{
		Address:   pkgAddr,
		Name:      "m",
		Functions: []*model.Function{{Name: "f", Visibility: model.VisibilityPublic}},
	}
	data := testutil.EncodeModule(m)
	// The body starts with ld_u64 (0x06) followed by bytes 1..8.
	idx := -1
	for i := 0; i+2 < len(data); i++ {
		if data[i] == 0x06 && data[i+1] == 1 && data[i+2] == 2 {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	data[idx] = 0xEE

	_, err := bytecode.Parse(data)
	var de *bytecode.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, idx, de.Offset)
	assert.Contains(t, de.Reason, "unknown opcode 0xee")
}

func TestNormalize_IndexOutOfRange(t *testing.T) {
	cm, err := bytecode.Parse(testutil.EncodeModule(poolModule()))
	require.NoError(t, err)
	cm.SelfHandle = 42

	_, err = cm.Normalize()
	var de *bytecode.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, -1, de.Offset)
	assert.Contains(t, de.Reason, "module handle index 42 out of range")
}
