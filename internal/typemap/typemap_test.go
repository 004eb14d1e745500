package typemap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/registry"
	"github.com/vk/movegen/internal/testutil"
)

const (
	suiRoot = "example.com/bindings/sui"
	appRoot = "example.com/bindings/app"
)

func appMapper(t *testing.T, deps ...string) *Mapper {
	t.Helper()
	reg := registry.New()
	reg.Register(ctxlog.Discard(context.Background()), "sui", suiRoot, []model.Address{testutil.FrameworkAddress})
	bc, err := reg.NewBuildContext("app", appRoot, []model.Address{testutil.AppOriginalAddress, testutil.AppAddress}, deps)
	require.NoError(t, err)
	return New(bc)
}

func TestMap(t *testing.T) {
	m := appMapper(t, "sui")
	t0 := model.TypeParam(0)

	cases := []struct {
		name string
		in   model.Type
		want string
	}{
		{"bool", model.Primitive(model.KindBool), "bool"},
		{"u16", model.Primitive(model.KindU16), "uint16"},
		{"u128", model.Primitive(model.KindU128), "movetypes.U128"},
		{"u256", model.Primitive(model.KindU256), "movetypes.U256"},
		{"signer", model.Primitive(model.KindSigner), "movetypes.Address"},
		{"bytes", model.Vector(model.Primitive(model.KindU8)), "[]uint8"},
		{"reference field", model.Reference(model.Primitive(model.KindU64)), "*uint64"},
		{"type parameter", model.TypeParam(3), "T3"},
		{"string", model.Datatype(testutil.StdAddress, "string", "String"), "string"},
		{"ascii", model.Datatype(testutil.StdAddress, "ascii", "String"), "movetypes.ASCIIString"},
		{"type name", model.Datatype(testutil.StdAddress, "type_name", "TypeName"), "movetypes.TypeName"},
		{"option", model.Datatype(testutil.StdAddress, "option", "Option", model.Vector(t0)), "movetypes.Option[[]T0]"},
		{"uid", testutil.FrameworkType("object", "UID"), "movetypes.ObjectID"},
		{"id", testutil.FrameworkType("object", "ID"), "movetypes.ObjectID"},
		{"dependency", testutil.FrameworkType("coin", "Coin", testutil.FrameworkType("sui", "SUI")), "coin.Coin[sui.SUI]"},
		{"own module", testutil.AppType("pool", "Pool", t0, t0), "pool.Pool[T0, T0]"},
		{"own new address", model.Datatype(testutil.AppAddress, "events", "Swapped"), "events.Swapped"},
		{"snake name", testutil.AppType("pool", "lp_token"), "pool.LpToken"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Map(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestMap_ImportPaths(t *testing.T) {
	m := appMapper(t, "sui")

	got, err := m.Map(testutil.FrameworkType("balance", "Balance", testutil.AppType("pool", "Receipt", model.TypeParam(0))))
	require.NoError(t, err)
	assert.Equal(t, []string{suiRoot + "/balance", appRoot + "/pool"}, got.Paths())
}

func TestMap_IsPure(t *testing.T) {
	m := appMapper(t, "sui")
	in := model.Vector(testutil.FrameworkType("coin", "Coin", testutil.AppType("pool", "Receipt", model.TypeParam(1))))

	first, err := m.Map(in)
	require.NoError(t, err)
	for range 5 {
		again, err := m.Map(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "vector<0x2::coin::Coin<0xa1::pool::Receipt<T1>>>", in.String(), "input is not modified")
}

func TestMap_UnknownPackage(t *testing.T) {
	m := appMapper(t)

	_, err := m.Map(model.Vector(testutil.FrameworkType("coin", "Coin", model.TypeParam(0))))
	var upe *registry.UnknownPackageError
	require.True(t, errors.As(err, &upe), "got %v", err)
	assert.Equal(t, testutil.FrameworkAddress, upe.Address)
	assert.Equal(t, "app", upe.Alias)

	got, err := m.Map(testutil.FrameworkType("object", "UID"))
	require.NoError(t, err, "well-known types need no registered package")
	assert.Equal(t, "movetypes.ObjectID", got.String())
}

func TestMapArg(t *testing.T) {
	m := appMapper(t, "sui")
	coin := testutil.FrameworkType("coin", "Coin", model.TypeParam(0))

	cases := []struct {
		in   model.Type
		want string
	}{
		{coin, "*ptb.Arg[coin.Coin[T0]]"},
		{model.Reference(coin), "ptb.Ref[coin.Coin[T0]]"},
		{model.MutableReference(coin), "ptb.MutRef[coin.Coin[T0]]"},
		{model.Primitive(model.KindU64), "*ptb.Arg[uint64]"},
	}
	for _, tc := range cases {
		got, err := m.MapArg(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.String())
	}
}
