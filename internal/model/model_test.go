package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/movegen/pkg/movetypes"
)

var (
	pkgV1 = movetypes.MustParseAddress("0xa1")
	pkgV2 = movetypes.MustParseAddress("0xa2")
)

func TestAbilitySet(t *testing.T) {
	s := NewAbilitySet(AbilityKey, AbilityStore)
	assert.True(t, s.Has(AbilityKey))
	assert.False(t, s.Has(AbilityCopy))
	assert.Equal(t, "store, key", s.String())
	assert.True(t, s.Valid())
	assert.False(t, AbilitySet(0x10).Valid())
}

func TestType_StringAndWalk(t *testing.T) {
	ty := Vector(Datatype(movetypes.FrameworkAddress, "coin", "Coin", TypeParam(0)))
	assert.Equal(t, "vector<0x2::coin::Coin<T0>>", ty.String())

	var kinds []TypeKind
	ty.Walk(func(n Type) { kinds = append(kinds, n.Kind) })
	assert.Equal(t, []TypeKind{KindVector, KindDatatype, KindTypeParameter}, kinds)

	assert.Equal(t, "&mut u64", MutableReference(Primitive(KindU64)).String())
}

func TestTypeParam(t *testing.T) {
	ty := TypeParam(2)
	assert.Equal(t, KindTypeParameter, ty.Kind)
	assert.Equal(t, uint16(2), ty.Param)
	assert.Equal(t, "T2", ty.String())

	decl := TypeParameter{Constraints: NewAbilitySet(AbilityStore)}
	assert.True(t, decl.Constraints.Has(AbilityStore))
}

func TestType_MapCopies(t *testing.T) {
	orig := Reference(Datatype(pkgV2, "pool", "Pool", Datatype(pkgV2, "pool", "Lp")))
	mapped := orig.Map(func(r DatatypeRef) DatatypeRef {
		r.Address = pkgV1
		return r
	})
	assert.Equal(t, "&0xa1::pool::Pool<0xa1::pool::Lp>", mapped.String())
	assert.Equal(t, "&0xa2::pool::Pool<0xa2::pool::Lp>", orig.String())
}

func TestTypeOriginTable(t *testing.T) {
	table, err := NewTypeOriginTable([]TypeOrigin{
		{Module: "pool", Datatype: "Pool", DefiningID: pkgV1},
		{Module: "pool", Datatype: "PoolV2", DefiningID: pkgV2},
	})
	require.NoError(t, err)

	a, ok := table.Lookup("pool", "Pool")
	require.True(t, ok)
	assert.Equal(t, pkgV1, a)
	_, ok = table.Lookup("pool", "Missing")
	assert.False(t, ok)
	assert.Equal(t, []Address{pkgV1, pkgV2}, table.Addresses())

	_, err = NewTypeOriginTable([]TypeOrigin{
		{Module: "m", Datatype: "S", DefiningID: pkgV1},
		{Module: "m", Datatype: "S", DefiningID: pkgV2},
	})
	assert.ErrorContains(t, err, "duplicate type origin")
}

func TestPackage_OwnAddressesAndModuleLookup(t *testing.T) {
	table, err := NewTypeOriginTable([]TypeOrigin{{Module: "m", Datatype: "S", DefiningID: pkgV1}})
	require.NoError(t, err)
	p := &Package{
		Address:     pkgV2,
		Modules:     []*Module{{Name: "a"}, {Name: "m"}},
		TypeOrigins: table,
	}
	assert.Equal(t, []Address{pkgV1, pkgV2}, p.OwnAddresses())

	m, ok := p.Module("m")
	require.True(t, ok)
	assert.Equal(t, "m", m.Name)
	_, ok = p.Module("b")
	assert.False(t, ok)
}

func TestFunction_Exposed(t *testing.T) {
	assert.True(t, (&Function{Visibility: VisibilityPublic}).Exposed())
	assert.True(t, (&Function{Visibility: VisibilityPrivate, IsEntry: true}).Exposed())
	assert.False(t, (&Function{Visibility: VisibilityFriend}).Exposed())
}
