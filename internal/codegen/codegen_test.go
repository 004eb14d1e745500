package codegen

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/movegen/internal/ctxlog"
	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/registry"
	"github.com/vk/movegen/internal/testutil"
)

const (
	suiRoot = "example.com/bindings/sui"
	appRoot = "example.com/bindings/app"
)

var quiet = ctxlog.Discard(context.Background())

func appTarget(t *testing.T, pkg *model.Package, deps ...string) *registry.BuildContext {
	t.Helper()
	reg := registry.New()
	reg.Register(quiet, "sui", suiRoot, []model.Address{testutil.FrameworkAddress})
	bc, err := reg.NewBuildContext("app", appRoot, pkg.OwnAddresses(), deps)
	require.NoError(t, err)
	return bc
}

func generateApp(t *testing.T) []*File {
	t.Helper()
	pkg := testutil.AppPackage().Model()
	files, err := Generate(quiet, pkg, appTarget(t, pkg, "sui"))
	require.NoError(t, err)
	return files
}

func typeDecl(t *testing.T, f *File, name string) *TypeDecl {
	t.Helper()
	for _, td := range f.Types {
		if td.Name == name {
			return td
		}
	}
	t.Fatalf("type %s not generated", name)
	return nil
}

func funcDecl(t *testing.T, f *File, name string) *Func {
	t.Helper()
	for _, fn := range f.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("func %s not generated", name)
	return nil
}

func fieldTypes(td *TypeDecl) map[string]string {
	out := map[string]string{}
	for _, f := range td.Fields {
		out[f.Name] = f.Type.String()
	}
	return out
}

func paramTypes(fn *Func) []string {
	out := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		out[i] = p.Name + " " + p.Type.String()
	}
	return out
}

func TestGenerate_Layout(t *testing.T) {
	files := generateApp(t)
	require.Len(t, files, 3, "the empty math module emits nothing")

	root := files[0]
	assert.Equal(t, "app", root.Dir)
	assert.Equal(t, "app.go", root.Name)
	assert.Equal(t, appRoot, root.ImportPath)
	require.NotNil(t, root.PackageHeader)
	assert.Equal(t, uint64(2), root.PackageHeader.Version)
	assert.Equal(t, testutil.AppAddress, root.PackageHeader.Address)

	assert.Equal(t, "app/events", files[1].Dir)
	assert.Equal(t, "app/pool", files[2].Dir)
	assert.Equal(t, appRoot+"/pool", files[2].ImportPath)
	require.NotNil(t, files[2].ModuleHeader)
	assert.Equal(t, testutil.AppAddress, files[2].ModuleHeader.Address, "calls target the latest package address")
}

func TestGenerate_Structs(t *testing.T) {
	files := generateApp(t)
	pool := files[2]

	p := typeDecl(t, pool, "Pool")
	assert.Equal(t, map[string]string{
		"Id":       "movetypes.ObjectID",
		"ReserveX": "balance.Balance[T0]",
		"ReserveY": "balance.Balance[T1]",
		"FeeBps":   "uint64",
		"Name":     "string",
		"Admin":    "movetypes.Option[movetypes.Address]",
		"Config":   "pool.Config",
	}, fieldTypes(p), "phantom parameters used by fields get no marker")
	assert.Equal(t, "Id", p.IDField)
	assert.Equal(t, &Identity{Origin: testutil.AppOriginalAddress, Module: "pool", Name: "Pool"}, p.Identity)
	assert.Equal(t, []string{"T0", "T1"}, []string{p.TypeParams[0].Name, p.TypeParams[1].Name})
	assert.Equal(t, "any", p.TypeParams[0].Constraint.String())
	assert.Equal(t, "reserve_x", p.Fields[1].JSON)

	cfg := typeDecl(t, pool, "Config")
	assert.Equal(t, "Type", cfg.Fields[0].Name)
	assert.Empty(t, cfg.IDField)

	swapped := typeDecl(t, files[1], "Swapped")
	assert.Equal(t, testutil.AppAddress, swapped.Identity.Origin, "datatypes added by an upgrade keep the new address")
}

func TestGenerate_PhantomMarker(t *testing.T) {
	files := generateApp(t)
	receipt := typeDecl(t, files[2], "Receipt")

	require.Len(t, receipt.Fields, 2)
	marker := receipt.Fields[1]
	assert.Equal(t, "Phantom0", marker.Name)
	assert.Equal(t, "movetypes.Phantom[T0]", marker.Type.String())
	assert.True(t, marker.Skipped())
}

func TestGenerate_Enum(t *testing.T) {
	files := generateApp(t)
	pool := files[2]

	action := typeDecl(t, pool, "Action")
	assert.True(t, action.Enum)
	assert.Equal(t, map[string]string{
		"Deposit": "*ActionDeposit[T0]",
		"Swap":    "*ActionSwap[T0]",
		"Close":   "*ActionClose[T0]",
	}, fieldTypes(action))
	assert.Equal(t, []string{"Deposit", "Swap", "Close"},
		[]string{action.Fields[0].Name, action.Fields[1].Name, action.Fields[2].Name}, "variant order is declaration order")

	deposit := typeDecl(t, pool, "ActionDeposit")
	assert.Nil(t, deposit.Identity)
	assert.Equal(t, map[string]string{"Amount": "uint64", "Who": "movetypes.Address"}, fieldTypes(deposit))

	swap := typeDecl(t, pool, "ActionSwap")
	assert.Equal(t, map[string]string{"V0": "uint64", "V1": "T0"}, fieldTypes(swap))
	assert.Equal(t, "pos1", swap.Fields[1].JSON)

	assert.Empty(t, typeDecl(t, pool, "ActionClose").Fields)
}

func TestGenerate_EnumVariantShapes(t *testing.T) {
	u64 := model.Primitive(model.KindU64)
	fake := testutil.FakePackage{
		Address: testutil.AppOriginalAddress,
		Version: 1,
		Modules: []*model.Module{{
			Address: testutil.AppOriginalAddress,
			Name:    "shape",
			Enums: []*model.Enum{{
				Name: "Shape",
				Variants: []model.Variant{
					{Name: "Single", Fields: []model.Field{{Name: "pos0", Type: u64}}},
					{Name: "Mixed", Fields: []model.Field{{Name: "pos0", Type: u64}, {Name: "foo", Type: model.Primitive(model.KindBool)}}},
					{Name: "Skipped", Fields: []model.Field{{Name: "pos1", Type: u64}}},
				},
			}},
		}},
	}
	pkg := fake.Model()
	files, err := Generate(quiet, pkg, appTarget(t, pkg))
	require.NoError(t, err)
	shape := files[1]

	single := typeDecl(t, shape, "ShapeSingle")
	require.Len(t, single.Fields, 1)
	assert.Equal(t, "V0", single.Fields[0].Name, "a lone pos0 is a one-element tuple")
	assert.Equal(t, "pos0", single.Fields[0].JSON)

	mixed := typeDecl(t, shape, "ShapeMixed")
	assert.Equal(t, map[string]string{"Pos0": "uint64", "Foo": "bool"}, fieldTypes(mixed), "mixed names keep named fields")

	skipped := typeDecl(t, shape, "ShapeSkipped")
	assert.Equal(t, map[string]string{"Pos1": "uint64"}, fieldTypes(skipped), "positions must start at zero")
}

func TestGenerate_EnumPhantomMarker(t *testing.T) {
	fake := testutil.FakePackage{
		Address: testutil.AppOriginalAddress,
		Version: 1,
		Modules: []*model.Module{{
			Address: testutil.AppOriginalAddress,
			Name:    "flag",
			Enums: []*model.Enum{{
				Name:           "Flag",
				TypeParameters: []model.TypeParameter{{IsPhantom: true}},
				Variants:       []model.Variant{{Name: "On"}, {Name: "Off"}},
			}},
		}},
	}
	pkg := fake.Model()
	files, err := Generate(quiet, pkg, appTarget(t, pkg))
	require.NoError(t, err)

	flag := typeDecl(t, files[1], "Flag")
	require.Len(t, flag.Fields, 3)
	assert.Equal(t, "Phantom0", flag.Fields[2].Name)
	assert.True(t, flag.Fields[2].Skipped())
}

func TestGenerate_Functions(t *testing.T) {
	files := generateApp(t)
	pool := files[2]

	deposit := funcDecl(t, pool, "Deposit")
	assert.Equal(t, "deposit", deposit.MoveName)
	assert.True(t, deposit.Scoped)
	assert.Equal(t, []string{"p0 ptb.MutRef[pool.Pool[T0, T1]]", "p1 *ptb.Arg[coin.Coin[T0]]"}, paramTypes(deposit))
	require.Len(t, deposit.Results, 1)
	assert.Equal(t, Owned, deposit.Results[0].Kind)
	assert.Equal(t, "pool.Receipt[T0]", deposit.Results[0].Type.String())
	assert.Equal(t, "movetypes.MoveType", deposit.TypeParams[0].Constraint.String())

	newFn := funcDecl(t, pool, "New")
	assert.False(t, newFn.Scoped)
	assert.Equal(t, []string{"p0 *ptb.Arg[uint64]"}, paramTypes(newFn))

	touch := funcDecl(t, pool, "Touch")
	assert.Equal(t, []string{"p1 *ptb.Arg[pool.Config]"}, paramTypes(touch), "a leading TxContext is dropped too")
	assert.False(t, touch.Scoped, "the dropped context does not need a scope")
	assert.Empty(t, touch.Results)
	assert.Contains(t, touch.Doc, "entry-only")

	reserves := funcDecl(t, pool, "Reserves")
	require.Len(t, reserves.Results, 2)
	assert.Equal(t, "uint64", reserves.Results[1].Type.String())

	admin := funcDecl(t, pool, "Admin")
	require.Len(t, admin.Results, 1)
	assert.Equal(t, Borrowed, admin.Results[0].Kind)
	assert.Equal(t, "movetypes.Option[movetypes.Address]", admin.Results[0].Type.String())

	wrap := funcDecl(t, pool, "Wrap")
	assert.Equal(t, "movetypes.Key", wrap.TypeParams[0].Constraint.String())
	assert.Equal(t, []string{"p0 *ptb.Arg[T0]"}, paramTypes(wrap))
}

func TestGenerate_NameCollisions(t *testing.T) {
	addr := testutil.AppOriginalAddress
	fake := testutil.FakePackage{
		Address: addr,
		Version: 1,
		Modules: []*model.Module{{
			Address: addr,
			Name:    "type",
			Structs: []*model.Struct{{
				Name: "Thing",
				Fields: []model.Field{
					{Name: "struct_tag", Type: model.Primitive(model.KindU8)},
					{Name: "structTag", Type: model.Primitive(model.KindU8)},
				},
			}},
			Functions: []*model.Function{
				{Name: "module_name", Visibility: model.VisibilityPublic},
				{Name: "thing", Visibility: model.VisibilityPublic},
			},
		}},
	}
	pkg := fake.Model()
	files, err := Generate(quiet, pkg, appTarget(t, pkg))
	require.NoError(t, err)

	f := files[1]
	assert.Equal(t, "type_", f.Package)
	assert.Equal(t, "app/type_", f.Dir)

	thing := typeDecl(t, f, "Thing")
	assert.Equal(t, "StructTag_", thing.Fields[0].Name)
	assert.Equal(t, "StructTag__", thing.Fields[1].Name)

	funcDecl(t, f, "ModuleNameCall")
	funcDecl(t, f, "ThingCall")
}

func TestGenerate_ModuleNamedMain(t *testing.T) {
	pkg := testutil.GamePackage().Model()
	files, err := Generate(quiet, pkg, appTarget(t, pkg))
	require.NoError(t, err)
	require.Len(t, files, 3)

	mainFile, user := files[1], files[2]
	assert.Equal(t, "main_", mainFile.Package)
	assert.Equal(t, "app/main_", mainFile.Dir)
	assert.Equal(t, appRoot+"/main_", mainFile.ImportPath)
	require.NotNil(t, mainFile.ModuleHeader)
	assert.Equal(t, "main", mainFile.ModuleHeader.Module, "calls keep the Move module name")

	holder := typeDecl(t, user, "Holder")
	require.Len(t, holder.Fields, 1)
	assert.Equal(t, appRoot+"/main_", holder.Fields[0].Type.Path)
	assert.Equal(t, "main_.Thing", holder.Fields[0].Type.String())

	thing := typeDecl(t, mainFile, "Thing")
	assert.Equal(t, map[string]string{
		"Label": "movetypes.ASCIIString",
		"Kind":  "movetypes.TypeName",
	}, fieldTypes(thing))
}

func TestGenerate_UnsupportedPatterns(t *testing.T) {
	addr := testutil.AppOriginalAddress
	cases := []struct {
		name   string
		module *model.Module
		reason string
	}{
		{
			name: "variant collides with datatype",
			module: &model.Module{
				Address: addr,
				Name:    "m",
				Structs: []*model.Struct{{Name: "ActionClose"}},
				Enums:   []*model.Enum{{Name: "Action", Variants: []model.Variant{{Name: "Close"}}}},
			},
			reason: "collides with a declared datatype",
		},
		{
			name: "datatype named like a module constant",
			module: &model.Module{
				Address: addr,
				Name:    "m",
				Structs: []*model.Struct{{Name: "PackageID"}},
			},
			reason: "reserved for the module header",
		},
		{
			name: "variant named like a module constant",
			module: &model.Module{
				Address: addr,
				Name:    "m",
				Enums:   []*model.Enum{{Name: "Module", Variants: []model.Variant{{Name: "Name"}}}},
			},
			reason: "variant type ModuleName collides",
		},
		{
			name: "key without id",
			module: &model.Module{
				Address: addr,
				Name:    "m",
				Structs: []*model.Struct{{
					Name:      "Obj",
					Abilities: model.NewAbilitySet(model.AbilityKey),
					Fields:    []model.Field{{Name: "value", Type: model.Primitive(model.KindU64)}},
				}},
			},
			reason: "no id field",
		},
		{
			name: "key with wrong id type",
			module: &model.Module{
				Address: addr,
				Name:    "m",
				Structs: []*model.Struct{{
					Name:      "Obj",
					Abilities: model.NewAbilitySet(model.AbilityKey),
					Fields:    []model.Field{{Name: "id", Type: model.Primitive(model.KindAddress)}},
				}},
			},
			reason: "want 0x2::object::UID",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := testutil.FakePackage{Address: addr, Version: 1, Modules: []*model.Module{tc.module}}
			pkg := fake.Model()
			_, err := Generate(quiet, pkg, appTarget(t, pkg))
			var upe *UnsupportedPatternError
			require.True(t, errors.As(err, &upe), "got %v", err)
			assert.Equal(t, "m", upe.Module)
			assert.Contains(t, upe.Reason, tc.reason)
		})
	}
}

func TestGenerate_UnknownDependency(t *testing.T) {
	pkg := testutil.AppPackage().Model()
	_, err := Generate(quiet, pkg, appTarget(t, pkg))

	var upe *registry.UnknownPackageError
	require.True(t, errors.As(err, &upe), "got %v", err)
	assert.Equal(t, testutil.FrameworkAddress, upe.Address)
}

func TestGenerate_IsDeterministic(t *testing.T) {
	first := generateApp(t)
	for range 3 {
		again := generateApp(t)
		if diff := cmp.Diff(first, again, cmp.Comparer(func(a, b gotype.Expr) bool {
			return a.String() == b.String()
		})); diff != "" {
			t.Fatalf("generation is not deterministic (-first +again):\n%s", diff)
		}
	}
}
