package testutil

import (
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/pkg/movetypes"
)

var (
	// FrameworkAddress is the address of the fixture framework package.
	FrameworkAddress = movetypes.FrameworkAddress
	// StdAddress is the address of the Move standard library.
	StdAddress = movetypes.StdAddress
	// AppOriginalAddress is where the fixture app package was first
	// published. Its modules carry this address.
	AppOriginalAddress = movetypes.MustParseAddress("0xa1")
	// AppAddress is the address of the upgraded fixture app package.
	AppAddress = movetypes.MustParseAddress("0xa2")
	// GameAddress is the address of the fixture game package.
	GameAddress = movetypes.MustParseAddress("0xc0")
)

func u64() model.Type { return model.Primitive(model.KindU64) }
func address() model.Type { return model.Primitive(model.KindAddress) }

// FrameworkType names a datatype of the fixture framework package.
func FrameworkType(module, name string, args ...model.Type) model.Type {
	return model.Datatype(FrameworkAddress, module, name, args...)
}

// AppType names a datatype of the fixture app package by its original
// address.
func AppType(module, name string, args ...model.Type) model.Type {
	return model.Datatype(AppOriginalAddress, module, name, args...)
}

// FrameworkPackage is a trimmed copy of the Sui framework: object,
// tx_context, balance, coin, and sui.
func FrameworkPackage() FakePackage {
	phantom := []model.TypeParameter{{IsPhantom: true}}
	t0 := model.TypeParam(0)
	return FakePackage{
		Address: FrameworkAddress,
		Version: 3,
		Modules: []*model.Module{
			{
				Address: FrameworkAddress,
				Name:    "object",
				Structs: []*model.Struct{
					{
						Name:      "ID",
						Abilities: model.NewAbilitySet(model.AbilityCopy, model.AbilityDrop, model.AbilityStore),
						Fields:    []model.Field{{Name: "bytes", Type: address()}},
					},
					{
						Name:      "UID",
						Abilities: model.NewAbilitySet(model.AbilityStore),
						Fields:    []model.Field{{Name: "id", Type: FrameworkType("object", "ID")}},
					},
				},
			},
			{
				Address: FrameworkAddress,
				Name:    "tx_context",
				Structs: []*model.Struct{
					{
						Name:      "TxContext",
						Abilities: model.NewAbilitySet(model.AbilityDrop),
						Fields: []model.Field{
							{Name: "sender", Type: address()},
							{Name: "tx_hash", Type: model.Vector(model.Primitive(model.KindU8))},
							{Name: "epoch", Type: u64()},
							{Name: "epoch_timestamp_ms", Type: u64()},
							{Name: "ids_created", Type: u64()},
						},
					},
				},
				Functions: []*model.Function{
					{
						Name:       "sender",
						Visibility: model.VisibilityPublic,
						Parameters: []model.Type{model.Reference(FrameworkType("tx_context", "TxContext"))},
						Return:     []model.Type{address()},
					},
				},
			},
			{
				Address: FrameworkAddress,
				Name:    "balance",
				Structs: []*model.Struct{
					{
						Name:           "Balance",
						Abilities:      model.NewAbilitySet(model.AbilityStore),
						TypeParameters: phantom,
						Fields:         []model.Field{{Name: "value", Type: u64()}},
					},
					{
						Name:           "Supply",
						Abilities:      model.NewAbilitySet(model.AbilityStore),
						TypeParameters: phantom,
						Fields:         []model.Field{{Name: "value", Type: u64()}},
					},
				},
				Functions: []*model.Function{
					{
						Name:           "value",
						Visibility:     model.VisibilityPublic,
						TypeParameters: []model.AbilitySet{0},
						Parameters:     []model.Type{model.Reference(FrameworkType("balance", "Balance", t0))},
						Return:         []model.Type{u64()},
					},
				},
			},
			{
				Address: FrameworkAddress,
				Name:    "coin",
				Structs: []*model.Struct{
					{
						Name:           "Coin",
						Abilities:      model.NewAbilitySet(model.AbilityKey, model.AbilityStore),
						TypeParameters: phantom,
						Fields: []model.Field{
							{Name: "id", Type: FrameworkType("object", "UID")},
							{Name: "balance", Type: FrameworkType("balance", "Balance", t0)},
						},
					},
				},
				Functions: []*model.Function{
					{
						Name:           "into_balance",
						Visibility:     model.VisibilityPublic,
						TypeParameters: []model.AbilitySet{0},
						Parameters:     []model.Type{FrameworkType("coin", "Coin", t0)},
						Return:         []model.Type{FrameworkType("balance", "Balance", t0)},
					},
					{
						Name:           "split",
						Visibility:     model.VisibilityPublic,
						TypeParameters: []model.AbilitySet{0},
						Parameters: []model.Type{
							model.MutableReference(FrameworkType("coin", "Coin", t0)),
							u64(),
							model.MutableReference(FrameworkType("tx_context", "TxContext")),
						},
						Return: []model.Type{FrameworkType("coin", "Coin", t0)},
					},
					{
						Name:           "value",
						Visibility:     model.VisibilityPublic,
						TypeParameters: []model.AbilitySet{0},
						Parameters:     []model.Type{model.Reference(FrameworkType("coin", "Coin", t0))},
						Return:         []model.Type{u64()},
					},
				},
			},
			{
				Address: FrameworkAddress,
				Name:    "sui",
				Structs: []*model.Struct{
					{
						Name:      "SUI",
						Abilities: model.NewAbilitySet(model.AbilityDrop),
						Fields:    []model.Field{{Name: "dummy_field", Type: model.Primitive(model.KindBool)}},
					},
				},
			},
		},
	}
}

// AppModules are the modules of the fixture app package.
func AppModules() []*model.Module {
	t0, t1 := model.TypeParam(0), model.TypeParam(1)
	txCtx := FrameworkType("tx_context", "TxContext")
	pool := AppType("pool", "Pool", t0, t1)
	return []*model.Module{
		{
			Address: AppOriginalAddress,
			Name:    "events",
			Structs: []*model.Struct{
				{
					Name:      "Swapped",
					Abilities: model.NewAbilitySet(model.AbilityCopy, model.AbilityDrop),
					Fields: []model.Field{
						{Name: "pool", Type: FrameworkType("object", "ID")},
						{Name: "amount_in", Type: u64()},
						{Name: "amount_out", Type: u64()},
					},
				},
			},
		},
		{
			Address: AppOriginalAddress,
			Name:    "math",
		},
		{
			Address: AppOriginalAddress,
			Name:    "pool",
			Structs: []*model.Struct{
				{
					Name:      "Config",
					Abilities: model.NewAbilitySet(model.AbilityCopy, model.AbilityDrop, model.AbilityStore),
					Fields: []model.Field{
						{Name: "type", Type: model.Primitive(model.KindU8)},
						{Name: "limits", Type: model.Vector(u64())},
					},
				},
				{
					Name:      "Pool",
					Abilities: model.NewAbilitySet(model.AbilityKey, model.AbilityStore),
					TypeParameters: []model.TypeParameter{
						{IsPhantom: true},
						{IsPhantom: true},
					},
					Fields: []model.Field{
						{Name: "id", Type: FrameworkType("object", "UID")},
						{Name: "reserve_x", Type: FrameworkType("balance", "Balance", t0)},
						{Name: "reserve_y", Type: FrameworkType("balance", "Balance", t1)},
						{Name: "fee_bps", Type: u64()},
						{Name: "name", Type: model.Datatype(StdAddress, "string", "String")},
						{Name: "admin", Type: model.Datatype(StdAddress, "option", "Option", address())},
						{Name: "config", Type: AppType("pool", "Config")},
					},
				},
				{
					Name:           "Receipt",
					Abilities:      model.NewAbilitySet(model.AbilityDrop),
					TypeParameters: []model.TypeParameter{{IsPhantom: true}},
					Fields:         []model.Field{{Name: "amount", Type: u64()}},
				},
			},
			Enums: []*model.Enum{
				{
					Name:           "Action",
					Abilities:      model.NewAbilitySet(model.AbilityCopy, model.AbilityDrop, model.AbilityStore),
					TypeParameters: []model.TypeParameter{{Constraints: model.NewAbilitySet(model.AbilityCopy, model.AbilityDrop, model.AbilityStore)}},
					Variants: []model.Variant{
						{Name: "Deposit", Fields: []model.Field{
							{Name: "amount", Type: u64()},
							{Name: "who", Type: address()},
						}},
						{Name: "Swap", Fields: []model.Field{
							{Name: "pos0", Type: u64()},
							{Name: "pos1", Type: t0},
						}},
						{Name: "Close"},
					},
				},
			},
			Functions: []*model.Function{
				{
					Name:           "admin",
					Visibility:     model.VisibilityPublic,
					TypeParameters: []model.AbilitySet{0, 0},
					Parameters:     []model.Type{model.Reference(pool)},
					Return:         []model.Type{model.Reference(model.Datatype(StdAddress, "option", "Option", address()))},
				},
				{
					Name:           "deposit",
					Visibility:     model.VisibilityPublic,
					TypeParameters: []model.AbilitySet{0, 0},
					Parameters: []model.Type{
						model.MutableReference(pool),
						FrameworkType("coin", "Coin", t0),
						model.MutableReference(txCtx),
					},
					Return: []model.Type{AppType("pool", "Receipt", t0)},
				},
				{
					Name:           "new",
					Visibility:     model.VisibilityPublic,
					TypeParameters: []model.AbilitySet{0, 0},
					Parameters:     []model.Type{u64(), model.MutableReference(txCtx)},
					Return:         []model.Type{pool},
				},
				{
					Name:           "reserves",
					Visibility:     model.VisibilityPublic,
					TypeParameters: []model.AbilitySet{0, 0},
					Parameters:     []model.Type{model.Reference(pool)},
					Return:         []model.Type{u64(), u64()},
				},
				{
					Name:       "touch",
					Visibility: model.VisibilityPrivate,
					IsEntry:    true,
					Parameters: []model.Type{model.Reference(txCtx), AppType("pool", "Config")},
				},
				{
					Name:           "wrap",
					Visibility:     model.VisibilityPublic,
					TypeParameters: []model.AbilitySet{model.NewAbilitySet(model.AbilityKey, model.AbilityStore)},
					Parameters:     []model.Type{t0, model.MutableReference(txCtx)},
					Return:         []model.Type{FrameworkType("object", "ID")},
				},
			},
		},
	}
}

// AppPackage is an upgraded package at AppAddress. Swapped was added by the
// upgrade; every other datatype keeps its original address.
func AppPackage() FakePackage {
	return FakePackage{
		Address: AppAddress,
		Version: 2,
		Modules: AppModules(),
		Origins: []model.TypeOrigin{
			{Module: "events", Datatype: "Swapped", DefiningID: AppAddress},
			{Module: "pool", Datatype: "Action", DefiningID: AppOriginalAddress},
			{Module: "pool", Datatype: "Config", DefiningID: AppOriginalAddress},
			{Module: "pool", Datatype: "Pool", DefiningID: AppOriginalAddress},
			{Module: "pool", Datatype: "Receipt", DefiningID: AppOriginalAddress},
		},
	}
}

// GamePackage has a module named main whose struct is used by its sibling
// module user, and types from the ascii and type_name std modules.
func GamePackage() FakePackage {
	thing := model.Datatype(GameAddress, "main", "Thing")
	return FakePackage{
		Address: GameAddress,
		Version: 1,
		Modules: []*model.Module{
			{
				Address: GameAddress,
				Name:    "main",
				Structs: []*model.Struct{{
					Name:      "Thing",
					Abilities: model.NewAbilitySet(model.AbilityCopy, model.AbilityDrop, model.AbilityStore),
					Fields: []model.Field{
						{Name: "label", Type: model.Datatype(StdAddress, "ascii", "String")},
						{Name: "kind", Type: model.Datatype(StdAddress, "type_name", "TypeName")},
					},
				}},
			},
			{
				Address: GameAddress,
				Name:    "user",
				Structs: []*model.Struct{{
					Name:      "Holder",
					Abilities: model.NewAbilitySet(model.AbilityDrop),
					Fields:    []model.Field{{Name: "t", Type: thing}},
				}},
				Functions: []*model.Function{{
					Name:       "hold",
					Visibility: model.VisibilityPublic,
					Parameters: []model.Type{thing},
					Return:     []model.Type{model.Datatype(GameAddress, "user", "Holder")},
				}},
			},
		},
	}
}

// Model returns p as the provider would decode it: modules carry the
// package address and the type-origin table is filled in. Datatype
// references are left as written, so fixtures must already use defining
// addresses.
func (p FakePackage) Model() *model.Package {
	origins := p.Origins
	if origins == nil {
		for _, m := range p.Modules {
			for _, name := range m.DatatypeNames() {
				origins = append(origins, model.TypeOrigin{Module: m.Name, Datatype: name, DefiningID: m.Address})
			}
		}
	}
	table, err := model.NewTypeOriginTable(origins)
	if err != nil {
		panic(err)
	}
	for _, m := range p.Modules {
		m.Address = p.Address
	}
	return &model.Package{Address: p.Address, Version: p.Version, Modules: p.Modules, TypeOrigins: table}
}
