package codegen

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/typemap"
	"github.com/vk/movegen/pkg/movetypes"
)

func anyParams(n int) []TypeParam {
	return lo.Times(n, func(i int) TypeParam {
		return TypeParam{Name: typemap.TypeParam(uint16(i)), Constraint: gotype.Named("any")}
	})
}

func paramExprs(params []TypeParam) []gotype.Expr {
	return lo.Map(params, func(p TypeParam, _ int) gotype.Expr { return gotype.Named(p.Name) })
}

// mappedField is a Move field together with its Go type.
type mappedField struct {
	move string
	typ  gotype.Expr
}

func (g *moduleGen) mapFields(decl string, fields []model.Field) ([]mappedField, error) {
	out := make([]mappedField, len(fields))
	for i, f := range fields {
		e, err := g.mapper.Map(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%s field %s: %w", decl, f.Name, err)
		}
		out[i] = mappedField{move: f.Name, typ: e}
	}
	return out, nil
}

// usedParams collects the type parameters mentioned by any of the types.
func usedParams(n int, types []gotype.Expr) mapset.Set[string] {
	used := mapset.NewThreadUnsafeSet[string]()
	for i := range n {
		name := typemap.TypeParam(uint16(i))
		for _, t := range types {
			if t.Mentions(name) {
				used.Add(name)
				break
			}
		}
	}
	return used
}

// phantomMarkers returns one zero-size field for every phantom parameter no
// field mentions, so the Go type still depends on it.
func phantomMarkers(params []model.TypeParameter, used mapset.Set[string], fieldNames *names) []Field {
	var out []Field
	for i, p := range params {
		name := typemap.TypeParam(uint16(i))
		if !p.IsPhantom || used.Contains(name) {
			continue
		}
		out = append(out, Field{
			Name: fieldNames.claim(fmt.Sprintf("Phantom%d", i)),
			Type: gotype.From(typemap.MovetypesPath, "Phantom", gotype.Named(name)),
		})
	}
	return out
}

func (g *moduleGen) identity(name string) (*Identity, error) {
	origin, ok := g.pkg.TypeOrigins.Lookup(g.mod.Name, name)
	if !ok {
		return nil, &UnsupportedPatternError{Module: g.mod.Name, Declaration: name, Reason: "datatype has no type origin"}
	}
	return &Identity{Origin: origin, Module: g.mod.Name, Name: name}, nil
}

func (g *moduleGen) structDecl(s *model.Struct) (*TypeDecl, error) {
	decl := "struct " + s.Name
	mapped, err := g.mapFields(decl, s.Fields)
	if err != nil {
		return nil, err
	}
	id, err := g.identity(s.Name)
	if err != nil {
		return nil, err
	}

	methods := []string{"StructTag", "TypeOriginID"}
	if s.Abilities.Has(model.AbilityKey) {
		methods = append(methods, "ID")
	}
	fieldNames := newNames("_", methods...)

	td := &TypeDecl{
		Doc:        fmt.Sprintf("%s mirrors the Move struct %s::%s::%s.", g.typeName(s.Name), id.Origin.ShortString(), g.mod.Name, s.Name),
		Name:       g.typeName(s.Name),
		TypeParams: anyParams(len(s.TypeParameters)),
		Identity:   id,
	}
	idName := ""
	for _, f := range mapped {
		name := fieldNames.claim(gotype.Exported(f.move))
		td.Fields = append(td.Fields, Field{Name: name, Type: f.typ, JSON: f.move})
		if f.move == "id" {
			idName = name
		}
	}
	types := lo.Map(mapped, func(f mappedField, _ int) gotype.Expr { return f.typ })
	td.Fields = append(td.Fields, phantomMarkers(s.TypeParameters, usedParams(len(s.TypeParameters), types), fieldNames)...)

	if s.Abilities.Has(model.AbilityKey) {
		idField, ok := s.Field("id")
		if !ok {
			return nil, &UnsupportedPatternError{Module: g.mod.Name, Declaration: decl, Reason: "key struct has no id field"}
		}
		if !idField.Type.Is(movetypes.FrameworkAddress, "object", "UID") {
			return nil, &UnsupportedPatternError{Module: g.mod.Name, Declaration: decl,
				Reason: fmt.Sprintf("key struct id field has type %s, want 0x2::object::UID", idField.Type)}
		}
		td.IDField = idName
	}
	return td, nil
}

// isTuple reports whether fields are positional: pos0, pos1, ... in order.
func isTuple(fields []model.Field) bool {
	if len(fields) == 0 {
		return false
	}
	for i, f := range fields {
		if f.Name != fmt.Sprintf("pos%d", i) {
			return false
		}
	}
	return true
}

func (g *moduleGen) enumDecls(e *model.Enum) ([]*TypeDecl, error) {
	decl := "enum " + e.Name
	id, err := g.identity(e.Name)
	if err != nil {
		return nil, err
	}
	params := anyParams(len(e.TypeParameters))
	args := paramExprs(params)

	carrier := &TypeDecl{
		Doc: fmt.Sprintf("%s mirrors the Move enum %s::%s::%s. Exactly one variant field is set.",
			g.typeName(e.Name), id.Origin.ShortString(), g.mod.Name, e.Name),
		Name:       g.typeName(e.Name),
		TypeParams: params,
		Identity:   id,
		Enum:       true,
	}
	carrierNames := newNames("_", "StructTag", "TypeOriginID", "IsMoveEnum")

	var variants []*TypeDecl
	var allTypes []gotype.Expr
	for _, v := range e.Variants {
		vname := g.typeName(e.Name) + gotype.Exported(v.Name)
		if g.declared.Contains(vname) {
			return nil, &UnsupportedPatternError{Module: g.mod.Name, Declaration: decl,
				Reason: fmt.Sprintf("variant type %s collides with a declared datatype", vname)}
		}
		g.declared.Add(vname)

		mapped, err := g.mapFields(decl+" variant "+v.Name, v.Fields)
		if err != nil {
			return nil, err
		}
		vt := &TypeDecl{
			Doc:        fmt.Sprintf("%s is the %s variant of %s.", vname, v.Name, g.typeName(e.Name)),
			Name:       vname,
			TypeParams: params,
		}
		tuple := isTuple(v.Fields)
		fieldNames := newNames("_")
		for i, f := range mapped {
			name := gotype.Exported(f.move)
			if tuple {
				name = fmt.Sprintf("V%d", i)
			}
			vt.Fields = append(vt.Fields, Field{Name: fieldNames.claim(name), Type: f.typ, JSON: f.move})
			allTypes = append(allTypes, f.typ)
		}
		variants = append(variants, vt)

		carrier.Fields = append(carrier.Fields, Field{
			Name:      carrierNames.claim(gotype.Exported(v.Name)),
			Type:      gotype.PointerTo(gotype.Named(vname, args...)),
			JSON:      v.Name,
			OmitEmpty: true,
		})
	}
	carrier.Fields = append(carrier.Fields, phantomMarkers(e.TypeParameters, usedParams(len(e.TypeParameters), allTypes), carrierNames)...)
	return append([]*TypeDecl{carrier}, variants...), nil
}

func (g *moduleGen) typeName(move string) string {
	return gotype.Exported(move)
}
