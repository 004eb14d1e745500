package codegen

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/typemap"
	"github.com/vk/movegen/pkg/movetypes"
)

// isTxContext reports whether t is a reference to the transaction context,
// which the runtime supplies and stubs never take.
func isTxContext(t model.Type) bool {
	return t.IsReference() && t.Elem.Is(movetypes.FrameworkAddress, "tx_context", "TxContext")
}

func (g *moduleGen) funcDecl(f *model.Function, name string) (*Func, error) {
	decl := "function " + f.Name
	out := &Func{
		Name:     name,
		MoveName: f.Name,
		TypeParams: lo.Map(f.TypeParameters, func(c model.AbilitySet, i int) TypeParam {
			constraint := gotype.From(typemap.MovetypesPath, "MoveType")
			if c.Has(model.AbilityKey) {
				constraint = gotype.From(typemap.MovetypesPath, "Key")
			}
			return TypeParam{Name: typemap.TypeParam(uint16(i)), Constraint: constraint}
		}),
	}

	for i, p := range f.Parameters {
		if isTxContext(p) {
			continue
		}
		t, err := g.mapper.MapArg(p)
		if err != nil {
			return nil, fmt.Errorf("%s parameter %d: %w", decl, i, err)
		}
		out.Params = append(out.Params, Param{Name: fmt.Sprintf("p%d", i), Type: t})
		if p.IsReference() {
			out.Scoped = true
		}
	}

	for i, r := range f.Return {
		kind, inner := Owned, r
		switch r.Kind {
		case model.KindReference:
			kind, inner = Borrowed, *r.Elem
		case model.KindMutableReference:
			kind, inner = MutablyBorrowed, *r.Elem
		}
		t, err := g.mapper.Map(inner)
		if err != nil {
			return nil, fmt.Errorf("%s return %d: %w", decl, i, err)
		}
		out.Results = append(out.Results, Result{Kind: kind, Type: t})
		if kind != Owned {
			out.Scoped = true
		}
	}

	out.Doc = fmt.Sprintf("%s records a call to %s::%s::%s.", name, g.mod.Address.ShortString(), g.mod.Name, f.Name)
	if f.IsEntry && f.Visibility != model.VisibilityPublic {
		out.Doc += " The function is entry-only: it can be called from a transaction but not from other Move code."
	}
	return out, nil
}
