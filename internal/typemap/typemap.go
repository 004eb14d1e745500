// Package typemap maps Move types onto the Go types used by generated
// bindings.
package typemap

import (
	"fmt"

	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/internal/registry"
	"github.com/vk/movegen/pkg/movetypes"
)

// Import paths of the runtime packages generated code depends on.
const (
	MovetypesPath = "github.com/vk/movegen/pkg/movetypes"
	PTBPath       = "github.com/vk/movegen/pkg/ptb"
)

// Resolver tells which generated bindings own a defining address.
// *registry.BuildContext implements it.
type Resolver interface {
	Resolve(addr model.Address) (registry.Entry, error)
}

// Mapper maps Move types for one package generation. It holds no mutable
// state: the same type always maps to the same expression. Datatypes are
// always qualified by the import path of their module's bindings; the
// printer drops the qualifier inside the module itself.
type Mapper struct {
	res Resolver
}

// New returns a mapper resolving datatype owners through res.
func New(res Resolver) *Mapper {
	return &Mapper{res: res}
}

func runtimeType(name string, args ...gotype.Expr) gotype.Expr {
	return gotype.From(MovetypesPath, name, args...)
}

var primitives = map[model.TypeKind]gotype.Expr{
	model.KindBool:    gotype.Named("bool"),
	model.KindU8:      gotype.Named("uint8"),
	model.KindU16:     gotype.Named("uint16"),
	model.KindU32:     gotype.Named("uint32"),
	model.KindU64:     gotype.Named("uint64"),
	model.KindU128:    runtimeType("U128"),
	model.KindU256:    runtimeType("U256"),
	model.KindAddress: runtimeType("Address"),
	model.KindSigner:  runtimeType("Address"),
}

type wellKnown struct {
	addr         model.Address
	module, name string
	build        func(args []gotype.Expr) gotype.Expr
}

func fixed(e gotype.Expr) func([]gotype.Expr) gotype.Expr {
	return func([]gotype.Expr) gotype.Expr { return e }
}

// wellKnownTypes is consulted in order; the first match wins.
var wellKnownTypes = []wellKnown{
	{movetypes.StdAddress, "string", "String", fixed(gotype.Named("string"))},
	{movetypes.StdAddress, "ascii", "String", fixed(runtimeType("ASCIIString"))},
	{movetypes.StdAddress, "type_name", "TypeName", fixed(runtimeType("TypeName"))},
	{movetypes.StdAddress, "option", "Option", func(args []gotype.Expr) gotype.Expr {
		return runtimeType("Option", args...)
	}},
	{movetypes.FrameworkAddress, "object", "UID", fixed(runtimeType("ObjectID"))},
	{movetypes.FrameworkAddress, "object", "ID", fixed(runtimeType("ObjectID"))},
}

// IsWellKnown reports whether ref maps to a fixed runtime or builtin type
// instead of generated bindings.
func IsWellKnown(ref model.DatatypeRef) bool {
	_, ok := lookupWellKnown(ref)
	return ok
}

func lookupWellKnown(ref model.DatatypeRef) (wellKnown, bool) {
	for _, w := range wellKnownTypes {
		if ref.Address == w.addr && ref.Module == w.module && ref.Name == w.name {
			return w, true
		}
	}
	return wellKnown{}, false
}

// TypeParam is the Go name of type parameter i.
func TypeParam(i uint16) string {
	return fmt.Sprintf("T%d", i)
}

// ModulePath is the import path of the bindings for module under the
// package bindings at root.
func ModulePath(root, module string) string {
	return root + "/" + gotype.PackageName(module)
}

// Map returns the Go type of a value of Move type t, such as a struct field.
func (m *Mapper) Map(t model.Type) (gotype.Expr, error) {
	if e, ok := primitives[t.Kind]; ok {
		return e, nil
	}
	switch t.Kind {
	case model.KindVector:
		elem, err := m.Map(*t.Elem)
		if err != nil {
			return gotype.Expr{}, err
		}
		return gotype.SliceOf(elem), nil
	case model.KindReference, model.KindMutableReference:
		elem, err := m.Map(*t.Elem)
		if err != nil {
			return gotype.Expr{}, err
		}
		return gotype.PointerTo(elem), nil
	case model.KindTypeParameter:
		return gotype.Named(TypeParam(t.Param)), nil
	case model.KindDatatype:
		return m.mapDatatype(*t.Datatype)
	}
	return gotype.Expr{}, fmt.Errorf("cannot map type kind %d", t.Kind)
}

func (m *Mapper) mapDatatype(ref model.DatatypeRef) (gotype.Expr, error) {
	args := make([]gotype.Expr, len(ref.TypeArguments))
	for i, a := range ref.TypeArguments {
		e, err := m.Map(a)
		if err != nil {
			return gotype.Expr{}, err
		}
		args[i] = e
	}
	if w, ok := lookupWellKnown(ref); ok {
		return w.build(args), nil
	}

	entry, err := m.res.Resolve(ref.Address)
	if err != nil {
		return gotype.Expr{}, fmt.Errorf("type %s::%s::%s: %w", ref.Address.ShortString(), ref.Module, ref.Name, err)
	}
	name := gotype.Exported(ref.Name)
	path := ModulePath(entry.ImportPath, ref.Module)
	return gotype.From(path, name, args...), nil
}

// MapArg returns the Go type a call stub accepts for a parameter of type t.
func (m *Mapper) MapArg(t model.Type) (gotype.Expr, error) {
	wrap := "Arg"
	inner := t
	switch t.Kind {
	case model.KindReference:
		wrap, inner = "Ref", *t.Elem
	case model.KindMutableReference:
		wrap, inner = "MutRef", *t.Elem
	}
	e, err := m.Map(inner)
	if err != nil {
		return gotype.Expr{}, err
	}
	arg := gotype.From(PTBPath, wrap, e)
	if wrap == "Arg" {
		return gotype.PointerTo(arg), nil
	}
	return arg, nil
}
