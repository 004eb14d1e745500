package codegen

import (
	"github.com/vk/movegen/internal/gotype"
	"github.com/vk/movegen/internal/model"
)

// File is one generated Go source file. Dir and Name are relative to the
// output root.
type File struct {
	Dir        string
	Name       string
	Package    string
	ImportPath string
	Doc        []string

	// Exactly one of PackageHeader and ModuleHeader is set.
	PackageHeader *PackageHeader
	ModuleHeader  *ModuleHeader

	Types []*TypeDecl
	Funcs []*Func
}

// PackageHeader describes the root file of a package's bindings.
type PackageHeader struct {
	Address model.Address
	Version uint64
}

// ModuleHeader describes the constants shared by a module's declarations.
type ModuleHeader struct {
	Address model.Address
	Module  string
}

// TypeParam is a Go type parameter and its constraint.
type TypeParam struct {
	Name       string
	Constraint gotype.Expr
}

// Field is a struct field. An empty JSON name means the field is skipped
// by both JSON and BCS.
type Field struct {
	Name      string
	Type      gotype.Expr
	JSON      string
	OmitEmpty bool
}

// Skipped reports whether the field is left out of every encoding.
func (f Field) Skipped() bool { return f.JSON == "" }

// Identity is the on-chain identity of a generated datatype.
type Identity struct {
	Origin model.Address
	Module string
	Name   string
}

// TypeDecl is a generated struct type.
type TypeDecl struct {
	Doc        string
	Name       string
	TypeParams []TypeParam
	Fields     []Field

	// Identity is set for types that mirror a Move datatype, as opposed to
	// enum variant payloads.
	Identity *Identity
	// Enum marks the carrier struct of a Move enum.
	Enum bool
	// IDField names the field returned by ID() for key structs.
	IDField string
}

// ResultKind is how a call stub hands back one Move return value.
type ResultKind uint8

const (
	Owned ResultKind = iota + 1
	Borrowed
	MutablyBorrowed
)

// Result is one return value of a call stub. Type is the Move value type
// without the ptb wrapper.
type Result struct {
	Kind ResultKind
	Type gotype.Expr
}

// Param is one call stub parameter.
type Param struct {
	Name string
	Type gotype.Expr
}

// Func is a generated call stub.
type Func struct {
	Doc        string
	Name       string
	MoveName   string
	TypeParams []TypeParam
	// Scoped stubs take a *ptb.Scope after the builder.
	Scoped  bool
	Params  []Param
	Results []Result
}
