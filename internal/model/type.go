// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Type, the tagged tree used for every field, parameter and
// return type in the schema.
package model

import (
	"fmt"
	"strings"

	"github.com/vk/movegen/pkg/movetypes"
)

// Address is a 32-byte Sui address.
type Address = movetypes.Address

// AddressLength is the byte width of an Address.
const AddressLength = movetypes.AddressLength

// TypeKind tags a Type node.
type TypeKind uint8

const (
	KindBool TypeKind = iota + 1
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindU256
	KindAddress
	KindSigner
	KindVector
	KindDatatype
	KindReference
	KindMutableReference
	KindTypeParameter
)

var primitiveNames = map[TypeKind]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindU128:    "u128",
	KindU256:    "u256",
	KindAddress: "address",
	KindSigner:  "signer",
}

// Type is one node of a Move type. Elem is set for vectors and references,
// Datatype for struct and enum instantiations, Param for type parameters.
type Type struct {
	Kind     TypeKind
	Elem     *Type
	Datatype *DatatypeRef
	Param    uint16
}

// DatatypeRef names an instantiated struct or enum.
type DatatypeRef struct {
	Address       Address
	Module        string
	Name          string
	TypeArguments []Type
}

// Primitive returns a leaf type of the given kind.
func Primitive(k TypeKind) Type {
	return Type{Kind: k}
}

func Vector(elem Type) Type {
	return Type{Kind: KindVector, Elem: &elem}
}

func Reference(elem Type) Type {
	return Type{Kind: KindReference, Elem: &elem}
}

func MutableReference(elem Type) Type {
	return Type{Kind: KindMutableReference, Elem: &elem}
}

func TypeParam(i uint16) Type {
	return Type{Kind: KindTypeParameter, Param: i}
}

func Datatype(addr Address, module, name string, args ...Type) Type {
	return Type{Kind: KindDatatype, Datatype: &DatatypeRef{
		Address:       addr,
		Module:        module,
		Name:          name,
		TypeArguments: args,
	}}
}

// IsReference reports whether t is an immutable or mutable reference.
func (t Type) IsReference() bool {
	return t.Kind == KindReference || t.Kind == KindMutableReference
}

// Is reports whether t is the datatype addr::module::name, ignoring type
// arguments.
func (t Type) Is(addr Address, module, name string) bool {
	return t.Kind == KindDatatype && t.Datatype != nil &&
		t.Datatype.Address == addr && t.Datatype.Module == module && t.Datatype.Name == name
}

// Walk calls fn for t and every nested type, depth first.
func (t Type) Walk(fn func(Type)) {
	fn(t)
	switch t.Kind {
	case KindVector, KindReference, KindMutableReference:
		if t.Elem != nil {
			t.Elem.Walk(fn)
		}
	case KindDatatype:
		if t.Datatype != nil {
			for _, a := range t.Datatype.TypeArguments {
				a.Walk(fn)
			}
		}
	}
}

// Map returns a copy of t with fn applied to every datatype reference.
func (t Type) Map(fn func(DatatypeRef) DatatypeRef) Type {
	switch t.Kind {
	case KindVector, KindReference, KindMutableReference:
		if t.Elem == nil {
			return t
		}
		elem := t.Elem.Map(fn)
		t.Elem = &elem
	case KindDatatype:
		if t.Datatype == nil {
			return t
		}
		ref := *t.Datatype
		args := make([]Type, len(ref.TypeArguments))
		for i, a := range ref.TypeArguments {
			args[i] = a.Map(fn)
		}
		ref.TypeArguments = args
		ref = fn(ref)
		t.Datatype = &ref
	}
	return t
}

func (t Type) String() string {
	if n, ok := primitiveNames[t.Kind]; ok {
		return n
	}
	switch t.Kind {
	case KindVector:
		return "vector<" + t.Elem.String() + ">"
	case KindReference:
		return "&" + t.Elem.String()
	case KindMutableReference:
		return "&mut " + t.Elem.String()
	case KindTypeParameter:
		return fmt.Sprintf("T%d", t.Param)
	case KindDatatype:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s::%s::%s", t.Datatype.Address.ShortString(), t.Datatype.Module, t.Datatype.Name)
		if len(t.Datatype.TypeArguments) > 0 {
			sb.WriteByte('<')
			for i, a := range t.Datatype.TypeArguments {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(a.String())
			}
			sb.WriteByte('>')
		}
		return sb.String()
	}
	return fmt.Sprintf("TypeKind(%d)", t.Kind)
}
