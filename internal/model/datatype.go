// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the declared datatypes of a module: structs and enums.
package model

// TypeParameter is a datatype type parameter.
type TypeParameter struct {
	Constraints AbilitySet
	IsPhantom   bool
}

// Field is a named, typed member of a struct or enum variant.
type Field struct {
	Name string
	Type Type
}

// Struct is a declared struct.
type Struct struct {
	Name           string
	Abilities      AbilitySet
	TypeParameters []TypeParameter
	Fields         []Field
}

// Field returns the field with the given name.
func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Variant is one arm of an enum. Field order is declaration order.
type Variant struct {
	Name   string
	Fields []Field
}

// Enum is a declared enum. Variant order is declaration order and defines
// the variant index on the wire.
type Enum struct {
	Name           string
	Abilities      AbilitySet
	TypeParameters []TypeParameter
	Variants       []Variant
}
