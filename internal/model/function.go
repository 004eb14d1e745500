// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Function, the callable surface of a module.
//
// Only exposed functions are modeled. A function is exposed when it is public
// or an entry point; private and friend-only functions cannot be called from
// a transaction and never reach the generator.
package model

// Visibility is a function's declared visibility.
type Visibility uint8

const (
	VisibilityPrivate Visibility = 0
	VisibilityPublic  Visibility = 1
	VisibilityFriend  Visibility = 3
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityPublic:
		return "public"
	case VisibilityFriend:
		return "friend"
	default:
		return "unknown"
	}
}

// Function is an exposed function signature.
type Function struct {
	Name           string
	Visibility     Visibility
	IsEntry        bool
	TypeParameters []AbilitySet
	Parameters     []Type
	Return         []Type
}

// Exposed reports whether the function can be called from a transaction.
func (f *Function) Exposed() bool {
	return f.Visibility == VisibilityPublic || f.IsEntry
}
