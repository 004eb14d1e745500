// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines abilities, the capability flags Move attaches to
// datatypes and type parameters.
//
// Why a bitmask?
//
// Compiled modules store abilities as a single byte with one bit per ability.
// Keeping the same layout makes decoding a direct assignment and makes
// constraint checks a mask test.
package model

import "strings"

// Ability is one Move ability bit.
type Ability uint8

const (
	AbilityCopy  Ability = 0x1
	AbilityDrop  Ability = 0x2
	AbilityStore Ability = 0x4
	AbilityKey   Ability = 0x8
)

var abilityNames = []struct {
	a    Ability
	name string
}{
	{AbilityCopy, "copy"},
	{AbilityDrop, "drop"},
	{AbilityStore, "store"},
	{AbilityKey, "key"},
}

// AbilitySet is a set of abilities.
type AbilitySet uint8

// AllAbilities is the union of every known ability bit.
const AllAbilities = AbilitySet(AbilityCopy | AbilityDrop | AbilityStore | AbilityKey)

// NewAbilitySet builds a set from individual abilities.
func NewAbilitySet(abilities ...Ability) AbilitySet {
	var s AbilitySet
	for _, a := range abilities {
		s |= AbilitySet(a)
	}
	return s
}

func (s AbilitySet) Has(a Ability) bool {
	return s&AbilitySet(a) != 0
}

// Valid reports whether only known ability bits are set.
func (s AbilitySet) Valid() bool {
	return s&^AllAbilities == 0
}

func (s AbilitySet) String() string {
	var parts []string
	for _, n := range abilityNames {
		if s.Has(n.a) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ", ")
}
