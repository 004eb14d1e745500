// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Package and Module, the containers the provider returns,
// and the type-origin table that ties datatypes to their defining package.
//
// Why track type origins?
//
// Upgrading a Sui package publishes a new address, but datatypes keep the
// identity of the version that first declared them. Generated code must name
// a datatype by that defining address, so every datatype reference inside the
// fetched package is rewritten through this table.
package model

import (
	"fmt"
	"sort"
)

// Module is one normalized Move module.
type Module struct {
	Address   Address
	Name      string
	Structs   []*Struct
	Enums     []*Enum
	Functions []*Function
}

// Empty reports whether the module declares nothing worth generating.
func (m *Module) Empty() bool {
	return len(m.Structs) == 0 && len(m.Enums) == 0 && len(m.Functions) == 0
}

// Sort orders declarations by name.
func (m *Module) Sort() {
	sort.Slice(m.Structs, func(i, j int) bool { return m.Structs[i].Name < m.Structs[j].Name })
	sort.Slice(m.Enums, func(i, j int) bool { return m.Enums[i].Name < m.Enums[j].Name })
	sort.Slice(m.Functions, func(i, j int) bool { return m.Functions[i].Name < m.Functions[j].Name })
}

// DatatypeNames lists the struct and enum names declared by the module.
func (m *Module) DatatypeNames() []string {
	names := make([]string, 0, len(m.Structs)+len(m.Enums))
	for _, s := range m.Structs {
		names = append(names, s.Name)
	}
	for _, e := range m.Enums {
		names = append(names, e.Name)
	}
	return names
}

// TypeOrigin records the package that first defined a datatype.
type TypeOrigin struct {
	Module     string
	Datatype   string
	DefiningID Address
}

// TypeOriginTable maps module and datatype name to the defining address.
type TypeOriginTable map[string]map[string]Address

// NewTypeOriginTable groups origin records by module. A datatype listed twice
// is an error.
func NewTypeOriginTable(origins []TypeOrigin) (TypeOriginTable, error) {
	t := TypeOriginTable{}
	for _, o := range origins {
		byName, ok := t[o.Module]
		if !ok {
			byName = map[string]Address{}
			t[o.Module] = byName
		}
		if _, dup := byName[o.Datatype]; dup {
			return nil, fmt.Errorf("duplicate type origin for %s::%s", o.Module, o.Datatype)
		}
		byName[o.Datatype] = o.DefiningID
	}
	return t, nil
}

// Lookup returns the defining address of module::name.
func (t TypeOriginTable) Lookup(module, name string) (Address, bool) {
	a, ok := t[module][name]
	return a, ok
}

// Addresses returns every distinct defining address in the table, sorted.
func (t TypeOriginTable) Addresses() []Address {
	seen := map[Address]struct{}{}
	var out []Address
	for _, byName := range t {
		for _, a := range byName {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Package is the full schema of one on-chain package version. It is built
// once per fetch and not modified afterwards.
type Package struct {
	Address     Address
	Version     uint64
	Modules     []*Module
	TypeOrigins TypeOriginTable
}

// Module returns the module with the given name.
func (p *Package) Module(name string) (*Module, bool) {
	i := sort.Search(len(p.Modules), func(i int) bool { return p.Modules[i].Name >= name })
	if i < len(p.Modules) && p.Modules[i].Name == name {
		return p.Modules[i], true
	}
	return nil, false
}

// OwnAddresses returns the addresses under which this package's datatypes are
// known: every defining address plus the package's own address.
func (p *Package) OwnAddresses() []Address {
	addrs := p.TypeOrigins.Addresses()
	for _, a := range addrs {
		if a == p.Address {
			return addrs
		}
	}
	return append(addrs, p.Address)
}
