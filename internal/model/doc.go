// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of a Sui Move package schema:
// the normalized, in-memory form of the modules fetched from the network.
//
// # Core Concepts
//
//   - Package: the root container. It holds the package address, its on-chain
//     version, every module sorted by name and the type-origin table.
//
//   - Module: one compiled Move module after normalization. Structs, enums and
//     exposed functions are kept; private code is not.
//
//   - Type: a tagged tree describing a Move type. Datatype nodes always carry a
//     concrete address; for types of the fetched package this is the defining
//     address recorded in the type-origin table, not the package address.
//
//   - TypeOriginTable: maps (module, datatype) to the address of the package
//     version that first defined the datatype.
//
// Why a separate model package?
//
// The bytecode decoder produces it, the provider finalizes it, and the code
// generator only reads it. Keeping the schema in one place lets each stage be
// tested against hand-built values without going through the binary format.
package model
