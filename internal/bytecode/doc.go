// Package bytecode decodes compiled Move modules as published on Sui and
// normalizes them into model.Module values.
//
// Decoding happens in two steps. Parse reads the binary container into a
// CompiledModule whose tables still refer to each other by index. Normalize
// resolves those indexes into model types and drops everything the code
// generator does not need: function bodies, constants, friend lists and
// non-exposed functions. Decode runs both.
//
// Function bodies are still walked instruction by instruction, because their
// encoded length is only known by reading every operand.
package bytecode
