// Package codegen turns a decoded Move package into a declaration-level
// description of its Go bindings.
//
// The output is a list of Files holding type and call-stub declarations.
// Nothing here produces source text; the render package prints Files.
//
// Each Move module becomes one Go package. Structs and enums become Go
// structs with JSON tags and BCS layout matching the Move value, plus
// StructTag and TypeOriginID methods. Exposed functions become call stubs
// that record a Move call on a ptb.Builder.
package codegen
