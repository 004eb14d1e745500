// Package movetypes holds the Go representations of Move primitive and
// framework types that generated bindings are written against: addresses,
// wide integers, Option, phantom markers and the TypeTag model used to
// name instantiated types in a programmable transaction.
package movetypes
