// Package ptb records programmable transaction blocks: pure inputs plus a
// list of Move calls whose results feed later calls.
//
// Generated bindings take their arguments as one of three shapes. *Arg[T]
// is an owned value, either not yet placed in the transaction or already a
// handle to an input or result. Ref[T] and MutRef[T] are borrows of a handle
// taken inside a Scope; a borrow cannot be bound once its scope is closed or
// in a call issued under another scope.
package ptb
