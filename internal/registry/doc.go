// Package registry maps defining addresses to the bindings generated for
// them.
//
// Every package generated in a session registers the addresses its
// datatypes are defined at, together with the alias and Go import path of
// its bindings. While a package is being generated, its BuildContext answers
// "which bindings own this address?" using only the package itself and the
// dependencies it declared, so the result never depends on what else
// happened to be generated earlier in the run.
package registry
