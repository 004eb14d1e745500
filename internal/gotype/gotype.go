// Package gotype is a small tree of Go type expressions used by the code
// generator, together with the import bookkeeping needed to print them.
package gotype

import (
	"strings"
)

// Kind discriminates Expr nodes.
type Kind uint8

const (
	// Ident is a predeclared type, a type parameter, or a type declared in
	// the file being generated.
	Ident Kind = iota + 1
	// Qualified is a type declared in another package.
	Qualified
	Slice
	Pointer
)

// Expr is a Go type expression. Args instantiate generic Ident and
// Qualified types.
type Expr struct {
	Kind Kind
	Name string
	Path string
	Elem *Expr
	Args []Expr
}

// Named returns an unqualified type, optionally instantiated.
func Named(name string, args ...Expr) Expr {
	return Expr{Kind: Ident, Name: name, Args: args}
}

// From returns the type name declared in the package at path.
func From(path, name string, args ...Expr) Expr {
	return Expr{Kind: Qualified, Path: path, Name: name, Args: args}
}

// SliceOf returns []elem.
func SliceOf(elem Expr) Expr {
	return Expr{Kind: Slice, Elem: &elem}
}

// PointerTo returns *elem.
func PointerTo(elem Expr) Expr {
	return Expr{Kind: Pointer, Elem: &elem}
}

// Walk calls fn for e and every nested expression, depth first.
func (e Expr) Walk(fn func(Expr)) {
	fn(e)
	if e.Elem != nil {
		e.Elem.Walk(fn)
	}
	for _, a := range e.Args {
		a.Walk(fn)
	}
}

// Paths returns the import paths e refers to, in first-seen order.
func (e Expr) Paths() []string {
	var out []string
	seen := map[string]bool{}
	e.Walk(func(x Expr) {
		if x.Kind == Qualified && !seen[x.Path] {
			seen[x.Path] = true
			out = append(out, x.Path)
		}
	})
	return out
}

// Mentions reports whether e refers to the identifier name, such as a type
// parameter.
func (e Expr) Mentions(name string) bool {
	found := false
	e.Walk(func(x Expr) {
		if x.Kind == Ident && x.Name == name {
			found = true
		}
	})
	return found
}

// Qualifier returns the name a file uses for the package at path.
type Qualifier func(path string) string

// Format prints e using q to name imported packages.
func (e Expr) Format(q Qualifier) string {
	var sb strings.Builder
	e.format(&sb, q)
	return sb.String()
}

func (e Expr) format(sb *strings.Builder, q Qualifier) {
	switch e.Kind {
	case Slice:
		sb.WriteString("[]")
		e.Elem.format(sb, q)
		return
	case Pointer:
		sb.WriteByte('*')
		e.Elem.format(sb, q)
		return
	case Qualified:
		if name := q(e.Path); name != "" {
			sb.WriteString(name)
			sb.WriteByte('.')
		}
	}
	sb.WriteString(e.Name)
	if len(e.Args) > 0 {
		sb.WriteByte('[')
		for i, a := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.format(sb, q)
		}
		sb.WriteByte(']')
	}
}

// String prints e with every package named by the last element of its path.
func (e Expr) String() string {
	return e.Format(func(path string) string {
		return path[strings.LastIndexByte(path, '/')+1:]
	})
}
