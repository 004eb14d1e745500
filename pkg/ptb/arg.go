package ptb

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeClosed is returned when a borrow outlives its scope.
	ErrScopeClosed = errors.New("borrow scope is closed")
	// ErrForeignScope is returned when a borrow is bound in a call made
	// under a different scope or builder.
	ErrForeignScope = errors.New("borrow belongs to another scope")
	// ErrNoScope is returned when a borrow is bound in a call without a scope.
	ErrNoScope = errors.New("call has no borrow scope")
)

// Input is anything a generated binding accepts as a call argument.
type Input interface {
	bind(c *Call) (Argument, error)
}

// Arg is an owned value of Move type T: either a value not yet placed in
// the transaction or a handle to one that is.
type Arg[T any] struct {
	value    T
	handle   Argument
	owner    *Builder
	resolved bool
}

// Value wraps a Go value that is serialized as a pure input on first use.
func Value[T any](v T) *Arg[T] {
	return &Arg[T]{value: v}
}

// Handle wraps an existing transaction argument.
func Handle[T any](a Argument) *Arg[T] {
	return &Arg[T]{handle: a, resolved: true}
}

// Resolved reports whether the argument already refers to a handle.
func (a *Arg[T]) Resolved() bool {
	return a.resolved
}

// Resolve places an unresolved value into b as a pure input. It is a no-op
// for handles.
func (a *Arg[T]) Resolve(b *Builder) error {
	if a.resolved {
		if a.owner != nil && a.owner != b {
			return fmt.Errorf("argument was resolved against another builder")
		}
		return nil
	}
	h, err := b.Pure(a.value)
	if err != nil {
		return err
	}
	a.handle, a.owner, a.resolved = h, b, true
	return nil
}

// Argument returns the handle of a resolved argument.
func (a *Arg[T]) Argument() (Argument, error) {
	if !a.resolved {
		return Argument{}, fmt.Errorf("argument is not resolved")
	}
	return a.handle, nil
}

// Borrow resolves the argument and takes an immutable borrow in s.
func (a *Arg[T]) Borrow(s *Scope) (Ref[T], error) {
	if err := s.open(); err != nil {
		return Ref[T]{}, err
	}
	if err := a.Resolve(s.b); err != nil {
		return Ref[T]{}, err
	}
	return Ref[T]{handle: a.handle, scope: s}, nil
}

// BorrowMut resolves the argument and takes a mutable borrow in s.
func (a *Arg[T]) BorrowMut(s *Scope) (MutRef[T], error) {
	if err := s.open(); err != nil {
		return MutRef[T]{}, err
	}
	if err := a.Resolve(s.b); err != nil {
		return MutRef[T]{}, err
	}
	return MutRef[T]{handle: a.handle, scope: s}, nil
}

func (a *Arg[T]) bind(c *Call) (Argument, error) {
	if a == nil {
		return Argument{}, fmt.Errorf("nil argument")
	}
	if err := a.Resolve(c.b); err != nil {
		return Argument{}, err
	}
	return a.handle, nil
}

// Ref is an immutable borrow of a T that lives as long as its scope.
type Ref[T any] struct {
	handle Argument
	scope  *Scope
}

// RefOf wraps a handle returned by a call made in s.
func RefOf[T any](s *Scope, a Argument) Ref[T] {
	return Ref[T]{handle: a, scope: s}
}

func (r Ref[T]) bind(c *Call) (Argument, error) {
	return bindBorrow(r.handle, r.scope, c)
}

// MutRef is a mutable borrow of a T that lives as long as its scope.
type MutRef[T any] struct {
	handle Argument
	scope  *Scope
}

// MutRefOf wraps a handle returned by a call made in s.
func MutRefOf[T any](s *Scope, a Argument) MutRef[T] {
	return MutRef[T]{handle: a, scope: s}
}

// Freeze converts a mutable borrow into an immutable one in the same scope.
func (r MutRef[T]) Freeze() Ref[T] {
	return Ref[T](r)
}

func (r MutRef[T]) bind(c *Call) (Argument, error) {
	return bindBorrow(r.handle, r.scope, c)
}

func bindBorrow(h Argument, s *Scope, c *Call) (Argument, error) {
	if c.scope == nil {
		return Argument{}, ErrNoScope
	}
	if s == nil || s != c.scope {
		return Argument{}, ErrForeignScope
	}
	if err := s.open(); err != nil {
		return Argument{}, err
	}
	return h, nil
}

// Scope bounds the lifetime of borrows taken on a builder.
type Scope struct {
	b      *Builder
	closed bool
}

// Builder returns the builder the scope was opened on.
func (s *Scope) Builder() *Builder {
	return s.b
}

// Close ends the scope; borrows taken in it can no longer be bound.
func (s *Scope) Close() {
	s.closed = true
}

func (s *Scope) open() error {
	if s == nil {
		return ErrNoScope
	}
	if s.closed {
		return ErrScopeClosed
	}
	return nil
}
