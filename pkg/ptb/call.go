package ptb

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/vk/movegen/pkg/movetypes"
)

// Call assembles one Move call. The first error raised while adding type
// arguments or arguments is kept and returned by Invoke; later steps are
// skipped.
type Call struct {
	b     *Builder
	scope *Scope
	fn    Function
	args  []Argument
	err   error
}

// NewCall starts a call to pkg::module::function on b.
func NewCall(b *Builder, pkg movetypes.Address, module, function string) *Call {
	return &Call{
		b:  b,
		fn: Function{Package: pkg, Module: module, Function: function},
	}
}

// Within makes borrows from s bindable in this call.
func (c *Call) Within(s *Scope) *Call {
	if c.err != nil {
		return c
	}
	if err := s.open(); err != nil {
		c.err = err
		return c
	}
	if s.b != c.b {
		c.err = ErrForeignScope
		return c
	}
	c.scope = s
	return c
}

// TypeArgs appends type arguments, each derived by a TypeTagOf function.
func (c *Call) TypeArgs(tags ...func() (movetypes.TypeTag, error)) *Call {
	for _, tag := range tags {
		if c.err != nil {
			return c
		}
		t, err := tag()
		if err != nil {
			c.err = fmt.Errorf("type argument %d of %s: %w", len(c.fn.TypeArguments), c.fn, err)
			return c
		}
		c.fn.TypeArguments = append(c.fn.TypeArguments, t)
	}
	return c
}

// Args resolves and appends call arguments in order.
func (c *Call) Args(in ...Input) *Call {
	for _, a := range in {
		if c.err != nil {
			return c
		}
		h, err := a.bind(c)
		if err != nil {
			c.err = fmt.Errorf("argument %d of %s: %w", len(c.args), c.fn, err)
			return c
		}
		c.args = append(c.args, h)
	}
	return c
}

// Invoke issues the call and returns its result handle.
func (c *Call) Invoke() (Argument, error) {
	if c.err != nil {
		return Argument{}, c.err
	}
	return c.b.MoveCall(c.fn, c.args)
}

// Exec issues a call whose results are not used.
func (c *Call) Exec() error {
	_, err := c.Invoke()
	return err
}

// InvokeN issues a call that returns n values and hands back one nested
// result handle per value.
func (c *Call) InvokeN(n int) ([]Argument, error) {
	res, err := c.Invoke()
	if err != nil {
		return nil, err
	}
	out := make([]Argument, n)
	for i := range out {
		j, err := safecast.Conv[uint16](i)
		if err != nil {
			return nil, err
		}
		out[i] = Argument{Kind: NestedResult, Index: res.Index, Nested: j}
	}
	return out, nil
}

// ResultArg issues c and wraps its single owned result.
func ResultArg[T any](c *Call) (*Arg[T], error) {
	h, err := c.Invoke()
	if err != nil {
		return nil, err
	}
	a := Handle[T](h)
	a.owner = c.b
	return a, nil
}

// ResultRef issues c and wraps its single immutable reference result.
func ResultRef[T any](c *Call) (Ref[T], error) {
	h, err := c.Invoke()
	if err != nil {
		return Ref[T]{}, err
	}
	return RefOf[T](c.scope, h), nil
}

// ResultMutRef issues c and wraps its single mutable reference result.
func ResultMutRef[T any](c *Call) (MutRef[T], error) {
	h, err := c.Invoke()
	if err != nil {
		return MutRef[T]{}, err
	}
	return MutRefOf[T](c.scope, h), nil
}
