package movetypes

import (
	"fmt"

	"github.com/vk/movegen/pkg/movetypes/bcs"
)

// Option is 0x1::option::Option<T>. On the wire it is a vector holding zero
// or one element.
type Option[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

func (o Option[T]) StructTag() StructTag {
	return StructTag{
		Address:    StdAddress,
		Module:     "option",
		Name:       "Option",
		TypeParams: []TypeTag{MustTypeTagOf[T]()},
	}
}

func (o Option[T]) MarshalBCS(e *bcs.Encoder) error {
	if !o.Valid {
		e.WriteULEB128(0)
		return nil
	}
	e.WriteULEB128(1)
	return e.Encode(o.Value)
}

func (o *Option[T]) UnmarshalBCS(d *bcs.Decoder) error {
	n, err := d.ReadULEB128()
	if err != nil {
		return err
	}
	switch n {
	case 0:
		*o = Option[T]{}
		return nil
	case 1:
		var v T
		if err := d.Decode(&v); err != nil {
			return err
		}
		*o = Some(v)
		return nil
	default:
		return fmt.Errorf("option holds %d elements", n)
	}
}
