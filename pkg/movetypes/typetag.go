package movetypes

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/movegen/pkg/movetypes/bcs"
)

// TypeTagKind enumerates TypeTag variants in their BCS order.
type TypeTagKind uint8

const (
	TagBool TypeTagKind = iota
	TagU8
	TagU64
	TagU128
	TagAddress
	TagSigner
	TagVector
	TagStruct
	TagU16
	TagU32
	TagU256
)

var primitiveTagNames = map[TypeTagKind]string{
	TagBool:    "bool",
	TagU8:      "u8",
	TagU16:     "u16",
	TagU32:     "u32",
	TagU64:     "u64",
	TagU128:    "u128",
	TagU256:    "u256",
	TagAddress: "address",
	TagSigner:  "signer",
}

// TypeTag names a fully instantiated Move type.
type TypeTag struct {
	Kind   TypeTagKind
	Elem   *TypeTag   // vector element, for TagVector
	Struct *StructTag // for TagStruct
}

// StructTag names a Move datatype at its defining address.
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

func (t TypeTag) String() string {
	switch t.Kind {
	case TagVector:
		if t.Elem == nil {
			return "vector<?>"
		}
		return "vector<" + t.Elem.String() + ">"
	case TagStruct:
		if t.Struct == nil {
			return "?"
		}
		return t.Struct.String()
	default:
		if n, ok := primitiveTagNames[t.Kind]; ok {
			return n
		}
		return fmt.Sprintf("TypeTagKind(%d)", t.Kind)
	}
}

func (s StructTag) String() string {
	var sb strings.Builder
	sb.WriteString(s.Address.ShortString())
	sb.WriteString("::")
	sb.WriteString(s.Module)
	sb.WriteString("::")
	sb.WriteString(s.Name)
	if len(s.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, p := range s.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

// MarshalBCS writes the variant index followed by the payload.
func (t TypeTag) MarshalBCS(e *bcs.Encoder) error {
	e.WriteULEB128(uint64(t.Kind))
	switch t.Kind {
	case TagVector:
		if t.Elem == nil {
			return fmt.Errorf("vector type tag without element")
		}
		return t.Elem.MarshalBCS(e)
	case TagStruct:
		if t.Struct == nil {
			return fmt.Errorf("struct type tag without struct")
		}
		return e.Encode(*t.Struct)
	default:
		if _, ok := primitiveTagNames[t.Kind]; !ok {
			return fmt.Errorf("unknown type tag kind %d", t.Kind)
		}
		return nil
	}
}

func (t *TypeTag) UnmarshalBCS(d *bcs.Decoder) error {
	k, err := d.ReadULEB128()
	if err != nil {
		return err
	}
	kind := TypeTagKind(k)
	if k > uint64(TagU256) {
		return fmt.Errorf("unknown type tag kind %d", k)
	}
	*t = TypeTag{Kind: kind}
	switch kind {
	case TagVector:
		t.Elem = new(TypeTag)
		return t.Elem.UnmarshalBCS(d)
	case TagStruct:
		t.Struct = new(StructTag)
		return d.Decode(t.Struct)
	}
	return nil
}

// MoveType is satisfied by every Go type usable as a Move type argument.
type MoveType interface{}

// Key is implemented by generated bindings of structs with the key ability.
type Key interface {
	ID() ObjectID
}

// MoveStruct is implemented by generated bindings of Move datatypes and by
// the framework wrappers in this package.
type MoveStruct interface {
	StructTag() StructTag
}

// Phantom marks a phantom type parameter that no field mentions. It occupies
// no bytes on the wire.
type Phantom[T any] struct{}

var (
	u128Type     = reflect.TypeFor[U128]()
	u256Type     = reflect.TypeFor[U256]()
	addressType  = reflect.TypeFor[Address]()
	objectIDType = reflect.TypeFor[ObjectID]()
	structType   = reflect.TypeFor[MoveStruct]()
)

// TypeTagOf derives the TypeTag of the Go type T. A plain Go string is
// 0x1::string::String; use ASCIIString or TypeName for the other Move string
// types.
func TypeTagOf[T any]() (TypeTag, error) {
	return typeTagOf(reflect.TypeFor[T]())
}

// MustTypeTagOf is TypeTagOf that panics on error.
func MustTypeTagOf[T any]() TypeTag {
	t, err := TypeTagOf[T]()
	if err != nil {
		panic(err)
	}
	return t
}

func typeTagOf(t reflect.Type) (TypeTag, error) {
	if t.Implements(structType) {
		s := reflect.Zero(t).Interface().(MoveStruct).StructTag()
		return TypeTag{Kind: TagStruct, Struct: &s}, nil
	}
	switch t {
	case u128Type:
		return TypeTag{Kind: TagU128}, nil
	case u256Type:
		return TypeTag{Kind: TagU256}, nil
	case addressType:
		return TypeTag{Kind: TagAddress}, nil
	case objectIDType:
		s := StructTag{Address: FrameworkAddress, Module: "object", Name: "ID"}
		return TypeTag{Kind: TagStruct, Struct: &s}, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return TypeTag{Kind: TagBool}, nil
	case reflect.Uint8:
		return TypeTag{Kind: TagU8}, nil
	case reflect.Uint16:
		return TypeTag{Kind: TagU16}, nil
	case reflect.Uint32:
		return TypeTag{Kind: TagU32}, nil
	case reflect.Uint64:
		return TypeTag{Kind: TagU64}, nil
	case reflect.String:
		s := StructTag{Address: StdAddress, Module: "string", Name: "String"}
		return TypeTag{Kind: TagStruct, Struct: &s}, nil
	case reflect.Slice:
		elem, err := typeTagOf(t.Elem())
		if err != nil {
			return TypeTag{}, err
		}
		return TypeTag{Kind: TagVector, Elem: &elem}, nil
	}
	return TypeTag{}, fmt.Errorf("go type %s has no move type tag", t)
}
