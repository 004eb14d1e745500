package bcs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Marshaler is implemented by types that encode themselves.
type Marshaler interface {
	MarshalBCS(e *Encoder) error
}

// Enum marks a Go struct that carries a Move enum: one pointer field per
// variant, exactly one of them set.
type Enum interface {
	IsMoveEnum()
}

var (
	marshalerType   = reflect.TypeFor[Marshaler]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
	enumType        = reflect.TypeFor[Enum]()
)

// Marshal returns the BCS encoding of v.
func Marshal(v any) ([]byte, error) {
	e := NewEncoder()
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Encoder accumulates BCS bytes.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the bytes written so far.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Encode appends the encoding of v.
func (e *Encoder) Encode(v any) error {
	if v == nil {
		return fmt.Errorf("bcs: cannot encode nil")
	}
	return e.encodeValue(reflect.ValueOf(v))
}

// WriteULEB128 appends v as an unsigned LEB128 varint.
func (e *Encoder) WriteULEB128(v uint64) {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

// WriteByte appends a single byte.
func (e *Encoder) WriteByte(b byte) error {
	return e.buf.WriteByte(b)
}

// WriteFixed appends b with no length prefix.
func (e *Encoder) WriteFixed(b []byte) {
	e.buf.Write(b)
}

// WriteBytes appends b with a ULEB128 length prefix.
func (e *Encoder) WriteBytes(b []byte) error {
	if len(b) > math.MaxInt32 {
		return fmt.Errorf("bcs: sequence of %d bytes exceeds maximum length", len(b))
	}
	e.WriteULEB128(uint64(len(b)))
	e.buf.Write(b)
	return nil
}

func (e *Encoder) encodeValue(v reflect.Value) error {
	if v.Type().Implements(marshalerType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return fmt.Errorf("bcs: cannot encode nil %s", v.Type())
		}
		return v.Interface().(Marshaler).MarshalBCS(e)
	}
	if v.CanAddr() && v.Addr().Type().Implements(marshalerType) {
		return v.Addr().Interface().(Marshaler).MarshalBCS(e)
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			e.buf.WriteByte(1)
		} else {
			e.buf.WriteByte(0)
		}
	case reflect.Uint8:
		e.buf.WriteByte(byte(v.Uint()))
	case reflect.Uint16:
		e.buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(v.Uint())))
	case reflect.Uint32:
		e.buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(v.Uint())))
	case reflect.Uint64, reflect.Uint:
		e.buf.Write(binary.LittleEndian.AppendUint64(nil, v.Uint()))
	case reflect.Int8:
		e.buf.WriteByte(byte(v.Int()))
	case reflect.Int16:
		e.buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(v.Int())))
	case reflect.Int32:
		e.buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(v.Int())))
	case reflect.Int64, reflect.Int:
		e.buf.Write(binary.LittleEndian.AppendUint64(nil, uint64(v.Int())))
	case reflect.String:
		return e.WriteBytes([]byte(v.String()))
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return e.WriteBytes(v.Bytes())
		}
		if v.Len() > math.MaxInt32 {
			return fmt.Errorf("bcs: sequence of %d elements exceeds maximum length", v.Len())
		}
		e.WriteULEB128(uint64(v.Len()))
		for i := range v.Len() {
			if err := e.encodeValue(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Array:
		for i := range v.Len() {
			if err := e.encodeValue(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Pointer:
		if v.IsNil() {
			return fmt.Errorf("bcs: cannot encode nil %s", v.Type())
		}
		return e.encodeValue(v.Elem())
	case reflect.Struct:
		if isEnum(v.Type()) {
			return e.encodeEnum(v)
		}
		for _, i := range encodedFields(v.Type()) {
			if err := e.encodeValue(v.Field(i)); err != nil {
				return fmt.Errorf("%s.%s: %w", v.Type().Name(), v.Type().Field(i).Name, err)
			}
		}
	case reflect.Map:
		return e.encodeMap(v)
	default:
		return fmt.Errorf("bcs: unsupported type %s", v.Type())
	}
	return nil
}

func (e *Encoder) encodeEnum(v reflect.Value) error {
	fields := encodedFields(v.Type())
	selected := -1
	for variant, i := range fields {
		f := v.Field(i)
		if f.Kind() != reflect.Pointer {
			return fmt.Errorf("bcs: enum %s field %s is not a pointer", v.Type(), v.Type().Field(i).Name)
		}
		if f.IsNil() {
			continue
		}
		if selected >= 0 {
			return fmt.Errorf("bcs: enum %s has more than one variant set", v.Type())
		}
		selected = variant
	}
	if selected < 0 {
		return fmt.Errorf("bcs: enum %s has no variant set", v.Type())
	}
	e.WriteULEB128(uint64(selected))
	return e.encodeValue(v.Field(fields[selected]).Elem())
}

func (e *Encoder) encodeMap(v reflect.Value) error {
	type entry struct {
		key, value []byte
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := Marshal(iter.Key().Interface())
		if err != nil {
			return err
		}
		val, err := Marshal(iter.Value().Interface())
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: k, value: val})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})
	e.WriteULEB128(uint64(len(entries)))
	for _, en := range entries {
		e.buf.Write(en.key)
		e.buf.Write(en.value)
	}
	return nil
}

// encodedFields lists the indexes of the exported, non-skipped fields of t.
func encodedFields(t reflect.Type) []int {
	var out []int
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("bcs") == "-" {
			continue
		}
		out = append(out, i)
	}
	return out
}

func isEnum(t reflect.Type) bool {
	return t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType)
}
