package bcs

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"fortio.org/safecast"
)

// Unmarshaler is implemented by types that decode themselves.
type Unmarshaler interface {
	UnmarshalBCS(d *Decoder) error
}

// Unmarshal decodes data into the value pointed to by v. Every byte of data
// must be consumed.
func Unmarshal(data []byte, v any) error {
	d := NewDecoder(data)
	if err := d.Decode(v); err != nil {
		return err
	}
	if d.Remaining() != 0 {
		return fmt.Errorf("bcs: %d trailing bytes", d.Remaining())
	}
	return nil
}

// Decoder reads BCS values from a byte slice.
type Decoder struct {
	data []byte
	pos  int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining reports how many bytes are left unread.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Decode reads one value into the non-nil pointer v.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("bcs: decode target must be a non-nil pointer, got %T", v)
	}
	return d.decodeValue(rv.Elem())
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, d.eof(1)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

// ReadFixed reads exactly n bytes.
func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, d.eof(n)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadULEB128 reads an unsigned LEB128 varint of at most 64 bits.
func (d *Decoder) ReadULEB128() (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 64; shift += 7 {
		b, err := d.ReadByte()
		if err != nil {
			return 0, err
		}
		digit := uint64(b & 0x7f)
		if shift == 63 && digit > 1 {
			return 0, fmt.Errorf("bcs: uleb128 overflows u64 at offset %d", d.pos-1)
		}
		v |= digit << shift
		if b&0x80 == 0 {
			if b == 0 && shift > 0 {
				return 0, fmt.Errorf("bcs: non-canonical uleb128 at offset %d", d.pos-1)
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("bcs: uleb128 longer than 10 bytes at offset %d", d.pos)
}

// ReadLength reads a sequence length and checks it against the bytes left.
func (d *Decoder) ReadLength() (int, error) {
	n, err := d.ReadULEB128()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("bcs: sequence length %d exceeds maximum", n)
	}
	l, err := safecast.Conv[int](n)
	if err != nil {
		return 0, fmt.Errorf("bcs: sequence length: %w", err)
	}
	if l > d.Remaining() {
		return 0, fmt.Errorf("bcs: sequence length %d exceeds %d remaining bytes", l, d.Remaining())
	}
	return l, nil
}

// ReadBytes reads a ULEB128 length-prefixed byte string.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadLength()
	if err != nil {
		return nil, err
	}
	b, err := d.ReadFixed(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (d *Decoder) eof(want int) error {
	return fmt.Errorf("bcs: unexpected end of input at offset %d (want %d bytes, have %d)", d.pos, want, d.Remaining())
}

func (d *Decoder) decodeValue(v reflect.Value) error {
	if v.CanAddr() && v.Addr().Type().Implements(unmarshalerType) {
		return v.Addr().Interface().(Unmarshaler).UnmarshalBCS(d)
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := d.ReadByte()
		if err != nil {
			return err
		}
		switch b {
		case 0:
			v.SetBool(false)
		case 1:
			v.SetBool(true)
		default:
			return fmt.Errorf("bcs: invalid bool byte 0x%02x at offset %d", b, d.pos-1)
		}
	case reflect.Uint8, reflect.Int8:
		b, err := d.ReadByte()
		if err != nil {
			return err
		}
		if v.Kind() == reflect.Uint8 {
			v.SetUint(uint64(b))
		} else {
			v.SetInt(int64(int8(b)))
		}
	case reflect.Uint16, reflect.Int16:
		b, err := d.ReadFixed(2)
		if err != nil {
			return err
		}
		u := binary.LittleEndian.Uint16(b)
		if v.Kind() == reflect.Uint16 {
			v.SetUint(uint64(u))
		} else {
			v.SetInt(int64(int16(u)))
		}
	case reflect.Uint32, reflect.Int32:
		b, err := d.ReadFixed(4)
		if err != nil {
			return err
		}
		u := binary.LittleEndian.Uint32(b)
		if v.Kind() == reflect.Uint32 {
			v.SetUint(uint64(u))
		} else {
			v.SetInt(int64(int32(u)))
		}
	case reflect.Uint64, reflect.Uint, reflect.Int64, reflect.Int:
		b, err := d.ReadFixed(8)
		if err != nil {
			return err
		}
		u := binary.LittleEndian.Uint64(b)
		if v.Kind() == reflect.Uint64 || v.Kind() == reflect.Uint {
			v.SetUint(u)
		} else {
			v.SetInt(int64(u))
		}
	case reflect.String:
		b, err := d.ReadBytes()
		if err != nil {
			return err
		}
		v.SetString(string(b))
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := d.ReadBytes()
			if err != nil {
				return err
			}
			v.SetBytes(b)
			return nil
		}
		n, err := d.ReadLength()
		if err != nil {
			return err
		}
		s := reflect.MakeSlice(v.Type(), n, n)
		for i := range n {
			if err := d.decodeValue(s.Index(i)); err != nil {
				return err
			}
		}
		v.Set(s)
	case reflect.Array:
		for i := range v.Len() {
			if err := d.decodeValue(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Pointer:
		p := reflect.New(v.Type().Elem())
		if err := d.decodeValue(p.Elem()); err != nil {
			return err
		}
		v.Set(p)
	case reflect.Struct:
		if isEnum(v.Type()) {
			return d.decodeEnum(v)
		}
		for _, i := range encodedFields(v.Type()) {
			if err := d.decodeValue(v.Field(i)); err != nil {
				return fmt.Errorf("%s.%s: %w", v.Type().Name(), v.Type().Field(i).Name, err)
			}
		}
	case reflect.Map:
		return d.decodeMap(v)
	default:
		return fmt.Errorf("bcs: unsupported type %s", v.Type())
	}
	return nil
}

func (d *Decoder) decodeEnum(v reflect.Value) error {
	fields := encodedFields(v.Type())
	idx, err := d.ReadULEB128()
	if err != nil {
		return err
	}
	if idx >= uint64(len(fields)) {
		return fmt.Errorf("bcs: enum %s has no variant %d", v.Type(), idx)
	}
	v.SetZero()
	f := v.Field(fields[idx])
	if f.Kind() != reflect.Pointer {
		return fmt.Errorf("bcs: enum %s field %s is not a pointer", v.Type(), v.Type().Field(fields[idx]).Name)
	}
	return d.decodeValue(f)
}

func (d *Decoder) decodeMap(v reflect.Value) error {
	n, err := d.ReadLength()
	if err != nil {
		return err
	}
	m := reflect.MakeMapWithSize(v.Type(), n)
	for range n {
		k := reflect.New(v.Type().Key()).Elem()
		if err := d.decodeValue(k); err != nil {
			return err
		}
		val := reflect.New(v.Type().Elem()).Elem()
		if err := d.decodeValue(val); err != nil {
			return err
		}
		if m.MapIndex(k).IsValid() {
			return fmt.Errorf("bcs: duplicate map key %v", k.Interface())
		}
		m.SetMapIndex(k, val)
	}
	v.Set(m)
	return nil
}
