package bytecode

import (
	"encoding/binary"
	"unicode/utf8"

	"fortio.org/safecast"
)

// stream reads one region of the module. base is the absolute offset of
// data[0], so errors carry positions within the whole module.
type stream struct {
	data []byte
	pos  int
	base int
}

func newStream(data []byte, base int) *stream {
	return &stream{data: data, base: base}
}

func (s *stream) offset() int {
	return s.base + s.pos
}

func (s *stream) remaining() int {
	return len(s.data) - s.pos
}

func (s *stream) eof(want int) *DecodeError {
	return errorf(s.offset(), "unexpected end of data: want %d bytes, have %d", want, s.remaining())
}

func (s *stream) readByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, s.eof(1)
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *stream) readBytes(n int) ([]byte, error) {
	if n < 0 || s.remaining() < n {
		return nil, s.eof(n)
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *stream) skip(n int) error {
	_, err := s.readBytes(n)
	return err
}

func (s *stream) readU32() (uint32, error) {
	b, err := s.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readULEB reads a ULEB128 value of at most 32 bits, the widest any index or
// length in the format may be.
func (s *stream) readULEB() (uint64, error) {
	start := s.offset()
	var v uint64
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := s.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if v > 0xFFFFFFFF {
				return 0, errorf(start, "uleb128 value %d exceeds u32", v)
			}
			return v, nil
		}
	}
	return 0, errorf(start, "uleb128 longer than 5 bytes")
}

// readIndex reads a ULEB128 index or count as an int.
func (s *stream) readIndex() (int, error) {
	start := s.offset()
	v, err := s.readULEB()
	if err != nil {
		return 0, err
	}
	i, err := safecast.Conv[int](v)
	if err != nil {
		return 0, errorf(start, "index %d: %v", v, err)
	}
	return i, nil
}

// readCount reads a ULEB128 element count and rejects counts that could not
// possibly fit in the bytes left, given at least min bytes per element.
func (s *stream) readCount(min int) (int, error) {
	start := s.offset()
	n, err := s.readIndex()
	if err != nil {
		return 0, err
	}
	if min > 0 && n > s.remaining()/min {
		return 0, errorf(start, "count %d exceeds remaining %d bytes", n, s.remaining())
	}
	return n, nil
}

func (s *stream) readIdentifier() (string, error) {
	start := s.offset()
	n, err := s.readCount(1)
	if err != nil {
		return "", err
	}
	b, err := s.readBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errorf(start, "identifier is not valid utf-8")
	}
	return string(b), nil
}
