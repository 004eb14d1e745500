package bytecode

import (
	"bytes"
	"sort"

	"github.com/vk/movegen/internal/model"
)

// ModuleHandle refers to a module by address and name identifier.
type ModuleHandle struct {
	Address int
	Name    int
}

// DatatypeHandle declares a struct or enum, local or imported.
type DatatypeHandle struct {
	Module         int
	Name           int
	Abilities      model.AbilitySet
	TypeParameters []model.TypeParameter
}

// FunctionHandle declares a function, local or imported.
type FunctionHandle struct {
	Module         int
	Name           int
	Parameters     int
	Return         int
	TypeParameters []model.AbilitySet
}

// SignatureToken is one node of a type in a signature. Handle indexes the
// datatype handle table; Param is a type parameter index.
type SignatureToken struct {
	Tag      byte
	Elem     *SignatureToken
	Handle   int
	TypeArgs []SignatureToken
	Param    int
}

// FieldDefinition is a named field of a struct or variant.
type FieldDefinition struct {
	Name int
	Type SignatureToken
}

// StructDefinition gives a datatype handle its fields.
type StructDefinition struct {
	Handle int
	Native bool
	Fields []FieldDefinition
}

// VariantDefinition is one enum variant.
type VariantDefinition struct {
	Name   int
	Fields []FieldDefinition
}

// EnumDefinition gives a datatype handle its variants.
type EnumDefinition struct {
	Handle   int
	Variants []VariantDefinition
}

// FunctionDefinition is a function defined in this module. Bodies are
// skipped after their length is known.
type FunctionDefinition struct {
	Handle     int
	Visibility model.Visibility
	IsEntry    bool
	IsNative   bool
}

// CompiledModule holds the tables of one module with cross references left
// as indexes.
type CompiledModule struct {
	Version            uint32
	Flavor             uint8
	SelfHandle         int
	ModuleHandles      []ModuleHandle
	DatatypeHandles    []DatatypeHandle
	FunctionHandles    []FunctionHandle
	Signatures         [][]SignatureToken
	Identifiers        []string
	AddressIdentifiers []model.Address
	StructDefs         []StructDefinition
	FunctionDefs       []FunctionDefinition
	EnumDefs           []EnumDefinition
}

type tableHeader struct {
	kind   TableKind
	offset int
	length int
	at     int
}

// Parse reads the binary container of a compiled module.
func Parse(data []byte) (*CompiledModule, error) {
	s := newStream(data, 0)

	magic, err := s.readBytes(len(Magic))
	if err != nil {
		return nil, errorf(0, "module is shorter than its magic number")
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, errorf(0, "bad magic number %x", magic)
	}

	rawVersion, err := s.readU32()
	if err != nil {
		return nil, err
	}
	m := &CompiledModule{
		Version: rawVersion & 0xFFFF,
		Flavor:  uint8(rawVersion >> 24),
	}
	if m.Version < MinVersion || m.Version > MaxVersion {
		return nil, errorf(4, "unsupported binary version %d", m.Version)
	}
	if m.Flavor != 0 && m.Flavor != SuiFlavor {
		return nil, errorf(4, "unsupported binary flavor 0x%02x", m.Flavor)
	}

	headers, err := readTableHeaders(s)
	if err != nil {
		return nil, err
	}

	contentStart := s.offset()
	contentLen := 0
	for _, h := range headers {
		contentLen += h.length
	}
	if s.remaining() < contentLen {
		return nil, errorf(contentStart, "tables need %d bytes, module has %d", contentLen, s.remaining())
	}
	content := data[contentStart : contentStart+contentLen]

	for _, h := range headers {
		ts := newStream(content[h.offset:h.offset+h.length], contentStart+h.offset)
		if err := m.readTable(h.kind, ts); err != nil {
			return nil, err
		}
		if ts.remaining() != 0 {
			return nil, errorf(ts.offset(), "table 0x%x has %d unread bytes", uint8(h.kind), ts.remaining())
		}
	}

	s.pos += contentLen
	if m.SelfHandle, err = s.readIndex(); err != nil {
		return nil, err
	}
	if s.remaining() != 0 {
		return nil, errorf(s.offset(), "%d trailing bytes after module", s.remaining())
	}
	return m, nil
}

func readTableHeaders(s *stream) ([]tableHeader, error) {
	count, err := s.readCount(3)
	if err != nil {
		return nil, err
	}
	headers := make([]tableHeader, 0, count)
	seen := map[TableKind]bool{}
	for range count {
		at := s.offset()
		k, err := s.readByte()
		if err != nil {
			return nil, err
		}
		kind := TableKind(k)
		if !kind.known() {
			return nil, errorf(at, "unknown table kind 0x%02x", k)
		}
		if seen[kind] {
			return nil, errorf(at, "duplicate table kind 0x%02x", k)
		}
		seen[kind] = true
		offset, err := s.readIndex()
		if err != nil {
			return nil, err
		}
		length, err := s.readIndex()
		if err != nil {
			return nil, err
		}
		headers = append(headers, tableHeader{kind: kind, offset: offset, length: length, at: at})
	}

	// Tables must tile the content region with no gaps or overlaps.
	sorted := append([]tableHeader(nil), headers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].offset < sorted[j].offset })
	next := 0
	for _, h := range sorted {
		if h.offset != next {
			return nil, errorf(h.at, "table 0x%02x starts at %d, expected %d", uint8(h.kind), h.offset, next)
		}
		next = h.offset + h.length
	}
	return headers, nil
}

func (m *CompiledModule) readTable(kind TableKind, s *stream) error {
	switch kind {
	case TableModuleHandles:
		return readAll(s, func() error {
			var h ModuleHandle
			var err error
			if h.Address, err = s.readIndex(); err != nil {
				return err
			}
			if h.Name, err = s.readIndex(); err != nil {
				return err
			}
			m.ModuleHandles = append(m.ModuleHandles, h)
			return nil
		})
	case TableDatatypeHandles:
		return readAll(s, func() error {
			h, err := readDatatypeHandle(s)
			if err != nil {
				return err
			}
			m.DatatypeHandles = append(m.DatatypeHandles, h)
			return nil
		})
	case TableFunctionHandles:
		return readAll(s, func() error {
			h, err := readFunctionHandle(s)
			if err != nil {
				return err
			}
			m.FunctionHandles = append(m.FunctionHandles, h)
			return nil
		})
	case TableSignatures:
		return readAll(s, func() error {
			n, err := s.readCount(1)
			if err != nil {
				return err
			}
			sig := make([]SignatureToken, 0, n)
			for range n {
				tok, err := readToken(s, 0)
				if err != nil {
					return err
				}
				sig = append(sig, tok)
			}
			m.Signatures = append(m.Signatures, sig)
			return nil
		})
	case TableIdentifiers:
		return readAll(s, func() error {
			id, err := s.readIdentifier()
			if err != nil {
				return err
			}
			m.Identifiers = append(m.Identifiers, id)
			return nil
		})
	case TableAddressIdentifiers:
		if len(s.data)%model.AddressLength != 0 {
			return errorf(s.offset(), "address table length %d is not a multiple of %d", len(s.data), model.AddressLength)
		}
		return readAll(s, func() error {
			b, err := s.readBytes(model.AddressLength)
			if err != nil {
				return err
			}
			m.AddressIdentifiers = append(m.AddressIdentifiers, model.Address(b))
			return nil
		})
	case TableStructDefs:
		return readAll(s, func() error {
			d, err := readStructDef(s)
			if err != nil {
				return err
			}
			m.StructDefs = append(m.StructDefs, d)
			return nil
		})
	case TableFunctionDefs:
		return readAll(s, func() error {
			d, err := readFunctionDef(s, m.Version)
			if err != nil {
				return err
			}
			m.FunctionDefs = append(m.FunctionDefs, d)
			return nil
		})
	case TableEnumDefs:
		return readAll(s, func() error {
			d, err := readEnumDef(s)
			if err != nil {
				return err
			}
			m.EnumDefs = append(m.EnumDefs, d)
			return nil
		})
	default:
		// Instantiation, constant, field, friend, metadata and variant
		// handle tables carry nothing the schema needs.
		s.pos = len(s.data)
		return nil
	}
}

func readAll(s *stream, one func() error) error {
	for s.remaining() > 0 {
		if err := one(); err != nil {
			return err
		}
	}
	return nil
}

func readAbilities(s *stream) (model.AbilitySet, error) {
	at := s.offset()
	b, err := s.readByte()
	if err != nil {
		return 0, err
	}
	set := model.AbilitySet(b)
	if !set.Valid() {
		return 0, errorf(at, "invalid ability set 0x%02x", b)
	}
	return set, nil
}

func readDatatypeHandle(s *stream) (DatatypeHandle, error) {
	var h DatatypeHandle
	var err error
	if h.Module, err = s.readIndex(); err != nil {
		return h, err
	}
	if h.Name, err = s.readIndex(); err != nil {
		return h, err
	}
	if h.Abilities, err = readAbilities(s); err != nil {
		return h, err
	}
	n, err := s.readCount(2)
	if err != nil {
		return h, err
	}
	for range n {
		c, err := readAbilities(s)
		if err != nil {
			return h, err
		}
		at := s.offset()
		phantom, err := s.readByte()
		if err != nil {
			return h, err
		}
		if phantom > 1 {
			return h, errorf(at, "invalid phantom flag 0x%02x", phantom)
		}
		h.TypeParameters = append(h.TypeParameters, model.TypeParameter{Constraints: c, IsPhantom: phantom == 1})
	}
	return h, nil
}

func readFunctionHandle(s *stream) (FunctionHandle, error) {
	var h FunctionHandle
	var err error
	for _, dst := range []*int{&h.Module, &h.Name, &h.Parameters, &h.Return} {
		if *dst, err = s.readIndex(); err != nil {
			return h, err
		}
	}
	n, err := s.readCount(1)
	if err != nil {
		return h, err
	}
	for range n {
		c, err := readAbilities(s)
		if err != nil {
			return h, err
		}
		h.TypeParameters = append(h.TypeParameters, c)
	}
	return h, nil
}

// maxTokenDepth bounds nesting so hostile input cannot exhaust the stack.
const maxTokenDepth = 256

func readToken(s *stream, depth int) (SignatureToken, error) {
	at := s.offset()
	if depth > maxTokenDepth {
		return SignatureToken{}, errorf(at, "type nested deeper than %d", maxTokenDepth)
	}
	tag, err := s.readByte()
	if err != nil {
		return SignatureToken{}, err
	}
	tok := SignatureToken{Tag: tag}
	switch tag {
	case TokenBool, TokenU8, TokenU16, TokenU32, TokenU64, TokenU128, TokenU256, TokenAddress, TokenSigner:
	case TokenVector, TokenReference, TokenMutableReference:
		elem, err := readToken(s, depth+1)
		if err != nil {
			return tok, err
		}
		tok.Elem = &elem
	case TokenDatatype:
		if tok.Handle, err = s.readIndex(); err != nil {
			return tok, err
		}
	case TokenDatatypeInst:
		if tok.Handle, err = s.readIndex(); err != nil {
			return tok, err
		}
		n, err := s.readCount(1)
		if err != nil {
			return tok, err
		}
		if n == 0 {
			return tok, errorf(at, "generic datatype instantiated with no type arguments")
		}
		for range n {
			arg, err := readToken(s, depth+1)
			if err != nil {
				return tok, err
			}
			tok.TypeArgs = append(tok.TypeArgs, arg)
		}
	case TokenTypeParameter:
		if tok.Param, err = s.readIndex(); err != nil {
			return tok, err
		}
	default:
		return tok, errorf(at, "unknown type tag 0x%02x", tag)
	}
	return tok, nil
}

func readFields(s *stream) ([]FieldDefinition, error) {
	n, err := s.readCount(2)
	if err != nil {
		return nil, err
	}
	fields := make([]FieldDefinition, 0, n)
	for range n {
		var f FieldDefinition
		if f.Name, err = s.readIndex(); err != nil {
			return nil, err
		}
		if f.Type, err = readToken(s, 0); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func readStructDef(s *stream) (StructDefinition, error) {
	var d StructDefinition
	var err error
	if d.Handle, err = s.readIndex(); err != nil {
		return d, err
	}
	at := s.offset()
	tag, err := s.readByte()
	if err != nil {
		return d, err
	}
	switch tag {
	case StructNative:
		d.Native = true
	case StructDeclared:
		if d.Fields, err = readFields(s); err != nil {
			return d, err
		}
	default:
		return d, errorf(at, "invalid struct field information tag 0x%02x", tag)
	}
	return d, nil
}

func readEnumDef(s *stream) (EnumDefinition, error) {
	var d EnumDefinition
	var err error
	if d.Handle, err = s.readIndex(); err != nil {
		return d, err
	}
	at := s.offset()
	flag, err := s.readByte()
	if err != nil {
		return d, err
	}
	if flag != EnumDeclared {
		return d, errorf(at, "invalid enum flag 0x%02x", flag)
	}
	n, err := s.readCount(2)
	if err != nil {
		return d, err
	}
	if n == 0 {
		return d, errorf(at, "enum declares no variants")
	}
	for range n {
		var v VariantDefinition
		if v.Name, err = s.readIndex(); err != nil {
			return d, err
		}
		if v.Fields, err = readFields(s); err != nil {
			return d, err
		}
		d.Variants = append(d.Variants, v)
	}
	return d, nil
}

func readFunctionDef(s *stream, version uint32) (FunctionDefinition, error) {
	var d FunctionDefinition
	var err error
	if d.Handle, err = s.readIndex(); err != nil {
		return d, err
	}
	at := s.offset()
	vis, err := s.readByte()
	if err != nil {
		return d, err
	}
	switch model.Visibility(vis) {
	case model.VisibilityPrivate, model.VisibilityPublic, model.VisibilityFriend:
		d.Visibility = model.Visibility(vis)
	default:
		return d, errorf(at, "invalid visibility 0x%02x", vis)
	}
	at = s.offset()
	flags, err := s.readByte()
	if err != nil {
		return d, err
	}
	if flags&^(FunctionNative|FunctionEntry) != 0 {
		return d, errorf(at, "invalid function flags 0x%02x", flags)
	}
	d.IsNative = flags&FunctionNative != 0
	d.IsEntry = flags&FunctionEntry != 0

	acquires, err := s.readCount(1)
	if err != nil {
		return d, err
	}
	for range acquires {
		if _, err := s.readIndex(); err != nil {
			return d, err
		}
	}
	if d.IsNative {
		return d, nil
	}
	return d, skipCodeUnit(s, version)
}
