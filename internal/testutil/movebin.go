package testutil

import (
	"encoding/binary"
	"fmt"

	"github.com/vk/movegen/internal/bytecode"
	"github.com/vk/movegen/internal/model"
	"github.com/vk/movegen/pkg/movetypes/bcs"
)

// ModuleFixture describes a module to encode. Hidden functions are written
// with their own visibility and are expected to be dropped on decode.
type ModuleFixture struct {
	Module  *model.Module
	Hidden  []*model.Function
	Version uint32
}

// EncodeModule serializes m as a version 7 compiled module.
func EncodeModule(m *model.Module, hidden ...*model.Function) []byte {
	b, err := ModuleFixture{Module: m, Hidden: hidden, Version: bytecode.MaxVersion}.Encode()
	if err != nil {
		panic(err)
	}
	return b
}

type datatypeKey struct {
	addr         model.Address
	module, name string
}

type moduleWriter struct {
	identifiers map[string]int
	idList      []string
	addresses   map[model.Address]int
	addrList    []model.Address
	modules     map[datatypeKey]int // keyed by address and module only
	moduleList  [][2]int
	datatypes   map[datatypeKey]int
	dtHandles   *bcs.Encoder
	dtCount     int
	signatures  *bcs.Encoder
	sigCount    int
	self        model.Module
}

// Encode produces the compiled module bytes.
func (f ModuleFixture) Encode() ([]byte, error) {
	if f.Version == 0 {
		f.Version = bytecode.MaxVersion
	}
	w := &moduleWriter{
		identifiers: map[string]int{},
		addresses:   map[model.Address]int{},
		modules:     map[datatypeKey]int{},
		datatypes:   map[datatypeKey]int{},
		dtHandles:   bcs.NewEncoder(),
		signatures:  bcs.NewEncoder(),
		self:        *f.Module,
	}
	selfHandle := w.moduleHandle(f.Module.Address, f.Module.Name)

	// Local datatype handles come first so definitions can refer to them by
	// position.
	for _, s := range f.Module.Structs {
		w.declareDatatype(f.Module.Address, f.Module.Name, s.Name, s.Abilities, s.TypeParameters)
	}
	for _, e := range f.Module.Enums {
		w.declareDatatype(f.Module.Address, f.Module.Name, e.Name, e.Abilities, e.TypeParameters)
	}

	emptySig := w.signature(nil)

	structDefs := bcs.NewEncoder()
	for _, s := range f.Module.Structs {
		structDefs.WriteULEB128(uint64(w.datatypes[w.key(s.Name)]))
		_ = structDefs.WriteByte(bytecode.StructDeclared)
		if err := w.fields(structDefs, s.Fields); err != nil {
			return nil, fmt.Errorf("struct %s: %w", s.Name, err)
		}
	}

	enumDefs := bcs.NewEncoder()
	for _, e := range f.Module.Enums {
		enumDefs.WriteULEB128(uint64(w.datatypes[w.key(e.Name)]))
		_ = enumDefs.WriteByte(bytecode.EnumDeclared)
		enumDefs.WriteULEB128(uint64(len(e.Variants)))
		for _, v := range e.Variants {
			enumDefs.WriteULEB128(uint64(w.identifier(v.Name)))
			if err := w.fields(enumDefs, v.Fields); err != nil {
				return nil, fmt.Errorf("enum %s: %w", e.Name, err)
			}
		}
	}

	funcHandles := bcs.NewEncoder()
	funcDefs := bcs.NewEncoder()
	all := append(append([]*model.Function(nil), f.Module.Functions...), f.Hidden...)
	for i, fn := range all {
		params, err := w.signatureOf(fn.Parameters)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		ret, err := w.signatureOf(fn.Return)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		funcHandles.WriteULEB128(uint64(selfHandle))
		funcHandles.WriteULEB128(uint64(w.identifier(fn.Name)))
		funcHandles.WriteULEB128(uint64(params))
		funcHandles.WriteULEB128(uint64(ret))
		funcHandles.WriteULEB128(uint64(len(fn.TypeParameters)))
		for _, c := range fn.TypeParameters {
			_ = funcHandles.WriteByte(byte(c))
		}

		funcDefs.WriteULEB128(uint64(i))
		_ = funcDefs.WriteByte(byte(fn.Visibility))
		var flags byte
		if fn.IsEntry {
			flags |= bytecode.FunctionEntry
		}
		_ = funcDefs.WriteByte(flags)
		funcDefs.WriteULEB128(0) // acquires
		writeBody(funcDefs, emptySig, f.Version)
	}

	// Zero-length tables are omitted, as the compiler does.
	type table struct {
		kind bytecode.TableKind
		data []byte
	}
	ids := bcs.NewEncoder()
	for _, id := range w.idList {
		_ = ids.WriteBytes([]byte(id))
	}
	addrs := bcs.NewEncoder()
	for _, a := range w.addrList {
		addrs.WriteFixed(a[:])
	}
	modHandles := bcs.NewEncoder()
	for _, mh := range w.moduleList {
		modHandles.WriteULEB128(uint64(mh[0]))
		modHandles.WriteULEB128(uint64(mh[1]))
	}
	tables := []table{
		{bytecode.TableModuleHandles, modHandles.Bytes()},
		{bytecode.TableDatatypeHandles, w.dtHandles.Bytes()},
		{bytecode.TableFunctionHandles, funcHandles.Bytes()},
		{bytecode.TableSignatures, w.signatures.Bytes()},
		{bytecode.TableIdentifiers, ids.Bytes()},
		{bytecode.TableAddressIdentifiers, addrs.Bytes()},
		{bytecode.TableStructDefs, structDefs.Bytes()},
		{bytecode.TableFunctionDefs, funcDefs.Bytes()},
		{bytecode.TableMetadata, []byte{0x01, 0x02, 0x03}},
	}
	if f.Version >= 7 {
		tables = append(tables, table{bytecode.TableEnumDefs, enumDefs.Bytes()})
	}

	out := bcs.NewEncoder()
	out.WriteFixed(bytecode.Magic[:])
	out.WriteFixed(binary.LittleEndian.AppendUint32(nil, uint32(bytecode.SuiFlavor)<<24|f.Version))
	var present []table
	for _, t := range tables {
		if len(t.data) > 0 {
			present = append(present, t)
		}
	}
	out.WriteULEB128(uint64(len(present)))
	offset := 0
	for _, t := range present {
		_ = out.WriteByte(byte(t.kind))
		out.WriteULEB128(uint64(offset))
		out.WriteULEB128(uint64(len(t.data)))
		offset += len(t.data)
	}
	for _, t := range present {
		out.WriteFixed(t.data)
	}
	out.WriteULEB128(uint64(selfHandle))
	return out.Bytes(), nil
}

// writeBody emits a short function body that touches every operand shape the
// decoder has to skip.
func writeBody(e *bcs.Encoder, locals int, version uint32) {
	e.WriteULEB128(uint64(locals))
	code := []byte{
		0x06, 1, 2, 3, 4, 5, 6, 7, 8, // ld_u64
		0x01,       // pop
		0x0A, 0x00, // copy_loc
		0x01,
		0x4A, // ld_u256
	}
	code = append(code, make([]byte, 32)...)
	code = append(code,
		0x01,
		0x40, 0x00, 1, 0, 0, 0, 0, 0, 0, 0, // vec_pack
		0x01,
		0x02, // ret
	)
	e.WriteULEB128(9)
	e.WriteFixed(code)
	if version >= 7 {
		e.WriteULEB128(1)
		e.WriteULEB128(0)
		_ = e.WriteByte(bytecode.JumpTableFull)
		e.WriteULEB128(2)
		e.WriteULEB128(0)
		e.WriteULEB128(9)
	}
}

func (w *moduleWriter) key(name string) datatypeKey {
	return datatypeKey{addr: w.self.Address, module: w.self.Name, name: name}
}

func (w *moduleWriter) identifier(s string) int {
	if i, ok := w.identifiers[s]; ok {
		return i
	}
	w.identifiers[s] = len(w.idList)
	w.idList = append(w.idList, s)
	return w.identifiers[s]
}

func (w *moduleWriter) address(a model.Address) int {
	if i, ok := w.addresses[a]; ok {
		return i
	}
	w.addresses[a] = len(w.addrList)
	w.addrList = append(w.addrList, a)
	return w.addresses[a]
}

func (w *moduleWriter) moduleHandle(a model.Address, name string) int {
	k := datatypeKey{addr: a, module: name}
	if i, ok := w.modules[k]; ok {
		return i
	}
	w.modules[k] = len(w.moduleList)
	w.moduleList = append(w.moduleList, [2]int{w.address(a), w.identifier(name)})
	return w.modules[k]
}

func (w *moduleWriter) declareDatatype(a model.Address, module, name string, abilities model.AbilitySet, params []model.TypeParameter) int {
	k := datatypeKey{addr: a, module: module, name: name}
	if i, ok := w.datatypes[k]; ok {
		return i
	}
	mh := w.moduleHandle(a, module)
	w.dtHandles.WriteULEB128(uint64(mh))
	w.dtHandles.WriteULEB128(uint64(w.identifier(name)))
	_ = w.dtHandles.WriteByte(byte(abilities))
	w.dtHandles.WriteULEB128(uint64(len(params)))
	for _, p := range params {
		_ = w.dtHandles.WriteByte(byte(p.Constraints))
		if p.IsPhantom {
			_ = w.dtHandles.WriteByte(1)
		} else {
			_ = w.dtHandles.WriteByte(0)
		}
	}
	w.datatypes[k] = w.dtCount
	w.dtCount++
	return w.datatypes[k]
}

func (w *moduleWriter) fields(e *bcs.Encoder, fields []model.Field) error {
	e.WriteULEB128(uint64(len(fields)))
	for _, f := range fields {
		e.WriteULEB128(uint64(w.identifier(f.Name)))
		if err := w.token(e, f.Type); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

func (w *moduleWriter) signature(tokens []byte) int {
	w.signatures.WriteFixed(tokens)
	if tokens == nil {
		// An empty signature is just its zero count.
		w.signatures.WriteULEB128(0)
	}
	w.sigCount++
	return w.sigCount - 1
}

func (w *moduleWriter) signatureOf(types []model.Type) (int, error) {
	e := bcs.NewEncoder()
	e.WriteULEB128(uint64(len(types)))
	for _, t := range types {
		if err := w.token(e, t); err != nil {
			return 0, err
		}
	}
	return w.signature(e.Bytes()), nil
}

var primitiveTokens = map[model.TypeKind]byte{
	model.KindBool:    bytecode.TokenBool,
	model.KindU8:      bytecode.TokenU8,
	model.KindU16:     bytecode.TokenU16,
	model.KindU32:     bytecode.TokenU32,
	model.KindU64:     bytecode.TokenU64,
	model.KindU128:    bytecode.TokenU128,
	model.KindU256:    bytecode.TokenU256,
	model.KindAddress: bytecode.TokenAddress,
	model.KindSigner:  bytecode.TokenSigner,
}

func (w *moduleWriter) token(e *bcs.Encoder, t model.Type) error {
	if tag, ok := primitiveTokens[t.Kind]; ok {
		return e.WriteByte(tag)
	}
	switch t.Kind {
	case model.KindVector:
		_ = e.WriteByte(bytecode.TokenVector)
		return w.token(e, *t.Elem)
	case model.KindReference:
		_ = e.WriteByte(bytecode.TokenReference)
		return w.token(e, *t.Elem)
	case model.KindMutableReference:
		_ = e.WriteByte(bytecode.TokenMutableReference)
		return w.token(e, *t.Elem)
	case model.KindTypeParameter:
		_ = e.WriteByte(bytecode.TokenTypeParameter)
		e.WriteULEB128(uint64(t.Param))
		return nil
	case model.KindDatatype:
		d := t.Datatype
		params := make([]model.TypeParameter, len(d.TypeArguments))
		h := w.declareDatatype(d.Address, d.Module, d.Name, 0, params)
		if len(d.TypeArguments) == 0 {
			_ = e.WriteByte(bytecode.TokenDatatype)
			e.WriteULEB128(uint64(h))
			return nil
		}
		_ = e.WriteByte(bytecode.TokenDatatypeInst)
		e.WriteULEB128(uint64(h))
		e.WriteULEB128(uint64(len(d.TypeArguments)))
		for _, a := range d.TypeArguments {
			if err := w.token(e, a); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("cannot encode type kind %d", t.Kind)
}
