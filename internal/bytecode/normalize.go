package bytecode

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/vk/movegen/internal/model"
)

// Decode parses and normalizes one compiled module.
func Decode(data []byte) (*model.Module, error) {
	cm, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cm.Normalize()
}

// Normalize resolves table indexes into a model.Module. Only exposed
// functions are kept; native structs are skipped. Declarations are sorted by
// name.
func (m *CompiledModule) Normalize() (*model.Module, error) {
	self, err := m.moduleHandle(m.SelfHandle)
	if err != nil {
		return nil, err
	}
	addr, name, err := m.moduleIdentity(self)
	if err != nil {
		return nil, err
	}
	out := &model.Module{Address: addr, Name: name}

	for i, def := range m.StructDefs {
		if def.Native {
			continue
		}
		s, err := m.normalizeStruct(def)
		if err != nil {
			return nil, fmt.Errorf("struct definition %d: %w", i, err)
		}
		out.Structs = append(out.Structs, s)
	}
	for i, def := range m.EnumDefs {
		e, err := m.normalizeEnum(def)
		if err != nil {
			return nil, fmt.Errorf("enum definition %d: %w", i, err)
		}
		out.Enums = append(out.Enums, e)
	}
	for i, def := range m.FunctionDefs {
		if def.Visibility != model.VisibilityPublic && !def.IsEntry {
			continue
		}
		f, err := m.normalizeFunction(def)
		if err != nil {
			return nil, fmt.Errorf("function definition %d: %w", i, err)
		}
		out.Functions = append(out.Functions, f)
	}
	out.Sort()
	return out, nil
}

func refErr(format string, args ...any) *DecodeError {
	return errorf(-1, format, args...)
}

func (m *CompiledModule) moduleHandle(i int) (ModuleHandle, error) {
	if i < 0 || i >= len(m.ModuleHandles) {
		return ModuleHandle{}, refErr("module handle index %d out of range (%d handles)", i, len(m.ModuleHandles))
	}
	return m.ModuleHandles[i], nil
}

func (m *CompiledModule) identifier(i int) (string, error) {
	if i < 0 || i >= len(m.Identifiers) {
		return "", refErr("identifier index %d out of range (%d identifiers)", i, len(m.Identifiers))
	}
	return m.Identifiers[i], nil
}

func (m *CompiledModule) address(i int) (model.Address, error) {
	if i < 0 || i >= len(m.AddressIdentifiers) {
		return model.Address{}, refErr("address index %d out of range (%d addresses)", i, len(m.AddressIdentifiers))
	}
	return m.AddressIdentifiers[i], nil
}

func (m *CompiledModule) signature(i int) ([]SignatureToken, error) {
	if i < 0 || i >= len(m.Signatures) {
		return nil, refErr("signature index %d out of range (%d signatures)", i, len(m.Signatures))
	}
	return m.Signatures[i], nil
}

func (m *CompiledModule) datatypeHandle(i int) (DatatypeHandle, error) {
	if i < 0 || i >= len(m.DatatypeHandles) {
		return DatatypeHandle{}, refErr("datatype handle index %d out of range (%d handles)", i, len(m.DatatypeHandles))
	}
	return m.DatatypeHandles[i], nil
}

func (m *CompiledModule) moduleIdentity(h ModuleHandle) (model.Address, string, error) {
	addr, err := m.address(h.Address)
	if err != nil {
		return model.Address{}, "", err
	}
	name, err := m.identifier(h.Name)
	if err != nil {
		return model.Address{}, "", err
	}
	return addr, name, nil
}

func (m *CompiledModule) normalizeStruct(def StructDefinition) (*model.Struct, error) {
	h, err := m.datatypeHandle(def.Handle)
	if err != nil {
		return nil, err
	}
	name, err := m.identifier(h.Name)
	if err != nil {
		return nil, err
	}
	fields, err := m.normalizeFields(def.Fields, len(h.TypeParameters))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &model.Struct{
		Name:           name,
		Abilities:      h.Abilities,
		TypeParameters: h.TypeParameters,
		Fields:         fields,
	}, nil
}

func (m *CompiledModule) normalizeEnum(def EnumDefinition) (*model.Enum, error) {
	h, err := m.datatypeHandle(def.Handle)
	if err != nil {
		return nil, err
	}
	name, err := m.identifier(h.Name)
	if err != nil {
		return nil, err
	}
	e := &model.Enum{
		Name:           name,
		Abilities:      h.Abilities,
		TypeParameters: h.TypeParameters,
	}
	for _, v := range def.Variants {
		vname, err := m.identifier(v.Name)
		if err != nil {
			return nil, err
		}
		fields, err := m.normalizeFields(v.Fields, len(h.TypeParameters))
		if err != nil {
			return nil, fmt.Errorf("%s::%s: %w", name, vname, err)
		}
		e.Variants = append(e.Variants, model.Variant{Name: vname, Fields: fields})
	}
	return e, nil
}

func (m *CompiledModule) normalizeFields(defs []FieldDefinition, typeParams int) ([]model.Field, error) {
	fields := make([]model.Field, 0, len(defs))
	for _, f := range defs {
		name, err := m.identifier(f.Name)
		if err != nil {
			return nil, err
		}
		t, err := m.normalizeType(f.Type, typeParams)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields = append(fields, model.Field{Name: name, Type: t})
	}
	return fields, nil
}

func (m *CompiledModule) normalizeFunction(def FunctionDefinition) (*model.Function, error) {
	if def.Handle < 0 || def.Handle >= len(m.FunctionHandles) {
		return nil, refErr("function handle index %d out of range (%d handles)", def.Handle, len(m.FunctionHandles))
	}
	h := m.FunctionHandles[def.Handle]
	name, err := m.identifier(h.Name)
	if err != nil {
		return nil, err
	}
	params, err := m.normalizeSignature(h.Parameters, len(h.TypeParameters))
	if err != nil {
		return nil, fmt.Errorf("%s parameters: %w", name, err)
	}
	ret, err := m.normalizeSignature(h.Return, len(h.TypeParameters))
	if err != nil {
		return nil, fmt.Errorf("%s return: %w", name, err)
	}
	return &model.Function{
		Name:           name,
		Visibility:     def.Visibility,
		IsEntry:        def.IsEntry,
		TypeParameters: h.TypeParameters,
		Parameters:     params,
		Return:         ret,
	}, nil
}

func (m *CompiledModule) normalizeSignature(idx, typeParams int) ([]model.Type, error) {
	sig, err := m.signature(idx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Type, 0, len(sig))
	for _, tok := range sig {
		t, err := m.normalizeType(tok, typeParams)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

var primitiveTokens = map[byte]model.TypeKind{
	TokenBool:    model.KindBool,
	TokenU8:      model.KindU8,
	TokenU16:     model.KindU16,
	TokenU32:     model.KindU32,
	TokenU64:     model.KindU64,
	TokenU128:    model.KindU128,
	TokenU256:    model.KindU256,
	TokenAddress: model.KindAddress,
	TokenSigner:  model.KindSigner,
}

func (m *CompiledModule) normalizeType(tok SignatureToken, typeParams int) (model.Type, error) {
	if k, ok := primitiveTokens[tok.Tag]; ok {
		return model.Primitive(k), nil
	}
	switch tok.Tag {
	case TokenVector, TokenReference, TokenMutableReference:
		elem, err := m.normalizeType(*tok.Elem, typeParams)
		if err != nil {
			return model.Type{}, err
		}
		switch tok.Tag {
		case TokenVector:
			return model.Vector(elem), nil
		case TokenReference:
			return model.Reference(elem), nil
		default:
			return model.MutableReference(elem), nil
		}
	case TokenTypeParameter:
		if tok.Param >= typeParams {
			return model.Type{}, refErr("type parameter %d out of range (%d declared)", tok.Param, typeParams)
		}
		p, err := safecast.Conv[uint16](tok.Param)
		if err != nil {
			return model.Type{}, refErr("type parameter %d: %v", tok.Param, err)
		}
		return model.TypeParam(p), nil
	case TokenDatatype, TokenDatatypeInst:
		h, err := m.datatypeHandle(tok.Handle)
		if err != nil {
			return model.Type{}, err
		}
		if len(tok.TypeArgs) != len(h.TypeParameters) {
			return model.Type{}, refErr("datatype handle %d takes %d type arguments, got %d", tok.Handle, len(h.TypeParameters), len(tok.TypeArgs))
		}
		mh, err := m.moduleHandle(h.Module)
		if err != nil {
			return model.Type{}, err
		}
		addr, module, err := m.moduleIdentity(mh)
		if err != nil {
			return model.Type{}, err
		}
		name, err := m.identifier(h.Name)
		if err != nil {
			return model.Type{}, err
		}
		var args []model.Type
		for _, a := range tok.TypeArgs {
			t, err := m.normalizeType(a, typeParams)
			if err != nil {
				return model.Type{}, err
			}
			args = append(args, t)
		}
		return model.Datatype(addr, module, name, args...), nil
	}
	return model.Type{}, refErr("unknown type tag 0x%02x", tok.Tag)
}
