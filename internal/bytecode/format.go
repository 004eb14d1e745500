package bytecode

// Magic is the four-byte prefix of every compiled module.
var Magic = [4]byte{0xA1, 0x1C, 0xEB, 0x0B}

// Supported binary versions.
const (
	MinVersion = 5
	MaxVersion = 7
)

// SuiFlavor is the flavor byte Sui stores in the high byte of the version.
const SuiFlavor = 0x05

// TableKind identifies a table in the module container.
type TableKind uint8

const (
	TableModuleHandles      TableKind = 0x1
	TableDatatypeHandles    TableKind = 0x2
	TableFunctionHandles    TableKind = 0x3
	TableFunctionInst       TableKind = 0x4
	TableSignatures         TableKind = 0x5
	TableConstantPool       TableKind = 0x6
	TableIdentifiers        TableKind = 0x7
	TableAddressIdentifiers TableKind = 0x8
	TableStructDefs         TableKind = 0xA
	TableStructDefInst      TableKind = 0xB
	TableFunctionDefs       TableKind = 0xC
	TableFieldHandle        TableKind = 0xD
	TableFieldInst          TableKind = 0xE
	TableFriendDecls        TableKind = 0xF
	TableMetadata           TableKind = 0x10
	TableEnumDefs           TableKind = 0x11
	TableEnumDefInst        TableKind = 0x12
	TableVariantHandles     TableKind = 0x13
	TableVariantInstHandles TableKind = 0x14
)

func (k TableKind) known() bool {
	return k >= TableModuleHandles && k <= TableVariantInstHandles && k != 0x9
}

// Signature token tags.
const (
	TokenBool             byte = 0x1
	TokenU8               byte = 0x2
	TokenU64              byte = 0x3
	TokenU128             byte = 0x4
	TokenAddress          byte = 0x5
	TokenReference        byte = 0x6
	TokenMutableReference byte = 0x7
	TokenDatatype         byte = 0x8
	TokenTypeParameter    byte = 0x9
	TokenVector           byte = 0xA
	TokenDatatypeInst     byte = 0xB
	TokenSigner           byte = 0xC
	TokenU16              byte = 0xD
	TokenU32              byte = 0xE
	TokenU256             byte = 0xF
)

// Struct definition field information tags.
const (
	StructNative   byte = 0x1
	StructDeclared byte = 0x2
)

// EnumDeclared is the only enum definition flag.
const EnumDeclared byte = 0x2

// Function definition extra flags.
const (
	FunctionNative byte = 0x2
	FunctionEntry  byte = 0x4
)

// JumpTableFull is the only jump table flavor.
const JumpTableFull byte = 0x1

// operand describes how an opcode's operands are encoded.
type operand uint8

const (
	opNone operand = iota
	opIndex
	opByte
	opFixed2
	opFixed4
	opFixed8
	opFixed16
	opFixed32
	opIndexU64
)

// opcodes maps every known opcode to its operand encoding.
var opcodes = map[byte]operand{
	0x01: opNone,     // pop
	0x02: opNone,     // ret
	0x03: opIndex,    // br_true
	0x04: opIndex,    // br_false
	0x05: opIndex,    // branch
	0x06: opFixed8,   // ld_u64
	0x07: opIndex,    // ld_const
	0x08: opNone,     // ld_true
	0x09: opNone,     // ld_false
	0x0A: opByte,     // copy_loc
	0x0B: opByte,     // move_loc
	0x0C: opByte,     // st_loc
	0x0D: opByte,     // mut_borrow_loc
	0x0E: opByte,     // imm_borrow_loc
	0x0F: opIndex,    // mut_borrow_field
	0x10: opIndex,    // imm_borrow_field
	0x11: opIndex,    // call
	0x12: opIndex,    // pack
	0x13: opIndex,    // unpack
	0x14: opNone,     // read_ref
	0x15: opNone,     // write_ref
	0x16: opNone,     // add
	0x17: opNone,     // sub
	0x18: opNone,     // mul
	0x19: opNone,     // mod
	0x1A: opNone,     // div
	0x1B: opNone,     // bit_or
	0x1C: opNone,     // bit_and
	0x1D: opNone,     // xor
	0x1E: opNone,     // or
	0x1F: opNone,     // and
	0x20: opNone,     // not
	0x21: opNone,     // eq
	0x22: opNone,     // neq
	0x23: opNone,     // lt
	0x24: opNone,     // gt
	0x25: opNone,     // le
	0x26: opNone,     // ge
	0x27: opNone,     // abort
	0x28: opNone,     // nop
	0x29: opIndex,    // exists (deprecated)
	0x2A: opIndex,    // mut_borrow_global (deprecated)
	0x2B: opIndex,    // imm_borrow_global (deprecated)
	0x2C: opIndex,    // move_from (deprecated)
	0x2D: opIndex,    // move_to (deprecated)
	0x2E: opNone,     // freeze_ref
	0x2F: opNone,     // shl
	0x30: opNone,     // shr
	0x31: opByte,     // ld_u8
	0x32: opFixed16,  // ld_u128
	0x33: opNone,     // cast_u8
	0x34: opNone,     // cast_u64
	0x35: opNone,     // cast_u128
	0x36: opIndex,    // mut_borrow_field_generic
	0x37: opIndex,    // imm_borrow_field_generic
	0x38: opIndex,    // call_generic
	0x39: opIndex,    // pack_generic
	0x3A: opIndex,    // unpack_generic
	0x3B: opIndex,    // exists_generic (deprecated)
	0x3C: opIndex,    // mut_borrow_global_generic (deprecated)
	0x3D: opIndex,    // imm_borrow_global_generic (deprecated)
	0x3E: opIndex,    // move_from_generic (deprecated)
	0x3F: opIndex,    // move_to_generic (deprecated)
	0x40: opIndexU64, // vec_pack
	0x41: opIndex,    // vec_len
	0x42: opIndex,    // vec_imm_borrow
	0x43: opIndex,    // vec_mut_borrow
	0x44: opIndex,    // vec_push_back
	0x45: opIndex,    // vec_pop_back
	0x46: opIndexU64, // vec_unpack
	0x47: opIndex,    // vec_swap
	0x48: opFixed2,   // ld_u16
	0x49: opFixed4,   // ld_u32
	0x4A: opFixed32,  // ld_u256
	0x4B: opNone,     // cast_u16
	0x4C: opNone,     // cast_u32
	0x4D: opNone,     // cast_u256
	0x4E: opIndex,    // pack_variant
	0x4F: opIndex,    // pack_variant_generic
	0x50: opIndex,    // unpack_variant
	0x51: opIndex,    // unpack_variant_imm_ref
	0x52: opIndex,    // unpack_variant_mut_ref
	0x53: opIndex,    // unpack_variant_generic
	0x54: opIndex,    // unpack_variant_generic_imm_ref
	0x55: opIndex,    // unpack_variant_generic_mut_ref
	0x56: opIndex,    // variant_switch
}
