package movetypes

// ASCIIString is 0x1::ascii::String. It encodes like a Go string but keeps
// its own type tag.
type ASCIIString string

func (ASCIIString) StructTag() StructTag {
	return StructTag{Address: StdAddress, Module: "ascii", Name: "String"}
}

// TypeName is 0x1::type_name::TypeName, the canonical name of a Move type.
type TypeName string

func (TypeName) StructTag() StructTag {
	return StructTag{Address: StdAddress, Module: "type_name", Name: "TypeName"}
}
