// Package bcs implements Binary Canonical Serialization, the wire encoding
// Sui uses for transaction inputs, object contents and the package module map.
//
// Values are encoded by reflection:
//   - bool is one byte (0 or 1); unsigned and signed integers are fixed-width
//     little-endian.
//   - string and []byte are ULEB128 length-prefixed; other slices are a
//     ULEB128 element count followed by the elements.
//   - arrays are their elements with no prefix.
//   - structs are their exported fields in declaration order; a field tagged
//     `bcs:"-"` is skipped.
//   - pointers encode their target; a nil pointer is an error.
//   - maps are a ULEB128 entry count followed by key/value pairs sorted by
//     the encoded key bytes.
//   - a struct implementing Enum encodes as a ULEB128 variant index followed
//     by the single non-nil pointer field that carries the variant.
//
// Types may take over their own encoding by implementing Marshaler and
// Unmarshaler.
package bcs
