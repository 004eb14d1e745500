package movetypes

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte width of a Sui address.
const AddressLength = 32

// Address is a 32-byte Sui account or package address.
type Address [AddressLength]byte

var (
	// StdAddress is the Move standard library package (0x1).
	StdAddress = MustParseAddress("0x1")
	// FrameworkAddress is the Sui framework package (0x2).
	FrameworkAddress = MustParseAddress("0x2")
)

// ParseAddress accepts a hex address with or without the 0x prefix. Short
// forms are left-padded with zeros.
func ParseAddress(s string) (Address, error) {
	var a Address
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if h == "" {
		return a, fmt.Errorf("invalid address %q: empty", s)
	}
	if len(h) > 2*AddressLength {
		return a, fmt.Errorf("invalid address %q: longer than %d bytes", s, AddressLength)
	}
	if len(h)%2 == 1 {
		h = "0" + h
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[AddressLength-len(b):], b)
	return a, nil
}

// MustParseAddress is ParseAddress that panics on error. It is meant for
// constants in generated code.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the full 0x-prefixed 64 digit form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ShortString renders the address with leading zeros trimmed, e.g. 0x2.
func (a Address) ShortString() string {
	s := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ObjectID identifies an on-chain object. It shares the address encoding.
type ObjectID [AddressLength]byte

func (id ObjectID) String() string {
	return Address(id).String()
}

func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ObjectID) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*id = ObjectID(parsed)
	return nil
}
