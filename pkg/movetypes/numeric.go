package movetypes

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// U128 is a Move u128 split into little-endian 64-bit halves, which is also
// its BCS layout.
type U128 struct {
	Lo uint64
	Hi uint64
}

// U128From builds a U128 from a uint64.
func U128From(v uint64) U128 {
	return U128{Lo: v}
}

func (u U128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u U128) String() string {
	return u.Big().String()
}

// ParseU128 parses a base-10 u128.
func ParseU128(s string) (U128, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 || b.BitLen() > 128 {
		return U128{}, fmt.Errorf("invalid u128 %q", s)
	}
	lo := new(big.Int).And(b, new(big.Int).SetUint64(^uint64(0)))
	return U128{Lo: lo.Uint64(), Hi: new(big.Int).Rsh(b, 64).Uint64()}, nil
}

// U256 is a Move u256. uint256.Int stores four little-endian words, which is
// the BCS layout.
type U256 = uint256.Int
