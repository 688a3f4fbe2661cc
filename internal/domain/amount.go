package domain

import (
	"fmt"

	"github.com/holiman/uint256"
)

// MaxAmount is the largest admissible quantity: amounts are 128-bit
// non-negative integers, so anything that does not fit in 128 bits is
// rejected at the boundary.
var MaxAmount = func() *uint256.Int {
	one := uint256.NewInt(1)
	max := uint256.NewInt(0).Lsh(one, 128)
	return max.Sub(max, one)
}()

// ParseAmount parses a non-negative decimal string into an amount and
// enforces the 128-bit bound.
func ParseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if v.Gt(MaxAmount) {
		return nil, fmt.Errorf("amount %q exceeds 128 bits", s)
	}
	return v, nil
}

// FormatAmount renders an amount as a decimal string. Nil is rendered as "0"
// so optional fields marshal cleanly.
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
