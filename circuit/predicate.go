package circuit

import "math/big"

// InRange reports whether v is a canonical circuit value, that is an
// unsigned integer strictly below 2^ValueBits.
func InRange(v *big.Int) bool {
	return v.Sign() >= 0 && v.BitLen() <= ValueBits
}

// Satisfied evaluates the full constraint system over native integers.
// It mirrors Define constraint for constraint, with every term evaluated
// unconditionally, and serves as the reference oracle in property tests:
// a witness solves the circuit exactly when Satisfied returns true.
// Inputs must be non-nil.
func Satisfied(assets, liabilities, threshold *big.Int) bool {
	inRange := InRange(assets) && InRange(liabilities) && InRange(threshold)
	noUnderflow := liabilities.Cmp(assets) <= 0
	compliant := new(big.Int).Sub(assets, liabilities).Cmp(threshold) > 0
	return inRange && noUnderflow && compliant
}

// SatisfiedUint64 is Satisfied specialized to in-range values.
func SatisfiedUint64(assets, liabilities, threshold uint64) bool {
	return liabilities <= assets && assets-liabilities > threshold
}
