// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package circuit defines the solvency constraint system: a witness
// (assets, liabilities) satisfies it if and only if both values fit in
// 64 bits, assets >= liabilities, and assets - liabilities strictly
// exceeds the public threshold.
//
// Satisfiability is the only output; the proof system can produce a valid
// proof exactly when every constraint holds. There is no partial result.
package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
	"github.com/consensys/gnark/std/math/cmp"
)

const (
	// ValueBits is the width of every monetary value in the statement.
	// Values are unsigned and must be strictly below 2^ValueBits.
	ValueBits = 64

	// NbPublicInputs is the number of public inputs of the circuit
	// (the threshold), fixed by the wire contract with verifiers.
	NbPublicInputs = 1
)

// Circuit proves assets - liabilities > threshold without revealing
// assets or liabilities.
type Circuit struct {
	// -------------------------------------------------------------------------
	// SECRET INPUTS

	Assets      frontend.Variable
	Liabilities frontend.Variable

	// -------------------------------------------------------------------------
	// PUBLIC INPUTS

	Threshold frontend.Variable `gnark:",public"`
}

// Define declares the constraints, all of them unconditional; a witness
// either satisfies the conjunction or the statement is unprovable.
func (c *Circuit) Define(api frontend.API) error {
	// the comparison gadgets below reason about 64-bit differences inside
	// the field, which is meaningless unless the field is comfortably wider
	if api.Compiler().FieldBitLen() < ValueBits+2 {
		return fmt.Errorf("field must be at least %d bits wide for %d-bit comparisons", ValueBits+2, ValueBits)
	}

	// decompose each value into exactly ValueBits bits with enforced
	// reconstruction. A field element whose canonical magnitude exceeds
	// 2^64 cannot alias a small value past this point.
	bits.ToBinary(api, c.Assets, bits.WithNbDigits(ValueBits))
	bits.ToBinary(api, c.Liabilities, bits.WithNbDigits(ValueBits))
	bits.ToBinary(api, c.Threshold, bits.WithNbDigits(ValueBits))

	maxDiff := new(big.Int).Lsh(big.NewInt(1), ValueBits)
	maxDiff.Sub(maxDiff, big.NewInt(1))
	cmp64 := cmp.NewBoundedComparator(api, maxDiff, false)

	// assets - liabilities wraps around the field order when liabilities
	// is the larger value, so the subtraction is gated on
	// liabilities <= assets. The comparator output is pinned to 1 rather
	// than merely computed.
	api.AssertIsEqual(cmp64.IsLessEq(c.Liabilities, c.Assets), 1)

	capital := api.Sub(c.Assets, c.Liabilities)

	// strict inequality: capital == threshold does not satisfy the relation
	api.AssertIsEqual(cmp64.IsLess(c.Threshold, capital), 1)

	return nil
}
