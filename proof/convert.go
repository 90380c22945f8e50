package proof

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

// FromGroth16 flattens a backend proof into the wire form.
func FromGroth16(gp groth16.Proof) (*Proof, error) {
	bp, ok := gp.(*groth16_bn254.Proof)
	if !ok {
		return nil, ErrUnexpectedProofType
	}
	if len(bp.Commitments) != 0 {
		return nil, ErrUnexpectedCommitments
	}

	var p Proof
	p.A[0] = bp.Ar.X.BigInt(new(big.Int))
	p.A[1] = bp.Ar.Y.BigInt(new(big.Int))
	// the imaginary limb of each G2 coordinate comes first on the wire
	p.B[0][0] = bp.Bs.X.A1.BigInt(new(big.Int))
	p.B[0][1] = bp.Bs.X.A0.BigInt(new(big.Int))
	p.B[1][0] = bp.Bs.Y.A1.BigInt(new(big.Int))
	p.B[1][1] = bp.Bs.Y.A0.BigInt(new(big.Int))
	p.C[0] = bp.Krs.X.BigInt(new(big.Int))
	p.C[1] = bp.Krs.Y.BigInt(new(big.Int))
	return &p, nil
}

// Groth16 reconstructs the backend proof object from the wire form. Every
// coordinate must be a canonical base field element and every point must
// lie on its curve and in the prime-order subgroup; the pairing check is
// not defined outside the subgroup.
func (p *Proof) Groth16() (groth16.Proof, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	mod := fp.Modulus()
	for i, e := range p.elements() {
		if e.Cmp(mod) >= 0 {
			return nil, fmt.Errorf("proof element %d: %w", i, ErrCoordinateRange)
		}
	}

	var bp groth16_bn254.Proof
	bp.Ar.X.SetBigInt(p.A[0])
	bp.Ar.Y.SetBigInt(p.A[1])
	bp.Bs.X.A1.SetBigInt(p.B[0][0])
	bp.Bs.X.A0.SetBigInt(p.B[0][1])
	bp.Bs.Y.A1.SetBigInt(p.B[1][0])
	bp.Bs.Y.A0.SetBigInt(p.B[1][1])
	bp.Krs.X.SetBigInt(p.C[0])
	bp.Krs.Y.SetBigInt(p.C[1])

	for _, g1 := range []*bn254.G1Affine{&bp.Ar, &bp.Krs} {
		if !g1.IsOnCurve() {
			return nil, ErrNotOnCurve
		}
		if !g1.IsInSubGroup() {
			return nil, ErrNotInSubGroup
		}
	}
	if !bp.Bs.IsOnCurve() {
		return nil, ErrNotOnCurve
	}
	if !bp.Bs.IsInSubGroup() {
		return nil, ErrNotInSubGroup
	}
	return &bp, nil
}
