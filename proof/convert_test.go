package proof

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-solvency/circuit"
)

// provePipeline compiles the solvency circuit, runs a fresh setup and
// produces a backend proof for the given statement.
func provePipeline(t *testing.T, assets, liabilities, threshold uint64) (groth16.Proof, groth16.VerifyingKey) {
	t.Helper()

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit.Circuit{})
	require.NoError(t, err)

	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)

	assignment := &circuit.Circuit{Assets: assets, Liabilities: liabilities, Threshold: threshold}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)

	gp, err := groth16.Prove(ccs, pk, w)
	require.NoError(t, err)
	return gp, vk
}

func TestWireProofRoundTrip(t *testing.T) {
	gp, vk := provePipeline(t, 1000000, 400000, 500000)

	p, err := FromGroth16(gp)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	signals := &PublicSignals{big.NewInt(500000)}
	require.NoError(t, Verify(p, vk, signals))

	// the reconstructed backend proof verifies too
	back, err := p.Groth16()
	require.NoError(t, err)
	w, err := PublicWitness(signals)
	require.NoError(t, err)
	require.NoError(t, groth16.Verify(back, vk, w))

	// a different claimed threshold is a different public input
	require.Error(t, Verify(p, vk, &PublicSignals{big.NewInt(499999)}))

	// swapping the G2 limbs of X moves the point; verification must fail
	tampered := *p
	tampered.B[0][0], tampered.B[0][1] = tampered.B[0][1], tampered.B[0][0]
	require.Error(t, Verify(&tampered, vk, signals))
}

func TestGroth16RejectsBadPoints(t *testing.T) {
	p := sampleProof() // small integers, nowhere near the curve

	_, err := p.Groth16()
	require.ErrorIs(t, err, ErrNotOnCurve)

	p = sampleProof()
	p.A[0] = fp.Modulus() // non-canonical coordinate
	_, err = p.Groth16()
	require.ErrorIs(t, err, ErrCoordinateRange)
}

func TestFromGroth16RejectsForeignProof(t *testing.T) {
	_, err := FromGroth16(groth16.NewProof(ecc.BLS12_381))
	require.ErrorIs(t, err, ErrUnexpectedProofType)
}

func TestPublicWitnessRejectsAliasedSignal(t *testing.T) {
	aliased := new(big.Int).Add(fr.Modulus(), big.NewInt(5))
	_, err := PublicWitness(&PublicSignals{aliased})
	require.ErrorIs(t, err, ErrSignalRange)
}
