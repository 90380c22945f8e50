package main

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-solvency/proof"
	"github.com/consensys/gnark-solvency/prover"
)

// writeTestAttestation crafts a structurally valid envelope without running
// the prover; the commitment is honest, the proof is not expected to verify.
func writeTestAttestation(t *testing.T, mutate func(*prover.Attestation)) string {
	t.Helper()
	p := &proof.Proof{
		A: [2]*big.Int{big.NewInt(1), big.NewInt(2)},
		B: [2][2]*big.Int{
			{big.NewInt(3), big.NewInt(4)},
			{big.NewInt(5), big.NewInt(6)},
		},
		C: [2]*big.Int{big.NewInt(7), big.NewInt(8)},
	}
	signals := proof.PublicSignals{big.NewInt(250000)}
	c, err := proof.Commit(p, &signals)
	require.NoError(t, err)

	att := &prover.Attestation{Proof: p, Signals: signals, Commitment: c}
	if mutate != nil {
		mutate(att)
	}
	data, err := json.Marshal(att)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "attestation.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestReadAttestationIntegrity(t *testing.T) {
	att, _, err := readAttestation(writeTestAttestation(t, nil))
	require.NoError(t, err)
	require.Equal(t, "250000", att.Signals.Threshold().String())

	// a tampered threshold no longer hashes to the stored commitment
	_, _, err = readAttestation(writeTestAttestation(t, func(a *prover.Attestation) {
		a.Signals[0] = big.NewInt(1)
	}))
	require.ErrorContains(t, err, "commitment mismatch")

	_, _, err = readAttestation(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, errNotFound)
}

func TestParseAddress(t *testing.T) {
	_, err := parseAddress("0x1234")
	require.Error(t, err)
	_, err = parseAddress("not an address")
	require.Error(t, err)

	addr, err := parseAddress("0x000000000000000000000000000000000000dEaD")
	require.NoError(t, err)
	require.Equal(t, "0x000000000000000000000000000000000000dEaD", addr.String())
}
