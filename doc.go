// Package solvency implements a compliance proof protocol for asset
// reserves: an institution proves in zero knowledge that its assets exceed
// its liabilities by more than a public threshold, without revealing either
// amount.
//
// The protocol has three stages, one package each:
//   - circuit: the Groth16 constraint system over BN254 encoding the
//     solvency predicate assets - liabilities > threshold on 64-bit values,
//   - prover: witness construction and proof generation against a trusted
//     setup, producing a portable attestation,
//   - gateway: the acceptance state machine that verifies attestations,
//     binds them to an authorized signer and rejects replays.
//
// Proving and verifying keys are managed by the setup package; accepted
// attestations and authorization state persist through the ledger package.
package solvency

import (
	"github.com/blang/semver/v4"
	"github.com/consensys/gnark-crypto/ecc"
)

var Version = semver.MustParse("0.2.0")

// Curve returns the pairing curve the protocol is fixed to.
func Curve() ecc.ID {
	return ecc.BN254
}
