// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package prover turns private solvency statements into portable
// attestations: a Groth16 proof in wire form, the public signal vector and
// the commitment a gateway will use as replay key.
package prover

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	"github.com/consensys/gnark-solvency/circuit"
	"github.com/consensys/gnark-solvency/logger"
	"github.com/consensys/gnark-solvency/proof"
)

// Attestation is the portable output of a proving run. It carries
// everything a submitter needs and nothing the institution must keep
// private.
type Attestation struct {
	Proof      *proof.Proof        `json:"proof"`
	Signals    proof.PublicSignals `json:"publicSignals"`
	Commitment proof.Commitment    `json:"commitment"`
}

// Prover generates attestations against a fixed compiled circuit and
// proving key. It is safe for concurrent use; each Attest call is an
// independent blocking computation.
type Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	log zerolog.Logger
}

// New returns a Prover bound to the compiled solvency circuit and its
// proving key, both typically loaded through the setup package.
func New(ccs constraint.ConstraintSystem, pk groth16.ProvingKey) *Prover {
	return &Prover{
		ccs: ccs,
		pk:  pk,
		log: logger.With("prover"),
	}
}

// Attest evaluates the constraint system on st and produces the
// attestation. The call blocks for the whole CPU-bound proving run and is
// not cancellable; it either returns a verifiable attestation or one of
// the typed failures, with no side effects either way.
//
// A cheap native pre-check runs before witness construction so that
// economically unprovable statements fail with a specific reason instead
// of a solver error.
func (p *Prover) Attest(st Statement) (*Attestation, error) {
	if !circuit.SatisfiedUint64(st.Assets, st.Liabilities, st.Threshold) {
		if _, ok := st.Capital(); !ok {
			return nil, fmt.Errorf("%w: liabilities exceed assets", ErrInsufficientCapital)
		}
		return nil, fmt.Errorf("%w: capital does not strictly exceed threshold %d", ErrInsufficientCapital, st.Threshold)
	}

	start := time.Now()

	assignment := &circuit.Circuit{
		Assets:      st.Assets,
		Liabilities: st.Liabilities,
		Threshold:   st.Threshold,
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: witness: %v", ErrProverFault, err)
	}

	gp, err := groth16.Prove(p.ccs, p.pk, w)
	if err != nil {
		// the pre-check passed, so a failure here is by construction an
		// internal fault, never a statement problem
		return nil, fmt.Errorf("%w: %v", ErrProverFault, err)
	}

	wp, err := proof.FromGroth16(gp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProverFault, err)
	}
	signals := proof.PublicSignals{new(big.Int).SetUint64(st.Threshold)}
	commitment, err := proof.Commit(wp, &signals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProverFault, err)
	}

	p.log.Debug().
		Dur("took", time.Since(start)).
		Str("commitment", commitment.Hex()).
		Uint64("threshold", st.Threshold).
		Msg("attestation generated")

	return &Attestation{Proof: wp, Signals: signals, Commitment: commitment}, nil
}
