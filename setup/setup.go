// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package setup produces and manages the trusted-setup artifacts: the
// compiled constraint system, the proving key and the verifying key.
//
// Groth16 soundness rests on the setup randomness (the toxic waste) being
// destroyed after key generation. Generate runs a single-party setup, which
// is only as trustworthy as the machine it ran on; a production deployment
// should obtain pk/vk from a multi-party ceremony instead and load them
// with Load.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	solvency "github.com/consensys/gnark-solvency"
	"github.com/consensys/gnark-solvency/circuit"
	"github.com/consensys/gnark-solvency/logger"
)

// Artifacts bundles the outputs of the one-time setup. The prover needs CCS
// and PK; the gateway only needs VK.
type Artifacts struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

// Generate compiles the solvency circuit and runs the Groth16 setup.
func Generate() (*Artifacts, error) {
	log := logger.With("setup")

	start := time.Now()
	ccs, err := frontend.Compile(solvency.Curve().ScalarField(), r1cs.NewBuilder, &circuit.Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	log.Debug().Int("constraints", ccs.GetNbConstraints()).Dur("took", time.Since(start)).Msg("circuit compiled")

	start = time.Now()
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Dur("took", time.Since(start)).Msg("setup complete")

	return &Artifacts{CCS: ccs, PK: pk, VK: vk}, nil
}

// Save writes the artifacts under dir as solvency.ccs, solvency.pk and
// solvency.vk, each prefixed with a version header. The directory is
// created if it does not exist.
func (a *Artifacts) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	if err := writeArtifact(artifactPath(dir, ccsExt), a.CCS); err != nil {
		return err
	}
	if err := writeArtifact(artifactPath(dir, pkExt), a.PK); err != nil {
		return err
	}
	return writeArtifact(artifactPath(dir, vkExt), a.VK)
}

// Load reads previously saved artifacts from dir.
func Load(dir string) (*Artifacts, error) {
	ccs := groth16.NewCS(solvency.Curve())
	if err := readArtifact(artifactPath(dir, ccsExt), ccs); err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(solvency.Curve())
	if err := readArtifact(artifactPath(dir, pkExt), pk); err != nil {
		return nil, err
	}
	vk, err := LoadVerifier(dir)
	if err != nil {
		return nil, err
	}
	return &Artifacts{CCS: ccs, PK: pk, VK: vk}, nil
}

// LoadVerifier reads only the verifying key. Gateway deployments have no
// use for the proving key.
func LoadVerifier(dir string) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(solvency.Curve())
	if err := readArtifact(artifactPath(dir, vkExt), vk); err != nil {
		return nil, err
	}
	return vk, nil
}
