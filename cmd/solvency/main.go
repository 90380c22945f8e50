// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// solvency is the operator command line for the compliance proof
// protocol: trusted setup, attestation generation and the gateway
// lifecycle over a local ledger.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	solvency "github.com/consensys/gnark-solvency"
	"github.com/consensys/gnark-solvency/gateway"
	"github.com/consensys/gnark-solvency/ledger"
	"github.com/consensys/gnark-solvency/proof"
	"github.com/consensys/gnark-solvency/prover"
	"github.com/consensys/gnark-solvency/setup"
)

var rootCmd = &cobra.Command{
	Use:   "solvency",
	Short: "zero knowledge compliance proofs for asset reserves",
	Long: `solvency proves that assets exceed liabilities by more than a public
threshold without revealing either amount, and runs the gateway that
accepts such proofs from authorized signers.`,
	Version: solvency.Version.String(),
}

var (
	fDataDir      string
	fArtifactsDir string
)

var errNotFound = errors.New("file does not exist")

func init() {
	rootCmd.PersistentFlags().StringVar(&fDataDir, "data", "solvency-data", "directory holding the gateway ledger")
	rootCmd.PersistentFlags().StringVar(&fArtifactsDir, "artifacts", "solvency-artifacts", "directory holding the setup artifacts")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(-1)
	}
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errNotFound
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// openGateway attaches to the ledger under --data. Verbs that accept
// attestations pass withVerifier to load the verifying key from
// --artifacts first. A non zero deployer initializes a fresh ledger.
func openGateway(deployer common.Address, withVerifier bool) (*gateway.Gateway, *ledger.Ledger, error) {
	var vk groth16.VerifyingKey
	if withVerifier {
		var err error
		if vk, err = setup.LoadVerifier(filepath.Clean(fArtifactsDir)); err != nil {
			return nil, nil, err
		}
	}
	store, err := ledger.OpenBadger(filepath.Clean(fDataDir))
	if err != nil {
		return nil, nil, err
	}
	led := ledger.New(store)
	g, err := gateway.New(led, vk, deployer)
	if err != nil {
		_ = led.Close()
		return nil, nil, err
	}
	return g, led, nil
}

// fail closes the ledger so the store releases its lock, prints like
// fmt.Println and exits.
func fail(led *ledger.Ledger, a ...any) {
	if led != nil {
		_ = led.Close()
	}
	fmt.Println(a...)
	os.Exit(-1)
}

// readAttestation loads an attestation envelope and checks its integrity:
// the stored commitment must match the one recomputed from the proof and
// signals it travels with.
func readAttestation(path string) (*prover.Attestation, string, error) {
	clean := filepath.Clean(path)
	if err := fileExists(clean); err != nil {
		return nil, clean, err
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, clean, err
	}
	var att prover.Attestation
	if err := json.Unmarshal(data, &att); err != nil {
		return nil, clean, err
	}
	if att.Proof == nil {
		return nil, clean, errors.New("attestation has no proof")
	}
	c, err := proof.Commit(att.Proof, &att.Signals)
	if err != nil {
		return nil, clean, err
	}
	if c != att.Commitment {
		return nil, clean, fmt.Errorf("commitment mismatch: envelope says %s, proof hashes to %s", att.Commitment.Hex(), c.Hex())
	}
	return &att, clean, nil
}
