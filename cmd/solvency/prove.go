package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/consensys/gnark-solvency/prover"
	"github.com/consensys/gnark-solvency/setup"
)

var proveCmd = &cobra.Command{
	Use:   "prove [assets] [liabilities] [threshold]",
	Short: "generates a solvency attestation from a private statement",
	Long: `prove evaluates the solvency predicate on the provided decimal values
and produces an attestation: the Groth16 proof, the public threshold and
the replay commitment. Assets and liabilities never leave this machine.`,
	Run: cmdProve,
}

var fOutPath string

func init() {
	rootCmd.AddCommand(proveCmd)
	proveCmd.PersistentFlags().StringVar(&fOutPath, "out", "attestation.json", "specifies full path for the attestation")
}

func cmdProve(cmd *cobra.Command, args []string) {
	if len(args) != 3 {
		fmt.Println("expects assets, liabilities and threshold -- solvency prove -h for help")
		os.Exit(-1)
	}
	st, err := prover.ParseStatement(args[0], args[1], args[2])
	if err != nil {
		fmt.Println("can't parse statement", err)
		os.Exit(-1)
	}

	artifacts, err := setup.Load(filepath.Clean(fArtifactsDir))
	if err != nil {
		fmt.Println("can't load artifacts", err)
		os.Exit(-1)
	}

	start := time.Now()
	att, err := prover.New(artifacts.CCS, artifacts.PK).Attest(st)
	if err != nil {
		fmt.Println("can't attest", err)
		os.Exit(-1)
	}

	out := filepath.Clean(fOutPath)
	data, err := json.MarshalIndent(att, "", "  ")
	if err != nil {
		fmt.Println("can't encode attestation", err)
		os.Exit(-1)
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		fmt.Println("can't write attestation", err)
		os.Exit(-1)
	}

	fmt.Printf("%-30s %-30s %-30s\n", "generated attestation", out, time.Since(start))
	fmt.Printf("%-30s %-30s\n", "commitment", att.Commitment.Hex())
}
