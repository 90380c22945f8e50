package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/consensys/gnark-solvency/proof"
	"github.com/consensys/gnark-solvency/setup"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [attestation.json]",
	Short: "verifies an attestation against the verifying key",
	Run:   cmdVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func cmdVerify(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fmt.Println("missing attestation path -- solvency verify -h for help")
		os.Exit(-1)
	}
	att, attPath, err := readAttestation(args[0])
	if err != nil {
		fmt.Println("can't read attestation", err)
		os.Exit(-1)
	}
	vk, err := setup.LoadVerifier(filepath.Clean(fArtifactsDir))
	if err != nil {
		fmt.Println("can't load verifying key", err)
		os.Exit(-1)
	}

	start := time.Now()
	if err := proof.Verify(att.Proof, vk, &att.Signals); err != nil {
		fmt.Printf("%-30s %-30s %-30s\n", "attestation is invalid", attPath, time.Since(start))
		fmt.Println(err)
		os.Exit(-1)
	}

	fmt.Printf("%-30s %-30s %-30s\n", "attestation is valid", attPath, time.Since(start))
	fmt.Printf("%-30s %-30s\n", "threshold", att.Signals.Threshold().String())
	fmt.Printf("%-30s %-30s\n", "commitment", att.Commitment.Hex())
}
