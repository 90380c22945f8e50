package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	solvency "github.com/consensys/gnark-solvency"
	"github.com/consensys/gnark-solvency/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "compiles the solvency circuit and generates the Groth16 keys",
	Run:   cmdSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func cmdSetup(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		fmt.Println("setup takes no arguments -- solvency setup -h for help")
		os.Exit(-1)
	}
	dir := filepath.Clean(fArtifactsDir)

	start := time.Now()
	artifacts, err := setup.Generate()
	if err != nil {
		fmt.Println("setup failed", err)
		os.Exit(-1)
	}
	if err := artifacts.Save(dir); err != nil {
		fmt.Println("can't save artifacts", err)
		os.Exit(-1)
	}

	fmt.Printf("%-30s %-30s %d constraints\n", "compiled circuit", solvency.Curve().String(), artifacts.CCS.GetNbConstraints())
	fmt.Printf("%-30s %-30s %-30s\n", "generated artifacts", dir, time.Since(start))
}
