package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen [key file]",
	Short: "generates a secp256k1 signing key and prints its address",
	Run:   cmdKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func cmdKeygen(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fmt.Println("missing key file path -- solvency keygen -h for help")
		os.Exit(-1)
	}
	path := filepath.Clean(args[0])
	if err := fileExists(path); err == nil {
		fmt.Println("refusing to overwrite", path)
		os.Exit(-1)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		fmt.Println("can't generate key", err)
		os.Exit(-1)
	}
	if err := crypto.SaveECDSA(path, key); err != nil {
		fmt.Println("can't save key", err)
		os.Exit(-1)
	}

	fmt.Printf("%-30s %-30s\n", "generated key", path)
	fmt.Printf("%-30s %-30s\n", "address", crypto.PubkeyToAddress(key.PublicKey).String())
}
