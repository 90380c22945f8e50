package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/consensys/gnark-solvency/gateway"
)

var submitCmd = &cobra.Command{
	Use:   "submit [attestation.json]",
	Short: "submits a signed attestation to the gateway",
	Long: `submit records an attestation on the gateway ledger. The commitment must
be signed by an address holding the signer role: pass --key to sign
locally, or --signature with a detached signature produced elsewhere
together with --submitter.`,
	Run: cmdSubmit,
}

var (
	fKeyPath      string
	fSignatureHex string
	fSubmitterHex string
)

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.PersistentFlags().StringVar(&fKeyPath, "key", "", "signs the commitment with the hex encoded secp256k1 key at this path")
	submitCmd.PersistentFlags().StringVar(&fSignatureHex, "signature", "", "hex encoded detached signature over the commitment")
	submitCmd.PersistentFlags().StringVar(&fSubmitterHex, "submitter", "", "submitter address, defaults to the address of --key")
}

func cmdSubmit(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fmt.Println("missing attestation path -- solvency submit -h for help")
		os.Exit(-1)
	}
	att, attPath, err := readAttestation(args[0])
	if err != nil {
		fmt.Println("can't read attestation", err)
		os.Exit(-1)
	}

	var sig []byte
	var submitter common.Address
	switch {
	case fKeyPath != "" && fSignatureHex != "":
		fmt.Println("--key and --signature are mutually exclusive")
		os.Exit(-1)
	case fKeyPath != "":
		key, err := crypto.LoadECDSA(filepath.Clean(fKeyPath))
		if err != nil {
			fmt.Println("can't load key", err)
			os.Exit(-1)
		}
		if sig, err = gateway.SignCommitment(att.Commitment, key); err != nil {
			fmt.Println("can't sign commitment", err)
			os.Exit(-1)
		}
		submitter = crypto.PubkeyToAddress(key.PublicKey)
	case fSignatureHex != "":
		if sig, err = hex.DecodeString(strings.TrimPrefix(fSignatureHex, "0x")); err != nil {
			fmt.Println("can't decode signature", err)
			os.Exit(-1)
		}
	default:
		fmt.Println("either --key or --signature is required -- solvency submit -h for help")
		os.Exit(-1)
	}
	if fSubmitterHex != "" {
		if submitter, err = parseAddress(fSubmitterHex); err != nil {
			fmt.Println(err)
			os.Exit(-1)
		}
	}
	if submitter == (common.Address{}) {
		fmt.Println("--signature needs --submitter")
		os.Exit(-1)
	}

	g, led, err := openGateway(common.Address{}, true)
	if err != nil {
		fmt.Println("can't open gateway", err)
		os.Exit(-1)
	}
	ev, err := g.Submit(context.Background(), submitter, att.Proof, &att.Signals, sig)
	if err != nil {
		fail(led, "submission rejected", err)
	}
	if err := led.Close(); err != nil {
		fmt.Println("can't close ledger", err)
		os.Exit(-1)
	}

	fmt.Printf("%-30s %-30s\n", "attestation accepted", attPath)
	fmt.Printf("%-30s %-30d\n", "sequence", ev.Seq)
	fmt.Printf("%-30s %-30s\n", "signer", ev.Signer.String())
	fmt.Printf("%-30s %-30s\n", "threshold", ev.Threshold.String())
	fmt.Printf("%-30s %-30s\n", "commitment", ev.Commitment.Hex())
}
