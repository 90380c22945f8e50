package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [address]",
	Short: "prints gateway state, optionally for one signer address",
	Run:   cmdStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func cmdStatus(cmd *cobra.Command, args []string) {
	if len(args) > 1 {
		fmt.Println("expects at most one address -- solvency status -h for help")
		os.Exit(-1)
	}
	g, led, err := openGateway(common.Address{}, false)
	if err != nil {
		fmt.Println("can't open gateway", err)
		os.Exit(-1)
	}

	paused, err := g.Paused()
	if err != nil {
		fail(led, "can't read state", err)
	}
	total, err := g.TotalVerifications()
	if err != nil {
		fail(led, "can't read state", err)
	}

	state := "active"
	if paused {
		state = "paused"
	}
	fmt.Printf("%-30s %-30s\n", "gateway", state)
	fmt.Printf("%-30s %-30d\n", "total verifications", total)

	if len(args) == 1 {
		addr, err := parseAddress(args[0])
		if err != nil {
			fail(led, err)
		}
		roles, err := g.Roles(addr)
		if err != nil {
			fail(led, "can't read roles", err)
		}
		rec, ok, err := g.Verification(addr)
		if err != nil {
			fail(led, "can't read verification", err)
		}
		fmt.Printf("%-30s %-30s\n", "roles", roles.String())
		if !ok {
			fmt.Printf("%-30s %-30s\n", "verification", "none")
		} else {
			fmt.Printf("%-30s %-30s\n", "verified", strconv.FormatBool(rec.Verified))
			fmt.Printf("%-30s %-30s\n", "threshold", rec.Threshold.String())
			fmt.Printf("%-30s %-30s\n", "commitment", rec.Commitment.Hex())
			fmt.Printf("%-30s %-30s\n", "accepted at", time.Unix(rec.Timestamp, 0).UTC().Format(time.RFC3339))
		}
	}

	if err := led.Close(); err != nil {
		fmt.Println("can't close ledger", err)
		os.Exit(-1)
	}
}
