package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "prints the acceptance journal in sequence order",
	Run:   cmdEvents,
}

var fFromSeq uint64

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.PersistentFlags().Uint64Var(&fFromSeq, "from", 1, "first sequence number to print")
}

func cmdEvents(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		fmt.Println("events takes no arguments -- solvency events -h for help")
		os.Exit(-1)
	}
	g, led, err := openGateway(common.Address{}, false)
	if err != nil {
		fmt.Println("can't open gateway", err)
		os.Exit(-1)
	}
	events, err := g.Events(fFromSeq)
	if err != nil {
		fail(led, "can't read journal", err)
	}
	if err := led.Close(); err != nil {
		fmt.Println("can't close ledger", err)
		os.Exit(-1)
	}

	for _, ev := range events {
		fmt.Printf("%-6d %-68s %-44s %s\n", ev.Seq, ev.Commitment.Hex(), ev.Signer.String(), time.Unix(ev.Timestamp, 0).UTC().Format(time.RFC3339))
	}
}
