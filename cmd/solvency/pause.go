package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "pauses the gateway, rejecting every mutating operation until unpause",
	Run:   cmdPause,
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "lifts the pause and resumes accepting operations",
	Run:   cmdUnpause,
}

var fPauserHex string

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(unpauseCmd)
	pauseCmd.PersistentFlags().StringVar(&fPauserHex, "pauser", "", "address of the pauser authorizing the change")
	unpauseCmd.PersistentFlags().StringVar(&fPauserHex, "pauser", "", "address of the pauser authorizing the change")
	_ = pauseCmd.MarkPersistentFlagRequired("pauser")
	_ = unpauseCmd.MarkPersistentFlagRequired("pauser")
}

func cmdPause(cmd *cobra.Command, args []string) {
	setPaused(args, true)
}

func cmdUnpause(cmd *cobra.Command, args []string) {
	setPaused(args, false)
}

func setPaused(args []string, pause bool) {
	verb := "unpause"
	if pause {
		verb = "pause"
	}
	if len(args) != 0 {
		fmt.Printf("%s takes no arguments -- solvency %s -h for help\n", verb, verb)
		os.Exit(-1)
	}
	pauser, err := parseAddress(fPauserHex)
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	g, led, err := openGateway(common.Address{}, false)
	if err != nil {
		fmt.Println("can't open gateway", err)
		os.Exit(-1)
	}
	if pause {
		err = g.Pause(context.Background(), pauser)
	} else {
		err = g.Unpause(context.Background(), pauser)
	}
	if err != nil {
		fail(led, "can't", verb, err)
	}
	if err := led.Close(); err != nil {
		fmt.Println("can't close ledger", err)
		os.Exit(-1)
	}

	state := "active"
	if pause {
		state = "paused"
	}
	fmt.Printf("%-30s %-30s\n", "gateway", state)
}
