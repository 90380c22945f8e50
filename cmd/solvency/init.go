package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [deployer address]",
	Short: "initializes a fresh ledger and grants the deployer every role",
	Run:   cmdInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func cmdInit(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fmt.Println("missing deployer address -- solvency init -h for help")
		os.Exit(-1)
	}
	deployer, err := parseAddress(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
	if deployer == (common.Address{}) {
		fmt.Println("deployer can't be the zero address")
		os.Exit(-1)
	}

	g, led, err := openGateway(deployer, false)
	if err != nil {
		fmt.Println("can't open gateway", err)
		os.Exit(-1)
	}
	roles, err := g.Roles(deployer)
	if err != nil {
		fail(led, "can't read roles", err)
	}
	if err := led.Close(); err != nil {
		fmt.Println("can't close ledger", err)
		os.Exit(-1)
	}
	if roles == 0 {
		// the genesis grant ran for an earlier deployer
		fmt.Println("ledger already initialized, deployer holds no roles")
		os.Exit(-1)
	}

	fmt.Printf("%-30s %-30s\n", "initialized ledger", filepath.Clean(fDataDir))
	fmt.Printf("%-30s %-30s\n", "deployer", deployer.String())
	fmt.Printf("%-30s %-30s\n", "roles", roles.String())
}
