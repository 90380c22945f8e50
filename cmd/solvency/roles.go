package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/consensys/gnark-solvency/gateway"
)

var grantCmd = &cobra.Command{
	Use:   "grant [address] [role]",
	Short: "grants a role (signer, pauser or admin) to an address",
	Run:   cmdGrant,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke [address] [role]",
	Short: "revokes a role from an address",
	Run:   cmdRevoke,
}

var fAdminHex string

func init() {
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)
	grantCmd.PersistentFlags().StringVar(&fAdminHex, "admin", "", "address of the admin authorizing the change")
	revokeCmd.PersistentFlags().StringVar(&fAdminHex, "admin", "", "address of the admin authorizing the change")
	_ = grantCmd.MarkPersistentFlagRequired("admin")
	_ = revokeCmd.MarkPersistentFlagRequired("admin")
}

func cmdGrant(cmd *cobra.Command, args []string) {
	changeRole(args, true)
}

func cmdRevoke(cmd *cobra.Command, args []string) {
	changeRole(args, false)
}

func changeRole(args []string, grant bool) {
	verb := "revoke"
	if grant {
		verb = "grant"
	}
	if len(args) != 2 {
		fmt.Printf("expects an address and a role -- solvency %s -h for help\n", verb)
		os.Exit(-1)
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
	role, err := gateway.ParseRole(args[1])
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
	admin, err := parseAddress(fAdminHex)
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	g, led, err := openGateway(common.Address{}, false)
	if err != nil {
		fmt.Println("can't open gateway", err)
		os.Exit(-1)
	}
	if grant {
		err = g.GrantRole(context.Background(), admin, addr, role)
	} else {
		err = g.RevokeRole(context.Background(), admin, addr, role)
	}
	if err != nil {
		fail(led, "can't", verb, "role", err)
	}
	held, err := g.Roles(addr)
	if err != nil {
		fail(led, "can't read roles", err)
	}
	if err := led.Close(); err != nil {
		fmt.Println("can't close ledger", err)
		os.Exit(-1)
	}

	done := "revoked role"
	if grant {
		done = "granted role"
	}
	fmt.Printf("%-30s %-30s\n", done, role.String())
	fmt.Printf("%-30s %-30s\n", "address", addr.String())
	fmt.Printf("%-30s %-30s\n", "now holds", held.String())
}
