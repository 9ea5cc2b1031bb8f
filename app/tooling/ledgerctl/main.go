// This program provides operator tooling for a ledger node.
package main

import "github.com/ardanlabs/ledger/app/tooling/ledgerctl/cmd"

func main() {
	cmd.Execute()
}
