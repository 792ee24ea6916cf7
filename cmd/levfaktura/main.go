// Command levfaktura reconciles supplier-invoice liabilities against a
// bank-account ledger exported in SIE format.
package main

import (
	"fmt"
	"os"
)

const (
	exitOK    = 0
	exitError = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return exitError
	}

	switch subcommand := os.Args[1]; subcommand {
	case "reconcile":
		return runReconcile(os.Args[2:])
	case "summary":
		return runSummary(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", subcommand)
		usage()
		return exitError
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: levfaktura <command> [options]

Commands:
  reconcile   Match receipts to clearings for one fiscal year and write a CSV report
  summary     Print the accounts-payable balance summary for one fiscal year

Use "levfaktura <command> --help" for more information about a command.
`)
}
