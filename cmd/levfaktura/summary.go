package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	levfaktura "github.com/cjwik/app-investigate-lev-faktura"
)

func runSummary(args []string) int {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	var (
		year    int
		opening string
	)
	fs.IntVar(&year, "year", 0, "fiscal year to summarize (required)")
	fs.StringVar(&opening, "opening", "0", "opening accounts-payable balance")
	fs.Usage = summaryUsage
	_ = fs.Parse(args)

	if fs.NArg() != 1 || year == 0 {
		summaryUsage()
		return exitError
	}
	siePath := fs.Arg(0)

	cfg := levfaktura.DefaultConfig()
	cfg.TargetYear = year

	openingBalance, err := decimal.NewFromString(opening)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --opening %q: %v\n", opening, err)
		return exitError
	}

	vouchers, err := levfaktura.DecodeSIEFile(siePath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	result, err := levfaktura.Reconcile(vouchers, cfg, openingBalance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	printSummary(result.Summary, detectTerminalWidth())
	return exitOK
}

func detectTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if c := os.Getenv("COLUMNS"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 {
			return n
		}
	}
	return 80
}

func printSummary(s levfaktura.RunSummary, width int) {
	fmt.Printf("Reconciliation summary %d\n", s.Year)
	fmt.Println(strings.Repeat("-", min(width, 40)))
	fmt.Printf("%-20s %15s\n", "Opening balance", s.OpeningBalance.StringFixed(2))
	fmt.Printf("%-20s %15s\n", "Kredit (new debt)", s.KreditSum.StringFixed(2))
	fmt.Printf("%-20s %15s\n", "Debet (paid down)", s.DebetSum.StringFixed(2))
	fmt.Printf("%-20s %15s\n", "Period change", s.PeriodChange.StringFixed(2))
	fmt.Printf("%-20s %15s\n", "Closing balance", s.ClosingBalance.StringFixed(2))
	fmt.Println()
	fmt.Printf("%d cases\n", s.CaseCount)
	for _, status := range []levfaktura.Status{
		levfaktura.StatusOK,
		levfaktura.StatusMissingClearing,
		levfaktura.StatusMissingReceipt,
		levfaktura.StatusNeedsReview,
		levfaktura.StatusAmbiguous,
	} {
		if n := s.StatusCounts[status]; n > 0 {
			fmt.Printf("  %-18s %d\n", status.String(), n)
		}
	}
}

func summaryUsage() {
	fmt.Fprintf(os.Stderr, `Usage: levfaktura summary [options] <sie-file>

Print the accounts-payable balance summary for one fiscal year.

Options:
  --year int       Fiscal year to summarize (required)
  --opening string Opening accounts-payable balance (default "0")

Examples:
  levfaktura summary --year 2024 export.se
`)
}
