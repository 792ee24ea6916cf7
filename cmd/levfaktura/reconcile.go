package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	levfaktura "github.com/cjwik/app-investigate-lev-faktura"
	"github.com/cjwik/app-investigate-lev-faktura/report"
)

func runReconcile(args []string) int {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	var (
		year        int
		opening     string
		maxDays     int
		tolerance   string
		apAccount   string
		bankAccount string
		outPath     string
		verbose     bool
	)
	fs.IntVar(&year, "year", 0, "fiscal year to reconcile (required)")
	fs.StringVar(&opening, "opening", "0", "opening accounts-payable balance")
	fs.IntVar(&maxDays, "max-days", 120, "maximum receipt-to-clearing window, in days")
	fs.StringVar(&tolerance, "tolerance", "0.005", "amount equality tolerance")
	fs.StringVar(&apAccount, "ap-account", "2440", "accounts-payable account code")
	fs.StringVar(&bankAccount, "bank-account", "1930", "bank account code")
	fs.StringVar(&outPath, "out", "", "output CSV path (default stdout)")
	fs.BoolVar(&verbose, "verbose", false, "log decode and classification detail")
	fs.Usage = reconcileUsage
	_ = fs.Parse(args)

	if fs.NArg() != 1 || year == 0 {
		reconcileUsage()
		return exitError
	}
	siePath := fs.Arg(0)

	cfg := levfaktura.DefaultConfig()
	cfg.TargetYear = year
	cfg.MaxDays = maxDays
	cfg.APAccount = apAccount
	cfg.BankAccount = bankAccount

	if t, err := decimal.NewFromString(tolerance); err == nil {
		cfg.AmountTolerance = t
	} else {
		fmt.Fprintf(os.Stderr, "Error: invalid --tolerance %q: %v\n", tolerance, err)
		return exitError
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

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

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		defer f.Close()
		out = f
	}

	if err := report.WriteCSV(out, result.Cases, report.Swedish); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	return exitOK
}

func reconcileUsage() {
	fmt.Fprintf(os.Stderr, `Usage: levfaktura reconcile [options] <sie-file>

Decode a SIE export, classify its accounts-payable movements and match
receipts to clearings for one fiscal year, writing a CSV report.

Options:
  --year int            Fiscal year to reconcile (required)
  --opening string       Opening accounts-payable balance (default "0")
  --max-days int         Maximum receipt-to-clearing window (default 120)
  --tolerance string     Amount equality tolerance (default "0.005")
  --ap-account string    Accounts-payable account code (default "2440")
  --bank-account string  Bank account code (default "1930")
  --out string           Output CSV path (default stdout)
  --verbose              Log decode and classification detail

Examples:
  levfaktura reconcile --year 2024 export.se
  levfaktura reconcile --year 2024 --out 2024.csv export.se
`)
}
