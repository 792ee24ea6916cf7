// Package levfaktura reconciles Swedish supplier-invoice bookkeeping.
//
// Given a set of double-entry vouchers exported from a bookkeeping system in
// SIE format, the package decodes them, classifies every accounts-payable
// movement as a receipt, a clearing, a correction or an exclusion, and
// matches receipts to clearings across one or more fiscal years. The result
// is a report of InvoiceCase rows, one per liability event, together with a
// per-year balance summary.
//
// The package is synchronous and holds no package-level state: every
// exported function takes a Config value and returns its result directly.
package levfaktura

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one posting within a Voucher.
type Transaction struct {
	Account     string          // four-digit numeric account code, e.g. "2440"
	Amount      decimal.Decimal // signed; positive = debit, negative = credit
	Date        time.Time       // zero when the transaction inherits the voucher's date
	Description string          // usually empty; inherits from the voucher when absent
}

// Voucher is a balanced group of Transactions sharing one identifier.
type Voucher struct {
	Series          string // series letter(s), e.g. "A"
	Number          int    // sequential number within the series
	Date            time.Time
	RegistrationDate time.Time // zero when absent
	Description     string
	Transactions    []Transaction
}

// ID returns the voucher identifier as series+number, e.g. "A129".
func (v Voucher) ID() string {
	return v.Series + strconv.Itoa(v.Number)
}

// TransactionsOn returns the transactions posted to account, in voucher order.
func (v Voucher) TransactionsOn(account string) []Transaction {
	var out []Transaction
	for _, t := range v.Transactions {
		if t.Account == account {
			out = append(out, t)
		}
	}
	return out
}

// HasAccount reports whether any transaction in the voucher posts to account.
func (v Voucher) HasAccount(account string) bool {
	for _, t := range v.Transactions {
		if t.Account == account {
			return true
		}
	}
	return false
}

// SumAccount returns the sum of amounts posted to account.
func (v Voucher) SumAccount(account string) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range v.Transactions {
		if t.Account == account {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// Sum returns the sum of all transaction amounts in the voucher.
func (v Voucher) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range v.Transactions {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// DescriptionFields splits the voucher description on the literal " - "
// delimiter used by the "Leverantörsfaktura"/"Leverantörskreditfaktura"
// description shapes (see Classify).
func (v Voucher) DescriptionFields() []string {
	return strings.Split(v.Description, " - ")
}

// Status is the review outcome of one InvoiceCase.
type Status int

// Recognized Status values.
const (
	StatusOK Status = iota
	StatusMissingClearing
	StatusMissingReceipt
	StatusNeedsReview
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusMissingClearing:
		return "Missing clearing"
	case StatusMissingReceipt:
		return "Missing receipt"
	case StatusNeedsReview:
		return "Needs review"
	case StatusAmbiguous:
		return "Ambiguous"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ReviewFlag returns "JA" when the case needs human review, else "NEJ".
func (s Status) ReviewFlag() string {
	if s == StatusOK {
		return "NEJ"
	}
	return "JA"
}

// CounterpartyKind distinguishes the two ways an InvoiceCase's counterparty
// can settle a receipt.
type CounterpartyKind int

// Recognized CounterpartyKind values.
const (
	CounterpartyNone CounterpartyKind = iota
	CounterpartyClearing
	CounterpartyCorrection
)

// Counterparty is the clearing- or correction-side of an InvoiceCase.
// BankAmount is the zero value when Kind is CounterpartyCorrection: a
// cross-year correction settles a receipt without a bank-account posting
// of its own.
type Counterparty struct {
	Kind          CounterpartyKind
	VoucherID     string
	Date          time.Time
	APAmount      decimal.Decimal
	BankAmount    decimal.Decimal
	InvoiceNumber string
}

// InvoiceCase is one row of the reconciliation report. At least one of
// Receipt and Counterparty is always set; both set means a successful
// match.
type InvoiceCase struct {
	Receipt      *ReceiptEvent
	Counterparty *Counterparty
	Confidence   int // 0-100
	Status       Status
	Comment      string

	// Supplementary enrichment fields, populated by external collaborators
	// (PDF extraction, filename scanning) this package does not implement.
	// Left at their zero value when the core alone produces the row.
	InvoiceNumber string
	InvoiceDate   time.Time
	TotalAmount   decimal.Decimal
	Currency      string
	SourceFile    string
}

// RunSummary reports the accounts-payable balance movement for one target
// year, computed in Match step 5.
type RunSummary struct {
	Year           int
	OpeningBalance decimal.Decimal
	KreditSum      decimal.Decimal
	DebetSum       decimal.Decimal
	PeriodChange   decimal.Decimal
	ClosingBalance decimal.Decimal
	CaseCount      int
	StatusCounts   map[Status]int
}

// Result is the output of one Match call.
type Result struct {
	Cases   []InvoiceCase
	Summary RunSummary
}

// Config carries every threshold and domain constant used by the decoder,
// classifier and matcher. There are no package-level defaults beyond
// DefaultConfig: every exported function takes a Config value explicitly.
type Config struct {
	// MaxDays is the receipt-to-clearing matching window, in days.
	MaxDays int
	// AmountTolerance is the equality tolerance used for balance checks
	// and amount comparisons.
	AmountTolerance decimal.Decimal
	// TargetYear selects which vouchers participate in a Match call and
	// which correction pairs DetectCorrectionPairs excludes.
	TargetYear int
	// APAccount is the accounts-payable account code. Defaults to "2440".
	APAccount string
	// BankAccount is the operating bank account code. Defaults to "1930".
	BankAccount string
	// Logger receives per-voucher warnings and errors. Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the domain defaults: MaxDays 120,
// AmountTolerance 0.005, APAccount "2440", BankAccount "1930". TargetYear
// is left at zero and must be set by the caller before Match.
func DefaultConfig() Config {
	return Config{
		MaxDays:         120,
		AmountTolerance: decimal.NewFromFloat(0.005),
		APAccount:       "2440",
		BankAccount:     "1930",
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) amountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(c.AmountTolerance)
}
