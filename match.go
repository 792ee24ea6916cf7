package levfaktura

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cjwik/app-investigate-lev-faktura/reasons"
)

// MatchInput bundles everything one Match call needs. TargetEvents and
// CarryOverEvents are the full, unfiltered output of Classify for every
// voucher in the target year and the carry-over year respectively;
// ExcludeVoucherIDs (from DetectCorrectionPairs) is applied as Match step
// 0. TargetYearVouchers is the full, unfiltered voucher list for the
// target year, used for the step 5 balance computation — correction-pair
// exclusion affects matching, not the ledger balance.
type MatchInput struct {
	TargetEvents       []Event
	CarryOverEvents    []Event
	ExcludeVoucherIDs  map[string]bool
	TargetYearVouchers []Voucher
	OpeningBalance     decimal.Decimal
}

type clearingKey struct {
	voucherID string
	apIndex   int
}

// Match pairs receipts to clearings for one target year: it excludes
// correction-paired vouchers, ranks clearing candidates for each receipt,
// falls back to the first qualifying carry-over correction, then to
// unmatched/orphan cases, and computes the year's AP balance closure.
func Match(in MatchInput, cfg Config) (Result, error) {
	target := excludePairedVouchers(in.TargetEvents, in.ExcludeVoucherIDs)

	var receipts []ReceiptEvent
	var clearings []ClearingEvent
	for _, e := range target {
		switch ev := e.(type) {
		case ReceiptEvent:
			receipts = append(receipts, ev)
		case ClearingEvent:
			clearings = append(clearings, ev)
		case CorrectionEvent:
			// A correction targeting an earlier fiscal year; it is
			// consumed by that year's own Match call via CarryOverEvents,
			// not by this one.
		}
	}

	var carryCorrections []CorrectionEvent
	for _, e := range in.CarryOverEvents {
		if ce, ok := e.(CorrectionEvent); ok {
			carryCorrections = append(carryCorrections, ce)
		}
	}

	consumedClearing := make(map[clearingKey]bool, len(clearings))
	consumedCorrection := make(map[clearingKey]bool, len(carryCorrections))

	var cases []InvoiceCase
	for _, r := range receipts {
		c, ok := selectClearing(r, clearings, consumedClearing, cfg)
		if ok {
			consumeClearing(consumedClearing, c)
			cases = append(cases, buildMatchedCase(r, c, cfg))
			continue
		}

		if ce, ok := selectCorrection(r, carryCorrections, consumedCorrection, cfg); ok {
			consumeClearing(consumedCorrection, clearingKey{voucherID: ce.Voucher.ID(), apIndex: ce.APTxIndex})
			cases = append(cases, buildCorrectionCase(r, ce))
			continue
		}

		cases = append(cases, buildUnmatchedReceiptCase(r))
	}

	for _, c := range clearings {
		if consumedClearing[clearingKeyOf(c)] {
			continue
		}
		cases = append(cases, buildOrphanCase(c))
	}

	cases = sortCases(cases)

	summary := computeSummary(in.TargetYearVouchers, in.OpeningBalance, cfg)
	summary.CaseCount = len(cases)
	summary.StatusCounts = map[Status]int{}
	for _, c := range cases {
		summary.StatusCounts[c.Status]++
	}

	return Result{Cases: cases, Summary: summary}, nil
}

// excludePairedVouchers drops every event whose originating voucher is in
// excludeSet (Match step 0).
func excludePairedVouchers(events []Event, excludeSet map[string]bool) []Event {
	if len(excludeSet) == 0 {
		return events
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if !excludeSet[e.VoucherID()] {
			out = append(out, e)
		}
	}
	return out
}

func clearingKeyOf(c ClearingEvent) clearingKey {
	return clearingKey{voucherID: c.Voucher.ID(), apIndex: c.APTxIndex}
}

func consumeClearing(consumed map[clearingKey]bool, key clearingKey) {
	if consumed[key] {
		panic(fmt.Sprintf("levfaktura: attempted to consume already-consumed clearing %+v", key))
	}
	consumed[key] = true
}

// candidate is a scored clearing candidate for one receipt (Match step 1/2).
type candidate struct {
	clearing     ClearingEvent
	bothMatch    bool
	invoiceMatch bool
	daysDiff     int
}

func selectClearing(r ReceiptEvent, clearings []ClearingEvent, consumed map[clearingKey]bool, cfg Config) (ClearingEvent, bool) {
	var candidates []candidate
	for _, c := range clearings {
		if consumed[clearingKeyOf(c)] {
			continue
		}
		if !cfg.amountsEqual(r.APAmount.Abs(), c.APAmount.Abs()) {
			continue
		}
		if c.Voucher.Date.Before(r.Voucher.Date) {
			continue
		}
		days := daysBetween(r.Voucher.Date, c.Voucher.Date)
		if days > cfg.MaxDays {
			continue
		}
		supplierMatch := matchesCaseInsensitive(r.Supplier, c.Supplier)
		invoiceMatch := matchesExact(r.InvoiceNumber, c.InvoiceNumber)
		candidates = append(candidates, candidate{
			clearing:     c,
			bothMatch:    supplierMatch && invoiceMatch,
			invoiceMatch: invoiceMatch,
			daysDiff:     days,
		})
	}
	if len(candidates) == 0 {
		return ClearingEvent{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.bothMatch != b.bothMatch {
			return a.bothMatch
		}
		if a.invoiceMatch != b.invoiceMatch {
			return a.invoiceMatch
		}
		if a.daysDiff != b.daysDiff {
			return a.daysDiff < b.daysDiff
		}
		return voucherIDLess(a.clearing.Voucher.ID(), b.clearing.Voucher.ID())
	})
	return candidates[0].clearing, true
}

func selectCorrection(r ReceiptEvent, corrections []CorrectionEvent, consumed map[clearingKey]bool, cfg Config) (CorrectionEvent, bool) {
	for _, ce := range corrections {
		key := clearingKey{voucherID: ce.Voucher.ID(), apIndex: ce.APTxIndex}
		if consumed[key] {
			continue
		}
		referencesReceipt := ce.ReferencedVoucherID != "" && ce.ReferencedVoucherID == r.Voucher.ID()
		amountAndSupplier := cfg.amountsEqual(r.APAmount.Abs(), ce.APAmount.Abs()) &&
			matchesCaseInsensitive(r.Supplier, ce.Supplier)
		if referencesReceipt || amountAndSupplier {
			return ce, true
		}
	}
	return CorrectionEvent{}, false
}

func buildMatchedCase(r ReceiptEvent, c ClearingEvent, cfg Config) InvoiceCase {
	supplierMatch := matchesCaseInsensitive(r.Supplier, c.Supplier)
	invoiceMatch := matchesExact(r.InvoiceNumber, c.InvoiceNumber)

	confidence := 25
	switch {
	case supplierMatch && invoiceMatch:
		confidence = 100
	case invoiceMatch:
		confidence = 75
	case supplierMatch:
		confidence = 50
	}

	days := daysBetween(r.Voucher.Date, c.Voucher.Date)
	var comment string
	switch {
	case r.Voucher.ID() == c.Voucher.ID():
		comment = reasons.SameVoucher()
	case confidence == 75:
		comment = reasons.ClearingAfterDays(days, reasons.SupplierMismatch)
	default:
		comment = reasons.ClearingAfterDays(days, "")
	}

	status := StatusOK
	if c.AmbiguousBank {
		status = StatusNeedsReview
		comment += "; " + reasons.AmbiguousBankLine(c.BankTxIndex)
	}

	return InvoiceCase{
		Receipt: &r,
		Counterparty: &Counterparty{
			Kind:          CounterpartyClearing,
			VoucherID:     c.Voucher.ID(),
			Date:          c.Voucher.Date,
			APAmount:      c.APAmount,
			BankAmount:    c.BankAmount,
			InvoiceNumber: c.InvoiceNumber,
		},
		Confidence: confidence,
		Status:     status,
		Comment:    comment,
	}
}

func buildCorrectionCase(r ReceiptEvent, ce CorrectionEvent) InvoiceCase {
	return InvoiceCase{
		Receipt: &r,
		Counterparty: &Counterparty{
			Kind:          CounterpartyCorrection,
			VoucherID:     ce.Voucher.ID(),
			Date:          ce.Voucher.Date,
			APAmount:      ce.APAmount,
			InvoiceNumber: ce.InvoiceNumber,
		},
		Confidence: 100,
		Status:     StatusOK,
		Comment:    reasons.CrossYearCorrection,
	}
}

func buildUnmatchedReceiptCase(r ReceiptEvent) InvoiceCase {
	comment := reasons.UnmatchedReceipt
	if r.IsCreditNote {
		comment = comment + " (" + reasons.CreditNoteAwaitingClearing + ")"
	}
	return InvoiceCase{
		Receipt:    &r,
		Confidence: 0,
		Status:     StatusMissingClearing,
		Comment:    comment,
	}
}

func buildOrphanCase(c ClearingEvent) InvoiceCase {
	status := StatusMissingReceipt
	comment := reasons.OrphanClearing
	if c.AmbiguousBank {
		status = StatusNeedsReview
		comment = reasons.OrphanClearing + "; " + reasons.AmbiguousBankLine(c.BankTxIndex)
	}
	return InvoiceCase{
		Counterparty: &Counterparty{
			Kind:          CounterpartyClearing,
			VoucherID:     c.Voucher.ID(),
			Date:          c.Voucher.Date,
			APAmount:      c.APAmount,
			BankAmount:    c.BankAmount,
			InvoiceNumber: c.InvoiceNumber,
		},
		Confidence: 0,
		Status:     status,
		Comment:    comment,
	}
}

// computeSummary implements Match step 5.
func computeSummary(vouchers []Voucher, opening decimal.Decimal, cfg Config) RunSummary {
	kredit := decimal.Zero
	debet := decimal.Zero
	year := cfg.TargetYear
	for _, v := range vouchers {
		for _, t := range v.Transactions {
			if t.Account != cfg.APAccount {
				continue
			}
			if t.Amount.IsNegative() {
				kredit = kredit.Add(t.Amount.Abs())
			} else if t.Amount.IsPositive() {
				debet = debet.Add(t.Amount.Abs())
			}
		}
	}
	periodChange := kredit.Sub(debet)
	return RunSummary{
		Year:           year,
		OpeningBalance: opening,
		KreditSum:      kredit,
		DebetSum:       debet,
		PeriodChange:   periodChange,
		ClosingBalance: opening.Add(periodChange),
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func matchesCaseInsensitive(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func matchesExact(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b
}

// splitVoucherID splits a voucher identifier into its series prefix and
// numeric sequence, e.g. "A129" -> ("A", 129).
func splitVoucherID(id string) (series string, number int) {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	series = id[:i]
	number, _ = strconv.Atoi(id[i:])
	return series, number
}

func voucherIDLess(a, b string) bool {
	as, an := splitVoucherID(a)
	bs, bn := splitVoucherID(b)
	if as != bs {
		return as < bs
	}
	return an < bn
}

// caseVoucherID returns the ordering key for one case: the receipt
// voucher ID when present, else the counterparty (orphan clearing)
// voucher ID.
func caseVoucherID(c InvoiceCase) string {
	if c.Receipt != nil {
		return c.Receipt.Voucher.ID()
	}
	if c.Counterparty != nil {
		return c.Counterparty.VoucherID
	}
	return ""
}

// caseKind orders receipt-bearing cases before orphan-clearing cases: case
// rows in ascending receipt-voucher identifier order, with orphan
// clearings appended in ascending clearing-voucher order.
func caseKind(c InvoiceCase) int {
	if c.Receipt != nil {
		return 0
	}
	return 1
}

func sortCases(cases []InvoiceCase) []InvoiceCase {
	sort.SliceStable(cases, func(i, j int) bool {
		ki, kj := caseKind(cases[i]), caseKind(cases[j])
		if ki != kj {
			return ki < kj
		}
		return voucherIDLess(caseVoucherID(cases[i]), caseVoucherID(cases[j]))
	})
	return cases
}
