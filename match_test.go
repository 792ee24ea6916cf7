package levfaktura

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

func reconcileYear(t *testing.T, vouchers []Voucher, targetYear int) Result {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TargetYear = targetYear
	result, err := Reconcile(vouchers, cfg, decimal.Zero)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	return result
}

// TestPerfectMatch covers the "Perfect match" worked example: a receipt and
// a clearing a few days apart, same supplier and invoice number.
func TestPerfectMatch(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-15", "Leverantörsfaktura - X - Acme AB - 1234",
			tx("2440", -1000), tx("4000", 1000)),
		voucher("A2", "2024-01-18", "Leverantörsfaktura - X - Acme AB - 1234",
			tx("2440", 1000), tx("1930", -1000)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 1; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
	c := result.Cases[0]
	if c.Status != StatusOK {
		t.Errorf("Status = %v, want OK", c.Status)
	}
	if c.Confidence != 100 {
		t.Errorf("Confidence = %d, want 100", c.Confidence)
	}
}

// TestSameVoucherPayment covers a voucher whose own accounts-payable lines
// carry both a receipt and its clearing (e.g. an invoice booked and settled
// in one entry): Classify emits one ReceiptEvent and one ClearingEvent from
// the same voucher, and Match pairs them with a zero-day gap.
func TestSameVoucherPayment(t *testing.T) {
	vs := []Voucher{
		voucher("A2", "2024-02-01", "Leverantörsfaktura - X - Acme AB - 2222",
			tx("2440", -1000),
			tx("2440", 1000),
			tx("1930", -1000),
			tx("4000", 1000),
		),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 1; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
	c := result.Cases[0]
	if c.Status != StatusOK {
		t.Fatalf("Status = %v, want OK", c.Status)
	}
	if c.Receipt.Voucher.ID() != "A2" || c.Counterparty.VoucherID != "A2" {
		t.Errorf("receipt/counterparty voucher = %s/%s, want A2/A2", c.Receipt.Voucher.ID(), c.Counterparty.VoucherID)
	}
	if c.Comment != "Receipt and clearing in same voucher" {
		t.Errorf("Comment = %q, want same-voucher wording", c.Comment)
	}
}

// TestSelfCancelingProducesNoCase covers an invoice and its credit note
// booked together with no bank posting: fully excluded from the report.
func TestSelfCancelingProducesNoCase(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-15", "Felbokning", tx("2440", -1000), tx("2440", 1000)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 0; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
}

// TestSupplierMismatchMatchingInvoiceNumber covers a clearing whose supplier
// field disagrees with the receipt's but whose invoice number agrees:
// matched at reduced confidence, still status OK.
func TestSupplierMismatchMatchingInvoiceNumber(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-15", "Leverantörsfaktura - X - Acme AB - 1234",
			tx("2440", -1000), tx("4000", 1000)),
		voucher("A2", "2024-01-20", "Leverantörsfaktura - X - Acme Inc - 1234",
			tx("2440", 1000), tx("1930", -1000)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 1; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
	c := result.Cases[0]
	if c.Status != StatusOK {
		t.Errorf("Status = %v, want OK", c.Status)
	}
	if c.Confidence != 75 {
		t.Errorf("Confidence = %d, want 75", c.Confidence)
	}
}

// TestYearScopedCorrectionCollision covers two same-year vouchers forming a
// correction pair: both are excluded from matching entirely, so A5 does not
// even surface as an unmatched receipt.
func TestYearScopedCorrectionCollision(t *testing.T) {
	vs := []Voucher{
		voucher("A5", "2024-01-10", "Leverantörsfaktura - X - Acme AB - 1111", tx("2440", -100), tx("4000", 100)),
		voucher("A9", "2024-03-01", "Korrigering A5 felaktigt konto", tx("2440", 100), tx("4000", -100)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 0; got != want {
		t.Fatalf("len(Cases) = %d, want %d: correction pair should be fully excluded", got, want)
	}
}

// TestOrphanClearing covers a bank-settled voucher whose accounts-payable
// amount has no corresponding receipt anywhere in the matching window.
func TestOrphanClearing(t *testing.T) {
	vs := []Voucher{
		voucher("A2", "2024-01-18", "Bankbetalning", tx("2440", 750), tx("1930", -750)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 1; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
	c := result.Cases[0]
	if c.Status != StatusMissingReceipt {
		t.Errorf("Status = %v, want Missing receipt", c.Status)
	}
	if c.Receipt != nil {
		t.Error("Receipt set, want nil for an orphan clearing")
	}
}

// TestClearingOutsideWindowLeavesReceiptUnmatched covers spec's max-days
// boundary: a clearing beyond the matching window does not pair with its
// receipt.
func TestClearingOutsideWindowLeavesReceiptUnmatched(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-01", "Leverantörsfaktura - X - Acme AB - 1234",
			tx("2440", -1000), tx("4000", 1000)),
		voucher("A2", "2024-06-01", "Leverantörsfaktura - X - Acme AB - 1234",
			tx("2440", 1000), tx("1930", -1000)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 2; got != want {
		t.Fatalf("len(Cases) = %d, want %d (receipt and orphan clearing, unmatched)", got, want)
	}
	for _, c := range result.Cases {
		if c.Status == StatusOK {
			t.Error("found an OK case, want none: clearing is outside the matching window")
		}
	}
}

// TestClearingConsumedAtMostOnce covers the no-double-consumption invariant
// with two receipts of equal amount and only one eligible clearing.
func TestClearingConsumedAtMostOnce(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-01", "Leverantörsfaktura - X - Acme AB - 1111", tx("2440", -1000), tx("4000", 1000)),
		voucher("A2", "2024-01-05", "Leverantörsfaktura - X - Acme AB - 2222", tx("2440", -1000), tx("4000", 1000)),
		voucher("A3", "2024-01-10", "Bankbetalning", tx("2440", 1000), tx("1930", -1000)),
	}
	result := reconcileYear(t, vs, 2024)

	okCount := 0
	for _, c := range result.Cases {
		if c.Status == StatusOK {
			okCount++
		}
	}
	if okCount != 1 {
		t.Fatalf("OK cases = %d, want 1: only one clearing is available", okCount)
	}
}

// TestVoucherIDTieBreak covers voucherIDLess, the comparison that breaks
// ties between otherwise equal candidates by voucher id.
func TestVoucherIDTieBreak(t *testing.T) {
	if !voucherIDLess("A9", "A10") {
		t.Error("voucherIDLess(A9, A10) = false, want true (numeric, not lexicographic, comparison)")
	}
	if !voucherIDLess("A10", "B1") {
		t.Error("voucherIDLess(A10, B1) = false, want true (series compared first)")
	}
}

func TestBalanceClosureComputation(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-01", "Leverantörsfaktura - X - Acme AB - 1111", tx("2440", -1000), tx("4000", 1000)),
		voucher("A2", "2024-01-05", "Bankbetalning", tx("2440", 400), tx("1930", -400)),
	}
	cfg := DefaultConfig()
	cfg.TargetYear = 2024
	opening := decimal.NewFromInt(500)
	result, err := Reconcile(vs, cfg, opening)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	s := result.Summary
	if !s.KreditSum.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("KreditSum = %s, want 1000", s.KreditSum)
	}
	if !s.DebetSum.Equal(decimal.NewFromInt(400)) {
		t.Errorf("DebetSum = %s, want 400", s.DebetSum)
	}
	wantClosing := opening.Add(decimal.NewFromInt(600))
	if !s.ClosingBalance.Equal(wantClosing) {
		t.Errorf("ClosingBalance = %s, want %s", s.ClosingBalance, wantClosing)
	}
}

// TestCreditNoteUnmatchedCarriesQualifier covers an unmatched credit-note
// receipt: the comment gains the "credit note" qualifier.
func TestCreditNoteUnmatchedCarriesQualifier(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-15", "Leverantörskreditfaktura - X - Acme AB - 1234",
			tx("2440", 300), tx("4000", -300)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 1; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
	c := result.Cases[0]
	if c.Status != StatusMissingClearing {
		t.Errorf("Status = %v, want Missing clearing", c.Status)
	}
	if !c.Receipt.IsCreditNote {
		t.Error("IsCreditNote = false, want true for a positive AP line with no bank posting")
	}
	if got, want := c.Comment, "no clearing found within the matching window (credit note)"; got != want {
		t.Errorf("Comment = %q, want %q", got, want)
	}
}

// TestAmbiguousBankFlagsNeedsReview covers a clearing whose bank line could
// not be paired by equal-and-opposite amount: Match surfaces it as
// StatusNeedsReview rather than silently guessing.
func TestAmbiguousBankFlagsNeedsReview(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-01-01", "Leverantörsfaktura - X - Acme AB - 1234",
			tx("2440", -900), tx("4000", 900)),
		voucher("A2", "2024-01-05", "Bankbetalning", tx("2440", 900), tx("1930", -899)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 1; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
	if got, want := result.Cases[0].Status, StatusNeedsReview; got != want {
		t.Errorf("Status = %v, want %v", got, want)
	}
}

// TestCrossYearCorrectionSettlesPriorYearReceipt covers Match step 2.5: a
// correction voucher dated in the following fiscal year settles a receipt
// that never found a same-year clearing.
func TestCrossYearCorrectionSettlesPriorYearReceipt(t *testing.T) {
	vs := []Voucher{
		voucher("A1", "2024-11-01", "Leverantörsfaktura - X - Acme AB - 1234",
			tx("2440", -600), tx("4000", 600)),
		voucher("B1", "2025-01-10", "Korrigering A1 felbokfört konto",
			tx("2440", 600), tx("4000", -600)),
	}
	result := reconcileYear(t, vs, 2024)
	if got, want := len(result.Cases), 1; got != want {
		t.Fatalf("len(Cases) = %d, want %d", got, want)
	}
	c := result.Cases[0]
	if c.Status != StatusOK {
		t.Errorf("Status = %v, want OK", c.Status)
	}
	if c.Counterparty.Kind != CounterpartyCorrection {
		t.Errorf("Counterparty.Kind = %v, want CounterpartyCorrection", c.Counterparty.Kind)
	}
	if c.Comment != "Cleared by cross-year correction" {
		t.Errorf("Comment = %q, want cross-year correction wording", c.Comment)
	}
}

// decimalCmpOpts compares decimal.Decimal by value and ignores the
// Receipt/Counterparty pointer fields, which are compared separately.
var decimalCmpOpts = []cmp.Option{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmpopts.IgnoreFields(InvoiceCase{}, "Receipt", "Counterparty"),
}

// TestCaseOrdering covers the case-ordering rule directly: receipt-bearing
// cases in ascending voucher-id order, with orphan clearings appended in
// ascending clearing-voucher order.
func TestCaseOrdering(t *testing.T) {
	vs := []Voucher{
		voucher("A10", "2024-01-01", "Leverantörsfaktura - X - Acme AB - 1111", tx("2440", -100), tx("4000", 100)),
		voucher("A2", "2024-01-02", "Leverantörsfaktura - X - Acme AB - 2222", tx("2440", -200), tx("4000", 200)),
		voucher("B1", "2024-01-03", "Bankbetalning", tx("2440", 900), tx("1930", -900)),
	}
	result := reconcileYear(t, vs, 2024)

	want := []InvoiceCase{
		{Status: StatusMissingClearing, Confidence: 0, Comment: "no clearing found within the matching window"},
		{Status: StatusMissingClearing, Confidence: 0, Comment: "no clearing found within the matching window"},
		{Status: StatusMissingReceipt, Confidence: 0, Comment: "no receipt found for this clearing"},
	}
	if diff := cmp.Diff(want, result.Cases, decimalCmpOpts...); diff != "" {
		t.Fatalf("case shape mismatch (-want +got):\n%s", diff)
	}

	gotOrder := []string{
		result.Cases[0].Receipt.Voucher.ID(),
		result.Cases[1].Receipt.Voucher.ID(),
		result.Cases[2].Counterparty.VoucherID,
	}
	wantOrder := []string{"A2", "A10", "B1"}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Fatalf("ordering mismatch (-want +got):\n%s", diff)
	}
}
