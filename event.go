package levfaktura

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the sum type emitted by Classify: a ReceiptEvent, a
// ClearingEvent or a CorrectionEvent. The marker method is unexported so
// no type outside this package can implement Event.
type Event interface {
	isEvent()
	VoucherID() string
	VoucherDate() time.Time
}

// ReceiptEvent is a liability-creation or liability-reduction line on the
// accounts-payable account that is not settled through the bank in the
// same voucher line.
type ReceiptEvent struct {
	Voucher       Voucher
	APTxIndex     int // index into Voucher.Transactions
	APAmount      decimal.Decimal
	IsCreditNote  bool // true when the line is a debit (credit note received)
	Supplier      string
	InvoiceNumber string
}

func (ReceiptEvent) isEvent() {}

// VoucherID returns the identifier of the originating voucher.
func (r ReceiptEvent) VoucherID() string { return r.Voucher.ID() }

// VoucherDate returns the transaction date of the originating voucher.
func (r ReceiptEvent) VoucherDate() time.Time { return r.Voucher.Date }

// ClearingEvent is an accounts-payable movement paired with a bank-account
// movement in the same voucher, representing settlement.
type ClearingEvent struct {
	Voucher       Voucher
	APTxIndex     int
	BankTxIndex   int
	APAmount      decimal.Decimal
	BankAmount    decimal.Decimal
	Supplier      string
	InvoiceNumber string
	// AmbiguousBank is true when no bank line had the equal-and-opposite
	// amount required for an unambiguous pairing, and the first bank
	// line was chosen as a fallback (see Classify).
	AmbiguousBank bool
}

func (ClearingEvent) isEvent() {}

// VoucherID returns the identifier of the originating voucher.
func (c ClearingEvent) VoucherID() string { return c.Voucher.ID() }

// VoucherDate returns the transaction date of the originating voucher.
func (c ClearingEvent) VoucherDate() time.Time { return c.Voucher.Date }

// CorrectionEvent is a later voucher whose description declares it
// corrects an earlier one. Within one fiscal year correction pairs are
// excluded from matching entirely (see DetectCorrectionPairs); across
// years a current-year correction may settle a previous-year receipt
// (Match step 2.5).
type CorrectionEvent struct {
	Voucher             Voucher
	APTxIndex           int
	APAmount            decimal.Decimal
	ReferencedVoucherID string // target voucher id parsed from the description; may be empty
	Supplier            string
	InvoiceNumber       string
}

func (CorrectionEvent) isEvent() {}

// VoucherID returns the identifier of the originating voucher.
func (c CorrectionEvent) VoucherID() string { return c.Voucher.ID() }

// VoucherDate returns the transaction date of the originating voucher.
func (c CorrectionEvent) VoucherDate() time.Time { return c.Voucher.Date }
