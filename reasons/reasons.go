package reasons

import "fmt"

// Comment templates used when assembling an InvoiceCase.Comment.

// SameVoucher is used when a receipt and its clearing are posted in the
// same voucher (zero-day gap).
func SameVoucher() string {
	return "Receipt and clearing in same voucher"
}

// ClearingAfterDays reports the day gap between receipt and clearing for a
// matched case, plus an optional qualifier when a side was tolerated as a
// mismatch.
func ClearingAfterDays(days int, qualifier string) string {
	base := fmt.Sprintf("Clearing found %d days after receipt", days)
	if qualifier == "" {
		return base
	}
	return base + " (" + qualifier + ")"
}

// SupplierMismatch qualifies a match made on invoice number alone.
const SupplierMismatch = "supplier mismatch"

// CrossYearCorrection is used when a receipt is settled by a correction
// voucher from the carry-over year (Match step 2.5).
const CrossYearCorrection = "Cleared by cross-year correction"

// CreditNoteAwaitingClearing qualifies an unmatched credit-note receipt.
const CreditNoteAwaitingClearing = "credit note"

// AmbiguousBankLine is used when a clearing's accounts-payable line could
// not be paired with a bank line by equal-and-opposite amount, and the
// first bank line in the voucher was chosen by convention instead.
func AmbiguousBankLine(chosenIndex int) string {
	return fmt.Sprintf("no bank line matched the AP amount exactly; used bank line %d by convention", chosenIndex)
}

// ExcludedCorrectionPair explains why a voucher's events are excluded from
// matching.
func ExcludedCorrectionPair(otherVoucherID string) string {
	return fmt.Sprintf("excluded: correction pair with %s", otherVoucherID)
}

// ExcludedSelfCanceling explains a self-canceling voucher (invoice and
// credit note booked together with no payment).
const ExcludedSelfCanceling = "excluded: self-canceling AP lines, no bank posting"

// OrphanClearing is the comment for a clearing with no matching receipt.
const OrphanClearing = "no receipt found for this clearing"

// UnmatchedReceipt is the comment for a receipt with no matching clearing.
const UnmatchedReceipt = "no clearing found within the matching window"
