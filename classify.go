package levfaktura

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cjwik/app-investigate-lev-faktura/reasons"
)

var zero = decimal.Zero

// indexedTx pairs a transaction with its index in Voucher.Transactions.
type indexedTx struct {
	index int
	tx    Transaction
}

func indexedTransactions(v Voucher, account string) []indexedTx {
	var out []indexedTx
	for i, t := range v.Transactions {
		if t.Account == account {
			out = append(out, indexedTx{index: i, tx: t})
		}
	}
	return out
}

// isSelfCanceling reports a voucher that should be excluded entirely: the
// sum of AP transactions is within tolerance of zero and the voucher has
// no BANK transaction at all (an invoice and its credit note booked
// together with no payment).
func isSelfCanceling(v Voucher, cfg Config) bool {
	if v.HasAccount(cfg.BankAccount) {
		return false
	}
	ap := v.TransactionsOn(cfg.APAccount)
	if len(ap) == 0 {
		return false
	}
	return cfg.amountsEqual(v.SumAccount(cfg.APAccount), zero)
}

var correctionTokenRE = regexp.MustCompile(`(korrigerad|Korrigering)(?:\s+([A-Za-zÅÄÖåäö]+\d+))?`)

// correctionTag is one korrigerad/Korrigering token found in a voucher
// description, with its optional voucher reference.
type correctionTag struct {
	Kind string // "korrigerad" or "Korrigering"
	Ref  string // referenced voucher id, e.g. "A532"; empty when absent
}

func findCorrectionTags(description string) []correctionTag {
	matches := correctionTokenRE.FindAllStringSubmatch(description, -1)
	tags := make([]correctionTag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, correctionTag{Kind: m[1], Ref: m[2]})
	}
	return tags
}

// isCorrectionVoucher reports whether v's own description declares it to
// be the correcting voucher ("Korrigering"), and returns the voucher ID it
// references, if any.
func isCorrectionVoucher(description string) (bool, string) {
	for _, tag := range findCorrectionTags(description) {
		if tag.Kind == "Korrigering" {
			return true, tag.Ref
		}
	}
	return false, ""
}

var descriptionFirstTokens = map[string]bool{
	"Leverantörsfaktura":       true,
	"Leverantörskreditfaktura": true,
}

// extractSupplierInvoice extracts the supplier name and invoice number
// from a voucher description of the canonical "Leverantörsfaktura - ... -
// <supplier> - <invoice>" shape. Descriptions that do not match yield two
// empty strings rather than a guess.
func extractSupplierInvoice(description string) (supplier, invoiceNumber string) {
	fields := strings.Split(description, " - ")
	if len(fields) < 4 {
		return "", ""
	}
	if !descriptionFirstTokens[fields[0]] {
		return "", ""
	}
	supplier = fields[2]
	invoiceNumber = leadingDigits(strings.TrimSpace(fields[3]))
	return supplier, invoiceNumber
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// Classify inspects one voucher and emits zero or more typed events.
// Classify is a pure function: it never mutates v and never consults
// other vouchers. Correction-pair exclusion (which depends on other
// vouchers in the same fiscal year) is computed separately by
// DetectCorrectionPairs and applied by the caller (Match step 0).
func Classify(v Voucher, cfg Config) []Event {
	log := cfg.logger()

	if isSelfCanceling(v, cfg) {
		log.Info(reasons.ExcludedSelfCanceling, "voucher", v.ID())
		return nil
	}

	ap := indexedTransactions(v, cfg.APAccount)
	if len(ap) == 0 {
		return nil
	}

	supplier, invoiceNumber := extractSupplierInvoice(v.Description)

	if isCorrection, ref := isCorrectionVoucher(v.Description); isCorrection {
		events := make([]Event, 0, len(ap))
		for _, it := range ap {
			events = append(events, CorrectionEvent{
				Voucher:             v,
				APTxIndex:           it.index,
				APAmount:            it.tx.Amount,
				ReferencedVoucherID: ref,
				Supplier:            supplier,
				InvoiceNumber:       invoiceNumber,
			})
		}
		return events
	}

	bank := indexedTransactions(v, cfg.BankAccount)

	switch {
	case len(bank) == 0:
		events := make([]Event, 0, len(ap))
		for _, it := range ap {
			events = append(events, ReceiptEvent{
				Voucher:       v,
				APTxIndex:     it.index,
				APAmount:      it.tx.Amount,
				IsCreditNote:  it.tx.Amount.IsPositive(),
				Supplier:      supplier,
				InvoiceNumber: invoiceNumber,
			})
		}
		return events

	case len(ap) == 1:
		it := ap[0]
		used := make([]bool, len(bank))
		bankPos, ambiguous := pickBankPartner(it.tx.Amount, bank, used, cfg)
		if bankPos < 0 {
			log.Warn("voucher has a bank posting but no usable partner", "voucher", v.ID())
			return nil
		}
		bankTx := bank[bankPos]
		return []Event{ClearingEvent{
			Voucher:       v,
			APTxIndex:     it.index,
			BankTxIndex:   bankTx.index,
			APAmount:      it.tx.Amount,
			BankAmount:    bankTx.tx.Amount,
			Supplier:      supplier,
			InvoiceNumber: invoiceNumber,
			AmbiguousBank: ambiguous,
		}}

	default:
		// Same-voucher payment: the voucher carries both a receipt line
		// and a clearing line on AP. Each AP line claims an unused bank
		// line of equal absolute amount and opposite sign; AP lines left
		// without a partner are receipts.
		used := make([]bool, len(bank))
		events := make([]Event, 0, len(ap))
		for _, it := range ap {
			if pos, ok := findExactBankPartner(it.tx.Amount, bank, used, cfg); ok {
				used[pos] = true
				bankTx := bank[pos]
				events = append(events, ClearingEvent{
					Voucher:       v,
					APTxIndex:     it.index,
					BankTxIndex:   bankTx.index,
					APAmount:      it.tx.Amount,
					BankAmount:    bankTx.tx.Amount,
					Supplier:      supplier,
					InvoiceNumber: invoiceNumber,
				})
			} else {
				events = append(events, ReceiptEvent{
					Voucher:       v,
					APTxIndex:     it.index,
					APAmount:      it.tx.Amount,
					IsCreditNote:  it.tx.Amount.IsPositive(),
					Supplier:      supplier,
					InvoiceNumber: invoiceNumber,
				})
			}
		}
		return events
	}
}

// findExactBankPartner returns the position in bank of the first unused
// transaction with equal absolute amount and opposite sign to apAmount.
func findExactBankPartner(apAmount decimal.Decimal, bank []indexedTx, used []bool, cfg Config) (int, bool) {
	target := apAmount.Neg()
	for i, b := range bank {
		if used[i] {
			continue
		}
		if cfg.amountsEqual(b.tx.Amount, target) {
			return i, true
		}
	}
	return -1, false
}

// pickBankPartner pairs a clearing with a bank line: the first unused
// bank line with equal absolute amount and opposite sign, or, failing
// that, the first unused bank line at all (flagged ambiguous for review).
func pickBankPartner(apAmount decimal.Decimal, bank []indexedTx, used []bool, cfg Config) (int, bool) {
	if pos, ok := findExactBankPartner(apAmount, bank, used, cfg); ok {
		return pos, false
	}
	for i := range bank {
		if !used[i] {
			return i, true
		}
	}
	return -1, false
}

// DetectCorrectionPairs implements year-scoped correction-pair exclusion:
// a voucher v pairs with another voucher it references as a
// correction target (or that references it), and both members of the pair
// are added to the returned set only when both fall within targetYear. A
// reference to a voucher outside targetYear (the common case: this year's
// correction settling last year's receipt, handled by Match step 2.5)
// produces no exclusion.
func DetectCorrectionPairs(vouchers []Voucher, targetYear int, cfg Config) map[string]bool {
	inYear := make(map[string]Voucher)
	for _, v := range vouchers {
		if v.Date.Year() == targetYear {
			inYear[v.ID()] = v
		}
	}

	exclude := make(map[string]bool)
	log := cfg.logger()
	for _, v := range vouchers {
		if v.Date.Year() != targetYear {
			continue
		}
		for _, tag := range findCorrectionTags(v.Description) {
			if tag.Ref == "" {
				continue
			}
			other, ok := inYear[tag.Ref]
			if !ok {
				continue
			}
			if !exclude[v.ID()] || !exclude[other.ID()] {
				log.Info(reasons.ExcludedCorrectionPair(other.ID()), "voucher", v.ID())
			}
			exclude[v.ID()] = true
			exclude[other.ID()] = true
		}
	}
	return exclude
}
