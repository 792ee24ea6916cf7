// Package report renders reconciliation results produced by the
// levfaktura package as Swedish-locale CSV, the way other_examples'
// SEB statement processor reads semicolon-delimited, comma-decimal bank
// CSV in reverse.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	levfaktura "github.com/cjwik/app-investigate-lev-faktura"
)

// Locale controls the delimiter and number formatting WriteCSV uses. The
// zero value is not valid; use Swedish or build one directly.
type Locale struct {
	Delimiter    rune
	DecimalComma bool
	DateLayout   string
}

// Swedish is the default locale: semicolon fields, comma decimals,
// ISO-ish dates.
var Swedish = Locale{Delimiter: ';', DecimalComma: true, DateLayout: "2006-01-02"}

var header = []string{
	"Leverantörsfaktura",
	"Datum",
	"Leverantör",
	"Beskrivning",
	"Motpart",
	"Motpartsdatum",
	"Belopp",
	"Bankbelopp",
	"Konfidens",
	"Status",
	"Kommentar",
	"Granskning",
	"Fakturanummer",
	"Fakturadatum",
	"Totalbelopp",
	"Valuta",
	"Källfil",
}

// WriteCSV renders cases as a delimited CSV table formatted per loc.
// WriteCSV is a pure formatter: it performs no reconciliation and never
// mutates cases.
func WriteCSV(w io.Writer, cases []levfaktura.InvoiceCase, loc Locale) error {
	cw := csv.NewWriter(w)
	cw.Comma = loc.Delimiter

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, c := range cases {
		record := caseRecord(c, loc)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write case row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return nil
}

func caseRecord(c levfaktura.InvoiceCase, loc Locale) []string {
	var (
		voucherID, date, amount, supplier, description string
	)
	if c.Receipt != nil {
		voucherID = c.Receipt.Voucher.ID()
		date = c.Receipt.Voucher.Date.Format(loc.DateLayout)
		amount = formatAmount(c.Receipt.APAmount, loc)
		supplier = c.Receipt.Supplier
		description = c.Receipt.Voucher.Description
	}

	var counterpartyID, counterpartyDate, bankAmount string
	if c.Counterparty != nil {
		counterpartyID = c.Counterparty.VoucherID
		counterpartyDate = c.Counterparty.Date.Format(loc.DateLayout)
		bankAmount = formatAmount(c.Counterparty.BankAmount, loc)
		if voucherID == "" {
			amount = formatAmount(c.Counterparty.APAmount, loc)
		}
	}

	var invoiceDate, totalAmount string
	if !c.InvoiceDate.IsZero() {
		invoiceDate = c.InvoiceDate.Format(loc.DateLayout)
	}
	if !c.TotalAmount.IsZero() {
		totalAmount = formatAmount(c.TotalAmount, loc)
	}

	return []string{
		voucherID,
		date,
		supplier,
		description,
		counterpartyID,
		counterpartyDate,
		amount,
		bankAmount,
		fmt.Sprintf("%d", c.Confidence),
		c.Status.String(),
		c.Comment,
		c.Status.ReviewFlag(),
		c.InvoiceNumber,
		invoiceDate,
		totalAmount,
		c.Currency,
		c.SourceFile,
	}
}

// formatAmount renders d per loc's decimal-separator convention, e.g.
// "1234,50" under Swedish, "1234.50" otherwise.
func formatAmount(d decimal.Decimal, loc Locale) string {
	s := d.StringFixed(2)
	if loc.DecimalComma {
		return strings.Replace(s, ".", ",", 1)
	}
	return s
}
