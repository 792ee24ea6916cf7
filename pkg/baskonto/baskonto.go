// Package baskonto resolves BAS chart-of-accounts codes to their
// human-readable Swedish names, a small map-backed lookup with an
// "unknown code" fallback.
//
// Only the account classes (single digit) and the specific accounts this
// module's own vouchers reference are covered; DESIGN.md records that this
// is a display/logging convenience, not a full BAS-plan implementation.
package baskonto

import "fmt"

// Name returns the human-readable Swedish account name for code, e.g.
// "2440" -> "Leverantörsskulder". Unknown codes return a placeholder that
// still carries the code, so callers can always render something.
func Name(code string) string {
	if name, ok := accountNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Okänt konto %s", code)
}

// Class returns the BAS account-class name for the leading digit of code,
// e.g. "2440" -> "Eget kapital och skulder". Returns "Okänd kontoklass" when
// code is empty or does not start with a recognized class digit.
func Class(code string) string {
	if code == "" {
		return "Okänd kontoklass"
	}
	if name, ok := accountClasses[code[:1]]; ok {
		return name
	}
	return "Okänd kontoklass"
}
