package levfaktura

import (
	"github.com/shopspring/decimal"
)

// Reconcile runs the full pipeline — classification, correction-pair
// exclusion and matching — over an already-decoded voucher set for one
// target year. vouchers may span multiple fiscal years; Reconcile itself
// partitions them by cfg.TargetYear and the following calendar year (the
// only year from which a cross-year correction can carry over, per spec
// §4.2/§9).
func Reconcile(vouchers []Voucher, cfg Config, opening decimal.Decimal) (Result, error) {
	var targetVouchers, carryOverVouchers []Voucher
	for _, v := range vouchers {
		switch v.Date.Year() {
		case cfg.TargetYear:
			targetVouchers = append(targetVouchers, v)
		case cfg.TargetYear + 1:
			carryOverVouchers = append(carryOverVouchers, v)
		}
	}

	var targetEvents, carryOverEvents []Event
	for _, v := range targetVouchers {
		targetEvents = append(targetEvents, Classify(v, cfg)...)
	}
	for _, v := range carryOverVouchers {
		carryOverEvents = append(carryOverEvents, Classify(v, cfg)...)
	}

	exclude := DetectCorrectionPairs(vouchers, cfg.TargetYear, cfg)

	return Match(MatchInput{
		TargetEvents:       targetEvents,
		CarryOverEvents:    carryOverEvents,
		ExcludeVoucherIDs:  exclude,
		TargetYearVouchers: targetVouchers,
		OpeningBalance:     opening,
	}, cfg)
}
