// Package exits handles investor exit requests: quoting the fee, enforcing
// the holding period, and settling in cash or by loan referral.
package exits

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radionhq/revshare-engine/internal/domain"
)

// Quote is the money breakdown of an exit at a point in time. Outstanding is
// principal less ledger-derived paid-to-date, floored at zero; the fee is
// charged on the outstanding balance at the rate the exit type carries.
type Quote struct {
	OutstandingCents int64
	FeeCents         int64
	NetCents         int64
}

// FeeBps returns the exit fee rate a contract charges for the exit type.
// Off-cycle exits always cost at least as much as quarterly ones.
func FeeBps(terms domain.TierTerms, exitType domain.ExitType) int {
	if exitType == domain.ExitTypeOffcycle {
		return terms.ExitFeeBpsOffcycle
	}
	return terms.ExitFeeBpsQuarterly
}

// BuildQuote prices an exit from the contract's frozen terms and its current
// paid-to-date. Fees floor to the cent.
func BuildQuote(c domain.Contract, paidToDateCents int64, exitType domain.ExitType) Quote {
	outstanding := c.PrincipalCents - paidToDateCents
	if outstanding < 0 {
		outstanding = 0
	}

	fee := decimal.NewFromInt(outstanding).
		Mul(decimal.NewFromInt(int64(FeeBps(c.Terms, exitType)))).
		Div(decimal.NewFromInt(10000)).
		Floor().IntPart()

	return Quote{
		OutstandingCents: outstanding,
		FeeCents:         fee,
		NetCents:         outstanding - fee,
	}
}

// HoldMet reports whether the contract's minimum holding period has elapsed
// by the given time.
func HoldMet(c domain.Contract, now time.Time) bool {
	return !now.Before(c.ActivatedAt.AddDate(0, 0, c.Terms.MinHoldDays))
}
