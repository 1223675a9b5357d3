// Package tier generates the low/medium/high term proposals offered to a
// round. Propose is a pure function: identical inputs always yield
// byte-identical proposals, so a committed tier's rationale can be
// regenerated and verified after the fact.
package tier

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radionhq/revshare-engine/internal/domain"
)

// Platform-wide revenue share bounds. Adjusted terms are clamped here
// regardless of risk level.
const (
	MinShareBps = 300
	MaxShareBps = 1200
)

type Input struct {
	MaxRaiseCents int64
	RiskLevel     domain.RiskLevel
	RevenueStage  string
}

type Proposal struct {
	Terms       domain.TierTerms
	Explanation Explanation
}

// Explanation is structured and fully derivable from the inputs, never
// hand-authored text.
type Explanation struct {
	RiskLevel     domain.RiskLevel  `json:"risk_level"`
	RevenueStage  string            `json:"revenue_stage,omitempty"`
	MaxRaiseCents int64             `json:"max_raise_cents"`
	CapMultiple   string            `json:"cap_multiple"`
	Rationale     map[string]string `json:"rationale"`
}

var baseline = map[domain.TierName]domain.TierTerms{
	domain.TierLow: {
		Name:                domain.TierLow,
		RevenueShareBps:     400,
		PayoutCapBps:        12000,
		TimeCapMonths:       24,
		MinHoldDays:         90,
		ExitFeeBpsQuarterly: 150,
		ExitFeeBpsOffcycle:  300,
	},
	domain.TierMedium: {
		Name:                domain.TierMedium,
		RevenueShareBps:     600,
		PayoutCapBps:        15000,
		TimeCapMonths:       30,
		MinHoldDays:         90,
		ExitFeeBpsQuarterly: 200,
		ExitFeeBpsOffcycle:  400,
	},
	domain.TierHigh: {
		Name:                domain.TierHigh,
		RevenueShareBps:     800,
		PayoutCapBps:        18000,
		TimeCapMonths:       36,
		MinHoldDays:         120,
		ExitFeeBpsQuarterly: 250,
		ExitFeeBpsOffcycle:  500,
	},
}

type riskAdjustment struct {
	shareBps int
	capBps   int
	months   int
}

// Higher risk preference widens the payout cap and lengthens the time cap:
// investors demand more cushion. Lower risk tightens the revenue share.
var riskTable = map[domain.RiskLevel]riskAdjustment{
	domain.RiskLevelLow:    {shareBps: -100, capBps: -1000, months: -6},
	domain.RiskLevelMedium: {},
	domain.RiskLevelHigh:   {shareBps: +100, capBps: +2000, months: +6},
}

// Propose returns the three tier proposals for the given inputs, ordered
// low, medium, high.
func Propose(in Input) ([3]Proposal, error) {
	var out [3]Proposal

	if !in.RiskLevel.IsValid() {
		return out, fmt.Errorf("tier.Propose: risk level %q: %w", in.RiskLevel, domain.ErrInvalidRequest)
	}
	if in.MaxRaiseCents <= 0 {
		return out, fmt.Errorf("tier.Propose: %w", domain.ErrInvalidAmount)
	}

	adj := riskTable[in.RiskLevel]
	for i, name := range [3]domain.TierName{domain.TierLow, domain.TierMedium, domain.TierHigh} {
		t := baseline[name]
		t.RevenueShareBps = clampShare(t.RevenueShareBps + adj.shareBps)
		t.PayoutCapBps += adj.capBps
		t.TimeCapMonths += adj.months

		out[i] = Proposal{Terms: t, Explanation: explain(in, t)}
	}
	return out, nil
}

// CapMultiple renders a payout cap expressed in bps as a decimal multiple,
// e.g. 15000 -> "1.5".
func CapMultiple(capBps int) decimal.Decimal {
	return decimal.NewFromInt(int64(capBps)).Div(decimal.NewFromInt(10000))
}

// PayoutCapCents applies a cap multiple in bps to a principal, flooring to
// the cent.
func PayoutCapCents(principalCents int64, capBps int) int64 {
	return decimal.NewFromInt(principalCents).
		Mul(decimal.NewFromInt(int64(capBps))).
		Div(decimal.NewFromInt(10000)).
		Floor().IntPart()
}

func clampShare(bps int) int {
	if bps < MinShareBps {
		return MinShareBps
	}
	if bps > MaxShareBps {
		return MaxShareBps
	}
	return bps
}

func explain(in Input, t domain.TierTerms) Explanation {
	return Explanation{
		RiskLevel:     in.RiskLevel,
		RevenueStage:  in.RevenueStage,
		MaxRaiseCents: in.MaxRaiseCents,
		CapMultiple:   CapMultiple(t.PayoutCapBps).String(),
		Rationale: map[string]string{
			"revenue_share": fmt.Sprintf("%d bps of gross revenue for %s risk preference, bounded to [%d, %d] bps", t.RevenueShareBps, in.RiskLevel, MinShareBps, MaxShareBps),
			"payout_cap":    fmt.Sprintf("%sx of principal; higher risk widens the cushion investors require", CapMultiple(t.PayoutCapBps)),
			"time_cap":      fmt.Sprintf("accrual stops after %d months regardless of remaining cap headroom", t.TimeCapMonths),
			"exit_fees":     fmt.Sprintf("%d bps in quarterly windows, %d bps off-cycle; off-cycle costs more to favour scheduled exits", t.ExitFeeBpsQuarterly, t.ExitFeeBpsOffcycle),
		},
	}
}

// MarshalExplanation serializes an explanation deterministically for storage
// on a tier option row.
func MarshalExplanation(e Explanation) (json.RawMessage, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("tier.MarshalExplanation: %w", err)
	}
	return b, nil
}
