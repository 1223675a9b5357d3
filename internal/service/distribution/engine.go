// Package distribution applies one monthly revenue report to a round's
// active contracts. Planning is pure arithmetic over a snapshot of contract
// state; Run wraps a plan in the transaction and locks that make it safe and
// exactly-once.
package distribution

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radionhq/revshare-engine/internal/domain"
)

// ContractState is the snapshot a plan works from: the contract plus its
// ledger-derived paid-to-date at the moment the row was locked.
type ContractState struct {
	Contract        domain.Contract
	PaidToDateCents int64
}

// Line is one contract's share of a distribution.
type Line struct {
	Contract    domain.Contract
	AmountCents int64
	NewStatus   domain.ContractStatus
}

// Plan is the complete, not-yet-persisted outcome of a distribution run.
type Plan struct {
	Lines      []Line
	TotalCents int64
}

var bpsDenominator = decimal.NewFromInt(10000)

// BuildPlan computes each active contract's payout for the given month.
//
// The gross share is grossRevenueCents * revenue_share_bps / 10000, split
// pro-rata as principal over the round's raised total. The denominator is
// always raisedCents, never the surviving principals: a capped or closed
// contract's slice stays with the platform instead of flowing to the other
// contracts. Each line is floored to the cent; sub-cent remainders stay with
// the platform. A contract past its time cap gets nothing and closes. A
// contract whose payment would cross its payout cap is clamped to the
// remaining headroom and marked capped.
func BuildPlan(states []ContractState, raisedCents, grossRevenueCents int64, year int, month time.Month) (*Plan, error) {
	plan := &Plan{Lines: make([]Line, 0, len(states))}

	active := make([]ContractState, 0, len(states))
	for _, st := range states {
		if st.PaidToDateCents > st.Contract.PayoutCapCents {
			return nil, fmt.Errorf("distribution.BuildPlan: contract %s paid %d beyond cap %d: %w",
				st.Contract.ID, st.PaidToDateCents, st.Contract.PayoutCapCents, domain.ErrCapExceeded)
		}
		if st.Contract.MonthsSince(year, month) > st.Contract.Terms.TimeCapMonths {
			plan.Lines = append(plan.Lines, Line{
				Contract:  st.Contract,
				NewStatus: domain.ContractStatusClosed,
			})
			continue
		}
		active = append(active, st)
	}

	if len(active) == 0 || raisedCents <= 0 || grossRevenueCents == 0 {
		return plan, nil
	}

	// All active contracts of a round share one tier, so the share rate is
	// uniform; the pro-rata split by principal is what varies per contract.
	raisedDec := decimal.NewFromInt(raisedCents)
	grossDec := decimal.NewFromInt(grossRevenueCents)

	for _, st := range active {
		share := grossDec.
			Mul(decimal.NewFromInt(int64(st.Contract.Terms.RevenueShareBps))).
			Div(bpsDenominator).
			Mul(decimal.NewFromInt(st.Contract.PrincipalCents)).
			Div(raisedDec).
			Floor().IntPart()

		status := st.Contract.Status
		headroom := st.Contract.PayoutCapCents - st.PaidToDateCents
		if share >= headroom {
			share = headroom
			status = domain.ContractStatusCapped
		}

		plan.Lines = append(plan.Lines, Line{
			Contract:    st.Contract,
			AmountCents: share,
			NewStatus:   status,
		})
		plan.TotalCents += share
	}

	return plan, nil
}
