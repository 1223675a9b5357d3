package distribution

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/domain"
)

func testTerms() domain.TierTerms {
	return domain.TierTerms{
		Name:                domain.TierMedium,
		RevenueShareBps:     500,
		PayoutCapBps:        15000,
		TimeCapMonths:       36,
		MinHoldDays:         90,
		ExitFeeBpsQuarterly: 200,
		ExitFeeBpsOffcycle:  400,
	}
}

func testState(principalCents, paidCents int64, activated time.Time) ContractState {
	terms := testTerms()
	return ContractState{
		Contract: domain.Contract{
			ID:             uuid.New(),
			InvestmentID:   uuid.New(),
			Status:         domain.ContractStatusActive,
			PrincipalCents: principalCents,
			PayoutCapCents: principalCents * int64(terms.PayoutCapBps) / 10000,
			Terms:          terms,
			ActivatedAt:    activated,
		},
		PaidToDateCents: paidCents,
	}
}

var activated = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestBuildPlan_ProRataSplit(t *testing.T) {
	states := []ContractState{
		testState(50_000, 0, activated),
		testState(50_000, 0, activated),
	}

	plan, err := BuildPlan(states, 100_000, 1_000_000, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 2)

	assert.Equal(t, int64(25_000), plan.Lines[0].AmountCents)
	assert.Equal(t, int64(25_000), plan.Lines[1].AmountCents)
	assert.Equal(t, int64(50_000), plan.TotalCents)
	assert.Equal(t, domain.ContractStatusActive, plan.Lines[0].NewStatus)
}

func TestBuildPlan_FloorsToTheCent(t *testing.T) {
	states := []ContractState{
		testState(10_000, 0, activated),
		testState(10_000, 0, activated),
		testState(10_001, 0, activated),
	}

	gross := int64(999_999)
	plan, err := BuildPlan(states, 30_001, gross, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 3)

	// Sub-cent remainders are dropped, never rounded up, so the lines can
	// only ever sum to at most the round's gross share.
	grossShare := gross * 500 / 10000
	assert.LessOrEqual(t, plan.TotalCents, grossShare)
	for _, line := range plan.Lines {
		assert.Positive(t, line.AmountCents)
	}
}

func TestBuildPlan_ClampsToCapHeadroom(t *testing.T) {
	state := testState(50_000, 70_000, activated) // cap 75_000, headroom 5_000

	plan, err := BuildPlan([]ContractState{state}, 50_000, 160_000, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)

	// Unclamped share would be 8_000.
	assert.Equal(t, int64(5_000), plan.Lines[0].AmountCents)
	assert.Equal(t, domain.ContractStatusCapped, plan.Lines[0].NewStatus)
	assert.Equal(t, int64(5_000), plan.TotalCents)
}

func TestBuildPlan_ExactCapMarksCapped(t *testing.T) {
	state := testState(50_000, 75_000, activated)

	plan, err := BuildPlan([]ContractState{state}, 50_000, 160_000, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)

	assert.Zero(t, plan.Lines[0].AmountCents)
	assert.Equal(t, domain.ContractStatusCapped, plan.Lines[0].NewStatus)
}

func TestBuildPlan_PaidBeyondCapFailsWholePlan(t *testing.T) {
	states := []ContractState{
		testState(50_000, 0, activated),
		testState(50_000, 75_001, activated),
	}

	_, err := BuildPlan(states, 100_000, 1_000_000, 2026, time.July)
	assert.ErrorIs(t, err, domain.ErrCapExceeded)
}

func TestBuildPlan_TimeCapClosesContract(t *testing.T) {
	old := testState(50_000, 10_000, time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC))
	fresh := testState(50_000, 0, activated)

	plan, err := BuildPlan([]ContractState{old, fresh}, 100_000, 1_000_000, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 2)

	assert.Zero(t, plan.Lines[0].AmountCents)
	assert.Equal(t, domain.ContractStatusClosed, plan.Lines[0].NewStatus)

	// The closed contract's slice does not flow to the survivor; its payout is
	// still principal over the full raised total.
	assert.Equal(t, int64(25_000), plan.Lines[1].AmountCents)
	assert.Equal(t, int64(25_000), plan.TotalCents)
}

func TestBuildPlan_CappedSliceNotRedistributed(t *testing.T) {
	// Round raised 100_000 across two 50_000 contracts; one has already capped
	// out and no longer appears in the active set. The survivor's denominator
	// stays the raised total, so its share of gross 1_000_000 at 500 bps is
	// 25_000, not the 50_000 a surviving-principal split would give.
	survivor := testState(50_000, 0, activated)

	plan, err := BuildPlan([]ContractState{survivor}, 100_000, 1_000_000, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)

	assert.Equal(t, int64(25_000), plan.Lines[0].AmountCents)
	assert.Equal(t, int64(25_000), plan.TotalCents)
}

func TestBuildPlan_ZeroRevenue(t *testing.T) {
	plan, err := BuildPlan([]ContractState{testState(50_000, 0, activated)}, 50_000, 0, 2026, time.July)
	require.NoError(t, err)

	assert.Empty(t, plan.Lines)
	assert.Zero(t, plan.TotalCents)
}

func TestBuildPlan_NoContracts(t *testing.T) {
	plan, err := BuildPlan(nil, 0, 1_000_000, 2026, time.July)
	require.NoError(t, err)

	assert.Empty(t, plan.Lines)
	assert.Zero(t, plan.TotalCents)
}
