package tier

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/domain"
)

func TestPropose_Deterministic(t *testing.T) {
	in := Input{MaxRaiseCents: 10_000_000, RiskLevel: domain.RiskLevelMedium, RevenueStage: "recurring"}

	first, err := Propose(in)
	require.NoError(t, err)
	second, err := Propose(in)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second))

	a, err := MarshalExplanation(first[0].Explanation)
	require.NoError(t, err)
	b, err := MarshalExplanation(second[0].Explanation)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestPropose_TierOrdering(t *testing.T) {
	proposals, err := Propose(Input{MaxRaiseCents: 5_000_000, RiskLevel: domain.RiskLevelMedium})
	require.NoError(t, err)

	low, medium, high := proposals[0].Terms, proposals[1].Terms, proposals[2].Terms
	assert.Equal(t, domain.TierLow, low.Name)
	assert.Equal(t, domain.TierMedium, medium.Name)
	assert.Equal(t, domain.TierHigh, high.Name)

	assert.Less(t, low.RevenueShareBps, medium.RevenueShareBps)
	assert.Less(t, medium.RevenueShareBps, high.RevenueShareBps)
	assert.Less(t, low.PayoutCapBps, medium.PayoutCapBps)
	assert.Less(t, medium.PayoutCapBps, high.PayoutCapBps)
}

func TestPropose_RiskAdjustment(t *testing.T) {
	lowRisk, err := Propose(Input{MaxRaiseCents: 5_000_000, RiskLevel: domain.RiskLevelLow})
	require.NoError(t, err)
	highRisk, err := Propose(Input{MaxRaiseCents: 5_000_000, RiskLevel: domain.RiskLevelHigh})
	require.NoError(t, err)

	for i := range lowRisk {
		assert.LessOrEqual(t, lowRisk[i].Terms.RevenueShareBps, highRisk[i].Terms.RevenueShareBps)
		assert.Less(t, lowRisk[i].Terms.PayoutCapBps, highRisk[i].Terms.PayoutCapBps)
		assert.Less(t, lowRisk[i].Terms.TimeCapMonths, highRisk[i].Terms.TimeCapMonths)
	}
}

func TestPropose_ShareBounds(t *testing.T) {
	for _, risk := range []domain.RiskLevel{domain.RiskLevelLow, domain.RiskLevelMedium, domain.RiskLevelHigh} {
		proposals, err := Propose(Input{MaxRaiseCents: 1_000_000, RiskLevel: risk})
		require.NoError(t, err)
		for _, p := range proposals {
			assert.GreaterOrEqual(t, p.Terms.RevenueShareBps, MinShareBps)
			assert.LessOrEqual(t, p.Terms.RevenueShareBps, MaxShareBps)
		}
	}
}

func TestPropose_OffcycleFeeAtLeastQuarterly(t *testing.T) {
	proposals, err := Propose(Input{MaxRaiseCents: 5_000_000, RiskLevel: domain.RiskLevelHigh})
	require.NoError(t, err)

	for _, p := range proposals {
		assert.GreaterOrEqual(t, p.Terms.ExitFeeBpsOffcycle, p.Terms.ExitFeeBpsQuarterly)
	}
}

func TestPropose_InvalidInput(t *testing.T) {
	_, err := Propose(Input{MaxRaiseCents: 5_000_000, RiskLevel: "reckless"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = Propose(Input{MaxRaiseCents: 0, RiskLevel: domain.RiskLevelLow})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestPayoutCapCents(t *testing.T) {
	tests := []struct {
		name      string
		principal int64
		capBps    int
		want      int64
	}{
		{"1.5x of 50000", 50_000, 15000, 75_000},
		{"1.2x of 33333 floors", 33_333, 12000, 39_999},
		{"1.8x of 1 cent", 1, 18000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PayoutCapCents(tt.principal, tt.capBps))
		})
	}
}
