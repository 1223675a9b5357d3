package exits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/radionhq/revshare-engine/internal/domain"
)

func testContract(principalCents int64, activated time.Time) domain.Contract {
	return domain.Contract{
		Status:         domain.ContractStatusActive,
		PrincipalCents: principalCents,
		PayoutCapCents: principalCents * 15000 / 10000,
		Terms: domain.TierTerms{
			Name:                domain.TierMedium,
			RevenueShareBps:     500,
			PayoutCapBps:        15000,
			TimeCapMonths:       36,
			MinHoldDays:         90,
			ExitFeeBpsQuarterly: 200,
			ExitFeeBpsOffcycle:  500,
		},
		ActivatedAt: activated,
	}
}

func TestBuildQuote(t *testing.T) {
	c := testContract(100_000, time.Now())

	tests := []struct {
		name            string
		paidCents       int64
		exitType        domain.ExitType
		wantOutstanding int64
		wantFee         int64
	}{
		{"quarterly on full principal", 0, domain.ExitTypeQuarterly, 100_000, 2_000},
		{"offcycle on full principal", 0, domain.ExitTypeOffcycle, 100_000, 5_000},
		{"partial paydown", 40_000, domain.ExitTypeQuarterly, 60_000, 1_200},
		{"fee floors to the cent", 99_951, domain.ExitTypeQuarterly, 49, 0},
		{"paid past principal floors at zero", 120_000, domain.ExitTypeOffcycle, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildQuote(c, tt.paidCents, tt.exitType)
			assert.Equal(t, tt.wantOutstanding, q.OutstandingCents)
			assert.Equal(t, tt.wantFee, q.FeeCents)
			assert.Equal(t, tt.wantOutstanding-tt.wantFee, q.NetCents)
		})
	}
}

func TestBuildQuote_OffcycleCostsMore(t *testing.T) {
	c := testContract(250_000, time.Now())

	quarterly := BuildQuote(c, 0, domain.ExitTypeQuarterly)
	offcycle := BuildQuote(c, 0, domain.ExitTypeOffcycle)

	assert.Greater(t, offcycle.FeeCents, quarterly.FeeCents)
	assert.Less(t, offcycle.NetCents, quarterly.NetCents)
}

func TestHoldMet(t *testing.T) {
	activated := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := testContract(100_000, activated)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"day before hold ends", activated.AddDate(0, 0, 89), false},
		{"exactly at hold boundary", activated.AddDate(0, 0, 90), true},
		{"well past hold", activated.AddDate(0, 6, 0), true},
		{"same instant as activation", activated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HoldMet(c, tt.now))
		})
	}
}
