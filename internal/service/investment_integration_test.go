package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/config"
	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/payments"
	"github.com/radionhq/revshare-engine/internal/repository"
	"github.com/radionhq/revshare-engine/internal/service"
	"github.com/radionhq/revshare-engine/internal/testutil"
)

func setupInvestmentService(t *testing.T, db *sql.DB) *service.InvestmentService {
	t.Helper()
	return service.NewInvestmentService(
		repository.NewInvestmentRepository(db),
		repository.NewContractRepository(db),
		repository.NewRoundRepository(db),
		repository.NewTierOptionRepository(db),
		repository.NewLedgerRepository(db),
		payments.NewSimulator(),
		db,
		&config.Config{
			PlatformFeeBps:     200,
			MaxInvestmentCents: 50_000_000,
		},
	)
}

func TestInvest_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupInvestmentService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	_, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)

	res, err := svc.Invest(ctx, service.InvestRequest{
		RoundID:     round.ID,
		InvestorID:  investor.ID,
		AmountCents: 30_000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(30_000), res.Investment.AmountCents)
	assert.Equal(t, domain.ContractStatusActive, res.Contract.Status)
	assert.Equal(t, int64(30_000), res.Contract.PrincipalCents)
	// Default medium tier carries a 1.5x cap.
	assert.Equal(t, int64(45_000), res.Contract.PayoutCapCents)
	assert.Equal(t, domain.TierMedium, res.Contract.Terms.Name)

	var invEntries, feeEntries int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE contract_id = $1 AND entry_type = 'investment'`,
		res.Contract.ID).Scan(&invEntries))
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE contract_id = $1 AND entry_type = 'platform_fee'`,
		res.Contract.ID).Scan(&feeEntries))
	assert.Equal(t, 1, invEntries)
	assert.Equal(t, 1, feeEntries)

	var feeCents int64
	require.NoError(t, db.QueryRow(
		`SELECT amount_cents FROM ledger_entries WHERE contract_id = $1 AND entry_type = 'platform_fee'`,
		res.Contract.ID).Scan(&feeCents))
	assert.Equal(t, int64(600), feeCents)
}

func TestInvest_CapacityEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupInvestmentService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	_, round := testutil.SeedPublishedRound(t, db, founder.ID, 100_000)

	_, err := svc.Invest(ctx, service.InvestRequest{
		RoundID: round.ID, InvestorID: investor.ID, AmountCents: 80_000,
	})
	require.NoError(t, err)

	_, err = svc.Invest(ctx, service.InvestRequest{
		RoundID: round.ID, InvestorID: investor.ID, AmountCents: 30_000,
	})
	assert.ErrorIs(t, err, domain.ErrRoundFullySubscribed)

	// Filling to exactly the max is allowed.
	_, err = svc.Invest(ctx, service.InvestRequest{
		RoundID: round.ID, InvestorID: investor.ID, AmountCents: 20_000,
	})
	assert.NoError(t, err)
}

func TestInvest_Guards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupInvestmentService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	startup := testutil.SeedStartup(t, db, founder.ID)
	app := testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusApproved, 200_000)

	t.Run("round not published", func(t *testing.T) {
		draft := testutil.SeedRound(t, db, startup.ID, app.ID, 200_000, domain.RoundStatusDraft)
		_, err := svc.Invest(ctx, service.InvestRequest{
			RoundID: draft.ID, InvestorID: investor.ID, AmountCents: 10_000,
		})
		assert.ErrorIs(t, err, domain.ErrRoundNotPublished)
	})

	t.Run("amount out of range", func(t *testing.T) {
		_, published := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)

		_, err := svc.Invest(ctx, service.InvestRequest{
			RoundID: published.ID, InvestorID: investor.ID, AmountCents: 0,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = svc.Invest(ctx, service.InvestRequest{
			RoundID: published.ID, InvestorID: investor.ID, AmountCents: 60_000_000,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}
