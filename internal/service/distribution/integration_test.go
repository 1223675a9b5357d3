package distribution_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/repository"
	"github.com/radionhq/revshare-engine/internal/service/distribution"
	"github.com/radionhq/revshare-engine/internal/testutil"
)

var activated = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func setupDistributionService(t *testing.T, db *sql.DB) *distribution.Service {
	t.Helper()
	return distribution.NewService(
		repository.NewRoundRepository(db),
		repository.NewRevenueReportRepository(db),
		repository.NewDistributionRepository(db),
		repository.NewContractRepository(db),
		repository.NewLedgerRepository(db),
		db,
	)
}

func TestRun_ProRataHappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupDistributionService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investorA := testutil.SeedUser(t, db, "alice@test.com", domain.RoleInvestor)
	investorB := testutil.SeedUser(t, db, "bob@test.com", domain.RoleInvestor)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	startup, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
	_, contractA := testutil.SeedFundedContract(t, db, round.ID, investorA.ID, 50_000, testutil.DefaultTerms(), activated)
	_, contractB := testutil.SeedFundedContract(t, db, round.ID, investorB.ID, 50_000, testutil.DefaultTerms(), activated)
	testutil.SeedRevenueReport(t, db, startup.ID, "2026-07", 1_000_000, founder.ID)

	res, err := svc.Run(ctx, round.ID, "2026-07", admin.ID)
	require.NoError(t, err)
	require.False(t, res.Replayed)

	assert.Equal(t, int64(50_000), res.Distribution.TotalDistributedCents)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, int64(25_000), testutil.PaidToDate(t, db, contractA.ID))
	assert.Equal(t, int64(25_000), testutil.PaidToDate(t, db, contractB.ID))
	assert.Equal(t, 2, testutil.CountLedgerEntries(t, db, res.Distribution.ID))
}

func TestRun_SecondRunReplays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupDistributionService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	startup, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
	_, contract := testutil.SeedFundedContract(t, db, round.ID, investor.ID, 50_000, testutil.DefaultTerms(), activated)
	testutil.SeedRevenueReport(t, db, startup.ID, "2026-07", 1_000_000, founder.ID)

	first, err := svc.Run(ctx, round.ID, "2026-07", admin.ID)
	require.NoError(t, err)
	require.False(t, first.Replayed)

	second, err := svc.Run(ctx, round.ID, "2026-07", admin.ID)
	require.NoError(t, err)
	assert.True(t, second.Replayed)

	assert.Equal(t, first.Distribution.ID, second.Distribution.ID)
	assert.Equal(t, first.Distribution.TotalDistributedCents, second.Distribution.TotalDistributedCents)
	assert.Len(t, second.Entries, len(first.Entries))

	// The replay posted nothing new.
	assert.Equal(t, int64(50_000), testutil.PaidToDate(t, db, contract.ID))
	assert.Equal(t, 1, testutil.CountLedgerEntries(t, db, first.Distribution.ID))
}

func TestRun_CapsContractAtHeadroom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupDistributionService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	startup, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
	_, contract := testutil.SeedFundedContract(t, db, round.ID, investor.ID, 50_000, testutil.DefaultTerms(), activated)

	// Cap is 75_000; leave only 5_000 of headroom.
	testutil.SeedLedgerEntry(t, db, contract.ID, domain.EntryTypeDistribution, 70_000)
	testutil.SeedRevenueReport(t, db, startup.ID, "2026-07", 1_000_000, founder.ID)

	res, err := svc.Run(ctx, round.ID, "2026-07", admin.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(5_000), res.Distribution.TotalDistributedCents)
	assert.Equal(t, int64(75_000), testutil.PaidToDate(t, db, contract.ID))

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM contracts WHERE id = $1`, contract.ID).Scan(&status))
	assert.Equal(t, "capped", status)
}

func TestRun_CappedContractKeepsDenominator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupDistributionService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investorA := testutil.SeedUser(t, db, "alice@test.com", domain.RoleInvestor)
	investorB := testutil.SeedUser(t, db, "bob@test.com", domain.RoleInvestor)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	startup, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
	_, contractA := testutil.SeedFundedContract(t, db, round.ID, investorA.ID, 50_000, testutil.DefaultTerms(), activated)
	_, contractB := testutil.SeedFundedContract(t, db, round.ID, investorB.ID, 50_000, testutil.DefaultTerms(), activated)

	// A's cap is 75_000; leave it 5_000 of headroom so July caps it out.
	testutil.SeedLedgerEntry(t, db, contractA.ID, domain.EntryTypeDistribution, 70_000)
	testutil.SeedRevenueReport(t, db, startup.ID, "2026-07", 1_000_000, founder.ID)
	testutil.SeedRevenueReport(t, db, startup.ID, "2026-08", 1_000_000, founder.ID)

	july, err := svc.Run(ctx, round.ID, "2026-07", admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30_000), july.Distribution.TotalDistributedCents)
	assert.Equal(t, int64(75_000), testutil.PaidToDate(t, db, contractA.ID))
	assert.Equal(t, int64(25_000), testutil.PaidToDate(t, db, contractB.ID))

	// August pays B alone, but its slice is still principal over the round's
	// raised 100_000. A's capped-out slice stays with the platform.
	august, err := svc.Run(ctx, round.ID, "2026-08", admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25_000), august.Distribution.TotalDistributedCents)
	require.Len(t, august.Entries, 1)
	assert.Equal(t, contractB.ID, *august.Entries[0].ContractID)
	assert.Equal(t, int64(50_000), testutil.PaidToDate(t, db, contractB.ID))
	assert.Equal(t, int64(75_000), testutil.PaidToDate(t, db, contractA.ID))
}

func TestRun_ClosedRoundStillAccrues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupDistributionService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	startup, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
	testutil.SeedFundedContract(t, db, round.ID, investor.ID, 50_000, testutil.DefaultTerms(), activated)
	testutil.SeedRevenueReport(t, db, startup.ID, "2026-07", 1_000_000, founder.ID)

	_, err := db.Exec(`UPDATE rounds SET status = 'closed' WHERE id = $1`, round.ID)
	require.NoError(t, err)

	res, err := svc.Run(ctx, round.ID, "2026-07", admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), res.Distribution.TotalDistributedCents)
}

func TestRun_Guards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupDistributionService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	startup := testutil.SeedStartup(t, db, founder.ID)
	app := testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusApproved, 200_000)
	draft := testutil.SeedRound(t, db, startup.ID, app.ID, 200_000, domain.RoundStatusDraft)

	t.Run("round not published", func(t *testing.T) {
		_, err := svc.Run(ctx, draft.ID, "2026-07", admin.ID)
		assert.ErrorIs(t, err, domain.ErrRoundNotPublished)
	})

	t.Run("bad month", func(t *testing.T) {
		_, err := svc.Run(ctx, draft.ID, "July 2026", admin.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidMonth)
	})

	t.Run("no revenue report", func(t *testing.T) {
		_, published := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
		_, err := svc.Run(ctx, published.ID, "2026-07", admin.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGet_ReturnsPastRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupDistributionService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	startup, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
	testutil.SeedFundedContract(t, db, round.ID, investor.ID, 50_000, testutil.DefaultTerms(), activated)
	testutil.SeedRevenueReport(t, db, startup.ID, "2026-07", 1_000_000, founder.ID)

	ran, err := svc.Run(ctx, round.ID, "2026-07", admin.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, round.ID, "2026-07")
	require.NoError(t, err)
	assert.False(t, got.Replayed)
	assert.Equal(t, ran.Distribution.ID, got.Distribution.ID)
	assert.Len(t, got.Entries, 1)

	_, err = svc.Get(ctx, round.ID, "2026-08")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
