package exits_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/payments"
	"github.com/radionhq/revshare-engine/internal/repository"
	"github.com/radionhq/revshare-engine/internal/service/exits"
	"github.com/radionhq/revshare-engine/internal/testutil"
)

func setupExitService(t *testing.T, db *sql.DB) *exits.Service {
	t.Helper()
	return exits.NewService(
		repository.NewExitRepository(db),
		repository.NewContractRepository(db),
		repository.NewInvestmentRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewLoanReferralRepository(db),
		payments.NewSimulator(),
		db,
	)
}

type exitFixture struct {
	founder  *domain.User
	investor *domain.User
	admin    *domain.User
	contract *domain.Contract
}

// seedExitFixture builds a contract old enough to clear its holding period,
// with 10_000 cents already distributed against a 50_000 principal.
func seedExitFixture(t *testing.T, db *sql.DB) exitFixture {
	t.Helper()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	investor := testutil.SeedUser(t, db, "investor@test.com", domain.RoleInvestor)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)

	_, round := testutil.SeedPublishedRound(t, db, founder.ID, 200_000)
	activated := time.Now().UTC().AddDate(0, 0, -120)
	_, contract := testutil.SeedFundedContract(t, db, round.ID, investor.ID, 50_000, testutil.DefaultTerms(), activated)
	testutil.SeedLedgerEntry(t, db, contract.ID, domain.EntryTypeDistribution, 10_000)

	return exitFixture{founder: founder, investor: investor, admin: admin, contract: contract}
}

func TestRequest_QuotesOutstandingFee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	req, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeQuarterly)
	require.NoError(t, err)

	assert.Equal(t, domain.ExitStatusRequested, req.Status)
	// Outstanding 40_000 at 200 bps.
	assert.Equal(t, int64(800), req.QuotedFeeCents)
	assert.Nil(t, req.SettledAt)
}

func TestRequest_Guards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	t.Run("not the owner", func(t *testing.T) {
		stranger := testutil.SeedUser(t, db, "stranger@test.com", domain.RoleInvestor)
		_, err := svc.Request(ctx, fx.contract.ID, stranger.ID, domain.ExitTypeQuarterly)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("hold not met", func(t *testing.T) {
		_, round := testutil.SeedPublishedRound(t, db, fx.founder.ID, 200_000)
		_, young := testutil.SeedFundedContract(t, db, round.ID, fx.investor.ID, 50_000,
			testutil.DefaultTerms(), time.Now().UTC().AddDate(0, 0, -10))

		_, err := svc.Request(ctx, young.ID, fx.investor.ID, domain.ExitTypeOffcycle)
		assert.ErrorIs(t, err, domain.ErrMinHoldNotMet)
	})

	t.Run("open request pending", func(t *testing.T) {
		_, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeQuarterly)
		require.NoError(t, err)

		_, err = svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeOffcycle)
		assert.ErrorIs(t, err, domain.ErrExitPending)
	})
}

func TestSettle_Cash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	req, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeQuarterly)
	require.NoError(t, err)

	settled, err := svc.Settle(ctx, req.ID, fx.admin.ID, domain.SettlementMethodCash)
	require.NoError(t, err)

	assert.Equal(t, domain.ExitStatusSettled, settled.Status)
	assert.Equal(t, int64(800), settled.QuotedFeeCents)
	require.NotNil(t, settled.NetAmountCents)
	assert.Equal(t, int64(39_200), *settled.NetAmountCents)
	require.NotNil(t, settled.SettlementRef)
	assert.True(t, strings.HasPrefix(*settled.SettlementRef, "sim_payout_"))

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM contracts WHERE id = $1`, fx.contract.ID).Scan(&status))
	assert.Equal(t, "closed", status)

	var settlements, fees int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE contract_id = $1 AND entry_type = 'exit_settlement'`,
		fx.contract.ID).Scan(&settlements))
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE contract_id = $1 AND entry_type = 'fee'`,
		fx.contract.ID).Scan(&fees))
	assert.Equal(t, 1, settlements)
	assert.Equal(t, 1, fees)
}

func TestSettle_RepricesAfterNewDistributions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	req, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeQuarterly)
	require.NoError(t, err)
	assert.Equal(t, int64(800), req.QuotedFeeCents)

	// Another 20_000 lands between quote and settlement.
	testutil.SeedLedgerEntry(t, db, fx.contract.ID, domain.EntryTypeDistribution, 20_000)

	settled, err := svc.Settle(ctx, req.ID, fx.admin.ID, domain.SettlementMethodCash)
	require.NoError(t, err)

	// Outstanding dropped to 20_000, so the fee follows.
	assert.Equal(t, int64(400), settled.QuotedFeeCents)
	require.NotNil(t, settled.NetAmountCents)
	assert.Equal(t, int64(19_600), *settled.NetAmountCents)
}

func TestSettle_LoanReferral(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	req, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeOffcycle)
	require.NoError(t, err)

	settled, err := svc.Settle(ctx, req.ID, fx.admin.ID, domain.SettlementMethodLoanReferral)
	require.NoError(t, err)

	require.NotNil(t, settled.SettlementRef)
	assert.True(t, strings.HasPrefix(*settled.SettlementRef, "loan_"))

	referral, err := repository.NewLoanReferralRepository(db).GetByExitRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.contract.ID, referral.ContractID)
	// Offcycle: 500 bps on 40_000 outstanding.
	assert.Equal(t, int64(2_000), referral.FeeCents)
	assert.Equal(t, int64(38_000), referral.AmountCents)

	// The principal moves outside the ledger; only the fee is posted.
	var settlements int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE contract_id = $1 AND entry_type = 'exit_settlement'`,
		fx.contract.ID).Scan(&settlements))
	assert.Zero(t, settlements)
}

func TestSettle_ContractClosedInBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	req, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeQuarterly)
	require.NoError(t, err)

	// A distribution run closed the contract after the request was filed.
	_, err = db.Exec(`UPDATE contracts SET status = 'closed' WHERE id = $1`, fx.contract.ID)
	require.NoError(t, err)

	_, err = svc.Settle(ctx, req.ID, fx.admin.ID, domain.SettlementMethodCash)
	assert.ErrorIs(t, err, domain.ErrContractNotActive)

	// Nothing was paid out or posted.
	var entries int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE contract_id = $1 AND entry_type IN ('exit_settlement', 'fee')`,
		fx.contract.ID).Scan(&entries))
	assert.Zero(t, entries)
}

func TestSettle_Twice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	req, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeQuarterly)
	require.NoError(t, err)

	_, err = svc.Settle(ctx, req.ID, fx.admin.ID, domain.SettlementMethodCash)
	require.NoError(t, err)

	_, err = svc.Settle(ctx, req.ID, fx.admin.ID, domain.SettlementMethodCash)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
}

func TestReject_KeepsContractActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupExitService(t, db)
	ctx := context.Background()
	fx := seedExitFixture(t, db)

	req, err := svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeQuarterly)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID, fx.admin.ID, "wrong window")
	require.NoError(t, err)
	assert.Equal(t, domain.ExitStatusRejected, rejected.Status)

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM contracts WHERE id = $1`, fx.contract.ID).Scan(&status))
	assert.Equal(t, "active", status)

	_, err = svc.Settle(ctx, req.ID, fx.admin.ID, domain.SettlementMethodCash)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)

	// A rejected request no longer blocks a new one.
	_, err = svc.Request(ctx, fx.contract.ID, fx.investor.ID, domain.ExitTypeOffcycle)
	assert.NoError(t, err)
}
