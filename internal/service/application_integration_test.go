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
	"github.com/radionhq/revshare-engine/internal/workflow"
)

func setupApplicationService(t *testing.T, db *sql.DB) *service.ApplicationService {
	t.Helper()
	return service.NewApplicationService(
		repository.NewApplicationRepository(db),
		repository.NewStartupRepository(db),
		repository.NewDocumentRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewAuditRepository(db),
		payments.NewSimulator(),
		db,
		&config.Config{
			CountryMode:         "CA",
			ApplicationFeeCents: 2500,
		},
	)
}

func TestApplicationLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupApplicationService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)
	startup := testutil.SeedStartup(t, db, founder.ID)

	app, err := svc.CreateDraft(ctx, service.CreateApplicationRequest{
		StartupID:           startup.ID,
		FounderID:           founder.ID,
		RequestedLimitCents: 500_000,
		RiskPreference:      domain.RiskLevelMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusDraft, app.Status)
	assert.Equal(t, int64(2500), app.FeeCents)

	// Submitting without the mandatory documents fails and charges nothing.
	_, err = svc.Submit(ctx, app.ID, founder.ID)
	assert.ErrorIs(t, err, domain.ErrMissingDocuments)

	testutil.SeedMandatoryDocuments(t, db, startup.ID)

	submitted, err := svc.Submit(ctx, app.ID, founder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.FeePaymentRef)
	require.NotNil(t, submitted.SubmittedAt)

	var feeEntries int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE startup_id = $1 AND entry_type = 'application_fee'`,
		startup.ID).Scan(&feeEntries))
	assert.Equal(t, 1, feeEntries)

	// Drafts cannot be edited once submitted.
	_, err = svc.UpdateDraft(ctx, app.ID, founder.ID, 600_000, domain.RiskLevelHigh)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Submit(ctx, app.ID, founder.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	notes := "looks solid"
	approved, err := svc.Review(ctx, app.ID, admin.ID, workflow.ActionApprove, &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedAt)

	_, err = svc.Review(ctx, app.ID, admin.ID, workflow.ActionDeny, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWithdrawApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupApplicationService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	stranger := testutil.SeedUser(t, db, "other@test.com", domain.RoleFounder)
	startup := testutil.SeedStartup(t, db, founder.ID)

	app, err := svc.CreateDraft(ctx, service.CreateApplicationRequest{
		StartupID:           startup.ID,
		FounderID:           founder.ID,
		RequestedLimitCents: 500_000,
		RiskPreference:      domain.RiskLevelMedium,
	})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, app.ID, stranger.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	withdrawn, err := svc.Withdraw(ctx, app.ID, founder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusWithdrawn, withdrawn.Status)

	// A withdrawn application is terminal: no edits, no submission.
	_, err = svc.UpdateDraft(ctx, app.ID, founder.ID, 600_000, domain.RiskLevelHigh)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Submit(ctx, app.ID, founder.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Withdraw(ctx, app.ID, founder.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWithdrawApplication_SubmittedStays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupApplicationService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	startup := testutil.SeedStartup(t, db, founder.ID)
	app := testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusSubmitted, 500_000)

	_, err := svc.Withdraw(ctx, app.ID, founder.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM applications WHERE id = $1`, app.ID).Scan(&status))
	assert.Equal(t, "submitted", status)
}

func TestCreateDraft_Guards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupApplicationService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)

	t.Run("one application per startup", func(t *testing.T) {
		startup := testutil.SeedStartup(t, db, founder.ID)
		testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusDraft, 100_000)

		_, err := svc.CreateDraft(ctx, service.CreateApplicationRequest{
			StartupID:           startup.ID,
			FounderID:           founder.ID,
			RequestedLimitCents: 200_000,
			RiskPreference:      domain.RiskLevelLow,
		})
		assert.ErrorIs(t, err, domain.ErrApplicationExists)
	})

	t.Run("country outside mode", func(t *testing.T) {
		startup := testutil.SeedStartup(t, db, founder.ID)
		_, err := db.Exec(`UPDATE startups SET country = 'US' WHERE id = $1`, startup.ID)
		require.NoError(t, err)

		_, err = svc.CreateDraft(ctx, service.CreateApplicationRequest{
			StartupID:           startup.ID,
			FounderID:           founder.ID,
			RequestedLimitCents: 200_000,
			RiskPreference:      domain.RiskLevelLow,
		})
		assert.ErrorIs(t, err, domain.ErrCountryNotSupported)
	})
}

func TestRevenueReport_DuplicateMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	svc := service.NewRevenueService(
		repository.NewRevenueReportRepository(db),
		repository.NewStartupRepository(db),
	)

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	startup := testutil.SeedStartup(t, db, founder.ID)

	report, err := svc.Report(ctx, service.ReportRevenueRequest{
		StartupID: startup.ID, FounderID: founder.ID, Month: "2026-07", GrossRevenueCents: 1_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-07", report.Month)

	_, err = svc.Report(ctx, service.ReportRevenueRequest{
		StartupID: startup.ID, FounderID: founder.ID, Month: "2026-07", GrossRevenueCents: 2_000_000,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateReport)

	_, err = svc.Report(ctx, service.ReportRevenueRequest{
		StartupID: startup.ID, FounderID: founder.ID, Month: "2026/07", GrossRevenueCents: 1_000_000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}
