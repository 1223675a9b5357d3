package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/repository"
	"github.com/radionhq/revshare-engine/internal/service"
	"github.com/radionhq/revshare-engine/internal/testutil"
)

func setupRoundService(t *testing.T, db *sql.DB) *service.RoundService {
	t.Helper()
	return service.NewRoundService(
		repository.NewRoundRepository(db),
		repository.NewTierOptionRepository(db),
		repository.NewApplicationRepository(db),
		repository.NewStartupRepository(db),
		repository.NewAuditRepository(db),
		db,
	)
}

func TestRoundLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupRoundService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)
	startup := testutil.SeedStartup(t, db, founder.ID)
	testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusApproved, 500_000)

	round, err := svc.Create(ctx, service.CreateRoundRequest{
		StartupID:     startup.ID,
		FounderID:     founder.ID,
		Title:         "Growth round",
		MaxRaiseCents: 400_000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoundStatusDraft, round.Status)

	options, err := svc.ProposeTiers(ctx, round.ID, founder.ID)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, domain.TierLow, options[0].Terms.Name)
	assert.Equal(t, domain.TierHigh, options[2].Terms.Name)

	// Publishing before a tier is committed fails.
	_, err = svc.Publish(ctx, round.ID, founder.ID)
	assert.ErrorIs(t, err, domain.ErrTierNotSelected)

	// Re-proposing before selection replaces the options.
	regenerated, err := svc.ProposeTiers(ctx, round.ID, founder.ID)
	require.NoError(t, err)
	require.Len(t, regenerated, 3)

	selected, err := svc.SelectTier(ctx, round.ID, founder.ID, domain.TierMedium)
	require.NoError(t, err)
	require.NotNil(t, selected.TierSelected)
	assert.Equal(t, domain.TierMedium, *selected.TierSelected)

	// Selection is one-time and freezes the proposals.
	_, err = svc.SelectTier(ctx, round.ID, founder.ID, domain.TierHigh)
	assert.ErrorIs(t, err, domain.ErrTierAlreadySelected)
	_, err = svc.ProposeTiers(ctx, round.ID, founder.ID)
	assert.ErrorIs(t, err, domain.ErrTierAlreadySelected)

	published, err := svc.Publish(ctx, round.ID, founder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundStatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	closed, err := svc.Close(ctx, round.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundStatusClosed, closed.Status)

	_, err = svc.Close(ctx, round.ID, admin.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCreateRound_Guards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupRoundService(t, db)
	ctx := context.Background()

	founder := testutil.SeedUser(t, db, "founder@test.com", domain.RoleFounder)
	other := testutil.SeedUser(t, db, "other@test.com", domain.RoleFounder)

	t.Run("application not approved", func(t *testing.T) {
		startup := testutil.SeedStartup(t, db, founder.ID)
		testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusSubmitted, 500_000)

		_, err := svc.Create(ctx, service.CreateRoundRequest{
			StartupID: startup.ID, FounderID: founder.ID, Title: "r", MaxRaiseCents: 100_000,
		})
		assert.ErrorIs(t, err, domain.ErrApplicationNotApproved)
	})

	t.Run("raise above approved limit", func(t *testing.T) {
		startup := testutil.SeedStartup(t, db, founder.ID)
		testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusApproved, 200_000)

		_, err := svc.Create(ctx, service.CreateRoundRequest{
			StartupID: startup.ID, FounderID: founder.ID, Title: "r", MaxRaiseCents: 300_000,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("not the founder", func(t *testing.T) {
		startup := testutil.SeedStartup(t, db, founder.ID)
		testutil.SeedApplication(t, db, startup.ID, domain.ApplicationStatusApproved, 200_000)

		_, err := svc.Create(ctx, service.CreateRoundRequest{
			StartupID: startup.ID, FounderID: other.ID, Title: "r", MaxRaiseCents: 100_000,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
