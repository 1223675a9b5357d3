package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/tier"
	"github.com/radionhq/revshare-engine/internal/workflow"
)

type roundRepo interface {
	Create(ctx context.Context, round *domain.Round) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Round, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.Round, error)
	ListPublished(ctx context.Context) ([]domain.Round, error)
	List(ctx context.Context) ([]domain.Round, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RoundStatus, publishedAt *time.Time) error
	SelectTier(ctx context.Context, id uuid.UUID, tierName domain.TierName) error
	RaisedCents(ctx context.Context, roundID uuid.UUID) (int64, error)
}

type tierOptionRepo interface {
	ReplaceForRound(ctx context.Context, tx *sql.Tx, roundID uuid.UUID, options []domain.TierOption) error
	ListByRound(ctx context.Context, roundID uuid.UUID) ([]domain.TierOption, error)
	GetByRoundAndTier(ctx context.Context, roundID uuid.UUID, tierName domain.TierName) (*domain.TierOption, error)
}

type RoundService struct {
	rounds       roundRepo
	tierOptions  tierOptionRepo
	applications applicationRepo
	startups     startupRepo
	audit        auditWriter
	db           *sql.DB
}

func NewRoundService(
	rounds roundRepo,
	tierOptions tierOptionRepo,
	applications applicationRepo,
	startups startupRepo,
	audit auditWriter,
	db *sql.DB,
) *RoundService {
	return &RoundService{
		rounds:       rounds,
		tierOptions:  tierOptions,
		applications: applications,
		startups:     startups,
		audit:        audit,
		db:           db,
	}
}

type CreateRoundRequest struct {
	StartupID     uuid.UUID
	FounderID     uuid.UUID
	Title         string
	MaxRaiseCents int64
}

// Create opens a draft round against the startup's approved application. The
// raise may not exceed the approved limit.
func (s *RoundService) Create(ctx context.Context, req CreateRoundRequest) (*domain.Round, error) {
	startup, err := s.startups.GetByID(ctx, req.StartupID)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	if startup.FounderUserID != req.FounderID {
		return nil, fmt.Errorf("Create: %w", domain.ErrForbidden)
	}

	app, err := s.applications.GetByStartup(ctx, req.StartupID)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	if app.Status != domain.ApplicationStatusApproved {
		return nil, fmt.Errorf("Create: %w", domain.ErrApplicationNotApproved)
	}
	if req.MaxRaiseCents <= 0 || req.MaxRaiseCents > app.RequestedLimitCents {
		return nil, fmt.Errorf("Create: %w", domain.ErrInvalidAmount)
	}

	round := &domain.Round{
		ID:            uuid.New(),
		StartupID:     req.StartupID,
		ApplicationID: app.ID,
		Title:         req.Title,
		MaxRaiseCents: req.MaxRaiseCents,
		Status:        domain.RoundStatusDraft,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.rounds.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return round, nil
}

// ProposeTiers regenerates the round's three tier options from the
// application's risk preference. Allowed until the round is published;
// re-proposing replaces unselected options wholesale.
func (s *RoundService) ProposeTiers(ctx context.Context, roundID, founderID uuid.UUID) ([]domain.TierOption, error) {
	log := logging.FromContext(ctx)

	round, startup, err := s.ownedRound(ctx, roundID, founderID)
	if err != nil {
		return nil, fmt.Errorf("ProposeTiers: %w", err)
	}

	next, err := workflow.Next(workflow.KindRound, string(round.Status), workflow.ActionAssignTier)
	if err != nil {
		return nil, fmt.Errorf("ProposeTiers: %w", err)
	}
	if round.TierSelected != nil {
		return nil, fmt.Errorf("ProposeTiers: %w", domain.ErrTierAlreadySelected)
	}

	app, err := s.applications.GetByID(ctx, round.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("ProposeTiers: %w", err)
	}

	proposals, err := tier.Propose(tier.Input{
		MaxRaiseCents: round.MaxRaiseCents,
		RiskLevel:     app.RiskPreference,
		RevenueStage:  startup.RevenueStage,
	})
	if err != nil {
		return nil, fmt.Errorf("ProposeTiers: %w", err)
	}

	options := make([]domain.TierOption, 0, len(proposals))
	for _, p := range proposals {
		explanation, err := tier.MarshalExplanation(p.Explanation)
		if err != nil {
			return nil, fmt.Errorf("ProposeTiers: %w", err)
		}
		options = append(options, domain.TierOption{
			ID:          uuid.New(),
			RoundID:     round.ID,
			Terms:       p.Terms,
			Explanation: explanation,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ProposeTiers: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.tierOptions.ReplaceForRound(ctx, tx, round.ID, options); err != nil {
		return nil, fmt.Errorf("ProposeTiers: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ProposeTiers: commit: %w", err)
	}

	status := domain.RoundStatus(next)
	if round.Status != status {
		if err := s.rounds.UpdateStatus(ctx, round.ID, status, nil); err != nil {
			return nil, fmt.Errorf("ProposeTiers: %w", err)
		}
	}

	log.Info("tier options proposed", "round_id", round.ID, "risk_level", app.RiskPreference)
	return options, nil
}

// SelectTier commits the founder to one of the proposed tiers. The selection
// is one-time; a second call fails no matter which tier it names.
func (s *RoundService) SelectTier(ctx context.Context, roundID, founderID uuid.UUID, name domain.TierName) (*domain.Round, error) {
	round, _, err := s.ownedRound(ctx, roundID, founderID)
	if err != nil {
		return nil, fmt.Errorf("SelectTier: %w", err)
	}
	if !name.IsValid() {
		return nil, fmt.Errorf("SelectTier: %w", domain.ErrInvalidRequest)
	}
	if round.Status != domain.RoundStatusTierAssigned {
		return nil, fmt.Errorf("SelectTier: %w", domain.ErrInvalidTransition)
	}

	if _, err := s.tierOptions.GetByRoundAndTier(ctx, round.ID, name); err != nil {
		return nil, fmt.Errorf("SelectTier: %w", err)
	}
	if err := s.rounds.SelectTier(ctx, round.ID, name); err != nil {
		return nil, fmt.Errorf("SelectTier: %w", err)
	}

	round.TierSelected = &name
	logging.FromContext(ctx).Info("tier selected", "round_id", round.ID, "tier", name)
	return round, nil
}

// Publish opens the round to investors. Requires a committed tier selection.
func (s *RoundService) Publish(ctx context.Context, roundID, founderID uuid.UUID) (*domain.Round, error) {
	round, _, err := s.ownedRound(ctx, roundID, founderID)
	if err != nil {
		return nil, fmt.Errorf("Publish: %w", err)
	}

	next, err := workflow.Next(workflow.KindRound, string(round.Status), workflow.ActionPublish)
	if err != nil {
		return nil, fmt.Errorf("Publish: %w", err)
	}
	if round.TierSelected == nil {
		return nil, fmt.Errorf("Publish: %w", domain.ErrTierNotSelected)
	}

	now := time.Now().UTC()
	status := domain.RoundStatus(next)
	if err := s.rounds.UpdateStatus(ctx, round.ID, status, &now); err != nil {
		return nil, fmt.Errorf("Publish: %w", err)
	}

	round.Status = status
	round.PublishedAt = &now
	logging.FromContext(ctx).Info("round published", "round_id", round.ID, "tier", *round.TierSelected)
	return round, nil
}

// Close stops further investment. Existing contracts keep accruing.
func (s *RoundService) Close(ctx context.Context, roundID, actorID uuid.UUID) (*domain.Round, error) {
	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("Close: %w", err)
	}

	next, err := workflow.Next(workflow.KindRound, string(round.Status), workflow.ActionClose)
	if err != nil {
		return nil, fmt.Errorf("Close: %w", err)
	}

	status := domain.RoundStatus(next)
	if err := s.rounds.UpdateStatus(ctx, round.ID, status, nil); err != nil {
		return nil, fmt.Errorf("Close: %w", err)
	}

	s.writeRoundAudit(ctx, actorID, "round.close", round.ID)

	round.Status = status
	logging.FromContext(ctx).Info("round closed", "round_id", round.ID)
	return round, nil
}

// Get returns the round with its derived raise total.
func (s *RoundService) Get(ctx context.Context, roundID uuid.UUID) (*domain.Round, int64, error) {
	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, 0, fmt.Errorf("Get: %w", err)
	}
	raised, err := s.rounds.RaisedCents(ctx, roundID)
	if err != nil {
		return nil, 0, fmt.Errorf("Get: %w", err)
	}
	return round, raised, nil
}

func (s *RoundService) ListPublished(ctx context.Context) ([]domain.Round, error) {
	rounds, err := s.rounds.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListPublished: %w", err)
	}
	return rounds, nil
}

func (s *RoundService) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.Round, error) {
	rounds, err := s.rounds.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("ListByStartup: %w", err)
	}
	return rounds, nil
}

func (s *RoundService) ListTierOptions(ctx context.Context, roundID uuid.UUID) ([]domain.TierOption, error) {
	options, err := s.tierOptions.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("ListTierOptions: %w", err)
	}
	return options, nil
}

func (s *RoundService) ownedRound(ctx context.Context, roundID, founderID uuid.UUID) (*domain.Round, *domain.Startup, error) {
	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, nil, err
	}
	startup, err := s.startups.GetByID(ctx, round.StartupID)
	if err != nil {
		return nil, nil, err
	}
	if startup.FounderUserID != founderID {
		return nil, nil, domain.ErrForbidden
	}
	return round, startup, nil
}

func (s *RoundService) writeRoundAudit(ctx context.Context, actorID uuid.UUID, action string, roundID uuid.UUID) {
	entry := &domain.AuditLog{
		ID:          uuid.New(),
		ActorUserID: actorID,
		Action:      action,
		EntityType:  "round",
		EntityID:    roundID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("audit write failed", "action", action, "error", err)
	}
}
