package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/config"
	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/payments"
	"github.com/radionhq/revshare-engine/internal/workflow"
)

type applicationRepo interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	GetByStartup(ctx context.Context, startupID uuid.UUID) (*domain.Application, error)
	List(ctx context.Context) ([]domain.Application, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, requestedLimitCents int64, riskPreference domain.RiskLevel) error
	Withdraw(ctx context.Context, id uuid.UUID) error
	MarkSubmitted(ctx context.Context, tx *sql.Tx, id uuid.UUID, feeCents int64, feePaymentRef string, submittedAt time.Time) error
	Review(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus, reviewerID uuid.UUID, notes *string, reviewedAt time.Time) error
}

type ledgerAppender interface {
	Append(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error
}

type auditWriter interface {
	Create(ctx context.Context, a *domain.AuditLog) error
}

type ApplicationService struct {
	applications applicationRepo
	startups     startupRepo
	documents    documentRepo
	ledger       ledgerAppender
	audit        auditWriter
	provider     payments.Provider
	db           *sql.DB
	config       *config.Config
}

func NewApplicationService(
	applications applicationRepo,
	startups startupRepo,
	documents documentRepo,
	ledger ledgerAppender,
	audit auditWriter,
	provider payments.Provider,
	db *sql.DB,
	cfg *config.Config,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		startups:     startups,
		documents:    documents,
		ledger:       ledger,
		audit:        audit,
		provider:     provider,
		db:           db,
		config:       cfg,
	}
}

type CreateApplicationRequest struct {
	StartupID           uuid.UUID
	FounderID           uuid.UUID
	RequestedLimitCents int64
	RiskPreference      domain.RiskLevel
}

func (s *ApplicationService) CreateDraft(ctx context.Context, req CreateApplicationRequest) (*domain.Application, error) {
	startup, err := s.ownedStartup(ctx, req.StartupID, req.FounderID)
	if err != nil {
		return nil, fmt.Errorf("CreateDraft: %w", err)
	}
	if startup.Country != s.config.CountryMode {
		return nil, fmt.Errorf("CreateDraft: %w", domain.ErrCountryNotSupported)
	}
	if req.RequestedLimitCents <= 0 {
		return nil, fmt.Errorf("CreateDraft: %w", domain.ErrInvalidAmount)
	}
	if !req.RiskPreference.IsValid() {
		return nil, fmt.Errorf("CreateDraft: %w", domain.ErrInvalidRequest)
	}

	_, err = s.applications.GetByStartup(ctx, req.StartupID)
	if err == nil {
		return nil, fmt.Errorf("CreateDraft: %w", domain.ErrApplicationExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("CreateDraft: check existing: %w", err)
	}

	app := &domain.Application{
		ID:                  uuid.New(),
		StartupID:           req.StartupID,
		Status:              domain.ApplicationStatusDraft,
		RequestedLimitCents: req.RequestedLimitCents,
		RiskPreference:      req.RiskPreference,
		FeeCents:            s.config.ApplicationFeeCents,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("CreateDraft: %w", err)
	}
	return app, nil
}

func (s *ApplicationService) UpdateDraft(ctx context.Context, id, founderID uuid.UUID, requestedLimitCents int64, risk domain.RiskLevel) (*domain.Application, error) {
	app, err := s.getOwned(ctx, id, founderID)
	if err != nil {
		return nil, fmt.Errorf("UpdateDraft: %w", err)
	}
	if requestedLimitCents <= 0 {
		return nil, fmt.Errorf("UpdateDraft: %w", domain.ErrInvalidAmount)
	}
	if !risk.IsValid() {
		return nil, fmt.Errorf("UpdateDraft: %w", domain.ErrInvalidRequest)
	}
	if err := s.applications.UpdateDraft(ctx, app.ID, requestedLimitCents, risk); err != nil {
		return nil, fmt.Errorf("UpdateDraft: %w", err)
	}
	app.RequestedLimitCents = requestedLimitCents
	app.RiskPreference = risk
	return app, nil
}

// Withdraw pulls a draft back before submission. No fee was charged yet, so
// nothing hits the ledger.
func (s *ApplicationService) Withdraw(ctx context.Context, id, founderID uuid.UUID) (*domain.Application, error) {
	app, err := s.getOwned(ctx, id, founderID)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	next, err := workflow.Next(workflow.KindApplication, string(app.Status), workflow.ActionWithdraw)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	if err := s.applications.Withdraw(ctx, app.ID); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	app.Status = domain.ApplicationStatus(next)
	logging.FromContext(ctx).Info("application withdrawn",
		"application_id", app.ID,
		"startup_id", app.StartupID,
	)
	return app, nil
}

// Submit charges the application fee, records the fee ledger entry, and moves
// the application to submitted in a single transaction. All mandatory document
// types must already be on file.
func (s *ApplicationService) Submit(ctx context.Context, id, founderID uuid.UUID) (*domain.Application, error) {
	log := logging.FromContext(ctx)

	app, err := s.getOwned(ctx, id, founderID)
	if err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}

	next, err := workflow.Next(workflow.KindApplication, string(app.Status), workflow.ActionSubmit)
	if err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}

	present, err := s.documents.TypesPresent(ctx, app.StartupID)
	if err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}
	for _, dt := range domain.MandatoryDocumentTypes {
		if !present[dt] {
			return nil, fmt.Errorf("Submit: missing %s: %w", dt, domain.ErrMissingDocuments)
		}
	}

	feeRef, err := s.provider.ChargeApplicationFee(ctx, founderID, app.FeeCents)
	if err != nil {
		return nil, fmt.Errorf("Submit: charge fee: %w", err)
	}

	now := time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Submit: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.applications.MarkSubmitted(ctx, tx, app.ID, app.FeeCents, feeRef, now); err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}

	entry := &domain.LedgerEntry{
		EntryType:   domain.EntryTypeApplicationFee,
		StartupID:   &app.StartupID,
		ActorUserID: &founderID,
		AmountCents: app.FeeCents,
		Currency:    domain.CurrencyCAD,
		CreatedAt:   now,
	}
	if err := s.ledger.Append(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Submit: commit: %w", err)
	}

	app.Status = domain.ApplicationStatus(next)
	app.FeePaymentRef = &feeRef
	app.SubmittedAt = &now

	log.Info("application submitted",
		"application_id", app.ID,
		"startup_id", app.StartupID,
		"fee_cents", app.FeeCents,
		"fee_payment_ref", feeRef,
	)
	return app, nil
}

// Review applies an approve or deny decision from a reviewer.
func (s *ApplicationService) Review(ctx context.Context, id, reviewerID uuid.UUID, action workflow.Action, notes *string) (*domain.Application, error) {
	log := logging.FromContext(ctx)

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Review: %w", err)
	}

	next, err := workflow.Next(workflow.KindApplication, string(app.Status), action)
	if err != nil {
		return nil, fmt.Errorf("Review: %w", err)
	}

	now := time.Now().UTC()
	status := domain.ApplicationStatus(next)
	if err := s.applications.Review(ctx, app.ID, status, reviewerID, notes, now); err != nil {
		return nil, fmt.Errorf("Review: %w", err)
	}

	s.writeAudit(ctx, reviewerID, "application."+string(action), "application", app.ID)

	app.Status = status
	app.ReviewerID = &reviewerID
	app.AdminNotes = notes
	app.ReviewedAt = &now

	log.Info("application reviewed",
		"application_id", app.ID,
		"decision", status,
		"reviewer_id", reviewerID,
	)
	return app, nil
}

func (s *ApplicationService) GetOwned(ctx context.Context, id, founderID uuid.UUID) (*domain.Application, error) {
	app, err := s.getOwned(ctx, id, founderID)
	if err != nil {
		return nil, fmt.Errorf("GetOwned: %w", err)
	}
	return app, nil
}

func (s *ApplicationService) GetByStartup(ctx context.Context, startupID, founderID uuid.UUID) (*domain.Application, error) {
	startup, err := s.startups.GetByID(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("GetByStartup: %w", err)
	}
	if startup.FounderUserID != founderID {
		return nil, fmt.Errorf("GetByStartup: %w", domain.ErrForbidden)
	}
	app, err := s.applications.GetByStartup(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("GetByStartup: %w", err)
	}
	return app, nil
}

func (s *ApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	apps, err := s.applications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return apps, nil
}

func (s *ApplicationService) getOwned(ctx context.Context, id, founderID uuid.UUID) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedStartup(ctx, app.StartupID, founderID); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) ownedStartup(ctx context.Context, startupID, founderID uuid.UUID) (*domain.Startup, error) {
	startup, err := s.startups.GetByID(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if startup.FounderUserID != founderID {
		return nil, domain.ErrForbidden
	}
	return startup, nil
}

func (s *ApplicationService) writeAudit(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID) {
	entry := &domain.AuditLog{
		ID:          uuid.New(),
		ActorUserID: actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.audit.Create(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		logging.FromContext(ctx).Warn("audit write failed", "action", action, "error", err)
	}
}
