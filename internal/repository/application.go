package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const applicationColumns = `id, startup_id, status, requested_limit_cents, risk_preference,
	fee_cents, fee_payment_ref, admin_notes, reviewer_id, created_at, submitted_at, reviewed_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (id, startup_id, status, requested_limit_cents,
			risk_preference, fee_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.StartupID, a.Status, a.RequestedLimitCents, a.RiskPreference,
		a.FeeCents, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *ApplicationRepository) GetByStartup(ctx context.Context, startupID uuid.UUID) (*domain.Application, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE startup_id = $1`, startupID)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByStartup: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByStartup: %w", err)
	}
	return a, nil
}

func (r *ApplicationRepository) List(ctx context.Context) ([]domain.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return apps, nil
}

// UpdateDraft rewrites the editable fields while the application is still a
// draft. Zero rows means the application left draft in the meantime.
func (r *ApplicationRepository) UpdateDraft(ctx context.Context, id uuid.UUID, requestedLimitCents int64, riskPreference domain.RiskLevel) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET requested_limit_cents = $1, risk_preference = $2
		WHERE id = $3 AND status = $4`,
		requestedLimitCents, riskPreference, id, domain.ApplicationStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("UpdateDraft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateDraft: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("UpdateDraft: %w", domain.ErrInvalidTransition)
	}
	return nil
}

func (r *ApplicationRepository) Withdraw(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = $1 WHERE id = $2 AND status = $3`,
		domain.ApplicationStatusWithdrawn, id, domain.ApplicationStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("Withdraw: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Withdraw: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Withdraw: %w", domain.ErrInvalidTransition)
	}
	return nil
}

// MarkSubmitted records the submit transition together with the charged fee.
func (r *ApplicationRepository) MarkSubmitted(ctx context.Context, tx *sql.Tx, id uuid.UUID, feeCents int64, feePaymentRef string, submittedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE applications
		SET status = $1, fee_cents = $2, fee_payment_ref = $3, submitted_at = $4
		WHERE id = $5`,
		domain.ApplicationStatusSubmitted, feeCents, feePaymentRef, submittedAt, id,
	)
	if err != nil {
		return fmt.Errorf("MarkSubmitted: %w", err)
	}
	return nil
}

// Review records an approve or deny decision.
func (r *ApplicationRepository) Review(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus, reviewerID uuid.UUID, notes *string, reviewedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE applications
		SET status = $1, reviewer_id = $2, admin_notes = $3, reviewed_at = $4
		WHERE id = $5`,
		status, reviewerID, notes, reviewedAt, id,
	)
	if err != nil {
		return fmt.Errorf("Review: %w", err)
	}
	return nil
}

func scanApplication(s scanner) (*domain.Application, error) {
	var a domain.Application
	err := s.Scan(&a.ID, &a.StartupID, &a.Status, &a.RequestedLimitCents, &a.RiskPreference,
		&a.FeeCents, &a.FeePaymentRef, &a.AdminNotes, &a.ReviewerID,
		&a.CreatedAt, &a.SubmittedAt, &a.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
