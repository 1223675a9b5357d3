package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type LoanReferralRepository struct {
	db *sql.DB
}

func NewLoanReferralRepository(db *sql.DB) *LoanReferralRepository {
	return &LoanReferralRepository{db: db}
}

func (r *LoanReferralRepository) Create(ctx context.Context, tx *sql.Tx, l *domain.LoanReferral) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO loan_referrals (id, exit_request_id, contract_id, amount_cents, fee_cents,
			status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.ExitRequestID, l.ContractID, l.AmountCents, l.FeeCents, l.Status, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *LoanReferralRepository) GetByExitRequest(ctx context.Context, exitRequestID uuid.UUID) (*domain.LoanReferral, error) {
	var l domain.LoanReferral
	err := r.db.QueryRowContext(ctx,
		`SELECT id, exit_request_id, contract_id, amount_cents, fee_cents, status, created_at
		FROM loan_referrals WHERE exit_request_id = $1`, exitRequestID,
	).Scan(&l.ID, &l.ExitRequestID, &l.ContractID, &l.AmountCents, &l.FeeCents, &l.Status, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByExitRequest: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByExitRequest: %w", err)
	}
	return &l, nil
}
