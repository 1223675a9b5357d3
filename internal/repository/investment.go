package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type InvestmentRepository struct {
	db *sql.DB
}

func NewInvestmentRepository(db *sql.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, tx *sql.Tx, inv *domain.Investment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO investments (id, round_id, investor_user_id, amount_cents, payment_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.RoundID, inv.InvestorUserID, inv.AmountCents, inv.PaymentRef, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *InvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, round_id, investor_user_id, amount_cents, payment_ref, created_at
		FROM investments WHERE id = $1`, id)
	inv, err := scanInvestment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return inv, nil
}

func (r *InvestmentRepository) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Investment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, round_id, investor_user_id, amount_cents, payment_ref, created_at
		FROM investments WHERE investor_user_id = $1 ORDER BY created_at`, investorID)
	if err != nil {
		return nil, fmt.Errorf("ListByInvestor: %w", err)
	}
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByInvestor: scan: %w", err)
		}
		investments = append(investments, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByInvestor: rows: %w", err)
	}
	return investments, nil
}

func scanInvestment(s scanner) (*domain.Investment, error) {
	var inv domain.Investment
	err := s.Scan(&inv.ID, &inv.RoundID, &inv.InvestorUserID, &inv.AmountCents,
		&inv.PaymentRef, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
