package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const distributionColumns = `id, round_id, month, revenue_report_id, total_distributed_cents,
	created_by, created_at`

type DistributionRepository struct {
	db *sql.DB
}

func NewDistributionRepository(db *sql.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// TryCreate claims the (round, month) slot before any ledger entry is
// posted. false means another run already holds it; the caller replays the
// stored result instead of distributing again.
func (r *DistributionRepository) TryCreate(ctx context.Context, tx *sql.Tx, d *domain.Distribution) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO distributions (id, round_id, month, revenue_report_id,
			total_distributed_cents, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (round_id, month) DO NOTHING`,
		d.ID, d.RoundID, d.Month, d.RevenueReportID,
		d.TotalDistributedCents, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("TryCreate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("TryCreate: rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *DistributionRepository) SetTotal(ctx context.Context, tx *sql.Tx, id uuid.UUID, totalCents int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE distributions SET total_distributed_cents = $1 WHERE id = $2`, totalCents, id)
	if err != nil {
		return fmt.Errorf("SetTotal: %w", err)
	}
	return nil
}

func (r *DistributionRepository) GetByRoundAndMonth(ctx context.Context, roundID uuid.UUID, month string) (*domain.Distribution, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+distributionColumns+` FROM distributions WHERE round_id = $1 AND month = $2`,
		roundID, month)
	d, err := scanDistribution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByRoundAndMonth: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByRoundAndMonth: %w", err)
	}
	return d, nil
}

func (r *DistributionRepository) ExistsForReport(ctx context.Context, reportID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM distributions WHERE revenue_report_id = $1)`, reportID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsForReport: %w", err)
	}
	return exists, nil
}

func scanDistribution(s scanner) (*domain.Distribution, error) {
	var d domain.Distribution
	err := s.Scan(&d.ID, &d.RoundID, &d.Month, &d.RevenueReportID,
		&d.TotalDistributedCents, &d.CreatedBy, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
