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

const roundColumns = `id, startup_id, application_id, title, max_raise_cents, status,
	tier_selected, created_at, published_at`

type RoundRepository struct {
	db *sql.DB
}

func NewRoundRepository(db *sql.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Create(ctx context.Context, round *domain.Round) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rounds (id, startup_id, application_id, title, max_raise_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		round.ID, round.StartupID, round.ApplicationID, round.Title,
		round.MaxRaiseCents, round.Status, round.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *RoundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Round, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id)
	round, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return round, nil
}

// GetForUpdate locks the round row for the duration of tx. Investments and
// distribution runs serialize on this lock.
func (r *RoundRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Round, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE id = $1 FOR UPDATE`, id)
	round, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return round, nil
}

func (r *RoundRepository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.Round, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE startup_id = $1 ORDER BY created_at`, startupID)
	if err != nil {
		return nil, fmt.Errorf("ListByStartup: %w", err)
	}
	defer rows.Close()
	return collectRounds(rows, "ListByStartup")
}

func (r *RoundRepository) ListPublished(ctx context.Context) ([]domain.Round, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE status = $1 ORDER BY published_at DESC`,
		domain.RoundStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("ListPublished: %w", err)
	}
	defer rows.Close()
	return collectRounds(rows, "ListPublished")
}

func (r *RoundRepository) List(ctx context.Context) ([]domain.Round, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()
	return collectRounds(rows, "List")
}

func (r *RoundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RoundStatus, publishedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rounds SET status = $1, published_at = COALESCE($2, published_at) WHERE id = $3`,
		status, publishedAt, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return nil
}

// SelectTier commits a tier by name. The WHERE clause makes the commit
// one-time: a second select reports no rows and surfaces as a conflict.
func (r *RoundRepository) SelectTier(ctx context.Context, id uuid.UUID, tierName domain.TierName) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rounds SET tier_selected = $1 WHERE id = $2 AND tier_selected IS NULL`,
		tierName, id,
	)
	if err != nil {
		return fmt.Errorf("SelectTier: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SelectTier: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("SelectTier: %w", domain.ErrTierAlreadySelected)
	}
	return nil
}

// RaisedCents derives the round's raised total from its investments.
func (r *RoundRepository) RaisedCents(ctx context.Context, roundID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM investments WHERE round_id = $1`, roundID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("RaisedCents: %w", err)
	}
	return total, nil
}

// RaisedCentsTx is the in-transaction variant used under the round row lock.
func (r *RoundRepository) RaisedCentsTx(ctx context.Context, tx *sql.Tx, roundID uuid.UUID) (int64, error) {
	var total int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM investments WHERE round_id = $1`, roundID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("RaisedCentsTx: %w", err)
	}
	return total, nil
}

func collectRounds(rows *sql.Rows, op string) ([]domain.Round, error) {
	var rounds []domain.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		rounds = append(rounds, *round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return rounds, nil
}

func scanRound(s scanner) (*domain.Round, error) {
	var round domain.Round
	err := s.Scan(&round.ID, &round.StartupID, &round.ApplicationID, &round.Title,
		&round.MaxRaiseCents, &round.Status, &round.TierSelected,
		&round.CreatedAt, &round.PublishedAt)
	if err != nil {
		return nil, err
	}
	return &round, nil
}
