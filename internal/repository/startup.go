package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const startupColumns = `id, founder_user_id, name, country, industry, revenue_stage,
	website, description, status, created_at`

type StartupRepository struct {
	db *sql.DB
}

func NewStartupRepository(db *sql.DB) *StartupRepository {
	return &StartupRepository{db: db}
}

func (r *StartupRepository) Create(ctx context.Context, s *domain.Startup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO startups (id, founder_user_id, name, country, industry, revenue_stage,
			website, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.FounderUserID, s.Name, s.Country, s.Industry, s.RevenueStage,
		s.Website, s.Description, s.Status, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *StartupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Startup, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+startupColumns+` FROM startups WHERE id = $1`, id)
	s, err := scanStartup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return s, nil
}

func (r *StartupRepository) GetByFounder(ctx context.Context, founderID uuid.UUID) (*domain.Startup, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+startupColumns+` FROM startups WHERE founder_user_id = $1 ORDER BY created_at LIMIT 1`,
		founderID)
	s, err := scanStartup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByFounder: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByFounder: %w", err)
	}
	return s, nil
}

// Archive soft-deletes: startups are never removed.
func (r *StartupRepository) Archive(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE startups SET status = $1 WHERE id = $2`, domain.StartupStatusArchived, id)
	if err != nil {
		return fmt.Errorf("Archive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Archive: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Archive: %w", domain.ErrNotFound)
	}
	return nil
}

func scanStartup(s scanner) (*domain.Startup, error) {
	var out domain.Startup
	err := s.Scan(&out.ID, &out.FounderUserID, &out.Name, &out.Country, &out.Industry,
		&out.RevenueStage, &out.Website, &out.Description, &out.Status, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
