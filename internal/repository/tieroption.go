package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const tierOptionColumns = `id, round_id, tier, revenue_share_bps, payout_cap_bps,
	time_cap_months, min_hold_days, exit_fee_bps_quarterly, exit_fee_bps_offcycle, explanation_json`

type TierOptionRepository struct {
	db *sql.DB
}

func NewTierOptionRepository(db *sql.DB) *TierOptionRepository {
	return &TierOptionRepository{db: db}
}

// ReplaceForRound swaps the full proposal set atomically. Committed tiers
// are unaffected because contracts copy terms by value.
func (r *TierOptionRepository) ReplaceForRound(ctx context.Context, tx *sql.Tx, roundID uuid.UUID, options []domain.TierOption) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tier_options WHERE round_id = $1`, roundID); err != nil {
		return fmt.Errorf("ReplaceForRound: delete: %w", err)
	}

	for _, opt := range options {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tier_options (id, round_id, tier, revenue_share_bps, payout_cap_bps,
				time_cap_months, min_hold_days, exit_fee_bps_quarterly, exit_fee_bps_offcycle,
				explanation_json)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			opt.ID, opt.RoundID, opt.Terms.Name, opt.Terms.RevenueShareBps, opt.Terms.PayoutCapBps,
			opt.Terms.TimeCapMonths, opt.Terms.MinHoldDays, opt.Terms.ExitFeeBpsQuarterly,
			opt.Terms.ExitFeeBpsOffcycle, string(opt.Explanation),
		)
		if err != nil {
			return fmt.Errorf("ReplaceForRound: insert %s: %w", opt.Terms.Name, err)
		}
	}
	return nil
}

func (r *TierOptionRepository) ListByRound(ctx context.Context, roundID uuid.UUID) ([]domain.TierOption, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tierOptionColumns+` FROM tier_options WHERE round_id = $1
		ORDER BY CASE tier WHEN 'low' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END`, roundID)
	if err != nil {
		return nil, fmt.Errorf("ListByRound: %w", err)
	}
	defer rows.Close()

	var options []domain.TierOption
	for rows.Next() {
		opt, err := scanTierOption(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByRound: scan: %w", err)
		}
		options = append(options, *opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByRound: rows: %w", err)
	}
	return options, nil
}

func (r *TierOptionRepository) GetByRoundAndTier(ctx context.Context, roundID uuid.UUID, tierName domain.TierName) (*domain.TierOption, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tierOptionColumns+` FROM tier_options WHERE round_id = $1 AND tier = $2`,
		roundID, tierName)
	opt, err := scanTierOption(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByRoundAndTier: %w", domain.ErrTierNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByRoundAndTier: %w", err)
	}
	return opt, nil
}

func scanTierOption(s scanner) (*domain.TierOption, error) {
	var opt domain.TierOption
	var explanation string
	err := s.Scan(&opt.ID, &opt.RoundID, &opt.Terms.Name, &opt.Terms.RevenueShareBps,
		&opt.Terms.PayoutCapBps, &opt.Terms.TimeCapMonths, &opt.Terms.MinHoldDays,
		&opt.Terms.ExitFeeBpsQuarterly, &opt.Terms.ExitFeeBpsOffcycle, &explanation)
	if err != nil {
		return nil, err
	}
	opt.Explanation = []byte(explanation)
	return &opt, nil
}
