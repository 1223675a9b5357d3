package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const contractColumns = `id, investment_id, status, principal_cents, payout_cap_cents,
	revenue_share_bps, payout_cap_bps, time_cap_months, min_hold_days,
	exit_fee_bps_quarterly, exit_fee_bps_offcycle, tier, activated_at`

type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, tx *sql.Tx, c *domain.Contract) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO contracts (id, investment_id, status, principal_cents, payout_cap_cents,
			revenue_share_bps, payout_cap_bps, time_cap_months, min_hold_days,
			exit_fee_bps_quarterly, exit_fee_bps_offcycle, tier, activated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.InvestmentID, c.Status, c.PrincipalCents, c.PayoutCapCents,
		c.Terms.RevenueShareBps, c.Terms.PayoutCapBps, c.Terms.TimeCapMonths,
		c.Terms.MinHoldDays, c.Terms.ExitFeeBpsQuarterly, c.Terms.ExitFeeBpsOffcycle,
		c.Terms.Name, c.ActivatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *ContractRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Contract, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, id)
	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return c, nil
}

// ListActiveByRoundForUpdate locks every active contract of a round in id
// order, serializing the distribution run against concurrent exits.
func (r *ContractRepository) ListActiveByRoundForUpdate(ctx context.Context, tx *sql.Tx, roundID uuid.UUID) ([]domain.Contract, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT c.`+aliasContractColumns("c")+`
		FROM contracts c
		JOIN investments i ON i.id = c.investment_id
		WHERE i.round_id = $1 AND c.status = $2
		ORDER BY c.id
		FOR UPDATE OF c`, roundID, domain.ContractStatusActive)
	if err != nil {
		return nil, fmt.Errorf("ListActiveByRoundForUpdate: %w", err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActiveByRoundForUpdate: scan: %w", err)
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActiveByRoundForUpdate: rows: %w", err)
	}
	return contracts, nil
}

func (r *ContractRepository) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.`+aliasContractColumns("c")+`
		FROM contracts c
		JOIN investments i ON i.id = c.investment_id
		WHERE i.investor_user_id = $1
		ORDER BY c.activated_at`, investorID)
	if err != nil {
		return nil, fmt.Errorf("ListByInvestor: %w", err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByInvestor: scan: %w", err)
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByInvestor: rows: %w", err)
	}
	return contracts, nil
}

func (r *ContractRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.ContractStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE contracts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return nil
}

func aliasContractColumns(alias string) string {
	return `id, ` + alias + `.investment_id, ` + alias + `.status, ` + alias + `.principal_cents, ` +
		alias + `.payout_cap_cents, ` + alias + `.revenue_share_bps, ` + alias + `.payout_cap_bps, ` +
		alias + `.time_cap_months, ` + alias + `.min_hold_days, ` + alias + `.exit_fee_bps_quarterly, ` +
		alias + `.exit_fee_bps_offcycle, ` + alias + `.tier, ` + alias + `.activated_at`
}

func scanContract(s scanner) (*domain.Contract, error) {
	var c domain.Contract
	err := s.Scan(&c.ID, &c.InvestmentID, &c.Status, &c.PrincipalCents, &c.PayoutCapCents,
		&c.Terms.RevenueShareBps, &c.Terms.PayoutCapBps, &c.Terms.TimeCapMonths,
		&c.Terms.MinHoldDays, &c.Terms.ExitFeeBpsQuarterly, &c.Terms.ExitFeeBpsOffcycle,
		&c.Terms.Name, &c.ActivatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
