package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const ledgerColumns = `id, entry_type, contract_id, round_id, startup_id, actor_user_id,
	distribution_id, amount_cents, currency, created_at`

// LedgerRepository only ever appends. Derived figures (paid-to-date, fees,
// balances) are folds over committed entries so they can never drift.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Append(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (entry_type, contract_id, round_id, startup_id,
			actor_user_id, distribution_id, amount_cents, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		e.EntryType, e.ContractID, e.RoundID, e.StartupID, e.ActorUserID,
		e.DistributionID, e.AmountCents, e.Currency, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

// PaidToDate folds distribution and adjustment entries for a contract.
func (r *LedgerRepository) PaidToDate(ctx context.Context, contractID uuid.UUID) (int64, error) {
	return paidToDate(ctx, r.db, contractID)
}

// PaidToDateTx is the in-transaction variant used under a contract or round
// row lock, so the figure is consistent with the locked rows.
func (r *LedgerRepository) PaidToDateTx(ctx context.Context, tx *sql.Tx, contractID uuid.UUID) (int64, error) {
	return paidToDate(ctx, tx, contractID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func paidToDate(ctx context.Context, q querier, contractID uuid.UUID) (int64, error) {
	var total int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries
		WHERE contract_id = $1 AND entry_type IN ($2, $3)`,
		contractID, domain.EntryTypeDistribution, domain.EntryTypeAdjustment,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("paidToDate: %w", err)
	}
	return total, nil
}

// FeesTotal folds fee entries for a contract.
func (r *LedgerRepository) FeesTotal(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries
		WHERE contract_id = $1 AND entry_type = $2`,
		contractID, domain.EntryTypeFee,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("FeesTotal: %w", err)
	}
	return total, nil
}

func (r *LedgerRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE contract_id = $1 ORDER BY id`,
		contractID)
	if err != nil {
		return nil, fmt.Errorf("ListByContract: %w", err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows, "ListByContract")
}

func (r *LedgerRepository) ListByDistribution(ctx context.Context, distributionID uuid.UUID) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE distribution_id = $1 ORDER BY id`,
		distributionID)
	if err != nil {
		return nil, fmt.Errorf("ListByDistribution: %w", err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows, "ListByDistribution")
}

func (r *LedgerRepository) List(ctx context.Context, limit, offset int) ([]domain.LedgerEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_entries`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	entries, err := collectLedgerEntries(rows, "List")
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func collectLedgerEntries(rows *sql.Rows, op string) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		err := rows.Scan(&e.ID, &e.EntryType, &e.ContractID, &e.RoundID, &e.StartupID,
			&e.ActorUserID, &e.DistributionID, &e.AmountCents, &e.Currency, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return entries, nil
}
