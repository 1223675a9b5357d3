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

const exitColumns = `id, contract_id, investor_user_id, exit_type, status, quoted_fee_cents,
	net_amount_cents, settlement_method, settlement_ref, admin_notes, requested_at, settled_at`

type ExitRepository struct {
	db *sql.DB
}

func NewExitRepository(db *sql.DB) *ExitRepository {
	return &ExitRepository{db: db}
}

func (r *ExitRepository) Create(ctx context.Context, e *domain.ExitRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exit_requests (id, contract_id, investor_user_id, exit_type, status,
			quoted_fee_cents, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.ContractID, e.InvestorUserID, e.ExitType, e.Status,
		e.QuotedFeeCents, e.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ExitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExitRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+exitColumns+` FROM exit_requests WHERE id = $1`, id)
	e, err := scanExitRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return e, nil
}

func (r *ExitRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.ExitRequest, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+exitColumns+` FROM exit_requests WHERE id = $1 FOR UPDATE`, id)
	e, err := scanExitRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return e, nil
}

func (r *ExitRepository) Settle(ctx context.Context, tx *sql.Tx, id uuid.UUID, feeCents, netCents int64, method domain.SettlementMethod, ref string, settledAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE exit_requests
		SET status = $1, quoted_fee_cents = $2, net_amount_cents = $3,
			settlement_method = $4, settlement_ref = $5, settled_at = $6
		WHERE id = $7`,
		domain.ExitStatusSettled, feeCents, netCents, method, ref, settledAt, id,
	)
	if err != nil {
		return fmt.Errorf("Settle: %w", err)
	}
	return nil
}

func (r *ExitRepository) Reject(ctx context.Context, id uuid.UUID, notes string, settledAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exit_requests SET status = $1, admin_notes = $2, settled_at = $3
		WHERE id = $4 AND status = $5`,
		domain.ExitStatusRejected, notes, settledAt, id, domain.ExitStatusRequested,
	)
	if err != nil {
		return fmt.Errorf("Reject: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Reject: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Reject: %w", domain.ErrAlreadySettled)
	}
	return nil
}

func (r *ExitRepository) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ExitRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+exitColumns+` FROM exit_requests
		WHERE investor_user_id = $1 ORDER BY requested_at DESC`, investorID)
	if err != nil {
		return nil, fmt.Errorf("ListByInvestor: %w", err)
	}
	defer rows.Close()
	return collectExitRequests(rows)
}

func (r *ExitRepository) ListByStatus(ctx context.Context, status domain.ExitStatus) ([]domain.ExitRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+exitColumns+` FROM exit_requests
		WHERE status = $1 ORDER BY requested_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	defer rows.Close()
	return collectExitRequests(rows)
}

// HasOpenRequest reports whether the contract already has a pending exit.
func (r *ExitRepository) HasOpenRequest(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM exit_requests WHERE contract_id = $1 AND status = $2)`,
		contractID, domain.ExitStatusRequested,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("HasOpenRequest: %w", err)
	}
	return exists, nil
}

func collectExitRequests(rows *sql.Rows) ([]domain.ExitRequest, error) {
	var out []domain.ExitRequest
	for rows.Next() {
		e, err := scanExitRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("collectExitRequests: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collectExitRequests: %w", err)
	}
	return out, nil
}

func scanExitRequest(s scanner) (*domain.ExitRequest, error) {
	var (
		e      domain.ExitRequest
		net    sql.NullInt64
		method sql.NullString
		ref    sql.NullString
		notes  sql.NullString
	)
	err := s.Scan(&e.ID, &e.ContractID, &e.InvestorUserID, &e.ExitType, &e.Status,
		&e.QuotedFeeCents, &net, &method, &ref, &notes, &e.RequestedAt, &e.SettledAt)
	if err != nil {
		return nil, err
	}
	if net.Valid {
		e.NetAmountCents = &net.Int64
	}
	if method.Valid {
		m := domain.SettlementMethod(method.String)
		e.SettlementMethod = &m
	}
	if ref.Valid {
		e.SettlementRef = &ref.String
	}
	if notes.Valid {
		e.AdminNotes = &notes.String
	}
	return &e, nil
}
