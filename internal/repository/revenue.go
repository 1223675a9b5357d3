package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const revenueReportColumns = `id, startup_id, month, gross_revenue_cents, reported_by, created_at`

type RevenueReportRepository struct {
	db *sql.DB
}

func NewRevenueReportRepository(db *sql.DB) *RevenueReportRepository {
	return &RevenueReportRepository{db: db}
}

// TryCreate inserts and reports whether a row was written; false means a
// report already exists for (startup, month).
func (r *RevenueReportRepository) TryCreate(ctx context.Context, report *domain.RevenueReport) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO revenue_reports (id, startup_id, month, gross_revenue_cents, reported_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (startup_id, month) DO NOTHING`,
		report.ID, report.StartupID, report.Month, report.GrossRevenueCents,
		report.ReportedBy, report.CreatedAt,
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

func (r *RevenueReportRepository) GetByStartupAndMonth(ctx context.Context, startupID uuid.UUID, month string) (*domain.RevenueReport, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+revenueReportColumns+` FROM revenue_reports WHERE startup_id = $1 AND month = $2`,
		startupID, month)
	report, err := scanRevenueReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByStartupAndMonth: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByStartupAndMonth: %w", err)
	}
	return report, nil
}

func (r *RevenueReportRepository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.RevenueReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+revenueReportColumns+` FROM revenue_reports WHERE startup_id = $1 ORDER BY month`,
		startupID)
	if err != nil {
		return nil, fmt.Errorf("ListByStartup: %w", err)
	}
	defer rows.Close()

	var reports []domain.RevenueReport
	for rows.Next() {
		report, err := scanRevenueReport(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByStartup: scan: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByStartup: rows: %w", err)
	}
	return reports, nil
}

func scanRevenueReport(s scanner) (*domain.RevenueReport, error) {
	var report domain.RevenueReport
	err := s.Scan(&report.ID, &report.StartupID, &report.Month, &report.GrossRevenueCents,
		&report.ReportedBy, &report.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
