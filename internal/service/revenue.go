package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
)

type revenueReportRepo interface {
	TryCreate(ctx context.Context, report *domain.RevenueReport) (bool, error)
	GetByStartupAndMonth(ctx context.Context, startupID uuid.UUID, month string) (*domain.RevenueReport, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.RevenueReport, error)
}

type RevenueService struct {
	reports  revenueReportRepo
	startups startupRepo
}

func NewRevenueService(reports revenueReportRepo, startups startupRepo) *RevenueService {
	return &RevenueService{reports: reports, startups: startups}
}

type ReportRevenueRequest struct {
	StartupID         uuid.UUID
	FounderID         uuid.UUID
	Month             string
	GrossRevenueCents int64
}

// Report records one gross revenue figure for a startup and month. A second
// report for the same pair is rejected, never merged.
func (s *RevenueService) Report(ctx context.Context, req ReportRevenueRequest) (*domain.RevenueReport, error) {
	startup, err := s.startups.GetByID(ctx, req.StartupID)
	if err != nil {
		return nil, fmt.Errorf("Report: %w", err)
	}
	if startup.FounderUserID != req.FounderID {
		return nil, fmt.Errorf("Report: %w", domain.ErrForbidden)
	}
	if _, _, err := domain.ParseMonth(req.Month); err != nil {
		return nil, fmt.Errorf("Report: %w", err)
	}
	if req.GrossRevenueCents < 0 {
		return nil, fmt.Errorf("Report: %w", domain.ErrInvalidAmount)
	}

	report := &domain.RevenueReport{
		ID:                uuid.New(),
		StartupID:         req.StartupID,
		Month:             req.Month,
		GrossRevenueCents: req.GrossRevenueCents,
		ReportedBy:        req.FounderID,
		CreatedAt:         time.Now().UTC(),
	}
	created, err := s.reports.TryCreate(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("Report: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("Report: %s: %w", req.Month, domain.ErrDuplicateReport)
	}

	logging.FromContext(ctx).Info("revenue reported",
		"startup_id", req.StartupID,
		"month", req.Month,
		"gross_revenue_cents", req.GrossRevenueCents,
	)
	return report, nil
}

func (s *RevenueService) ListByStartup(ctx context.Context, startupID, founderID uuid.UUID) ([]domain.RevenueReport, error) {
	startup, err := s.startups.GetByID(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("ListByStartup: %w", err)
	}
	if startup.FounderUserID != founderID {
		return nil, fmt.Errorf("ListByStartup: %w", domain.ErrForbidden)
	}
	reports, err := s.reports.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("ListByStartup: %w", err)
	}
	return reports, nil
}
