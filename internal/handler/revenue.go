package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/service"
)

type revenueService interface {
	Report(ctx context.Context, req service.ReportRevenueRequest) (*domain.RevenueReport, error)
	ListByStartup(ctx context.Context, startupID, founderID uuid.UUID) ([]domain.RevenueReport, error)
}

type RevenueHandler struct {
	revenue revenueService
}

func NewRevenueHandler(revenue revenueService) *RevenueHandler {
	return &RevenueHandler{revenue: revenue}
}

type reportRevenueRequest struct {
	Month             string `json:"month"`
	GrossRevenueCents int64  `json:"gross_revenue_cents"`
}

func (r reportRevenueRequest) Validate() []FieldError {
	var errs []FieldError
	if _, _, err := domain.ParseMonth(r.Month); err != nil {
		errs = append(errs, FieldError{Field: "month", Message: "must be formatted YYYY-MM"})
	}
	if r.GrossRevenueCents < 0 {
		errs = append(errs, FieldError{Field: "gross_revenue_cents", Message: "must not be negative"})
	}
	return errs
}

type revenueReportDTO struct {
	ID                uuid.UUID `json:"id"`
	StartupID         uuid.UUID `json:"startup_id"`
	Month             string    `json:"month"`
	GrossRevenueCents int64     `json:"gross_revenue_cents"`
	CreatedAt         time.Time `json:"created_at"`
}

func toRevenueReportDTO(rep *domain.RevenueReport) revenueReportDTO {
	return revenueReportDTO{
		ID:                rep.ID,
		StartupID:         rep.StartupID,
		Month:             rep.Month,
		GrossRevenueCents: rep.GrossRevenueCents,
		CreatedAt:         rep.CreatedAt,
	}
}

func (h *RevenueHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	startupID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req reportRevenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	report, err := h.revenue.Report(r.Context(), service.ReportRevenueRequest{
		StartupID:         startupID,
		FounderID:         id.UserID,
		Month:             req.Month,
		GrossRevenueCents: req.GrossRevenueCents,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toRevenueReportDTO(report))
}

func (h *RevenueHandler) List(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	startupID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	reports, err := h.revenue.ListByStartup(r.Context(), startupID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]revenueReportDTO, len(reports))
	for i := range reports {
		dtos[i] = toRevenueReportDTO(&reports[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
