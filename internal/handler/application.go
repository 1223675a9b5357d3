package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/service"
	"github.com/radionhq/revshare-engine/internal/workflow"
)

type applicationService interface {
	CreateDraft(ctx context.Context, req service.CreateApplicationRequest) (*domain.Application, error)
	UpdateDraft(ctx context.Context, id, founderID uuid.UUID, requestedLimitCents int64, risk domain.RiskLevel) (*domain.Application, error)
	Submit(ctx context.Context, id, founderID uuid.UUID) (*domain.Application, error)
	Withdraw(ctx context.Context, id, founderID uuid.UUID) (*domain.Application, error)
	Review(ctx context.Context, id, reviewerID uuid.UUID, action workflow.Action, notes *string) (*domain.Application, error)
	GetOwned(ctx context.Context, id, founderID uuid.UUID) (*domain.Application, error)
	List(ctx context.Context) ([]domain.Application, error)
}

type ApplicationHandler struct {
	applications applicationService
}

func NewApplicationHandler(applications applicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type createApplicationRequest struct {
	StartupID           string `json:"startup_id"`
	RequestedLimitCents int64  `json:"requested_limit_cents"`
	RiskPreference      string `json:"risk_preference"`
}

func (r createApplicationRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := uuid.Parse(r.StartupID); err != nil {
		errs = append(errs, FieldError{Field: "startup_id", Message: "must be a UUID"})
	}
	if r.RequestedLimitCents <= 0 {
		errs = append(errs, FieldError{Field: "requested_limit_cents", Message: "must be greater than zero"})
	}
	if !domain.RiskLevel(r.RiskPreference).IsValid() {
		errs = append(errs, FieldError{Field: "risk_preference", Message: "must be low, medium, or high"})
	}
	return errs
}

type applicationDTO struct {
	ID                  uuid.UUID  `json:"id"`
	StartupID           uuid.UUID  `json:"startup_id"`
	Status              string     `json:"status"`
	RequestedLimitCents int64      `json:"requested_limit_cents"`
	RiskPreference      string     `json:"risk_preference"`
	FeeCents            int64      `json:"fee_cents"`
	FeePaymentRef       *string    `json:"fee_payment_ref"`
	AdminNotes          *string    `json:"admin_notes"`
	CreatedAt           time.Time  `json:"created_at"`
	SubmittedAt         *time.Time `json:"submitted_at"`
	ReviewedAt          *time.Time `json:"reviewed_at"`
}

func toApplicationDTO(a *domain.Application) applicationDTO {
	return applicationDTO{
		ID:                  a.ID,
		StartupID:           a.StartupID,
		Status:              string(a.Status),
		RequestedLimitCents: a.RequestedLimitCents,
		RiskPreference:      string(a.RiskPreference),
		FeeCents:            a.FeeCents,
		FeePaymentRef:       a.FeePaymentRef,
		AdminNotes:          a.AdminNotes,
		CreatedAt:           a.CreatedAt,
		SubmittedAt:         a.SubmittedAt,
		ReviewedAt:          a.ReviewedAt,
	}
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	startupID, _ := uuid.Parse(req.StartupID)
	app, err := h.applications.CreateDraft(r.Context(), service.CreateApplicationRequest{
		StartupID:           startupID,
		FounderID:           id.UserID,
		RequestedLimitCents: req.RequestedLimitCents,
		RiskPreference:      domain.RiskLevel(req.RiskPreference),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create application", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toApplicationDTO(app))
}

type updateApplicationRequest struct {
	RequestedLimitCents int64  `json:"requested_limit_cents"`
	RiskPreference      string `json:"risk_preference"`
}

func (r updateApplicationRequest) Validate() []FieldError {
	var errs []FieldError
	if r.RequestedLimitCents <= 0 {
		errs = append(errs, FieldError{Field: "requested_limit_cents", Message: "must be greater than zero"})
	}
	if !domain.RiskLevel(r.RiskPreference).IsValid() {
		errs = append(errs, FieldError{Field: "risk_preference", Message: "must be low, medium, or high"})
	}
	return errs
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	applicationID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	app, err := h.applications.UpdateDraft(r.Context(), applicationID, id.UserID,
		req.RequestedLimitCents, domain.RiskLevel(req.RiskPreference))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApplicationDTO(app))
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	applicationID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	app, err := h.applications.Submit(r.Context(), applicationID, id.UserID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to submit application", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApplicationDTO(app))
}

func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	applicationID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	app, err := h.applications.Withdraw(r.Context(), applicationID, id.UserID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to withdraw application", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApplicationDTO(app))
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	applicationID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	app, err := h.applications.GetOwned(r.Context(), applicationID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApplicationDTO(app))
}
