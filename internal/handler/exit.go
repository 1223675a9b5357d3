package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
)

type exitService interface {
	Request(ctx context.Context, contractID, investorID uuid.UUID, exitType domain.ExitType) (*domain.ExitRequest, error)
	Settle(ctx context.Context, exitID, adminID uuid.UUID, method domain.SettlementMethod) (*domain.ExitRequest, error)
	Reject(ctx context.Context, exitID, adminID uuid.UUID, notes string) (*domain.ExitRequest, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ExitRequest, error)
	ListPending(ctx context.Context) ([]domain.ExitRequest, error)
}

type ExitHandler struct {
	exits exitService
}

func NewExitHandler(exits exitService) *ExitHandler {
	return &ExitHandler{exits: exits}
}

type requestExitRequest struct {
	ContractID string `json:"contract_id"`
	ExitType   string `json:"exit_type"`
}

func (r requestExitRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := uuid.Parse(r.ContractID); err != nil {
		errs = append(errs, FieldError{Field: "contract_id", Message: "must be a UUID"})
	}
	if !domain.ExitType(r.ExitType).IsValid() {
		errs = append(errs, FieldError{Field: "exit_type", Message: "must be quarterly or offcycle"})
	}
	return errs
}

type exitRequestDTO struct {
	ID               uuid.UUID  `json:"id"`
	ContractID       uuid.UUID  `json:"contract_id"`
	ExitType         string     `json:"exit_type"`
	Status           string     `json:"status"`
	QuotedFeeCents   int64      `json:"quoted_fee_cents"`
	NetAmountCents   *int64     `json:"net_amount_cents"`
	SettlementMethod *string    `json:"settlement_method"`
	SettlementRef    *string    `json:"settlement_ref"`
	RequestedAt      time.Time  `json:"requested_at"`
	SettledAt        *time.Time `json:"settled_at"`
}

func toExitRequestDTO(e *domain.ExitRequest) exitRequestDTO {
	dto := exitRequestDTO{
		ID:             e.ID,
		ContractID:     e.ContractID,
		ExitType:       string(e.ExitType),
		Status:         string(e.Status),
		QuotedFeeCents: e.QuotedFeeCents,
		NetAmountCents: e.NetAmountCents,
		SettlementRef:  e.SettlementRef,
		RequestedAt:    e.RequestedAt,
		SettledAt:      e.SettledAt,
	}
	if e.SettlementMethod != nil {
		m := string(*e.SettlementMethod)
		dto.SettlementMethod = &m
	}
	return dto
}

func (h *ExitHandler) Request(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req requestExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	contractID, _ := uuid.Parse(req.ContractID)
	exit, err := h.exits.Request(r.Context(), contractID, id.UserID, domain.ExitType(req.ExitType))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to request exit", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toExitRequestDTO(exit))
}

func (h *ExitHandler) List(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	exits, err := h.exits.ListByInvestor(r.Context(), id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]exitRequestDTO, len(exits))
	for i := range exits {
		dtos[i] = toExitRequestDTO(&exits[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ExitHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	exits, err := h.exits.ListPending(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]exitRequestDTO, len(exits))
	for i := range exits {
		dtos[i] = toExitRequestDTO(&exits[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type settleExitRequest struct {
	Method string `json:"method"`
}

func (r settleExitRequest) Validate() []FieldError {
	if !domain.SettlementMethod(r.Method).IsValid() {
		return []FieldError{{Field: "method", Message: "must be cash or loan_referral"}}
	}
	return nil
}

func (h *ExitHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	exitID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req settleExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	exit, err := h.exits.Settle(r.Context(), exitID, id.UserID, domain.SettlementMethod(req.Method))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to settle exit", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toExitRequestDTO(exit))
}

type rejectExitRequest struct {
	Notes string `json:"notes"`
}

func (h *ExitHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	exitID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req rejectExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	exit, err := h.exits.Reject(r.Context(), exitID, id.UserID, req.Notes)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toExitRequestDTO(exit))
}
