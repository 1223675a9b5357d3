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
)

type investmentService interface {
	Invest(ctx context.Context, req service.InvestRequest) (*service.InvestResult, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Investment, error)
}

type InvestmentHandler struct {
	investments investmentService
}

func NewInvestmentHandler(investments investmentService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments}
}

type investRequest struct {
	RoundID     string `json:"round_id"`
	AmountCents int64  `json:"amount_cents"`
}

func (r investRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := uuid.Parse(r.RoundID); err != nil {
		errs = append(errs, FieldError{Field: "round_id", Message: "must be a UUID"})
	}
	if r.AmountCents <= 0 {
		errs = append(errs, FieldError{Field: "amount_cents", Message: "must be greater than zero"})
	}
	return errs
}

type contractDTO struct {
	ID                  uuid.UUID `json:"id"`
	InvestmentID        uuid.UUID `json:"investment_id"`
	Status              string    `json:"status"`
	Tier                string    `json:"tier"`
	PrincipalCents      int64     `json:"principal_cents"`
	PayoutCapCents      int64     `json:"payout_cap_cents"`
	RevenueShareBps     int       `json:"revenue_share_bps"`
	TimeCapMonths       int       `json:"time_cap_months"`
	MinHoldDays         int       `json:"min_hold_days"`
	ExitFeeBpsQuarterly int       `json:"exit_fee_bps_quarterly"`
	ExitFeeBpsOffcycle  int       `json:"exit_fee_bps_offcycle"`
	ActivatedAt         time.Time `json:"activated_at"`
}

func toContractDTO(c *domain.Contract) contractDTO {
	return contractDTO{
		ID:                  c.ID,
		InvestmentID:        c.InvestmentID,
		Status:              string(c.Status),
		Tier:                string(c.Terms.Name),
		PrincipalCents:      c.PrincipalCents,
		PayoutCapCents:      c.PayoutCapCents,
		RevenueShareBps:     c.Terms.RevenueShareBps,
		TimeCapMonths:       c.Terms.TimeCapMonths,
		MinHoldDays:         c.Terms.MinHoldDays,
		ExitFeeBpsQuarterly: c.Terms.ExitFeeBpsQuarterly,
		ExitFeeBpsOffcycle:  c.Terms.ExitFeeBpsOffcycle,
		ActivatedAt:         c.ActivatedAt,
	}
}

type investmentDTO struct {
	ID          uuid.UUID `json:"id"`
	RoundID     uuid.UUID `json:"round_id"`
	AmountCents int64     `json:"amount_cents"`
	PaymentRef  string    `json:"payment_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

func toInvestmentDTO(inv *domain.Investment) investmentDTO {
	return investmentDTO{
		ID:          inv.ID,
		RoundID:     inv.RoundID,
		AmountCents: inv.AmountCents,
		PaymentRef:  inv.PaymentRef,
		CreatedAt:   inv.CreatedAt,
	}
}

type investResponse struct {
	Investment investmentDTO `json:"investment"`
	Contract   contractDTO   `json:"contract"`
}

func (h *InvestmentHandler) Invest(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req investRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	roundID, _ := uuid.Parse(req.RoundID)
	result, err := h.investments.Invest(r.Context(), service.InvestRequest{
		RoundID:     roundID,
		InvestorID:  id.UserID,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to invest", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, investResponse{
		Investment: toInvestmentDTO(result.Investment),
		Contract:   toContractDTO(result.Contract),
	})
}

func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	invs, err := h.investments.ListByInvestor(r.Context(), id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]investmentDTO, len(invs))
	for i := range invs {
		dtos[i] = toInvestmentDTO(&invs[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
