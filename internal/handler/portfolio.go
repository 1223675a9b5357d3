package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/service"
)

type portfolioService interface {
	List(ctx context.Context, investorID uuid.UUID) ([]service.ContractPosition, error)
	Get(ctx context.Context, contractID, investorID uuid.UUID) (*service.ContractPosition, error)
	ContractLedger(ctx context.Context, contractID, investorID uuid.UUID) ([]domain.LedgerEntry, error)
}

type PortfolioHandler struct {
	portfolio portfolioService
}

func NewPortfolioHandler(portfolio portfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

type positionDTO struct {
	Contract        contractDTO `json:"contract"`
	PaidToDateCents int64       `json:"paid_to_date_cents"`
	RemainingCents  int64       `json:"remaining_cents"`
	Progress        string      `json:"progress"`
}

func toPositionDTO(p *service.ContractPosition) positionDTO {
	return positionDTO{
		Contract:        toContractDTO(&p.Contract),
		PaidToDateCents: p.PaidToDateCents,
		RemainingCents:  p.RemainingCents,
		Progress:        p.Progress,
	}
}

func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	positions, err := h.portfolio.List(r.Context(), id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]positionDTO, len(positions))
	for i := range positions {
		dtos[i] = toPositionDTO(&positions[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	contractID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	position, err := h.portfolio.Get(r.Context(), contractID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPositionDTO(position))
}

func (h *PortfolioHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	contractID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	entries, err := h.portfolio.ContractLedger(r.Context(), contractID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]ledgerEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toLedgerEntryDTO(&entries[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
