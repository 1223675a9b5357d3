package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/service/distribution"
)

type distributionService interface {
	Run(ctx context.Context, roundID uuid.UUID, month string, actorID uuid.UUID) (*distribution.Result, error)
	Get(ctx context.Context, roundID uuid.UUID, month string) (*distribution.Result, error)
}

type DistributionHandler struct {
	distributions distributionService
}

func NewDistributionHandler(distributions distributionService) *DistributionHandler {
	return &DistributionHandler{distributions: distributions}
}

type runDistributionRequest struct {
	Month string `json:"month"`
}

func (r runDistributionRequest) Validate() []FieldError {
	if _, _, err := domain.ParseMonth(r.Month); err != nil {
		return []FieldError{{Field: "month", Message: "must be formatted YYYY-MM"}}
	}
	return nil
}

type ledgerEntryDTO struct {
	ID             int64      `json:"id"`
	EntryType      string     `json:"entry_type"`
	ContractID     *uuid.UUID `json:"contract_id"`
	RoundID        *uuid.UUID `json:"round_id"`
	StartupID      *uuid.UUID `json:"startup_id"`
	DistributionID *uuid.UUID `json:"distribution_id"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toLedgerEntryDTO(e *domain.LedgerEntry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:             e.ID,
		EntryType:      string(e.EntryType),
		ContractID:     e.ContractID,
		RoundID:        e.RoundID,
		StartupID:      e.StartupID,
		DistributionID: e.DistributionID,
		AmountCents:    e.AmountCents,
		Currency:       string(e.Currency),
		CreatedAt:      e.CreatedAt,
	}
}

type distributionDTO struct {
	ID                    uuid.UUID        `json:"id"`
	RoundID               uuid.UUID        `json:"round_id"`
	Month                 string           `json:"month"`
	TotalDistributedCents int64            `json:"total_distributed_cents"`
	Replayed              bool             `json:"replayed"`
	Entries               []ledgerEntryDTO `json:"entries"`
	CreatedAt             time.Time        `json:"created_at"`
}

func toDistributionDTO(res *distribution.Result) distributionDTO {
	entries := make([]ledgerEntryDTO, len(res.Entries))
	for i := range res.Entries {
		entries[i] = toLedgerEntryDTO(&res.Entries[i])
	}
	return distributionDTO{
		ID:                    res.Distribution.ID,
		RoundID:               res.Distribution.RoundID,
		Month:                 res.Distribution.Month,
		TotalDistributedCents: res.Distribution.TotalDistributedCents,
		Replayed:              res.Replayed,
		Entries:               entries,
		CreatedAt:             res.Distribution.CreatedAt,
	}
}

func (h *DistributionHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	roundID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req runDistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.distributions.Run(r.Context(), roundID, req.Month, id.UserID)
	if err != nil {
		logging.FromContext(r.Context()).Error("distribution run failed", "error", err, "round_id", roundID, "month", req.Month)
		RespondDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	RespondSuccess(w, status, toDistributionDTO(result))
}

func (h *DistributionHandler) Get(w http.ResponseWriter, r *http.Request) {
	roundID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	month := r.PathValue("month")
	if _, _, err := domain.ParseMonth(month); err != nil {
		RespondDomainError(w, err)
		return
	}

	result, err := h.distributions.Get(r.Context(), roundID, month)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toDistributionDTO(result))
}
