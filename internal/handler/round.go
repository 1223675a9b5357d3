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

type roundService interface {
	Create(ctx context.Context, req service.CreateRoundRequest) (*domain.Round, error)
	ProposeTiers(ctx context.Context, roundID, founderID uuid.UUID) ([]domain.TierOption, error)
	SelectTier(ctx context.Context, roundID, founderID uuid.UUID, name domain.TierName) (*domain.Round, error)
	Publish(ctx context.Context, roundID, founderID uuid.UUID) (*domain.Round, error)
	Get(ctx context.Context, roundID uuid.UUID) (*domain.Round, int64, error)
	ListPublished(ctx context.Context) ([]domain.Round, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.Round, error)
	ListTierOptions(ctx context.Context, roundID uuid.UUID) ([]domain.TierOption, error)
}

type RoundHandler struct {
	rounds roundService
}

func NewRoundHandler(rounds roundService) *RoundHandler {
	return &RoundHandler{rounds: rounds}
}

type createRoundRequest struct {
	StartupID     string `json:"startup_id"`
	Title         string `json:"title"`
	MaxRaiseCents int64  `json:"max_raise_cents"`
}

func (r createRoundRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := uuid.Parse(r.StartupID); err != nil {
		errs = append(errs, FieldError{Field: "startup_id", Message: "must be a UUID"})
	}
	if r.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "required"})
	}
	if r.MaxRaiseCents <= 0 {
		errs = append(errs, FieldError{Field: "max_raise_cents", Message: "must be greater than zero"})
	}
	return errs
}

type roundDTO struct {
	ID            uuid.UUID  `json:"id"`
	StartupID     uuid.UUID  `json:"startup_id"`
	Title         string     `json:"title"`
	MaxRaiseCents int64      `json:"max_raise_cents"`
	RaisedCents   *int64     `json:"raised_cents,omitempty"`
	Status        string     `json:"status"`
	TierSelected  *string    `json:"tier_selected"`
	CreatedAt     time.Time  `json:"created_at"`
	PublishedAt   *time.Time `json:"published_at"`
}

func toRoundDTO(rnd *domain.Round, raised *int64) roundDTO {
	dto := roundDTO{
		ID:            rnd.ID,
		StartupID:     rnd.StartupID,
		Title:         rnd.Title,
		MaxRaiseCents: rnd.MaxRaiseCents,
		RaisedCents:   raised,
		Status:        string(rnd.Status),
		CreatedAt:     rnd.CreatedAt,
		PublishedAt:   rnd.PublishedAt,
	}
	if rnd.TierSelected != nil {
		name := string(*rnd.TierSelected)
		dto.TierSelected = &name
	}
	return dto
}

type tierOptionDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Tier                string          `json:"tier"`
	RevenueShareBps     int             `json:"revenue_share_bps"`
	PayoutCapBps        int             `json:"payout_cap_bps"`
	TimeCapMonths       int             `json:"time_cap_months"`
	MinHoldDays         int             `json:"min_hold_days"`
	ExitFeeBpsQuarterly int             `json:"exit_fee_bps_quarterly"`
	ExitFeeBpsOffcycle  int             `json:"exit_fee_bps_offcycle"`
	Explanation         json.RawMessage `json:"explanation"`
}

func toTierOptionDTO(o *domain.TierOption) tierOptionDTO {
	return tierOptionDTO{
		ID:                  o.ID,
		Tier:                string(o.Terms.Name),
		RevenueShareBps:     o.Terms.RevenueShareBps,
		PayoutCapBps:        o.Terms.PayoutCapBps,
		TimeCapMonths:       o.Terms.TimeCapMonths,
		MinHoldDays:         o.Terms.MinHoldDays,
		ExitFeeBpsQuarterly: o.Terms.ExitFeeBpsQuarterly,
		ExitFeeBpsOffcycle:  o.Terms.ExitFeeBpsOffcycle,
		Explanation:         o.Explanation,
	}
}

func (h *RoundHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	startupID, _ := uuid.Parse(req.StartupID)
	round, err := h.rounds.Create(r.Context(), service.CreateRoundRequest{
		StartupID:     startupID,
		FounderID:     id.UserID,
		Title:         req.Title,
		MaxRaiseCents: req.MaxRaiseCents,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create round", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toRoundDTO(round, nil))
}

func (h *RoundHandler) ProposeTiers(w http.ResponseWriter, r *http.Request) {
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

	options, err := h.rounds.ProposeTiers(r.Context(), roundID, id.UserID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to propose tiers", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]tierOptionDTO, len(options))
	for i := range options {
		dtos[i] = toTierOptionDTO(&options[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type selectTierRequest struct {
	Tier string `json:"tier"`
}

func (r selectTierRequest) Validate() []FieldError {
	if !domain.TierName(r.Tier).IsValid() {
		return []FieldError{{Field: "tier", Message: "must be low, medium, or high"}}
	}
	return nil
}

func (h *RoundHandler) SelectTier(w http.ResponseWriter, r *http.Request) {
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

	var req selectTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	round, err := h.rounds.SelectTier(r.Context(), roundID, id.UserID, domain.TierName(req.Tier))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRoundDTO(round, nil))
}

func (h *RoundHandler) Publish(w http.ResponseWriter, r *http.Request) {
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

	round, err := h.rounds.Publish(r.Context(), roundID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRoundDTO(round, nil))
}

func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	roundID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	round, raised, err := h.rounds.Get(r.Context(), roundID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRoundDTO(round, &raised))
}

func (h *RoundHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.rounds.ListPublished(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]roundDTO, len(rounds))
	for i := range rounds {
		dtos[i] = toRoundDTO(&rounds[i], nil)
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *RoundHandler) ListByStartup(w http.ResponseWriter, r *http.Request) {
	startupID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	rounds, err := h.rounds.ListByStartup(r.Context(), startupID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]roundDTO, len(rounds))
	for i := range rounds {
		dtos[i] = toRoundDTO(&rounds[i], nil)
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *RoundHandler) ListTierOptions(w http.ResponseWriter, r *http.Request) {
	roundID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	options, err := h.rounds.ListTierOptions(r.Context(), roundID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]tierOptionDTO, len(options))
	for i := range options {
		dtos[i] = toTierOptionDTO(&options[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
