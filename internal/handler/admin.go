package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/workflow"
)

type applicationReviewer interface {
	List(ctx context.Context) ([]domain.Application, error)
	Review(ctx context.Context, id, reviewerID uuid.UUID, action workflow.Action, notes *string) (*domain.Application, error)
}

type roundCloser interface {
	Close(ctx context.Context, roundID, actorID uuid.UUID) (*domain.Round, error)
}

type ledgerLister interface {
	List(ctx context.Context, limit, offset int) ([]domain.LedgerEntry, int, error)
}

type AdminHandler struct {
	applications applicationReviewer
	rounds       roundCloser
	ledger       ledgerLister
}

func NewAdminHandler(applications applicationReviewer, rounds roundCloser, ledger ledgerLister) *AdminHandler {
	return &AdminHandler{applications: applications, rounds: rounds, ledger: ledger}
}

func (h *AdminHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applications.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]applicationDTO, len(apps))
	for i := range apps {
		dtos[i] = toApplicationDTO(&apps[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type reviewApplicationRequest struct {
	Action string  `json:"action"`
	Notes  *string `json:"notes"`
}

func (r reviewApplicationRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Action != string(workflow.ActionApprove) && r.Action != string(workflow.ActionDeny) {
		errs = append(errs, FieldError{Field: "action", Message: "must be approve or deny"})
	}
	return errs
}

func (h *AdminHandler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
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

	var req reviewApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	app, err := h.applications.Review(r.Context(), applicationID, id.UserID, workflow.Action(req.Action), req.Notes)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to review application", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApplicationDTO(app))
}

func (h *AdminHandler) CloseRound(w http.ResponseWriter, r *http.Request) {
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

	rnd, err := h.rounds.Close(r.Context(), roundID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRoundDTO(rnd, nil))
}

type ledgerPage struct {
	Entries []ledgerEntryDTO `json:"entries"`
	Total   int              `json:"total"`
}

func (h *AdminHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, total, err := h.ledger.List(r.Context(), limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]ledgerEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toLedgerEntryDTO(&entries[i])
	}
	RespondSuccess(w, http.StatusOK, ledgerPage{Entries: dtos, Total: total})
}
