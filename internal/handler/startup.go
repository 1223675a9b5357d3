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

type startupService interface {
	Create(ctx context.Context, req service.CreateStartupRequest) (*domain.Startup, error)
	GetOwned(ctx context.Context, id, founderID uuid.UUID) (*domain.Startup, error)
	ListByFounder(ctx context.Context, founderID uuid.UUID) ([]domain.Startup, error)
	Archive(ctx context.Context, id, founderID uuid.UUID) error
	UploadDocument(ctx context.Context, req service.UploadDocumentRequest) (*domain.Document, error)
	ListDocuments(ctx context.Context, startupID, founderID uuid.UUID) ([]domain.Document, error)
}

type StartupHandler struct {
	startups startupService
}

func NewStartupHandler(startups startupService) *StartupHandler {
	return &StartupHandler{startups: startups}
}

type createStartupRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Country      string  `json:"country"`
	Industry     string  `json:"industry"`
	RevenueStage string  `json:"revenue_stage"`
	Website      *string `json:"website"`
}

func (r createStartupRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Country == "" {
		errs = append(errs, FieldError{Field: "country", Message: "required"})
	}
	return errs
}

type startupDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Country      string    `json:"country"`
	Industry     string    `json:"industry"`
	RevenueStage string    `json:"revenue_stage"`
	Website      *string   `json:"website"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toStartupDTO(s *domain.Startup) startupDTO {
	return startupDTO{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Country:      s.Country,
		Industry:     s.Industry,
		RevenueStage: s.RevenueStage,
		Website:      s.Website,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
	}
}

func (h *StartupHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createStartupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	startup, err := h.startups.Create(r.Context(), service.CreateStartupRequest{
		FounderID:    id.UserID,
		Name:         req.Name,
		Description:  req.Description,
		Country:      req.Country,
		Industry:     req.Industry,
		RevenueStage: req.RevenueStage,
		Website:      req.Website,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create startup", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toStartupDTO(startup))
}

func (h *StartupHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	startup, err := h.startups.GetOwned(r.Context(), startupID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toStartupDTO(startup))
}

func (h *StartupHandler) List(w http.ResponseWriter, r *http.Request) {
	id, appErr := identityFrom(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	startups, err := h.startups.ListByFounder(r.Context(), id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]startupDTO, len(startups))
	for i := range startups {
		dtos[i] = toStartupDTO(&startups[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *StartupHandler) Archive(w http.ResponseWriter, r *http.Request) {
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

	if err := h.startups.Archive(r.Context(), startupID, id.UserID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"status": string(domain.StartupStatusArchived)})
}

type uploadDocumentRequest struct {
	DocType    string `json:"doc_type"`
	Filename   string `json:"filename"`
	StorageKey string `json:"storage_key"`
}

func (r uploadDocumentRequest) Validate() []FieldError {
	var errs []FieldError
	if !domain.DocumentType(r.DocType).IsValid() {
		errs = append(errs, FieldError{Field: "doc_type", Message: "must be incorporation, bank_statement, or revenue_proof"})
	}
	if r.Filename == "" {
		errs = append(errs, FieldError{Field: "filename", Message: "required"})
	}
	if r.StorageKey == "" {
		errs = append(errs, FieldError{Field: "storage_key", Message: "required"})
	}
	return errs
}

type documentDTO struct {
	ID         uuid.UUID `json:"id"`
	StartupID  uuid.UUID `json:"startup_id"`
	DocType    string    `json:"doc_type"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toDocumentDTO(d *domain.Document) documentDTO {
	return documentDTO{
		ID:         d.ID,
		StartupID:  d.StartupID,
		DocType:    string(d.DocType),
		Filename:   d.Filename,
		UploadedAt: d.UploadedAt,
	}
}

func (h *StartupHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
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

	var req uploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	doc, err := h.startups.UploadDocument(r.Context(), service.UploadDocumentRequest{
		StartupID:  startupID,
		FounderID:  id.UserID,
		DocType:    domain.DocumentType(req.DocType),
		Filename:   req.Filename,
		StorageKey: req.StorageKey,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toDocumentDTO(doc))
}

func (h *StartupHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
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

	docs, err := h.startups.ListDocuments(r.Context(), startupID, id.UserID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]documentDTO, len(docs))
	for i := range docs {
		dtos[i] = toDocumentDTO(&docs[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
