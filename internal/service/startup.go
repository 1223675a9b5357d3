package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
)

type startupRepo interface {
	Create(ctx context.Context, s *domain.Startup) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Startup, error)
	GetByFounder(ctx context.Context, founderID uuid.UUID) ([]domain.Startup, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

type documentRepo interface {
	Create(ctx context.Context, d *domain.Document) error
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.Document, error)
	TypesPresent(ctx context.Context, startupID uuid.UUID) (map[domain.DocumentType]bool, error)
}

type StartupService struct {
	startups  startupRepo
	documents documentRepo
}

func NewStartupService(startups startupRepo, documents documentRepo) *StartupService {
	return &StartupService{startups: startups, documents: documents}
}

type CreateStartupRequest struct {
	FounderID    uuid.UUID
	Name         string
	Description  string
	Country      string
	Industry     string
	RevenueStage string
	Website      *string
}

func (s *StartupService) Create(ctx context.Context, req CreateStartupRequest) (*domain.Startup, error) {
	log := logging.FromContext(ctx)

	startup := &domain.Startup{
		ID:            uuid.New(),
		FounderUserID: req.FounderID,
		Name:          req.Name,
		Description:   req.Description,
		Country:       req.Country,
		Industry:      req.Industry,
		RevenueStage:  req.RevenueStage,
		Website:       req.Website,
		Status:        domain.StartupStatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.startups.Create(ctx, startup); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	log.Info("startup created", "startup_id", startup.ID, "founder_id", req.FounderID)
	return startup, nil
}

// GetOwned returns the startup only when founderID owns it.
func (s *StartupService) GetOwned(ctx context.Context, id, founderID uuid.UUID) (*domain.Startup, error) {
	startup, err := s.startups.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetOwned: %w", err)
	}
	if startup.FounderUserID != founderID {
		return nil, fmt.Errorf("GetOwned: %w", domain.ErrForbidden)
	}
	return startup, nil
}

func (s *StartupService) Get(ctx context.Context, id uuid.UUID) (*domain.Startup, error) {
	startup, err := s.startups.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return startup, nil
}

func (s *StartupService) ListByFounder(ctx context.Context, founderID uuid.UUID) ([]domain.Startup, error) {
	startups, err := s.startups.GetByFounder(ctx, founderID)
	if err != nil {
		return nil, fmt.Errorf("ListByFounder: %w", err)
	}
	return startups, nil
}

func (s *StartupService) Archive(ctx context.Context, id, founderID uuid.UUID) error {
	if _, err := s.GetOwned(ctx, id, founderID); err != nil {
		return fmt.Errorf("Archive: %w", err)
	}
	if err := s.startups.Archive(ctx, id); err != nil {
		return fmt.Errorf("Archive: %w", err)
	}
	return nil
}

type UploadDocumentRequest struct {
	StartupID  uuid.UUID
	FounderID  uuid.UUID
	DocType    domain.DocumentType
	Filename   string
	StorageKey string
}

func (s *StartupService) UploadDocument(ctx context.Context, req UploadDocumentRequest) (*domain.Document, error) {
	if _, err := s.GetOwned(ctx, req.StartupID, req.FounderID); err != nil {
		return nil, fmt.Errorf("UploadDocument: %w", err)
	}
	if !req.DocType.IsValid() {
		return nil, fmt.Errorf("UploadDocument: %w", domain.ErrInvalidRequest)
	}

	doc := &domain.Document{
		ID:         uuid.New(),
		StartupID:  req.StartupID,
		DocType:    req.DocType,
		Filename:   req.Filename,
		StorageKey: req.StorageKey,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("UploadDocument: %w", err)
	}
	return doc, nil
}

func (s *StartupService) ListDocuments(ctx context.Context, startupID, founderID uuid.UUID) ([]domain.Document, error) {
	if _, err := s.GetOwned(ctx, startupID, founderID); err != nil {
		return nil, fmt.Errorf("ListDocuments: %w", err)
	}
	docs, err := s.documents.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("ListDocuments: %w", err)
	}
	return docs, nil
}
