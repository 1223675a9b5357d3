package domain

import (
	"time"

	"github.com/google/uuid"
)

type StartupStatus string

const (
	StartupStatusActive   StartupStatus = "active"
	StartupStatusArchived StartupStatus = "archived"
)

// Startup is never deleted; decommissioned startups are archived so their
// rounds, contracts, and ledger history stay resolvable.
type Startup struct {
	ID            uuid.UUID
	FounderUserID uuid.UUID
	Name          string
	Country       string
	Industry      string
	RevenueStage  string
	Website       *string
	Description   string
	Status        StartupStatus
	CreatedAt     time.Time
}

type DocumentType string

const (
	DocumentTypeIncorporation DocumentType = "incorporation"
	DocumentTypeBankStatement DocumentType = "bank_statement"
	DocumentTypeRevenueProof  DocumentType = "revenue_proof"
)

func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeIncorporation, DocumentTypeBankStatement, DocumentTypeRevenueProof:
		return true
	}
	return false
}

// MandatoryDocumentTypes must all be on file before an application can be
// submitted for review.
var MandatoryDocumentTypes = []DocumentType{
	DocumentTypeIncorporation,
	DocumentTypeBankStatement,
	DocumentTypeRevenueProof,
}

type Document struct {
	ID         uuid.UUID
	StartupID  uuid.UUID
	DocType    DocumentType
	Filename   string
	StorageKey string
	UploadedAt time.Time
}
