package domain

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "draft"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusDenied    ApplicationStatus = "denied"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// Application is the one-per-startup funding request. Only a draft may be
// edited; only a submitted application may be reviewed.
type Application struct {
	ID                  uuid.UUID
	StartupID           uuid.UUID
	Status              ApplicationStatus
	RequestedLimitCents int64
	RiskPreference      RiskLevel
	FeeCents            int64
	FeePaymentRef       *string
	AdminNotes          *string
	ReviewerID          *uuid.UUID
	CreatedAt           time.Time
	SubmittedAt         *time.Time
	ReviewedAt          *time.Time
}
