package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RoundStatus string

const (
	RoundStatusDraft        RoundStatus = "draft"
	RoundStatusTierAssigned RoundStatus = "tier_assigned"
	RoundStatusPublished    RoundStatus = "published"
	RoundStatusClosed       RoundStatus = "closed"
)

type TierName string

const (
	TierLow    TierName = "low"
	TierMedium TierName = "medium"
	TierHigh   TierName = "high"
)

func (t TierName) IsValid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh:
		return true
	}
	return false
}

// Round holds a raise against an approved application. RaisedCents is never
// stored; it is always the sum of the round's investments.
type Round struct {
	ID            uuid.UUID
	StartupID     uuid.UUID
	ApplicationID uuid.UUID
	Title         string
	MaxRaiseCents int64
	Status        RoundStatus
	TierSelected  *TierName
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// TierTerms is the immutable bundle of economics a tier offers. All rates
// are integer basis points; the payout cap multiple is expressed in bps of
// principal (15000 = 1.5x) so cap math stays in integer cents.
type TierTerms struct {
	Name                TierName
	RevenueShareBps     int
	PayoutCapBps        int
	TimeCapMonths       int
	MinHoldDays         int
	ExitFeeBpsQuarterly int
	ExitFeeBpsOffcycle  int
}

// TierOption is a generated proposal attached to a round. Selecting a tier
// copies the terms by value onto each contract, so regenerating options
// never rewrites terms already committed.
type TierOption struct {
	ID          uuid.UUID
	RoundID     uuid.UUID
	Terms       TierTerms
	Explanation json.RawMessage
}
