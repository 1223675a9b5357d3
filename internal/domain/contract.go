package domain

import (
	"time"

	"github.com/google/uuid"
)

type Investment struct {
	ID             uuid.UUID
	RoundID        uuid.UUID
	InvestorUserID uuid.UUID
	AmountCents    int64
	PaymentRef     string
	CreatedAt      time.Time
}

type ContractStatus string

const (
	ContractStatusActive ContractStatus = "active"
	ContractStatusCapped ContractStatus = "capped"
	ContractStatusClosed ContractStatus = "closed"
)

// Contract freezes the selected tier's terms by value at investment time.
// Paid-to-date is deliberately absent: it is always derived by folding the
// ledger, so no stored counter can drift from the entries.
type Contract struct {
	ID             uuid.UUID
	InvestmentID   uuid.UUID
	Status         ContractStatus
	PrincipalCents int64
	PayoutCapCents int64
	Terms          TierTerms
	ActivatedAt    time.Time
}

// MonthsSince reports the number of whole calendar months between the
// contract's activation month and the given distribution month.
func (c Contract) MonthsSince(year int, month time.Month) int {
	ay, am := c.ActivatedAt.Year(), c.ActivatedAt.Month()
	return (year-ay)*12 + int(month) - int(am)
}
