package domain

import (
	"time"

	"github.com/google/uuid"
)

type Currency string

const CurrencyCAD Currency = "CAD"

type EntryType string

const (
	EntryTypeDistribution   EntryType = "distribution"
	EntryTypeExitSettlement EntryType = "exit_settlement"
	EntryTypeFee            EntryType = "fee"
	EntryTypeAdjustment     EntryType = "adjustment"
	EntryTypeApplicationFee EntryType = "application_fee"
	EntryTypeInvestment     EntryType = "investment"
	EntryTypePlatformFee    EntryType = "platform_fee"
)

// LedgerEntry is the append-only record of every money movement. Entries are
// keyed by a monotonically increasing id and are never updated or deleted;
// corrections are posted as new adjustment entries with a signed amount.
type LedgerEntry struct {
	ID             int64
	EntryType      EntryType
	ContractID     *uuid.UUID
	RoundID        *uuid.UUID
	StartupID      *uuid.UUID
	ActorUserID    *uuid.UUID
	DistributionID *uuid.UUID
	AmountCents    int64
	Currency       Currency
	CreatedAt      time.Time
}
