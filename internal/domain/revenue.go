package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RevenueReport is one founder-reported gross revenue figure per startup and
// calendar month. Once a distribution references it, it is immutable.
type RevenueReport struct {
	ID                uuid.UUID
	StartupID         uuid.UUID
	Month             string // "YYYY-MM"
	GrossRevenueCents int64
	ReportedBy        uuid.UUID
	CreatedAt         time.Time
}

// ParseMonth validates and splits a "YYYY-MM" month key.
func ParseMonth(month string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, 0, fmt.Errorf("ParseMonth: %q: %w", month, ErrInvalidMonth)
	}
	return t.Year(), t.Month(), nil
}

// Distribution is the exactly-once application of one revenue report to a
// round. The (RoundID, Month) pair is unique; a second run for the same pair
// replays the stored result instead of posting new ledger entries.
type Distribution struct {
	ID                    uuid.UUID
	RoundID               uuid.UUID
	Month                 string
	RevenueReportID       uuid.UUID
	TotalDistributedCents int64
	CreatedBy             uuid.UUID
	CreatedAt             time.Time
}
