package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExitType string

const (
	ExitTypeQuarterly ExitType = "quarterly"
	ExitTypeOffcycle  ExitType = "offcycle"
)

func (e ExitType) IsValid() bool {
	return e == ExitTypeQuarterly || e == ExitTypeOffcycle
}

type ExitStatus string

const (
	ExitStatusRequested ExitStatus = "requested"
	ExitStatusSettled   ExitStatus = "settled"
	ExitStatusRejected  ExitStatus = "rejected"
)

type SettlementMethod string

const (
	SettlementMethodCash         SettlementMethod = "cash"
	SettlementMethodLoanReferral SettlementMethod = "loan_referral"
)

func (m SettlementMethod) IsValid() bool {
	return m == SettlementMethodCash || m == SettlementMethodLoanReferral
}

type ExitRequest struct {
	ID               uuid.UUID
	ContractID       uuid.UUID
	InvestorUserID   uuid.UUID
	ExitType         ExitType
	Status           ExitStatus
	QuotedFeeCents   int64
	NetAmountCents   *int64
	SettlementMethod *SettlementMethod
	SettlementRef    *string
	AdminNotes       *string
	RequestedAt      time.Time
	SettledAt        *time.Time
}

// LoanReferral records a loan_referral settlement. The principal moves
// outside the ledger; only the exit fee is posted as a ledger entry.
type LoanReferral struct {
	ID            uuid.UUID
	ExitRequestID uuid.UUID
	ContractID    uuid.UUID
	AmountCents   int64
	FeeCents      int64
	Status        string
	CreatedAt     time.Time
}

type AuditLog struct {
	ID          uuid.UUID
	ActorUserID uuid.UUID
	Action      string
	EntityType  string
	EntityID    uuid.UUID
	CreatedAt   time.Time
}
