package exits

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/payments"
	"github.com/radionhq/revshare-engine/internal/workflow"
)

type exitRepo interface {
	Create(ctx context.Context, e *domain.ExitRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExitRequest, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.ExitRequest, error)
	Settle(ctx context.Context, tx *sql.Tx, id uuid.UUID, feeCents, netCents int64, method domain.SettlementMethod, ref string, settledAt time.Time) error
	Reject(ctx context.Context, id uuid.UUID, notes string, settledAt time.Time) error
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ExitRequest, error)
	ListByStatus(ctx context.Context, status domain.ExitStatus) ([]domain.ExitRequest, error)
	HasOpenRequest(ctx context.Context, contractID uuid.UUID) (bool, error)
}

type contractRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Contract, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.ContractStatus) error
}

type investmentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error)
}

type ledgerRepo interface {
	Append(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error
	PaidToDate(ctx context.Context, contractID uuid.UUID) (int64, error)
	PaidToDateTx(ctx context.Context, tx *sql.Tx, contractID uuid.UUID) (int64, error)
}

type loanReferralRepo interface {
	Create(ctx context.Context, tx *sql.Tx, l *domain.LoanReferral) error
}

type Service struct {
	exits         exitRepo
	contracts     contractRepo
	investments   investmentRepo
	ledger        ledgerRepo
	loanReferrals loanReferralRepo
	provider      payments.Provider
	db            *sql.DB
}

func NewService(
	exits exitRepo,
	contracts contractRepo,
	investments investmentRepo,
	ledger ledgerRepo,
	loanReferrals loanReferralRepo,
	provider payments.Provider,
	db *sql.DB,
) *Service {
	return &Service{
		exits:         exits,
		contracts:     contracts,
		investments:   investments,
		ledger:        ledger,
		loanReferrals: loanReferrals,
		provider:      provider,
		db:            db,
	}
}

// Request opens an exit request with a fee quote frozen at request time. The
// contract must be active, owned by the caller, past its minimum holding
// period, and free of other pending exits.
func (s *Service) Request(ctx context.Context, contractID, investorID uuid.UUID, exitType domain.ExitType) (*domain.ExitRequest, error) {
	log := logging.FromContext(ctx)

	if !exitType.IsValid() {
		return nil, fmt.Errorf("Request: %w", domain.ErrInvalidRequest)
	}

	contract, err := s.ownedContract(ctx, contractID, investorID)
	if err != nil {
		return nil, fmt.Errorf("Request: %w", err)
	}
	if contract.Status != domain.ContractStatusActive {
		return nil, fmt.Errorf("Request: %w", domain.ErrContractNotActive)
	}

	now := time.Now().UTC()
	if !HoldMet(*contract, now) {
		return nil, fmt.Errorf("Request: %w", domain.ErrMinHoldNotMet)
	}

	open, err := s.exits.HasOpenRequest(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("Request: %w", err)
	}
	if open {
		return nil, fmt.Errorf("Request: %w", domain.ErrExitPending)
	}

	paid, err := s.ledger.PaidToDate(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("Request: %w", err)
	}
	quote := BuildQuote(*contract, paid, exitType)

	req := &domain.ExitRequest{
		ID:             uuid.New(),
		ContractID:     contractID,
		InvestorUserID: investorID,
		ExitType:       exitType,
		Status:         domain.ExitStatusRequested,
		QuotedFeeCents: quote.FeeCents,
		RequestedAt:    now,
	}
	if err := s.exits.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("Request: %w", err)
	}

	log.Info("exit requested",
		"exit_request_id", req.ID,
		"contract_id", contractID,
		"exit_type", exitType,
		"quoted_fee_cents", quote.FeeCents,
	)
	return req, nil
}

// Settle closes out a requested exit. The fee is re-priced against
// paid-to-date at settlement time, not the quote, since distributions may
// have run in between. Cash settlements pay the net out and post both the
// settlement and fee entries; loan referrals move the principal outside the
// ledger, so only the fee entry is posted.
func (s *Service) Settle(ctx context.Context, exitID, adminID uuid.UUID, method domain.SettlementMethod) (*domain.ExitRequest, error) {
	log := logging.FromContext(ctx)

	if !method.IsValid() {
		return nil, fmt.Errorf("Settle: %w", domain.ErrInvalidRequest)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Settle: begin tx: %w", err)
	}
	defer tx.Rollback()

	req, err := s.exits.GetForUpdate(ctx, tx, exitID)
	if err != nil {
		return nil, fmt.Errorf("Settle: %w", err)
	}
	if _, err := workflow.Next(workflow.KindExit, string(req.Status), workflow.ActionSettle); err != nil {
		return nil, fmt.Errorf("Settle: %w", domain.ErrAlreadySettled)
	}

	contract, err := s.contracts.GetForUpdate(ctx, tx, req.ContractID)
	if err != nil {
		return nil, fmt.Errorf("Settle: %w", err)
	}
	// A distribution between request and settlement can cap or close the
	// contract; a settled-out principal no longer exists to pay.
	if contract.Status != domain.ContractStatusActive {
		return nil, fmt.Errorf("Settle: %w", domain.ErrContractNotActive)
	}

	paid, err := s.ledger.PaidToDateTx(ctx, tx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("Settle: %w", err)
	}
	quote := BuildQuote(*contract, paid, req.ExitType)

	now := time.Now().UTC()
	var ref string

	switch method {
	case domain.SettlementMethodCash:
		ref, err = s.provider.PayoutInvestor(ctx, req.InvestorUserID, quote.NetCents)
		if err != nil {
			return nil, fmt.Errorf("Settle: payout: %w", err)
		}
		settlement := &domain.LedgerEntry{
			EntryType:   domain.EntryTypeExitSettlement,
			ContractID:  &contract.ID,
			ActorUserID: &adminID,
			AmountCents: quote.NetCents,
			Currency:    domain.CurrencyCAD,
			CreatedAt:   now,
		}
		if err := s.ledger.Append(ctx, tx, settlement); err != nil {
			return nil, fmt.Errorf("Settle: %w", err)
		}

	case domain.SettlementMethodLoanReferral:
		referral := &domain.LoanReferral{
			ID:            uuid.New(),
			ExitRequestID: req.ID,
			ContractID:    contract.ID,
			AmountCents:   quote.NetCents,
			FeeCents:      quote.FeeCents,
			Status:        "referred",
			CreatedAt:     now,
		}
		if err := s.loanReferrals.Create(ctx, tx, referral); err != nil {
			return nil, fmt.Errorf("Settle: %w", err)
		}
		ref = "loan_" + referral.ID.String()
	}

	if quote.FeeCents > 0 {
		fee := &domain.LedgerEntry{
			EntryType:   domain.EntryTypeFee,
			ContractID:  &contract.ID,
			ActorUserID: &adminID,
			AmountCents: quote.FeeCents,
			Currency:    domain.CurrencyCAD,
			CreatedAt:   now,
		}
		if err := s.ledger.Append(ctx, tx, fee); err != nil {
			return nil, fmt.Errorf("Settle: %w", err)
		}
	}

	if err := s.exits.Settle(ctx, tx, req.ID, quote.FeeCents, quote.NetCents, method, ref, now); err != nil {
		return nil, fmt.Errorf("Settle: %w", err)
	}
	if err := s.contracts.UpdateStatus(ctx, tx, contract.ID, domain.ContractStatusClosed); err != nil {
		return nil, fmt.Errorf("Settle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Settle: commit: %w", err)
	}

	req.Status = domain.ExitStatusSettled
	req.QuotedFeeCents = quote.FeeCents
	req.NetAmountCents = &quote.NetCents
	req.SettlementMethod = &method
	req.SettlementRef = &ref
	req.SettledAt = &now

	log.Info("exit settled",
		"exit_request_id", req.ID,
		"contract_id", contract.ID,
		"method", method,
		"fee_cents", quote.FeeCents,
		"net_cents", quote.NetCents,
	)
	return req, nil
}

// Reject declines a pending exit. The contract stays active.
func (s *Service) Reject(ctx context.Context, exitID, adminID uuid.UUID, notes string) (*domain.ExitRequest, error) {
	req, err := s.exits.GetByID(ctx, exitID)
	if err != nil {
		return nil, fmt.Errorf("Reject: %w", err)
	}
	if _, err := workflow.Next(workflow.KindExit, string(req.Status), workflow.ActionReject); err != nil {
		return nil, fmt.Errorf("Reject: %w", domain.ErrAlreadySettled)
	}

	now := time.Now().UTC()
	if err := s.exits.Reject(ctx, req.ID, notes, now); err != nil {
		return nil, fmt.Errorf("Reject: %w", err)
	}

	req.Status = domain.ExitStatusRejected
	req.AdminNotes = &notes
	req.SettledAt = &now

	logging.FromContext(ctx).Info("exit rejected", "exit_request_id", req.ID, "admin_id", adminID)
	return req, nil
}

func (s *Service) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ExitRequest, error) {
	reqs, err := s.exits.ListByInvestor(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("ListByInvestor: %w", err)
	}
	return reqs, nil
}

func (s *Service) ListPending(ctx context.Context) ([]domain.ExitRequest, error) {
	reqs, err := s.exits.ListByStatus(ctx, domain.ExitStatusRequested)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	return reqs, nil
}

func (s *Service) ownedContract(ctx context.Context, contractID, investorID uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	inv, err := s.investments.GetByID(ctx, contract.InvestmentID)
	if err != nil {
		return nil, err
	}
	if inv.InvestorUserID != investorID {
		return nil, domain.ErrForbidden
	}
	return contract, nil
}
