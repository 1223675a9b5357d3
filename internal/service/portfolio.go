package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type ledgerReader interface {
	PaidToDate(ctx context.Context, contractID uuid.UUID) (int64, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.LedgerEntry, error)
}

// ContractPosition is a contract with its ledger-derived payout progress.
// PaidToDateCents is folded from the entries on every read; nothing here is
// a stored counter.
type ContractPosition struct {
	Contract        domain.Contract
	PaidToDateCents int64
	RemainingCents  int64
	Progress        string
}

type PortfolioService struct {
	contracts   contractRepo
	investments investmentRepo
	ledger      ledgerReader
}

func NewPortfolioService(contracts contractRepo, investments investmentRepo, ledger ledgerReader) *PortfolioService {
	return &PortfolioService{contracts: contracts, investments: investments, ledger: ledger}
}

func (s *PortfolioService) List(ctx context.Context, investorID uuid.UUID) ([]ContractPosition, error) {
	contracts, err := s.contracts.ListByInvestor(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	positions := make([]ContractPosition, 0, len(contracts))
	for _, c := range contracts {
		pos, err := s.position(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// Get returns one contract position, restricted to the contract's owner.
func (s *PortfolioService) Get(ctx context.Context, contractID, investorID uuid.UUID) (*ContractPosition, error) {
	c, err := s.ownedContract(ctx, contractID, investorID)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	pos, err := s.position(ctx, *c)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &pos, nil
}

func (s *PortfolioService) ContractLedger(ctx context.Context, contractID, investorID uuid.UUID) ([]domain.LedgerEntry, error) {
	if _, err := s.ownedContract(ctx, contractID, investorID); err != nil {
		return nil, fmt.Errorf("ContractLedger: %w", err)
	}
	entries, err := s.ledger.ListByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("ContractLedger: %w", err)
	}
	return entries, nil
}

func (s *PortfolioService) position(ctx context.Context, c domain.Contract) (ContractPosition, error) {
	paid, err := s.ledger.PaidToDate(ctx, c.ID)
	if err != nil {
		return ContractPosition{}, err
	}

	remaining := c.PayoutCapCents - paid
	if remaining < 0 {
		remaining = 0
	}

	progress := "0"
	if c.PayoutCapCents > 0 {
		progress = decimal.NewFromInt(paid).
			Div(decimal.NewFromInt(c.PayoutCapCents)).
			Round(4).String()
	}

	return ContractPosition{
		Contract:        c,
		PaidToDateCents: paid,
		RemainingCents:  remaining,
		Progress:        progress,
	}, nil
}

func (s *PortfolioService) ownedContract(ctx context.Context, contractID, investorID uuid.UUID) (*domain.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	inv, err := s.investments.GetByID(ctx, c.InvestmentID)
	if err != nil {
		return nil, err
	}
	if inv.InvestorUserID != investorID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}
