package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/config"
	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/payments"
	"github.com/radionhq/revshare-engine/internal/tier"
)

type investmentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, inv *domain.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Investment, error)
}

type contractRepo interface {
	Create(ctx context.Context, tx *sql.Tx, c *domain.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Contract, error)
}

type roundLocker interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Round, error)
	RaisedCentsTx(ctx context.Context, tx *sql.Tx, roundID uuid.UUID) (int64, error)
}

type InvestmentService struct {
	investments investmentRepo
	contracts   contractRepo
	rounds      roundLocker
	tierOptions tierOptionRepo
	ledger      ledgerAppender
	provider    payments.Provider
	db          *sql.DB
	config      *config.Config
}

func NewInvestmentService(
	investments investmentRepo,
	contracts contractRepo,
	rounds roundLocker,
	tierOptions tierOptionRepo,
	ledger ledgerAppender,
	provider payments.Provider,
	db *sql.DB,
	cfg *config.Config,
) *InvestmentService {
	return &InvestmentService{
		investments: investments,
		contracts:   contracts,
		rounds:      rounds,
		tierOptions: tierOptions,
		ledger:      ledger,
		provider:    provider,
		db:          db,
		config:      cfg,
	}
}

type InvestRequest struct {
	RoundID     uuid.UUID
	InvestorID  uuid.UUID
	AmountCents int64
}

type InvestResult struct {
	Investment *domain.Investment
	Contract   *domain.Contract
}

// Invest collects the payment, records the investment with its platform fee,
// and activates a contract carrying the round's selected tier terms by value.
// The round is locked for the duration so concurrent investments cannot push
// the raise past its limit.
func (s *InvestmentService) Invest(ctx context.Context, req InvestRequest) (*InvestResult, error) {
	log := logging.FromContext(ctx)

	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("Invest: %w", domain.ErrInvalidAmount)
	}
	if req.AmountCents > s.config.MaxInvestmentCents {
		return nil, fmt.Errorf("Invest: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Invest: begin tx: %w", err)
	}
	defer tx.Rollback()

	round, err := s.rounds.GetForUpdate(ctx, tx, req.RoundID)
	if err != nil {
		return nil, fmt.Errorf("Invest: %w", err)
	}
	if round.Status != domain.RoundStatusPublished {
		return nil, fmt.Errorf("Invest: %w", domain.ErrRoundNotPublished)
	}
	if round.TierSelected == nil {
		return nil, fmt.Errorf("Invest: %w", domain.ErrTierNotSelected)
	}

	raised, err := s.rounds.RaisedCentsTx(ctx, tx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("Invest: %w", err)
	}
	if raised+req.AmountCents > round.MaxRaiseCents {
		return nil, fmt.Errorf("Invest: %w", domain.ErrRoundFullySubscribed)
	}

	option, err := s.tierOptions.GetByRoundAndTier(ctx, round.ID, *round.TierSelected)
	if err != nil {
		return nil, fmt.Errorf("Invest: %w", err)
	}

	paymentRef, err := s.provider.CollectInvestment(ctx, req.InvestorID, round.ID, req.AmountCents)
	if err != nil {
		return nil, fmt.Errorf("Invest: collect: %w", err)
	}

	now := time.Now().UTC()
	inv := &domain.Investment{
		ID:             uuid.New(),
		RoundID:        round.ID,
		InvestorUserID: req.InvestorID,
		AmountCents:    req.AmountCents,
		PaymentRef:     paymentRef,
		CreatedAt:      now,
	}
	if err := s.investments.Create(ctx, tx, inv); err != nil {
		return nil, fmt.Errorf("Invest: %w", err)
	}

	contract := &domain.Contract{
		ID:             uuid.New(),
		InvestmentID:   inv.ID,
		Status:         domain.ContractStatusActive,
		PrincipalCents: req.AmountCents,
		PayoutCapCents: tier.PayoutCapCents(req.AmountCents, option.Terms.PayoutCapBps),
		Terms:          option.Terms,
		ActivatedAt:    now,
	}
	if err := s.contracts.Create(ctx, tx, contract); err != nil {
		return nil, fmt.Errorf("Invest: %w", err)
	}

	invEntry := &domain.LedgerEntry{
		EntryType:   domain.EntryTypeInvestment,
		ContractID:  &contract.ID,
		RoundID:     &round.ID,
		StartupID:   &round.StartupID,
		ActorUserID: &req.InvestorID,
		AmountCents: req.AmountCents,
		Currency:    domain.CurrencyCAD,
		CreatedAt:   now,
	}
	if err := s.ledger.Append(ctx, tx, invEntry); err != nil {
		return nil, fmt.Errorf("Invest: %w", err)
	}

	platformFee := req.AmountCents * int64(s.config.PlatformFeeBps) / 10000
	if platformFee > 0 {
		feeEntry := &domain.LedgerEntry{
			EntryType:   domain.EntryTypePlatformFee,
			ContractID:  &contract.ID,
			RoundID:     &round.ID,
			StartupID:   &round.StartupID,
			ActorUserID: &req.InvestorID,
			AmountCents: platformFee,
			Currency:    domain.CurrencyCAD,
			CreatedAt:   now,
		}
		if err := s.ledger.Append(ctx, tx, feeEntry); err != nil {
			return nil, fmt.Errorf("Invest: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Invest: commit: %w", err)
	}

	log.Info("investment completed",
		"investment_id", inv.ID,
		"contract_id", contract.ID,
		"round_id", round.ID,
		"amount_cents", req.AmountCents,
		"payout_cap_cents", contract.PayoutCapCents,
	)
	return &InvestResult{Investment: inv, Contract: contract}, nil
}

func (s *InvestmentService) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Investment, error) {
	invs, err := s.investments.ListByInvestor(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("ListByInvestor: %w", err)
	}
	return invs, nil
}
