package distribution

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/logging"
)

type roundRepo interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Round, error)
	RaisedCentsTx(ctx context.Context, tx *sql.Tx, roundID uuid.UUID) (int64, error)
}

type reportRepo interface {
	GetByStartupAndMonth(ctx context.Context, startupID uuid.UUID, month string) (*domain.RevenueReport, error)
}

type distributionRepo interface {
	TryCreate(ctx context.Context, tx *sql.Tx, d *domain.Distribution) (bool, error)
	GetByRoundAndMonth(ctx context.Context, roundID uuid.UUID, month string) (*domain.Distribution, error)
	SetTotal(ctx context.Context, tx *sql.Tx, id uuid.UUID, totalCents int64) error
}

type contractRepo interface {
	ListActiveByRoundForUpdate(ctx context.Context, tx *sql.Tx, roundID uuid.UUID) ([]domain.Contract, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.ContractStatus) error
}

type ledgerRepo interface {
	Append(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error
	PaidToDateTx(ctx context.Context, tx *sql.Tx, contractID uuid.UUID) (int64, error)
	ListByDistribution(ctx context.Context, distributionID uuid.UUID) ([]domain.LedgerEntry, error)
}

type Service struct {
	rounds        roundRepo
	reports       reportRepo
	distributions distributionRepo
	contracts     contractRepo
	ledger        ledgerRepo
	db            *sql.DB
}

func NewService(
	rounds roundRepo,
	reports reportRepo,
	distributions distributionRepo,
	contracts contractRepo,
	ledger ledgerRepo,
	db *sql.DB,
) *Service {
	return &Service{
		rounds:        rounds,
		reports:       reports,
		distributions: distributions,
		contracts:     contracts,
		ledger:        ledger,
		db:            db,
	}
}

// Result is what a distribution run produced. Replayed means the (round,
// month) pair had already run; Entries are then the original ledger lines.
type Result struct {
	Distribution *domain.Distribution
	Entries      []domain.LedgerEntry
	Replayed     bool
}

// Run distributes one month's reported revenue across a round's active
// contracts. The round row is locked first, then the (round, month) slot is
// claimed; losing the claim means another run already happened and its result
// is returned unchanged. All ledger entries, status flips, and the total
// commit atomically.
func (s *Service) Run(ctx context.Context, roundID uuid.UUID, month string, actorID uuid.UUID) (*Result, error) {
	log := logging.FromContext(ctx)

	year, cal, err := domain.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Run: begin tx: %w", err)
	}
	defer tx.Rollback()

	round, err := s.rounds.GetForUpdate(ctx, tx, roundID)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	// Closed rounds still accrue; only an unpublished round has no contracts
	// to pay.
	if round.Status != domain.RoundStatusPublished && round.Status != domain.RoundStatusClosed {
		return nil, fmt.Errorf("Run: %w", domain.ErrRoundNotPublished)
	}

	report, err := s.reports.GetByStartupAndMonth(ctx, round.StartupID, month)
	if err != nil {
		return nil, fmt.Errorf("Run: revenue report for %s: %w", month, err)
	}

	dist := &domain.Distribution{
		ID:              uuid.New(),
		RoundID:         round.ID,
		Month:           month,
		RevenueReportID: report.ID,
		CreatedBy:       actorID,
		CreatedAt:       time.Now().UTC(),
	}
	created, err := s.distributions.TryCreate(ctx, tx, dist)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	if !created {
		return s.replay(ctx, round.ID, month)
	}

	raised, err := s.rounds.RaisedCentsTx(ctx, tx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	contracts, err := s.contracts.ListActiveByRoundForUpdate(ctx, tx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	states := make([]ContractState, 0, len(contracts))
	for _, c := range contracts {
		paid, err := s.ledger.PaidToDateTx(ctx, tx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
		states = append(states, ContractState{Contract: c, PaidToDateCents: paid})
	}

	plan, err := BuildPlan(states, raised, report.GrossRevenueCents, year, cal)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	entries := make([]domain.LedgerEntry, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		if line.AmountCents > 0 {
			entry := &domain.LedgerEntry{
				EntryType:      domain.EntryTypeDistribution,
				ContractID:     &line.Contract.ID,
				RoundID:        &round.ID,
				StartupID:      &round.StartupID,
				ActorUserID:    &actorID,
				DistributionID: &dist.ID,
				AmountCents:    line.AmountCents,
				Currency:       domain.CurrencyCAD,
				CreatedAt:      dist.CreatedAt,
			}
			if err := s.ledger.Append(ctx, tx, entry); err != nil {
				return nil, fmt.Errorf("Run: %w", err)
			}
			entries = append(entries, *entry)
		}
		if line.NewStatus != line.Contract.Status {
			if err := s.contracts.UpdateStatus(ctx, tx, line.Contract.ID, line.NewStatus); err != nil {
				return nil, fmt.Errorf("Run: %w", err)
			}
		}
	}

	if err := s.distributions.SetTotal(ctx, tx, dist.ID, plan.TotalCents); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Run: commit: %w", err)
	}

	dist.TotalDistributedCents = plan.TotalCents

	log.Info("distribution completed",
		"distribution_id", dist.ID,
		"round_id", round.ID,
		"month", month,
		"gross_revenue_cents", report.GrossRevenueCents,
		"total_distributed_cents", plan.TotalCents,
		"contracts_paid", len(entries),
	)
	return &Result{Distribution: dist, Entries: entries}, nil
}

// Get returns a past distribution with its ledger lines.
func (s *Service) Get(ctx context.Context, roundID uuid.UUID, month string) (*Result, error) {
	res, err := s.replay(ctx, roundID, month)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	res.Replayed = false
	return res, nil
}

func (s *Service) replay(ctx context.Context, roundID uuid.UUID, month string) (*Result, error) {
	dist, err := s.distributions.GetByRoundAndMonth(ctx, roundID, month)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	entries, err := s.ledger.ListByDistribution(ctx, dist.ID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return &Result{Distribution: dist, Entries: entries, Replayed: true}, nil
}
