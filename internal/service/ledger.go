package service

import (
	"context"
	"fmt"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type ledgerLister interface {
	List(ctx context.Context, limit, offset int) ([]domain.LedgerEntry, int, error)
}

// LedgerService exposes the raw append-only ledger to operators.
type LedgerService struct {
	ledger ledgerLister
}

func NewLedgerService(ledger ledgerLister) *LedgerService {
	return &LedgerService{ledger: ledger}
}

func (s *LedgerService) List(ctx context.Context, limit, offset int) ([]domain.LedgerEntry, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.ledger.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return entries, total, nil
}
