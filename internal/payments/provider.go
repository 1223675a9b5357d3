package payments

import (
	"context"

	"github.com/google/uuid"
)

// Provider moves money with an external processor. Every call returns the
// processor's reference for the movement so it can be stored alongside the
// record that triggered it.
type Provider interface {
	ChargeApplicationFee(ctx context.Context, founderID uuid.UUID, amountCents int64) (string, error)
	CollectInvestment(ctx context.Context, investorID, roundID uuid.UUID, amountCents int64) (string, error)
	PayoutInvestor(ctx context.Context, investorID uuid.UUID, amountCents int64) (string, error)
}
