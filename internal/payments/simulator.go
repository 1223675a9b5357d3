package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/logging"
)

// Simulator stands in for a real processor. It never fails and never moves
// money; it only mints references, which is all the rest of the system needs.
type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

func (s *Simulator) ChargeApplicationFee(ctx context.Context, founderID uuid.UUID, amountCents int64) (string, error) {
	ref := simRef("sim_app_fee")
	logging.FromContext(ctx).Info("simulated application fee charge",
		"founder_id", founderID, "amount_cents", amountCents, "payment_ref", ref)
	return ref, nil
}

func (s *Simulator) CollectInvestment(ctx context.Context, investorID, roundID uuid.UUID, amountCents int64) (string, error) {
	ref := simRef("sim_invest")
	logging.FromContext(ctx).Info("simulated investment collection",
		"investor_id", investorID, "round_id", roundID, "amount_cents", amountCents, "payment_ref", ref)
	return ref, nil
}

func (s *Simulator) PayoutInvestor(ctx context.Context, investorID uuid.UUID, amountCents int64) (string, error) {
	ref := simRef("sim_payout")
	logging.FromContext(ctx).Info("simulated investor payout",
		"investor_id", investorID, "amount_cents", amountCents, "payment_ref", ref)
	return ref, nil
}

func simRef(prefix string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}
