package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrInvalidMonth            = errors.New("month must be formatted YYYY-MM")
	ErrInvalidTransition       = errors.New("illegal state transition")
	ErrMissingDocuments        = errors.New("mandatory documents missing")
	ErrApplicationExists       = errors.New("startup already has an application")
	ErrApplicationNotApproved  = errors.New("application not approved")
	ErrTierNotSelected         = errors.New("no tier selected")
	ErrTierNotFound            = errors.New("tier not found for round")
	ErrTierAlreadySelected     = errors.New("tier already selected")
	ErrRoundNotPublished       = errors.New("round not published")
	ErrRoundFullySubscribed    = errors.New("round fully subscribed")
	ErrCountryNotSupported     = errors.New("country not supported")
	ErrDuplicateReport         = errors.New("revenue report already exists for month")
	ErrContractNotActive       = errors.New("contract not active")
	ErrMinHoldNotMet           = errors.New("minimum holding period not satisfied")
	ErrAlreadySettled          = errors.New("exit request already settled")
	ErrExitPending             = errors.New("contract already has a pending exit request")
	ErrEmailExists             = errors.New("email already registered")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrCapExceeded indicates paid-to-date beyond the payout cap. It is an
	// internal invariant violation, never reachable through normal flow; any
	// operation that detects it aborts with no partial ledger writes.
	ErrCapExceeded = errors.New("payout cap exceeded")
)
