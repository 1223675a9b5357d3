package testutil

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/radionhq/revshare-engine/internal/domain"
)

// DefaultTerms is a medium-tier shape used when a test does not care about
// the exact economics: 5% share, 1.5x cap, 36 month time cap, 90 day hold.
func DefaultTerms() domain.TierTerms {
	return domain.TierTerms{
		Name:                domain.TierMedium,
		RevenueShareBps:     500,
		PayoutCapBps:        15000,
		TimeCapMonths:       36,
		MinHoldDays:         90,
		ExitFeeBpsQuarterly: 200,
		ExitFeeBpsOffcycle:  500,
	}
}

func SeedUser(t *testing.T, db *sql.DB, email string, role domain.Role) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Country:      "CA",
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, password_hash, role, country, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.Country, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedStartup(t *testing.T, db *sql.DB, founderID uuid.UUID) *domain.Startup {
	t.Helper()

	s := &domain.Startup{
		ID:            uuid.New(),
		FounderUserID: founderID,
		Name:          "Acme Analytics",
		Country:       "CA",
		Industry:      "saas",
		RevenueStage:  "recurring",
		Status:        domain.StartupStatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO startups (id, founder_user_id, name, country, industry, revenue_stage, description, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, '', $7, $8)`,
		s.ID, s.FounderUserID, s.Name, s.Country, s.Industry, s.RevenueStage, s.Status, s.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed startup: %v", err)
	}
	return s
}

func SeedDocument(t *testing.T, db *sql.DB, startupID uuid.UUID, docType domain.DocumentType) *domain.Document {
	t.Helper()

	d := &domain.Document{
		ID:         uuid.New(),
		StartupID:  startupID,
		DocType:    docType,
		Filename:   fmt.Sprintf("%s.pdf", docType),
		StorageKey: fmt.Sprintf("docs/%s/%s.pdf", startupID, docType),
		UploadedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO documents (id, startup_id, doc_type, filename, storage_key, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.StartupID, d.DocType, d.Filename, d.StorageKey, d.UploadedAt,
	)
	if err != nil {
		t.Fatalf("seed document %s: %v", docType, err)
	}
	return d
}

func SeedMandatoryDocuments(t *testing.T, db *sql.DB, startupID uuid.UUID) {
	t.Helper()
	for _, dt := range domain.MandatoryDocumentTypes {
		SeedDocument(t, db, startupID, dt)
	}
}

func SeedApplication(t *testing.T, db *sql.DB, startupID uuid.UUID, status domain.ApplicationStatus, limitCents int64) *domain.Application {
	t.Helper()

	a := &domain.Application{
		ID:                  uuid.New(),
		StartupID:           startupID,
		Status:              status,
		RequestedLimitCents: limitCents,
		RiskPreference:      domain.RiskLevelMedium,
		FeeCents:            2500,
		CreatedAt:           time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO applications (id, startup_id, status, requested_limit_cents, risk_preference, fee_cents, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.StartupID, a.Status, a.RequestedLimitCents, a.RiskPreference, a.FeeCents, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return a
}

func SeedRound(t *testing.T, db *sql.DB, startupID, applicationID uuid.UUID, maxRaiseCents int64, status domain.RoundStatus) *domain.Round {
	t.Helper()

	r := &domain.Round{
		ID:            uuid.New(),
		StartupID:     startupID,
		ApplicationID: applicationID,
		Title:         "Growth round",
		MaxRaiseCents: maxRaiseCents,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	if status == domain.RoundStatusPublished || status == domain.RoundStatusClosed {
		now := time.Now().UTC()
		r.PublishedAt = &now
	}

	_, err := db.Exec(
		`INSERT INTO rounds (id, startup_id, application_id, title, max_raise_cents, status, created_at, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.StartupID, r.ApplicationID, r.Title, r.MaxRaiseCents, r.Status, r.CreatedAt, r.PublishedAt,
	)
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}
	return r
}

func SeedTierOption(t *testing.T, db *sql.DB, roundID uuid.UUID, terms domain.TierTerms) *domain.TierOption {
	t.Helper()

	o := &domain.TierOption{
		ID:          uuid.New(),
		RoundID:     roundID,
		Terms:       terms,
		Explanation: json.RawMessage(`{}`),
	}

	_, err := db.Exec(
		`INSERT INTO tier_options (id, round_id, tier, revenue_share_bps, payout_cap_bps, time_cap_months,
		                           min_hold_days, exit_fee_bps_quarterly, exit_fee_bps_offcycle, explanation_json)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.RoundID, o.Terms.Name, o.Terms.RevenueShareBps, o.Terms.PayoutCapBps, o.Terms.TimeCapMonths,
		o.Terms.MinHoldDays, o.Terms.ExitFeeBpsQuarterly, o.Terms.ExitFeeBpsOffcycle, string(o.Explanation),
	)
	if err != nil {
		t.Fatalf("seed tier option %s: %v", terms.Name, err)
	}
	return o
}

// SelectRoundTier marks the round as having committed to the given tier.
func SelectRoundTier(t *testing.T, db *sql.DB, roundID uuid.UUID, tier domain.TierName) {
	t.Helper()

	if _, err := db.Exec(`UPDATE rounds SET tier_selected = $1 WHERE id = $2`, tier, roundID); err != nil {
		t.Fatalf("select round tier: %v", err)
	}
}

// SeedPublishedRound builds the whole founder-side chain a test usually
// needs: startup, approved application, published round with the default
// medium tier proposed and selected.
func SeedPublishedRound(t *testing.T, db *sql.DB, founderID uuid.UUID, maxRaiseCents int64) (*domain.Startup, *domain.Round) {
	t.Helper()

	startup := SeedStartup(t, db, founderID)
	app := SeedApplication(t, db, startup.ID, domain.ApplicationStatusApproved, maxRaiseCents)
	round := SeedRound(t, db, startup.ID, app.ID, maxRaiseCents, domain.RoundStatusPublished)
	SeedTierOption(t, db, round.ID, DefaultTerms())
	SelectRoundTier(t, db, round.ID, domain.TierMedium)

	selected := domain.TierMedium
	round.TierSelected = &selected
	return startup, round
}

func SeedInvestment(t *testing.T, db *sql.DB, roundID, investorID uuid.UUID, amountCents int64) *domain.Investment {
	t.Helper()

	inv := &domain.Investment{
		ID:             uuid.New(),
		RoundID:        roundID,
		InvestorUserID: investorID,
		AmountCents:    amountCents,
		PaymentRef:     "sim_invest_deadbeef",
		CreatedAt:      time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO investments (id, round_id, investor_user_id, amount_cents, payment_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.RoundID, inv.InvestorUserID, inv.AmountCents, inv.PaymentRef, inv.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed investment: %v", err)
	}
	return inv
}

func SeedContract(t *testing.T, db *sql.DB, investmentID uuid.UUID, principalCents int64, terms domain.TierTerms, activatedAt time.Time) *domain.Contract {
	t.Helper()

	c := &domain.Contract{
		ID:             uuid.New(),
		InvestmentID:   investmentID,
		Status:         domain.ContractStatusActive,
		PrincipalCents: principalCents,
		PayoutCapCents: principalCents * int64(terms.PayoutCapBps) / 10000,
		Terms:          terms,
		ActivatedAt:    activatedAt,
	}

	_, err := db.Exec(
		`INSERT INTO contracts (id, investment_id, status, principal_cents, payout_cap_cents, revenue_share_bps,
		                        payout_cap_bps, time_cap_months, min_hold_days, exit_fee_bps_quarterly,
		                        exit_fee_bps_offcycle, tier, activated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.InvestmentID, c.Status, c.PrincipalCents, c.PayoutCapCents, c.Terms.RevenueShareBps,
		c.Terms.PayoutCapBps, c.Terms.TimeCapMonths, c.Terms.MinHoldDays, c.Terms.ExitFeeBpsQuarterly,
		c.Terms.ExitFeeBpsOffcycle, c.Terms.Name, c.ActivatedAt,
	)
	if err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return c
}

// SeedFundedContract seeds an investment plus its contract with the given
// terms, activated at the given time.
func SeedFundedContract(t *testing.T, db *sql.DB, roundID, investorID uuid.UUID, amountCents int64, terms domain.TierTerms, activatedAt time.Time) (*domain.Investment, *domain.Contract) {
	t.Helper()

	inv := SeedInvestment(t, db, roundID, investorID, amountCents)
	c := SeedContract(t, db, inv.ID, amountCents, terms, activatedAt)
	return inv, c
}

func SeedRevenueReport(t *testing.T, db *sql.DB, startupID uuid.UUID, month string, grossCents int64, reportedBy uuid.UUID) *domain.RevenueReport {
	t.Helper()

	rep := &domain.RevenueReport{
		ID:                uuid.New(),
		StartupID:         startupID,
		Month:             month,
		GrossRevenueCents: grossCents,
		ReportedBy:        reportedBy,
		CreatedAt:         time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO revenue_reports (id, startup_id, month, gross_revenue_cents, reported_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rep.ID, rep.StartupID, rep.Month, rep.GrossRevenueCents, rep.ReportedBy, rep.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed revenue report %s: %v", month, err)
	}
	return rep
}

// SeedLedgerEntry posts a raw distribution entry against a contract, used to
// set up a paid-to-date without running the distribution machinery.
func SeedLedgerEntry(t *testing.T, db *sql.DB, contractID uuid.UUID, entryType domain.EntryType, amountCents int64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO ledger_entries (entry_type, contract_id, amount_cents, currency)
		 VALUES ($1, $2, $3, 'CAD')`,
		entryType, contractID, amountCents,
	)
	if err != nil {
		t.Fatalf("seed ledger entry: %v", err)
	}
}

func PaidToDate(t *testing.T, db *sql.DB, contractID uuid.UUID) int64 {
	t.Helper()

	var paid int64
	err := db.QueryRow(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries
		 WHERE contract_id = $1 AND entry_type IN ('distribution', 'adjustment')`,
		contractID,
	).Scan(&paid)
	if err != nil {
		t.Fatalf("paid to date %s: %v", contractID, err)
	}
	return paid
}

func CountLedgerEntries(t *testing.T, db *sql.DB, distributionID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE distribution_id = $1`, distributionID).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries for distribution %s: %v", distributionID, err)
	}
	return count
}
