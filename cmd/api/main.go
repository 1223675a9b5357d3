package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radionhq/revshare-engine/internal/config"
	"github.com/radionhq/revshare-engine/internal/domain"
	"github.com/radionhq/revshare-engine/internal/handler"
	"github.com/radionhq/revshare-engine/internal/logging"
	"github.com/radionhq/revshare-engine/internal/middleware"
	"github.com/radionhq/revshare-engine/internal/payments"
	"github.com/radionhq/revshare-engine/internal/repository"
	"github.com/radionhq/revshare-engine/internal/service"
	"github.com/radionhq/revshare-engine/internal/service/distribution"
	"github.com/radionhq/revshare-engine/internal/service/exits"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("revshare-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	startups := repository.NewStartupRepository(db)
	documents := repository.NewDocumentRepository(db)
	applications := repository.NewApplicationRepository(db)
	rounds := repository.NewRoundRepository(db)
	tierOptions := repository.NewTierOptionRepository(db)
	investments := repository.NewInvestmentRepository(db)
	contracts := repository.NewContractRepository(db)
	ledger := repository.NewLedgerRepository(db)
	reports := repository.NewRevenueReportRepository(db)
	distributions := repository.NewDistributionRepository(db)
	exitRequests := repository.NewExitRepository(db)
	loanReferrals := repository.NewLoanReferralRepository(db)
	audit := repository.NewAuditRepository(db)
	idempotency := repository.NewIdempotencyRepository(db)

	provider := payments.NewSimulator()

	startupSvc := service.NewStartupService(startups, documents)
	applicationSvc := service.NewApplicationService(applications, startups, documents, ledger, audit, provider, db, cfg)
	roundSvc := service.NewRoundService(rounds, tierOptions, applications, startups, audit, db)
	investmentSvc := service.NewInvestmentService(investments, contracts, rounds, tierOptions, ledger, provider, db, cfg)
	revenueSvc := service.NewRevenueService(reports, startups)
	portfolioSvc := service.NewPortfolioService(contracts, investments, ledger)
	ledgerSvc := service.NewLedgerService(ledger)
	distributionSvc := distribution.NewService(rounds, reports, distributions, contracts, ledger, db)
	exitSvc := exits.NewService(exitRequests, contracts, investments, ledger, loanReferrals, provider, db)

	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, time.Duration(cfg.JWTExpireMinutes)*time.Minute)
	startupHandler := handler.NewStartupHandler(startupSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	roundHandler := handler.NewRoundHandler(roundSvc)
	investmentHandler := handler.NewInvestmentHandler(investmentSvc)
	revenueHandler := handler.NewRevenueHandler(revenueSvc)
	portfolioHandler := handler.NewPortfolioHandler(portfolioSvc)
	distributionHandler := handler.NewDistributionHandler(distributionSvc)
	exitHandler := handler.NewExitHandler(exitSvc)
	adminHandler := handler.NewAdminHandler(applicationSvc, roundSvc, ledgerSvc)

	auth := middleware.Auth(cfg.JWTSecret)
	idem := middleware.Idempotency(idempotency)
	founderOnly := middleware.RequireRole(domain.RoleFounder)
	investorOnly := middleware.RequireRole(domain.RoleInvestor)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("POST /api/v1/startups", wrap(startupHandler.Create, auth, idem, founderOnly))
	mux.Handle("GET /api/v1/startups", wrap(startupHandler.List, auth, founderOnly))
	mux.Handle("GET /api/v1/startups/{id}", wrap(startupHandler.Get, auth, founderOnly))
	mux.Handle("DELETE /api/v1/startups/{id}", wrap(startupHandler.Archive, auth, founderOnly))
	mux.Handle("POST /api/v1/startups/{id}/documents", wrap(startupHandler.UploadDocument, auth, idem, founderOnly))
	mux.Handle("GET /api/v1/startups/{id}/documents", wrap(startupHandler.ListDocuments, auth, founderOnly))
	mux.Handle("POST /api/v1/startups/{id}/revenue-reports", wrap(revenueHandler.Report, auth, idem, founderOnly))
	mux.Handle("GET /api/v1/startups/{id}/revenue-reports", wrap(revenueHandler.List, auth, founderOnly))
	mux.Handle("GET /api/v1/startups/{id}/rounds", wrap(roundHandler.ListByStartup, auth, founderOnly))

	mux.Handle("POST /api/v1/applications", wrap(applicationHandler.Create, auth, idem, founderOnly))
	mux.Handle("PATCH /api/v1/applications/{id}", wrap(applicationHandler.Update, auth, founderOnly))
	mux.Handle("POST /api/v1/applications/{id}/submit", wrap(applicationHandler.Submit, auth, idem, founderOnly))
	mux.Handle("POST /api/v1/applications/{id}/withdraw", wrap(applicationHandler.Withdraw, auth, founderOnly))
	mux.Handle("GET /api/v1/applications/{id}", wrap(applicationHandler.Get, auth, founderOnly))

	mux.Handle("POST /api/v1/rounds", wrap(roundHandler.Create, auth, idem, founderOnly))
	mux.Handle("POST /api/v1/rounds/{id}/tiers/propose", wrap(roundHandler.ProposeTiers, auth, founderOnly))
	mux.Handle("POST /api/v1/rounds/{id}/tiers/select", wrap(roundHandler.SelectTier, auth, founderOnly))
	mux.Handle("POST /api/v1/rounds/{id}/publish", wrap(roundHandler.Publish, auth, founderOnly))

	mux.Handle("GET /api/v1/rounds", wrap(roundHandler.ListPublished, auth))
	mux.Handle("GET /api/v1/rounds/{id}", wrap(roundHandler.Get, auth))
	mux.Handle("GET /api/v1/rounds/{id}/tiers", wrap(roundHandler.ListTierOptions, auth))
	mux.Handle("POST /api/v1/rounds/{id}/invest", wrap(investmentHandler.Invest, auth, idem, investorOnly))
	mux.Handle("GET /api/v1/investments", wrap(investmentHandler.List, auth, investorOnly))

	mux.Handle("GET /api/v1/portfolio", wrap(portfolioHandler.List, auth, investorOnly))
	mux.Handle("GET /api/v1/portfolio/{id}", wrap(portfolioHandler.Get, auth, investorOnly))
	mux.Handle("GET /api/v1/portfolio/{id}/ledger", wrap(portfolioHandler.Ledger, auth, investorOnly))

	mux.Handle("POST /api/v1/exits", wrap(exitHandler.Request, auth, idem, investorOnly))
	mux.Handle("GET /api/v1/exits", wrap(exitHandler.List, auth, investorOnly))

	mux.Handle("GET /api/v1/admin/applications", wrap(adminHandler.ListApplications, auth, adminOnly))
	mux.Handle("POST /api/v1/admin/applications/{id}/review", wrap(adminHandler.ReviewApplication, auth, idem, adminOnly))
	mux.Handle("POST /api/v1/admin/rounds/{id}/close", wrap(adminHandler.CloseRound, auth, idem, adminOnly))
	mux.Handle("POST /api/v1/admin/rounds/{id}/distributions", wrap(distributionHandler.Run, auth, idem, adminOnly))
	mux.Handle("GET /api/v1/admin/rounds/{id}/distributions/{month}", wrap(distributionHandler.Get, auth, adminOnly))
	mux.Handle("GET /api/v1/admin/exits", wrap(exitHandler.ListPending, auth, adminOnly))
	mux.Handle("POST /api/v1/admin/exits/{id}/settle", wrap(exitHandler.Settle, auth, idem, adminOnly))
	mux.Handle("POST /api/v1/admin/exits/{id}/reject", wrap(exitHandler.Reject, auth, idem, adminOnly))
	mux.Handle("GET /api/v1/admin/ledger", wrap(adminHandler.ListLedger, auth, adminOnly))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stopCleaner := startIdempotencyCleaner(idempotency)
	defer stopCleaner()

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// wrap applies middleware right to left, so the first in the list runs first.
func wrap(h http.HandlerFunc, mws ...func(http.Handler) http.Handler) http.Handler {
	var wrapped http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

func startIdempotencyCleaner(repo *repository.IdempotencyRepository) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if n, err := repo.CleanExpired(ctx); err != nil {
					slog.Error("failed to clean idempotency cache", "error", err)
				} else if n > 0 {
					slog.Info("cleaned idempotency cache", "removed", n)
				}
				cancel()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
