package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/sunshinebank/sunshine-ledger/internal/config"
	"github.com/sunshinebank/sunshine-ledger/internal/fx"
	"github.com/sunshinebank/sunshine-ledger/internal/handler"
	"github.com/sunshinebank/sunshine-ledger/internal/logging"
	"github.com/sunshinebank/sunshine-ledger/internal/metrics"
	"github.com/sunshinebank/sunshine-ledger/internal/middleware"
	"github.com/sunshinebank/sunshine-ledger/internal/repository"
	"github.com/sunshinebank/sunshine-ledger/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("sunshine-ledger", cfg.LogLevel, cfg.AppEnv)

	pool, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.RunMigrations(pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db := repository.NewDB(pool)
	clock := service.SystemClock()
	collector := metrics.NewCollector()

	customers := repository.NewCustomerRepository(pool)
	accounts := repository.NewAccountRepository(pool)
	txns := repository.NewTransactionRepository(pool)
	limits := repository.NewLimitsRepository(pool)
	loans := repository.NewLoanRepository(pool)

	rates := fx.NewRateService(cfg.PivotRates(), cfg.CommissionTiers())

	accountSvc := service.NewAccountService(accounts, customers, limits, db, clock, cfg.DefaultCeilings())
	ledgerSvc := service.NewLedgerService(accounts, limits, txns, db, clock, collector)
	limitsSvc := service.NewLimitsService(accounts, limits, txns, db, clock)
	convertSvc := service.NewConversionService(accounts, txns, rates, db, clock, collector)
	loanSvc := service.NewLoanService(loans, accounts, txns, cfg.LoanRates(), db, clock, collector)
	insuranceSvc := service.NewInsuranceService(accounts, txns, db, clock, collector)

	jwtExpiry := time.Duration(cfg.JWTExpiryS) * time.Second
	healthHandler := handler.NewHealthHandler(pool)
	authHandler := handler.NewAuthHandler(customers, cfg.JWTSecret, jwtExpiry)
	customerHandler := handler.NewCustomerHandler(customers)
	accountHandler := handler.NewAccountHandler(accountSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc, accountSvc)
	limitsHandler := handler.NewLimitsHandler(limitsSvc, accountSvc)
	fxHandler := handler.NewFXHandler(rates, convertSvc, accountSvc)
	loanHandler := handler.NewLoanHandler(loanSvc, accountSvc)
	insuranceHandler := handler.NewInsuranceHandler(insuranceSvc, accountSvc)

	authed := middleware.Auth(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", collector.Handler())

	mux.HandleFunc("POST /v1/customers", customerHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)

	mux.Handle("GET /v1/customers/me", authed(http.HandlerFunc(customerHandler.Me)))

	mux.Handle("POST /v1/accounts", authed(http.HandlerFunc(accountHandler.Open)))
	mux.Handle("GET /v1/accounts", authed(http.HandlerFunc(accountHandler.List)))
	mux.Handle("GET /v1/accounts/{id}", authed(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("POST /v1/accounts/{id}/close", authed(http.HandlerFunc(accountHandler.Close)))

	mux.Handle("POST /v1/accounts/{id}/deposits", authed(http.HandlerFunc(ledgerHandler.Deposit)))
	mux.Handle("POST /v1/accounts/{id}/withdrawals", authed(http.HandlerFunc(ledgerHandler.Withdraw)))
	mux.Handle("POST /v1/accounts/{id}/transfers", authed(http.HandlerFunc(ledgerHandler.Transfer)))
	mux.Handle("POST /v1/accounts/{id}/fx-topups", authed(http.HandlerFunc(ledgerHandler.TopUpFX)))
	mux.Handle("GET /v1/accounts/{id}/transactions", authed(http.HandlerFunc(ledgerHandler.History)))

	mux.Handle("GET /v1/accounts/{id}/limits", authed(http.HandlerFunc(limitsHandler.Overview)))
	mux.Handle("PUT /v1/accounts/{id}/limits", authed(http.HandlerFunc(limitsHandler.SetCeiling)))
	mux.Handle("GET /v1/accounts/{id}/limits/remaining", authed(http.HandlerFunc(limitsHandler.Remaining)))

	mux.HandleFunc("GET /v1/fx/rates", fxHandler.GetRate)
	mux.Handle("POST /v1/fx/quotes", authed(http.HandlerFunc(fxHandler.Quote)))
	mux.Handle("POST /v1/accounts/{id}/conversions", authed(http.HandlerFunc(fxHandler.Convert)))

	mux.Handle("POST /v1/accounts/{id}/loans", authed(http.HandlerFunc(loanHandler.Apply)))
	mux.Handle("GET /v1/accounts/{id}/loans", authed(http.HandlerFunc(loanHandler.List)))
	mux.Handle("GET /v1/loans/{id}/schedule", authed(http.HandlerFunc(loanHandler.Schedule)))
	mux.Handle("POST /v1/loans/{id}/repayments", authed(http.HandlerFunc(loanHandler.Repay)))

	mux.Handle("POST /v1/accounts/{id}/policies", authed(http.HandlerFunc(insuranceHandler.Purchase)))
	mux.Handle("POST /v1/accounts/{id}/policy-cancellations", authed(http.HandlerFunc(insuranceHandler.Cancel)))

	root := middleware.RequestID(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

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
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
