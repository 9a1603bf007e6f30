package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/auth"
	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/render/pdf"
	"github.com/techsolutionsutrecht/offerte/internal/repository/memory"
	"github.com/techsolutionsutrecht/offerte/internal/repository/mongodb"
	"github.com/techsolutionsutrecht/offerte/internal/repository/sheets"
	"github.com/techsolutionsutrecht/offerte/internal/scheduler"
	"github.com/techsolutionsutrecht/offerte/internal/server/handlers"
	"github.com/techsolutionsutrecht/offerte/internal/server/router"
	approvalsvc "github.com/techsolutionsutrecht/offerte/internal/service/approval"
	recordsvc "github.com/techsolutionsutrecht/offerte/internal/service/records"
	reportingsvc "github.com/techsolutionsutrecht/offerte/internal/service/reporting"
	verificationsvc "github.com/techsolutionsutrecht/offerte/internal/service/verification"
	"github.com/techsolutionsutrecht/offerte/pkg/clients/mailer"
	"github.com/techsolutionsutrecht/offerte/pkg/clients/smtp"
	"github.com/techsolutionsutrecht/offerte/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Service, cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store mongodb.Repository
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		baseLogger.Warn("using in-memory record store, data is lost on restart")
		store = memory.NewRepository()
	default:
		connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(baseLogger, "repo.mongodb"))
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	}

	reportingSvc := reportingsvc.NewService(store, cfg.Reporting.StaleAfter, logger.Named(baseLogger, "svc.reporting"))

	var ledger approvalsvc.Ledger
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewSpreadsheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetLedger := sheets.NewLedger(sheetsRepo)
		ledger = sheetLedger
		reportingSvc.WithLedger(sheetLedger)
		baseLogger.Info("approval ledger enabled")
	} else {
		baseLogger.Warn("google sheets not configured, approval ledger disabled")
	}

	notifier := mailer.NewClient(cfg.Mail)
	renderer := pdf.NewRenderer(cfg.Company)
	authenticator := auth.NewAuthenticator(cfg.Admin)

	verificationSvc := verificationsvc.NewService(store, notifier, cfg.Verification, cfg.Company, logger.Named(baseLogger, "svc.verification"))
	flow := verificationsvc.NewFlow(verificationSvc, verificationsvc.NewSessionManager(cfg.Verification.SessionTTL), cfg.Verification.ResendCooldown)
	approvalSvc := approvalsvc.NewService(store, renderer, notifier, ledger, cfg.Company, logger.Named(baseLogger, "svc.approval"))
	recordSvc := recordsvc.NewService(store, cfg.Server.PublicBaseURL, logger.Named(baseLogger, "svc.records"))

	engine := router.New(router.Handlers{
		Email:  handlers.NewEmailHandler(smtp.New(cfg.SMTP), logger.Named(baseLogger, "handlers.email")),
		Auth:   handlers.NewAuthHandler(authenticator, logger.Named(baseLogger, "handlers.auth")),
		Admin:  handlers.NewAdminHandler(recordSvc, flow, logger.Named(baseLogger, "handlers.admin")),
		Viewer: handlers.NewViewerHandler(store, flow, approvalSvc, logger.Named(baseLogger, "handlers.viewer")),
	}, authenticator, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, cfg.Company, reportingSvc, notifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
			zap.String("public_base_url", cfg.Server.PublicBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
