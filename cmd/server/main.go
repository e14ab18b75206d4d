package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/config"
	"github.com/yafera/herdbook/internal/repository/mongodb"
	"github.com/yafera/herdbook/internal/repository/sheets"
	"github.com/yafera/herdbook/internal/scheduler"
	"github.com/yafera/herdbook/internal/server/handlers"
	"github.com/yafera/herdbook/internal/server/router"
	commandsvc "github.com/yafera/herdbook/internal/service/commands"
	reportingsvc "github.com/yafera/herdbook/internal/service/reporting"
	whatsappsvc "github.com/yafera/herdbook/internal/service/whatsapp"
	"github.com/yafera/herdbook/internal/store"
	whatsappclient "github.com/yafera/herdbook/pkg/clients/whatsapp"
	"github.com/yafera/herdbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	repo, err := sheets.Open(startCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}

	loc := cfg.Reporting.Location()
	ledgerStore := store.New(repo, store.TablesFromConfig(cfg.Sheets), loc, baseLogger.Named("store"))

	var snapshots reportingsvc.SnapshotRepository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(startCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		snapshots = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, summary archive disabled")
	}

	reportingSvc := reportingsvc.NewService(ledgerStore, snapshots, baseLogger.Named("svc.reporting"))
	ledgerHandler := handlers.NewLedgerHandler(ledgerStore, reportingSvc, loc, baseLogger.Named("handlers.ledger"))

	var (
		webhookHandler *handlers.WebhookHandler
		notifier       scheduler.Notifier
	)
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(ledgerStore, reportingSvc, loc, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("WHATSAPP_TOKEN missing, command channel disabled")
	}

	engine := router.New(ledgerHandler, webhookHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Sheets.Backend))
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
