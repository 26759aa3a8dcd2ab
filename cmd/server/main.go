package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplychain_backoffice/internal/app"
	"supplychain_backoffice/internal/domain/alert"
	"supplychain_backoffice/internal/infra/config"
	"supplychain_backoffice/internal/infra/database"
	"supplychain_backoffice/internal/infra/httpapi"
	"supplychain_backoffice/internal/infra/logger"
	"supplychain_backoffice/internal/infra/scheduler"
	"supplychain_backoffice/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	shipmentRepo := database.NewPostgresShipmentRepository(db)
	alertRepo := database.NewPostgresAlertRepository(db)

	var notifier alert.Notifier
	if cfg.OpsChannelEnabled() {
		tgNotifier, err := telegram.NewNotifier(cfg.TelegramToken, cfg.OpsChatID)
		if err != nil {
			log.Fatalf("Could not create telegram notifier: %v", err)
		}
		notifier = tgNotifier
		log.Info("Ops Telegram channel enabled for critical notifications")
	}

	statusService := app.NewStatusService(shipmentRepo, log)
	checkService := app.NewCheckService(shipmentRepo, alertRepo, notifier, log).
		WithConcurrency(cfg.ScanConcurrency)

	sched := scheduler.New(checkService, statusService, log, cfg.CronSpecScan, cfg.CronSpecRecompute)
	sched.Start()

	api := httpapi.NewServer(statusService, checkService, alertRepo, log)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("HTTP API listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown: %v", err)
	}
	log.Info("Shut down gracefully")
}
