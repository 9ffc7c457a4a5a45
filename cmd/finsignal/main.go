package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"finsignal/internal/api"
	"finsignal/internal/api/handlers"
	"finsignal/internal/features"
	"finsignal/internal/notify"
	"finsignal/internal/policy"
	"finsignal/internal/repository"
	"finsignal/internal/scheduler"
	"finsignal/internal/service"
	"finsignal/pkg/config"
	"finsignal/pkg/logger"
	"finsignal/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting finsignal service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	pol, err := policy.Load(cfg.Policy.File)
	if err != nil {
		appLogger.Fatal("Failed to load policy", zap.Error(err))
	}
	loc := cfg.Scheduler.Location()

	// Initialize repositories
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)
	featureRepo := repository.NewFeatureRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	reminderRepo := repository.NewReminderRepository(db, appLogger)
	tokenRepo := repository.NewTokenRepository(db, appLogger)

	// Feature engine behind its worker queue
	engine := features.NewEngine(ledgerRepo, featureRepo, pol, loc, logger.Named("features"))
	queue := features.NewQueue(engine, features.QueueConfig{
		Workers:     cfg.Features.Workers,
		Size:        cfg.Features.QueueSize,
		MaxAttempts: cfg.Features.MaxAttempts,
		RetryDelay:  cfg.Features.RetryDelay,
	}, logger.Named("features"))
	queue.Start(ctx)

	// Push delivery
	pushLogger := logger.Named("notify")
	var transport notify.Dispatcher
	switch cfg.Push.Provider {
	case "webhook":
		if cfg.Push.WebhookURL == "" {
			appLogger.Fatal("PUSH_WEBHOOK_URL is required for the webhook provider")
		}
		transport = notify.NewWebhookDispatcher(cfg.Push.WebhookURL, &http.Client{})
	default:
		transport = notify.NewLogDispatcher(pushLogger)
	}
	dispatcher := notify.NewGuarded(transport, cfg.Push.SendTimeout, pushLogger)

	sched := scheduler.New(ledgerRepo, reminderRepo, tokenRepo, dispatcher, pol, scheduler.Config{
		Hours:     cfg.Scheduler.Hours,
		Location:  loc,
		SendRate:  cfg.Scheduler.SendRate,
		SendBurst: cfg.Scheduler.SendBurst,
	}, logger.Named("scheduler"))

	var wg sync.WaitGroup
	if cfg.Scheduler.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx)
		}()
	} else {
		appLogger.Warn("Reminder scheduler disabled")
	}

	// Initialize services
	expenseService := service.NewExpenseService(expenseRepo, featureRepo, queue, appLogger)
	reminderService := service.NewReminderService(reminderRepo, sched, appLogger)
	tokenService := service.NewTokenService(tokenRepo)
	summaryService := service.NewSummaryService(ledgerRepo, loc)

	app := api.SetupRouter(api.Handlers{
		Expense:  handlers.NewExpenseHandler(expenseService, appLogger),
		Reminder: handlers.NewReminderHandler(reminderService, tokenService, appLogger),
		Summary:  handlers.NewSummaryHandler(summaryService, appLogger),
		Health:   handlers.NewHealthHandler(queue, dispatcher),
	}, api.ServerOptions{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, logger.Named("http"))

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	// no new expenses can arrive now; let queued feature work finish first
	queue.Stop()
	cancel()
	wg.Wait()
	sched.Wait()

	stats := queue.Stats()
	appLogger.Info("Shutdown complete",
		zap.Uint64("features_processed", stats.Processed),
		zap.Uint64("features_failed", stats.Failed),
		zap.Uint64("features_dropped", stats.Dropped),
	)
}
