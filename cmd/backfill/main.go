package main

import (
	"context"
	"flag"
	"log"

	"finsignal/internal/features"
	"finsignal/internal/policy"
	"finsignal/internal/repository"
	"finsignal/pkg/config"
	"finsignal/pkg/logger"
	"finsignal/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// backfill recomputes the feature record of every stored expense. History is
// read as of each expense's own timestamp and rows are upserted, so running it
// twice yields the same table.
func main() {
	userFlag := flag.String("user", "", "only recompute this user's expenses")
	dryRun := flag.Bool("dry-run", false, "list the expenses without recomputing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	var userID *uuid.UUID
	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			appLogger.Fatal("Invalid -user value", zap.String("user", *userFlag), zap.Error(err))
		}
		userID = &id
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	pol, err := policy.Load(cfg.Policy.File)
	if err != nil {
		appLogger.Fatal("Failed to load policy", zap.Error(err))
	}

	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	engine := features.NewEngine(
		repository.NewLedgerRepository(db, appLogger),
		repository.NewFeatureRepository(db, appLogger),
		pol,
		cfg.Scheduler.Location(),
		logger.Named("features"),
	)

	expenses, err := expenseRepo.List(ctx, userID)
	if err != nil {
		appLogger.Fatal("Failed to list expenses", zap.Error(err))
	}
	appLogger.Info("Starting feature backfill", zap.Int("expenses", len(expenses)), zap.Bool("dry_run", *dryRun))

	var done, failed int
	for _, e := range expenses {
		if *dryRun {
			appLogger.Info("Would recompute",
				zap.String("expense_id", e.ID.String()),
				zap.Time("created_at", e.CreatedAt))
			continue
		}
		if _, err := engine.Process(ctx, features.InputFromExpense(e)); err != nil {
			failed++
			appLogger.Error("Backfill failed for expense",
				zap.String("expense_id", e.ID.String()), zap.Error(err))
			continue
		}
		done++
	}

	appLogger.Info("Feature backfill completed", zap.Int("recomputed", done), zap.Int("failed", failed))
}
