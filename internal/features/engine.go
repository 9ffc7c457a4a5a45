// Package features turns a newly recorded expense and the user's ledger
// history into the numeric signals the spending classifier is trained on.
package features

import (
	"context"
	"fmt"
	"time"

	"finsignal/internal/models"
	"finsignal/internal/policy"
	"finsignal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LedgerReader interface {
	PriorExpenses(ctx context.Context, scope repository.Scope, exclude uuid.UUID, until time.Time) ([]models.ExpenseEntry, error)
	PriorIncomes(ctx context.Context, scope repository.Scope, until time.Time) ([]models.IncomeEntry, error)
	Reminders(ctx context.Context, scope repository.Scope) ([]models.ReminderDue, error)
	AccountBalanceSum(ctx context.Context, scope repository.Scope) (decimal.Decimal, error)
}

type FeatureStore interface {
	Upsert(ctx context.Context, rec *models.FeatureRecord) (uuid.UUID, error)
}

type Engine struct {
	ledger LedgerReader
	store  FeatureStore
	policy *policy.Policy
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func NewEngine(ledger LedgerReader, store FeatureStore, pol *policy.Policy, loc *time.Location, logger *zap.Logger) *Engine {
	if pol == nil {
		pol = policy.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		ledger: ledger,
		store:  store,
		policy: pol,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// ComputeAndStore computes and persists the features for one expense. It never
// fails: any error is logged and reported as ok == false, leaving the expense
// itself untouched.
func (e *Engine) ComputeAndStore(ctx context.Context, in Input) (featureID uuid.UUID, ok bool) {
	featureID, err := e.Process(ctx, in)
	if err != nil {
		e.logger.Error("Failed to compute features",
			zap.String("expense_id", in.ExpenseID.String()),
			zap.String("user_id", in.UserID.String()),
			zap.Error(err),
		)
		return uuid.Nil, false
	}
	return featureID, true
}

// Process is ComputeAndStore with the error returned, for callers that retry.
func (e *Engine) Process(ctx context.Context, in Input) (featureID uuid.UUID, err error) {
	defer func() {
		if r := recover(); r != nil {
			featureID = uuid.Nil
			err = fmt.Errorf("panic computing features: %v", r)
		}
	}()

	if in.OccurredAt.IsZero() {
		in.OccurredAt = e.now()
	}

	snap, err := e.snapshot(ctx, in)
	if err != nil {
		return uuid.Nil, err
	}

	vector := Compute(in, snap, e.policy, e.loc)
	rec := &models.FeatureRecord{
		ExpenseID:     in.ExpenseID,
		UserID:        in.UserID,
		MacroCategory: in.MacroCategory,
		Category:      in.Category,
		FeatureVector: vector,
	}

	featureID, err = e.store.Upsert(ctx, rec)
	if err != nil {
		return uuid.Nil, err
	}

	e.logger.Info("Features stored",
		zap.String("feature_id", featureID.String()),
		zap.String("expense_id", in.ExpenseID.String()),
		zap.String("amount", vector.Amount.String()),
		zap.String("balance_at_time", vector.BalanceAtTime.String()),
		zap.String("amount_to_balance_ratio", vector.AmountToBalanceRatio.String()),
		zap.String("savings_rate", vector.SavingsRate.String()),
		zap.Int("overdue_reminders", vector.OverdueRemindersCount),
		zap.Int("times_bought_this_category", vector.TimesBoughtThisCategory),
	)

	return featureID, nil
}

func (e *Engine) snapshot(ctx context.Context, in Input) (Snapshot, error) {
	scope := repository.Scope{UserID: in.UserID, SharedID: in.SharedID}

	expenses, err := e.ledger.PriorExpenses(ctx, scope, in.ExpenseID, in.OccurredAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load expenses: %w", err)
	}
	incomes, err := e.ledger.PriorIncomes(ctx, scope, in.OccurredAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load incomes: %w", err)
	}
	reminders, err := e.ledger.Reminders(ctx, scope)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load reminders: %w", err)
	}
	balance, err := e.ledger.AccountBalanceSum(ctx, scope)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load account balance: %w", err)
	}

	return Snapshot{
		Expenses:       expenses,
		Incomes:        incomes,
		Reminders:      reminders,
		AccountBalance: balance,
	}, nil
}

// InputFromExpense builds the engine input for a stored expense row.
func InputFromExpense(e *models.Expense) Input {
	return Input{
		ExpenseID:     e.ID,
		UserID:        e.UserID,
		SharedID:      e.SharedID,
		Amount:        e.Amount,
		MacroCategory: e.MacroCategory,
		Category:      e.Category,
		OccurredAt:    e.CreatedAt,
	}
}
