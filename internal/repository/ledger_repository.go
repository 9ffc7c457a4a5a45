package repository

import (
	"context"
	"fmt"
	"time"

	"finsignal/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerRepository is the read side over expenses, incomes, reminders and accounts.
type LedgerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLedgerRepository(db *pgxpool.Pool, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

func priorExpensesQuery(scope Scope, exclude uuid.UUID, until time.Time) squirrel.SelectBuilder {
	return psql.Select("total_amount", "macrocategoria", "categoria", "created_at").
		From("expenses").
		Where(scope.filter("")).
		Where(squirrel.NotEq{"expense_id": exclude}).
		Where(squirrel.LtOrEq{"created_at": until}).
		OrderBy("created_at DESC")
}

// PriorExpenses returns the expenses recorded up to `until`, newest first,
// leaving out the expense being analysed.
func (r *LedgerRepository) PriorExpenses(ctx context.Context, scope Scope, exclude uuid.UUID, until time.Time) ([]models.ExpenseEntry, error) {
	sql, args, err := priorExpensesQuery(scope, exclude, until).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var entries []models.ExpenseEntry
	for rows.Next() {
		var e models.ExpenseEntry
		var macro, category *string
		if err := rows.Scan(&e.Amount, &macro, &category, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.MacroCategory = deref(macro)
		e.Category = deref(category)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func priorIncomesQuery(scope Scope, until time.Time) squirrel.SelectBuilder {
	return psql.Select("total_amount", "created_at").
		From("incomes").
		Where(scope.filter("")).
		Where(squirrel.LtOrEq{"created_at": until}).
		OrderBy("created_at DESC")
}

func (r *LedgerRepository) PriorIncomes(ctx context.Context, scope Scope, until time.Time) ([]models.IncomeEntry, error) {
	sql, args, err := priorIncomesQuery(scope, until).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incomes: %w", err)
	}
	defer rows.Close()

	var entries []models.IncomeEntry
	for rows.Next() {
		var e models.IncomeEntry
		if err := rows.Scan(&e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func remindersQuery(scope Scope) squirrel.SelectBuilder {
	return psql.Select("reminder_id", "total_amount", "next_payment_date", "payment_frequency").
		From("reminders").
		Where(scope.filter("")).
		OrderBy("next_payment_date ASC")
}

func (r *LedgerRepository) Reminders(ctx context.Context, scope Scope) ([]models.ReminderDue, error) {
	sql, args, err := remindersQuery(scope).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.ReminderDue
	for rows.Next() {
		var rem models.ReminderDue
		var frequency *string
		if err := rows.Scan(&rem.ID, &rem.Amount, &rem.NextPaymentDate, &frequency); err != nil {
			return nil, err
		}
		rem.Frequency = deref(frequency)
		reminders = append(reminders, rem)
	}

	return reminders, rows.Err()
}

func accountBalanceQuery(scope Scope) squirrel.SelectBuilder {
	return psql.Select("COALESCE(SUM(balance), 0)").
		From("accounts").
		Where(scope.filter(""))
}

// AccountBalanceSum is the total starting balance across the user's accounts.
func (r *LedgerRepository) AccountBalanceSum(ctx context.Context, scope Scope) (decimal.Decimal, error) {
	sql, args, err := accountBalanceQuery(scope).ToSql()
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account balances: %w", err)
	}
	return total, nil
}

func remindersWithTokensQuery() squirrel.SelectBuilder {
	return psql.Select("r.reminder_id", "r.user_id", "r.reminder_name", "r.total_amount",
		"r.next_payment_date", "r.payment_frequency", "ut.token").
		From("reminders r").
		LeftJoin("user_tokens ut ON r.user_id = ut.user_id").
		OrderBy("r.next_payment_date ASC", "r.reminder_id")
}

// RemindersWithTokens returns every reminder joined with its owner's push
// tokens, one row per (reminder, token). Reminders without tokens appear once
// with an empty token.
func (r *LedgerRepository) RemindersWithTokens(ctx context.Context) ([]models.ReminderTarget, error) {
	sql, args, err := remindersWithTokensQuery().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var targets []models.ReminderTarget
	for rows.Next() {
		var t models.ReminderTarget
		var name, frequency, token *string
		if err := rows.Scan(&t.ReminderID, &t.UserID, &name, &t.Amount, &t.NextPaymentDate, &frequency, &token); err != nil {
			return nil, err
		}
		t.Name = deref(name)
		t.Frequency = deref(frequency)
		t.Token = deref(token)
		targets = append(targets, t)
	}

	return targets, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
