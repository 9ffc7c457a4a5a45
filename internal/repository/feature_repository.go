package repository

import (
	"context"
	"fmt"
	"strings"

	"finsignal/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// featureColumns are the derived columns, rewritten on every recomputation.
var featureColumns = []string{
	"macrocategoria",
	"categoria",
	"amount",
	"category_necessity_score",
	"balance_at_time",
	"amount_to_balance_ratio",
	"monthly_income_avg",
	"monthly_expense_avg",
	"savings_rate",
	"upcoming_reminders_amount",
	"overdue_reminders_count",
	"reminders_to_balance_ratio",
	"day_of_month",
	"day_of_week",
	"days_to_end_of_month",
	"is_weekend",
	"times_bought_this_category",
	"avg_amount_this_category",
	"amount_vs_category_avg",
	"days_since_last_same_category",
}

// FeatureRepository stores one feature row per expense in expense_ml_features.
type FeatureRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFeatureRepository(db *pgxpool.Pool, logger *zap.Logger) *FeatureRepository {
	return &FeatureRepository{
		db:     db,
		logger: logger,
	}
}

func upsertSuffix() string {
	sets := make([]string, 0, len(featureColumns)+1)
	for _, col := range featureColumns {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	sets = append(sets, "updated_at = NOW()")
	return "ON CONFLICT (expense_id) DO UPDATE SET " + strings.Join(sets, ", ") + " RETURNING feature_id"
}

func upsertFeatureQuery(rec *models.FeatureRecord) squirrel.InsertBuilder {
	v := rec.FeatureVector
	columns := append([]string{"expense_id", "user_id"}, featureColumns...)
	return psql.Insert("expense_ml_features").
		Columns(columns...).
		Values(
			rec.ExpenseID,
			rec.UserID,
			rec.MacroCategory,
			rec.Category,
			v.Amount,
			v.CategoryNecessityScore,
			v.BalanceAtTime,
			v.AmountToBalanceRatio,
			v.MonthlyIncomeAvg,
			v.MonthlyExpenseAvg,
			v.SavingsRate,
			v.UpcomingRemindersAmount,
			v.OverdueRemindersCount,
			v.RemindersToBalanceRatio,
			v.DayOfMonth,
			v.DayOfWeek,
			v.DaysToEndOfMonth,
			v.IsWeekend,
			v.TimesBoughtThisCategory,
			v.AvgAmountThisCategory,
			v.AmountVsCategoryAvg,
			v.DaysSinceLastSameCategory,
		).
		Suffix(upsertSuffix())
}

// Upsert inserts the record or, when the expense already has one, overwrites
// every derived column and touches updated_at. It returns the feature_id.
func (r *FeatureRepository) Upsert(ctx context.Context, rec *models.FeatureRecord) (uuid.UUID, error) {
	sql, args, err := upsertFeatureQuery(rec).ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var featureID uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&featureID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert features: %w", err)
	}
	return featureID, nil
}

func getFeatureQuery(expenseID uuid.UUID) squirrel.SelectBuilder {
	columns := append([]string{"feature_id", "expense_id", "user_id"}, featureColumns...)
	columns = append(columns, "label", "created_at", "updated_at")
	return psql.Select(columns...).
		From("expense_ml_features").
		Where(squirrel.Eq{"expense_id": expenseID})
}

func (r *FeatureRepository) GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*models.FeatureRecord, error) {
	sql, args, err := getFeatureQuery(expenseID).ToSql()
	if err != nil {
		return nil, err
	}

	var rec models.FeatureRecord
	v := &rec.FeatureVector
	var macro, category *string
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rec.ID, &rec.ExpenseID, &rec.UserID, &macro, &category,
		&v.Amount, &v.CategoryNecessityScore, &v.BalanceAtTime, &v.AmountToBalanceRatio,
		&v.MonthlyIncomeAvg, &v.MonthlyExpenseAvg, &v.SavingsRate,
		&v.UpcomingRemindersAmount, &v.OverdueRemindersCount, &v.RemindersToBalanceRatio,
		&v.DayOfMonth, &v.DayOfWeek, &v.DaysToEndOfMonth, &v.IsWeekend,
		&v.TimesBoughtThisCategory, &v.AvgAmountThisCategory, &v.AmountVsCategoryAvg, &v.DaysSinceLastSameCategory,
		&rec.Label, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	rec.MacroCategory = deref(macro)
	rec.Category = deref(category)

	return &rec, nil
}

func setLabelQuery(expenseID uuid.UUID, label *int16) squirrel.UpdateBuilder {
	return psql.Update("expense_ml_features").
		Set("label", label).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"expense_id": expenseID})
}

// SetLabel mirrors the user's feedback on the expense into the feature row.
// Expenses whose features were never computed are left alone.
func (r *FeatureRepository) SetLabel(ctx context.Context, expenseID uuid.UUID, label *int16) error {
	sql, args, err := setLabelQuery(expenseID, label).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
