package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeatureVector is the set of signals derived for one expense. Currency fields
// are rounded to 2 places, ratios and rates to 4.
type FeatureVector struct {
	Amount                    decimal.Decimal
	CategoryNecessityScore    int
	BalanceAtTime             decimal.Decimal
	AmountToBalanceRatio      decimal.Decimal
	MonthlyIncomeAvg          decimal.Decimal
	MonthlyExpenseAvg         decimal.Decimal
	SavingsRate               decimal.Decimal
	UpcomingRemindersAmount   decimal.Decimal
	OverdueRemindersCount     int
	RemindersToBalanceRatio   decimal.Decimal
	DayOfMonth                int
	DayOfWeek                 int
	DaysToEndOfMonth          int
	IsWeekend                 bool
	TimesBoughtThisCategory   int
	AvgAmountThisCategory     decimal.Decimal
	AmountVsCategoryAvg       decimal.Decimal
	DaysSinceLastSameCategory int
}

// FeatureRecord is the persisted row in expense_ml_features, one per expense.
type FeatureRecord struct {
	ID            uuid.UUID `db:"feature_id"`
	ExpenseID     uuid.UUID `db:"expense_id"`
	UserID        uuid.UUID `db:"user_id"`
	MacroCategory string    `db:"macrocategoria"`
	Category      string    `db:"categoria"`
	FeatureVector
	Label     *int16    `db:"label"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
