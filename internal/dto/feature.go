package dto

import "github.com/shopspring/decimal"

type FeatureResponse struct {
	ID                        string          `json:"feature_id"`
	ExpenseID                 string          `json:"expense_id"`
	MacroCategory             string          `json:"macrocategoria"`
	Category                  string          `json:"categoria"`
	Amount                    decimal.Decimal `json:"amount"`
	CategoryNecessityScore    int             `json:"category_necessity_score"`
	BalanceAtTime             decimal.Decimal `json:"balance_at_time"`
	AmountToBalanceRatio      decimal.Decimal `json:"amount_to_balance_ratio"`
	MonthlyIncomeAvg          decimal.Decimal `json:"monthly_income_avg"`
	MonthlyExpenseAvg         decimal.Decimal `json:"monthly_expense_avg"`
	SavingsRate               decimal.Decimal `json:"savings_rate"`
	UpcomingRemindersAmount   decimal.Decimal `json:"upcoming_reminders_amount"`
	OverdueRemindersCount     int             `json:"overdue_reminders_count"`
	RemindersToBalanceRatio   decimal.Decimal `json:"reminders_to_balance_ratio"`
	DayOfMonth                int             `json:"day_of_month"`
	DayOfWeek                 int             `json:"day_of_week"`
	DaysToEndOfMonth          int             `json:"days_to_end_of_month"`
	IsWeekend                 bool            `json:"is_weekend"`
	TimesBoughtThisCategory   int             `json:"times_bought_this_category"`
	AvgAmountThisCategory     decimal.Decimal `json:"avg_amount_this_category"`
	AmountVsCategoryAvg       decimal.Decimal `json:"amount_vs_category_avg"`
	DaysSinceLastSameCategory int             `json:"days_since_last_same_category"`
	Label                     *int16          `json:"label"`
	UpdatedAt                 string          `json:"updated_at"`
}
