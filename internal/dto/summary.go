package dto

import "github.com/shopspring/decimal"

// SummaryResponse previews the rolling averages the feature engine would use
// for an expense recorded now.
type SummaryResponse struct {
	WindowStart       string          `json:"window_start"`
	WindowEnd         string          `json:"window_end"`
	MonthlyIncomeAvg  decimal.Decimal `json:"monthly_income_avg"`
	MonthlyExpenseAvg decimal.Decimal `json:"monthly_expense_avg"`
	SavingsRate       decimal.Decimal `json:"savings_rate"`
	IncomeMonths      int             `json:"income_months"`
	ExpenseMonths     int             `json:"expense_months"`
}
