package features

import (
	"time"

	"finsignal/internal/aggregate"
	"finsignal/internal/calendar"
	"finsignal/internal/models"
	"finsignal/internal/policy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpcomingWindowDays is how far ahead reminders count as upcoming, inclusive.
const UpcomingWindowDays = 7

var (
	// HighRiskRatio stands in for a ratio against a zero or negative balance.
	HighRiskRatio = decimal.NewFromInt(99)
	// NeutralCategoryRatio stands in for a comparison with no category history.
	NeutralCategoryRatio = decimal.NewFromInt(1)
)

// NeverBoughtDays marks the absence of a previous purchase in the category.
const NeverBoughtDays = -1

// Input describes the expense that triggered the computation.
type Input struct {
	ExpenseID     uuid.UUID
	UserID        uuid.UUID
	SharedID      *uuid.UUID
	Amount        decimal.Decimal
	MacroCategory string
	Category      string
	OccurredAt    time.Time
}

// Snapshot is the user's ledger as seen just before the expense.
type Snapshot struct {
	Expenses       []models.ExpenseEntry
	Incomes        []models.IncomeEntry
	Reminders      []models.ReminderDue
	AccountBalance decimal.Decimal
}

// Compute derives the feature vector for in from snap. It has no side effects
// and returns identical output for identical input.
func Compute(in Input, snap Snapshot, pol *policy.Policy, loc *time.Location) models.FeatureVector {
	if loc == nil {
		loc = time.UTC
	}
	at := in.OccurredAt.In(loc)

	var v models.FeatureVector
	v.Amount = in.Amount
	v.CategoryNecessityScore = pol.NecessityScore(in.MacroCategory)

	balance := balanceAt(snap)
	v.BalanceAtTime = balance.Round(aggregate.CurrencyPlaces)
	v.AmountToBalanceRatio = aggregate.SafeRatio(in.Amount, balance, HighRiskRatio)

	summary := aggregate.Summarize(aggregate.IncomeEntries(snap.Incomes), aggregate.ExpenseEntries(snap.Expenses),
		at, aggregate.DefaultWindowMonths, loc)
	v.MonthlyIncomeAvg = summary.MonthlyIncomeAvg
	v.MonthlyExpenseAvg = summary.MonthlyExpenseAvg
	v.SavingsRate = summary.SavingsRate

	upcoming, overdue := reminderLoad(snap.Reminders, at, loc)
	v.UpcomingRemindersAmount = upcoming.Round(aggregate.CurrencyPlaces)
	v.OverdueRemindersCount = overdue
	v.RemindersToBalanceRatio = aggregate.SafeRatio(upcoming, balance, HighRiskRatio)

	v.DayOfMonth = at.Day()
	v.DayOfWeek = int(at.Weekday())
	v.DaysToEndOfMonth = calendar.DaysInMonth(at) - at.Day()
	v.IsWeekend = at.Weekday() == time.Sunday || at.Weekday() == time.Saturday

	applyCategoryHistory(&v, in, snap.Expenses, at)

	return v
}

// balanceAt is starting balances plus every income minus every expense in the snapshot.
func balanceAt(snap Snapshot) decimal.Decimal {
	balance := snap.AccountBalance
	for _, i := range snap.Incomes {
		balance = balance.Add(i.Amount)
	}
	for _, e := range snap.Expenses {
		balance = balance.Sub(e.Amount)
	}
	return balance
}

// reminderLoad sums reminders due within [today, today+7] and counts those
// already past due. Dates are compared as whole days.
func reminderLoad(reminders []models.ReminderDue, at time.Time, loc *time.Location) (decimal.Decimal, int) {
	today := calendar.Midnight(at, loc)
	upcoming := decimal.Zero
	overdue := 0

	for _, r := range reminders {
		diff := calendar.DaysBetween(today, calendar.DateOnly(r.NextPaymentDate, loc))
		switch {
		case diff < 0:
			overdue++
		case diff <= UpcomingWindowDays:
			upcoming = upcoming.Add(r.Amount)
		}
	}
	return upcoming, overdue
}

func applyCategoryHistory(v *models.FeatureVector, in Input, history []models.ExpenseEntry, at time.Time) {
	count := 0
	total := decimal.Zero
	var last time.Time

	for _, e := range history {
		if e.MacroCategory != in.MacroCategory {
			continue
		}
		count++
		total = total.Add(e.Amount)
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}

	v.TimesBoughtThisCategory = count
	v.AvgAmountThisCategory = decimal.Zero
	v.AmountVsCategoryAvg = NeutralCategoryRatio
	v.DaysSinceLastSameCategory = NeverBoughtDays
	if count == 0 {
		return
	}

	avg := total.Div(decimal.NewFromInt(int64(count))).Round(aggregate.CurrencyPlaces)
	v.AvgAmountThisCategory = avg
	v.AmountVsCategoryAvg = aggregate.SafeRatio(in.Amount, avg, NeutralCategoryRatio)

	days := int(at.Sub(last) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	v.DaysSinceLastSameCategory = days
}
