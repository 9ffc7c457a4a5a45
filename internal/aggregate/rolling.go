// Package aggregate computes trailing-window income/expense statistics. It is
// pure and is shared by feature computation and the summary preview endpoint so
// both report the same numbers.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CurrencyPlaces = 2
	RatioPlaces    = 4

	// DefaultWindowMonths is the trailing span used for monthly averages.
	DefaultWindowMonths = 3
)

// NoIncomeSavingsRate marks a savings rate that cannot be computed.
var NoIncomeSavingsRate = decimal.NewFromInt(-1)

type Entry struct {
	Amount decimal.Decimal
	At     time.Time
}

// Window is the half-open interval (Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// TrailingMonths is the window ending at anchor and reaching back the given
// number of calendar months. An entry exactly `months` before anchor is outside.
func TrailingMonths(anchor time.Time, months int) Window {
	return Window{Start: MonthsBefore(anchor, months), End: anchor}
}

// MonthsBefore steps t back whole calendar months keeping the clock time. The
// day is clamped to the length of the target month, so 31 May minus three
// months is 28 Feb (29 in a leap year) rather than rolling into March.
func MonthsBefore(t time.Time, months int) time.Time {
	y, m, day := t.Date()
	target := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	ty, tm, _ := target.Date()
	if last := daysIn(ty, tm, t.Location()); day > last {
		day = last
	}
	return time.Date(ty, tm, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

func (w Window) Contains(t time.Time) bool {
	return t.After(w.Start) && !t.After(w.End)
}

// MonthKey buckets t as YYYY-MM in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01")
}

// MonthlyTotals sums the entries inside w per calendar month. Months with no
// entries are absent from the map.
func MonthlyTotals(entries []Entry, w Window, loc *time.Location) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if !w.Contains(e.At) {
			continue
		}
		key := MonthKey(e.At, loc)
		totals[key] = totals[key].Add(e.Amount)
	}
	return totals
}

// MonthlyAverage is the mean of the per-month totals inside w, rounded to cents.
// Inactive months do not count towards the denominator; no activity yields zero.
func MonthlyAverage(entries []Entry, w Window, loc *time.Location) (decimal.Decimal, int) {
	totals := MonthlyTotals(entries, w, loc)
	if len(totals) == 0 {
		return decimal.Zero, 0
	}

	// sum in key order so the result does not depend on map iteration
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sum := decimal.Zero
	for _, k := range keys {
		sum = sum.Add(totals[k])
	}
	return sum.Div(decimal.NewFromInt(int64(len(totals)))).Round(CurrencyPlaces), len(totals)
}

// SavingsRate is (income - expense) / income rounded to 4 places, or -1 when
// there is no income to compare against.
func SavingsRate(incomeAvg, expenseAvg decimal.Decimal) decimal.Decimal {
	if !incomeAvg.IsPositive() {
		return NoIncomeSavingsRate
	}
	return incomeAvg.Sub(expenseAvg).Div(incomeAvg).Round(RatioPlaces)
}

type Summary struct {
	Window            Window
	MonthlyIncomeAvg  decimal.Decimal
	MonthlyExpenseAvg decimal.Decimal
	SavingsRate       decimal.Decimal
	IncomeMonths      int
	ExpenseMonths     int
}

// Summarize computes the rolling income/expense averages and the savings rate
// for the window of `months` calendar months ending at anchor.
func Summarize(incomes, expenses []Entry, anchor time.Time, months int, loc *time.Location) Summary {
	w := TrailingMonths(anchor, months)
	incomeAvg, incomeMonths := MonthlyAverage(incomes, w, loc)
	expenseAvg, expenseMonths := MonthlyAverage(expenses, w, loc)

	return Summary{
		Window:            w,
		MonthlyIncomeAvg:  incomeAvg,
		MonthlyExpenseAvg: expenseAvg,
		SavingsRate:       SavingsRate(incomeAvg, expenseAvg),
		IncomeMonths:      incomeMonths,
		ExpenseMonths:     expenseMonths,
	}
}

// SafeRatio divides num by den rounded to 4 places, returning fallback when
// den is not positive.
func SafeRatio(num, den, fallback decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return fallback
	}
	return num.Div(den).Round(RatioPlaces)
}
