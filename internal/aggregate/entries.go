package aggregate

import "finsignal/internal/models"

// IncomeEntries projects ledger incomes onto their amount and creation time.
func IncomeEntries(incomes []models.IncomeEntry) []Entry {
	out := make([]Entry, len(incomes))
	for i, inc := range incomes {
		out[i] = Entry{Amount: inc.Amount, At: inc.CreatedAt}
	}
	return out
}

// ExpenseEntries projects ledger expenses onto their amount and creation time.
func ExpenseEntries(expenses []models.ExpenseEntry) []Entry {
	out := make([]Entry, len(expenses))
	for i, e := range expenses {
		out[i] = Entry{Amount: e.Amount, At: e.CreatedAt}
	}
	return out
}
