package aggregate

import (
	"testing"
	"time"

	"finsignal/internal/models"
)

func TestEntriesProjectAmountAndTime(t *testing.T) {
	when := at(2026, time.April, 3)

	in := IncomeEntries([]models.IncomeEntry{{Amount: d("1200"), CreatedAt: when}})
	if len(in) != 1 || !in[0].Amount.Equal(d("1200")) || !in[0].At.Equal(when) {
		t.Errorf("IncomeEntries = %+v", in)
	}

	out := ExpenseEntries([]models.ExpenseEntry{
		{Amount: d("40"), MacroCategory: "food", CreatedAt: when},
		{Amount: d("0"), CreatedAt: when.Add(time.Hour)},
	})
	if len(out) != 2 || !out[0].Amount.Equal(d("40")) || !out[1].At.Equal(when.Add(time.Hour)) {
		t.Errorf("ExpenseEntries = %+v", out)
	}

	if got := IncomeEntries(nil); len(got) != 0 {
		t.Errorf("IncomeEntries(nil) = %+v", got)
	}
}
