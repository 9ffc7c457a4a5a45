package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Feedback values a user can attach to an expense.
const (
	FeedbackRegret  int16 = -1
	FeedbackNeutral int16 = 0
	FeedbackGood    int16 = 1
)

type Expense struct {
	ID            uuid.UUID       `db:"expense_id"`
	UserID        uuid.UUID       `db:"user_id"`
	MacroCategory string          `db:"macrocategoria"`
	Category      string          `db:"categoria"`
	Business      string          `db:"negocio"`
	Amount        decimal.Decimal `db:"total_amount"`
	SharedID      *uuid.UUID      `db:"shared_id"`
	UserFeedback  *int16          `db:"user_feedback"`
	CreatedAt     time.Time       `db:"created_at"`
}

// ValidFeedback reports whether v is one of -1, 0, 1.
func ValidFeedback(v int16) bool {
	return v >= FeedbackRegret && v <= FeedbackGood
}

// ExpenseEntry is the history projection the analytics read: no identity, just
// what was spent, where and when.
type ExpenseEntry struct {
	Amount        decimal.Decimal
	MacroCategory string
	Category      string
	CreatedAt     time.Time
}
