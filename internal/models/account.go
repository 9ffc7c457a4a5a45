package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a starting balance. The current balance is never stored; it is
// derived as sum(accounts) + sum(incomes) - sum(expenses).
type Account struct {
	ID       uuid.UUID       `db:"account_id"`
	UserID   uuid.UUID       `db:"user_id"`
	Name     string          `db:"name"`
	Balance  decimal.Decimal `db:"balance"`
	SharedID *uuid.UUID      `db:"shared_id"`
}
