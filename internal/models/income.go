package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Income struct {
	ID        uuid.UUID       `db:"income_id"`
	UserID    uuid.UUID       `db:"user_id"`
	Amount    decimal.Decimal `db:"total_amount"`
	SharedID  *uuid.UUID      `db:"shared_id"`
	CreatedAt time.Time       `db:"created_at"`
}

type IncomeEntry struct {
	Amount    decimal.Decimal
	CreatedAt time.Time
}
