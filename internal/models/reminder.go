package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Reminder struct {
	ID                uuid.UUID       `db:"reminder_id"`
	UserID            uuid.UUID       `db:"user_id"`
	Name              string          `db:"reminder_name"`
	MacroCategory     string          `db:"macrocategoria"`
	Category          string          `db:"categoria"`
	Amount            decimal.Decimal `db:"total_amount"`
	NextPaymentDate   time.Time       `db:"next_payment_date"`
	Frequency         string          `db:"payment_frequency"`
	IsInstallment     bool            `db:"is_installment"`
	InstallmentNumber *int32          `db:"installment_number"`
	NotifiedAt        *time.Time      `db:"notified_at"`
	CreatedAt         time.Time       `db:"created_at"`
}

// ReminderDue is what the feature engine needs from a reminder.
type ReminderDue struct {
	ID              uuid.UUID
	Amount          decimal.Decimal
	NextPaymentDate time.Time
	Frequency       string
}

// ReminderTarget is one row of reminders LEFT JOIN user_tokens. Token is empty
// when the owner has no registered device.
type ReminderTarget struct {
	ReminderID      uuid.UUID
	UserID          uuid.UUID
	Name            string
	Amount          decimal.Decimal
	NextPaymentDate time.Time
	Frequency       string
	Token           string
}
