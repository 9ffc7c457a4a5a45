package dto

import "github.com/shopspring/decimal"

type CreateReminderRequest struct {
	Name              string          `json:"reminder_name"`
	MacroCategory     string          `json:"macrocategoria"`
	Category          string          `json:"categoria"`
	Amount            decimal.Decimal `json:"total_amount"`
	NextPaymentDate   string          `json:"next_payment_date"` // YYYY-MM-DD
	Frequency         string          `json:"payment_frequency"`
	IsInstallment     bool            `json:"is_installment"`
	InstallmentNumber *int32          `json:"installment_number,omitempty"`
}

type ReminderResponse struct {
	ID              string          `json:"reminder_id"`
	Name            string          `json:"reminder_name"`
	Amount          decimal.Decimal `json:"total_amount"`
	NextPaymentDate string          `json:"next_payment_date"`
	Frequency       string          `json:"payment_frequency"`
	NotifiedDevices int             `json:"notified_devices"`
}
