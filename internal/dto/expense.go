package dto

import "github.com/shopspring/decimal"

type CreateExpenseRequest struct {
	MacroCategory string          `json:"macrocategoria"`
	Category      string          `json:"categoria"`
	Business      string          `json:"negocio"`
	Amount        decimal.Decimal `json:"total_amount"`
	SharedID      string          `json:"shared_id,omitempty"`
}

type ExpenseResponse struct {
	ID            string          `json:"expense_id"`
	MacroCategory string          `json:"macrocategoria"`
	Category      string          `json:"categoria"`
	Business      string          `json:"negocio"`
	Amount        decimal.Decimal `json:"total_amount"`
	SharedID      string          `json:"shared_id,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// FeedbackRequest carries -1 (regret), 0 (neutral) or 1 (good); null clears it.
type FeedbackRequest struct {
	Feedback *int16 `json:"user_feedback"`
}
