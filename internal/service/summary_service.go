package service

import (
	"context"
	"fmt"
	"time"

	"finsignal/internal/aggregate"
	"finsignal/internal/dto"
	"finsignal/internal/models"
	"finsignal/internal/repository"

	"github.com/google/uuid"
)

type HistoryReader interface {
	PriorExpenses(ctx context.Context, scope repository.Scope, exclude uuid.UUID, until time.Time) ([]models.ExpenseEntry, error)
	PriorIncomes(ctx context.Context, scope repository.Scope, until time.Time) ([]models.IncomeEntry, error)
}

// SummaryService previews the rolling averages with the same code the feature
// engine uses, so a client never re-implements them.
type SummaryService struct {
	ledger HistoryReader
	loc    *time.Location
	now    func() time.Time
}

func NewSummaryService(ledger HistoryReader, loc *time.Location) *SummaryService {
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryService{ledger: ledger, loc: loc, now: time.Now}
}

func (s *SummaryService) Summary(ctx context.Context, userID uuid.UUID) (*dto.SummaryResponse, error) {
	now := s.now()
	scope := repository.Scope{UserID: userID}

	expenses, err := s.ledger.PriorExpenses(ctx, scope, uuid.Nil, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	incomes, err := s.ledger.PriorIncomes(ctx, scope, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load incomes: %w", err)
	}

	sum := aggregate.Summarize(aggregate.IncomeEntries(incomes), aggregate.ExpenseEntries(expenses), now, aggregate.DefaultWindowMonths, s.loc)
	return &dto.SummaryResponse{
		WindowStart:       sum.Window.Start.In(s.loc).Format(time.RFC3339),
		WindowEnd:         sum.Window.End.In(s.loc).Format(time.RFC3339),
		MonthlyIncomeAvg:  sum.MonthlyIncomeAvg,
		MonthlyExpenseAvg: sum.MonthlyExpenseAvg,
		SavingsRate:       sum.SavingsRate,
		IncomeMonths:      sum.IncomeMonths,
		ExpenseMonths:     sum.ExpenseMonths,
	}, nil
}
