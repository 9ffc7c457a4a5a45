package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsignal/internal/dto"
	"finsignal/internal/features"
	"finsignal/internal/models"
	"finsignal/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	SetFeedback(ctx context.Context, expenseID, userID uuid.UUID, feedback *int16) error
}

type FeatureReader interface {
	GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*models.FeatureRecord, error)
	SetLabel(ctx context.Context, expenseID uuid.UUID, label *int16) error
}

type TaskSubmitter interface {
	Submit(in features.Input) error
}

type ExpenseService struct {
	expenses ExpenseStore
	features FeatureReader
	tasks    TaskSubmitter
	now      func() time.Time
	logger   *zap.Logger
}

func NewExpenseService(expenses ExpenseStore, featureStore FeatureReader, tasks TaskSubmitter, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		features: featureStore,
		tasks:    tasks,
		now:      time.Now,
		logger:   logger,
	}
}

// Create records an expense and queues its feature computation. The queue
// outcome never affects the result: a dropped task only means missing features.
func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidExpense)
	}
	macro := cleanText(req.MacroCategory)
	if macro == "" {
		return nil, fmt.Errorf("%w: macrocategoria is required", ErrInvalidExpense)
	}

	expense := &models.Expense{
		ID:            uuid.New(),
		UserID:        userID,
		MacroCategory: macro,
		Category:      cleanText(req.Category),
		Business:      cleanText(req.Business),
		Amount:        req.Amount,
		CreatedAt:     s.now(),
	}
	if req.SharedID != "" {
		shared, err := uuid.Parse(req.SharedID)
		if err != nil {
			return nil, fmt.Errorf("%w: shared_id is not a uuid", ErrInvalidExpense)
		}
		expense.SharedID = &shared
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	if err := s.tasks.Submit(features.InputFromExpense(expense)); err != nil {
		s.logger.Warn("Feature computation not queued",
			zap.String("expense_id", expense.ID.String()), zap.Error(err))
	}

	return expenseResponse(expense), nil
}

// SetFeedback stores the user's verdict and mirrors it into the feature label.
func (s *ExpenseService) SetFeedback(ctx context.Context, userID, expenseID uuid.UUID, req *dto.FeedbackRequest) error {
	if req.Feedback != nil && !models.ValidFeedback(*req.Feedback) {
		return ErrInvalidFeedback
	}

	if err := s.expenses.SetFeedback(ctx, expenseID, userID, req.Feedback); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	if err := s.features.SetLabel(ctx, expenseID, req.Feedback); err != nil {
		s.logger.Error("Failed to mirror feedback into feature label",
			zap.String("expense_id", expenseID.String()), zap.Error(err))
	}
	return nil
}

// Features returns the stored feature record for one of the user's expenses.
func (s *ExpenseService) Features(ctx context.Context, userID, expenseID uuid.UUID) (*dto.FeatureResponse, error) {
	rec, err := s.features.GetByExpenseID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load features: %w", err)
	}
	if rec.UserID != userID {
		return nil, ErrNotFound
	}
	return featureResponse(rec), nil
}

func expenseResponse(e *models.Expense) *dto.ExpenseResponse {
	resp := &dto.ExpenseResponse{
		ID:            e.ID.String(),
		MacroCategory: e.MacroCategory,
		Category:      e.Category,
		Business:      e.Business,
		Amount:        e.Amount,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	if e.SharedID != nil {
		resp.SharedID = e.SharedID.String()
	}
	return resp
}

func featureResponse(rec *models.FeatureRecord) *dto.FeatureResponse {
	v := rec.FeatureVector
	return &dto.FeatureResponse{
		ID:                        rec.ID.String(),
		ExpenseID:                 rec.ExpenseID.String(),
		MacroCategory:             rec.MacroCategory,
		Category:                  rec.Category,
		Amount:                    v.Amount,
		CategoryNecessityScore:    v.CategoryNecessityScore,
		BalanceAtTime:             v.BalanceAtTime,
		AmountToBalanceRatio:      v.AmountToBalanceRatio,
		MonthlyIncomeAvg:          v.MonthlyIncomeAvg,
		MonthlyExpenseAvg:         v.MonthlyExpenseAvg,
		SavingsRate:               v.SavingsRate,
		UpcomingRemindersAmount:   v.UpcomingRemindersAmount,
		OverdueRemindersCount:     v.OverdueRemindersCount,
		RemindersToBalanceRatio:   v.RemindersToBalanceRatio,
		DayOfMonth:                v.DayOfMonth,
		DayOfWeek:                 v.DayOfWeek,
		DaysToEndOfMonth:          v.DaysToEndOfMonth,
		IsWeekend:                 v.IsWeekend,
		TimesBoughtThisCategory:   v.TimesBoughtThisCategory,
		AvgAmountThisCategory:     v.AvgAmountThisCategory,
		AmountVsCategoryAvg:       v.AmountVsCategoryAvg,
		DaysSinceLastSameCategory: v.DaysSinceLastSameCategory,
		Label:                     rec.Label,
		UpdatedAt:                 rec.UpdatedAt.Format(time.RFC3339),
	}
}
