package service

import (
	"context"
	"fmt"
	"time"

	"finsignal/internal/dto"
	"finsignal/internal/models"
	"finsignal/internal/scheduler"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type ReminderStore interface {
	Create(ctx context.Context, rem *models.Reminder) error
}

type ImmediateNotifier interface {
	NotifyCreatedToday(ctx context.Context, r scheduler.NewReminder) (int, error)
}

type ReminderService struct {
	reminders ReminderStore
	notifier  ImmediateNotifier
	now       func() time.Time
	logger    *zap.Logger
}

func NewReminderService(reminders ReminderStore, notifier ImmediateNotifier, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		notifier:  notifier,
		now:       time.Now,
		logger:    logger,
	}
}

// Create stores a reminder and, when it is due today, notifies the creator's
// devices right away. Notification problems are logged, never returned.
func (s *ReminderService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateReminderRequest) (*dto.ReminderResponse, error) {
	name := cleanText(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: reminder_name is required", ErrInvalidReminder)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidReminder)
	}
	date, err := time.Parse(dateLayout, req.NextPaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: next_payment_date must be YYYY-MM-DD", ErrInvalidReminder)
	}

	rem := &models.Reminder{
		ID:                uuid.New(),
		UserID:            userID,
		Name:              name,
		MacroCategory:     cleanText(req.MacroCategory),
		Category:          cleanText(req.Category),
		Amount:            req.Amount,
		NextPaymentDate:   date,
		Frequency:         req.Frequency,
		IsInstallment:     req.IsInstallment,
		InstallmentNumber: req.InstallmentNumber,
		CreatedAt:         s.now(),
	}
	if err := s.reminders.Create(ctx, rem); err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}

	delivered, err := s.notifier.NotifyCreatedToday(ctx, scheduler.NewReminder{
		ID:     rem.ID,
		UserID: userID,
		Name:   rem.Name,
		Amount: rem.Amount,
		Date:   rem.NextPaymentDate,
	})
	if err != nil {
		s.logger.Error("Immediate reminder notification failed",
			zap.String("reminder_id", rem.ID.String()), zap.Error(err))
	}

	return &dto.ReminderResponse{
		ID:              rem.ID.String(),
		Name:            rem.Name,
		Amount:          rem.Amount,
		NextPaymentDate: rem.NextPaymentDate.Format(dateLayout),
		Frequency:       rem.Frequency,
		NotifiedDevices: delivered,
	}, nil
}
