package repository

import (
	"context"
	"fmt"
	"time"

	"finsignal/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReminderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReminderRepository(db *pgxpool.Pool, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{
		db:     db,
		logger: logger,
	}
}

func createReminderQuery(rem *models.Reminder) squirrel.InsertBuilder {
	return psql.Insert("reminders").
		Columns("reminder_id", "user_id", "reminder_name", "macrocategoria", "categoria", "total_amount",
			"next_payment_date", "payment_frequency", "is_installment", "installment_number", "created_at").
		Values(rem.ID, rem.UserID, rem.Name, rem.MacroCategory, rem.Category, rem.Amount,
			rem.NextPaymentDate, rem.Frequency, rem.IsInstallment, rem.InstallmentNumber, rem.CreatedAt)
}

func (r *ReminderRepository) Create(ctx context.Context, rem *models.Reminder) error {
	sql, args, err := createReminderQuery(rem).ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func markNotifiedQuery(reminderID uuid.UUID, at time.Time) squirrel.UpdateBuilder {
	return psql.Update("reminders").
		Set("notified_at", at).
		Where(squirrel.Eq{"reminder_id": reminderID})
}

// MarkNotified records when the reminder last fired. It is informational only.
func (r *ReminderRepository) MarkNotified(ctx context.Context, reminderID uuid.UUID, at time.Time) error {
	sql, args, err := markNotifiedQuery(reminderID, at).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
