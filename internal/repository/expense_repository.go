package repository

import (
	"context"
	"fmt"

	"finsignal/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ExpenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenseRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func createExpenseQuery(e *models.Expense) squirrel.InsertBuilder {
	return psql.Insert("expenses").
		Columns("expense_id", "user_id", "macrocategoria", "categoria", "negocio", "total_amount", "shared_id", "created_at").
		Values(e.ID, e.UserID, e.MacroCategory, e.Category, e.Business, e.Amount, e.SharedID, e.CreatedAt)
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	sql, args, err := createExpenseQuery(e).ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func setFeedbackQuery(expenseID, userID uuid.UUID, feedback *int16) squirrel.UpdateBuilder {
	return psql.Update("expenses").
		Set("user_feedback", feedback).
		Where(squirrel.Eq{"expense_id": expenseID, "user_id": userID})
}

// SetFeedback records the user's verdict on an expense. It returns ErrNotFound
// when the expense does not exist or belongs to someone else.
func (r *ExpenseRepository) SetFeedback(ctx context.Context, expenseID, userID uuid.UUID, feedback *int16) error {
	sql, args, err := setFeedbackQuery(expenseID, userID, feedback).ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func listExpensesQuery(userID *uuid.UUID) squirrel.SelectBuilder {
	q := psql.Select("expense_id", "user_id", "macrocategoria", "categoria", "total_amount", "shared_id", "user_feedback", "created_at").
		From("expenses").
		OrderBy("created_at ASC")
	if userID != nil {
		q = q.Where(squirrel.Eq{"user_id": *userID})
	}
	return q
}

// List returns expenses oldest first, optionally for a single user. Used by backfill.
func (r *ExpenseRepository) List(ctx context.Context, userID *uuid.UUID) ([]*models.Expense, error) {
	sql, args, err := listExpensesQuery(userID).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		var macro, category *string
		if err := rows.Scan(&e.ID, &e.UserID, &macro, &category, &e.Amount, &e.SharedID, &e.UserFeedback, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.MacroCategory = deref(macro)
		e.Category = deref(category)
		expenses = append(expenses, &e)
	}

	return expenses, rows.Err()
}
