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

type TokenRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTokenRepository(db *pgxpool.Pool, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

func upsertTokenQuery(token string, userID uuid.UUID) squirrel.InsertBuilder {
	return psql.Insert("user_tokens").
		Columns("token", "user_id", "updated_at").
		Values(token, userID, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (token) DO UPDATE SET updated_at = NOW(), user_id = EXCLUDED.user_id")
}

// Upsert registers a device token. A token already known is re-pointed to userID.
func (r *TokenRepository) Upsert(ctx context.Context, token string, userID uuid.UUID) error {
	sql, args, err := upsertTokenQuery(token, userID).ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func tokensForUserQuery(userID uuid.UUID) squirrel.SelectBuilder {
	return psql.Select("token", "user_id", "updated_at").
		From("user_tokens").
		Where(squirrel.Eq{"user_id": userID})
}

func (r *TokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushToken, error) {
	sql, args, err := tokensForUserQuery(userID).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []models.PushToken
	for rows.Next() {
		var t models.PushToken
		if err := rows.Scan(&t.Token, &t.UserID, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}
