package repository

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

// psql is the statement builder every repository starts from.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Scope limits ledger reads to a user, and to rows shared with them when
// SharedID is set.
type Scope struct {
	UserID   uuid.UUID
	SharedID *uuid.UUID
}

func (s Scope) filter(prefix string) squirrel.Sqlizer {
	userCol := prefix + "user_id"
	if s.SharedID == nil {
		return squirrel.Eq{userCol: s.UserID}
	}
	return squirrel.Or{
		squirrel.Eq{userCol: s.UserID},
		squirrel.Eq{prefix + "shared_id": *s.SharedID},
	}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
