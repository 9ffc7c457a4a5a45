package models

import (
	"time"

	"github.com/google/uuid"
)

type PushToken struct {
	Token     string    `db:"token"`
	UserID    uuid.UUID `db:"user_id"`
	UpdatedAt time.Time `db:"updated_at"`
}
