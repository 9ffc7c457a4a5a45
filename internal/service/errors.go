package service

import "errors"

var (
	ErrInvalidExpense  = errors.New("invalid expense")
	ErrInvalidFeedback = errors.New("feedback must be -1, 0 or 1")
	ErrInvalidReminder = errors.New("invalid reminder")
	ErrInvalidToken    = errors.New("push token is required")
	ErrNotFound        = errors.New("not found")
)
