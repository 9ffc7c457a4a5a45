// Package notify delivers push notifications to device tokens. The push
// transport itself lives outside this service; these types only hand a
// message to it and report whether it was accepted.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var (
	// ErrUnregisteredToken means the gateway no longer knows the device.
	ErrUnregisteredToken = errors.New("unregistered push token")
	ErrEmptyToken        = errors.New("empty push token")
)

type Message struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// LogDispatcher only logs. It is the default when no gateway is configured.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, msg Message) error {
	if msg.Token == "" {
		return ErrEmptyToken
	}
	d.logger.Info("Push notification",
		zap.String("token", redact(msg.Token)),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
	)
	return nil
}

// redact keeps enough of a token to correlate log lines.
func redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "…"
}
