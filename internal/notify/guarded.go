package notify

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const DefaultSendTimeout = 5 * time.Second

// Guarded bounds every send with a timeout and stops calling a failing
// gateway for a while once most recent sends have failed. A rejected token
// is the caller's problem, not the gateway's, and does not count as a failure.
type Guarded struct {
	next    Dispatcher
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[struct{}]
	logger  *zap.Logger
}

func NewGuarded(next Dispatcher, timeout time.Duration, logger *zap.Logger) *Guarded {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "push-gateway",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnregisteredToken) || errors.Is(err, ErrEmptyToken)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Guarded{
		next:    next,
		timeout: timeout,
		cb:      cb,
		logger:  logger,
	}
}

func (g *Guarded) Send(ctx context.Context, msg Message) error {
	_, err := g.cb.Execute(func() (struct{}, error) {
		sendCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return struct{}{}, g.next.Send(sendCtx, msg)
	})
	return err
}

// State exposes the breaker state for health reporting.
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}
