// Package scheduler escalates payment reminders into push notifications at a
// few fixed hours of the day.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"finsignal/internal/calendar"
	"finsignal/internal/models"
	"finsignal/internal/notify"
	"finsignal/internal/policy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxSendsPerReminder bounds concurrent sends for one reminder's tokens.
const maxSendsPerReminder = 8

type ReminderSource interface {
	RemindersWithTokens(ctx context.Context) ([]models.ReminderTarget, error)
}

type ReminderMarker interface {
	MarkNotified(ctx context.Context, reminderID uuid.UUID, at time.Time) error
}

type TokenLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushToken, error)
}

type Config struct {
	Hours    []int
	Location *time.Location
	// SendRate is outbound sends per second across all ticks; zero means unlimited.
	SendRate  float64
	SendBurst int
	Clock     Clock
}

// DispatchedNotification is one planned (reminder, token) send.
type DispatchedNotification struct {
	ReminderID uuid.UUID
	UserID     uuid.UUID
	Token      string
	Tier       Tier
	DiffDays   int
	Title      string
	Body       string
	At         time.Time
}

// NewReminder is what the reminder-creation path passes for the immediate check.
type NewReminder struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Amount decimal.Decimal
	Date   time.Time
}

type Scheduler struct {
	source     ReminderSource
	marker     ReminderMarker
	tokens     TokenLister
	dispatcher notify.Dispatcher
	policy     *policy.Policy
	cfg        Config
	limiter    *rate.Limiter
	sent       *instantSet
	inflight   sync.WaitGroup
	logger     *zap.Logger
}

func New(source ReminderSource, marker ReminderMarker, tokens TokenLister, dispatcher notify.Dispatcher, pol *policy.Policy, cfg Config, logger *zap.Logger) *Scheduler {
	if pol == nil {
		pol = policy.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if len(cfg.Hours) == 0 {
		cfg.Hours = DefaultHours
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	limit := rate.Inf
	if cfg.SendRate > 0 {
		limit = rate.Limit(cfg.SendRate)
	}
	if cfg.SendBurst <= 0 {
		cfg.SendBurst = 1
	}

	return &Scheduler{
		source:     source,
		marker:     marker,
		tokens:     tokens,
		dispatcher: dispatcher,
		policy:     pol,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, cfg.SendBurst),
		sent:       newInstantSet(),
		logger:     logger,
	}
}

// IsEvaluationInstant reports whether now is minute 0 of a configured hour.
func (s *Scheduler) IsEvaluationInstant(now time.Time) bool {
	local := now.In(s.cfg.Location)
	return local.Minute() == 0 && containsHour(s.cfg.Hours, local.Hour())
}

// OnTick evaluates every reminder at now and starts the sends that fire. It
// returns the planned notifications without waiting for delivery; Wait does.
// A fetch error skips the whole tick.
func (s *Scheduler) OnTick(ctx context.Context, now time.Time) []DispatchedNotification {
	if !s.IsEvaluationInstant(now) {
		return nil
	}
	local := now.In(s.cfg.Location)

	rows, err := s.source.RemindersWithTokens(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch reminders, skipping tick",
			zap.Time("tick", local), zap.Error(err))
		return nil
	}

	s.sent.prune(now)

	var planned []DispatchedNotification
	byReminder := make(map[uuid.UUID][]DispatchedNotification)
	var order []uuid.UUID

	for _, row := range rows {
		if row.Token == "" {
			continue
		}

		d, err := s.evaluate(row, now)
		if err != nil {
			s.logger.Error("Failed to evaluate reminder",
				zap.String("reminder_id", row.ReminderID.String()), zap.Error(err))
			continue
		}
		if !d.Fire {
			continue
		}

		if !s.sent.claim(instantKey(row.ReminderID, row.Token, local), now) {
			s.logger.Debug("Notification already sent for this instant",
				zap.String("reminder_id", row.ReminderID.String()))
			continue
		}

		n := DispatchedNotification{
			ReminderID: row.ReminderID,
			UserID:     row.UserID,
			Token:      row.Token,
			Tier:       d.Tier,
			DiffDays:   d.DiffDays,
			Title:      d.Title,
			Body:       d.Body,
			At:         now,
		}
		if _, ok := byReminder[row.ReminderID]; !ok {
			order = append(order, row.ReminderID)
		}
		byReminder[row.ReminderID] = append(byReminder[row.ReminderID], n)
		planned = append(planned, n)
	}

	for _, id := range order {
		s.dispatch(ctx, id, byReminder[id])
	}

	s.logger.Info("Reminder tick evaluated",
		zap.Time("tick", local),
		zap.Int("rows", len(rows)),
		zap.Int("planned", len(planned)),
		zap.Int("reminders", len(order)),
	)

	return planned
}

func (s *Scheduler) evaluate(row models.ReminderTarget, now time.Time) (d Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating reminder: %v", r)
		}
	}()
	return Evaluate(row, now, s.policy, s.cfg.Location), nil
}

// dispatch sends one reminder's notifications in the background. The sends
// outlive the tick, so they run on a context that is never cancelled; the
// dispatcher owns the per-send timeout.
func (s *Scheduler) dispatch(ctx context.Context, reminderID uuid.UUID, batch []DispatchedNotification) {
	sendCtx := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		var delivered atomic.Int32
		var g errgroup.Group
		g.SetLimit(maxSendsPerReminder)

		for _, n := range batch {
			g.Go(func() error {
				if err := s.send(sendCtx, n); err != nil {
					s.logger.Warn("Failed to send reminder notification",
						zap.String("reminder_id", n.ReminderID.String()),
						zap.String("user_id", n.UserID.String()),
						zap.String("tier", n.Tier.String()),
						zap.Error(err),
					)
					return nil
				}
				delivered.Add(1)
				return nil
			})
		}
		_ = g.Wait()

		if delivered.Load() == 0 {
			return
		}
		if err := s.marker.MarkNotified(sendCtx, reminderID, s.cfg.Clock.Now()); err != nil {
			s.logger.Error("Failed to mark reminder notified",
				zap.String("reminder_id", reminderID.String()), zap.Error(err))
		}
	}()
}

func (s *Scheduler) send(ctx context.Context, n DispatchedNotification) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return s.dispatcher.Send(ctx, notify.Message{
		Token: n.Token,
		Title: n.Title,
		Body:  n.Body,
		Data: map[string]string{
			"reminder_id": n.ReminderID.String(),
			"tier":        n.Tier.String(),
		},
	})
}

// NotifyCreatedToday sends a one-off notification to the creator's own
// devices when a new reminder falls on the current day. It returns how many
// devices accepted the message; a failed token does not stop the others.
func (s *Scheduler) NotifyCreatedToday(ctx context.Context, r NewReminder) (int, error) {
	now := s.cfg.Clock.Now()
	loc := s.cfg.Location
	if calendar.DaysBetween(calendar.Midnight(now, loc), calendar.DateOnly(r.Date, loc)) != 0 {
		return 0, nil
	}

	tokens, err := s.tokens.ListByUser(ctx, r.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to list push tokens: %w", err)
	}

	title, body := createdTodayMessage(r.Name, r.Amount)
	delivered := 0
	for _, t := range tokens {
		if t.Token == "" {
			continue
		}
		n := DispatchedNotification{
			ReminderID: r.ID,
			UserID:     r.UserID,
			Token:      t.Token,
			Tier:       TierDue,
			Title:      title,
			Body:       body,
			At:         now,
		}
		if err := s.send(ctx, n); err != nil {
			s.logger.Warn("Failed to send immediate reminder notification",
				zap.String("reminder_id", r.ID.String()), zap.Error(err))
			continue
		}
		delivered++
	}

	if delivered > 0 {
		if err := s.marker.MarkNotified(ctx, r.ID, now); err != nil {
			s.logger.Error("Failed to mark reminder notified",
				zap.String("reminder_id", r.ID.String()), zap.Error(err))
		}
	}
	return delivered, nil
}

// Run calls OnTick at the start of every wall-clock minute until ctx ends,
// then waits for in-flight sends. Minutes missed while the process was paused
// are not replayed.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Reminder scheduler started",
		zap.Ints("hours", s.cfg.Hours),
		zap.String("timezone", s.cfg.Location.String()),
	)

	for {
		now := s.cfg.Clock.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.Wait()
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-timer.C:
			tick := s.cfg.Clock.Now()
			if tick.Before(next) {
				tick = next
			}
			s.OnTick(ctx, tick)
		}
	}
}

// Wait blocks until every send started by OnTick has finished.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}
