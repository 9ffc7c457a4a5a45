package features

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrQueueClosed = errors.New("feature queue is closed")
	ErrQueueFull   = errors.New("feature queue is full")
)

type Processor interface {
	Process(ctx context.Context, in Input) (uuid.UUID, error)
}

type QueueConfig struct {
	Workers     int
	Size        int
	MaxAttempts int
	RetryDelay  time.Duration
}

type QueueStats struct {
	Processed uint64
	Failed    uint64
	Dropped   uint64
	Retried   uint64
}

// Queue hands expenses from the request path to background workers. Submit
// never blocks: when the buffer is full the task is dropped and counted.
type Queue struct {
	processor Processor
	cfg       QueueConfig
	tasks     chan Input
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	logger    *zap.Logger

	processed atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
	retried   atomic.Uint64
}

func NewQueue(processor Processor, cfg QueueConfig, logger *zap.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Size <= 0 {
		cfg.Size = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Queue{
		processor: processor,
		cfg:       cfg,
		tasks:     make(chan Input, cfg.Size),
		logger:    logger,
	}
}

// Start launches the workers. They exit when Stop is called or ctx ends.
func (q *Queue) Start(ctx context.Context) {
	q.logger.Info("Starting feature workers", zap.Int("workers", q.cfg.Workers))
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

func (q *Queue) Submit(in Input) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- in:
		return nil
	default:
		q.dropped.Add(1)
		q.logger.Warn("Feature queue full, dropping task",
			zap.String("expense_id", in.ExpenseID.String()))
		return ErrQueueFull
	}
}

// Stop stops accepting tasks, lets the workers drain what is queued and waits for them.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("Feature workers stopped")
}

func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
		Retried:   q.retried.Load(),
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	for {
		select {
		case in, ok := <-q.tasks:
			if !ok {
				return
			}
			q.handle(ctx, id, in)
		case <-ctx.Done():
			return
		}
	}
}

func (q *Queue) handle(ctx context.Context, workerID int, in Input) {
	for attempt := 1; ; attempt++ {
		featureID, err := q.processor.Process(ctx, in)
		if err == nil {
			q.processed.Add(1)
			q.logger.Debug("Feature task done",
				zap.Int("worker_id", workerID),
				zap.String("feature_id", featureID.String()))
			return
		}

		if attempt >= q.cfg.MaxAttempts {
			q.failed.Add(1)
			q.logger.Error("Feature task failed",
				zap.Int("worker_id", workerID),
				zap.String("expense_id", in.ExpenseID.String()),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}

		q.retried.Add(1)
		q.logger.Warn("Feature task failed, retrying",
			zap.String("expense_id", in.ExpenseID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-time.After(q.cfg.RetryDelay):
		case <-ctx.Done():
			q.failed.Add(1)
			return
		}
	}
}
