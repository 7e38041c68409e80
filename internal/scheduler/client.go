// Package scheduler moves outbox rows onto the background queue and runs the
// worker that consumes them. Redis via asynq is the transport; the database
// outbox stays the source of truth.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/notification/outbox"
	"github.com/Yuvan-1166/crm-sub000/platform/config"
	"github.com/Yuvan-1166/crm-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// taskEnqueuer is the consumer-driven view of *asynq.Client the dispatcher
// needs.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// outboxStore is the consumer-driven view of *outbox.Repository the
// dispatcher needs.
type outboxStore interface {
	MarkEnqueued(ctx context.Context, id uuid.UUID) error
	MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error
	ClaimPending(ctx context.Context, limit int) ([]outbox.Record, error)
	RequeueStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// staleClaimAfter bounds how long a row may sit in enqueued or processing.
// A crash between claiming a row and delivering it strands the row in that
// state; the sweeper returns such rows to pending after this window.
const staleClaimAfter = 10 * time.Minute

// Dispatcher hands committed outbox rows to the queue. Dispatch is the fast
// path invoked right after commit; Run is the sweeper that picks up rows the
// fast path missed (process crash, enqueue failure, scheduled retries).
type Dispatcher struct {
	client taskEnqueuer
	queue  string
	repo   outboxStore
	log    *logger.Logger
}

func NewDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Dispatcher, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Dispatcher{
		client: asynq.NewClient(opt),
		queue:  queue,
		repo:   outbox.New(pool),
		log:    log,
	}, nil
}

func (d *Dispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

// Dispatch claims one pending row and enqueues its delivery task. A failed
// enqueue puts the row back to pending for the sweeper.
func (d *Dispatcher) Dispatch(ctx context.Context, outboxID uuid.UUID) error {
	if d == nil || d.client == nil {
		return nil
	}

	if err := d.repo.MarkEnqueued(ctx, outboxID); err != nil {
		return err
	}

	task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
		OutboxID: outboxID.String(),
	})
	if err != nil {
		msg := err.Error()
		_ = d.repo.MarkPending(ctx, outboxID, &msg)
		return err
	}

	if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue)); err != nil {
		msg := err.Error()
		_ = d.repo.MarkPending(ctx, outboxID, &msg)
		return err
	}
	return nil
}

// Run sweeps due pending rows onto the queue until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		d.sweepOnce(ctx)
	}
}

// sweepOnce requeues stalled claims, then moves one batch of due pending
// rows onto the queue.
func (d *Dispatcher) sweepOnce(ctx context.Context) {
	requeued, err := d.repo.RequeueStale(ctx, staleClaimAfter)
	if err != nil {
		d.log.Warn("outbox stale requeue failed", "error", err)
	} else if requeued > 0 {
		d.log.Warn("requeued stalled outbox rows", "count", requeued)
	}

	records, err := d.repo.ClaimPending(ctx, 50)
	if err != nil {
		d.log.Warn("outbox claim failed", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			d.enqueueClaimed(gctx, rec)
			return nil
		})
	}
	_ = g.Wait()
}

// enqueueClaimed enqueues one claimed row, putting it back to pending when
// the queue is unreachable.
func (d *Dispatcher) enqueueClaimed(ctx context.Context, rec outbox.Record) {
	task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
		OutboxID:  rec.ID.String(),
		ContactID: rec.ContactID.String(),
	})
	if err != nil {
		msg := err.Error()
		_ = d.repo.MarkPending(ctx, rec.ID, &msg)
		return
	}

	if _, err := d.client.EnqueueContext(ctx, task, asynq.ProcessAt(rec.RunAt), asynq.Queue(d.queue)); err != nil {
		msg := err.Error()
		_ = d.repo.MarkPending(ctx, rec.ID, &msg)
	}
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
