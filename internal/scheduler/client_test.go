package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Yuvan-1166/crm-sub000/internal/notification/outbox"
	"github.com/Yuvan-1166/crm-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// fakeOutbox hands out a fixed claim batch and records status calls.
type fakeOutbox struct {
	mu           sync.Mutex
	claimable    []outbox.Record
	staleWindows []time.Duration
	enqueued     []uuid.UUID
	pending      []uuid.UUID
}

func (f *fakeOutbox) MarkEnqueued(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, id)
	return nil
}

func (f *fakeOutbox) MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, id)
	return nil
}

func (f *fakeOutbox) ClaimPending(ctx context.Context, limit int) ([]outbox.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := f.claimable
	f.claimable = nil
	return batch, nil
}

func (f *fakeOutbox) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleWindows = append(f.staleWindows, olderThan)
	return 0, nil
}

// fakeQueue counts enqueued tasks and can refuse them.
type fakeQueue struct {
	mu    sync.Mutex
	err   error
	tasks []*asynq.Task
}

func (f *fakeQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (f *fakeQueue) Close() error { return nil }

func newTestDispatcher(repo *fakeOutbox, queue *fakeQueue) *Dispatcher {
	return &Dispatcher{
		client: queue,
		queue:  "default",
		repo:   repo,
		log:    &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
	}
}

func claimedRecord() outbox.Record {
	return outbox.Record{
		ID:        uuid.New(),
		ContactID: uuid.New(),
		Kind:      "lead.email.welcome",
		RunAt:     time.Now().UTC(),
		Status:    outbox.StatusEnqueued,
	}
}

// TestSweepRecoversStalledClaims checks that every sweep pass asks the store
// to return stalled enqueued/processing rows to pending before claiming, so
// rows orphaned by a crash mid-handoff are delivered eventually.
func TestSweepRecoversStalledClaims(t *testing.T) {
	repo := &fakeOutbox{claimable: []outbox.Record{claimedRecord(), claimedRecord()}}
	queue := &fakeQueue{}
	d := newTestDispatcher(repo, queue)

	d.sweepOnce(context.Background())

	if len(repo.staleWindows) != 1 || repo.staleWindows[0] != staleClaimAfter {
		t.Fatalf("RequeueStale calls = %v, want one call with %v", repo.staleWindows, staleClaimAfter)
	}
	if len(queue.tasks) != 2 {
		t.Errorf("enqueued tasks = %d, want 2", len(queue.tasks))
	}
	if len(repo.pending) != 0 {
		t.Errorf("rows returned to pending = %d, want 0", len(repo.pending))
	}
}

// TestSweepReturnsRowsOnEnqueueFailure checks that a claimed row goes back to
// pending when the queue is unreachable, keeping it eligible for the next
// sweep.
func TestSweepReturnsRowsOnEnqueueFailure(t *testing.T) {
	rec := claimedRecord()
	repo := &fakeOutbox{claimable: []outbox.Record{rec}}
	queue := &fakeQueue{err: errors.New("redis down")}
	d := newTestDispatcher(repo, queue)

	d.sweepOnce(context.Background())

	if len(queue.tasks) != 0 {
		t.Errorf("enqueued tasks = %d, want 0", len(queue.tasks))
	}
	if len(repo.pending) != 1 || repo.pending[0] != rec.ID {
		t.Fatalf("rows returned to pending = %v, want [%s]", repo.pending, rec.ID)
	}
}

// TestDispatchReturnsRowOnEnqueueFailure covers the fast path: a failed
// handoff after the claim puts the row back to pending for the sweeper.
func TestDispatchReturnsRowOnEnqueueFailure(t *testing.T) {
	repo := &fakeOutbox{}
	queue := &fakeQueue{err: errors.New("redis down")}
	d := newTestDispatcher(repo, queue)

	id := uuid.New()
	if err := d.Dispatch(context.Background(), id); err == nil {
		t.Fatal("Dispatch() error = nil, want enqueue failure")
	}
	if len(repo.enqueued) != 1 || repo.enqueued[0] != id {
		t.Errorf("claimed rows = %v, want [%s]", repo.enqueued, id)
	}
	if len(repo.pending) != 1 || repo.pending[0] != id {
		t.Errorf("rows returned to pending = %v, want [%s]", repo.pending, id)
	}
}
