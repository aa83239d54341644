package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/studyloft/studyloft/pkg/metrics"
)

// TaskHandle identifies one in-flight generation. Handles are in-memory only:
// if the process dies mid-task the record it owns stays non-terminal until the
// startup reconciliation sweep marks it failed.
type TaskHandle struct {
	Kind      string
	RecordID  uuid.UUID
	StartedAt time.Time
}

// Runner executes detached generation tasks. The triggering request never
// waits on the task; the task owns all writes to its record and must reach
// exactly one terminal status, which the onFailure callback guarantees for the
// error and panic paths.
type Runner struct {
	logger *logrus.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]TaskHandle
	wg       sync.WaitGroup
}

func NewRunner(logger *logrus.Logger) *Runner {
	return &Runner{
		logger:   logger,
		inflight: make(map[uuid.UUID]TaskHandle),
	}
}

// Dispatch schedules run on its own goroutine. When run returns an error or
// panics, onFailure receives the error so the caller can write the terminal
// failure status; nothing is ever re-thrown to a context with no listener.
func (r *Runner) Dispatch(kind string, recordID uuid.UUID, run func(ctx context.Context) error, onFailure func(err error)) {
	r.mu.Lock()
	r.inflight[recordID] = TaskHandle{Kind: kind, RecordID: recordID, StartedAt: time.Now()}
	r.mu.Unlock()
	metrics.InflightTasks.Inc()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.inflight, recordID)
			r.mu.Unlock()
			metrics.InflightTasks.Dec()
		}()
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("task panic: %v", rec)
				r.logger.Errorf("%s task %s panicked: %v", kind, recordID, rec)
				onFailure(err)
			}
		}()

		if err := run(context.Background()); err != nil {
			r.logger.Errorf("%s task %s failed: %v", kind, recordID, err)
			onFailure(err)
		}
	}()
}

// Inflight snapshots the currently running task handles.
func (r *Runner) Inflight() []TaskHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := make([]TaskHandle, 0, len(r.inflight))
	for _, h := range r.inflight {
		handles = append(handles, h)
	}
	return handles
}

// Wait blocks until every dispatched task has finished. Used at shutdown and
// in tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}
