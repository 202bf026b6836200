package stream

import (
	"context"
	"log/slog"

	"github.com/mr1hm/flood-response/internal/worker"
)

// Notifier decouples the write path from subscriber fan-out: record creation
// enqueues a change notification, a worker pool delivers it. A dropped
// notification only delays a snapshot until the next change, so the write
// itself never waits.
type Notifier struct {
	broadcaster *Broadcaster
	pool        *worker.WorkerPool
}

func NewNotifier(b *Broadcaster, workers, bufferSize int) *Notifier {
	n := &Notifier{broadcaster: b}
	n.pool = worker.NewWorkerPool(workers, bufferSize, n.process)
	return n
}

func (n *Notifier) Start(ctx context.Context) {
	n.pool.Start(ctx)
}

func (n *Notifier) process(_ context.Context, job worker.Job) error {
	n.broadcaster.Broadcast(job.(Collection))
	return nil
}

// RecordCreated queues a change notification for the collection.
func (n *Notifier) RecordCreated(c Collection) {
	if !n.pool.TrySubmit(c) {
		slog.Warn("notification buffer full, dropping change signal", "collection", c)
	}
}

func (n *Notifier) Stop() {
	n.pool.Stop()
}
