package outbox

import (
	"context"
	"log/slog"
	"time"
)

// Worker polls unpublished records and pushes them to the publisher.
type Worker struct {
	service   string
	repo      Repository
	publisher Publisher
	interval  time.Duration
	batchSize int
	nowFn     func() time.Time
}

func NewWorker(service string, repo Repository, publisher Publisher, interval time.Duration, batchSize int) *Worker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Worker{
		service:   service,
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		nowFn:     time.Now,
	}
}

// Run drains the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.DrainOnce(ctx)
		}
	}
}

// DrainOnce publishes at most one batch. Failures are recorded per record and
// retried on a later tick.
func (w *Worker) DrainOnce(ctx context.Context) {
	records, err := w.repo.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		slog.WarnContext(ctx, "outbox fetch failed",
			"service", w.service, "layer", "outbox", "error", err.Error())
		return
	}

	for _, record := range records {
		if err := w.publisher.Publish(ctx, record); err != nil {
			slog.WarnContext(ctx, "outbox publish failed",
				"service", w.service,
				"layer", "outbox",
				"event_type", record.EventType,
				"outbox_id", record.OutboxID.String(),
				"retry_count", record.RetryCount,
				"error", err.Error(),
			)
			_ = w.repo.MarkFailed(ctx, record.OutboxID, err.Error(), w.nowFn())
			continue
		}
		if err := w.repo.MarkPublished(ctx, record.OutboxID, w.nowFn()); err != nil {
			slog.WarnContext(ctx, "outbox mark published failed",
				"service", w.service, "layer", "outbox",
				"outbox_id", record.OutboxID.String(), "error", err.Error())
		}
	}
}
