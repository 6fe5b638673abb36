// Package outbox implements the transactional-outbox flow shared by the
// user and document services: domain events are stored in the same database
// transaction as the state change, then drained to Kafka by a polling
// worker.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is the write-side payload prior to storage.
type Event struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// Record is the durable outbox row, including retry metadata.
type Record struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	LastError    *string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// Repository is the storage contract the worker drains.
type Repository interface {
	Enqueue(ctx context.Context, event Event) error
	FetchUnpublished(ctx context.Context, limit int) ([]Record, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}

// Publisher delivers a record to the broker.
type Publisher interface {
	Publish(ctx context.Context, record Record) error
	Close() error
}
