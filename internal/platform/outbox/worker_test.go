package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	records   []Record
	published []uuid.UUID
	failed    []uuid.UUID
	lastError string
	fetchErr  error
}

func (r *fakeRepo) Enqueue(_ context.Context, _ Event) error { return nil }

func (r *fakeRepo) FetchUnpublished(_ context.Context, limit int) ([]Record, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	if limit < len(r.records) {
		return r.records[:limit], nil
	}
	return r.records, nil
}

func (r *fakeRepo) MarkPublished(_ context.Context, outboxID uuid.UUID, _ time.Time) error {
	r.published = append(r.published, outboxID)
	return nil
}

func (r *fakeRepo) MarkFailed(_ context.Context, outboxID uuid.UUID, errMsg string, _ time.Time) error {
	r.failed = append(r.failed, outboxID)
	r.lastError = errMsg
	return nil
}

type fakePublisher struct {
	failOn map[uuid.UUID]error
	sent   []uuid.UUID
}

func (p *fakePublisher) Publish(_ context.Context, record Record) error {
	if err, ok := p.failOn[record.OutboxID]; ok {
		return err
	}
	p.sent = append(p.sent, record.OutboxID)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestDrainOncePublishesAndMarks(t *testing.T) {
	t.Parallel()

	first := uuid.New()
	second := uuid.New()
	repo := &fakeRepo{records: []Record{
		{OutboxID: first, EventType: "user.registered"},
		{OutboxID: second, EventType: "document.created"},
	}}
	publisher := &fakePublisher{}

	worker := NewWorker("test", repo, publisher, time.Second, 50)
	worker.DrainOnce(context.Background())

	if len(publisher.sent) != 2 {
		t.Fatalf("published %d records, want 2", len(publisher.sent))
	}
	if len(repo.published) != 2 || repo.published[0] != first || repo.published[1] != second {
		t.Fatalf("marked published = %v, want [%s %s]", repo.published, first, second)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("marked failed = %v, want none", repo.failed)
	}
}

func TestDrainOnceSkipsFailedRecordAndContinues(t *testing.T) {
	t.Parallel()

	broken := uuid.New()
	healthy := uuid.New()
	repo := &fakeRepo{records: []Record{
		{OutboxID: broken, EventType: "user.registered"},
		{OutboxID: healthy, EventType: "user.registered"},
	}}
	publisher := &fakePublisher{failOn: map[uuid.UUID]error{
		broken: errors.New("broker unreachable"),
	}}

	worker := NewWorker("test", repo, publisher, time.Second, 50)
	worker.DrainOnce(context.Background())

	if len(repo.failed) != 1 || repo.failed[0] != broken {
		t.Fatalf("marked failed = %v, want [%s]", repo.failed, broken)
	}
	if repo.lastError != "broker unreachable" {
		t.Fatalf("last error = %q", repo.lastError)
	}
	if len(repo.published) != 1 || repo.published[0] != healthy {
		t.Fatalf("marked published = %v, want [%s]", repo.published, healthy)
	}
}

func TestDrainOnceRespectsBatchSize(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	for i := 0; i < 5; i++ {
		repo.records = append(repo.records, Record{OutboxID: uuid.New()})
	}
	publisher := &fakePublisher{}

	worker := NewWorker("test", repo, publisher, time.Second, 2)
	worker.DrainOnce(context.Background())

	if len(publisher.sent) != 2 {
		t.Fatalf("published %d records, want batch of 2", len(publisher.sent))
	}
}

func TestDrainOnceToleratesFetchError(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{fetchErr: errors.New("connection reset")}
	worker := NewWorker("test", repo, &fakePublisher{}, time.Second, 50)
	worker.DrainOnce(context.Background())

	if len(repo.published) != 0 || len(repo.failed) != 0 {
		t.Fatal("no records should be touched when fetch fails")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker := NewWorker("test", &fakeRepo{}, &fakePublisher{}, time.Millisecond, 1)
	if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
