package ports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/domain"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
)

// ListFilter narrows a document listing. Zero values mean "no constraint".
type ListFilter struct {
	Type         string
	JenisArsipID *uuid.UUID
	Search       string
	DateFrom     *time.Time
	DateTo       *time.Time
	CreatedBy    string
	Limit        int
	Offset       int
}

type DocumentUpdate struct {
	Type         *string
	NomorSurat   *string
	Judul        *string
	Tanggal      *time.Time
	JenisArsipID *uuid.UUID
	FilePath     *string
	Keterangan   *string
}

// DocumentRepository persists documents; mutations ride a transaction with
// their outbox event.
type DocumentRepository interface {
	CreateWithOutboxTx(ctx context.Context, doc domain.Document, event outbox.Event) (domain.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Document, int64, error)
	UpdateWithOutboxTx(ctx context.Context, id uuid.UUID, update DocumentUpdate, updatedAt time.Time, event outbox.Event) (domain.Document, error)
	DeleteWithOutboxTx(ctx context.Context, id uuid.UUID, event outbox.Event) error
}

type JenisArsipRepository interface {
	List(ctx context.Context) ([]domain.JenisArsip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.JenisArsip, error)
}

// FileStore keeps uploaded document files as opaque blobs keyed by path.
type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}
