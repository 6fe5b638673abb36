package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/domain"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/ports"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateWithOutboxTx(ctx context.Context, doc domain.Document, event outbox.Event) (domain.Document, error) {
	row := documentRow{
		ID:           doc.ID,
		Type:         doc.Type,
		NomorSurat:   doc.NomorSurat,
		Judul:        doc.Judul,
		Tanggal:      doc.Tanggal,
		JenisArsipID: doc.JenisArsipID,
		FilePath:     doc.FilePath,
		Keterangan:   doc.Keterangan,
		CreatedBy:    doc.CreatedBy,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Create(outboxFromEvent(event)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Document{}, domain.ErrUnknownJenis
		}
		return domain.Document{}, fmt.Errorf("create document: %w", err)
	}
	return row.toDomain(), nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	var row documentRow
	err := r.db.WithContext(ctx).
		Select("documents.*, jenis_arsip.nama AS jenis_nama").
		Joins("LEFT JOIN jenis_arsip ON jenis_arsip.id = documents.jenis_arsip_id").
		Where("documents.id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Document{}, domain.ErrNotFound
		}
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return row.toDomain(), nil
}

func (r *DocumentRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&documentRow{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.JenisArsipID != nil {
		query = query.Where("jenis_arsip_id = ?", *filter.JenisArsipID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("judul ILIKE ? OR nomor_surat ILIKE ?", pattern, pattern)
	}
	if filter.DateFrom != nil {
		query = query.Where("tanggal >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("tanggal <= ?", *filter.DateTo)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	var rows []documentRow
	err := query.
		Select("documents.*, jenis_arsip.nama AS jenis_nama").
		Joins("LEFT JOIN jenis_arsip ON jenis_arsip.id = documents.jenis_arsip_id").
		Order("tanggal DESC, created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDomain())
	}
	return docs, total, nil
}

func (r *DocumentRepository) UpdateWithOutboxTx(ctx context.Context, id uuid.UUID, update ports.DocumentUpdate, updatedAt time.Time, event outbox.Event) (domain.Document, error) {
	changes := map[string]any{"updated_at": updatedAt}
	if update.Type != nil {
		changes["type"] = *update.Type
	}
	if update.NomorSurat != nil {
		changes["nomor_surat"] = *update.NomorSurat
	}
	if update.Judul != nil {
		changes["judul"] = *update.Judul
	}
	if update.Tanggal != nil {
		changes["tanggal"] = *update.Tanggal
	}
	if update.JenisArsipID != nil {
		changes["jenis_arsip_id"] = *update.JenisArsipID
	}
	if update.FilePath != nil {
		changes["file_path"] = *update.FilePath
	}
	if update.Keterangan != nil {
		changes["keterangan"] = *update.Keterangan
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&documentRow{}).Where("id = ?", id).Updates(changes)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Create(outboxFromEvent(event)).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Document{}, domain.ErrNotFound
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Document{}, domain.ErrUnknownJenis
		}
		return domain.Document{}, fmt.Errorf("update document: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *DocumentRepository) DeleteWithOutboxTx(ctx context.Context, id uuid.UUID, event outbox.Event) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&documentRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Create(outboxFromEvent(event)).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func outboxFromEvent(event outbox.Event) *outboxRow {
	return &outboxRow{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      event.Payload,
		CreatedAt:    event.OccurredAt,
	}
}
