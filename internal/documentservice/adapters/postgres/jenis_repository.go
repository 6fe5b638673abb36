package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/domain"
)

type JenisArsipRepository struct {
	db *gorm.DB
}

func NewJenisArsipRepository(db *gorm.DB) *JenisArsipRepository {
	return &JenisArsipRepository{db: db}
}

func (r *JenisArsipRepository) List(ctx context.Context) ([]domain.JenisArsip, error) {
	var rows []jenisRow
	if err := r.db.WithContext(ctx).Order("kode ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list jenis arsip: %w", err)
	}
	items := make([]domain.JenisArsip, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (r *JenisArsipRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.JenisArsip, error) {
	var row jenisRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.JenisArsip{}, domain.ErrNotFound
		}
		return domain.JenisArsip{}, fmt.Errorf("get jenis arsip: %w", err)
	}
	return row.toDomain(), nil
}
