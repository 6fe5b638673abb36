package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/domain"
)

type documentRow struct {
	ID           uuid.UUID `gorm:"column:id;primaryKey"`
	Type         string    `gorm:"column:type"`
	NomorSurat   string    `gorm:"column:nomor_surat"`
	Judul        string    `gorm:"column:judul"`
	Tanggal      time.Time `gorm:"column:tanggal"`
	JenisArsipID uuid.UUID `gorm:"column:jenis_arsip_id"`
	JenisNama    string    `gorm:"column:jenis_nama;->"`
	FilePath     string    `gorm:"column:file_path"`
	Keterangan   string    `gorm:"column:keterangan"`
	CreatedBy    string    `gorm:"column:created_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (documentRow) TableName() string { return "documents" }

func (r documentRow) toDomain() domain.Document {
	return domain.Document{
		ID:           r.ID,
		Type:         r.Type,
		NomorSurat:   r.NomorSurat,
		Judul:        r.Judul,
		Tanggal:      r.Tanggal,
		JenisArsipID: r.JenisArsipID,
		JenisNama:    r.JenisNama,
		FilePath:     r.FilePath,
		Keterangan:   r.Keterangan,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type jenisRow struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey"`
	Kode      string    `gorm:"column:kode"`
	Nama      string    `gorm:"column:nama"`
	Deskripsi string    `gorm:"column:deskripsi"`
}

func (jenisRow) TableName() string { return "jenis_arsip" }

func (r jenisRow) toDomain() domain.JenisArsip {
	return domain.JenisArsip{ID: r.ID, Kode: r.Kode, Nama: r.Nama, Deskripsi: r.Deskripsi}
}

type outboxRow struct {
	OutboxID     uuid.UUID  `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	RetryCount   int        `gorm:"column:retry_count"`
	LastError    *string    `gorm:"column:last_error"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxRow) TableName() string { return "outbox_events" }
