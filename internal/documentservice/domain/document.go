package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeMasuk  = "masuk"
	TypeKeluar = "keluar"
)

// Document is one archival record, incoming (masuk) or outgoing (keluar).
type Document struct {
	ID           uuid.UUID
	Type         string
	NomorSurat   string
	Judul        string
	Tanggal      time.Time
	JenisArsipID uuid.UUID
	// JenisNama is denormalized onto reads so listings can group by type
	// name without a second lookup.
	JenisNama string
	FilePath  string
	Keterangan   string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JenisArsip is the document-type reference data documents classify under.
type JenisArsip struct {
	ID        uuid.UUID
	Kode      string
	Nama      string
	Deskripsi string
}

func ValidType(documentType string) bool {
	return documentType == TypeMasuk || documentType == TypeKeluar
}
