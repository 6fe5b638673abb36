package application

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// FileUpload carries an incoming document file to the blob store.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CreateDocumentRequest struct {
	Type         string
	NomorSurat   string
	Judul        string
	Tanggal      time.Time
	JenisArsipID uuid.UUID
	Keterangan   string
	File         *FileUpload
}

type UpdateDocumentRequest struct {
	Type         *string
	NomorSurat   *string
	Judul        *string
	Tanggal      *time.Time
	JenisArsipID *uuid.UUID
	Keterangan   *string
	File         *FileUpload
}

type ListQuery struct {
	Type         string
	JenisArsipID *uuid.UUID
	Search       string
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PerPage      int
}

type DocumentView struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	NomorSurat   string    `json:"nomor_surat"`
	Judul        string    `json:"judul"`
	Tanggal      string    `json:"tanggal"`
	JenisArsipID string    `json:"jenis_arsip_id"`
	JenisNama    string    `json:"jenis_arsip_nama,omitempty"`
	FilePath     string    `json:"file_path,omitempty"`
	Keterangan   string    `json:"keterangan,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type DocumentList struct {
	Documents []DocumentView `json:"documents"`
	Meta      PageMeta       `json:"meta"`
}

type JenisArsipView struct {
	ID        string `json:"id"`
	Kode      string `json:"kode"`
	Nama      string `json:"nama"`
	Deskripsi string `json:"deskripsi,omitempty"`
}

type ServiceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
}
