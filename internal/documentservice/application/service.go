package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/domain"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/ports"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
)

const (
	defaultPerPage = 15
	// maxPerPage admits the dashboard's per_page=1000 stats fetch.
	maxPerPage = 1000
)

type Service struct {
	documents ports.DocumentRepository
	jenis     ports.JenisArsipRepository
	files     ports.FileStore
	version   string
	nowFn     func() time.Time
}

type Dependencies struct {
	Documents ports.DocumentRepository
	Jenis     ports.JenisArsipRepository
	Files     ports.FileStore
	Version   string
}

func NewService(deps Dependencies) *Service {
	return &Service{
		documents: deps.Documents,
		jenis:     deps.Jenis,
		files:     deps.Files,
		version:   deps.Version,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Info() ServiceInfo {
	return ServiceInfo{Service: "document-service", Version: s.version}
}

func (s *Service) List(ctx context.Context, q ListQuery) (DocumentList, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)
	docs, total, err := s.documents.List(ctx, ports.ListFilter{
		Type:         q.Type,
		JenisArsipID: q.JenisArsipID,
		Search:       strings.TrimSpace(q.Search),
		DateFrom:     q.DateFrom,
		DateTo:       q.DateTo,
		Limit:        perPage,
		Offset:       (page - 1) * perPage,
	})
	if err != nil {
		return DocumentList{}, err
	}
	return toDocumentList(docs, total, page, perPage), nil
}

func (s *Service) ListMine(ctx context.Context, subjectID string, q ListQuery) (DocumentList, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)
	docs, total, err := s.documents.List(ctx, ports.ListFilter{
		CreatedBy: subjectID,
		Limit:     perPage,
		Offset:    (page - 1) * perPage,
	})
	if err != nil {
		return DocumentList{}, err
	}
	return toDocumentList(docs, total, page, perPage), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (DocumentView, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return DocumentView{}, err
	}
	return toDocumentView(doc), nil
}

func (s *Service) Create(ctx context.Context, subjectID string, req CreateDocumentRequest) (DocumentView, error) {
	if err := s.validateCreate(ctx, req); err != nil {
		return DocumentView{}, err
	}

	now := s.nowFn()
	doc := domain.Document{
		ID:           uuid.New(),
		Type:         req.Type,
		NomorSurat:   strings.TrimSpace(req.NomorSurat),
		Judul:        strings.TrimSpace(req.Judul),
		Tanggal:      req.Tanggal,
		JenisArsipID: req.JenisArsipID,
		Keterangan:   strings.TrimSpace(req.Keterangan),
		CreatedBy:    subjectID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.File != nil {
		path, err := s.storeFile(ctx, req.File)
		if err != nil {
			return DocumentView{}, err
		}
		doc.FilePath = path
	}

	created, err := s.documents.CreateWithOutboxTx(ctx, doc, s.event("document.created", doc.ID, map[string]any{
		"document_id": doc.ID,
		"type":        doc.Type,
		"created_by":  subjectID,
		"created_at":  now,
	}))
	if err != nil {
		// The record failed but the blob may exist; drop it so storage does
		// not accumulate orphans.
		if doc.FilePath != "" {
			_ = s.files.Delete(ctx, doc.FilePath)
		}
		return DocumentView{}, err
	}
	return toDocumentView(created), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateDocumentRequest) (DocumentView, error) {
	existing, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return DocumentView{}, err
	}

	update, err := s.buildUpdate(ctx, req)
	if err != nil {
		return DocumentView{}, err
	}

	var oldPath string
	if req.File != nil {
		path, err := s.storeFile(ctx, req.File)
		if err != nil {
			return DocumentView{}, err
		}
		update.FilePath = &path
		oldPath = existing.FilePath
	}

	now := s.nowFn()
	updated, err := s.documents.UpdateWithOutboxTx(ctx, id, update, now, s.event("document.updated", id, map[string]any{
		"document_id": id,
		"updated_at":  now,
	}))
	if err != nil {
		if update.FilePath != nil {
			_ = s.files.Delete(ctx, *update.FilePath)
		}
		return DocumentView{}, err
	}
	if oldPath != "" && updated.FilePath != oldPath {
		if err := s.files.Delete(ctx, oldPath); err != nil {
			s.logStorage(ctx, "update", oldPath, err)
		}
	}
	return toDocumentView(updated), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.nowFn()
	err = s.documents.DeleteWithOutboxTx(ctx, id, s.event("document.deleted", id, map[string]any{
		"document_id": id,
		"deleted_at":  now,
	}))
	if err != nil {
		return err
	}
	if existing.FilePath != "" {
		if err := s.files.Delete(ctx, existing.FilePath); err != nil {
			s.logStorage(ctx, "delete", existing.FilePath, err)
		}
	}
	return nil
}

func (s *Service) ListJenis(ctx context.Context) ([]JenisArsipView, error) {
	items, err := s.jenis.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]JenisArsipView, 0, len(items))
	for _, item := range items {
		views = append(views, JenisArsipView{
			ID:        item.ID.String(),
			Kode:      item.Kode,
			Nama:      item.Nama,
			Deskripsi: item.Deskripsi,
		})
	}
	return views, nil
}

func (s *Service) validateCreate(ctx context.Context, req CreateDocumentRequest) error {
	if !domain.ValidType(req.Type) {
		return fmt.Errorf("%w: type must be masuk or keluar", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.NomorSurat) == "" {
		return fmt.Errorf("%w: nomor_surat is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Judul) == "" {
		return fmt.Errorf("%w: judul is required", domain.ErrInvalidInput)
	}
	if req.Tanggal.IsZero() {
		return fmt.Errorf("%w: tanggal is required", domain.ErrInvalidInput)
	}
	return s.requireJenis(ctx, req.JenisArsipID)
}

func (s *Service) buildUpdate(ctx context.Context, req UpdateDocumentRequest) (ports.DocumentUpdate, error) {
	var update ports.DocumentUpdate
	if req.Type != nil {
		if !domain.ValidType(*req.Type) {
			return ports.DocumentUpdate{}, fmt.Errorf("%w: type must be masuk or keluar", domain.ErrInvalidInput)
		}
		update.Type = req.Type
	}
	if req.NomorSurat != nil {
		trimmed := strings.TrimSpace(*req.NomorSurat)
		if trimmed == "" {
			return ports.DocumentUpdate{}, fmt.Errorf("%w: nomor_surat must not be empty", domain.ErrInvalidInput)
		}
		update.NomorSurat = &trimmed
	}
	if req.Judul != nil {
		trimmed := strings.TrimSpace(*req.Judul)
		if trimmed == "" {
			return ports.DocumentUpdate{}, fmt.Errorf("%w: judul must not be empty", domain.ErrInvalidInput)
		}
		update.Judul = &trimmed
	}
	if req.Tanggal != nil {
		update.Tanggal = req.Tanggal
	}
	if req.JenisArsipID != nil {
		if err := s.requireJenis(ctx, *req.JenisArsipID); err != nil {
			return ports.DocumentUpdate{}, err
		}
		update.JenisArsipID = req.JenisArsipID
	}
	if req.Keterangan != nil {
		trimmed := strings.TrimSpace(*req.Keterangan)
		update.Keterangan = &trimmed
	}
	return update, nil
}

func (s *Service) requireJenis(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: jenis_arsip_id is required", domain.ErrInvalidInput)
	}
	if _, err := s.jenis.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnknownJenis
		}
		return err
	}
	return nil
}

func (s *Service) storeFile(ctx context.Context, file *FileUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Name))
	key := "documents/" + uuid.NewString() + ext
	if err := s.files.Put(ctx, key, file.Body, file.Size, file.ContentType); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return key, nil
}

func (s *Service) event(eventType string, documentID uuid.UUID, payload map[string]any) outbox.Event {
	raw, _ := json.Marshal(payload)
	return outbox.Event{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: documentID.String(),
		Payload:      raw,
		OccurredAt:   s.nowFn(),
	}
}

func (s *Service) logStorage(ctx context.Context, operation, path string, err error) {
	slog.WarnContext(ctx, "file store operation failed",
		"service", "document-service",
		"layer", "application",
		"operation", operation,
		"path", path,
		"error", err.Error(),
		"correlation_id", correlation.FromContext(ctx),
	)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func toDocumentList(docs []domain.Document, total int64, page, perPage int) DocumentList {
	views := make([]DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, toDocumentView(doc))
	}
	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}
	return DocumentList{
		Documents: views,
		Meta: PageMeta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

func toDocumentView(doc domain.Document) DocumentView {
	return DocumentView{
		ID:           doc.ID.String(),
		Type:         doc.Type,
		NomorSurat:   doc.NomorSurat,
		Judul:        doc.Judul,
		Tanggal:      doc.Tanggal.Format("2006-01-02"),
		JenisArsipID: doc.JenisArsipID.String(),
		JenisNama:    doc.JenisNama,
		FilePath:     doc.FilePath,
		Keterangan:   doc.Keterangan,
		CreatedBy:    doc.CreatedBy,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
