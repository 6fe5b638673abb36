package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/application"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/documentservice/domain"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/authgw"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/httpx"
)

const maxUploadBytes = 20 << 20

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, "document-service is healthy", map[string]string{"status": "ok"})
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, "Service info", h.service.Info())
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	list, err := h.service.List(r.Context(), query)
	if err != nil {
		h.writeError(w, r, "list_documents", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Documents retrieved", list)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	subject, _ := authgw.SubjectFromContext(r.Context())
	query, err := parseListQuery(r)
	if err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	list, err := h.service.ListMine(r.Context(), subject.ID, query)
	if err != nil {
		h.writeError(w, r, "list_my_documents", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Documents retrieved", list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get_document", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Document retrieved", doc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	subject, _ := authgw.SubjectFromContext(r.Context())
	form, file, err := parseDocumentForm(r)
	if err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	if file != nil {
		defer file.close()
	}

	req := application.CreateDocumentRequest{
		Type:       form.get("type"),
		NomorSurat: form.get("nomor_surat"),
		Judul:      form.get("judul"),
		Keterangan: form.get("keterangan"),
	}
	if raw := form.get("tanggal"); raw != "" {
		tanggal, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", "tanggal must be YYYY-MM-DD")
			return
		}
		req.Tanggal = tanggal
	}
	if raw := form.get("jenis_arsip_id"); raw != "" {
		jenisID, err := uuid.Parse(raw)
		if err != nil {
			httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", "jenis_arsip_id must be a UUID")
			return
		}
		req.JenisArsipID = jenisID
	}
	if file != nil {
		req.File = file.upload
	}

	doc, err := h.service.Create(r.Context(), subject.ID, req)
	if err != nil {
		h.writeError(w, r, "create_document", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "Document created", doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	form, file, err := parseDocumentForm(r)
	if err != nil {
		httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
		return
	}
	if file != nil {
		defer file.close()
	}

	var req application.UpdateDocumentRequest
	if v, ok := form.lookup("type"); ok {
		req.Type = &v
	}
	if v, ok := form.lookup("nomor_surat"); ok {
		req.NomorSurat = &v
	}
	if v, ok := form.lookup("judul"); ok {
		req.Judul = &v
	}
	if v, ok := form.lookup("keterangan"); ok {
		req.Keterangan = &v
	}
	if v, ok := form.lookup("tanggal"); ok {
		tanggal, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", "tanggal must be YYYY-MM-DD")
			return
		}
		req.Tanggal = &tanggal
	}
	if v, ok := form.lookup("jenis_arsip_id"); ok {
		jenisID, err := uuid.Parse(v)
		if err != nil {
			httpx.WriteErrorDetail(w, http.StatusUnprocessableEntity, "Validation failed", "jenis_arsip_id must be a UUID")
			return
		}
		req.JenisArsipID = &jenisID
	}
	if file != nil {
		req.File = file.upload
	}

	doc, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, "update_document", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Document updated", doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, "delete_document", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Document deleted", nil)
}

func (h *Handler) ListJenis(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListJenis(r.Context())
	if err != nil {
		h.writeError(w, r, "list_jenis", err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Jenis arsip retrieved", items)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "Document not found")
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, message := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "handler error",
			"service", "document-service",
			"layer", "http",
			"operation", operation,
			"error", err.Error(),
			"correlation_id", correlation.FromContext(r.Context()),
		)
	}
	httpx.WriteError(w, status, message)
}

type formValues map[string][]string

func (f formValues) get(key string) string {
	if values := f[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func (f formValues) lookup(key string) (string, bool) {
	values, ok := f[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

type formFile struct {
	upload *application.FileUpload
	raw    multipart.File
}

func (f *formFile) close() { _ = f.raw.Close() }

// parseDocumentForm reads multipart form-data when a file may ride along, and
// falls back to urlencoded form fields otherwise.
func parseDocumentForm(r *http.Request) (formValues, *formFile, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, nil, fmt.Errorf("parse multipart form: %w", err)
		}
		values := formValues(r.MultipartForm.Value)

		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return values, nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read file field: %w", err)
		}
		return values, &formFile{
			raw: file,
			upload: &application.FileUpload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			},
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, nil, fmt.Errorf("parse form: %w", err)
	}
	return formValues(r.PostForm), nil, nil
}

func parseListQuery(r *http.Request) (application.ListQuery, error) {
	values := r.URL.Query()
	query := application.ListQuery{
		Type:    values.Get("type"),
		Search:  values.Get("search"),
		Page:    httpx.ParseIntDefault(values.Get("page"), 1),
		PerPage: httpx.ParseIntDefault(values.Get("per_page"), 15),
	}
	if query.Type != "" && !domain.ValidType(query.Type) {
		return application.ListQuery{}, errors.New("type must be masuk or keluar")
	}
	if raw := values.Get("jenis_arsip_id"); raw != "" {
		jenisID, err := uuid.Parse(raw)
		if err != nil {
			return application.ListQuery{}, errors.New("jenis_arsip_id must be a UUID")
		}
		query.JenisArsipID = &jenisID
	}
	if raw := values.Get("date_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return application.ListQuery{}, errors.New("date_from must be YYYY-MM-DD")
		}
		query.DateFrom = &from
	}
	if raw := values.Get("date_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return application.ListQuery{}, errors.New("date_to must be YYYY-MM-DD")
		}
		query.DateTo = &to
	}
	return query, nil
}
