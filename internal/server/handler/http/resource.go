package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ddp-ipb/ddp-admin/internal/models"
	"github.com/ddp-ipb/ddp-admin/internal/service"
)

// maxUploadMemory bounds how much of a multipart body is held in
// memory before spilling to disk.
const maxUploadMemory = 32 << 20

// ResourceService is the slice of the service layer the resource
// endpoints use.
type ResourceService interface {
	List(ctx context.Context, resource string) ([]models.Record, error)
	Create(ctx context.Context, resource string, data models.Record) (models.Record, error)
	Update(ctx context.Context, resource string, id int64, data models.Record) (models.Record, error)
	Delete(ctx context.Context, resource string, id int64) error
	Toggle(ctx context.Context, resource string, id int64, action string) (string, error)
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// ResourceHandler serves the generic resource collections.
type ResourceHandler struct {
	resources ResourceService
	log       *zap.Logger
}

// NewResourceHandler constructs a ResourceHandler.
func NewResourceHandler(resources ResourceService, log *zap.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, log: log}
}

// List returns all records of a resource.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.resources.List(r.Context(), chi.URLParam(r, "resource"))
	if h.fail(w, err) {
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, h.log, http.StatusOK, records)
}

// Create inserts a record from a multipart form.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, err := h.parseForm(r)
	if err != nil {
		writeMessage(w, h.log, http.StatusBadRequest, "Permintaan tidak valid.")
		return
	}
	rec, err := h.resources.Create(r.Context(), chi.URLParam(r, "resource"), data)
	if h.fail(w, err) {
		return
	}
	writeJSON(w, h.log, http.StatusCreated, rec)
}

// Update merges form fields into an existing record. It accepts both a
// true PUT and a POST carrying the _method override field.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, h.log, http.StatusNotFound, "Data tidak ditemukan.")
		return
	}
	data, err := h.parseForm(r)
	if err != nil {
		writeMessage(w, h.log, http.StatusBadRequest, "Permintaan tidak valid.")
		return
	}
	rec, err := h.resources.Update(r.Context(), chi.URLParam(r, "resource"), id, data)
	if h.fail(w, err) {
		return
	}
	writeJSON(w, h.log, http.StatusOK, rec)
}

// Delete removes a record.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, h.log, http.StatusNotFound, "Data tidak ditemukan.")
		return
	}
	if h.fail(w, h.resources.Delete(r.Context(), chi.URLParam(r, "resource"), id)) {
		return
	}
	writeMessage(w, h.log, http.StatusOK, "Data dihapus.")
}

// Toggle flips a record's display flag.
func (h *ResourceHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, h.log, http.StatusNotFound, "Data tidak ditemukan.")
		return
	}
	msg, err := h.resources.Toggle(r.Context(), chi.URLParam(r, "resource"), id, chi.URLParam(r, "action"))
	if h.fail(w, err) {
		return
	}
	writeMessage(w, h.log, http.StatusOK, msg)
}

// Stats returns the dashboard counters.
func (h *ResourceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.resources.Stats(r.Context())
	if h.fail(w, err) {
		return
	}
	writeJSON(w, h.log, http.StatusOK, stats)
}

// fail translates service errors to responses. It reports whether the
// request is finished.
func (h *ResourceHandler) fail(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var rule *service.RuleError
	switch {
	case errors.As(err, &rule):
		writeMessage(w, h.log, http.StatusUnprocessableEntity, rule.Message)
	case errors.Is(err, service.ErrUnknownResource):
		writeMessage(w, h.log, http.StatusNotFound, "Resource tidak ditemukan.")
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, h.log, http.StatusNotFound, "Data tidak ditemukan.")
	default:
		h.log.Error("resource", zap.Error(err))
		writeMessage(w, h.log, http.StatusInternalServerError, "Terjadi kesalahan pada server.")
	}
	return true
}

// parseForm flattens a multipart form into a record. Uploaded files
// are not persisted by the dev server; their storage paths are
// recorded so the client can render image URLs. The _method override
// field is dropped.
func (h *ResourceHandler) parseForm(r *http.Request) (models.Record, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, err
	}
	data := models.Record{}
	for key, values := range r.MultipartForm.Value {
		// The route param is authoritative for the id; _method only
		// carries the verb override.
		if key == "_method" || key == "id" || len(values) == 0 {
			continue
		}
		data[key] = values[0]
	}
	for key, files := range r.MultipartForm.File {
		if len(files) == 0 {
			continue
		}
		if key == "gambar[]" {
			paths := make([]any, 0, len(files))
			for _, f := range files {
				p, err := h.drainUpload(f)
				if err != nil {
					return nil, err
				}
				paths = append(paths, p)
			}
			data["gambar"] = paths
			continue
		}
		p, err := h.drainUpload(files[0])
		if err != nil {
			return nil, err
		}
		data[key] = p
	}
	return data, nil
}

// drainUpload consumes an uploaded part and returns the storage path
// the production backend would assign.
func (h *ResourceHandler) drainUpload(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return "", err
	}
	return path.Join("uploads", header.Filename), nil
}
