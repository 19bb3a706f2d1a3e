package engine

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Mbelalia/facture-engine/internal/domain/export"
	"github.com/Mbelalia/facture-engine/pkg/jobs"
)

// Handler exposes the extraction service over HTTP.
type Handler struct {
	svc       *Service
	store     *jobs.Store
	logger    *slog.Logger
	maxUpload int64
}

// NewHandler creates the HTTP handler.
func NewHandler(svc *Service, store *jobs.Store, maxUpload int64, logger *slog.Logger) *Handler {
	return &Handler{
		svc:       svc,
		store:     store,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// Routes registers the extraction endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/v1/extract", h.extract)
	r.Post("/v1/extract/jobs", h.createJob)
	r.Get("/v1/extract/jobs/{id}", h.getJob)
	r.Get("/healthz", h.health)
}

// extract handles a synchronous extraction. The response format defaults to
// JSON; ?format=csv or ?format=xlsx streams a spreadsheet instead.
func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ExtractPDF(r.Context(), data)
	if err != nil {
		h.logger.Error("extraction failed", slog.Any("error", err))
		writeError(w, http.StatusUnprocessableEntity, "could not extract document")
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, result)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
		if err := export.WriteCSV(w, result.Products); err != nil {
			h.logger.Error("csv export failed", slog.Any("error", err))
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
		if err := export.WriteXLSX(w, result.Products); err != nil {
			h.logger.Error("xlsx export failed", slog.Any("error", err))
		}
	default:
		writeError(w, http.StatusBadRequest, "unsupported format")
	}
}

// createJob accepts an upload and processes it in the background.
func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	id := h.store.Create()
	go h.process(id, data)

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// process runs the pipeline for a queued job. Detached from the request
// context so client disconnects do not cancel background work.
func (h *Handler) process(id string, data []byte) {
	if err := h.store.SetProgress(id, 10); err != nil {
		h.logger.Warn("job vanished before processing", slog.String("job_id", id))
		return
	}

	result, err := h.svc.ExtractPDF(context.Background(), data)
	if err != nil {
		h.logger.Error("job extraction failed",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
		_ = h.store.Fail(id, "could not extract document")
		return
	}
	_ = h.store.Complete(id, result.Products)
}

// readUpload reads the "file" multipart part, or the raw body when the
// request is not multipart.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, `multipart field "file" is required`)
			return nil, false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, false
		}
		return data, true
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return nil, false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body")
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
