// internal/api/handler/api/uploads.go
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prismfin/prism/internal/api/response"
	"github.com/prismfin/prism/internal/core"
	"github.com/prismfin/prism/internal/engine"
	"github.com/prismfin/prism/internal/metrics"
	"github.com/prismfin/prism/internal/storage/archive"
	"github.com/prismfin/prism/internal/upload"
	"go.uber.org/zap"
)

// UploadsHandler accepts spreadsheet uploads and serves analytics
// computed from the parsed series. Uploaded datasets never have a
// benchmark, so beta and covariance stay at their neutral defaults.
type UploadsHandler struct {
	store    *upload.Store
	archive  archive.Storage
	metrics  *metrics.Registry
	logger   *zap.Logger
	maxBytes int64
}

// NewUploadsHandler creates an uploads handler.
func NewUploadsHandler(store *upload.Store, arch archive.Storage, reg *metrics.Registry, maxBytes int64, logger *zap.Logger) *UploadsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadsHandler{
		store:    store,
		archive:  arch,
		metrics:  reg,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// Create handles POST /api/v1/uploads with a multipart "file" field.
func (h *UploadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.recordUpload("rejected")
		response.Fail(w, core.WrapError(core.ErrUploadInvalid, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.recordUpload("rejected")
		response.Fail(w, core.WrapError(core.ErrUploadInvalid, err))
		return
	}

	points, err := upload.Parse(data)
	if err != nil {
		h.recordUpload("rejected")
		response.Fail(w, err)
		return
	}

	ds := h.store.Put(header.Filename, points)

	// Archive the raw file; parse results are already served from
	// memory, so a failed archive write is not fatal.
	key := fmt.Sprintf("uploads/%s/%s", ds.ID, filepath.Base(header.Filename))
	if err := h.archive.Write(r.Context(), key, data); err != nil {
		h.logger.Warn("archiving upload failed",
			zap.String("dataset_id", ds.ID),
			zap.Error(err),
		)
	}

	h.recordUpload("accepted")
	if h.metrics != nil {
		h.metrics.SetDatasetsActive(len(h.store.List()))
	}

	response.JSON(w, http.StatusCreated, ds)
}

// List handles GET /api/v1/uploads
func (h *UploadsHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"datasets": h.store.List(),
	})
}

// Get handles GET /api/v1/uploads/{id}
func (h *UploadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ds)
}

// Metrics handles GET /api/v1/uploads/{id}/metrics
func (h *UploadsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	closes := engine.CloseSeries(ds.Points)

	start := time.Now()
	summary := engine.ComputeRiskSummary(closes, nil)
	if h.metrics != nil {
		h.metrics.RecordRiskSummary(time.Since(start).Seconds())
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"dataset": ds,
		"summary": summary,
	})
}

// Forecast handles GET /api/v1/uploads/{id}/forecast?steps=10
func (h *UploadsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	steps, err := stepsParam(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	ds, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	closes := engine.CloseSeries(ds.Points)

	start := time.Now()
	forecast := engine.ComputeForecast(closes, steps)
	if h.metrics != nil {
		h.metrics.RecordForecast("upload", time.Since(start).Seconds())
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"dataset":  ds,
		"steps":    steps,
		"forecast": forecast,
	})
}

func (h *UploadsHandler) recordUpload(status string) {
	if h.metrics != nil {
		h.metrics.RecordUpload(status)
	}
}
