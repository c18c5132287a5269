package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/config"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/export/xlsx"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/observability/metrics"
)

const (
	serviceName = "salaysay-api"

	maxFilesPerRequest = 10
	// multipart overhead on top of the per-file limit
	maxRequestBytes     = maxFilesPerRequest*domain.MaxUploadBytes + 1<<20
	multipartMemory     = 8 << 20
	backpressureWait    = 250 * time.Millisecond
	defaultExportLimit  = 1000
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	fallbackContentType = "application/octet-stream"
)

type workbookRenderer interface {
	Render(rows []xlsx.Row) ([]byte, error)
}

// Dependencies are the inbound ports served by the router. Metrics and Exporter are optional.
type Dependencies struct {
	Intake    ports.UploadIntake
	Tracker   ports.UploadTracker
	Records   ports.RecordReader
	Reprocess ports.RecordReprocessor
	Exporter  workbookRenderer
	Metrics   *metrics.HTTPServerMetrics
	Logger    *slog.Logger
}

type Router struct {
	cfg  config.Config
	deps Dependencies
}

func NewRouter(cfg config.Config, deps Dependencies) *Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Router{cfg: cfg, deps: deps}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/uploads", rt.createUploads)
	mux.HandleFunc("GET /v1/uploads", rt.listUploads)
	mux.HandleFunc("GET /v1/uploads/{id}", rt.getUpload)
	mux.HandleFunc("DELETE /v1/uploads/{id}", rt.discardUpload)
	mux.HandleFunc("GET /v1/records", rt.listRecords)
	mux.HandleFunc("GET /v1/records/export.xlsx", rt.exportRecords)
	mux.HandleFunc("GET /v1/records/{id}", rt.getRecord)
	mux.HandleFunc("POST /v1/records/{id}/reprocess", rt.reprocessRecord)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)

	if rt.deps.Metrics == nil {
		return handler
	}
	// scrapes bypass rate limiting and backpressure
	root := http.NewServeMux()
	root.Handle("GET /metrics", rt.deps.Metrics.Handler())
	root.Handle("/", handler)
	return root
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type rejectedUpload struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

type uploadResponse struct {
	Uploads  []domain.UploadStatus `json:"uploads"`
	Rejected []rejectedUpload      `json:"rejected,omitempty"`
}

func (rt *Router) createUploads(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	if len(files) > maxFilesPerRequest {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("at most %d files per request", maxFilesPerRequest)})
		return
	}

	resp := uploadResponse{Uploads: make([]domain.UploadStatus, 0, len(files))}
	var firstErr error
	for _, fh := range files {
		status, err := rt.uploadOne(r, fh)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			resp.Rejected = append(resp.Rejected, rejectedUpload{FileName: fh.Filename, Error: err.Error()})
			continue
		}
		resp.Uploads = append(resp.Uploads, *status)
	}

	if len(resp.Uploads) == 0 {
		writeError(w, firstErr)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (rt *Router) uploadOne(r *http.Request, fh *multipart.FileHeader) (*domain.UploadStatus, error) {
	mimeType := detectMimeType(fh)
	file, err := fh.Open()
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open multipart file", err)
	}
	defer file.Close()

	status, err := rt.deps.Intake.Upload(r.Context(), fh.Filename, mimeType, file)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordUpload(serviceName, mimeType, fh.Size, err == nil)
	}
	if err != nil {
		rt.deps.Logger.Warn("upload_rejected",
			"request_id", requestIDFromContext(r.Context()),
			"file", fh.Filename,
			"mime_type", mimeType,
			"error", err,
		)
		return nil, err
	}
	return status, nil
}

// detectMimeType trusts the part header and falls back to the file extension.
func detectMimeType(fh *multipart.FileHeader) string {
	if header := fh.Header.Get("Content-Type"); header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil && mediaType != fallbackContentType {
			return mediaType
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	return fallbackContentType
}

func (rt *Router) listUploads(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"uploads": rt.deps.Tracker.Statuses()})
}

func (rt *Router) getUpload(w http.ResponseWriter, r *http.Request) {
	status, ok := rt.deps.Tracker.Status(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "upload not found"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) discardUpload(w http.ResponseWriter, r *http.Request) {
	if err := rt.deps.Tracker.Discard(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recordResponse struct {
	domain.SalaysayRecord
	ViolationType domain.ViolationType `json:"violation_type"`
	Metadata      map[string]string    `json:"metadata"`
}

func newRecordResponse(rec domain.SalaysayRecord) recordResponse {
	return recordResponse{
		SalaysayRecord: rec,
		ViolationType:  rec.ViolationType(),
		Metadata:       rec.Metadata(),
	}
}

func (rt *Router) getRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := rt.deps.Records.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecordResponse(*rec))
}

func (rt *Router) listRecords(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	records, err := rt.deps.Records.ListRecords(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, newRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

func (rt *Router) exportRecords(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Exporter == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "export is not configured"})
		return
	}
	records, err := rt.deps.Records.ListRecords(r.Context(), defaultExportLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	rows := make([]xlsx.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, xlsx.RowFromRecord(rec))
	}
	data, err := rt.deps.Exporter.Render(rows)
	if err != nil {
		rt.deps.Logger.Error("export_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="salaysay-records.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) reprocessRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := rt.deps.Reprocess.RequestReprocess(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"record_id": id, "status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
