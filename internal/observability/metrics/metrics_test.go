package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

func TestIntakeMetricsCountFinalStates(t *testing.T) {
	httpMetrics := NewHTTPServerMetrics("api")
	intake := NewIntakeMetrics("api", httpMetrics.Registerer())

	intake.ObserveTransition(domain.StatePending, domain.StateAnalyzing)
	intake.ObserveTransition(domain.StateAnalyzing, domain.StateUploading)
	intake.ObservePipeline(domain.StateCompleted, domain.ViolationAttendance, 2*time.Second)
	intake.ObservePipeline(domain.StateError, domain.ViolationOther, time.Second)

	if got := testutil.ToFloat64(intake.pipelinesTotal.WithLabelValues("api", "completed", "Attendance Issue")); got != 1 {
		t.Fatalf("completed pipelines = %v", got)
	}
	if got := testutil.ToFloat64(intake.transitionsTotal.WithLabelValues("api", "pending", "analyzing")); got != 1 {
		t.Fatalf("pending->analyzing transitions = %v", got)
	}

	res := httptest.NewRecorder()
	httpMetrics.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(res.Body.String(), "salaysay_intake_pipelines_total") {
		t.Fatalf("intake metrics missing from shared registry")
	}
}

func TestMiddlewareNormalizesIDs(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/uploads/abc", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/uploads/def", nil))

	if got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", "GET", "/v1/uploads/{upload_id}", "404")); got != 2 {
		t.Fatalf("expected 2 normalized requests, got %v", got)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/v1/records/r1":           "/v1/records/{record_id}",
		"/v1/records/r1/reprocess": "/v1/records/{record_id}/reprocess",
		"/v1/records/export.xlsx":  "/v1/records/export.xlsx",
		"/healthz":                 "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecordUpload(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.RecordUpload("api", "image/png", 2048, true)
	m.RecordUpload("api", "", 0, false)

	if got := testutil.ToFloat64(m.uploadsTotal.WithLabelValues("api", "unknown", "rejected")); got != 1 {
		t.Fatalf("rejected uploads = %v", got)
	}
	if got := testutil.CollectAndCount(m.uploadBytes); got != 1 {
		t.Fatalf("expected one upload size series, got %d", got)
	}
}

func TestWorkerMetrics(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartReprocess()
	if got := testutil.ToFloat64(m.processInFlight); got != 1 {
		t.Fatalf("in flight = %v", got)
	}
	m.FinishReprocess("worker", time.Second, nil)
	if got := testutil.ToFloat64(m.processInFlight); got != 0 {
		t.Fatalf("in flight = %v", got)
	}
	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("worker", "success")); got != 1 {
		t.Fatalf("success total = %v", got)
	}

	m.StartReprocess()
	m.FinishReprocess("worker", time.Second, domain.WrapError(domain.ErrNotFound, "get record", errors.New("rec-1")))
	m.StartReprocess()
	m.FinishReprocess("worker", time.Second, errors.New("storage down"))
	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("worker", "not_found")); got != 1 {
		t.Fatalf("not_found total = %v", got)
	}
	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("worker", "error")); got != 1 {
		t.Fatalf("error total = %v", got)
	}
}
