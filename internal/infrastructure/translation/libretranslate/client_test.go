package libretranslate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	cfg := resilience.DefaultConfig()
	cfg.RetryMaxAttempts = 2
	cfg.RetryInitialBackoff = time.Millisecond
	cfg.RetryMaxBackoff = time.Millisecond
	cfg.AttemptTimeout = time.Second
	cfg.BreakerEnabled = false
	return resilience.NewExecutor(cfg, nil)
}

func TestTranslateSendsLibreTranslatePayload(t *testing.T) {
	var captured translateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"translatedText":"I was not able to attend because I was sick."}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", Options{APIKey: "secret", Resilience: testExecutor()}, nil)
	got := client.Translate(context.Background(), "Hindi po ako nakapasok dahil ako ay may sakit.")
	if got != "I was not able to attend because I was sick." {
		t.Fatalf("unexpected translation %q", got)
	}
	if captured.Source != "tl" || captured.Target != "en" || captured.Format != "text" {
		t.Fatalf("unexpected language pair: %+v", captured)
	}
	if captured.APIKey != "secret" {
		t.Fatalf("expected api key in payload, got %q", captured.APIKey)
	}
}

func TestTranslateReturnsOriginalOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(url, Options{Resilience: testExecutor()}, nil)
	original := "Humihingi po ako ng paumanhin."
	if got := client.Translate(context.Background(), original); got != original {
		t.Fatalf("expected original text on network error, got %q", got)
	}
}

func TestTranslateReturnsOriginalOnBadStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"Invalid API key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := New(server.URL, Options{Resilience: testExecutor()}, nil)
	original := "Ang dahilan po ay nagkasakit ako."
	if got := client.Translate(context.Background(), original); got != original {
		t.Fatalf("expected original text, got %q", got)
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", calls.Load())
	}
}

func TestTranslateRetriesUnavailableService(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"translatedText":"I apologize."}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{Resilience: testExecutor()}, nil)
	if got := client.Translate(context.Background(), "Paumanhin po."); got != "I apologize." {
		t.Fatalf("expected translation after retry, got %q", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestTranslateReturnsOriginalOnEmptyTranslation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translatedText":"  "}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{Resilience: testExecutor()}, nil)
	if got := client.Translate(context.Background(), "Salamat po."); got != "Salamat po." {
		t.Fatalf("expected original text, got %q", got)
	}
}

func TestTranslateSkipsBlankInputAndMissingEndpoint(t *testing.T) {
	client := New("", Options{}, nil)
	if got := client.Translate(context.Background(), "Paumanhin."); got != "Paumanhin." {
		t.Fatalf("unconfigured client must return input, got %q", got)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("blank text must not reach the service")
	}))
	defer server.Close()
	if got := New(server.URL, Options{}, nil).Translate(context.Background(), "  "); got != "  " {
		t.Fatalf("expected blank input back, got %q", got)
	}
}

func TestTranslateHonorsCanceledContextWhileRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translatedText":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{RequestsPerSecond: 0.001, Burst: 1, Resilience: testExecutor()}, nil)
	if got := client.Translate(context.Background(), "una"); got != "ok" {
		t.Fatalf("first call should use the burst, got %q", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if got := client.Translate(ctx, "pangalawa"); got != "pangalawa" {
		t.Fatalf("rate limited call should fall back to input, got %q", got)
	}
}

func TestTranslateRejectsNonOKSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"translatedText":"queued"}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{Resilience: testExecutor()}, nil)
	original := "Nais ko pong ipaliwanag."
	if got := client.Translate(context.Background(), original); got != original {
		t.Fatalf("expected original text for a 202 reply, got %q", got)
	}
}

func breakerExecutor() *resilience.Executor {
	cfg := resilience.DefaultConfig()
	cfg.RetryMaxAttempts = 1
	cfg.AttemptTimeout = time.Second
	cfg.BreakerMinRequests = 1
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	return resilience.NewExecutor(cfg, nil)
}

func TestRejectedRequestsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"tl is not supported"}`))
	}))
	defer server.Close()

	executor := breakerExecutor()
	client := New(server.URL, Options{Resilience: executor}, nil)
	for i := 0; i < 3; i++ {
		if got := client.Translate(context.Background(), "Paumanhin po."); got != "Paumanhin po." {
			t.Fatalf("expected original text, got %q", got)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("every rejected request should reach the service, got %d calls", calls.Load())
	}
	if state := executor.BreakerState(translateOperation); state != gobreaker.StateClosed {
		t.Fatalf("breaker should stay closed on rejected requests, got %s", state)
	}
}

func TestServerFailuresTripBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"translation model crashed"}`))
	}))
	defer server.Close()

	executor := breakerExecutor()
	client := New(server.URL, Options{Resilience: executor}, nil)
	client.Translate(context.Background(), "una")
	if got := client.Translate(context.Background(), "pangalawa"); got != "pangalawa" {
		t.Fatalf("open breaker should fall back to input, got %q", got)
	}
	if calls.Load() != 1 {
		t.Fatalf("open breaker should short-circuit, got %d calls", calls.Load())
	}
	if state := executor.BreakerState(translateOperation); state != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", state)
	}
}

func TestClassifyTranslateError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
		record    bool
	}{
		{name: "slow down", err: &StatusError{StatusCode: http.StatusTooManyRequests}, retryable: true, record: true},
		{name: "unavailable", err: &StatusError{StatusCode: http.StatusServiceUnavailable}, retryable: true, record: true},
		{name: "unsupported language", err: &StatusError{StatusCode: http.StatusBadRequest, Message: "tl is not supported"}},
		{name: "banned key", err: &StatusError{StatusCode: http.StatusForbidden}},
		{name: "not implemented", err: &StatusError{StatusCode: http.StatusNotImplemented}, record: true},
		{name: "empty translation", err: errEmptyTranslation, record: true},
		{name: "deadline", err: context.DeadlineExceeded, record: true},
		{name: "canceled", err: context.Canceled},
		{name: "open breaker", err: gobreaker.ErrOpenState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyTranslateError(tc.err)
			if got.Retryable != tc.retryable || got.RecordFailure != tc.record {
				t.Fatalf("classifyTranslateError(%v) = %+v", tc.err, got)
			}
		})
	}
}

func TestErrorMessagePrefersJSONField(t *testing.T) {
	if got := errorMessage([]byte(`{"error":"Invalid request: missing q parameter"}`)); got != "Invalid request: missing q parameter" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := errorMessage([]byte(" upstream timeout \n")); got != "upstream timeout" {
		t.Fatalf("unexpected message %q", got)
	}
}
