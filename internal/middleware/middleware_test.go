package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestValidateProjectID(t *testing.T) {
	good := "0f8fad5b-d9cb-469f-a165-70867728950e"
	if err := ValidateProjectID(good); err != nil {
		t.Errorf("ValidateProjectID(%q) = %v, want nil", good, err)
	}
	for _, bad := range []string{
		"",
		"not-a-uuid",
		"../../etc/passwd",
		"0f8fad5bd9cb469fa16570867728950e",
		"{0f8fad5b-d9cb-469f-a165-70867728950e}",
	} {
		if err := ValidateProjectID(bad); err == nil {
			t.Errorf("ValidateProjectID(%q) = nil, want error", bad)
		}
	}
}

func TestTokenBucketRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tb := newTokenBucket(2, 1, clock)

	if !tb.Allow() || !tb.Allow() {
		t.Fatal("fresh bucket should allow capacity requests")
	}
	if tb.Allow() {
		t.Fatal("empty bucket should deny")
	}

	now = now.Add(1500 * time.Millisecond)
	if !tb.Allow() {
		t.Error("bucket should refill one token after 1.5s")
	}
	if tb.Allow() {
		t.Error("bucket should hold only one refilled token")
	}

	now = now.Add(time.Hour)
	if !tb.Allow() || !tb.Allow() {
		t.Error("refill should be capped at capacity")
	}
	if tb.Allow() {
		t.Error("refill exceeded capacity")
	}
}

func TestRateLimiterPerKeyAndSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || rl.Allow("a") {
		t.Fatal("key a should get exactly one request")
	}
	if !rl.Allow("b") {
		t.Fatal("key b has its own bucket")
	}

	now = now.Add(11 * time.Minute)
	if n := rl.Sweep(10 * time.Minute); n != 2 {
		t.Errorf("Sweep dropped %d buckets, want 2", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(NewRateLimiter(1, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("10.0.0.1:1111"); rec.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d, want 204", rec.Code)
	}
	// same IP, different port: same bucket
	rec := do("10.0.0.1:2222")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
	if rec := do("10.0.0.2:1111"); rec.Code != http.StatusNoContent {
		t.Errorf("other IP status = %d, want 204", rec.Code)
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/analysis/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/analysis/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/analysis/{id}", "404"))
	if got != 3 {
		t.Errorf("requests{route=/api/analysis/{id},status=404} = %v, want 3", got)
	}

	m.ObserveAnalysis("failed")
	m.ObserveRejected("invalid_extension")
	if v := testutil.ToFloat64(m.analyses.WithLabelValues("failed")); v != 1 {
		t.Errorf("analyses{failed} = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.rejected.WithLabelValues("invalid_extension")); v != 1 {
		t.Errorf("rejected{invalid_extension} = %v, want 1", v)
	}

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "booklens_analyses_total") {
		t.Errorf("exposition missing booklens_analyses_total:\n%s", rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	ok := HealthCheckFunc(func(context.Context) error { return nil })
	down := HealthCheckFunc(func(context.Context) error { return errors.New("bucket gone") })

	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"storage": ok}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"storage": ok, "records": down}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
	var hs HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&hs); err != nil {
		t.Fatal(err)
	}
	if hs.Checks["records"].Message != "bucket gone" {
		t.Errorf("records check = %+v", hs.Checks["records"])
	}

	rec = httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"records": down}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want 503", rec.Code)
	}
}
