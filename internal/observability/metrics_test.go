package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/roles/{id}/claims")

	req := httptest.NewRequest(http.MethodGet, "/roles/3/claims", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `bistro_http_requests_total{code="418",route="/roles/{id}/claims"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `bistro_http_request_duration_seconds_bucket{route="/roles/{id}/claims"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestMetricsRecordAuthzAndSeed(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveAuthz("allowed")
	metrics.ObserveAuthz("allowed")
	metrics.ObserveAuthz("denied_no_permission")
	metrics.ObserveSeedPhase("roles", true)
	metrics.ObserveSeedPhase("accounts", false)

	body := scrape(t, metrics)
	for _, want := range []string{
		`bistro_authz_decisions_total{verdict="allowed"} 2`,
		`bistro_authz_decisions_total{verdict="denied_no_permission"} 1`,
		`bistro_seed_phases_total{phase="roles",result="ok"} 1`,
		`bistro_seed_phases_total{phase="accounts",result="failed"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics, got: %s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveAuthz("allowed")
	metrics.ObserveSeedPhase("roles", true)
	if metrics.Registerer() != prometheus.DefaultRegisterer {
		t.Fatalf("expected default registerer for nil metrics")
	}

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
