package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/users/{key}/messages", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"kind":"results"}`))
	})

	for _, key := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/users/"+key+"/messages", http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/users/{key}/messages", "200"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2 under one route label", got)
	}
	if testutil.CollectAndCount(httpResponseBytes) == 0 {
		t.Error("expected response size observations")
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_Status(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/implicit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/empty", func(http.ResponseWriter, *http.Request) {})
	r.Get("/unavailable", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tests := []struct {
		path string
		want string
	}{
		{"/implicit", "200"},
		{"/empty", "200"},
		{"/unavailable", "503"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
			if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.want)); got < 1 {
				t.Errorf("requests_total{%s,%s} = %v", tc.path, tc.want, got)
			}
		})
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	var during float64
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpInFlight)
	}))
	before := testutil.ToFloat64(httpInFlight)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

	if during != before+1 {
		t.Errorf("in flight during request = %v, want %v", during, before+1)
	}
	if after := testutil.ToFloat64(httpInFlight); after != before {
		t.Errorf("in flight after request = %v, want %v", after, before)
	}
	// Outside a chi router there is no route context.
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "200")); got < 1 {
		t.Errorf("unmatched requests_total = %v", got)
	}
}

func TestMetricsHandler_ViaPromhttp(t *testing.T) {
	Register()
	Register()
	SearchRecorder{}.RecordTurn("results", 10*time.Millisecond)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	if !strings.Contains(string(body), `alumnidex_search_turns_total{kind="results"}`) {
		t.Error("expected search turn counter in metrics output")
	}
}

func TestSearchRecorder(t *testing.T) {
	rec := SearchRecorder{}
	before := testutil.ToFloat64(ExtractionTotal.WithLabelValues("rules"))
	rec.RecordExtraction("rules")
	if got := testutil.ToFloat64(ExtractionTotal.WithLabelValues("rules")); got != before+1 {
		t.Errorf("extraction_total = %v, want %v", got, before+1)
	}
	rec.RecordCandidates("verified", 3)
	if testutil.CollectAndCount(Candidates) == 0 {
		t.Error("expected candidate observations")
	}
}
