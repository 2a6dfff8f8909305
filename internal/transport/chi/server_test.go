package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	healthuc "github.com/jagritiyatra/alumnidex/internal/usecase/health"
	searchuc "github.com/jagritiyatra/alumnidex/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	searchFn   func(ctx context.Context, text, userKey string) searchuc.Reply
	showMoreFn func(ctx context.Context, userKey string) searchuc.Reply
}

func (m *mockSearcher) Search(ctx context.Context, text, userKey string) searchuc.Reply {
	if m.searchFn != nil {
		return m.searchFn(ctx, text, userKey)
	}
	return searchuc.Reply{Kind: searchuc.KindHelp}
}

func (m *mockSearcher) ShowMore(ctx context.Context, userKey string) searchuc.Reply {
	if m.showMoreFn != nil {
		return m.showMoreFn(ctx, userKey)
	}
	return searchuc.Reply{Kind: searchuc.KindNoPrevious}
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(s Searcher, h HealthChecker, keys ...string) http.Handler {
	if h == nil {
		h = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	return NewRouter(NewServer(s, h, zap.NewNop()), keys, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestMessage_OK(t *testing.T) {
	var gotText, gotUser string
	s := &mockSearcher{searchFn: func(_ context.Context, text, userKey string) searchuc.Reply {
		gotText, gotUser = text, userKey
		return searchuc.Reply{Kind: searchuc.KindResults, Text: "Alumni matching lawyer:", Shown: []string{"a@x.org"}, Remaining: 2}
	}}

	rr := do(t, newTestRouter(s, nil), http.MethodPost, "/v1/messages", `{"user_key":"u1","text":"lawyers in delhi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if gotText != "lawyers in delhi" || gotUser != "u1" {
		t.Errorf("searcher got (%q, %q)", gotText, gotUser)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	var reply searchuc.Reply
	if err := json.NewDecoder(rr.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Kind != searchuc.KindResults || reply.Remaining != 2 || len(reply.Shown) != 1 {
		t.Errorf("reply = %+v", reply)
	}
}

func TestMessage_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"not json", `{`, codeBadRequest},
		{"unknown field", `{"user_key":"u","text":"x","extra":1}`, codeBadRequest},
		{"missing user", `{"text":"x"}`, codeValidationFailed},
		{"missing text", `{"user_key":"u"}`, codeValidationFailed},
		{"text too long", `{"user_key":"u","text":"` + strings.Repeat("a", 4001) + `"}`, codeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, newTestRouter(&mockSearcher{}, nil), http.MethodPost, "/v1/messages", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
		})
	}
}

func TestMessage_ValidationNamesField(t *testing.T) {
	rr := do(t, newTestRouter(&mockSearcher{}, nil), http.MethodPost, "/v1/messages", `{"text":"x"}`)
	if !strings.Contains(rr.Body.String(), "user_key: required") {
		t.Errorf("body = %s", rr.Body)
	}
}

func TestMore_OK(t *testing.T) {
	called := false
	s := &mockSearcher{showMoreFn: func(_ context.Context, userKey string) searchuc.Reply {
		called = userKey == "u1"
		return searchuc.Reply{Kind: searchuc.KindExhausted, Text: "done"}
	}}

	rr := do(t, newTestRouter(s, nil), http.MethodPost, "/v1/more", `{"user_key":"u1"}`)
	if rr.Code != http.StatusOK || !called {
		t.Fatalf("status = %d, called = %v", rr.Code, called)
	}
	if !strings.Contains(rr.Body.String(), `"kind":"exhausted"`) {
		t.Errorf("body = %s", rr.Body)
	}
}

func TestTurns_SerializedPerUser(t *testing.T) {
	var inFlight, peak atomic.Int32
	s := &mockSearcher{searchFn: func(context.Context, string, string) searchuc.Reply {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return searchuc.Reply{Kind: searchuc.KindResults}
	}}
	h := newTestRouter(s, nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			do(t, h, http.MethodPost, "/v1/messages", `{"user_key":"same","text":"x"}`)
		}()
	}
	wg.Wait()
	if peak.Load() != 1 {
		t.Errorf("peak concurrent turns for one user = %d, want 1", peak.Load())
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		h := &mockHealth{report: healthuc.Report{Status: tt.status, Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckOK}}}
		rr := do(t, newTestRouter(&mockSearcher{}, h, "secret"), http.MethodGet, "/health", "")
		if rr.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.status, rr.Code, tt.want)
		}
		if !strings.Contains(rr.Body.String(), `"status":"`+string(tt.status)+`"`) {
			t.Errorf("%s: body = %s", tt.status, rr.Body)
		}
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	rr := do(t, newTestRouter(&mockSearcher{}, nil, "secret"), http.MethodPost, "/v1/messages", `{"user_key":"u","text":"x"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	rr := do(t, newTestRouter(&mockSearcher{}, nil), http.MethodGet, "/v1/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	s := &mockSearcher{searchFn: func(context.Context, string, string) searchuc.Reply { panic("boom") }}
	rr := do(t, newTestRouter(s, nil), http.MethodPost, "/v1/messages", `{"user_key":"u","text":"x"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), codeInternalError) {
		t.Errorf("body = %s", rr.Body)
	}
}
