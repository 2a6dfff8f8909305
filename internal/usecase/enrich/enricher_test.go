package enrich

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
)

// --- Mocks ---

type mockCompleter struct {
	delay   map[string]time.Duration
	fail    map[string]bool
	calls   atomic.Int32
	running atomic.Int32
	peak    atomic.Int32
}

func (m *mockCompleter) Complete(ctx context.Context, _, user string) (string, error) {
	m.calls.Add(1)
	n := m.running.Add(1)
	defer m.running.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	name := between(user, "Name: ", "\n")
	if m.fail[name] {
		return "", errors.New("boom")
	}
	select {
	case <-time.After(m.delay[name]):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "\"" + name + " fits.\"\nextra line", nil
}

func between(s, from, to string) string {
	i := strings.Index(s, from)
	if i < 0 {
		return ""
	}
	s = s[i+len(from):]
	if j := strings.Index(s, to); j >= 0 {
		return s[:j]
	}
	return s
}

func cands(names ...string) []result.Candidate {
	out := make([]result.Candidate, len(names))
	for i, n := range names {
		out[i] = result.New(&profile.Profile{Name: n, Email: strings.ToLower(n) + "@x.org"}, true)
	}
	return out
}

// --- Tests ---

func TestNotes_AllSucceed(t *testing.T) {
	llm := &mockCompleter{}
	e, err := New(llm, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Release()

	notes := e.Notes(context.Background(), "lawyers in delhi", cands("Asha", "Bala", "Chitra"))
	if len(notes) != 3 {
		t.Fatalf("notes = %v", notes)
	}
	if notes["asha@x.org"] != "Asha fits." {
		t.Errorf("note = %q", notes["asha@x.org"])
	}
	if llm.peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds pool size", llm.peak.Load())
	}
}

func TestNotes_FailureLeavesNoNote(t *testing.T) {
	llm := &mockCompleter{fail: map[string]bool{"Bala": true}}
	e, _ := New(llm, 4)
	defer e.Release()

	notes := e.Notes(context.Background(), "q", cands("Asha", "Bala"))
	if _, ok := notes["bala@x.org"]; ok {
		t.Error("failed call should leave no note")
	}
	if notes["asha@x.org"] == "" {
		t.Error("successful call should produce a note")
	}
}

func TestNotes_Deadline(t *testing.T) {
	llm := &mockCompleter{delay: map[string]time.Duration{"Slow": 5 * time.Second}}
	e, _ := New(llm, 4)
	defer e.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	notes := e.Notes(ctx, "q", cands("Fast", "Slow"))
	if time.Since(start) > 2*time.Second {
		t.Fatal("Notes should return at the deadline")
	}
	if notes["fast@x.org"] == "" {
		t.Error("fast note should be kept")
	}
	if _, ok := notes["slow@x.org"]; ok {
		t.Error("slow note should be missing")
	}
}

func TestClean(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  plain  ", "plain"},
		{"\"quoted\"\nsecond", "quoted"},
		{strings.Repeat("a", 300), strings.Repeat("a", maxNoteRunes-1) + "…"},
	}
	for _, tc := range tests {
		if got := clean(tc.in); got != tc.want {
			t.Errorf("clean(%.20q) = %.20q", tc.in, got)
		}
	}
}
