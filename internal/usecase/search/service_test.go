package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jagritiyatra/alumnidex/internal/db/embedded"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
	profilerepo "github.com/jagritiyatra/alumnidex/internal/repository/profile"
	sessionrepo "github.com/jagritiyatra/alumnidex/internal/repository/session"
	"github.com/jagritiyatra/alumnidex/internal/usecase/extract"
	"github.com/jagritiyatra/alumnidex/internal/usecase/format"
	"github.com/jagritiyatra/alumnidex/internal/usecase/normalize"
	"github.com/jagritiyatra/alumnidex/internal/usecase/paginate"
	"github.com/jagritiyatra/alumnidex/internal/usecase/query"
	"github.com/jagritiyatra/alumnidex/internal/usecase/rank"
	"github.com/jagritiyatra/alumnidex/internal/usecase/retrieve"
)

const user = "whatsapp:+919800000000"

// --- Test doubles ---

type failingCompleter struct{ calls int }

func (f *failingCompleter) CompleteJSON(context.Context, string, string) (string, error) {
	f.calls++
	return "", errors.New("model down")
}

type panickingRanker struct{}

func (panickingRanker) Rank([]result.Candidate, *query.Plan) []result.Candidate {
	panic("boom")
}

type stubEnricher struct{ notes map[string]string }

func (s stubEnricher) Notes(context.Context, string, []result.Candidate) map[string]string {
	return s.notes
}

type mockRecorder struct {
	mu    sync.Mutex
	kinds []string
	stage map[string]int
}

func (m *mockRecorder) RecordTurn(kind string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = append(m.kinds, kind)
}

func (m *mockRecorder) RecordCandidates(stage string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage == nil {
		m.stage = make(map[string]int)
	}
	m.stage[stage] = n
}

// --- Harness ---

type harness struct {
	svc      *Service
	store    *embedded.Store
	profiles *profilerepo.Repo
	sessions *sessionrepo.Repo
	rec      *mockRecorder
}

type option func(d *Deps)

func withRanker(r Ranker) option       { return func(d *Deps) { d.Ranker = r } }
func withEnricher(e Enricher) option   { return func(d *Deps) { d.Enricher = e } }
func withExtractor(e Extractor) option { return func(d *Deps) { d.Extractor = e } }

func newHarness(t *testing.T, ps []*profile.Profile, opts ...option) *harness {
	t.Helper()
	ctx := context.Background()

	s, err := embedded.Open(embedded.InMemory)
	if err != nil {
		t.Fatalf("embedded.Open: %v", err)
	}
	t.Cleanup(s.Close)

	profiles := profilerepo.New(s, "test:")
	if err := profiles.EnsureIndex(ctx); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if len(ps) > 0 {
		if err := profiles.UpsertMany(ctx, ps); err != nil {
			t.Fatalf("UpsertMany: %v", err)
		}
	}
	sessions := sessionrepo.New(s, "test:", 0, 0, nil)

	norm := normalize.New()
	rec := &mockRecorder{}
	d := Deps{
		Normalizer: norm,
		Extractor:  extract.New(),
		Planner:    query.NewBuilder(norm),
		Retriever:  retrieve.New(profiles, 0, 0),
		Ranker:     rank.NewScorer(rank.DefaultWeights(), rank.DefaultMinScore),
		Pager:      paginate.New(sessions, 3, paginate.DefaultTTL),
		Formatter:  format.New(0, "more"),
		Sessions:   sessions,
		Sampler:    profiles,
		Recorder:   rec,
	}
	for _, o := range opts {
		o(&d)
	}
	return &harness{svc: New(d, Settings{}), store: s, profiles: profiles, sessions: sessions, rec: rec}
}

func lawyers(n int) []*profile.Profile {
	out := make([]*profile.Profile, n)
	for i := range out {
		out[i] = &profile.Profile{
			Name:        fmt.Sprintf("Lawyer %c", 'A'+i),
			Email:       fmt.Sprintf("lawyer%d@x.org", i),
			CurrentRole: "Lawyer",
			Location:    profile.Location{City: "Delhi"},
		}
	}
	return out
}

func requireKind(t *testing.T, r Reply, want Kind) {
	t.Helper()
	if r.Kind != want {
		t.Fatalf("kind = %s, want %s (text: %q)", r.Kind, want, r.Text)
	}
}

// --- Tests ---

func TestSearch_RequiresEveryCategory(t *testing.T) {
	h := newHarness(t, []*profile.Profile{
		{Name: "Pune Dev", Email: "pune@x.org", Skills: []string{"React"}, Location: profile.Location{City: "Pune"}},
		{Name: "Mumbai Dev", Email: "mumbai@x.org", Skills: []string{"React"}, Location: profile.Location{City: "Mumbai"}},
	})

	r := h.svc.Search(context.Background(), "web developers in pune", user)
	requireKind(t, r, KindResults)
	if len(r.Shown) != 1 || r.Shown[0] != "pune@x.org" {
		t.Errorf("shown = %v, want [pune@x.org]", r.Shown)
	}
	if !strings.Contains(r.Text, "Pune Dev") || strings.Contains(r.Text, "Mumbai Dev") {
		t.Errorf("unexpected text: %q", r.Text)
	}
}

func TestSearch_ExactNameSortsFirst(t *testing.T) {
	h := newHarness(t, []*profile.Profile{
		{Name: "Asha V.", Email: "v@x.org", Bio: "Designer", Skills: []string{"Figma"}},
		{Name: "Asha Verma", Email: "asha@x.org"},
	})

	r := h.svc.Search(context.Background(), "do you know about Asha Verma", user)
	requireKind(t, r, KindResults)
	if len(r.Shown) != 2 || r.Shown[0] != "asha@x.org" {
		t.Errorf("shown = %v, want asha@x.org first", r.Shown)
	}
}

func TestSearch_PaginatesWithoutRepeats(t *testing.T) {
	h := newHarness(t, lawyers(7))
	ctx := context.Background()

	first := h.svc.Search(ctx, "lawyers in delhi", user)
	requireKind(t, first, KindResults)
	if len(first.Shown) != 3 || first.Remaining != 4 {
		t.Fatalf("first page = %v (remaining %d)", first.Shown, first.Remaining)
	}
	if !strings.Contains(first.Text, `Type "more" to see 4 more.`) {
		t.Errorf("missing more hint: %q", first.Text)
	}

	second := h.svc.ShowMore(ctx, user)
	requireKind(t, second, KindResults)
	if len(second.Shown) != 3 || second.Remaining != 1 {
		t.Fatalf("second page = %v (remaining %d)", second.Shown, second.Remaining)
	}

	third := h.svc.ShowMore(ctx, user)
	requireKind(t, third, KindResults)
	if len(third.Shown) != 1 || third.Remaining != 0 {
		t.Fatalf("third page = %v (remaining %d)", third.Shown, third.Remaining)
	}
	if !strings.Contains(third.Text, "That's all for this search.") {
		t.Errorf("last page should say it is the end: %q", third.Text)
	}

	seen := make(map[string]bool)
	for _, r := range []Reply{first, second, third} {
		for _, e := range r.Shown {
			if seen[e] {
				t.Errorf("%s shown twice", e)
			}
			seen[e] = true
		}
	}
	if len(seen) != 7 {
		t.Errorf("covered %d profiles, want 7", len(seen))
	}

	requireKind(t, h.svc.ShowMore(ctx, user), KindExhausted)
}

func TestSearch_ModelFailureFallsBackToRules(t *testing.T) {
	llm := &failingCompleter{}
	ps := append(lawyers(2), &profile.Profile{
		Name: "Mumbai Lawyer", Email: "m@x.org", CurrentRole: "Lawyer", Location: profile.Location{City: "Mumbai"},
	})
	h := newHarness(t, ps, withExtractor(extract.New(extract.WithModel(llm, time.Second))))

	r := h.svc.Search(context.Background(), "lawyers in delhi", user)
	requireKind(t, r, KindResults)
	if llm.calls == 0 {
		t.Error("model should have been tried")
	}
	if len(r.Shown) != 2 {
		t.Errorf("shown = %v, want the two Delhi lawyers", r.Shown)
	}
	for _, e := range r.Shown {
		if e == "m@x.org" {
			t.Error("Mumbai lawyer should be filtered out")
		}
	}
}

func TestShowMore_AfterTopicSwitch(t *testing.T) {
	h := newHarness(t, lawyers(7))
	ctx := context.Background()

	requireKind(t, h.svc.Search(ctx, "lawyers in delhi", user), KindResults)
	requireKind(t, h.svc.Search(ctx, "doctors in chennai", user), KindNoResults)
	requireKind(t, h.svc.ShowMore(ctx, user), KindNoPrevious)
}

func TestShowMore_WithoutSearch(t *testing.T) {
	h := newHarness(t, lawyers(1))
	r := h.svc.ShowMore(context.Background(), user)
	requireKind(t, r, KindNoPrevious)
	if r.Text != h.svc.fmt.NoPrevious() {
		t.Errorf("text = %q", r.Text)
	}
}

func TestSearch_ContinuationWordUsesBatch(t *testing.T) {
	h := newHarness(t, lawyers(5))
	ctx := context.Background()

	requireKind(t, h.svc.Search(ctx, "lawyers in delhi", user), KindResults)
	r := h.svc.Search(ctx, "show more", user)
	requireKind(t, r, KindResults)
	if len(r.Shown) != 2 || r.Remaining != 0 {
		t.Errorf("shown = %v (remaining %d)", r.Shown, r.Remaining)
	}
	if !strings.HasPrefix(r.Text, `More results for "lawyers in delhi":`) {
		t.Errorf("unexpected header: %q", r.Text)
	}
}

func TestSearch_ContinuationRerunsPreviousIntent(t *testing.T) {
	h := newHarness(t, lawyers(7))
	ctx := context.Background()

	first := h.svc.Search(ctx, "lawyers in delhi", user)
	requireKind(t, first, KindResults)
	if err := h.sessions.DeleteOverflow(ctx, user); err != nil {
		t.Fatalf("DeleteOverflow: %v", err)
	}

	r := h.svc.Search(ctx, "more", user)
	requireKind(t, r, KindResults)
	if len(r.Shown) != 3 || r.Remaining != 1 {
		t.Fatalf("shown = %v (remaining %d)", r.Shown, r.Remaining)
	}
	for _, e := range r.Shown {
		for _, prev := range first.Shown {
			if e == prev {
				t.Errorf("%s was already shown", e)
			}
		}
	}
}

func TestSearch_ContinuationRerunExhausted(t *testing.T) {
	h := newHarness(t, lawyers(2))
	ctx := context.Background()

	requireKind(t, h.svc.Search(ctx, "lawyers in delhi", user), KindResults)
	requireKind(t, h.svc.Search(ctx, "more", user), KindExhausted)
}

func TestSearch_SameTopicSkipsShown(t *testing.T) {
	h := newHarness(t, lawyers(4))
	ctx := context.Background()

	first := h.svc.Search(ctx, "lawyers in delhi", user)
	requireKind(t, first, KindResults)
	again := h.svc.Search(ctx, "lawyers in delhi", user)
	requireKind(t, again, KindResults)
	if len(again.Shown) != 1 || again.Shown[0] == first.Shown[0] {
		t.Errorf("repeat search shown = %v after %v", again.Shown, first.Shown)
	}
}

func TestSearch_ExcludesSelf(t *testing.T) {
	h := newHarness(t, lawyers(2))
	r := h.svc.Search(context.Background(), "lawyers in delhi", "LAWYER0@x.org")
	requireKind(t, r, KindResults)
	if len(r.Shown) != 1 || r.Shown[0] != "lawyer1@x.org" {
		t.Errorf("shown = %v, want only lawyer1@x.org", r.Shown)
	}
}

func TestSearch_NoResultsSuggestsOthers(t *testing.T) {
	h := newHarness(t, lawyers(2))
	r := h.svc.Search(context.Background(), "doctors in chennai", user)
	requireKind(t, r, KindNoResults)
	if !strings.Contains(r.Text, "Meanwhile") || !strings.Contains(r.Text, "Lawyer A") {
		t.Errorf("expected suggestions in %q", r.Text)
	}
}

func TestSearch_Help(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	for _, text := range []string{"", "   ", "hello", strings.Repeat("lawyer ", 100)} {
		requireKind(t, h.svc.Search(ctx, text, user), KindHelp)
	}
}

func TestSearch_StoreUnavailable(t *testing.T) {
	h := newHarness(t, lawyers(3))
	h.store.Close()

	r := h.svc.Search(context.Background(), "lawyers in delhi", user)
	requireKind(t, r, KindUnavailable)
	if r.Text != h.svc.fmt.Unavailable() {
		t.Errorf("text = %q", r.Text)
	}
}

func TestShowMore_CacheUnavailable(t *testing.T) {
	h := newHarness(t, lawyers(5))
	ctx := context.Background()
	requireKind(t, h.svc.Search(ctx, "lawyers in delhi", user), KindResults)
	h.store.Close()
	requireKind(t, h.svc.ShowMore(ctx, user), KindUnavailable)
}

func TestSearch_PanicBecomesFailure(t *testing.T) {
	h := newHarness(t, lawyers(1), withRanker(panickingRanker{}))

	r := h.svc.Search(context.Background(), "lawyers in delhi", user)
	requireKind(t, r, KindFailure)
	if len(h.rec.kinds) != 1 || h.rec.kinds[0] != string(KindFailure) {
		t.Errorf("recorded kinds = %v", h.rec.kinds)
	}
}

func TestSearch_RendersNotes(t *testing.T) {
	h := newHarness(t, lawyers(1), withEnricher(stubEnricher{
		notes: map[string]string{"lawyer0@x.org": "Practices in Delhi courts."},
	}))

	r := h.svc.Search(context.Background(), "lawyers in delhi", user)
	requireKind(t, r, KindResults)
	if !strings.Contains(r.Text, "Practices in Delhi courts.") {
		t.Errorf("note missing from %q", r.Text)
	}
}

func TestSearch_RecordsCandidates(t *testing.T) {
	h := newHarness(t, lawyers(3))
	requireKind(t, h.svc.Search(context.Background(), "lawyers in delhi", user), KindResults)

	if h.rec.stage["strict"] != 3 || h.rec.stage["verified"] != 3 {
		t.Errorf("stages = %v", h.rec.stage)
	}
	if len(h.rec.kinds) != 1 || h.rec.kinds[0] != string(KindResults) {
		t.Errorf("kinds = %v", h.rec.kinds)
	}
}
