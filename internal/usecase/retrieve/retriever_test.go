package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/jagritiyatra/alumnidex/internal/domain"
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/filter"
	"github.com/jagritiyatra/alumnidex/internal/usecase/query"
)

type mockFinder struct {
	results [][]*profile.Profile
	err     error
	calls   int
	limits  []int
}

func (m *mockFinder) Find(_ context.Context, _ filter.Expression, limit int) ([]*profile.Profile, error) {
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	i := m.calls
	m.calls++
	if i < len(m.results) {
		return m.results[i], nil
	}
	return nil, nil
}

func prof(email string) *profile.Profile {
	return &profile.Profile{Name: email, Email: email}
}

func twoCategoryPlan(t *testing.T) *query.Plan {
	t.Helper()
	in := intent.New()
	in.Add(intent.Skills, "react")
	in.Add(intent.Locations, "pune")
	plan, err := query.NewBuilder(nil).Build(in, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return &plan
}

func TestRetrieve_StrictEnough(t *testing.T) {
	f := &mockFinder{results: [][]*profile.Profile{{prof("a"), prof("b")}}}
	r := New(f, 10, 2)

	out, err := r.Retrieve(context.Background(), twoCategoryPlan(t))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("relaxed pass should be skipped, calls = %d", f.calls)
	}
	if out.Strict != 2 || out.Relaxed != 0 || len(out.Candidates) != 2 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestRetrieve_RelaxedMergePreservesStrictPrecedence(t *testing.T) {
	f := &mockFinder{results: [][]*profile.Profile{
		{prof("a")},
		{prof("c"), prof("a"), prof("b")},
	}}
	r := New(f, 10, 5)

	out, err := r.Retrieve(context.Background(), twoCategoryPlan(t))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	want := []string{"a", "c", "b"}
	if len(out.Candidates) != len(want) {
		t.Fatalf("candidates = %d, want %d", len(out.Candidates), len(want))
	}
	for i, w := range want {
		if out.Candidates[i].Email() != w {
			t.Errorf("candidate[%d] = %s, want %s", i, out.Candidates[i].Email(), w)
		}
	}
	if !out.Candidates[0].Strict() || out.Candidates[1].Strict() {
		t.Error("strict flag not carried")
	}
	if out.Strict != 1 || out.Relaxed != 3 {
		t.Errorf("pass sizes = %d/%d", out.Strict, out.Relaxed)
	}
}

func TestRetrieve_SingleCategoryNeverRelaxes(t *testing.T) {
	in := intent.New()
	in.Add(intent.Roles, "lawyer")
	plan, _ := query.NewBuilder(nil).Build(in, nil)

	f := &mockFinder{results: [][]*profile.Profile{{prof("a")}}}
	if _, err := New(f, 10, 5).Retrieve(context.Background(), &plan); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("calls = %d, want 1", f.calls)
	}
}

func TestRetrieve_Cap(t *testing.T) {
	f := &mockFinder{results: [][]*profile.Profile{
		{prof("a")},
		{prof("b"), prof("c"), prof("d")},
	}}
	out, err := New(f, 2, 5).Retrieve(context.Background(), twoCategoryPlan(t))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out.Candidates) != 2 {
		t.Errorf("candidates = %d, want cap 2", len(out.Candidates))
	}
	for _, l := range f.limits {
		if l != 2 {
			t.Errorf("store limit = %d, want 2", l)
		}
	}
}

func TestRetrieve_StoreError(t *testing.T) {
	f := &mockFinder{err: domain.ErrStoreUnavailable}
	_, err := New(f, 10, 5).Retrieve(context.Background(), twoCategoryPlan(t))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
