// Package retrieve runs a query plan against the profile store.
package retrieve

import (
	"context"
	"fmt"

	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/filter"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
	"github.com/jagritiyatra/alumnidex/internal/usecase/query"
)

// Defaults for the retrieval caps.
const (
	DefaultMaxCandidates    = 50
	DefaultMinStrictResults = 5
)

// Finder reads projected profiles matching a filter.
type Finder interface {
	Find(ctx context.Context, expr filter.Expression, limit int) ([]*profile.Profile, error)
}

// Outcome is the merged candidate list and the size of each pass.
type Outcome struct {
	Candidates []result.Candidate
	Strict     int
	Relaxed    int
}

// Retriever executes strict-then-relaxed retrieval.
type Retriever struct {
	finder    Finder
	max       int
	minStrict int
}

// New creates a Retriever. Non-positive limits use the defaults.
func New(f Finder, maxCandidates, minStrict int) *Retriever {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if minStrict <= 0 {
		minStrict = DefaultMinStrictResults
	}
	return &Retriever{finder: f, max: maxCandidates, minStrict: minStrict}
}

// Retrieve runs the strict pass and, when it returns fewer than the minimum
// and the plan spans several categories, a relaxed pass. Strict hits keep
// their order ahead of relaxed ones; duplicates are dropped by email.
func (r *Retriever) Retrieve(ctx context.Context, plan *query.Plan) (Outcome, error) {
	strict, err := r.finder.Find(ctx, plan.Strict, r.max)
	if err != nil {
		return Outcome{}, fmt.Errorf("strict pass: %w", err)
	}

	out := Outcome{Strict: len(strict)}
	seen := make(map[string]struct{}, r.max)
	add := func(ps []*profile.Profile, isStrict bool) {
		for _, p := range ps {
			if len(out.Candidates) >= r.max {
				return
			}
			key := p.Key()
			if _, ok := seen[key]; ok || key == "" {
				continue
			}
			seen[key] = struct{}{}
			out.Candidates = append(out.Candidates, result.New(p, isStrict))
		}
	}
	add(strict, true)

	if len(strict) >= r.minStrict || !plan.HasRelaxed() {
		return out, nil
	}

	relaxed, err := r.finder.Find(ctx, plan.Relaxed, r.max)
	if err != nil {
		return Outcome{}, fmt.Errorf("relaxed pass: %w", err)
	}
	out.Relaxed = len(relaxed)
	add(relaxed, false)
	return out, nil
}
