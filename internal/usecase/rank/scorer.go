// Package rank scores, orders and verifies retrieved candidates.
package rank

import (
	"sort"
	"strings"

	"github.com/jagritiyatra/alumnidex/internal/domain/category"
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/filter"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
	"github.com/jagritiyatra/alumnidex/internal/usecase/query"
)

// DefaultMinScore is the verification floor.
const DefaultMinScore = 10

// Scorer is safe for concurrent use.
type Scorer struct {
	w        Weights
	minScore float64
}

// NewScorer creates a Scorer with the given weights and verification floor.
func NewScorer(w Weights, minScore float64) *Scorer {
	return &Scorer{w: w, minScore: minScore}
}

// Rank scores every candidate, sorts by score (ties: complete profiles
// first, then input order) and drops candidates that fail verification.
func (s *Scorer) Rank(cands []result.Candidate, plan *query.Plan) []result.Candidate {
	scored := make([]result.Candidate, len(cands))
	for i, c := range cands {
		scored[i] = s.Score(c, plan)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score() != scored[j].Score() {
			return scored[i].Score() > scored[j].Score()
		}
		return scored[i].Profile().Complete && !scored[j].Profile().Complete
	})
	out := scored[:0]
	for _, c := range scored {
		if s.Verify(c, plan) {
			out = append(out, c)
		}
	}
	return out
}

// Score returns c with its additive score and matched categories. Every
// matched term adds its category weight; the completeness bonus scales with
// how many profile sections carry data.
func (s *Scorer) Score(c result.Candidate, plan *query.Plan) result.Candidate {
	p := c.Profile()
	var total float64
	var matched []intent.Category

	for _, cat := range plan.Categories {
		var got float64
		if cat == intent.Name {
			got = s.nameScore(p.Name, plan.Groups[cat])
		} else {
			values := category.Values(cat, p)
			for _, g := range plan.Groups[cat] {
				if anyMatch(values, g.Variants) {
					got += s.w.category(cat)
				}
			}
		}
		if got > 0 {
			total += got
			matched = append(matched, cat)
		}
	}
	total += s.w.Completeness * p.Richness()
	return c.Scored(total, matched)
}

// Verify reports whether c clears the score floor and matched every
// populated category.
func (s *Scorer) Verify(c result.Candidate, plan *query.Plan) bool {
	if c.Score() < s.minScore {
		return false
	}
	for _, cat := range plan.Categories {
		if !c.Has(cat) {
			return false
		}
	}
	return true
}

func (s *Scorer) nameScore(name string, groups []query.TermGroup) float64 {
	have := canonicalName(name)
	if have == "" {
		return 0
	}
	var best float64
	for _, g := range groups {
		want := canonicalName(g.Term)
		switch {
		case want == "":
		case have == want:
			best = max(best, s.w.NameExact)
		case strings.Contains(have, want) || strings.Contains(want, have):
			best = max(best, s.w.NamePartial)
		case sharesToken(have, want):
			best = max(best, s.w.NameToken)
		}
	}
	return best
}

// canonicalName lower-cases, drops punctuation and collapses spaces.
func canonicalName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '\'', '-', '_':
			return ' '
		}
		return r
	}, strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

func sharesToken(a, b string) bool {
	tokens := make(map[string]struct{})
	for _, t := range query.NameTokens(a) {
		tokens[t] = struct{}{}
	}
	for _, t := range query.NameTokens(b) {
		if _, ok := tokens[t]; ok {
			return true
		}
	}
	return false
}

func anyMatch(values, variants []string) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, want := range variants {
			if filter.MatchTerm(v, want) {
				return true
			}
		}
	}
	return false
}
