package result

import (
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
)

// Candidate is a retrieved profile together with its relevance evidence.
type Candidate struct {
	profile *profile.Profile
	score   float64
	matched []intent.Category
	strict  bool
}

// New creates a Candidate from a retrieved profile. strict records whether the
// profile satisfied every requested category at retrieval time.
func New(p *profile.Profile, strict bool) Candidate {
	return Candidate{profile: p, strict: strict}
}

// Profile returns the underlying profile.
func (c Candidate) Profile() *profile.Profile { return c.profile }

// Email returns the identity of the candidate.
func (c Candidate) Email() string { return c.profile.Key() }

// Score returns the relevance score.
func (c Candidate) Score() float64 { return c.score }

// Matched returns the categories with at least one matched term.
func (c Candidate) Matched() []intent.Category { return c.matched }

// Strict reports whether the candidate came from the strict retrieval pass.
func (c Candidate) Strict() bool { return c.strict }

// Scored returns a copy of c carrying score and matched categories.
func (c Candidate) Scored(score float64, matched []intent.Category) Candidate {
	c.score = score
	c.matched = matched
	return c
}

// Has reports whether category cat was matched.
func (c Candidate) Has(cat intent.Category) bool {
	for _, m := range c.matched {
		if m == cat {
			return true
		}
	}
	return false
}
