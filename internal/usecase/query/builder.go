// Package query turns an Intent into strict and relaxed store filters.
package query

import (
	"fmt"
	"strings"

	"github.com/jagritiyatra/alumnidex/internal/domain"
	"github.com/jagritiyatra/alumnidex/internal/domain/category"
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/filter"
)

// minNameToken is the shortest name part used as a retrieval pattern.
const minNameToken = 3

// Expander widens a term with related domain terms.
type Expander interface {
	Expand(term string) []string
}

// TermGroup is one requested term with every spelling that counts as a match.
type TermGroup struct {
	Term     string
	Variants []string
}

// Plan is the compiled form of an Intent.
type Plan struct {
	Intent intent.Intent
	// Categories lists the populated categories in intent.Categories order.
	Categories []intent.Category
	Groups     map[intent.Category][]TermGroup
	// Strict requires every category; Relaxed accepts any. Both carry the exclusions.
	Strict  filter.Expression
	Relaxed filter.Expression
}

// HasRelaxed reports whether a relaxed pass differs from the strict one.
func (p *Plan) HasRelaxed() bool {
	return len(p.Categories) > 1
}

// Builder compiles intents. Safe for concurrent use.
type Builder struct {
	expander Expander
}

// NewBuilder creates a Builder. A nil expander disables domain expansion.
func NewBuilder(e Expander) *Builder {
	return &Builder{expander: e}
}

// Build compiles in into a Plan that excludes the given emails.
func (b *Builder) Build(in intent.Intent, exclude []string) (Plan, error) {
	plan := Plan{
		Intent:     in,
		Categories: in.Populated(),
		Groups:     make(map[intent.Category][]TermGroup),
	}
	if len(plan.Categories) == 0 {
		return Plan{}, fmt.Errorf("%w: nothing to search for", domain.ErrInvalidQuery)
	}

	conds := make([]filter.Condition, 0, len(plan.Categories))
	for _, c := range plan.Categories {
		groups := b.groups(c, in.Terms(c))
		plan.Groups[c] = groups

		cond, err := filter.NewPattern(category.Names(c), retrievalPatterns(c, groups))
		if err != nil {
			return Plan{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidQuery, c, err)
		}
		conds = append(conds, cond)
	}

	exclusions, err := exclusionConditions(exclude)
	if err != nil {
		return Plan{}, err
	}

	if plan.Strict, err = filter.NewExpression(conds, nil, exclusions); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	if plan.HasRelaxed() {
		if plan.Relaxed, err = filter.NewExpression(nil, conds, exclusions); err != nil {
			return Plan{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
	}
	return plan, nil
}

func (b *Builder) groups(c intent.Category, terms []string) []TermGroup {
	out := make([]TermGroup, 0, len(terms))
	for _, t := range terms {
		out = append(out, TermGroup{Term: t, Variants: b.variants(c, t)})
	}
	return out
}

func (b *Builder) variants(c intent.Category, term string) []string {
	switch c {
	case intent.Name:
		return []string{term}
	case intent.Locations, intent.Education, intent.Companies:
		return category.Synonyms(c, term)
	default:
		if b.expander == nil {
			return []string{term}
		}
		if v := b.expander.Expand(term); len(v) > 0 {
			return v
		}
		return []string{term}
	}
}

// retrievalPatterns flattens the variants of all groups. Names also
// contribute their longer parts so "Asha V." is retrieved for "asha verma".
func retrievalPatterns(c intent.Category, groups []TermGroup) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok || p == "" {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, g := range groups {
		for _, v := range g.Variants {
			add(v)
		}
		if c == intent.Name {
			for _, part := range NameTokens(g.Term) {
				add(part)
			}
		}
	}
	return out
}

// NameTokens returns the parts of a name long enough to be meaningful on their own.
func NameTokens(name string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '.' || r == ',' || r == '-' || r == '\''
	}) {
		if len([]rune(w)) >= minNameToken {
			out = append(out, w)
		}
	}
	return out
}

// exclusionConditions excludes emails on both the primary and linked email tags.
func exclusionConditions(emails []string) ([]filter.Condition, error) {
	conds, err := filter.NewExclusions([]string{category.TagEmail, category.TagEmails}, emails)
	if err != nil {
		return nil, fmt.Errorf("%w: exclusion: %w", domain.ErrInvalidQuery, err)
	}
	return conds, nil
}
