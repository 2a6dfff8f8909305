package filter

import (
	"fmt"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// MaxValuesPerCondition bounds the fields, patterns or match values of one condition.
const MaxValuesPerCondition = 512

// Expression is a structured filter with must/should/must_not boolean semantics.
// A document matches when every must condition holds, at least one should
// condition holds (if any are given), and no must_not condition holds.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Condition is a single filter clause: either a case-insensitive pattern match
// over several text fields, or an exact match of a tag field against a value set.
type Condition struct {
	fields   []string
	patterns []string
	key      string
	values   []string
}

// NewPattern creates a condition that holds when any field matches any
// pattern on word boundaries, ignoring case (see MatchTerm).
func NewPattern(fields, patterns []string) (Condition, error) {
	if len(fields) == 0 {
		return Condition{}, fmt.Errorf("pattern condition needs at least one field")
	}
	ps := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return Condition{}, fmt.Errorf("pattern condition needs at least one pattern")
	}
	if len(fields) > MaxValuesPerCondition || len(ps) > MaxValuesPerCondition {
		return Condition{}, fmt.Errorf("pattern condition too large (max %d)", MaxValuesPerCondition)
	}
	return Condition{fields: fields, patterns: ps}, nil
}

// NewMatch creates an exact tag match condition against any of values.
func NewMatch(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	vs := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			vs = append(vs, v)
		}
	}
	if len(vs) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	if len(vs) > MaxValuesPerCondition {
		return Condition{}, fmt.Errorf("too many match values for key %q (max %d)", key, MaxValuesPerCondition)
	}
	return Condition{key: key, values: vs}, nil
}

// NewExclusions builds match conditions for values on every key, split so
// that no condition exceeds MaxValuesPerCondition. Used as must_not clauses.
func NewExclusions(keys, values []string) ([]Condition, error) {
	if len(values) == 0 {
		return nil, nil
	}
	var out []Condition
	for start := 0; start < len(values); start += MaxValuesPerCondition {
		chunk := values[start:min(start+MaxValuesPerCondition, len(values))]
		for _, k := range keys {
			c, err := NewMatch(k, chunk...)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// Fields returns the fields of a pattern condition.
func (c Condition) Fields() []string { return c.fields }

// Patterns returns the lower-cased patterns of a pattern condition.
func (c Condition) Patterns() []string { return c.patterns }

// Key returns the tag field of a match condition.
func (c Condition) Key() string { return c.key }

// Values returns the accepted values of a match condition.
func (c Condition) Values() []string { return c.values }

// IsPattern reports whether this is a pattern condition.
func (c Condition) IsPattern() bool { return len(c.patterns) > 0 }

// IsMatch reports whether this is a tag match condition.
func (c Condition) IsMatch() bool { return c.key != "" }

// Eval reports whether the condition holds for a document whose attribute
// values are returned by get.
func (c Condition) Eval(get func(field string) []string) bool {
	if c.IsMatch() {
		for _, have := range get(c.key) {
			for _, want := range c.values {
				if strings.EqualFold(have, want) {
					return true
				}
			}
		}
		return false
	}
	want := make([][]string, len(c.patterns))
	for i, p := range c.patterns {
		want[i] = Tokens(p)
	}
	for _, f := range c.fields {
		for _, v := range get(f) {
			have := Tokens(v)
			for _, w := range want {
				if matchTokens(have, w) {
					return true
				}
			}
		}
	}
	return false
}

// Eval reports whether the whole expression holds for a document.
func (e Expression) Eval(get func(field string) []string) bool {
	for _, c := range e.must {
		if !c.Eval(get) {
			return false
		}
	}
	if len(e.should) > 0 {
		matched := false
		for _, c := range e.should {
			if c.Eval(get) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, c := range e.mustNot {
		if c.Eval(get) {
			return false
		}
	}
	return true
}
