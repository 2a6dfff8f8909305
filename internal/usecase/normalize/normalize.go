// Package normalize canonicalizes user messages before intent extraction.
//
// Pipeline order:
//  1. drop invalid UTF-8
//  2. NFKC, case folding, strip combining marks and format characters, width folding
//  3. collapse whitespace
//  4. replace known misspellings at word boundaries
//
// Steps 2-4 form one pass. A single pass is not always stable: stripping a
// mark can expose a new composition, and some scripts fold back and forth.
// Normalize repeats the pass until the text stops changing. When it cycles
// instead, the smallest member of the cycle is returned, so
// Normalize(Normalize(s)) == Normalize(s) for every s.
package normalize

import (
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// maxPasses bounds the fixpoint iteration.
const maxPasses = 8

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Normalizer is safe for concurrent use.
type Normalizer struct {
	typos     map[string]string
	typoRe    *regexp.Regexp
	expansion map[string][]string
}

// New constructs a Normalizer with the built-in dictionaries.
func New() *Normalizer {
	return NewWith(defaultTypos, defaultExpansions)
}

// NewWith constructs a Normalizer from custom dictionaries. Keys are matched
// case-insensitively. Expansion clusters are keyed by every member.
func NewWith(typos map[string]string, clusters [][]string) *Normalizer {
	n := &Normalizer{
		typos:     make(map[string]string, len(typos)),
		expansion: make(map[string][]string),
	}
	keys := make([]string, 0, len(typos))
	for k, v := range typos {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" || v == "" || k == v {
			continue
		}
		n.typos[k] = v
		keys = append(keys, k)
	}
	if len(keys) > 0 {
		// longest first so multi-word misspellings win over their parts
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = regexp.QuoteMeta(k)
		}
		n.typoRe = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	for _, c := range clusters {
		cluster := make([]string, 0, len(c))
		for _, t := range c {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				cluster = append(cluster, t)
			}
		}
		for _, t := range cluster {
			if _, ok := n.expansion[t]; !ok {
				n.expansion[t] = cluster
			}
		}
	}
	return n
}

// Normalize returns the canonical form of s.
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	hist := []string{n.pass(strings.ToValidUTF8(s, ""))}
	for len(hist) <= maxPasses {
		next := n.pass(hist[len(hist)-1])
		if i := slices.Index(hist, next); i >= 0 {
			return slices.Min(hist[i:])
		}
		hist = append(hist, next)
	}
	return hist[len(hist)-1]
}

func (n *Normalizer) pass(s string) string {
	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = strings.ToLower(s)
	}

	ns = strings.Join(strings.Fields(ns), " ")
	if n.typoRe != nil {
		ns = n.typoRe.ReplaceAllStringFunc(ns, func(m string) string { return n.typos[m] })
	}
	return ns
}

// Expand returns term followed by the related terms of its domain cluster.
// Terms outside every cluster expand to themselves.
func (n *Normalizer) Expand(term string) []string {
	term = n.Normalize(term)
	if term == "" {
		return nil
	}
	out := []string{term}
	for _, t := range n.expansion[term] {
		if t != term {
			out = append(out, t)
		}
	}
	return out
}
