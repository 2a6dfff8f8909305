package extract

import (
	"regexp"
	"strings"

	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
)

// maxNameWords bounds how many words a captured person name may have.
const maxNameWords = 4

// namePatterns capture the person in "who is X" style questions.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:who is|who's|whos)\s+(.+)$`),
	regexp.MustCompile(`^(?:tell me more about|tell me about|information about|info on)\s+(.+)$`),
	regexp.MustCompile(`^(?:do you know about|do you know|have you heard of|know about)\s+(.+)$`),
	regexp.MustCompile(`^(?:connect me (?:with|to)|profile of|details of|contact of|contact for)\s+(.+)$`),
	regexp.MustCompile(`^(?:find|search for|look up|lookup)\s+(?:the\s+)?(?:profile|person|alumnus|alumna|alum)\s+(?:named|called)\s+(.+)$`),
	regexp.MustCompile(`^(.+?)(?:'s|s') profile$`),
}

var nameChars = regexp.MustCompile(`^[\p{L}][\p{L}.' ]*$`)

var stopwords = toSet(
	"a", "an", "the", "in", "at", "on", "of", "for", "from", "to", "with", "and", "or",
	"who", "whos", "is", "are", "am", "be", "any", "some", "me", "my", "i", "we", "you",
	"do", "does", "know", "find", "search", "looking", "look", "show", "give", "get",
	"want", "need", "please", "pls", "can", "could", "would", "someone", "somebody",
	"people", "person", "persons", "profiles", "profile", "alumni", "alumnus", "anyone",
	"working", "works", "work", "based", "living", "lives", "near", "around", "there",
	"here", "hi", "hello", "hey", "thanks", "thank", "ok", "okay", "about", "tell",
	"connect", "help", "who's", "what", "which", "where", "that", "this", "into", "like",
	"yatri", "yatris", "jagriti", "yatra", "expert", "experts", "specialist", "specialists",
	"folks", "guys", "experienced", "good", "best", "top",
)

// ruleExtractor is the deterministic fallback used when the model path fails.
type ruleExtractor struct {
	vocab *vocabulary
}

func newRuleExtractor(v *vocabulary) *ruleExtractor {
	return &ruleExtractor{vocab: v}
}

// extract reads categories from the vocabulary and, failing that, a person
// name from the name patterns. Words next to vocabulary phrases that are
// neither stopwords nor part of a phrase are kept as keywords, so
// "kubernetes experts in pune" still searches for kubernetes. It returns an
// empty intent when nothing is found.
func (r *ruleExtractor) extract(text string) intent.Intent {
	in := intent.New()
	in.Source = intent.SourceRules
	in.Confidence = intent.ConfidenceMedium

	text = strings.Trim(strings.TrimSpace(text), "?!. ")
	tokens := tokenize(text)

	found, used := r.vocab.scan(tokens)
	for _, e := range found {
		in.Add(e.category, e.term)
	}
	if in.HasCategoryTerms() {
		for i, t := range tokens {
			if !used[i] && isKeyword(t) {
				in.Add(intent.Keywords, t)
			}
		}
		return in
	}

	if name, ok := r.personName(text); ok {
		in.Add(intent.Name, name)
	}
	return in
}

// personName applies the name patterns. Captures that contain a vocabulary
// phrase are rejected: "who is a lawyer in delhi" is a category search.
func (r *ruleExtractor) personName(text string) (string, bool) {
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(strings.Trim(m[1], "?!.,"))
		words := strings.Fields(name)
		if len(words) == 0 || len(words) > maxNameWords || !nameChars.MatchString(name) {
			continue
		}
		if r.vocab.contains(tokenize(name)) || allStopwords(words) {
			continue
		}
		return name, true
	}
	return "", false
}

// keywords is the last-resort extraction: every non-stopword token.
func keywords(text string) intent.Intent {
	in := intent.New()
	in.Source = intent.SourceKeywords
	in.Confidence = intent.ConfidenceLow
	for _, t := range tokenize(text) {
		if isKeyword(t) {
			in.Add(intent.Keywords, t)
		}
	}
	return in
}

func isKeyword(t string) bool {
	if len([]rune(t)) < 2 {
		return false
	}
	_, stop := stopwords[t]
	return !stop
}

func allStopwords(words []string) bool {
	for _, w := range words {
		if _, ok := stopwords[w]; !ok {
			return false
		}
	}
	return true
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
