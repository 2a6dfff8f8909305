package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jagritiyatra/alumnidex/internal/domain"
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/logger"
)

// DefaultTimeout bounds the model call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Request is one message to interpret.
type Request struct {
	Text     string
	History  []string
	Previous *intent.Intent
}

// Extractor turns a normalized message into an Intent. It never fails:
// model errors fall back to rules, and rules fall back to bare keywords.
type Extractor struct {
	llm     Completer
	timeout time.Duration
	rules   *ruleExtractor
	cont    *Continuation
	obs     Observer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel enables the language-model path with the given per-call timeout.
func WithModel(c Completer, timeout time.Duration) Option {
	return func(e *Extractor) {
		e.llm = c
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithContinuation replaces the continuation classifier.
func WithContinuation(c *Continuation) Option {
	return func(e *Extractor) { e.cont = c }
}

// WithObserver records the extraction path of every call.
func WithObserver(o Observer) Option {
	return func(e *Extractor) { e.obs = o }
}

// New creates an Extractor. Without WithModel only the rule path runs.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		timeout: DefaultTimeout,
		rules:   newRuleExtractor(newVocabulary(defaultVocabulary, defaultAliases)),
		cont:    NewContinuation(nil),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// IsContinuation reports whether text only asks for more results.
func (e *Extractor) IsContinuation(text string) bool {
	return e.cont.Is(text)
}

// Extract interprets req.Text. The previous intent is reused only for a bare
// continuation request.
func (e *Extractor) Extract(ctx context.Context, req Request) intent.Intent {
	if e.cont.Is(req.Text) && req.Previous != nil && !req.Previous.IsEmpty() {
		prev := *req.Previous
		prev.Source = intent.SourcePrevious
		return e.done(prev)
	}

	if e.llm != nil {
		in, err := e.fromModel(ctx, req)
		if err == nil && !in.IsEmpty() {
			return e.done(in)
		}
		if err != nil {
			logger.FromContext(ctx).Warn("intent extraction fell back to rules", zap.Error(err))
		}
	}

	if in := e.rules.extract(req.Text); !in.IsEmpty() {
		return e.done(in)
	}
	return e.done(keywords(req.Text))
}

func (e *Extractor) done(in intent.Intent) intent.Intent {
	in.Normalize()
	if e.obs != nil {
		e.obs.RecordExtraction(string(in.Source))
	}
	return in
}

func (e *Extractor) fromModel(ctx context.Context, req Request) (intent.Intent, error) {
	timeout := e.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return intent.Intent{}, fmt.Errorf("%w: no time left for model call", domain.ErrExtractionFailed)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := e.llm.CompleteJSON(ctx, systemPrompt, userPrompt(req.Text, req.History))
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return intent.Intent{}, err
		}
		return intent.Intent{}, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	in, err := parseModelIntent(raw)
	if err != nil {
		return intent.Intent{}, err
	}
	return e.resolveName(in), nil
}

// resolveName applies the role-over-name tie-break to model output: a
// "person name" that is really a vocabulary phrase becomes category terms.
func (e *Extractor) resolveName(in intent.Intent) intent.Intent {
	if !in.IsNameSearch {
		return in
	}
	matches := e.rules.vocab.match(tokenize(in.PersonName))
	if len(matches) == 0 {
		return in
	}
	in.IsNameSearch = false
	in.PersonName = ""
	for _, m := range matches {
		in.Add(m.category, m.term)
	}
	return in
}

type modelIntent struct {
	IsNameSearch bool     `json:"is_name_search"`
	PersonName   string   `json:"person_name"`
	Skills       []string `json:"skills"`
	Locations    []string `json:"locations"`
	Companies    []string `json:"companies"`
	Roles        []string `json:"roles"`
	Education    []string `json:"education"`
	Keywords     []string `json:"keywords"`
	Confidence   *float64 `json:"confidence"`
}

// parseModelIntent decodes model output, tolerating code fences and prose
// around the JSON object. Missing fields are empty.
func parseModelIntent(raw string) (intent.Intent, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return intent.Intent{}, fmt.Errorf("%w: no JSON object in model output", domain.ErrExtractionFailed)
	}

	var m modelIntent
	if err := json.Unmarshal([]byte(text[start:end+1]), &m); err != nil {
		return intent.Intent{}, fmt.Errorf("%w: decode model output: %w", domain.ErrExtractionFailed, err)
	}

	in := intent.New()
	in.Source = intent.SourceModel
	in.Confidence = intent.ConfidenceHigh
	if m.Confidence != nil && *m.Confidence >= 0 && *m.Confidence <= 1 {
		in.Confidence = *m.Confidence
	}
	if m.IsNameSearch {
		in.Add(intent.Name, m.PersonName)
	}
	for c, terms := range map[intent.Category][]string{
		intent.Skills:    m.Skills,
		intent.Locations: m.Locations,
		intent.Companies: m.Companies,
		intent.Roles:     m.Roles,
		intent.Education: m.Education,
		intent.Keywords:  m.Keywords,
	} {
		for _, t := range terms {
			in.Add(c, t)
		}
	}
	return in, nil
}
