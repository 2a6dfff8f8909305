// Package search runs one chat turn: normalize, extract, plan, retrieve,
// rank, paginate and render.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jagritiyatra/alumnidex/internal/domain"
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
	"github.com/jagritiyatra/alumnidex/internal/domain/session"
	"github.com/jagritiyatra/alumnidex/internal/logger"
	"github.com/jagritiyatra/alumnidex/internal/usecase/extract"
	"github.com/jagritiyatra/alumnidex/internal/usecase/format"
	"github.com/jagritiyatra/alumnidex/internal/usecase/paginate"
	"github.com/jagritiyatra/alumnidex/internal/usecase/retrieve"
)

// Defaults for Settings.
const (
	DefaultTurnTimeout      = 45 * time.Second
	DefaultEnrichTimeout    = 8 * time.Second
	DefaultSuggestionSample = 3
	DefaultMaxQueryRunes    = 500
)

// persistTimeout bounds session writes, which run even after the turn deadline.
const persistTimeout = 2 * time.Second

// Settings tunes a Service.
type Settings struct {
	TurnTimeout      time.Duration
	EnrichTimeout    time.Duration
	SuggestionSample int
	MaxQueryRunes    int
}

func (c *Settings) applyDefaults() {
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = DefaultTurnTimeout
	}
	if c.EnrichTimeout <= 0 {
		c.EnrichTimeout = DefaultEnrichTimeout
	}
	if c.SuggestionSample < 0 {
		c.SuggestionSample = 0
	}
	if c.MaxQueryRunes <= 0 {
		c.MaxQueryRunes = DefaultMaxQueryRunes
	}
}

// Deps are the collaborators of a Service. Sampler, Enricher, Self and
// Recorder are optional.
type Deps struct {
	Normalizer Normalizer
	Extractor  Extractor
	Planner    Planner
	Retriever  Retriever
	Ranker     Ranker
	Pager      *paginate.Paginator
	Formatter  *format.Formatter
	Sessions   SessionStore
	Sampler    Sampler
	Enricher   Enricher
	Self       SelfResolver
	Recorder   Recorder
}

// Service answers search and "show more" turns. It never returns errors:
// every failure becomes a reply. Safe for concurrent use; one user's turns
// are expected to arrive sequentially.
type Service struct {
	norm      Normalizer
	extractor Extractor
	planner   Planner
	retriever Retriever
	ranker    Ranker
	pager     *paginate.Paginator
	fmt       *format.Formatter
	sessions  SessionStore
	sampler   Sampler
	enricher  Enricher
	self      SelfResolver
	rec       Recorder
	cfg       Settings
}

// New creates a search service.
func New(d Deps, cfg Settings) *Service {
	cfg.applyDefaults()
	return &Service{
		norm:      d.Normalizer,
		extractor: d.Extractor,
		planner:   d.Planner,
		retriever: d.Retriever,
		ranker:    d.Ranker,
		pager:     d.Pager,
		fmt:       d.Formatter,
		sessions:  d.Sessions,
		sampler:   d.Sampler,
		enricher:  d.Enricher,
		self:      d.Self,
		rec:       d.Recorder,
		cfg:       cfg,
	}
}

// turn collects the numbers reported by the canonical log line.
type turn struct {
	start                     time.Time
	path                      intent.Source
	strict, relaxed, verified int
}

// Search answers a free-text message. A bare continuation ("more", "show
// more") is served from the stored overflow batch.
func (s *Service) Search(ctx context.Context, text, userKey string) (reply Reply) {
	t := &turn{start: time.Now()}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TurnTimeout)
	defer cancel()
	defer s.finish(ctx, userKey, t, &reply)

	normalized := s.norm.Normalize(text)
	if normalized == "" || utf8.RuneCountInString(normalized) > s.cfg.MaxQueryRunes {
		return s.help()
	}

	st := s.loadState(ctx, userKey)
	if s.extractor.IsContinuation(normalized) {
		return s.continueSearch(ctx, userKey, normalized, st, t)
	}

	if normalized != st.Topic {
		st.Reset(normalized)
		if err := s.pager.Discard(ctx, userKey); err != nil {
			logger.FromContext(ctx).Warn("discard previous batch", zap.Error(err))
		}
	}

	in := s.extractor.Extract(ctx, extract.Request{Text: normalized, History: st.RecentTurns})
	t.path = in.Source
	st.Remember(normalized)
	defer s.saveState(ctx, userKey, st)

	if in.IsEmpty() {
		return s.help()
	}
	st.Intent = &in
	return s.fresh(ctx, userKey, text, in, st, t, false)
}

// ShowMore renders the next page of the user's overflow batch. It never
// searches again.
func (s *Service) ShowMore(ctx context.Context, userKey string) (reply Reply) {
	t := &turn{start: time.Now(), path: intent.SourcePrevious}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TurnTimeout)
	defer cancel()
	defer s.finish(ctx, userKey, t, &reply)

	st := s.loadState(ctx, userKey)
	reply = s.more(ctx, userKey, st)
	if reply.Kind == KindResults {
		s.saveState(ctx, userKey, st)
	}
	return reply
}

// continueSearch serves "more" from the batch, or, when the batch is gone,
// re-runs the previous intent without the profiles already shown.
func (s *Service) continueSearch(
	ctx context.Context, userKey, normalized string, st *session.State, t *turn,
) Reply {
	t.path = intent.SourcePrevious
	reply := s.more(ctx, userKey, st)
	if reply.Kind != KindNoPrevious || st.Intent == nil || st.Intent.IsEmpty() {
		if reply.Kind == KindResults {
			s.saveState(ctx, userKey, st)
		}
		return reply
	}

	in := s.extractor.Extract(ctx, extract.Request{Text: normalized, Previous: st.Intent})
	t.path = in.Source
	reply = s.fresh(ctx, userKey, st.Topic, in, st, t, true)
	s.saveState(ctx, userKey, st)
	return reply
}

// fresh runs the query pipeline for in and renders the first page.
func (s *Service) fresh(
	ctx context.Context, userKey, request string, in intent.Intent, st *session.State, t *turn, continued bool,
) Reply {
	log := logger.FromContext(ctx)
	exclude := s.exclusions(ctx, userKey, st)

	plan, err := s.planner.Build(in, exclude)
	if errors.Is(err, domain.ErrInvalidQuery) {
		return s.help()
	}
	if err != nil {
		return s.failure(ctx, fmt.Errorf("build query: %w", err))
	}

	out, err := s.retriever.Retrieve(ctx, &plan)
	if errors.Is(err, domain.ErrStoreUnavailable) {
		log.Warn("profile store unavailable", zap.Error(err))
		return Reply{Kind: KindUnavailable, Text: s.fmt.Unavailable()}
	}
	if err != nil {
		return s.failure(ctx, fmt.Errorf("retrieve: %w", err))
	}

	verified := s.ranker.Rank(out.Candidates, &plan)
	t.strict, t.relaxed, t.verified = out.Strict, out.Relaxed, len(verified)
	s.recordCandidates(out, len(verified))

	if len(verified) == 0 {
		s.discard(ctx, userKey)
		if continued {
			return Reply{Kind: KindExhausted, Text: s.fmt.Exhausted()}
		}
		return Reply{Kind: KindNoResults, Text: s.fmt.NoResults(in.Summary(), s.sample(ctx, exclude))}
	}

	header := format.Header(&in)
	if continued {
		header = format.MoreHeader(st.Topic)
	}
	page, rest := s.pager.Split(verified)
	text, shown, rest := s.render(ctx, header, request, page, rest)
	if continued && len(rest) == 0 {
		text = s.fmt.Closing(text)
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()
	if err := s.pager.Start(pctx, userKey, st.Topic, rest); err != nil {
		log.Warn("store overflow batch", zap.Error(err))
	}

	st.MarkShown(emails(shown)...)
	return Reply{Kind: KindResults, Text: text, Shown: emails(shown), Remaining: len(rest)}
}

// more pops the next page from the overflow batch.
func (s *Service) more(ctx context.Context, userKey string, st *session.State) Reply {
	o, err := s.pager.Load(ctx, userKey)
	if errors.Is(err, domain.ErrNoPreviousSearch) {
		return Reply{Kind: KindNoPrevious, Text: s.fmt.NoPrevious()}
	}
	if err != nil {
		logger.FromContext(ctx).Warn("load overflow batch", zap.Error(err))
		return Reply{Kind: KindUnavailable, Text: s.fmt.Unavailable()}
	}

	cands := unseen(o.Candidates(), st)
	if len(cands) == 0 {
		s.discard(ctx, userKey)
		return Reply{Kind: KindExhausted, Text: s.fmt.Exhausted()}
	}

	page, rest := s.pager.Split(cands)
	text, shown, rest := s.render(ctx, format.MoreHeader(o.Topic), o.Topic, page, rest)
	if len(rest) == 0 {
		text = s.fmt.Closing(text)
	}

	pctx, cancel := s.persistCtx(ctx)
	defer cancel()
	if err := s.pager.Continue(pctx, userKey, o, rest); err != nil {
		logger.FromContext(ctx).Warn("store overflow batch", zap.Error(err))
	}

	st.MarkShown(emails(shown)...)
	return Reply{Kind: KindResults, Text: text, Shown: emails(shown), Remaining: len(rest)}
}

// render formats page and returns the text, the rendered candidates and the
// new remainder: whatever did not fit goes back in front of rest.
func (s *Service) render(
	ctx context.Context, header, request string, page, rest []result.Candidate,
) (string, []result.Candidate, []result.Candidate) {
	var notes map[string]string
	if s.enricher != nil {
		ectx, cancel := context.WithTimeout(ctx, s.cfg.EnrichTimeout)
		notes = s.enricher.Notes(ectx, request, page)
		cancel()
	}

	entries := make([]format.Entry, len(page))
	for i, c := range page {
		entries[i] = format.Entry{Candidate: c, Note: notes[c.Email()]}
	}
	text, n := s.fmt.Results(header, entries, len(rest))

	left := make([]result.Candidate, 0, len(page)-n+len(rest))
	left = append(left, page[n:]...)
	left = append(left, rest...)
	return text, page[:n], left
}

func (s *Service) exclusions(ctx context.Context, userKey string, st *session.State) []string {
	out := slices.Clone(st.Shown)
	var self string
	if s.self != nil {
		self = s.self.SelfEmail(ctx, userKey)
	} else if strings.Contains(userKey, "@") {
		self = userKey
	}
	if self = profile.NormalizeEmail(self); self != "" && !st.WasShown(self) {
		out = append(out, self)
	}
	return out
}

func (s *Service) sample(ctx context.Context, exclude []string) []*profile.Profile {
	if s.sampler == nil || s.cfg.SuggestionSample == 0 {
		return nil
	}
	ps, err := s.sampler.Sample(ctx, s.cfg.SuggestionSample, exclude)
	if err != nil {
		logger.FromContext(ctx).Debug("suggestion sample failed", zap.Error(err))
		return nil
	}
	return ps
}

func (s *Service) discard(ctx context.Context, userKey string) {
	pctx, cancel := s.persistCtx(ctx)
	defer cancel()
	if err := s.pager.Discard(pctx, userKey); err != nil {
		logger.FromContext(ctx).Warn("discard overflow batch", zap.Error(err))
	}
}

func (s *Service) loadState(ctx context.Context, userKey string) *session.State {
	st, err := s.sessions.LoadState(ctx, userKey)
	if err != nil {
		logger.FromContext(ctx).Warn("load session, starting fresh", zap.Error(err))
		return &session.State{}
	}
	if st == nil {
		return &session.State{}
	}
	return st
}

func (s *Service) saveState(ctx context.Context, userKey string, st *session.State) {
	st.UpdatedAt = time.Now()
	pctx, cancel := s.persistCtx(ctx)
	defer cancel()
	if err := s.sessions.SaveState(pctx, userKey, st); err != nil {
		logger.FromContext(ctx).Warn("save session", zap.Error(err))
	}
}

// persistCtx detaches writes from the turn deadline so a slow turn still
// records what it showed.
func (s *Service) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func (s *Service) help() Reply {
	return Reply{Kind: KindHelp, Text: s.fmt.Help()}
}

func (s *Service) failure(ctx context.Context, err error) Reply {
	logger.FromContext(ctx).Error("search turn failed", zap.Error(err))
	return Reply{Kind: KindFailure, Text: s.fmt.Failure()}
}

// finish converts a panic into a failure reply and writes the canonical
// search_turn line.
func (s *Service) finish(ctx context.Context, userKey string, t *turn, reply *Reply) {
	log := logger.FromContext(ctx)
	if r := recover(); r != nil {
		log.Error("search turn panicked", zap.Any("panic", r), zap.Stack("stack"))
		*reply = Reply{Kind: KindFailure, Text: s.fmt.Failure()}
	}
	d := time.Since(t.start)
	if s.rec != nil {
		s.rec.RecordTurn(string(reply.Kind), d)
	}
	log.Info("search_turn",
		logger.UserKey(userKey),
		zap.String("kind", string(reply.Kind)),
		zap.String("path", string(t.path)),
		zap.Int("strict", t.strict),
		zap.Int("relaxed", t.relaxed),
		zap.Int("verified", t.verified),
		zap.Int("shown", len(reply.Shown)),
		zap.Int("remaining", reply.Remaining),
		zap.Duration("duration", d),
	)
}

func (s *Service) recordCandidates(out retrieve.Outcome, verified int) {
	if s.rec == nil {
		return
	}
	s.rec.RecordCandidates("strict", out.Strict)
	s.rec.RecordCandidates("relaxed", out.Relaxed)
	s.rec.RecordCandidates("verified", verified)
}

func unseen(cands []result.Candidate, st *session.State) []result.Candidate {
	out := cands[:0]
	for _, c := range cands {
		if !st.WasShown(c.Email()) {
			out = append(out, c)
		}
	}
	return out
}

func emails(cands []result.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Email()
	}
	return out
}
