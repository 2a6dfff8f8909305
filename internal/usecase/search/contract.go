package search

import (
	"context"
	"time"

	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
	"github.com/jagritiyatra/alumnidex/internal/domain/session"
	"github.com/jagritiyatra/alumnidex/internal/usecase/extract"
	"github.com/jagritiyatra/alumnidex/internal/usecase/query"
	"github.com/jagritiyatra/alumnidex/internal/usecase/retrieve"
)

// Normalizer cleans raw message text.
type Normalizer interface {
	Normalize(text string) string
}

// Extractor reads an Intent from a normalized message.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) intent.Intent
	IsContinuation(text string) bool
}

// Planner compiles an Intent into store filters.
type Planner interface {
	Build(in intent.Intent, exclude []string) (query.Plan, error)
}

// Retriever fetches candidates for a plan.
type Retriever interface {
	Retrieve(ctx context.Context, plan *query.Plan) (retrieve.Outcome, error)
}

// Ranker scores, orders and verifies candidates.
type Ranker interface {
	Rank(cands []result.Candidate, plan *query.Plan) []result.Candidate
}

// SessionStore keeps per-user search context. LoadState returns an empty
// state for an unknown user.
type SessionStore interface {
	LoadState(ctx context.Context, userKey string) (*session.State, error)
	SaveState(ctx context.Context, userKey string, st *session.State) error
}

// Sampler picks a few profiles to suggest when nothing matched.
type Sampler interface {
	Sample(ctx context.Context, limit int, exclude []string) ([]*profile.Profile, error)
}

// Enricher writes match notes for visible candidates.
type Enricher interface {
	Notes(ctx context.Context, request string, cands []result.Candidate) map[string]string
}

// SelfResolver maps a user key to the user's own profile email, if known.
type SelfResolver interface {
	SelfEmail(ctx context.Context, userKey string) string
}

// Recorder observes turn outcomes.
type Recorder interface {
	RecordTurn(kind string, d time.Duration)
	RecordCandidates(stage string, n int)
}
