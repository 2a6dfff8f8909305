// Package app is the composition root: it wires a store, the language-model
// client and the search pipeline into ready services.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jagritiyatra/alumnidex/internal/config"
	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/metrics"
	profilerepo "github.com/jagritiyatra/alumnidex/internal/repository/profile"
	sessionrepo "github.com/jagritiyatra/alumnidex/internal/repository/session"
	"github.com/jagritiyatra/alumnidex/internal/transport/openai"
	"github.com/jagritiyatra/alumnidex/internal/usecase/enrich"
	"github.com/jagritiyatra/alumnidex/internal/usecase/extract"
	"github.com/jagritiyatra/alumnidex/internal/usecase/format"
	healthuc "github.com/jagritiyatra/alumnidex/internal/usecase/health"
	"github.com/jagritiyatra/alumnidex/internal/usecase/normalize"
	"github.com/jagritiyatra/alumnidex/internal/usecase/paginate"
	"github.com/jagritiyatra/alumnidex/internal/usecase/query"
	"github.com/jagritiyatra/alumnidex/internal/usecase/rank"
	"github.com/jagritiyatra/alumnidex/internal/usecase/retrieve"
	searchuc "github.com/jagritiyatra/alumnidex/internal/usecase/search"
)

// Params are the inputs of Build. Store is required; LLM nil disables the
// model path. Self is optional.
type Params struct {
	Store  db.Store
	Prefix string
	LLM    *config.LLMConfig
	Search config.SearchConfig
	Self   searchuc.SelfResolver
	Logger *zap.Logger
}

// App holds the wired services.
type App struct {
	Search   *searchuc.Service
	Profiles *profilerepo.Repo
	Health   *healthuc.Service

	enricher *enrich.Enricher
}

// Build wires the pipeline over p.Store and makes sure the profile index
// exists. p.Search must already carry defaults.
func Build(ctx context.Context, p Params) (*App, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics.Register()

	profiles := profilerepo.New(p.Store, p.Prefix)
	if err := profiles.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure profile index: %w", err)
	}

	sc := p.Search
	sessions := sessionrepo.New(p.Store, p.Prefix,
		seconds(sc.SessionTTLSec), seconds(sc.OverflowTTLSec), metrics.SessionCacheTotal)

	recorder := metrics.SearchRecorder{}
	extractOpts := []extract.Option{
		extract.WithContinuation(extract.NewContinuation(sc.ContinuationWords)),
		extract.WithObserver(recorder),
	}

	a := &App{Profiles: profiles}
	var modelHealth healthuc.ModelChecker
	var enricher searchuc.Enricher
	if p.LLM != nil && p.LLM.Enabled {
		client := openai.NewClient(&openai.Config{
			APIKey:  p.LLM.APIKey,
			BaseURL: p.LLM.BaseURL,
			Model:   p.LLM.Model,
			Logger:  log,
		})
		extractOpts = append(extractOpts,
			extract.WithModel(client, time.Duration(p.LLM.TimeoutMs)*time.Millisecond))
		modelHealth = client

		if p.LLM.Enrich {
			e, err := enrich.New(client, p.LLM.PoolSize)
			if err != nil {
				return nil, fmt.Errorf("enrichment pool: %w", err)
			}
			a.enricher = e
			enricher = e
		}
		log.Info("language model enabled",
			zap.String("model", p.LLM.Model),
			zap.Bool("enrich", p.LLM.Enrich),
		)
	}

	norm := normalize.New()
	moreWord := "more"
	if len(sc.ContinuationWords) > 0 {
		moreWord = sc.ContinuationWords[0]
	}
	sample := 0
	if sc.SuggestionSample != nil {
		sample = *sc.SuggestionSample
	}

	a.Search = searchuc.New(searchuc.Deps{
		Normalizer: norm,
		Extractor:  extract.New(extractOpts...),
		Planner:    query.NewBuilder(norm),
		Retriever:  retrieve.New(profiles, sc.MaxCandidates, sc.MinStrictResults),
		Ranker:     rank.NewScorer(Weights(sc.Weights), sc.MinScore),
		Pager:      paginate.New(sessions, sc.PageSize, seconds(sc.OverflowTTLSec)),
		Formatter:  format.New(sc.ReplyCeiling, moreWord),
		Sessions:   sessions,
		Sampler:    profiles,
		Enricher:   enricher,
		Self:       p.Self,
		Recorder:   recorder,
	}, searchuc.Settings{
		TurnTimeout:      seconds(sc.TurnTimeoutSec),
		EnrichTimeout:    time.Duration(sc.EnrichTimeoutMs) * time.Millisecond,
		SuggestionSample: sample,
		MaxQueryRunes:    sc.MaxQueryRunes,
	})
	a.Health = healthuc.New(p.Store, modelHealth)

	return a, nil
}

// Close releases the enrichment pool. The store belongs to the caller.
func (a *App) Close() {
	if a.enricher != nil {
		a.enricher.Release()
	}
}

// Weights overlays the non-zero configured weights on the defaults.
func Weights(c config.WeightsConfig) rank.Weights {
	w := rank.DefaultWeights()
	set := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	set(&w.NameExact, c.NameExact)
	set(&w.NamePartial, c.NamePartial)
	set(&w.NameToken, c.NameToken)
	set(&w.Skill, c.Skill)
	set(&w.Location, c.Location)
	set(&w.Education, c.Education)
	set(&w.Company, c.Company)
	set(&w.Role, c.Role)
	set(&w.Keyword, c.Keyword)
	set(&w.Completeness, c.Completeness)
	return w
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
