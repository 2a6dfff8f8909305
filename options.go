package alumnidex

import (
	"context"

	"go.uber.org/zap"

	"github.com/jagritiyatra/alumnidex/internal/config"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	db     config.DatabaseConfig
	llm    *config.LLMConfig
	search config.SearchConfig
	self   SelfResolverFunc
	logger *zap.Logger
}

// WithRedis connects to Redis Stack (RediSearch + RedisJSON).
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.db.Driver = config.DriverRedis
		c.db.Addrs = addrs
		c.db.Password = password
	}
}

// WithEmbedded uses the in-process store. An empty path keeps everything in memory.
func WithEmbedded(path string) Option {
	return func(c *clientConfig) {
		c.db.Driver = config.DriverEmbedded
		c.db.Path = path
	}
}

// WithPrefix namespaces every key and index name.
func WithPrefix(prefix string) Option {
	return func(c *clientConfig) { c.db.KeyPrefix = prefix }
}

// WithOpenAI enables model-backed intent extraction against an
// OpenAI-compatible endpoint. enrich also turns on per-result notes.
func WithOpenAI(apiKey, baseURL, model string, enrich bool) Option {
	return func(c *clientConfig) {
		c.llm = &config.LLMConfig{
			Enabled: true,
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
			Enrich:  enrich,
		}
	}
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// Settings tunes the search pipeline. Zero fields keep their defaults.
type Settings struct {
	PageSize         int
	MaxCandidates    int
	MinStrictResults int
	MinScore         float64
	OverflowTTLSec   int
	SessionTTLSec    int
	TurnTimeoutSec   int
	ReplyCeiling     int
	// SuggestionSample nil keeps the default; 0 disables suggestions.
	SuggestionSample  *int
	ContinuationWords []string
}

// WithSettings overrides search tuning.
func WithSettings(s Settings) Option {
	return func(c *clientConfig) {
		c.search.PageSize = s.PageSize
		c.search.MaxCandidates = s.MaxCandidates
		c.search.MinStrictResults = s.MinStrictResults
		c.search.MinScore = s.MinScore
		c.search.OverflowTTLSec = s.OverflowTTLSec
		c.search.SessionTTLSec = s.SessionTTLSec
		c.search.TurnTimeoutSec = s.TurnTimeoutSec
		c.search.ReplyCeiling = s.ReplyCeiling
		c.search.SuggestionSample = s.SuggestionSample
		c.search.ContinuationWords = s.ContinuationWords
	}
}

// SelfResolverFunc maps a user key to the user's own profile email. An
// empty result means unknown.
type SelfResolverFunc func(ctx context.Context, userKey string) string

// SelfEmail calls f.
func (f SelfResolverFunc) SelfEmail(ctx context.Context, userKey string) string {
	return f(ctx, userKey)
}

// WithSelfResolver excludes the requester's own profile from results when
// the user key is not itself an email address.
func WithSelfResolver(f SelfResolverFunc) Option {
	return func(c *clientConfig) { c.self = f }
}
