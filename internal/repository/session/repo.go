// Package session persists per-user search state and overflow batches in an
// expiring key-value store.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/domain"
	domsession "github.com/jagritiyatra/alumnidex/internal/domain/session"
)

// Default lifetimes.
const (
	DefaultStateTTL    = 30 * time.Minute
	DefaultOverflowTTL = 10 * time.Minute
)

// store is the consumer interface for the session cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo implements search.SessionStore and paginate.OverflowStore.
type Repo struct {
	store       store
	prefix      string
	stateTTL    time.Duration
	overflowTTL time.Duration
	cacheTotal  *prometheus.CounterVec
}

// New creates a session repository. cacheTotal is a counter vec with labels
// "kind" ("state"/"overflow") and "result" ("hit"/"miss"), passed
// explicitly; nil disables counting.
func New(s store, prefix string, stateTTL, overflowTTL time.Duration, cacheTotal *prometheus.CounterVec) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}
	if overflowTTL <= 0 {
		overflowTTL = DefaultOverflowTTL
	}
	return &Repo{
		store:       s,
		prefix:      prefix,
		stateTTL:    stateTTL,
		overflowTTL: overflowTTL,
		cacheTotal:  cacheTotal,
	}
}

// LoadState returns the state of userKey, or an empty state when none is
// stored or the stored value cannot be decoded.
func (r *Repo) LoadState(ctx context.Context, userKey string) (*domsession.State, error) {
	var st domsession.State
	ok, err := r.load(ctx, r.key("session:", userKey), &st)
	r.inc("state", ok)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &domsession.State{}, nil
	}
	return &st, nil
}

// SaveState stores st for userKey.
func (r *Repo) SaveState(ctx context.Context, userKey string, st *domsession.State) error {
	return r.save(ctx, r.key("session:", userKey), st, r.stateTTL)
}

// LoadOverflow returns the overflow batch of userKey or domain.ErrNotFound.
func (r *Repo) LoadOverflow(ctx context.Context, userKey string) (*domsession.Overflow, error) {
	var o domsession.Overflow
	ok, err := r.load(ctx, r.key("overflow:", userKey), &o)
	r.inc("overflow", ok)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

// SaveOverflow replaces the overflow batch of userKey.
func (r *Repo) SaveOverflow(ctx context.Context, userKey string, o *domsession.Overflow) error {
	return r.save(ctx, r.key("overflow:", userKey), o, r.overflowTTL)
}

// DeleteOverflow removes the overflow batch of userKey. Missing batches are not an error.
func (r *Repo) DeleteOverflow(ctx context.Context, userKey string) error {
	key := r.key("overflow:", userKey)
	if err := r.store.Del(ctx, key); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("%w: del %s: %w", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// key hashes the user key so phone numbers and emails never appear in key names.
func (r *Repo) key(kind, userKey string) string {
	h := sha256.Sum256([]byte(userKey))
	return r.prefix + kind + hex.EncodeToString(h[:])
}

// load decodes the value at key into v. It reports false for a missing or
// undecodable value.
func (r *Repo) load(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %w", domain.ErrCacheUnavailable, key, err)
	}
	if len(data) == 0 || json.Unmarshal(data, v) != nil {
		return false, nil
	}
	return true, nil
}

func (r *Repo) save(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("%w: set %s: %w", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

func (r *Repo) inc(kind string, hit bool) {
	if r.cacheTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(kind, result).Inc()
}
