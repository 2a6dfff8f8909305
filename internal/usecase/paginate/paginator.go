// Package paginate splits verified results into visible pages and keeps the
// remainder for "show more" turns.
package paginate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jagritiyatra/alumnidex/internal/domain"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
	"github.com/jagritiyatra/alumnidex/internal/domain/session"
)

// Defaults for page size and batch lifetime.
const (
	DefaultPageSize = 3
	DefaultTTL      = 10 * time.Minute
)

// Paginator owns the overflow batches.
type Paginator struct {
	store    OverflowStore
	pageSize int
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithClock overrides the time source used for batch staleness.
func WithClock(now func() time.Time) Option {
	return func(p *Paginator) { p.now = now }
}

// New creates a Paginator. Non-positive values use the defaults.
func New(store OverflowStore, pageSize int, ttl time.Duration, opts ...Option) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	p := &Paginator{store: store, pageSize: pageSize, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// PageSize returns K, the number of candidates per page.
func (p *Paginator) PageSize() int { return p.pageSize }

// Split returns the first page and the remainder.
func (p *Paginator) Split(list []result.Candidate) (page, rest []result.Candidate) {
	if len(list) <= p.pageSize {
		return list, nil
	}
	return list[:p.pageSize], list[p.pageSize:]
}

// Start stores the remainder of a new search, replacing any previous batch.
// An empty remainder removes the batch.
func (p *Paginator) Start(ctx context.Context, userKey, topic string, rest []result.Candidate) error {
	if len(rest) == 0 {
		return p.Discard(ctx, userKey)
	}
	return p.save(ctx, userKey, topic, rest)
}

// Continue stores what is left of prev after a "show more" page. The batch
// keeps its creation time, and an empty remainder is kept so the next
// request reports exhaustion instead of a missing search.
func (p *Paginator) Continue(ctx context.Context, userKey string, prev *session.Overflow, rest []result.Candidate) error {
	o := session.NewOverflow(prev.Topic, rest, prev.CreatedAt)
	if err := p.store.SaveOverflow(ctx, userKey, o); err != nil {
		return fmt.Errorf("save overflow: %w", err)
	}
	return nil
}

// Load returns the live batch of userKey, or domain.ErrNoPreviousSearch when
// there is none or it has expired.
func (p *Paginator) Load(ctx context.Context, userKey string) (*session.Overflow, error) {
	o, err := p.store.LoadOverflow(ctx, userKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoPreviousSearch
	}
	if err != nil {
		return nil, fmt.Errorf("load overflow: %w", err)
	}
	if o.Expired(p.now(), p.ttl) {
		_ = p.store.DeleteOverflow(ctx, userKey)
		return nil, domain.ErrNoPreviousSearch
	}
	return o, nil
}

// Discard drops the batch of userKey, if any.
func (p *Paginator) Discard(ctx context.Context, userKey string) error {
	if err := p.store.DeleteOverflow(ctx, userKey); err != nil {
		return fmt.Errorf("discard overflow: %w", err)
	}
	return nil
}
