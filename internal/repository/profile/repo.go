// Package profile stores alumni profiles as JSON documents and reads
// projected profiles back through filter expressions.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/domain"
	"github.com/jagritiyatra/alumnidex/internal/domain/category"
	domprofile "github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/filter"
)

// store is the consumer interface for profiles (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Find(ctx context.Context, q *db.FindQuery) (*db.SearchResult, error)
}

// Repo implements retrieve.Finder and search.Sampler.
type Repo struct {
	store  store
	prefix string
}

// New creates a profile repository. prefix namespaces keys and the index;
// empty uses domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndex creates the profile index unless it exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName(r.prefix))
	if err != nil {
		return unavailable("index exists", err)
	}
	if exists {
		return nil
	}
	def, err := buildIndex(r.prefix)
	if err != nil {
		return fmt.Errorf("build profile index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return unavailable("create index", err)
	}
	return nil
}

// Upsert stores p under its primary email, replacing any previous version.
// A linked email that is already another profile's primary email is
// rejected with ErrInvalidProfile.
func (r *Repo) Upsert(ctx context.Context, p *domprofile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.checkLinked(ctx, p, nil); err != nil {
		return err
	}
	data, err := json.Marshal(buildDocument(p))
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.key(p.Key()), db.DocumentField, data); err != nil {
		return unavailable("json.set", err)
	}
	return nil
}

// UpsertMany stores profiles in one round trip. Every profile is validated
// before anything is written.
func (r *Repo) UpsertMany(ctx context.Context, ps []*domprofile.Profile) error {
	items := make([]db.JSONSetItem, 0, len(ps))
	keys := make(map[string]struct{}, len(ps))
	for i, p := range ps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
		keys[p.Key()] = struct{}{}
	}
	for i, p := range ps {
		if err := r.checkLinked(ctx, p, keys); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
		data, err := json.Marshal(buildDocument(p))
		if err != nil {
			return fmt.Errorf("marshal profile %d: %w", i, err)
		}
		items = append(items, db.JSONSetItem{Key: r.key(p.Key()), Path: db.DocumentField, Data: data})
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return unavailable("json.set", err)
	}
	return nil
}

// GetByEmail returns the profile whose primary email is email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domprofile.Profile, error) {
	raw, err := r.store.JSONGet(ctx, r.key(domprofile.NormalizeEmail(email)))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("json.get", err)
	}
	var d document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", email, err)
	}
	return d.toProfile(), nil
}

// Find returns up to limit projected profiles matching expr. Only the
// attributes the pipeline reads leave the store; entries that fail to
// decode are skipped.
func (r *Repo) Find(ctx context.Context, expr filter.Expression, limit int) ([]*domprofile.Profile, error) {
	res, err := r.store.Find(ctx, &db.FindQuery{
		IndexName: indexName(r.prefix),
		Filter:    expr,
		Limit:     limit,
		Return:    returnFields(),
	})
	if err != nil {
		return nil, unavailable("find", err)
	}

	out := make([]*domprofile.Profile, 0, len(res.Entries))
	for _, e := range res.Entries {
		p, err := decodeProjection(e.Fields)
		if err != nil {
			continue
		}
		out = append(out, p.toProfile())
	}
	return out, nil
}

// Sample returns up to limit profiles not in exclude.
func (r *Repo) Sample(ctx context.Context, limit int, exclude []string) ([]*domprofile.Profile, error) {
	mustNot, err := filter.NewExclusions([]string{category.TagEmail, category.TagEmails}, exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	expr, err := filter.NewExpression(nil, nil, mustNot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return r.Find(ctx, expr, limit)
}

// checkLinked fails when one of p's linked emails is the primary key of a
// stored profile or of another profile in batch.
func (r *Repo) checkLinked(ctx context.Context, p *domprofile.Profile, batch map[string]struct{}) error {
	own := p.Key()
	for _, e := range p.Emails() {
		if e == own {
			continue
		}
		if _, ok := batch[e]; ok {
			return fmt.Errorf("%w: linked email %s is another profile's primary email", domain.ErrInvalidProfile, e)
		}
		_, err := r.store.JSONGet(ctx, r.key(e), "$.email")
		switch {
		case errors.Is(err, db.ErrKeyNotFound):
		case err != nil:
			return unavailable("json.get", err)
		default:
			return fmt.Errorf("%w: linked email %s is another profile's primary email", domain.ErrInvalidProfile, e)
		}
	}
	return nil
}

func (r *Repo) key(email string) string {
	return keyPrefix(r.prefix) + email
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
