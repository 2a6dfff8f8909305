package profile

import (
	"context"
	"testing"

	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/db/embedded"
	domprofile "github.com/jagritiyatra/alumnidex/internal/domain/profile"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	findFn         func(ctx context.Context, q *db.FindQuery) (*db.SearchResult, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Find(ctx context.Context, q *db.FindQuery) (*db.SearchResult, error) {
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

// newEmbeddedRepo returns a repository over an in-memory store with the index created.
func newEmbeddedRepo(t *testing.T) *Repo {
	t.Helper()
	s, err := embedded.Open(embedded.InMemory)
	if err != nil {
		t.Fatalf("embedded.Open: %v", err)
	}
	t.Cleanup(s.Close)
	r := New(s, "test:")
	if err := r.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	return r
}

func testProfile(name, email string) *domprofile.Profile {
	return &domprofile.Profile{
		Name:        name,
		Email:       email,
		Phone:       "+91 90000 00000",
		CurrentRole: "Lawyer",
		Skills:      []string{"Litigation"},
		Experience:  []domprofile.Position{{Title: "Associate", Organization: "AZB"}},
		Education:   []domprofile.Education{{Institution: "NLU Delhi", Degree: "LLB"}},
		Location:    domprofile.Location{City: "Delhi", Country: "India"},
	}
}
