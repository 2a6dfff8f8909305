package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/domain"
	"github.com/jagritiyatra/alumnidex/internal/domain/category"
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	domprofile "github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/filter"
)

func TestBuildIndex(t *testing.T) {
	def, err := buildIndex("x:")
	if err != nil {
		t.Fatalf("buildIndex: %v", err)
	}
	if def.Name != "x:profiles" || def.StorageType != db.StorageJSON || def.Prefixes[0] != "x:profile:" {
		t.Errorf("def = %+v", def)
	}
	for _, f := range category.All() {
		got, ok := def.Field(f.Name)
		if !ok || got.Name != f.Path || got.Type != db.IndexFieldText {
			t.Errorf("field %s = %+v, %v", f.Name, got, ok)
		}
	}
	if f, ok := def.Field(category.TagEmails); !ok || f.Type != db.IndexFieldTag || f.Name != "$.emails[*]" {
		t.Errorf("emails tag = %+v, %v", f, ok)
	}
}

func TestEnsureIndex(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		created := false
		ms := &mockStore{
			indexExistsFn: func(context.Context, string) (bool, error) { return true, nil },
			createIndexFn: func(context.Context, *db.IndexDefinition) error { created = true; return nil },
		}
		if err := New(ms, "").EnsureIndex(context.Background()); err != nil {
			t.Fatalf("EnsureIndex: %v", err)
		}
		if created {
			t.Error("index should not be recreated")
		}
	})
	t.Run("race with another creator", func(t *testing.T) {
		ms := &mockStore{
			createIndexFn: func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists },
		}
		if err := New(ms, "").EnsureIndex(context.Background()); err != nil {
			t.Errorf("ErrIndexExists should be ignored, got %v", err)
		}
	})
	t.Run("store down", func(t *testing.T) {
		ms := &mockStore{
			indexExistsFn: func(context.Context, string) (bool, error) { return false, errors.New("dial tcp: refused") },
		}
		if err := New(ms, "").EnsureIndex(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
			t.Errorf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}

func TestUpsert_StoresNormalizedDocument(t *testing.T) {
	var key string
	var doc document
	ms := &mockStore{
		jsonSetFn: func(_ context.Context, k, path string, data []byte) error {
			key = k
			if path != "$" {
				t.Errorf("path = %s", path)
			}
			return json.Unmarshal(data, &doc)
		},
	}
	p := testProfile("Asha", " Asha@X.org ")
	p.LinkedEmails = []string{"asha@work.org", "ASHA@x.org"}

	if err := New(ms, "").Upsert(context.Background(), p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if key != domain.KeyPrefix+"profile:asha@x.org" {
		t.Errorf("key = %s", key)
	}
	if doc.Email != "asha@x.org" || len(doc.Emails) != 2 || doc.Emails[1] != "asha@work.org" {
		t.Errorf("emails = %s %v", doc.Email, doc.Emails)
	}
}

func TestUpsert_Invalid(t *testing.T) {
	err := New(&mockStore{}, "").Upsert(context.Background(), &domprofile.Profile{Name: "No Email"})
	if !errors.Is(err, domain.ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
	err = New(&mockStore{}, "").UpsertMany(context.Background(), []*domprofile.Profile{testProfile("A", "a@x.org"), {Email: "b@x.org"}})
	if !errors.Is(err, domain.ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestFind_MapsStoreErrors(t *testing.T) {
	ms := &mockStore{
		findFn: func(context.Context, *db.FindQuery) (*db.SearchResult, error) {
			return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection reset")}
		},
	}
	_, err := New(ms, "").Find(context.Background(), filter.Expression{}, 10)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestFind_SkipsUndecodableEntries(t *testing.T) {
	ms := &mockStore{
		findFn: func(_ context.Context, q *db.FindQuery) (*db.SearchResult, error) {
			if q.Limit != 5 || len(q.ReturnFields) != 0 {
				t.Errorf("query = %+v", q)
			}
			return &db.SearchResult{Total: 4, Entries: []db.SearchEntry{
				{Key: "a", Fields: map[string]string{"name": "A", "email": "a@x.org", "skills": `["Go"]`}},
				{Key: "b", Fields: map[string]string{"name": "B", "email": "b@x.org", "skills": `[broken`}},
				{Key: "c", Fields: map[string]string{}},
				{Key: "d", Fields: map[string]string{"name": "D"}},
			}}, nil
		},
	}
	got, err := New(ms, "").Find(context.Background(), filter.Expression{}, 5)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 1 || got[0].Name != "A" || got[0].Skills[0] != "Go" {
		t.Errorf("profiles = %+v", got)
	}
}

func TestFind_ReturnsOnlyProjectedAttributes(t *testing.T) {
	var ret []db.ReturnField
	ms := &mockStore{
		findFn: func(_ context.Context, q *db.FindQuery) (*db.SearchResult, error) {
			ret = q.Return
			return &db.SearchResult{}, nil
		},
	}
	if _, err := New(ms, "").Find(context.Background(), filter.Expression{}, 5); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(ret) == 0 {
		t.Fatal("Find should name the attributes it reads")
	}
	for _, f := range ret {
		switch f.Path {
		case db.DocumentField, "$.phone", "$.id":
			t.Errorf("Find asks for %s", f.Path)
		}
		if f.As == "" {
			t.Errorf("%s has no alias", f.Path)
		}
	}
}

func TestUpsert_LinkedEmailOwnedByAnotherProfile(t *testing.T) {
	ctx := context.Background()
	r := newEmbeddedRepo(t)
	if err := r.Upsert(ctx, testProfile("Asha", "asha@x.org")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	b := testProfile("Bala", "bala@x.org")
	b.LinkedEmails = []string{"ASHA@x.org"}
	if err := r.Upsert(ctx, b); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
	if _, err := r.GetByEmail(ctx, "bala@x.org"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("rejected profile was stored: %v", err)
	}

	// Re-storing a profile with its own primary email among the linked ones is fine.
	a := testProfile("Asha", "asha@x.org")
	a.LinkedEmails = []string{"asha@x.org", "asha@work.org"}
	if err := r.Upsert(ctx, a); err != nil {
		t.Errorf("Upsert: %v", err)
	}
}

func TestUpsertMany_LinkedEmailWithinBatch(t *testing.T) {
	a := testProfile("Asha", "asha@x.org")
	b := testProfile("Bala", "bala@x.org")
	b.LinkedEmails = []string{"asha@x.org"}
	written := false
	ms := &mockStore{
		jsonSetMultiFn: func(context.Context, []db.JSONSetItem) error {
			written = true
			return nil
		},
	}
	err := New(ms, "").UpsertMany(context.Background(), []*domprofile.Profile{a, b})
	if !errors.Is(err, domain.ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
	if written {
		t.Error("nothing should be written when a batch is rejected")
	}
}

func TestUpsert_LinkedEmailLookupFails(t *testing.T) {
	p := testProfile("Asha", "asha@x.org")
	p.LinkedEmails = []string{"asha@work.org"}
	ms := &mockStore{
		jsonGetFn: func(context.Context, string, ...string) ([]byte, error) {
			return nil, &db.Error{Op: db.OpJSONGet, Err: errors.New("connection reset")}
		},
	}
	if err := New(ms, "").Upsert(context.Background(), p); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestEmbedded_RoundTrip(t *testing.T) {
	r := newEmbeddedRepo(t)
	ctx := context.Background()

	p := testProfile("Asha Verma", "asha@x.org")
	p.LinkedEmails = []string{"asha@work.org"}
	if err := r.Upsert(ctx, p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := r.GetByEmail(ctx, "ASHA@x.org")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Name != "Asha Verma" || got.Phone == "" || got.Education[0].Institution != "NLU Delhi" {
		t.Errorf("profile = %+v", got)
	}
	if len(got.LinkedEmails) != 1 || got.LinkedEmails[0] != "asha@work.org" {
		t.Errorf("linked = %v", got.LinkedEmails)
	}

	if _, err := r.GetByEmail(ctx, "nobody@x.org"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEmbedded_FindProjectsAndExcludes(t *testing.T) {
	r := newEmbeddedRepo(t)
	ctx := context.Background()

	a := testProfile("Asha", "asha@x.org")
	a.ID = "p-1"
	b := testProfile("Bala", "bala@x.org")
	b.LinkedEmails = []string{"bala@work.org"}
	c := testProfile("Chitra", "chitra@x.org")
	c.Location = domprofile.Location{City: "Mumbai"}
	if err := r.UpsertMany(ctx, []*domprofile.Profile{a, b, c}); err != nil {
		t.Fatalf("UpsertMany: %v", err)
	}

	delhi, _ := filter.NewPattern(category.Names(intent.Locations), []string{"delhi"})
	notBala, _ := filter.NewExclusions([]string{category.TagEmail, category.TagEmails}, []string{"bala@work.org"})
	expr, _ := filter.NewExpression([]filter.Condition{delhi}, nil, notBala)

	got, err := r.Find(ctx, expr, 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 1 || got[0].Key() != "asha@x.org" {
		t.Fatalf("found = %v", got)
	}
	if got[0].Phone != "" || got[0].ID != "" {
		t.Errorf("projection carries phone %q id %q", got[0].Phone, got[0].ID)
	}
	if got[0].Name != "Asha" || got[0].Skills[0] != "Litigation" || got[0].Experience[0].Organization != "AZB" ||
		got[0].Location.City != "Delhi" {
		t.Errorf("projection = %+v", got[0])
	}

	sample, err := r.Sample(ctx, 5, []string{"asha@x.org"})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(sample) != 2 {
		t.Errorf("sample = %d profiles, want 2", len(sample))
	}
}
