package embedded

import (
	"context"
	"fmt"

	"github.com/tidwall/buntdb"
	"github.com/tidwall/gjson"

	"github.com/jagritiyatra/alumnidex/internal/db"
)

// CreateIndex registers an index definition. Documents are evaluated lazily by Find.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	if def.StorageType != db.StorageJSON {
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("storage %q not supported", def.StorageType)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	s.indexes[def.Name] = &cp
	return nil
}

// DropIndex removes an index definition. Documents are kept.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether an index definition is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

// Find scans the documents under the index prefixes in key order and returns
// those the filter accepts.
func (s *Store) Find(ctx context.Context, q *db.FindQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	s.mu.RLock()
	def, ok := s.indexes[q.IndexName]
	s.mu.RUnlock()
	if !ok {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}

	paths := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		paths[f.Attribute()] = toGJSONPath(f.Name)
	}

	res := &db.SearchResult{}
	err := s.db.View(func(tx *buntdb.Tx) error {
		for _, prefix := range prefixesOf(def) {
			err := tx.AscendKeys(prefix+"*", func(key, value string) bool {
				if ctx.Err() != nil {
					return false
				}
				get := func(attr string) []string { return values(value, paths[attr]) }
				if !q.Filter.Eval(get) {
					return true
				}
				res.Total++
				if res.Total > q.Offset && len(res.Entries) < q.Limit {
					res.Entries = append(res.Entries, db.SearchEntry{
						Key:    key,
						Fields: projectQuery(value, q, paths),
					})
				}
				return true
			})
			if err != nil {
				return err
			}
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return res, nil
}

func prefixesOf(def *db.IndexDefinition) []string {
	if len(def.Prefixes) == 0 {
		return []string{""}
	}
	return def.Prefixes
}

// values flattens the attribute at path into strings; arrays yield one value per element.
func values(doc, path string) []string {
	if path == "" {
		return nil
	}
	res := gjson.Get(doc, path)
	if !res.Exists() {
		return nil
	}
	if !res.IsArray() {
		return []string{res.String()}
	}
	var out []string
	for _, r := range res.Array() {
		if r.IsArray() {
			for _, inner := range r.Array() {
				out = append(out, inner.String())
			}
			continue
		}
		out = append(out, r.String())
	}
	return out
}

func projectQuery(doc string, q *db.FindQuery, paths map[string]string) map[string]string {
	if len(q.Return) == 0 {
		return project(doc, q.ReturnFields, paths)
	}
	out := make(map[string]string, len(q.Return))
	for _, f := range q.Return {
		r := gjson.Get(doc, toGJSONPath(f.Path))
		switch {
		case !r.Exists():
		case r.Type == gjson.String:
			out[f.As] = r.String()
		default:
			out[f.As] = r.Raw
		}
	}
	return out
}

func project(doc string, fields []string, paths map[string]string) map[string]string {
	if len(fields) == 0 {
		return map[string]string{db.DocumentField: doc}
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if f == db.DocumentField {
			out[f] = doc
			continue
		}
		if p, ok := paths[f]; ok {
			if r := gjson.Get(doc, p); r.Exists() {
				out[f] = r.String()
			}
		}
	}
	return out
}
