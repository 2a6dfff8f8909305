package profile

import (
	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/domain/category"
)

const indexSuffix = "profiles"

func indexName(prefix string) string {
	return prefix + indexSuffix
}

func keyPrefix(prefix string) string {
	return prefix + "profile:"
}

// buildIndex declares one TEXT attribute per searchable category field and
// TAG attributes for exclusion by email.
func buildIndex(prefix string) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName(prefix)).OnJSON().Prefix(keyPrefix(prefix))
	for _, f := range category.All() {
		b.TextAs(f.Path, f.Name)
	}
	b.TagAs("$.email", category.TagEmail)
	b.TagAs("$.emails[*]", category.TagEmails)
	return b.Build()
}
