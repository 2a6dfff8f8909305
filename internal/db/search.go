package db

import "github.com/jagritiyatra/alumnidex/internal/domain/search/filter"

// DocumentField is the return field that carries the whole JSON document.
const DocumentField = "$"

// FindQuery is the input for a filtered lookup. Field names in Filter are
// index aliases. Return, when set, replaces ReturnFields.
type FindQuery struct {
	IndexName    string
	Filter       filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
	Return       []ReturnField
}

// ReturnField projects the JSON value at Path into the entry field As.
// Strings come back unquoted; arrays, objects, numbers and booleans as JSON text.
type ReturnField struct {
	Path string
	As   string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
