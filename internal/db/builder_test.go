package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("doc:").
		Tag("category").
		Text("title").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "category" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want category TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "title" || idx.Fields[1].Type != IndexFieldText {
		t.Errorf("field[1] = %+v, want title TEXT", idx.Fields[1])
	}
}

func TestIndexBuilder_JSONAliases(t *testing.T) {
	idx := NewIndex("profiles").
		OnJSON().
		Prefix("alumnidex:profile:").
		TextAs("$.skills[*]", "skills").
		TagAs("$.email", "email").
		MustBuild()

	if idx.StorageType != StorageJSON {
		t.Errorf("storage = %q, want JSON", idx.StorageType)
	}
	f, ok := idx.Field("skills")
	if !ok {
		t.Fatal("skills attribute not found")
	}
	if f.Name != "$.skills[*]" || f.Type != IndexFieldText {
		t.Errorf("skills field = %+v", f)
	}
	if _, ok := idx.Field("$.email"); ok {
		t.Error("lookup must use the alias, not the path")
	}
}

func TestIndexBuilder_TagWithOpts(t *testing.T) {
	idx := NewIndex("opts").
		TagWithOpts("labels", ";", true).
		MustBuild()

	f := idx.Fields[0]
	if f.TagSeparator != ";" {
		t.Errorf("separator = %q, want ;", f.TagSeparator)
	}
	if !f.TagCaseSensitive {
		t.Error("expected case sensitive tag")
	}
}

func TestIndexBuilder_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		errMsg  string
	}{
		{"empty name", NewIndex("").Tag("x"), "index name is required"},
		{"bad name", NewIndex("has space").Tag("x"), "invalid characters"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"duplicate alias", NewIndex("idx").TextAs("$.a", "a").TagAs("$.b", "a"), "duplicate field name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestIndexBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("profiles").
		OnJSON().
		Prefix("p:").
		TextAs("$.name", "name").
		TagAs("$.email", "email").
		MustBuild()

	want := "FT.CREATE profiles ON JSON PREFIX p: SCHEMA $.name AS name TEXT $.email AS email TAG"
	if got := idx.String(); got != want {
		t.Errorf("String() = %q\nwant %q", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alumnidex:profiles", true},
		{"idx_1-a", true},
		{"", false},
		{"bad name", false},
		{"bad/name", false},
	}
	for _, tt := range tests {
		if got := IsValidIdentifier(tt.in); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
