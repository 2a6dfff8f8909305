package profile

import (
	"errors"
	"testing"

	"github.com/jagritiyatra/alumnidex/internal/domain"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		want string
	}{
		{"primary", Profile{Email: " Asha@X.org ", LinkedEmails: []string{"b@x.org"}}, "asha@x.org"},
		{"linked fallback", Profile{LinkedEmails: []string{"", "B@x.org"}}, "b@x.org"},
		{"none", Profile{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Key(); got != tt.want {
				t.Errorf("Key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmails_Dedup(t *testing.T) {
	p := Profile{Email: "a@x.org", LinkedEmails: []string{"A@x.org", "b@x.org", " "}}
	got := p.Emails()
	if len(got) != 2 || got[0] != "a@x.org" || got[1] != "b@x.org" {
		t.Errorf("Emails = %v", got)
	}
}

func TestValidate(t *testing.T) {
	if err := (&Profile{Name: "A", Email: "a@x.org"}).Validate(); err != nil {
		t.Errorf("valid profile: %v", err)
	}
	if err := (&Profile{Name: "A"}).Validate(); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Errorf("no email: %v", err)
	}
	if err := (&Profile{Email: "a@x.org"}).Validate(); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Errorf("no name: %v", err)
	}
}

func TestRichness(t *testing.T) {
	if got := (&Profile{}).Richness(); got != 0 {
		t.Errorf("empty richness = %v", got)
	}
	full := &Profile{
		Bio:         "x",
		CurrentRole: "x",
		Skills:      []string{"x"},
		Experience:  []Position{{Title: "x"}},
		Education:   []Education{{Institution: "x"}},
		Location:    Location{City: "Pune"},
	}
	if got := full.Richness(); got != 1 {
		t.Errorf("full richness = %v", got)
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{City: "Pune", Country: "India", Text: "ignored"}, "Pune, India"},
		{Location{Text: " near Pune "}, "near Pune"},
		{Location{}, ""},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
