package profile

import (
	"fmt"
	"strings"

	"github.com/jagritiyatra/alumnidex/internal/domain"
)

// Position is a prior or current job.
type Position struct {
	Title        string `json:"title,omitempty" yaml:"title"`
	Organization string `json:"organization,omitempty" yaml:"organization"`
	Description  string `json:"description,omitempty" yaml:"description"`
}

// Education is a single education entry.
type Education struct {
	Institution string `json:"institution,omitempty" yaml:"institution"`
	Degree      string `json:"degree,omitempty" yaml:"degree"`
	Field       string `json:"field,omitempty" yaml:"field"`
}

// Location holds free text and structured location parts. Any of them may be empty.
type Location struct {
	Text    string `json:"text,omitempty" yaml:"text"`
	City    string `json:"city,omitempty" yaml:"city"`
	State   string `json:"state,omitempty" yaml:"state"`
	Country string `json:"country,omitempty" yaml:"country"`
}

// String renders the most specific location available.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return strings.TrimSpace(l.Text)
}

// Profile is one alumni directory document. The search core only reads profiles.
type Profile struct {
	ID           string      `json:"id,omitempty" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Email        string      `json:"email" yaml:"email"`
	LinkedEmails []string    `json:"emails,omitempty" yaml:"emails"`
	Phone        string      `json:"phone,omitempty" yaml:"phone"`
	Headline     string      `json:"headline,omitempty" yaml:"headline"`
	Bio          string      `json:"bio,omitempty" yaml:"bio"`
	CurrentRole  string      `json:"current_role,omitempty" yaml:"current_role"`
	CurrentOrg   string      `json:"current_org,omitempty" yaml:"current_org"`
	Skills       []string    `json:"skills,omitempty" yaml:"skills"`
	Experience   []Position  `json:"experience,omitempty" yaml:"experience"`
	Education    []Education `json:"education,omitempty" yaml:"education"`
	Location     Location    `json:"location" yaml:"location"`
	CanOffer     []string    `json:"can_offer,omitempty" yaml:"can_offer"`
	Seeking      []string    `json:"seeking,omitempty" yaml:"seeking"`
	ImpactTags   []string    `json:"impact_tags,omitempty" yaml:"impact_tags"`
	LinkedIn     string      `json:"linkedin,omitempty" yaml:"linkedin"`
	Complete     bool        `json:"complete" yaml:"complete"`
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Key returns the identity of the profile: its primary email, or the first linked one.
func (p *Profile) Key() string {
	if e := NormalizeEmail(p.Email); e != "" {
		return e
	}
	for _, e := range p.LinkedEmails {
		if e = NormalizeEmail(e); e != "" {
			return e
		}
	}
	return ""
}

// Emails returns every address the profile is reachable by, normalized and de-duplicated.
func (p *Profile) Emails() []string {
	seen := make(map[string]struct{}, 1+len(p.LinkedEmails))
	out := make([]string, 0, 1+len(p.LinkedEmails))
	for _, e := range append([]string{p.Email}, p.LinkedEmails...) {
		e = NormalizeEmail(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Validate checks the addressability invariant.
func (p *Profile) Validate() error {
	if p.Key() == "" {
		return fmt.Errorf("%w: at least one email is required", domain.ErrInvalidProfile)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidProfile)
	}
	return nil
}

// Richness returns the fraction of optional sections that carry data, in [0,1].
func (p *Profile) Richness() float64 {
	sections := []bool{
		p.Bio != "" || p.Headline != "",
		p.CurrentRole != "" || p.CurrentOrg != "",
		len(p.Skills) > 0,
		len(p.Experience) > 0,
		len(p.Education) > 0,
		p.Location.String() != "",
	}
	n := 0
	for _, ok := range sections {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(sections))
}
