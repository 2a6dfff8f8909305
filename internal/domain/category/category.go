// Package category declares, once, which profile fields carry evidence for each
// search category. The query builder, the scorer and the store index all read
// this table, so a field added here is searched, scored and indexed together.
package category

import (
	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
)

// Field is one searchable profile attribute.
type Field struct {
	// Name is the index attribute alias used in store queries.
	Name string
	// Path is the JSONPath of the attribute inside a stored profile document.
	Path string
	// Values extracts the attribute from a decoded profile.
	Values func(p *profile.Profile) []string
}

// Searchable profile attributes.
var (
	FieldName      = Field{"name", "$.name", func(p *profile.Profile) []string { return one(p.Name) }}
	FieldHeadline  = Field{"headline", "$.headline", func(p *profile.Profile) []string { return one(p.Headline) }}
	FieldBio       = Field{"bio", "$.bio", func(p *profile.Profile) []string { return one(p.Bio) }}
	FieldRole      = Field{"current_role", "$.current_role", func(p *profile.Profile) []string { return one(p.CurrentRole) }}
	FieldOrg       = Field{"current_org", "$.current_org", func(p *profile.Profile) []string { return one(p.CurrentOrg) }}
	FieldSkills    = Field{"skills", "$.skills[*]", func(p *profile.Profile) []string { return p.Skills }}
	FieldCanOffer  = Field{"can_offer", "$.can_offer[*]", func(p *profile.Profile) []string { return p.CanOffer }}
	FieldSeeking   = Field{"seeking", "$.seeking[*]", func(p *profile.Profile) []string { return p.Seeking }}
	FieldImpact    = Field{"impact_tags", "$.impact_tags[*]", func(p *profile.Profile) []string { return p.ImpactTags }}
	FieldExpTitle  = Field{"exp_title", "$.experience[*].title", expTitles}
	FieldExpOrg    = Field{"exp_org", "$.experience[*].organization", expOrgs}
	FieldExpDesc   = Field{"exp_desc", "$.experience[*].description", expDescs}
	FieldEduInst   = Field{"edu_institution", "$.education[*].institution", eduInstitutions}
	FieldEduDegree = Field{"edu_degree", "$.education[*].degree", eduDegrees}
	FieldEduField  = Field{"edu_field", "$.education[*].field", eduFields}
	FieldLocText   = Field{"location", "$.location.text", func(p *profile.Profile) []string { return one(p.Location.Text) }}
	FieldCity      = Field{"city", "$.location.city", func(p *profile.Profile) []string { return one(p.Location.City) }}
	FieldState     = Field{"state", "$.location.state", func(p *profile.Profile) []string { return one(p.Location.State) }}
	FieldCountry   = Field{"country", "$.location.country", func(p *profile.Profile) []string { return one(p.Location.Country) }}
)

// Tag attributes used for exclusion by email.
const (
	TagEmail  = "email"
	TagEmails = "emails"
)

var fields = map[intent.Category][]Field{
	intent.Name:      {FieldName},
	intent.Skills:    {FieldSkills, FieldBio, FieldHeadline, FieldExpTitle, FieldExpDesc, FieldCanOffer},
	intent.Locations: {FieldLocText, FieldCity, FieldState, FieldCountry},
	intent.Education: {FieldEduInst, FieldEduDegree, FieldEduField},
	intent.Companies: {FieldOrg, FieldExpOrg, FieldBio, FieldHeadline},
	intent.Roles:     {FieldRole, FieldHeadline, FieldExpTitle, FieldBio},
	intent.Keywords: {
		FieldBio, FieldHeadline, FieldSkills, FieldRole, FieldOrg,
		FieldImpact, FieldCanOffer, FieldSeeking, FieldExpTitle,
	},
}

// Fields returns the attributes that carry evidence for c.
func Fields(c intent.Category) []Field {
	return fields[c]
}

// Names returns the attribute aliases for c.
func Names(c intent.Category) []string {
	fs := fields[c]
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

// All returns every distinct searchable attribute, in category order.
func All() []Field {
	seen := make(map[string]struct{})
	var out []Field
	for _, c := range intent.Categories {
		for _, f := range fields[c] {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// Values collects every value of every attribute for c.
func Values(c intent.Category, p *profile.Profile) []string {
	var out []string
	for _, f := range fields[c] {
		out = append(out, f.Values(p)...)
	}
	return out
}

func one(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func expTitles(p *profile.Profile) []string {
	out := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		out = append(out, e.Title)
	}
	return out
}

func expOrgs(p *profile.Profile) []string {
	out := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		out = append(out, e.Organization)
	}
	return out
}

func expDescs(p *profile.Profile) []string {
	out := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		out = append(out, e.Description)
	}
	return out
}

func eduInstitutions(p *profile.Profile) []string {
	out := make([]string, 0, len(p.Education))
	for _, e := range p.Education {
		out = append(out, e.Institution)
	}
	return out
}

func eduDegrees(p *profile.Profile) []string {
	out := make([]string, 0, len(p.Education))
	for _, e := range p.Education {
		out = append(out, e.Degree)
	}
	return out
}

func eduFields(p *profile.Profile) []string {
	out := make([]string, 0, len(p.Education))
	for _, e := range p.Education {
		out = append(out, e.Field)
	}
	return out
}
