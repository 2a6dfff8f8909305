package profile

import (
	"encoding/json"
	"fmt"

	"github.com/jagritiyatra/alumnidex/internal/db"
	domprofile "github.com/jagritiyatra/alumnidex/internal/domain/profile"
)

// document is the stored JSON shape. Its paths are the ones indexed by
// buildIndex through the category table.
type document struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Emails      []string    `json:"emails"`
	Phone       string      `json:"phone,omitempty"`
	Headline    string      `json:"headline,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	CurrentRole string      `json:"current_role,omitempty"`
	CurrentOrg  string      `json:"current_org,omitempty"`
	Skills      []string    `json:"skills,omitempty"`
	Experience  []position  `json:"experience,omitempty"`
	Education   []education `json:"education,omitempty"`
	Location    location    `json:"location"`
	CanOffer    []string    `json:"can_offer,omitempty"`
	Seeking     []string    `json:"seeking,omitempty"`
	ImpactTags  []string    `json:"impact_tags,omitempty"`
	LinkedIn    string      `json:"linkedin,omitempty"`
	Complete    bool        `json:"complete"`
}

type position struct {
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization,omitempty"`
	Description  string `json:"description,omitempty"`
}

type education struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
}

type location struct {
	Text    string `json:"text,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// projection is what the search pipeline reads back: contact phone and
// internal ids stay in the store.
type projection struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Emails      []string    `json:"emails"`
	Headline    string      `json:"headline"`
	Bio         string      `json:"bio"`
	CurrentRole string      `json:"current_role"`
	CurrentOrg  string      `json:"current_org"`
	Skills      []string    `json:"skills"`
	Experience  []position  `json:"experience"`
	Education   []education `json:"education"`
	Location    location    `json:"location"`
	CanOffer    []string    `json:"can_offer"`
	Seeking     []string    `json:"seeking"`
	ImpactTags  []string    `json:"impact_tags"`
	LinkedIn    string      `json:"linkedin"`
	Complete    bool        `json:"complete"`
}

// projected lists the document attributes Find asks the store for, by JSON
// name. text marks string attributes, which the store returns unquoted.
var projected = []struct {
	name string
	text bool
}{
	{"name", true},
	{"email", true},
	{"emails", false},
	{"headline", true},
	{"bio", true},
	{"current_role", true},
	{"current_org", true},
	{"skills", false},
	{"experience", false},
	{"education", false},
	{"location", false},
	{"can_offer", false},
	{"seeking", false},
	{"impact_tags", false},
	{"linkedin", true},
	{"complete", false},
}

func returnFields() []db.ReturnField {
	out := make([]db.ReturnField, len(projected))
	for i, f := range projected {
		out[i] = db.ReturnField{Path: "$." + f.name, As: f.name}
	}
	return out
}

// decodeProjection rebuilds a projection from the returned attributes.
func decodeProjection(fields map[string]string) (*projection, error) {
	obj := make(map[string]json.RawMessage, len(projected))
	for _, f := range projected {
		v, ok := fields[f.name]
		if !ok {
			continue
		}
		if f.text {
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", f.name, err)
			}
			obj[f.name] = raw
			continue
		}
		if !json.Valid([]byte(v)) {
			return nil, fmt.Errorf("attribute %s is not JSON", f.name)
		}
		obj[f.name] = json.RawMessage(v)
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode projection: %w", err)
	}
	var p projection
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode projection: %w", err)
	}
	if p.Email == "" {
		return nil, fmt.Errorf("projection without email")
	}
	return &p, nil
}

// buildDocument converts a profile to its stored form. Emails are
// normalized; Emails carries every address, the primary first.
func buildDocument(p *domprofile.Profile) document {
	d := document{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Key(),
		Emails:      p.Emails(),
		Phone:       p.Phone,
		Headline:    p.Headline,
		Bio:         p.Bio,
		CurrentRole: p.CurrentRole,
		CurrentOrg:  p.CurrentOrg,
		Skills:      p.Skills,
		Location:    location(p.Location),
		CanOffer:    p.CanOffer,
		Seeking:     p.Seeking,
		ImpactTags:  p.ImpactTags,
		LinkedIn:    p.LinkedIn,
		Complete:    p.Complete,
	}
	for _, e := range p.Experience {
		d.Experience = append(d.Experience, position(e))
	}
	for _, e := range p.Education {
		d.Education = append(d.Education, education(e))
	}
	return d
}

// toProfile converts a full stored document back to a profile.
func (d *document) toProfile() *domprofile.Profile {
	p := projection{
		Name: d.Name, Email: d.Email, Emails: d.Emails, Headline: d.Headline, Bio: d.Bio,
		CurrentRole: d.CurrentRole, CurrentOrg: d.CurrentOrg, Skills: d.Skills,
		Experience: d.Experience, Education: d.Education, Location: d.Location,
		CanOffer: d.CanOffer, Seeking: d.Seeking, ImpactTags: d.ImpactTags,
		LinkedIn: d.LinkedIn, Complete: d.Complete,
	}
	out := p.toProfile()
	out.ID = d.ID
	out.Phone = d.Phone
	return out
}

func (p *projection) toProfile() *domprofile.Profile {
	out := &domprofile.Profile{
		Name:        p.Name,
		Email:       p.Email,
		Headline:    p.Headline,
		Bio:         p.Bio,
		CurrentRole: p.CurrentRole,
		CurrentOrg:  p.CurrentOrg,
		Skills:      p.Skills,
		Location:    domprofile.Location(p.Location),
		CanOffer:    p.CanOffer,
		Seeking:     p.Seeking,
		ImpactTags:  p.ImpactTags,
		LinkedIn:    p.LinkedIn,
		Complete:    p.Complete,
	}
	for _, e := range p.Emails {
		if e != p.Email {
			out.LinkedEmails = append(out.LinkedEmails, e)
		}
	}
	for _, e := range p.Experience {
		out.Experience = append(out.Experience, domprofile.Position(e))
	}
	for _, e := range p.Education {
		out.Education = append(out.Education, domprofile.Education(e))
	}
	return out
}
