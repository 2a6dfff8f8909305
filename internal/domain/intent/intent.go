package intent

import "strings"

// Category names one searchable dimension of a profile.
type Category string

// Searchable categories, in scoring weight order.
const (
	Name      Category = "name"
	Skills    Category = "skills"
	Locations Category = "locations"
	Education Category = "education"
	Companies Category = "companies"
	Roles     Category = "roles"
	Keywords  Category = "keywords"
)

// Categories lists every category in a stable order.
var Categories = []Category{Name, Skills, Locations, Education, Companies, Roles, Keywords}

// Source records which extraction path produced an intent.
type Source string

const (
	// SourceModel means the language model produced the intent.
	SourceModel Source = "llm"
	// SourceRules means the rule-based fallback produced the intent.
	SourceRules Source = "rules"
	// SourceKeywords means only whitespace tokens were recovered.
	SourceKeywords Source = "keywords"
	// SourcePrevious means the previous turn's intent was reused.
	SourcePrevious Source = "previous"
)

// Confidence levels assigned by the extractor.
const (
	ConfidenceHigh   = 0.9
	ConfidenceMedium = 0.6
	ConfidenceLow    = 0.2
)

// Intent is the structured reading of one user message.
// Set-valued fields are never nil after New or Normalize.
type Intent struct {
	IsNameSearch bool     `json:"is_name_search"`
	PersonName   string   `json:"person_name,omitempty"`
	Skills       []string `json:"skills"`
	Locations    []string `json:"locations"`
	Companies    []string `json:"companies"`
	Roles        []string `json:"roles"`
	Education    []string `json:"education"`
	Keywords     []string `json:"keywords"`
	Confidence   float64  `json:"confidence"`
	Source       Source   `json:"source,omitempty"`
}

// New returns an empty intent with all sets initialized.
func New() Intent {
	return Intent{
		Skills:    []string{},
		Locations: []string{},
		Companies: []string{},
		Roles:     []string{},
		Education: []string{},
		Keywords:  []string{},
	}
}

// Terms returns the terms recorded for c.
func (i *Intent) Terms(c Category) []string {
	switch c {
	case Name:
		if i.IsNameSearch && i.PersonName != "" {
			return []string{i.PersonName}
		}
		return nil
	case Skills:
		return i.Skills
	case Locations:
		return i.Locations
	case Companies:
		return i.Companies
	case Roles:
		return i.Roles
	case Education:
		return i.Education
	case Keywords:
		return i.Keywords
	}
	return nil
}

// Add appends term to category c unless already present.
func (i *Intent) Add(c Category, term string) {
	term = cleanTerm(term)
	if term == "" {
		return
	}
	if c == Name {
		i.IsNameSearch = true
		i.PersonName = term
		return
	}
	set := i.slot(c)
	if set == nil {
		return
	}
	for _, t := range *set {
		if t == term {
			return
		}
	}
	*set = append(*set, term)
}

// Populated returns the categories with at least one term, in Categories order.
func (i *Intent) Populated() []Category {
	out := make([]Category, 0, len(Categories))
	for _, c := range Categories {
		if len(i.Terms(c)) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// IsEmpty reports whether no category carries a term.
func (i *Intent) IsEmpty() bool {
	return len(i.Populated()) == 0
}

// HasCategoryTerms reports whether any structured category (not free keywords) is set.
func (i *Intent) HasCategoryTerms() bool {
	for _, c := range i.Populated() {
		if c != Keywords {
			return true
		}
	}
	return false
}

// Normalize lower-cases, trims and de-duplicates every term and initializes nil sets.
func (i *Intent) Normalize() {
	for _, c := range Categories {
		if c == Name {
			continue
		}
		set := i.slot(c)
		in := *set
		*set = make([]string, 0, len(in))
		for _, t := range in {
			i.Add(c, t)
		}
	}
	i.PersonName = cleanTerm(i.PersonName)
	if i.PersonName == "" {
		i.IsNameSearch = false
	}
}

// Summary renders the intent as short human-readable text, e.g. "lawyer · delhi".
func (i *Intent) Summary() string {
	parts := make([]string, 0, 4)
	for _, c := range i.Populated() {
		parts = append(parts, strings.Join(i.Terms(c), ", "))
	}
	return strings.Join(parts, " · ")
}

func (i *Intent) slot(c Category) *[]string {
	switch c {
	case Skills:
		return &i.Skills
	case Locations:
		return &i.Locations
	case Companies:
		return &i.Companies
	case Roles:
		return &i.Roles
	case Education:
		return &i.Education
	case Keywords:
		return &i.Keywords
	}
	return nil
}

func cleanTerm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
