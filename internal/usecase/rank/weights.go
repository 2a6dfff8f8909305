package rank

import "github.com/jagritiyatra/alumnidex/internal/domain/intent"

// Weights is the additive score table. Values are per matched term.
type Weights struct {
	NameExact    float64 `yaml:"name_exact"`
	NamePartial  float64 `yaml:"name_partial"`
	NameToken    float64 `yaml:"name_token"`
	Skill        float64 `yaml:"skill"`
	Location     float64 `yaml:"location"`
	Education    float64 `yaml:"education"`
	Company      float64 `yaml:"company"`
	Role         float64 `yaml:"role"`
	Keyword      float64 `yaml:"keyword"`
	Completeness float64 `yaml:"completeness"`
}

// DefaultWeights orders evidence as name > skill > location > education/company/role > completeness.
func DefaultWeights() Weights {
	return Weights{
		NameExact:    100,
		NamePartial:  50,
		NameToken:    30,
		Skill:        30,
		Location:     25,
		Education:    15,
		Company:      15,
		Role:         15,
		Keyword:      10,
		Completeness: 5,
	}
}

func (w *Weights) category(c intent.Category) float64 {
	switch c {
	case intent.Skills:
		return w.Skill
	case intent.Locations:
		return w.Location
	case intent.Education:
		return w.Education
	case intent.Companies:
		return w.Company
	case intent.Roles:
		return w.Role
	case intent.Keywords:
		return w.Keyword
	}
	return 0
}
