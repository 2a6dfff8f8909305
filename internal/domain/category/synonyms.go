package category

import (
	"strings"

	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
)

// synonym groups: every member of a group expands to the whole group.
var synonymGroups = map[intent.Category][][]string{
	intent.Locations: {
		{"bangalore", "bengaluru"},
		{"mumbai", "bombay"},
		{"delhi", "new delhi", "ncr"},
		{"gurgaon", "gurugram"},
		{"chennai", "madras"},
		{"kolkata", "calcutta"},
		{"pune", "poona"},
		{"mysore", "mysuru"},
		{"trivandrum", "thiruvananthapuram"},
		{"vizag", "visakhapatnam"},
		{"usa", "united states", "america"},
		{"uk", "united kingdom", "england"},
		{"uae", "dubai", "united arab emirates"},
	},
	intent.Education: {
		{"iit", "indian institute of technology"},
		{"iim", "indian institute of management"},
		{"nit", "national institute of technology"},
		{"iisc", "indian institute of science"},
		{"bits", "birla institute"},
		{"du", "delhi university", "university of delhi"},
		{"jnu", "jawaharlal nehru university"},
		{"nlu", "national law university"},
		{"mba", "master of business administration"},
		{"btech", "b.tech", "bachelor of technology"},
		{"mtech", "m.tech", "master of technology"},
		{"phd", "ph.d", "doctorate"},
		{"mbbs", "bachelor of medicine"},
	},
	intent.Companies: {
		{"tcs", "tata consultancy services"},
		{"infosys", "infy"},
		{"hul", "hindustan unilever"},
		{"l&t", "larsen & toubro", "larsen and toubro"},
		{"sbi", "state bank of india"},
		{"meta", "facebook"},
		{"google", "alphabet"},
	},
}

var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[intent.Category]map[string][]string {
	idx := make(map[intent.Category]map[string][]string, len(synonymGroups))
	for c, groups := range synonymGroups {
		m := make(map[string][]string)
		for _, g := range groups {
			for _, term := range g {
				m[term] = g
			}
		}
		idx[c] = m
	}
	return idx
}

// Synonyms returns term followed by its synonyms for c. Unknown terms expand to themselves.
func Synonyms(c intent.Category, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	out := []string{term}
	group, ok := synonymIndex[c][term]
	if !ok {
		return out
	}
	for _, s := range group {
		if s != term {
			out = append(out, s)
		}
	}
	return out
}
