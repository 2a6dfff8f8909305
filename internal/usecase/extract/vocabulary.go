package extract

import (
	"strings"

	"github.com/kljensen/snowball/english"

	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
)

// maxPhraseWords bounds vocabulary phrase length in tokens.
const maxPhraseWords = 4

type entry struct {
	category intent.Category
	term     string
}

// vocabulary maps stemmed phrases to canonical category terms.
type vocabulary struct {
	phrases map[string]entry
}

// Earlier categories win when two phrases share a stem, so a bare profession
// word reads as a role rather than a skill.
var vocabularyOrder = []intent.Category{
	intent.Roles, intent.Skills, intent.Locations, intent.Companies, intent.Education,
}

var defaultVocabulary = map[intent.Category][]string{
	intent.Roles: {
		"lawyer", "advocate", "attorney", "doctor", "physician", "engineer", "software engineer",
		"developer", "programmer", "founder", "co-founder", "ceo", "cto", "coo", "manager",
		"product manager", "consultant", "teacher", "professor", "entrepreneur", "designer",
		"analyst", "data scientist", "researcher", "investor", "banker", "architect",
		"journalist", "civil servant", "ias officer", "social worker", "farmer",
		"chartered accountant", "mentor", "director", "scientist",
	},
	intent.Skills: {
		"python", "java", "javascript", "react", "node", "golang", "machine learning",
		"artificial intelligence", "data science", "devops", "cloud", "aws", "marketing",
		"digital marketing", "sales", "finance", "accounting", "fundraising", "ui/ux",
		"graphic design", "web development", "mobile development", "android", "ios",
		"blockchain", "agriculture", "social work", "public policy", "healthcare",
		"content writing", "photography", "human resources", "operations", "supply chain",
		"biotechnology", "social impact", "legal", "education",
	},
	intent.Locations: {
		"pune", "mumbai", "bombay", "bangalore", "bengaluru", "delhi", "new delhi", "ncr",
		"gurgaon", "gurugram", "noida", "hyderabad", "chennai", "kolkata", "ahmedabad",
		"jaipur", "lucknow", "patna", "bhopal", "indore", "chandigarh", "kochi", "goa",
		"nagpur", "surat", "bhubaneswar", "guwahati", "ranchi", "dehradun", "varanasi",
		"mysore", "coimbatore", "trivandrum", "vizag", "maharashtra", "karnataka", "kerala",
		"tamil nadu", "gujarat", "rajasthan", "bihar", "uttar pradesh", "west bengal",
		"odisha", "assam", "punjab", "telangana", "india", "usa", "uk", "singapore",
		"dubai", "canada", "germany", "australia",
	},
	intent.Companies: {
		"tcs", "tata consultancy services", "infosys", "wipro", "google", "microsoft",
		"amazon", "flipkart", "reliance", "tata", "mahindra", "deloitte", "accenture",
		"mckinsey", "kpmg", "pwc", "hul", "itc", "sbi", "icici", "hdfc", "zomato",
		"swiggy", "paytm", "ola",
	},
	intent.Education: {
		"iit", "iim", "nit", "bits", "iisc", "jnu", "nlu", "mba", "btech", "mtech",
		"phd", "mbbs", "llb", "indian institute of technology", "indian institute of management",
		"delhi university",
	},
}

// aliases map phrasings to the canonical term of another entry.
var defaultAliases = map[string]entry{
	"web developer":    {intent.Skills, "web development"},
	"web dev":          {intent.Skills, "web development"},
	"frontend":         {intent.Skills, "web development"},
	"front end":        {intent.Skills, "web development"},
	"ml":               {intent.Skills, "machine learning"},
	"ai":               {intent.Skills, "artificial intelligence"},
	"startup founder":  {intent.Roles, "founder"},
	"ca":               {intent.Roles, "chartered accountant"},
	"ngo":              {intent.Skills, "social impact"},
	"non profit":       {intent.Skills, "social impact"},
	"legal expert":     {intent.Roles, "lawyer"},
	"hr":               {intent.Skills, "human resources"},
	"ux":               {intent.Skills, "ui/ux"},
	"mobile developer": {intent.Skills, "mobile development"},
}

func newVocabulary(terms map[intent.Category][]string, aliases map[string]entry) *vocabulary {
	v := &vocabulary{phrases: make(map[string]entry)}
	for phrase, e := range aliases {
		v.add(phrase, e)
	}
	for _, c := range vocabularyOrder {
		for _, t := range terms[c] {
			v.add(t, entry{category: c, term: t})
		}
	}
	return v
}

func (v *vocabulary) add(phrase string, e entry) {
	key := stemPhrase(tokenize(phrase))
	if key == "" {
		return
	}
	if _, ok := v.phrases[key]; ok {
		return
	}
	v.phrases[key] = e
}

// match scans tokens left to right, preferring the longest phrase at each
// position. Matched tokens are consumed.
func (v *vocabulary) match(tokens []string) []entry {
	out, _ := v.scan(tokens)
	return out
}

// scan is match that also reports which tokens a phrase consumed.
func (v *vocabulary) scan(tokens []string) ([]entry, []bool) {
	var out []entry
	used := make([]bool, len(tokens))
	stems := make([]string, len(tokens))
	for i, t := range tokens {
		stems[i] = stem(t)
	}
	for i := 0; i < len(tokens); {
		matched := false
		for n := min(maxPhraseWords, len(tokens)-i); n > 0; n-- {
			if e, ok := v.phrases[strings.Join(stems[i:i+n], " ")]; ok {
				out = append(out, e)
				for j := i; j < i+n; j++ {
					used[j] = true
				}
				i += n
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return out, used
}

// contains reports whether any token sequence of text is a vocabulary phrase.
func (v *vocabulary) contains(tokens []string) bool {
	return len(v.match(tokens)) > 0
}

func stemPhrase(tokens []string) string {
	stems := make([]string, len(tokens))
	for i, t := range tokens {
		stems[i] = stem(t)
	}
	return strings.Join(stems, " ")
}

func stem(word string) string {
	if strings.ContainsAny(word, "/+#.") {
		return word
	}
	return english.Stem(word, false)
}

// tokenize splits on anything that is not a letter, digit or one of /+#.
// Hyphens join words ("co-founder" → "co founder").
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			return false
		case r == '/' || r == '+' || r == '#':
			return false
		}
		return true
	})
}
