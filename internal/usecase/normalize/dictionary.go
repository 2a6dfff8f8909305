package normalize

// defaultTypos maps common misspellings seen in directory queries to canonical terms.
var defaultTypos = map[string]string{
	"bussiness":       "business",
	"buisness":        "business",
	"busines":         "business",
	"bangalor":        "bangalore",
	"banglore":        "bangalore",
	"mumabi":          "mumbai",
	"dehli":           "delhi",
	"hydrabad":        "hyderabad",
	"hyderbad":        "hyderabad",
	"chenai":          "chennai",
	"kolkatta":        "kolkata",
	"entreprenuer":    "entrepreneur",
	"entrepreneure":   "entrepreneur",
	"enterpreneur":    "entrepreneur",
	"entrepeneur":     "entrepreneur",
	"lawer":           "lawyer",
	"advocat":         "advocate",
	"docter":          "doctor",
	"engeneer":        "engineer",
	"enginer":         "engineer",
	"softwere":        "software",
	"sofware":         "software",
	"developper":      "developer",
	"devloper":        "developer",
	"programer":       "programmer",
	"markting":        "marketing",
	"marketting":      "marketing",
	"finanace":        "finance",
	"acounting":       "accounting",
	"managment":       "management",
	"manger":          "manager",
	"consultent":      "consultant",
	"agricultre":      "agriculture",
	"agriculure":      "agriculture",
	"educaton":        "education",
	"healthcar":       "healthcare",
	"fundrasing":      "fundraising",
	"machine lerning": "machine learning",
	"datascience":     "data science",
	"phython":         "python",
	"pyhton":          "python",
	"javscript":       "javascript",
	"reactjs":         "react",
}

// defaultExpansions are clusters of related terms used to widen a query.
var defaultExpansions = [][]string{
	{"devops", "kubernetes", "docker", "ci/cd", "terraform", "site reliability"},
	{"web development", "react", "javascript", "frontend", "html", "css", "node", "full stack"},
	{"mobile development", "android", "ios", "flutter", "react native"},
	{"machine learning", "artificial intelligence", "deep learning", "data science", "nlp"},
	{"data science", "machine learning", "analytics", "statistics", "python"},
	{"cloud", "aws", "azure", "gcp"},
	{"finance", "banking", "investment", "accounting", "fintech"},
	{"marketing", "digital marketing", "branding", "seo", "growth"},
	{"lawyer", "advocate", "legal", "attorney", "litigation"},
	{"doctor", "physician", "medical", "mbbs", "healthcare"},
	{"entrepreneur", "founder", "co-founder", "startup"},
	{"social impact", "ngo", "non-profit", "development sector", "social enterprise"},
	{"agriculture", "farming", "agritech", "rural development"},
	{"education", "teaching", "edtech", "teacher"},
	{"fundraising", "investor relations", "venture capital"},
	{"public policy", "governance", "civil services", "policy"},
}
