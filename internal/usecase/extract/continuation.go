package extract

// DefaultContinuationWords trigger a "show more" turn.
var DefaultContinuationWords = []string{"more", "next", "continue"}

var continuationFiller = toSet(
	"show", "me", "see", "give", "some", "any", "the", "results", "result", "profiles",
	"please", "pls", "plz", "ok", "okay", "yes", "load", "few", "a", "bit", "send",
	"can", "you", "i", "want", "to", "get", "let", "lets", "s", "people", "options",
)

// Continuation classifies messages that only ask for the next page.
type Continuation struct {
	words map[string]struct{}
}

// NewContinuation builds a classifier from trigger words; nil uses the defaults.
func NewContinuation(words []string) *Continuation {
	if len(words) == 0 {
		words = DefaultContinuationWords
	}
	return &Continuation{words: toSet(words...)}
}

// Is reports whether text contains a trigger word and nothing but filler.
// "show more" qualifies; "more lawyers in delhi" does not.
func (c *Continuation) Is(text string) bool {
	tokens := tokenize(text)
	trigger := false
	for _, t := range tokens {
		if _, ok := c.words[t]; ok {
			trigger = true
			continue
		}
		if _, ok := continuationFiller[t]; !ok {
			return false
		}
	}
	return trigger
}
