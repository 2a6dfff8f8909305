// Package format renders search replies as plain chat text under a hard size ceiling.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
)

// Size limits, in runes.
const (
	DefaultCeiling = 1500
	minCeiling     = 200
	bioLimit       = 160
)

// TruncatedMarker ends a block that had to be cut to fit.
const TruncatedMarker = "… (message truncated)"

const blockSep = "\n\n"

// Entry is one candidate to render with its optional match note.
type Entry struct {
	Candidate result.Candidate
	Note      string
}

// Formatter is safe for concurrent use.
type Formatter struct {
	ceiling  int
	moreWord string
}

// New creates a Formatter. moreWord is what the user types to continue.
func New(ceiling int, moreWord string) *Formatter {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	ceiling = max(ceiling, minCeiling)
	if moreWord == "" {
		moreWord = "more"
	}
	return &Formatter{ceiling: ceiling, moreWord: moreWord}
}

// Ceiling returns the maximum reply length in runes.
func (f *Formatter) Ceiling() int { return f.ceiling }

// Results renders entries under header until the next block would break the
// ceiling. pending counts candidates already waiting in the overflow batch;
// entries that did not fit are added to the "more" hint. It returns the text
// and how many entries were rendered, which is at least one when entries is
// not empty. A header too long to leave room for one entry and the hint is
// truncated.
func (f *Formatter) Results(header string, entries []Entry, pending int) (string, int) {
	reserve := f.hintCost(pending + len(entries) - 1)
	if len(entries) > 0 {
		reserve += runes(blockSep) + min(runes(shortBlock(entries[0])), f.ceiling/2)
	} else {
		reserve = f.hintCost(pending)
	}
	header = fit(header, f.ceiling-reserve)

	var b strings.Builder
	b.WriteString(header)
	used := runes(header)

	rendered := 0
	for i, e := range entries {
		block := blockSep + renderBlock(i+1, e)
		need := used + runes(block) + f.hintCost(pending+len(entries)-i-1)
		if need > f.ceiling {
			break
		}
		b.WriteString(block)
		used += runes(block)
		rendered++
	}

	if rendered == 0 && len(entries) > 0 {
		room := f.ceiling - used - runes(blockSep) - f.hintCost(pending+len(entries)-1)
		b.WriteString(blockSep + fit(shortBlock(entries[0]), room))
		rendered = 1
	}

	if left := pending + len(entries) - rendered; left > 0 {
		b.WriteString(blockSep + f.hint(left))
	}
	return fit(b.String(), f.ceiling), rendered
}

// Closing marks the last page of a search when it fits under the ceiling.
func (f *Formatter) Closing(text string) string {
	const end = "That's all for this search."
	if runes(text)+runes(blockSep+end) > f.ceiling {
		return text
	}
	return text + blockSep + end
}

// NoResults suggests broader terms and, when sample is not empty, a few other
// alumni. A long summary is truncated to keep the suggestion under the ceiling.
func (f *Formatter) NoResults(summary string, sample []*profile.Profile) string {
	const (
		lead     = "I couldn't find alumni matching "
		advice   = ". Try broader terms, for example just a skill or just a city."
		meantime = "Meanwhile, here are a few alumni you could connect with:"
	)
	var b strings.Builder
	if summary == "" {
		b.WriteString("I couldn't find any matching alumni" + advice)
	} else {
		b.WriteString(lead + fit(summary, f.ceiling-runes(lead)-runes(advice)) + advice)
	}
	if len(sample) == 0 || runes(b.String())+runes(blockSep+meantime) > f.ceiling {
		return b.String()
	}

	b.WriteString(blockSep + meantime)
	used := runes(b.String())
	for _, p := range sample {
		line := "\n- " + p.Name
		if r := roleLine(p); r != "" {
			line += " (" + r + ")"
		}
		if used+runes(line) > f.ceiling {
			break
		}
		b.WriteString(line)
		used += runes(line)
	}
	return fit(b.String(), f.ceiling)
}

// Exhausted is the reply when a batch has nothing left.
func (f *Formatter) Exhausted() string {
	return "That's everything for this search. Send a new message to look for someone else."
}

// NoPrevious is the reply to "more" without a live search.
func (f *Formatter) NoPrevious() string {
	return `There is no recent search to continue. Tell me who you are looking for, for example "lawyers in delhi".`
}

// Unavailable is the apology for a store outage.
func (f *Formatter) Unavailable() string {
	return "The alumni directory can't be reached right now. Please try again in a few minutes."
}

// Failure is the generic reply for unexpected errors.
func (f *Formatter) Failure() string {
	return "Something went wrong while searching. Please try again."
}

// Help explains what to ask.
func (f *Formatter) Help() string {
	return "Ask me to find alumni by skill, city, college, company or role, " +
		`for example "web developers in pune" or "who is Asha Verma". ` +
		fmt.Sprintf("Type %q to see more results.", f.moreWord)
}

// Header introduces a first page for intent in.
func Header(in *intent.Intent) string {
	if s := in.Summary(); s != "" {
		return "Alumni matching " + s + ":"
	}
	return "Matching alumni:"
}

// MoreHeader introduces a continuation page for topic.
func MoreHeader(topic string) string {
	if topic == "" {
		return "More matching alumni:"
	}
	return "More results for \"" + topic + "\":"
}

func (f *Formatter) hint(n int) string {
	return fmt.Sprintf("Type %q to see %d more.", f.moreWord, n)
}

func (f *Formatter) hintCost(left int) int {
	if left <= 0 {
		return 0
	}
	return runes(blockSep) + runes(f.hint(left))
}

func renderBlock(n int, e Entry) string {
	p := e.Candidate.Profile()
	lines := []string{fmt.Sprintf("*%d. %s*", n, p.Name)}
	if r := roleLine(p); r != "" {
		lines = append(lines, r)
	}
	if loc := p.Location.String(); loc != "" {
		lines = append(lines, "Location: "+loc)
	}
	if e.Note != "" {
		lines = append(lines, e.Note)
	} else if bio := strings.TrimSpace(p.Bio); bio != "" {
		lines = append(lines, trim(bio, bioLimit))
	}
	if badges := badges(e.Candidate.Matched()); badges != "" {
		lines = append(lines, "Matches: "+badges)
	}
	if c := contactLine(p); c != "" {
		lines = append(lines, c)
	}
	return strings.Join(lines, "\n")
}

func shortBlock(e Entry) string {
	p := e.Candidate.Profile()
	lines := []string{"*" + p.Name + "*"}
	if r := roleLine(p); r != "" {
		lines = append(lines, r)
	}
	if email := p.Key(); email != "" {
		lines = append(lines, email)
	}
	return strings.Join(lines, "\n")
}

func roleLine(p *profile.Profile) string {
	switch {
	case p.Headline != "":
		return p.Headline
	case p.CurrentRole != "" && p.CurrentOrg != "":
		return p.CurrentRole + " @ " + p.CurrentOrg
	case p.CurrentRole != "":
		return p.CurrentRole
	default:
		return p.CurrentOrg
	}
}

func contactLine(p *profile.Profile) string {
	parts := make([]string, 0, 2)
	if email := p.Key(); email != "" {
		parts = append(parts, email)
	}
	if p.LinkedIn != "" {
		parts = append(parts, p.LinkedIn)
	}
	return strings.Join(parts, " | ")
}

func badges(cats []intent.Category) string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// fit returns s unchanged when it has at most room runes, otherwise a prefix
// ending in TruncatedMarker.
func fit(s string, room int) string {
	if runes(s) <= room {
		return s
	}
	keep := room - runes(TruncatedMarker)
	if keep <= 0 {
		return TruncatedMarker
	}
	return string([]rune(s)[:keep]) + TruncatedMarker
}

func trim(s string, n int) string {
	if runes(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n-1])) + "…"
}

func runes(s string) int {
	return utf8.RuneCountInString(s)
}
