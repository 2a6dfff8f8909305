// Package session holds the per-user conversational state: the active topic,
// the profiles already shown for it and the unshown remainder of the last search.
package session

import (
	"time"

	"github.com/jagritiyatra/alumnidex/internal/domain/intent"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
)

// MaxRecentTurns is how many user messages are kept as model context.
const MaxRecentTurns = 2

// State is the per-user search context.
type State struct {
	Topic       string         `json:"topic"`
	Intent      *intent.Intent `json:"intent,omitempty"`
	Shown       []string       `json:"shown"`
	RecentTurns []string       `json:"recent_turns"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Reset starts a new topic: the shown set is cleared.
func (s *State) Reset(topic string) {
	s.Topic = topic
	s.Shown = nil
}

// MarkShown records emails as rendered for the active topic.
func (s *State) MarkShown(emails ...string) {
	seen := make(map[string]struct{}, len(s.Shown))
	for _, e := range s.Shown {
		seen[e] = struct{}{}
	}
	for _, e := range emails {
		e = profile.NormalizeEmail(e)
		if _, ok := seen[e]; ok || e == "" {
			continue
		}
		seen[e] = struct{}{}
		s.Shown = append(s.Shown, e)
	}
}

// WasShown reports whether email was already rendered for the active topic.
func (s *State) WasShown(email string) bool {
	email = profile.NormalizeEmail(email)
	for _, e := range s.Shown {
		if e == email {
			return true
		}
	}
	return false
}

// Remember appends a user message to the recent-turn window.
func (s *State) Remember(text string) {
	s.RecentTurns = append(s.RecentTurns, text)
	if n := len(s.RecentTurns); n > MaxRecentTurns {
		s.RecentTurns = append([]string(nil), s.RecentTurns[n-MaxRecentTurns:]...)
	}
}

// Item is one stored, not yet shown, verified candidate.
type Item struct {
	Profile *profile.Profile  `json:"profile"`
	Score   float64           `json:"score"`
	Matched []intent.Category `json:"matched,omitempty"`
	Strict  bool              `json:"strict"`
}

// Overflow is the remainder of a search, waiting for "show more".
type Overflow struct {
	Topic     string    `json:"topic"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOverflow captures cands in order.
func NewOverflow(topic string, cands []result.Candidate, now time.Time) *Overflow {
	items := make([]Item, len(cands))
	for i, c := range cands {
		items[i] = Item{Profile: c.Profile(), Score: c.Score(), Matched: c.Matched(), Strict: c.Strict()}
	}
	return &Overflow{Topic: topic, Items: items, CreatedAt: now}
}

// Candidates restores the stored items.
func (o *Overflow) Candidates() []result.Candidate {
	out := make([]result.Candidate, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Profile == nil {
			continue
		}
		out = append(out, result.New(it.Profile, it.Strict).Scored(it.Score, it.Matched))
	}
	return out
}

// Expired reports whether the batch is older than ttl at now.
func (o *Overflow) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(o.CreatedAt) >= ttl
}
