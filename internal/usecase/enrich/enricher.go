// Package enrich adds short model-written "why this matches" notes to the
// visible candidates of a reply.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/jagritiyatra/alumnidex/internal/domain/search/result"
	"github.com/jagritiyatra/alumnidex/internal/logger"
)

// DefaultPoolSize bounds concurrent model calls across all turns.
const DefaultPoolSize = 4

const maxNoteRunes = 200

const systemPrompt = "You explain in one short sentence (at most 25 words) why an alumni " +
	"profile matches a directory request. Reply with the sentence only, no quotes."

// Completer asks a language model for free text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Enricher runs note requests on a shared bounded pool.
type Enricher struct {
	llm  Completer
	pool *ants.Pool
}

// New creates an Enricher with at most poolSize concurrent model calls.
func New(llm Completer, poolSize int) (*Enricher, error) {
	if poolSize < 1 {
		poolSize = DefaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create enrichment pool: %w", err)
	}
	return &Enricher{llm: llm, pool: pool}, nil
}

// Release stops the worker pool.
func (e *Enricher) Release() {
	e.pool.Release()
}

// Notes returns a note per candidate email. It returns when every request has
// finished or ctx is done; candidates whose request failed or did not finish
// in time have no note.
func (e *Enricher) Notes(ctx context.Context, request string, cands []result.Candidate) map[string]string {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		notes = make(map[string]string, len(cands))
	)
	log := logger.FromContext(ctx)

	for _, c := range cands {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			note, err := e.llm.Complete(ctx, systemPrompt, describe(request, c))
			if err != nil {
				log.Debug("match note failed", zap.String("email", c.Email()), zap.Error(err))
				return
			}
			if note = clean(note); note != "" {
				mu.Lock()
				notes[c.Email()] = note
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			log.Warn("match note not scheduled", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]string, len(notes))
	for k, v := range notes {
		out[k] = v
	}
	return out
}

func describe(request string, c result.Candidate) string {
	p := c.Profile()
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", request)
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if p.Headline != "" {
		fmt.Fprintf(&b, "Headline: %s\n", p.Headline)
	}
	if p.CurrentRole != "" || p.CurrentOrg != "" {
		fmt.Fprintf(&b, "Current: %s %s\n", p.CurrentRole, p.CurrentOrg)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	if loc := p.Location.String(); loc != "" {
		fmt.Fprintf(&b, "Location: %s\n", loc)
	}
	if p.Bio != "" {
		fmt.Fprintf(&b, "Bio: %s\n", p.Bio)
	}
	return b.String()
}

// clean keeps the first line, drops wrapping quotes and caps the length.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if r := []rune(s); len(r) > maxNoteRunes {
		s = string(r[:maxNoteRunes-1]) + "…"
	}
	return s
}
