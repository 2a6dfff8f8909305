package alumnidex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jagritiyatra/alumnidex/internal/app"
	"github.com/jagritiyatra/alumnidex/internal/config"
	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
	profilerepo "github.com/jagritiyatra/alumnidex/internal/repository/profile"
	searchuc "github.com/jagritiyatra/alumnidex/internal/usecase/search"
)

// Profile is one alumni record.
type Profile = profile.Profile

// Reply is the rendered answer to one chat turn.
type Reply = searchuc.Reply

// Kind classifies a Reply.
type Kind = searchuc.Kind

// Reply kinds.
const (
	KindResults     = searchuc.KindResults
	KindNoResults   = searchuc.KindNoResults
	KindExhausted   = searchuc.KindExhausted
	KindNoPrevious  = searchuc.KindNoPrevious
	KindUnavailable = searchuc.KindUnavailable
	KindFailure     = searchuc.KindFailure
	KindHelp        = searchuc.KindHelp
)

// Client is the alumnidex SDK entry point.
type Client struct {
	store db.Store
	app   *app.App
}

// New creates a Client, connects to the database and prepares the profile index.
func New(opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o(cc)
	}
	if cc.db.Driver == "" {
		return nil, errors.New("alumnidex: database required (use WithRedis or WithEmbedded)")
	}
	if cc.db.Driver == config.DriverRedis && len(cc.db.Addrs) == 0 {
		return nil, errors.New("alumnidex: redis address required")
	}
	if cc.llm != nil && cc.llm.Model == "" {
		return nil, errors.New("alumnidex: model required for WithOpenAI")
	}

	cfg := config.Config{Database: cc.db, Search: cc.search}
	if cc.llm != nil {
		cfg.LLM = *cc.llm
	}
	cfg.ApplyDefaults()

	log := cc.logger
	if log == nil {
		log = zap.NewNop()
	}

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("alumnidex: %w", err)
	}

	params := app.Params{
		Store:  store,
		Prefix: cfg.Database.KeyPrefix,
		Search: cfg.Search,
		Logger: log,
	}
	if cc.self != nil {
		params.Self = cc.self
	}
	if cc.llm != nil {
		params.LLM = &cfg.LLM
	}
	a, err := app.Build(ctx, params)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("alumnidex: %w", err)
	}
	return &Client{store: store, app: a}, nil
}

// Close releases the enrichment pool and the database connection.
func (c *Client) Close() {
	c.app.Close()
	c.store.Close()
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Search answers one chat message from userKey. Continuation words such as
// "more" page through the previous search.
func (c *Client) Search(ctx context.Context, text, userKey string) Reply {
	return c.app.Search.Search(ctx, text, userKey)
}

// ShowMore returns the next page of the previous search without re-querying.
func (c *Client) ShowMore(ctx context.Context, userKey string) Reply {
	return c.app.Search.ShowMore(ctx, userKey)
}

// Profiles returns the profile directory the client searches.
func (c *Client) Profiles() *Profiles {
	return &Profiles{repo: c.app.Profiles}
}

// Profiles writes and reads alumni profiles.
type Profiles struct {
	repo *profilerepo.Repo
}

// Upsert stores profiles, replacing existing ones with the same primary email.
func (p *Profiles) Upsert(ctx context.Context, ps ...*Profile) error {
	if len(ps) == 0 {
		return nil
	}
	if err := p.repo.UpsertMany(ctx, ps); err != nil {
		return fmt.Errorf("alumnidex: %w", err)
	}
	return nil
}

// Get returns the profile whose primary email is email.
func (p *Profiles) Get(ctx context.Context, email string) (*Profile, error) {
	pr, err := p.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("alumnidex: %w", err)
	}
	return pr, nil
}
