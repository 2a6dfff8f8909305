package paginate

import (
	"context"

	"github.com/jagritiyatra/alumnidex/internal/domain/session"
)

// OverflowStore persists one overflow batch per user. Load returns
// domain.ErrNotFound when the user has no batch.
type OverflowStore interface {
	LoadOverflow(ctx context.Context, userKey string) (*session.Overflow, error)
	SaveOverflow(ctx context.Context, userKey string, o *session.Overflow) error
	DeleteOverflow(ctx context.Context, userKey string) error
}
