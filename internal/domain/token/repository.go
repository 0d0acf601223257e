package token

import (
	"context"
	"time"
)

// Repository persists the singleton token row. Get returns ErrNoToken when
// no row exists yet; Upsert updates the row in place or inserts it, so at
// most one row ever exists.
type Repository interface {
	Get(ctx context.Context) (*AccessToken, error)
	Upsert(ctx context.Context, accessToken string, expiresAt time.Time) error
}
