package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"finlink/internal/domain/token"
)

// TokenRepository holds the single aggregator bearer token. The table is
// pinned to one row; renewal replaces it in place.
type TokenRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewTokenRepository(pool *pgxpool.Pool, log *slog.Logger) *TokenRepository {
	return &TokenRepository{
		pool: pool,
		log:  log.With("component", "token_repository"),
	}
}

func (r *TokenRepository) Get(ctx context.Context) (*token.AccessToken, error) {
	const query = `
		SELECT access_token, expires_at, updated_at
		FROM codef_access_token
		WHERE token_id = 1`

	var t token.AccessToken
	err := r.pool.QueryRow(ctx, query).Scan(&t.Token, &t.ExpiresAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, token.ErrNoToken
		}
		r.log.Error("failed to read token", "error", err)
		return nil, fmt.Errorf("read token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepository) Upsert(ctx context.Context, accessToken string, expiresAt time.Time) error {
	const query = `
		INSERT INTO codef_access_token (token_id, access_token, expires_at, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (token_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    expires_at   = EXCLUDED.expires_at,
		    updated_at   = now()`

	if _, err := r.pool.Exec(ctx, query, accessToken, expiresAt); err != nil {
		r.log.Error("failed to upsert token", "error", err)
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}
