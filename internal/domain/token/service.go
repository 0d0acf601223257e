package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// renewalBuffer renews the token this long before actual expiry so no call
// goes out with a token about to die mid-flight.
const renewalBuffer = 10 * time.Minute

// Grantor performs the client-credentials exchange with the aggregator and
// returns a fresh token plus its lifetime in seconds.
type Grantor interface {
	Grant(ctx context.Context) (accessToken string, expiresIn int64, err error)
}

type Servicer interface {
	GetValidToken(ctx context.Context) (string, error)
}

type Service struct {
	repo    Repository
	grantor Grantor
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, grantor Grantor, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		grantor: grantor,
		log:     log.With("component", "token_service"),
		now:     time.Now,
	}
}

// GetValidToken returns the cached token, renewing it first when the row is
// absent or inside the renewal buffer. Concurrent callers may race the
// renewal window and both renew; the upsert makes that harmless, the last
// writer wins.
func (s *Service) GetValidToken(ctx context.Context) (string, error) {
	current, err := s.repo.Get(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		// A failed read is treated like an absent row: renewal either
		// recovers or reports the real problem.
		s.log.Warn("token lookup failed, forcing renewal", "error", err)
		current = nil
	}

	if current != nil && !s.expiring(current) {
		return current.Token, nil
	}

	renewed, err := s.renew(ctx)
	if err != nil {
		return "", err
	}
	return renewed, nil
}

func (s *Service) expiring(t *AccessToken) bool {
	return !s.now().Add(renewalBuffer).Before(t.ExpiresAt)
}

func (s *Service) renew(ctx context.Context) (string, error) {
	accessToken, expiresIn, err := s.grantor.Grant(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenAcquisition, err)
	}
	if accessToken == "" {
		return "", fmt.Errorf("%w: grant returned empty token", ErrTokenAcquisition)
	}

	expiresAt := s.now().Add(time.Duration(expiresIn) * time.Second)
	if err := s.repo.Upsert(ctx, accessToken, expiresAt); err != nil {
		return "", fmt.Errorf("%w: persist token: %v", ErrTokenAcquisition, err)
	}

	s.log.Info("access token renewed", "expires_at", expiresAt)
	return accessToken, nil
}
