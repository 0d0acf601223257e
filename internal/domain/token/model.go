package token

import "time"

// AccessToken is the single shared aggregator token. Exactly one row exists;
// renewal overwrites it in place.
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
