package codef

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finlink/internal/config"

	"golang.org/x/exp/slog"
)

// OAuthClient performs the client-credentials exchange against the
// aggregator's token endpoint.
type OAuthClient struct {
	url          string
	clientID     string
	clientSecret string
	http         *http.Client
	log          *slog.Logger
}

func NewOAuthClient(cfg *config.Config, log *slog.Logger) *OAuthClient {
	return &OAuthClient{
		url:          cfg.Codef.OAuthURL,
		clientID:     cfg.Codef.ClientID,
		clientSecret: cfg.Codef.ClientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          log.With("component", "codef_oauth"),
	}
}

// Grant requests a fresh access token and returns it together with its
// lifetime in seconds.
func (c *OAuthClient) Grant(ctx context.Context) (string, int64, error) {
	if strings.TrimSpace(c.clientID) == "" || strings.TrimSpace(c.clientSecret) == "" {
		return "", 0, fmt.Errorf("aggregator client credentials are not configured")
	}

	form := strings.NewReader("grant_type=client_credentials&scope=read")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, form)
	if err != nil {
		return "", 0, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var grant grantResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if grant.AccessToken == "" {
		return "", 0, fmt.Errorf("token response carries no access_token")
	}
	if grant.ExpiresIn <= 0 {
		return "", 0, fmt.Errorf("token response carries no expires_in")
	}

	c.log.Info("access token acquired", "expires_in", grant.ExpiresIn)
	return grant.AccessToken, grant.ExpiresIn, nil
}
