package codef

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"finlink/internal/config"
	"finlink/internal/crypto"

	"golang.org/x/exp/slog"
)

const (
	sessionCreatePath   = "/v1/account/create"
	transactionListPath = "/v1/kr/bank/p/account/transaction-list"
	sessionDeletePath   = "/v1/account/delete"
)

var (
	ErrUnknownBank = errors.New("unknown bank name")
	ErrNoData      = errors.New("aggregator response carries no data")
)

// TokenProvider supplies a valid bearer token for aggregator calls,
// renewing it behind the scenes when needed.
type TokenProvider interface {
	GetValidToken(ctx context.Context) (string, error)
}

// Client talks to the aggregator API: session creation, transaction history
// and session revocation.
type Client struct {
	baseURL   string
	publicKey string
	http      *http.Client
	tokens    TokenProvider
	log       *slog.Logger
}

func NewClient(cfg *config.Config, tokens TokenProvider, log *slog.Logger) *Client {
	return &Client{
		baseURL:   cfg.Codef.BaseURL,
		publicKey: cfg.Codef.PublicKey,
		http:      &http.Client{Timeout: 60 * time.Second},
		tokens:    tokens,
		log:       log.With("component", "codef_client"),
	}
}

// EncryptPassword prepares a bank password for transit with the aggregator's
// public key.
func (c *Client) EncryptPassword(password string) (string, error) {
	return crypto.EncryptForTransit(password, c.publicKey)
}

// CreateSession registers the bank account with the aggregator and returns
// the connected id representing the linkage.
func (c *Client) CreateSession(ctx context.Context, creds Credentials) (string, error) {
	bankCode, ok := BankCode(creds.BankName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBank, creds.BankName)
	}

	encryptedPassword, err := c.EncryptPassword(creds.Password)
	if err != nil {
		return "", fmt.Errorf("encrypt password: %w", err)
	}

	body := map[string]any{
		"accountList": []map[string]any{{
			"countryCode":  "KR",
			"businessType": "BK",
			"clientType":   "P",
			"organization": bankCode,
			"loginType":    "1",
			"id":           creds.LoginID,
			"password":     encryptedPassword,
		}},
	}

	env, err := c.post(ctx, sessionCreatePath, body)
	if err != nil {
		return "", err
	}

	var data sessionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("decode session data: %w", err)
	}
	if data.ConnectedID == "" {
		return "", fmt.Errorf("%w: connected id missing", ErrNoData)
	}
	return data.ConnectedID, nil
}

// FetchHistory returns the account balance and transactions for the window
// [startDate, endDate], both formatted as YYYYMMDD.
func (c *Client) FetchHistory(ctx context.Context, creds Credentials, connectedID, startDate, endDate string) (*TransactionHistory, error) {
	bankCode, ok := BankCode(creds.BankName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBank, creds.BankName)
	}

	encryptedPassword, err := c.EncryptPassword(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	body := map[string]any{
		"organization":    bankCode,
		"connectedId":     connectedID,
		"account":         creds.BankAccount,
		"startDate":       startDate,
		"endDate":         endDate,
		"orderBy":         "0",
		"inquiryType":     "1",
		"accountPassword": encryptedPassword,
	}

	env, err := c.post(ctx, transactionListPath, body)
	if err != nil {
		return nil, err
	}

	var history TransactionHistory
	if err := json.Unmarshal(env.Data, &history); err != nil {
		return nil, fmt.Errorf("decode history data: %w", err)
	}
	return &history, nil
}

// RevokeSession deletes the aggregator-side linkage for a connected id.
func (c *Client) RevokeSession(ctx context.Context, bankName, connectedID string) (bool, error) {
	bankCode, ok := BankCode(bankName)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownBank, bankName)
	}

	body := map[string]any{
		"accountList": []map[string]any{{
			"countryCode":  "KR",
			"businessType": "BK",
			"clientType":   "P",
			"organization": bankCode,
			"loginType":    "1",
		}},
		"connectedId": connectedID,
	}

	if _, err := c.post(ctx, sessionDeletePath, body); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*envelope, error) {
	token, err := c.tokens.GetValidToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregator returned %d: %s", resp.StatusCode, raw)
	}

	// The aggregator URL-encodes response bodies.
	decoded, err := url.QueryUnescape(string(raw))
	if err != nil {
		decoded = string(raw)
	}

	var env envelope
	if err := json.Unmarshal([]byte(decoded), &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Result.Code != "" && env.Result.Code != "CF-00000" {
		return nil, fmt.Errorf("aggregator error %s: %s", env.Result.Code, env.Result.Message)
	}
	if env.Data == nil {
		return nil, ErrNoData
	}
	return &env, nil
}
