// Package classify calls the external transaction-classification service.
// It is consumed as a black box: transactions go in with sentinel categories,
// real category ids come back.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/exp/slog"

	"finlink/internal/config"
	"finlink/internal/domain/expense"
)

var ErrInvalidResponse = errors.New("malformed classification response")

// responseSchema guards against the classifier drifting its contract.
// Anything that does not validate is rejected wholesale so callers keep
// their sentinel categories instead of absorbing garbage ids.
const responseSchema = `{
	"type": "object",
	"required": ["results"],
	"properties": {
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["expenditure_id", "category_id"],
				"properties": {
					"expenditure_id": {"type": "integer", "minimum": 0},
					"category_id": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`

type requestItem struct {
	ExpenditureID int64  `json:"expenditure_id"`
	Description   string `json:"description"`
}

type classifyRequest struct {
	Exps []requestItem `json:"exps"`
}

type responseItem struct {
	ExpenditureID int64 `json:"expenditure_id"`
	CategoryID    int64 `json:"category_id"`
}

type classifyResponse struct {
	Results []responseItem `json:"results"`
}

type Client struct {
	url    string
	http   *http.Client
	schema *gojsonschema.Schema
	log    *slog.Logger
}

func NewClient(cfg *config.Config, log *slog.Logger) (*Client, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &Client{
		url:    cfg.Classify.URL,
		http:   &http.Client{Timeout: 30 * time.Second},
		schema: schema,
		log:    log.With("component", "classify_client"),
	}, nil
}

// Classify sends the unclassified withdrawals to the classification service
// and returns a copy of txs with the returned category ids applied. Rows the
// service does not answer for keep their sentinel category. Transactions are
// keyed by their position in txs since they have no database id yet.
func (c *Client) Classify(ctx context.Context, txs []expense.Transaction) ([]expense.Transaction, error) {
	payload := classifyRequest{Exps: make([]requestItem, 0, len(txs))}
	for i, tx := range txs {
		if tx.CategoryID != expense.CategoryUnclassified {
			continue
		}
		payload.Exps = append(payload.Exps, requestItem{
			ExpenditureID: int64(i),
			Description:   tx.Description,
		})
	}
	if len(payload.Exps) == 0 {
		return txs, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode classification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build classification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call classification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classification service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read classification response: %w", err)
	}

	if err := c.validate(raw); err != nil {
		return nil, err
	}

	var parsed classifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	out := make([]expense.Transaction, len(txs))
	copy(out, txs)
	for _, r := range parsed.Results {
		if r.ExpenditureID < 0 || r.ExpenditureID >= int64(len(out)) {
			c.log.Warn("classification result for unknown row", "expenditure_id", r.ExpenditureID)
			continue
		}
		out[r.ExpenditureID].CategoryID = r.CategoryID
	}
	return out, nil
}

func (c *Client) validate(raw []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			c.log.Warn("classification response violation", "detail", desc.String())
		}
		return ErrInvalidResponse
	}
	return nil
}
