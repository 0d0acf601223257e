package expense

import "time"

// Sentinel categories assigned at ingestion time, before classification
// replaces them with real ones.
const (
	CategoryUnclassified int64 = 14
	CategoryIncome       int64 = 13
)

// Transaction is one expense or income row. Amount is a positive magnitude;
// the category encodes the direction. ExternalID is the aggregator's
// transaction id and is nil when the bank does not report one.
type Transaction struct {
	ID           int64     `json:"expenditure_id"`
	UserID       int64     `json:"user_id"`
	AssetID      int64     `json:"asset_id"`
	CategoryID   int64     `json:"category_id"`
	Amount       int64     `json:"amount"`
	Description  string    `json:"description"`
	ExternalID   *string   `json:"external_transaction_id,omitempty"`
	UserModified bool      `json:"user_modified"`
	TransactedAt time.Time `json:"expenditure_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
