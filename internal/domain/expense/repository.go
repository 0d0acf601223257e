package expense

import (
	"context"
	"time"
)

type Repository interface {
	// InsertBatch writes all transactions in one database transaction and
	// returns the inserted count. An inserted count short of len(txs) rolls
	// the whole batch back and returns ErrPartialInsert.
	InsertBatch(ctx context.Context, txs []Transaction) (int, error)

	// CountByExternalID counts rows carrying the given aggregator
	// transaction id.
	CountByExternalID(ctx context.Context, externalID string) (int, error)

	// CountDuplicate counts rows matching the composite fallback key.
	CountDuplicate(ctx context.Context, userID, assetID, amount int64, description string, transactedAt time.Time) (int, error)

	// HasUserModified reports whether any row with the given external id
	// was edited by the user.
	HasUserModified(ctx context.Context, externalID string) (bool, error)

	// DeleteByUser removes all of a user's transactions and returns the
	// number deleted.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
