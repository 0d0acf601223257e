package asset

import (
	"context"

	"finlink/internal/domain/expense"
)

// Repository persists linked accounts. Credential columns are encrypted on
// write and decrypted on read by the implementation.
type Repository interface {
	// FindByUserAndRole returns ErrNotFound when the slot is empty.
	FindByUserAndRole(ctx context.Context, userID int64, role string) (*Account, error)
	ListByRole(ctx context.Context, role string) ([]Account, error)
	// CreateWithHistory inserts the account together with its initial
	// transactions in a single database transaction. The generated account
	// id is stamped onto every transaction before insert and returned.
	CreateWithHistory(ctx context.Context, account *Account, txs []expense.Transaction) (int64, error)
	UpdateBalance(ctx context.Context, accountID, balance int64) error
	Delete(ctx context.Context, accountID int64) error
}
