package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"finlink/internal/domain/expense"
)

type ExpenseRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewExpenseRepository(pool *pgxpool.Pool, log *slog.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		pool: pool,
		log:  log.With("component", "expense_repository"),
	}
}

const insertExpense = `
	INSERT INTO expenses (user_id, asset_id, category_id, amount, description,
	                      external_transaction_id, user_modified, expenditure_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// insertTransactions queues every row into one pgx batch on the given
// transaction. When assetID is non-zero it overrides the rows' account id,
// which lets account creation stamp the freshly generated id.
func insertTransactions(ctx context.Context, dbTx pgx.Tx, assetID int64, txs []expense.Transaction) (int, error) {
	batch := &pgx.Batch{}
	for _, tx := range txs {
		rowAssetID := tx.AssetID
		if assetID != 0 {
			rowAssetID = assetID
		}
		batch.Queue(insertExpense,
			tx.UserID, rowAssetID, tx.CategoryID, tx.Amount, tx.Description,
			tx.ExternalID, tx.UserModified, tx.TransactedAt,
		)
	}

	results := dbTx.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range txs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch insert: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// InsertBatch writes all rows in a single database transaction and returns
// the number inserted.
func (r *ExpenseRepository) InsertBatch(ctx context.Context, txs []expense.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	inserted, err := insertTransactions(ctx, dbTx, 0, txs)
	if err != nil {
		r.log.Error("failed to insert transactions", "error", err)
		return 0, err
	}
	if inserted != len(txs) {
		return 0, fmt.Errorf("%w: inserted %d of %d", expense.ErrPartialInsert, inserted, len(txs))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

func (r *ExpenseRepository) CountByExternalID(ctx context.Context, externalID string) (int, error) {
	const query = `SELECT count(*) FROM expenses WHERE external_transaction_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, externalID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by external id: %w", err)
	}
	return count, nil
}

func (r *ExpenseRepository) CountDuplicate(ctx context.Context, userID, assetID, amount int64, description string, transactedAt time.Time) (int, error) {
	const query = `
		SELECT count(*)
		FROM expenses
		WHERE user_id = $1 AND asset_id = $2 AND amount = $3
		  AND description = $4 AND expenditure_date = $5`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, assetID, amount, description, transactedAt).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count duplicate: %w", err)
	}
	return count, nil
}

func (r *ExpenseRepository) HasUserModified(ctx context.Context, externalID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM expenses
			WHERE external_transaction_id = $1 AND user_modified
		)`

	var modified bool
	if err := r.pool.QueryRow(ctx, query, externalID).Scan(&modified); err != nil {
		return false, fmt.Errorf("check user modified: %w", err)
	}
	return modified, nil
}

func (r *ExpenseRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	const query = `DELETE FROM expenses WHERE user_id = $1`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to delete transactions", "user_id", userID, "error", err)
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}
