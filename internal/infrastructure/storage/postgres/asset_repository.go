package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"finlink/internal/crypto"
	"finlink/internal/domain/asset"
	"finlink/internal/domain/expense"
)

// AssetRepository stores linked accounts. Credential columns pass through the
// cipher on every write and read, so plaintext never reaches the database.
type AssetRepository struct {
	pool   *pgxpool.Pool
	cipher *crypto.Cipher
	log    *slog.Logger
}

func NewAssetRepository(pool *pgxpool.Pool, cipher *crypto.Cipher, log *slog.Logger) *AssetRepository {
	return &AssetRepository{
		pool:   pool,
		cipher: cipher,
		log:    log.With("component", "asset_repository"),
	}
}

const assetColumns = `asset_id, user_id, asset_name, bank_name, bank_account,
	       bank_login_id, bank_password, connected_id, balance, status, created_at`

func (r *AssetRepository) FindByUserAndRole(ctx context.Context, userID int64, role string) (*asset.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM assets
		WHERE user_id = $1 AND status = $2`, assetColumns)

	row := r.pool.QueryRow(ctx, query, userID, role)

	account, err := r.scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, asset.ErrNotFound
		}
		r.log.Error("failed to find account", "user_id", userID, "status", role, "error", err)
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (r *AssetRepository) ListByRole(ctx context.Context, role string) ([]asset.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM assets
		WHERE status = $1
		ORDER BY asset_id`, assetColumns)

	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		r.log.Error("failed to list accounts", "status", role, "error", err)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []asset.Account
	for rows.Next() {
		account, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// CreateWithHistory inserts the account and its initial transactions in one
// database transaction. A row-count mismatch on the batch insert surfaces as
// expense.ErrPartialInsert and rolls everything back.
func (r *AssetRepository) CreateWithHistory(ctx context.Context, account *asset.Account, txs []expense.Transaction) (int64, error) {
	encrypted, err := r.encryptCredentials(account)
	if err != nil {
		return 0, fmt.Errorf("encrypt credentials: %w", err)
	}

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	const insertAsset = `
		INSERT INTO assets (user_id, asset_name, bank_name, bank_account,
		                    bank_login_id, bank_password, connected_id, balance, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING asset_id, created_at`

	var accountID int64
	err = dbTx.QueryRow(ctx, insertAsset,
		account.UserID, account.Name, account.BankName,
		encrypted.BankAccount, encrypted.LoginID, encrypted.Password,
		account.ConnectedID, account.Balance, account.Role,
	).Scan(&accountID, &account.CreatedAt)
	if err != nil {
		r.log.Error("failed to insert account", "user_id", account.UserID, "error", err)
		return 0, fmt.Errorf("insert account: %w", err)
	}

	if len(txs) > 0 {
		inserted, err := insertTransactions(ctx, dbTx, accountID, txs)
		if err != nil {
			return 0, fmt.Errorf("insert history: %w", err)
		}
		if inserted != len(txs) {
			return 0, fmt.Errorf("%w: inserted %d of %d", expense.ErrPartialInsert, inserted, len(txs))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return accountID, nil
}

func (r *AssetRepository) UpdateBalance(ctx context.Context, accountID, balance int64) error {
	const query = `UPDATE assets SET balance = $2 WHERE asset_id = $1`

	tag, err := r.pool.Exec(ctx, query, accountID, balance)
	if err != nil {
		r.log.Error("failed to update balance", "asset_id", accountID, "error", err)
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrNotFound
	}
	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, accountID int64) error {
	const query = `DELETE FROM assets WHERE asset_id = $1`

	tag, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		r.log.Error("failed to delete account", "asset_id", accountID, "error", err)
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrNotFound
	}
	return nil
}

type encryptedCredentials struct {
	BankAccount string
	LoginID     string
	Password    string
}

func (r *AssetRepository) encryptCredentials(account *asset.Account) (encryptedCredentials, error) {
	var out encryptedCredentials
	var err error
	if out.BankAccount, err = r.cipher.EncryptAtRest(account.BankAccount); err != nil {
		return out, err
	}
	if out.LoginID, err = r.cipher.EncryptAtRest(account.LoginID); err != nil {
		return out, err
	}
	if out.Password, err = r.cipher.EncryptAtRest(account.Password); err != nil {
		return out, err
	}
	return out, nil
}

func (r *AssetRepository) scanAccount(row pgx.Row) (*asset.Account, error) {
	var account asset.Account
	err := row.Scan(
		&account.ID, &account.UserID, &account.Name, &account.BankName,
		&account.BankAccount, &account.LoginID, &account.Password,
		&account.ConnectedID, &account.Balance, &account.Role, &account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if account.BankAccount, err = r.cipher.DecryptAtRest(account.BankAccount); err != nil {
		return nil, fmt.Errorf("decrypt bank account: %w", err)
	}
	if account.LoginID, err = r.cipher.DecryptAtRest(account.LoginID); err != nil {
		return nil, fmt.Errorf("decrypt login id: %w", err)
	}
	if account.Password, err = r.cipher.DecryptAtRest(account.Password); err != nil {
		return nil, fmt.Errorf("decrypt password: %w", err)
	}
	return &account, nil
}
