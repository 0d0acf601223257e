package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"finlink/internal/codef"
	"finlink/internal/domain/asset"
	"finlink/internal/domain/expense"
)

const dateLayout = "20060102"

// Aggregator is the slice of the aggregator API incremental sync needs.
type Aggregator interface {
	FetchHistory(ctx context.Context, creds codef.Credentials, connectedID, startDate, endDate string) (*codef.TransactionHistory, error)
}

// Classifier assigns real categories to freshly ingested transactions.
type Classifier interface {
	Classify(ctx context.Context, txs []expense.Transaction) ([]expense.Transaction, error)
}

// Service pulls incremental transaction history for every linked main
// account, deduplicates against already ingested rows, and inserts what
// survives. Accounts are isolated: one account's failure never aborts the
// run.
type Service struct {
	accounts   asset.Repository
	expenses   expense.Repository
	aggregator Aggregator
	classifier Classifier
	log        *slog.Logger
	now        func() time.Time
}

func NewService(accounts asset.Repository, expenses expense.Repository, aggregator Aggregator, classifier Classifier, log *slog.Logger) *Service {
	return &Service{
		accounts:   accounts,
		expenses:   expenses,
		aggregator: aggregator,
		classifier: classifier,
		log:        log.With("component", "sync_service"),
		now:        time.Now,
	}
}

// RunAll synchronizes every linked main account and reports counts. It never
// returns an error: per-account failures are logged and counted.
func (s *Service) RunAll(ctx context.Context) Report {
	report := Report{RunID: uuid.New(), StartedAt: s.now()}
	log := s.log.With("run_id", report.RunID)

	accounts, err := s.accounts.ListByRole(ctx, asset.RoleMain)
	if err != nil {
		log.Error("account enumeration failed, nothing to sync", "error", err)
		report.EnumerationError = err.Error()
		report.FinishedAt = s.now()
		return report
	}

	report.Total = len(accounts)
	for i := range accounts {
		account := &accounts[i]
		err := s.syncAccount(ctx, account)
		switch {
		case errors.Is(err, ErrNoRemoteData):
			report.Skipped++
			log.Info("account skipped, no data to reconcile",
				"user_id", account.UserID,
				"asset_id", account.ID,
			)
		case err != nil:
			report.Failed++
			log.Error("account sync failed",
				"user_id", account.UserID,
				"asset_id", account.ID,
				"error", err,
			)
		default:
			report.Succeeded++
		}
	}

	report.FinishedAt = s.now()
	log.Info("batch sync finished",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report
}

// SyncUser runs the same per-account logic on demand for one user's main
// account. A user without a linked account is not an error.
func (s *Service) SyncUser(ctx context.Context, userID int64) error {
	account, err := s.accounts.FindByUserAndRole(ctx, userID, asset.RoleMain)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			s.log.Warn("no linked main account, skipping sync", "user_id", userID)
			return nil
		}
		return fmt.Errorf("account lookup: %w", err)
	}
	if err := s.syncAccount(ctx, account); err != nil {
		if errors.Is(err, ErrNoRemoteData) {
			s.log.Info("account skipped, no data to reconcile",
				"user_id", userID, "asset_id", account.ID)
			return nil
		}
		return err
	}
	return nil
}

// syncAccount fetches yesterday-through-today history, inserts the
// non-duplicate rows, and finally reconciles the stored balance. The balance
// is written last so an ingest failure leaves the account untouched. An
// absent response or history list returns ErrNoRemoteData and touches
// nothing.
func (s *Service) syncAccount(ctx context.Context, account *asset.Account) error {
	creds := codef.Credentials{
		BankName:    account.BankName,
		BankAccount: account.BankAccount,
		LoginID:     account.LoginID,
		Password:    account.Password,
	}

	today := s.now()
	start := today.AddDate(0, 0, -1).Format(dateLayout)
	end := today.Format(dateLayout)

	history, err := s.aggregator.FetchHistory(ctx, creds, account.ConnectedID, start, end)
	if err != nil {
		if errors.Is(err, codef.ErrNoData) {
			return fmt.Errorf("%w: %w", ErrNoRemoteData, err)
		}
		return fmt.Errorf("%w: %w", ErrHistoryFetchFailed, err)
	}
	// A response without a history list moves no money for the window; the
	// balance it may carry is not reconciled against nothing.
	if history.History == nil {
		return ErrNoRemoteData
	}

	candidates := expense.FromHistory(account.UserID, account.ID, history.History)
	fresh := make([]expense.Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if s.isDuplicate(ctx, tx) {
			continue
		}
		fresh = append(fresh, tx)
	}

	if len(fresh) > 0 {
		fresh = s.classify(ctx, fresh)
		inserted, err := s.expenses.InsertBatch(ctx, fresh)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIngestFailed, err)
		}
		s.log.Info("transactions ingested",
			"user_id", account.UserID,
			"asset_id", account.ID,
			"count", inserted,
		)
	}

	if err := s.reconcileBalance(ctx, account, history); err != nil {
		return err
	}
	return nil
}

// isDuplicate applies the suppression checks in order. Every lookup failure
// is an explicit fail-open branch: the candidate is kept rather than lost to
// a transient error.
func (s *Service) isDuplicate(ctx context.Context, tx expense.Transaction) bool {
	if tx.ExternalID != nil {
		n, err := s.expenses.CountByExternalID(ctx, *tx.ExternalID)
		switch {
		case err != nil:
			s.log.Error("external id lookup failed, keeping candidate",
				"external_id", *tx.ExternalID, "error", err)
		case n > 0:
			return true
		}

		modified, err := s.expenses.HasUserModified(ctx, *tx.ExternalID)
		switch {
		case err != nil:
			s.log.Error("user-modified lookup failed, keeping candidate",
				"external_id", *tx.ExternalID, "error", err)
		case modified:
			// A user's correction wins over re-ingested aggregator data.
			return true
		}
	}

	n, err := s.expenses.CountDuplicate(ctx, tx.UserID, tx.AssetID, tx.Amount, tx.Description, tx.TransactedAt)
	if err != nil {
		s.log.Error("composite duplicate lookup failed, keeping candidate",
			"user_id", tx.UserID, "asset_id", tx.AssetID, "error", err)
		return false
	}
	return n > 0
}

func (s *Service) classify(ctx context.Context, txs []expense.Transaction) []expense.Transaction {
	classified, err := s.classifier.Classify(ctx, txs)
	if err != nil {
		s.log.Error("classification failed, keeping sentinel categories", "error", err)
		return txs
	}
	return classified
}

func (s *Service) reconcileBalance(ctx context.Context, account *asset.Account, history *codef.TransactionHistory) error {
	if history.Balance == nil {
		return nil
	}
	balance := codef.AmountToInt64(*history.Balance)
	if balance == account.Balance {
		return nil
	}
	if err := s.accounts.UpdateBalance(ctx, account.ID, balance); err != nil {
		return fmt.Errorf("%w: %w", ErrBalanceUpdate, err)
	}
	s.log.Info("balance updated",
		"asset_id", account.ID,
		"previous", account.Balance,
		"current", balance,
	)
	return nil
}
