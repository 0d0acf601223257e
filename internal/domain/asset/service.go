package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"finlink/internal/codef"
	"finlink/internal/domain/expense"
)

const dateLayout = "20060102"

// AggregatorClient is the slice of the aggregator API the linker needs.
type AggregatorClient interface {
	CreateSession(ctx context.Context, creds codef.Credentials) (string, error)
	FetchHistory(ctx context.Context, creds codef.Credentials, connectedID, startDate, endDate string) (*codef.TransactionHistory, error)
	RevokeSession(ctx context.Context, bankName, connectedID string) (bool, error)
}

// Classifier assigns category ids to freshly ingested transactions.
type Classifier interface {
	Classify(ctx context.Context, txs []expense.Transaction) ([]expense.Transaction, error)
}

type Service struct {
	accounts   Repository
	expenses   expense.Repository
	aggregator AggregatorClient
	classifier Classifier
	log        *slog.Logger
	now        func() time.Time
}

func NewService(accounts Repository, expenses expense.Repository, aggregator AggregatorClient, classifier Classifier, log *slog.Logger) *Service {
	return &Service{
		accounts:   accounts,
		expenses:   expenses,
		aggregator: aggregator,
		classifier: classifier,
		log:        log.With("component", "asset_service"),
		now:        time.Now,
	}
}

// Connect links the user's main bank account: it opens an aggregator session,
// pulls roughly three months of history, and persists the account with its
// initial transactions atomically. Slot conflicts and missing credentials are
// returned as-is; every other failure is wrapped in ErrConnectionFailed.
func (s *Service) Connect(ctx context.Context, req ConnectRequest) (*Account, error) {
	account, err := s.connect(ctx, req)
	if err != nil {
		if errors.Is(err, ErrAlreadyLinked) || errors.Is(err, ErrMissingCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return account, nil
}

func (s *Service) connect(ctx context.Context, req ConnectRequest) (*Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireEmptySlot(ctx, req.UserID, RoleMain); err != nil {
		return nil, err
	}

	creds := codef.Credentials{
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		LoginID:     req.LoginID,
		Password:    req.Password,
	}

	connectedID, err := s.aggregator.CreateSession(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCreateFailed, err)
	}

	start, end := s.initialWindow()
	history, err := s.aggregator.FetchHistory(ctx, creds, connectedID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryFetchFailed, err)
	}

	account := &Account{
		UserID:      req.UserID,
		Name:        accountName(history, req.BankName),
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		LoginID:     req.LoginID,
		Password:    req.Password,
		ConnectedID: connectedID,
		Balance:     openingBalance(history),
		Role:        RoleMain,
	}

	txs := expense.FromHistory(req.UserID, 0, history.History)
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	txs = s.classify(ctx, txs)

	accountID, err := s.accounts.CreateWithHistory(ctx, account, txs)
	if err != nil {
		if errors.Is(err, expense.ErrPartialInsert) {
			return nil, fmt.Errorf("%w: %w", ErrPartialIngest, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrAccountPersistFailed, err)
	}
	account.ID = accountID

	s.log.Info("account linked",
		"user_id", req.UserID,
		"asset_id", accountID,
		"transactions", len(txs),
	)
	return account, nil
}

// ConnectSub registers a secondary account slot. Sub accounts are not wired
// to the aggregator and start with no history.
func (s *Service) ConnectSub(ctx context.Context, req ConnectRequest) (*Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireEmptySlot(ctx, req.UserID, RoleSub); err != nil {
		return nil, err
	}

	account := &Account{
		UserID:      req.UserID,
		Name:        req.BankName + " 계좌",
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		LoginID:     req.LoginID,
		Password:    req.Password,
		Role:        RoleSub,
	}

	accountID, err := s.accounts.CreateWithHistory(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	account.ID = accountID

	s.log.Info("sub account linked", "user_id", req.UserID, "asset_id", accountID)
	return account, nil
}

// Disconnect revokes the aggregator session and removes the account together
// with the user's synchronized transactions. The session is revoked first so
// a failed revocation leaves the account in place for a retry.
func (s *Service) Disconnect(ctx context.Context, userID int64, role string) error {
	account, err := s.accounts.FindByUserAndRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrDisconnectionFailed, err)
	}

	if account.ConnectedID != "" {
		ok, err := s.aggregator.RevokeSession(ctx, account.BankName, account.ConnectedID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDisconnectionFailed, err)
		}
		if !ok {
			return fmt.Errorf("%w: aggregator refused to revoke session", ErrDisconnectionFailed)
		}
	}

	if role == RoleMain {
		deleted, err := s.expenses.DeleteByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDisconnectionFailed, err)
		}
		s.log.Info("synchronized transactions removed", "user_id", userID, "count", deleted)
	}

	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrDisconnectionFailed, err)
	}

	s.log.Info("account disconnected", "user_id", userID, "asset_id", account.ID, "status", role)
	return nil
}

func (s *Service) requireEmptySlot(ctx context.Context, userID int64, role string) error {
	_, err := s.accounts.FindByUserAndRole(ctx, userID, role)
	switch {
	case err == nil:
		return ErrAlreadyLinked
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return fmt.Errorf("slot lookup: %w", err)
	}
}

// classify is best effort. A classifier outage must not block linking, so
// failures are logged and the sentinel categories stay in place.
func (s *Service) classify(ctx context.Context, txs []expense.Transaction) []expense.Transaction {
	classified, err := s.classifier.Classify(ctx, txs)
	if err != nil {
		s.log.Error("classification failed, keeping sentinel categories", "error", err)
		return txs
	}
	return classified
}

// initialWindow spans from the first day of the month three months back
// through today, both inclusive.
func (s *Service) initialWindow() (string, string) {
	today := s.now()
	start := time.Date(today.Year(), today.Month()-3, 1, 0, 0, 0, 0, today.Location())
	return start.Format(dateLayout), today.Format(dateLayout)
}

func accountName(history *codef.TransactionHistory, bankName string) string {
	if history != nil && history.AccountName != "" {
		return history.AccountName
	}
	return bankName + " 계좌"
}

func openingBalance(history *codef.TransactionHistory) int64 {
	if history == nil || history.Balance == nil {
		return 0
	}
	return codef.AmountToInt64(*history.Balance)
}
