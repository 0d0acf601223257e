package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"finlink/internal/codef"
	"finlink/internal/domain/asset"
	"finlink/internal/domain/expense"
)

// MockAccountRepository is a mock implementation of asset.Repository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByUserAndRole(ctx context.Context, userID int64, role string) (*asset.Account, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Account), args.Error(1)
}

func (m *MockAccountRepository) ListByRole(ctx context.Context, role string) ([]asset.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]asset.Account), args.Error(1)
}

func (m *MockAccountRepository) CreateWithHistory(ctx context.Context, account *asset.Account, txs []expense.Transaction) (int64, error) {
	args := m.Called(ctx, account, txs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, accountID, balance int64) error {
	args := m.Called(ctx, accountID, balance)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, accountID int64) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) InsertBatch(ctx context.Context, txs []expense.Transaction) (int, error) {
	args := m.Called(ctx, txs)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepository) CountByExternalID(ctx context.Context, externalID string) (int, error) {
	args := m.Called(ctx, externalID)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepository) CountDuplicate(ctx context.Context, userID, assetID, amount int64, description string, transactedAt time.Time) (int, error) {
	args := m.Called(ctx, userID, assetID, amount, description, transactedAt)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepository) HasUserModified(ctx context.Context, externalID string) (bool, error) {
	args := m.Called(ctx, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockExpenseRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) FetchHistory(ctx context.Context, creds codef.Credentials, connectedID, startDate, endDate string) (*codef.TransactionHistory, error) {
	args := m.Called(ctx, creds, connectedID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*codef.TransactionHistory), args.Error(1)
}

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, txs []expense.Transaction) ([]expense.Transaction, error) {
	args := m.Called(ctx, txs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Transaction), args.Error(1)
}

func newTestService(accounts *MockAccountRepository, expenses *MockExpenseRepository, agg *MockAggregator, cls *MockClassifier) *Service {
	svc := NewService(accounts, expenses, agg, cls, slog.Default())
	svc.now = func() time.Time {
		return time.Date(2024, time.May, 15, 0, 30, 0, 0, time.UTC)
	}
	return svc
}

func linkedAccount(id, userID, balance int64) asset.Account {
	return asset.Account{
		ID:          id,
		UserID:      userID,
		BankName:    "국민은행",
		BankAccount: "123-456-789",
		LoginID:     "hong",
		Password:    "secret",
		ConnectedID: "conn-1",
		Balance:     balance,
		Role:        asset.RoleMain,
	}
}

func historyWithEntry(balance, externalID string) *codef.TransactionHistory {
	return &codef.TransactionHistory{
		Balance: &balance,
		History: []codef.HistoryEntry{
			{Date: "20240514", Time: "093000", Out: "4,500", Description: "coffee", TransactionID: externalID},
		},
	}
}

func passthroughClassifier() *MockClassifier {
	cls := new(MockClassifier)
	cls.On("Classify", mock.Anything, mock.Anything).Return(nil, errors.New("classifier offline")).Maybe()
	return cls
}

func TestService_RunAll(t *testing.T) {
	t.Run("isolates a failing account from the rest of the run", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		expenses := new(MockExpenseRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, expenses, agg, passthroughClassifier())

		list := []asset.Account{
			linkedAccount(1, 10, 1000),
			linkedAccount(2, 20, 2000),
			linkedAccount(3, 30, 3000),
		}
		list[1].ConnectedID = "conn-broken"
		accounts.On("ListByRole", mock.Anything, asset.RoleMain).Return(list, nil)

		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-1", "20240514", "20240515").
			Return(historyWithEntry("1,000", "tr-a"), nil)
		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-broken", "20240514", "20240515").
			Return(nil, errors.New("aggregator timeout"))

		expenses.On("CountByExternalID", mock.Anything, "tr-a").Return(0, nil)
		expenses.On("HasUserModified", mock.Anything, "tr-a").Return(false, nil)
		expenses.On("CountDuplicate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(0, nil)
		expenses.On("InsertBatch", mock.Anything, mock.Anything).Return(1, nil)
		accounts.On("UpdateBalance", mock.Anything, int64(3), int64(1000)).Return(nil)

		report := svc.RunAll(context.Background())

		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Succeeded)
		assert.Equal(t, 1, report.Failed)
		assert.NotEqual(t, report.RunID.String(), "00000000-0000-0000-0000-000000000000")
	})

	t.Run("skips an account whose response carries no history list", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		expenses := new(MockExpenseRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, expenses, agg, passthroughClassifier())

		account := linkedAccount(1, 10, 1000)
		accounts.On("ListByRole", mock.Anything, asset.RoleMain).Return([]asset.Account{account}, nil)
		balance := "2,000"
		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-1", mock.Anything, mock.Anything).
			Return(&codef.TransactionHistory{Balance: &balance, History: nil}, nil)

		report := svc.RunAll(context.Background())

		assert.Equal(t, 1, report.Total)
		assert.Equal(t, 0, report.Succeeded)
		assert.Equal(t, 0, report.Failed)
		assert.Equal(t, 1, report.Skipped)
		accounts.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
		expenses.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	})

	t.Run("skips an account on a no-data envelope", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, new(MockExpenseRepository), agg, passthroughClassifier())

		account := linkedAccount(1, 10, 1000)
		accounts.On("ListByRole", mock.Anything, asset.RoleMain).Return([]asset.Account{account}, nil)
		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-1", mock.Anything, mock.Anything).
			Return(nil, codef.ErrNoData)

		report := svc.RunAll(context.Background())

		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, 0, report.Failed)
	})

	t.Run("reports an empty run when no accounts are linked", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		svc := newTestService(accounts, new(MockExpenseRepository), new(MockAggregator), passthroughClassifier())

		accounts.On("ListByRole", mock.Anything, asset.RoleMain).Return([]asset.Account{}, nil)

		report := svc.RunAll(context.Background())

		assert.Equal(t, 0, report.Total)
		assert.Equal(t, 0, report.Succeeded)
		assert.Equal(t, 0, report.Failed)
		assert.Empty(t, report.EnumerationError)
	})

	t.Run("surfaces an enumeration failure on the report", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		svc := newTestService(accounts, new(MockExpenseRepository), new(MockAggregator), passthroughClassifier())

		accounts.On("ListByRole", mock.Anything, asset.RoleMain).Return(nil, errors.New("db down"))

		report := svc.RunAll(context.Background())

		assert.Equal(t, 0, report.Total)
		assert.Contains(t, report.EnumerationError, "db down")
	})
}

func TestService_SyncUser(t *testing.T) {
	t.Run("skips users without a linked main account", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, new(MockExpenseRepository), agg, passthroughClassifier())

		accounts.On("FindByUserAndRole", mock.Anything, int64(10), asset.RoleMain).
			Return(nil, asset.ErrNotFound)

		err := svc.SyncUser(context.Background(), 10)

		assert.NoError(t, err)
		agg.AssertNotCalled(t, "FetchHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("treats a missing history list as nothing to do", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		expenses := new(MockExpenseRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, expenses, agg, passthroughClassifier())

		account := linkedAccount(1, 10, 1000)
		accounts.On("FindByUserAndRole", mock.Anything, int64(10), asset.RoleMain).Return(&account, nil)
		balance := "2,000"
		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-1", mock.Anything, mock.Anything).
			Return(&codef.TransactionHistory{Balance: &balance, History: nil}, nil)

		err := svc.SyncUser(context.Background(), 10)

		assert.NoError(t, err)
		accounts.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
		expenses.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	})

	t.Run("ingests fresh transactions and reconciles balance", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		expenses := new(MockExpenseRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, expenses, agg, passthroughClassifier())

		account := linkedAccount(1, 10, 1000)
		accounts.On("FindByUserAndRole", mock.Anything, int64(10), asset.RoleMain).Return(&account, nil)
		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-1", "20240514", "20240515").
			Return(historyWithEntry("1,234,000", "tr-a"), nil)

		expenses.On("CountByExternalID", mock.Anything, "tr-a").Return(0, nil)
		expenses.On("HasUserModified", mock.Anything, "tr-a").Return(false, nil)
		expenses.On("CountDuplicate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(0, nil)
		expenses.On("InsertBatch", mock.Anything, mock.MatchedBy(func(txs []expense.Transaction) bool {
			return len(txs) == 1 && txs[0].Amount == 4500 && *txs[0].ExternalID == "tr-a"
		})).Return(1, nil)
		accounts.On("UpdateBalance", mock.Anything, int64(1), int64(1234000)).Return(nil)

		err := svc.SyncUser(context.Background(), 10)

		assert.NoError(t, err)
		accounts.AssertExpectations(t)
		expenses.AssertExpectations(t)
	})

	t.Run("leaves balance alone when unchanged", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		expenses := new(MockExpenseRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, expenses, agg, passthroughClassifier())

		account := linkedAccount(1, 10, 1000)
		accounts.On("FindByUserAndRole", mock.Anything, int64(10), asset.RoleMain).Return(&account, nil)
		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-1", mock.Anything, mock.Anything).
			Return(historyWithEntry("1,000", "tr-a"), nil)

		expenses.On("CountByExternalID", mock.Anything, "tr-a").Return(1, nil)

		err := svc.SyncUser(context.Background(), 10)

		assert.NoError(t, err)
		accounts.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
		expenses.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	})
}

func TestService_Deduplication(t *testing.T) {
	run := func(t *testing.T, expenses *MockExpenseRepository, expectInsert bool) {
		accounts := new(MockAccountRepository)
		agg := new(MockAggregator)
		svc := newTestService(accounts, expenses, agg, passthroughClassifier())

		account := linkedAccount(1, 10, 1000)
		accounts.On("FindByUserAndRole", mock.Anything, int64(10), asset.RoleMain).Return(&account, nil)
		agg.On("FetchHistory", mock.Anything, mock.Anything, "conn-1", mock.Anything, mock.Anything).
			Return(historyWithEntry("1,000", "tr-a"), nil)
		if expectInsert {
			expenses.On("InsertBatch", mock.Anything, mock.Anything).Return(1, nil)
		}

		err := svc.SyncUser(context.Background(), 10)
		assert.NoError(t, err)

		if expectInsert {
			expenses.AssertCalled(t, "InsertBatch", mock.Anything, mock.Anything)
		} else {
			expenses.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
		}
	}

	t.Run("skips rows whose external id already exists", func(t *testing.T) {
		expenses := new(MockExpenseRepository)
		expenses.On("CountByExternalID", mock.Anything, "tr-a").Return(1, nil)
		run(t, expenses, false)
	})

	t.Run("skips rows whose external id was edited by the user", func(t *testing.T) {
		expenses := new(MockExpenseRepository)
		expenses.On("CountByExternalID", mock.Anything, "tr-a").Return(0, nil)
		expenses.On("HasUserModified", mock.Anything, "tr-a").Return(true, nil)
		run(t, expenses, false)
	})

	t.Run("falls back to the composite key", func(t *testing.T) {
		expenses := new(MockExpenseRepository)
		expenses.On("CountByExternalID", mock.Anything, "tr-a").Return(0, nil)
		expenses.On("HasUserModified", mock.Anything, "tr-a").Return(false, nil)
		expenses.On("CountDuplicate", mock.Anything, int64(10), int64(1), int64(4500), "coffee", mock.Anything).
			Return(1, nil)
		run(t, expenses, false)
	})

	t.Run("keeps candidates when every lookup fails", func(t *testing.T) {
		expenses := new(MockExpenseRepository)
		expenses.On("CountByExternalID", mock.Anything, "tr-a").Return(0, errors.New("lookup error"))
		expenses.On("HasUserModified", mock.Anything, "tr-a").Return(false, errors.New("lookup error"))
		expenses.On("CountDuplicate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(0, errors.New("lookup error"))
		run(t, expenses, true)
	})
}
