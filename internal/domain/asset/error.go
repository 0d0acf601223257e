package asset

import "errors"

var (
	ErrNotFound             = errors.New("account not found")
	ErrAlreadyLinked        = errors.New("account already linked for this slot")
	ErrMissingCredentials   = errors.New("required account credentials missing")
	ErrSessionCreateFailed  = errors.New("aggregator session creation failed")
	ErrHistoryFetchFailed   = errors.New("transaction history fetch failed")
	ErrAccountPersistFailed = errors.New("account persist failed")
	ErrPartialIngest        = errors.New("initial transaction ingest incomplete")
	ErrNoTransactions       = errors.New("no transactions in the initial window")
	ErrConnectionFailed     = errors.New("account connection failed")
	ErrDisconnectionFailed  = errors.New("account disconnection failed")
)
