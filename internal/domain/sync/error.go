package sync

import "errors"

var (
	// ErrNoRemoteData marks an account whose aggregator response carries no
	// history list for the window. Such an account is skipped, neither a
	// success nor a failure.
	ErrNoRemoteData       = errors.New("no remote data for the window")
	ErrHistoryFetchFailed = errors.New("incremental history fetch failed")
	ErrIngestFailed       = errors.New("transaction ingest failed")
	ErrBalanceUpdate      = errors.New("balance update failed")
)
