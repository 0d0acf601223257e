package sync

import (
	"finlink/internal/domain/sync"
)

type runInput struct{}

type runOutput struct {
	Body sync.Report
}
