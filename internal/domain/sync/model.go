package sync

import (
	"time"

	"github.com/google/uuid"
)

// Report summarizes one batch run. The run itself never fails; it always
// completes and reports counts.
type Report struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	// EnumerationError distinguishes "account listing failed" from a
	// legitimately empty run.
	EnumerationError string `json:"enumeration_error,omitempty"`
}
