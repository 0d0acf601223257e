package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	"finlink/internal/domain/sync"
)

type countingRunner struct {
	fired chan struct{}
}

func (r *countingRunner) RunAll(_ context.Context) sync.Report {
	select {
	case r.fired <- struct{}{}:
	default:
	}
	return sync.Report{Total: 1, Succeeded: 1}
}

func TestNextMidnight(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid-afternoon rolls to next day",
			now:  time.Date(2024, time.May, 15, 15, 30, 0, 0, loc),
			want: time.Date(2024, time.May, 16, 0, 0, 0, 0, loc),
		},
		{
			name: "exactly midnight schedules the following midnight",
			now:  time.Date(2024, time.May, 15, 0, 0, 0, 0, loc),
			want: time.Date(2024, time.May, 16, 0, 0, 0, 0, loc),
		},
		{
			name: "month boundary",
			now:  time.Date(2024, time.May, 31, 23, 59, 59, 0, loc),
			want: time.Date(2024, time.June, 1, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextMidnight(tt.now))
		})
	}
}

func TestScheduler_Run_FiresOnTick(t *testing.T) {
	runner := &countingRunner{fired: make(chan struct{}, 1)}
	s := New(runner, slog.Default())
	s.nextRun = func(now time.Time) time.Time {
		return now.Add(5 * time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-runner.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestScheduler_Run_StopsWithoutFiring(t *testing.T) {
	runner := &countingRunner{fired: make(chan struct{}, 1)}
	s := New(runner, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Empty(t, runner.fired)
}
