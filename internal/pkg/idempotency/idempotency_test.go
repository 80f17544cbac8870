package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTracker(t *testing.T) *StateTracker {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client)
}

func TestExecSkipsCompletedKey(t *testing.T) {
	// Arrange
	tracker := newTracker(t)
	runs := 0
	fn := func(context.Context) error {
		runs++
		return nil
	}

	// Act
	first := tracker.Exec(context.Background(), "job-1", fn)
	second := tracker.Exec(context.Background(), "job-1", fn)

	// Assert
	if first != nil {
		t.Fatalf("expected first run to succeed, got %v", first)
	}
	if !errors.Is(second, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", second)
	}
	if runs != 1 {
		t.Fatalf("expected exactly one run, got %d", runs)
	}
}

func TestExecRetriesAfterFailedAttempt(t *testing.T) {
	// Arrange
	tracker := newTracker(t)
	runs := 0
	fn := func(context.Context) error {
		runs++
		if runs == 1 {
			return errors.New("provider unavailable")
		}
		return nil
	}

	// Act
	first := tracker.Exec(context.Background(), "job-2", fn)
	second := tracker.Exec(context.Background(), "job-2", fn)
	third := tracker.Exec(context.Background(), "job-2", fn)

	// Assert
	if first == nil {
		t.Fatalf("expected first attempt to surface the failure")
	}
	if second != nil {
		t.Fatalf("expected redelivery to run again and succeed, got %v", second)
	}
	if !errors.Is(third, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted after the retry, got %v", third)
	}
	if runs != 2 {
		t.Fatalf("expected two runs, got %d", runs)
	}
}

func TestExecBlocksInProgressKey(t *testing.T) {
	// Arrange
	tracker := newTracker(t)
	if _, err := tracker.Acquire(context.Background(), "job-3", time.Minute); err != nil {
		t.Fatalf("expected acquire to succeed, got %v", err)
	}

	// Act
	err := tracker.Exec(context.Background(), "job-3", func(context.Context) error { return nil })

	// Assert
	if !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}
}
