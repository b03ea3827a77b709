package errctl

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestRetryTemporaryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	err := RetryTemporary(5, func() error {
		attempts++
		return &ErrInfo{Err: int(unix.ENOENT)}
	})

	if attempts != 1 {
		t.Fatalf("expected 1 attempt for a permanent error, got %d", attempts)
	}
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestRetryTemporarySucceedsEventually(t *testing.T) {
	attempts := 0
	err := RetryTemporary(5, func() error {
		attempts++
		if attempts < 3 {
			return &ErrInfo{Err: int(unix.EAGAIN)}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryTemporaryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := RetryTemporary(3, func() error {
		attempts++
		return &ErrInfo{Err: int(unix.EAGAIN)}
	})

	if err == nil {
		t.Fatalf("expected an error after exhausting attempts")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}
