package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	t.Run("SucceedsFirstTry", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("RetriesRetryable", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("transient"))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("StopsOnPermanent", func(t *testing.T) {
		calls := 0
		permanent := errors.New("permanent")
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) {
			t.Errorf("err = %v, want permanent", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			return Retryable(errors.New("always fails"))
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("RespectsCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Retry(ctx, 3, time.Minute, func() error {
			return Retryable(errors.New("transient"))
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   error
		retryable bool
	}{
		{http.StatusOK, nil, false},
		{http.StatusNoContent, nil, false},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusBadRequest, ErrNetwork, false},
		{http.StatusUnauthorized, ErrNetwork, false},
		{http.StatusInternalServerError, ErrNetwork, true},
		{http.StatusBadGateway, ErrNetwork, true},
	}

	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("CheckStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("CheckStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
		}
		if got := isRetryable(err); got != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}
