package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// executeWithRetry runs op up to maxAttempts times, retrying only
// network-class failures with capped exponential backoff. Non-transient
// failure codes (AUTH, VALIDATION, DEPENDENCY, DUPLICATE) return
// immediately with Retryable forced to false. Panics inside op are treated
// as network-class failures subject to the same policy.
func (s *SyncService) executeWithRetry(ctx context.Context, label string, op func(context.Context) port.SyncResult) port.SyncResult {
	var res port.SyncResult
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		retries := res.RetryCount
		res = s.runGuarded(ctx, op)
		res.RetryCount = retries

		if res.Success {
			return res
		}
		if res.Code != domain.CodeNetwork {
			res.Retryable = false
			return res
		}
		if attempt == s.maxAttempts-1 {
			break
		}

		delay := s.backoffDelay(attempt)
		s.logger.Warn("sync attempt failed, retrying",
			slog.String("entity", label),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", s.maxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", res.Error))
		if err := s.sleep(ctx, delay); err != nil {
			res.Retryable = false
			return res
		}
		res.RetryCount++
	}
	res.Retryable = false
	return res
}

// runGuarded invokes op, converting a panic into a network-class failure.
func (s *SyncService) runGuarded(ctx context.Context, op func(context.Context) port.SyncResult) (res port.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			res = port.SyncResult{
				Error:     fmt.Sprintf("unexpected failure: %v", r),
				Code:      domain.CodeNetwork,
				Retryable: true,
			}
		}
	}()
	return op(ctx)
}

// backoffDelay returns min(2^attempt * baseDelay, maxDelay).
func (s *SyncService) backoffDelay(attempt int) time.Duration {
	d := s.baseDelay << uint(attempt)
	if d > s.maxDelay || d <= 0 {
		return s.maxDelay
	}
	return d
}
