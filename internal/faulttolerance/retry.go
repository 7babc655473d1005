// Package faulttolerance provides the fixed-count retry policy and the
// per-source circuit breaker shared by every pipeline stage.
package faulttolerance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// RetryConfig holds configuration for the fixed-delay retry policy.
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first call
	Delay       time.Duration // Fixed pause between attempts
	Name        string        // Name for logging

	// IsRetryable decides whether an error earns another attempt.
	// Nil retries every error.
	IsRetryable func(error) bool
}

// DefaultRetryConfig returns three attempts two seconds apart.
func DefaultRetryConfig(name string) RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
		Name:        name,
	}
}

// ErrAttemptsExhausted wraps the last error once every attempt failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// RetryableFunc is a function that can be retried
type RetryableFunc func(ctx context.Context) error

// Retryer runs a function under a fixed attempt cap with constant backoff.
type Retryer struct {
	config RetryConfig
	logger *logrus.Logger
}

// NewRetryer creates a new retryer
func NewRetryer(config RetryConfig, logger *logrus.Logger) *Retryer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Delay <= 0 {
		config.Delay = time.Millisecond
	}
	if config.Name == "" {
		config.Name = "Retryer"
	}

	return &Retryer{
		config: config,
		logger: logger,
	}
}

// Execute runs fn until it succeeds, returns a non-retryable error, or the
// attempt cap is reached. Exhaustion is reported as ErrAttemptsExhausted
// wrapping the last error.
func (r *Retryer) Execute(ctx context.Context, fn RetryableFunc) error {
	backoff := retry.WithMaxRetries(uint64(r.config.MaxAttempts-1), retry.NewConstant(r.config.Delay))

	attempt := 0
	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				r.logger.Infof("[%s] Operation succeeded on attempt %d", r.config.Name, attempt)
			}
			return nil
		}

		lastErr = err
		if !r.isRetryable(err) {
			r.logger.Errorf("[%s] Non-retryable error: %v", r.config.Name, err)
			return err
		}

		if attempt < r.config.MaxAttempts {
			r.logger.Warnf("[%s] Attempt %d failed: %v. Retrying in %v...", r.config.Name, attempt, err, r.config.Delay)
		}
		return retry.RetryableError(err)
	})

	if err == nil {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	if lastErr != nil && r.isRetryable(lastErr) && attempt >= r.config.MaxAttempts {
		r.logger.Errorf("[%s] All %d attempts failed, last error: %v", r.config.Name, attempt, lastErr)
		return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempt, lastErr)
	}
	return err
}

// isRetryable checks if an error should trigger a retry
func (r *Retryer) isRetryable(err error) bool {
	if errors.Is(err, ErrCircuitBreakerOpen) {
		return false
	}
	if r.config.IsRetryable == nil {
		return true
	}
	return r.config.IsRetryable(err)
}

// ExecuteWithCircuitBreaker guards a whole retried call with cb. The
// breaker sees one outcome per call, after every attempt has run, so a
// single flaky item cannot open it on its own.
func (r *Retryer) ExecuteWithCircuitBreaker(ctx context.Context, cb *CircuitBreaker, fn RetryableFunc) error {
	if !cb.Allow() {
		return ErrCircuitBreakerOpen
	}
	err := r.Execute(ctx, fn)
	if ctx.Err() != nil {
		return err
	}
	cb.Record(err)
	return err
}
