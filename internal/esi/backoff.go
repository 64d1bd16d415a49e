package esi

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/mselser95/eve-trade-arb/pkg/types"
	"go.uber.org/zap"
)

// BackoffConfig holds the configuration for exponential backoff retries.
type BackoffConfig struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercent     float64 // 0.2 = 20%
	MaxAttempts       int
}

// DefaultBackoffConfig retries a failed page a few times over roughly
// fifteen seconds.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          8 * time.Second,
		BackoffMultiplier: 2.0,
		JitterPercent:     0.2,
		MaxAttempts:       4,
	}
}

// Backoff retries transient ESI failures with exponential backoff and jitter.
// It is safe for concurrent use; each Retry call keeps its own delay.
type Backoff struct {
	config BackoffConfig
	logger *zap.Logger
	mu     sync.Mutex
	rng    *rand.Rand
}

// NewBackoff creates a Backoff with the specified config.
func NewBackoff(cfg BackoffConfig, logger *zap.Logger) *Backoff {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}

	return &Backoff{
		config: cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter only
	}
}

// Retry runs op until it succeeds, returns a non-retryable error, the
// attempts are exhausted or ctx ends. The last error is returned.
func (b *Backoff) Retry(ctx context.Context, op func(context.Context) error) error {
	delay := b.config.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		err = op(ctx)
		if err == nil || !IsRetryable(err) || attempt >= b.config.MaxAttempts {
			return err
		}

		wait := b.withJitter(delay)
		RetriesTotal.Inc()
		b.logger.Warn("esi-request-retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay = b.next(delay)
	}
}

// withJitter applies jitter: delay * (1.0 + random(0, jitterPercent)).
func (b *Backoff) withJitter(delay time.Duration) time.Duration {
	b.mu.Lock()
	jitter := b.rng.Float64() * b.config.JitterPercent
	b.mu.Unlock()

	return time.Duration(float64(delay) * (1.0 + jitter))
}

// next increases the delay by the multiplier, capped at MaxDelay.
func (b *Backoff) next(delay time.Duration) time.Duration {
	grown := time.Duration(float64(delay) * b.config.BackoffMultiplier)
	if b.config.MaxDelay > 0 && grown > b.config.MaxDelay {
		return b.config.MaxDelay
	}
	return grown
}

// IsRetryable reports whether err is worth repeating: ESI error-limit,
// throttling and server errors, plus transport failures. Context errors
// never are.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}

	var decodeErr *DecodeError
	return !errors.As(err, &decodeErr)
}
