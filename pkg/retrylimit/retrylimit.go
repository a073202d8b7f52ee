// Package retrylimit combines an adaptive rate limiter with bounded retries
// for calls to rate-limited HTTP APIs.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultPolicy(), func() error {
//	    return callAPI()
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token bucket whose rate climbs on success and drops
// on rate-limit or server errors. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, kept within [min, max], growing by stepUp on success and scaled by
// stepDown on failure.
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 1
	}
	if initial < min {
		initial = min
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or ctx ends.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success nudges the rate up, unless an error happened recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// Throttled scales the rate down after an overload signal.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = min(max(l, a.minLimit), a.maxLimit)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}

// StatusError is an HTTP response the caller considers a failure.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Code }

// Permanent wraps an error that must not be retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Policy configures Do.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultPolicy suits interactive chat: a few quick attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// Do runs fn until it succeeds, returns a permanent error, ctx ends or the
// attempts run out. The last error is returned.
func Do(ctx context.Context, lim *AdaptiveLimiter, p Policy, fn func() error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	delay := p.InitialDelay

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if !retryable(err) {
			return err
		}
		if lim != nil {
			lim.Throttled()
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := delay
		if p.Jitter && wait > 0 {
			wait += time.Duration(rand.Int63n(int64(wait)/4 + 1))
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("sleep", wait).Msg("[RETRY] Request failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = min(time.Duration(float64(delay)*p.Multiplier), p.MaxDelay)
	}
	return fmt.Errorf("after %d attempts: %w", p.MaxAttempts, err)
}

// retryable treats 429, 5xx and transport errors as worth another try.
func retryable(err error) bool {
	var se interface{ StatusCode() int }
	if errors.As(err, &se) {
		code := se.StatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
