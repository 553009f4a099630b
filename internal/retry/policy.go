// Package retry provides backoff policies for operations against external
// collaborators, such as connecting a declaration sink.
package retry

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// Mode selects how the delay grows between attempts.
type Mode string

const (
	Fixed       Mode = "fixed"
	Linear      Mode = "linear"
	Exponential Mode = "exponential"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       Mode
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // attempts after the first failure
}

// DefaultPolicy returns the policy used for sink connections: linear,
// 250ms initial, 2s cap, 2 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: Linear, Initial: 250 * time.Millisecond, Max: 2 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy from raw fields; zero or invalid values fall back to defaults.
func NewPolicy(mode Mode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case Fixed, Linear, Exponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay for the given retry (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case Fixed:
		return p.Initial
	case Exponential:
		d = p.Initial
		for i := 1; i < retryCount && d < p.Max; i++ {
			d *= 2
		}
	default:
		d = time.Duration(retryCount) * p.Initial
	}
	return min(d, p.Max)
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Do calls fn until it succeeds, the retries are used up or ctx ends. The
// last error from fn is returned.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	err := fn(0)
	for retry := 1; err != nil && retry <= p.MaxRetries; retry++ {
		t := time.NewTimer(p.Delay(retry))
		select {
		case <-ctx.Done():
			t.Stop()
			return stdErrors.Join(err, ctx.Err())
		case <-t.C:
		}
		err = fn(retry)
	}
	return err
}
