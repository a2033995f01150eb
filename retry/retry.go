// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package retry implements the exponential backoff orchestrator shared
// by the copy pipeline's writer: classify, decide whether to retry,
// sleep with jitter, and reset the attempt counter whenever an attempt
// made forward progress.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-core-stack/doccopy/document"
	"github.com/go-core-stack/doccopy/errors"
)

const (
	// DefaultMaxAttempts is the number of retries allowed for a single
	// batch before the orchestrator raises a fatal error
	DefaultMaxAttempts = 10
	// DefaultBaseDelay is the initial backoff delay
	DefaultBaseDelay = 500 * time.Millisecond
	// DefaultMultiplier is applied to the delay after every attempt
	DefaultMultiplier = 2.0
	// DefaultMaxDelay caps the computed backoff delay
	DefaultMaxDelay = 30 * time.Second
	// jitterFraction bounds the +/- randomization applied to each delay
	jitterFraction = 0.30
)

// ErrExhausted is returned once an operation has retried MaxAttempts
// times without success; it is fatal and non-retryable.
var ErrExhausted = errors.Wrap(errors.Unknown, "retry: attempts exhausted")

// Config controls the backoff schedule and retry budget of an
// Orchestrator.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// DefaultConfig returns the configuration used by the streaming writer
// unless the caller overrides it.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Orchestrator tracks the attempt counter for a single logical
// operation (one flush of the streaming writer) and decides whether
// the next error should be retried, and how long to sleep first.
type Orchestrator struct {
	cfg     Config
	attempt int
}

// New constructs an Orchestrator with the given configuration. A zero
// Config is not valid; use DefaultConfig as a base.
func New(cfg Config) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = DefaultMultiplier
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	return &Orchestrator{cfg: cfg}
}

// ShouldRetry reports whether kind is a transient classification this
// orchestrator will retry at all. Conflict and Validator are never
// retried - they indicate the batch itself is wrong, not the
// transport.
func ShouldRetry(kind document.ErrorKind) bool {
	switch kind {
	case document.Throttle, document.Network:
		return true
	default:
		return false
	}
}

// NoteProgress resets the attempt counter whenever the last attempt
// made forward progress (a nonzero PartialProgress.Processed), so a
// long-running operation that is slowly succeeding never trips the
// attempt ceiling.
func (o *Orchestrator) NoteProgress(processed int) {
	if processed > 0 {
		o.attempt = 0
	}
}

// Next advances the attempt counter for kind and either sleeps for the
// computed backoff delay and returns true, or returns false once
// MaxAttempts has been exceeded or ctx is done. cancelled, if
// non-nil, is polled in addition to ctx so a consumer-driven
// cancellation can interrupt the sleep.
func (o *Orchestrator) Next(ctx context.Context, kind document.ErrorKind, cancelled func() bool) (bool, error) {
	if !ShouldRetry(kind) {
		return false, nil
	}

	o.attempt++
	if o.attempt > o.cfg.MaxAttempts {
		return false, ErrExhausted
	}

	delay := o.delayFor(o.attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		if cancelled != nil && cancelled() {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			return true, nil
		case <-time.After(50 * time.Millisecond):
			// re-poll cancelled without busy-spinning
		}
	}
}

// delayFor computes the exponential backoff delay for the given
// attempt number (1-indexed), capped at MaxDelay and jittered by
// +/- jitterFraction.
func (o *Orchestrator) delayFor(attempt int) time.Duration {
	delay := float64(o.cfg.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= o.cfg.Multiplier
		if delay > float64(o.cfg.MaxDelay) {
			delay = float64(o.cfg.MaxDelay)
			break
		}
	}

	jitter := (rand.Float64()*2 - 1) * jitterFraction
	delay += delay * jitter
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Attempt returns the number of attempts consumed so far.
func (o *Orchestrator) Attempt() int {
	return o.attempt
}
