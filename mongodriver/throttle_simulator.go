// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package mongodriver

import (
	"context"
	"fmt"

	"github.com/go-core-stack/doccopy/document"
)

// ThrottleSimulator is a config-gated writer.DriverAdapter test double
// that deterministically reproduces a rate-limited backend: the first
// ThrottleAfter calls to WriteBatch succeed normally, then the next
// ThrottleCount calls fail with a synthetic Throttle error carrying a
// PartialProgress of ProgressFraction of the batch, after which it
// falls back to delegating to
// Inner (if set) or succeeding outright.
type ThrottleSimulator struct {
	Inner interface {
		WriteBatch(ctx context.Context, docs []document.Document, strategy document.ConflictStrategy) (document.BatchResult, error)
	}

	// ThrottleAfter is the number of successful calls before the first
	// simulated throttle
	ThrottleAfter int
	// ThrottleCount is how many consecutive throttled calls to emit
	ThrottleCount int
	// ProgressFraction is the fraction (0..1) of each throttled batch
	// that is reported as already confirmed before the throttle hit;
	// 0 reproduces a zero-progress throttle
	ProgressFraction float64

	calls int
}

// throttleError is the synthetic error ThrottleSimulator raises; it is
// recognized by ClassifySimulated/ExtractSimulatedProgress via its type
// and embedded progress, not by inspecting a real
// mongo.BulkWriteException.
type throttleError struct {
	progress document.PartialProgress
}

func (e *throttleError) Error() string {
	return fmt.Sprintf("simulated throttle: rate limit exceeded after %d documents", e.progress.Processed)
}

// WriteBatch implements writer.DriverAdapter.
func (t *ThrottleSimulator) WriteBatch(ctx context.Context, docs []document.Document, strategy document.ConflictStrategy) (document.BatchResult, error) {
	t.calls++
	if t.calls > t.ThrottleAfter && t.calls <= t.ThrottleAfter+t.ThrottleCount {
		processed := int(float64(len(docs)) * t.ProgressFraction)
		return document.BatchResult{}, &throttleError{progress: document.PartialProgress{
			Strategy:  strategy,
			Inserted:  processed,
			Processed: processed,
		}}
	}
	if t.Inner != nil {
		return t.Inner.WriteBatch(ctx, docs, strategy)
	}
	return document.BatchResult{
		Strategy:  strategy,
		Inserted:  len(docs),
		Processed: len(docs),
	}, nil
}

// EnsureTargetExists always reports the target as already existing;
// the simulator never touches a real collection.
func (t *ThrottleSimulator) EnsureTargetExists(ctx context.Context) (bool, error) {
	return false, nil
}

// ClassifySimulated recognizes this package's own synthetic
// throttleError in addition to the real classification table,
// allowing the same ClassifyError entry point to be used against both
// a live cluster and ThrottleSimulator.
func ClassifySimulated(err error) document.ErrorKind {
	if _, ok := err.(*throttleError); ok {
		return document.Throttle
	}
	return ClassifyError(err)
}

// ExtractSimulatedProgress recovers the PartialProgress embedded in a
// synthetic throttleError, falling back to the real extraction path
// for any other error shape.
func ExtractSimulatedProgress(strategy document.ConflictStrategy, err error) (document.PartialProgress, bool) {
	if te, ok := err.(*throttleError); ok {
		return te.progress, te.progress.Processed > 0
	}
	return ExtractPartialProgress(strategy, err)
}
