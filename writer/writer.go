// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package writer implements the streaming writer at the heart of the
// copy/paste pipeline: it drains a document.DocumentStream into
// flush-sized batches, drives each batch through a DriverAdapter with
// retry and adaptive batch sizing, and reports strictly-ordered
// progress back to the caller.
package writer

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/go-core-stack/doccopy/batchsize"
	"github.com/go-core-stack/doccopy/document"
	"github.com/go-core-stack/doccopy/errors"
	"github.com/go-core-stack/doccopy/retry"
)

// flushByteThreshold is the estimated-buffer-bytes flush trigger (24MB).
const flushByteThreshold = 24 * 1024 * 1024

// DriverAdapter is the two-method contract any storage backend
// implements to plug into the writer; error classification and
// partial-progress extraction are passed to New separately as an
// ErrorClassifier and a ProgressExtractor. The writer depends
// only on these, never on a concrete driver package.
type DriverAdapter interface {
	WriteBatch(ctx context.Context, docs []document.Document, strategy document.ConflictStrategy) (document.BatchResult, error)
	EnsureTargetExists(ctx context.Context) (targetWasCreated bool, err error)
}

// ErrorClassifier maps a raw driver error to a document.ErrorKind.
// Kept as a free function rather than part of DriverAdapter so a
// thin adapter (or a test double) can reuse the real classifier.
type ErrorClassifier func(err error) document.ErrorKind

// ProgressExtractor recovers PartialProgress out of a raw driver error.
type ProgressExtractor func(strategy document.ConflictStrategy, err error) (document.PartialProgress, bool)

// ProgressFunc is invoked synchronously from the flush loop with a
// strictly positive delta and a strategy-tagged human summary.
type ProgressFunc func(deltaProcessed int, summary string)

// WriterError is the fatal, non-retryable error the writer raises; it
// carries the WriteStats accumulated up to the point of failure.
type WriterError struct {
	Stats WriteStats
	Err   error
}

// WriteStats is an alias kept local to this package's public surface
// so callers importing writer don't also need to import document for
// the common case.
type WriteStats = document.WriteStats

func (e *WriterError) Error() string {
	return fmt.Sprintf("streaming write failed after processing %d documents: %s", e.Stats.TotalProcessed, e.Err)
}

func (e *WriterError) Unwrap() error {
	return e.Err
}

// Writer drains a document.DocumentStream applying strategy, reporting
// progress through onProgress and returning the final WriteStats. It
// holds no state across calls: Write reinitializes its buffer, stats,
// adapter and retry orchestrator fields on every invocation.
type Writer struct {
	Driver    DriverAdapter
	Classify  ErrorClassifier
	ExtractPP ProgressExtractor
	RetryCfg  retry.Config
}

// New constructs a Writer against the given driver adapter and error
// classification hooks.
func New(driver DriverAdapter, classify ErrorClassifier, extract ProgressExtractor) *Writer {
	return &Writer{
		Driver:    driver,
		Classify:  classify,
		ExtractPP: extract,
		RetryCfg:  retry.DefaultConfig(),
	}
}

// Write consumes stream until exhaustion or cancellation, applying
// strategy to every flush and reporting progress via onProgress.
// cancelled is polled at every await boundary: source-iterator reads,
// retry sleeps, and between flush-loop batches.
func (w *Writer) Write(ctx context.Context, stream document.DocumentStream, strategy document.ConflictStrategy, onProgress ProgressFunc, cancelled func() bool) (WriteStats, error) {
	adapter := batchsize.New()
	stats := WriteStats{Strategy: strategy}
	var buffer []document.Document
	var bufferBytes int
	var wasCancelled bool

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		pending := buffer
		buffer = nil
		bufferBytes = 0

		for len(pending) > 0 {
			if cancelled != nil && cancelled() {
				wasCancelled = true
				return nil
			}

			n := adapter.Current()
			if n > len(pending) {
				n = len(pending)
			}
			batch := pending[:n]

			result, consumed, err := w.writeBatchWithRetry(ctx, batch, strategy, adapter, &stats, onProgress, cancelled)
			if err != nil {
				return &WriterError{Stats: stats, Err: err}
			}

			delta := stats.Merge(result)
			if delta > 0 {
				onProgress(delta, formatSummary(strategy, result))
			}

			if strategy == document.Abort && len(result.Errors) > 0 {
				return &WriterError{Stats: stats, Err: errors.Wrap(errors.Unknown, "abort strategy: conflicting document encountered")}
			}

			if len(result.Errors) == 0 {
				adapter.Grow()
			}

			pending = pending[consumed:]
		}
		stats.FlushCount++
		return nil
	}

	for {
		if cancelled != nil && cancelled() {
			wasCancelled = true
			break
		}

		doc, done, err := stream.Next(ctx)
		if err != nil {
			_ = stream.Release(ctx)
			return stats, err
		}
		if done {
			break
		}

		buffer = append(buffer, doc)
		bufferBytes += estimateBytes(doc)

		constraints := adapter.BufferConstraints()
		if len(buffer) >= constraints.CurrentBatchSize || bufferBytes >= flushByteThreshold {
			if err := flush(); err != nil {
				_ = stream.Release(ctx)
				return stats, err
			}
			if wasCancelled {
				break
			}
		}
	}

	if err := flush(); err != nil {
		_ = stream.Release(ctx)
		return stats, err
	}

	_ = stream.Release(ctx)
	stats.Cancelled = wasCancelled
	return stats, nil
}

// writeBatchWithRetry drives a single batch through the driver with
// exponential backoff, classification-driven retry, and attempt-count
// reset on forward progress. On a throttle with partial progress it
// reports that progress, slices off the written prefix and retries the
// remainder itself. It returns the BatchResult of the final successful
// call and the number of input documents it accounts for, which on
// success is always len(batch).
func (w *Writer) writeBatchWithRetry(ctx context.Context, batch []document.Document, strategy document.ConflictStrategy, adapter *batchsize.Adapter, stats *document.WriteStats, onProgress ProgressFunc, cancelled func() bool) (document.BatchResult, int, error) {
	orchestrator := retry.New(w.RetryCfg)
	current := batch
	consumedFromOriginal := 0

	for {
		result, err := w.Driver.WriteBatch(ctx, current, strategy)
		if err == nil {
			return result, consumedFromOriginal + len(current), nil
		}

		kind := w.Classify(err)
		switch kind {
		case document.Throttle:
			progress, ok := w.ExtractPP(strategy, err)
			if ok && progress.Processed > 0 {
				delta := stats.MergePartial(progress)
				if delta > 0 {
					onProgress(delta, formatPartialSummary(strategy, progress))
				}
				adapter.HandleThrottle(progress.Processed)
				current = current[progress.Processed:]
				consumedFromOriginal += progress.Processed
				orchestrator.NoteProgress(progress.Processed)
				ok, rerr := orchestrator.Next(ctx, kind, cancelled)
				if rerr != nil {
					return document.BatchResult{}, 0, rerr
				}
				if !ok {
					return document.BatchResult{}, 0, retry.ErrExhausted
				}
				if len(current) == 0 {
					return document.BatchResult{Strategy: strategy}, consumedFromOriginal, nil
				}
				continue
			}
			adapter.HandleThrottle(0)
			ok, rerr := orchestrator.Next(ctx, kind, cancelled)
			if rerr != nil {
				return document.BatchResult{}, 0, rerr
			}
			if !ok {
				return document.BatchResult{}, 0, retry.ErrExhausted
			}
			continue

		case document.Network:
			ok, rerr := orchestrator.Next(ctx, kind, cancelled)
			if rerr != nil {
				return document.BatchResult{}, 0, rerr
			}
			if !ok {
				return document.BatchResult{}, 0, retry.ErrExhausted
			}
			continue

		default:
			return document.BatchResult{}, 0, err
		}
	}
}

// estimateBytes computes a UTF-16-safe byte estimate for flush-trigger
// accounting: twice the serialized length of the content, falling back
// to a flat 1024 bytes/doc if serialization fails.
func estimateBytes(doc document.Document) int {
	raw, err := bson.Marshal(doc.Content)
	if err != nil {
		return 1024
	}
	return 2 * len(raw)
}

func formatSummary(strategy document.ConflictStrategy, r document.BatchResult) string {
	switch strategy {
	case document.Skip:
		return fmt.Sprintf("inserted=%d skipped=%d", r.Inserted, r.Skipped)
	case document.Overwrite:
		return fmt.Sprintf("replaced=%d created=%d", r.Replaced, r.Created)
	case document.Abort:
		return fmt.Sprintf("inserted=%d", r.Inserted)
	case document.GenerateNewIds:
		return fmt.Sprintf("inserted=%d", r.Inserted)
	default:
		return fmt.Sprintf("processed=%d", r.Processed)
	}
}

func formatPartialSummary(strategy document.ConflictStrategy, p document.PartialProgress) string {
	return fmt.Sprintf("partial progress before throttle: processed=%d", p.Processed)
}
