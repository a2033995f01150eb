// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package document defines the shared data model that flows through the
// copy/paste pipeline: the opaque Document, the lazy DocumentStream it is
// read from, and the strategy-tagged result/progress/error types the
// writer, adapter and retry orchestrator all exchange.
package document

import (
	"context"
)

// Document is an opaque record with a database-native identifier and an
// opaque content payload. The pipeline never inspects Content beyond
// computing its serialized byte length for memory accounting.
type Document struct {
	// Id is the database-native identifier of the document, typically
	// the value stored under "_id"
	Id interface{}

	// Content is the opaque payload of the document, excluding Id
	Content interface{}
}

// DocumentStream is a lazy, single-pass, finite sequence of Documents
// with an explicit cancellation hook. The emitting side is the source
// database cursor; Next returns io.EOF-like done=true when exhausted.
type DocumentStream interface {
	// Next returns the next Document in the stream. done is true once
	// the stream is exhausted (doc is the zero value in that case).
	Next(ctx context.Context) (doc Document, done bool, err error)

	// Release is invoked once on completion or cancellation, allowing
	// the underlying cursor to be closed. Safe to call more than once.
	Release(ctx context.Context) error
}

// ConflictStrategy is a tagged variant selecting the conflict-handling
// behavior of a write operation. It is chosen once per operation and
// drives the shape of BatchResult and the failure semantics of the
// writer.
type ConflictStrategy int

const (
	// Abort stops at the first conflicting document
	Abort ConflictStrategy = iota
	// Skip silently counts conflicting documents without inserting them
	Skip
	// Overwrite replaces existing documents unconditionally (upsert)
	Overwrite
	// GenerateNewIds strips and relocates the original id, then inserts
	GenerateNewIds
)

func (s ConflictStrategy) String() string {
	switch s {
	case Abort:
		return "Abort"
	case Skip:
		return "Skip"
	case Overwrite:
		return "Overwrite"
	case GenerateNewIds:
		return "GenerateNewIds"
	default:
		return "Unknown"
	}
}

// ConflictError records a single non-fatal conflict encountered while
// processing a batch - e.g. a skipped duplicate, or the single document
// that aborted an Abort-strategy operation.
type ConflictError struct {
	Id      interface{}
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// BatchResult is the strategy-tagged outcome of a single writeBatch
// call. Only the field(s) relevant to Strategy are meaningful; the
// others stay at their zero value. Processed and Errors are always
// populated.
type BatchResult struct {
	Strategy ConflictStrategy

	// Skip strategy
	Inserted int
	Skipped  int

	// Abort strategy
	Aborted int // 0 or 1

	// Overwrite strategy
	Replaced int
	Created  int

	// GenerateNewIds strategy reuses Inserted above

	// Processed is the total number of input documents this result
	// accounts for (inserted + skipped + replaced + created + aborted)
	Processed int

	// Errors carries non-fatal conflict records: skipped IDs under
	// Skip, or the single conflicting document under Abort
	Errors []ConflictError
}

// PartialProgress is the set of counts recovered from a thrown
// throttle/network error. Fields correspond to the active strategy and
// are used both to report progress immediately and to slice the retry
// batch.
type PartialProgress struct {
	Strategy ConflictStrategy

	Inserted int
	Skipped  int
	Replaced int
	Created  int

	// Processed is the number of leading documents in the attempted
	// batch that are confirmed written before the throttle/network
	// error interrupted the call
	Processed int
}

// ErrorKind is a tagged variant produced by a driver-specific
// classifier; it determines the writer's retry policy.
type ErrorKind int

const (
	// Other is any error that does not classify as one of the below
	Other ErrorKind = iota
	// Throttle indicates the backend asked the caller to slow down
	Throttle
	// Network indicates a transient connectivity failure
	Network
	// Conflict indicates a duplicate-key / constraint violation
	Conflict
	// Validator indicates a schema/validator rejection
	Validator
)

func (k ErrorKind) String() string {
	switch k {
	case Throttle:
		return "Throttle"
	case Network:
		return "Network"
	case Conflict:
		return "Conflict"
	case Validator:
		return "Validator"
	default:
		return "Other"
	}
}

// WriteStats accumulates per-operation counters across every flush of
// a streaming write. Invariant: TotalProcessed equals the sum of
// Inserted + Skipped + Replaced + Created + Aborted across every batch
// merged in, is monotonically non-decreasing, and is never mutated
// after the owning operation returns.
type WriteStats struct {
	Strategy ConflictStrategy

	Inserted int
	Skipped  int
	Aborted  int
	Replaced int
	Created  int

	TotalProcessed int
	FlushCount     int

	// Cancelled marks a write that returned early because its cancel
	// hook fired, as opposed to draining the source stream to
	// completion. Per the writer's Running -> (Completed | Cancelled |
	// Failed) state machine, a cancelled write is not an error: err is
	// nil and Cancelled is the only signal distinguishing it from a
	// full completion.
	Cancelled bool

	Errors []ConflictError
}

// Merge folds a BatchResult into the running stats, returning the
// delta in TotalProcessed this call contributed - used by the writer
// to drive its progress callback with a strictly positive delta.
func (s *WriteStats) Merge(r BatchResult) int {
	s.Strategy = r.Strategy
	s.Inserted += r.Inserted
	s.Skipped += r.Skipped
	s.Aborted += r.Aborted
	s.Replaced += r.Replaced
	s.Created += r.Created
	s.Errors = append(s.Errors, r.Errors...)

	delta := r.Inserted + r.Skipped + r.Replaced + r.Created + r.Aborted
	s.TotalProcessed += delta
	return delta
}

// MergePartial folds a PartialProgress into the running stats the same
// way Merge does, for the real-time report a throttle recovery makes
// before the batch is retried.
func (s *WriteStats) MergePartial(p PartialProgress) int {
	s.Inserted += p.Inserted
	s.Skipped += p.Skipped
	s.Replaced += p.Replaced
	s.Created += p.Created

	delta := p.Inserted + p.Skipped + p.Replaced + p.Created
	s.TotalProcessed += delta
	return delta
}
