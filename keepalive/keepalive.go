// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package keepalive wraps a database iterator with a background
// prefetch buffer that guarantees a successful underlying read at
// least once per interval, so a slow downstream consumer never lets
// the source cursor time out. The orchestrator is a cursor-liveness
// watchdog, not a prefetcher: it only reads ahead when the interval
// has elapsed since the last successful read.
package keepalive

import (
	"context"
	"sync"
	"time"

	"github.com/go-core-stack/doccopy/document"
	"github.com/go-core-stack/doccopy/errors"
)

// ErrTimeout is returned from Next once a tick has found that TimeoutMs
// has elapsed since Start; it is fatal and non-retryable.
var ErrTimeout = errors.Wrap(errors.Unknown, "keep-alive: source stream timed out")

// Stats reports counters collected over the lifetime of an
// Orchestrator, returned by Stop.
type Stats struct {
	KeepAliveReadCount int
	MaxBufferLength    int
}

// Orchestrator wraps a document.DocumentStream, buffering background
// reads between foreground Next calls so the source cursor keeps
// seeing activity even while the consumer is busy elsewhere.
type Orchestrator struct {
	IntervalMs int64
	TimeoutMs  int64

	mu     sync.Mutex
	stream document.DocumentStream
	buffer []document.Document

	streamStartTime time.Time
	lastReadAt      time.Time

	timedOut bool
	stopped  bool

	readCount       int
	maxBufferLength int

	timer *time.Ticker
	done  chan struct{}
}

// New constructs an Orchestrator with the given tick and timeout
// intervals in milliseconds.
func New(intervalMs, timeoutMs int64) *Orchestrator {
	return &Orchestrator{
		IntervalMs: intervalMs,
		TimeoutMs:  timeoutMs,
	}
}

// Start captures the stream start time, arms the keep-alive timer, and
// begins ticking in the background. Must be called once before Next.
func (o *Orchestrator) Start(stream document.DocumentStream) {
	o.mu.Lock()
	now := time.Now()
	o.stream = stream
	o.streamStartTime = now
	o.lastReadAt = now
	o.done = make(chan struct{})
	o.mu.Unlock()

	o.timer = time.NewTicker(time.Duration(o.IntervalMs) * time.Millisecond)
	go o.tickLoop()
}

func (o *Orchestrator) tickLoop() {
	for {
		select {
		case <-o.done:
			return
		case <-o.timer.C:
			o.tick()
		}
	}
}

// tick checks for timeout first, then performs a
// single background read if the interval elapsed since the last
// successful read. Background read errors never escape this function.
func (o *Orchestrator) tick() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	now := time.Now()
	if now.Sub(o.streamStartTime) >= time.Duration(o.TimeoutMs)*time.Millisecond {
		o.timedOut = true
		stream := o.stream
		o.mu.Unlock()
		if stream != nil {
			_ = stream.Release(context.Background())
		}
		o.Stop()
		return
	}
	if now.Sub(o.lastReadAt) < time.Duration(o.IntervalMs)*time.Millisecond {
		o.mu.Unlock()
		return
	}
	stream := o.stream
	o.mu.Unlock()

	doc, done, err := stream.Next(context.Background())
	if err != nil || done {
		// swallow silently; a persistent failure will surface to the
		// consumer on the next foreground read
		return
	}

	o.mu.Lock()
	o.buffer = append(o.buffer, doc)
	o.lastReadAt = time.Now()
	o.readCount++
	if len(o.buffer) > o.maxBufferLength {
		o.maxBufferLength = len(o.buffer)
	}
	o.mu.Unlock()
}

// Next returns the oldest buffered document if any; otherwise it
// performs a foreground read from the underlying stream. It fails with
// ErrTimeout if a prior tick has already observed that TimeoutMs has
// elapsed since Start.
func (o *Orchestrator) Next(ctx context.Context, cancelled func() bool) (document.Document, bool, error) {
	if cancelled != nil && cancelled() {
		return document.Document{}, true, nil
	}

	o.mu.Lock()
	if o.timedOut {
		o.mu.Unlock()
		return document.Document{}, false, ErrTimeout
	}
	if len(o.buffer) > 0 {
		doc := o.buffer[0]
		o.buffer = o.buffer[1:]
		o.mu.Unlock()
		return doc, false, nil
	}
	stream := o.stream
	o.mu.Unlock()

	doc, done, err := stream.Next(ctx)
	if err != nil {
		return document.Document{}, false, err
	}
	if !done {
		o.mu.Lock()
		o.lastReadAt = time.Now()
		o.mu.Unlock()
	}
	return doc, done, nil
}

// Stop cancels the timer, releases the underlying stream if present,
// and returns the accumulated Stats. Idempotent.
func (o *Orchestrator) Stop() Stats {
	o.mu.Lock()
	if o.stopped {
		stats := Stats{KeepAliveReadCount: o.readCount, MaxBufferLength: o.maxBufferLength}
		o.mu.Unlock()
		return stats
	}
	o.stopped = true
	done := o.done
	o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
	}
	if done != nil {
		close(done)
	}

	o.mu.Lock()
	stats := Stats{KeepAliveReadCount: o.readCount, MaxBufferLength: o.maxBufferLength}
	o.mu.Unlock()
	return stats
}
