// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package keepalive

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-core-stack/doccopy/document"
)

// stalledStream returns a fresh document on every Next call and counts
// the reads; a test simulates a consumer that is busy elsewhere by not
// calling the orchestrator's Next.
type stalledStream struct {
	mu        sync.Mutex
	reads     int
	released  bool
	unblocked chan struct{}
}

func newStalledStream() *stalledStream {
	return &stalledStream{unblocked: make(chan struct{})}
}

func (s *stalledStream) Next(ctx context.Context) (document.Document, bool, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return document.Document{Id: s.reads}, false, nil
}

func (s *stalledStream) Release(ctx context.Context) error {
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
	return nil
}

func (s *stalledStream) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func Test_Orchestrator_Timeout(t *testing.T) {
	stream := newStalledStream()
	o := New(200, 1200)
	o.Start(stream)
	defer o.Stop()

	// never call Next, simulating a stalled consumer past TimeoutMs
	time.Sleep(1500 * time.Millisecond)

	_, _, err := o.Next(context.Background(), nil)
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	stats := o.Stop()
	if stats.KeepAliveReadCount < 4 {
		t.Errorf("expected at least 4 background reads before timeout, got %d", stats.KeepAliveReadCount)
	}
}

func Test_Orchestrator_FastConsumer(t *testing.T) {
	stream := newStalledStream()
	o := New(1000, 10000)
	o.Start(stream)
	defer o.Stop()

	for i := 0; i < 5; i++ {
		doc, done, err := o.Next(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if done {
			t.Fatalf("unexpected premature done")
		}
		if doc.Id == nil {
			t.Fatalf("expected a document id")
		}
	}

	stats := o.Stop()
	if stats.MaxBufferLength != 0 {
		t.Errorf("fast consumer should never accumulate a background buffer, got max length %d", stats.MaxBufferLength)
	}
}

func Test_Orchestrator_CancelledNext(t *testing.T) {
	stream := newStalledStream()
	o := New(1000, 10000)
	o.Start(stream)
	defer o.Stop()

	_, done, err := o.Next(context.Background(), func() bool { return true })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatalf("expected done=true on cancelled read")
	}
}
