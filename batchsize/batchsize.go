// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package batchsize tracks the current batch size for a streaming
// write, growing it while things go well and shrinking it under
// throttle pressure. A throttle event permanently moves the adapter
// from its Fast mode into a more conservative RuLimited mode: the
// transition is one-way for the lifetime of an operation.
package batchsize

// Mode selects the operating envelope for the batch size adapter.
type Mode int

const (
	// Fast is the starting mode, assuming the backend is not rate
	// limiting the caller
	Fast Mode = iota
	// RuLimited is entered the first time a throttle is observed, and
	// never left again
	RuLimited
)

func (m Mode) String() string {
	if m == RuLimited {
		return "RuLimited"
	}
	return "Fast"
}

const (
	fastInitial  = 500
	fastMax      = 2000
	fastGrowth   = 1.20
	ruInitial    = 100
	ruMax        = 1000
	ruGrowth     = 1.10
	memoryLimitMB = 24
)

// Constraints is the buffer sizing advice handed to the writer ahead
// of a flush.
type Constraints struct {
	CurrentBatchSize int
	MemoryLimitMB    int
}

// Adapter holds the adaptive batch size state for a single streaming
// write operation.
type Adapter struct {
	mode    Mode
	current int
}

// New constructs an Adapter starting in Fast mode.
func New() *Adapter {
	return &Adapter{
		mode:    Fast,
		current: fastInitial,
	}
}

// Mode returns the adapter's current mode.
func (a *Adapter) Mode() Mode {
	return a.mode
}

// Current returns the current batch size.
func (a *Adapter) Current() int {
	return a.current
}

func (a *Adapter) maxForMode() int {
	if a.mode == RuLimited {
		return ruMax
	}
	return fastMax
}

func (a *Adapter) growthForMode() float64 {
	if a.mode == RuLimited {
		return ruGrowth
	}
	return fastGrowth
}

// grow increases the batch size after a fully successful flush,
// capped at the mode's maximum.
func (a *Adapter) grow() {
	next := int(float64(a.current) * a.growthForMode())
	if next <= a.current {
		next = a.current + 1
	}
	max := a.maxForMode()
	if next > max {
		next = max
	}
	a.current = next
}

// Grow is the exported form of grow, called by the writer after each
// batch whose result carries no conflicts, including a batch that was
// throttled and then completed on retry.
func (a *Adapter) Grow() {
	a.grow()
}

// shrink sets the batch size to exactly n, used to size a retry batch
// down to the partial progress boundary.
func (a *Adapter) shrink(n int) {
	if n < 1 {
		n = 1
	}
	a.current = n
}

// Shrink is the exported form of shrink.
func (a *Adapter) Shrink(n int) {
	a.shrink(n)
}

// halve cuts the current batch size in half, floor 1, used by
// handleThrottle on a throttle where no partial progress is known.
func (a *Adapter) halve() {
	n := a.current / 2
	if n < 1 {
		n = 1
	}
	a.current = n
}

// Halve is the exported form of halve.
func (a *Adapter) Halve() {
	a.halve()
}

// handleThrottle reacts to a throttle classification: it switches the
// adapter into RuLimited mode (one-way) the first time it is called,
// then applies the mode's transition rule to n (the confirmed
// partial-progress count). If n > 0 the size is pinned to n, capped at
// RuLimited.max; if n <= 0, the pre-throttle size is halved instead,
// since there is no proven count to pin to.
func (a *Adapter) handleThrottle(n int) {
	a.mode = RuLimited
	if n > 0 {
		if n <= ruInitial {
			a.shrink(n)
		} else {
			a.current = min(n, ruMax)
		}
	} else {
		a.halve()
	}
}

// HandleThrottle is the exported form of handleThrottle.
func (a *Adapter) HandleThrottle(n int) {
	a.handleThrottle(n)
}

// BufferConstraints returns the sizing advice for the next flush.
func (a *Adapter) BufferConstraints() Constraints {
	return Constraints{
		CurrentBatchSize: a.current,
		MemoryLimitMB:    memoryLimitMB,
	}
}
