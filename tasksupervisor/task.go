// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package tasksupervisor

import (
	"context"
	"sync"

	"github.com/go-core-stack/doccopy/errors"
	csync "github.com/go-core-stack/doccopy/sync"
)

// InitFunc runs once, before a task transitions to Running. Returning
// an error fails the task before its main body ever runs.
type InitFunc func(ctx context.Context) error

// ProgressFunc reports a task's incremental progress. Calls made while
// the task is not in the Running state are silently dropped.
type ProgressFunc func(processed int, summary string)

// WorkFunc is a task's main body. It must observe ctx.Done() and
// return promptly once cancellation is requested; the task only
// reaches a terminal state once this function returns.
type WorkFunc func(ctx context.Context, report ProgressFunc) error

// Task is a single long-running operation tracked by a Supervisor. It
// implements a template-method lifecycle: Start
// validates Pending→Initializing, runs onInitialize (respecting
// cancellation), transitions to Running, launches the work body, and
// on completion/cancellation/error transitions to a terminal state.
type Task struct {
	ID        TaskID
	resources []ResourceDescriptor

	mu        sync.Mutex
	state     TaskState
	cancel    context.CancelFunc
	providers []*csync.Provider

	sup          *Supervisor
	onInitialize InitFunc
	work         WorkFunc
}

// UsedResources returns the resources this task touches, for the
// supervisor's conflict index.
func (t *Task) UsedResources() []ResourceDescriptor {
	return t.resources
}

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// setProviders records the csync.Provider handles announcing this
// task's resources, for takeProviders to close once the task reaches
// a terminal state.
func (t *Task) setProviders(providers []*csync.Provider) {
	t.mu.Lock()
	t.providers = providers
	t.mu.Unlock()
}

// takeProviders clears and returns the task's announced providers.
func (t *Task) takeProviders() []*csync.Provider {
	t.mu.Lock()
	providers := t.providers
	t.providers = nil
	t.mu.Unlock()
	return providers
}

func (t *Task) setState(state TaskState) {
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()
	if t.sup != nil {
		t.sup.recordState(t.ID, state)
	}
}

// Start validates the Pending→Initializing transition, runs
// onInitialize if set, then transitions to Running and launches the
// work body in a goroutine. It returns an error immediately if the
// task is not Pending, or if onInitialize fails synchronously.
func (t *Task) Start(parent context.Context) error {
	t.mu.Lock()
	if t.state != Pending {
		state := t.state
		t.mu.Unlock()
		return errors.Wrapf(errors.InvalidArgument, "task %s cannot start from state %s", t.ID, state)
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.mu.Unlock()

	t.setState(Initializing)

	if t.onInitialize != nil {
		if err := t.onInitialize(ctx); err != nil {
			t.setState(Failed)
			return err
		}
		if ctx.Err() != nil {
			t.setState(Stopped)
			return nil
		}
	}

	t.setState(Running)
	if t.sup != nil {
		t.sup.announceResources(t)
	}

	go func() {
		err := t.work(ctx, func(processed int, summary string) {
			t.reportProgress(processed, summary)
		})
		switch {
		case ctx.Err() != nil:
			t.setState(Stopped)
		case err != nil:
			t.setState(Failed)
		default:
			t.setState(Completed)
		}
		if t.sup != nil {
			t.sup.revokeResources(t)
		}
	}()

	return nil
}

// Stop signals cancellation and is idempotent once a task has reached
// a terminal state. It only signals; the running task body observes
// ctx.Done() and performs the actual terminal transition once its
// work function returns.
func (t *Task) Stop() {
	t.mu.Lock()
	if t.state.IsTerminal() {
		t.mu.Unlock()
		return
	}
	t.state = Stopping
	cancel := t.cancel
	t.mu.Unlock()

	if t.sup != nil {
		t.sup.recordState(t.ID, Stopping)
	}
	if cancel != nil {
		cancel()
	}
}

// reportProgress forwards progress to the supervisor only while the
// task is Running; any other state silently drops the update.
func (t *Task) reportProgress(processed int, summary string) {
	t.mu.Lock()
	running := t.state == Running
	t.mu.Unlock()
	if !running {
		return
	}
	if t.sup != nil {
		t.sup.recordProgress(t.ID, processed, summary)
	}
}
