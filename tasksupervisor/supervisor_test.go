// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package tasksupervisor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-core-stack/doccopy/reconciler"
)

// recordingController implements reconciler.Controller, collecting every
// key it's asked to reconcile.
type recordingController struct {
	mu   sync.Mutex
	seen []any
	got  chan struct{}
}

func newRecordingController() *recordingController {
	return &recordingController{got: make(chan struct{}, 16)}
}

func (c *recordingController) Reconcile(k any) (*reconciler.Result, error) {
	c.mu.Lock()
	c.seen = append(c.seen, k)
	c.mu.Unlock()
	c.got <- struct{}{}
	return &reconciler.Result{}, nil
}

func Test_Supervisor_SubscriberNotifiedOfStateTransitions(t *testing.T) {
	sup := NewSupervisor()
	ctrl := newRecordingController()
	if err := sup.Subscribe("watcher", ctrl); err != nil {
		t.Fatalf("unexpected error subscribing: %v", err)
	}

	task := sup.NewTask(nil, nil, func(ctx context.Context, report ProgressFunc) error {
		return nil
	})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting task: %v", err)
	}

	// Expect at least one notification (Initializing/Running/Completed
	// coalesce through the pipeline's dedup, so count isn't guaranteed,
	// but at least one delivery must occur).
	select {
	case <-ctrl.got:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for subscriber notification")
	}
}

func Test_Supervisor_FindConflictingTasksForConnections(t *testing.T) {
	sup := NewSupervisor()
	release := make(chan struct{})

	dbA := "db1"
	colA := "coll1"
	task := sup.NewTask([]ResourceDescriptor{{ClusterId: "c1", DatabaseName: &dbA, CollectionName: &colA}}, nil,
		func(ctx context.Context, report ProgressFunc) error {
			<-release
			return nil
		})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer close(release)

	waitForState(t, task, Running)

	// A whole-cluster query must conflict with the scoped task.
	conflicting := sup.FindConflictingTasksForConnections([]ResourceDescriptor{{ClusterId: "c1"}})
	if len(conflicting) != 1 || conflicting[0] != task.ID {
		t.Fatalf("expected task %s to conflict, got %v", task.ID, conflicting)
	}

	// A different cluster must never conflict.
	none := sup.FindConflictingTasksForConnections([]ResourceDescriptor{{ClusterId: "c2"}})
	if len(none) != 0 {
		t.Fatalf("expected no conflicts for a disjoint cluster, got %v", none)
	}

	// A different database on the same cluster must not conflict.
	dbB := "db2"
	disjointDB := sup.FindConflictingTasksForConnections([]ResourceDescriptor{{ClusterId: "c1", DatabaseName: &dbB}})
	if len(disjointDB) != 0 {
		t.Fatalf("expected no conflicts for a disjoint database, got %v", disjointDB)
	}
}

func Test_Supervisor_ListActiveExcludesTerminalTasks(t *testing.T) {
	sup := NewSupervisor()
	task := sup.NewTask([]ResourceDescriptor{{ClusterId: "c1"}}, nil,
		func(ctx context.Context, report ProgressFunc) error {
			return nil
		})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitForState(t, task, Completed)

	active := sup.ListActive(ResourceDescriptor{ClusterId: "c1"})
	if len(active) != 0 {
		t.Fatalf("expected a completed task to be excluded from ListActive, got %v", active)
	}
}

func Test_Supervisor_DeduplicatesConflictsAcrossMultipleResources(t *testing.T) {
	sup := NewSupervisor()
	release := make(chan struct{})
	dbA, dbB := "db1", "db2"
	task := sup.NewTask([]ResourceDescriptor{
		{ClusterId: "c1", DatabaseName: &dbA},
		{ClusterId: "c1", DatabaseName: &dbB},
	}, nil, func(ctx context.Context, report ProgressFunc) error {
		<-release
		return nil
	})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer close(release)
	waitForState(t, task, Running)

	conflicting := sup.FindConflictingTasksForConnections([]ResourceDescriptor{
		{ClusterId: "c1", DatabaseName: &dbA},
		{ClusterId: "c1", DatabaseName: &dbB},
	})
	if len(conflicting) != 1 {
		t.Fatalf("expected a single deduplicated conflict entry, got %v", conflicting)
	}
}
