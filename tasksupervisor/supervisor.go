// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package tasksupervisor is the registry of long-running copy
// operations: it tracks each Task's lifecycle, fans out status/state
// notifications to subscribers through the reconciler package's
// dedup-and-coalesce pipeline, and answers cross-task resource-conflict
// queries over the tasks this supervisor tracks. Arbitration across
// supervisor processes happens only through AcquireResourceLock once
// WithResourceLocking is configured.
package tasksupervisor

import (
	"context"
	"fmt"
	"log"
	stdsync "sync"

	"github.com/google/uuid"

	"github.com/go-core-stack/doccopy/db"
	"github.com/go-core-stack/doccopy/errors"
	"github.com/go-core-stack/doccopy/reconciler"
	csync "github.com/go-core-stack/doccopy/sync"
	"github.com/go-core-stack/doccopy/table"
)

// Supervisor is the registry of active and historical tasks. Every
// state transition a Task makes is fanned out to registered
// subscribers via the embedded reconciler.ManagerImpl, the same
// dedup-and-coalesce pipeline used elsewhere for database change
// notifications.
type Supervisor struct {
	reconciler.ManagerImpl

	mu    stdsync.Mutex
	tasks map[TaskID]*Task

	records       *table.CachedTable[TaskID, TaskRecord]
	lockTable     *csync.LockTable
	providerTable *csync.ProviderTable
}

// NewSupervisor constructs an in-memory Supervisor and wires its
// reconciler manager. Use WithPersistence and WithResourceLocking to
// attach a durable task registry and a cross-process resource lock.
func NewSupervisor() *Supervisor {
	s := &Supervisor{
		tasks: make(map[TaskID]*Task),
	}
	// the reconciler manager's context only governs its own pipeline
	// goroutines, not any individual task's cancellation
	_ = s.ManagerImpl.Initialize(context.Background(), s)
	return s
}

// WithPersistence attaches a CachedTable-backed durable registry over
// col, so the supervisor's task state survives beyond this process's
// in-memory map and restarts, in line with the stricter durability
// posture adopted for the task registry.
func (s *Supervisor) WithPersistence(col db.StoreCollection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records != nil {
		return errors.Wrap(errors.AlreadyExists, "supervisor already has a persistence backend")
	}
	records := &table.CachedTable[TaskID, TaskRecord]{}
	if err := records.Initialize(col); err != nil {
		return err
	}
	s.records = records
	return nil
}

// WithResourceLocking attaches a distributed LockTable so resource
// conflicts are arbitrated across supervisor processes, not just
// within this one.
func (s *Supervisor) WithResourceLocking(store db.Store, lockCollection string) error {
	lt, err := csync.LocateLockTable(store, lockCollection)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lockTable = lt
	s.mu.Unlock()
	return nil
}

// ReconcilerGetAllKeys satisfies reconciler.Manager, enumerating every
// currently tracked task ID so a newly registered subscriber is
// caught up on existing tasks.
func (s *Supervisor) ReconcilerGetAllKeys() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]any, 0, len(s.tasks))
	for id := range s.tasks {
		keys = append(keys, id)
	}
	return keys
}

// Subscribe registers a notification consumer that observes every
// task's state transitions, coalesced the way the reconciler pipeline
// coalesces any other change source.
func (s *Supervisor) Subscribe(name string, ctrl reconciler.Controller) error {
	return s.Register(name, ctrl)
}

// NewTask allocates a Task in the Pending state, tracked by this
// supervisor but not yet started.
func (s *Supervisor) NewTask(resources []ResourceDescriptor, onInitialize InitFunc, work WorkFunc) *Task {
	t := &Task{
		ID:           TaskID(uuid.NewString()),
		resources:    resources,
		state:        Pending,
		sup:          s,
		onInitialize: onInitialize,
		work:         work,
	}
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	return t
}

// WithDistributedDiscovery registers this process as a csync.Owner and
// provisions a csync.ProviderTable over store, so every resource a
// running task touches is advertised for cross-process discovery by
// other supervisor instances sharing the same store - independent of,
// and in addition to, the mutual-exclusion WithResourceLocking
// provides. ctx governs the owner's background heartbeat and is
// typically the process lifetime context; calling this more than once
// per process is a no-op past the first successful call, since the
// underlying owner table is a process-wide singleton.
func (s *Supervisor) WithDistributedDiscovery(ctx context.Context, store db.Store, processName string) error {
	if err := csync.InitializeOwner(ctx, store, processName); err != nil && !errors.IsAlreadyExists(err) {
		return err
	}
	pt, err := csync.LocateProviderTable(store)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.providerTable = pt
	s.mu.Unlock()
	return nil
}

// announceResources advertises every resource t touches as an active
// csync.Provider, so other processes watching the provider table's
// observer can discover that this resource currently has a task
// running against it. A no-op if discovery was never configured.
func (s *Supervisor) announceResources(t *Task) {
	s.mu.Lock()
	pt := s.providerTable
	s.mu.Unlock()
	if pt == nil {
		return
	}
	providers := make([]*csync.Provider, 0, len(t.UsedResources()))
	for _, r := range t.UsedResources() {
		p, err := pt.CreateProvider(context.Background(), resourceKey(r))
		if err != nil {
			log.Printf("tasksupervisor: failed announcing resource %s for task %s: %s", resourceKey(r), t.ID, err)
			continue
		}
		providers = append(providers, p)
	}
	t.setProviders(providers)
}

// revokeResources closes every csync.Provider handle t's resources
// were announced under, once the task reaches a terminal state.
func (s *Supervisor) revokeResources(t *Task) {
	for _, p := range t.takeProviders() {
		if err := p.Close(); err != nil {
			log.Printf("tasksupervisor: failed revoking provider for task %s: %s", t.ID, err)
		}
	}
}

// AcquireResourceLock takes the distributed lock for resource if
// resource locking has been configured, keyed by the resource
// descriptor's string form. Returns nil, nil if locking isn't
// configured - callers relying only on the in-process conflict index
// (FindConflictingTasksForConnections) don't need it.
func (s *Supervisor) AcquireResourceLock(ctx context.Context, resource ResourceDescriptor) (csync.Lock, error) {
	s.mu.Lock()
	lt := s.lockTable
	s.mu.Unlock()
	if lt == nil {
		return nil, nil
	}
	return lt.TryAcquire(ctx, resourceKey(resource))
}

func resourceKey(r ResourceDescriptor) string {
	db := ""
	if r.DatabaseName != nil {
		db = *r.DatabaseName
	}
	col := ""
	if r.CollectionName != nil {
		col = *r.CollectionName
	}
	return fmt.Sprintf("%s/%s/%s", r.ClusterId, db, col)
}

func (s *Supervisor) recordState(id TaskID, state TaskState) {
	s.persist(id, state, "")
	s.NotifyCallback(id)
}

func (s *Supervisor) recordProgress(id TaskID, processed int, summary string) {
	s.mu.Lock()
	records := s.records
	s.mu.Unlock()
	if records == nil {
		return
	}
	existing, err := records.DBFind(context.Background(), &id)
	rec := TaskRecord{State: Running}
	if err == nil && existing != nil {
		rec = *existing
	}
	rec.Processed += processed
	_ = records.Locate(context.Background(), &id, &rec)
}

func (s *Supervisor) persist(id TaskID, state TaskState, errMsg string) {
	s.mu.Lock()
	records := s.records
	t := s.tasks[id]
	s.mu.Unlock()
	if records == nil {
		return
	}

	rec := TaskRecord{State: state, Error: errMsg}
	if t != nil {
		rec.Resources = t.UsedResources()
	}
	if existing, err := records.DBFind(context.Background(), &id); err == nil && existing != nil {
		rec.Processed = existing.Processed
	}
	_ = records.Locate(context.Background(), &id, &rec)
}

// activeTasks returns every task not yet in a terminal state.
func (s *Supervisor) activeTasks() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.State().IsTerminal() {
			out = append(out, t)
		}
	}
	return out
}

// ListActive returns the IDs of active tasks whose used resources
// conflict with resource - a pre-flight check a caller can make before
// even calling Start.
func (s *Supervisor) ListActive(resource ResourceDescriptor) []TaskID {
	var ids []TaskID
	for _, t := range s.activeTasks() {
		for _, used := range t.UsedResources() {
			if used.Conflicts(resource) {
				ids = append(ids, t.ID)
				break
			}
		}
	}
	return ids
}

// FindConflictingTasksForConnections iterates active tasks and reports
// every task ID that conflicts with any resource in resources,
// deduplicated by task ID.
func (s *Supervisor) FindConflictingTasksForConnections(resources []ResourceDescriptor) []TaskID {
	seen := make(map[TaskID]bool)
	var ids []TaskID
	for _, t := range s.activeTasks() {
		for _, used := range t.UsedResources() {
			conflict := false
			for _, r := range resources {
				if used.Conflicts(r) {
					conflict = true
					break
				}
			}
			if conflict {
				if !seen[t.ID] {
					seen[t.ID] = true
					ids = append(ids, t.ID)
				}
				break
			}
		}
	}
	return ids
}
