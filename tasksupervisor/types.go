// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package tasksupervisor

// TaskID uniquely identifies a registered long-running operation.
type TaskID string

// TaskState is the per-task lifecycle state, following the template
// method state machine.
type TaskState int

const (
	Pending TaskState = iota
	Initializing
	Running
	Stopping
	Completed
	Stopped
	Failed
)

func (s TaskState) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Initializing:
		return "Initializing"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	case Completed:
		return "Completed"
	case Stopped:
		return "Stopped"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is one a task never leaves.
func (s TaskState) IsTerminal() bool {
	return s == Completed || s == Stopped || s == Failed
}

// ResourceDescriptor identifies the database-level resource a task
// touches. DatabaseName and CollectionName are optional: a descriptor
// that leaves one unset acts as a wildcard at that level for the
// purposes of Conflicts.
type ResourceDescriptor struct {
	ClusterId      string  `bson:"clusterId,omitempty"`
	DatabaseName   *string `bson:"databaseName,omitempty"`
	CollectionName *string `bson:"collectionName,omitempty"`
}

// Conflicts reports whether r and other describe overlapping
// resources: every level specified on either side must match the
// other side, and an unspecified level never blocks a match.
func (r ResourceDescriptor) Conflicts(other ResourceDescriptor) bool {
	if r.ClusterId != other.ClusterId {
		return false
	}
	return levelMatches(r.DatabaseName, other.DatabaseName) &&
		levelMatches(r.CollectionName, other.CollectionName)
}

func levelMatches(a, b *string) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

// TaskRecord is the persisted snapshot of a task's status, written to
// the supervisor's CachedTable on every state transition so the
// registry survives beyond the in-memory Task objects.
type TaskRecord struct {
	State     TaskState            `bson:"state,omitempty"`
	Resources []ResourceDescriptor `bson:"resources,omitempty"`
	Error     string               `bson:"error,omitempty"`
	Processed int                  `bson:"processed,omitempty"`
}
