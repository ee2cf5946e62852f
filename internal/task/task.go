package task

import "time"

// Status is a task's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority is a task's importance level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

var priorityRank = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// Task is the central entity. Subtasks are ordinary tasks whose ParentID
// references a top-level task; nesting is capped at one level.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ParentID    string     `json:"parentId,omitempty"`
}

// IsSubtask reports whether the task belongs to a parent task.
func (t *Task) IsSubtask() bool {
	return t.ParentID != ""
}

// ShortID returns the leading 8 characters of the id, used when listing
// ambiguous prefix matches back to the caller.
func (t *Task) ShortID() string {
	return ShortID(t.ID)
}

// ShortID abbreviates a task id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// StoreVersion is recorded in every persisted store. It is reserved for a
// future migration path and is never validated on load.
const StoreVersion = "1.0.0"

// StoreMetadata is recomputed on every save and never trusted from the
// loaded value.
type StoreMetadata struct {
	LastModified time.Time `json:"lastModified"`
	TaskCount    int       `json:"taskCount"`
}

// Store is the persisted aggregate: all tasks, top-level and subtasks
// interleaved in insertion order.
type Store struct {
	Version  string        `json:"version"`
	Tasks    []Task        `json:"tasks"`
	Metadata StoreMetadata `json:"metadata"`
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Version: StoreVersion,
		Tasks:   []Task{},
		Metadata: StoreMetadata{
			LastModified: time.Now().UTC(),
			TaskCount:    0,
		},
	}
}

// Progress summarizes subtask completion for one parent task.
type Progress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// StatusResult is the result of a status update. AllSubtasksCompleted is
// only populated when a subtask was just completed; it reports whether every
// sibling sharing the same parent is now completed.
type StatusResult struct {
	Task
	AllSubtasksCompleted *bool `json:"allSubtasksCompleted,omitempty"`
}
