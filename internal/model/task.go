package model

import (
	"fmt"
	"time"
)

// TaskStatus represents the status of a task. It is derived from the
// checklist progress and never set inconsistently with it, except through
// the explicit status-set operation.
type TaskStatus string

const (
	// TaskStatusPending indicates no checklist item is completed.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is partially completed.
	TaskStatusInProgress TaskStatus = "inProgress"
	// TaskStatusCompleted indicates every checklist item is completed.
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid returns true if the status is a known one.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskStatuses are all the known task statuses.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// TaskPriority represents the priority of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid returns true if the priority is a known one.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// TaskPriorities are all the known task priorities.
var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

// ChecklistItem is a single todo entry within a task.
type ChecklistItem struct {
	Text      string
	Completed bool
}

// Task represents a unit of work assigned to zero or more users.
type Task struct {
	ID            string
	Title         string
	Description   string
	Priority      TaskPriority
	Status        TaskStatus
	Progress      int // 0-100, derived from the checklist.
	DueDate       *time.Time
	AssignedTo    []string // User IDs.
	CreatedBy     string   // User ID, immutable.
	TodoChecklist []ChecklistItem
	Attachments   []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAssignee returns true if the given user is in the task's assignee set.
func (t *Task) IsAssignee(userID string) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// CompletedTodoCount returns the number of completed checklist items.
func (t *Task) CompletedTodoCount() int {
	count := 0
	for _, item := range t.TodoChecklist {
		if item.Completed {
			count++
		}
	}
	return count
}

// Validate validates the task fields.
func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("title is required: %w", ErrNotValid)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("unknown priority %q: %w", t.Priority, ErrNotValid)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", t.Status, ErrNotValid)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
	}
	for _, id := range t.AssignedTo {
		if id == "" {
			return fmt.Errorf("assignedTo must be a list of user IDs: %w", ErrNotValid)
		}
	}
	return nil
}
