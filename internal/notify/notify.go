// Package notify publishes task lifecycle events so external consumers
// (notification services, analytics) can react to them. Publishing is best
// effort, callers log failures and continue.
package notify

import (
	"context"

	"github.com/taskhub/taskhub/internal/model"
)

// TaskEvent is the payload published for task lifecycle events.
type TaskEvent struct {
	TaskID     string   `json:"taskId"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	AssignedTo []string `json:"assignedTo"`
}

// Notifier publishes task lifecycle events.
type Notifier interface {
	TaskCreated(ctx context.Context, t model.Task) error
	TaskCompleted(ctx context.Context, t model.Task) error
}

// Noop notifier doesn't publish anything.
const Noop = noop(0)

type noop int

var _ Notifier = Noop

func (noop) TaskCreated(context.Context, model.Task) error   { return nil }
func (noop) TaskCompleted(context.Context, model.Task) error { return nil }

// NewTaskEvent returns the event payload for a task.
func NewTaskEvent(t model.Task) TaskEvent {
	assignedTo := t.AssignedTo
	if assignedTo == nil {
		assignedTo = []string{}
	}
	return TaskEvent{
		TaskID:     t.ID,
		Title:      t.Title,
		Status:     string(t.Status),
		AssignedTo: assignedTo,
	}
}
