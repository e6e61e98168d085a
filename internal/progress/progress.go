// Package progress keeps a task's checklist, completion percentage and
// status mutually consistent. There are two write paths: replacing the
// whole checklist rederives progress and status, and setting the status
// directly forces the checklist only on the transition to completed.
package progress

import (
	"math"

	"github.com/taskhub/taskhub/internal/model"
)

// Compute returns the completion percentage of a checklist, rounded
// half-up. An empty checklist is 0.
func Compute(items []model.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}

	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}

	return int(math.Round(100 * float64(completed) / float64(len(items))))
}

// StatusFor returns the status derived from a completion percentage.
func StatusFor(pct int) model.TaskStatus {
	switch {
	case pct == 0:
		return model.TaskStatusPending
	case pct == 100:
		return model.TaskStatusCompleted
	default:
		return model.TaskStatusInProgress
	}
}

// ApplyChecklist replaces the task's checklist and rederives progress and
// status from it. An empty checklist always yields progress 0 and pending
// status, regardless of the task's prior state.
func ApplyChecklist(t *model.Task, items []model.ChecklistItem) {
	t.TodoChecklist = items
	t.Progress = Compute(items)
	t.Status = StatusFor(t.Progress)
}

// ApplyStatus sets the task status directly. Setting completed forces every
// checklist item to completed and the progress to 100. Any other status
// passes through leaving checklist and progress untouched.
func ApplyStatus(t *model.Task, status model.TaskStatus) {
	t.Status = status
	if status != model.TaskStatusCompleted {
		return
	}

	for i := range t.TodoChecklist {
		t.TodoChecklist[i].Completed = true
	}
	t.Progress = 100
}
