package model

import "time"

// TaskDigest is the reduced task projection used in dashboard listings.
type TaskDigest struct {
	ID         string
	Title      string
	Status     TaskStatus
	Priority   TaskPriority
	DueDate    *time.Time
	AssignedTo []string
	CreatedAt  time.Time
}

// Digest returns the reduced projection of a task.
func (t *Task) Digest() TaskDigest {
	return TaskDigest{
		ID:         t.ID,
		Title:      t.Title,
		Status:     t.Status,
		Priority:   t.Priority,
		DueDate:    t.DueDate,
		AssignedTo: t.AssignedTo,
		CreatedAt:  t.CreatedAt,
	}
}

// DashboardDistributionAllKey is the synthetic distribution key holding the
// total task count.
const DashboardDistributionAllKey = "all"

// DashboardSummary holds the aggregated statistics over a visible task set.
// TaskDistribution and TaskPriorityLevels always carry every known status
// and priority key, even when their count is zero.
type DashboardSummary struct {
	TotalTasks         int
	PendingTasks       int
	InProgressTasks    int
	CompletedTasks     int
	OverdueTasks       int
	TaskDistribution   map[string]int
	TaskPriorityLevels map[string]int
	RecentTasks        []TaskDigest
}
