package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/app/dashboard"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage/memory"
)

var (
	admin  = model.Identity{UserID: "admin-1", Role: model.RoleAdmin}
	member = model.Identity{UserID: "user-1", Role: model.RoleMember}
)

func newSeededService(t *testing.T) *dashboard.Service {
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	tomorrow := time.Now().UTC().Add(24 * time.Hour)

	tasks := []model.Task{
		{
			ID: "task-1", Title: "Write docs", Status: model.TaskStatusPending,
			Priority: model.TaskPriorityLow, AssignedTo: []string{"user-1"},
			DueDate: &yesterday, CreatedAt: base,
		},
		{
			ID: "task-2", Title: "Review PRs", Status: model.TaskStatusInProgress, Progress: 50,
			Priority: model.TaskPriorityMedium, AssignedTo: []string{"user-1"},
			DueDate: &tomorrow, CreatedAt: base.Add(time.Hour),
		},
		{
			ID: "task-3", Title: "Ship release", Status: model.TaskStatusCompleted, Progress: 100,
			Priority: model.TaskPriorityHigh, AssignedTo: []string{"user-2"},
			DueDate: &yesterday, CreatedAt: base.Add(2 * time.Hour),
		},
		{
			ID: "task-4", Title: "Plan sprint", Status: model.TaskStatusPending,
			Priority: model.TaskPriorityHigh, AssignedTo: []string{"user-2"},
			CreatedAt: base.Add(3 * time.Hour),
		},
	}
	for _, task := range tasks {
		require.NoError(t, repo.CreateTask(context.Background(), task))
	}

	svc, err := dashboard.NewService(dashboard.ServiceConfig{Repository: repo})
	require.NoError(t, err)

	return svc
}

func TestServiceSummary(t *testing.T) {
	t.Run("Member is forbidden", func(t *testing.T) {
		svc := newSeededService(t)

		summary, err := svc.Summary(context.Background(), member)

		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrForbidden))
		assert.Nil(t, summary)
	})

	t.Run("Admin gets global statistics", func(t *testing.T) {
		svc := newSeededService(t)

		summary, err := svc.Summary(context.Background(), admin)
		require.NoError(t, err)

		assert.Equal(t, 4, summary.TotalTasks)
		assert.Equal(t, 2, summary.PendingTasks)
		assert.Equal(t, 1, summary.InProgressTasks)
		assert.Equal(t, 1, summary.CompletedTasks)
		// task-3 is past due but completed, only task-1 counts.
		assert.Equal(t, 1, summary.OverdueTasks)

		assert.Equal(t, map[string]int{
			"all":        4,
			"pending":    2,
			"inProgress": 1,
			"completed":  1,
		}, summary.TaskDistribution)
		assert.Equal(t, map[string]int{
			"low":    1,
			"medium": 1,
			"high":   2,
		}, summary.TaskPriorityLevels)

		ids := make([]string, 0, len(summary.RecentTasks))
		for _, d := range summary.RecentTasks {
			ids = append(ids, d.ID)
		}
		assert.Equal(t, []string{"task-4", "task-3", "task-2", "task-1"}, ids)
	})
}

func TestServiceUserSummary(t *testing.T) {
	t.Run("Statistics are scoped to the caller's assignments", func(t *testing.T) {
		svc := newSeededService(t)

		summary, err := svc.UserSummary(context.Background(), member)
		require.NoError(t, err)

		assert.Equal(t, 2, summary.TotalTasks)
		assert.Equal(t, 1, summary.PendingTasks)
		assert.Equal(t, 1, summary.InProgressTasks)
		assert.Equal(t, 0, summary.CompletedTasks)
		assert.Equal(t, 1, summary.OverdueTasks)
		assert.Equal(t, 2, summary.TaskDistribution["all"])

		ids := make([]string, 0, len(summary.RecentTasks))
		for _, d := range summary.RecentTasks {
			ids = append(ids, d.ID)
		}
		assert.Equal(t, []string{"task-2", "task-1"}, ids)
	})

	t.Run("Zero assignments still carries every counter key", func(t *testing.T) {
		svc := newSeededService(t)

		summary, err := svc.UserSummary(context.Background(), model.Identity{UserID: "user-9", Role: model.RoleMember})
		require.NoError(t, err)

		assert.Equal(t, 0, summary.TotalTasks)
		assert.Equal(t, map[string]int{
			"all":        0,
			"pending":    0,
			"inProgress": 0,
			"completed":  0,
		}, summary.TaskDistribution)
		assert.Equal(t, map[string]int{
			"low":    0,
			"medium": 0,
			"high":   0,
		}, summary.TaskPriorityLevels)
		assert.Empty(t, summary.RecentTasks)
	})
}
