package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
	"github.com/taskhub/taskhub/internal/storage/memory"
)

func newRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	return repo
}

func TestTaskCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	task := model.Task{
		ID:         "task-1",
		Title:      "Write docs",
		Priority:   model.TaskPriorityLow,
		Status:     model.TaskStatusPending,
		AssignedTo: []string{"user-1"},
		CreatedBy:  "admin-1",
	}
	require.NoError(t, repo.CreateTask(ctx, task))

	err := repo.CreateTask(ctx, task)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	got, err := repo.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, "Write docs", got.Title)
	assert.False(t, got.CreatedAt.IsZero())

	got.Status = model.TaskStatusInProgress
	require.NoError(t, repo.UpdateTask(ctx, *got))
	updated, err := repo.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, updated.Status)

	require.NoError(t, repo.DeleteTask(ctx, "task-1"))
	_, err = repo.GetTask(ctx, "task-1")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestTaskFiltering(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	past := time.Now().UTC().Add(-time.Hour)
	completed := model.TaskStatusCompleted

	tasks := []model.Task{
		{ID: "t1", Title: "a", Priority: model.TaskPriorityLow, Status: model.TaskStatusPending, AssignedTo: []string{"user-1"}, DueDate: &past, CreatedAt: time.Now().UTC().Add(-2 * time.Minute)},
		{ID: "t2", Title: "b", Priority: model.TaskPriorityHigh, Status: model.TaskStatusCompleted, AssignedTo: []string{"user-2"}, CreatedAt: time.Now().UTC().Add(-time.Minute)},
		{ID: "t3", Title: "c", Priority: model.TaskPriorityHigh, Status: model.TaskStatusInProgress, AssignedTo: []string{"user-1", "user-2"}, CreatedAt: time.Now().UTC()},
	}
	for _, task := range tasks {
		require.NoError(t, repo.CreateTask(ctx, task))
	}

	listed, err := repo.ListTasks(ctx, storage.TaskFilter{AssignedTo: "user-1"})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "t3", listed[0].ID)
	assert.Equal(t, "t1", listed[1].ID)

	count, err := repo.CountTasks(ctx, storage.TaskFilter{NotStatus: &completed})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	now := time.Now().UTC()
	overdue, err := repo.CountTasks(ctx, storage.TaskFilter{DueBefore: &now, NotStatus: &completed})
	require.NoError(t, err)
	assert.Equal(t, 1, overdue)

	limited, err := repo.ListTasks(ctx, storage.TaskFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "t3", limited[0].ID)
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	user := model.User{ID: "user-1", Name: "Jane", Email: "jane@example.com", Role: model.RoleMember}
	require.NoError(t, repo.CreateUser(ctx, user))

	dupEmail := model.User{ID: "user-2", Name: "Other", Email: "jane@example.com", Role: model.RoleMember}
	err := repo.CreateUser(ctx, dupEmail)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	byEmail, err := repo.GetUserByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byEmail.ID)

	admin := model.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin}
	require.NoError(t, repo.CreateUser(ctx, admin))

	members, err := repo.ListUsers(ctx, model.RoleMember)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "user-1", members[0].ID)

	user.Name = "Jane S"
	require.NoError(t, repo.UpdateUser(ctx, user))
	got, err := repo.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane S", got.Name)
}
