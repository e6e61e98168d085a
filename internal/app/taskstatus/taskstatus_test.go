package taskstatus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/app/taskstatus"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/notify/notifymock"
	"github.com/taskhub/taskhub/internal/storage/storagemock"
)

var (
	admin  = model.Identity{UserID: "admin-1", Role: model.RoleAdmin}
	member = model.Identity{UserID: "user-1", Role: model.RoleMember}
)

func assignedTask() *model.Task {
	return &model.Task{
		ID:         "task-1",
		Title:      "Prepare onboarding",
		Status:     model.TaskStatusInProgress,
		Progress:   50,
		AssignedTo: []string{"user-1"},
		TodoChecklist: []model.ChecklistItem{
			{Text: "a", Completed: true},
			{Text: "b", Completed: false},
		},
	}
}

func TestServiceSetStatus(t *testing.T) {
	tests := map[string]struct {
		identity    model.Identity
		status      model.TaskStatus
		setupMocks  func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier)
		expErrIs    error
		expErrMsg   string
		validateRes func(t *testing.T, task *model.Task)
	}{
		"Unknown status is invalid": {
			identity:   member,
			status:     model.TaskStatus("archived"),
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {},
			expErrIs:   model.ErrNotValid,
		},
		"Missing task returns not found": {
			identity: member,
			status:   model.TaskStatusCompleted,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(nil, model.ErrNotFound)
			},
			expErrIs: model.ErrNotFound,
		},
		"Member not assigned is forbidden": {
			identity: model.Identity{UserID: "user-9", Role: model.RoleMember},
			status:   model.TaskStatusCompleted,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(assignedTask(), nil)
			},
			expErrIs: model.ErrForbidden,
		},
		"Assigned member can set a non completed status without touching progress": {
			identity: member,
			status:   model.TaskStatusPending,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(assignedTask(), nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.TaskStatusPending, task.Status)
				assert.Equal(t, 50, task.Progress)
				assert.False(t, task.TodoChecklist[1].Completed)
			},
		},
		"Completing forces the checklist and publishes the event": {
			identity: member,
			status:   model.TaskStatusCompleted,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(assignedTask(), nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
				notifier.On("TaskCompleted", mock.Anything, mock.Anything).Return(nil)
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.TaskStatusCompleted, task.Status)
				assert.Equal(t, 100, task.Progress)
				for _, item := range task.TodoChecklist {
					assert.True(t, item.Completed)
				}
			},
		},
		"Recompleting an already completed task does not republish": {
			identity: admin,
			status:   model.TaskStatusCompleted,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				task := assignedTask()
				task.Status = model.TaskStatusCompleted
				task.Progress = 100
				repo.On("GetTask", mock.Anything, "task-1").Return(task, nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.TaskStatusCompleted, task.Status)
			},
		},
		"Repository save error returns error": {
			identity: admin,
			status:   model.TaskStatusPending,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(assignedTask(), nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(errors.New("database error"))
			},
			expErrMsg: "could not save task",
		},
		"Notifier failure does not fail the update": {
			identity: member,
			status:   model.TaskStatusCompleted,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(assignedTask(), nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
				notifier.On("TaskCompleted", mock.Anything, mock.Anything).Return(errors.New("nats down"))
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.TaskStatusCompleted, task.Status)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mockRepo := storagemock.NewMockTaskRepository(t)
			mockNotifier := notifymock.NewMockNotifier(t)
			tt.setupMocks(mockRepo, mockNotifier)

			svc, err := taskstatus.NewService(taskstatus.ServiceConfig{
				Repository: mockRepo,
				Notifier:   mockNotifier,
				Logger:     log.Noop,
			})
			require.NoError(t, err)

			task, err := svc.SetStatus(context.Background(), tt.identity, "task-1", tt.status)

			if tt.expErrIs != nil || tt.expErrMsg != "" {
				require.Error(t, err)
				if tt.expErrIs != nil {
					assert.True(t, errors.Is(err, tt.expErrIs))
				}
				if tt.expErrMsg != "" {
					assert.Contains(t, err.Error(), tt.expErrMsg)
				}
				assert.Nil(t, task)
			} else {
				require.NoError(t, err)
				tt.validateRes(t, task)
			}
		})
	}
}
