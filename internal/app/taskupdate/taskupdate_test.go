package taskupdate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/app/taskupdate"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/notify/notifymock"
	"github.com/taskhub/taskhub/internal/storage/storagemock"
)

var (
	admin  = model.Identity{UserID: "admin-1", Role: model.RoleAdmin}
	member = model.Identity{UserID: "user-1", Role: model.RoleMember}
)

func storedTask() *model.Task {
	return &model.Task{
		ID:         "task-1",
		Title:      "Prepare onboarding",
		Priority:   model.TaskPriorityMedium,
		Status:     model.TaskStatusInProgress,
		Progress:   50,
		AssignedTo: []string{"user-1"},
		TodoChecklist: []model.ChecklistItem{
			{Text: "a", Completed: true},
			{Text: "b", Completed: false},
		},
	}
}

func strPtr(s string) *string { return &s }

func prioPtr(p model.TaskPriority) *model.TaskPriority { return &p }

func TestServiceUpdate(t *testing.T) {
	tests := map[string]struct {
		identity    model.Identity
		opts        taskupdate.UpdateOptions
		setupMocks  func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier)
		expErrIs    error
		expErrMsg   string
		validateRes func(t *testing.T, task *model.Task)
	}{
		"Member cannot edit tasks": {
			identity:   member,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {},
			expErrIs:   model.ErrForbidden,
		},
		"Missing task returns not found": {
			identity: admin,
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(nil, model.ErrNotFound)
			},
			expErrIs: model.ErrNotFound,
		},
		"Content edits leave progress untouched": {
			identity: admin,
			opts: taskupdate.UpdateOptions{
				Title:       strPtr("Prepare onboarding v2"),
				Description: strPtr("updated"),
				Priority:    prioPtr(model.TaskPriorityHigh),
				AssignedTo:  []string{"user-2"},
			},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(storedTask(), nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.Equal(t, "Prepare onboarding v2", task.Title)
				assert.Equal(t, model.TaskPriorityHigh, task.Priority)
				assert.Equal(t, []string{"user-2"}, task.AssignedTo)
				assert.Equal(t, 50, task.Progress)
				assert.Equal(t, model.TaskStatusInProgress, task.Status)
			},
		},
		"Supplying a checklist rederives progress and publishes on completion": {
			identity: admin,
			opts: taskupdate.UpdateOptions{
				TodoChecklist: []model.ChecklistItem{
					{Text: "a", Completed: true},
				},
			},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(storedTask(), nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
				notifier.On("TaskCompleted", mock.Anything, mock.Anything).Return(nil)
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.Equal(t, 100, task.Progress)
				assert.Equal(t, model.TaskStatusCompleted, task.Status)
			},
		},
		"Unknown priority is invalid": {
			identity: admin,
			opts:     taskupdate.UpdateOptions{Priority: prioPtr(model.TaskPriority("urgent"))},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(storedTask(), nil)
			},
			expErrIs: model.ErrNotValid,
		},
		"Repository save error returns error": {
			identity: admin,
			opts:     taskupdate.UpdateOptions{Title: strPtr("x")},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("GetTask", mock.Anything, "task-1").Return(storedTask(), nil)
				repo.On("UpdateTask", mock.Anything, mock.Anything).Return(errors.New("database error"))
			},
			expErrMsg: "could not save task",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mockRepo := storagemock.NewMockTaskRepository(t)
			mockNotifier := notifymock.NewMockNotifier(t)
			tt.setupMocks(mockRepo, mockNotifier)

			svc, err := taskupdate.NewService(taskupdate.ServiceConfig{
				Repository: mockRepo,
				Notifier:   mockNotifier,
				Logger:     log.Noop,
			})
			require.NoError(t, err)

			task, err := svc.Update(context.Background(), tt.identity, "task-1", tt.opts)

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
