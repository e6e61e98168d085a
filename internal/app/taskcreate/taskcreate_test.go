package taskcreate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/app/taskcreate"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/notify/notifymock"
	"github.com/taskhub/taskhub/internal/storage/storagemock"
)

var (
	admin  = model.Identity{UserID: "admin-1", Role: model.RoleAdmin}
	member = model.Identity{UserID: "user-1", Role: model.RoleMember}
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    taskcreate.ServiceConfig
		expErr bool
	}{
		"Valid config": {
			cfg: taskcreate.ServiceConfig{Repository: &storagemock.MockTaskRepository{}, Logger: log.Noop},
		},
		"Missing repository returns error": {
			cfg:    taskcreate.ServiceConfig{},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := taskcreate.NewService(tt.cfg)
			if tt.expErr {
				require.Error(t, err)
				assert.Nil(t, svc)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestServiceCreate(t *testing.T) {
	tests := map[string]struct {
		identity    model.Identity
		opts        taskcreate.CreateOptions
		setupMocks  func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier)
		expErrIs    error
		expErrMsg   string
		validateRes func(t *testing.T, task *model.Task)
	}{
		"Member cannot create tasks": {
			identity:   member,
			opts:       taskcreate.CreateOptions{Title: "t"},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {},
			expErrIs:   model.ErrForbidden,
		},
		"Missing title is invalid": {
			identity:   admin,
			opts:       taskcreate.CreateOptions{},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {},
			expErrIs:   model.ErrNotValid,
		},
		"Empty assignee ID is invalid": {
			identity: admin,
			opts: taskcreate.CreateOptions{
				Title:      "t",
				AssignedTo: []string{""},
			},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {},
			expErrIs:   model.ErrNotValid,
		},
		"Successful creation derives progress and status from checklist": {
			identity: admin,
			opts: taskcreate.CreateOptions{
				Title:      "Prepare onboarding",
				AssignedTo: []string{"user-1"},
				TodoChecklist: []model.ChecklistItem{
					{Text: "a", Completed: false},
					{Text: "b", Completed: false},
					{Text: "c", Completed: true},
				},
			},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("CreateTask", mock.Anything, mock.Anything).Return(nil)
				notifier.On("TaskCreated", mock.Anything, mock.Anything).Return(nil)
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.NotEmpty(t, task.ID)
				assert.Equal(t, "admin-1", task.CreatedBy)
				assert.Equal(t, model.TaskPriorityMedium, task.Priority)
				assert.Equal(t, 33, task.Progress)
				assert.Equal(t, model.TaskStatusInProgress, task.Status)
			},
		},
		"Empty checklist creates a pending task": {
			identity: admin,
			opts:     taskcreate.CreateOptions{Title: "Prepare onboarding"},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("CreateTask", mock.Anything, mock.Anything).Return(nil)
				notifier.On("TaskCreated", mock.Anything, mock.Anything).Return(nil)
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.Equal(t, 0, task.Progress)
				assert.Equal(t, model.TaskStatusPending, task.Status)
			},
		},
		"Repository save error returns error": {
			identity: admin,
			opts:     taskcreate.CreateOptions{Title: "t"},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("CreateTask", mock.Anything, mock.Anything).Return(errors.New("database error"))
			},
			expErrMsg: "could not save task",
		},
		"Notifier failure does not fail the creation": {
			identity: admin,
			opts:     taskcreate.CreateOptions{Title: "t"},
			setupMocks: func(repo *storagemock.MockTaskRepository, notifier *notifymock.MockNotifier) {
				repo.On("CreateTask", mock.Anything, mock.Anything).Return(nil)
				notifier.On("TaskCreated", mock.Anything, mock.Anything).Return(errors.New("nats down"))
			},
			validateRes: func(t *testing.T, task *model.Task) {
				assert.NotEmpty(t, task.ID)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mockRepo := storagemock.NewMockTaskRepository(t)
			mockNotifier := notifymock.NewMockNotifier(t)
			tt.setupMocks(mockRepo, mockNotifier)

			svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
				Repository: mockRepo,
				Notifier:   mockNotifier,
				Logger:     log.Noop,
			})
			require.NoError(t, err)

			task, err := svc.Create(context.Background(), tt.identity, tt.opts)

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
