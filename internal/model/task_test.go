package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/model"
)

func TestTaskValidate(t *testing.T) {
	tests := map[string]struct {
		task   model.Task
		expErr bool
	}{
		"Valid task": {
			task: model.Task{
				Title:    "Ship the release",
				Priority: model.TaskPriorityHigh,
				Status:   model.TaskStatusPending,
			},
		},
		"Missing title is invalid": {
			task: model.Task{
				Priority: model.TaskPriorityLow,
				Status:   model.TaskStatusPending,
			},
			expErr: true,
		},
		"Unknown priority is invalid": {
			task: model.Task{
				Title:    "t",
				Priority: "urgent",
				Status:   model.TaskStatusPending,
			},
			expErr: true,
		},
		"Unknown status is invalid": {
			task: model.Task{
				Title:    "t",
				Priority: model.TaskPriorityLow,
				Status:   "done",
			},
			expErr: true,
		},
		"Progress out of range is invalid": {
			task: model.Task{
				Title:    "t",
				Priority: model.TaskPriorityLow,
				Status:   model.TaskStatusPending,
				Progress: 150,
			},
			expErr: true,
		},
		"Empty assignee ID is invalid": {
			task: model.Task{
				Title:      "t",
				Priority:   model.TaskPriorityLow,
				Status:     model.TaskStatusPending,
				AssignedTo: []string{"user-1", ""},
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.expErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTaskHelpers(t *testing.T) {
	task := model.Task{
		AssignedTo: []string{"user-1", "user-2"},
		TodoChecklist: []model.ChecklistItem{
			{Text: "a", Completed: true},
			{Text: "b", Completed: false},
			{Text: "c", Completed: true},
		},
	}

	assert.True(t, task.IsAssignee("user-1"))
	assert.False(t, task.IsAssignee("user-3"))
	assert.Equal(t, 2, task.CompletedTodoCount())
}
