package authz_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

func TestCanManageTasks(t *testing.T) {
	tests := map[string]struct {
		identity model.Identity
		expErr   bool
	}{
		"Admin can manage tasks": {
			identity: model.Identity{UserID: "user-1", Role: model.RoleAdmin},
		},
		"Member cannot manage tasks": {
			identity: model.Identity{UserID: "user-1", Role: model.RoleMember},
			expErr:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := authz.CanManageTasks(tt.identity)
			if tt.expErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrForbidden))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCanProgressTask(t *testing.T) {
	task := model.Task{ID: "task-1", AssignedTo: []string{"user-1", "user-2"}}

	tests := map[string]struct {
		identity model.Identity
		expErr   bool
	}{
		"Admin can progress any task even when not assigned": {
			identity: model.Identity{UserID: "user-9", Role: model.RoleAdmin},
		},
		"Assigned member can progress the task": {
			identity: model.Identity{UserID: "user-2", Role: model.RoleMember},
		},
		"Unassigned member cannot progress the task": {
			identity: model.Identity{UserID: "user-9", Role: model.RoleMember},
			expErr:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := authz.CanProgressTask(tt.identity, task)
			if tt.expErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrForbidden))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestVisibleFilter(t *testing.T) {
	status := model.TaskStatusPending

	tests := map[string]struct {
		identity model.Identity
		filter   storage.TaskFilter
		exp      storage.TaskFilter
	}{
		"Admin filter is unrestricted": {
			identity: model.Identity{UserID: "user-1", Role: model.RoleAdmin},
			filter:   storage.TaskFilter{Status: &status},
			exp:      storage.TaskFilter{Status: &status},
		},
		"Member filter is restricted to assigned tasks": {
			identity: model.Identity{UserID: "user-1", Role: model.RoleMember},
			filter:   storage.TaskFilter{Status: &status},
			exp:      storage.TaskFilter{Status: &status, AssignedTo: "user-1"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := authz.VisibleFilter(tt.identity, tt.filter)
			assert.Equal(t, tt.exp, got)
		})
	}
}
