// Package authz is the single gate deciding which tasks a caller may
// observe or alter. The role check always runs before the membership check,
// admins bypass every membership constraint.
package authz

import (
	"fmt"

	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// CanManageTasks checks whether the identity may create, edit content of,
// or delete tasks. Only admins can.
func CanManageTasks(id model.Identity) error {
	if id.IsAdmin() {
		return nil
	}
	return fmt.Errorf("user %s lacks the admin role: %w", id.UserID, model.ErrForbidden)
}

// CanProgressTask checks whether the identity may update a task's status or
// checklist. Admins always can, members only on tasks assigned to them.
func CanProgressTask(id model.Identity, t model.Task) error {
	if id.IsAdmin() {
		return nil
	}
	if t.IsAssignee(id.UserID) {
		return nil
	}
	return fmt.Errorf("user %s is not assigned to task %s: %w", id.UserID, t.ID, model.ErrForbidden)
}

// VisibleFilter scopes a task filter to the identity's visible set: admins
// see everything, members only tasks assigned to them.
func VisibleFilter(id model.Identity, filter storage.TaskFilter) storage.TaskFilter {
	if id.IsAdmin() {
		return filter
	}
	filter.AssignedTo = id.UserID
	return filter
}
