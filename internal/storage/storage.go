package storage

import (
	"context"
	"time"

	"github.com/taskhub/taskhub/internal/model"
)

// TaskFilter restricts task queries. Zero values mean no restriction.
type TaskFilter struct {
	Status     *model.TaskStatus
	NotStatus  *model.TaskStatus
	Priority   *model.TaskPriority
	AssignedTo string // Restrict to tasks whose assignee set contains this user ID.
	DueBefore  *time.Time
	Limit      int // Maximum results for listing, 0 means no limit.
}

// TaskRepository is the interface for task persistence. It does not enforce
// authorization or progress invariants, those belong to the callers.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id string) error
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)
}

// UserRepository is the interface for user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
	UpdateUser(ctx context.Context, u model.User) error
}
