// Package userlist serves user retrieval: the admin team view with per
// member task counters, and single user lookups.
package userlist

import (
	"context"
	"fmt"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the user list service.
type ServiceConfig struct {
	UserRepository storage.UserRepository
	TaskRepository storage.TaskRepository
	Logger         log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.UserRepository == nil {
		return fmt.Errorf("user repository is required")
	}
	if c.TaskRepository == nil {
		return fmt.Errorf("task repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.UserList"})
	return nil
}

// Service handles user retrieval business logic.
type Service struct {
	users  storage.UserRepository
	tasks  storage.TaskRepository
	logger log.Logger
}

// NewService creates a new user list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		users:  cfg.UserRepository,
		tasks:  cfg.TaskRepository,
		logger: cfg.Logger,
	}, nil
}

// UserEntry is a user plus its per-status assigned task counts.
type UserEntry struct {
	User            model.User
	PendingTasks    int
	InProgressTasks int
	CompletedTasks  int
}

// List returns every member together with its assigned task counters. Only
// admins can.
func (s *Service) List(ctx context.Context, identity model.Identity) ([]UserEntry, error) {
	if err := authz.CanManageTasks(identity); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx, model.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	entries := make([]UserEntry, 0, len(users))
	for _, u := range users {
		entry := UserEntry{User: u}
		for _, status := range model.TaskStatuses {
			status := status
			count, err := s.tasks.CountTasks(ctx, storage.TaskFilter{AssignedTo: u.ID, Status: &status})
			if err != nil {
				return nil, fmt.Errorf("could not count tasks of user %s: %w", u.ID, err)
			}

			switch status {
			case model.TaskStatusPending:
				entry.PendingTasks = count
			case model.TaskStatusInProgress:
				entry.InProgressTasks = count
			case model.TaskStatusCompleted:
				entry.CompletedTasks = count
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Get returns a single user by ID.
func (s *Service) Get(ctx context.Context, identity model.Identity, id string) (*model.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}

	return user, nil
}
