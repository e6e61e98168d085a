// Package tasklist serves task retrieval: scoped listings with status
// counters and single task lookups.
package tasklist

import (
	"context"
	"fmt"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the task list service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskList"})
	return nil
}

// Service handles task retrieval business logic.
type Service struct {
	repo   storage.TaskRepository
	logger log.Logger
}

// NewService creates a new task list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// ListOptions are the options for listing tasks.
type ListOptions struct {
	Status *model.TaskStatus
}

// TaskEntry is a task plus its completed checklist item count.
type TaskEntry struct {
	Task               model.Task
	CompletedTodoCount int
}

// StatusSummary counts the caller's visible tasks per status, independent
// of the status filter used for the listing itself.
type StatusSummary struct {
	All             int
	PendingTasks    int
	InProgressTasks int
	CompletedTasks  int
}

// ListResult is the result of listing tasks.
type ListResult struct {
	Tasks   []TaskEntry
	Summary StatusSummary
}

// List returns the tasks visible to the caller, optionally filtered by
// status, along with status counters over the unfiltered visible set.
func (s *Service) List(ctx context.Context, identity model.Identity, opts ListOptions) (*ListResult, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", *opts.Status, model.ErrNotValid)
	}

	base := authz.VisibleFilter(identity, storage.TaskFilter{})

	listFilter := base
	listFilter.Status = opts.Status
	tasks, err := s.repo.ListTasks(ctx, listFilter)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	summary, err := s.statusSummary(ctx, base)
	if err != nil {
		return nil, err
	}

	entries := make([]TaskEntry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, TaskEntry{Task: t, CompletedTodoCount: t.CompletedTodoCount()})
	}

	return &ListResult{Tasks: entries, Summary: *summary}, nil
}

func (s *Service) statusSummary(ctx context.Context, base storage.TaskFilter) (*StatusSummary, error) {
	all, err := s.repo.CountTasks(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("could not count tasks: %w", err)
	}

	summary := StatusSummary{All: all}
	for _, status := range model.TaskStatuses {
		status := status
		f := base
		f.Status = &status
		count, err := s.repo.CountTasks(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("could not count %s tasks: %w", status, err)
		}

		switch status {
		case model.TaskStatusPending:
			summary.PendingTasks = count
		case model.TaskStatusInProgress:
			summary.InProgressTasks = count
		case model.TaskStatusCompleted:
			summary.CompletedTasks = count
		}
	}

	return &summary, nil
}

// Get returns a single task by ID. Any authenticated caller that knows the
// ID can fetch it, listings are where visibility scoping happens.
func (s *Service) Get(ctx context.Context, identity model.Identity, id string) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	return task, nil
}
