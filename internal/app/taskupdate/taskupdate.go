// Package taskupdate serves admin edits of task content, assignment and
// attachments. A checklist supplied here goes through the same progress
// reconciliation as the member checklist endpoint.
package taskupdate

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/notify"
	"github.com/taskhub/taskhub/internal/progress"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the task update service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Notifier   notify.Notifier
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Notifier == nil {
		c.Notifier = notify.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskUpdate"})
	return nil
}

// Service handles task editing business logic.
type Service struct {
	repo     storage.TaskRepository
	notifier notify.Notifier
	logger   log.Logger
}

// NewService creates a new task update service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:     cfg.Repository,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}, nil
}

// UpdateOptions are the options for updating a task. Nil fields are left
// untouched.
type UpdateOptions struct {
	Title         *string
	Description   *string
	Priority      *model.TaskPriority
	DueDate       *time.Time
	AssignedTo    []string
	Attachments   []string
	TodoChecklist []model.ChecklistItem
}

// Update edits a task's content. Only admins can. Supplying a checklist
// rederives progress and status from it.
func (s *Service) Update(ctx context.Context, identity model.Identity, id string, opts UpdateOptions) (*model.Task, error) {
	if err := authz.CanManageTasks(identity); err != nil {
		return nil, err
	}

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	wasCompleted := task.Status == model.TaskStatusCompleted

	if opts.Title != nil {
		task.Title = *opts.Title
	}
	if opts.Description != nil {
		task.Description = *opts.Description
	}
	if opts.Priority != nil {
		task.Priority = *opts.Priority
	}
	if opts.DueDate != nil {
		task.DueDate = opts.DueDate
	}
	if opts.AssignedTo != nil {
		task.AssignedTo = opts.AssignedTo
	}
	if opts.Attachments != nil {
		task.Attachments = opts.Attachments
	}
	if opts.TodoChecklist != nil {
		progress.ApplyChecklist(task, opts.TodoChecklist)
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	if err := s.repo.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("could not save task: %w", err)
	}

	if !wasCompleted && task.Status == model.TaskStatusCompleted {
		if err := s.notifier.TaskCompleted(ctx, *task); err != nil {
			s.logger.Warningf("Could not publish task completed event: %s", err)
		}
	}

	s.logger.Infof("Updated task: %s (%s)", task.Title, task.ID)

	return task, nil
}
