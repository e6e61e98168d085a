// Package taskstatus serves direct status updates. Setting completed drags
// the checklist and progress to a consistent done state, other statuses
// only change the status field.
package taskstatus

import (
	"context"
	"fmt"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/notify"
	"github.com/taskhub/taskhub/internal/progress"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the task status service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskStatus"})
	return nil
}

// Service handles task status update business logic.
type Service struct {
	repo     storage.TaskRepository
	notifier notify.Notifier
	logger   log.Logger
}

// NewService creates a new task status service.
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

// SetStatus updates a task's status. Admins can on any task, members only
// on tasks assigned to them.
func (s *Service) SetStatus(ctx context.Context, identity model.Identity, id string, status model.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, model.ErrNotValid)
	}

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	if err := authz.CanProgressTask(identity, *task); err != nil {
		return nil, err
	}

	wasCompleted := task.Status == model.TaskStatusCompleted
	progress.ApplyStatus(task, status)

	if err := s.repo.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("could not save task: %w", err)
	}

	if !wasCompleted && task.Status == model.TaskStatusCompleted {
		if err := s.notifier.TaskCompleted(ctx, *task); err != nil {
			s.logger.Warningf("Could not publish task completed event: %s", err)
		}
	}

	s.logger.Infof("Task %s status set to %s", task.ID, task.Status)

	return task, nil
}
