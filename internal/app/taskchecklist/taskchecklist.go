// Package taskchecklist serves checklist replacement, the main progress
// write path. The new checklist always rederives progress and status, so a
// task can move forward or backward through it.
package taskchecklist

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

// ServiceConfig is the configuration for the task checklist service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskChecklist"})
	return nil
}

// Service handles checklist replacement business logic.
type Service struct {
	repo     storage.TaskRepository
	notifier notify.Notifier
	logger   log.Logger
}

// NewService creates a new task checklist service.
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

// ReplaceChecklist replaces a task's checklist and rederives its progress
// and status. Admins can on any task, members only on tasks assigned to
// them. Checklist, progress and status are persisted in a single write.
func (s *Service) ReplaceChecklist(ctx context.Context, identity model.Identity, id string, items []model.ChecklistItem) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	if err := authz.CanProgressTask(identity, *task); err != nil {
		return nil, err
	}

	wasCompleted := task.Status == model.TaskStatusCompleted
	progress.ApplyChecklist(task, items)

	if err := s.repo.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("could not save task: %w", err)
	}

	if !wasCompleted && task.Status == model.TaskStatusCompleted {
		if err := s.notifier.TaskCompleted(ctx, *task); err != nil {
			s.logger.Warningf("Could not publish task completed event: %s", err)
		}
	}

	s.logger.Infof("Task %s checklist replaced, progress %d%%", task.ID, task.Progress)

	return task, nil
}
