// Package taskremove serves admin task deletion.
package taskremove

import (
	"context"
	"fmt"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the task remove service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskRemove"})
	return nil
}

// Service handles task deletion business logic.
type Service struct {
	repo   storage.TaskRepository
	logger log.Logger
}

// NewService creates a new task remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Delete removes a task. Only admins can.
func (s *Service) Delete(ctx context.Context, identity model.Identity, id string) error {
	if err := authz.CanManageTasks(identity); err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}

	s.logger.Infof("Deleted task: %s", id)

	return nil
}
