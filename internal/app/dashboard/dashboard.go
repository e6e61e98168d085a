// Package dashboard aggregates task statistics: global for admins and
// scoped to the caller's assignments for everyone.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// recentTasksLimit caps the recent task digests in a summary.
const recentTasksLimit = 10

// ServiceConfig is the configuration for the dashboard service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Dashboard"})
	return nil
}

// Service handles dashboard aggregation business logic.
type Service struct {
	repo   storage.TaskRepository
	logger log.Logger
}

// NewService creates a new dashboard service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Summary returns aggregated statistics over every task. Only admins can.
func (s *Service) Summary(ctx context.Context, identity model.Identity) (*model.DashboardSummary, error) {
	if err := authz.CanManageTasks(identity); err != nil {
		return nil, err
	}

	return s.summarize(ctx, storage.TaskFilter{})
}

// UserSummary returns aggregated statistics over the tasks assigned to the
// caller, whatever their role.
func (s *Service) UserSummary(ctx context.Context, identity model.Identity) (*model.DashboardSummary, error) {
	return s.summarize(ctx, storage.TaskFilter{AssignedTo: identity.UserID})
}

func (s *Service) summarize(ctx context.Context, base storage.TaskFilter) (*model.DashboardSummary, error) {
	total, err := s.repo.CountTasks(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("could not count tasks: %w", err)
	}

	summary := model.DashboardSummary{
		TotalTasks:         total,
		TaskDistribution:   map[string]int{model.DashboardDistributionAllKey: total},
		TaskPriorityLevels: map[string]int{},
	}

	for _, status := range model.TaskStatuses {
		status := status
		f := base
		f.Status = &status
		count, err := s.repo.CountTasks(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("could not count %s tasks: %w", status, err)
		}

		summary.TaskDistribution[string(status)] = count
		switch status {
		case model.TaskStatusPending:
			summary.PendingTasks = count
		case model.TaskStatusInProgress:
			summary.InProgressTasks = count
		case model.TaskStatusCompleted:
			summary.CompletedTasks = count
		}
	}

	for _, priority := range model.TaskPriorities {
		priority := priority
		f := base
		f.Priority = &priority
		count, err := s.repo.CountTasks(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("could not count %s priority tasks: %w", priority, err)
		}
		summary.TaskPriorityLevels[string(priority)] = count
	}

	// A task is overdue when its due date passed and it isn't completed.
	now := time.Now().UTC()
	completed := model.TaskStatusCompleted
	overdueFilter := base
	overdueFilter.DueBefore = &now
	overdueFilter.NotStatus = &completed
	overdue, err := s.repo.CountTasks(ctx, overdueFilter)
	if err != nil {
		return nil, fmt.Errorf("could not count overdue tasks: %w", err)
	}
	summary.OverdueTasks = overdue

	recentFilter := base
	recentFilter.Limit = recentTasksLimit
	recent, err := s.repo.ListTasks(ctx, recentFilter)
	if err != nil {
		return nil, fmt.Errorf("could not list recent tasks: %w", err)
	}

	summary.RecentTasks = make([]model.TaskDigest, 0, len(recent))
	for i := range recent {
		summary.RecentTasks = append(summary.RecentTasks, recent[i].Digest())
	}

	return &summary, nil
}
