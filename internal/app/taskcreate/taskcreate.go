package taskcreate

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/notify"
	"github.com/taskhub/taskhub/internal/progress"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the task create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskCreate"})
	return nil
}

// Service handles task creation business logic.
type Service struct {
	repo     storage.TaskRepository
	notifier notify.Notifier
	logger   log.Logger
}

// NewService creates a new task create service.
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

// CreateOptions are the options for creating a task.
type CreateOptions struct {
	Title         string
	Description   string
	Priority      model.TaskPriority
	DueDate       *time.Time
	AssignedTo    []string
	Attachments   []string
	TodoChecklist []model.ChecklistItem
}

// Create creates a new task. Only admins can create tasks. The task's
// progress and status are derived from the initial checklist.
func (s *Service) Create(ctx context.Context, identity model.Identity, opts CreateOptions) (*model.Task, error) {
	if err := authz.CanManageTasks(identity); err != nil {
		return nil, err
	}

	priority := opts.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}

	task := model.Task{
		ID:          ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Title:       opts.Title,
		Description: opts.Description,
		Priority:    priority,
		DueDate:     opts.DueDate,
		AssignedTo:  opts.AssignedTo,
		CreatedBy:   identity.UserID,
		Attachments: opts.Attachments,
		CreatedAt:   time.Now().UTC(),
	}
	progress.ApplyChecklist(&task, opts.TodoChecklist)

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not save task: %w", err)
	}

	if err := s.notifier.TaskCreated(ctx, task); err != nil {
		s.logger.Warningf("Could not publish task created event: %s", err)
	}

	s.logger.Infof("Created task: %s (%s)", task.Title, task.ID)

	return &task, nil
}
