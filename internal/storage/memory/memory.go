package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.TaskRepository and
// storage.UserRepository, used for tests and ephemeral runs.
type Repository struct {
	tasks  map[string]model.Task
	users  map[string]model.User
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		tasks:  make(map[string]model.Task),
		users:  make(map[string]model.User),
		logger: cfg.Logger,
	}, nil
}

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	r.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	// Return a copy
	taskCopy := task
	return &taskCopy, nil
}

// ListTasks returns the tasks matching the filter, newest first.
func (r *Repository) ListTasks(ctx context.Context, filter storage.TaskFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []model.Task
	for _, task := range r.tasks {
		if matchesFilter(task, filter) {
			tasks = append(tasks, task)
		}
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })

	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}

	return tasks, nil
}

// UpdateTask updates an existing task.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[t.ID]
	if !ok {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
	}

	t.CreatedAt = current.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	r.tasks[t.ID] = t
	r.logger.Debugf("Updated task in repository: %s", t.ID)

	return nil
}

// DeleteTask deletes a task.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	delete(r.tasks, id)
	r.logger.Debugf("Deleted task from repository: %s", id)

	return nil
}

// CountTasks returns the number of tasks matching the filter.
func (r *Repository) CountTasks(ctx context.Context, filter storage.TaskFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, task := range r.tasks {
		if matchesFilter(task, filter) {
			count++
		}
	}

	return count, nil
}

func matchesFilter(t model.Task, filter storage.TaskFilter) bool {
	if filter.Status != nil && t.Status != *filter.Status {
		return false
	}
	if filter.NotStatus != nil && t.Status == *filter.NotStatus {
		return false
	}
	if filter.Priority != nil && t.Priority != *filter.Priority {
		return false
	}
	if filter.AssignedTo != "" && !t.IsAssignee(filter.AssignedTo) {
		return false
	}
	if filter.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*filter.DueBefore)) {
		return false
	}
	return true
}

// CreateUser creates a new user in the repository.
func (r *Repository) CreateUser(ctx context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("user with id %s: %w", u.ID, model.ErrAlreadyExists)
	}

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user with email %s: %w", u.Email, model.ErrAlreadyExists)
		}
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.users[u.ID] = u
	r.logger.Debugf("Created user in repository: %s", u.ID)

	return nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}

	userCopy := user
	return &userCopy, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			userCopy := user
			return &userCopy, nil
		}
	}

	return nil, fmt.Errorf("user with email %s: %w", email, model.ErrNotFound)
}

// ListUsers returns all users with the given role, or every user when the
// role is empty, ordered by name.
func (r *Repository) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		if role != "" && user.Role != role {
			continue
		}
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })

	return users, nil
}

// UpdateUser updates an existing user.
func (r *Repository) UpdateUser(ctx context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[u.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", u.ID, model.ErrNotFound)
	}

	for _, existing := range r.users {
		if existing.ID != u.ID && existing.Email == u.Email {
			return fmt.Errorf("user with email %s: %w", u.Email, model.ErrAlreadyExists)
		}
	}

	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = u
	r.logger.Debugf("Updated user in repository: %s", u.ID)

	return nil
}
