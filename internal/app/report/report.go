// Package report exports tasks and user workloads as Excel workbooks.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/taskhub/taskhub/internal/authz"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the report service.
type ServiceConfig struct {
	TaskRepository storage.TaskRepository
	UserRepository storage.UserRepository
	Logger         log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.TaskRepository == nil {
		return fmt.Errorf("task repository is required")
	}
	if c.UserRepository == nil {
		return fmt.Errorf("user repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Report"})
	return nil
}

// Service handles report export business logic.
type Service struct {
	tasks  storage.TaskRepository
	users  storage.UserRepository
	logger log.Logger
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tasks:  cfg.TaskRepository,
		users:  cfg.UserRepository,
		logger: cfg.Logger,
	}, nil
}

// ExportTasks writes an xlsx workbook with every task to w. Only admins
// can.
func (s *Service) ExportTasks(ctx context.Context, identity model.Identity, w io.Writer) error {
	if err := authz.CanManageTasks(identity); err != nil {
		return err
	}

	tasks, err := s.tasks.ListTasks(ctx, storage.TaskFilter{})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	// Assignees are exported by name, not ID.
	userNames := map[string]string{}
	for _, t := range tasks {
		for _, id := range t.AssignedTo {
			if _, ok := userNames[id]; ok {
				continue
			}
			u, err := s.users.GetUser(ctx, id)
			if err != nil {
				userNames[id] = id
				continue
			}
			userNames[id] = fmt.Sprintf("%s (%s)", u.Name, u.Email)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Tasks Report"
	f.SetSheetName(f.GetSheetName(0), sheet)

	header := []any{"Task ID", "Title", "Description", "Priority", "Status", "Due Date", "Assigned To"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("could not write header row: %w", err)
	}

	for i, t := range tasks {
		assignedTo := "Unassigned"
		if len(t.AssignedTo) > 0 {
			assigned := make([]string, 0, len(t.AssignedTo))
			for _, id := range t.AssignedTo {
				assigned = append(assigned, userNames[id])
			}
			assignedTo = strings.Join(assigned, ", ")
		}

		dueDate := ""
		if t.DueDate != nil {
			dueDate = t.DueDate.UTC().Format("2006-01-02")
		}

		row := []any{t.ID, t.Title, t.Description, string(t.Priority), string(t.Status), dueDate, assignedTo}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("could not write task row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}

	s.logger.Infof("Exported %d tasks", len(tasks))

	return nil
}

// ExportUsers writes an xlsx workbook with every member's task workload to
// w. Only admins can.
func (s *Service) ExportUsers(ctx context.Context, identity model.Identity, w io.Writer) error {
	if err := authz.CanManageTasks(identity); err != nil {
		return err
	}

	users, err := s.users.ListUsers(ctx, model.RoleMember)
	if err != nil {
		return fmt.Errorf("could not list users: %w", err)
	}

	tasks, err := s.tasks.ListTasks(ctx, storage.TaskFilter{})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	type workload struct {
		total, pending, inProgress, completed int
	}
	workloads := map[string]*workload{}
	for _, u := range users {
		workloads[u.ID] = &workload{}
	}
	for _, t := range tasks {
		for _, id := range t.AssignedTo {
			wl, ok := workloads[id]
			if !ok {
				continue
			}
			wl.total++
			switch t.Status {
			case model.TaskStatusPending:
				wl.pending++
			case model.TaskStatusInProgress:
				wl.inProgress++
			case model.TaskStatusCompleted:
				wl.completed++
			}
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "User Task Report"
	f.SetSheetName(f.GetSheetName(0), sheet)

	header := []any{"User Name", "Email", "Total Assigned Tasks", "Pending Tasks", "In Progress Tasks", "Completed Tasks"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("could not write header row: %w", err)
	}

	for i, u := range users {
		wl := workloads[u.ID]
		row := []any{u.Name, u.Email, wl.total, wl.pending, wl.inProgress, wl.completed}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("could not write user row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}

	s.logger.Infof("Exported workload of %d users", len(users))

	return nil
}
