package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

const taskColumns = `
	id, title, description, priority, status, progress,
	due_date, created_by, assigned_to, todo_checklist, attachments,
	created_at, updated_at
`

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	assignedTo, checklist, attachments, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Title,
		t.Description,
		t.Priority,
		t.Status,
		t.Progress,
		unixPtr(t.DueDate),
		t.CreatedBy,
		assignedTo,
		checklist,
		attachments,
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.") {
			return fmt.Errorf("task already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task (%s): %w", err, model.ErrUnavailable)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	task, err := r.scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task (%s): %w", err, model.ErrUnavailable)
	}

	return &task, nil
}

// ListTasks returns the tasks matching the filter, newest first.
func (r *Repository) ListTasks(ctx context.Context, filter storage.TaskFilter) ([]model.Task, error) {
	where, args := taskWhere(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks (%s): %w", err, model.ErrUnavailable)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row (%s): %w", err, model.ErrUnavailable)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows (%s): %w", err, model.ErrUnavailable)
	}

	return tasks, nil
}

// UpdateTask updates an existing task. The whole row is written in a single
// statement so the checklist, progress and status always land together.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	t.UpdatedAt = time.Now().UTC()

	assignedTo, checklist, attachments, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET
			title = ?,
			description = ?,
			priority = ?,
			status = ?,
			progress = ?,
			due_date = ?,
			assigned_to = ?,
			todo_checklist = ?,
			attachments = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		t.Title,
		t.Description,
		t.Priority,
		t.Status,
		t.Progress,
		unixPtr(t.DueDate),
		assignedTo,
		checklist,
		attachments,
		t.UpdatedAt.Unix(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update task (%s): %w", err, model.ErrUnavailable)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected (%s): %w", err, model.ErrUnavailable)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated task in repository: %s", t.ID)
	return nil
}

// DeleteTask deletes a task.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete task (%s): %w", err, model.ErrUnavailable)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected (%s): %w", err, model.ErrUnavailable)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted task from repository: %s", id)
	return nil
}

// CountTasks returns the number of tasks matching the filter.
func (r *Repository) CountTasks(ctx context.Context, filter storage.TaskFilter) (int, error) {
	where, args := taskWhere(filter)
	query := `SELECT COUNT(*) FROM tasks` + where

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("could not count tasks (%s): %w", err, model.ErrUnavailable)
	}

	return count, nil
}

func taskWhere(filter storage.TaskFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.NotStatus != nil {
		conds = append(conds, "status != ?")
		args = append(args, string(*filter.NotStatus))
	}
	if filter.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.AssignedTo != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM json_each(tasks.assigned_to) WHERE json_each.value = ?)")
		args = append(args, filter.AssignedTo)
	}
	if filter.DueBefore != nil {
		conds = append(conds, "due_date IS NOT NULL AND due_date < ?")
		args = append(args, filter.DueBefore.Unix())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// checklistItem is the JSON column representation of a checklist entry.
type checklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func marshalTaskJSON(t model.Task) (assignedTo, checklist, attachments string, err error) {
	if t.AssignedTo == nil {
		t.AssignedTo = []string{}
	}
	if t.Attachments == nil {
		t.Attachments = []string{}
	}

	items := make([]checklistItem, 0, len(t.TodoChecklist))
	for _, item := range t.TodoChecklist {
		items = append(items, checklistItem{Text: item.Text, Completed: item.Completed})
	}

	assignedToRaw, err := json.Marshal(t.AssignedTo)
	if err != nil {
		return "", "", "", fmt.Errorf("could not marshal assignees: %w", err)
	}
	checklistRaw, err := json.Marshal(items)
	if err != nil {
		return "", "", "", fmt.Errorf("could not marshal checklist: %w", err)
	}
	attachmentsRaw, err := json.Marshal(t.Attachments)
	if err != nil {
		return "", "", "", fmt.Errorf("could not marshal attachments: %w", err)
	}

	return string(assignedToRaw), string(checklistRaw), string(attachmentsRaw), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanTask(s scanner) (model.Task, error) {
	var task model.Task
	var assignedTo, checklist, attachments string
	var dueDate sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.Progress,
		&dueDate,
		&task.CreatedBy,
		&assignedTo,
		&checklist,
		&attachments,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	if err := json.Unmarshal([]byte(assignedTo), &task.AssignedTo); err != nil {
		return model.Task{}, fmt.Errorf("could not unmarshal assignees: %w", err)
	}
	var items []checklistItem
	if err := json.Unmarshal([]byte(checklist), &items); err != nil {
		return model.Task{}, fmt.Errorf("could not unmarshal checklist: %w", err)
	}
	task.TodoChecklist = make([]model.ChecklistItem, 0, len(items))
	for _, item := range items {
		task.TodoChecklist = append(task.TodoChecklist, model.ChecklistItem{Text: item.Text, Completed: item.Completed})
	}
	if err := json.Unmarshal([]byte(attachments), &task.Attachments); err != nil {
		return model.Task{}, fmt.Errorf("could not unmarshal attachments: %w", err)
	}

	if dueDate.Valid {
		t := timeFromUnix(dueDate.Int64)
		task.DueDate = &t
	}
	task.CreatedAt = timeFromUnix(createdAt)
	task.UpdatedAt = timeFromUnix(updatedAt)

	return task, nil
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
