package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskhub/taskhub/internal/model"
)

const userColumns = `
	id, name, email, password_hash, role, profile_image_url,
	created_at, updated_at
`

// CreateUser creates a new user in the repository.
func (r *Repository) CreateUser(ctx context.Context, u model.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.ProfileImageURL,
		u.CreatedAt.Unix(),
		u.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.") {
			return fmt.Errorf("user already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert user (%s): %w", err, model.ErrUnavailable)
	}

	r.logger.Debugf("Created user in repository: %s", u.ID)
	return nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	user, err := r.scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query user (%s): %w", err, model.ErrUnavailable)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	row := r.db.QueryRowContext(ctx, query, email)
	user, err := r.scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s: %w", email, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query user (%s): %w", err, model.ErrUnavailable)
	}

	return &user, nil
}

// ListUsers returns all users with the given role, or every user when the
// role is empty, ordered by name.
func (r *Repository) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, string(role))
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query users (%s): %w", err, model.ErrUnavailable)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row (%s): %w", err, model.ErrUnavailable)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows (%s): %w", err, model.ErrUnavailable)
	}

	return users, nil
}

// UpdateUser updates an existing user.
func (r *Repository) UpdateUser(ctx context.Context, u model.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET
			name = ?,
			email = ?,
			password_hash = ?,
			role = ?,
			profile_image_url = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.ProfileImageURL,
		u.UpdatedAt.Unix(),
		u.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.") {
			return fmt.Errorf("user already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not update user (%s): %w", err, model.ErrUnavailable)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected (%s): %w", err, model.ErrUnavailable)
	}
	if rows == 0 {
		return fmt.Errorf("user %s: %w", u.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated user in repository: %s", u.ID)
	return nil
}

func (r *Repository) scanUser(s scanner) (model.User, error) {
	var user model.User
	var createdAt, updatedAt int64

	err := s.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.ProfileImageURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	user.CreatedAt = timeFromUnix(createdAt)
	user.UpdatedAt = timeFromUnix(updatedAt)

	return user, nil
}
