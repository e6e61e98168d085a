// Package userauth serves registration, login and profile management.
package userauth

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/log"
	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/storage"
)

// ServiceConfig is the configuration for the user auth service.
type ServiceConfig struct {
	Repository    storage.UserRepository
	Authenticator *auth.Authenticator
	// AdminInviteToken promotes a registration to the admin role when the
	// caller presents it. Empty disables admin self-registration.
	AdminInviteToken string
	Logger           log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Authenticator == nil {
		return fmt.Errorf("authenticator is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.UserAuth"})
	return nil
}

// Service handles registration, login and profile business logic.
type Service struct {
	repo          storage.UserRepository
	authenticator *auth.Authenticator
	inviteToken   string
	logger        log.Logger
}

// NewService creates a new user auth service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:          cfg.Repository,
		authenticator: cfg.Authenticator,
		inviteToken:   cfg.AdminInviteToken,
		logger:        cfg.Logger,
	}, nil
}

// RegisterOptions are the options for registering a user.
type RegisterOptions struct {
	Name            string
	Email           string
	Password        string
	ProfileImageURL string
	AdminInviteCode string
}

// Session is an authenticated user together with its token.
type Session struct {
	User  model.User
	Token string
}

// Register creates a new user. Presenting the configured admin invite code
// grants the admin role, everyone else registers as a member.
func (s *Service) Register(ctx context.Context, opts RegisterOptions) (*Session, error) {
	if opts.Password == "" {
		return nil, fmt.Errorf("password is required: %w", model.ErrNotValid)
	}

	role := model.RoleMember
	if s.inviteToken != "" && opts.AdminInviteCode == s.inviteToken {
		role = model.RoleAdmin
	}

	hash, err := s.authenticator.HashPassword(opts.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := model.User{
		ID:              ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Name:            opts.Name,
		Email:           opts.Email,
		PasswordHash:    hash,
		Role:            role,
		ProfileImageURL: opts.ProfileImageURL,
		CreatedAt:       time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("could not save user: %w", err)
	}

	token, err := s.authenticator.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	s.logger.Infof("Registered user %s as %s", user.Email, user.Role)

	return &Session{User: user, Token: token}, nil
}

// Login authenticates an email/password pair and returns a session. A
// wrong email and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("could not authenticate: %w", auth.ErrInvalidCredentials)
	}

	if !s.authenticator.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("could not authenticate: %w", auth.ErrInvalidCredentials)
	}

	token, err := s.authenticator.GenerateToken(*user)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	s.logger.Infof("User %s logged in", user.Email)

	return &Session{User: *user, Token: token}, nil
}

// Profile returns the caller's own user record.
func (s *Service) Profile(ctx context.Context, identity model.Identity) (*model.User, error) {
	user, err := s.repo.GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}

	return user, nil
}

// ProfileUpdateOptions are the options for updating a profile. Nil fields
// are left untouched.
type ProfileUpdateOptions struct {
	Name            *string
	Email           *string
	Password        *string
	ProfileImageURL *string
}

// UpdateProfile edits the caller's own user record and reissues the token
// so clients can keep a single credential around.
func (s *Service) UpdateProfile(ctx context.Context, identity model.Identity, opts ProfileUpdateOptions) (*Session, error) {
	user, err := s.repo.GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}

	if opts.Name != nil {
		user.Name = *opts.Name
	}
	if opts.Email != nil {
		user.Email = *opts.Email
	}
	if opts.ProfileImageURL != nil {
		user.ProfileImageURL = *opts.ProfileImageURL
	}
	if opts.Password != nil {
		if *opts.Password == "" {
			return nil, fmt.Errorf("password can't be empty: %w", model.ErrNotValid)
		}
		hash, err := s.authenticator.HashPassword(*opts.Password)
		if err != nil {
			return nil, fmt.Errorf("could not hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if err := s.repo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("could not save user: %w", err)
	}

	token, err := s.authenticator.GenerateToken(*user)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	s.logger.Infof("User %s updated its profile", user.ID)

	return &Session{User: *user, Token: token}, nil
}
