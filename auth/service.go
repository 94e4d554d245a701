package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plannerhq/planner/core/handler"
	"github.com/plannerhq/planner/core/logger"
	"github.com/plannerhq/planner/user"
)

// MinPasswordLength is enforced on registration only; existing credentials
// are never re-validated against it.
const MinPasswordLength = 8

var (
	// ErrInvalidCredentials covers every login failure mode so responses
	// never reveal whether a username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotRefreshable indicates the presented token is outside the
	// refresh window or otherwise unusable.
	ErrNotRefreshable = errors.New("token is not refreshable")
	// ErrInvalidPassword is a user-safe registration validation failure.
	ErrInvalidPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Service combines the token service and the user directory into the
// authentication operations used by handlers and middleware.
type Service struct {
	tokens *TokenService
	users  user.Directory
	log    *slog.Logger
}

// NewService creates the authentication service.
func NewService(tokens *TokenService, users user.Directory, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{tokens: tokens, users: users, log: log}
}

// Tokens exposes the underlying token service.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Authenticate resolves a bearer token to a principal. Implements
// middleware.Authenticator.
func (s *Service) Authenticate(ctx context.Context, token string) (handler.Principal, error) {
	subject, err := s.tokens.ParseSubject(token)
	if err != nil {
		return handler.Principal{}, err
	}

	u, err := s.users.GetByUsername(ctx, subject)
	if err != nil {
		return handler.Principal{}, err
	}
	if !u.Enabled {
		return handler.Principal{}, ErrInvalidCredentials
	}
	if !s.tokens.IsValidFor(token, u.Username) {
		return handler.Principal{}, ErrInvalidCredentials
	}

	return handler.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// Login verifies credentials and mints a session token. Every failure mode
// collapses into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (user.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return user.User{}, "", ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return user.User{}, "", ErrInvalidCredentials
	}
	if !u.Enabled || !user.VerifyPassword(u.PasswordHash, password) {
		return user.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Username)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// Register creates a new identity and logs it in.
func (s *Service) Register(ctx context.Context, username, email, password string) (user.User, string, error) {
	if len(password) < MinPasswordLength {
		return user.User{}, "", ErrInvalidPassword
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return user.User{}, "", err
	}

	u, err := user.New(username, email, hash)
	if err != nil {
		return user.User{}, "", err
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return user.User{}, "", err
	}

	s.log.LogAttrs(ctx, slog.LevelInfo, "user registered",
		logger.Component("auth"),
		logger.Username(created.Username),
	)

	token, err := s.tokens.Issue(created.Username)
	if err != nil {
		return user.User{}, "", err
	}
	return created, token, nil
}

// Refresh exchanges a refreshable token for a fresh one. The presented
// token may be expired by up to the refresh window; anything beyond, or any
// signature failure, yields ErrNotRefreshable.
func (s *Service) Refresh(ctx context.Context, token string) (user.User, string, error) {
	subject, err := s.tokens.Subject(token)
	if err != nil {
		return user.User{}, "", ErrNotRefreshable
	}

	u, err := s.users.GetByUsername(ctx, subject)
	if err != nil || !u.Enabled {
		return user.User{}, "", ErrNotRefreshable
	}
	if !s.tokens.IsRefreshable(token, u.Username) {
		return user.User{}, "", ErrNotRefreshable
	}

	fresh, err := s.tokens.Issue(u.Username)
	if err != nil {
		return user.User{}, "", err
	}
	return u, fresh, nil
}
