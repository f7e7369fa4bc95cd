// Package service contains the business logic layer.
//
// Handlers parse HTTP and delegate here; services validate, enforce the
// rules, and talk to the repository interfaces. Services return
// apperror values, never HTTP status codes — the handler package owns
// that translation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sajal/inkpad/internal/apperror"
	"github.com/sajal/inkpad/internal/auth"
	"github.com/sajal/inkpad/internal/model"
	"github.com/sajal/inkpad/internal/repository"
)

// AuthService handles registration, login, token validation, and the
// per-user preference. Dependencies are injected so tests can swap the
// repository for an in-memory mock and the password service for one
// with a cheap cost.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the login
// handler can set the cookie and write the body in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account with a bcrypt-hashed password.
//
// Missing fields fail validation; an already-taken username or email
// surfaces as a conflict from the repository's UNIQUE constraints
// (registration does not pre-check, so there is no lookup/insert race
// to lose). The returned user carries the hash internally but the model
// never serializes it.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	fieldErrs := validation.Errors{
		"username": validation.Validate(username, validation.Required, validation.Length(1, 64)),
		"email":    validation.Validate(email, validation.Required, validation.Length(3, 254)),
		"password": validation.Validate(password, validation.Required),
	}
	if err := fieldErrs.Filter(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies the credentials and issues a signed token.
//
// The username lookup is exact and case-sensitive. Unknown user and
// wrong password return distinct messages; the client shows them
// differently on the login form.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	fieldErrs := validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}
	if err := fieldErrs.Filter(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Auth("user not found")
		}
		return nil, fmt.Errorf("service/auth: fetching user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Auth("invalid password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

// ValidateToken validates a JWT string and returns the userID it
// encodes, as an apperror so the handler maps failures to 401.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", apperror.Auth("invalid or expired token")
	}
	return userID, nil
}

// DarkMode returns the stored dark-mode preference for the user.
func (s *AuthService) DarkMode(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.DarkMode, nil
}

// SetDarkMode persists the dark-mode preference. A failure here is
// surfaced but is non-critical to the caller's flow — the client keeps
// its local state either way.
func (s *AuthService) SetDarkMode(ctx context.Context, userID string, darkMode bool) error {
	if err := s.users.SetDarkMode(ctx, userID, darkMode); err != nil {
		s.logger.Warn("failed to save theme preference",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}
