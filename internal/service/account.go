// Package service — account business logic.
//
// AccountService is the business layer for registration, login and profile
// retrieval. It sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AccountHandler (HTTP) → AccountService (business rules) → UserRepository (DB)
//	                      ↘ PasswordService (bcrypt) / TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Orchestrate registration: validate → hash → persist → redact
//   - Orchestrate login: lookup → verify password → issue token
//   - Keep every credential rule in one place, away from HTTP concerns
//   - Be testable with fake dependencies
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/account-service/internal/apperror"
	"github.com/sakif/account-service/internal/auth"
	"github.com/sakif/account-service/internal/model"
	"github.com/sakif/account-service/internal/repository"
)

// invalidCredentials is the one message every authentication failure gets.
// Using a single value for "no such user" and "wrong password" keeps the
// two cases indistinguishable to the caller.
const invalidCredentials = "invalid credentials"

// AccountService handles the account management business logic.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all required
// dependencies. Called from server.go when wiring the dependency graph.
func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a new account and returns its public profile.
//
// The request-validation layer has already checked shapes (email format,
// minimum password length); this method still defensively rejects empty
// fields. Uniqueness is NOT pre-checked here — the store's unique
// constraints are the authority, and Create surfaces a collision as
// apperror.ErrDuplicate naming the field. That closes the check-then-insert
// race: of two concurrent registrations with the same email, exactly one
// insert succeeds.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*model.PublicProfile, error) {
	switch {
	case username == "":
		return nil, apperror.ValidationFailed("username", "username must not be empty")
	case email == "":
		return nil, apperror.ValidationFailed("email", "email must not be empty")
	case password == "":
		return nil, apperror.ValidationFailed("password", "password must not be empty")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("service/account: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user.Public(), nil
}

// Login verifies credentials and issues a session token.
//
// The identifier may be an email or a username — the store matches it
// against both columns. An unknown identifier and a wrong password return
// the same generic unauthorized error: response shape and status must not
// reveal whether the account exists.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (string, error) {
	if identifier == "" {
		return "", apperror.ValidationFailed("identifier", "identifier must not be empty")
	}
	if password == "" {
		return "", apperror.ValidationFailed("password", "password must not be empty")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized(invalidCredentials)
		}
		return "", fmt.Errorf("service/account: looking up identifier: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", apperror.Unauthorized(invalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("service/account: issuing token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return token, nil
}

// Profile returns the public profile for the given user ID.
//
// Callers reach this after token verification (the middleware put the
// subject ID in the request context), so an absent user here is a 404, not
// an auth failure — the token was valid, the account is simply gone.
func (s *AccountService) Profile(ctx context.Context, userID int64) (*model.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/account: fetching user %d: %w", userID, err)
	}

	return user.Public(), nil
}
