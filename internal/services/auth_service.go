// Package services holds the application services between the HTTP layer
// and the repositories: authentication flows, expense operations with
// change events, and the aggregation windows behind the dashboard.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartexpense/internal/core"
	"smartexpense/internal/storage"
)

var (
	// ErrEmailTaken reports a registration conflict on the email address.
	ErrEmailTaken = storage.ErrEmailTaken
	// ErrInvalidCredentials covers wrong email, wrong password, or both;
	// callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound reports an email with no account behind it.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongAnswer reports a failed security-answer check.
	ErrWrongAnswer = errors.New("security answer does not match")
)

// AuthService owns registration, login and the password-reset flow.
type AuthService struct {
	users *storage.UserRepository
}

func NewAuthService(users *storage.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a new account and returns its id. The store's unique
// constraint on email is the sole authority on conflicts, so two
// concurrent registrations of the same address cannot both succeed.
func (s *AuthService) Register(ctx context.Context, u core.User) (int64, error) {
	id, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("register user: %w", err)
	}
	return id, nil
}

// Login returns the account iff email and password both match.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.User, error) {
	u, err := s.users.ValidateLogin(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("validate login: %w", err)
	}
	if u == nil {
		slog.InfoContext(ctx, "Login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SecurityQuestion returns the question registered for email, for the
// first step of the password-reset flow.
func (s *AuthService) SecurityQuestion(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	return u.SecurityQuestion, nil
}

// VerifySecurityAnswer checks answer exactly and case-sensitively against
// the stored answer for email.
func (s *AuthService) VerifySecurityAnswer(ctx context.Context, email, answer string) error {
	ok, err := s.users.ValidateSecurityAnswer(ctx, email, answer)
	if err != nil {
		return fmt.Errorf("validate security answer: %w", err)
	}
	if !ok {
		return ErrWrongAnswer
	}
	return nil
}

// ResetPassword verifies the security answer and then stores the new
// password. The whole flow runs server-side so the answer check cannot
// be skipped.
func (s *AuthService) ResetPassword(ctx context.Context, email, answer, newPassword string) error {
	if err := s.VerifySecurityAnswer(ctx, email, answer); err != nil {
		return err
	}

	updated, err := s.users.UpdatePassword(ctx, email, newPassword)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if !updated {
		return ErrUserNotFound
	}

	slog.InfoContext(ctx, "Password reset", "email", email)
	return nil
}

// User returns the account behind id, or ErrUserNotFound.
func (s *AuthService) User(ctx context.Context, id int64) (*core.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
