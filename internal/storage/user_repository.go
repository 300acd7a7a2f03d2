package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	sqlite "modernc.org/sqlite"

	"smartexpense/internal/core"
)

// ErrEmailTaken reports a registration conflict. The store's UNIQUE
// constraint on users.email is the single source of truth; the violation
// is converted here rather than pre-checked.
var ErrEmailTaken = errors.New("email already registered")

// SQLite extended result code for UNIQUE constraint violations.
const sqliteConstraintUnique = 2067

// UserRepository provides CRUD and credential checks over the users table.
// Passwords are hashed with bcrypt on write and compared on login; they
// never round-trip in plain text.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a new user and returns the assigned id. A duplicate
// email yields ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u core.User) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	res, err := r.store.DB().ExecContext(ctx,
		`INSERT INTO users (username, email, password, security_question, security_answer)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, string(hash), u.SecurityQuestion, u.SecurityAnswer,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "email", u.Email)
	return id, nil
}

// GetByEmail returns the user with the given email, or nil if absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.getUser(ctx, "email = ?", email)
}

// GetByID returns the user with the given id, or nil if absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*core.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

// EmailExists reports whether a user with the given email exists. It is
// advisory only; Create remains the authority on conflicts.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE email = ? LIMIT 1", email,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// ValidateLogin returns the user iff email and password both match, nil
// otherwise. The caller cannot tell a wrong email from a wrong password,
// which avoids leaking which addresses are registered.
func (r *UserRepository) ValidateLogin(ctx context.Context, email, password string) (*core.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

// ValidateSecurityAnswer reports whether answer matches the stored answer
// for email exactly, including case.
func (r *UserRepository) ValidateSecurityAnswer(ctx context.Context, email, answer string) (bool, error) {
	var one int
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE email = ? AND security_answer = ?", email, answer,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check security answer: %w", err)
	}
	return true, nil
}

// UpdatePassword stores a new password hash for email. Returns true iff a
// row was updated, i.e. the email existed.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, newPassword string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	res, err := r.store.DB().ExecContext(ctx,
		"UPDATE users SET password = ? WHERE email = ?", string(hash), email,
	)
	if err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *UserRepository) getUser(ctx context.Context, where string, arg any) (*core.User, error) {
	var u core.User
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT id, username, email, password, security_question, security_answer FROM users WHERE "+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.SecurityQuestion, &u.SecurityAnswer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqliteConstraintUnique
}
