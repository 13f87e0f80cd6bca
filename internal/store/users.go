// ABOUTME: User identity and credential store methods backed by SQLite
// ABOUTME: Covers registration, authentication, profile updates, and the external features flag

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a user does not exist, to keep
// authentication timing constant regardless of username validity.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ErrBadCredentials is returned when authentication fails
var ErrBadCredentials = errors.New("invalid username or password")

// CreateUser inserts a new user with a bcrypt-hashed password.
// Generates ID and timestamps if not set.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User, password string) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = string(hash)

	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, external_features, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		boolToInt(user.ExternalFeatures),
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrDuplicateUser
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("user created", "username", user.Username)
	return nil
}

// GetUser retrieves a user by username. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, first_name, last_name, external_features, created_at, updated_at
		FROM users WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// Authenticate verifies a username/password pair.
// Returns ErrBadCredentials on any mismatch; a bcrypt comparison runs even
// for unknown usernames to keep response timing constant.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	return user, nil
}

// UpdateUserProfile updates mutable profile fields for a user.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = ?, first_name = ?, last_name = ?, external_features = ?, updated_at = ?
		WHERE username = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		boolToInt(user.ExternalFeatures),
		time.Now().UTC().Format(time.RFC3339),
		user.Username,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return requireRowsAffected(res)
}

// ChangePassword verifies the old password and sets a new bcrypt hash.
func (s *SQLiteStore) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, username, oldPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE username = ?`,
		string(hash), time.Now().UTC().Format(time.RFC3339), username)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return requireRowsAffected(res)
}

// DeleteUser removes a user and their private tools.
func (s *SQLiteStore) DeleteUser(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_tools WHERE username = ?`, username); err != nil {
		return fmt.Errorf("deleting user tools: %w", err)
	}

	s.logger.Info("user deleted", "username", username)
	return nil
}

// ListUsers returns all users ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, username, email, password_hash, first_name, last_name, external_features, created_at, updated_at
		FROM users ORDER BY username
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := s.scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetExternalFeatures sets the external tools entitlement bit for a user.
func (s *SQLiteStore) SetExternalFeatures(ctx context.Context, username string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET external_features = ?, updated_at = ? WHERE username = ?`,
		boolToInt(enabled), time.Now().UTC().Format(time.RFC3339), username)
	if err != nil {
		return fmt.Errorf("updating external features: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return err
	}

	s.logger.Info("external features updated", "username", username, "enabled", enabled)
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic
type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanUser(row scanner) (*User, error) {
	user, err := s.scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *SQLiteStore) scanUserRow(row scanner) (*User, error) {
	var user User
	var external int
	var createdAt, updatedAt string
	var email, firstName, lastName sql.NullString

	err := row.Scan(&user.ID, &user.Username, &email, &user.PasswordHash,
		&firstName, &lastName, &external, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	user.Email = email.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.ExternalFeatures = external == 1
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// requireRowsAffected converts a zero-row update/delete into ErrNotFound.
func requireRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
