package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sajal/inkpad/internal/apperror"
	"github.com/sajal/inkpad/internal/model"
	"github.com/sajal/inkpad/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user, assigning an xid and timestamps.
//
// Uniqueness of username and email is enforced by the UNIQUE columns;
// the driver reports violations only as an error string, so the
// translation to apperror.ErrConflict matches on the constraint name.
// Same idea as translating sql.ErrNoRows to ErrNotFound, one layer down.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, dark_mode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DarkMode,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if conflictErr := translateUniqueViolation(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// translateUniqueViolation maps a UNIQUE constraint failure on the
// users table to the matching conflict error, or returns nil when err
// is something else.
func translateUniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "users.username") {
		return apperror.Conflict("username", "username already taken")
	}
	if strings.Contains(msg, "users.email") {
		return apperror.Conflict("email", "email already registered")
	}
	return apperror.Conflict("", "user already exists")
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername retrieves a user by exact username. SQLite TEXT
// comparison is case-sensitive, which is the lookup behaviour login
// depends on.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = ?`, username)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, dark_mode, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.DarkMode,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user %v: %w", arg, err)
	}

	return &u, nil
}

// SetDarkMode persists the dark-mode preference for the given user.
func (db *DB) SetDarkMode(ctx context.Context, id string, darkMode bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET dark_mode = ?, updated_at = ? WHERE id = ?`,
		darkMode, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting dark mode for user %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
